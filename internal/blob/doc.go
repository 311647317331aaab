// Package blob persists uploaded image attachments on the local filesystem.
//
// A LocalSaver writes each upload under a fresh name of the form
// "<uuid>_<original base name>" and returns a reference path that the HTTP
// layer serves back under the configured URL prefix. The content type is
// sniffed from the bytes, not taken from the client.
package blob
