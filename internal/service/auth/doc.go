// Package auth issues and validates the HMAC-signed JWT access tokens used by
// the API, and verifies bcrypt password hashes at login.
package auth
