package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Global validator instance for reuse
var validate = validator.New()

// Request decoding errors
var (
	// ErrMissingField is returned when a required form field is absent.
	ErrMissingField = errors.New("missing required field")

	// ErrRequestTooLarge is returned when the body exceeds the configured limit.
	ErrRequestTooLarge = errors.New("request body too large")

	// ErrMalformedForm is returned when a form body cannot be parsed.
	ErrMalformedForm = errors.New("malformed form body")
)

// maxFormMemory is the part of a multipart body kept in memory; the rest
// spills to temporary files.
const maxFormMemory = 1 << 20

// DecodeJSON decodes the request body into the given struct.
func DecodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return err
	}
	return nil
}

// ValidateRequest validates the given struct using the validator package.
func ValidateRequest(v interface{}) error {
	if validator, ok := v.(interface{ Validate() error }); ok {
		return validator.Validate()
	}
	return validate.Struct(v)
}

// ParseForm parses a multipart or urlencoded body of at most maxBytes.
// Exceeding the limit yields ErrRequestTooLarge.
func ParseForm(w http.ResponseWriter, r *http.Request, maxBytes int64) error {
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	var err error
	if mediaType == "multipart/form-data" {
		err = r.ParseMultipartForm(maxFormMemory)
	} else {
		err = r.ParseForm()
	}
	if err == nil {
		return nil
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return fmt.Errorf("%w: limit %d bytes", ErrRequestTooLarge, tooLarge.Limit)
	}
	// multipart flattens some read errors to strings
	if strings.Contains(err.Error(), "request body too large") {
		return fmt.Errorf("%w: limit %d bytes", ErrRequestTooLarge, maxBytes)
	}
	return fmt.Errorf("%w: %v", ErrMalformedForm, err)
}

// RequiredFormValue returns a form field that must be present. An empty value
// is allowed; an absent field is ErrMissingField. ParseForm must run first.
func RequiredFormValue(r *http.Request, field string) (string, error) {
	if values, ok := r.Form[field]; ok && len(values) > 0 {
		return values[0], nil
	}
	if r.MultipartForm != nil {
		if values, ok := r.MultipartForm.Value[field]; ok && len(values) > 0 {
			return values[0], nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrMissingField, field)
}

// UploadedFile is an optional file part of a multipart form.
type UploadedFile struct {
	Name string
	Size int64
	File multipart.File
}

// Close releases the underlying file.
func (f *UploadedFile) Close() error {
	return f.File.Close()
}

// Reader returns the file content.
func (f *UploadedFile) Reader() io.Reader {
	return f.File
}

// OptionalFile returns the named file part, or nil when it is absent or empty.
// ParseForm must run first. The caller closes a non-nil result.
func OptionalFile(r *http.Request, field string) (*UploadedFile, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	headers := r.MultipartForm.File[field]
	if len(headers) == 0 || headers[0].Size == 0 {
		return nil, nil
	}

	file, err := headers[0].Open()
	if err != nil {
		return nil, fmt.Errorf("open form file %s: %w", field, err)
	}
	return &UploadedFile{Name: headers[0].Filename, Size: headers[0].Size, File: file}, nil
}
