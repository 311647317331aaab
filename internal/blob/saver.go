package blob

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/phrazzld/twit-api/internal/platform/logger"
)

// Blob saver errors
var (
	// ErrUnsupportedMediaType is returned when the sniffed content type is not allowed.
	ErrUnsupportedMediaType = errors.New("unsupported media type")

	// ErrWriteFailed is returned when the upload could not be written to disk.
	ErrWriteFailed = errors.New("failed to store upload")

	// ErrInvalidReference is returned by Remove for references outside the saver's prefix.
	ErrInvalidReference = errors.New("invalid blob reference")
)

// sniffLen is the number of leading bytes inspected to detect the content type.
const sniffLen = 3072

const defaultBaseName = "upload"

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Saver stores uploaded files and returns a reference to them.
type Saver interface {
	// Save writes r under a unique name derived from originalName and
	// returns the public reference.
	Save(ctx context.Context, originalName string, r io.Reader) (string, error)

	// Remove deletes the file behind a reference returned by Save.
	// A missing file is not an error.
	Remove(ctx context.Context, ref string) error
}

// LocalSaver implements Saver on a local directory.
type LocalSaver struct {
	dir          string
	urlPrefix    string
	allowedTypes []string
	logger       *slog.Logger
}

// Ensure LocalSaver implements Saver interface
var _ Saver = (*LocalSaver)(nil)

// NewLocalSaver creates a saver writing into dir and returning references
// prefixed with urlPrefix. An empty allowedTypes accepts any content.
func NewLocalSaver(dir, urlPrefix string, allowedTypes []string, logger *slog.Logger) *LocalSaver {
	if dir == "" {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("upload dir cannot be empty")
	}
	if !strings.HasSuffix(urlPrefix, "/") {
		urlPrefix += "/"
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &LocalSaver{
		dir:          dir,
		urlPrefix:    urlPrefix,
		allowedTypes: allowedTypes,
		logger:       logger.With(slog.String("component", "blob_saver")),
	}
}

// Dir returns the directory files are written to.
func (s *LocalSaver) Dir() string {
	return s.dir
}

// URLPrefix returns the prefix of every reference returned by Save.
func (s *LocalSaver) URLPrefix() string {
	return s.urlPrefix
}

// Save implements Saver.Save. The directory is created on first use.
// Partially written files are not cleaned up on failure.
func (s *LocalSaver) Save(ctx context.Context, originalName string, r io.Reader) (string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	br := bufio.NewReaderSize(r, sniffLen)
	head, err := br.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return "", fmt.Errorf("%w: read upload: %v", ErrWriteFailed, err)
	}

	mtype := mimetype.Detect(head)
	if !s.allowed(mtype) {
		log.Debug("rejected upload",
			slog.String("detected_type", mtype.String()))
		return "", fmt.Errorf("%w: %s", ErrUnsupportedMediaType, mtype.String())
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		log.Error("failed to create upload dir", slog.String("error", err.Error()))
		return "", fmt.Errorf("%w: create dir: %v", ErrWriteFailed, err)
	}

	name := uuid.NewString() + "_" + sanitizeName(originalName)
	f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		log.Error("failed to open upload file", slog.String("error", err.Error()))
		return "", fmt.Errorf("%w: open: %v", ErrWriteFailed, err)
	}

	written, copyErr := io.Copy(f, br)
	closeErr := f.Close()
	if copyErr != nil {
		log.Error("failed to write upload", slog.String("error", copyErr.Error()))
		return "", fmt.Errorf("%w: write: %v", ErrWriteFailed, copyErr)
	}
	if closeErr != nil {
		return "", fmt.Errorf("%w: close: %v", ErrWriteFailed, closeErr)
	}

	log.Info("upload stored",
		slog.String("name", name),
		slog.String("content_type", mtype.String()),
		slog.Int64("bytes", written))

	return s.urlPrefix + name, nil
}

// Remove implements Saver.Remove.
func (s *LocalSaver) Remove(ctx context.Context, ref string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	name, ok := strings.CutPrefix(ref, s.urlPrefix)
	if !ok || name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidReference, ref)
	}

	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Error("failed to remove upload",
			slog.String("name", name),
			slog.String("error", err.Error()))
		return fmt.Errorf("remove %s: %w", name, err)
	}

	log.Debug("upload removed", slog.String("name", name))
	return nil
}

func (s *LocalSaver) allowed(mtype *mimetype.MIME) bool {
	if len(s.allowedTypes) == 0 {
		return true
	}
	for _, allowed := range s.allowedTypes {
		if mtype.Is(allowed) {
			return true
		}
	}
	return false
}

// sanitizeName reduces a client-supplied file name to a safe base name.
func sanitizeName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	name = unsafeNameChars.ReplaceAllString(name, "_")
	name = strings.TrimLeft(name, ".")
	if name == "" || name == "_" {
		return defaultBaseName
	}
	return name
}
