package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/franciscosanchezn/gin-food-ordering-api/internal/models"
	"github.com/gabriel-vasile/mimetype"
	"github.com/sirupsen/logrus"
)

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// UploadService stores images on the local filesystem under a public directory
type UploadService interface {
	// Save writes the upload and returns its public URL path
	Save(ctx context.Context, filename string, size int64, r io.Reader) (string, error)
}

type uploadService struct {
	dir      string
	maxBytes int64
	now      func() time.Time
	log      *logrus.Logger
}

func NewUploadService(dir string, maxBytes int64, log *logrus.Logger) UploadService {
	return &uploadService{dir: dir, maxBytes: maxBytes, now: time.Now, log: log}
}

// StoredName is the on-disk name: a millisecond timestamp prefix and the sanitised client name
func StoredName(now time.Time, filename string) string {
	base := unsafeFilenameChars.ReplaceAllString(filepath.Base(filename), "_")
	return fmt.Sprintf("%d-%s", now.UnixMilli(), base)
}

func (s *uploadService) Save(ctx context.Context, filename string, size int64, r io.Reader) (string, error) {
	if filename == "" {
		return "", validationError(models.ErrMissingFields, "no file uploaded")
	}
	if s.maxBytes > 0 && size > s.maxBytes {
		return "", validationError(models.ErrInvalidUpload, fmt.Sprintf("file exceeds %d bytes", s.maxBytes))
	}

	if s.maxBytes > 0 {
		r = io.LimitReader(r, s.maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return "", validationError(models.ErrInvalidUpload, fmt.Sprintf("file exceeds %d bytes", s.maxBytes))
	}

	detected := mimetype.Detect(data)
	if !mimetype.EqualsAny(detected.String(), allowedImageTypes...) {
		return "", validationError(models.ErrInvalidUpload, fmt.Sprintf("unsupported file type %s", detected.String()))
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	name := StoredName(s.now(), filename)
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"file":      name,
		"bytes":     len(data),
		"mime_type": detected.String(),
	}).Info("File uploaded")

	return "/uploads/" + name, nil
}
