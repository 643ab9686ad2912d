package upload

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"frichat/internal/models"
	"frichat/internal/service"
)

// Store writes uploaded files to disk under a per-kind subdirectory and
// enforces the mime allow-list and size cap before any bytes are written.
type Store struct {
	dir     string
	maxSize int64
	allowed map[string]struct{}
}

func NewStore(dir string, maxSize int64, allowedTypes []string) (*Store, error) {
	allowed := make(map[string]struct{}, len(allowedTypes))
	for _, t := range allowedTypes {
		allowed[t] = struct{}{}
	}
	for _, sub := range []string{"images", "videos", "files"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("create upload dir: %w", err)
		}
	}
	return &Store{dir: dir, maxSize: maxSize, allowed: allowed}, nil
}

// Save validates and persists one multipart file. The returned File carries
// the path relative to the upload root so it can be served statically.
func (s *Store) Save(header *multipart.FileHeader) (models.File, error) {
	mimeType := header.Header.Get("Content-Type")
	if _, ok := s.allowed[mimeType]; !ok {
		return models.File{}, fmt.Errorf("%w: file type %q is not allowed", service.ErrValidation, mimeType)
	}
	if header.Size > s.maxSize {
		return models.File{}, fmt.Errorf("%w: file exceeds the %d byte limit", service.ErrValidation, s.maxSize)
	}

	src, err := header.Open()
	if err != nil {
		return models.File{}, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	stored := uuid.NewString() + filepath.Ext(header.Filename)
	rel := filepath.Join(subdirFor(mimeType), stored)
	dst, err := os.Create(filepath.Join(s.dir, rel))
	if err != nil {
		return models.File{}, fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, io.LimitReader(src, s.maxSize+1))
	if err != nil {
		return models.File{}, fmt.Errorf("write file: %w", err)
	}
	if written > s.maxSize {
		os.Remove(filepath.Join(s.dir, rel))
		return models.File{}, fmt.Errorf("%w: file exceeds the %d byte limit", service.ErrValidation, s.maxSize)
	}

	return models.File{
		OriginalName: header.Filename,
		StoredName:   stored,
		FileType:     MessageTypeFor(mimeType),
		FileSize:     written,
		MimeType:     mimeType,
		UploadPath:   filepath.ToSlash(rel),
	}, nil
}

// MessageTypeFor derives the message type from the stored mime type.
func MessageTypeFor(mimeType string) string {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return models.MessageTypeImage
	case strings.HasPrefix(mimeType, "video/"):
		return models.MessageTypeVideo
	default:
		return models.MessageTypeFile
	}
}

func subdirFor(mimeType string) string {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return "images"
	case strings.HasPrefix(mimeType, "video/"):
		return "videos"
	default:
		return "files"
	}
}
