package storage

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

var (
	// ErrNotAnImage is returned when the sniffed content type is not image/*.
	ErrNotAnImage = errors.New("uploaded file is not an image")
	// ErrTooLarge is returned when the upload exceeds the configured limit.
	ErrTooLarge = errors.New("uploaded file is too large")
)

// LocalStore keeps uploaded images in a directory served as static files.
type LocalStore struct {
	dir        string
	publicPath string
	maxBytes   int64
}

// NewLocalStore creates dir if needed. Stored files are referenced as
// publicPath + "/" + filename.
func NewLocalStore(dir, publicPath string, maxBytes int64) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir %s: %w", dir, err)
	}
	return &LocalStore{
		dir:        dir,
		publicPath: strings.TrimRight(publicPath, "/"),
		maxBytes:   maxBytes,
	}, nil
}

// Dir returns the directory holding stored files.
func (s *LocalStore) Dir() string {
	return s.dir
}

// Save validates fh and writes it under a fresh name, returning its public
// reference, e.g. "/uploads/image-<uuid>.png".
func (s *LocalStore) Save(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.maxBytes > 0 && fh.Size > s.maxBytes {
		return "", fmt.Errorf("%s is %d bytes: %w", fh.Filename, fh.Size, ErrTooLarge)
	}

	mt, err := sniff(fh)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", fmt.Errorf("%s detected as %s: %w", fh.Filename, mt.String(), ErrNotAnImage)
	}

	name := "image-" + uuid.New().String() + mt.Extension()
	if err := fasthttp.SaveMultipartFile(fh, filepath.Join(s.dir, name)); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", fh.Filename, err)
	}
	return s.publicPath + "/" + name, nil
}

func sniff(fh *multipart.FileHeader) (*mimetype.MIME, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()

	mt, err := mimetype.DetectReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload %s: %w", fh.Filename, err)
	}
	return mt, nil
}
