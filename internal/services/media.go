package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"

	"smartfarm/internal/storage"
)

// ImageKind tags the variant held by ImageInput.
type ImageKind int

const (
	ImageNone   ImageKind = iota // keep the current image (none on create)
	ImageURL                     // external URL stored as-is
	ImageUpload                  // uploaded file to be stored
)

// ImageInput is the image part of a create/update request, resolved once at
// the HTTP edge.
type ImageInput struct {
	Kind ImageKind
	URL  string
	File *multipart.FileHeader
}

// NoImage leaves the image untouched.
func NoImage() ImageInput { return ImageInput{Kind: ImageNone} }

// ImageFromURL references an external image.
func ImageFromURL(url string) ImageInput { return ImageInput{Kind: ImageURL, URL: url} }

// ImageFromUpload stores the uploaded file.
func ImageFromUpload(fh *multipart.FileHeader) ImageInput {
	return ImageInput{Kind: ImageUpload, File: fh}
}

// MediaStore persists uploaded images and returns a stable reference.
type MediaStore interface {
	Save(ctx context.Context, fh *multipart.FileHeader) (string, error)
}

// resolveImage turns img into the reference to store. current is returned
// unchanged for ImageNone.
func resolveImage(ctx context.Context, media MediaStore, img ImageInput, current string) (string, error) {
	switch img.Kind {
	case ImageURL:
		return img.URL, nil
	case ImageUpload:
		if media == nil || img.File == nil {
			return "", fmt.Errorf("image upload is not available: %w", ErrStorage)
		}
		ref, err := media.Save(ctx, img.File)
		switch {
		case err == nil:
			return ref, nil
		case errors.Is(err, storage.ErrNotAnImage), errors.Is(err, storage.ErrTooLarge):
			return "", fmt.Errorf("%v: %w", err, ErrValidation)
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return "", err
		default:
			return "", fmt.Errorf("%v: %w", err, ErrStorage)
		}
	}
	return current, nil
}
