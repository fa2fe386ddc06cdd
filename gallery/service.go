package gallery

import (
	"context"
	"errors"
)

var (
	// ErrNoDirectory is returned when a listing is requested without a directory.
	ErrNoDirectory = errors.New("no directory specified")
	// ErrInvalidFilename is returned for filenames that would escape their directory.
	ErrInvalidFilename = errors.New("invalid filename")
	// ErrUnexpectedStatus is returned when the listing service answers with a non 2xx status.
	ErrUnexpectedStatus = errors.New("unexpected status")
)

// Listing is the answer of a directory listing. Files is nil when the
// answer carried no file list at all.
type Listing struct {
	Files []Entry `json:"files"`
	Error string  `json:"error,omitempty"`
}

// Service provides file listings and image bytes.
type Service interface {
	List(ctx context.Context, directory string) (Listing, error)
	// Thumbnail returns a reduced rendering that fits a size x size box.
	Thumbnail(ctx context.Context, directory, filename string, size int) ([]byte, error)
	// FullImage returns the original file.
	FullImage(ctx context.Context, directory, filename string) ([]byte, error)
}

// fetchImage returns the bytes ref points at.
func fetchImage(ctx context.Context, svc Service, ref ImageRef) ([]byte, error) {
	if ref.Size <= 0 {
		return svc.FullImage(ctx, ref.Directory, ref.Filename)
	}
	return svc.Thumbnail(ctx, ref.Directory, ref.Filename, ref.Size)
}
