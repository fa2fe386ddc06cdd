package gallery

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	defaultThumbnailRequest = 256
	thumbnailQuality        = 70
)

// LocalService lists and renders images straight from the local file system.
type LocalService struct {
	extensions map[string]bool
}

func NewLocalService() *LocalService {
	return &LocalService{
		extensions: map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".webp": true},
	}
}

func (s *LocalService) List(ctx context.Context, directory string) (Listing, error) {
	if directory == "" {
		return Listing{Files: []Entry{}, Error: ErrNoDirectory.Error()}, nil
	}
	if info, err := os.Stat(directory); err != nil || !info.IsDir() {
		return Listing{Files: []Entry{}, Error: "Directory not found"}, nil
	}

	dirEntries, err := os.ReadDir(directory)
	if err != nil {
		return Listing{}, fmt.Errorf("read directory %q: %w", directory, err)
	}

	files := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if err := ctx.Err(); err != nil {
			return Listing{}, err
		}
		if de.IsDir() || !s.isSupported(de.Name()) {
			continue
		}
		info, err := de.Info()
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		files = append(files, Entry{
			Filename: de.Name(),
			Mtime:    float64(info.ModTime().UnixNano()) / 1e9,
		})
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].Filename < files[j].Filename
	})

	return Listing{Files: files}, nil
}

// Thumbnail scales the image down to fit size x size and encodes it as JPEG.
// Images that cannot be decoded are returned unchanged.
func (s *LocalService) Thumbnail(ctx context.Context, directory, filename string, size int) ([]byte, error) {
	data, err := s.FullImage(ctx, directory, filename)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		size = defaultThumbnailRequest
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		logrus.WithError(err).WithField("file", filename).Debug("thumbnail decode failed, serving original")
		return data, nil
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaleToFit(img, size), &jpeg.Options{Quality: thumbnailQuality}); err != nil {
		return nil, fmt.Errorf("encode thumbnail for %q: %w", filename, err)
	}
	return buf.Bytes(), nil
}

func (s *LocalService) FullImage(ctx context.Context, directory, filename string) ([]byte, error) {
	path, err := joinInDirectory(directory, filename)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return data, nil
}

func (s *LocalService) isSupported(name string) bool {
	return s.extensions[strings.ToLower(filepath.Ext(name))]
}

func joinInDirectory(directory, filename string) (string, error) {
	if directory == "" {
		return "", ErrNoDirectory
	}
	if filename == "" || filename == "." || filename == ".." ||
		strings.ContainsAny(filename, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidFilename, filename)
	}
	return filepath.Join(directory, filename), nil
}

// scaleToFit shrinks img so that neither edge exceeds size, keeping its
// aspect ratio. Images that already fit are only converted to RGBA.
func scaleToFit(img image.Image, size int) *image.RGBA {
	src := img.Bounds()
	srcW, srcH := src.Dx(), src.Dy()

	dstW, dstH := srcW, srcH
	if srcW > size || srcH > size {
		if srcW >= srcH {
			dstW = size
			dstH = max(1, srcH*size/srcW)
		} else {
			dstH = size
			dstW = max(1, srcW*size/srcH)
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	// JPEG has no alpha, flatten onto white.
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, src, draw.Over, nil)
	return dst
}
