// Package photo stores profile photographs and hands back the URL they are served under.
package photo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const (
	// MaxSize is the largest accepted photo in bytes.
	MaxSize = 2 * 1024 * 1024
	// URLPrefix is the path under which uploaded photos are served.
	URLPrefix = "/photos"
	// folder groups the photos of all owners below the base directory.
	folder = "profile-photos"
	// sniffLen is how many leading bytes decide the stored type.
	sniffLen = 512
)

var (
	// ErrTooLarge is returned for photos larger than MaxSize.
	ErrTooLarge = errors.New("the photo must be smaller than 2MB")
	// ErrNotImage is returned when the content type is not an image type.
	ErrNotImage = errors.New("only images are accepted")
)

// Uploader stores a photo and returns its URL.
type Uploader interface {
	Upload(ctx context.Context, ownerID string, r io.Reader) (string, error)
}

// Check validates size and content type before an upload.
func Check(size int64, contentType string) error {
	if size > MaxSize {
		return ErrTooLarge
	}
	if !strings.HasPrefix(contentType, "image/") {
		return ErrNotImage
	}
	return nil
}

// Detect returns the image type of the content. Declared content types and file names are not
// consulted. SVG is refused since it can carry scripts.
func Detect(head []byte) (*mimetype.MIME, error) {
	detected := mimetype.Detect(head)
	if !strings.HasPrefix(detected.String(), "image/") || detected.Is("image/svg+xml") {
		return nil, fmt.Errorf("%w: detected %s", ErrNotImage, detected.String())
	}
	return detected, nil
}

// DiskUploader writes photos below Dir and builds URLs relative to BaseURL.
type DiskUploader struct {
	Dir     string
	BaseURL string
	now     func() time.Time
}

// NewDiskUploader returns an uploader writing into dir.
func NewDiskUploader(dir string, baseURL string) *DiskUploader {
	return &DiskUploader{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/"), now: time.Now}
}

// Upload writes the photo to {Dir}/profile-photos/{owner}/{unix millis}-{uuid}{ext}, where ext
// belongs to the type sniffed from the content. At most MaxSize bytes are accepted.
func (u *DiskUploader) Upload(ctx context.Context, ownerID string, r io.Reader) (string, error) {
	if ownerID == "" || strings.ContainsAny(ownerID, `/\`) || ownerID == "." || ownerID == ".." {
		return "", fmt.Errorf("invalid owner id %q", ownerID)
	}
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", fmt.Errorf("could not read photo: %w", err)
	}
	head = head[:n]
	detected, err := Detect(head)
	if err != nil {
		return "", err
	}
	r = io.MultiReader(bytes.NewReader(head), r)

	name := fmt.Sprintf("%d-%s%s", u.now().UnixMilli(), uuid.NewString(), detected.Extension())
	dir := filepath.Join(u.Dir, folder, ownerID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("could not create photo folder: %w", err)
	}

	target := filepath.Join(dir, name)
	file, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("could not create photo file: %w", err)
	}
	written, err := io.Copy(file, io.LimitReader(r, MaxSize+1))
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err == nil && written > MaxSize {
		err = ErrTooLarge
	}
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		os.Remove(target)
		return "", fmt.Errorf("could not write photo: %w", err)
	}
	return u.BaseURL + path.Join(URLPrefix, folder, ownerID, name), nil
}
