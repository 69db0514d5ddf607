// Package qrcode renders canonical card links as QR codes and exports them as PNG files.
package qrcode

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"sync"

	qr "github.com/skip2/go-qrcode"
	log "github.com/sirupsen/logrus"

	"gitlab.com/dirk.krummacker/businesscard-service/internal/download"
)

const (
	// Size is the edge length in pixels of every rendered code, quiet zone included.
	Size = 200
	// Level is the error correction level. Highest keeps the code readable with a logo on
	// top or a scratched print.
	Level = qr.Highest
	// SurfaceID is the lookup identifier of the rendered code on a canvas.
	SurfaceID = "qr-code"
	// FallbackName is used in the file name when the card has no name.
	FallbackName = "carte"
	// MimeType of the exported image.
	MimeType = "image/png"
)

// Canvas holds rendered surfaces by lookup identifier so that export actions can read the
// pixels without rendering again.
type Canvas struct {
	mu       sync.RWMutex
	surfaces map[string]image.Image
}

// NewCanvas returns an empty canvas.
func NewCanvas() *Canvas {
	return &Canvas{surfaces: make(map[string]image.Image)}
}

// Put registers a surface.
func (c *Canvas) Put(id string, img image.Image) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.surfaces[id] = img
}

// Lookup returns the surface registered under id.
func (c *Canvas) Lookup(id string) (image.Image, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	img, ok := c.surfaces[id]
	return img, ok
}

// Render encodes url at the fixed size and level, with quiet zone, and registers the image on
// the canvas under SurfaceID.
func Render(canvas *Canvas, url string) (image.Image, error) {
	code, err := qr.New(url, Level)
	if err != nil {
		return nil, fmt.Errorf("could not encode %q as QR code: %w", url, err)
	}
	code.DisableBorder = false
	img := code.Image(Size)
	canvas.Put(SurfaceID, img)
	return img, nil
}

// FileName returns "qr-code-{name}.png", with FallbackName for an empty name.
func FileName(name string) string {
	if name == "" {
		name = FallbackName
	}
	return "qr-code-" + name + ".png"
}

// ExportAsImage reads the rendered surface from the canvas and saves it as PNG. When nothing
// has been rendered yet the export is skipped without error. The returned bool reports
// whether a file was handed to the saver.
func ExportAsImage(canvas *Canvas, name string, saver download.Saver) bool {
	img, ok := canvas.Lookup(SurfaceID)
	if !ok {
		log.Debug("no rendered QR code surface, export skipped")
		return false
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		log.Warnf("could not encode QR code as PNG: %s", err)
		return false
	}
	if err := saver.SaveFile(buf.Bytes(), FileName(name), MimeType); err != nil {
		log.Warnf("could not save QR code image: %s", err)
		return false
	}
	return true
}
