// Package download provides the file save capability used by the export actions. Each
// platform has its own implementation: an HTTP attachment for the service and a directory
// for the command line client.
package download

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
)

// Saver saves a file for the user.
type Saver interface {
	SaveFile(data []byte, filename string, mimeType string) error
}

// SaverFunc adapts a function to the Saver interface.
type SaverFunc func(data []byte, filename string, mimeType string) error

// SaveFile calls f.
func (f SaverFunc) SaveFile(data []byte, filename string, mimeType string) error {
	return f(data, filename, mimeType)
}

// HTTPSaver answers a gin request with the file as an attachment.
type HTTPSaver struct {
	Context *gin.Context
}

// SaveFile writes the file with a Content-Disposition header. The file name is escaped by
// mime.FormatMediaType, so path separators, quotes and non-ASCII characters are safe.
func (s HTTPSaver) SaveFile(data []byte, filename string, mimeType string) error {
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": filename})
	if disposition == "" {
		// FormatMediaType refuses names it cannot encode.
		disposition = mime.FormatMediaType("attachment", map[string]string{"filename": SafeName(filename)})
	}
	s.Context.Header("Content-Disposition", disposition)
	s.Context.Header("Content-Length", strconv.Itoa(len(data)))
	s.Context.Data(http.StatusOK, mimeType, data)
	return nil
}

// DiskSaver writes files into a directory.
type DiskSaver struct {
	Dir string
}

// SaveFile writes the file into the directory. The mime type is not needed on disk.
func (s DiskSaver) SaveFile(data []byte, filename string, _ string) error {
	path := filepath.Join(s.Dir, SafeName(filename))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("could not save %s: %w", path, err)
	}
	return nil
}

// maxNameLength is the longest file name written to disk, in bytes.
const maxNameLength = 200

// SafeName replaces path separators and control characters and truncates overly long names.
func SafeName(filename string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == ':' || r == '"':
			return '_'
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, filename)
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." {
		name = "download"
	}
	if len(name) > maxNameLength {
		ext := filepath.Ext(name)
		cut := maxNameLength - len(ext)
		for cut > 0 && !utf8RuneStart(name[cut]) {
			cut--
		}
		name = name[:cut] + ext
	}
	return name
}

func utf8RuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
