// Package nfc writes canonical card links to NFC tags when the host has a tag writer.
package nfc

import (
	"context"
	"errors"
	"sync"

	log "github.com/sirupsen/logrus"
)

// ErrUnsupported is returned by Write when the host exposes no NFC writer.
var ErrUnsupported = errors.New("NFC is not supported on this device")

// Driver programs a tag with an NDEF message.
type Driver interface {
	WriteNDEF(ctx context.Context, message []byte) error
}

// State of a Writer.
type State int

const (
	// Unsupported means the host has no NFC writer. It never changes.
	Unsupported State = iota
	// Idle means no write is in flight.
	Idle
	// Writing means a write is in flight.
	Writing
)

func (s State) String() string {
	switch s {
	case Unsupported:
		return "unsupported"
	case Idle:
		return "idle"
	case Writing:
		return "writing"
	}
	return "unknown"
}

// WriteError is a failed tag write. Its message is meant for the user.
type WriteError struct {
	Message string
	Err     error
}

func (e *WriteError) Error() string {
	return e.Message
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Writer programs tags with URL records.
//
// Write requests are not queued. A second Write while one is in flight goes straight to the
// driver, and the state returns to Idle as soon as either of them finishes.
type Writer struct {
	driver Driver

	mu      sync.Mutex
	state   State
	lastErr error
}

// NewWriter detects the capability once: a nil driver makes the writer Unsupported for its
// whole lifetime.
func NewWriter(driver Driver) *Writer {
	w := &Writer{driver: driver, state: Unsupported}
	if driver != nil {
		w.state = Idle
	}
	return w
}

// Supported reports whether the host can write tags.
func (w *Writer) Supported() bool {
	return w.State() != Unsupported
}

// State returns the current state.
func (w *Writer) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// LastError returns the error of the most recent failed write, or nil.
func (w *Writer) LastError() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastErr
}

// Write programs a tag with a single URL record carrying url. Driver failures come back as a
// *WriteError; the writer is Idle again afterwards.
func (w *Writer) Write(ctx context.Context, url string) error {
	w.mu.Lock()
	if w.state == Unsupported {
		defer w.mu.Unlock()
		w.lastErr = &WriteError{Message: ErrUnsupported.Error(), Err: ErrUnsupported}
		return w.lastErr
	}
	w.state = Writing
	w.mu.Unlock()

	err := w.driver.WriteNDEF(ctx, URIRecord(url))

	w.mu.Lock()
	defer w.mu.Unlock()
	w.state = Idle
	if err != nil {
		log.Warnf("NFC write of %s failed: %s", url, err)
		w.lastErr = &WriteError{
			Message: "Could not write the NFC tag. Make sure NFC is enabled.",
			Err:     err,
		}
		return w.lastErr
	}
	w.lastErr = nil
	return nil
}
