// Package share sends a card link through the best channel the host offers: the platform
// share sheet first, the clipboard second.
package share

import (
	"context"
	"errors"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"gitlab.com/dirk.krummacker/businesscard-service/internal/model"
)

// ErrCancelled is returned by a Native implementation when the user dismisses the share sheet.
var ErrCancelled = errors.New("share cancelled by user")

const (
	// Description accompanies the link in the share sheet.
	Description = "Here is my digital business card"
	// CopiedDelay is how long the copied indicator stays on.
	CopiedDelay = 2000 * time.Millisecond
)

// Payload is what the share sheet receives.
type Payload struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	URL   string `json:"url"`
}

// NewPayload returns the share payload for a card and its canonical link.
func NewPayload(card model.Card, url string) Payload {
	return Payload{Title: card.ShareTitle(), Text: Description, URL: url}
}

// Native is the platform share sheet.
type Native interface {
	// Available is asked on every share, the capability may come and go.
	Available() bool
	Share(ctx context.Context, payload Payload) error
}

// Clipboard is the system clipboard.
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}

// Outcome of a share action.
type Outcome int

const (
	// Shared means the share sheet completed.
	Shared Outcome = iota
	// Cancelled means the user dismissed the share sheet. It is not an error.
	Cancelled
	// Copied means the link is on the clipboard.
	Copied
	// Failed means no channel worked.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Shared:
		return "shared"
	case Cancelled:
		return "cancelled"
	case Copied:
		return "copied"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Result of a share action. Message is set for Failed and is meant for the user.
type Result struct {
	Outcome Outcome
	Message string
}

// Indicator is the transient "copied" flag. It switches itself off after its delay.
type Indicator struct {
	delay    time.Duration
	onChange func(bool)

	mu     sync.Mutex
	on     bool
	timer  *time.Timer
	serial int
}

// NewIndicator returns an indicator reverting after CopiedDelay. onChange may be nil; it is
// called with every new value.
func NewIndicator(onChange func(bool)) *Indicator {
	return newIndicator(CopiedDelay, onChange)
}

func newIndicator(delay time.Duration, onChange func(bool)) *Indicator {
	return &Indicator{delay: delay, onChange: onChange}
}

// Flash switches the indicator on and schedules it off. Flashing again restarts the delay.
func (i *Indicator) Flash() {
	i.mu.Lock()
	if i.timer != nil {
		i.timer.Stop()
	}
	i.on = true
	i.serial++
	serial := i.serial
	i.timer = time.AfterFunc(i.delay, func() { i.revert(serial) })
	i.mu.Unlock()
	i.notify(true)
}

func (i *Indicator) revert(serial int) {
	i.mu.Lock()
	if serial != i.serial {
		i.mu.Unlock()
		return
	}
	i.on = false
	i.timer = nil
	i.mu.Unlock()
	i.notify(false)
}

func (i *Indicator) notify(on bool) {
	if i.onChange != nil {
		i.onChange(on)
	}
}

// Copied reports whether the indicator is on.
func (i *Indicator) Copied() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.on
}

// Dispatcher picks the share channel. Native may be nil when the host has no share sheet.
type Dispatcher struct {
	Native    Native
	Clipboard Clipboard
	Indicator *Indicator
}

// NewDispatcher returns a dispatcher with a fresh indicator.
func NewDispatcher(native Native, clipboard Clipboard) *Dispatcher {
	return &Dispatcher{Native: native, Clipboard: clipboard, Indicator: NewIndicator(nil)}
}

// Share offers the link through the share sheet. A dismissed sheet counts as done. Without a
// share sheet, or when it fails, the link is copied instead.
func (d *Dispatcher) Share(ctx context.Context, card model.Card, url string) Result {
	if d.Native != nil && d.Native.Available() {
		err := d.Native.Share(ctx, NewPayload(card, url))
		switch {
		case err == nil:
			return Result{Outcome: Shared}
		case errors.Is(err, ErrCancelled):
			return Result{Outcome: Cancelled}
		default:
			log.Warnf("share sheet failed, copying link instead: %s", err)
		}
	}
	return d.CopyLink(ctx, url)
}

// CopyLink puts the link on the clipboard and flashes the indicator.
func (d *Dispatcher) CopyLink(ctx context.Context, url string) Result {
	if d.Clipboard == nil {
		return Result{Outcome: Failed, Message: "No clipboard available on this device."}
	}
	if err := d.Clipboard.WriteText(ctx, url); err != nil {
		log.Warnf("could not copy link to clipboard: %s", err)
		return Result{Outcome: Failed, Message: "Could not copy the link."}
	}
	if d.Indicator != nil {
		d.Indicator.Flash()
	}
	return Result{Outcome: Copied}
}
