// Package link derives the canonical view URL of a card.
package link

import (
	"errors"
	"net/http"
	"strings"
)

// PathPrefix is the path under which recipients view a card. Printed codes and written tags
// depend on it, so it must not change.
const PathPrefix = "/card/"

// ErrEmptyID is returned when a link is requested for an empty card id.
var ErrEmptyID = errors.New("card id must not be empty")

// OriginSource yields the origin of the current deployment, e.g. "https://example.com".
type OriginSource interface {
	Origin() string
}

// Static is an origin fixed by configuration.
type Static string

// Origin returns the configured origin.
func (s Static) Origin() string {
	return string(s)
}

// RequestOrigin derives the origin from an incoming request. X-Forwarded-Proto and
// X-Forwarded-Host are only honoured with TrustProxy set, since any client can send them.
type RequestOrigin struct {
	Request    *http.Request
	TrustProxy bool
}

// Origin returns scheme and host of the request.
func (o RequestOrigin) Origin() string {
	r := o.Request
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	host := r.Host
	if o.TrustProxy {
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
		}
		if fwd := r.Header.Get("X-Forwarded-Host"); fwd != "" {
			host = strings.TrimSpace(strings.Split(fwd, ",")[0])
		}
	}
	return scheme + "://" + host
}

// Resolver builds canonical view URLs. The origin is read again on every call.
type Resolver struct {
	origin OriginSource
}

// NewResolver returns a resolver reading its origin from src.
func NewResolver(src OriginSource) *Resolver {
	return &Resolver{origin: src}
}

// Resolve returns origin + "/card/" + id.
func (r *Resolver) Resolve(id string) (string, error) {
	if id == "" {
		return "", ErrEmptyID
	}
	return strings.TrimRight(r.origin.Origin(), "/") + PathPrefix + id, nil
}
