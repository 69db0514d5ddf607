// Package store defines the storage collaborator holding business cards.
package store

import (
	"context"
	"errors"

	"gitlab.com/dirk.krummacker/businesscard-service/internal/model"
)

// ErrNotFound is returned when no card has the requested id.
var ErrNotFound = errors.New("card not found")

// Store keeps cards by id. Get and QueryByOwner may be retried; Put and Delete are executed
// at most once per call.
type Store interface {
	// NewID returns a fresh id for a card about to be created.
	NewID() string
	Get(ctx context.Context, id string) (model.Card, error)
	// Put replaces the whole card, creating it when it does not exist.
	Put(ctx context.Context, card model.Card) error
	Delete(ctx context.Context, id string) error
	QueryByOwner(ctx context.Context, ownerID string) ([]model.Card, error)
}
