// Package store owns the authoritative contact collection and the
// pending-deletion slot, and exposes the engine operations consumed by the
// presentation layer.
package store

import (
	"context"
	"errors"

	"contactbook/internal/model"
)

// Store errors.
var (
	ErrNotFound       = errors.New("contact not found")
	ErrNothingPending = errors.New("no deletion pending")
	ErrInvalidID      = errors.New("invalid contact ID")
)

// Engine defines the contact collection operations exposed to the
// presentation layer. Validation failures are returned as
// validate.FieldErrors; all other failures are store sentinel errors.
type Engine interface {
	// Add validates the input and creates a new contact with a fresh id.
	Add(ctx context.Context, input model.ContactInput) (*model.Contact, error)

	// Update validates the input and replaces the fields of the contact
	// with the given id, preserving its id and favorite flag.
	Update(ctx context.Context, id string, input model.ContactInput) (*model.Contact, error)

	// ToggleFavorite flips the favorite flag of the contact with the given id.
	ToggleFavorite(ctx context.Context, id string) (*model.Contact, error)

	// RequestDelete moves the contact into the pending-deletion slot and
	// arms the undo timer. A prior pending deletion is discarded for good.
	RequestDelete(ctx context.Context, id string) error

	// UndoDelete restores the pending-deletion contact to the collection.
	UndoDelete(ctx context.Context) (*model.Contact, error)

	// SetSearchText updates the search text used to derive the view.
	SetSearchText(text string)

	// View returns the filtered, sorted sequence derived from the current
	// collection and search text.
	View() []model.Contact
}
