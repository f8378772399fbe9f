package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"contactbook/internal/model"
	"contactbook/internal/notify"
	"contactbook/internal/validate"
	"contactbook/internal/view"
)

// Compile-time check that Directory implements Engine.
var _ Engine = (*Directory)(nil)

// undoTimerKey identifies the single delete-undo timer. Scheduling it again
// replaces the previous window, matching the single-slot pending deletion.
const undoTimerKey = "delete-undo"

// pendingDelete holds a soft-deleted contact awaiting undo-window expiry.
type pendingDelete struct {
	contact    model.Contact
	deadline   time.Time
	generation uint64
}

// Directory implements Engine with an in-memory collection. All state is
// guarded by a single mutex so mutations never interleave; the undo timer
// callback takes the same mutex, which together with the generation counter
// makes undo-versus-expiry a true race-free cancellation.
type Directory struct {
	logger          *zap.Logger
	scheduler       *notify.Scheduler
	hub             *notify.Hub
	undoWindow      time.Duration
	notificationTTL time.Duration

	mu         sync.Mutex
	active     []model.Contact // insertion order, newest first
	pending    *pendingDelete
	generation uint64
	searchText string
}

// NewDirectory creates a Directory seeded with the given contacts. Seed
// records are external input and are not re-validated; records lacking an id
// are assigned one, and the favorite flag defaults to false when absent.
func NewDirectory(
	scheduler *notify.Scheduler,
	hub *notify.Hub,
	logger *zap.Logger,
	undoWindow time.Duration,
	notificationTTL time.Duration,
	seed []model.Contact,
) *Directory {
	active := make([]model.Contact, 0, len(seed))
	for _, c := range seed {
		if c.ID == "" {
			c.ID = uuid.New().String()
		}
		active = append(active, c)
	}

	contactsActive.Set(float64(len(active)))
	deletesPending.Set(0)

	return &Directory{
		logger:          logger,
		scheduler:       scheduler,
		hub:             hub,
		undoWindow:      undoWindow,
		notificationTTL: notificationTTL,
		active:          active,
	}
}

// Add validates the input and prepends a new contact to the collection.
func (d *Directory) Add(ctx context.Context, input model.ContactInput) (*model.Contact, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("add contact: %w", ctx.Err())
	default:
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if errs := validate.Contact(input, d.active, ""); errs != nil {
		operationsTotal.WithLabelValues("add", "invalid").Inc()
		return nil, errs
	}

	contact := model.Contact{
		ID:       uuid.New().String(),
		Name:     input.Name,
		Email:    input.Email,
		Phone:    input.Phone,
		Location: input.Location,
		Address:  input.Address,
		Birthday: input.Birthday,
	}

	d.active = append([]model.Contact{contact}, d.active...)

	contactsActive.Inc()
	operationsTotal.WithLabelValues("add", "ok").Inc()
	d.logger.Info("contact added", zap.String("id", contact.ID))
	d.hub.Publish(model.EventContactCreated,
		fmt.Sprintf("Contact %q added", contact.Name), d.notificationTTL)

	return &contact, nil
}

// Update replaces the editable fields of an existing contact. The id and
// favorite flag are carried over from the stored record.
func (d *Directory) Update(ctx context.Context, id string, input model.ContactInput) (*model.Contact, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("update contact: %w", ctx.Err())
	default:
	}

	if id == "" {
		return nil, ErrInvalidID
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	idx := d.indexOf(id)
	if idx < 0 {
		operationsTotal.WithLabelValues("update", "not_found").Inc()
		return nil, ErrNotFound
	}

	if errs := validate.Contact(input, d.active, id); errs != nil {
		operationsTotal.WithLabelValues("update", "invalid").Inc()
		return nil, errs
	}

	updated := model.Contact{
		ID:         id,
		Name:       input.Name,
		Email:      input.Email,
		Phone:      input.Phone,
		Location:   input.Location,
		Address:    input.Address,
		Birthday:   input.Birthday,
		IsFavorite: d.active[idx].IsFavorite,
	}

	d.active[idx] = updated

	operationsTotal.WithLabelValues("update", "ok").Inc()
	d.logger.Info("contact updated", zap.String("id", id))
	d.hub.Publish(model.EventContactUpdated,
		fmt.Sprintf("Contact %q updated", updated.Name), d.notificationTTL)

	return &updated, nil
}

// ToggleFavorite flips the favorite flag of the contact with the given id.
// Applying it twice nets to a no-op.
func (d *Directory) ToggleFavorite(ctx context.Context, id string) (*model.Contact, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("toggle favorite: %w", ctx.Err())
	default:
	}

	if id == "" {
		return nil, ErrInvalidID
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	idx := d.indexOf(id)
	if idx < 0 {
		operationsTotal.WithLabelValues("toggle_favorite", "not_found").Inc()
		return nil, ErrNotFound
	}

	d.active[idx].IsFavorite = !d.active[idx].IsFavorite
	contact := d.active[idx]

	operationsTotal.WithLabelValues("toggle_favorite", "ok").Inc()
	d.logger.Info("favorite toggled",
		zap.String("id", id),
		zap.Bool("is_favorite", contact.IsFavorite),
	)
	d.hub.Publish(model.EventFavoriteToggled,
		fmt.Sprintf("Contact %q favorite set to %t", contact.Name, contact.IsFavorite),
		d.notificationTTL)

	return &contact, nil
}

// RequestDelete moves a contact into the pending-deletion slot and arms the
// undo timer. Only one pending deletion exists at a time: a prior occupant
// and its timer are discarded irrevocably.
func (d *Directory) RequestDelete(ctx context.Context, id string) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("request delete: %w", ctx.Err())
	default:
	}

	if id == "" {
		return ErrInvalidID
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	idx := d.indexOf(id)
	if idx < 0 {
		operationsTotal.WithLabelValues("request_delete", "not_found").Inc()
		return ErrNotFound
	}

	if d.pending != nil {
		d.logger.Info("pending deletion superseded",
			zap.String("discarded_id", d.pending.contact.ID))
	}

	contact := d.active[idx]
	d.active = append(d.active[:idx], d.active[idx+1:]...)

	d.generation++
	gen := d.generation
	d.pending = &pendingDelete{
		contact:    contact,
		deadline:   time.Now().UTC().Add(d.undoWindow),
		generation: gen,
	}

	// Re-scheduling the shared key cancels any previous undo window.
	d.scheduler.Schedule(undoTimerKey, d.undoWindow, func() {
		d.finalizeDelete(gen)
	})

	contactsActive.Dec()
	deletesPending.Set(1)
	operationsTotal.WithLabelValues("request_delete", "ok").Inc()
	d.logger.Info("contact deletion pending",
		zap.String("id", id),
		zap.Duration("undo_window", d.undoWindow),
	)
	d.hub.PublishUntil(model.EventContactDeleted,
		fmt.Sprintf("Contact %q deleted", contact.Name), d.pending.deadline)

	return nil
}

// UndoDelete restores the pending-deletion contact, appending it to the
// collection (its original position is not recovered), and cancels the undo
// timer so expiry can no longer fire for it.
func (d *Directory) UndoDelete(ctx context.Context) (*model.Contact, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("undo delete: %w", ctx.Err())
	default:
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pending == nil {
		operationsTotal.WithLabelValues("undo_delete", "nothing_pending").Inc()
		return nil, ErrNothingPending
	}

	d.scheduler.Cancel(undoTimerKey)

	contact := d.pending.contact
	d.active = append(d.active, contact)
	d.pending = nil

	contactsActive.Inc()
	deletesPending.Set(0)
	operationsTotal.WithLabelValues("undo_delete", "ok").Inc()
	d.logger.Info("contact deletion undone", zap.String("id", contact.ID))
	d.hub.Publish(model.EventDeleteUndone,
		fmt.Sprintf("Contact %q restored", contact.Name), d.notificationTTL)

	return &contact, nil
}

// finalizeDelete discards the pending contact once its undo window elapsed.
// A stale generation means the slot was undone or superseded after this
// timer was armed, so the callback does nothing.
func (d *Directory) finalizeDelete(generation uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pending == nil || d.pending.generation != generation {
		return
	}

	id := d.pending.contact.ID
	d.pending = nil

	deletesPending.Set(0)
	operationsTotal.WithLabelValues("finalize_delete", "ok").Inc()
	d.logger.Info("contact deletion finalized", zap.String("id", id))
}

// SetSearchText updates the search text used to derive the view.
func (d *Directory) SetSearchText(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.searchText = text
}

// View derives the displayed sequence from the current collection and
// search text. It is recomputed in full on every call.
func (d *Directory) View() []model.Contact {
	d.mu.Lock()
	defer d.mu.Unlock()

	return view.Derive(d.active, d.searchText)
}

// indexOf returns the position of the contact with the given id in the
// active collection, or -1 when absent. Callers must hold d.mu.
func (d *Directory) indexOf(id string) int {
	for i, c := range d.active {
		if c.ID == id {
			return i
		}
	}
	return -1
}
