package resource

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sipertani/sipertani/internal/backend"
	"github.com/sipertani/sipertani/internal/farm"
)

// ErrInvalid is returned by Submit when local validation blocks the request.
var ErrInvalid = errors.New("resource: form has invalid fields")

// Policy decides who owns a record after it is edited by someone else.
type Policy string

const (
	// PolicyPreserve keeps the original owner.
	PolicyPreserve Policy = "preserve"
	// PolicyClaim makes the editor the owner and records a Transfer.
	PolicyClaim Policy = "claim"
)

// ParsePolicy maps a configuration value to a Policy, defaulting to preserve.
func ParsePolicy(value string) Policy {
	if Policy(strings.ToLower(strings.TrimSpace(value))) == PolicyClaim {
		return PolicyClaim
	}
	return PolicyPreserve
}

// Transfer records an ownership change made by an edit.
type Transfer struct {
	ID       string    `json:"id"`
	Entity   string    `json:"entity"`
	RecordID farm.ID   `json:"record_id"`
	From     farm.ID   `json:"from"`
	To       farm.ID   `json:"to"`
	Actor    string    `json:"actor"`
	At       time.Time `json:"at"`
}

// TransferRecorder persists ownership transfers.
type TransferRecorder interface {
	RecordTransfer(ctx context.Context, t Transfer) error
}

// Ownership describes the owner column of an entity.
type Ownership[T farm.Record] struct {
	Entity string
	Get    func(T) farm.ID
	Set    func(*T, farm.ID)
}

// Target is the collection an Editor writes to.
type Target[T farm.Record] interface {
	Create(ctx context.Context, record T) error
	Update(ctx context.Context, record T) error
	Find(id farm.ID) (T, bool)
}

// Editor is the single form used to both create and edit rows.
type Editor[T farm.Record] struct {
	target   Target[T]
	defaults func() T
	validate func(T) map[string]string
	owner    *Ownership[T]
	policy   Policy
	actor    *farm.User
	recorder TransferRecorder
	hints    map[string]string
	logger   *slog.Logger
	now      func() time.Time

	form   T
	open   bool
	err    error
	fields map[string]string
}

// EditorOption customises an Editor.
type EditorOption[T farm.Record] func(*Editor[T])

// WithValidation checks the form before any request is made.
func WithValidation[T farm.Record](fn func(T) map[string]string) EditorOption[T] {
	return func(e *Editor[T]) { e.validate = fn }
}

// WithOwnership stamps new rows with the actor and applies policy on edit.
func WithOwnership[T farm.Record](own Ownership[T], policy Policy, actor *farm.User, recorder TransferRecorder) EditorOption[T] {
	return func(e *Editor[T]) {
		e.owner = &own
		e.policy = policy
		e.actor = actor
		e.recorder = recorder
	}
}

// WithFieldHints maps server messages containing a key to a form field.
func WithFieldHints[T farm.Record](hints map[string]string) EditorOption[T] {
	return func(e *Editor[T]) { e.hints = hints }
}

// WithEditorLogger sets the logger used for transfers.
func WithEditorLogger[T farm.Record](logger *slog.Logger) EditorOption[T] {
	return func(e *Editor[T]) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithEditorClock overrides the clock stamped on transfers.
func WithEditorClock[T farm.Record](now func() time.Time) EditorOption[T] {
	return func(e *Editor[T]) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEditor constructs an editor writing to target. defaults seeds the
// create form.
func NewEditor[T farm.Record](target Target[T], defaults func() T, opts ...EditorOption[T]) *Editor[T] {
	e := &Editor[T]{
		target:   target,
		defaults: defaults,
		policy:   PolicyPreserve,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// OpenCreate opens the form seeded with defaults.
func (e *Editor[T]) OpenCreate() T {
	var form T
	if e.defaults != nil {
		form = e.defaults()
	}
	if e.owner != nil && e.actor != nil {
		e.owner.Set(&form, e.actor.ID)
	}
	e.reset(form)
	return form
}

// OpenEdit opens the form seeded with row, showing the owner the row will
// have once saved.
func (e *Editor[T]) OpenEdit(row T) T {
	form := row
	if e.owner != nil && e.policy == PolicyClaim && e.actor != nil {
		e.owner.Set(&form, e.actor.ID)
	}
	e.reset(form)
	return form
}

// Submit sends the form. A non-zero key updates that row, a zero key creates
// one. On failure the form stays open with input intact.
func (e *Editor[T]) Submit(ctx context.Context, input T) error {
	e.reset(input)

	if e.validate != nil {
		if fields := e.validate(input); len(fields) > 0 {
			e.fields = fields
			e.err = ErrInvalid
			return ErrInvalid
		}
	}

	var transfer *Transfer
	var err error
	if input.Key() == 0 {
		if e.owner != nil && e.actor != nil {
			e.owner.Set(&input, e.actor.ID)
		}
		err = e.target.Create(ctx, input)
	} else {
		transfer = e.applyOwnership(&input)
		err = e.target.Update(ctx, input)
	}
	if err != nil {
		e.form = input
		e.err = err
		e.mapField(err)
		return err
	}

	var zero T
	e.form = zero
	e.open = false
	if transfer != nil {
		e.emit(ctx, *transfer)
	}
	return nil
}

// Form returns the current form values.
func (e *Editor[T]) Form() T { return e.form }

// IsOpen reports whether the form is shown.
func (e *Editor[T]) IsOpen() bool { return e.open }

// Err returns the error of the last submission.
func (e *Editor[T]) Err() error { return e.err }

// FieldErrors returns messages keyed by form field.
func (e *Editor[T]) FieldErrors() map[string]string { return e.fields }

// Close hides the form and discards its values.
func (e *Editor[T]) Close() {
	var zero T
	e.form = zero
	e.open = false
	e.err = nil
	e.fields = nil
}

func (e *Editor[T]) reset(form T) {
	e.form = form
	e.open = true
	e.err = nil
	e.fields = nil
}

func (e *Editor[T]) applyOwnership(input *T) *Transfer {
	if e.owner == nil {
		return nil
	}
	original, found := e.target.Find((*input).Key())
	if e.policy != PolicyClaim || e.actor == nil {
		if found {
			e.owner.Set(input, e.owner.Get(original))
		}
		return nil
	}
	e.owner.Set(input, e.actor.ID)
	if !found || e.owner.Get(original) == e.actor.ID {
		return nil
	}
	return &Transfer{
		ID:       uuid.NewString(),
		Entity:   e.owner.Entity,
		RecordID: (*input).Key(),
		From:     e.owner.Get(original),
		To:       e.actor.ID,
		Actor:    e.actor.Username,
		At:       e.now().UTC(),
	}
}

func (e *Editor[T]) emit(ctx context.Context, t Transfer) {
	e.logger.Info("ownership transferred",
		slog.String("entity", t.Entity),
		slog.Int64("record_id", int64(t.RecordID)),
		slog.Int64("from", int64(t.From)),
		slog.Int64("to", int64(t.To)),
		slog.String("actor", t.Actor),
	)
	if e.recorder == nil {
		return
	}
	if err := e.recorder.RecordTransfer(ctx, t); err != nil {
		e.logger.Error("record ownership transfer", slog.String("id", t.ID), slog.Any("error", err))
	}
}

func (e *Editor[T]) mapField(err error) {
	var apiErr *backend.APIError
	if !errors.As(err, &apiErr) {
		return
	}
	for needle, field := range e.hints {
		if apiErr.Contains(needle) {
			e.fields = map[string]string{field: apiErr.Message}
			return
		}
	}
}
