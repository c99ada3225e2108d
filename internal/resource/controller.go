// Package resource keeps the per-request view state of one backend
// collection: the loaded rows, the loading flag, the last error and the form
// used to create or edit a row.
package resource

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/sipertani/sipertani/internal/backend"
	"github.com/sipertani/sipertani/internal/farm"
)

// ErrSampleRows is returned by mutations while the rows are the fallback
// sample of a failed load.
var ErrSampleRows = errors.New("resource: rows are sample data")

// Controller loads and mutates one collection on behalf of a signed-in user.
// All methods are safe for concurrent use.
type Controller[T farm.Record] struct {
	client     *backend.Client
	listPath   string
	itemPath   string
	createPath string
	fallback   func() []T
	onExpired  func()
	logger     *slog.Logger

	mu       sync.Mutex
	items    []T
	loading  bool
	err      error
	sampled  bool
	detached bool
}

// Option customises a Controller.
type Option[T farm.Record] func(*Controller[T])

// WithItemPath sets the collection used for update and delete when it differs
// from the list path (users are listed per role but edited under /user).
func WithItemPath[T farm.Record](path string) Option[T] {
	return func(c *Controller[T]) { c.itemPath = path }
}

// WithCreatePath sets the endpoint used for create (managers are created
// through registration).
func WithCreatePath[T farm.Record](path string) Option[T] {
	return func(c *Controller[T]) { c.createPath = path }
}

// WithFallback replaces failed loads with sample rows.
func WithFallback[T farm.Record](fn func() []T) Option[T] {
	return func(c *Controller[T]) { c.fallback = fn }
}

// WithOnExpired registers the hook run when the credential is rejected.
func WithOnExpired[T farm.Record](fn func()) Option[T] {
	return func(c *Controller[T]) { c.onExpired = fn }
}

// WithLogger sets the logger used for failed calls.
func WithLogger[T farm.Record](logger *slog.Logger) Option[T] {
	return func(c *Controller[T]) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New constructs a controller for the collection at path.
func New[T farm.Record](client *backend.Client, path string, opts ...Option[T]) *Controller[T] {
	c := &Controller[T]{
		client:     client,
		listPath:   path,
		itemPath:   path,
		createPath: path,
		logger:     slog.Default(),
		items:      []T{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Bind detaches the controller once ctx is done.
func (c *Controller[T]) Bind(ctx context.Context) *Controller[T] {
	context.AfterFunc(ctx, c.Detach)
	return c
}

// Detach makes the controller ignore every result that arrives afterwards.
func (c *Controller[T]) Detach() {
	c.mu.Lock()
	c.detached = true
	c.mu.Unlock()
}

// Load replaces the rows with the current collection. On failure the rows
// become empty (or the fallback sample) and the error is kept for display.
func (c *Controller[T]) Load(ctx context.Context) error {
	c.mu.Lock()
	if c.detached {
		c.mu.Unlock()
		return nil
	}
	c.loading = true
	c.mu.Unlock()

	items, err := backend.List[T](ctx, c.client, c.listPath)

	c.mu.Lock()
	if c.detached {
		c.mu.Unlock()
		return err
	}
	c.loading = false
	c.err = err
	c.sampled = false
	if err != nil {
		items = []T{}
		if c.fallback != nil && !backend.IsExpired(err) {
			items = c.fallback()
			c.sampled = true
		}
	}
	c.items = items
	c.mu.Unlock()

	if err != nil {
		c.fail("load", err)
	}
	return err
}

// Create posts record and reloads the collection. Once the backend accepted
// the record a failed reload only shows up in Err.
func (c *Controller[T]) Create(ctx context.Context, record T) error {
	if _, err := c.client.Post(ctx, c.createPath, record); err != nil {
		c.fail("create", err)
		return err
	}
	_ = c.Load(ctx)
	return nil
}

// Update puts record under its key and reloads the collection. Rows from the
// fallback sample are never sent.
func (c *Controller[T]) Update(ctx context.Context, record T) error {
	if c.Sampled() {
		return ErrSampleRows
	}
	if _, err := c.client.Put(ctx, backend.Item(c.itemPath, record.Key()), record); err != nil {
		c.fail("update", err)
		return err
	}
	_ = c.Load(ctx)
	return nil
}

// Remove deletes the row with id and reloads the collection.
func (c *Controller[T]) Remove(ctx context.Context, id farm.ID) error {
	if c.Sampled() {
		return ErrSampleRows
	}
	if err := c.client.Delete(ctx, backend.Item(c.itemPath, id)); err != nil {
		c.fail("delete", err)
		return err
	}
	_ = c.Load(ctx)
	return nil
}

// Items returns a copy of the loaded rows.
func (c *Controller[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]T{}, c.items...)
}

// Find returns the loaded row with id.
func (c *Controller[T]) Find(id farm.ID) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, item := range c.items {
		if item.Key() == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// FilterBy returns the loaded rows matching keep, in load order.
func (c *Controller[T]) FilterBy(keep func(T) bool) []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, 0, len(c.items))
	for _, item := range c.items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

// Loading reports whether a load is in flight.
func (c *Controller[T]) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Sampled reports whether the rows are the fallback sample of a failed load.
func (c *Controller[T]) Sampled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sampled
}

// Err returns the error of the last load.
func (c *Controller[T]) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Controller[T]) fail(op string, err error) {
	if backend.IsExpired(err) {
		if c.onExpired != nil {
			c.onExpired()
		}
		return
	}
	c.logger.Warn("backend call failed", slog.String("op", op), slog.String("path", c.listPath), slog.Any("error", err))
}
