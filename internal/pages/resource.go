package pages

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/sipertani/sipertani/internal/analytics/export"
	"github.com/sipertani/sipertani/internal/backend"
	"github.com/sipertani/sipertani/internal/farm"
	"github.com/sipertani/sipertani/internal/resource"
)

// Column is one table column.
type Column[T any] struct {
	Header string
	Cell   func(T, *Lookup) string
	// Badge returns the pill class of the cell, empty for plain text.
	Badge func(T) string
}

// Stat is one stat card.
type Stat struct {
	Label string
	Value string
	Hint  string
}

// Link is a row action rendered as an anchor.
type Link struct {
	Label string
	Href  string
}

// Resource configures a page over one backend collection.
type Resource[T farm.Record] struct {
	Title    string
	Singular string
	// Base is the console path the page is mounted at.
	Base string
	// API is the list endpoint; ItemAPI and CreateAPI default to it.
	API       string
	ItemAPI   string
	CreateAPI string
	Lookups   LookupSpec

	Columns []Column[T]
	Fields  []Field

	New    func(now time.Time) T
	Values func(T) map[string]string
	Bind   func(form url.Values, base T) (T, map[string]string)
	// Scope narrows the loaded rows to what the user may see.
	Scope     func(items []T, user *farm.User, lookup *Lookup) []T
	Ownership *resource.Ownership[T]
	Hints     map[string]string

	Summary func(items []T, lookup *Lookup) []Stat
	Chart   func(items []T, lookup *Lookup) template.HTML
	Links   func(T) []Link
	Export  func(items []T, lookup *Lookup) export.Table

	// ExportMiddleware wraps the export route, e.g. with a rate limit.
	ExportMiddleware []func(http.Handler) http.Handler

	// Toggle flips the row status; ToggleLabel names the action, empty to
	// hide it for a row.
	Toggle      func(ctx context.Context, target resource.Target[T], id farm.ID, confirmed bool) (string, error)
	ToggleLabel func(T) string

	Fallback func() []T

	CanCreate bool
	CanEdit   bool
	CanDelete bool
}

// SampledMessage is flashed when a change is refused because the page shows
// sample rows after a failed load.
const SampledMessage = "Data gagal dimuat, perubahan tidak dikirim"

// Page serves a Resource.
type Page[T farm.Record] struct {
	kit *Kit
	res *Resource[T]
}

// New constructs a Page.
func New[T farm.Record](kit *Kit, res *Resource[T]) *Page[T] {
	return &Page[T]{kit: kit, res: res}
}

// MountRoutes registers the page routes relative to the page base.
func (p *Page[T]) MountRoutes(r chi.Router) {
	r.Get("/", p.list)
	if p.res.CanCreate || p.res.CanEdit {
		r.Post("/", p.save)
	}
	if p.res.CanDelete {
		r.Post("/{id}/hapus", p.remove)
	}
	if p.res.Toggle != nil {
		r.Post("/{id}/status", p.toggle)
	}
	if p.res.Export != nil {
		r.With(p.res.ExportMiddleware...).Get("/ekspor.{format}", p.export)
	}
}

type loaded[T farm.Record] struct {
	env    *Env
	ctrl   *resource.Controller[T]
	lookup *Lookup
	items  []T
}

// load fetches the collection and its lookups in parallel, then scopes the
// rows. It reports false after redirecting an expired session.
func (p *Page[T]) load(w http.ResponseWriter, r *http.Request) (*loaded[T], bool) {
	env := p.kit.Env(r)
	ctx := r.Context()

	opts := []resource.Option[T]{
		resource.WithOnExpired[T](env.Expire),
		resource.WithLogger[T](p.kit.logger()),
	}
	if p.res.ItemAPI != "" {
		opts = append(opts, resource.WithItemPath[T](p.res.ItemAPI))
	}
	if p.res.CreateAPI != "" {
		opts = append(opts, resource.WithCreatePath[T](p.res.CreateAPI))
	}
	if p.kit.Fallback && p.res.Fallback != nil {
		opts = append(opts, resource.WithFallback(p.res.Fallback))
	}
	ctrl := resource.New[T](env.Client, p.res.API, opts...).Bind(ctx)

	lookup := &Lookup{}
	var g errgroup.Group
	g.Go(func() error {
		_ = ctrl.Load(ctx)
		return nil
	})
	finish := p.res.Lookups.load(ctx, &g, p.kit, env, lookup)
	_ = g.Wait()
	finish()

	if env.Expired() {
		p.kit.Expire(w, r)
		return nil, false
	}
	items := ctrl.Items()
	if p.res.Scope != nil {
		items = p.res.Scope(items, env.User(), lookup)
	}
	return &loaded[T]{env: env, ctrl: ctrl, lookup: lookup, items: items}, true
}

// sampled reports whether any row on the page is fallback sample data.
func (l *loaded[T]) sampled() bool {
	return l.ctrl.Sampled() || l.lookup.sampled
}

// refuseSampled redirects with an error when the page shows sample rows,
// which must never reach the backend.
func (p *Page[T]) refuseSampled(w http.ResponseWriter, r *http.Request, l *loaded[T]) bool {
	if !l.sampled() {
		return false
	}
	p.kit.Redirect(w, r, p.res.Base, FlashError, SampledMessage)
	return true
}

func (l *loaded[T]) find(id farm.ID) (T, bool) {
	for _, item := range l.items {
		if item.Key() == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// scopedTarget restricts lookups of the editor to the visible rows.
type scopedTarget[T farm.Record] struct {
	*resource.Controller[T]
	rows *loaded[T]
}

func (s scopedTarget[T]) Find(id farm.ID) (T, bool) {
	return s.rows.find(id)
}

func (p *Page[T]) editor(l *loaded[T], validate func(T) map[string]string) *resource.Editor[T] {
	opts := []resource.EditorOption[T]{
		resource.WithEditorLogger[T](p.kit.logger()),
		resource.WithEditorClock[T](p.kit.now),
	}
	if validate != nil {
		opts = append(opts, resource.WithValidation(validate))
	}
	if p.res.Hints != nil {
		opts = append(opts, resource.WithFieldHints[T](p.res.Hints))
	}
	if p.res.Ownership != nil {
		opts = append(opts, resource.WithOwnership(*p.res.Ownership, p.kit.Policy, l.env.User(), p.kit.Recorder))
	}
	defaults := func() T { return p.res.New(p.kit.now()) }
	return resource.NewEditor[T](scopedTarget[T]{Controller: l.ctrl, rows: l}, defaults, opts...)
}

func (p *Page[T]) list(w http.ResponseWriter, r *http.Request) {
	l, ok := p.load(w, r)
	if !ok {
		return
	}
	editor := p.editor(l, nil)
	q := r.URL.Query()
	if id := farm.ParseID(q.Get("edit")); id != 0 && p.res.CanEdit {
		row, found := l.find(id)
		if !found {
			p.kit.Redirect(w, r, p.res.Base, FlashWarning, "Data tidak ditemukan")
			return
		}
		editor.OpenEdit(row)
	} else if q.Get("baru") != "" && p.res.CanCreate {
		editor.OpenCreate()
	}

	var form *FormView
	if editor.IsOpen() {
		record := editor.Form()
		form = p.formView(record.Key(), p.res.Values(record), nil, "", l.lookup)
	}
	p.kit.Render(w, r, http.StatusOK, "pages/resource.html", p.res.Title, p.view(l, form))
}

func (p *Page[T]) save(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	l, ok := p.load(w, r)
	if !ok || p.refuseSampled(w, r, l) {
		return
	}

	id := farm.ParseID(r.PostFormValue("id"))
	base := p.res.New(p.kit.now())
	switch {
	case id != 0:
		row, found := l.find(id)
		if !found || !p.res.CanEdit {
			p.kit.Redirect(w, r, p.res.Base, FlashWarning, "Data tidak ditemukan")
			return
		}
		base = row
	case !p.res.CanCreate:
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	record, parseErrs := p.res.Bind(r.PostForm, base)
	editor := p.editor(l, func(T) map[string]string { return parseErrs })
	err := editor.Submit(r.Context(), record)
	switch {
	case err == nil:
		p.kit.Redirect(w, r, p.res.Base, FlashSuccess, p.res.Singular+" berhasil disimpan")
		return
	case l.env.Expired() || backend.IsExpired(err):
		p.kit.Expire(w, r)
		return
	}

	message := ""
	if !errors.Is(err, resource.ErrInvalid) {
		message = backend.Message(err)
	}
	form := p.formView(id, flatten(r.PostForm), editor.FieldErrors(), message, l.lookup)
	p.kit.Render(w, r, http.StatusUnprocessableEntity, "pages/resource.html", p.res.Title, p.view(l, form))
}

func (p *Page[T]) remove(w http.ResponseWriter, r *http.Request) {
	l, ok := p.load(w, r)
	if !ok || p.refuseSampled(w, r, l) {
		return
	}
	id := farm.ParseID(chi.URLParam(r, "id"))
	if _, found := l.find(id); !found {
		p.kit.Redirect(w, r, p.res.Base, FlashWarning, "Data tidak ditemukan")
		return
	}
	err := l.ctrl.Remove(r.Context(), id)
	switch {
	case err == nil:
		p.kit.Redirect(w, r, p.res.Base, FlashSuccess, p.res.Singular+" berhasil dihapus")
	case l.env.Expired() || backend.IsExpired(err):
		p.kit.Expire(w, r)
	default:
		p.kit.Redirect(w, r, p.res.Base, FlashError, "Gagal menghapus: "+backend.Message(err))
	}
}

func (p *Page[T]) toggle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	l, ok := p.load(w, r)
	if !ok || p.refuseSampled(w, r, l) {
		return
	}
	id := farm.ParseID(chi.URLParam(r, "id"))
	confirmed := r.PostFormValue("konfirmasi") == "ya"
	label, err := p.res.Toggle(r.Context(), scopedTarget[T]{Controller: l.ctrl, rows: l}, id, confirmed)
	switch {
	case err == nil:
		p.kit.Redirect(w, r, p.res.Base, FlashSuccess, "Status diubah menjadi "+label)
	case errors.Is(err, resource.ErrNotConfirmed):
		p.kit.Redirect(w, r, p.res.Base, FlashWarning, "Centang konfirmasi sebelum mengubah status")
	case errors.Is(err, resource.ErrNotFound):
		p.kit.Redirect(w, r, p.res.Base, FlashWarning, "Data tidak ditemukan")
	case l.env.Expired() || backend.IsExpired(err):
		p.kit.Expire(w, r)
	default:
		p.kit.Redirect(w, r, p.res.Base, FlashError, "Gagal mengubah status: "+backend.Message(err))
	}
}

func (p *Page[T]) export(w http.ResponseWriter, r *http.Request) {
	l, ok := p.load(w, r)
	if !ok {
		return
	}
	table := p.res.Export(l.items, l.lookup)
	name := strings.ReplaceAll(strings.ToLower(table.Sheet), " ", "-") + "-" + p.kit.now().Format("20060102")
	var err error
	switch chi.URLParam(r, "format") {
	case "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="`+name+`.csv"`)
		err = export.WriteCSV(w, table)
	case "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="`+name+`.xlsx"`)
		err = export.WriteXLSX(w, table)
	default:
		http.NotFound(w, r)
		return
	}
	if err != nil {
		p.kit.logger().Error("export", slog.String("page", p.res.Base), slog.Any("error", err))
	}
}
