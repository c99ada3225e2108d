package buyer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sipertani/sipertani/internal/backend"
	"github.com/sipertani/sipertani/internal/farm"
	"github.com/sipertani/sipertani/internal/pages"
	"github.com/sipertani/sipertani/internal/platform/httpx"
	"github.com/sipertani/sipertani/internal/purchase"
	"github.com/sipertani/sipertani/internal/shared"
)

// Form actions.
const (
	actionCompute = "hitung"
	actionSubmit  = "simpan"
)

const submitScope = "pembelian"

type purchaseView struct {
	Error      string
	SubmitKey  string
	Options    []pages.Option
	Errors     map[string]string
	Quantity   string
	UnitPrice  string
	Total      string
	TotalLabel string
	Harvest    *farm.Harvest
	PlantName  string
}

// Quote is the JSON body of the live price endpoint.
type Quote struct {
	UnitPriceLabel string `json:"unit_price_label"`
	Total          string `json:"total"`
	TotalLabel     string `json:"total_label"`
}

type stock struct {
	env     *pages.Env
	ready   []farm.Harvest
	lookup  *pages.Lookup
	loadErr error
	// catalogErr is set when the harvests failed to load; nothing may be
	// priced or bought then.
	catalogErr error
}

func (h *Handler) loadStock(r *http.Request) *stock {
	env := h.kit.Env(r)
	ctx := r.Context()
	var g errgroup.Group
	plants := pages.Collect(ctx, &g, h.kit, env, backend.PathPlants, farm.SamplePlants)
	harvests := pages.Collect[farm.Harvest](ctx, &g, h.kit, env, backend.PathBuyerCatalog, nil)
	_ = g.Wait()

	err := plants.Err()
	if err == nil {
		err = harvests.Err()
	}
	return &stock{
		env:        env,
		ready:      ReadyHarvests(harvests.Items()),
		lookup:     &pages.Lookup{Plants: plants.Items()},
		loadErr:    err,
		catalogErr: harvests.Err(),
	}
}

func (c *stock) find(id farm.ID) (farm.Harvest, bool) {
	for _, h := range c.ready {
		if h.ID == id {
			return h, true
		}
	}
	return farm.Harvest{}, false
}

func (c *stock) options(selected farm.ID) []pages.Option {
	out := make([]pages.Option, 0, len(c.ready))
	for _, h := range c.ready {
		out = append(out, pages.Option{
			Value: h.ID.String(),
			Label: fmt.Sprintf("%s (kualitas %s) %s/kg, stok %s",
				c.lookup.PlantName(h.PlantID), h.Grade, farm.Rupiah(h.UnitPrice.Float()), farm.Kg(h.Quantity.Float())),
			Selected: h.ID == selected,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// fill applies the posted selection to form and reports field errors the
// form itself cannot detect.
func (c *stock) fill(form *purchase.Form, values url.Values) map[string]string {
	errs := map[string]string{}
	id := farm.ParseID(values.Get(purchase.FieldHarvest))
	if harvest, ok := c.find(id); ok {
		form.SelectHarvest(harvest)
	} else {
		form.ClearHarvest()
		if id != 0 {
			errs[purchase.FieldHarvest] = "Hasil panen tidak tersedia untuk dibeli"
		}
	}
	form.SetQuantity(values.Get(purchase.FieldQuantity))
	return errs
}

func (h *Handler) purchaseView(c *stock, form *purchase.Form, key string, errs map[string]string) purchaseView {
	v := purchaseView{
		SubmitKey: key,
		Errors:    errs,
		Quantity:  form.QuantityText(),
		Total:     form.Total(),
	}
	if c.loadErr != nil {
		v.Error = "Gagal memuat katalog: " + backend.Message(c.loadErr)
	}
	var selected farm.ID
	if harvest, ok := form.Harvest(); ok {
		selected = harvest.ID
		v.Harvest = &harvest
		v.PlantName = c.lookup.PlantName(harvest.PlantID)
		v.UnitPrice = farm.Rupiah(form.UnitPrice()) + "/kg"
	}
	if amount, ok := form.Amount(); ok {
		v.TotalLabel = farm.Rupiah(amount)
	}
	v.Options = c.options(selected)
	return v
}

func (h *Handler) showPurchase(w http.ResponseWriter, r *http.Request) {
	c := h.loadStock(r)
	if c.env.Expired() {
		h.kit.Expire(w, r)
		return
	}
	var form purchase.Form
	c.fill(&form, r.URL.Query())
	h.kit.Render(w, r, http.StatusOK, "pages/purchase.html", "Beli Hasil Panen", h.purchaseView(c, &form, h.guard.Issue(), nil))
}

func (h *Handler) submitPurchase(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	c := h.loadStock(r)
	if c.env.Expired() {
		h.kit.Expire(w, r)
		return
	}
	key := r.PostFormValue("kunci")
	if key == "" {
		key = h.guard.Issue()
	}

	var form purchase.Form
	errs := c.fill(&form, r.PostForm)
	if r.PostFormValue("aksi") != actionSubmit {
		h.kit.Render(w, r, http.StatusOK, "pages/purchase.html", "Beli Hasil Panen", h.purchaseView(c, &form, key, errs))
		return
	}

	if c.catalogErr != nil {
		view := h.purchaseView(c, &form, key, errs)
		view.Error = "Katalog gagal dimuat, pembelian tidak dikirim: " + backend.Message(c.catalogErr)
		h.kit.Render(w, r, http.StatusServiceUnavailable, "pages/purchase.html", "Beli Hasil Panen", view)
		return
	}

	user := c.env.User()
	for field, msg := range form.Validate(user) {
		if _, ok := errs[field]; !ok {
			errs[field] = msg
		}
	}
	if len(errs) > 0 {
		h.kit.Render(w, r, http.StatusUnprocessableEntity, "pages/purchase.html", "Beli Hasil Panen", h.purchaseView(c, &form, key, errs))
		return
	}

	scope := submitScope + ":" + user.ID.String()
	switch err := h.guard.Claim(r.Context(), scope, key); {
	case errors.Is(err, shared.ErrDuplicateSubmit):
		h.kit.Redirect(w, r, Base+"/riwayat", pages.FlashWarning, "Pembelian ini sudah dikirim")
		return
	case err != nil:
		h.logger().Warn("submit guard unavailable", slog.Any("error", err))
	}

	order, err := form.Request(user, h.now())
	if err == nil {
		err = h.create(r.Context(), c.env, order)
	}
	if err == nil {
		h.logger().Info("purchase created",
			slog.String("buyer", user.ID.String()),
			slog.String("harvest", order.HarvestID.String()),
			slog.Float64("total", order.TotalPrice.Float()))
		h.kit.Redirect(w, r, Base+"/riwayat", pages.FlashSuccess, "Pembelian berhasil, total "+farm.Rupiah(order.TotalPrice.Float()))
		return
	}

	if relErr := h.guard.Release(context.WithoutCancel(r.Context()), scope, key); relErr != nil {
		h.logger().Warn("release submit key", slog.Any("error", relErr))
	}
	if c.env.Expired() || backend.IsExpired(err) {
		h.kit.Expire(w, r)
		return
	}
	view := h.purchaseView(c, &form, key, nil)
	view.Error = "Pembelian gagal: " + backend.Message(err)
	h.kit.Render(w, r, http.StatusUnprocessableEntity, "pages/purchase.html", "Beli Hasil Panen", view)
}

func (h *Handler) now() time.Time {
	if h.kit.Now != nil {
		return h.kit.Now()
	}
	return time.Now()
}

func (h *Handler) logger() *slog.Logger {
	if h.kit.Logger != nil {
		return h.kit.Logger
	}
	return slog.Default()
}

// create posts order. The history reloads after the redirect.
func (h *Handler) create(ctx context.Context, env *pages.Env, order farm.Purchase) error {
	_, err := env.Client.Post(ctx, backend.PathBuyerPurchase, order)
	return err
}

func (h *Handler) quote(w http.ResponseWriter, r *http.Request) {
	c := h.loadStock(r)
	if c.env.Expired() {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrUnauthorized, backend.Message(backend.ErrSessionExpired)))
		return
	}
	if c.catalogErr != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrUpstream, backend.Message(c.catalogErr)))
		return
	}
	q := r.URL.Query()
	harvest, ok := c.find(farm.ParseID(q.Get(purchase.FieldHarvest)))
	if !ok {
		httpx.RespondError(w, fmt.Errorf("%w: hasil panen tidak tersedia", httpx.ErrNotFound))
		return
	}
	var form purchase.Form
	form.SelectHarvest(harvest)
	form.SetQuantity(q.Get(purchase.FieldQuantity))

	body := Quote{
		UnitPriceLabel: farm.Rupiah(form.UnitPrice()) + "/kg",
		Total:          form.Total(),
	}
	if amount, ok := form.Amount(); ok {
		body.TotalLabel = farm.Rupiah(amount)
	}
	httpx.JSON(w, http.StatusOK, body)
}
