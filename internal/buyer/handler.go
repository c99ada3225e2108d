// Package buyer serves the buyer console: the catalogue of harvests ready to
// sell, the purchase form and the buyer's own purchase history.
package buyer

import (
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"golang.org/x/sync/errgroup"

	"github.com/sipertani/sipertani/internal/analytics"
	"github.com/sipertani/sipertani/internal/analytics/export"
	"github.com/sipertani/sipertani/internal/analytics/svg"
	"github.com/sipertani/sipertani/internal/backend"
	"github.com/sipertani/sipertani/internal/farm"
	"github.com/sipertani/sipertani/internal/pages"
	"github.com/sipertani/sipertani/internal/rbac"
	"github.com/sipertani/sipertani/internal/resource"
	"github.com/sipertani/sipertani/internal/shared"
)

// Base is the mount point of the buyer console.
const Base = "/pembeli"

// Export limits per user.
const (
	exportLimit  = 10
	exportWindow = time.Minute
)

// Handler wires the buyer pages.
type Handler struct {
	kit   *pages.Kit
	rbac  rbac.Middleware
	guard *shared.SubmitGuard
	pdf   export.Renderer
}

// NewHandler builds Handler instance. A nil pdf renderer serves receipts as
// HTML.
func NewHandler(kit *pages.Kit, rbac rbac.Middleware, guard *shared.SubmitGuard, pdf export.Renderer) *Handler {
	return &Handler{kit: kit, rbac: rbac, guard: guard, pdf: pdf}
}

// MountRoutes registers buyer routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(h.rbac.RequireRole(farm.RoleBuyer))
	r.Get("/", h.dashboard)
	r.Route("/katalog", pages.New(h.kit, catalogue(h.kit)).MountRoutes)
	r.Get("/beli", h.showPurchase)
	r.Post("/beli", h.submitPurchase)
	r.Get("/beli/harga", h.quote)
	r.Route("/riwayat", func(r chi.Router) {
		pages.New(h.kit, history(h.kit)).MountRoutes(r)
		r.Get("/{id}/struk", h.receipt)
	})
}

// ReadyHarvests keeps the harvests a buyer may purchase.
func ReadyHarvests(items []farm.Harvest) []farm.Harvest {
	out := make([]farm.Harvest, 0, len(items))
	for _, h := range items {
		if h.Status == farm.HarvestReady && h.Quantity > 0 {
			out = append(out, h)
		}
	}
	return out
}

func catalogue(kit *pages.Kit) *pages.Resource[farm.Harvest] {
	res := pages.Harvests(kit, Base+"/katalog", backend.PathBuyerCatalog, pages.LookupSpec{
		Plants: backend.PathPlants,
		Plots:  backend.PathPlots,
	})
	res.Title = "Katalog Hasil Panen"
	res.Ownership = nil
	res.Toggle = nil
	res.ToggleLabel = nil
	res.Export = nil
	res.Chart = nil
	res.CanCreate = false
	res.CanEdit = false
	res.CanDelete = false
	res.Scope = func(items []farm.Harvest, _ *farm.User, _ *pages.Lookup) []farm.Harvest {
		return ReadyHarvests(items)
	}
	res.Summary = func(items []farm.Harvest, _ *pages.Lookup) []pages.Stat {
		s := analytics.SummariseHarvests(items)
		return []pages.Stat{
			{Label: "Produk tersedia", Value: farm.Decimal(float64(s.Count))},
			{Label: "Stok siap jual", Value: farm.Kg(s.ReadyKg)},
		}
	}
	res.Links = func(h farm.Harvest) []pages.Link {
		return []pages.Link{{Label: "Beli", Href: Base + "/beli?id_hasil=" + h.ID.String()}}
	}
	return res
}

func history(kit *pages.Kit) *pages.Resource[farm.Purchase] {
	res := pages.Purchases(kit, Base+"/riwayat", backend.PathBuyerPurchase, pages.LookupSpec{
		Plants: backend.PathPlants,
		Plots:  backend.PathPlots,
	})
	res.Title = "Riwayat Pembelian"
	res.CanEdit = false
	res.CanDelete = false
	res.Scope = func(items []farm.Purchase, user *farm.User, _ *pages.Lookup) []farm.Purchase {
		return resource.OwnedBy(items, resource.PurchaseBuyer, user)
	}
	res.Summary = func(items []farm.Purchase, _ *pages.Lookup) []pages.Stat {
		s := analytics.SummarisePurchases(items)
		return []pages.Stat{
			{Label: "Transaksi", Value: farm.Decimal(float64(s.Count))},
			{Label: "Total belanja", Value: farm.Rupiah(s.Total)},
			{Label: "Rata-rata belanja", Value: farm.Rupiah(s.Average)},
		}
	}
	res.Links = func(p farm.Purchase) []pages.Link {
		return []pages.Link{{Label: "Struk", Href: Base + "/riwayat/" + p.ID.String() + "/struk"}}
	}
	res.ExportMiddleware = []func(http.Handler) http.Handler{
		httprate.Limit(exportLimit, exportWindow, httprate.WithKeyFuncs(userKey)),
	}
	return res
}

// userKey rate-limits by signed-in user, falling back to the client IP.
func userKey(r *http.Request) (string, error) {
	if state := shared.StateFromContext(r.Context()); state != nil && state.User != nil && state.User.ID != 0 {
		return "user:" + state.User.ID.String(), nil
	}
	return httprate.KeyByIP(r)
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	env := h.kit.Env(r)
	ctx := r.Context()

	var g errgroup.Group
	plants := pages.Collect(ctx, &g, h.kit, env, backend.PathPlants, farm.SamplePlants)
	catalog := pages.Collect(ctx, &g, h.kit, env, backend.PathBuyerCatalog, farm.SampleHarvests)
	purchases := pages.Collect[farm.Purchase](ctx, &g, h.kit, env, backend.PathBuyerPurchase, nil)
	_ = g.Wait()

	if env.Expired() {
		h.kit.Expire(w, r)
		return
	}

	own := resource.OwnedBy(purchases.Items(), resource.PurchaseBuyer, env.User())
	ready := ReadyHarvests(catalog.Items())
	ps := analytics.SummarisePurchases(own)
	hs := analytics.SummariseHarvests(ready)
	lookup := &pages.Lookup{Plants: plants.Items()}

	view := pages.DashboardView{
		Error: pages.LoadError(plants.Err(), catalog.Err(), purchases.Err()),
		Stats: []pages.Stat{
			{Label: "Total belanja", Value: farm.Rupiah(ps.Total), Hint: farm.Decimal(float64(ps.Count)) + " transaksi"},
			{Label: "Total dibeli", Value: farm.Kg(ps.TotalKg)},
			{Label: "Diproses", Value: farm.Decimal(float64(ps.ByStatus[farm.PurchaseProcessing]))},
			{Label: "Produk tersedia", Value: farm.Decimal(float64(hs.Count)), Hint: farm.Kg(hs.ReadyKg)},
		},
		Charts: []pages.ChartView{
			{Title: "Belanja per bulan", SVG: pages.TrendChart(h.kit, "Belanja per bulan", "Rp", analytics.PurchaseValueByMonth(own).LastPeriods(12), true)},
			{Title: "Status pembelian", SVG: pages.DonutChart(h.kit, "Status pembelian", []svg.Slice{
				{Label: farm.Label(farm.PurchaseProcessing), Value: float64(ps.ByStatus[farm.PurchaseProcessing])},
				{Label: farm.Label(farm.PurchaseReceived), Value: float64(ps.ByStatus[farm.PurchaseReceived])},
			})},
		},
		Tables: []pages.TableView{latestPurchases(own, lookup, 5)},
	}
	h.kit.Render(w, r, http.StatusOK, "pages/dashboard.html", "Dasbor Pembeli", view)
}

func latestPurchases(purchases []farm.Purchase, lookup *pages.Lookup, n int) pages.TableView {
	rows := append([]farm.Purchase(nil), purchases...)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date.After(rows[j].Date.Time) })
	if len(rows) > n {
		rows = rows[:n]
	}
	table := pages.TableView{
		Title:   "Pembelian terbaru",
		Headers: []string{"Tanggal", "Tanaman", "Kuantitas", "Total", "Status"},
	}
	for _, p := range rows {
		table.Rows = append(table.Rows, []string{
			p.Date.String(),
			lookup.PlantName(p.PlantID),
			farm.Kg(p.Quantity.Float()),
			farm.Rupiah(p.TotalPrice.Float()),
			farm.Label(p.Status),
		})
	}
	return table
}
