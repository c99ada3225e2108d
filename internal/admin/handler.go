// Package admin serves the administrator console: master data, all harvests
// and purchases, and the manager and buyer accounts.
package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/sipertani/sipertani/internal/analytics"
	"github.com/sipertani/sipertani/internal/backend"
	"github.com/sipertani/sipertani/internal/farm"
	"github.com/sipertani/sipertani/internal/pages"
	"github.com/sipertani/sipertani/internal/rbac"
)

// Base is the mount point of the admin console.
const Base = "/admin"

// Handler wires the admin pages.
type Handler struct {
	kit  *pages.Kit
	rbac rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(kit *pages.Kit, rbac rbac.Middleware) *Handler {
	return &Handler{kit: kit, rbac: rbac}
}

// MountRoutes registers admin routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(h.rbac.RequireRole(farm.RoleAdmin))
	r.Get("/", h.dashboard)
	r.Route("/tanaman", pages.New(h.kit, pages.Plants(Base+"/tanaman", backend.PathPlants)).MountRoutes)
	r.Route("/lahan", pages.New(h.kit, pages.Plots(Base+"/lahan", backend.PathPlots, backend.PathManagers)).MountRoutes)
	r.Route("/hasil-panen", pages.New(h.kit, harvests(h.kit)).MountRoutes)
	r.Route("/monitoring", pages.New(h.kit, pages.Readings(h.kit, Base+"/monitoring", backend.PathReadings, backend.PathPlots)).MountRoutes)
	r.Route("/pembelian", pages.New(h.kit, pages.Purchases(h.kit, Base+"/pembelian", backend.PathPurchases,
		pages.LookupSpec{Plants: backend.PathPlants, Plots: backend.PathPlots})).MountRoutes)
	r.Route("/manajer", pages.New(h.kit, managers()).MountRoutes)
	r.Route("/pembeli", pages.New(h.kit, buyers()).MountRoutes)
}

func harvests(kit *pages.Kit) *pages.Resource[farm.Harvest] {
	res := pages.Harvests(kit, Base+"/hasil-panen", backend.PathHarvests, pages.LookupSpec{
		Plants: backend.PathPlants,
		Plots:  backend.PathPlots,
	})
	res.Title = "Semua Hasil Panen"
	return res
}

func managers() *pages.Resource[farm.User] {
	res := pages.Users("Data Manajer", "Manajer", Base+"/manajer", backend.PathManagers, farm.RoleManager)
	res.ItemAPI = backend.PathUsers
	res.CreateAPI = backend.PathRegister
	res.CanCreate = true
	return res
}

func buyers() *pages.Resource[farm.User] {
	res := pages.Users("Data Pembeli", "Pembeli", Base+"/pembeli", backend.PathBuyers, farm.RoleBuyer)
	res.ItemAPI = backend.PathUsers
	return res
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	env := h.kit.Env(r)
	ctx := r.Context()

	var g errgroup.Group
	plants := pages.Collect(ctx, &g, h.kit, env, backend.PathPlants, farm.SamplePlants)
	plots := pages.Collect(ctx, &g, h.kit, env, backend.PathPlots, farm.SamplePlots)
	harvestRows := pages.Collect(ctx, &g, h.kit, env, backend.PathHarvests, farm.SampleHarvests)
	readings := pages.Collect[farm.Reading](ctx, &g, h.kit, env, backend.PathReadings, nil)
	purchases := pages.Collect[farm.Purchase](ctx, &g, h.kit, env, backend.PathPurchases, nil)
	managerRows := pages.Collect[farm.User](ctx, &g, h.kit, env, backend.PathManagers, nil)
	_ = g.Wait()

	if env.Expired() {
		h.kit.Expire(w, r)
		return
	}

	hs := analytics.SummariseHarvests(harvestRows.Items())
	ps := analytics.SummarisePurchases(purchases.Items())
	land := analytics.SummarisePlots(plots.Items())
	rs := analytics.SummariseReadings(readings.Items())
	lookup := &pages.Lookup{Plants: plants.Items(), Plots: plots.Items()}
	gradeLabels, gradeValues := pages.GradeBars(hs)

	view := pages.DashboardView{
		Error: pages.LoadError(plants.Err(), plots.Err(), harvestRows.Err(), readings.Err(), purchases.Err(), managerRows.Err()),
		Stats: []pages.Stat{
			{Label: "Jenis tanaman", Value: farm.Decimal(float64(len(plants.Items())))},
			{Label: "Luas lahan", Value: farm.Decimal(land.TotalArea) + " ha", Hint: farm.Decimal(float64(land.Count)) + " lahan"},
			{Label: "Total panen", Value: farm.Kg(hs.TotalKg), Hint: farm.Kg(hs.ReadyKg) + " siap dijual"},
			{Label: "Nilai transaksi", Value: farm.Rupiah(ps.Total), Hint: farm.Decimal(float64(ps.Count)) + " transaksi"},
			{Label: "Manajer", Value: farm.Decimal(float64(len(managerRows.Items())))},
			{Label: "Rata-rata suhu", Value: farm.Decimal(rs.AverageTemperature) + " °C"},
		},
		Charts: []pages.ChartView{
			{Title: "Panen per bulan", SVG: pages.TrendChart(h.kit, "Panen per bulan", "kg", analytics.HarvestKgByMonth(harvestRows.Items()).LastPeriods(12), true)},
			{Title: "Status hasil panen", SVG: pages.DonutChart(h.kit, "Status hasil panen", pages.HarvestStatusSlices(hs))},
			{Title: "Panen per kualitas", SVG: pages.BarChart(h.kit, "Panen per kualitas", "kg", gradeLabels, gradeValues)},
			{Title: "Nilai pembelian per bulan", SVG: pages.TrendChart(h.kit, "Nilai pembelian per bulan", "Rp", analytics.PurchaseValueByMonth(purchases.Items()).LastPeriods(12), true)},
		},
		Tables: []pages.TableView{pages.LatestReadings(readings.Items(), lookup, 5)},
	}
	h.kit.Render(w, r, http.StatusOK, "pages/dashboard.html", "Dasbor Admin", view)
}
