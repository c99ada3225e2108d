// Package manager serves the manager console. Every collection is narrowed to
// the plots the signed-in manager supervises.
package manager

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/sipertani/sipertani/internal/analytics"
	"github.com/sipertani/sipertani/internal/backend"
	"github.com/sipertani/sipertani/internal/farm"
	"github.com/sipertani/sipertani/internal/pages"
	"github.com/sipertani/sipertani/internal/rbac"
	"github.com/sipertani/sipertani/internal/resource"
)

// Base is the mount point of the manager console.
const Base = "/manajer"

// Handler wires the manager pages.
type Handler struct {
	kit  *pages.Kit
	rbac rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(kit *pages.Kit, rbac rbac.Middleware) *Handler {
	return &Handler{kit: kit, rbac: rbac}
}

// MountRoutes registers manager routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(h.rbac.RequireRole(farm.RoleManager))
	r.Get("/", h.dashboard)
	r.Route("/tanaman", pages.New(h.kit, pages.Plants(Base+"/tanaman", backend.PathMgrPlants)).MountRoutes)
	r.Route("/tanaman-lahan", pages.New(h.kit, plantings()).MountRoutes)
	r.Route("/hasil-panen", pages.New(h.kit, harvests(h.kit)).MountRoutes)
	r.Route("/monitoring", pages.New(h.kit, readings(h.kit)).MountRoutes)
	r.Route("/penjualan", pages.New(h.kit, sales(h.kit)).MountRoutes)
}

func plantings() *pages.Resource[farm.PlotPlanting] {
	res := pages.Plantings(Base+"/tanaman-lahan", backend.PathMgrPlantings, backend.PathMgrPlants, backend.PathPlots)
	res.Lookups.OwnPlots = true
	res.Scope = func(items []farm.PlotPlanting, _ *farm.User, l *pages.Lookup) []farm.PlotPlanting {
		return resource.OnPlots(items, resource.PlantingPlot, l.Plots)
	}
	return res
}

func harvests(kit *pages.Kit) *pages.Resource[farm.Harvest] {
	res := pages.Harvests(kit, Base+"/hasil-panen", backend.PathMgrHarvests, pages.LookupSpec{
		Plants:   backend.PathMgrPlants,
		Plots:    backend.PathPlots,
		OwnPlots: true,
	})
	res.Scope = func(items []farm.Harvest, user *farm.User, _ *pages.Lookup) []farm.Harvest {
		return resource.OwnedBy(items, resource.HarvestSupervisor, user)
	}
	return res
}

func readings(kit *pages.Kit) *pages.Resource[farm.Reading] {
	res := pages.Readings(kit, Base+"/monitoring", backend.PathMgrReadings, backend.PathPlots)
	res.Lookups.OwnPlots = true
	res.Scope = func(items []farm.Reading, _ *farm.User, l *pages.Lookup) []farm.Reading {
		return resource.OnPlots(items, resource.ReadingPlot, l.Plots)
	}
	return res
}

func sales(kit *pages.Kit) *pages.Resource[farm.Purchase] {
	res := pages.Purchases(kit, Base+"/penjualan", backend.PathMgrPurchases, pages.LookupSpec{
		Plants: backend.PathMgrPlants,
		Plots:  backend.PathPlots,
	})
	res.Title = "Data Penjualan"
	res.Singular = "Penjualan"
	res.CanDelete = false
	res.Scope = func(items []farm.Purchase, user *farm.User, _ *pages.Lookup) []farm.Purchase {
		return resource.OwnedBy(items, resource.PurchaseSeller, user)
	}
	return res
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	env := h.kit.Env(r)
	ctx := r.Context()

	var g errgroup.Group
	plants := pages.Collect(ctx, &g, h.kit, env, backend.PathMgrPlants, farm.SamplePlants)
	plots := pages.Collect(ctx, &g, h.kit, env, backend.PathPlots, farm.SamplePlots)
	harvestRows := pages.Collect(ctx, &g, h.kit, env, backend.PathMgrHarvests, farm.SampleHarvests)
	readingRows := pages.Collect[farm.Reading](ctx, &g, h.kit, env, backend.PathMgrReadings, nil)
	saleRows := pages.Collect[farm.Purchase](ctx, &g, h.kit, env, backend.PathMgrPurchases, nil)
	_ = g.Wait()

	if env.Expired() {
		h.kit.Expire(w, r)
		return
	}

	user := env.User()
	ownPlots := resource.OwnedBy(plots.Items(), resource.PlotSupervisor, user)
	ownHarvests := resource.OwnedBy(harvestRows.Items(), resource.HarvestSupervisor, user)
	ownReadings := resource.OnPlots(readingRows.Items(), resource.ReadingPlot, ownPlots)
	ownSales := resource.OwnedBy(saleRows.Items(), resource.PurchaseSeller, user)

	hs := analytics.SummariseHarvests(ownHarvests)
	ss := analytics.SummarisePurchases(ownSales)
	land := analytics.SummarisePlots(ownPlots)
	rs := analytics.SummariseReadings(ownReadings)
	lookup := &pages.Lookup{Plants: plants.Items(), Plots: ownPlots}
	gradeLabels, gradeValues := pages.GradeBars(hs)

	view := pages.DashboardView{
		Error: pages.LoadError(plants.Err(), plots.Err(), harvestRows.Err(), readingRows.Err(), saleRows.Err()),
		Stats: []pages.Stat{
			{Label: "Lahan diawasi", Value: farm.Decimal(float64(land.Count)), Hint: farm.Decimal(land.TotalArea) + " ha"},
			{Label: "Total panen", Value: farm.Kg(hs.TotalKg), Hint: farm.Kg(hs.ReadyKg) + " siap dijual"},
			{Label: "Nilai stok", Value: farm.Rupiah(hs.StockValue)},
			{Label: "Pendapatan", Value: farm.Rupiah(ss.Total), Hint: farm.Decimal(float64(ss.Count)) + " penjualan"},
			{Label: "Rata-rata kelembapan", Value: farm.Decimal(rs.AverageHumidity) + " %"},
		},
		Charts: []pages.ChartView{
			{Title: "Panen per bulan", SVG: pages.TrendChart(h.kit, "Panen per bulan", "kg", analytics.HarvestKgByMonth(ownHarvests).LastPeriods(12), true)},
			{Title: "Status hasil panen", SVG: pages.DonutChart(h.kit, "Status hasil panen", pages.HarvestStatusSlices(hs))},
			{Title: "Panen per kualitas", SVG: pages.BarChart(h.kit, "Panen per kualitas", "kg", gradeLabels, gradeValues)},
			{Title: "Kelembapan harian", SVG: pages.TrendChart(h.kit, "Kelembapan harian", "%", analytics.HumidityByDay(ownReadings).LastPeriods(14), false)},
		},
		Tables: []pages.TableView{pages.LatestReadings(ownReadings, lookup, 5)},
	}
	h.kit.Render(w, r, http.StatusOK, "pages/dashboard.html", "Dasbor Manajer", view)
}
