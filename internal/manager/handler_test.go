package manager_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sipertani/sipertani/internal/backend"
	"github.com/sipertani/sipertani/internal/farm"
	"github.com/sipertani/sipertani/internal/manager"
	"github.com/sipertani/sipertani/internal/pages"
	"github.com/sipertani/sipertani/internal/pages/pagestest"
	"github.com/sipertani/sipertani/internal/rbac"
	_ "github.com/sipertani/sipertani/testing"
)

// Manager 2 supervises plot 3; manager 3 supervises plot 4.
func newConsole(t *testing.T) (*pagestest.Console, http.Handler) {
	t.Helper()
	c := pagestest.New(t)
	c.API.Data(http.MethodGet, backend.PathMgrPlants, []farm.Plant{{ID: 1, Name: "Padi"}, {ID: 2, Name: "Cabai"}})
	c.API.Data(http.MethodGet, backend.PathPlots, []farm.Plot{
		{ID: 3, Name: "Lahan Utara", Area: 1.5, SupervisorID: 2},
		{ID: 4, Name: "Lahan Selatan", Area: 2, SupervisorID: 3},
	})
	c.API.Data(http.MethodGet, backend.PathMgrHarvests, []farm.Harvest{
		{ID: 9, PlantID: 1, PlotID: 3, SupervisorID: 2, HarvestDate: farm.ParseDate("2025-03-20"),
			Quantity: 500, Grade: farm.GradeA, UnitPrice: 6000, Status: farm.HarvestPending},
		{ID: 10, PlantID: 2, PlotID: 4, SupervisorID: 3, HarvestDate: farm.ParseDate("2025-03-25"),
			Quantity: 80, Grade: farm.GradeB, UnitPrice: 30000, Status: farm.HarvestReady},
	})
	c.API.Data(http.MethodGet, backend.PathMgrPlantings, []farm.PlotPlanting{
		{ID: 21, PlotID: 3, PlantID: 1, PlantedDate: farm.ParseDate("2025-01-05"), Status: farm.PlantingGrowing},
		{ID: 22, PlotID: 4, PlantID: 2, PlantedDate: farm.ParseDate("2025-02-11"), Status: farm.PlantingFailed},
	})
	c.API.Data(http.MethodGet, backend.PathMgrReadings, []farm.Reading{
		{ID: 31, PlotID: 3, Temperature: 28, Humidity: 70, RecordedAt: farm.ParseStamp("2025-04-09 07:00:00")},
		{ID: 32, PlotID: 4, Temperature: 33, Humidity: 55, RecordedAt: farm.ParseStamp("2025-04-09 08:00:00")},
	})
	c.API.Data(http.MethodGet, backend.PathMgrPurchases, []farm.Purchase{
		{ID: 5, BuyerID: 7, SellerID: 2, HarvestID: 9, PlantID: 1, Quantity: 2, TotalPrice: 12000,
			Date: farm.ParseDate("2025-04-01"), Status: farm.PurchaseProcessing},
		{ID: 6, BuyerID: 7, SellerID: 3, HarvestID: 10, PlantID: 2, Quantity: 1, TotalPrice: 30000,
			Date: farm.ParseDate("2025-04-02"), Status: farm.PurchaseProcessing},
	})

	r := chi.NewRouter()
	r.Route(manager.Base, manager.NewHandler(c.Kit, rbac.Middleware{}).MountRoutes)
	return c, r
}

func TestDashboardCoversOwnPlots(t *testing.T) {
	c, r := newConsole(t)

	res := c.Do(t, r, pagestest.Get(manager.Base+"/"), pagestest.Manager(2))

	require.Equal(t, http.StatusOK, res.Code)
	body := res.Body.String()
	assert.Contains(t, body, "Dasbor Manajer")
	assert.Contains(t, body, "Lahan diawasi")
	assert.Contains(t, body, "Lahan Utara")
	assert.NotContains(t, body, "Lahan Selatan")
}

func TestManagerRoutesRejectOtherRoles(t *testing.T) {
	c, r := newConsole(t)
	res := c.Do(t, r, pagestest.Get(manager.Base+"/hasil-panen"), pagestest.Admin())
	assert.Equal(t, http.StatusForbidden, res.Code)
}

func TestHarvestsScopedToSupervisor(t *testing.T) {
	c, r := newConsole(t)

	res := c.Do(t, r, pagestest.Get(manager.Base+"/hasil-panen"), pagestest.Manager(2))

	require.Equal(t, http.StatusOK, res.Code)
	body := res.Body.String()
	assert.Contains(t, body, manager.Base+"/hasil-panen?edit=9")
	assert.NotContains(t, body, manager.Base+"/hasil-panen?edit=10")
}

func TestHarvestFormOffersOwnPlots(t *testing.T) {
	c, r := newConsole(t)

	res := c.Do(t, r, pagestest.Get(manager.Base+"/hasil-panen?baru=1"), pagestest.Manager(2))

	require.Equal(t, http.StatusOK, res.Code)
	body := res.Body.String()
	assert.Contains(t, body, `<option value="3">Lahan Utara</option>`)
	assert.NotContains(t, body, `<option value="4">`)
}

func TestCreateHarvestStampsSupervisor(t *testing.T) {
	c, r := newConsole(t)
	c.API.Data(http.MethodPost, backend.PathMgrHarvests, map[string]any{})

	form := url.Values{
		"id_tanaman":    {"1"},
		"id_lahan":      {"3"},
		"tanggal_panen": {"2025-04-09"},
		"kuantitas":     {"120,5"},
		"kualitas":      {"B"},
		"harga_satuan":  {"7000"},
	}
	res := c.Do(t, r, pagestest.Post(manager.Base+"/hasil-panen", form), pagestest.Manager(2))

	assert.Equal(t, http.StatusSeeOther, res.Code)
	posts := c.API.Calls(http.MethodPost, backend.PathMgrHarvests)
	require.Len(t, posts, 1)
	var sent farm.Harvest
	posts[0].Decode(t, &sent)
	assert.Equal(t, farm.ID(2), sent.SupervisorID)
	assert.Equal(t, farm.Number(120.5), sent.Quantity)
	assert.Equal(t, farm.GradeB, sent.Grade)
	assert.Equal(t, farm.HarvestPending, sent.Status)
}

func TestHarvestOfAnotherManagerCannotBeChanged(t *testing.T) {
	c, r := newConsole(t)

	form := url.Values{
		"id":            {"10"},
		"id_tanaman":    {"2"},
		"id_lahan":      {"4"},
		"tanggal_panen": {"2025-03-25"},
		"kuantitas":     {"80"},
		"kualitas":      {"B"},
		"harga_satuan":  {"1"},
	}
	res := c.Do(t, r, pagestest.Post(manager.Base+"/hasil-panen", form), pagestest.Manager(2))
	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "Data tidak ditemukan", res.Flash().Message)

	res = c.Do(t, r, pagestest.Post(manager.Base+"/hasil-panen/10/status", url.Values{"konfirmasi": {"ya"}}), pagestest.Manager(2))
	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "Data tidak ditemukan", res.Flash().Message)

	assert.Empty(t, c.API.Calls(http.MethodPut, backend.PathMgrHarvests+"/10"))
}

func TestPlantingsScopedToOwnPlots(t *testing.T) {
	c, r := newConsole(t)

	res := c.Do(t, r, pagestest.Get(manager.Base+"/tanaman-lahan"), pagestest.Manager(2))

	require.Equal(t, http.StatusOK, res.Code)
	body := res.Body.String()
	assert.Contains(t, body, "?edit=21")
	assert.NotContains(t, body, "?edit=22")
}

func TestReadingsScopedToOwnPlots(t *testing.T) {
	c, r := newConsole(t)

	res := c.Do(t, r, pagestest.Get(manager.Base+"/monitoring"), pagestest.Manager(3))

	require.Equal(t, http.StatusOK, res.Code)
	body := res.Body.String()
	assert.Contains(t, body, "?edit=32")
	assert.NotContains(t, body, "?edit=31")
}

func TestReadingValidation(t *testing.T) {
	c, r := newConsole(t)

	form := url.Values{"id_lahan": {"3"}, "suhu": {"27"}, "kelembapan": {"120"}, "waktu": {"2025-04-09T10:15"}}
	res := c.Do(t, r, pagestest.Post(manager.Base+"/monitoring", form), pagestest.Manager(2))

	assert.Equal(t, http.StatusUnprocessableEntity, res.Code)
	assert.Contains(t, res.Body.String(), "Kelembapan maksimal 100")
}

func TestSalesUpdateStatusWithoutDelete(t *testing.T) {
	c, r := newConsole(t)
	c.API.Data(http.MethodPut, backend.PathMgrPurchases+"/5", map[string]any{})

	res := c.Do(t, r, pagestest.Get(manager.Base+"/penjualan"), pagestest.Manager(2))
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "?edit=5")
	assert.NotContains(t, res.Body.String(), "?edit=6")
	assert.NotContains(t, res.Body.String(), "/hapus")

	res = c.Do(t, r, pagestest.Post(manager.Base+"/penjualan", url.Values{"id": {"5"}, "status": {"diterima"}}), pagestest.Manager(2))
	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, pages.FlashSuccess, res.Flash().Kind)
	puts := c.API.Calls(http.MethodPut, backend.PathMgrPurchases+"/5")
	require.Len(t, puts, 1)
	var sent farm.Purchase
	puts[0].Decode(t, &sent)
	assert.Equal(t, farm.PurchaseReceived, sent.Status)

	res = c.Do(t, r, pagestest.Post(manager.Base+"/penjualan/5/hapus", url.Values{}), pagestest.Manager(2))
	assert.NotEqual(t, http.StatusSeeOther, res.Code)
}
