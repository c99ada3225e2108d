package pages_test

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sipertani/sipertani/internal/backend"
	"github.com/sipertani/sipertani/internal/farm"
	"github.com/sipertani/sipertani/internal/pages"
	"github.com/sipertani/sipertani/internal/pages/pagestest"
	"github.com/sipertani/sipertani/internal/resource"
	_ "github.com/sipertani/sipertani/testing"
)

const plantsBase = "/admin/tanaman"

func plantsRouter(c *pagestest.Console) http.Handler {
	r := chi.NewRouter()
	r.Route(plantsBase, pages.New(c.Kit, pages.Plants(plantsBase, backend.PathPlants)).MountRoutes)
	return r
}

func plants() []farm.Plant {
	return []farm.Plant{
		{ID: 1, Name: "Padi", Kind: "Serealia", Quantity: 120, PlantedDate: farm.ParseDate("2025-01-05")},
		{ID: 2, Name: "Cabai", Kind: "Sayuran", Quantity: 40, PlantedDate: farm.ParseDate("2025-02-11")},
	}
}

func TestListRendersRowsAndStats(t *testing.T) {
	c := pagestest.New(t)
	c.API.Data(http.MethodGet, backend.PathPlants, plants())

	res := c.Do(t, plantsRouter(c), pagestest.Get(plantsBase), pagestest.Admin())

	require.Equal(t, http.StatusOK, res.Code)
	body := res.Body.String()
	assert.Contains(t, body, "Padi")
	assert.Contains(t, body, "Cabai")
	assert.Contains(t, body, "Total bibit ditanam")
	assert.Contains(t, body, plantsBase+"?edit=2")
	assert.NotContains(t, body, "modal-backdrop")

	calls := c.API.Calls(http.MethodGet, backend.PathPlants)
	require.Len(t, calls, 1)
	assert.Equal(t, "Bearer token-1", calls[0].Auth)
}

func TestListShowsLoadError(t *testing.T) {
	c := pagestest.New(t)
	c.API.Status(http.MethodGet, backend.PathPlants, http.StatusInternalServerError, "database mati")

	res := c.Do(t, plantsRouter(c), pagestest.Get(plantsBase), pagestest.Admin())

	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "Gagal memuat data: database mati")
	assert.Contains(t, res.Body.String(), "Belum ada data.")
}

func TestListExpiredCredentialSignsOut(t *testing.T) {
	c := pagestest.New(t)
	c.API.Status(http.MethodGet, backend.PathPlants, http.StatusUnauthorized, "token kedaluwarsa")

	res := c.Do(t, plantsRouter(c), pagestest.Get(plantsBase), pagestest.Admin())

	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/auth/login", res.Header().Get("Location"))
	assert.False(t, res.State.Authenticated())
	flash := res.Flash()
	require.NotNil(t, flash)
	assert.Equal(t, pages.FlashWarning, flash.Kind)
}

func TestListOpensCreateAndEditForms(t *testing.T) {
	c := pagestest.New(t)
	c.API.Data(http.MethodGet, backend.PathPlants, plants())

	res := c.Do(t, plantsRouter(c), pagestest.Get(plantsBase+"?baru=1"), pagestest.Admin())
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), `<h2 id="form-heading">Tambah Tanaman</h2>`)
	assert.Contains(t, res.Body.String(), `value="2025-04-10"`)

	res = c.Do(t, plantsRouter(c), pagestest.Get(plantsBase+"?edit=2"), pagestest.Admin())
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), `<h2 id="form-heading">Ubah Tanaman</h2>`)
	assert.Contains(t, res.Body.String(), `value="Cabai"`)

	res = c.Do(t, plantsRouter(c), pagestest.Get(plantsBase+"?edit=99"), pagestest.Admin())
	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, plantsBase, res.Header().Get("Location"))
}

func TestSaveCreatesRecord(t *testing.T) {
	c := pagestest.New(t)
	c.API.Data(http.MethodGet, backend.PathPlants, plants())
	c.API.Data(http.MethodPost, backend.PathPlants, map[string]any{"id_tanaman": 3})

	form := url.Values{
		"nama_tanaman":  {"Jagung"},
		"jenis":         {"Serealia"},
		"jumlah_tanam":  {"75"},
		"tanggal_tanam": {"2025-04-01"},
	}
	res := c.Do(t, plantsRouter(c), pagestest.Post(plantsBase, form), pagestest.Admin())

	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, plantsBase, res.Header().Get("Location"))
	flash := res.Flash()
	require.NotNil(t, flash)
	assert.Equal(t, "Tanaman berhasil disimpan", flash.Message)

	posts := c.API.Calls(http.MethodPost, backend.PathPlants)
	require.Len(t, posts, 1)
	var sent farm.Plant
	posts[0].Decode(t, &sent)
	assert.Equal(t, "Jagung", sent.Name)
	assert.Equal(t, farm.Number(75), sent.Quantity)
	assert.Equal(t, "2025-04-01", sent.PlantedDate.String())
}

func TestSaveRejectsInvalidInput(t *testing.T) {
	c := pagestest.New(t)
	c.API.Data(http.MethodGet, backend.PathPlants, plants())

	form := url.Values{"jenis": {"Serealia"}, "jumlah_tanam": {"banyak"}}
	res := c.Do(t, plantsRouter(c), pagestest.Post(plantsBase, form), pagestest.Admin())

	assert.Equal(t, http.StatusUnprocessableEntity, res.Code)
	body := res.Body.String()
	assert.Contains(t, body, "Nama tanaman wajib diisi")
	assert.Contains(t, body, "Jumlah tanam harus berupa angka")
	assert.Contains(t, body, `value="Serealia"`)
	assert.Empty(t, c.API.Calls(http.MethodPost, backend.PathPlants))
}

func TestSaveUpdatesExistingRecord(t *testing.T) {
	c := pagestest.New(t)
	c.API.Data(http.MethodGet, backend.PathPlants, plants())
	c.API.Data(http.MethodPut, backend.PathPlants+"/2", map[string]any{})

	form := url.Values{
		"id":            {"2"},
		"nama_tanaman":  {"Cabai Rawit"},
		"jenis":         {"Sayuran"},
		"jumlah_tanam":  {"40"},
		"tanggal_tanam": {"2025-02-11"},
	}
	res := c.Do(t, plantsRouter(c), pagestest.Post(plantsBase, form), pagestest.Admin())

	assert.Equal(t, http.StatusSeeOther, res.Code)
	puts := c.API.Calls(http.MethodPut, backend.PathPlants+"/2")
	require.Len(t, puts, 1)
	var sent farm.Plant
	puts[0].Decode(t, &sent)
	assert.Equal(t, farm.ID(2), sent.ID)
	assert.Equal(t, "Cabai Rawit", sent.Name)
}

func TestSaveShowsBackendError(t *testing.T) {
	c := pagestest.New(t)
	c.API.Data(http.MethodGet, backend.PathPlants, plants())
	c.API.Status(http.MethodPost, backend.PathPlants, http.StatusBadRequest, "Nama tanaman sudah ada")

	form := url.Values{"nama_tanaman": {"Padi"}, "jenis": {"Serealia"}}
	res := c.Do(t, plantsRouter(c), pagestest.Post(plantsBase, form), pagestest.Admin())

	assert.Equal(t, http.StatusUnprocessableEntity, res.Code)
	assert.Contains(t, res.Body.String(), "Nama tanaman sudah ada")
}

func TestRemoveDeletesVisibleRow(t *testing.T) {
	c := pagestest.New(t)
	c.API.Data(http.MethodGet, backend.PathPlants, plants())
	c.API.Data(http.MethodDelete, backend.PathPlants+"/1", nil)

	res := c.Do(t, plantsRouter(c), pagestest.Post(plantsBase+"/1/hapus", url.Values{}), pagestest.Admin())
	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Len(t, c.API.Calls(http.MethodDelete, backend.PathPlants+"/1"), 1)
	assert.Equal(t, "Tanaman berhasil dihapus", res.Flash().Message)

	res = c.Do(t, plantsRouter(c), pagestest.Post(plantsBase+"/42/hapus", url.Values{}), pagestest.Admin())
	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "Data tidak ditemukan", res.Flash().Message)
}

type transfers struct {
	mu  sync.Mutex
	got []resource.Transfer
}

func (r *transfers) RecordTransfer(_ context.Context, t resource.Transfer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, t)
	return nil
}

const harvestsBase = "/admin/hasil-panen"

func harvestRouter(c *pagestest.Console) http.Handler {
	r := chi.NewRouter()
	res := pages.Harvests(c.Kit, harvestsBase, backend.PathHarvests, pages.LookupSpec{Plants: backend.PathPlants})
	r.Route(harvestsBase, pages.New(c.Kit, res).MountRoutes)
	return r
}

func harvests() []farm.Harvest {
	return []farm.Harvest{
		{ID: 9, PlantID: 1, PlotID: 3, SupervisorID: 2, HarvestDate: farm.ParseDate("2025-03-20"),
			Quantity: 500, Grade: farm.GradeA, UnitPrice: 6000, Status: farm.HarvestPending},
		{ID: 10, PlantID: 2, PlotID: 4, SupervisorID: 3, HarvestDate: farm.ParseDate("2025-03-25"),
			Quantity: 80, Grade: farm.GradeB, UnitPrice: 30000, Status: farm.HarvestSold},
	}
}

func harvestForm(id string) url.Values {
	return url.Values{
		"id":            {id},
		"id_tanaman":    {"1"},
		"id_lahan":      {"3"},
		"tanggal_panen": {"2025-03-20"},
		"kuantitas":     {"450"},
		"kualitas":      {"A"},
		"harga_satuan":  {"6500"},
	}
}

func TestHarvestEditPreservesOwner(t *testing.T) {
	c := pagestest.New(t)
	rec := &transfers{}
	c.Kit.Recorder = rec
	c.API.Data(http.MethodGet, backend.PathHarvests, harvests())
	c.API.Data(http.MethodGet, backend.PathPlants, plants())
	c.API.Data(http.MethodPut, backend.PathHarvests+"/9", map[string]any{})

	res := c.Do(t, harvestRouter(c), pagestest.Post(harvestsBase, harvestForm("9")), pagestest.Admin())

	require.Equal(t, http.StatusSeeOther, res.Code)
	puts := c.API.Calls(http.MethodPut, backend.PathHarvests+"/9")
	require.Len(t, puts, 1)
	var sent farm.Harvest
	puts[0].Decode(t, &sent)
	assert.Equal(t, farm.ID(2), sent.SupervisorID)
	assert.Equal(t, farm.Number(450), sent.Quantity)
	assert.Empty(t, rec.got)
}

func TestHarvestEditClaimsOwnerAndRecordsTransfer(t *testing.T) {
	c := pagestest.New(t)
	rec := &transfers{}
	c.Kit.Recorder = rec
	c.Kit.Policy = resource.PolicyClaim
	c.API.Data(http.MethodGet, backend.PathHarvests, harvests())
	c.API.Data(http.MethodGet, backend.PathPlants, plants())
	c.API.Data(http.MethodPut, backend.PathHarvests+"/9", map[string]any{})

	res := c.Do(t, harvestRouter(c), pagestest.Post(harvestsBase, harvestForm("9")), pagestest.Admin())

	require.Equal(t, http.StatusSeeOther, res.Code)
	var sent farm.Harvest
	c.API.Calls(http.MethodPut, backend.PathHarvests+"/9")[0].Decode(t, &sent)
	assert.Equal(t, farm.ID(1), sent.SupervisorID)
	require.Len(t, rec.got, 1)
	assert.Equal(t, "hasil_panen", rec.got[0].Entity)
	assert.Equal(t, farm.ID(9), rec.got[0].RecordID)
	assert.Equal(t, farm.ID(2), rec.got[0].From)
	assert.Equal(t, farm.ID(1), rec.got[0].To)
}

func TestHarvestToggleNeedsConfirmation(t *testing.T) {
	c := pagestest.New(t)
	c.API.Data(http.MethodGet, backend.PathHarvests, harvests())
	c.API.Data(http.MethodGet, backend.PathPlants, plants())
	c.API.Data(http.MethodPut, backend.PathHarvests+"/9", map[string]any{})

	res := c.Do(t, harvestRouter(c), pagestest.Post(harvestsBase+"/9/status", url.Values{}), pagestest.Admin())
	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, pages.FlashWarning, res.Flash().Kind)
	assert.Empty(t, c.API.Calls(http.MethodPut, backend.PathHarvests+"/9"))

	res = c.Do(t, harvestRouter(c), pagestest.Post(harvestsBase+"/9/status", url.Values{"konfirmasi": {"ya"}}), pagestest.Admin())
	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, pages.FlashSuccess, res.Flash().Kind)
	puts := c.API.Calls(http.MethodPut, backend.PathHarvests+"/9")
	require.Len(t, puts, 1)
	var sent farm.Harvest
	puts[0].Decode(t, &sent)
	assert.Equal(t, farm.HarvestReady, sent.Status)
}

func TestHarvestListHidesToggleForSoldRows(t *testing.T) {
	c := pagestest.New(t)
	c.API.Data(http.MethodGet, backend.PathHarvests, harvests())
	c.API.Data(http.MethodGet, backend.PathPlants, plants())

	res := c.Do(t, harvestRouter(c), pagestest.Get(harvestsBase), pagestest.Admin())

	require.Equal(t, http.StatusOK, res.Code)
	body := res.Body.String()
	assert.Contains(t, body, harvestsBase+"/9/status")
	assert.NotContains(t, body, harvestsBase+"/10/status")
	assert.Contains(t, body, "Padi")
}

func TestHarvestExport(t *testing.T) {
	c := pagestest.New(t)
	c.API.Data(http.MethodGet, backend.PathHarvests, harvests())
	c.API.Data(http.MethodGet, backend.PathPlants, plants())

	res := c.Do(t, harvestRouter(c), pagestest.Get(harvestsBase+"/ekspor.csv"), pagestest.Admin())
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "text/csv; charset=utf-8", res.Header().Get("Content-Type"))
	assert.Contains(t, res.Header().Get("Content-Disposition"), "hasil-panen-20250410.csv")
	assert.Equal(t, 3, strings.Count(strings.TrimSpace(res.Body.String()), "\n")+1)

	res = c.Do(t, harvestRouter(c), pagestest.Get(harvestsBase+"/ekspor.xlsx"), pagestest.Admin())
	require.Equal(t, http.StatusOK, res.Code)
	assert.True(t, strings.HasPrefix(res.Body.String(), "PK"))

	res = c.Do(t, harvestRouter(c), pagestest.Get(harvestsBase+"/ekspor.pdf"), pagestest.Admin())
	assert.Equal(t, http.StatusNotFound, res.Code)
}

func TestUsersEditHidesPassword(t *testing.T) {
	c := pagestest.New(t)
	users := []farm.User{{ID: 4, Name: "Budi", Username: "budi", Role: farm.RoleManager}}
	c.API.Data(http.MethodGet, backend.PathManagers, users)
	res := pages.Users("Data Manajer", "Manajer", "/admin/manajer", backend.PathManagers, farm.RoleManager)
	r := chi.NewRouter()
	r.Route("/admin/manajer", pages.New(c.Kit, res).MountRoutes)

	out := c.Do(t, r, pagestest.Get("/admin/manajer?edit=4"), pagestest.Admin())
	require.Equal(t, http.StatusOK, out.Code)
	assert.Contains(t, out.Body.String(), `value="budi"`)
	assert.NotContains(t, out.Body.String(), `name="password"`)
}

func TestSampleRowsAreNeverChanged(t *testing.T) {
	c := pagestest.New(t)
	c.Kit.Fallback = true
	c.API.Status(http.MethodGet, backend.PathHarvests, http.StatusBadGateway, "server sibuk")
	c.API.Data(http.MethodGet, backend.PathPlants, plants())

	list := c.Do(t, harvestRouter(c), pagestest.Get(harvestsBase), pagestest.Admin())
	require.Equal(t, http.StatusOK, list.Code)
	assert.Contains(t, list.Body.String(), "Gagal memuat data: server sibuk")

	requests := map[string]*http.Request{
		"edit":   pagestest.Post(harvestsBase, harvestForm("1")),
		"create": pagestest.Post(harvestsBase, harvestForm("")),
		"delete": pagestest.Post(harvestsBase+"/2/hapus", url.Values{}),
		"toggle": pagestest.Post(harvestsBase+"/1/status", url.Values{"konfirmasi": {"ya"}}),
	}
	for name, req := range requests {
		t.Run(name, func(t *testing.T) {
			res := c.Do(t, harvestRouter(c), req, pagestest.Admin())
			assert.Equal(t, http.StatusSeeOther, res.Code)
			flash := res.Flash()
			require.NotNil(t, flash)
			assert.Equal(t, pages.FlashError, flash.Kind)
			assert.Equal(t, pages.SampledMessage, flash.Message)
		})
	}
	assert.Empty(t, c.API.Calls(http.MethodPut, backend.PathHarvests+"/1"))
	assert.Empty(t, c.API.Calls(http.MethodPost, backend.PathHarvests))
	assert.Empty(t, c.API.Calls(http.MethodDelete, backend.PathHarvests+"/2"))
}

func TestHarvestClaimRecordedWhenReloadFails(t *testing.T) {
	c := pagestest.New(t)
	rec := &transfers{}
	c.Kit.Recorder = rec
	c.Kit.Policy = resource.PolicyClaim
	var lists int32
	c.API.Handle(http.MethodGet, backend.PathHarvests, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&lists, 1) > 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"data":[{"id_hasil":9,"id_tanaman":1,"id_lahan":3,"id_pengawas":2,"status":"pending"}]}`))
	})
	c.API.Data(http.MethodGet, backend.PathPlants, plants())
	c.API.Data(http.MethodPut, backend.PathHarvests+"/9", map[string]any{})

	res := c.Do(t, harvestRouter(c), pagestest.Post(harvestsBase, harvestForm("9")), pagestest.Admin())

	require.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, pages.FlashSuccess, res.Flash().Kind)
	assert.Len(t, c.API.Calls(http.MethodPut, backend.PathHarvests+"/9"), 1)
	require.Len(t, rec.got, 1)
	assert.Equal(t, farm.ID(2), rec.got[0].From)
	assert.Equal(t, farm.ID(1), rec.got[0].To)
}

func TestCreateSucceedsWhenReloadFails(t *testing.T) {
	c := pagestest.New(t)
	var lists int32
	c.API.Handle(http.MethodGet, backend.PathPlants, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&lists, 1) > 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"data":[]}`))
	})
	c.API.Data(http.MethodPost, backend.PathPlants, map[string]any{})
	form := url.Values{"nama_tanaman": {"Jagung"}, "jenis": {"Serealia"}, "jumlah_tanam": {"50"}, "tanggal_tanam": {"2025-04-01"}}

	res := c.Do(t, plantsRouter(c), pagestest.Post(plantsBase, form), pagestest.Admin())

	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "Tanaman berhasil disimpan", res.Flash().Message)
	assert.Len(t, c.API.Calls(http.MethodPost, backend.PathPlants), 1)
}
