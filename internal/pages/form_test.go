package pages

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sipertani/sipertani/internal/backend"
	"github.com/sipertani/sipertani/internal/farm"
)

func TestFormReaderMessages(t *testing.T) {
	f := NewFormReader(url.Values{
		"jumlah":  {"dua"},
		"luas":    {"0"},
		"tanggal": {"kemarin"},
		"harga":   {"-5"},
		"status":  {"hilang"},
		"bobot":   {"12,5"},
	})
	f.Text("nama", "Nama", true)
	f.Number("jumlah", "Jumlah", false)
	f.Positive("luas", "Luas")
	f.ID("id_lahan", "Lahan", true)
	f.Date("tanggal", "Tanggal", true)
	f.Number("harga", "Harga", true)
	OneOf(f, "status", "Status", farm.PurchaseProcessing, farm.PurchaseReceived)
	weight := f.Number("bobot", "Bobot", true)

	assert.Equal(t, map[string]string{
		"nama":     "Nama wajib diisi",
		"jumlah":   "Jumlah harus berupa angka",
		"luas":     "Luas harus lebih dari 0",
		"id_lahan": "Lahan wajib dipilih",
		"tanggal":  "Tanggal tidak valid",
		"harga":    "Harga tidak boleh negatif",
		"status":   "Status tidak valid",
	}, f.Errors())
	assert.Equal(t, farm.Number(12.5), weight)
}

func TestFormReaderKeepsFirstMessage(t *testing.T) {
	f := NewFormReader(url.Values{"luas": {"x"}})
	f.Positive("luas", "Luas")
	assert.Equal(t, "Luas harus berupa angka", f.Errors()["luas"])

	clean := NewFormReader(url.Values{"nama": {" Padi "}})
	assert.Equal(t, "Padi", clean.Text("nama", "Nama", true))
	assert.Nil(t, clean.Errors())
}

func TestLookupNamesAndOptions(t *testing.T) {
	l := &Lookup{
		Plants:   []farm.Plant{{ID: 2, Name: "Padi"}, {ID: 1, Name: "Cabai"}},
		Managers: []farm.User{{ID: 5, Name: "Budi", Username: "budi"}},
		Harvests: []farm.Harvest{{ID: 9, PlantID: 2}},
	}

	assert.Equal(t, "Padi", l.PlantName(2))
	assert.Equal(t, "#7", l.PlantName(7))
	assert.Equal(t, "-", l.PlotName(0))
	assert.Equal(t, "Budi", l.ManagerName(5))

	opts := l.Options(SourcePlants)
	require.Len(t, opts, 2)
	assert.Equal(t, "Cabai", opts[0].Label)
	assert.Equal(t, "1", opts[0].Value)
	assert.Equal(t, []Option{{Value: "5", Label: "Budi (budi)"}}, l.Options(SourceManagers))
	assert.Equal(t, []Option{{Value: "9", Label: "#9 Padi"}}, l.Options(SourceHarvests))

	names := l.Names()
	assert.Equal(t, "Cabai", names.Plants[1])
	assert.Empty(t, names.Plots)
}

func TestHarvestToggleLabel(t *testing.T) {
	assert.Equal(t, "Tandai siap jual", HarvestToggleLabel(farm.Harvest{Status: farm.HarvestPending}))
	assert.Equal(t, "Tandai menunggu validasi", HarvestToggleLabel(farm.Harvest{Status: farm.HarvestReady}))
	assert.Empty(t, HarvestToggleLabel(farm.Harvest{Status: farm.HarvestSold}))
}

func TestStatusBadge(t *testing.T) {
	assert.Equal(t, "badge-ok", StatusBadge(farm.HarvestReady))
	assert.Equal(t, "badge-muted", StatusBadge(farm.HarvestSold))
	assert.Equal(t, "badge-bad", StatusBadge(farm.PlantingFailed))
	assert.Equal(t, "badge-wait", StatusBadge(farm.PurchaseProcessing))
}

func TestLoadError(t *testing.T) {
	assert.Empty(t, LoadError(nil, nil))
	got := LoadError(nil, &backend.APIError{Status: 500, Message: "database mati"}, errors.New("lain"))
	assert.Equal(t, "Sebagian data gagal dimuat: database mati", got)
}

func TestLatestReadings(t *testing.T) {
	readings := []farm.Reading{
		{ID: 1, PlotID: 3, Temperature: 27, Humidity: 70, RecordedAt: farm.ParseStamp("2025-04-01 08:00:00")},
		{ID: 2, PlotID: 3, Temperature: 29, Humidity: 65, RecordedAt: farm.ParseStamp("2025-04-03 08:00:00")},
		{ID: 3, PlotID: 4, Temperature: 31, Humidity: 60, RecordedAt: farm.ParseStamp("2025-04-02 08:00:00")},
	}
	lookup := &Lookup{Plots: []farm.Plot{{ID: 3, Name: "Lahan Utara"}}}

	table := LatestReadings(readings, lookup, 2)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Lahan Utara", table.Rows[0][1])
	assert.Equal(t, "#4", table.Rows[1][1])
	assert.Equal(t, 4, len(table.Headers))
}
