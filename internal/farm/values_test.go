package farm

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHarvestDecodesLooseFields(t *testing.T) {
	payload := `{"id_hasil":"7","kuantitas":"150","harga_satuan":"2000.00","id_pengawas":2,"tanggal_panen":"2025-04-14","kualitas":"A","status":"siap_jual"}`
	var h Harvest
	require.NoError(t, json.Unmarshal([]byte(payload), &h))
	assert.Equal(t, ID(7), h.ID)
	assert.Equal(t, Number(150), h.Quantity)
	assert.Equal(t, Number(2000), h.UnitPrice)
	assert.Equal(t, ID(2), h.SupervisorID)
	assert.Equal(t, "2025-04-14", h.HarvestDate.String())
	assert.Equal(t, HarvestReady, h.Status)
}

func TestNumberTreatsGarbageAsZero(t *testing.T) {
	cases := []string{`null`, `""`, `"abc"`, `{}`, `[1]`}
	for _, raw := range cases {
		var n Number = 42
		require.NoError(t, json.Unmarshal([]byte(raw), &n), raw)
		assert.Zero(t, n, raw)
	}
}

func TestMissingNumberIsZero(t *testing.T) {
	var p Purchase
	require.NoError(t, json.Unmarshal([]byte(`{"id_pembelian":1}`), &p))
	assert.Zero(t, p.TotalPrice)
	assert.Zero(t, p.Quantity)
}

func TestReadingStampLayouts(t *testing.T) {
	for _, raw := range []string{`"2025-03-01 08:30:00"`, `"2025-03-01T08:30:00Z"`} {
		var s Stamp
		require.NoError(t, json.Unmarshal([]byte(raw), &s))
		assert.Equal(t, time.Date(2025, 3, 1, 8, 30, 0, 0, time.UTC), s.UTC())
	}
}

func TestDateMarshal(t *testing.T) {
	out, err := json.Marshal(Plant{ID: 1, PlantedDate: NewDate(time.Date(2025, 1, 6, 13, 0, 0, 0, time.UTC))})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"tanggal_tanam":"2025-01-06"`)
}

func TestParseHelpers(t *testing.T) {
	assert.Equal(t, ID(12), ParseID(" 12 "))
	assert.Equal(t, ID(0), ParseID(""))
	n, ok := ParseNumber("2,5")
	assert.True(t, ok)
	assert.Equal(t, Number(2.5), n)
	_, ok = ParseNumber("x")
	assert.False(t, ok)
}

func TestHarvestStatusToggle(t *testing.T) {
	assert.Equal(t, HarvestPending, HarvestReady.Toggled())
	assert.Equal(t, HarvestReady, HarvestPending.Toggled())
	assert.Equal(t, HarvestSold, HarvestSold.Toggled())
	assert.Equal(t, "Siap dijual", Label(HarvestReady))
}
