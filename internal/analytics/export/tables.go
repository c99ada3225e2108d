// Package export writes scoped collections as CSV and XLSX downloads and
// renders printable purchase receipts.
package export

import (
	"strconv"

	"github.com/sipertani/sipertani/internal/farm"
)

// Table is a header row plus data rows, shared by the CSV and XLSX writers.
type Table struct {
	Sheet  string
	Header []string
	Rows   [][]any
}

// Names resolves identifiers to display names in exports.
type Names struct {
	Plants map[farm.ID]string
	Plots  map[farm.ID]string
}

func (n Names) plant(id farm.ID) string {
	if name, ok := n.Plants[id]; ok {
		return name
	}
	return id.String()
}

func (n Names) plot(id farm.ID) string {
	if name, ok := n.Plots[id]; ok {
		return name
	}
	return id.String()
}

// PurchaseTable lays out a purchase history.
func PurchaseTable(purchases []farm.Purchase, names Names) Table {
	t := Table{
		Sheet:  "Pembelian",
		Header: []string{"ID", "Tanggal", "Tanaman", "Kuantitas (kg)", "Total (Rp)", "Status"},
	}
	for _, p := range purchases {
		t.Rows = append(t.Rows, []any{
			int64(p.ID), p.Date.String(), names.plant(p.PlantID),
			p.Quantity.Float(), p.TotalPrice.Float(), farm.Label(p.Status),
		})
	}
	return t
}

// HarvestTable lays out a harvest list.
func HarvestTable(harvests []farm.Harvest, names Names) Table {
	t := Table{
		Sheet:  "Hasil Panen",
		Header: []string{"ID", "Tanggal Panen", "Tanaman", "Lahan", "Kuantitas (kg)", "Kualitas", "Harga Satuan (Rp)", "Status"},
	}
	for _, h := range harvests {
		t.Rows = append(t.Rows, []any{
			int64(h.ID), h.HarvestDate.String(), names.plant(h.PlantID), names.plot(h.PlotID),
			h.Quantity.Float(), string(h.Grade), h.UnitPrice.Float(), farm.Label(h.Status),
		})
	}
	return t
}

func cellText(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return ""
	}
}
