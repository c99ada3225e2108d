package pages

import (
	"html/template"
	"net/url"
	"time"

	"github.com/sipertani/sipertani/internal/analytics"
	"github.com/sipertani/sipertani/internal/analytics/export"
	"github.com/sipertani/sipertani/internal/farm"
	"github.com/sipertani/sipertani/internal/resource"
)

// HarvestOwnership is the supervisor column of harvests.
var HarvestOwnership = resource.Ownership[farm.Harvest]{
	Entity: "hasil_panen",
	Get:    resource.HarvestSupervisor,
	Set:    func(h *farm.Harvest, id farm.ID) { h.SupervisorID = id },
}

func number(n farm.Number) string {
	if n == 0 {
		return ""
	}
	return n.String()
}

// Plants lists crop varieties.
func Plants(base, api string) *Resource[farm.Plant] {
	return &Resource[farm.Plant]{
		Title:    "Data Tanaman",
		Singular: "Tanaman",
		Base:     base,
		API:      api,
		Columns: []Column[farm.Plant]{
			{Header: "Nama", Cell: func(p farm.Plant, _ *Lookup) string { return p.Name }},
			{Header: "Jenis", Cell: func(p farm.Plant, _ *Lookup) string { return p.Kind }},
			{Header: "Jumlah Tanam", Cell: func(p farm.Plant, _ *Lookup) string { return farm.Decimal(p.Quantity.Float()) }},
			{Header: "Tanggal Tanam", Cell: func(p farm.Plant, _ *Lookup) string { return p.PlantedDate.String() }},
		},
		Fields: []Field{
			{Name: "nama_tanaman", Label: "Nama tanaman", Type: TypeText, Required: true},
			{Name: "jenis", Label: "Jenis", Type: TypeText, Required: true},
			{Name: "jumlah_tanam", Label: "Jumlah tanam", Type: TypeNumber, Step: "1"},
			{Name: "tanggal_tanam", Label: "Tanggal tanam", Type: TypeDate},
		},
		New: func(now time.Time) farm.Plant { return farm.Plant{PlantedDate: farm.NewDate(now)} },
		Values: func(p farm.Plant) map[string]string {
			return map[string]string{
				"nama_tanaman":  p.Name,
				"jenis":         p.Kind,
				"jumlah_tanam":  number(p.Quantity),
				"tanggal_tanam": p.PlantedDate.String(),
			}
		},
		Bind: func(form url.Values, p farm.Plant) (farm.Plant, map[string]string) {
			f := NewFormReader(form)
			p.Name = f.Text("nama_tanaman", "Nama tanaman", true)
			p.Kind = f.Text("jenis", "Jenis", true)
			p.Quantity = f.Number("jumlah_tanam", "Jumlah tanam", false)
			p.PlantedDate = f.Date("tanggal_tanam", "Tanggal tanam", false)
			return p, f.Errors()
		},
		Summary: func(items []farm.Plant, _ *Lookup) []Stat {
			total := 0.0
			for _, p := range items {
				total += p.Quantity.Float()
			}
			return []Stat{
				{Label: "Jenis tanaman", Value: farm.Decimal(float64(len(items)))},
				{Label: "Total bibit ditanam", Value: farm.Decimal(total)},
			}
		},
		Fallback:  farm.SamplePlants,
		CanCreate: true,
		CanEdit:   true,
		CanDelete: true,
	}
}

// Plots lists land parcels with their supervising manager.
func Plots(base, api, managers string) *Resource[farm.Plot] {
	return &Resource[farm.Plot]{
		Title:    "Data Lahan",
		Singular: "Lahan",
		Base:     base,
		API:      api,
		Lookups:  LookupSpec{Managers: managers},
		Columns: []Column[farm.Plot]{
			{Header: "Nama", Cell: func(p farm.Plot, _ *Lookup) string { return p.Name }},
			{Header: "Luas (ha)", Cell: func(p farm.Plot, _ *Lookup) string { return farm.Decimal(p.Area.Float()) }},
			{Header: "Lokasi", Cell: func(p farm.Plot, _ *Lookup) string { return p.Location }},
			{Header: "Pengawas", Cell: func(p farm.Plot, l *Lookup) string { return l.ManagerName(p.SupervisorID) }},
		},
		Fields: []Field{
			{Name: "nama_lahan", Label: "Nama lahan", Type: TypeText, Required: true},
			{Name: "luas", Label: "Luas (ha)", Type: TypeNumber, Step: "0.01", Required: true},
			{Name: "lokasi", Label: "Lokasi", Type: TypeText, Required: true},
			{Name: "id_pengawas", Label: "Pengawas", Type: TypeSelect, Source: SourceManagers, Required: true},
		},
		New: func(time.Time) farm.Plot { return farm.Plot{} },
		Values: func(p farm.Plot) map[string]string {
			return map[string]string{
				"nama_lahan":  p.Name,
				"luas":        number(p.Area),
				"lokasi":      p.Location,
				"id_pengawas": idValue(p.SupervisorID),
			}
		},
		Bind: func(form url.Values, p farm.Plot) (farm.Plot, map[string]string) {
			f := NewFormReader(form)
			p.Name = f.Text("nama_lahan", "Nama lahan", true)
			p.Area = f.Positive("luas", "Luas")
			p.Location = f.Text("lokasi", "Lokasi", true)
			p.SupervisorID = f.ID("id_pengawas", "Pengawas", true)
			return p, f.Errors()
		},
		Summary: func(items []farm.Plot, _ *Lookup) []Stat {
			s := analytics.SummarisePlots(items)
			return []Stat{
				{Label: "Jumlah lahan", Value: farm.Decimal(float64(s.Count))},
				{Label: "Total luas", Value: farm.Decimal(s.TotalArea) + " ha"},
			}
		},
		Fallback:  farm.SamplePlots,
		CanCreate: true,
		CanEdit:   true,
		CanDelete: true,
	}
}

// Plantings lists which plant grows on which plot.
func Plantings(base, api, plants, plots string) *Resource[farm.PlotPlanting] {
	return &Resource[farm.PlotPlanting]{
		Title:    "Tanaman per Lahan",
		Singular: "Penanaman",
		Base:     base,
		API:      api,
		Lookups:  LookupSpec{Plants: plants, Plots: plots},
		Columns: []Column[farm.PlotPlanting]{
			{Header: "Lahan", Cell: func(p farm.PlotPlanting, l *Lookup) string { return l.PlotName(p.PlotID) }},
			{Header: "Tanaman", Cell: func(p farm.PlotPlanting, l *Lookup) string { return l.PlantName(p.PlantID) }},
			{Header: "Tanggal Tanam", Cell: func(p farm.PlotPlanting, _ *Lookup) string { return p.PlantedDate.String() }},
			{
				Header: "Status",
				Cell:   func(p farm.PlotPlanting, _ *Lookup) string { return farm.Label(p.Status) },
				Badge:  func(p farm.PlotPlanting) string { return StatusBadge(p.Status) },
			},
		},
		Fields: []Field{
			{Name: "id_lahan", Label: "Lahan", Type: TypeSelect, Source: SourcePlots, Required: true},
			{Name: "id_tanaman", Label: "Tanaman", Type: TypeSelect, Source: SourcePlants, Required: true},
			{Name: "tanggal_tanam", Label: "Tanggal tanam", Type: TypeDate, Required: true},
			{Name: "status", Label: "Status", Type: TypeSelect, Required: true,
				Options: Choices(farm.PlantingGrowing, farm.PlantingHarvested, farm.PlantingFailed)},
		},
		New: func(now time.Time) farm.PlotPlanting {
			return farm.PlotPlanting{PlantedDate: farm.NewDate(now), Status: farm.PlantingGrowing}
		},
		Values: func(p farm.PlotPlanting) map[string]string {
			return map[string]string{
				"id_lahan":      idValue(p.PlotID),
				"id_tanaman":    idValue(p.PlantID),
				"tanggal_tanam": p.PlantedDate.String(),
				"status":        string(p.Status),
			}
		},
		Bind: func(form url.Values, p farm.PlotPlanting) (farm.PlotPlanting, map[string]string) {
			f := NewFormReader(form)
			p.PlotID = f.ID("id_lahan", "Lahan", true)
			p.PlantID = f.ID("id_tanaman", "Tanaman", true)
			p.PlantedDate = f.Date("tanggal_tanam", "Tanggal tanam", true)
			p.Status = OneOf(f, "status", "Status", farm.PlantingGrowing, farm.PlantingHarvested, farm.PlantingFailed)
			return p, f.Errors()
		},
		Summary: func(items []farm.PlotPlanting, _ *Lookup) []Stat {
			s := analytics.SummarisePlantings(items)
			return []Stat{
				{Label: "Penanaman", Value: farm.Decimal(float64(s.Count))},
				{Label: "Tumbuh", Value: farm.Decimal(float64(s.ByStatus[farm.PlantingGrowing]))},
				{Label: "Dipanen", Value: farm.Decimal(float64(s.ByStatus[farm.PlantingHarvested]))},
				{Label: "Gagal", Value: farm.Decimal(float64(s.ByStatus[farm.PlantingFailed]))},
			}
		},
		CanCreate: true,
		CanEdit:   true,
		CanDelete: true,
	}
}

// Harvests lists harvested lots with their sale status.
func Harvests(kit *Kit, base, api string, lookups LookupSpec) *Resource[farm.Harvest] {
	own := HarvestOwnership
	return &Resource[farm.Harvest]{
		Title:     "Hasil Panen",
		Singular:  "Hasil Panen",
		Base:      base,
		API:       api,
		Lookups:   lookups,
		Ownership: &own,
		Columns: []Column[farm.Harvest]{
			{Header: "Tanggal", Cell: func(h farm.Harvest, _ *Lookup) string { return h.HarvestDate.String() }},
			{Header: "Tanaman", Cell: func(h farm.Harvest, l *Lookup) string { return l.PlantName(h.PlantID) }},
			{Header: "Lahan", Cell: func(h farm.Harvest, l *Lookup) string { return l.PlotName(h.PlotID) }},
			{Header: "Kuantitas", Cell: func(h farm.Harvest, _ *Lookup) string { return farm.Kg(h.Quantity.Float()) }},
			{Header: "Kualitas", Cell: func(h farm.Harvest, _ *Lookup) string { return string(h.Grade) }},
			{Header: "Harga/kg", Cell: func(h farm.Harvest, _ *Lookup) string { return farm.Rupiah(h.UnitPrice.Float()) }},
			{
				Header: "Status",
				Cell:   func(h farm.Harvest, _ *Lookup) string { return farm.Label(h.Status) },
				Badge:  func(h farm.Harvest) string { return StatusBadge(h.Status) },
			},
		},
		Fields: []Field{
			{Name: "id_tanaman", Label: "Tanaman", Type: TypeSelect, Source: SourcePlants, Required: true},
			{Name: "id_lahan", Label: "Lahan", Type: TypeSelect, Source: SourcePlots, Required: true},
			{Name: "tanggal_panen", Label: "Tanggal panen", Type: TypeDate, Required: true},
			{Name: "kuantitas", Label: "Kuantitas (kg)", Type: TypeNumber, Step: "0.01", Required: true},
			{Name: "kualitas", Label: "Kualitas", Type: TypeSelect, Required: true,
				Options: Choices(farm.GradeA, farm.GradeB, farm.GradeC)},
			{Name: "harga_satuan", Label: "Harga satuan (Rp/kg)", Type: TypeNumber, Step: "1", Required: true},
		},
		New: func(now time.Time) farm.Harvest {
			return farm.Harvest{HarvestDate: farm.NewDate(now), Grade: farm.GradeA, Status: farm.HarvestPending}
		},
		Values: func(h farm.Harvest) map[string]string {
			return map[string]string{
				"id_tanaman":    idValue(h.PlantID),
				"id_lahan":      idValue(h.PlotID),
				"tanggal_panen": h.HarvestDate.String(),
				"kuantitas":     number(h.Quantity),
				"kualitas":      string(h.Grade),
				"harga_satuan":  number(h.UnitPrice),
			}
		},
		Bind: func(form url.Values, h farm.Harvest) (farm.Harvest, map[string]string) {
			f := NewFormReader(form)
			h.PlantID = f.ID("id_tanaman", "Tanaman", true)
			h.PlotID = f.ID("id_lahan", "Lahan", true)
			h.HarvestDate = f.Date("tanggal_panen", "Tanggal panen", true)
			h.Quantity = f.Positive("kuantitas", "Kuantitas")
			h.Grade = OneOf(f, "kualitas", "Kualitas", farm.GradeA, farm.GradeB, farm.GradeC)
			h.UnitPrice = f.Positive("harga_satuan", "Harga satuan")
			return h, f.Errors()
		},
		Summary: func(items []farm.Harvest, _ *Lookup) []Stat {
			s := analytics.SummariseHarvests(items)
			return []Stat{
				{Label: "Total panen", Value: farm.Kg(s.TotalKg)},
				{Label: "Siap dijual", Value: farm.Kg(s.ReadyKg)},
				{Label: "Nilai stok", Value: farm.Rupiah(s.StockValue)},
				{Label: "Rata-rata per panen", Value: farm.Kg(s.AverageKg)},
			}
		},
		Chart: func(items []farm.Harvest, _ *Lookup) template.HTML {
			return TrendChart(kit, "Panen per bulan", "kg", analytics.HarvestKgByMonth(items).LastPeriods(12), true)
		},
		Export: func(items []farm.Harvest, l *Lookup) export.Table {
			return export.HarvestTable(items, l.Names())
		},
		Toggle:      HarvestToggle,
		ToggleLabel: HarvestToggleLabel,
		Fallback:    farm.SampleHarvests,
		CanCreate:   true,
		CanEdit:     true,
		CanDelete:   true,
	}
}

// Readings lists sensor readings of plots.
func Readings(kit *Kit, base, api, plots string) *Resource[farm.Reading] {
	return &Resource[farm.Reading]{
		Title:    "Monitoring Lahan",
		Singular: "Data Monitoring",
		Base:     base,
		API:      api,
		Lookups:  LookupSpec{Plots: plots},
		Columns: []Column[farm.Reading]{
			{Header: "Waktu", Cell: func(r farm.Reading, _ *Lookup) string { return r.RecordedAt.String() }},
			{Header: "Lahan", Cell: func(r farm.Reading, l *Lookup) string { return l.PlotName(r.PlotID) }},
			{Header: "Suhu (°C)", Cell: func(r farm.Reading, _ *Lookup) string { return farm.Decimal(r.Temperature.Float()) }},
			{Header: "Kelembapan (%)", Cell: func(r farm.Reading, _ *Lookup) string { return farm.Decimal(r.Humidity.Float()) }},
		},
		Fields: []Field{
			{Name: "id_lahan", Label: "Lahan", Type: TypeSelect, Source: SourcePlots, Required: true},
			{Name: "suhu", Label: "Suhu (°C)", Type: TypeNumber, Step: "0.1", Required: true},
			{Name: "kelembapan", Label: "Kelembapan (%)", Type: TypeNumber, Step: "0.1", Required: true},
			{Name: "waktu", Label: "Waktu", Type: TypeDateTime, Required: true},
		},
		New: func(now time.Time) farm.Reading {
			return farm.Reading{RecordedAt: farm.Stamp{Time: now.Truncate(time.Minute)}}
		},
		Values: func(r farm.Reading) map[string]string {
			stamp := ""
			if !r.RecordedAt.IsZero() {
				stamp = r.RecordedAt.Format("2006-01-02T15:04")
			}
			return map[string]string{
				"id_lahan":   idValue(r.PlotID),
				"suhu":       r.Temperature.String(),
				"kelembapan": r.Humidity.String(),
				"waktu":      stamp,
			}
		},
		Bind: func(form url.Values, r farm.Reading) (farm.Reading, map[string]string) {
			f := NewFormReader(form)
			r.PlotID = f.ID("id_lahan", "Lahan", true)
			r.Temperature = f.Number("suhu", "Suhu", true)
			r.Humidity = f.Number("kelembapan", "Kelembapan", true)
			if r.Humidity > 100 {
				f.Fail("kelembapan", "Kelembapan maksimal 100")
			}
			r.RecordedAt = f.Stamp("waktu", "Waktu", true)
			return r, f.Errors()
		},
		Summary: func(items []farm.Reading, l *Lookup) []Stat {
			s := analytics.SummariseReadings(items)
			stats := []Stat{
				{Label: "Jumlah data", Value: farm.Decimal(float64(s.Count))},
				{Label: "Rata-rata suhu", Value: farm.Decimal(s.AverageTemperature) + " °C"},
				{Label: "Rata-rata kelembapan", Value: farm.Decimal(s.AverageHumidity) + " %"},
			}
			if s.Latest != nil {
				stats = append(stats, Stat{
					Label: "Data terakhir",
					Value: s.Latest.RecordedAt.String(),
					Hint:  l.PlotName(s.Latest.PlotID),
				})
			}
			return stats
		},
		Chart: func(items []farm.Reading, _ *Lookup) template.HTML {
			return TrendChart(kit, "Suhu harian", "°C", analytics.TemperatureByDay(items).LastPeriods(14), false)
		},
		CanCreate: true,
		CanEdit:   true,
		CanDelete: true,
	}
}

// Purchases lists orders. Rows are editable only in their status.
func Purchases(kit *Kit, base, api string, lookups LookupSpec) *Resource[farm.Purchase] {
	return &Resource[farm.Purchase]{
		Title:    "Data Pembelian",
		Singular: "Pembelian",
		Base:     base,
		API:      api,
		Lookups:  lookups,
		Columns: []Column[farm.Purchase]{
			{Header: "Tanggal", Cell: func(p farm.Purchase, _ *Lookup) string { return p.Date.String() }},
			{Header: "Tanaman", Cell: func(p farm.Purchase, l *Lookup) string { return l.PlantName(p.PlantID) }},
			{Header: "Kuantitas", Cell: func(p farm.Purchase, _ *Lookup) string { return farm.Kg(p.Quantity.Float()) }},
			{Header: "Total", Cell: func(p farm.Purchase, _ *Lookup) string { return farm.Rupiah(p.TotalPrice.Float()) }},
			{
				Header: "Status",
				Cell:   func(p farm.Purchase, _ *Lookup) string { return farm.Label(p.Status) },
				Badge:  func(p farm.Purchase) string { return StatusBadge(p.Status) },
			},
		},
		Fields: []Field{
			{Name: "status", Label: "Status", Type: TypeSelect, Required: true,
				Options: Choices(farm.PurchaseProcessing, farm.PurchaseReceived)},
		},
		New:    func(time.Time) farm.Purchase { return farm.Purchase{} },
		Values: func(p farm.Purchase) map[string]string { return map[string]string{"status": string(p.Status)} },
		Bind: func(form url.Values, p farm.Purchase) (farm.Purchase, map[string]string) {
			f := NewFormReader(form)
			p.Status = OneOf(f, "status", "Status", farm.PurchaseProcessing, farm.PurchaseReceived)
			return p, f.Errors()
		},
		Summary: func(items []farm.Purchase, _ *Lookup) []Stat {
			s := analytics.SummarisePurchases(items)
			return []Stat{
				{Label: "Transaksi", Value: farm.Decimal(float64(s.Count))},
				{Label: "Total terjual", Value: farm.Kg(s.TotalKg)},
				{Label: "Nilai transaksi", Value: farm.Rupiah(s.Total)},
				{Label: "Menunggu diterima", Value: farm.Decimal(float64(s.ByStatus[farm.PurchaseProcessing]))},
			}
		},
		Chart: func(items []farm.Purchase, _ *Lookup) template.HTML {
			return TrendChart(kit, "Nilai pembelian per bulan", "Rp", analytics.PurchaseValueByMonth(items).LastPeriods(12), true)
		},
		Export: func(items []farm.Purchase, l *Lookup) export.Table {
			return export.PurchaseTable(items, l.Names())
		},
		CanEdit:   true,
		CanDelete: true,
	}
}

// Users lists accounts of one role.
func Users(title, singular, base, api string, role farm.Role) *Resource[farm.User] {
	return &Resource[farm.User]{
		Title:    title,
		Singular: singular,
		Base:     base,
		API:      api,
		Hints:    map[string]string{"username": "username"},
		Columns: []Column[farm.User]{
			{Header: "Nama", Cell: func(u farm.User, _ *Lookup) string { return u.Name }},
			{Header: "Username", Cell: func(u farm.User, _ *Lookup) string { return u.Username }},
			{Header: "Peran", Cell: func(u farm.User, _ *Lookup) string { return farm.Label(u.Role) }},
		},
		Fields: []Field{
			{Name: "nama", Label: "Nama", Type: TypeText, Required: true},
			{Name: "username", Label: "Username", Type: TypeText, Required: true},
			{Name: "password", Label: "Kata sandi", Type: TypePassword, Required: true, CreateOnly: true},
		},
		New: func(time.Time) farm.User { return farm.User{Role: role} },
		Values: func(u farm.User) map[string]string {
			return map[string]string{"nama": u.Name, "username": u.Username}
		},
		Bind: func(form url.Values, u farm.User) (farm.User, map[string]string) {
			f := NewFormReader(form)
			u.Name = f.Text("nama", "Nama", true)
			u.Username = f.Text("username", "Username", true)
			u.Role = role
			if u.ID == 0 {
				u.Password = f.Text("password", "Kata sandi", true)
				if u.Password != "" && len(u.Password) < 6 {
					f.Fail("password", "Kata sandi minimal 6 karakter")
				}
			}
			return u, f.Errors()
		},
		Summary: func(items []farm.User, _ *Lookup) []Stat {
			return []Stat{{Label: "Jumlah " + singular, Value: farm.Decimal(float64(len(items)))}}
		},
		CanEdit:   true,
		CanDelete: true,
	}
}

func idValue(id farm.ID) string {
	if id == 0 {
		return ""
	}
	return id.String()
}
