package farm

// PlantingStatus tracks a plot planting.
type PlantingStatus string

const (
	PlantingGrowing   PlantingStatus = "tumbuh"
	PlantingHarvested PlantingStatus = "dipanen"
	PlantingFailed    PlantingStatus = "gagal"
)

// HarvestStatus drives buyer visibility of a harvest.
type HarvestStatus string

const (
	HarvestPending HarvestStatus = "pending"
	HarvestReady   HarvestStatus = "siap_jual"
	HarvestSold    HarvestStatus = "terjual"
)

// Toggled flips between ready-to-sell and pending validation. Sold harvests
// stay sold.
func (s HarvestStatus) Toggled() HarvestStatus {
	switch s {
	case HarvestReady:
		return HarvestPending
	case HarvestSold:
		return HarvestSold
	default:
		return HarvestReady
	}
}

// Grade is the quality class of a harvest.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
)

// PurchaseStatus tracks delivery of a purchase.
type PurchaseStatus string

const (
	PurchaseProcessing PurchaseStatus = "diproses"
	PurchaseReceived   PurchaseStatus = "diterima"
)

var statusLabels = map[string]string{
	string(PlantingGrowing):    "Tumbuh",
	string(PlantingHarvested):  "Dipanen",
	string(PlantingFailed):     "Gagal",
	string(HarvestPending):     "Menunggu validasi",
	string(HarvestReady):       "Siap dijual",
	string(HarvestSold):        "Terjual",
	string(PurchaseProcessing): "Diproses",
	string(PurchaseReceived):   "Diterima",
	string(RoleAdmin):          "Admin",
	string(RoleManager):        "Manajer",
	string(RoleBuyer):          "Pembeli",
}

// Label returns the display label for an enum value.
func Label[S ~string](s S) string {
	if label, ok := statusLabels[string(s)]; ok {
		return label
	}
	return string(s)
}
