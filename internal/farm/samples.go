package farm

import "time"

// Sample collections shown when FALLBACK_SAMPLES is enabled and the API is
// unreachable.

func SamplePlants() []Plant {
	planted := NewDate(time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC))
	return []Plant{
		{ID: 1, Name: "Padi IR64", Kind: "Serealia", Quantity: 1200, PlantedDate: planted},
		{ID: 2, Name: "Cabai Merah", Kind: "Hortikultura", Quantity: 450, PlantedDate: planted},
		{ID: 3, Name: "Jagung Manis", Kind: "Serealia", Quantity: 800, PlantedDate: planted},
	}
}

func SamplePlots() []Plot {
	return []Plot{
		{ID: 1, Name: "Blok A", Area: 1.5, Location: "Sawah utara"},
		{ID: 2, Name: "Blok B", Area: 0.75, Location: "Kebun timur"},
	}
}

func SampleHarvests() []Harvest {
	harvested := NewDate(time.Date(2025, 4, 14, 0, 0, 0, 0, time.UTC))
	return []Harvest{
		{ID: 1, PlantID: 1, PlotID: 1, HarvestDate: harvested, Quantity: 150, Grade: GradeA, UnitPrice: 2000, Status: HarvestReady},
		{ID: 2, PlantID: 2, PlotID: 2, HarvestDate: harvested, Quantity: 40, Grade: GradeB, UnitPrice: 35000, Status: HarvestPending},
	}
}
