package resource

import "github.com/sipertani/sipertani/internal/farm"

// OwnedBy keeps the rows whose owner key equals the user's id. Nothing is
// kept until the profile is known.
func OwnedBy[T any](items []T, owner func(T) farm.ID, user *farm.User) []T {
	out := make([]T, 0, len(items))
	if user == nil || user.ID == 0 {
		return out
	}
	for _, item := range items {
		if owner(item) == user.ID {
			out = append(out, item)
		}
	}
	return out
}

// OnPlots keeps the rows that belong to one of plots.
func OnPlots[T any](items []T, plot func(T) farm.ID, plots []farm.Plot) []T {
	ids := make(map[farm.ID]struct{}, len(plots))
	for _, p := range plots {
		ids[p.ID] = struct{}{}
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		if _, ok := ids[plot(item)]; ok {
			out = append(out, item)
		}
	}
	return out
}

// Owner accessors for the scoped collections.
func HarvestSupervisor(h farm.Harvest) farm.ID { return h.SupervisorID }
func PlotSupervisor(p farm.Plot) farm.ID       { return p.SupervisorID }
func PurchaseBuyer(p farm.Purchase) farm.ID    { return p.BuyerID }
func PurchaseSeller(p farm.Purchase) farm.ID   { return p.SellerID }
func ReadingPlot(r farm.Reading) farm.ID       { return r.PlotID }
func PlantingPlot(p farm.PlotPlanting) farm.ID { return p.PlotID }
