package pages

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/sipertani/sipertani/internal/analytics/export"
	"github.com/sipertani/sipertani/internal/farm"
	"github.com/sipertani/sipertani/internal/resource"
)

// Lookup sources for select fields and name columns.
const (
	SourcePlants   = "plants"
	SourcePlots    = "plots"
	SourceManagers = "managers"
	SourceHarvests = "harvests"
)

// LookupSpec names the collections a page needs besides its own.
type LookupSpec struct {
	Plants   string
	Plots    string
	Managers string
	Harvests string
	// OwnPlots keeps only the plots supervised by the signed-in user.
	OwnPlots bool
}

// Lookup holds the secondary collections of a page.
type Lookup struct {
	Plants   []farm.Plant
	Plots    []farm.Plot
	Managers []farm.User
	Harvests []farm.Harvest

	sampled bool
}

// Option is one choice of a select field.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

func (s LookupSpec) load(ctx context.Context, g *errgroup.Group, kit *Kit, env *Env, into *Lookup) func() {
	var (
		plants   = loader[farm.Plant](kit, env, s.Plants, farm.SamplePlants)
		plots    = loader[farm.Plot](kit, env, s.Plots, farm.SamplePlots)
		managers = loader[farm.User](kit, env, s.Managers, nil)
		harvests = loader[farm.Harvest](kit, env, s.Harvests, farm.SampleHarvests)
	)
	var loads []func(context.Context) error
	if plants != nil {
		loads = append(loads, plants.Load)
	}
	if plots != nil {
		loads = append(loads, plots.Load)
	}
	if managers != nil {
		loads = append(loads, managers.Load)
	}
	if harvests != nil {
		loads = append(loads, harvests.Load)
	}
	for _, load := range loads {
		g.Go(func() error {
			_ = load(ctx)
			return nil
		})
	}
	return func() {
		into.sampled = (plants != nil && plants.Sampled()) ||
			(plots != nil && plots.Sampled()) ||
			(managers != nil && managers.Sampled()) ||
			(harvests != nil && harvests.Sampled())
		if plants != nil {
			into.Plants = plants.Items()
		}
		if plots != nil {
			into.Plots = plots.Items()
			if s.OwnPlots {
				into.Plots = resource.OwnedBy(into.Plots, resource.PlotSupervisor, env.User())
			}
		}
		if managers != nil {
			into.Managers = managers.Items()
		}
		if harvests != nil {
			into.Harvests = harvests.Items()
		}
	}
}

func loader[T farm.Record](kit *Kit, env *Env, path string, sample func() []T) *resource.Controller[T] {
	if path == "" {
		return nil
	}
	opts := []resource.Option[T]{
		resource.WithOnExpired[T](env.Expire),
		resource.WithLogger[T](kit.logger()),
	}
	if kit.Fallback && sample != nil {
		opts = append(opts, resource.WithFallback(sample))
	}
	return resource.New[T](env.Client, path, opts...)
}

// PlantName resolves a plant id.
func (l *Lookup) PlantName(id farm.ID) string {
	for _, p := range l.Plants {
		if p.ID == id {
			return p.Name
		}
	}
	return unknown(id)
}

// PlotName resolves a plot id.
func (l *Lookup) PlotName(id farm.ID) string {
	for _, p := range l.Plots {
		if p.ID == id {
			return p.Name
		}
	}
	return unknown(id)
}

// ManagerName resolves a manager id.
func (l *Lookup) ManagerName(id farm.ID) string {
	for _, u := range l.Managers {
		if u.ID == id {
			return u.Name
		}
	}
	return unknown(id)
}

// Harvest returns the harvest with id.
func (l *Lookup) Harvest(id farm.ID) (farm.Harvest, bool) {
	for _, h := range l.Harvests {
		if h.ID == id {
			return h, true
		}
	}
	return farm.Harvest{}, false
}

// Names maps ids to names for exports.
func (l *Lookup) Names() export.Names {
	names := export.Names{Plants: map[farm.ID]string{}, Plots: map[farm.ID]string{}}
	for _, p := range l.Plants {
		names.Plants[p.ID] = p.Name
	}
	for _, p := range l.Plots {
		names.Plots[p.ID] = p.Name
	}
	return names
}

// Options lists the choices of source sorted by label.
func (l *Lookup) Options(source string) []Option {
	var out []Option
	switch source {
	case SourcePlants:
		for _, p := range l.Plants {
			out = append(out, Option{Value: p.ID.String(), Label: p.Name})
		}
	case SourcePlots:
		for _, p := range l.Plots {
			out = append(out, Option{Value: p.ID.String(), Label: p.Name})
		}
	case SourceManagers:
		for _, u := range l.Managers {
			out = append(out, Option{Value: u.ID.String(), Label: u.Name + " (" + u.Username + ")"})
		}
	case SourceHarvests:
		for _, h := range l.Harvests {
			out = append(out, Option{Value: h.ID.String(), Label: "#" + h.ID.String() + " " + l.PlantName(h.PlantID)})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

func unknown(id farm.ID) string {
	if id == 0 {
		return "-"
	}
	return "#" + id.String()
}
