package pages

import (
	"context"
	"html/template"
	"net/url"

	"github.com/sipertani/sipertani/internal/backend"
	"github.com/sipertani/sipertani/internal/farm"
	"github.com/sipertani/sipertani/internal/resource"
)

// View is the data of pages/resource.html.
type View struct {
	Title     string
	Singular  string
	Base      string
	Headers   []string
	Rows      []RowView
	Form      *FormView
	Stats     []Stat
	Chart     template.HTML
	Error     string
	CanCreate bool
	Exports   bool
}

// RowView is one table row.
type RowView struct {
	ID        string
	Cells     []CellView
	Links     []Link
	CanEdit   bool
	CanDelete bool
	Toggle    string
}

// CellView is one table cell.
type CellView struct {
	Text  string
	Badge string
}

// FormView is the open create/edit modal.
type FormView struct {
	Heading string
	Action  string
	Cancel  string
	ID      string
	Fields  []FieldView
	Error   string
}

// FieldView is one rendered input.
type FieldView struct {
	Field
	Value   string
	Error   string
	Choices []Option
}

func (p *Page[T]) view(l *loaded[T], form *FormView) View {
	v := View{
		Title:     p.res.Title,
		Singular:  p.res.Singular,
		Base:      p.res.Base,
		Form:      form,
		CanCreate: p.res.CanCreate,
		Exports:   p.res.Export != nil,
	}
	if err := l.ctrl.Err(); err != nil {
		v.Error = "Gagal memuat data: " + backend.Message(err)
	}
	for _, c := range p.res.Columns {
		v.Headers = append(v.Headers, c.Header)
	}
	for _, item := range l.items {
		row := RowView{
			ID:        item.Key().String(),
			CanEdit:   p.res.CanEdit,
			CanDelete: p.res.CanDelete,
		}
		for _, c := range p.res.Columns {
			cell := CellView{Text: c.Cell(item, l.lookup)}
			if c.Badge != nil {
				cell.Badge = c.Badge(item)
			}
			row.Cells = append(row.Cells, cell)
		}
		if p.res.Links != nil {
			row.Links = p.res.Links(item)
		}
		if p.res.Toggle != nil && p.res.ToggleLabel != nil {
			row.Toggle = p.res.ToggleLabel(item)
		}
		v.Rows = append(v.Rows, row)
	}
	if p.res.Summary != nil {
		v.Stats = p.res.Summary(l.items, l.lookup)
	}
	if p.res.Chart != nil {
		v.Chart = p.res.Chart(l.items, l.lookup)
	}
	return v
}

func (p *Page[T]) formView(id farm.ID, values, errs map[string]string, message string, lookup *Lookup) *FormView {
	form := &FormView{
		Heading: "Tambah " + p.res.Singular,
		Action:  p.res.Base,
		Cancel:  p.res.Base,
		Error:   message,
	}
	if id != 0 {
		form.Heading = "Ubah " + p.res.Singular
		form.ID = id.String()
	}
	for _, f := range p.res.Fields {
		if f.CreateOnly && id != 0 {
			continue
		}
		fv := FieldView{Field: f, Value: values[f.Name], Error: errs[f.Name]}
		if f.Type == TypePassword {
			fv.Value = ""
		}
		if f.Type == TypeSelect {
			choices := f.Options
			if f.Source != "" {
				choices = lookup.Options(f.Source)
			}
			for _, c := range choices {
				c.Selected = c.Value == fv.Value
				fv.Choices = append(fv.Choices, c)
			}
		}
		form.Fields = append(form.Fields, fv)
	}
	return form
}

func flatten(values url.Values) map[string]string {
	out := make(map[string]string, len(values))
	for k := range values {
		out[k] = values.Get(k)
	}
	return out
}

// HarvestToggle flips a harvest between ready-to-sell and pending and
// returns the label of the new status.
func HarvestToggle(ctx context.Context, target resource.Target[farm.Harvest], id farm.ID, confirmed bool) (string, error) {
	status, err := resource.ToggleHarvest(ctx, target, id, confirmed)
	return farm.Label(status), err
}

// HarvestToggleLabel names the toggle action of h, empty once sold.
func HarvestToggleLabel(h farm.Harvest) string {
	switch h.Status {
	case farm.HarvestSold:
		return ""
	case farm.HarvestReady:
		return "Tandai menunggu validasi"
	default:
		return "Tandai siap jual"
	}
}

// StatusBadge maps an enum value to a pill class.
func StatusBadge[S ~string](s S) string {
	switch string(s) {
	case string(farm.HarvestReady), string(farm.PurchaseReceived), string(farm.PlantingHarvested):
		return "badge-ok"
	case string(farm.HarvestSold):
		return "badge-muted"
	case string(farm.PlantingFailed):
		return "badge-bad"
	default:
		return "badge-wait"
	}
}
