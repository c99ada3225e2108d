package buyer

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/sipertani/sipertani/internal/analytics/export"
	"github.com/sipertani/sipertani/internal/backend"
	"github.com/sipertani/sipertani/internal/farm"
	"github.com/sipertani/sipertani/internal/pages"
	"github.com/sipertani/sipertani/internal/resource"
	"github.com/sipertani/sipertani/report"
)

// receipt serves the printable receipt of one of the buyer's purchases, as
// PDF when a renderer is configured and as HTML otherwise.
func (h *Handler) receipt(w http.ResponseWriter, r *http.Request) {
	env := h.kit.Env(r)
	ctx := r.Context()

	var g errgroup.Group
	plants := pages.Collect(ctx, &g, h.kit, env, backend.PathPlants, farm.SamplePlants)
	purchases := pages.Collect[farm.Purchase](ctx, &g, h.kit, env, backend.PathBuyerPurchase, nil)
	_ = g.Wait()

	if env.Expired() {
		h.kit.Expire(w, r)
		return
	}
	id := farm.ParseID(chi.URLParam(r, "id"))
	var found *farm.Purchase
	for _, p := range resource.OwnedBy(purchases.Items(), resource.PurchaseBuyer, env.User()) {
		if p.ID == id {
			found = &p
			break
		}
	}
	if found == nil {
		if err := purchases.Err(); err != nil {
			h.kit.Redirect(w, r, Base+"/riwayat", pages.FlashError, "Gagal memuat pembelian: "+backend.Message(err))
			return
		}
		h.kit.Redirect(w, r, Base+"/riwayat", pages.FlashWarning, "Pembelian tidak ditemukan")
		return
	}

	lookup := &pages.Lookup{Plants: plants.Items()}
	rec := export.Receipt{
		Purchase:  *found,
		Buyer:     *env.User(),
		PlantName: lookup.PlantName(found.PlantID),
	}
	if q := found.Quantity.Float(); q > 0 {
		rec.UnitPrice = found.TotalPrice.Float() / q
	}

	name := "struk-" + found.ID.String()
	if h.pdf != nil {
		pdf, err := export.ReceiptPDF(ctx, h.pdf, rec)
		if err == nil {
			w.Header().Set("Content-Type", "application/pdf")
			w.Header().Set("Content-Disposition", `inline; filename="`+name+`.pdf"`)
			_, _ = w.Write(pdf)
			return
		}
		if !errors.Is(err, report.ErrDisabled) {
			h.logger().Warn("render receipt pdf", slog.String("purchase", found.ID.String()), slog.Any("error", err))
		}
	}

	html, err := export.ReceiptHTML(rec)
	if err != nil {
		h.logger().Error("render receipt", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(html))
}
