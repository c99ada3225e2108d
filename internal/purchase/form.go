// Package purchase holds the buyer's order form: harvest selection,
// quantity entry and the derived read-only total.
package purchase

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/sipertani/sipertani/internal/farm"
)

// ErrInvalid is returned by Request when the form does not validate.
var ErrInvalid = errors.New("purchase: invalid form")

// Field names used for validation messages.
const (
	FieldHarvest  = "id_hasil"
	FieldQuantity = "kuantitas"
	FieldBuyer    = "id_pembeli"
)

var validate = validator.New()

type input struct {
	HarvestID farm.ID `validate:"required"`
	Quantity  float64 `validate:"gt=0"`
	BuyerID   farm.ID `validate:"required"`
}

var messages = map[string]string{
	"HarvestID": "Pilih hasil panen terlebih dahulu",
	"Quantity":  "Jumlah harus lebih dari 0",
	"BuyerID":   "Profil pembeli belum dimuat",
}

var fields = map[string]string{
	"HarvestID": FieldHarvest,
	"Quantity":  FieldQuantity,
	"BuyerID":   FieldBuyer,
}

// Form is the purchase form state. The zero value is an empty form.
type Form struct {
	harvest  *farm.Harvest
	sellerID farm.ID
	text     string
	quantity float64
	parsed   bool
}

// SelectHarvest picks the harvest being bought. The unit price and seller
// follow the harvest.
func (f *Form) SelectHarvest(h farm.Harvest) {
	f.harvest = &h
	f.sellerID = h.SupervisorID
}

// ClearHarvest deselects the harvest; the total becomes empty.
func (f *Form) ClearHarvest() {
	f.harvest = nil
	f.sellerID = 0
}

// SetQuantity records the raw quantity input.
func (f *Form) SetQuantity(text string) {
	f.text = text
	n, ok := farm.ParseNumber(text)
	f.quantity = n.Float()
	f.parsed = ok && !math.IsNaN(f.quantity) && !math.IsInf(f.quantity, 0)
}

// Harvest returns the selected harvest.
func (f *Form) Harvest() (farm.Harvest, bool) {
	if f.harvest == nil {
		return farm.Harvest{}, false
	}
	return *f.harvest, true
}

// QuantityText returns the raw quantity input.
func (f *Form) QuantityText() string { return f.text }

// SellerID returns the owner of the selected harvest.
func (f *Form) SellerID() farm.ID { return f.sellerID }

// UnitPrice returns the selected harvest's price per kg.
func (f *Form) UnitPrice() float64 {
	if f.harvest == nil {
		return 0
	}
	return f.harvest.UnitPrice.Float()
}

// Amount returns quantity × unit price rounded to two decimals. ok is false
// while there is no harvest or no numeric quantity.
func (f *Form) Amount() (float64, bool) {
	if f.harvest == nil || !f.parsed {
		return 0, false
	}
	return math.Round(f.quantity*f.UnitPrice()*100) / 100, true
}

// Total renders Amount for the read-only total field, e.g. "20000.00".
func (f *Form) Total() string {
	amount, ok := f.Amount()
	if !ok {
		return ""
	}
	return fmt.Sprintf("%.2f", amount)
}

// Validate returns user-facing messages keyed by field.
func (f *Form) Validate(buyer *farm.User) map[string]string {
	in := input{}
	if f.harvest != nil {
		in.HarvestID = f.harvest.ID
	}
	if f.parsed {
		in.Quantity = f.quantity
	}
	if buyer != nil {
		in.BuyerID = buyer.ID
	}
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	out := map[string]string{}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			out[fields[fe.Field()]] = messages[fe.Field()]
		}
	}
	return out
}

// Request builds the purchase payload. Nothing is built when validation
// fails.
func (f *Form) Request(buyer *farm.User, now time.Time) (farm.Purchase, error) {
	if errs := f.Validate(buyer); len(errs) > 0 {
		return farm.Purchase{}, ErrInvalid
	}
	amount, _ := f.Amount()
	return farm.Purchase{
		BuyerID:    buyer.ID,
		SellerID:   f.sellerID,
		HarvestID:  f.harvest.ID,
		PlantID:    f.harvest.PlantID,
		Quantity:   farm.Number(f.quantity),
		TotalPrice: farm.Number(amount),
		Date:       farm.NewDate(now),
		Status:     farm.PurchaseProcessing,
	}, nil
}
