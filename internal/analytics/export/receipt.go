package export

import (
	"bytes"
	"context"
	"html/template"

	"github.com/sipertani/sipertani/internal/farm"
)

// Renderer converts HTML to PDF.
type Renderer interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// Receipt is the printable proof of a purchase.
type Receipt struct {
	Purchase  farm.Purchase
	Buyer     farm.User
	PlantName string
	UnitPrice float64
}

var receiptTemplate = template.Must(template.New("receipt").Funcs(template.FuncMap{
	"rupiah": farm.Rupiah,
	"kg":     farm.Kg,
	"label":  farm.Label[farm.PurchaseStatus],
}).Parse(`<!doctype html>
<html lang="id"><head><meta charset="utf-8"><title>Struk Pembelian #{{.Purchase.ID}}</title>
<style>body{font-family:monospace;font-size:11px;margin:8px}h1{font-size:13px;text-align:center}table{width:100%}td.r{text-align:right}hr{border:0;border-top:1px dashed #000}</style>
</head><body>
<h1>SiPertani</h1>
<p>Struk #{{.Purchase.ID}}<br>{{.Purchase.Date}}<br>Pembeli: {{.Buyer.Name}} ({{.Buyer.Username}})</p>
<hr>
<table>
<tr><td>{{.PlantName}}</td><td class="r">{{kg .Purchase.Quantity.Float}}</td></tr>
<tr><td>Harga satuan</td><td class="r">{{rupiah .UnitPrice}}</td></tr>
</table>
<hr>
<table><tr><td><strong>Total</strong></td><td class="r"><strong>{{rupiah .Purchase.TotalPrice.Float}}</strong></td></tr>
<tr><td>Status</td><td class="r">{{label .Purchase.Status}}</td></tr></table>
</body></html>`))

// ReceiptHTML renders the receipt document.
func ReceiptHTML(r Receipt) (string, error) {
	var buf bytes.Buffer
	if err := receiptTemplate.Execute(&buf, r); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ReceiptPDF renders the receipt through renderer.
func ReceiptPDF(ctx context.Context, renderer Renderer, r Receipt) ([]byte, error) {
	html, err := ReceiptHTML(r)
	if err != nil {
		return nil, err
	}
	return renderer.RenderHTML(ctx, html)
}
