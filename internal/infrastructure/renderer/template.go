// Package renderer turns contract data into PDF files.
package renderer

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	appdocument "github.com/recyclemart/backend/internal/application/document"
	"github.com/shopspring/decimal"
)

// contractTemplate is the built-in contract layout. Both halves of the pair
// render from it; only the title and invoice number differ.
const contractTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>{{.DocumentTitle}}</title>
<style>
  body { font-family: "Helvetica Neue", Arial, sans-serif; color: #1a1a1a; margin: 0; padding: 32px; }
  .header { display: flex; justify-content: space-between; border-bottom: 2px solid #2e7d32; padding-bottom: 16px; }
  .header h1 { font-size: 22px; margin: 0; }
  .meta { text-align: right; font-size: 12px; color: #555; }
  .meta .invoice { font-size: 15px; font-weight: bold; color: #1a1a1a; }
  .parties { display: flex; gap: 48px; margin: 24px 0; }
  .party h2 { font-size: 13px; text-transform: uppercase; letter-spacing: 1px; color: #2e7d32; margin-bottom: 4px; }
  .party p { margin: 2px 0; font-size: 13px; }
  table { width: 100%; border-collapse: collapse; margin-top: 16px; }
  th { text-align: left; font-size: 12px; text-transform: uppercase; color: #555; border-bottom: 1px solid #ccc; padding: 8px 4px; }
  td { padding: 10px 4px; font-size: 13px; border-bottom: 1px solid #eee; }
  .total td { font-weight: bold; font-size: 15px; border-bottom: none; }
  .terms { margin-top: 32px; font-size: 12px; color: #444; }
  .signatures { display: flex; gap: 48px; margin-top: 64px; }
  .signature { flex: 1; border-top: 1px solid #999; padding-top: 8px; font-size: 12px; color: #555; }
</style>
</head>
<body>
  <div class="header">
    <h1>{{.DocumentTitle}}</h1>
    <div class="meta">
      <div class="invoice">{{.InvoiceNumber}}</div>
      <div>Issued {{formatDate .IssuedAt}}</div>
    </div>
  </div>

  <div class="parties">
    <div class="party">
      <h2>Buyer</h2>
      <p>{{.BuyerCompany}}</p>
      <p>{{.BuyerName}}</p>
    </div>
    <div class="party">
      <h2>Supplier</h2>
      <p>{{.SupplierCompany}}</p>
      <p>{{.SupplierName}}</p>
    </div>
  </div>

  <table>
    <tr><th>Product</th><th>Capacity (t)</th><th>Price per tonne</th><th>Total</th></tr>
    <tr>
      <td>{{.Product}}</td>
      <td>{{formatDecimal .Capacity}}</td>
      <td>{{formatMoney .PricePerTonne}}</td>
      <td>{{formatMoney .TotalValue}}</td>
    </tr>
    <tr class="total"><td colspan="3">Contract value</td><td>{{formatMoney .TotalValue}}</td></tr>
  </table>

  <div class="terms">
    <p><strong>Payment terms:</strong> {{.PaymentTerms}}</p>
    <p><strong>Shipping terms:</strong> {{.ShippingTerms}}</p>
  </div>

  <div class="signatures">
    <div class="signature">Buyer &mdash; {{.BuyerCompany}}</div>
    <div class="signature">Supplier &mdash; {{.SupplierCompany}}</div>
  </div>
</body>
</html>`

var contractTmpl = template.Must(template.New("contract").Funcs(template.FuncMap{
	"formatDate": func(t time.Time) string {
		return t.Format("2 January 2006")
	},
	"formatDecimal": func(d decimal.Decimal) string {
		return d.StringFixed(2)
	},
	"formatMoney": func(d decimal.Decimal) string {
		return "EUR " + d.StringFixed(2)
	},
}).Parse(contractTemplate))

// renderHTML fills the contract template with the given data
func renderHTML(data appdocument.ContractData) (string, error) {
	var buf bytes.Buffer
	if err := contractTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render contract template: %w", err)
	}
	return buf.String(), nil
}
