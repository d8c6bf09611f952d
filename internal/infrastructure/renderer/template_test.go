package renderer

import (
	"context"
	"testing"
	"time"

	appdocument "github.com/recyclemart/backend/internal/application/document"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleContractData() appdocument.ContractData {
	return appdocument.ContractData{
		InvoiceNumber:   "SO-0826-ECO-003",
		DocumentTitle:   "Sales Order Contract",
		Product:         "PET flakes",
		Capacity:        decimal.NewFromInt(120),
		PricePerTonne:   decimal.NewFromFloat(450.50),
		TotalValue:      decimal.NewFromFloat(54060),
		PaymentTerms:    "Net 30",
		ShippingTerms:   "FOB Rotterdam",
		BuyerName:       "Anna de Vries",
		BuyerCompany:    "GreenCycle BV",
		SupplierName:    "Tom Okafor",
		SupplierCompany: "EcoFlake Ltd",
		IssuedAt:        time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC),
	}
}

func TestRenderHTML(t *testing.T) {
	html, err := renderHTML(sampleContractData())
	require.NoError(t, err)

	assert.Contains(t, html, "SO-0826-ECO-003")
	assert.Contains(t, html, "Sales Order Contract")
	assert.Contains(t, html, "PET flakes")
	assert.Contains(t, html, "GreenCycle BV")
	assert.Contains(t, html, "EcoFlake Ltd")
	assert.Contains(t, html, "EUR 450.50")
	assert.Contains(t, html, "EUR 54060.00")
	assert.Contains(t, html, "Net 30")
	assert.Contains(t, html, "15 August 2026")
}

func TestRenderHTML_EscapesUserInput(t *testing.T) {
	data := sampleContractData()
	data.Product = `<script>alert("x")</script>`

	html, err := renderHTML(data)
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
}

func TestStubRenderer(t *testing.T) {
	out, err := NewStubRenderer().RenderContract(context.Background(), sampleContractData())
	require.NoError(t, err)
	assert.Contains(t, string(out), "SO-0826-ECO-003")
}
