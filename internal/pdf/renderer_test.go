package pdf_test

import (
	"bytes"
	"testing"
	"time"

	"invoicing-api/internal/core"
	"invoicing-api/internal/pdf"

	"github.com/shopspring/decimal"
)

func sampleInvoice() *core.InvoiceDetails {
	issue := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	return &core.InvoiceDetails{
		Invoice: core.Invoice{
			ID:            "inv-1",
			InvoiceNumber: "INV-1001",
			IssueDate:     issue,
			DueDate:       issue.AddDate(0, 1, 0),
			Status:        core.StatusUnpaid,
			Total:         decimal.RequireFromString("25.00"),
			ClientID:      "client-1",
		},
		Client: &core.Client{
			ID:      "client-1",
			Name:    "Acme Corp",
			Email:   "billing@acme.com",
			Address: "1 Main St",
		},
		Items: []core.InvoiceItem{
			{ItemName: "Widget", Quantity: 2, UnitPrice: decimal.RequireFromString("10.00")},
			{ItemName: "Gadget", Quantity: 1, UnitPrice: decimal.RequireFromString("5.00")},
		},
	}
}

func TestRenderInvoice(t *testing.T) {
	data, err := pdf.RenderInvoice(sampleInvoice())
	if err != nil {
		t.Fatalf("RenderInvoice: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected non-empty document")
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Errorf("output does not start with a PDF header: %q", data[:8])
	}
}

func TestRenderInvoice_NoItems(t *testing.T) {
	inv := sampleInvoice()
	inv.Items = nil
	inv.Total = decimal.Zero

	data, err := pdf.RenderInvoice(inv)
	if err != nil {
		t.Fatalf("RenderInvoice: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected non-empty document")
	}
}
