// Package pdf renders invoices as single-page printable documents.
package pdf

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"invoicing-api/internal/core"
)

// RenderInvoice draws a fully-loaded invoice onto one A4 page: header
// with number and status, client block, date block, itemized table, and
// a grand total footer. The status printed is whatever the caller
// passes on the invoice, so reads go through the same effective-status
// derivation as the list endpoint.
func RenderInvoice(inv *core.InvoiceDetails) ([]byte, error) {
	if inv == nil || inv.Client == nil {
		return nil, fmt.Errorf("invoice must be loaded with its client")
	}

	doc := gofpdf.New("P", "mm", "A4", "")
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 16)
	doc.Cell(100, 10, fmt.Sprintf("Invoice: %s", inv.InvoiceNumber))
	doc.Ln(8)
	doc.SetFont("Helvetica", "", 12)
	doc.Cell(100, 8, fmt.Sprintf("Status: %s", inv.Status))
	doc.Ln(16)

	// Client block on the left, dates on the right.
	blockTop := doc.GetY()
	doc.SetFont("Helvetica", "B", 12)
	doc.Cell(95, 6, "Bill To:")
	doc.Ln(6)
	doc.SetFont("Helvetica", "", 12)
	doc.Cell(95, 6, inv.Client.Name)
	doc.Ln(6)
	doc.Cell(95, 6, inv.Client.Address)
	doc.Ln(6)
	doc.Cell(95, 6, inv.Client.Email)
	blockBottom := doc.GetY() + 6

	doc.SetXY(120, blockTop)
	doc.SetFont("Helvetica", "B", 12)
	doc.Cell(30, 6, "Issue Date:")
	doc.SetFont("Helvetica", "", 12)
	doc.Cell(40, 6, inv.IssueDate.Format("2006-01-02"))
	doc.SetXY(120, blockTop+6)
	doc.SetFont("Helvetica", "B", 12)
	doc.Cell(30, 6, "Due Date:")
	doc.SetFont("Helvetica", "", 12)
	doc.Cell(40, 6, inv.DueDate.Format("2006-01-02"))

	doc.SetXY(10, blockBottom)
	doc.Ln(12)

	// Item table.
	doc.SetFont("Helvetica", "B", 12)
	doc.CellFormat(90, 8, "Item", "B", 0, "L", false, 0, "")
	doc.CellFormat(30, 8, "Quantity", "B", 0, "R", false, 0, "")
	doc.CellFormat(35, 8, "Unit Price", "B", 0, "R", false, 0, "")
	doc.CellFormat(35, 8, "Total", "B", 1, "R", false, 0, "")

	doc.SetFont("Helvetica", "", 12)
	for _, item := range inv.Items {
		lineTotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		doc.CellFormat(90, 7, item.ItemName, "", 0, "L", false, 0, "")
		doc.CellFormat(30, 7, fmt.Sprintf("%d", item.Quantity), "", 0, "R", false, 0, "")
		doc.CellFormat(35, 7, "$"+item.UnitPrice.StringFixed(2), "", 0, "R", false, 0, "")
		doc.CellFormat(35, 7, "$"+lineTotal.StringFixed(2), "", 1, "R", false, 0, "")
	}

	doc.Ln(8)
	doc.SetFont("Helvetica", "B", 14)
	doc.CellFormat(155, 10, "Grand Total:", "", 0, "R", false, 0, "")
	doc.CellFormat(35, 10, "$"+inv.Total.StringFixed(2), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice %s: %w", inv.InvoiceNumber, err)
	}
	return buf.Bytes(), nil
}
