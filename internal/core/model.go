package core

import (
	"time"

	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	StatusUnpaid  InvoiceStatus = "UNPAID"
	StatusOverdue InvoiceStatus = "OVERDUE"
	StatusPaid    InvoiceStatus = "PAID"
)

// ValidStatus reports whether s is one of the three invoice statuses.
func ValidStatus(s InvoiceStatus) bool {
	return s == StatusUnpaid || s == StatusOverdue || s == StatusPaid
}

// EffectiveStatus is the read-side view of an invoice status: a
// persisted UNPAID invoice whose due date has passed presents as
// OVERDUE. PAID and OVERDUE pass through unchanged.
func EffectiveStatus(status InvoiceStatus, dueDate, now time.Time) InvoiceStatus {
	if status == StatusUnpaid && dueDate.Before(now) {
		return StatusOverdue
	}
	return status
}

// paymentTolerance absorbs float rounding on amounts that arrive from
// JSON request bodies as binary floats.
var paymentTolerance = decimal.NewFromFloat(0.001)

// statusAfterPayment resolves the persisted status once a payment has
// been applied. Payment recording always lands on PAID or UNPAID,
// never OVERDUE; the overdue view is re-derived at read time.
func statusAfterPayment(totalPaid, total decimal.Decimal) InvoiceStatus {
	if totalPaid.GreaterThanOrEqual(total) {
		return StatusPaid
	}
	return StatusUnpaid
}

type Client struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}

// ClientInput is the payload for creating or updating a client. It is
// shared by the JSON API and the CSV importer.
type ClientInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

type Invoice struct {
	ID            string          `json:"id"`
	InvoiceNumber string          `json:"invoice_number"`
	IssueDate     time.Time       `json:"issue_date"`
	DueDate       time.Time       `json:"due_date"`
	Status        InvoiceStatus   `json:"status"`
	Total         decimal.Decimal `json:"total"`
	ClientID      string          `json:"client_id"`
	ClientName    string          `json:"client_name,omitempty"`
}

type InvoiceItem struct {
	ID        string          `json:"id"`
	ItemName  string          `json:"item_name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	InvoiceID string          `json:"invoice_id"`
}

// InvoiceItemInput is a single line within a CreateInvoice call.
type InvoiceItemInput struct {
	ItemName  string          `json:"item_name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type Payment struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate time.Time       `json:"payment_date"`
	Method      string          `json:"method"`
	InvoiceID   string          `json:"invoice_id"`
}

// InvoiceDetails is an invoice with its client, items, and payments
// eagerly loaded.
type InvoiceDetails struct {
	Invoice
	Client   *Client       `json:"client,omitempty"`
	Items    []InvoiceItem `json:"items"`
	Payments []Payment     `json:"payments"`
}

type AuditLog struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	Action     string    `json:"action"`
	Details    *string   `json:"details,omitempty"`
}

type DashboardMetrics struct {
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
	TotalInvoices    int             `json:"total_invoices"`
	OverdueCount     int             `json:"overdue_count"`
}

// ── Data snapshot for the NL query agent ─────────────────────────────────────

// SnapshotItem mirrors the item shape the query agent receives.
type SnapshotItem struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

type SnapshotInvoice struct {
	InvoiceNumber string          `json:"invoice_number"`
	Status        InvoiceStatus   `json:"status"`
	IssueDate     string          `json:"issue_date"`
	DueDate       string          `json:"due_date"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Items         []SnapshotItem  `json:"items"`
}

// SnapshotClient is one client with all of its invoices and their
// items, serialized for the NL query agent's context window.
type SnapshotClient struct {
	ClientName string            `json:"client_name"`
	Invoices   []SnapshotInvoice `json:"invoices"`
}
