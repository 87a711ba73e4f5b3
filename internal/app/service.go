package app

import (
	"context"
	"io"

	"invoicing-api/internal/core"
)

// ApplicationService is the single interface the HTTP adapter calls.
// It decouples presentation from business logic; implementations hold
// no display or transport concerns.
type ApplicationService interface {
	// CreateClient creates a client from validated input.
	CreateClient(ctx context.Context, req ClientRequest) (*core.Client, error)

	// ListClients returns all clients ordered by name.
	ListClients(ctx context.Context) (*ClientListResult, error)

	// UpdateClient overwrites a client's details and audit-logs the change.
	UpdateClient(ctx context.Context, clientID string, req ClientRequest) (*core.Client, error)

	// DeleteClient removes a client and cascades to its invoices,
	// items, and payments.
	DeleteClient(ctx context.Context, clientID string) error

	// ImportClientsCSV bulk-imports clients; all-or-nothing.
	ImportClientsCSV(ctx context.Context, r io.Reader) (*ImportResult, error)

	// CreateInvoice creates an invoice with its items atomically.
	CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*core.InvoiceDetails, error)

	// ListInvoices lists invoices newest-issued first, optionally
	// filtered by persisted status, with overdue promotion applied.
	ListInvoices(ctx context.Context, statusFilter string) (*InvoiceListResult, error)

	// GetInvoice returns an invoice with client, items, and payments.
	GetInvoice(ctx context.Context, invoiceID string) (*core.InvoiceDetails, error)

	// UpdateInvoiceStatus force-sets an invoice status.
	UpdateInvoiceStatus(ctx context.Context, invoiceID, status string) (*core.Invoice, error)

	// RecordPayment applies a payment and re-resolves the status.
	RecordPayment(ctx context.Context, invoiceID string, req PaymentRequest) (*core.InvoiceDetails, error)

	// RenderInvoicePDF renders the invoice as a printable document.
	RenderInvoicePDF(ctx context.Context, invoiceID string) (*PDFResult, error)

	// ExportInvoicesCSV renders the invoice table as CSV bytes.
	ExportInvoicesCSV(ctx context.Context) ([]byte, error)

	// DashboardMetrics computes the dashboard figures.
	DashboardMetrics(ctx context.Context) (*core.DashboardMetrics, error)

	// AnswerQuery answers a natural-language question over the data.
	// Fails with core.ErrUnavailable when the agent is unconfigured.
	AnswerQuery(ctx context.Context, question string) (*QueryResult, error)

	// ListAuditLogs returns the most recent 100 audit entries.
	ListAuditLogs(ctx context.Context) (*AuditLogResult, error)

	// SendEmail hands a message to the notification sender.
	SendEmail(ctx context.Context, req EmailRequest) error
}
