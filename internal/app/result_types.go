package app

import "invoicing-api/internal/core"

// ClientListResult is returned by ListClients.
type ClientListResult struct {
	Clients []core.Client
}

// InvoiceListResult is returned by ListInvoices.
type InvoiceListResult struct {
	Invoices []core.Invoice
}

// ImportResult is returned by a successful ImportClientsCSV.
type ImportResult struct {
	Imported int
}

// PDFResult carries the rendered document plus the filename the
// adapter should suggest to the browser.
type PDFResult struct {
	Filename string
	Content  []byte
}

// QueryResult is returned by AnswerQuery.
type QueryResult struct {
	Answer string
}

// AuditLogResult is returned by ListAuditLogs.
type AuditLogResult struct {
	Logs []core.AuditLog
}
