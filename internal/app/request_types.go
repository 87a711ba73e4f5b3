package app

import "github.com/shopspring/decimal"

// ClientRequest is the input for creating or updating a client.
type ClientRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

// CreateInvoiceRequest is the input for creating a new invoice.
// Dates accept RFC 3339 timestamps or plain YYYY-MM-DD.
type CreateInvoiceRequest struct {
	ClientID  string             `json:"client_id"`
	IssueDate string             `json:"issue_date"`
	DueDate   string             `json:"due_date"`
	Items     []InvoiceItemInput `json:"items"`
}

// InvoiceItemInput is a single line within a CreateInvoiceRequest.
type InvoiceItemInput struct {
	ItemName  string          `json:"item_name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// PaymentRequest is the input for recording a payment. Method defaults
// to "Card" when empty.
type PaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method"`
}

// EmailRequest is the input for the notification endpoint.
type EmailRequest struct {
	RecipientEmail string `json:"recipient_email"`
	Subject        string `json:"subject"`
	Body           string `json:"body"`
}
