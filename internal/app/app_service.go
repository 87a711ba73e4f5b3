package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"invoicing-api/internal/ai"
	"invoicing-api/internal/core"
	"invoicing-api/internal/notify"
	"invoicing-api/internal/pdf"
)

type appService struct {
	clients  core.ClientService
	invoices core.InvoiceService
	metrics  core.MetricsService
	csv      core.CSVService
	audit    core.AuditService
	agent    *ai.Agent
	sender   notify.Sender
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(
	clients core.ClientService,
	invoices core.InvoiceService,
	metrics core.MetricsService,
	csvService core.CSVService,
	audit core.AuditService,
	agent *ai.Agent,
	sender notify.Sender,
) ApplicationService {
	return &appService{
		clients:  clients,
		invoices: invoices,
		metrics:  metrics,
		csv:      csvService,
		audit:    audit,
		agent:    agent,
		sender:   sender,
	}
}

func (s *appService) CreateClient(ctx context.Context, req ClientRequest) (*core.Client, error) {
	return s.clients.CreateClient(ctx, core.ClientInput{
		Name:    req.Name,
		Email:   req.Email,
		Address: req.Address,
	})
}

func (s *appService) ListClients(ctx context.Context) (*ClientListResult, error) {
	clients, err := s.clients.GetClients(ctx)
	if err != nil {
		return nil, err
	}
	return &ClientListResult{Clients: clients}, nil
}

func (s *appService) UpdateClient(ctx context.Context, clientID string, req ClientRequest) (*core.Client, error) {
	return s.clients.UpdateClient(ctx, clientID, core.ClientInput{
		Name:    req.Name,
		Email:   req.Email,
		Address: req.Address,
	})
}

func (s *appService) DeleteClient(ctx context.Context, clientID string) error {
	return s.clients.DeleteClient(ctx, clientID)
}

func (s *appService) ImportClientsCSV(ctx context.Context, r io.Reader) (*ImportResult, error) {
	n, err := s.csv.ImportClientsCSV(ctx, r)
	if err != nil {
		return nil, err
	}
	return &ImportResult{Imported: n}, nil
}

// parseDate accepts RFC 3339 timestamps or plain dates.
func parseDate(field, value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%s %q is not a valid date: %w", field, value, core.ErrInvalidInput)
}

func (s *appService) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*core.InvoiceDetails, error) {
	issueDate, err := parseDate("issue_date", req.IssueDate)
	if err != nil {
		return nil, err
	}
	dueDate, err := parseDate("due_date", req.DueDate)
	if err != nil {
		return nil, err
	}

	items := make([]core.InvoiceItemInput, len(req.Items))
	for i, item := range req.Items {
		items[i] = core.InvoiceItemInput{
			ItemName:  item.ItemName,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		}
	}
	return s.invoices.CreateInvoice(ctx, req.ClientID, issueDate, dueDate, items)
}

func (s *appService) ListInvoices(ctx context.Context, statusFilter string) (*InvoiceListResult, error) {
	var filter *core.InvoiceStatus
	if statusFilter != "" {
		status := core.InvoiceStatus(statusFilter)
		filter = &status
	}
	invoices, err := s.invoices.ListInvoices(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &InvoiceListResult{Invoices: invoices}, nil
}

func (s *appService) GetInvoice(ctx context.Context, invoiceID string) (*core.InvoiceDetails, error) {
	return s.invoices.GetInvoice(ctx, invoiceID)
}

func (s *appService) UpdateInvoiceStatus(ctx context.Context, invoiceID, status string) (*core.Invoice, error) {
	return s.invoices.UpdateInvoiceStatus(ctx, invoiceID, core.InvoiceStatus(status))
}

func (s *appService) RecordPayment(ctx context.Context, invoiceID string, req PaymentRequest) (*core.InvoiceDetails, error) {
	return s.invoices.RecordPayment(ctx, invoiceID, req.Amount, req.Method)
}

// RenderInvoicePDF loads the invoice and renders it with the effective
// status, so the document matches what the list endpoint reports.
func (s *appService) RenderInvoicePDF(ctx context.Context, invoiceID string) (*PDFResult, error) {
	inv, err := s.invoices.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	inv.Status = core.EffectiveStatus(inv.Status, inv.DueDate, time.Now())

	content, err := pdf.RenderInvoice(inv)
	if err != nil {
		return nil, err
	}
	return &PDFResult{
		Filename: fmt.Sprintf("invoice_%s.pdf", inv.InvoiceNumber),
		Content:  content,
	}, nil
}

func (s *appService) ExportInvoicesCSV(ctx context.Context) ([]byte, error) {
	return s.csv.ExportInvoicesCSV(ctx)
}

func (s *appService) DashboardMetrics(ctx context.Context) (*core.DashboardMetrics, error) {
	return s.metrics.DashboardMetrics(ctx)
}

func (s *appService) AnswerQuery(ctx context.Context, question string) (*QueryResult, error) {
	if question == "" {
		return nil, fmt.Errorf("query must not be empty: %w", core.ErrInvalidInput)
	}
	snapshot, err := s.invoices.DataSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	answer, err := s.agent.AnswerQuery(ctx, question, snapshot, time.Now())
	if err != nil {
		return nil, err
	}
	return &QueryResult{Answer: answer}, nil
}

func (s *appService) ListAuditLogs(ctx context.Context) (*AuditLogResult, error) {
	logs, err := s.audit.ListAuditLogs(ctx)
	if err != nil {
		return nil, err
	}
	return &AuditLogResult{Logs: logs}, nil
}

func (s *appService) SendEmail(ctx context.Context, req EmailRequest) error {
	if req.RecipientEmail == "" {
		return fmt.Errorf("recipient_email is required: %w", core.ErrInvalidInput)
	}
	return s.sender.Send(ctx, req.RecipientEmail, req.Subject, req.Body)
}
