package core

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// invoiceExportHeader is the fixed column header of the invoice export.
var invoiceExportHeader = []string{"Invoice #", "Client Name", "Status", "Issue Date", "Due Date", "Total Amount"}

// clientImportColumns are the columns a client import must provide, in
// any order.
var clientImportColumns = []string{"name", "email", "address"}

// CSVService handles tabular export and bulk import.
type CSVService interface {
	// ExportInvoicesCSV renders one row per invoice, ordered by issue
	// date descending, with the effective (overdue-promoted) status.
	ExportInvoicesCSV(ctx context.Context) ([]byte, error)
	// ImportClientsCSV parses and validates client rows. Any row error
	// rejects the whole batch with an *ImportError; on success all
	// clients are persisted in one transaction and an audit entry is
	// written.
	ImportClientsCSV(ctx context.Context, r io.Reader) (int, error)
}

type csvService struct {
	pool     *pgxpool.Pool
	invoices InvoiceService
	audit    AuditService
}

func NewCSVService(pool *pgxpool.Pool, invoices InvoiceService, audit AuditService) CSVService {
	return &csvService{pool: pool, invoices: invoices, audit: audit}
}

func (s *csvService) ExportInvoicesCSV(ctx context.Context) ([]byte, error) {
	// ListInvoices applies the same overdue reconciliation the list
	// endpoint uses, so the export never disagrees with the API.
	invoices, err := s.invoices.ListInvoices(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("could not fetch invoice data for export: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(invoiceExportHeader); err != nil {
		return nil, fmt.Errorf("write export header: %w", err)
	}
	for _, inv := range invoices {
		record := []string{
			inv.InvoiceNumber,
			inv.ClientName,
			string(inv.Status),
			inv.IssueDate.Format("2006-01-02"),
			inv.DueDate.Format("2006-01-02"),
			inv.Total.StringFixed(2),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write export row %s: %w", inv.InvoiceNumber, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush export: %w", err)
	}
	return buf.Bytes(), nil
}

// ParseClientRows reads a client CSV into inputs plus per-row problem
// messages. Row numbers in messages are 1-indexed over data rows and
// offset by the header, so data row i reports as "Row i+2".
func ParseClientRows(r io.Reader) ([]ClientInput, []string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("could not process CSV file: %w", ErrInvalidInput)
	}
	column := map[string]int{}
	for i, name := range header {
		column[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range clientImportColumns {
		if _, ok := column[required]; !ok {
			return nil, nil, fmt.Errorf("missing column %q: %w", required, ErrInvalidInput)
		}
	}

	var inputs []ClientInput
	var problems []string
	for row := 0; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			problems = append(problems, fmt.Sprintf("Row %d: malformed row: %v", row+2, err))
			continue
		}
		field := func(name string) string {
			i := column[name]
			if i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}
		input := ClientInput{
			Name:    field("name"),
			Email:   field("email"),
			Address: field("address"),
		}
		if rowProblems := ValidateClientInput(input); len(rowProblems) > 0 {
			for _, p := range rowProblems {
				problems = append(problems, fmt.Sprintf("Row %d: %s", row+2, p))
			}
			continue
		}
		inputs = append(inputs, input)
	}
	return inputs, problems, nil
}

func (s *csvService) ImportClientsCSV(ctx context.Context, r io.Reader) (int, error) {
	inputs, problems, err := ParseClientRows(r)
	if err != nil {
		return 0, err
	}

	// Duplicate emails inside the batch fail validation rather than
	// surfacing later as a constraint violation on an opaque row. When
	// every row parsed cleanly, input i corresponds to data row i.
	if len(problems) == 0 {
		seen := map[string]int{}
		for i, input := range inputs {
			if first, dup := seen[input.Email]; dup {
				problems = append(problems, fmt.Sprintf("Row %d: email: duplicates row %d", i+2, first+2))
				continue
			}
			seen[input.Email] = i
		}
	}

	if len(problems) > 0 {
		return 0, newImportError(problems)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin client import: %w", err)
	}
	defer tx.Rollback(ctx)

	for i, input := range inputs {
		_, err := tx.Exec(ctx, `
			INSERT INTO clients (id, name, email, address)
			VALUES ($1, $2, $3, $4)`,
			uuid.NewString(), input.Name, input.Email, input.Address,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return 0, newImportError([]string{
					fmt.Sprintf("Row %d: email: %q already exists", i+2, input.Email),
				})
			}
			return 0, fmt.Errorf("insert imported client %q: %w", input.Email, err)
		}
	}

	details := fmt.Sprintf("Imported %d clients from CSV.", len(inputs))
	if err := s.audit.Log(ctx, tx, "Client", "Multiple", "IMPORT", details); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit client import: %w", err)
	}
	return len(inputs), nil
}
