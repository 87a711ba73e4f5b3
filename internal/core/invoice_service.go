package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// InvoiceService manages the invoice lifecycle: creation with immutable
// totals, status transitions, and payment application.
type InvoiceService interface {
	CreateInvoice(ctx context.Context, clientID string, issueDate, dueDate time.Time, items []InvoiceItemInput) (*InvoiceDetails, error)
	// ListInvoices returns invoices ordered by issue date descending.
	// statusFilter, when non-nil, matches the persisted status. Every
	// returned UNPAID invoice past its due date is promoted to OVERDUE,
	// in the result and in storage, as one idempotent reconcile step.
	ListInvoices(ctx context.Context, statusFilter *InvoiceStatus) ([]Invoice, error)
	UpdateInvoiceStatus(ctx context.Context, invoiceID string, status InvoiceStatus) (*Invoice, error)
	// RecordPayment appends a payment inside a single serialized
	// transaction: the invoice row is locked, the balance re-checked,
	// and the status re-resolved to PAID or UNPAID.
	RecordPayment(ctx context.Context, invoiceID string, amount decimal.Decimal, method string) (*InvoiceDetails, error)
	GetInvoice(ctx context.Context, invoiceID string) (*InvoiceDetails, error)
	// DataSnapshot serializes every client with its invoices and items
	// for the NL query agent.
	DataSnapshot(ctx context.Context) ([]SnapshotClient, error)
}

type invoiceService struct {
	pool  *pgxpool.Pool
	audit AuditService
	// now is swappable so tests can pin the clock.
	now func() time.Time
}

func NewInvoiceService(pool *pgxpool.Pool, audit AuditService) InvoiceService {
	return &invoiceService{pool: pool, audit: audit, now: time.Now}
}

// nextInvoiceNumber claims the next number from the durable counter.
// The single sequence row serializes concurrent creations on its row
// lock, so numbers stay unique even under concurrent inserts.
func nextInvoiceNumber(ctx context.Context, q Querier) (string, error) {
	var n int64
	err := q.QueryRow(ctx, `
		UPDATE invoice_sequences
		SET last_number = last_number + 1
		WHERE id = 1
		RETURNING last_number`,
	).Scan(&n)
	if err != nil {
		return "", fmt.Errorf("claim invoice number: %w", err)
	}
	return fmt.Sprintf("INV-%d", n), nil
}

func (s *invoiceService) CreateInvoice(ctx context.Context, clientID string, issueDate, dueDate time.Time, items []InvoiceItemInput) (*InvoiceDetails, error) {
	for i, item := range items {
		if item.Quantity < 0 {
			return nil, fmt.Errorf("item %d: quantity must be >= 0: %w", i+1, ErrInvalidInput)
		}
		if item.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("item %d: unit price must be >= 0: %w", i+1, ErrInvalidInput)
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin create invoice: %w", err)
	}
	defer tx.Rollback(ctx)

	var clientExists bool
	if err := tx.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM clients WHERE id = $1)", clientID).Scan(&clientExists); err != nil {
		return nil, fmt.Errorf("check client %s: %w", clientID, err)
	}
	if !clientExists {
		return nil, fmt.Errorf("client %s: %w", clientID, ErrNotFound)
	}

	// The total is fixed here, at creation, and never recomputed.
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	number, err := nextInvoiceNumber(ctx, tx)
	if err != nil {
		return nil, err
	}

	invoiceID := uuid.NewString()
	_, err = tx.Exec(ctx, `
		INSERT INTO invoices (id, invoice_number, issue_date, due_date, status, total, client_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		invoiceID, number, issueDate, dueDate, string(StatusUnpaid), total, clientID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert invoice %s: %w", number, err)
	}

	for i, item := range items {
		_, err = tx.Exec(ctx, `
			INSERT INTO invoice_items (id, item_name, quantity, unit_price, invoice_id)
			VALUES ($1, $2, $3, $4, $5)`,
			uuid.NewString(), item.ItemName, item.Quantity, item.UnitPrice, invoiceID,
		)
		if err != nil {
			return nil, fmt.Errorf("insert invoice item %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit create invoice: %w", err)
	}

	return s.GetInvoice(ctx, invoiceID)
}

func (s *invoiceService) ListInvoices(ctx context.Context, statusFilter *InvoiceStatus) ([]Invoice, error) {
	if statusFilter != nil && !ValidStatus(*statusFilter) {
		return nil, fmt.Errorf("status %q: %w", *statusFilter, ErrInvalidInput)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin list invoices: %w", err)
	}
	defer tx.Rollback(ctx)

	// The filter matches the persisted status; the OVERDUE promotion
	// below applies only to the returned set.
	query := `
		SELECT i.id, i.invoice_number, i.issue_date, i.due_date, i.status, i.total, i.client_id, c.name
		FROM invoices i
		JOIN clients c ON c.id = i.client_id`
	args := []any{}
	if statusFilter != nil {
		query += " WHERE i.status = $1"
		args = append(args, string(*statusFilter))
	}
	query += " ORDER BY i.issue_date DESC"

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query invoices: %w", err)
	}
	invoices, err := scanInvoices(rows)
	if err != nil {
		return nil, err
	}

	if err := s.promoteOverdue(ctx, tx, invoices); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit list invoices: %w", err)
	}
	return invoices, nil
}

// promoteOverdue is the explicit reconcile step for the derived OVERDUE
// state: every UNPAID invoice in the slice whose due date has passed is
// flipped to OVERDUE both in the slice and in storage. Idempotent.
func (s *invoiceService) promoteOverdue(ctx context.Context, q Querier, invoices []Invoice) error {
	now := s.now()
	for i := range invoices {
		if EffectiveStatus(invoices[i].Status, invoices[i].DueDate, now) != StatusOverdue {
			continue
		}
		if invoices[i].Status != StatusOverdue {
			_, err := q.Exec(ctx,
				"UPDATE invoices SET status = $2 WHERE id = $1 AND status = $3",
				invoices[i].ID, string(StatusOverdue), string(StatusUnpaid),
			)
			if err != nil {
				return fmt.Errorf("promote invoice %s to OVERDUE: %w", invoices[i].InvoiceNumber, err)
			}
		}
		invoices[i].Status = StatusOverdue
	}
	return nil
}

func scanInvoices(rows pgx.Rows) ([]Invoice, error) {
	defer rows.Close()
	var invoices []Invoice
	for rows.Next() {
		var inv Invoice
		if err := rows.Scan(&inv.ID, &inv.InvoiceNumber, &inv.IssueDate, &inv.DueDate,
			&inv.Status, &inv.Total, &inv.ClientID, &inv.ClientName); err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

// UpdateInvoiceStatus is a direct override with no business-rule
// validation beyond the invoice existing and the status being one of
// the three known values.
func (s *invoiceService) UpdateInvoiceStatus(ctx context.Context, invoiceID string, status InvoiceStatus) (*Invoice, error) {
	if !ValidStatus(status) {
		return nil, fmt.Errorf("status %q: %w", status, ErrInvalidInput)
	}

	var inv Invoice
	err := s.pool.QueryRow(ctx, `
		UPDATE invoices
		SET status = $2
		WHERE id = $1
		RETURNING id, invoice_number, issue_date, due_date, status, total, client_id`,
		invoiceID, string(status),
	).Scan(&inv.ID, &inv.InvoiceNumber, &inv.IssueDate, &inv.DueDate, &inv.Status, &inv.Total, &inv.ClientID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("invoice %s: %w", invoiceID, ErrNotFound)
		}
		return nil, fmt.Errorf("update invoice %s status: %w", invoiceID, err)
	}
	return &inv, nil
}

func (s *invoiceService) RecordPayment(ctx context.Context, invoiceID string, amount decimal.Decimal, method string) (*InvoiceDetails, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("payment amount must be > 0: %w", ErrInvalidInput)
	}
	if method == "" {
		method = "Card"
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin record payment: %w", err)
	}
	defer tx.Rollback(ctx)

	// Lock the invoice row so two concurrent payments cannot both pass
	// the balance check against a stale payment sum.
	var invoiceNumber string
	var total decimal.Decimal
	err = tx.QueryRow(ctx,
		"SELECT invoice_number, total FROM invoices WHERE id = $1 FOR UPDATE",
		invoiceID,
	).Scan(&invoiceNumber, &total)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("invoice %s: %w", invoiceID, ErrNotFound)
		}
		return nil, fmt.Errorf("lock invoice %s: %w", invoiceID, err)
	}

	var paidBefore decimal.Decimal
	err = tx.QueryRow(ctx,
		"SELECT COALESCE(SUM(amount), 0) FROM payments WHERE invoice_id = $1",
		invoiceID,
	).Scan(&paidBefore)
	if err != nil {
		return nil, fmt.Errorf("sum payments for invoice %s: %w", invoiceID, err)
	}

	if amount.GreaterThan(total.Sub(paidBefore).Add(paymentTolerance)) {
		return nil, fmt.Errorf("payment amount cannot exceed the balance due: %w", ErrInvalidInput)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO payments (id, amount, method, invoice_id)
		VALUES ($1, $2, $3, $4)`,
		uuid.NewString(), amount, method, invoiceID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert payment for invoice %s: %w", invoiceID, err)
	}

	newStatus := statusAfterPayment(paidBefore.Add(amount), total)
	_, err = tx.Exec(ctx,
		"UPDATE invoices SET status = $2 WHERE id = $1",
		invoiceID, string(newStatus),
	)
	if err != nil {
		return nil, fmt.Errorf("update invoice %s status: %w", invoiceID, err)
	}

	details := fmt.Sprintf("Payment of $%s recorded for invoice %s.", amount.StringFixed(2), invoiceNumber)
	if err := s.audit.Log(ctx, tx, "Payment", invoiceID, "CREATE", details); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit record payment: %w", err)
	}

	return s.GetInvoice(ctx, invoiceID)
}

func (s *invoiceService) GetInvoice(ctx context.Context, invoiceID string) (*InvoiceDetails, error) {
	d := &InvoiceDetails{Client: &Client{}}
	err := s.pool.QueryRow(ctx, `
		SELECT i.id, i.invoice_number, i.issue_date, i.due_date, i.status, i.total, i.client_id,
		       c.id, c.name, c.email, c.address, c.created_at
		FROM invoices i
		JOIN clients c ON c.id = i.client_id
		WHERE i.id = $1`,
		invoiceID,
	).Scan(
		&d.ID, &d.InvoiceNumber, &d.IssueDate, &d.DueDate, &d.Status, &d.Total, &d.ClientID,
		&d.Client.ID, &d.Client.Name, &d.Client.Email, &d.Client.Address, &d.Client.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("invoice %s: %w", invoiceID, ErrNotFound)
		}
		return nil, fmt.Errorf("fetch invoice %s: %w", invoiceID, err)
	}
	d.ClientName = d.Client.Name

	itemRows, err := s.pool.Query(ctx, `
		SELECT id, item_name, quantity, unit_price, invoice_id
		FROM invoice_items
		WHERE invoice_id = $1`,
		invoiceID,
	)
	if err != nil {
		return nil, fmt.Errorf("query items for invoice %s: %w", invoiceID, err)
	}
	defer itemRows.Close()
	for itemRows.Next() {
		var item InvoiceItem
		if err := itemRows.Scan(&item.ID, &item.ItemName, &item.Quantity, &item.UnitPrice, &item.InvoiceID); err != nil {
			return nil, fmt.Errorf("scan invoice item: %w", err)
		}
		d.Items = append(d.Items, item)
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invoice items: %w", err)
	}

	payRows, err := s.pool.Query(ctx, `
		SELECT id, amount, payment_date, method, invoice_id
		FROM payments
		WHERE invoice_id = $1
		ORDER BY payment_date`,
		invoiceID,
	)
	if err != nil {
		return nil, fmt.Errorf("query payments for invoice %s: %w", invoiceID, err)
	}
	defer payRows.Close()
	for payRows.Next() {
		var p Payment
		if err := payRows.Scan(&p.ID, &p.Amount, &p.PaymentDate, &p.Method, &p.InvoiceID); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		d.Payments = append(d.Payments, p)
	}
	if err := payRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payments: %w", err)
	}

	return d, nil
}

// DataSnapshot loads every client with its invoices and their items,
// shaped for the NL query agent.
func (s *invoiceService) DataSnapshot(ctx context.Context) ([]SnapshotClient, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT c.id, c.name,
		       i.id, i.invoice_number, i.status, i.issue_date, i.due_date, i.total
		FROM clients c
		LEFT JOIN invoices i ON i.client_id = c.id
		ORDER BY c.name, i.issue_date DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}
	defer rows.Close()

	var snapshot []SnapshotClient
	index := map[string]int{}         // client id -> snapshot index
	invoiceIDs := map[string]int{}    // invoice id -> invoice index, per client below
	invoiceOwner := map[string]int{}  // invoice id -> snapshot index

	for rows.Next() {
		var clientID, clientName string
		var invID, invNumber, invStatus *string
		var issueDate, dueDate *time.Time
		var total *decimal.Decimal
		if err := rows.Scan(&clientID, &clientName, &invID, &invNumber, &invStatus, &issueDate, &dueDate, &total); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}

		ci, ok := index[clientID]
		if !ok {
			ci = len(snapshot)
			index[clientID] = ci
			snapshot = append(snapshot, SnapshotClient{ClientName: clientName, Invoices: []SnapshotInvoice{}})
		}
		if invID == nil {
			continue
		}
		invoiceOwner[*invID] = ci
		invoiceIDs[*invID] = len(snapshot[ci].Invoices)
		snapshot[ci].Invoices = append(snapshot[ci].Invoices, SnapshotInvoice{
			InvoiceNumber: *invNumber,
			Status:        InvoiceStatus(*invStatus),
			IssueDate:     issueDate.Format(time.RFC3339),
			DueDate:       dueDate.Format(time.RFC3339),
			TotalAmount:   *total,
			Items:         []SnapshotItem{},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot: %w", err)
	}

	itemRows, err := s.pool.Query(ctx, `
		SELECT invoice_id, item_name, quantity, unit_price
		FROM invoice_items`,
	)
	if err != nil {
		return nil, fmt.Errorf("query snapshot items: %w", err)
	}
	defer itemRows.Close()
	for itemRows.Next() {
		var invoiceID, name string
		var quantity int
		var price decimal.Decimal
		if err := itemRows.Scan(&invoiceID, &name, &quantity, &price); err != nil {
			return nil, fmt.Errorf("scan snapshot item: %w", err)
		}
		ci, ok := invoiceOwner[invoiceID]
		if !ok {
			continue
		}
		ii := invoiceIDs[invoiceID]
		snapshot[ci].Invoices[ii].Items = append(snapshot[ci].Invoices[ii].Items, SnapshotItem{
			Name: name, Quantity: quantity, Price: price,
		})
	}
	return snapshot, itemRows.Err()
}
