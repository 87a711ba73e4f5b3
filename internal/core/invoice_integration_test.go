package core_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"invoicing-api/internal/core"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database to avoid wiping the live app database.
	// Set TEST_DATABASE_URL in your .env or environment to run integration tests.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	// Clean and reset the numbering counter.
	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE payments, invoice_items, invoices, clients, audit_logs, invoice_sequences CASCADE;
		INSERT INTO invoice_sequences (id, last_number) VALUES (1, 1000);
	`)
	if err != nil {
		t.Fatalf("Failed to seed test database: %v", err)
	}

	return pool
}

func seedClient(t *testing.T, pool *pgxpool.Pool, name, email string) string {
	t.Helper()
	id := uuid.NewString()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO clients (id, name, email, address) VALUES ($1, $2, $3, '1 Main St')`,
		id, name, email,
	)
	if err != nil {
		t.Fatalf("Failed to seed client: %v", err)
	}
	return id
}

func TestInvoiceService_CreateInvoice(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	audit := core.NewAuditService(pool)
	invoices := core.NewInvoiceService(pool, audit)
	ctx := context.Background()

	clientID := seedClient(t, pool, "Acme Corp", "billing@acme.com")
	issue := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	due := issue.AddDate(0, 1, 0)

	t.Run("number, status, and total derived on create", func(t *testing.T) {
		inv, err := invoices.CreateInvoice(ctx, clientID, issue, due, []core.InvoiceItemInput{
			{ItemName: "Widget", Quantity: 2, UnitPrice: decimal.RequireFromString("10.00")},
			{ItemName: "Gadget", Quantity: 1, UnitPrice: decimal.RequireFromString("5.00")},
		})
		if err != nil {
			t.Fatalf("CreateInvoice: %v", err)
		}
		if inv.InvoiceNumber != "INV-1001" {
			t.Errorf("invoice number = %s, want INV-1001", inv.InvoiceNumber)
		}
		if inv.Status != core.StatusUnpaid {
			t.Errorf("status = %s, want UNPAID", inv.Status)
		}
		if !inv.Total.Equal(decimal.RequireFromString("25.00")) {
			t.Errorf("total = %s, want 25.00", inv.Total)
		}
		if len(inv.Items) != 2 {
			t.Errorf("items = %d, want 2", len(inv.Items))
		}
	})

	t.Run("numbers are sequential", func(t *testing.T) {
		inv, err := invoices.CreateInvoice(ctx, clientID, issue, due, nil)
		if err != nil {
			t.Fatalf("CreateInvoice: %v", err)
		}
		if inv.InvoiceNumber != "INV-1002" {
			t.Errorf("invoice number = %s, want INV-1002", inv.InvoiceNumber)
		}
		if !inv.Total.IsZero() {
			t.Errorf("empty invoice total = %s, want 0", inv.Total)
		}
	})

	t.Run("unknown client rejected", func(t *testing.T) {
		_, err := invoices.CreateInvoice(ctx, "00000000-0000-0000-0000-000000000000", issue, due, nil)
		if !errors.Is(err, core.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestInvoiceService_RecordPayment(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	audit := core.NewAuditService(pool)
	invoices := core.NewInvoiceService(pool, audit)
	ctx := context.Background()

	clientID := seedClient(t, pool, "Acme Corp", "billing@acme.com")
	issue := time.Now().UTC().AddDate(0, 0, -5)
	due := time.Now().UTC().AddDate(0, 0, 25)

	newInvoice := func(t *testing.T) *core.InvoiceDetails {
		t.Helper()
		inv, err := invoices.CreateInvoice(ctx, clientID, issue, due, []core.InvoiceItemInput{
			{ItemName: "Consulting", Quantity: 1, UnitPrice: decimal.RequireFromString("100.00")},
		})
		if err != nil {
			t.Fatalf("CreateInvoice: %v", err)
		}
		return inv
	}

	t.Run("full payment resolves to PAID", func(t *testing.T) {
		inv := newInvoice(t)
		got, err := invoices.RecordPayment(ctx, inv.ID, decimal.RequireFromString("100.00"), "Card")
		if err != nil {
			t.Fatalf("RecordPayment: %v", err)
		}
		if got.Status != core.StatusPaid {
			t.Errorf("status = %s, want PAID", got.Status)
		}
		if len(got.Payments) != 1 {
			t.Errorf("payments = %d, want 1", len(got.Payments))
		}
	})

	t.Run("partial payment stays UNPAID", func(t *testing.T) {
		inv := newInvoice(t)
		got, err := invoices.RecordPayment(ctx, inv.ID, decimal.RequireFromString("40.00"), "Bank Transfer")
		if err != nil {
			t.Fatalf("RecordPayment: %v", err)
		}
		if got.Status != core.StatusUnpaid {
			t.Errorf("status = %s, want UNPAID", got.Status)
		}
	})

	t.Run("overpayment rejected without a row", func(t *testing.T) {
		inv := newInvoice(t)
		_, err := invoices.RecordPayment(ctx, inv.ID, decimal.RequireFromString("100.01"), "Card")
		if !errors.Is(err, core.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
		var count int
		if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM payments WHERE invoice_id = $1`, inv.ID).Scan(&count); err != nil {
			t.Fatalf("count payments: %v", err)
		}
		if count != 0 {
			t.Errorf("rejected payment left %d rows", count)
		}
	})

	t.Run("second payment checks remaining balance", func(t *testing.T) {
		inv := newInvoice(t)
		if _, err := invoices.RecordPayment(ctx, inv.ID, decimal.RequireFromString("60.00"), "Card"); err != nil {
			t.Fatalf("first payment: %v", err)
		}
		if _, err := invoices.RecordPayment(ctx, inv.ID, decimal.RequireFromString("50.00"), "Card"); !errors.Is(err, core.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput on overshoot, got %v", err)
		}
		got, err := invoices.RecordPayment(ctx, inv.ID, decimal.RequireFromString("40.00"), "Card")
		if err != nil {
			t.Fatalf("settling payment: %v", err)
		}
		if got.Status != core.StatusPaid {
			t.Errorf("status = %s, want PAID", got.Status)
		}
	})

	t.Run("payment on overdue invoice never lands on OVERDUE", func(t *testing.T) {
		pastDue, err := invoices.CreateInvoice(ctx, clientID, issue, time.Now().UTC().AddDate(0, 0, -1), []core.InvoiceItemInput{
			{ItemName: "Late job", Quantity: 1, UnitPrice: decimal.RequireFromString("100.00")},
		})
		if err != nil {
			t.Fatalf("CreateInvoice: %v", err)
		}
		got, err := invoices.RecordPayment(ctx, pastDue.ID, decimal.RequireFromString("10.00"), "Card")
		if err != nil {
			t.Fatalf("RecordPayment: %v", err)
		}
		if got.Status != core.StatusUnpaid {
			t.Errorf("status = %s, want UNPAID", got.Status)
		}
	})

	t.Run("unknown invoice", func(t *testing.T) {
		_, err := invoices.RecordPayment(ctx, "00000000-0000-0000-0000-000000000000", decimal.RequireFromString("1.00"), "Card")
		if !errors.Is(err, core.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestInvoiceService_ListInvoices(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	audit := core.NewAuditService(pool)
	invoices := core.NewInvoiceService(pool, audit)
	ctx := context.Background()

	clientID := seedClient(t, pool, "Acme Corp", "billing@acme.com")
	items := []core.InvoiceItemInput{{ItemName: "Widget", Quantity: 1, UnitPrice: decimal.RequireFromString("10.00")}}

	pastDue, err := invoices.CreateInvoice(ctx, clientID, time.Now().UTC().AddDate(0, 0, -40), time.Now().UTC().AddDate(0, 0, -10), items)
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}
	current, err := invoices.CreateInvoice(ctx, clientID, time.Now().UTC(), time.Now().UTC().AddDate(0, 0, 30), items)
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}

	t.Run("past-due invoices promoted to OVERDUE and persisted", func(t *testing.T) {
		list, err := invoices.ListInvoices(ctx, nil)
		if err != nil {
			t.Fatalf("ListInvoices: %v", err)
		}
		if len(list) != 2 {
			t.Fatalf("expected 2 invoices, got %d", len(list))
		}
		// Ordered by issue date descending.
		if list[0].ID != current.ID {
			t.Errorf("expected newest invoice first")
		}
		if list[1].Status != core.StatusOverdue {
			t.Errorf("past-due status = %s, want OVERDUE", list[1].Status)
		}
		var persisted core.InvoiceStatus
		if err := pool.QueryRow(ctx, `SELECT status FROM invoices WHERE id = $1`, pastDue.ID).Scan(&persisted); err != nil {
			t.Fatalf("read back status: %v", err)
		}
		if persisted != core.StatusOverdue {
			t.Errorf("persisted status = %s, want OVERDUE", persisted)
		}
	})

	t.Run("listing again is a no-op", func(t *testing.T) {
		list, err := invoices.ListInvoices(ctx, nil)
		if err != nil {
			t.Fatalf("ListInvoices: %v", err)
		}
		if list[1].Status != core.StatusOverdue {
			t.Errorf("status = %s, want OVERDUE", list[1].Status)
		}
	})

	t.Run("status filter matches persisted status", func(t *testing.T) {
		overdue := core.StatusOverdue
		list, err := invoices.ListInvoices(ctx, &overdue)
		if err != nil {
			t.Fatalf("ListInvoices: %v", err)
		}
		if len(list) != 1 || list[0].ID != pastDue.ID {
			t.Errorf("expected only the overdue invoice, got %d rows", len(list))
		}
	})
}

func TestInvoiceService_UpdateInvoiceStatus(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	audit := core.NewAuditService(pool)
	invoices := core.NewInvoiceService(pool, audit)
	ctx := context.Background()

	clientID := seedClient(t, pool, "Acme Corp", "billing@acme.com")
	inv, err := invoices.CreateInvoice(ctx, clientID, time.Now().UTC(), time.Now().UTC().AddDate(0, 0, 30), nil)
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}

	t.Run("manual override", func(t *testing.T) {
		got, err := invoices.UpdateInvoiceStatus(ctx, inv.ID, core.StatusPaid)
		if err != nil {
			t.Fatalf("UpdateInvoiceStatus: %v", err)
		}
		if got.Status != core.StatusPaid {
			t.Errorf("status = %s, want PAID", got.Status)
		}
	})

	t.Run("invalid status rejected", func(t *testing.T) {
		_, err := invoices.UpdateInvoiceStatus(ctx, inv.ID, "CANCELLED")
		if !errors.Is(err, core.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("unknown invoice", func(t *testing.T) {
		_, err := invoices.UpdateInvoiceStatus(ctx, "00000000-0000-0000-0000-000000000000", core.StatusPaid)
		if !errors.Is(err, core.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}
