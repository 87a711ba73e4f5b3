package core_test

import (
	"context"
	"testing"
	"time"

	"invoicing-api/internal/core"

	"github.com/shopspring/decimal"
)

func TestMetricsService_DashboardMetrics(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	audit := core.NewAuditService(pool)
	invoices := core.NewInvoiceService(pool, audit)
	metrics := core.NewMetricsService(pool)
	ctx := context.Background()

	clientID := seedClient(t, pool, "Acme Corp", "billing@acme.com")

	paid, err := invoices.CreateInvoice(ctx, clientID, time.Now().UTC().AddDate(0, 0, -10), time.Now().UTC().AddDate(0, 0, 20), []core.InvoiceItemInput{
		{ItemName: "Consulting", Quantity: 1, UnitPrice: decimal.RequireFromString("100.00")},
	})
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}
	if _, err := invoices.RecordPayment(ctx, paid.ID, decimal.RequireFromString("100.00"), "Card"); err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}

	// Still persisted UNPAID; the due date is in the past.
	if _, err := invoices.CreateInvoice(ctx, clientID, time.Now().UTC().AddDate(0, 0, -40), time.Now().UTC().AddDate(0, 0, -10), []core.InvoiceItemInput{
		{ItemName: "Widget", Quantity: 5, UnitPrice: decimal.RequireFromString("10.00")},
	}); err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}

	check := func(t *testing.T, m *core.DashboardMetrics) {
		t.Helper()
		if !m.TotalRevenue.Equal(decimal.RequireFromString("100.00")) {
			t.Errorf("revenue = %s, want 100.00", m.TotalRevenue)
		}
		if !m.TotalOutstanding.Equal(decimal.RequireFromString("50.00")) {
			t.Errorf("outstanding = %s, want 50.00", m.TotalOutstanding)
		}
		if m.TotalInvoices != 2 {
			t.Errorf("total invoices = %d, want 2", m.TotalInvoices)
		}
		if m.OverdueCount != 1 {
			t.Errorf("overdue count = %d, want 1", m.OverdueCount)
		}
	}

	t.Run("before any listing", func(t *testing.T) {
		m, err := metrics.DashboardMetrics(ctx)
		if err != nil {
			t.Fatalf("DashboardMetrics: %v", err)
		}
		check(t, m)
	})

	t.Run("after a listing persisted the promotion", func(t *testing.T) {
		if _, err := invoices.ListInvoices(ctx, nil); err != nil {
			t.Fatalf("ListInvoices: %v", err)
		}
		m, err := metrics.DashboardMetrics(ctx)
		if err != nil {
			t.Fatalf("DashboardMetrics: %v", err)
		}
		check(t, m)
	})
}

func TestMetricsService_EmptyDatabase(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	metrics := core.NewMetricsService(pool)
	m, err := metrics.DashboardMetrics(context.Background())
	if err != nil {
		t.Fatalf("DashboardMetrics: %v", err)
	}
	if !m.TotalRevenue.IsZero() || !m.TotalOutstanding.IsZero() || m.TotalInvoices != 0 || m.OverdueCount != 0 {
		t.Errorf("expected zeroed metrics, got %+v", m)
	}
}
