package core

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// MetricsService derives dashboard figures from current invoice state.
// Pure read-side computation; nothing is mutated.
type MetricsService interface {
	DashboardMetrics(ctx context.Context) (*DashboardMetrics, error)
}

type metricsService struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewMetricsService(pool *pgxpool.Pool) MetricsService {
	return &metricsService{pool: pool, now: time.Now}
}

// DashboardMetrics computes revenue, outstanding, overdue and invoice
// counts in one pass:
//   - revenue sums persisted PAID invoices;
//   - outstanding sums every invoice whose persisted status is not
//     PAID, regardless of any overdue promotion;
//   - the overdue count compares due dates fresh at call time, so it
//     gives the same answer whether or not a listing has already
//     reconciled UNPAID rows to OVERDUE.
func (s *metricsService) DashboardMetrics(ctx context.Context) (*DashboardMetrics, error) {
	m := &DashboardMetrics{
		TotalRevenue:     decimal.Zero,
		TotalOutstanding: decimal.Zero,
	}
	err := s.pool.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(total) FILTER (WHERE status = 'PAID'), 0),
			COALESCE(SUM(total) FILTER (WHERE status <> 'PAID'), 0),
			COUNT(*) FILTER (WHERE status = 'OVERDUE' OR (status = 'UNPAID' AND due_date < $1)),
			COUNT(*)
		FROM invoices`,
		s.now(),
	).Scan(&m.TotalRevenue, &m.TotalOutstanding, &m.OverdueCount, &m.TotalInvoices)
	if err != nil {
		return nil, fmt.Errorf("compute dashboard metrics: %w", err)
	}
	return m, nil
}
