package repo

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/grigobio237-eng/Youniqle-sub001/internal/entity"
	"github.com/grigobio237-eng/Youniqle-sub001/internal/usecase"
)

// MySQLSettlementRepo serves the read-only reporting rollups. It only ever
// reads committed ledger state and tolerates observing an order on either
// side of a concurrent transition.
type MySQLSettlementRepo struct{ db *sql.DB }

func NewMySQLSettlementRepo(db *sql.DB) *MySQLSettlementRepo {
	return &MySQLSettlementRepo{db: db}
}

// WindowTotals sums one partner's sub-order revenue and commission for paid
// orders created in [start, end). Commission counts as realized once the
// parent order is delivered, pending before that. COALESCE keeps an empty
// window at zero instead of NULL.
func (r *MySQLSettlementRepo) WindowTotals(ctx context.Context, partnerID string, start, end time.Time) (usecase.WindowTotals, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT
  COALESCE(SUM(s.subtotal), 0),
  COALESCE(SUM(CASE WHEN o.status <> ? THEN s.commission ELSE 0 END), 0),
  COALESCE(SUM(CASE WHEN o.status =  ? THEN s.commission ELSE 0 END), 0),
  COUNT(*)
FROM partner_suborders s
JOIN orders o ON o.id = s.order_id
WHERE s.partner_id = ?
  AND o.payment_status = ?
  AND o.status <> ?
  AND o.created_at >= ? AND o.created_at < ?`,
		domain.OrderDelivered, domain.OrderDelivered,
		partnerID, domain.PaymentCompleted, domain.OrderCancelled,
		start, end)

	var t usecase.WindowTotals
	if err := row.Scan(&t.Revenue, &t.CommissionPending, &t.CommissionRealized, &t.Orders); err != nil {
		return usecase.WindowTotals{}, err
	}
	return t, nil
}

var _ usecase.SettlementStore = (*MySQLSettlementRepo)(nil)
