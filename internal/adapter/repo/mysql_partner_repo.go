package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/grigobio237-eng/Youniqle-sub001/internal/usecase"
)

// MySQLPartnerRepo reads partner commission rates. It is consulted only at
// order-creation time; settlement works from the snapshot on the sub-order.
type MySQLPartnerRepo struct{ db *sql.DB }

func NewMySQLPartnerRepo(db *sql.DB) *MySQLPartnerRepo { return &MySQLPartnerRepo{db: db} }

func (r *MySQLPartnerRepo) CommissionRateBps(ctx context.Context, partnerID string) (int64, error) {
	var bps int64
	err := r.db.QueryRowContext(ctx,
		`SELECT commission_rate_bps FROM partners WHERE id = ? AND enabled = 1`,
		partnerID).Scan(&bps)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("unknown partner %s", partnerID)
	}
	if err != nil {
		return 0, err
	}
	return bps, nil
}

var _ usecase.PartnerRates = (*MySQLPartnerRepo)(nil)
