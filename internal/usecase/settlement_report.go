package usecase

import (
	"context"
	"time"
)

// Growth is a period-over-period revenue delta. New marks the defined
// sentinel for "previous period was zero, current is not": there is no
// meaningful percentage, only "new revenue".
type Growth struct {
	Pct float64 `json:"pct"`
	New bool    `json:"new"`
}

// ComputeGrowth avoids the undefined zero-denominator cases: 0 vs 0 is a
// flat 0%, anything vs 0 is the "new" sentinel pegged at +100%.
func ComputeGrowth(current, previous int64) Growth {
	if previous == 0 {
		if current == 0 {
			return Growth{Pct: 0}
		}
		return Growth{Pct: 100, New: true}
	}
	return Growth{Pct: float64(current-previous) / float64(previous) * 100}
}

type SettlementReportOutput struct {
	PartnerID   string       `json:"partnerId"`
	WindowStart time.Time    `json:"windowStart"`
	WindowEnd   time.Time    `json:"windowEnd"`
	Current     WindowTotals `json:"current"`
	Previous    WindowTotals `json:"previous"`
	Growth      Growth       `json:"growth"`
}

// SettlementReport is the read-only rollup of one partner's revenue and
// commission. It runs the identical aggregation over the immediately
// preceding equal-length window to derive growth, and returns zeros (not an
// error) for a partner with no orders.
type SettlementReport struct {
	store SettlementStore
	now   func() time.Time
}

func NewSettlementReport(store SettlementStore) *SettlementReport {
	return &SettlementReport{store: store, now: time.Now}
}

func (uc *SettlementReport) Partner(ctx context.Context, partnerID string, window time.Duration) (SettlementReportOutput, error) {
	end := uc.now()
	start := end.Add(-window)

	current, err := uc.store.WindowTotals(ctx, partnerID, start, end)
	if err != nil {
		return SettlementReportOutput{}, err
	}
	previous, err := uc.store.WindowTotals(ctx, partnerID, start.Add(-window), start)
	if err != nil {
		return SettlementReportOutput{}, err
	}

	return SettlementReportOutput{
		PartnerID:   partnerID,
		WindowStart: start,
		WindowEnd:   end,
		Current:     current,
		Previous:    previous,
		Growth:      ComputeGrowth(current.Revenue, previous.Revenue),
	}, nil
}
