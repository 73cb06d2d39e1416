package usecase

import (
	"context"
	"time"

	domain "github.com/grigobio237-eng/Youniqle-sub001/internal/entity"
	"github.com/grigobio237-eng/Youniqle-sub001/internal/gateway"
)

// OrderStore owns persistent order state. Lookups are strictly by order
// number: it is the only correlation key the gateway callback is trusted for.
type OrderStore interface {
	Create(ctx context.Context, o *domain.Order) error
	FindByOrderNumber(ctx context.Context, orderNumber string) (*domain.Order, error)

	// ConfirmPaymentIf atomically sets payment_status=completed and
	// status=confirmed, conditional on payment_status still being pending.
	// Returns false without error when the condition did not hold, which is
	// how a racing duplicate callback loses.
	ConfirmPaymentIf(ctx context.Context, orderNumber string) (bool, error)

	// FailPaymentIf sets payment_status=failed conditional on it being
	// pending. A replayed decline after completion must not regress state.
	FailPaymentIf(ctx context.Context, orderNumber string) (bool, error)

	// AdvanceStatusIf moves the order lifecycle from->to as a conditional
	// update, syncing sub-orders still at the old status.
	AdvanceStatusIf(ctx context.Context, orderNumber string, from, to domain.OrderStatus) (bool, error)
}

type CartStore interface {
	// FindByBuyer returns (nil, nil) when the buyer has no cart.
	FindByBuyer(ctx context.Context, buyerID string) (*domain.Cart, error)
	Save(ctx context.Context, c *domain.Cart) error
}

// PartnerRates is consulted only at order-creation time; settlement never
// re-reads a live rate.
type PartnerRates interface {
	CommissionRateBps(ctx context.Context, partnerID string) (int64, error)
}

// ApprovalGateway is the second-phase approval call, satisfied by
// gateway.Requester in production and a fake in tests.
type ApprovalGateway interface {
	Approve(ctx context.Context, req gateway.ApprovalRequest) (gateway.ApprovalReply, error)
}

type PaymentCompletedMsg struct {
	OrderID     string `json:"orderId"`
	OrderNumber string `json:"orderNumber"`
	BuyerID     string `json:"buyerId"`
	Amount      int64  `json:"amount"`
	TID         string `json:"tid"`
}

type EventPublisher interface {
	PublishPaymentCompleted(ctx context.Context, msg PaymentCompletedMsg) error
}

// StatusCache is a best-effort write-through of order status for cheap reads;
// it is never the system of record.
type StatusCache interface {
	SetOrderStatus(ctx context.Context, orderNumber, status string) error
}

type IdempotencyStore interface {
	TryLock(ctx context.Context, scope, key string) (bool, error)
	Remember(ctx context.Context, scope, key, value string) error
	Recall(ctx context.Context, scope, key string) (string, bool, error)
}

// SettlementStore serves the read-only reporting rollups. Eventual
// consistency with the order ledger is acceptable here.
type SettlementStore interface {
	WindowTotals(ctx context.Context, partnerID string, start, end time.Time) (WindowTotals, error)
}

// WindowTotals is one partner's rollup over a half-open time window.
type WindowTotals struct {
	Revenue            int64 `json:"revenue"`
	CommissionPending  int64 `json:"commissionPending"`
	CommissionRealized int64 `json:"commissionRealized"`
	Orders             int   `json:"orders"`
}
