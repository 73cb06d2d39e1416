package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	domain "github.com/grigobio237-eng/Youniqle-sub001/internal/entity"
)

type CreateOrderInput struct {
	BuyerID        string
	IdempotencyKey string
	Items          []domain.LineItem
}

type CreateOrderOutput struct {
	OrderID     string
	OrderNumber string
	TotalAmount int64
	Status      string
}

// CreateOrder persists a new multi-vendor order split into per-partner
// sub-orders, snapshotting each partner's commission rate at this moment.
// Later rate edits never touch an already-created order.
type CreateOrder struct {
	orders OrderStore
	rates  PartnerRates
	idem   IdempotencyStore
	now    func() time.Time
}

func NewCreateOrder(orders OrderStore, rates PartnerRates, idem IdempotencyStore) *CreateOrder {
	return &CreateOrder{orders: orders, rates: rates, idem: idem, now: time.Now}
}

func (uc *CreateOrder) Execute(ctx context.Context, in CreateOrderInput) (CreateOrderOutput, error) {
	// Fast path: the same (buyer, key) already produced an order.
	if num, ok, _ := uc.idem.Recall(ctx, in.BuyerID, in.IdempotencyKey); ok {
		return CreateOrderOutput{OrderNumber: num, Status: string(domain.OrderPending)}, nil
	}
	ok, err := uc.idem.TryLock(ctx, in.BuyerID, in.IdempotencyKey)
	if err != nil {
		return CreateOrderOutput{}, err
	}
	if !ok {
		return CreateOrderOutput{}, ErrDuplicateCheckout
	}

	rateBps := map[string]int64{}
	for _, li := range in.Items {
		if _, seen := rateBps[li.PartnerID]; seen {
			continue
		}
		rate, err := uc.rates.CommissionRateBps(ctx, li.PartnerID)
		if err != nil {
			return CreateOrderOutput{}, fmt.Errorf("commission rate for %s: %w", li.PartnerID, err)
		}
		rateBps[li.PartnerID] = rate
	}

	now := uc.now()
	order, err := domain.NewOrder(uuid.NewString(), newOrderNumber(now), in.BuyerID, in.Items, rateBps, now)
	if err != nil {
		return CreateOrderOutput{}, err
	}
	if err := uc.orders.Create(ctx, order); err != nil {
		return CreateOrderOutput{}, err
	}

	_ = uc.idem.Remember(ctx, in.BuyerID, in.IdempotencyKey, order.OrderNumber)
	return CreateOrderOutput{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		TotalAmount: order.TotalAmount,
		Status:      string(order.Status),
	}, nil
}

// newOrderNumber mints the externally visible correlation key. Globally
// unique and immutable once assigned; it doubles as the callback idempotency
// key.
func newOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
	return "ORD-" + now.Format("20060102") + "-" + suffix
}
