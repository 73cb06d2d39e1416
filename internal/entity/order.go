package domain

import (
	"errors"
	"fmt"
	"time"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderPreparing OrderStatus = "preparing"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

var ErrInvalidAmount = errors.New("invalid amount")

// CanTransition reports whether an order may move from one lifecycle status to
// another. The lifecycle only advances; cancellation is reachable from any
// non-terminal status.
func CanTransition(from, to OrderStatus) bool {
	allowed := map[OrderStatus][]OrderStatus{
		OrderPending:   {OrderConfirmed, OrderCancelled},
		OrderConfirmed: {OrderPreparing, OrderCancelled},
		OrderPreparing: {OrderShipped, OrderCancelled},
		OrderShipped:   {OrderDelivered, OrderCancelled},
		OrderDelivered: {},
		OrderCancelled: {},
	}
	for _, s := range allowed[from] {
		if s == to {
			return true
		}
	}
	return false
}

// CanTransitionPayment encodes the only legal payment edges:
// pending -> completed|failed, and completed -> refunded.
func CanTransitionPayment(from, to PaymentStatus) bool {
	switch from {
	case PaymentPending:
		return to == PaymentCompleted || to == PaymentFailed
	case PaymentCompleted:
		return to == PaymentRefunded
	default:
		return false
	}
}

type ErrInvalidTransition struct {
	From, To string
}

func (e ErrInvalidTransition) Error() string {
	return "invalid status transition: " + e.From + " -> " + e.To
}

type LineItem struct {
	ProductID string `json:"productId"`
	PartnerID string `json:"partnerId"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
}

func (li LineItem) Total() int64 { return li.UnitPrice * int64(li.Quantity) }

// PartnerSubOrder is the slice of a multi-vendor order attributable to one
// partner. Commission is an amount, not a rate: it is computed once from the
// partner's rate at order-creation time and never recomputed.
type PartnerSubOrder struct {
	PartnerID  string      `json:"partnerId"`
	Items      []LineItem  `json:"items"`
	Subtotal   int64       `json:"subtotal"`
	Commission int64       `json:"commission"`
	Status     OrderStatus `json:"status"`
}

type Order struct {
	ID            string            `json:"id"`
	OrderNumber   string            `json:"orderNumber"`
	BuyerID       string            `json:"buyerId"`
	Items         []LineItem        `json:"items"`
	TotalAmount   int64             `json:"totalAmount"`
	Status        OrderStatus       `json:"status"`
	PaymentStatus PaymentStatus     `json:"paymentStatus"`
	SubOrders     []PartnerSubOrder `json:"subOrders"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// NewOrder builds an order and its per-partner sub-orders from line items.
// rateBps maps partner id to its commission rate in basis points, as read at
// creation time; every partner present in items must have an entry.
func NewOrder(id, orderNumber, buyerID string, items []LineItem, rateBps map[string]int64, now time.Time) (*Order, error) {
	if len(items) == 0 {
		return nil, errors.New("order has no items")
	}
	var total int64
	for _, li := range items {
		if li.UnitPrice <= 0 || li.Quantity <= 0 {
			return nil, ErrInvalidAmount
		}
		total += li.Total()
	}

	subs, err := splitByPartner(items, rateBps)
	if err != nil {
		return nil, err
	}

	o := &Order{
		ID:            id,
		OrderNumber:   orderNumber,
		BuyerID:       buyerID,
		Items:         items,
		TotalAmount:   total,
		Status:        OrderPending,
		PaymentStatus: PaymentPending,
		SubOrders:     subs,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := o.CheckSubtotals(); err != nil {
		return nil, err
	}
	return o, nil
}

// splitByPartner groups items per partner, preserving the order in which a
// partner first appears, and snapshots commission from the given rates.
func splitByPartner(items []LineItem, rateBps map[string]int64) ([]PartnerSubOrder, error) {
	idx := map[string]int{}
	var subs []PartnerSubOrder
	for _, li := range items {
		i, ok := idx[li.PartnerID]
		if !ok {
			rate, ok := rateBps[li.PartnerID]
			if !ok {
				return nil, fmt.Errorf("no commission rate for partner %s", li.PartnerID)
			}
			if rate < 0 || rate > 10000 {
				return nil, fmt.Errorf("commission rate out of range for partner %s: %d bps", li.PartnerID, rate)
			}
			i = len(subs)
			idx[li.PartnerID] = i
			subs = append(subs, PartnerSubOrder{PartnerID: li.PartnerID, Status: OrderPending})
		}
		subs[i].Items = append(subs[i].Items, li)
		subs[i].Subtotal += li.Total()
	}
	for i := range subs {
		subs[i].Commission = Commission(subs[i].Subtotal, rateBps[subs[i].PartnerID])
	}
	return subs, nil
}

// Commission computes the platform cut of a subtotal at the given rate in
// basis points, truncating fractional units.
func Commission(subtotal, rateBps int64) int64 {
	return subtotal * rateBps / 10000
}

// CheckSubtotals verifies the money-splitting invariant: the sub-order
// subtotals must sum exactly to the order total.
func (o *Order) CheckSubtotals() error {
	var sum int64
	for _, s := range o.SubOrders {
		sum += s.Subtotal
	}
	if sum != o.TotalAmount {
		return fmt.Errorf("sub-order subtotals %d do not sum to order total %d", sum, o.TotalAmount)
	}
	return nil
}

// AdvanceStatus moves the order lifecycle forward, dragging along every
// sub-order that is still in lockstep with the parent. Sub-orders that have
// already diverged (one partner ships before another) are left alone.
func (o *Order) AdvanceStatus(to OrderStatus, now time.Time) error {
	if !CanTransition(o.Status, to) {
		return ErrInvalidTransition{From: string(o.Status), To: string(to)}
	}
	from := o.Status
	o.Status = to
	for i := range o.SubOrders {
		if o.SubOrders[i].Status == from {
			o.SubOrders[i].Status = to
		}
	}
	o.UpdatedAt = now
	return nil
}

// ProductIDs returns the distinct product ids in the order's line items.
func (o *Order) ProductIDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(o.Items))
	for _, li := range o.Items {
		ids[li.ProductID] = struct{}{}
	}
	return ids
}
