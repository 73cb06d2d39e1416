package kafka

import (
	"context"
	"log/slog"

	domain "github.com/grigobio237-eng/Youniqle-sub001/internal/entity"
	"github.com/grigobio237-eng/Youniqle-sub001/internal/usecase"
)

// FulfillmentHandler advances an order's lifecycle from fulfillment-system
// events through the ledger's guarded transitions. Illegal or stale events
// (delivery of at-least-once feeds) are logged and dropped, never retried:
// retrying cannot make an illegal transition legal.
type FulfillmentHandler struct {
	Orders usecase.OrderStore
	Cache  usecase.StatusCache // optional
	Log    *slog.Logger
}

func NewFulfillmentHandler(orders usecase.OrderStore, cache usecase.StatusCache, log *slog.Logger) *FulfillmentHandler {
	return &FulfillmentHandler{Orders: orders, Cache: cache, Log: log}
}

func (h *FulfillmentHandler) Handle(ctx context.Context, ev FulfillmentMsg) error {
	var to domain.OrderStatus
	switch ev.Event {
	case "preparing":
		to = domain.OrderPreparing
	case "shipped":
		to = domain.OrderShipped
	case "delivered":
		to = domain.OrderDelivered
	case "cancelled":
		to = domain.OrderCancelled
	default:
		h.Log.Warn("unknown fulfillment event", "event", ev.Event, "order_number", ev.OrderNumber)
		return nil
	}

	order, err := h.Orders.FindByOrderNumber(ctx, ev.OrderNumber)
	if err != nil {
		h.Log.Warn("fulfillment event for unknown order", "order_number", ev.OrderNumber, "err", err)
		return nil
	}

	if !domain.CanTransition(order.Status, to) {
		h.Log.Warn("dropping illegal fulfillment transition",
			"order_number", ev.OrderNumber, "from", order.Status, "to", to)
		return nil
	}

	ok, err := h.Orders.AdvanceStatusIf(ctx, ev.OrderNumber, order.Status, to)
	if err != nil {
		return err // transient store error: retry on next poll
	}
	if !ok {
		// Lost a race with another transition; the re-delivered event will
		// re-evaluate against the new state.
		h.Log.Warn("fulfillment transition lost race", "order_number", ev.OrderNumber, "to", to)
		return nil
	}

	if h.Cache != nil {
		_ = h.Cache.SetOrderStatus(ctx, ev.OrderNumber, string(to))
	}
	return nil
}
