package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	domain "github.com/grigobio237-eng/Youniqle-sub001/internal/entity"
	"github.com/grigobio237-eng/Youniqle-sub001/internal/gateway"
)

// CallbackInput is the first-phase payload the gateway posts back through the
// payer's browser after bank authentication.
type CallbackInput struct {
	AuthResultCode string
	AuthResultMsg  string
	AuthToken      string
	PayMethod      string
	MerchantID     string
	OrderNumber    string
	Amount         string // integer currency units as text, per the protocol
	TID            string
	ApprovalURL    string
}

// SettleResult carries everything the redirect page needs. On error returns
// it is still populated as far as the flow got.
type SettleResult struct {
	OrderID     string
	OrderNumber string
	Amount      int64
	TID         string
	Message     string
	Replayed    bool
}

// SettlePayment reconciles one gateway callback with order, sub-order and
// cart state: approval call, outcome classification, guarded ledger
// transition, cart pruning.
type SettlePayment struct {
	orders OrderStore
	carts  CartStore
	gw     ApprovalGateway
	events EventPublisher
	cache  StatusCache
	log    *slog.Logger
	now    func() time.Time
}

func NewSettlePayment(orders OrderStore, carts CartStore, gw ApprovalGateway, events EventPublisher, cache StatusCache, log *slog.Logger) *SettlePayment {
	return &SettlePayment{
		orders: orders,
		carts:  carts,
		gw:     gw,
		events: events,
		cache:  cache,
		log:    log,
		now:    time.Now,
	}
}

// Execute processes one callback end to end. The returned error is always one
// of the sentinel errors in errors.go (or nil for success); the HTTP boundary
// maps them onto the three redirect pages.
func (uc *SettlePayment) Execute(ctx context.Context, in CallbackInput) (SettleResult, error) {
	res := SettleResult{OrderNumber: in.OrderNumber, TID: in.TID}

	// Lookup strictly by order number; no other client-supplied identifier
	// is trusted.
	order, err := uc.orders.FindByOrderNumber(ctx, in.OrderNumber)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			uc.log.Warn("callback for unknown order", "order_number", in.OrderNumber, "tid", in.TID)
			return res, ErrOrderNotFound
		}
		uc.log.Error("order lookup failed", "order_number", in.OrderNumber, "err", err)
		return res, fmt.Errorf("%w: lookup", ErrApprovalUnreachable)
	}
	res.OrderID = order.ID
	res.Amount = order.TotalAmount

	// Bank authentication failed or was abandoned: a distinct, recoverable
	// outcome, not a decline. The approval phase never runs.
	if in.AuthResultCode != gateway.AuthSucceeded {
		res.Message = in.AuthResultMsg
		if res.Message == "" {
			res.Message = "authentication was not completed"
		}
		return res, ErrAuthenticationDeclined
	}

	// Replayed callback after a prior success: return the previous outcome
	// without touching anything. The only path that "succeeds" twice.
	if order.PaymentStatus == domain.PaymentCompleted {
		res.Replayed = true
		return res, nil
	}

	// The amount must be well-formed and must match the order before any
	// funds can be captured against it.
	if err := gateway.ValidateAmount(in.Amount); err != nil {
		res.Message = "malformed amount"
		return uc.decline(ctx, res)
	}
	if amt, _ := strconv.ParseInt(in.Amount, 10, 64); amt != order.TotalAmount {
		uc.log.Warn("callback amount mismatch",
			"order_number", in.OrderNumber, "got", in.Amount, "want", order.TotalAmount)
		res.Message = "amount mismatch"
		return uc.decline(ctx, res)
	}

	reply, err := uc.gw.Approve(ctx, gateway.ApprovalRequest{
		TID:         in.TID,
		AuthToken:   in.AuthToken,
		Amount:      in.Amount,
		ApprovalURL: in.ApprovalURL,
	})
	if err != nil {
		// Unreachable gateway: fail closed with zero state mutation so the
		// attempt stays retryable without risking a double commit.
		uc.log.Error("approval call failed", "order_number", in.OrderNumber, "err", err)
		res.Message = "payment service temporarily unavailable"
		return res, ErrApprovalUnreachable
	}

	outcome := gateway.Classify(in.AuthResultCode, reply.ResultCode(), gateway.PayMethod(in.PayMethod))
	switch outcome {
	case gateway.OutcomeApproved:
		return uc.confirm(ctx, order, res)
	default:
		res.Message = reply.ResultMsg()
		if res.Message == "" {
			res.Message = "payment was declined"
		}
		return uc.decline(ctx, res)
	}
}

// confirm applies the pending->completed compare-and-swap. Exactly one of two
// racing approvals wins it; the loser re-reads and falls into the replay path.
func (uc *SettlePayment) confirm(ctx context.Context, order *domain.Order, res SettleResult) (SettleResult, error) {
	ok, err := uc.orders.ConfirmPaymentIf(ctx, order.OrderNumber)
	if err != nil {
		uc.log.Error("confirm update failed", "order_number", order.OrderNumber, "err", err)
		res.Message = "payment service temporarily unavailable"
		return res, ErrApprovalUnreachable
	}
	if !ok {
		cur, err := uc.orders.FindByOrderNumber(ctx, order.OrderNumber)
		if err == nil && cur.PaymentStatus == domain.PaymentCompleted {
			res.Replayed = true
			return res, nil
		}
		uc.log.Error("confirm lost race to a non-completed state",
			"order_number", order.OrderNumber)
		res.Message = "payment could not be confirmed"
		return res, ErrApprovalDeclined
	}

	uc.reconcileCart(ctx, order)

	if uc.events != nil {
		msg := PaymentCompletedMsg{
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			BuyerID:     order.BuyerID,
			Amount:      order.TotalAmount,
			TID:         res.TID,
		}
		if err := uc.events.PublishPaymentCompleted(ctx, msg); err != nil {
			uc.log.Error("publish payment.completed failed", "order_number", order.OrderNumber, "err", err)
		}
	}
	if uc.cache != nil {
		_ = uc.cache.SetOrderStatus(ctx, order.OrderNumber, string(domain.OrderConfirmed))
	}
	return res, nil
}

// reconcileCart prunes exactly the purchased product ids from the buyer's
// cart, re-fetching first because the buyer may be editing it concurrently.
// Failure here never fails the payment: the money already moved.
func (uc *SettlePayment) reconcileCart(ctx context.Context, order *domain.Order) {
	cart, err := uc.carts.FindByBuyer(ctx, order.BuyerID)
	if err != nil {
		uc.log.Error("cart fetch failed", "buyer_id", order.BuyerID, "err", err)
		return
	}
	if cart == nil {
		return
	}
	if removed := cart.RemoveProducts(order.ProductIDs(), uc.now()); removed == 0 {
		return // nothing to prune; a replay or an already-cleared cart
	}
	if err := uc.carts.Save(ctx, cart); err != nil {
		uc.log.Error("cart save failed", "buyer_id", order.BuyerID, "err", err)
	}
}

func (uc *SettlePayment) decline(ctx context.Context, res SettleResult) (SettleResult, error) {
	ok, err := uc.orders.FailPaymentIf(ctx, res.OrderNumber)
	if err != nil {
		uc.log.Error("fail update failed", "order_number", res.OrderNumber, "err", err)
	} else if ok && uc.cache != nil {
		_ = uc.cache.SetOrderStatus(ctx, res.OrderNumber, string(domain.OrderPending))
	}
	return res, ErrApprovalDeclined
}
