package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name     string
		from     OrderStatus
		to       OrderStatus
		expected bool
	}{
		{"pending can confirm", OrderPending, OrderConfirmed, true},
		{"pending can cancel", OrderPending, OrderCancelled, true},
		{"confirmed can move to preparing", OrderConfirmed, OrderPreparing, true},
		{"preparing can ship", OrderPreparing, OrderShipped, true},
		{"shipped can deliver", OrderShipped, OrderDelivered, true},
		{"shipped can cancel", OrderShipped, OrderCancelled, true},

		{"pending cannot ship directly", OrderPending, OrderShipped, false},
		{"pending cannot deliver directly", OrderPending, OrderDelivered, false},
		{"confirmed cannot regress to pending", OrderConfirmed, OrderPending, false},
		{"shipped cannot regress to preparing", OrderShipped, OrderPreparing, false},
		{"delivered is terminal", OrderDelivered, OrderCancelled, false},
		{"cancelled is terminal", OrderCancelled, OrderConfirmed, false},
		{"same status is not a transition", OrderConfirmed, OrderConfirmed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CanTransition(tt.from, tt.to))
		})
	}
}

func TestCanTransitionPayment(t *testing.T) {
	tests := []struct {
		name     string
		from     PaymentStatus
		to       PaymentStatus
		expected bool
	}{
		{"pending to completed", PaymentPending, PaymentCompleted, true},
		{"pending to failed", PaymentPending, PaymentFailed, true},
		{"completed to refunded", PaymentCompleted, PaymentRefunded, true},

		{"completed back to pending", PaymentCompleted, PaymentPending, false},
		{"failed to completed", PaymentFailed, PaymentCompleted, false},
		{"pending to refunded", PaymentPending, PaymentRefunded, false},
		{"refunded is terminal", PaymentRefunded, PaymentCompleted, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CanTransitionPayment(tt.from, tt.to))
		})
	}
}

func testItems() []LineItem {
	return []LineItem{
		{ProductID: "P1", PartnerID: "partner-a", Name: "sneakers", UnitPrice: 30000, Quantity: 1},
		{ProductID: "P2", PartnerID: "partner-b", Name: "cap", UnitPrice: 10000, Quantity: 2},
		{ProductID: "P3", PartnerID: "partner-a", Name: "socks", UnitPrice: 5000, Quantity: 2},
	}
}

func TestNewOrderSplitsPerPartner(t *testing.T) {
	now := time.Now()
	rates := map[string]int64{"partner-a": 1000, "partner-b": 500} // 10%, 5%

	o, err := NewOrder("id-1", "ORD-1001", "buyer-1", testItems(), rates, now)
	require.NoError(t, err)

	assert.Equal(t, int64(60000), o.TotalAmount)
	assert.Equal(t, OrderPending, o.Status)
	assert.Equal(t, PaymentPending, o.PaymentStatus)
	require.Len(t, o.SubOrders, 2)

	a, b := o.SubOrders[0], o.SubOrders[1]
	assert.Equal(t, "partner-a", a.PartnerID)
	assert.Equal(t, int64(40000), a.Subtotal)
	assert.Equal(t, int64(4000), a.Commission) // 10% of 40000
	assert.Len(t, a.Items, 2)

	assert.Equal(t, "partner-b", b.PartnerID)
	assert.Equal(t, int64(20000), b.Subtotal)
	assert.Equal(t, int64(1000), b.Commission) // 5% of 20000

	assert.NoError(t, o.CheckSubtotals())
}

func TestNewOrderRejectsMissingRate(t *testing.T) {
	_, err := NewOrder("id-1", "ORD-1001", "buyer-1", testItems(), map[string]int64{"partner-a": 1000}, time.Now())
	assert.Error(t, err)
}

func TestNewOrderRejectsBadItems(t *testing.T) {
	items := []LineItem{{ProductID: "P1", PartnerID: "a", UnitPrice: 0, Quantity: 1}}
	_, err := NewOrder("id-1", "ORD-1001", "b", items, map[string]int64{"a": 100}, time.Now())
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestCommissionTruncates(t *testing.T) {
	assert.Equal(t, int64(333), Commission(3333, 1000)) // 10% of 3333
	assert.Equal(t, int64(0), Commission(9, 1000))
	assert.Equal(t, int64(0), Commission(10000, 0))
	assert.Equal(t, int64(10000), Commission(10000, 10000))
}

func TestCheckSubtotalsDetectsDrift(t *testing.T) {
	rates := map[string]int64{"partner-a": 1000, "partner-b": 500}
	o, err := NewOrder("id-1", "ORD-1001", "buyer-1", testItems(), rates, time.Now())
	require.NoError(t, err)

	o.SubOrders[0].Subtotal += 1
	assert.Error(t, o.CheckSubtotals())
}

func TestAdvanceStatusKeepsLockstepSubOrders(t *testing.T) {
	rates := map[string]int64{"partner-a": 1000, "partner-b": 500}
	o, err := NewOrder("id-1", "ORD-1001", "buyer-1", testItems(), rates, time.Now())
	require.NoError(t, err)

	require.NoError(t, o.AdvanceStatus(OrderConfirmed, time.Now()))
	assert.Equal(t, OrderConfirmed, o.SubOrders[0].Status)
	assert.Equal(t, OrderConfirmed, o.SubOrders[1].Status)

	// One partner ships early; the parent transition must not drag it back.
	o.SubOrders[0].Status = OrderPreparing
	require.NoError(t, o.AdvanceStatus(OrderPreparing, time.Now()))
	assert.Equal(t, OrderPreparing, o.SubOrders[0].Status)
	assert.Equal(t, OrderPreparing, o.SubOrders[1].Status)

	o.SubOrders[0].Status = OrderShipped // diverged ahead of the parent
	require.NoError(t, o.AdvanceStatus(OrderShipped, time.Now()))
	assert.Equal(t, OrderShipped, o.SubOrders[0].Status)
	assert.Equal(t, OrderShipped, o.SubOrders[1].Status)
}

func TestAdvanceStatusRejectsIllegalMove(t *testing.T) {
	rates := map[string]int64{"partner-a": 1000, "partner-b": 500}
	o, err := NewOrder("id-1", "ORD-1001", "buyer-1", testItems(), rates, time.Now())
	require.NoError(t, err)

	err = o.AdvanceStatus(OrderDelivered, time.Now())
	require.Error(t, err)
	assert.Equal(t, OrderPending, o.Status)

	var tr ErrInvalidTransition
	assert.ErrorAs(t, err, &tr)
}

func TestProductIDs(t *testing.T) {
	rates := map[string]int64{"partner-a": 1000, "partner-b": 500}
	o, err := NewOrder("id-1", "ORD-1001", "buyer-1", testItems(), rates, time.Now())
	require.NoError(t, err)

	ids := o.ProductIDs()
	assert.Len(t, ids, 3)
	assert.Contains(t, ids, "P1")
	assert.Contains(t, ids, "P2")
	assert.Contains(t, ids, "P3")
}
