package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testCart() *Cart {
	now := time.Now()
	c := NewCart("buyer-1", now)
	c.AddItem(CartItem{ProductID: "A", Quantity: 1, UnitPrice: 30000}, now)
	c.AddItem(CartItem{ProductID: "B", Quantity: 3, UnitPrice: 2000}, now)
	c.AddItem(CartItem{ProductID: "C", Quantity: 2, UnitPrice: 5000}, now)
	return c
}

func TestCartTotalsAreRecomputed(t *testing.T) {
	c := testCart()
	assert.Equal(t, 6, c.TotalQty)
	assert.Equal(t, int64(46000), c.TotalAmount)

	// merging quantity keeps the captured price
	c.AddItem(CartItem{ProductID: "B", Quantity: 1, UnitPrice: 9999}, time.Now())
	assert.Equal(t, 7, c.TotalQty)
	assert.Equal(t, int64(48000), c.TotalAmount)
	assert.Len(t, c.Items, 3)
}

func TestRemoveProductsPrunesExactly(t *testing.T) {
	c := testCart()

	removed := c.RemoveProducts(map[string]struct{}{"A": {}, "C": {}}, time.Now())
	assert.Equal(t, 2, removed)

	// exactly B remains, totals are B's price x quantity
	assert.Len(t, c.Items, 1)
	assert.Equal(t, "B", c.Items[0].ProductID)
	assert.Equal(t, 3, c.TotalQty)
	assert.Equal(t, int64(6000), c.TotalAmount)
}

func TestRemoveProductsIsIdempotent(t *testing.T) {
	c := testCart()
	ids := map[string]struct{}{"A": {}, "C": {}}

	c.RemoveProducts(ids, time.Now())
	again := c.RemoveProducts(ids, time.Now())

	assert.Equal(t, 0, again)
	assert.Len(t, c.Items, 1)
	assert.Equal(t, int64(6000), c.TotalAmount)
}

func TestRemoveProductsIgnoresUnknownIDs(t *testing.T) {
	c := testCart()
	removed := c.RemoveProducts(map[string]struct{}{"ZZZ": {}}, time.Now())
	assert.Equal(t, 0, removed)
	assert.Len(t, c.Items, 3)
	assert.Equal(t, int64(46000), c.TotalAmount)
}
