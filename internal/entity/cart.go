package domain

import "time"

type CartItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unitPrice"` // price captured when the item was added
}

// Cart caches its totals, but they are derived state: every mutation goes
// through recompute so the totals can never drift from the item list.
type Cart struct {
	BuyerID     string     `json:"buyerId"`
	Items       []CartItem `json:"items"`
	TotalQty    int        `json:"totalQty"`
	TotalAmount int64      `json:"totalAmount"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func NewCart(buyerID string, now time.Time) *Cart {
	return &Cart{BuyerID: buyerID, UpdatedAt: now}
}

// AddItem merges quantity into an existing line for the same product, keeping
// the originally captured price, or appends a new line.
func (c *Cart) AddItem(it CartItem, now time.Time) {
	for i := range c.Items {
		if c.Items[i].ProductID == it.ProductID {
			c.Items[i].Quantity += it.Quantity
			c.recompute(now)
			return
		}
	}
	c.Items = append(c.Items, it)
	c.recompute(now)
}

// RemoveProducts deletes every line whose product id is in ids and returns how
// many lines were removed. Lines for other products are untouched.
func (c *Cart) RemoveProducts(ids map[string]struct{}, now time.Time) int {
	kept := c.Items[:0]
	removed := 0
	for _, it := range c.Items {
		if _, ok := ids[it.ProductID]; ok {
			removed++
			continue
		}
		kept = append(kept, it)
	}
	c.Items = kept
	c.recompute(now)
	return removed
}

func (c *Cart) recompute(now time.Time) {
	c.TotalQty = 0
	c.TotalAmount = 0
	for _, it := range c.Items {
		c.TotalQty += it.Quantity
		c.TotalAmount += it.UnitPrice * int64(it.Quantity)
	}
	c.UpdatedAt = now
}
