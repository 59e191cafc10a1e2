package storefront

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/sweet_shop/internal/transport"
)

// Cart maps item id to requested quantity. It is not safe for concurrent
// use; Shop only touches it from its loop.
type Cart struct {
	items map[uint]int
}

func NewCart() *Cart {
	return &Cart{items: make(map[uint]int)}
}

// Add increments the entry for item unless that would exceed the item's
// last known stock.
func (c *Cart) Add(item transport.Sweet) error {
	if c.items[item.ID] >= item.Quantity {
		return ErrMaxStock
	}
	c.items[item.ID]++
	return nil
}

func (c *Cart) Remove(id uint) {
	q, ok := c.items[id]
	if !ok {
		return
	}
	if q <= 1 {
		delete(c.items, id)
		return
	}
	c.items[id] = q - 1
}

func (c *Cart) Clear(id uint) { delete(c.items, id) }

func (c *Cart) ClearAll() { clear(c.items) }

func (c *Cart) Quantity(id uint) int { return c.items[id] }

func (c *Cart) Len() int { return len(c.items) }

func (c *Cart) ItemCount() int {
	n := 0
	for _, q := range c.items {
		n += q
	}
	return n
}

// Total prices every entry from catalog; ids missing from it count as zero.
func (c *Cart) Total(catalog map[uint]transport.Sweet) decimal.Decimal {
	total := decimal.Zero
	for id, q := range c.items {
		item, ok := catalog[id]
		if !ok {
			continue
		}
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(q))))
	}
	return total
}

// IDs returns the entry ids in ascending order.
func (c *Cart) IDs() []uint {
	ids := make([]uint, 0, len(c.items))
	for id := range c.items {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
