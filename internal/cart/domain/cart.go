package domain

import (
	"github.com/shopspring/decimal"

	catalog "github.com/dmehra2102/storefront/internal/catalog/domain"
)

// LineItem is one product's entry in the cart. Quantity is always >= 1 and
// no larger than Stock as of the last mutation.
type LineItem struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Stock    int             `json:"stock"`
}

func (li LineItem) Subtotal() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

func NewLineItem(p catalog.Product, quantity int) LineItem {
	return LineItem{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		Quantity: quantity,
		Stock:    p.Stock,
	}
}

// State keeps line items in insertion order with unique ids.
type State struct {
	Items []LineItem `json:"items"`
}

func (s State) Index(id int64) int {
	for i, li := range s.Items {
		if li.ID == id {
			return i
		}
	}
	return -1
}

func (s State) IsEmpty() bool {
	return len(s.Items) == 0
}

func (s State) TotalItems() int {
	n := 0
	for _, li := range s.Items {
		n += li.Quantity
	}
	return n
}

// TotalPrice is exact; round only for display.
func (s State) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, li := range s.Items {
		total = total.Add(li.Subtotal())
	}
	return total
}

// Clone copies the item slice so callers can't reach the engine's storage.
func (s State) Clone() State {
	items := make([]LineItem, len(s.Items))
	copy(items, s.Items)
	return State{Items: items}
}

// Normalize drops entries that break the line item invariants, keeping the
// first occurrence of a duplicated id. Used on state loaded from storage.
func (s State) Normalize() State {
	out := State{Items: make([]LineItem, 0, len(s.Items))}
	seen := make(map[int64]struct{}, len(s.Items))
	for _, li := range s.Items {
		if _, dup := seen[li.ID]; dup {
			continue
		}
		if li.Quantity < 1 || li.Stock < 1 || li.Price.IsNegative() {
			continue
		}
		if li.Quantity > li.Stock {
			li.Quantity = li.Stock
		}
		seen[li.ID] = struct{}{}
		out.Items = append(out.Items, li)
	}
	return out
}

// Outcome reports what a mutation did to one line. Quantity is 0 when the
// line does not exist afterwards; Clamped is set when stock cut the request.
type Outcome struct {
	ID       int64 `json:"id"`
	Quantity int   `json:"quantity"`
	Clamped  bool  `json:"clamped"`
}

// FormatPrice renders a total to two places.
func FormatPrice(d decimal.Decimal) string {
	return d.StringFixed(2)
}
