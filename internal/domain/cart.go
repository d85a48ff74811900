package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID identifies cart items and users. GraphQL IDs reach us as either JSON
// strings or JSON numbers, so both are accepted on decode.
type ID string

// UnmarshalJSON decodes a JSON string or number into an ID.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode id: %w", err)
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode id: %w", err)
	}
	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		return fmt.Errorf("decode id: %q is not an integer", n.String())
	}
	*id = ID(n.String())
	return nil
}

// CartItem is a product reference held in the cart. Only Quantity changes
// after the item is first added.
type CartItem struct {
	ID       ID     `json:"id" validate:"required"`
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl,omitempty"`
	Price    Money  `json:"price" validate:"gte=0"`
	Quantity int    `json:"quantity" validate:"gte=0"`
}

// CartItems is an ordered list of cart items, unique by ID.
type CartItems []CartItem

// Clone returns a copy that shares no backing array with items.
// A nil list clones to an empty, non-nil list.
func (items CartItems) Clone() CartItems {
	out := make(CartItems, len(items))
	copy(out, items)
	return out
}

// Find returns the index of the item with the given id, or -1.
func (items CartItems) Find(id ID) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

// CartState is the cart slice of the session state. ItemCount and CartTotal
// are cached values derived from CartItems.
type CartState struct {
	CartHidden bool      `json:"cartHidden"`
	CartItems  CartItems `json:"cartItems"`
	ItemCount  int       `json:"itemCount"`
	CartTotal  Money     `json:"cartTotal"`
}

// NewCartState builds a cart state whose derived values match items.
func NewCartState(hidden bool, items CartItems) CartState {
	return CartState{
		CartHidden: hidden,
		CartItems:  items.Clone(),
		ItemCount:  ItemCount(items),
		CartTotal:  CartTotal(items),
	}
}

// Consistent reports whether the cached derived values match the items.
func (s CartState) Consistent() bool {
	return s.ItemCount == ItemCount(s.CartItems) && s.CartTotal == CartTotal(s.CartItems)
}
