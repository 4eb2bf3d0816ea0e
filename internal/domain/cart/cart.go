package cart

import (
	"errors"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrInvalidProduct  = errors.New("product id is required")
)

// MemberDiscountRate is the flat discount applied to the whole subtotal
// for logged-in customers.
const MemberDiscountRate = 0.85

// Product is a catalog product reference as the UI hands it to us.
type Product struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Image string  `json:"image,omitempty"`
	Price float64 `json:"price"`
}

// Item is a single cart line. Two lines with the same product id but a
// different size or color are distinct lines.
type Item struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Image         string  `json:"image,omitempty"`
	Price         float64 `json:"price"`
	Quantity      int     `json:"quantity"`
	SelectedSize  string  `json:"selectedSize,omitempty"`
	SelectedColor string  `json:"selectedColor,omitempty"`
}

// ItemKey is the composite line-item identity.
type ItemKey struct {
	ProductID string
	Size      string
	Color     string
}

// Key returns the composite identity of the line.
func (i Item) Key() ItemKey {
	return ItemKey{ProductID: i.ID, Size: i.SelectedSize, Color: i.SelectedColor}
}

// State is the cart and wishlist value for one session. All mutations below
// are pure: they return a new slice and never modify their input.
type State struct {
	Items    []Item    `json:"items"`
	Wishlist []Product `json:"wishlist"`
}

// Merge adds an item to the list. A line with the same composite key has the
// incoming quantity added to it; otherwise the item is appended.
func Merge(items []Item, item Item) []Item {
	key := item.Key()
	out := make([]Item, len(items))
	copy(out, items)
	for i, existing := range out {
		if existing.Key() == key {
			existing.Quantity += item.Quantity
			out[i] = existing
			return out
		}
	}
	return append(out, item)
}

// Remove drops the line with the given key. Removing an absent key is a no-op.
func Remove(items []Item, key ItemKey) []Item {
	out := make([]Item, 0, len(items))
	for _, item := range items {
		if item.Key() == key {
			continue
		}
		out = append(out, item)
	}
	return out
}

// SetQuantity sets the quantity of the line with the given key. The quantity
// must already have been validated to be at least 1.
func SetQuantity(items []Item, key ItemKey, quantity int) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	for i, item := range out {
		if item.Key() == key {
			item.Quantity = quantity
			out[i] = item
		}
	}
	return out
}

// Subtotal sums price x quantity over all lines.
func Subtotal(items []Item) float64 {
	var total float64
	for _, item := range items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// Total returns the cart total, applying the membership discount to the
// whole subtotal when requested. Rounding is the caller's concern.
func Total(items []Item, applyDiscount bool) float64 {
	subtotal := Subtotal(items)
	if applyDiscount {
		return subtotal * MemberDiscountRate
	}
	return subtotal
}

// ToggleWishlist toggles set membership keyed by product id.
func ToggleWishlist(wishlist []Product, product Product) []Product {
	for i, p := range wishlist {
		if p.ID == product.ID {
			out := make([]Product, 0, len(wishlist)-1)
			out = append(out, wishlist[:i]...)
			return append(out, wishlist[i+1:]...)
		}
	}
	out := make([]Product, len(wishlist))
	copy(out, wishlist)
	return append(out, product)
}
