package domain

import (
	"encoding/json"
	"fmt"
	"time"

	apperrors "github.com/limosnd/Marketplace-go-grahpql/pkg/errors"
)

// MaxQuantityPerItem caps the quantity of a single cart line. The number of
// lines is not limited.
const MaxQuantityPerItem = 100

// CartItem is one line of the cart.
type CartItem struct {
	Car      Car       `json:"car"`
	Quantity int       `json:"quantity"`
	AddedAt  time.Time `json:"addedAt"`
}

// Subtotal is the price of the line.
func (i CartItem) Subtotal() float64 {
	return i.Car.Price * float64(i.Quantity)
}

// Cart is an immutable cart snapshot. Every method that changes the cart
// returns a new value and leaves the receiver untouched. A Cart holds at most
// one line per car id and every line has a quantity of at least 1.
type Cart struct {
	items []CartItem
}

// NewCart builds a cart from raw lines, merging duplicate car ids and dropping
// lines with a non-positive quantity. Restored snapshots go through here, so
// a hand-edited store cannot break the cart invariants.
func NewCart(items []CartItem) Cart {
	out := make([]CartItem, 0, len(items))
	for _, it := range items {
		if it.Quantity < 1 {
			continue
		}
		merged := false
		for i := range out {
			if out[i].Car.ID == it.Car.ID {
				out[i].Quantity = min(out[i].Quantity+it.Quantity, MaxQuantityPerItem)
				merged = true
				break
			}
		}
		if !merged {
			it.Quantity = min(it.Quantity, MaxQuantityPerItem)
			out = append(out, it)
		}
	}
	return Cart{items: out}
}

// Items returns a copy of the lines in insertion order.
func (c Cart) Items() []CartItem {
	out := make([]CartItem, len(c.items))
	copy(out, c.items)
	return out
}

// Len is the number of distinct cars.
func (c Cart) Len() int { return len(c.items) }

// Count is the sum of all quantities.
func (c Cart) Count() int {
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

// TotalPrice is the sum of all line subtotals.
func (c Cart) TotalPrice() float64 {
	var total float64
	for _, it := range c.items {
		total += it.Subtotal()
	}
	return total
}

// Contains reports whether carID has a line.
func (c Cart) Contains(carID string) bool {
	return c.indexOf(carID) >= 0
}

// Quantity returns the quantity for carID, or 0.
func (c Cart) Quantity(carID string) int {
	if i := c.indexOf(carID); i >= 0 {
		return c.items[i].Quantity
	}
	return 0
}

func (c Cart) indexOf(carID string) int {
	for i := range c.items {
		if c.items[i].Car.ID == carID {
			return i
		}
	}
	return -1
}

// Add merges quantity into the line for car, or appends a new line added at
// now. Quantities below 1 and lines above MaxQuantityPerItem are rejected.
func (c Cart) Add(car Car, quantity int, now time.Time) (Cart, error) {
	if car.ID == "" {
		return c, apperrors.InvalidInput("car id is required")
	}
	if quantity < 1 {
		return c, apperrors.InvalidInput("quantity must be greater than 0")
	}

	items := c.Items()
	if i := c.indexOf(car.ID); i >= 0 {
		q := items[i].Quantity + quantity
		if q > MaxQuantityPerItem {
			return c, apperrors.InvalidInput(fmt.Sprintf("combined quantity must not exceed %d", MaxQuantityPerItem))
		}
		items[i].Quantity = q
		return Cart{items: items}, nil
	}

	if quantity > MaxQuantityPerItem {
		return c, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerItem))
	}
	items = append(items, CartItem{Car: car, Quantity: quantity, AddedAt: now.UTC()})
	return Cart{items: items}, nil
}

// Remove drops the line for carID. It reports false when there was none.
func (c Cart) Remove(carID string) (Cart, bool) {
	i := c.indexOf(carID)
	if i < 0 {
		return c, false
	}
	items := make([]CartItem, 0, len(c.items)-1)
	items = append(items, c.items[:i]...)
	items = append(items, c.items[i+1:]...)
	return Cart{items: items}, true
}

// SetQuantity sets the quantity for carID. A quantity of 0 or less removes
// the line. It reports false when nothing changed.
func (c Cart) SetQuantity(carID string, quantity int) (Cart, bool, error) {
	if quantity <= 0 {
		next, ok := c.Remove(carID)
		return next, ok, nil
	}
	if quantity > MaxQuantityPerItem {
		return c, false, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerItem))
	}
	i := c.indexOf(carID)
	if i < 0 || c.items[i].Quantity == quantity {
		return c, false, nil
	}
	items := c.Items()
	items[i].Quantity = quantity
	return Cart{items: items}, true, nil
}

// Replace swaps the car stored in the line for car.ID, keeping quantity and
// addedAt. It reports false when the cart has no such line.
func (c Cart) Replace(car Car) (Cart, bool) {
	i := c.indexOf(car.ID)
	if i < 0 {
		return c, false
	}
	items := c.Items()
	items[i].Car = car
	return Cart{items: items}, true
}

// MarshalJSON encodes the cart as its array of lines.
func (c Cart) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Items())
}

// UnmarshalJSON decodes an array of lines through NewCart.
func (c *Cart) UnmarshalJSON(data []byte) error {
	var items []CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*c = NewCart(items)
	return nil
}
