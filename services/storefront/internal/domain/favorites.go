package domain

import "encoding/json"

// Favorites is an immutable, insertion-ordered set of cars keyed by id.
type Favorites struct {
	cars []Car
}

// NewFavorites builds a set from cars, keeping the first of any duplicate id.
func NewFavorites(cars []Car) Favorites {
	out := make([]Car, 0, len(cars))
	seen := make(map[string]struct{}, len(cars))
	for _, c := range cars {
		if c.ID == "" {
			continue
		}
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}
	return Favorites{cars: out}
}

// Items returns a copy of the cars in insertion order.
func (f Favorites) Items() []Car {
	out := make([]Car, len(f.cars))
	copy(out, f.cars)
	return out
}

// Len is the number of favorite cars.
func (f Favorites) Len() int { return len(f.cars) }

// Contains reports whether carID is a favorite.
func (f Favorites) Contains(carID string) bool {
	return f.indexOf(carID) >= 0
}

func (f Favorites) indexOf(carID string) int {
	for i := range f.cars {
		if f.cars[i].ID == carID {
			return i
		}
	}
	return -1
}

// Add appends car. It reports false when car is already present.
func (f Favorites) Add(car Car) (Favorites, bool) {
	if car.ID == "" || f.Contains(car.ID) {
		return f, false
	}
	return Favorites{cars: append(f.Items(), car)}, true
}

// Remove drops carID. It reports false when it was not present.
func (f Favorites) Remove(carID string) (Favorites, bool) {
	i := f.indexOf(carID)
	if i < 0 {
		return f, false
	}
	cars := make([]Car, 0, len(f.cars)-1)
	cars = append(cars, f.cars[:i]...)
	cars = append(cars, f.cars[i+1:]...)
	return Favorites{cars: cars}, true
}

// Replace swaps the stored copy of car.ID. It reports false when absent.
func (f Favorites) Replace(car Car) (Favorites, bool) {
	i := f.indexOf(car.ID)
	if i < 0 {
		return f, false
	}
	cars := f.Items()
	cars[i] = car
	return Favorites{cars: cars}, true
}

// MarshalJSON encodes the set as an array of cars.
func (f Favorites) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Items())
}

// UnmarshalJSON decodes an array of cars through NewFavorites.
func (f *Favorites) UnmarshalJSON(data []byte) error {
	var cars []Car
	if err := json.Unmarshal(data, &cars); err != nil {
		return err
	}
	*f = NewFavorites(cars)
	return nil
}
