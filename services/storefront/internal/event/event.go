package event

import (
	"time"

	"github.com/limosnd/Marketplace-go-grahpql/services/storefront/internal/domain"
)

// Type is the kind of change a CarEvent announces.
type Type string

const (
	TypeCreated Type = "created"
	TypeUpdated Type = "updated"
	TypeDeleted Type = "deleted"
)

// Valid reports whether t is a known event type.
func (t Type) Valid() bool {
	switch t {
	case TypeCreated, TypeUpdated, TypeDeleted:
		return true
	}
	return false
}

// CarEvent announces a confirmed change to a car. Deleted events carry only
// the car id.
type CarEvent struct {
	ID     string      `json:"id"`
	Type   Type        `json:"type"`
	CarID  string      `json:"carId"`
	Car    *domain.Car `json:"car,omitempty"`
	At     time.Time   `json:"at"`
	Remote bool        `json:"remote"`
}
