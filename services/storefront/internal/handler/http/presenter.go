package http

import (
	"strconv"
	"time"

	"github.com/limosnd/Marketplace-go-grahpql/pkg/format"
	"github.com/limosnd/Marketplace-go-grahpql/pkg/slug"
	"github.com/limosnd/Marketplace-go-grahpql/services/storefront/internal/domain"
)

// carDisplay holds the localized texts a screen shows for a car.
type carDisplay struct {
	Price        string `json:"price"`
	Mileage      string `json:"mileage"`
	FuelType     string `json:"fuelType"`
	Transmission string `json:"transmission"`
	Status       string `json:"status"`
}

type carView struct {
	domain.Car
	Slug    string     `json:"slug"`
	Display carDisplay `json:"display"`
}

func presentCar(c domain.Car) carView {
	return carView{
		Car:     c,
		Slug:    slug.Generate(c.Brand, c.Model, strconv.Itoa(c.Year), c.ID),
		Display: carDisplay{
			Price:        format.Price(c.Price),
			Mileage:      format.Mileage(c.Mileage),
			FuelType:     c.FuelType.Label(),
			Transmission: c.Transmission.Label(),
			Status:       c.Status.Label(),
		},
	}
}

func presentCars(cars []domain.Car) []carView {
	out := make([]carView, 0, len(cars))
	for _, c := range cars {
		out = append(out, presentCar(c))
	}
	return out
}

type pageView struct {
	Cars       []carView `json:"cars"`
	Total      int       `json:"total"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	TotalPages int       `json:"totalPages"`
}

func presentPage(p *domain.CarsPage) pageView {
	return pageView{
		Cars:       presentCars(p.Cars),
		Total:      p.Total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: p.TotalPages,
	}
}

type cartLineView struct {
	Car               carView   `json:"car"`
	Quantity          int       `json:"quantity"`
	AddedAt           time.Time `json:"addedAt"`
	Subtotal          float64   `json:"subtotal"`
	FormattedSubtotal string    `json:"formattedSubtotal"`
}

type cartView struct {
	Items          []cartLineView `json:"items"`
	Count          int            `json:"count"`
	Total          float64        `json:"total"`
	FormattedTotal string         `json:"formattedTotal"`
}

func presentCart(c domain.Cart) cartView {
	items := c.Items()
	lines := make([]cartLineView, 0, len(items))
	for _, it := range items {
		lines = append(lines, cartLineView{
			Car:               presentCar(it.Car),
			Quantity:          it.Quantity,
			AddedAt:           it.AddedAt,
			Subtotal:          it.Subtotal(),
			FormattedSubtotal: format.Price(it.Subtotal()),
		})
	}
	return cartView{
		Items:          lines,
		Count:          c.Count(),
		Total:          c.TotalPrice(),
		FormattedTotal: format.Price(c.TotalPrice()),
	}
}
