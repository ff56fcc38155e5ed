package domain

import (
	"strings"
	"time"

	"github.com/limosnd/Marketplace-go-grahpql/pkg/validator"
)

// DefaultCountry pre-fills the sell form location.
const DefaultCountry = "Colombia"

// CarForm is the sell form as the user fills it in.
type CarForm struct {
	Title           string       `json:"title" validate:"required,min=5,max=100"`
	Description     string       `json:"description" validate:"max=1000"`
	Brand           string       `json:"brand" validate:"required"`
	Model           string       `json:"model" validate:"required,min=1,max=50"`
	Year            int          `json:"year" validate:"required,vehicle_year"`
	FuelType        FuelType     `json:"fuelType" validate:"required,oneof=GASOLINE DIESEL ELECTRIC HYBRID"`
	Transmission    Transmission `json:"transmission" validate:"required,oneof=MANUAL AUTOMATIC"`
	Mileage         *int         `json:"mileage" validate:"required,gte=0"`
	Color           string       `json:"color" validate:"required"`
	Price           float64      `json:"price" validate:"required,gte=1000"`
	Features        string       `json:"features"`
	ImageURL        string       `json:"imageUrl" validate:"required"`
	SellerName      string       `json:"sellerName" validate:"required,min=2,max=50"`
	SellerPhone     string       `json:"sellerPhone" validate:"required,phone"`
	SellerEmail     string       `json:"sellerEmail" validate:"required,email"`
	LocationCity    string       `json:"locationCity" validate:"required,min=2,max=50"`
	LocationState   string       `json:"locationState" validate:"required,min=2,max=50"`
	LocationCountry string       `json:"locationCountry" validate:"required"`
}

// NewCarForm returns an empty form with the defaults the sell screen shows.
func NewCarForm() CarForm {
	return CarForm{
		Year:            time.Now().Year(),
		LocationCountry: DefaultCountry,
	}
}

// Validate checks every field and returns a *validator.ValidationError
// listing each failing one.
func (f CarForm) Validate() error {
	return validator.Validate(f)
}

// FeatureList splits the comma-separated features, trimming blanks.
func (f CarForm) FeatureList() []string {
	out := []string{}
	for _, part := range strings.Split(f.Features, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ToInput builds the createCar payload. Call Validate first.
func (f CarForm) ToInput() CarInput {
	mileage := 0
	if f.Mileage != nil {
		mileage = *f.Mileage
	}
	return CarInput{
		Title:        f.Title,
		Description:  f.Description,
		Brand:        f.Brand,
		Model:        f.Model,
		Year:         f.Year,
		Price:        f.Price,
		Mileage:      mileage,
		Color:        f.Color,
		FuelType:     f.FuelType,
		Transmission: f.Transmission,
		Images:       []string{f.ImageURL},
		Features:     f.FeatureList(),
		SellerName:   f.SellerName,
		SellerEmail:  f.SellerEmail,
		SellerPhone:  f.SellerPhone,
		Location: LocationInput{
			City:    f.LocationCity,
			State:   f.LocationState,
			Country: f.LocationCountry,
		},
	}
}
