package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/limosnd/Marketplace-go-grahpql/pkg/validator"
)

func validForm() CarForm {
	mileage := 42000
	f := NewCarForm()
	f.Title = "Mazda 3 Touring"
	f.Description = "Único dueño"
	f.Brand = "Mazda"
	f.Model = "3"
	f.Year = 2019
	f.FuelType = FuelGasoline
	f.Transmission = TransmissionAutomatic
	f.Mileage = &mileage
	f.Color = "Rojo"
	f.Price = 18500
	f.Features = " aire acondicionado, ,GPS ,  "
	f.ImageURL = "https://img.example.com/mazda.jpg"
	f.SellerName = "Ana"
	f.SellerPhone = "+57 300 123 4567"
	f.SellerEmail = "ana@example.com"
	f.LocationCity = "Bogotá"
	f.LocationState = "Cundinamarca"
	return f
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var ve *validator.ValidationError
	require.True(t, errors.As(err, &ve), "expected ValidationError, got %v", err)
	return ve.Fields()
}

func TestNewCarForm_Defaults(t *testing.T) {
	f := NewCarForm()
	assert.Equal(t, "Colombia", f.LocationCountry)
	assert.Equal(t, time.Now().Year(), f.Year)
}

func TestCarForm_Valid(t *testing.T) {
	require.NoError(t, validForm().Validate())
}

func TestCarForm_FieldErrors(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*CarForm)
		field string
	}{
		{"short title", func(f *CarForm) { f.Title = "Kia" }, "title"},
		{"missing brand", func(f *CarForm) { f.Brand = "" }, "brand"},
		{"year too old", func(f *CarForm) { f.Year = 1899 }, "year"},
		{"year in future", func(f *CarForm) { f.Year = time.Now().Year() + 2 }, "year"},
		{"unknown fuel", func(f *CarForm) { f.FuelType = "COAL" }, "fuelType"},
		{"unknown transmission", func(f *CarForm) { f.Transmission = "CVT" }, "transmission"},
		{"missing mileage", func(f *CarForm) { f.Mileage = nil }, "mileage"},
		{"negative mileage", func(f *CarForm) { m := -1; f.Mileage = &m }, "mileage"},
		{"cheap", func(f *CarForm) { f.Price = 999 }, "price"},
		{"no image", func(f *CarForm) { f.ImageURL = "" }, "imageUrl"},
		{"bad phone", func(f *CarForm) { f.SellerPhone = "call me" }, "sellerPhone"},
		{"bad email", func(f *CarForm) { f.SellerEmail = "ana.example.com" }, "sellerEmail"},
		{"short city", func(f *CarForm) { f.LocationCity = "B" }, "locationCity"},
		{"no country", func(f *CarForm) { f.LocationCountry = "" }, "locationCountry"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validForm()
			tt.edit(&f)
			fields := fieldErrors(t, f.Validate())
			assert.Contains(t, fields, tt.field)
			assert.Len(t, fields, 1)
		})
	}
}

func TestCarForm_ZeroMileageIsValid(t *testing.T) {
	f := validForm()
	zero := 0
	f.Mileage = &zero
	assert.NoError(t, f.Validate())
}

func TestCarForm_ToInput(t *testing.T) {
	in := validForm().ToInput()

	assert.Equal(t, []string{"aire acondicionado", "GPS"}, in.Features)
	assert.Equal(t, []string{"https://img.example.com/mazda.jpg"}, in.Images)
	assert.Equal(t, 42000, in.Mileage)
	assert.Equal(t, "Colombia", in.Location.Country)
	assert.Equal(t, "ana@example.com", in.SellerEmail)
}

func TestCarForm_EmptyFeatures(t *testing.T) {
	f := validForm()
	f.Features = ""
	assert.Empty(t, f.ToInput().Features)
	assert.NotNil(t, f.ToInput().Features)
}
