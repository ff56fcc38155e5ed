package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrice(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1234567.891, "1.234.567,89 €"},
		{25000, "25.000,00 €"},
		{10000, "10.000,00 €"},
		{9999.996, "10.000,00 €"},
		{1234.5, "1234,50 €"},
		{0, "0,00 €"},
		{-12345.5, "-12.345,50 €"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Price(tt.in))
		})
	}
}

func TestMileage(t *testing.T) {
	assert.Equal(t, "12.345 km", Mileage(12345))
	assert.Equal(t, "1.250.000 km", Mileage(1250000))
	assert.Equal(t, "1500 km", Mileage(1500))
	assert.Equal(t, "0 km", Mileage(0))
}

func TestNumber_DecimalsClamp(t *testing.T) {
	assert.Equal(t, "3,14", Number(3.14159, 5))
	assert.Equal(t, "3", Number(3.4, 0))
}
