package service

import (
	"fmt"
	"strings"

	apperrors "github.com/limosnd/Marketplace-go-grahpql/pkg/errors"
	"github.com/limosnd/Marketplace-go-grahpql/pkg/format"
	"github.com/limosnd/Marketplace-go-grahpql/services/storefront/internal/domain"
)

// EmptyCartMessage is returned when checking out an empty cart.
const EmptyCartMessage = "El carrito está vacío"

// CheckoutSummary is the purchase summary shown before payment.
type CheckoutSummary struct {
	Lines          []string `json:"lines"`
	Count          int      `json:"count"`
	Total          float64  `json:"total"`
	FormattedTotal string   `json:"formattedTotal"`
	Text           string   `json:"text"`
}

// Checkout builds the purchase summary of cart. Nothing is charged and the
// cart is left as is.
func Checkout(cart domain.Cart) (*CheckoutSummary, error) {
	if cart.Len() == 0 {
		return nil, apperrors.InvalidInput(EmptyCartMessage)
	}

	items := cart.Items()
	lines := make([]string, 0, len(items))
	for _, it := range items {
		lines = append(lines, fmt.Sprintf("%s - Cantidad: %d - %s", it.Car.Title, it.Quantity, format.Price(it.Subtotal())))
	}
	total := cart.TotalPrice()
	formatted := format.Price(total)

	var b strings.Builder
	b.WriteString("Resumen de compra:\n\n")
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n\nTotal: ")
	b.WriteString(formatted)

	return &CheckoutSummary{
		Lines:          lines,
		Count:          cart.Count(),
		Total:          total,
		FormattedTotal: formatted,
		Text:           b.String(),
	}, nil
}
