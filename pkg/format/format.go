// Package format renders numbers the way the storefront shows them to
// Spanish-speaking buyers: "." groups thousands, "," separates decimals.
package format

import (
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// minGrouping is the smallest magnitude that gets a thousands separator;
// es-ES leaves four-digit numbers ungrouped.
const minGrouping = 10000

// Number formats v with the given number of decimals (0 or 2).
func Number(v float64, decimals int) string {
	if decimals != 0 {
		decimals = 2
	}
	p := math.Pow10(decimals)
	v = math.Round(v*p) / p

	if math.Abs(v) < minGrouping {
		return strings.Replace(strconv.FormatFloat(v, 'f', decimals, 64), ".", ",", 1)
	}
	if decimals == 0 {
		return humanize.FormatFloat("#.###,", v)
	}
	return humanize.FormatFloat("#.###,##", v)
}

// Price formats an amount in euros, e.g. "1.234.567,89 €".
func Price(v float64) string {
	return Number(v, 2) + " €"
}

// Mileage formats a distance in kilometres, e.g. "12.345 km".
func Mileage(km int) string {
	return Number(float64(km), 0) + " km"
}
