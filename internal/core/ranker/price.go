package ranker

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/niksmo/storefront/internal/core/domain"
)

// ParsePrice reads a currency formatted price such as "$1,299.99".
//
// Every rune except ASCII digits and '.' is dropped before parsing,
// so "," is treated as a thousands separator.
func ParsePrice(s string) (float64, error) {
	const op = "ParsePrice"

	digits := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, s)

	v, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %q: %w", op, s, domain.ErrPriceFormat)
	}
	return v, nil
}

// discount returns the absolute price reduction of p.
// ok is false when either price is unparsable or there is no reduction.
func discount(p domain.Product) (amount float64, ok bool) {
	price, err := ParsePrice(p.Price)
	if err != nil {
		return 0, false
	}
	final, err := ParsePrice(p.FinalPrice)
	if err != nil {
		return 0, false
	}
	if price <= final {
		return 0, false
	}
	return price - final, true
}
