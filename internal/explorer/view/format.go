package view

import (
	"fmt"
	"strings"
)

// FormatPrice renders a whole-number price the way the es-AR locale does,
// with dot thousand separators. Currency defaults to USD.
func FormatPrice(price float64, currency string) string {
	if currency == "" {
		currency = "US$"
	}
	return currency + " " + groupThousands(int64(price+0.5))
}

// FormatArea renders an area with its unit, defaulting to m².
func FormatArea(area float64, unit string) string {
	if unit == "" {
		unit = "m²"
	}
	if area == float64(int64(area)) {
		return groupThousands(int64(area)) + " " + unit
	}
	return fmt.Sprintf("%.1f %s", area, unit)
}

func groupThousands(n int64) string {
	s := fmt.Sprint(n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(c)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
