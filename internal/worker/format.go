package worker

import (
	"fmt"
	"strings"

	"pricer/internal/pricedb"
)

// FormatPrice renders a price the way traders read it: thousands grouped
// with dots, a comma before the fraction, trailing fraction zeros dropped.
func FormatPrice(n float64) string {
	neg := n < 0
	if neg {
		n = -n
	}
	s := fmt.Sprintf("%.2f", n)
	parts := strings.SplitN(s, ".", 2)
	intPart, fracPart := parts[0], parts[1]
	fracPart = strings.TrimRight(fracPart, "0")

	out := groupThousands(intPart)
	if fracPart != "" {
		out += "," + fracPart
	}
	if neg {
		return "-" + out
	}
	return out
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var groups []string
	for len(digits) > 3 {
		groups = append([]string{digits[len(digits)-3:]}, groups...)
		digits = digits[:len(digits)-3]
	}
	return digits + "." + strings.Join(groups, ".")
}

// FormatSlot renders a slot value for the overlay: comments verbatim, prices
// through FormatPrice.
func FormatSlot(v pricedb.SlotValue) string {
	text, price, isComment, ok := v.Display()
	if !ok {
		return ""
	}
	if isComment {
		return text
	}
	return FormatPrice(price)
}
