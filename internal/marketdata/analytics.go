package marketdata

import (
	"strconv"
	"strings"
)

// FormatVolume renders a 24h volume for display: magnitude suffixes at
// thousand/million/billion/trillion, one decimal truncated toward zero,
// trailing ".0" stripped. 999 stays "999"; 1000 becomes "1K"; 999999
// becomes "999.9K", never "1M".
func FormatVolume(n float64) string {
	switch {
	case n >= 1e12:
		return truncateOneDecimal(n/1e12) + "T"
	case n >= 1e9:
		return truncateOneDecimal(n/1e9) + "B"
	case n >= 1e6:
		return truncateOneDecimal(n/1e6) + "M"
	case n >= 1e3:
		return truncateOneDecimal(n/1e3) + "K"
	default:
		return truncateOneDecimal(n)
	}
}

// truncateOneDecimal cuts the decimal expansion after one digit without
// rounding. Cutting the printed form rather than flooring n*10 keeps
// values like 1.999 exact.
func truncateOneDecimal(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if i := strings.IndexByte(s, '.'); i >= 0 && len(s) > i+2 {
		s = s[:i+2]
	}
	return strings.TrimSuffix(s, ".0")
}
