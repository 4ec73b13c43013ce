package engine

import (
	"math"
	"strconv"
	"strings"
)

// scientificThreshold is the magnitude above which Format switches to
// scientific notation.
const scientificThreshold = 1e15

// Format renders v for a bounded-width display. Magnitudes above 1e15 are
// shown in scientific notation with two fractional digits. Everything else
// is rendered with six fractional digits, trailing zeros and a then-bare
// decimal point are trimmed, and the result is truncated byte-wise to the
// configured width.
func (e *Engine) Format(v float64) string {
	if math.Abs(v) > scientificThreshold {
		return strconv.FormatFloat(v, 'e', 2, 64)
	}
	s := strconv.FormatFloat(v, 'f', 6, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	if len(s) > e.cfg.MaxDisplayWidth {
		s = s[:e.cfg.MaxDisplayWidth]
	}
	return s
}
