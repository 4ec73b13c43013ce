package engine

import (
	"math"
	"regexp"
	"strconv"
)

// percentPattern matches a non-empty prefix expression, one binary
// operator, a decimal number and a percent sign closing the string. The
// lazy prefix keeps the operator and number as far right as possible.
var percentPattern = regexp.MustCompile(`^(.+?)([+\-*/])(\d+(\.\d+)?)%$`)

// ResolvePercentage rewrites a trailing percentage term into its absolute
// value: "200+10%" becomes "200+20.0", where 20 is 10% of the prefix
// expression's value. The prefix is evaluated through the full pipeline.
// ResolvePercentage never fails: input that does not end in a percentage
// term, or whose prefix cannot be evaluated, is returned unchanged.
func (e *Engine) ResolvePercentage(expr string) string {
	m := percentPattern.FindStringSubmatch(expr)
	if m == nil {
		return expr
	}
	prefix, op, pctText := m[1], m[2], m[3]

	base, err := e.Compute(prefix)
	if err != nil {
		return expr
	}
	pct, _ := strconv.ParseFloat(pctText, 64)
	return prefix + op + rawFloat(base*(pct/100))
}

// rawFloat renders v as an expression literal rather than in display form:
// integral values keep one fractional digit ("20.0"), everything else uses
// the shortest representation that round-trips.
func rawFloat(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e16 {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
