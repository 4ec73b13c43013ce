// Package keypad models the button-level state of the calculator: an
// accumulated total expression, the current entry line, and the fixed
// "Error" display state. Operators are stored with their display glyphs
// and translated back to canonical characters before evaluation.
package keypad

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/codefionn/rechenwerk/internal/cache"
	"github.com/codefionn/rechenwerk/internal/engine"
)

// ErrorDisplay is shown on the entry line after a failed evaluation.
const ErrorDisplay = "Error"

// DefaultDigitLimit caps how many digits the current entry may hold when
// the configuration does not set a limit.
const DefaultDigitLimit = 15

// glyphs maps canonical operators to their display form.
var glyphs = map[byte]string{'+': "+", '-': "-", '*': "×", '/': "÷"}

// canonical translates display glyphs back into operator characters.
var canonical = strings.NewReplacer("÷", "/", "×", "*")

// Keypad accumulates keystrokes into the two expression buffers and
// evaluates them through an Engine. It is not safe for concurrent use;
// hosts drive it from a single goroutine.
type Keypad struct {
	eng        *engine.Engine
	memo       *cache.Cache
	digitLimit int
	total      string
	current    string
}

// New returns a Keypad backed by eng. memo may be nil to evaluate without
// memoization. digitLimit caps the digits of the current entry; values
// below 1 fall back to DefaultDigitLimit.
func New(eng *engine.Engine, memo *cache.Cache, digitLimit int) *Keypad {
	if digitLimit < 1 {
		digitLimit = DefaultDigitLimit
	}
	return &Keypad{eng: eng, memo: memo, digitLimit: digitLimit}
}

// Total returns the accumulated expression shown above the entry line.
func (k *Keypad) Total() string {
	return k.total
}

// Current returns the entry line, which may be ErrorDisplay.
func (k *Keypad) Current() string {
	return k.current
}

// PressDigit appends a digit or decimal point to the current entry.
// Typing into the error state clears it first. Once the entry holds
// digitLimit digits, further input is dropped; dots do not count against
// the limit but are blocked by it all the same.
func (k *Keypad) PressDigit(r rune) {
	if k.current == ErrorDisplay {
		k.current = ""
	}
	if countDigits(k.current) >= k.digitLimit {
		return
	}
	k.current += string(r)
}

// PressOperator moves the current entry into the total and appends the
// display glyph for the canonical operator op ('+', '-', '*' or '/').
// Pressing an operator before anything was typed does nothing.
func (k *Keypad) PressOperator(op byte) {
	if k.current == "" && k.total == "" {
		return
	}
	glyph, ok := glyphs[op]
	if !ok {
		return
	}
	k.total += k.current + glyph
	k.current = ""
}

// PressPercent marks the current entry as a percentage. It applies only
// to a non-empty entry and only once.
func (k *Keypad) PressPercent() {
	if k.current != "" && !strings.HasSuffix(k.current, "%") {
		k.current += "%"
	}
}

// PressSquare replaces the current entry with its square, formatted for
// display. An entry that does not parse as a number becomes ErrorDisplay.
func (k *Keypad) PressSquare() {
	value, err := strconv.ParseFloat(k.current, 64)
	if err != nil {
		k.current = ErrorDisplay
		return
	}
	k.current = k.eng.Format(value * value)
}

// Backspace removes the last character of the current entry. The error
// state clears as a whole.
func (k *Keypad) Backspace() {
	if k.current == ErrorDisplay {
		k.current = ""
		return
	}
	if k.current == "" {
		return
	}
	_, size := utf8.DecodeLastRuneInString(k.current)
	k.current = k.current[:len(k.current)-size]
}

// Clear resets both buffers.
func (k *Keypad) Clear() {
	k.total = ""
	k.current = ""
}

// Evaluate joins the buffers, translates display glyphs, resolves a
// trailing percentage and computes the result. On success the display
// string becomes the current entry; on failure the entry shows
// ErrorDisplay. The total is cleared either way. ok reports whether a
// result was produced; it is false when nothing was typed yet or when
// evaluation failed.
func (k *Keypad) Evaluate() (res engine.Result, ok bool) {
	if k.current == "" && k.total == "" {
		return engine.Result{}, false
	}
	expr := canonical.Replace(k.total + k.current)
	res, err := k.evaluate(expr)
	k.total = ""
	if err != nil {
		k.current = ErrorDisplay
		return res, false
	}
	k.current = res.Display
	return res, true
}

// evaluate consults the memo before running the engine.
func (k *Keypad) evaluate(expr string) (engine.Result, error) {
	if k.memo != nil {
		if res, ok := k.memo.Get(expr); ok {
			return res, nil
		}
	}
	res, err := k.eng.Evaluate(expr)
	if err != nil {
		return res, err
	}
	if k.memo != nil {
		k.memo.Put(expr, res)
	}
	return res, nil
}

func countDigits(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			n++
		}
	}
	return n
}
