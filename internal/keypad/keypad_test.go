package keypad

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/codefionn/rechenwerk/internal/cache"
	"github.com/codefionn/rechenwerk/internal/engine"
)

func newTestKeypad() *Keypad {
	return New(engine.New(engine.Config{}), nil, 0)
}

// press feeds a key script into the keypad: operators and percent go to
// their handlers, everything else is typed as a digit key.
func press(k *Keypad, keys string) {
	for _, r := range keys {
		switch r {
		case '+', '-', '*', '/':
			k.PressOperator(byte(r))
		case '%':
			k.PressPercent()
		default:
			k.PressDigit(r)
		}
	}
}

func TestDigitEntry(t *testing.T) {
	k := newTestKeypad()
	press(k, "12.5")

	assert.Equal(t, "12.5", k.Current())
	assert.Empty(t, k.Total())
}

func TestOperatorMovesEntryToTotal(t *testing.T) {
	k := newTestKeypad()
	press(k, "12+5*")

	// Multiplication and division show as their display glyphs.
	assert.Equal(t, "12+5×", k.Total())
	assert.Empty(t, k.Current())

	press(k, "8/")
	assert.Equal(t, "12+5×8÷", k.Total())
}

func TestOperatorOnEmptyKeypadIsNoop(t *testing.T) {
	k := newTestKeypad()
	press(k, "+")

	assert.Empty(t, k.Total())
	assert.Empty(t, k.Current())
}

func TestRepeatedOperatorsAccumulate(t *testing.T) {
	k := newTestKeypad()
	press(k, "5++")

	assert.Equal(t, "5++", k.Total())

	// Trailing operators are stripped before evaluation.
	res, ok := k.Evaluate()
	assert.True(t, ok)
	assert.Equal(t, "5", res.Display)
}

func TestDigitLimit(t *testing.T) {
	k := New(engine.New(engine.Config{}), nil, 3)
	press(k, "1234")

	assert.Equal(t, "123", k.Current())

	k.Clear()
	press(k, "12.3")
	assert.Equal(t, "12.3", k.Current())

	// The limit counts digits, not dots, and blocks any further key.
	press(k, "4")
	assert.Equal(t, "12.3", k.Current())
}

func TestPercentAppendsOnce(t *testing.T) {
	k := newTestKeypad()

	k.PressPercent()
	assert.Empty(t, k.Current())

	press(k, "50%")
	assert.Equal(t, "50%", k.Current())

	k.PressPercent()
	assert.Equal(t, "50%", k.Current())
}

func TestSquare(t *testing.T) {
	k := newTestKeypad()
	press(k, "4")
	k.PressSquare()

	assert.Equal(t, "16", k.Current())

	k.PressSquare()
	assert.Equal(t, "256", k.Current())
}

func TestSquareOfEmptyEntryIsError(t *testing.T) {
	k := newTestKeypad()
	k.PressSquare()

	assert.Equal(t, ErrorDisplay, k.Current())

	// Typing again clears the error state.
	press(k, "5")
	assert.Equal(t, "5", k.Current())
}

func TestBackspace(t *testing.T) {
	k := newTestKeypad()
	press(k, "12.5")

	k.Backspace()
	assert.Equal(t, "12.", k.Current())

	k.Backspace()
	k.Backspace()
	k.Backspace()
	assert.Empty(t, k.Current())

	// Further presses are a no-op.
	k.Backspace()
	assert.Empty(t, k.Current())
}

func TestBackspaceClearsErrorState(t *testing.T) {
	k := newTestKeypad()
	k.PressSquare()
	assert.Equal(t, ErrorDisplay, k.Current())

	k.Backspace()
	assert.Empty(t, k.Current())
}

func TestEvaluate(t *testing.T) {
	k := newTestKeypad()
	press(k, "12+5")

	res, ok := k.Evaluate()
	assert.True(t, ok)
	assert.Equal(t, "17", res.Display)
	assert.Equal(t, "17", k.Current())
	assert.Empty(t, k.Total())
}

func TestEvaluateChainsOnPreviousResult(t *testing.T) {
	k := newTestKeypad()
	press(k, "12+5")
	k.Evaluate()

	press(k, "+3")
	res, ok := k.Evaluate()
	assert.True(t, ok)
	assert.Equal(t, "20", res.Display)
}

func TestEvaluateTranslatesGlyphs(t *testing.T) {
	k := newTestKeypad()
	press(k, "5*3")

	res, ok := k.Evaluate()
	assert.True(t, ok)
	assert.Equal(t, "5*3", res.Expression)
	assert.Equal(t, "15", res.Display)
}

func TestEvaluatePercent(t *testing.T) {
	k := newTestKeypad()
	press(k, "200+10%")

	res, ok := k.Evaluate()
	assert.True(t, ok)
	assert.Equal(t, "200+20.0", res.Expression)
	assert.Equal(t, "220", res.Display)
}

func TestEvaluateConsultsMemo(t *testing.T) {
	memo := cache.New(time.Minute, 10)
	// The seeded display proves the lookup happens before the engine runs.
	memo.Put("6*7", engine.Result{Expression: "6*7", Value: 42, Display: "cached"})

	k := New(engine.New(engine.Config{}), memo, 0)
	press(k, "6*7")

	res, ok := k.Evaluate()
	assert.True(t, ok)
	assert.Equal(t, "cached", res.Display)

	k.Clear()
	press(k, "2+2")
	res, ok = k.Evaluate()
	assert.True(t, ok)
	assert.Equal(t, "4", res.Display)

	_, hit := memo.Get("2+2")
	assert.True(t, hit)
}

func TestEvaluateErrorState(t *testing.T) {
	k := newTestKeypad()
	press(k, "5/0")

	_, ok := k.Evaluate()
	assert.False(t, ok)
	assert.Equal(t, ErrorDisplay, k.Current())
	assert.Empty(t, k.Total())
}

func TestEvaluateEmptyKeypadIsNoop(t *testing.T) {
	k := newTestKeypad()

	_, ok := k.Evaluate()
	assert.False(t, ok)
	assert.Empty(t, k.Current())
}

func TestClear(t *testing.T) {
	k := newTestKeypad()
	press(k, "5+3")
	k.Clear()

	assert.Empty(t, k.Total())
	assert.Empty(t, k.Current())
}
