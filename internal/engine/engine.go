// Package engine evaluates infix arithmetic expressions the way a pocket
// calculator does: sanitize, tokenize, convert to postfix, reduce on a
// stack, then format the result for a bounded-width display.
package engine

import (
	"errors"
)

// DefaultDisplayWidth is the byte budget for formatted results when the
// configuration does not set one.
const DefaultDisplayWidth = 15

// Errors returned by Compute. Callers match them with errors.Is.
var (
	// ErrMissingOperand indicates an operator with fewer than two operands.
	ErrMissingOperand = errors.New("missing operand")
	// ErrDivisionByZero indicates a division whose right operand is zero.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrMalformedExpression indicates input that does not reduce to a
	// single value, including the empty expression.
	ErrMalformedExpression = errors.New("malformed expression")
	// ErrUnrecognizedCharacter reports characters outside the grammar.
	// Only returned when Config.StrictTokens is set; the default scanner
	// skips such characters.
	ErrUnrecognizedCharacter = errors.New("unrecognized character")
)

// Config holds the fixed per-engine settings.
type Config struct {
	// MaxDisplayWidth caps the byte length of formatted results.
	// Values below 1 fall back to DefaultDisplayWidth.
	MaxDisplayWidth int

	// StrictTokens makes tokenization fail with ErrUnrecognizedCharacter
	// instead of silently skipping characters outside the grammar.
	StrictTokens bool
}

// Engine is a stateless expression evaluator. All methods are pure
// functions of their input and the fixed configuration, so a single
// Engine is safe for concurrent use.
type Engine struct {
	cfg Config
}

// New returns an Engine with the given configuration.
func New(cfg Config) *Engine {
	if cfg.MaxDisplayWidth < 1 {
		cfg.MaxDisplayWidth = DefaultDisplayWidth
	}
	return &Engine{cfg: cfg}
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Result is the outcome of evaluating one expression.
type Result struct {
	// Expression is the input after percentage resolution.
	Expression string `json:"expression"`
	// Value is the numeric result.
	Value float64 `json:"value"`
	// Display is Value rendered for a bounded-width display.
	Display string `json:"display"`
}

// Compute evaluates an infix arithmetic expression: trailing operators are
// stripped, the rest is tokenized, converted to postfix and reduced on a
// stack. The zero value is returned together with a non-nil error when the
// expression cannot be reduced to a single number.
func (e *Engine) Compute(expr string) (float64, error) {
	tokens, err := e.tokenize(sanitize(expr))
	if err != nil {
		return 0, err
	}
	return evalPostfix(toPostfix(tokens))
}

// Evaluate runs the whole pipeline: percentage resolution, Compute and
// Format. The returned Result carries the resolved expression even when
// evaluation fails, so callers can report what was actually computed.
func (e *Engine) Evaluate(expr string) (Result, error) {
	resolved := e.ResolvePercentage(expr)
	value, err := e.Compute(resolved)
	if err != nil {
		return Result{Expression: resolved}, err
	}
	return Result{Expression: resolved, Value: value, Display: e.Format(value)}, nil
}
