package engine

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// tokenKind classifies the lexemes of an expression.
type tokenKind int

const (
	tokenNumber tokenKind = iota
	tokenOperator
	tokenLeftParen
	tokenRightParen
)

// token is one lexeme. Numbers carry their parsed value, operators the
// operator byte; text is the source slice the token was scanned from.
type token struct {
	kind tokenKind
	num  float64
	op   byte
	text string
}

// sanitize trims surrounding whitespace and a maximal trailing run of
// operator characters, so "5+3+" evaluates as "5+3". Idempotent; the
// result may be empty.
func sanitize(expr string) string {
	return strings.TrimRight(strings.TrimSpace(expr), "+-*/")
}

// tokenize scans expr left to right. A number is a digit run optionally
// followed by a dot and another digit run; a dot without a digit on both
// sides ends the literal, so "1.2.3" scans as 1.2 and 3. Anything that is
// not a number, operator or parenthesis is skipped, unless StrictTokens is
// set, in which case it fails with ErrUnrecognizedCharacter.
func (e *Engine) tokenize(expr string) ([]token, error) {
	var tokens []token
	for i := 0; i < len(expr); {
		c := expr[i]
		switch {
		case isDigit(c):
			j := i + 1
			for j < len(expr) && isDigit(expr[j]) {
				j++
			}
			if j+1 < len(expr) && expr[j] == '.' && isDigit(expr[j+1]) {
				j += 2
				for j < len(expr) && isDigit(expr[j]) {
					j++
				}
			}
			// The scan admits only digits and one dot, so ParseFloat can
			// fail only on range, where it still yields the saturated value.
			num, _ := strconv.ParseFloat(expr[i:j], 64)
			tokens = append(tokens, token{kind: tokenNumber, num: num, text: expr[i:j]})
			i = j
		case c == '(':
			tokens = append(tokens, token{kind: tokenLeftParen, text: "("})
			i++
		case c == ')':
			tokens = append(tokens, token{kind: tokenRightParen, text: ")"})
			i++
		case c == '+' || c == '-' || c == '*' || c == '/':
			tokens = append(tokens, token{kind: tokenOperator, op: c, text: expr[i : i+1]})
			i++
		default:
			r, size := utf8.DecodeRuneInString(expr[i:])
			if e.cfg.StrictTokens {
				return nil, fmt.Errorf("%w: %q at offset %d", ErrUnrecognizedCharacter, r, i)
			}
			i += size
		}
	}
	return tokens, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
