package engine

import "fmt"

// evalPostfix reduces a postfix token sequence to a single value with a
// stack machine. Numbers push; an operator pops b, then a, and pushes
// a <op> b. The sequence is malformed when anything but exactly one value
// remains at the end.
func evalPostfix(tokens []token) (float64, error) {
	var stack []float64
	for _, tok := range tokens {
		if tok.kind == tokenNumber {
			stack = append(stack, tok.num)
			continue
		}
		if len(stack) < 2 {
			return 0, fmt.Errorf("%w: operator %q", ErrMissingOperand, tok.op)
		}
		b := stack[len(stack)-1]
		a := stack[len(stack)-2]
		stack = stack[:len(stack)-2]

		switch tok.op {
		case '+':
			stack = append(stack, a+b)
		case '-':
			stack = append(stack, a-b)
		case '*':
			stack = append(stack, a*b)
		case '/':
			if b == 0 {
				return 0, ErrDivisionByZero
			}
			stack = append(stack, a/b)
		}
	}
	if len(stack) != 1 {
		return 0, fmt.Errorf("%w: %d values remain", ErrMalformedExpression, len(stack))
	}
	return stack[0], nil
}
