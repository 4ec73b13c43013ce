package engine

// precedence ranks operators for the converter; * and / bind tighter
// than + and -.
var precedence = map[byte]int{'+': 1, '-': 1, '*': 2, '/': 2}

// prevKind records what the converter saw last. Whether a minus negates
// or subtracts depends only on the kind of the previous token.
type prevKind int

const (
	prevStart prevKind = iota
	prevNumber
	prevOperator
	prevLeftParen
	prevRightParen
)

// toPostfix converts an infix token sequence to postfix (RPN) order with
// the shunting-yard algorithm. All four operators are left-associative,
// which the >= comparison in the pop condition provides. A minus at the
// start of the input, after an operator or after an opening parenthesis is
// unary; it is rewritten as subtraction from an injected zero. A stray
// closing parenthesis with no open one on the stack is ignored, and open
// parentheses still on the stack at the end are discarded.
func toPostfix(tokens []token) []token {
	output := make([]token, 0, len(tokens))
	var stack []token
	prev := prevStart

	for _, tok := range tokens {
		switch tok.kind {
		case tokenNumber:
			output = append(output, tok)
			prev = prevNumber

		case tokenOperator:
			if tok.op == '-' && (prev == prevStart || prev == prevOperator || prev == prevLeftParen) {
				output = append(output, token{kind: tokenNumber, num: 0, text: "0"})
			}
			for len(stack) > 0 {
				top := stack[len(stack)-1]
				if top.kind == tokenLeftParen || precedence[top.op] < precedence[tok.op] {
					break
				}
				output = append(output, top)
				stack = stack[:len(stack)-1]
			}
			stack = append(stack, tok)
			prev = prevOperator

		case tokenLeftParen:
			stack = append(stack, tok)
			prev = prevLeftParen

		case tokenRightParen:
			for len(stack) > 0 && stack[len(stack)-1].kind != tokenLeftParen {
				output = append(output, stack[len(stack)-1])
				stack = stack[:len(stack)-1]
			}
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			prev = prevRightParen
		}
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.kind != tokenLeftParen {
			output = append(output, top)
		}
	}
	return output
}
