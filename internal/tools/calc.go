package tools

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

type calcParams struct {
	Expression string `json:"expression" jsonschema:"description=A math expression (e.g. 2 + 3*4)"`
}

// registerCalcTool adds the arithmetic evaluator.
func registerCalcTool(reg *Registry) error {
	return reg.Register(&Tool{
		Name:        "calculate_math",
		Description: "Safely evaluate a mathematical expression and return the numeric result.",
		Schema:      reflectSchema(&calcParams{}),
		Origin:      OriginLocal,
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			var p calcParams
			if err := decodeArgs(args, &p); err != nil {
				return "", err
			}
			result, err := evalExpression(p.Expression)
			if err != nil {
				return "", fmt.Errorf("invalid expression: %w", err)
			}
			return strconv.FormatFloat(result, 'g', -1, 64), nil
		},
	})
}

// evalExpression evaluates a pure arithmetic expression. Only numeric
// literals, parentheses, unary +/-, and the operators + - * / % ** ^ are
// accepted, so untrusted model output cannot reach anything else.
func evalExpression(expr string) (float64, error) {
	p := &exprParser{input: expr}
	result, err := p.parseSum()
	if err != nil {
		return 0, err
	}
	p.skipSpace()
	if p.pos < len(p.input) {
		return 0, fmt.Errorf("unexpected %q at position %d", p.input[p.pos], p.pos)
	}
	return result, nil
}

type exprParser struct {
	input string
	pos   int
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.input) && unicode.IsSpace(rune(p.input[p.pos])) {
		p.pos++
	}
}

func (p *exprParser) peek() byte {
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

// parseSum handles + and -.
func (p *exprParser) parseSum() (float64, error) {
	left, err := p.parseProduct()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpace()
		switch p.peek() {
		case '+':
			p.pos++
			right, err := p.parseProduct()
			if err != nil {
				return 0, err
			}
			left += right
		case '-':
			p.pos++
			right, err := p.parseProduct()
			if err != nil {
				return 0, err
			}
			left -= right
		default:
			return left, nil
		}
	}
}

// parseProduct handles *, /, %, and // (floor division).
func (p *exprParser) parseProduct() (float64, error) {
	left, err := p.parsePower()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpace()
		switch p.peek() {
		case '*':
			if strings.HasPrefix(p.input[p.pos:], "**") {
				return left, nil
			}
			p.pos++
			right, err := p.parsePower()
			if err != nil {
				return 0, err
			}
			left *= right
		case '/':
			floor := strings.HasPrefix(p.input[p.pos:], "//")
			if floor {
				p.pos += 2
			} else {
				p.pos++
			}
			right, err := p.parsePower()
			if err != nil {
				return 0, err
			}
			if right == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			if floor {
				left = math.Floor(left / right)
			} else {
				left /= right
			}
		case '%':
			p.pos++
			right, err := p.parsePower()
			if err != nil {
				return 0, err
			}
			if right == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			left = math.Mod(left, right)
		default:
			return left, nil
		}
	}
}

// parsePower handles ** and ^ with right associativity.
func (p *exprParser) parsePower() (float64, error) {
	base, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	p.skipSpace()
	if strings.HasPrefix(p.input[p.pos:], "**") || p.peek() == '^' {
		if p.peek() == '^' {
			p.pos++
		} else {
			p.pos += 2
		}
		exp, err := p.parsePower()
		if err != nil {
			return 0, err
		}
		return math.Pow(base, exp), nil
	}
	return base, nil
}

// parseUnary handles leading + and -.
func (p *exprParser) parseUnary() (float64, error) {
	p.skipSpace()
	switch p.peek() {
	case '+':
		p.pos++
		return p.parseUnary()
	case '-':
		p.pos++
		value, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		return -value, nil
	}
	return p.parseAtom()
}

// parseAtom handles numbers and parenthesized expressions.
func (p *exprParser) parseAtom() (float64, error) {
	p.skipSpace()
	if p.peek() == '(' {
		p.pos++
		value, err := p.parseSum()
		if err != nil {
			return 0, err
		}
		p.skipSpace()
		if p.peek() != ')' {
			return 0, fmt.Errorf("missing closing parenthesis")
		}
		p.pos++
		return value, nil
	}

	start := p.pos
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if (c >= '0' && c <= '9') || c == '.' {
			p.pos++
			continue
		}
		break
	}
	if p.pos == start {
		if p.pos >= len(p.input) {
			return 0, fmt.Errorf("unexpected end of expression")
		}
		return 0, fmt.Errorf("unexpected %q at position %d", p.input[p.pos], p.pos)
	}

	value, err := strconv.ParseFloat(p.input[start:p.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("bad number %q", p.input[start:p.pos])
	}
	return value, nil
}
