package tools

import (
	"context"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

const CalculatorName = "calculator"

type CalculatorInput struct {
	Expression string `json:"expression" jsonschema_description:"The mathematical expression to evaluate (e.g., '2+2' or '5*(3+2)')"`
}

var CalculatorInputSchema = GenerateSchema[CalculatorInput]()

var CalculatorDefinition = ToolDefinition{
	Name:        CalculatorName,
	Description: "Evaluate a mathematical expression",
	InputSchema: CalculatorInputSchema,
	Function:    Calculator,
}

// Calculator evaluates an arithmetic expression over numbers, + - * / and
// parentheses. Nothing else is accepted.
func Calculator(_ context.Context, args map[string]any) string {
	var in CalculatorInput
	if err := decodeArgs(args, &in); err != nil {
		return errorResult("invalid arguments: %v", err)
	}
	v, err := Evaluate(in.Expression)
	if err != nil {
		return errorResult("%v", err)
	}
	return v.String()
}

// Number is an evaluation result. Integer operands stay exact integers
// until a division or a decimal operand is involved.
type Number struct {
	// Int holds the value when IsFloat is false.
	Int *big.Int
	// Float holds the value when IsFloat is true.
	Float   float64
	IsFloat bool
}

func intNumber(i *big.Int) Number { return Number{Int: i} }

func floatNumber(f float64) Number { return Number{Float: f, IsFloat: true} }

// Float64 returns the value as a float, rounding large integers.
func (n Number) Float64() float64 {
	if n.IsFloat {
		return n.Float
	}
	f, _ := new(big.Float).SetInt(n.Int).Float64()
	return f
}

func (n Number) isZero() bool {
	if n.IsFloat {
		return n.Float == 0
	}
	return n.Int.Sign() == 0
}

// String renders integers without a fraction and floats with at least one
// decimal digit ("4", "2.0", "3.5").
func (n Number) String() string {
	if !n.IsFloat {
		return n.Int.String()
	}
	abs := math.Abs(n.Float)
	switch {
	case math.IsInf(n.Float, 0) || math.IsNaN(n.Float):
		return strconv.FormatFloat(n.Float, 'g', -1, 64)
	case abs >= 1e16 || (abs != 0 && abs < 1e-4):
		return strconv.FormatFloat(n.Float, 'g', -1, 64)
	case n.Float == math.Trunc(n.Float):
		return strconv.FormatFloat(n.Float, 'f', 1, 64)
	default:
		return strconv.FormatFloat(n.Float, 'f', -1, 64)
	}
}

// Evaluate parses and evaluates expr.
//
// Grammar:
//
//	expr    = term { ("+" | "-") term }
//	term    = unary { ("*" | "/") unary }
//	unary   = ("+" | "-") unary | primary
//	primary = number | "(" expr ")"
func Evaluate(expr string) (Number, error) {
	toks, err := tokenize(expr)
	if err != nil {
		return Number{}, err
	}
	if len(toks) == 0 {
		return Number{}, fmt.Errorf("empty expression")
	}
	p := &calcParser{toks: toks}
	v, err := p.expr()
	if err != nil {
		return Number{}, err
	}
	if p.pos < len(p.toks) {
		return Number{}, fmt.Errorf("unexpected %q at position %d", p.toks[p.pos].text, p.toks[p.pos].at)
	}
	return v, nil
}

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
	at   int
	num  Number
}

func tokenize(s string) ([]token, error) {
	var toks []token
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '+' || c == '-' || c == '*' || c == '/':
			toks = append(toks, token{kind: tokOp, text: string(c), at: i})
			i++
		case c == '(':
			toks = append(toks, token{kind: tokLParen, text: "(", at: i})
			i++
		case c == ')':
			toks = append(toks, token{kind: tokRParen, text: ")", at: i})
			i++
		case (c >= '0' && c <= '9') || c == '.':
			start := i
			for i < len(s) && ((s[i] >= '0' && s[i] <= '9') || s[i] == '.') {
				i++
			}
			lit := s[start:i]
			num, err := parseNumber(lit)
			if err != nil {
				return nil, fmt.Errorf("invalid number %q at position %d", lit, start)
			}
			toks = append(toks, token{kind: tokNumber, text: lit, at: start, num: num})
		default:
			return nil, fmt.Errorf("unexpected character %q at position %d", rune(c), i)
		}
	}
	return toks, nil
}

func parseNumber(lit string) (Number, error) {
	if !strings.Contains(lit, ".") {
		i, ok := new(big.Int).SetString(lit, 10)
		if !ok {
			return Number{}, fmt.Errorf("invalid integer")
		}
		return intNumber(i), nil
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return Number{}, err
	}
	return floatNumber(f), nil
}

type calcParser struct {
	toks []token
	pos  int
}

func (p *calcParser) peek() (token, bool) {
	if p.pos >= len(p.toks) {
		return token{}, false
	}
	return p.toks[p.pos], true
}

func (p *calcParser) expr() (Number, error) {
	left, err := p.term()
	if err != nil {
		return Number{}, err
	}
	for {
		t, ok := p.peek()
		if !ok || t.kind != tokOp || (t.text != "+" && t.text != "-") {
			return left, nil
		}
		p.pos++
		right, err := p.term()
		if err != nil {
			return Number{}, err
		}
		left = arith(t.text, left, right)
	}
}

func (p *calcParser) term() (Number, error) {
	left, err := p.unary()
	if err != nil {
		return Number{}, err
	}
	for {
		t, ok := p.peek()
		if !ok || t.kind != tokOp || (t.text != "*" && t.text != "/") {
			return left, nil
		}
		p.pos++
		right, err := p.unary()
		if err != nil {
			return Number{}, err
		}
		if t.text == "/" && right.isZero() {
			return Number{}, fmt.Errorf("division by zero")
		}
		left = arith(t.text, left, right)
	}
}

func (p *calcParser) unary() (Number, error) {
	t, ok := p.peek()
	if ok && t.kind == tokOp && (t.text == "+" || t.text == "-") {
		p.pos++
		v, err := p.unary()
		if err != nil {
			return Number{}, err
		}
		if t.text == "-" {
			return negate(v), nil
		}
		return v, nil
	}
	return p.primary()
}

func (p *calcParser) primary() (Number, error) {
	t, ok := p.peek()
	if !ok {
		return Number{}, fmt.Errorf("unexpected end of expression")
	}
	switch t.kind {
	case tokNumber:
		p.pos++
		return t.num, nil
	case tokLParen:
		p.pos++
		v, err := p.expr()
		if err != nil {
			return Number{}, err
		}
		closing, ok := p.peek()
		if !ok || closing.kind != tokRParen {
			return Number{}, fmt.Errorf("missing closing parenthesis for position %d", t.at)
		}
		p.pos++
		return v, nil
	default:
		return Number{}, fmt.Errorf("unexpected %q at position %d", t.text, t.at)
	}
}

func negate(n Number) Number {
	if n.IsFloat {
		return floatNumber(-n.Float)
	}
	return intNumber(new(big.Int).Neg(n.Int))
}

func arith(op string, a, b Number) Number {
	if !a.IsFloat && !b.IsFloat && op != "/" {
		switch op {
		case "+":
			return intNumber(new(big.Int).Add(a.Int, b.Int))
		case "-":
			return intNumber(new(big.Int).Sub(a.Int, b.Int))
		default:
			return intNumber(new(big.Int).Mul(a.Int, b.Int))
		}
	}
	x, y := a.Float64(), b.Float64()
	switch op {
	case "+":
		return floatNumber(x + y)
	case "-":
		return floatNumber(x - y)
	case "*":
		return floatNumber(x * y)
	default:
		return floatNumber(x / y)
	}
}
