// Package formula evaluates small arithmetic expressions over named
// stats. The grammar is deliberately closed: integer literals, stat
// identifiers, + - * /, min/max calls, and parentheses. There is no
// name resolution beyond the supplied lookup, so content formulas can
// never execute code.
package formula

import (
	"fmt"
	"strings"
	"unicode"
)

// Lookup resolves an identifier to its value. Returning false marks the
// identifier unknown and fails the evaluation.
type Lookup func(name string) (int, bool)

// Eval parses and evaluates an expression. Division is integer division;
// division by zero, unknown identifiers, and malformed syntax all return
// an error (callers fall back to a fixed default rate).
func Eval(expr string, lookup Lookup) (int, error) {
	p := &parser{input: []rune(expr), lookup: lookup}
	v, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	p.skipSpace()
	if p.pos < len(p.input) {
		return 0, fmt.Errorf("formula: unexpected %q at offset %d", p.input[p.pos], p.pos)
	}
	return v, nil
}

type parser struct {
	input  []rune
	pos    int
	lookup Lookup
}

// parseExpr handles + and -.
func (p *parser) parseExpr() (int, error) {
	v, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpace()
		switch p.peek() {
		case '+':
			p.pos++
			rhs, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			v += rhs
		case '-':
			p.pos++
			rhs, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			v -= rhs
		default:
			return v, nil
		}
	}
}

// parseTerm handles * and /.
func (p *parser) parseTerm() (int, error) {
	v, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpace()
		switch p.peek() {
		case '*':
			p.pos++
			rhs, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			v *= rhs
		case '/':
			p.pos++
			rhs, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			if rhs == 0 {
				return 0, fmt.Errorf("formula: division by zero")
			}
			v /= rhs
		default:
			return v, nil
		}
	}
}

func (p *parser) parseUnary() (int, error) {
	p.skipSpace()
	if p.peek() == '-' {
		p.pos++
		v, err := p.parseUnary()
		return -v, err
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (int, error) {
	p.skipSpace()
	c := p.peek()

	switch {
	case c == '(':
		p.pos++
		v, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		if err := p.expect(')'); err != nil {
			return 0, err
		}
		return v, nil

	case unicode.IsDigit(c):
		return p.parseNumber(), nil

	case isIdentStart(c):
		name := p.parseIdent()
		p.skipSpace()
		if p.peek() == '(' {
			return p.parseCall(name)
		}
		v, ok := p.lookup(name)
		if !ok {
			return 0, fmt.Errorf("formula: unknown identifier %q", name)
		}
		return v, nil
	}

	if p.pos >= len(p.input) {
		return 0, fmt.Errorf("formula: unexpected end of expression")
	}
	return 0, fmt.Errorf("formula: unexpected %q at offset %d", c, p.pos)
}

// parseCall evaluates min(...)/max(...) with one or more arguments.
func (p *parser) parseCall(name string) (int, error) {
	fn := strings.ToLower(name)
	if fn != "min" && fn != "max" {
		return 0, fmt.Errorf("formula: unknown function %q", name)
	}
	p.pos++ // consume '('

	var args []int
	for {
		v, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		args = append(args, v)
		p.skipSpace()
		if p.peek() == ',' {
			p.pos++
			continue
		}
		break
	}
	if err := p.expect(')'); err != nil {
		return 0, err
	}

	best := args[0]
	for _, v := range args[1:] {
		if (fn == "min" && v < best) || (fn == "max" && v > best) {
			best = v
		}
	}
	return best, nil
}

func (p *parser) parseNumber() int {
	start := p.pos
	for p.pos < len(p.input) && unicode.IsDigit(p.input[p.pos]) {
		p.pos++
	}
	n := 0
	for _, c := range p.input[start:p.pos] {
		n = n*10 + int(c-'0')
	}
	return n
}

func (p *parser) parseIdent() string {
	start := p.pos
	for p.pos < len(p.input) && isIdentPart(p.input[p.pos]) {
		p.pos++
	}
	return string(p.input[start:p.pos])
}

func (p *parser) skipSpace() {
	for p.pos < len(p.input) && unicode.IsSpace(p.input[p.pos]) {
		p.pos++
	}
}

func (p *parser) peek() rune {
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *parser) expect(c rune) error {
	p.skipSpace()
	if p.peek() != c {
		return fmt.Errorf("formula: expected %q at offset %d", c, p.pos)
	}
	p.pos++
	return nil
}

// Identifiers cover ASCII names and Japanese stat aliases, so any letter
// counts, not just [a-z].
func isIdentStart(c rune) bool {
	return unicode.IsLetter(c) || c == '_'
}

func isIdentPart(c rune) bool {
	return unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_'
}
