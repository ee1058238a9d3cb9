package expr

import "fmt"

// maxDepth bounds nesting so that hostile input cannot exhaust the stack.
const maxDepth = 200

type parser struct {
	src    string
	tokens []token
	pos    int
	depth  int
}

// Parse builds the expression tree for src.
func Parse(src string) (Node, error) {
	tokens, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{src: src, tokens: tokens}
	if p.peek().typ == tokEOF {
		return nil, newError(src, "syntax error: empty expression")
	}
	n, err := p.expr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.typ != tokEOF {
		return nil, p.unexpected(tok)
	}
	return n, nil
}

func (p *parser) peek() token { return p.tokens[p.pos] }

func (p *parser) advance() token {
	tok := p.tokens[p.pos]
	if tok.typ != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) isKeyword(word string) bool {
	tok := p.peek()
	return tok.typ == tokKeyword && tok.val == word
}

func (p *parser) isOp(ops ...string) bool {
	tok := p.peek()
	if tok.typ != tokOp {
		return false
	}
	for _, op := range ops {
		if tok.val == op {
			return true
		}
	}
	return false
}

func (p *parser) errorf(tok token, format string, args ...any) error {
	return newError(p.src, "syntax error at column %d: %s", tok.pos+1, fmt.Sprintf(format, args...))
}

func (p *parser) unexpected(tok token) error {
	if tok.typ == tokKeyword {
		return p.errorf(tok, "unsupported syntax '%s'", tok.val)
	}
	if tok.typ == tokEOF {
		return p.errorf(tok, "unexpected end of expression")
	}
	return p.errorf(tok, "unexpected %s", tok)
}

func (p *parser) enter() error {
	p.depth++
	if p.depth > maxDepth {
		return p.errorf(p.peek(), "expression nested too deeply")
	}
	return nil
}

func (p *parser) leave() { p.depth-- }

// expr := or ['if' or 'else' expr]
func (p *parser) expr() (Node, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	then, err := p.or()
	if err != nil {
		return nil, err
	}
	if !p.isKeyword("if") {
		return then, nil
	}
	p.advance()
	cond, err := p.or()
	if err != nil {
		return nil, err
	}
	if !p.isKeyword("else") {
		return nil, p.errorf(p.peek(), "expected 'else' in conditional expression")
	}
	p.advance()
	els, err := p.expr()
	if err != nil {
		return nil, err
	}
	return &Conditional{Cond: cond, Then: then, Else: els}, nil
}

func (p *parser) or() (Node, error) {
	return p.logic(OpOr, p.and)
}

func (p *parser) and() (Node, error) {
	return p.logic(OpAnd, p.comparison)
}

func (p *parser) logic(op LogicOp, operand func() (Node, error)) (Node, error) {
	first, err := operand()
	if err != nil {
		return nil, err
	}
	if !p.isKeyword(string(op)) {
		return first, nil
	}
	values := []Node{first}
	for p.isKeyword(string(op)) {
		p.advance()
		next, err := operand()
		if err != nil {
			return nil, err
		}
		values = append(values, next)
	}
	return &Logic{Op: op, Values: values}, nil
}

func (p *parser) comparison() (Node, error) {
	if p.isKeyword("not") {
		return nil, p.errorf(p.peek(), "unsupported operator 'not'")
	}
	first, err := p.arith()
	if err != nil {
		return nil, err
	}
	var (
		ops  []CompareOp
		rest []Node
	)
	for p.isOp("<", "<=", ">", ">=", "==", "!=") {
		op := CompareOp(p.advance().val)
		right, err := p.arith()
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
		rest = append(rest, right)
	}
	if p.isKeyword("in") || p.isKeyword("is") || p.isKeyword("not") {
		tok := p.peek()
		return nil, p.errorf(tok, "unsupported operator '%s'", tok.val)
	}
	if len(ops) == 0 {
		return first, nil
	}
	return &Compare{First: first, Ops: ops, Rest: rest}, nil
}

func (p *parser) arith() (Node, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for p.isOp("+", "-") {
		op := BinaryOp(p.advance().val)
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) term() (Node, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for p.isOp("*", "/", "//", "%") {
		op := BinaryOp(p.advance().val)
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) unary() (Node, error) {
	if p.isOp("+", "-") {
		if err := p.enter(); err != nil {
			return nil, err
		}
		defer p.leave()
		op := BinaryOp(p.advance().val)
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &Unary{Op: op, X: x}, nil
	}
	return p.power()
}

// power binds tighter than a unary sign on its left and looser on its right,
// so -2 ** 2 is -(2 ** 2) and 2 ** -1 is 2 ** (-1).
func (p *parser) power() (Node, error) {
	base, err := p.call()
	if err != nil {
		return nil, err
	}
	if !p.isOp("**") {
		return base, nil
	}
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()
	p.advance()
	exp, err := p.unary()
	if err != nil {
		return nil, err
	}
	return &Binary{Op: OpPow, Left: base, Right: exp}, nil
}

func (p *parser) call() (Node, error) {
	n, err := p.atom()
	if err != nil {
		return nil, err
	}
	for p.peek().typ == tokLParen {
		p.advance()
		var args []Node
		for p.peek().typ != tokRParen {
			arg, err := p.expr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.peek().typ == tokComma {
				p.advance()
				continue
			}
			if p.peek().typ != tokRParen {
				return nil, p.unexpected(p.peek())
			}
		}
		p.advance()
		n = &Call{Func: n, Args: args}
	}
	return n, nil
}

func (p *parser) atom() (Node, error) {
	tok := p.peek()
	switch tok.typ {
	case tokNumber:
		p.advance()
		return &NumberLit{Value: tok.num}, nil
	case tokString:
		p.advance()
		return &StringLit{Value: tok.val}, nil
	case tokName:
		p.advance()
		return &Name{ID: tok.val}, nil
	case tokLParen:
		p.advance()
		if p.peek().typ == tokRParen {
			return nil, p.errorf(p.peek(), "empty parentheses")
		}
		inner, err := p.expr()
		if err != nil {
			return nil, err
		}
		if p.peek().typ != tokRParen {
			if p.peek().typ == tokComma {
				return nil, p.errorf(p.peek(), "unsupported syntax: tuple")
			}
			return nil, p.unexpected(p.peek())
		}
		p.advance()
		return inner, nil
	default:
		return nil, p.unexpected(tok)
	}
}
