package decl

import (
	"fmt"
	"strconv"
	"strings"

	pscal "github.com/emkey1/pscal-sub005/src"
)

// parser is a recursive-descent parser over a token slice
type parser struct {
	toks []token
	pos  int
}

func newParser(src string, base *pscal.SourcePosition) (*parser, error) {
	toks, err := newLexer(src, base).tokens()
	if err != nil {
		return nil, err
	}
	return &parser{toks: toks}, nil
}

// ParseExpr parses an expression or lvalue: a[1, 2].x, p^.next, s[3],
// N - 1, 'x', #65, 3.5, not done
func ParseExpr(src string) (*pscal.Node, error) {
	return ParseExprAt(src, nil)
}

// ParseExprAt is ParseExpr with positions offset from base
func ParseExprAt(src string, base *pscal.SourcePosition) (*pscal.Node, error) {
	p, err := newParser(src, base)
	if err != nil {
		return nil, err
	}
	node, err := p.expr()
	if err != nil {
		return nil, err
	}
	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	return node, nil
}

// ParseType parses a type expression: integer, string[10], ^TNode,
// set of char, array[1..3, 0..N-1] of real, (red, green), 1..10, TName
func ParseType(src string) (*pscal.Node, error) {
	return ParseTypeAt(src, nil)
}

// ParseTypeAt is ParseType with positions offset from base
func ParseTypeAt(src string, base *pscal.SourcePosition) (*pscal.Node, error) {
	p, err := newParser(src, base)
	if err != nil {
		return nil, err
	}
	node, err := p.typeExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	return node, nil
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) next() token {
	tok := p.toks[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

// isSym reports whether the next token is the given symbol
func (p *parser) isSym(sym string) bool {
	tok := p.peek()
	return tok.kind == tokSymbol && tok.text == sym
}

// isWord reports whether the next token is the given keyword
func (p *parser) isWord(word string) bool {
	tok := p.peek()
	return tok.kind == tokIdent && strings.EqualFold(tok.text, word)
}

func (p *parser) errorf(tok token, format string, args ...interface{}) error {
	return &SyntaxError{Message: fmt.Sprintf(format, args...), Position: tok.pos}
}

func (p *parser) expectSym(sym string) (token, error) {
	tok := p.next()
	if tok.kind != tokSymbol || tok.text != sym {
		return tok, p.errorf(tok, "expected %q, found %s", sym, describe(tok))
	}
	return tok, nil
}

func (p *parser) expectWord(word string) error {
	tok := p.next()
	if tok.kind != tokIdent || !strings.EqualFold(tok.text, word) {
		return p.errorf(tok, "expected %q, found %s", word, describe(tok))
	}
	return nil
}

func (p *parser) expectEOF() error {
	if tok := p.peek(); tok.kind != tokEOF {
		return p.errorf(tok, "unexpected %s", describe(tok))
	}
	return nil
}

func describe(tok token) string {
	if tok.kind == tokEOF {
		return "end of input"
	}
	return strconv.Quote(tok.text)
}

// typeExpr parses one type expression
func (p *parser) typeExpr() (*pscal.Node, error) {
	tok := p.peek()
	switch {
	case p.isSym("^"):
		p.next()
		name := p.next()
		if name.kind != tokIdent {
			return nil, p.errorf(name, "expected type name after ^, found %s", describe(name))
		}
		base := pscal.TypeRef(name.text, nil)
		base.Position = name.pos
		node := pscal.PointerType(base)
		node.Position = tok.pos
		return node, nil

	case p.isWord("set"):
		p.next()
		if err := p.expectWord("of"); err != nil {
			return nil, err
		}
		base, err := p.typeExpr()
		if err != nil {
			return nil, err
		}
		node := pscal.SetType(base)
		node.Position = tok.pos
		return node, nil

	case p.isWord("array"):
		return p.arrayType()

	case p.isWord("string") && p.toks[p.pos+1].kind == tokSymbol && p.toks[p.pos+1].text == "[":
		p.next()
		p.next()
		length, err := p.expr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectSym("]"); err != nil {
			return nil, err
		}
		node := pscal.FixedStringType(length)
		node.Position = tok.pos
		return node, nil

	case p.isSym("("):
		return p.enumType("")
	}

	// a named type, or the start of a subrange such as 1..10 or 'a'..'z'
	if tok.kind == tokIdent && !p.followedBySubrange() {
		p.next()
		if vt, builtin := pscal.BuiltinVarType(tok.text); builtin {
			node := pscal.Ident(tok.text)
			node.VarType = vt
			node.Position = tok.pos
			return node, nil
		}
		node := pscal.TypeRef(tok.text, nil)
		node.Position = tok.pos
		return node, nil
	}
	return p.subrange()
}

// followedBySubrange reports whether the identifier at the cursor starts lo..hi
func (p *parser) followedBySubrange() bool {
	for i := p.pos + 1; i < len(p.toks); i++ {
		tok := p.toks[i]
		if tok.kind == tokEOF || (tok.kind == tokSymbol && (tok.text == "," || tok.text == "]")) {
			return false
		}
		if tok.kind == tokSymbol && tok.text == ".." {
			return true
		}
	}
	return false
}

func (p *parser) subrange() (*pscal.Node, error) {
	start := p.peek()
	lo, err := p.expr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectSym(".."); err != nil {
		return nil, err
	}
	hi, err := p.expr()
	if err != nil {
		return nil, err
	}
	node := pscal.Subrange(lo, hi)
	node.Position = start.pos
	return node, nil
}

func (p *parser) arrayType() (*pscal.Node, error) {
	start := p.next()
	if _, err := p.expectSym("["); err != nil {
		return nil, err
	}
	var dims []*pscal.Node
	for {
		dim, err := p.typeExpr()
		if err != nil {
			return nil, err
		}
		dims = append(dims, dim)
		if !p.isSym(",") {
			break
		}
		p.next()
	}
	if _, err := p.expectSym("]"); err != nil {
		return nil, err
	}
	if err := p.expectWord("of"); err != nil {
		return nil, err
	}
	elem, err := p.typeExpr()
	if err != nil {
		return nil, err
	}
	node := pscal.ArrayType(elem, dims...)
	node.Position = start.pos
	return node, nil
}

// enumType parses (a, b, c)
func (p *parser) enumType(name string) (*pscal.Node, error) {
	start := p.next()
	var members []string
	for {
		tok := p.next()
		if tok.kind != tokIdent {
			return nil, p.errorf(tok, "expected enum member, found %s", describe(tok))
		}
		members = append(members, tok.text)
		if p.isSym(",") {
			p.next()
			continue
		}
		break
	}
	if _, err := p.expectSym(")"); err != nil {
		return nil, err
	}
	node := pscal.EnumType(name, members...)
	node.Position = start.pos
	return node, nil
}

var relOps = map[string]bool{"=": true, "<>": true, "<": true, "<=": true, ">": true, ">=": true}

// expr := simple [relop simple]
func (p *parser) expr() (*pscal.Node, error) {
	left, err := p.simple()
	if err != nil {
		return nil, err
	}
	tok := p.peek()
	if (tok.kind == tokSymbol && relOps[tok.text]) || p.isWord("in") {
		p.next()
		right, err := p.simple()
		if err != nil {
			return nil, err
		}
		node := pscal.BinaryOp(strings.ToLower(tok.text), left, right)
		node.Position = tok.pos
		return node, nil
	}
	return left, nil
}

// simple := [sign] term {addop term}
func (p *parser) simple() (*pscal.Node, error) {
	var sign *token
	if p.isSym("-") || p.isSym("+") {
		tok := p.next()
		sign = &tok
	}
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	if sign != nil {
		left = pscal.UnaryOp(sign.text, left)
		left.Position = sign.pos
	}
	for p.isSym("+") || p.isSym("-") || p.isWord("or") || p.isWord("xor") {
		op := p.next()
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		left = pscal.BinaryOp(strings.ToLower(op.text), left, right)
		left.Position = op.pos
	}
	return left, nil
}

// term := factor {mulop factor}
func (p *parser) term() (*pscal.Node, error) {
	left, err := p.factor()
	if err != nil {
		return nil, err
	}
	for p.isSym("*") || p.isSym("/") || p.isWord("div") || p.isWord("mod") || p.isWord("and") {
		op := p.next()
		right, err := p.factor()
		if err != nil {
			return nil, err
		}
		left = pscal.BinaryOp(strings.ToLower(op.text), left, right)
		left.Position = op.pos
	}
	return left, nil
}

func (p *parser) factor() (*pscal.Node, error) {
	tok := p.peek()
	switch {
	case tok.kind == tokInt:
		p.next()
		n, err := strconv.ParseInt(tok.text, 10, 64)
		if err != nil {
			return nil, p.errorf(tok, "integer literal %s out of range", tok.text)
		}
		node := pscal.Number(n)
		node.Position = tok.pos
		return node, nil

	case tok.kind == tokReal:
		p.next()
		node := pscal.RealLiteral(tok.text)
		node.Position = tok.pos
		return node, nil

	case tok.kind == tokString:
		p.next()
		node := pscal.StringLiteral(tok.text)
		node.Position = tok.pos
		return node, nil

	case p.isSym("#"):
		p.next()
		code := p.next()
		if code.kind != tokInt {
			return nil, p.errorf(code, "expected character code after #, found %s", describe(code))
		}
		n, err := strconv.Atoi(code.text)
		if err != nil || n < 0 || n > 255 {
			return nil, p.errorf(code, "character code %s out of range 0..255", code.text)
		}
		node := pscal.StringLiteral(string([]byte{byte(n)}))
		node.Position = tok.pos
		return node, nil

	case p.isSym("("):
		p.next()
		inner, err := p.expr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectSym(")"); err != nil {
			return nil, err
		}
		return inner, nil

	case p.isWord("not"):
		p.next()
		operand, err := p.factor()
		if err != nil {
			return nil, err
		}
		node := pscal.UnaryOp("not", operand)
		node.Position = tok.pos
		return node, nil

	case p.isWord("nil"):
		p.next()
		node := pscal.NilLiteral()
		node.Position = tok.pos
		return node, nil

	case p.isWord("true"), p.isWord("false"):
		p.next()
		node := pscal.BooleanLiteral(strings.EqualFold(tok.text, "true"))
		node.Position = tok.pos
		return node, nil

	case tok.kind == tokIdent:
		return p.designator()
	}
	return nil, p.errorf(tok, "unexpected %s in expression", describe(tok))
}

// designator := ident { .field | [expr, ...] | ^ }
func (p *parser) designator() (*pscal.Node, error) {
	tok := p.next()
	node := pscal.Ident(tok.text)
	node.Position = tok.pos
	for {
		switch {
		case p.isSym("."):
			dot := p.next()
			field := p.next()
			if field.kind != tokIdent {
				return nil, p.errorf(field, "expected field name, found %s", describe(field))
			}
			node = pscal.FieldAccess(node, field.text)
			node.Position = dot.pos

		case p.isSym("["):
			open := p.next()
			var indices []*pscal.Node
			for {
				idx, err := p.expr()
				if err != nil {
					return nil, err
				}
				indices = append(indices, idx)
				if !p.isSym(",") {
					break
				}
				p.next()
			}
			if _, err := p.expectSym("]"); err != nil {
				return nil, err
			}
			node = pscal.ArrayAccess(node, indices...)
			node.Position = open.pos

		case p.isSym("^"):
			caret := p.next()
			node = pscal.Deref(node)
			node.Position = caret.pos

		default:
			return node, nil
		}
	}
}
