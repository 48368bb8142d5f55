package decl

import (
	"fmt"
	"strings"
	"unicode"

	pscal "github.com/emkey1/pscal-sub005/src"
)

// tokenKind classifies a lexical token
type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokInt
	tokReal
	tokString
	tokSymbol
)

// token is one lexeme with its source position
type token struct {
	kind tokenKind
	text string
	pos  *pscal.SourcePosition
}

// SyntaxError reports malformed declaration or expression text
type SyntaxError struct {
	Message  string
	Position *pscal.SourcePosition
}

func (e *SyntaxError) Error() string {
	if e.Position != nil && e.Position.Line > 0 {
		filename := e.Position.Filename
		if filename == "" {
			filename = "<input>"
		}
		return fmt.Sprintf("syntax error: %s (at line %d, column %d in %s)", e.Message, e.Position.Line, e.Position.Column, filename)
	}
	return "syntax error: " + e.Message
}

// two-character symbols are matched before single ones
var symbols2 = []string{"..", ":=", "<=", ">=", "<>"}

const symbols1 = "^[](),.+-*/=<>#;:"

// lexer turns declaration text into tokens, tracking line and column
type lexer struct {
	runes    []rune
	i        int
	line     int
	column   int
	filename string
}

func newLexer(src string, base *pscal.SourcePosition) *lexer {
	lx := &lexer{runes: []rune(src), line: 1, column: 1}
	if base != nil {
		lx.filename = base.Filename
		if base.Line > 0 {
			lx.line = base.Line
		}
		if base.Column > 0 {
			lx.column = base.Column
		}
	}
	return lx
}

func (lx *lexer) position(length int) *pscal.SourcePosition {
	return &pscal.SourcePosition{Line: lx.line, Column: lx.column, Length: length, Filename: lx.filename}
}

func (lx *lexer) advance(n int) {
	for k := 0; k < n && lx.i < len(lx.runes); k++ {
		if lx.runes[lx.i] == '\n' {
			lx.line++
			lx.column = 1
		} else {
			lx.column++
		}
		lx.i++
	}
}

func (lx *lexer) peekRune(offset int) rune {
	if lx.i+offset < len(lx.runes) {
		return lx.runes[lx.i+offset]
	}
	return 0
}

// tokens lexes the whole input
func (lx *lexer) tokens() ([]token, error) {
	var out []token
	for {
		tok, err := lx.next()
		if err != nil {
			return nil, err
		}
		out = append(out, tok)
		if tok.kind == tokEOF {
			return out, nil
		}
	}
}

func (lx *lexer) next() (token, error) {
	for lx.i < len(lx.runes) && unicode.IsSpace(lx.runes[lx.i]) {
		lx.advance(1)
	}
	if lx.i >= len(lx.runes) {
		return token{kind: tokEOF, pos: lx.position(0)}, nil
	}

	start := lx.i
	r := lx.runes[lx.i]

	switch {
	case r == '_' || unicode.IsLetter(r):
		j := lx.i
		for j < len(lx.runes) && (lx.runes[j] == '_' || unicode.IsLetter(lx.runes[j]) || unicode.IsDigit(lx.runes[j])) {
			j++
		}
		text := string(lx.runes[start:j])
		tok := token{kind: tokIdent, text: text, pos: lx.position(j - start)}
		lx.advance(j - start)
		return tok, nil

	case unicode.IsDigit(r):
		return lx.number(), nil

	case r == '\'':
		return lx.quoted()
	}

	for _, sym := range symbols2 {
		if strings.HasPrefix(string(lx.runes[lx.i:min(lx.i+2, len(lx.runes))]), sym) {
			tok := token{kind: tokSymbol, text: sym, pos: lx.position(2)}
			lx.advance(2)
			return tok, nil
		}
	}
	if strings.ContainsRune(symbols1, r) {
		tok := token{kind: tokSymbol, text: string(r), pos: lx.position(1)}
		lx.advance(1)
		return tok, nil
	}
	return token{}, &SyntaxError{Message: fmt.Sprintf("unexpected character %q", r), Position: lx.position(1)}
}

// number lexes an integer or real literal; "1..3" stays an integer followed by ".."
func (lx *lexer) number() token {
	start := lx.i
	j := lx.i
	isReal := false
	for j < len(lx.runes) && unicode.IsDigit(lx.runes[j]) {
		j++
	}
	if j+1 < len(lx.runes) && lx.runes[j] == '.' && unicode.IsDigit(lx.runes[j+1]) {
		isReal = true
		j++
		for j < len(lx.runes) && unicode.IsDigit(lx.runes[j]) {
			j++
		}
	}
	if j < len(lx.runes) && (lx.runes[j] == 'e' || lx.runes[j] == 'E') {
		k := j + 1
		if k < len(lx.runes) && (lx.runes[k] == '+' || lx.runes[k] == '-') {
			k++
		}
		if k < len(lx.runes) && unicode.IsDigit(lx.runes[k]) {
			isReal = true
			j = k
			for j < len(lx.runes) && unicode.IsDigit(lx.runes[j]) {
				j++
			}
		}
	}
	kind := tokInt
	if isReal {
		kind = tokReal
	}
	tok := token{kind: kind, text: string(lx.runes[start:j]), pos: lx.position(j - start)}
	lx.advance(j - start)
	return tok
}

// quoted lexes a Pascal string literal; '' inside the quotes is one quote
func (lx *lexer) quoted() (token, error) {
	pos := lx.position(0)
	lx.advance(1)
	var sb strings.Builder
	for {
		if lx.i >= len(lx.runes) {
			return token{}, &SyntaxError{Message: "unterminated string literal", Position: pos}
		}
		r := lx.runes[lx.i]
		if r == '\'' {
			if lx.peekRune(1) == '\'' {
				sb.WriteRune('\'')
				lx.advance(2)
				continue
			}
			lx.advance(1)
			break
		}
		sb.WriteRune(r)
		lx.advance(1)
	}
	pos.Length = lx.column - pos.Column
	return token{kind: tokString, text: sb.String(), pos: pos}, nil
}
