// Package rule implements the closed expression language used by catalog
// transformation schemas. Rules are parsed into a small tagged AST and run
// by a tree-walking evaluator with no access to the host environment, the
// filesystem, or the network. Execution is bounded by a step budget and a
// deadline so an ill-formed rule cannot hang the process.
package rule

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokString
	tokPunct // operators and delimiters, Text holds the exact symbol
)

type token struct {
	Kind tokenKind
	Text string
	Num  float64
	Pos  int // byte offset in the source, for error messages
}

type lexer struct {
	src  string
	pos  int
	toks []token
}

// lex scans the whole source up front. Rule texts are short; a token slice
// keeps the parser trivial.
func lex(src string) ([]token, error) {
	l := &lexer{src: src}
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		l.toks = append(l.toks, tok)
		if tok.Kind == tokEOF {
			return l.toks, nil
		}
	}
}

var twoCharOps = []string{"==", "!=", "<=", ">=", "&&", "||"}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.src) && unicode.IsSpace(rune(l.src[l.pos])) {
		l.pos++
	}
	if l.pos >= len(l.src) {
		return token{Kind: tokEOF, Pos: l.pos}, nil
	}

	start := l.pos
	c := l.src[l.pos]

	switch {
	case c == '\'' || c == '"':
		return l.scanString(c)

	case c >= '0' && c <= '9':
		for l.pos < len(l.src) && (isDigit(l.src[l.pos]) || l.src[l.pos] == '.') {
			l.pos++
		}
		text := l.src[start:l.pos]
		n, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return token{}, fmt.Errorf("bad number %q at offset %d", text, start)
		}
		return token{Kind: tokNumber, Text: text, Num: n, Pos: start}, nil

	case isIdentStart(c):
		for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
			l.pos++
		}
		return token{Kind: tokIdent, Text: l.src[start:l.pos], Pos: start}, nil
	}

	rest := l.src[l.pos:]
	for _, op := range twoCharOps {
		if strings.HasPrefix(rest, op) {
			l.pos += 2
			return token{Kind: tokPunct, Text: op, Pos: start}, nil
		}
	}

	if strings.ContainsRune("+-*/%<>!?:.,()[]", rune(c)) {
		l.pos++
		return token{Kind: tokPunct, Text: string(c), Pos: start}, nil
	}

	return token{}, fmt.Errorf("unexpected character %q at offset %d", c, start)
}

func (l *lexer) scanString(quote byte) (token, error) {
	start := l.pos
	l.pos++ // opening quote
	var b strings.Builder
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == '\\' && l.pos+1 < len(l.src) {
			esc := l.src[l.pos+1]
			switch esc {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte(esc)
			}
			l.pos += 2
			continue
		}
		if c == quote {
			l.pos++
			return token{Kind: tokString, Text: b.String(), Pos: start}, nil
		}
		b.WriteByte(c)
		l.pos++
	}
	return token{}, fmt.Errorf("unterminated string at offset %d", start)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }
