package rule

import "fmt"

// The AST is a tagged variant: one struct per node kind, all implementing
// the private node marker.

// Node is a parsed expression node.
type Node interface{ node() }

// Lit is a literal: string, float64, bool, or nil.
type Lit struct{ Val any }

// ListLit is a list literal [a, b, c].
type ListLit struct{ Elems []Node }

// Ident resolves a name from the environment (a variable or record field).
type Ident struct{ Name string }

// Select is field access: x.name.
type Select struct {
	X    Node
	Name string
}

// Index is x[i].
type Index struct{ X, I Node }

// Call invokes a built-in function by name.
type Call struct {
	Name string
	Args []Node
}

// Unary is !x or -x.
type Unary struct {
	Op string
	X  Node
}

// Binary is a binary operator application.
type Binary struct {
	Op   string
	L, R Node
}

// Cond is the ternary cond ? then : else.
type Cond struct{ If, Then, Else Node }

func (Lit) node()     {}
func (ListLit) node() {}
func (Ident) node()   {}
func (Select) node()  {}
func (Index) node()   {}
func (Call) node()    {}
func (Unary) node()   {}
func (Binary) node()  {}
func (Cond) node()    {}

// Parse compiles rule source into an AST.
func Parse(src string) (Node, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	n, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.Kind != tokEOF {
		return nil, fmt.Errorf("unexpected %q at offset %d", tok.Text, tok.Pos)
	}
	return n, nil
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) advance() token {
	tok := p.toks[p.pos]
	if tok.Kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) acceptPunct(sym string) bool {
	if tok := p.peek(); tok.Kind == tokPunct && tok.Text == sym {
		p.pos++
		return true
	}
	return false
}

func (p *parser) expectPunct(sym string) error {
	tok := p.peek()
	if tok.Kind == tokPunct && tok.Text == sym {
		p.pos++
		return nil
	}
	return fmt.Errorf("expected %q at offset %d, found %q", sym, tok.Pos, tok.Text)
}

// Binary operator precedence, lowest first. Ternary sits below all of these.
var precedence = []([]string){
	{"||"},
	{"&&"},
	{"==", "!="},
	{"<", "<=", ">", ">="},
	{"+", "-"},
	{"*", "/", "%"},
}

func (p *parser) parseTernary() (Node, error) {
	cond, err := p.parseBinary(0)
	if err != nil {
		return nil, err
	}
	if !p.acceptPunct("?") {
		return cond, nil
	}
	then, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(":"); err != nil {
		return nil, err
	}
	els, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	return Cond{If: cond, Then: then, Else: els}, nil
}

func (p *parser) parseBinary(level int) (Node, error) {
	if level >= len(precedence) {
		return p.parseUnary()
	}
	left, err := p.parseBinary(level + 1)
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		if tok.Kind != tokPunct || !contains(precedence[level], tok.Text) {
			return left, nil
		}
		p.advance()
		right, err := p.parseBinary(level + 1)
		if err != nil {
			return nil, err
		}
		left = Binary{Op: tok.Text, L: left, R: right}
	}
}

func (p *parser) parseUnary() (Node, error) {
	if tok := p.peek(); tok.Kind == tokPunct && (tok.Text == "!" || tok.Text == "-") {
		p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Unary{Op: tok.Text, X: x}, nil
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() (Node, error) {
	x, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.acceptPunct("."):
			tok := p.advance()
			if tok.Kind != tokIdent {
				return nil, fmt.Errorf("expected field name after '.' at offset %d", tok.Pos)
			}
			x = Select{X: x, Name: tok.Text}
		case p.acceptPunct("["):
			i, err := p.parseTernary()
			if err != nil {
				return nil, err
			}
			if err := p.expectPunct("]"); err != nil {
				return nil, err
			}
			x = Index{X: x, I: i}
		default:
			return x, nil
		}
	}
}

func (p *parser) parsePrimary() (Node, error) {
	tok := p.advance()
	switch tok.Kind {
	case tokNumber:
		return Lit{Val: tok.Num}, nil
	case tokString:
		return Lit{Val: tok.Text}, nil
	case tokIdent:
		switch tok.Text {
		case "true":
			return Lit{Val: true}, nil
		case "false":
			return Lit{Val: false}, nil
		case "null":
			return Lit{Val: nil}, nil
		}
		if p.acceptPunct("(") {
			return p.parseCall(tok.Text)
		}
		return Ident{Name: tok.Text}, nil
	case tokPunct:
		switch tok.Text {
		case "(":
			n, err := p.parseTernary()
			if err != nil {
				return nil, err
			}
			if err := p.expectPunct(")"); err != nil {
				return nil, err
			}
			return n, nil
		case "[":
			return p.parseList()
		}
	}
	return nil, fmt.Errorf("unexpected %q at offset %d", tok.Text, tok.Pos)
}

func (p *parser) parseCall(name string) (Node, error) {
	var args []Node
	if p.acceptPunct(")") {
		return Call{Name: name}, nil
	}
	for {
		arg, err := p.parseTernary()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.acceptPunct(",") {
			continue
		}
		if err := p.expectPunct(")"); err != nil {
			return nil, err
		}
		return Call{Name: name, Args: args}, nil
	}
}

func (p *parser) parseList() (Node, error) {
	var elems []Node
	if p.acceptPunct("]") {
		return ListLit{}, nil
	}
	for {
		elem, err := p.parseTernary()
		if err != nil {
			return nil, err
		}
		elems = append(elems, elem)
		if p.acceptPunct(",") {
			continue
		}
		if err := p.expectPunct("]"); err != nil {
			return nil, err
		}
		return ListLit{Elems: elems}, nil
	}
}

func contains(items []string, s string) bool {
	for _, item := range items {
		if item == s {
			return true
		}
	}
	return false
}
