// parser.go implements a hand-written precedence-climbing parser over the
// token stream produced by the lexer: no separate grammar file or
// generated parser table, just recursive descent over the lexer's items.
package frontend

import (
	"fmt"
	"strconv"

	"genko/src/ast"
)

// precLevel describes one row of the operator precedence table.
type precLevel struct {
	prec  int
	right bool
	op    ast.BinaryOp
}

// precTable maps every binary-operator token to its precedence level,
// associativity and ast.BinaryOp. Tightest-binding operator (Pow) gets the
// highest numeric precedence so that parseBinary's climbing loop naturally
// recurses into it last.
var precTable = map[itemType]precLevel{
	EQ:          {1, false, ast.Eq},
	NE:          {1, false, ast.Ne},
	itemType('<'): {1, false, ast.Lt},
	LE:          {1, false, ast.Le},
	itemType('>'): {1, false, ast.Gt},
	GE:          {1, false, ast.Ge},
	AND:         {1, false, ast.And},
	OR:          {1, false, ast.Or},
	itemType('+'): {2, false, ast.Add},
	itemType('-'): {2, false, ast.Sub},
	itemType('*'): {3, false, ast.Mul},
	itemType('/'): {3, false, ast.Div},
	itemType('%'): {3, false, ast.Modulo},
	itemType('^'): {4, true, ast.Pow},
}

// parser turns a token stream into a sequence of top-level ast.Node values.
type parser struct {
	l   *lexer
	tok item
}

// Parse parses source code into a sequence of top-level program expressions.
// Empty top-level entries (stray semicolons) are discarded. Parse failure is
// fatal and reported with the offending token's line:column; there is no
// error recovery.
func Parse(src string) ([]ast.Node, error) {
	l := newLexer(src, lexGlobal)
	go l.run()

	p := &parser{l: l}
	p.advance()

	nodes := make([]ast.Node, 0, 8)
	for {
		for p.at(itemType(';')) {
			p.advance()
		}
		if p.at(itemEOF) {
			break
		}
		n, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
		for p.at(itemType(';')) {
			p.advance()
		}
	}
	return nodes, nil
}

func (p *parser) advance() {
	p.tok = p.l.nextItem()
}

func (p *parser) at(typ itemType) bool {
	return p.tok.typ == typ
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("parse error at line %d:%d: %s", p.tok.line, p.tok.pos, fmt.Sprintf(format, args...))
}

func (p *parser) expect(typ itemType, what string) (item, error) {
	if p.tok.typ == itemError {
		return item{}, p.errorf("%s", p.tok.val)
	}
	if p.tok.typ != typ {
		return item{}, p.errorf("expected %s, got %q", what, p.tok.val)
	}
	tok := p.tok
	p.advance()
	return tok, nil
}

// parseExpr parses one top-level-or-nested expression: the statement-like
// forms (let/global/fn/if/while/return/assignment) or, failing those, a
// precedence-climbed binary expression.
func (p *parser) parseExpr() (ast.Node, error) {
	switch p.tok.typ {
	case itemError:
		return nil, p.errorf("%s", p.tok.val)
	case LET:
		return p.parseInit()
	case GLOBAL:
		return p.parseGlobalInit()
	case FN:
		return p.parseFunc()
	case IF:
		return p.parseCond()
	case WHILE:
		return p.parseWhile()
	case RETURN:
		return p.parseReturn()
	case IDENTIFIER:
		// Could be a bare assignment `ident = expr`; look ahead one token.
		name := p.tok.val
		p.advance()
		if p.at(itemType('=')) {
			p.advance()
			rhs, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			return &ast.Assign{Ident: &ast.Ident{Name: name}, Expr: rhs}, nil
		}
		// Not an assignment: the identifier (or call) is an ordinary
		// primary. Feed it straight into the precedence climber rather
		// than re-parsing it from scratch.
		var lhs ast.Node
		if p.at(itemType('(')) {
			call, err := p.parseCall(name)
			if err != nil {
				return nil, err
			}
			lhs = call
		} else {
			lhs = &ast.Ident{Name: name}
		}
		return p.climb(lhs, 1)
	default:
		return p.parseBinary(1)
	}
}

func (p *parser) parseInit() (ast.Node, error) {
	p.advance() // 'let'
	id, err := p.expect(IDENTIFIER, "identifier")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(itemType('='), "'='"); err != nil {
		return nil, err
	}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.Init{Ident: &ast.Ident{Name: id.val}, Expr: expr}, nil
}

func (p *parser) parseGlobalInit() (ast.Node, error) {
	p.advance() // 'global'
	id, err := p.expect(IDENTIFIER, "identifier")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(itemType('='), "'='"); err != nil {
		return nil, err
	}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.GlobalInit{Ident: &ast.Ident{Name: id.val}, Expr: expr}, nil
}

func (p *parser) parseFunc() (ast.Node, error) {
	p.advance() // 'fn'
	id, err := p.expect(IDENTIFIER, "function name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(itemType('('), "'('"); err != nil {
		return nil, err
	}
	args := make([]string, 0, 4)
	for !p.at(itemType(')')) {
		a, err := p.expect(IDENTIFIER, "parameter name")
		if err != nil {
			return nil, err
		}
		args = append(args, a.val)
		if p.at(itemType(',')) {
			p.advance()
		}
	}
	p.advance() // ')'
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.Func{Ident: &ast.Ident{Name: id.val}, Args: args, Body: body}, nil
}

func (p *parser) parseCond() (ast.Node, error) {
	p.advance() // 'if'
	cond, err := p.parseBinary(1)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(THEN, "'then'"); err != nil {
		return nil, err
	}
	cons, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	var alter ast.Node
	if p.at(ELSE) {
		p.advance()
		alter, err = p.parseBlock()
		if err != nil {
			return nil, err
		}
	}
	return &ast.Cond{Cond: cond, Cons: cons, Alter: alter}, nil
}

func (p *parser) parseWhile() (ast.Node, error) {
	p.advance() // 'while'
	cond, err := p.parseBinary(1)
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.While{Cond: cond, Body: body}, nil
}

func (p *parser) parseReturn() (ast.Node, error) {
	p.advance() // 'return'
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.Return{Ret: expr}, nil
}

// parseBlock parses a `{ ... }` sequence of semicolon-separated expressions.
func (p *parser) parseBlock() (*ast.Block, error) {
	if _, err := p.expect(itemType('{'), "'{'"); err != nil {
		return nil, err
	}
	children := make([]ast.Node, 0, 4)
	for !p.at(itemType('}')) {
		for p.at(itemType(';')) {
			p.advance()
		}
		if p.at(itemType('}')) {
			break
		}
		n, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		children = append(children, n)
		for p.at(itemType(';')) {
			p.advance()
		}
	}
	if _, err := p.expect(itemType('}'), "'}'"); err != nil {
		return nil, err
	}
	return &ast.Block{Children: children}, nil
}

// parseBinary implements precedence climbing starting from the current
// token, requiring at least precedence minPrec to continue consuming
// infix operators.
func (p *parser) parseBinary(minPrec int) (ast.Node, error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return p.climb(lhs, minPrec)
}

func (p *parser) climb(lhs ast.Node, minPrec int) (ast.Node, error) {
	for {
		level, ok := precTable[p.tok.typ]
		if !ok || level.prec < minPrec {
			return lhs, nil
		}
		op := level.op
		p.advance()

		nextMin := level.prec + 1
		if level.right {
			nextMin = level.prec
		}
		rhs, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		rhs, err = p.climb(rhs, nextMin)
		if err != nil {
			return nil, err
		}
		lhs = &ast.Binary{Op: op, Lhs: lhs, Rhs: rhs}
	}
}

// parseUnary parses prefix operators, which bind tighter than any binary
// operator.
func (p *parser) parseUnary() (ast.Node, error) {
	switch p.tok.typ {
	case itemType('-'):
		p.advance()
		child, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Op: ast.Neg, Child: child}, nil
	case itemType('!'):
		p.advance()
		child, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Op: ast.Not, Child: child}, nil
	default:
		return p.parsePrimary()
	}
}

// parsePrimary parses the tightest-binding expression forms: literals,
// identifiers, calls and parenthesised/blocked sub-expressions.
func (p *parser) parsePrimary() (ast.Node, error) {
	tok := p.tok
	switch tok.typ {
	case NUMBER:
		p.advance()
		v, err := strconv.ParseFloat(tok.val, 64)
		if err != nil {
			return nil, p.errorf("invalid numeric literal %q: %s", tok.val, err)
		}
		return &ast.Number{Value: v}, nil
	case TRUE:
		p.advance()
		return &ast.Bool{Value: true}, nil
	case FALSE:
		p.advance()
		return &ast.Bool{Value: false}, nil
	case IDENTIFIER:
		p.advance()
		if p.at(itemType('(')) {
			return p.parseCall(tok.val)
		}
		return &ast.Ident{Name: tok.val}, nil
	case itemType('('):
		p.advance()
		expr, err := p.parseBinary(1)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(itemType(')'), "')'"); err != nil {
			return nil, err
		}
		return expr, nil
	case itemType('{'):
		return p.parseBlock()
	case itemError:
		return nil, p.errorf("%s", tok.val)
	default:
		return nil, p.errorf("unexpected token %q", tok.val)
	}
}

func (p *parser) parseCall(name string) (ast.Node, error) {
	if _, err := p.expect(itemType('('), "'('"); err != nil {
		return nil, err
	}
	args := make([]ast.Node, 0, 4)
	for !p.at(itemType(')')) {
		a, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		if p.at(itemType(',')) {
			p.advance()
		}
	}
	if _, err := p.expect(itemType(')'), "')'"); err != nil {
		return nil, err
	}
	return &ast.Call{Ident: &ast.Ident{Name: name}, Args: args}, nil
}
