// Package parser turns a lexer.Lexer token stream into an ast.Node tree.
// It is a straightforward recursive-descent parser with a Pratt-style
// precedence table for binary expressions; the one irregular piece is
// attribute handling, which keeps a push/pop stack so a `#push` block's
// attribute lines apply to every function until the matching `#pop`,
// while a bare attribute line applies only to the function that
// immediately follows it.
package parser

import (
	"github.com/jakubDoka/prometh/internal/ast"
	cerrors "github.com/jakubDoka/prometh/internal/errors"
	"github.com/jakubDoka/prometh/internal/lexer"
)

// Parser holds the state for one file's parse.
type Parser struct {
	lex  *lexer.Lexer
	cur  lexer.Token
	peek lexer.Token

	errs []*cerrors.Error

	globalAttrs  []*ast.Node // accumulated inside a #push/#pop bracket
	pushDepth    int
	pendingAttrs []*ast.Node // attached to the very next function only
	defaultAttrs []*ast.Node // project-wide defaults, seeded once, never cleared by #pop
}

// New creates a Parser over src, which must already be lexer.Normalize'd.
func New(src []byte, file string) *Parser {
	p := &Parser{lex: lexer.New(src, file)}
	p.advance()
	p.advance()
	return p
}

// SeedDefaultAttributes installs project-wide default attribute values
// (internal/config's prometh.yaml default_attributes) so every function
// in the file picks them up as if they were the outermost `#push`
// bracket — unlike a real #push, these survive every #pop in the file
// (there is no file-level #push the user wrote to balance), and an
// explicit attribute of the same name on a given function still wins
// since applyAttributes applies function-local attributes after
// globals. Must be called before Parse.
func (p *Parser) SeedDefaultAttributes(defaults map[string]string) {
	file := p.cur.File
	for name, value := range defaults {
		nameTok := lexer.Token{Kind: lexer.IDENT, Value: name, File: file}
		valTok := lexer.Token{Kind: lexer.IDENT, Value: value, File: file}
		attr := ast.New(ast.Attribute, nameTok)
		attr.Global = true
		attr.Children = append(attr.Children, ast.New(ast.Identifier, valTok))
		p.defaultAttrs = append(p.defaultAttrs, attr)
	}
}

// Errors returns every error recorded during Parse, in the order found.
func (p *Parser) Errors() []*cerrors.Error { return p.errs }

func (p *Parser) advance() {
	p.cur = p.peek
	p.peek = p.lex.NextToken()
}

func (p *Parser) error(code cerrors.Code, format string, args ...any) {
	p.errs = append(p.errs, cerrors.At(code, p.cur, format, args...))
}

func (p *Parser) expect(k lexer.Kind) lexer.Token {
	tok := p.cur
	if p.cur.Kind != k {
		p.error(cerrors.ParUnexpectedToken, "expected %s, got %s %q", k, p.cur.Kind, p.cur.Value)
	} else {
		p.advance()
	}
	return tok
}

func (p *Parser) skipNewlines() {
	for p.cur.Kind == lexer.NEWLINE {
		p.advance()
	}
}

// Parse consumes the whole token stream and returns the File node. Parse
// errors are accumulated (see Errors), not returned directly, so a
// caller can report every syntax problem in one pass instead of
// stopping at the first one — matching the original driver's
// print-everything-then-exit behavior.
func (p *Parser) Parse() *ast.Node {
	file := ast.New(ast.File, lexer.Token{})
	p.skipNewlines()
	for p.cur.Kind != lexer.EOF {
		switch p.cur.Kind {
		case lexer.USE:
			file.Children = append(file.Children, p.useStatement())
		case lexer.HASH:
			p.attributeLine()
		case lexer.FUN:
			file.Children = append(file.Children, p.function())
		default:
			p.error(cerrors.ParUnexpectedToken, "unexpected top-level token %s %q", p.cur.Kind, p.cur.Value)
			p.advance()
		}
		p.skipNewlines()
	}
	return file
}

func (p *Parser) useStatement() *ast.Node {
	tok := p.cur
	p.advance() // 'use'
	path := p.expect(lexer.STRING)
	n := ast.New(ast.UseStatement, path)
	n.External = true
	_ = tok
	if p.cur.Kind == lexer.AS {
		p.advance()
		alias := p.expect(lexer.IDENT)
		n.Children = append(n.Children, ast.New(ast.Identifier, alias))
	}
	return n
}

// attributeLine handles one `#name args...` line, `#push`, or `#pop`.
// It mutates the parser's attribute-stack state rather than returning a
// node directly — Function picks the accumulated attributes up when it
// is parsed next.
func (p *Parser) attributeLine() {
	p.advance() // '#'
	name := p.expect(lexer.IDENT)

	switch name.Value {
	case "push":
		p.pushDepth++
		return
	case "pop":
		if p.pushDepth == 0 {
			p.error(cerrors.AtrUnbalancedPush, "#pop without matching #push")
		} else {
			p.pushDepth--
			if p.pushDepth == 0 {
				p.globalAttrs = nil
			}
		}
		return
	}

	attr := ast.New(ast.Attribute, name)
	attr.Global = p.pushDepth > 0
	for p.cur.Kind != lexer.NEWLINE && p.cur.Kind != lexer.EOF {
		attr.Children = append(attr.Children, p.attrArg())
	}
	if attr.Global {
		p.globalAttrs = append(p.globalAttrs, attr)
	} else {
		p.pendingAttrs = append(p.pendingAttrs, attr)
	}
}

func (p *Parser) attrArg() *ast.Node {
	tok := p.cur
	switch tok.Kind {
	case lexer.IDENT:
		p.advance()
		return ast.New(ast.Identifier, tok)
	default:
		p.advance()
		return ast.New(ast.Literal, tok)
	}
}

// takeAttributes returns every attribute in scope for the function about
// to be parsed (global ones first, then the function-specific ones),
// and clears the function-specific buffer.
func (p *Parser) takeAttributes() []*ast.Node {
	out := make([]*ast.Node, 0, len(p.defaultAttrs)+len(p.globalAttrs)+len(p.pendingAttrs))
	out = append(out, p.defaultAttrs...)
	out = append(out, p.globalAttrs...)
	out = append(out, p.pendingAttrs...)
	p.pendingAttrs = nil
	return out
}

func (p *Parser) function() *ast.Node {
	attrs := p.takeAttributes()
	p.advance() // 'fun'
	name := p.expect(lexer.IDENT)
	p.expect(lexer.LPAREN)

	var groups []*ast.Node
	if p.cur.Kind != lexer.RPAREN {
		groups = append(groups, p.paramGroup())
		for p.cur.Kind == lexer.SEMI {
			p.advance()
			groups = append(groups, p.paramGroup())
		}
	}
	p.expect(lexer.RPAREN)
	p.expect(lexer.ARROW)
	retType := ast.New(ast.Identifier, p.expect(lexer.IDENT))

	fn := ast.New(ast.Function, name)
	fn.ParamGroupCount = len(groups)
	fn.Children = append(fn.Children, groups...)
	fn.Children = append(fn.Children, retType)
	fn.Children = append(fn.Children, attrs...)

	body := p.block()
	fn.Children = append(fn.Children, body)
	return fn
}

func (p *Parser) paramGroup() *ast.Node {
	group := ast.New(ast.ParamGroup, p.cur)
	names := []*ast.Node{ast.New(ast.Identifier, p.expect(lexer.IDENT))}
	for p.cur.Kind == lexer.COMMA {
		p.advance()
		names = append(names, ast.New(ast.Identifier, p.expect(lexer.IDENT)))
	}
	p.expect(lexer.COLON)
	typ := ast.New(ast.Identifier, p.expect(lexer.IDENT))
	group.Children = append(names, typ)
	return group
}

// block parses the body after a ':' — either a single inline statement
// on the same line, or a NEWLINE + INDENT + statements + DEDENT block.
func (p *Parser) block() *ast.Node {
	p.expect(lexer.COLON)
	if p.cur.Kind == lexer.NEWLINE {
		p.advance()
		p.expect(lexer.INDENT)
		list := p.statementList()
		p.expect(lexer.DEDENT)
		return list
	}
	list := ast.New(ast.StatementList, p.cur)
	list.Children = append(list.Children, p.statement())
	return list
}

func (p *Parser) statementList() *ast.Node {
	list := ast.New(ast.StatementList, p.cur)
	p.skipNewlines()
	for p.cur.Kind != lexer.DEDENT && p.cur.Kind != lexer.EOF {
		list.Children = append(list.Children, p.statement())
		p.skipNewlines()
	}
	return list
}

func (p *Parser) statement() *ast.Node {
	switch p.cur.Kind {
	case lexer.RETURN:
		return p.returnStatement()
	case lexer.VAR:
		return p.varStatement()
	case lexer.BREAK:
		return p.breakStatement()
	case lexer.LOOP:
		return p.loopStatement()
	case lexer.IF:
		return p.ifExpression()
	default:
		n := p.expr()
		p.endOfStatement()
		return n
	}
}

// endOfStatement consumes the NEWLINE (or EOF/DEDENT/ELSE lookahead, the
// last ending an inline then-branch) that terminates a simple statement;
// block-bodied statements (if, loop) close themselves and never call this.
func (p *Parser) endOfStatement() {
	if p.cur.Kind == lexer.NEWLINE {
		p.advance()
		return
	}
	if p.cur.Kind == lexer.EOF || p.cur.Kind == lexer.DEDENT || p.cur.Kind == lexer.ELSE {
		return
	}
	p.error(cerrors.ParUnexpectedToken, "expected end of statement, got %s %q", p.cur.Kind, p.cur.Value)
}

func (p *Parser) returnStatement() *ast.Node {
	tok := p.cur
	p.advance()
	n := ast.New(ast.ReturnStatement, tok)
	if p.cur.Kind != lexer.NEWLINE && p.cur.Kind != lexer.EOF && p.cur.Kind != lexer.DEDENT {
		n.Children = append(n.Children, p.expr())
	}
	p.endOfStatement()
	return n
}

func (p *Parser) varStatement() *ast.Node {
	p.advance() // 'var'
	mutable := false
	if p.cur.Kind == lexer.MUT {
		mutable = true
		p.advance()
	}
	name := p.expect(lexer.IDENT)
	n := ast.New(ast.VarStatement, name)
	n.Mutable = mutable

	if p.cur.Kind == lexer.IDENT {
		n.Children = append(n.Children, ast.New(ast.Identifier, p.cur))
		p.advance()
	} else {
		n.Children = append(n.Children, nil)
	}

	if p.cur.Kind == lexer.OP && p.cur.Value == "=" {
		p.advance()
		n.Children = append(n.Children, p.expr())
	} else {
		n.Children = append(n.Children, nil)
	}
	if n.Children[0] == nil && n.Children[1] == nil {
		p.error(cerrors.ParUnexpectedToken, "var %q needs a type or an initializer", name.Value)
	}

	p.endOfStatement()
	return n
}

func (p *Parser) breakStatement() *ast.Node {
	p.advance() // 'break'
	label := p.expect(lexer.IDENT)
	n := ast.New(ast.Break, label)
	if p.cur.Kind != lexer.NEWLINE && p.cur.Kind != lexer.EOF && p.cur.Kind != lexer.DEDENT {
		n.Children = append(n.Children, p.expr())
	}
	p.endOfStatement()
	return n
}

func (p *Parser) loopStatement() *ast.Node {
	tok := p.cur
	p.advance() // 'loop'
	label := tok
	if p.cur.Kind == lexer.IDENT {
		label = p.cur
		p.advance()
	}
	n := ast.New(ast.Loop, label)
	n.Children = append(n.Children, p.block())
	return n
}

func (p *Parser) ifExpression() *ast.Node {
	tok := p.cur
	p.advance() // 'if'
	cond := p.expr()
	then := p.block()
	n := ast.New(ast.IfExpression, tok, cond, then)
	p.skipNewlines()
	if p.cur.Kind == lexer.ELSE {
		p.advance()
		els := p.block()
		n.Children = append(n.Children, els)
	}
	return n
}

// Expression parsing: precedence-climbing over a fixed operator table.
// Assignment ('=') binds loosest and is right-associative; everything
// else is left-associative.

var precedence = map[string]int{
	"=":  1,
	"||": 2,
	"^^": 2,
	"&&": 3,
	"==": 4, "!=": 4,
	"<": 5, ">": 5, "<=": 5, ">=": 5,
	"|": 6,
	"^": 7,
	"&": 8,
	"<<": 9, ">>": 9,
	"+": 10, "-": 10,
	"*": 11, "/": 11, "%": 11,
}

func (p *Parser) expr() *ast.Node {
	return p.binary(0)
}

func (p *Parser) binary(minPrec int) *ast.Node {
	lhs := p.unary()
	for p.cur.Kind == lexer.OP {
		prec, ok := precedence[p.cur.Value]
		if !ok || prec < minPrec {
			break
		}
		opTok := p.cur
		p.advance()
		nextMin := prec + 1
		if opTok.Value == "=" {
			nextMin = prec // right-associative
		}
		rhs := p.binary(nextMin)
		lhs = ast.New(ast.BinaryOperation, opTok, lhs, rhs)
	}
	return lhs
}

func (p *Parser) unary() *ast.Node {
	if p.cur.Kind == lexer.OP && (p.cur.Value == "-" || p.cur.Value == "!") {
		op := p.cur
		p.advance()
		operand := p.unary()
		zero := ast.New(ast.Literal, lexer.Token{Kind: lexer.INT, Value: "0"})
		return ast.New(ast.BinaryOperation, op, zero, operand)
	}
	return p.primary()
}

func (p *Parser) primary() *ast.Node {
	tok := p.cur
	switch tok.Kind {
	case lexer.INT, lexer.UINT, lexer.FLOAT, lexer.BOOL, lexer.CHAR, lexer.STRING:
		p.advance()
		return ast.New(ast.Literal, tok)
	case lexer.IF:
		return p.ifExpression()
	case lexer.LPAREN:
		p.advance()
		inner := p.expr()
		p.expect(lexer.RPAREN)
		return ast.New(ast.Group, tok, inner)
	case lexer.IDENT:
		p.advance()
		if p.cur.Kind == lexer.LPAREN {
			return p.call(tok)
		}
		return ast.New(ast.Identifier, tok)
	default:
		p.error(cerrors.ParUnexpectedToken, "unexpected token %s %q in expression", tok.Kind, tok.Value)
		p.advance()
		return ast.New(ast.Literal, tok)
	}
}

func (p *Parser) call(name lexer.Token) *ast.Node {
	p.advance() // '('
	n := ast.New(ast.Call, name)
	if p.cur.Kind != lexer.RPAREN {
		n.Children = append(n.Children, p.expr())
		for p.cur.Kind == lexer.COMMA {
			p.advance()
			n.Children = append(n.Children, p.expr())
		}
	}
	p.expect(lexer.RPAREN)
	return n
}
