package elaborate

import (
	"github.com/jakubDoka/prometh/internal/ast"
	cerrors "github.com/jakubDoka/prometh/internal/errors"
	"github.com/jakubDoka/prometh/internal/symtable"
	"github.com/jakubDoka/prometh/internal/typerealm"
)

// funcCtx carries everything statement/expression elaboration needs for
// one function: its body being built, the variable scope chain, the
// enclosing loop stack (for break), and the owning module (for name
// resolution).
type funcCtx struct {
	e      *Elaborator
	mod    symtable.Direct
	fn     symtable.Direct
	body   *typerealm.FunBody
	scopes *scopeStack
	loops  loopStack
}

func (e *Elaborator) elaborateBody(mod, fn symtable.Direct, fnNode *ast.Node) {
	body := e.Realm.NewBody(fn)
	ctx := &funcCtx{e: e, mod: mod, fn: fn, body: body, scopes: newScopeStack()}

	sig := e.Realm.Functions.Index(fn).Signature
	groups := fnNode.Children[:fnNode.ParamGroupCount]

	// Bind parameter names to fresh values, in declaration order, typed
	// from the already-resolved signature.
	pIdx := 0
	for _, g := range groups {
		names := g.Children[:len(g.Children)-1]
		for _, n := range names {
			v := body.NewValue(sig.Params[pIdx], false, n.Token.Value)
			ctx.scopes.define(n.Token.Value, v, false)
			pIdx++
		}
	}

	rest := fnNode.Children[fnNode.ParamGroupCount+1:]
	bodyList := rest[len(rest)-1]

	cur := body.Entry
	ctx.statementList(cur, bodyList)
}

// statementList elaborates every statement in list in order, threading
// the current chunk through, and returns the chunk execution continues
// in afterward.
func (c *funcCtx) statementList(cur symtable.Direct, list *ast.Node) symtable.Direct {
	for i, stmt := range list.Children {
		isLast := i == len(list.Children)-1
		cur = c.statement(cur, stmt, isLast)
	}
	return cur
}

// statement elaborates one statement, returning the chunk control flow
// continues in. isLast marks the final statement of an enclosing block;
// statement does not read it.
func (c *funcCtx) statement(cur symtable.Direct, n *ast.Node, isLast bool) symtable.Direct {
	switch n.Kind {
	case ast.ReturnStatement:
		return c.returnStatement(cur, n)
	case ast.VarStatement:
		return c.varStatement(cur, n)
	case ast.Break:
		return c.breakStatement(cur, n)
	case ast.Loop:
		return c.loopStatement(cur, n)
	case ast.IfExpression:
		next, _, _ := c.ifExpression(cur, n, false)
		return next
	default:
		_, next := c.expr(cur, n)
		return next
	}
}

func (c *funcCtx) emit(chunk symtable.Direct, inst typerealm.Inst) {
	c.body.Emit(chunk, inst)
}

func (c *funcCtx) returnStatement(cur symtable.Direct, n *ast.Node) symtable.Direct {
	var val symtable.Direct = symtable.Null
	if len(n.Children) > 0 {
		val, cur = c.expr(cur, n.Children[0])
	}
	c.emit(cur, typerealm.Inst{Kind: typerealm.Return, Value: val})
	return cur
}

func (c *funcCtx) varStatement(cur symtable.Direct, n *ast.Node) symtable.Direct {
	typeNode := n.Children[0]
	initNode := n.Children[1]

	typ := symtable.Null
	initVal := symtable.Null
	hasInit := initNode != nil

	if hasInit {
		initVal, cur = c.expr(cur, initNode)
		typ = c.body.Values.Index(initVal).Type
	}
	if typeNode != nil {
		declared, ok := c.e.findType(typeNode.Token.Value)
		if !ok {
			c.e.error(typeNode.Token, cerrors.ResUnknownType, "unknown type %q", typeNode.Token.Value)
		} else {
			typ = declared
		}
	}

	v := c.body.NewValue(typ, n.Mutable, n.Token.Value)
	if hasInit {
		c.emit(cur, typerealm.Inst{Kind: typerealm.VarDecl, Result: v, Init: initVal})
	} else {
		c.emit(cur, typerealm.Inst{Kind: typerealm.ZeroValue, Result: v})
	}
	c.scopes.define(n.Token.Value, v, n.Mutable)
	return cur
}

func (c *funcCtx) breakStatement(cur symtable.Direct, n *ast.Node) symtable.Direct {
	label := n.Token.Value
	frame, ok := c.loops.find(label)
	if !ok {
		if len(c.loops.frames) == 0 {
			c.e.error(n.Token, cerrors.ElbBreakOutsideLoop, "break used outside any loop")
		} else {
			c.e.error(n.Token, cerrors.ElbUnknownLabel, "break targets unknown loop label %q", label)
		}
		return cur
	}

	if len(n.Children) > 0 {
		val, nextCur := c.expr(cur, n.Children[0])
		cur = nextCur
		typ := c.body.Values.Index(val).Type
		if !frame.hasValue {
			frame.breakValueSlot = c.body.NewValue(typ, true, "")
			frame.valueType = typ
			frame.hasValue = true
		} else if frame.valueType != typ {
			c.e.error(n.Token, cerrors.ElbConflictingBreakVal, "break value type disagrees with an earlier break targeting %q", label)
		}
		c.emit(cur, typerealm.Inst{Kind: typerealm.Assign, Target: frame.breakValueSlot, Source: val})
	}

	ent := c.body.Chunks.Index(cur)
	ent.Next = frame.exitChunk

	return c.body.NewChunk() // dead code after an unconditional break lands here
}

func (c *funcCtx) loopStatement(cur symtable.Direct, n *ast.Node) symtable.Direct {
	header := c.body.NewChunk()
	exit := c.body.NewChunk()

	c.body.Chunks.Index(cur).Next = header

	frame := &loopFrame{label: n.Token.Value, exitChunk: exit, breakValueSlot: symtable.Null}
	c.loops.push(frame)
	c.scopes.push()
	bodyEnd := c.statementList(header, n.Children[0])
	c.scopes.pop()
	c.loops.pop()

	endEnt := c.body.Chunks.Index(bodyEnd)
	if endEnt.Next == symtable.Null && endEnt.Cond == symtable.Null {
		endEnt.Next = header // loop back to the top
	}

	return exit
}

// ifExpression lowers an if/else into then/else/merge chunks. When
// asValue is true, the last statement of each branch must be a bare
// expression supplying that branch's contribution to a merge value;
// an absent else branch, or a branch whose last statement is not an
// expression, is reported as an error and nothing is assigned to the
// merge value on that path; elaboration of the enclosing expression
// continues.
func (c *funcCtx) ifExpression(cur symtable.Direct, n *ast.Node, asValue bool) (symtable.Direct, symtable.Direct, symtable.Direct) {
	cond, cur := c.expr(cur, n.Children[0])

	thenChunk := c.body.NewChunk()
	elseChunk := c.body.NewChunk()
	merge := c.body.NewChunk()

	ent := c.body.Chunks.Index(cur)
	ent.Cond = cond
	ent.Then = thenChunk
	ent.Next = elseChunk

	var mergeVal symtable.Direct = symtable.Null
	if asValue {
		mergeVal = c.body.NewValue(symtable.Null, true, "")
	}

	hasElse := len(n.Children) > 2

	thenEnd := c.elaborateBranch(thenChunk, n.Children[1], asValue, mergeVal)
	if c.body.Chunks.Index(thenEnd).Next == symtable.Null && c.body.Chunks.Index(thenEnd).Cond == symtable.Null {
		c.body.Chunks.Index(thenEnd).Next = merge
	}

	if hasElse {
		elseEnd := c.elaborateBranch(elseChunk, n.Children[2], asValue, mergeVal)
		if c.body.Chunks.Index(elseEnd).Next == symtable.Null && c.body.Chunks.Index(elseEnd).Cond == symtable.Null {
			c.body.Chunks.Index(elseEnd).Next = merge
		}
	} else {
		if asValue {
			c.e.error(n.Token, cerrors.ElbMissingElse, "if used as a value needs an else branch")
		}
		c.body.Chunks.Index(elseChunk).Next = merge
	}

	return merge, mergeVal, cond
}

// elaborateBranch elaborates one if-branch's StatementList. When
// asValue is set, the branch's last statement must be an expression
// statement whose value is Assign'd into mergeVal.
func (c *funcCtx) elaborateBranch(cur symtable.Direct, list *ast.Node, asValue bool, mergeVal symtable.Direct) symtable.Direct {
	c.scopes.push()
	defer c.scopes.pop()

	if !asValue || len(list.Children) == 0 {
		return c.statementList(cur, list)
	}

	for i, stmt := range list.Children[:len(list.Children)-1] {
		cur = c.statement(cur, stmt, i == len(list.Children)-2)
	}
	last := list.Children[len(list.Children)-1]
	switch last.Kind {
	case ast.ReturnStatement, ast.VarStatement, ast.Break, ast.Loop:
		cur = c.statement(cur, last, true)
		c.e.error(last.Token, cerrors.ElbMissingValueInElse, "branch must end in an expression to supply the if's value")
	default:
		val, next := c.expr(cur, last)
		cur = next
		c.emit(cur, typerealm.Inst{Kind: typerealm.Assign, Target: mergeVal, Source: val})
	}
	return cur
}
