package elaborate

import (
	"github.com/jakubDoka/prometh/internal/ast"
	cerrors "github.com/jakubDoka/prometh/internal/errors"
	"github.com/jakubDoka/prometh/internal/lexer"
	"github.com/jakubDoka/prometh/internal/symtable"
	"github.com/jakubDoka/prometh/internal/typerealm"
)

// expr elaborates n, returning the Value holding its result and the
// chunk execution continues in (most expressions don't branch, so this
// is usually just cur back unchanged).
func (c *funcCtx) expr(cur symtable.Direct, n *ast.Node) (symtable.Direct, symtable.Direct) {
	switch n.Kind {
	case ast.Literal:
		return c.literal(cur, n)
	case ast.Identifier:
		return c.identifier(cur, n)
	case ast.Call:
		return c.call(cur, n)
	case ast.Group:
		return c.expr(cur, n.Children[0])
	case ast.BinaryOperation:
		return c.binaryOperation(cur, n)
	case ast.IfExpression:
		merge, val, _ := c.ifExpression(cur, n, true)
		return val, merge
	default:
		c.e.error(n.Token, cerrors.ParUnexpectedToken, "node of kind %v is not a valid expression", n.Kind)
		return symtable.Null, cur
	}
}

func (c *funcCtx) literal(cur symtable.Direct, n *ast.Node) (symtable.Direct, symtable.Direct) {
	var typ symtable.Direct
	lit := typerealm.LitValue{}

	switch n.Token.Kind {
	case lexer.INT:
		typ = c.bitsToIntType(n.Token.Bits, true)
		lit.Int = n.Token.IntValue
	case lexer.UINT:
		typ = c.bitsToIntType(n.Token.Bits, false)
		lit.Uint = n.Token.UintValue
	case lexer.FLOAT:
		if n.Token.Bits == 32 {
			typ = c.e.Realm.Types.F32
		} else {
			typ = c.e.Realm.Types.F64
		}
		lit.Float = n.Token.FloatValue
	case lexer.BOOL:
		typ = c.e.Realm.Types.Bool
		lit.Bool = n.Token.BoolValue
	case lexer.CHAR:
		typ = c.e.Realm.Types.U8
		lit.Uint = uint64(n.Token.CharValue)
	case lexer.STRING:
		byteType, _ := c.e.findType("u8")
		typ = c.e.Realm.Types.InternPointer(byteType)
		lit.Bytes = n.Token.StringValue
	default:
		c.e.error(n.Token, cerrors.ParInvalidLiteral, "unrecognized literal token %v", n.Token.Kind)
	}

	v := c.body.NewValue(typ, false, "")
	c.emit(cur, typerealm.Inst{Kind: typerealm.Literal, Result: v, Lit: lit})
	return v, cur
}

func (c *funcCtx) bitsToIntType(bits int, signed bool) symtable.Direct {
	t := c.e.Realm.Types
	switch {
	case signed && bits <= 8:
		return t.I8
	case signed && bits <= 16:
		return t.I16
	case signed && bits <= 32:
		return t.I32
	case signed:
		return t.I64
	case bits <= 8:
		return t.U8
	case bits <= 16:
		return t.U16
	case bits <= 32:
		return t.U32
	default:
		return t.U64
	}
}

func (c *funcCtx) identifier(cur symtable.Direct, n *ast.Node) (symtable.Direct, symtable.Direct) {
	v, ok := c.scopes.lookup(n.Token.Value)
	if !ok {
		c.e.error(n.Token, cerrors.ResUnknownVariable, "unknown variable %q", n.Token.Value)
		return symtable.Null, cur
	}
	return v.value, cur
}

func (c *funcCtx) call(cur symtable.Direct, n *ast.Node) (symtable.Direct, symtable.Direct) {
	callee, ok := c.e.findFunction(c.mod, n.Token.Value)
	if !ok {
		c.e.error(n.Token, cerrors.ResUnknownFunction, "unknown function %q", n.Token.Value)
		v := c.body.NewValue(symtable.Null, false, "")
		c.emit(cur, typerealm.Inst{Kind: typerealm.UnresolvedCall, Result: v, CalleeName: n.Token.Value})
		return v, cur
	}

	sig := c.e.Realm.Functions.Index(callee).Signature
	if len(sig.Params) != len(n.Children) {
		c.e.error(n.Token, cerrors.ResArityMismatch, "%q expects %d arguments, got %d", n.Token.Value, len(sig.Params), len(n.Children))
	}

	args := make([]symtable.Direct, 0, len(n.Children))
	for i, argNode := range n.Children {
		val, next := c.expr(cur, argNode)
		cur = next
		if i < len(sig.Params) && c.body.Values.Index(val).Type != sig.Params[i] {
			c.e.error(argNode.Token, cerrors.ResTypeMismatch, "argument %d of %q has the wrong type", i+1, n.Token.Value)
		}
		args = append(args, val)
	}

	result := c.body.NewValue(sig.Ret, false, "")
	c.emit(cur, typerealm.Inst{Kind: typerealm.Call, Result: result, Callee: callee, Args: args})
	return result, cur
}

// binaryOperation dispatches `=` to a plain Assign and everything else
// to the matching builtin operator Call (Open Question #1: &&/||/^^
// are ordinary strict builtin calls, both operands always elaborated,
// never short-circuited).
func (c *funcCtx) binaryOperation(cur symtable.Direct, n *ast.Node) (symtable.Direct, symtable.Direct) {
	if n.Token.Value == "=" {
		return c.assignment(cur, n)
	}

	lhs, cur := c.expr(cur, n.Children[0])
	rhs, cur2 := c.expr(cur, n.Children[1])
	cur = cur2

	lhsType := c.body.Values.Index(lhs).Type
	rhsType := c.body.Values.Index(rhs).Type

	callee, ok := c.e.Realm.FindOperator(n.Token.Value, lhsType, rhsType)
	if !ok {
		c.e.error(n.Token, cerrors.ElbNoOperatorOverload, "no overload of %q for the given operand types", n.Token.Value)
		v := c.body.NewValue(lhsType, false, "")
		return v, cur
	}

	ret := c.e.Realm.Functions.Index(callee).Signature.Ret
	result := c.body.NewValue(ret, false, "")
	c.emit(cur, typerealm.Inst{Kind: typerealm.Call, Result: result, Callee: callee, Args: []symtable.Direct{lhs, rhs}})
	return result, cur
}

func (c *funcCtx) assignment(cur symtable.Direct, n *ast.Node) (symtable.Direct, symtable.Direct) {
	target := n.Children[0]
	if target.Kind != ast.Identifier {
		c.e.error(n.Token, cerrors.ElbInvalidAssignTarget, "left side of = must be a variable")
		return symtable.Null, cur
	}
	lv, ok := c.scopes.lookup(target.Token.Value)
	if !ok {
		c.e.error(target.Token, cerrors.ResUnknownVariable, "unknown variable %q", target.Token.Value)
		return symtable.Null, cur
	}
	if !lv.mutable {
		c.e.error(target.Token, cerrors.ElbInvalidAssignTarget, "%q is not mutable", target.Token.Value)
	}

	src, cur := c.expr(cur, n.Children[1])
	c.emit(cur, typerealm.Inst{Kind: typerealm.Assign, Target: lv.value, Source: src})
	return lv.value, cur
}
