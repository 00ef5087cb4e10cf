package parser_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jakubDoka/prometh/internal/ast"
	"github.com/jakubDoka/prometh/internal/lexer"
	"github.com/jakubDoka/prometh/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kindTree(n *ast.Node) any {
	if n == nil {
		return nil
	}
	children := make([]any, len(n.Children))
	for i, c := range n.Children {
		children[i] = kindTree(c)
	}
	return map[string]any{"kind": n.Kind, "children": children}
}

func TestParseSimpleFunction(t *testing.T) {
	src := "fun add(a, b: i32) -> i32:\n" +
		"\treturn a + b\n"

	p := parser.New(lexer.Normalize([]byte(src)), "t.pmt")
	file := p.Parse()
	require.Empty(t, p.Errors())
	require.Len(t, file.Children, 1)

	fn := file.Children[0]
	assert.Equal(t, ast.Function, fn.Kind)
	assert.Equal(t, "add", fn.Token.Value)
	assert.Equal(t, 1, fn.ParamGroupCount)

	group := fn.Children[0]
	assert.Equal(t, ast.ParamGroup, group.Kind)
	require.Len(t, group.Children, 3) // a, b, i32
}

func TestParseUseStatementWithAlias(t *testing.T) {
	src := "use \"std/io\" as io\n"
	p := parser.New(lexer.Normalize([]byte(src)), "t.pmt")
	file := p.Parse()
	require.Empty(t, p.Errors())
	require.Len(t, file.Children, 1)

	use := file.Children[0]
	assert.Equal(t, ast.UseStatement, use.Kind)
	assert.True(t, use.External)
	require.Len(t, use.Children, 1)
	assert.Equal(t, "io", use.Children[0].Token.Value)
}

func TestParseIfElseExpression(t *testing.T) {
	src := "fun f() -> i32:\n" +
		"\tif true:\n" +
		"\t\treturn 1\n" +
		"\telse:\n" +
		"\t\treturn 0\n"

	p := parser.New(lexer.Normalize([]byte(src)), "t.pmt")
	file := p.Parse()
	require.Empty(t, p.Errors())

	fn := file.Children[0]
	body := fn.Children[len(fn.Children)-1]
	ifExpr := body.Children[0]
	assert.Equal(t, ast.IfExpression, ifExpr.Kind)
	require.Len(t, ifExpr.Children, 3)
}

func TestParseLoopAndBreakWithValue(t *testing.T) {
	src := "fun f() -> i32:\n" +
		"\tloop l:\n" +
		"\t\tbreak l 5\n"

	p := parser.New(lexer.Normalize([]byte(src)), "t.pmt")
	file := p.Parse()
	require.Empty(t, p.Errors())

	fn := file.Children[0]
	body := fn.Children[len(fn.Children)-1]
	loop := body.Children[0]
	require.Equal(t, ast.Loop, loop.Kind)
	assert.Equal(t, "l", loop.Token.Value)

	loopBody := loop.Children[0]
	brk := loopBody.Children[0]
	assert.Equal(t, ast.Break, brk.Kind)
	assert.Equal(t, "l", brk.Token.Value)
	require.Len(t, brk.Children, 1)
}

func TestPushPopAttributesAttachToEveryFunctionInside(t *testing.T) {
	src := "#push\n" +
		"#inline always\n" +
		"fun a() -> i32:\n" +
		"\treturn 0\n" +
		"fun b() -> i32:\n" +
		"\treturn 1\n" +
		"#pop\n" +
		"fun c() -> i32:\n" +
		"\treturn 2\n"

	p := parser.New(lexer.Normalize([]byte(src)), "t.pmt")
	file := p.Parse()
	require.Empty(t, p.Errors())
	require.Len(t, file.Children, 3)

	hasInlineAttr := func(fn *ast.Node) bool {
		for _, c := range fn.Children {
			if c != nil && c.Kind == ast.Attribute && c.Token.Value == "inline" {
				return true
			}
		}
		return false
	}
	assert.True(t, hasInlineAttr(file.Children[0]))
	assert.True(t, hasInlineAttr(file.Children[1]))
	assert.False(t, hasInlineAttr(file.Children[2]))
}

func TestSeedDefaultAttributesAttachToEveryFunction(t *testing.T) {
	src := "fun a() -> i32:\n\treturn 0\n" +
		"fun b() -> i32:\n\treturn 1\n"

	p := parser.New(lexer.Normalize([]byte(src)), "t.pmt")
	p.SeedDefaultAttributes(map[string]string{"call_conv": "systemv"})
	file := p.Parse()
	require.Empty(t, p.Errors())
	require.Len(t, file.Children, 2)

	hasCallConvAttr := func(fn *ast.Node) bool {
		for _, c := range fn.Children {
			if c != nil && c.Kind == ast.Attribute && c.Token.Value == "call_conv" {
				return true
			}
		}
		return false
	}
	assert.True(t, hasCallConvAttr(file.Children[0]))
	assert.True(t, hasCallConvAttr(file.Children[1]))
}

// TestParseIfElseMatchesGoldenShape diffs the whole parsed tree against a
// golden kindTree, the same cmp.Diff-over-kind-trees pattern the teacher's
// internal/parser/testutil.go uses to compare parsed ASTs, rather than
// asserting one field at a time.
func TestParseIfElseMatchesGoldenShape(t *testing.T) {
	src := "fun f() -> i32:\n" +
		"\tif true:\n" +
		"\t\treturn 1\n" +
		"\telse:\n" +
		"\t\treturn 0\n"

	p := parser.New(lexer.Normalize([]byte(src)), "t.pmt")
	file := p.Parse()
	require.Empty(t, p.Errors())

	golden := map[string]any{
		"kind": ast.Function,
		"children": []any{
			map[string]any{"kind": ast.Identifier, "children": []any{}}, // return type
			map[string]any{"kind": ast.StatementList, "children": []any{
				map[string]any{"kind": ast.IfExpression, "children": []any{
					map[string]any{"kind": ast.Literal, "children": []any{}},
					map[string]any{"kind": ast.StatementList, "children": []any{
						map[string]any{"kind": ast.ReturnStatement, "children": []any{
							map[string]any{"kind": ast.Literal, "children": []any{}},
						}},
					}},
					map[string]any{"kind": ast.StatementList, "children": []any{
						map[string]any{"kind": ast.ReturnStatement, "children": []any{
							map[string]any{"kind": ast.Literal, "children": []any{}},
						}},
					}},
				}},
			}},
		},
	}

	got := kindTree(file.Children[0])
	if diff := cmp.Diff(golden, got); diff != "" {
		t.Errorf("parsed AST shape mismatch (-want +got):\n%s", diff)
	}
}

func TestAssignmentIsRightAssociative(t *testing.T) {
	src := "fun f() -> i32:\n" +
		"\tvar mut x i32\n" +
		"\tx = x = 1\n"

	p := parser.New(lexer.Normalize([]byte(src)), "t.pmt")
	file := p.Parse()
	require.Empty(t, p.Errors())

	fn := file.Children[0]
	body := fn.Children[len(fn.Children)-1]
	assignStmt := body.Children[1]
	require.Equal(t, ast.BinaryOperation, assignStmt.Kind)
	assert.Equal(t, "=", assignStmt.Token.Value)
	rhs := assignStmt.Children[1]
	assert.Equal(t, ast.BinaryOperation, rhs.Kind)
	assert.Equal(t, "=", rhs.Token.Value)
}
