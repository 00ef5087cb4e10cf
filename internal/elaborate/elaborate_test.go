package elaborate_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jakubDoka/prometh/internal/elaborate"
	cerrors "github.com/jakubDoka/prometh/internal/errors"
	"github.com/jakubDoka/prometh/internal/idhash"
	"github.com/jakubDoka/prometh/internal/moduletree"
	"github.com/jakubDoka/prometh/internal/typerealm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// idForFunction derives the same content-addressed ID createSignature
// assigns a root-module function, so tests can look it up by name
// without reaching into elaborate's unexported state.
func idForFunction(t *testing.T, tree *moduletree.ModuleTree, name string) idhash.ID {
	t.Helper()
	moduleID := tree.Modules.DirectToID(tree.Root)
	return idhash.New(name).Combine(moduleID)
}

func buildTree(t *testing.T, src string) *moduletree.ModuleTree {
	t.Helper()
	dir := t.TempDir()
	root := filepath.Join(dir, "main.pmt")
	require.NoError(t, os.WriteFile(root, []byte(src), 0o644))

	b := moduletree.NewBuilder()
	tree, err := b.Build(root)
	require.NoError(t, err)
	require.Empty(t, b.Errors())
	return tree
}

func TestElaborateSimpleArithmeticFunction(t *testing.T) {
	src := "fun add(a, b: i32) -> i32:\n\treturn a + b\n"
	tree := buildTree(t, src)

	realm := typerealm.NewRealm()
	realm.Seed()
	e := elaborate.New(realm, tree)
	e.Elaborate()
	require.Empty(t, e.Errors())

	assert.Equal(t, 143+1, realm.Functions.Len())
}

// TestElaborateBodyMatchesGoldenInstructionShape diffs the elaborated
// entry chunk's instruction-kind sequence against a golden shape, the
// same cmp.Diff-over-a-reduced-snapshot pattern the teacher's
// internal/parser/testutil.go uses for AST/IR comparisons, instead of
// asserting on individual instruction fields one at a time.
func TestElaborateBodyMatchesGoldenInstructionShape(t *testing.T) {
	src := "fun add(a, b: i32) -> i32:\n\treturn a + b\n"
	tree := buildTree(t, src)

	realm := typerealm.NewRealm()
	realm.Seed()
	e := elaborate.New(realm, tree)
	e.Elaborate()
	require.Empty(t, e.Errors())

	h, ok := realm.Functions.IDToDirect(idForFunction(t, tree, "add"))
	require.True(t, ok)
	fn := realm.Functions.Index(h)
	body := *realm.Bodies.Index(fn.Body)

	entry := body.Chunks.Index(body.Entry)
	var kinds []typerealm.IKind
	for _, inst := range entry.Insts {
		kinds = append(kinds, inst.Kind)
	}

	golden := []typerealm.IKind{typerealm.Call, typerealm.Return}
	if diff := cmp.Diff(golden, kinds); diff != "" {
		t.Errorf("elaborated instruction shape mismatch (-want +got):\n%s", diff)
	}
}

func TestElaborateUnknownVariableIsReported(t *testing.T) {
	src := "fun f() -> i32:\n\treturn x\n"
	tree := buildTree(t, src)

	realm := typerealm.NewRealm()
	realm.Seed()
	e := elaborate.New(realm, tree)
	e.Elaborate()
	require.NotEmpty(t, e.Errors())
}

func TestElaborateIfElseAsStatement(t *testing.T) {
	src := "fun f() -> i32:\n" +
		"\tif true:\n" +
		"\t\treturn 1\n" +
		"\telse:\n" +
		"\t\treturn 0\n"
	tree := buildTree(t, src)

	realm := typerealm.NewRealm()
	realm.Seed()
	e := elaborate.New(realm, tree)
	e.Elaborate()
	require.Empty(t, e.Errors())
}

func TestElaborateCrossModuleCall(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "math.pmt"), []byte("fun sq(x: i32) -> i32:\n\treturn x * x\n"), 0o644))
	root := filepath.Join(dir, "main.pmt")
	require.NoError(t, os.WriteFile(root, []byte("use \"math\"\nfun f() -> i32:\n\treturn sq(3i32)\n"), 0o644))

	b := moduletree.NewBuilder()
	tree, err := b.Build(root)
	require.NoError(t, err)
	require.Empty(t, b.Errors())

	realm := typerealm.NewRealm()
	realm.Seed()
	e := elaborate.New(realm, tree)
	e.Elaborate()
	require.Empty(t, e.Errors())
}

func TestElaborateAttributesSetSignatureFields(t *testing.T) {
	src := "#linkage local\n" +
		"#call_conv systemv\n" +
		"#inline always\n" +
		"fun f() -> i32:\n\treturn 0\n"
	tree := buildTree(t, src)

	realm := typerealm.NewRealm()
	realm.Seed()
	e := elaborate.New(realm, tree)
	e.Elaborate()
	require.Empty(t, e.Errors())

	h, ok := realm.Functions.IDToDirect(idForFunction(t, tree, "f"))
	require.True(t, ok)
	sig := realm.Functions.Index(h).Signature
	assert.Equal(t, typerealm.Local, sig.Linkage)
	assert.Equal(t, typerealm.SystemV, sig.CallConv)
	assert.Equal(t, typerealm.Always, sig.Inline)
}

func TestElaborateInvalidLinkageIsReported(t *testing.T) {
	src := "#linkage bogus\nfun f() -> i32:\n\treturn 0\n"
	tree := buildTree(t, src)

	realm := typerealm.NewRealm()
	realm.Seed()
	e := elaborate.New(realm, tree)
	e.Elaborate()
	require.NotEmpty(t, e.Errors())
}

func TestElaborateUnrecognizedAttributeIsPassthroughNotError(t *testing.T) {
	src := "#export_name \"f_impl\"\nfun f() -> i32:\n\treturn 0\n"
	tree := buildTree(t, src)

	realm := typerealm.NewRealm()
	realm.Seed()
	e := elaborate.New(realm, tree)
	e.Elaborate()
	require.Empty(t, e.Errors())

	h, ok := realm.Functions.IDToDirect(idForFunction(t, tree, "f"))
	require.True(t, ok)
	sig := realm.Functions.Index(h).Signature
	require.Len(t, sig.Passthrough, 1)
	assert.Equal(t, "export_name", sig.Passthrough[0].Name)
	assert.Equal(t, []string{"f_impl"}, sig.Passthrough[0].Args)
}

func TestElaborateBreakOutsideLoopIsReported(t *testing.T) {
	src := "fun f() -> i32:\n" +
		"\tbreak l\n" +
		"\treturn 0\n"
	tree := buildTree(t, src)

	realm := typerealm.NewRealm()
	realm.Seed()
	e := elaborate.New(realm, tree)
	e.Elaborate()
	require.Len(t, e.Errors(), 1)
	assert.Equal(t, cerrors.ElbBreakOutsideLoop, e.Errors()[0].Code)
}

func TestElaborateBreakUnknownLabelIsReported(t *testing.T) {
	src := "fun f() -> i32:\n" +
		"\tloop l:\n" +
		"\t\tbreak other\n" +
		"\treturn 0\n"
	tree := buildTree(t, src)

	realm := typerealm.NewRealm()
	realm.Seed()
	e := elaborate.New(realm, tree)
	e.Elaborate()
	require.Len(t, e.Errors(), 1)
	assert.Equal(t, cerrors.ElbUnknownLabel, e.Errors()[0].Code)
}

func TestElaborateLoopWithBreakValue(t *testing.T) {
	src := "fun f() -> i32:\n" +
		"\tloop l:\n" +
		"\t\tbreak l 5\n" +
		"\treturn 0\n"
	tree := buildTree(t, src)

	realm := typerealm.NewRealm()
	realm.Seed()
	e := elaborate.New(realm, tree)
	e.Elaborate()
	require.Empty(t, e.Errors())
}
