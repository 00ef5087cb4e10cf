// Package elaborate turns parsed ast.Node function bodies into
// typerealm.FunBody IR: it resolves every name against the module's
// scope chain, assigns a concrete type to every expression, and lowers
// control flow (if/loop/break) into the Chunk graph internal/interp
// walks. Two passes run over the whole module tree: the first creates
// every function's signature (so mutually recursive and forward calls
// resolve), the second elaborates bodies against the now-complete
// signature set.
package elaborate

import (
	"github.com/jakubDoka/prometh/internal/ast"
	cerrors "github.com/jakubDoka/prometh/internal/errors"
	"github.com/jakubDoka/prometh/internal/idhash"
	"github.com/jakubDoka/prometh/internal/lexer"
	"github.com/jakubDoka/prometh/internal/moduletree"
	"github.com/jakubDoka/prometh/internal/symtable"
	"github.com/jakubDoka/prometh/internal/typerealm"
)

// Elaborator holds the state shared across every module/function it
// processes: the realm being populated and the module graph driving
// scope resolution order (local module first, then each dependency in
// reverse `use` order).
type Elaborator struct {
	Realm *typerealm.Realm
	Tree  *moduletree.ModuleTree

	// moduleFunctions maps a module handle to the Function handles
	// declared directly in it, in source order — populated during the
	// signature pass, consumed by the body pass so the two passes walk
	// the same functions without re-deriving the list from the AST twice.
	moduleFunctions map[symtable.Direct][]symtable.Direct

	errs []*cerrors.Error
}

// New creates an Elaborator. realm must already be Seed()ed.
func New(realm *typerealm.Realm, tree *moduletree.ModuleTree) *Elaborator {
	return &Elaborator{
		Realm:           realm,
		Tree:            tree,
		moduleFunctions: map[symtable.Direct][]symtable.Direct{},
	}
}

// Errors returns every diagnostic recorded across both passes.
func (e *Elaborator) Errors() []*cerrors.Error { return e.errs }

func (e *Elaborator) error(tok lexer.Token, code cerrors.Code, format string, args ...any) {
	e.errs = append(e.errs, cerrors.At(code, tok, format, args...))
}

// Elaborate runs the signature pass then the body pass over every
// module in the tree's topological order.
func (e *Elaborator) Elaborate() {
	for _, mod := range e.Tree.Order {
		e.declareSignatures(mod)
	}
	for _, mod := range e.Tree.Order {
		e.elaborateBodies(mod)
	}
}

func (e *Elaborator) declareSignatures(mod symtable.Direct) {
	module := e.Tree.Modules.Index(mod)
	moduleID := e.Tree.Modules.DirectToID(mod)

	for _, item := range module.Ast.Children {
		if item.Kind != ast.Function {
			continue
		}
		fn, err := e.createSignature(mod, moduleID, item)
		if err != nil {
			continue
		}
		e.moduleFunctions[mod] = append(e.moduleFunctions[mod], fn)
	}
}

func (e *Elaborator) elaborateBodies(mod symtable.Direct) {
	module := e.Tree.Modules.Index(mod)

	i := 0
	for _, item := range module.Ast.Children {
		if item.Kind != ast.Function {
			continue
		}
		fns := e.moduleFunctions[mod]
		if i >= len(fns) || e.Realm.Functions.Index(fns[i]).Name != item.Token.Value {
			continue // signature creation failed for this function; skip its body too
		}
		e.elaborateBody(mod, fns[i], item)
		i++
	}
}

func (e *Elaborator) createSignature(mod symtable.Direct, moduleID idhash.ID, fn *ast.Node) (symtable.Direct, error) {
	groups := fn.Children[:fn.ParamGroupCount]
	retNode := fn.Children[fn.ParamGroupCount]
	rest := fn.Children[fn.ParamGroupCount+1:]
	attrs := rest[:len(rest)-1]

	var params []symtable.Direct
	for _, g := range groups {
		typeNode := g.Children[len(g.Children)-1]
		typ, ok := e.findType(typeNode.Token.Value)
		if !ok {
			e.error(typeNode.Token, cerrors.ResUnknownType, "unknown type %q", typeNode.Token.Value)
			return symtable.Null, cerrors.At(cerrors.ResUnknownType, typeNode.Token, "unknown type")
		}
		for range g.Children[:len(g.Children)-1] {
			params = append(params, typ)
		}
	}

	retType, ok := e.findType(retNode.Token.Value)
	if !ok {
		e.error(retNode.Token, cerrors.ResUnknownType, "unknown return type %q", retNode.Token.Value)
		return symtable.Null, cerrors.At(cerrors.ResUnknownType, retNode.Token, "unknown type")
	}

	sig := typerealm.FunSignature{
		Params:   params,
		Ret:      retType,
		Linkage:  typerealm.Export,
		CallConv: typerealm.Fast,
		Inline:   typerealm.Never,
	}
	e.applyAttributes(&sig, attrs)

	id := idhash.New(fn.Token.Value).Combine(moduleID)
	if _, ok := e.Realm.Functions.IDToDirect(id); ok {
		e.error(fn.Token, cerrors.ResDuplicateFunc, "function %q already declared in this module", fn.Token.Value)
	}
	_, handle := e.Realm.Functions.Insert(id, typerealm.Function{
		Name:      fn.Token.Value,
		Module:    mod,
		Signature: sig,
		Body:      symtable.Null,
	})
	return handle, nil
}

// applyAttributes reads the `#linkage`, `#call_conv` and `#inline`
// attribute lines attached to a function (global or local, already
// merged by the parser) and overrides sig's defaults accordingly. Any
// other attribute name is not interpreted here at all — per spec §1
// the attribute sub-language beyond these three is pass-through to the
// emitter, so it is recorded on sig.Passthrough verbatim instead of
// being rejected. A recognized attribute with a missing or unknown
// argument value is reported with its specific code
// (MissingAttrArgument, InvalidLinkage, InvalidCallConv,
// InvalidInlineLevel per spec §7) and the field keeps its prior value.
func (e *Elaborator) applyAttributes(sig *typerealm.FunSignature, attrs []*ast.Node) {
	for _, a := range attrs {
		needsArg := a.Token.Value == "linkage" || a.Token.Value == "call_conv" || a.Token.Value == "inline"
		if needsArg && len(a.Children) == 0 {
			e.error(a.Token, cerrors.AtrMissingArgument, "attribute %q requires an argument", a.Token.Value)
			continue
		}

		var argTok lexer.Token
		var arg string
		if len(a.Children) > 0 {
			argTok = a.Children[0].Token
			arg = argTok.Value
		}

		switch a.Token.Value {
		case "linkage":
			switch arg {
			case "local":
				sig.Linkage = typerealm.Local
			case "hidden":
				sig.Linkage = typerealm.Hidden
			case "import":
				sig.Linkage = typerealm.Import
			case "export":
				sig.Linkage = typerealm.Export
			case "preemptible":
				sig.Linkage = typerealm.Preemptible
			default:
				e.error(argTok, cerrors.AtrInvalidLinkage, "invalid linkage %q", arg)
			}
		case "call_conv":
			switch arg {
			case "fast":
				sig.CallConv = typerealm.Fast
			case "systemv":
				sig.CallConv = typerealm.SystemV
			case "windows_fastcall":
				sig.CallConv = typerealm.WindowsFastcall
			default:
				e.error(argTok, cerrors.AtrInvalidCallConv, "invalid call_conv %q", arg)
			}
		case "inline":
			switch arg {
			case "never":
				sig.Inline = typerealm.Never
			case "auto":
				sig.Inline = typerealm.Auto
			case "always":
				sig.Inline = typerealm.Always
			default:
				e.error(argTok, cerrors.AtrInvalidInline, "invalid inline level %q", arg)
			}
		default:
			pass := typerealm.PassthroughAttr{Name: a.Token.Value}
			for _, c := range a.Children {
				if c.Token.Kind == lexer.STRING {
					pass.Args = append(pass.Args, string(c.Token.StringValue))
				} else {
					pass.Args = append(pass.Args, c.Token.Value)
				}
			}
			sig.Passthrough = append(sig.Passthrough, pass)
		}
	}
}

// findType resolves a type name against the builtin table only: names
// are keyed under typerealm.BuiltinModuleID, so a struct or union type
// interned under any other module ID is not found here.
func (e *Elaborator) findType(name string) (symtable.Direct, bool) {
	return e.Realm.Types.Types.IDToDirect(idhash.New(name).Combine(typerealm.BuiltinModuleID))
}

// findFunction resolves a call target: the local module first, then
// each dependency module in reverse `use` order — exactly the walk the
// original scope chain performs, so a later `use` shadows an earlier
// one's same-named export.
func (e *Elaborator) findFunction(mod symtable.Direct, name string) (symtable.Direct, bool) {
	moduleID := e.Tree.Modules.DirectToID(mod)
	if h, ok := e.Realm.Functions.IDToDirect(idhash.New(name).Combine(moduleID)); ok {
		return h, true
	}
	module := e.Tree.Modules.Index(mod)
	for i := len(module.Dependencies) - 1; i >= 0; i-- {
		dep := module.Dependencies[i]
		depID := e.Tree.Modules.DirectToID(dep)
		if h, ok := e.Realm.Functions.IDToDirect(idhash.New(name).Combine(depID)); ok {
			return h, true
		}
	}
	return symtable.Null, false
}
