package main

import (
	"fmt"
	"io"

	"github.com/jakubDoka/prometh/internal/moduletree"
	"github.com/jakubDoka/prometh/internal/symtable"
	"github.com/jakubDoka/prometh/internal/typerealm"
)

// dumpIR writes a human-readable rendering of every elaborated function
// in tree's modules, in dependency order, to w. It has no ambition to be
// a real IR text format — there's no parser for it — it exists purely so
// `prometh build` has something to show for a compile that never
// reaches a native backend.
func dumpIR(w io.Writer, realm *typerealm.Realm, tree *moduletree.ModuleTree) {
	for _, mod := range tree.Order {
		module := tree.Modules.Index(mod)
		fmt.Fprintf(w, "module %s (%s)\n", module.Name, module.Path)

		for i := 0; i < realm.Functions.Len(); i++ {
			fn := realm.Functions.Index(symtable.Direct(i))
			if fn.Module != mod || fn.IsBuiltinOperator {
				continue
			}
			dumpFunction(w, realm, fn)
		}
	}
}

func dumpFunction(w io.Writer, realm *typerealm.Realm, fn *typerealm.Function) {
	fmt.Fprintf(w, "  fn %s(", fn.Name)
	for i, p := range fn.Signature.Params {
		if i > 0 {
			fmt.Fprint(w, ", ")
		}
		fmt.Fprint(w, typeName(realm, p))
	}
	fmt.Fprintf(w, ") -> %s\n", typeName(realm, fn.Signature.Ret))
	fmt.Fprintf(w, "    linkage=%s call_conv=%s inline=%s\n",
		linkageName(fn.Signature.Linkage), callConvName(fn.Signature.CallConv), inlineName(fn.Signature.Inline))
	for _, pass := range fn.Signature.Passthrough {
		fmt.Fprintf(w, "    #%s %s\n", pass.Name, argStringList(pass.Args))
	}

	if fn.Body == symtable.Null {
		fmt.Fprintln(w, "    (extern)")
		return
	}
	body := *realm.Bodies.Index(fn.Body)
	for i := 0; i < body.Chunks.Len(); i++ {
		dumpChunk(w, realm, body, symtable.Direct(i))
	}
}

func dumpChunk(w io.Writer, realm *typerealm.Realm, body *typerealm.FunBody, h symtable.Direct) {
	ent := body.Chunks.Index(h)
	fmt.Fprintf(w, "    chunk%d:\n", h)
	for _, inst := range ent.Insts {
		dumpInst(w, realm, inst)
	}
	switch {
	case ent.Cond != symtable.Null:
		fmt.Fprintf(w, "      brif v%d -> chunk%d else chunk%d\n", ent.Cond, ent.Then, ent.Next)
	case ent.Next != symtable.Null:
		fmt.Fprintf(w, "      jump chunk%d\n", ent.Next)
	}
}

func dumpInst(w io.Writer, realm *typerealm.Realm, inst typerealm.Inst) {
	switch inst.Kind {
	case typerealm.Literal:
		fmt.Fprintf(w, "      v%d = literal %v\n", inst.Result, litString(inst.Lit))
	case typerealm.ZeroValue:
		fmt.Fprintf(w, "      v%d = zero\n", inst.Result)
	case typerealm.VarDecl:
		fmt.Fprintf(w, "      v%d = var v%d\n", inst.Result, inst.Init)
	case typerealm.Assign:
		fmt.Fprintf(w, "      v%d = v%d\n", inst.Target, inst.Source)
	case typerealm.Call:
		callee := realm.Functions.Index(inst.Callee)
		fmt.Fprintf(w, "      v%d = call %s(%s)\n", inst.Result, callee.Name, argList(inst.Args))
	case typerealm.UnresolvedCall:
		fmt.Fprintf(w, "      v%d = call <unresolved %s>(%s)\n", inst.Result, inst.CalleeName, argList(inst.Args))
	case typerealm.Return:
		if inst.Value == symtable.Null {
			fmt.Fprintln(w, "      return")
		} else {
			fmt.Fprintf(w, "      return v%d\n", inst.Value)
		}
	default:
		fmt.Fprintln(w, "      noop")
	}
}

func argList(args []symtable.Direct) string {
	s := ""
	for i, a := range args {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("v%d", a)
	}
	return s
}

func argStringList(args []string) string {
	s := ""
	for i, a := range args {
		if i > 0 {
			s += " "
		}
		s += a
	}
	return s
}

func linkageName(l typerealm.Linkage) string {
	switch l {
	case typerealm.Local:
		return "local"
	case typerealm.Hidden:
		return "hidden"
	case typerealm.Import:
		return "import"
	case typerealm.Preemptible:
		return "preemptible"
	default:
		return "export"
	}
}

func callConvName(c typerealm.CallConv) string {
	switch c {
	case typerealm.SystemV:
		return "systemv"
	case typerealm.WindowsFastcall:
		return "windows_fastcall"
	default:
		return "fast"
	}
}

func inlineName(i typerealm.Inline) string {
	switch i {
	case typerealm.Auto:
		return "auto"
	case typerealm.Always:
		return "always"
	default:
		return "never"
	}
}

func litString(lit typerealm.LitValue) any {
	switch {
	case lit.Bytes != nil:
		return string(lit.Bytes)
	default:
		return lit
	}
}

func typeName(realm *typerealm.Realm, t symtable.Direct) string {
	if t == symtable.Null {
		return "void"
	}
	return realm.Types.Types.Index(t).Name
}
