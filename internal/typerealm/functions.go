package typerealm

import "github.com/jakubDoka/prometh/internal/symtable"

// Linkage controls whether a function's symbol is visible to the
// interpreter's host-level lookups (and, in a real backend, to the
// linker). Default is Export; matches the original's create_signature
// default.
type Linkage int

const (
	Export Linkage = iota
	Local
	Hidden
	Import
	Preemptible
)

// CallConv is recorded on every signature but only consulted by a real
// native backend; the interpreter ignores it. Default is Fast, matching
// the original.
type CallConv int

const (
	Fast CallConv = iota
	SystemV
	WindowsFastcall
)

// Inline hints the optimizer. Default is Never.
type Inline int

const (
	Never Inline = iota
	Auto
	Always
)

// PassthroughAttr is an attribute line that isn't one of `linkage`,
// `call_conv` or `inline` — the elaborator doesn't interpret it, just
// carries it forward so a real code generator can (spec §1: "the
// attribute sub-language ... is specified only as a pass-through to the
// emitter" for anything the elaborator itself has no opinion on).
type PassthroughAttr struct {
	Name string
	Args []string
}

// FunSignature is a function's externally visible shape.
type FunSignature struct {
	Params      []symtable.Direct // into TypeRealm.Types
	Ret         symtable.Direct
	Linkage     Linkage
	CallConv    CallConv
	Inline      Inline
	Passthrough []PassthroughAttr
}

// Function is one entry in a Realm's Functions table. Body is Null
// until internal/elaborate fills it in; a function with Body == Null
// and Linkage == Import is an extern declaration, never an error.
type Function struct {
	Name              string
	Module            symtable.Direct // into Realm.Modules
	Signature         FunSignature
	Body              symtable.Direct // into Realm.Bodies, or symtable.Null
	IsBuiltinOperator bool
}
