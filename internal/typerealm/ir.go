package typerealm

import (
	"strconv"

	"github.com/jakubDoka/prometh/internal/idhash"
	"github.com/jakubDoka/prometh/internal/symtable"
)

// Chunks and Values have no source-level name to hash; their SymTable
// key is just their insertion index run through idhash so Table's
// (id -> handle) map still works, even though nothing ever looks a
// chunk or value up by anything other than the handle it was handed
// back at creation time.
func idForChunk(i int) idhash.ID { return idhash.New("chunk#" + strconv.Itoa(i)) }
func idForValue(i int) idhash.ID { return idhash.New("value#" + strconv.Itoa(i)) }

// IKind tags an Inst's payload. The set is deliberately small: it is
// exactly the handoff contract a code generator (or, here,
// internal/interp) must be able to lower without knowing anything about
// source syntax. UnresolvedCall and NoOp do not appear in a FunBody
// from an elaboration that reported no errors: the elaborator emits
// UnresolvedCall only alongside an unknown-function diagnostic.
type IKind int

const (
	NoOp IKind = iota
	Call
	UnresolvedCall // call to an unknown function; always accompanied by an elaboration error
	VarDecl
	ZeroValue
	Literal
	Return
	Assign
)

// LitValue is the constant payload of a Literal instruction. Exactly one
// field is meaningful, selected by the instruction's result Value type.
type LitValue struct {
	Int    int64
	Uint   uint64
	Float  float64
	Bool   bool
	Bytes  []byte
}

// Inst is one instruction inside a Chunk.
type Inst struct {
	Kind IKind

	// Result is the Value this instruction defines. Return and Assign
	// define none and leave it at its Go zero value (not symtable.Null);
	// every Call defines a result value, even when that value is unused.
	Result symtable.Direct

	// Call / UnresolvedCall
	Callee symtable.Direct // into Realm.Functions (Call) — unresolved name text lives on CalleeName (UnresolvedCall)
	CalleeName string
	Args   []symtable.Direct // Value handles

	// VarDecl: Result names the declared local; Init (optional) seeds it.
	Init symtable.Direct

	// Literal
	Lit LitValue

	// Return: Value is the returned Value, or symtable.Null for a bare
	// return with no expression.
	Value symtable.Direct

	// Assign: Target is the Value being overwritten, Source supplies the
	// new contents.
	Target symtable.Direct
	Source symtable.Direct
}

// ValueEnt is one SSA-ish value: either a direct definition (an
// instruction's Result) or a mutable local (repeatedly Assign'd to).
type ValueEnt struct {
	Type    symtable.Direct
	Mutable bool
	Name    string // empty for compiler-generated temporaries
}

// ChunkEnt is a basic block: a straight-line instruction list, followed
// by a block-level transfer of control. The instruction set itself has
// no branch opcode (see IKind) — control flow is metadata on the block,
// not an instruction within it, the same separation Cranelift draws
// between a block's body and its terminator:
//
//   - Cond == symtable.Null: the block falls through to Next
//     unconditionally (symtable.Null Next means the block ends in a
//     Return instruction instead).
//   - Cond != symtable.Null: the block branches to Then when Cond's
//     runtime value is true, otherwise to Next.
type ChunkEnt struct {
	Insts []Inst
	Cond  symtable.Direct
	Then  symtable.Direct
	Next  symtable.Direct
}

// FunBody is a function's elaborated IR: its Values and Chunks, plus the
// entry chunk to start interpretation/codegen from.
type FunBody struct {
	Values *symtable.Table[ValueEnt]
	Chunks *symtable.Table[ChunkEnt]
	Entry  symtable.Direct
}

// NewFunBody creates an empty body with one (empty) entry chunk.
func NewFunBody() *FunBody {
	b := &FunBody{
		Values: symtable.New[ValueEnt](),
		Chunks: symtable.New[ChunkEnt](),
	}
	_, entry := b.Chunks.Insert(idForChunk(0), ChunkEnt{Cond: symtable.Null, Then: symtable.Null, Next: symtable.Null})
	b.Entry = entry
	return b
}

// NewChunk appends a fresh empty chunk and returns its handle. Chunks
// are identified only by insertion order (they have no source-level
// name), so the ID fed to symtable.Table.Insert is a synthetic counter.
//
// All three control-transfer fields must start out Null, not their Go
// zero value: Direct's zero value (0) is a valid handle (e.g. the entry
// chunk or the first value), and Null is the distinct sentinel -1
// (symtable.go). Leaving Cond/Then at 0 would make a fresh chunk look
// like an unresolved conditional branch on value handle 0 instead of an
// unconditional fall-through.
func (b *FunBody) NewChunk() symtable.Direct {
	_, h := b.Chunks.Insert(idForChunk(b.Chunks.Len()), ChunkEnt{Cond: symtable.Null, Then: symtable.Null, Next: symtable.Null})
	return h
}

// NewValue appends a fresh value entry and returns its handle.
func (b *FunBody) NewValue(typ symtable.Direct, mutable bool, name string) symtable.Direct {
	_, h := b.Values.Insert(idForValue(b.Values.Len()), ValueEnt{Type: typ, Mutable: mutable, Name: name})
	return h
}

// Emit appends inst to the end of chunk's instruction list.
func (b *FunBody) Emit(chunk symtable.Direct, inst Inst) {
	ent := b.Chunks.Index(chunk)
	ent.Insts = append(ent.Insts, inst)
}
