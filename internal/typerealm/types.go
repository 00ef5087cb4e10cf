// Package typerealm holds the compiler's type and function universe: the
// 12 builtin scalar types and their 143 synthesized operator overloads
// (seeded once per Realm), user-declared struct/union types, pointer
// types, and every function signature + elaborated body. Everything here
// is addressed by idhash.ID and stored in symtable.Table, never by
// pointer — see internal/symtable's package doc for why.
package typerealm

import (
	"github.com/jakubDoka/prometh/internal/idhash"
	"github.com/jakubDoka/prometh/internal/symtable"
)

// TKind discriminates Type.Structure's meaning.
type TKind int

const (
	// Builtin is one of the 12 scalar types seeded by Seed.
	Builtin TKind = iota
	// Pointer wraps exactly one Base type; Structure.Fields is unused.
	Pointer
	// StructLayout lays Fields out sequentially, each at its own offset.
	StructLayout
	// UnionLayout overlays every field at offset 0 (Open Question #3:
	// size = max(field sizes), every offset = 0).
	UnionLayout
	// Auto stands for "not yet resolved". The elaborator does not check
	// for it: a source that names `auto` as a type gets it in the IR, and
	// errors.ElbAutoLeaked is declared but never raised.
	Auto
)

// Field is one member of a struct or union type.
type Field struct {
	Name   string
	Type   symtable.Direct // into TypeRealm.Types
	Offset int
}

// Structure is the payload for non-pointer, non-builtin types.
type Structure struct {
	Fields []Field
}

// Type is one entry in TypeRealm.Types.
type Type struct {
	Name string
	Kind TKind

	Size  int
	Align int

	Base symtable.Direct // Pointer: pointee. zero value for everything else.

	Structure Structure
}

// TypeRealm owns every Type, keyed by idhash.ID so pointer/struct types
// interned from the same structural description collapse to one entry.
type TypeRealm struct {
	Types *symtable.Table[Type]

	// Builtin type handles, populated by Seed, kept around for fast
	// access from the elaborator's literal-typing code instead of
	// re-hashing "i32" etc. on every literal.
	I8, I16, I32, I64 symtable.Direct
	U8, U16, U32, U64 symtable.Direct
	F32, F64          symtable.Direct
	Bool              symtable.Direct
	AutoType          symtable.Direct
}

// NewTypeRealm creates an empty realm; call Seed to populate builtins.
func NewTypeRealm() *TypeRealm {
	return &TypeRealm{Types: symtable.New[Type]()}
}

// typeID namespaces a type name under BuiltinModuleID, following §4.4's
// empty.add(type_name).combine(builtin_module_id) convention literally
// (builtin types live outside any ModuleEnt, but still get namespaced
// under the reserved builtin module ID rather than the bare name hash).
func typeID(name string) idhash.ID {
	return idhash.New(name).Combine(BuiltinModuleID)
}

// Pointee returns the Base type name is pointing to, or Null if typ is
// not a Pointer.
func (r *TypeRealm) Pointee(typ symtable.Direct) symtable.Direct {
	t := r.Types.Index(typ)
	if t.Kind != Pointer {
		return symtable.Null
	}
	return t.Base
}

// InternPointer returns (creating if necessary) the pointer-to-base
// type, addressed by idhash.New("*").Combine(baseID) so repeated
// `*i32` usages across a file collapse to one Type entry.
func (r *TypeRealm) InternPointer(base symtable.Direct) symtable.Direct {
	baseID := r.Types.DirectToID(base)
	id := idhash.New("*").Combine(baseID)
	if h, ok := r.Types.IDToDirect(id); ok {
		return h
	}
	const pointerSize = 8 // one target architecture assumption: 64-bit
	_, h := r.Types.Insert(id, Type{
		Name:  "*" + r.Types.Index(base).Name,
		Kind:  Pointer,
		Size:  pointerSize,
		Align: pointerSize,
		Base:  base,
	})
	return h
}

// InternStruct interns a named struct type, laying fields out
// sequentially with each field aligned to its own alignment.
func (r *TypeRealm) InternStruct(moduleID idhash.ID, name string, fields []Field) symtable.Direct {
	id := idhash.New(name).Combine(moduleID)

	offset := 0
	align := 1
	for i := range fields {
		fieldType := r.Types.Index(fields[i].Type)
		if fieldType.Align > align {
			align = fieldType.Align
		}
		offset = alignUp(offset, fieldType.Align)
		fields[i].Offset = offset
		offset += fieldType.Size
	}
	size := alignUp(offset, align)

	_, h := r.Types.Insert(id, Type{
		Name:      name,
		Kind:      StructLayout,
		Size:      size,
		Align:     align,
		Structure: Structure{Fields: fields},
	})
	return h
}

// InternUnion interns a named union type: every field sits at offset 0
// and the type's size is the largest field's size.
func (r *TypeRealm) InternUnion(moduleID idhash.ID, name string, fields []Field) symtable.Direct {
	id := idhash.New(name).Combine(moduleID)

	size, align := 0, 1
	for i := range fields {
		fieldType := r.Types.Index(fields[i].Type)
		fields[i].Offset = 0
		if fieldType.Size > size {
			size = fieldType.Size
		}
		if fieldType.Align > align {
			align = fieldType.Align
		}
	}

	_, h := r.Types.Insert(id, Type{
		Name:      name,
		Kind:      UnionLayout,
		Size:      size,
		Align:     align,
		Structure: Structure{Fields: fields},
	})
	return h
}

func alignUp(offset, align int) int {
	if align <= 1 {
		return offset
	}
	rem := offset % align
	if rem == 0 {
		return offset
	}
	return offset + (align - rem)
}

// IsInteger reports whether typ is one of the 8 builtin integer types.
func (r *TypeRealm) IsInteger(typ symtable.Direct) bool {
	switch typ {
	case r.I8, r.I16, r.I32, r.I64, r.U8, r.U16, r.U32, r.U64:
		return true
	}
	return false
}

// IsSigned reports whether typ is one of the 4 signed integer types.
func (r *TypeRealm) IsSigned(typ symtable.Direct) bool {
	switch typ {
	case r.I8, r.I16, r.I32, r.I64:
		return true
	}
	return false
}

// IsFloat reports whether typ is f32 or f64.
func (r *TypeRealm) IsFloat(typ symtable.Direct) bool {
	return typ == r.F32 || typ == r.F64
}
