// Package symtable implements the keyed, insertion-ordered entity store
// used for every arena in the compiler (modules, types, functions). It
// replaces the reference-counted interior-mutable cells the original
// implementation used (module -> function -> return-type -> module forms
// a cycle through raw pointers there): entities live in a SymTable and
// refer to each other by a small stable handle, never a pointer, so
// cyclic references between entities are just integer edges with no
// ownership problem.
package symtable

import "github.com/jakubDoka/prometh/internal/idhash"

// Direct is a dense integer handle returned for every inserted entry.
// Handles are stable for the lifetime of the table; Table never supports
// removal, so a handle obtained once stays valid for as long as the
// table does.
type Direct int

// Null is the reserved sentinel handle that indexes nothing, chosen as
// -1 specifically because 0 is a valid handle (the first entry ever
// inserted, e.g. a function's entry chunk or first value). A struct
// field of type Direct that can be "unset" — a chunk's optional branch
// target, an un-resolved module_ref — must be explicitly initialized to
// Null; its Go zero value is NOT Null and will be misread as a handle
// to whatever was inserted first.
const Null Direct = -1

// Table is a keyed, insertion-ordered store. Looking an entry up by its
// idhash.ID costs one map lookup; looking it up by handle is a slice
// index. Table is not safe for concurrent use — per §5, each table is
// owned exclusively by the compilation driver for the duration of a pass.
type Table[E any] struct {
	entries   []E
	ids       []idhash.ID
	idToIndex map[idhash.ID]Direct
}

// New creates an empty table.
func New[E any]() *Table[E] {
	return &Table[E]{
		idToIndex: make(map[idhash.ID]Direct),
	}
}

// Insert adds entry under id. If id is already present, the existing
// handle is returned (with prevHandle set to it too) and its entry is
// replaced in place; otherwise a fresh handle is appended and prevHandle
// is Null.
func (t *Table[E]) Insert(id idhash.ID, entry E) (prevHandle Direct, handle Direct) {
	if existing, ok := t.idToIndex[id]; ok {
		t.entries[existing] = entry
		return existing, existing
	}
	handle = Direct(len(t.entries))
	t.entries = append(t.entries, entry)
	t.ids = append(t.ids, id)
	t.idToIndex[id] = handle
	return Null, handle
}

// IDToDirect returns the handle for id, if any has been inserted.
func (t *Table[E]) IDToDirect(id idhash.ID) (Direct, bool) {
	h, ok := t.idToIndex[id]
	return h, ok
}

// DirectToID returns the ID that produced handle. Panics on an
// out-of-range handle (including Null) — callers are expected to only
// pass handles previously returned by Insert.
func (t *Table[E]) DirectToID(handle Direct) idhash.ID {
	return t.ids[handle]
}

// Index returns a pointer to the entry at handle for in-place mutation,
// mirroring index_mut in the spec. There is no separate read-only
// accessor: Index serves both reads and writes.
func (t *Table[E]) Index(handle Direct) *E {
	return &t.entries[handle]
}

// Len returns the number of entries inserted so far.
func (t *Table[E]) Len() int {
	return len(t.entries)
}

// Entries returns the table contents in insertion order. The returned
// slice aliases internal storage and must not be mutated by the caller.
func (t *Table[E]) Entries() []E {
	return t.entries
}

// DirectAt returns the handle for the nth inserted entry; it is here to
// let callers iterate (handle, entry) pairs without recomputing IDs.
func (t *Table[E]) DirectAt(i int) Direct {
	return Direct(i)
}
