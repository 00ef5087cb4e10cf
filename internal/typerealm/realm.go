package typerealm

import "github.com/jakubDoka/prometh/internal/symtable"

// Realm is the compilation-wide context threaded through every pass
// after parsing: the type universe, every function signature, and every
// elaborated function body. internal/elaborate and internal/interp
// both take a *Realm rather than reaching for package
// state, which is what keeps module/type/function lookups free of the
// global-flavored state the redesigned architecture replaces.
type Realm struct {
	Types     *TypeRealm
	Functions *symtable.Table[Function]
	Bodies    *symtable.Table[*FunBody]
}

// NewRealm creates an empty, unseeded Realm. Call Seed before using it
// for anything — an unseeded Realm has no builtin types or operators,
// so every literal and binary expression would fail to resolve.
func NewRealm() *Realm {
	return &Realm{
		Types:     NewTypeRealm(),
		Functions: symtable.New[Function](),
		Bodies:    symtable.New[*FunBody](),
	}
}

// NewBody allocates an empty FunBody and attaches it to fn.
func (r *Realm) NewBody(fn symtable.Direct) *FunBody {
	body := NewFunBody()
	id := idForValue(r.Bodies.Len()) // bodies have no natural name either
	_, h := r.Bodies.Insert(id, body)
	entry := r.Functions.Index(fn)
	entry.Body = h
	return body
}
