// Package idhash computes the stable content-addressed IDs used to key
// every symbol and dependency edge in the compiler: modules, types,
// functions and builtin operator overloads are all named by hashing a
// string with an SDBM-family mix.
//
// Combine is the namespace convention used throughout the rest of the
// compiler: symbol_id = local_name.combine(enclosing_module_id), and
// overload_id = op.combine(lhs_type).combine(rhs_type).combine(module_id).
// Combine is neither commutative nor associative — swapping the order or
// the grouping at any callsite silently changes which symbol is
// addressed, not an error.
package idhash

// ID is a 64-bit opaque hash. Two IDs built from the same sequence of
// Add/Combine calls are guaranteed equal; there is no reverse mapping
// from an ID back to the strings that produced it.
type ID uint64

// Empty is the neutral starting ID, equivalent to Rust's ID::new().
const Empty ID = 0

// Add mixes the bytes of str into id using the SDBM hash recurrence and
// returns the resulting ID. It does not modify id.
func (id ID) Add(str string) ID {
	h := uint64(id)
	for i := 0; i < len(str); i++ {
		c := uint64(str[i])
		h = c + (h << 6) + (h << 16) - h
	}
	return ID(h)
}

// Combine performs a second SDBM pass over other's 8 little-endian bytes,
// seeded by id. This is how two already-hashed IDs are composed into a
// new namespace without needing the original strings: it is NOT the same
// as re-hashing the concatenation of two strings, and it is not
// commutative (id.Combine(other) != other.Combine(id) in general).
func (id ID) Combine(other ID) ID {
	h := uint64(id)
	v := uint64(other)
	// Mix all 8 bytes of other's value, matching the Add recurrence applied
	// to its little-endian byte representation so Combine stays a pure
	// function of the two 64-bit values (no string allocation needed).
	for i := 0; i < 8; i++ {
		c := (v >> (8 * uint(i))) & 0xff
		h = c + (h << 6) + (h << 16) - h
	}
	return ID(h)
}

// New returns Empty.Add(str), a convenience for the common case of
// hashing a single string with no prior namespace.
func New(str string) ID {
	return Empty.Add(str)
}
