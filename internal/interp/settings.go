package interp

import "strings"

// Settings carries the CLI's `comp_flags=` and `triplet=` passthrough
// (restored from the original's object-file generator, see
// SPEC_FULL.md) to the interpreter. Flags is either `k=v` pairs or a
// bare name treated as a boolean enable; Triplet has no effect on a
// tree-walking backend — there is no ISA to select — beyond being
// recorded; when it is set, the driver prints a notice that it has no
// effect.
type Settings struct {
	Flags   map[string]string
	Triplet string
	Opt     bool
}

// ParseCompFlags parses a `k=v k2 k3=v3` string into a flag map, a bare
// word meaning "enabled" (mapped to "true"), matching the original
// generate_obj_file's comp_flags parsing.
func ParseCompFlags(raw string) map[string]string {
	flags := map[string]string{}
	for _, field := range strings.Fields(raw) {
		if k, v, ok := strings.Cut(field, "="); ok {
			flags[k] = v
		} else {
			flags[field] = "true"
		}
	}
	return flags
}
