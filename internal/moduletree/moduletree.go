// Package moduletree resolves a PROMETH source tree into a dependency
// ordered set of modules. Starting from a root file, it follows every
// `use` statement, builds a module graph (detecting cycles as it goes,
// not by walking the finished graph afterward), and exposes both a
// topological build order and the reverse "dependant" edges a later
// incremental-recompile pass would need.
package moduletree

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/jakubDoka/prometh/internal/ast"
	cerrors "github.com/jakubDoka/prometh/internal/errors"
	"github.com/jakubDoka/prometh/internal/idhash"
	"github.com/jakubDoka/prometh/internal/lexer"
	"github.com/jakubDoka/prometh/internal/parser"
	"github.com/jakubDoka/prometh/internal/symtable"
)

// FileExtension is the canonical source extension a use-path is
// resolved against.
const FileExtension = ".pmt"

// Module is one file's parsed, graph-linked representation.
type Module struct {
	Path string // absolute, cleaned filesystem path
	Name string // file stem, used as the module's display name

	Ast *ast.Node

	Dependencies []symtable.Direct // modules this one `use`s
	Dependants   []symtable.Direct // modules that `use` this one

	// AliasToDependency maps an `as alias` (or the bare import name when
	// no alias is given) to the dependency's handle; the builder uses it
	// to reject a second `use` under the same name. Elaboration does not
	// consult it: calls are resolved by plain name through Dependencies.
	AliasToDependency map[string]symtable.Direct
}

// ModuleTree is the result of a successful Build.
type ModuleTree struct {
	Modules *symtable.Table[Module]
	Root    symtable.Direct
	// Order lists every module handle in dependency-first (topological)
	// order: Order[i]'s dependencies all appear at indices < i.
	Order []symtable.Direct
}

// Builder walks the filesystem, accumulating Modules and tracking the
// currently-open import chain so a cycle is caught at the exact `use`
// statement that closes the loop, instead of after the fact.
type Builder struct {
	modules     *symtable.Table[Module]
	pathToID    map[string]idhash.ID
	importStack []string // absolute paths currently being loaded

	// SearchPaths are extra root directories tried, in order, when a
	// `use` path doesn't resolve relative to the importing file — the
	// project-file search_paths list (internal/config) feeds this.
	SearchPaths []string

	// DefaultAttrs seeds every parsed file's attribute set with these
	// project-wide defaults (internal/config's default_attributes),
	// before the file's own #push/#pop attributes are layered on top.
	DefaultAttrs map[string]string

	// CacheHits counts how many times load() found a path already fully
	// loaded (a diamond import) instead of parsing it again. The driver
	// reports this to internal/metrics when -metrics-addr is set.
	CacheHits int

	errs []*cerrors.Error
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		modules:  symtable.New[Module](),
		pathToID: make(map[string]idhash.ID),
	}
}

// Errors returns every error accumulated across the whole build (parser
// errors from every visited file, plus graph errors).
func (b *Builder) Errors() []*cerrors.Error { return b.errs }

// Build resolves rootPath and everything it transitively `use`s.
func (b *Builder) Build(rootPath string) (*ModuleTree, error) {
	abs, err := filepath.Abs(rootPath)
	if err != nil {
		e := cerrors.New(cerrors.LdrIOError, "resolve root path %q: %v", rootPath, err)
		b.errs = append(b.errs, e)
		return nil, e
	}

	root, err := b.load(abs)
	if err != nil {
		return nil, err
	}

	tree := &ModuleTree{Modules: b.modules, Root: root}
	tree.Order, err = topoSort(b.modules)
	if err != nil {
		return nil, err
	}
	return tree, nil
}

// load parses path (if not already parsed) and recursively loads its
// dependencies. Returns the module's handle.
func (b *Builder) load(path string) (symtable.Direct, error) {
	path = filepath.Clean(path)

	// The active-stack cycle check MUST run before the module-store memo
	// check below: a module is inserted into b.modules (step 5 below)
	// before its own `use` statements are walked (step 6), so a genuine
	// self-cycle (a -> b -> a) would otherwise find a already present in
	// the store on the second visit and get misread as a completed
	// diamond import instead of an in-progress cycle. Checking the stack
	// first is what lets a cycle be caught at the exact `use` that closes
	// the loop (spec: "this is what enables cycle detection via the
	// active stack rather than via a post-hoc graph walk").
	for i, active := range b.importStack {
		if active == path {
			chain := append(append([]string{}, b.importStack[i:]...), path)
			e := cerrors.New(cerrors.LdrCyclicImport, "cyclic import: %s", strings.Join(chain, " -> "))
			b.errs = append(b.errs, e)
			return symtable.Null, e
		}
	}

	if id, ok := b.pathToID[path]; ok {
		if h, ok := b.modules.IDToDirect(id); ok {
			b.CacheHits++
			return h, nil // diamond import: already fully loaded
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		e := cerrors.New(cerrors.LdrFileNotFound, "cannot read %q: %v", path, err)
		b.errs = append(b.errs, e)
		return symtable.Null, e
	}

	stem := strings.TrimSuffix(filepath.Base(path), FileExtension)
	if stem == "" {
		e := cerrors.New(cerrors.LdrNoFileStem, "no file stem for %q", path)
		b.errs = append(b.errs, e)
		return symtable.Null, e
	}

	id := idhash.New(path)
	b.pathToID[path] = id

	b.importStack = append(b.importStack, path)
	defer func() { b.importStack = b.importStack[:len(b.importStack)-1] }()

	p := parser.New(lexer.Normalize(data), path)
	p.SeedDefaultAttributes(b.DefaultAttrs)
	tree := p.Parse()
	b.errs = append(b.errs, p.Errors()...)

	_, handle := b.modules.Insert(id, Module{
		Path:              path,
		Name:              stem,
		Ast:               tree,
		AliasToDependency: map[string]symtable.Direct{},
	})

	dir := filepath.Dir(path)
	for _, item := range tree.Children {
		if item.Kind != ast.UseStatement {
			continue
		}
		depHandle, err := b.resolveUse(dir, item)
		if err != nil {
			continue // already recorded on b.errs
		}

		mod := b.modules.Index(handle)

		alias := item.Children
		name := depName(item)
		if len(alias) > 0 && alias[0] != nil {
			name = alias[0].Token.Value
		}
		if _, taken := mod.AliasToDependency[name]; taken {
			e := cerrors.At(cerrors.LdrDuplicateUse, item.Token, "%q already used in this file", name)
			b.errs = append(b.errs, e)
			continue
		}
		mod.Dependencies = append(mod.Dependencies, depHandle)
		mod.AliasToDependency[name] = depHandle

		dep := b.modules.Index(depHandle)
		dep.Dependants = append(dep.Dependants, handle)
	}

	return handle, nil
}

func depName(use *ast.Node) string {
	return strings.TrimSuffix(filepath.Base(use.Token.Value), FileExtension)
}

// resolveUse resolves a `use` path relative to the importing file's
// directory first; if that file doesn't exist, it falls back to each
// configured SearchPaths root in order before giving up (spec §6:
// "use paths are relative to the importing file's directory" — search
// paths are this repo's project-level extension for cross-tree imports,
// consulted only when the relative candidate is absent).
func (b *Builder) resolveUse(dir string, use *ast.Node) (symtable.Direct, error) {
	rel := use.Token.Value
	if !strings.HasSuffix(rel, FileExtension) {
		rel += FileExtension
	}

	target := filepath.Join(dir, rel)
	if _, err := os.Stat(target); err == nil {
		return b.load(target)
	}
	for _, root := range b.SearchPaths {
		candidate := filepath.Join(root, rel)
		if _, err := os.Stat(candidate); err == nil {
			return b.load(candidate)
		}
	}
	return b.load(target) // none found: load the primary candidate so the I/O error is reported normally
}

// topoSort orders modules dependency-first using Kahn's algorithm over
// the Dependencies edges recorded during load.
func topoSort(modules *symtable.Table[Module]) ([]symtable.Direct, error) {
	n := modules.Len()
	indegree := make([]int, n)
	dependants := make([][]symtable.Direct, n)

	for i := 0; i < n; i++ {
		h := modules.DirectAt(i)
		for _, dep := range modules.Index(h).Dependencies {
			indegree[h]++
			dependants[dep] = append(dependants[dep], h)
		}
	}

	var queue []symtable.Direct
	for i := 0; i < n; i++ {
		h := modules.DirectAt(i)
		if indegree[h] == 0 {
			queue = append(queue, h)
		}
	}

	order := make([]symtable.Direct, 0, n)
	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]
		order = append(order, h)
		for _, next := range dependants[h] {
			indegree[next]--
			if indegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if len(order) != n {
		return nil, cerrors.New(cerrors.LdrCyclicImport, "module graph has a cycle not caught during load")
	}
	return order, nil
}
