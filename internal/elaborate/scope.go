package elaborate

import "github.com/jakubDoka/prometh/internal/symtable"

// localVar is one entry in the current function's variable scope.
type localVar struct {
	value   symtable.Direct
	mutable bool
}

// scopeStack is a stack of block scopes (function body, then one per
// nested if/loop block) so a loop-local `var` doesn't leak past its
// closing DEDENT.
type scopeStack struct {
	frames []map[string]localVar
}

func newScopeStack() *scopeStack {
	s := &scopeStack{}
	s.push()
	return s
}

func (s *scopeStack) push() { s.frames = append(s.frames, map[string]localVar{}) }
func (s *scopeStack) pop()  { s.frames = s.frames[:len(s.frames)-1] }

func (s *scopeStack) define(name string, v symtable.Direct, mutable bool) {
	s.frames[len(s.frames)-1][name] = localVar{value: v, mutable: mutable}
}

func (s *scopeStack) lookup(name string) (localVar, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if v, ok := s.frames[i][name]; ok {
			return v, true
		}
	}
	return localVar{}, false
}

// loopFrame tracks the state needed to elaborate `break` inside one
// enclosing loop: where to jump to, and the write-once slot that
// collects the loop's value the first time a `break label expr` is
// seen. A later valued break to the same label whose value type differs
// is an elaborator error; a break without a value is not compared with
// valued ones, so mixing the two is not reported.
type loopFrame struct {
	label          string
	exitChunk      symtable.Direct
	breakValueSlot symtable.Direct // symtable.Null until the first valued break
	valueType      symtable.Direct
	hasValue       bool
}

type loopStack struct {
	frames []*loopFrame
}

func (s *loopStack) push(f *loopFrame) { s.frames = append(s.frames, f) }
func (s *loopStack) pop()              { s.frames = s.frames[:len(s.frames)-1] }

// find looks a label up innermost-first; an empty label matches the
// innermost loop (a bare `break` with no explicit target — our grammar
// always supplies a label token, defaulting to the loop's own token
// when the source omits one, so this mainly serves defensive callers).
func (s *loopStack) find(label string) (*loopFrame, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if s.frames[i].label == label {
			return s.frames[i], true
		}
	}
	if label == "" && len(s.frames) > 0 {
		return s.frames[len(s.frames)-1], true
	}
	return nil, false
}
