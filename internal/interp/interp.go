package interp

import (
	"fmt"

	"github.com/jakubDoka/prometh/internal/symtable"
	"github.com/jakubDoka/prometh/internal/typerealm"
)

// Backend is the contract a code generator (real or, here, reference)
// must satisfy: given a function handle and argument values, produce
// the function's return value or an error.
type Backend interface {
	Run(realm *typerealm.Realm, fn symtable.Direct, args []Value) (Value, error)
}

// Interpreter tree-walks a FunBody's Chunk graph. It keeps no per-call
// state (env is rebuilt fresh per Run call); the Realm it reads is made
// of symtable.Tables, which are not safe for concurrent use (see the
// symtable.Table doc), so running several Run calls over one Realm at
// the same time is not supported, as for every other pass here.
type Interpreter struct {
	Settings Settings
}

// New creates an Interpreter with the given settings (zero value is a
// perfectly usable "no flags, no triplet, no optimization" default).
func New(settings Settings) *Interpreter {
	return &Interpreter{Settings: settings}
}

func (in *Interpreter) Run(realm *typerealm.Realm, fn symtable.Direct, args []Value) (Value, error) {
	entry := realm.Functions.Index(fn)
	if entry.Body == symtable.Null {
		return Value{}, fmt.Errorf("function %q has no body (linkage=import?)", entry.Name)
	}
	body := *realm.Bodies.Index(entry.Body)

	env := make([]Value, body.Values.Len())
	for i, v := range args {
		if i >= len(env) {
			break
		}
		env[i] = v
	}

	chunk := body.Entry
	for {
		ent := body.Chunks.Index(chunk)
		retVal, returned, err := in.runChunk(realm, &body, env, ent)
		if err != nil {
			return Value{}, err
		}
		if returned {
			return retVal, nil
		}

		switch {
		case ent.Cond != symtable.Null:
			if toBool(env[ent.Cond]) {
				chunk = ent.Then
			} else {
				chunk = ent.Next
			}
		case ent.Next != symtable.Null:
			chunk = ent.Next
		default:
			// A chunk with no Return, no Cond, and no Next: control has run
			// off the end of the body without returning. The elaborator
			// leaves such chunks, e.g. at the end of a body whose last
			// statement is not a return.
			return Value{}, fmt.Errorf("chunk %d has no terminator", chunk)
		}
	}
}

// runChunk executes ent's straight-line instructions against env.
// Returns (value, true, nil) if a Return instruction ran.
func (in *Interpreter) runChunk(realm *typerealm.Realm, body *typerealm.FunBody, env []Value, ent *typerealm.ChunkEnt) (Value, bool, error) {
	for _, inst := range ent.Insts {
		switch inst.Kind {
		case typerealm.NoOp:
			continue
		case typerealm.UnresolvedCall:
			return Value{}, false, fmt.Errorf("unresolved call to %q reached the interpreter", inst.CalleeName)

		case typerealm.Literal:
			env[inst.Result] = literalToValue(inst.Lit, body.Values.Index(inst.Result).Type, realm)

		case typerealm.ZeroValue:
			env[inst.Result] = zeroValue(body.Values.Index(inst.Result).Type, realm)

		case typerealm.VarDecl:
			env[inst.Result] = env[inst.Init]

		case typerealm.Assign:
			env[inst.Target] = env[inst.Source]

		case typerealm.Call:
			args := make([]Value, len(inst.Args))
			for i, a := range inst.Args {
				args[i] = env[a]
			}
			fnEnt := realm.Functions.Index(inst.Callee)
			var result Value
			var err error
			if fnEnt.IsBuiltinOperator {
				result, err = applyOperator(fnEnt.Name, args)
			} else {
				result, err = in.Run(realm, inst.Callee, args)
			}
			if err != nil {
				return Value{}, false, err
			}
			if inst.Result != symtable.Null {
				env[inst.Result] = result
			}

		case typerealm.Return:
			if inst.Value == symtable.Null {
				return Value{}, true, nil
			}
			return env[inst.Value], true, nil

		default:
			return Value{}, false, fmt.Errorf("unhandled instruction kind %v", inst.Kind)
		}
	}
	return Value{}, false, nil
}

func toBool(v Value) bool {
	switch v.Kind {
	case KBool:
		return v.Bool
	case KInt:
		return v.Int != 0
	case KUint:
		return v.Uint != 0
	default:
		return false
	}
}

func literalToValue(lit typerealm.LitValue, typ symtable.Direct, realm *typerealm.Realm) Value {
	switch {
	case realm.Types.IsFloat(typ):
		return floatValue(lit.Float)
	case typ == realm.Types.Bool:
		return boolValue(lit.Bool)
	case realm.Types.IsSigned(typ):
		return intValue(lit.Int)
	case realm.Types.IsInteger(typ):
		return uintValue(lit.Uint)
	default:
		return Value{Kind: KBytes, Bytes: lit.Bytes}
	}
}

func zeroValue(typ symtable.Direct, realm *typerealm.Realm) Value {
	switch {
	case realm.Types.IsFloat(typ):
		return floatValue(0)
	case typ == realm.Types.Bool:
		return boolValue(false)
	case realm.Types.IsSigned(typ):
		return intValue(0)
	default:
		return uintValue(0)
	}
}
