package interp

import (
	"github.com/jakubDoka/prometh/internal/symtable"
	"github.com/jakubDoka/prometh/internal/typerealm"
)

// Optimize constant-folds Call instructions to a builtin operator whose
// both operands were produced by a Literal instruction earlier in the
// same chunk, replacing the Call with an equivalent Literal. This is a
// deliberately small stand-in for the original's cranelift_preopt pass
// (there is no real instruction selector here to optimize); it only
// ever looks within one chunk, so a constant carried in through a
// VarDecl/Assign from an earlier chunk is not folded.
func Optimize(realm *typerealm.Realm, body *typerealm.FunBody) {
	for i := 0; i < body.Chunks.Len(); i++ {
		chunk := body.Chunks.Index(symtable.Direct(i))
		lits := map[symtable.Direct]typerealm.LitValue{}

		for idx, inst := range chunk.Insts {
			switch inst.Kind {
			case typerealm.Literal:
				lits[inst.Result] = inst.Lit
			case typerealm.Call:
				fn := realm.Functions.Index(inst.Callee)
				if !fn.IsBuiltinOperator || len(inst.Args) != 2 {
					continue
				}
				a, aok := lits[inst.Args[0]]
				b, bok := lits[inst.Args[1]]
				if !aok || !bok {
					continue
				}
				folded, ok := foldConstant(fn.Name, a, b, fn.Signature.Params[0], realm)
				if !ok {
					continue
				}
				chunk.Insts[idx] = typerealm.Inst{Kind: typerealm.Literal, Result: inst.Result, Lit: folded}
				lits[inst.Result] = folded
			}
		}
	}
}

func foldConstant(op string, a, b typerealm.LitValue, operandType symtable.Direct, realm *typerealm.Realm) (typerealm.LitValue, bool) {
	var av, bv Value
	switch {
	case realm.Types.IsFloat(operandType):
		av, bv = floatValue(a.Float), floatValue(b.Float)
	case operandType == realm.Types.Bool:
		av, bv = boolValue(a.Bool), boolValue(b.Bool)
	case realm.Types.IsSigned(operandType):
		av, bv = intValue(a.Int), intValue(b.Int)
	case realm.Types.IsInteger(operandType):
		av, bv = uintValue(a.Uint), uintValue(b.Uint)
	default:
		return typerealm.LitValue{}, false
	}

	result, err := applyOperator(op, []Value{av, bv})
	if err != nil {
		return typerealm.LitValue{}, false
	}

	switch result.Kind {
	case KInt:
		return typerealm.LitValue{Int: result.Int}, true
	case KUint:
		return typerealm.LitValue{Uint: result.Uint}, true
	case KFloat:
		return typerealm.LitValue{Float: result.Float}, true
	case KBool:
		return typerealm.LitValue{Bool: result.Bool}, true
	default:
		return typerealm.LitValue{}, false
	}
}
