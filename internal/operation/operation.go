// Package operation implements the operation-descriptor lattice: for each
// source operator, the required operand types, result type, stack effect,
// and concrete opcode sequence the code generator emits verbatim.
//
// Grounded on original_source/boa3/model/operation/{unaryop,binaryop}.py and
// the resolution logic of boa3/analyser/typeanalyser.py's get_bin_op/
// get_un_op, reshaped into total lookup tables instead of raise/except.
package operation

import (
	"neoc/internal/types"
	"neoc/internal/vmcode"
)

// Kind names the source-level operator token, independent of the operand
// types used to resolve it.
type Kind string

const (
	Add       Kind = "+"
	Sub       Kind = "-"
	Mul       Kind = "*"
	Div       Kind = "//"
	TrueDiv   Kind = "/"
	Mod       Kind = "%"
	Pow       Kind = "**"
	Eq        Kind = "=="
	NotEq     Kind = "!="
	Gt        Kind = ">"
	Lt        Kind = "<"
	GtE       Kind = ">="
	LtE       Kind = "<="
	And       Kind = "and"
	Or        Kind = "or"
	Is        Kind = "is"
	In        Kind = "in"
	Not       Kind = "not"
	Positive  Kind = "u+"
	Negative  Kind = "u-"
)

// Emission is one concrete VM instruction template: an opcode plus a fixed
// immediate operand (nil when the opcode carries none). The code generator
// appends these to the instruction map unmodified, in order.
type Emission struct {
	Opcode  vmcode.OpCode
	Operand []byte
}

// StackEffect records how many items an operation consumes and produces on
// the simulated operand stack.
type StackEffect struct {
	Consumes int
	Produces int
}

// BinaryDescriptor is an operation descriptor for a two-operand operator.
// Lookup is by (operator, left type, right type).
type BinaryDescriptor struct {
	Operator   Kind
	Left       *types.Type
	Right      *types.Type
	Result     *types.Type
	Effect     StackEffect
	Emit       []Emission
}

// UnaryDescriptor mirrors BinaryDescriptor for single-operand operators.
type UnaryDescriptor struct {
	Operator Kind
	Operand  *types.Type
	Result   *types.Type
	Effect   StackEffect
	Emit     []Emission
}

func op1(code vmcode.OpCode) []Emission { return []Emission{{Opcode: code}} }

func bin(operator Kind, left, right, result *types.Type, emit ...vmcode.OpCode) BinaryDescriptor {
	es := make([]Emission, len(emit))
	for i, o := range emit {
		es[i] = Emission{Opcode: o}
	}
	return BinaryDescriptor{
		Operator: operator, Left: left, Right: right, Result: result,
		Effect: StackEffect{Consumes: 2, Produces: 1},
		Emit:   es,
	}
}

// binaryTable is total over the operators this compiler subset supports.
// Entries absent here but present in binaryOperators (below) exist at the
// operator level but not for the attempted operand types — the analyser
// uses that distinction to choose between MismatchedTypes and
// NotSupportedOperation.
var binaryTable = map[Kind]map[string]BinaryDescriptor{
	Add: {
		key(types.Int, types.Int): bin(Add, types.Int, types.Int, types.Int, vmcode.ADD),
	},
	Sub: {
		key(types.Int, types.Int): bin(Sub, types.Int, types.Int, types.Int, vmcode.SUB),
	},
	Mul: {
		key(types.Int, types.Int): bin(Mul, types.Int, types.Int, types.Int, vmcode.MUL),
	},
	Div: {
		key(types.Int, types.Int): bin(Div, types.Int, types.Int, types.Int, vmcode.DIV),
	},
	Mod: {
		key(types.Int, types.Int): bin(Mod, types.Int, types.Int, types.Int, vmcode.MOD),
	},
	Eq: {
		key(types.Int, types.Int):   bin(Eq, types.Int, types.Int, types.Bool, vmcode.NUMEQUAL),
		key(types.Str, types.Str):   bin(Eq, types.Str, types.Str, types.Bool, vmcode.EQUAL),
		key(types.Bool, types.Bool): bin(Eq, types.Bool, types.Bool, types.Bool, vmcode.EQUAL),
	},
	NotEq: {
		key(types.Int, types.Int):   bin(NotEq, types.Int, types.Int, types.Bool, vmcode.NUMNOTEQUAL),
		key(types.Str, types.Str):   bin(NotEq, types.Str, types.Str, types.Bool, vmcode.NOTEQUAL),
		key(types.Bool, types.Bool): bin(NotEq, types.Bool, types.Bool, types.Bool, vmcode.NOTEQUAL),
	},
	Gt:  {key(types.Int, types.Int): bin(Gt, types.Int, types.Int, types.Bool, vmcode.GT)},
	Lt:  {key(types.Int, types.Int): bin(Lt, types.Int, types.Int, types.Bool, vmcode.LT)},
	GtE: {key(types.Int, types.Int): bin(GtE, types.Int, types.Int, types.Bool, vmcode.GE)},
	LtE: {key(types.Int, types.Int): bin(LtE, types.Int, types.Int, types.Bool, vmcode.LE)},
	And: {
		key(types.Bool, types.Bool): bin(And, types.Bool, types.Bool, types.Bool, vmcode.BOOLAND),
	},
	Or: {
		key(types.Bool, types.Bool): bin(Or, types.Bool, types.Bool, types.Bool, vmcode.BOOLOR),
	},
	Is: {
		key(types.Any, types.Any): bin(Is, types.Any, types.Any, types.Bool, vmcode.EQUAL),
	},
}

// binaryOperators is the set of operators the source language surfaces at
// all, independent of operand types — used to distinguish
// "wrong types for this operator" (MismatchedTypes) from "operator doesn't
// exist here" (NotSupportedOperation). Pow and TrueDiv are deliberately
// absent: the VM has no exponentiation opcode and this subset has no float
// type, so both are unsupported for every operand type, not merely
// mismatched for some of them.
var binaryOperators = map[Kind]bool{
	Add: true, Sub: true, Mul: true, Div: true, Mod: true,
	Eq: true, NotEq: true, Gt: true, Lt: true, GtE: true, LtE: true,
	And: true, Or: true, Is: true, In: true,
}

func key(l, r *types.Type) string { return l.Identifier() + "\x00" + r.Identifier() }

// LookupBinary resolves (operator, left, right) deterministically.
// ok=false + known=true means the operator exists but not for these types
// (MismatchedTypes); ok=false + known=false means the operator itself is
// unsupported (NotSupportedOperation).
func LookupBinary(operator Kind, left, right *types.Type) (desc BinaryDescriptor, ok, known bool) {
	table, known := binaryTable[operator]
	if !known {
		known = binaryOperators[operator]
		return BinaryDescriptor{}, false, known
	}
	d, found := table[key(left, right)]
	return d, found, true
}

var unaryTable = map[Kind]map[string]UnaryDescriptor{
	Positive: {
		types.Int.Identifier(): {Operator: Positive, Operand: types.Int, Result: types.Int, Effect: StackEffect{Consumes: 1, Produces: 1}},
	},
	Negative: {
		types.Int.Identifier(): {Operator: Negative, Operand: types.Int, Result: types.Int, Effect: StackEffect{Consumes: 1, Produces: 1}, Emit: op1(vmcode.NEGATE)},
	},
	Not: {
		types.Bool.Identifier(): {Operator: Not, Operand: types.Bool, Result: types.Bool, Effect: StackEffect{Consumes: 1, Produces: 1}, Emit: op1(vmcode.NOT)},
	},
}

var unaryOperators = map[Kind]bool{Positive: true, Negative: true, Not: true}

// LookupUnary mirrors LookupBinary for single-operand operators.
func LookupUnary(operator Kind, operand *types.Type) (desc UnaryDescriptor, ok, known bool) {
	table, known := unaryTable[operator]
	if !known {
		known = unaryOperators[operator]
		return UnaryDescriptor{}, false, known
	}
	d, found := table[operand.Identifier()]
	return d, found, true
}
