// Package symbols models the resolvable names a source module can
// reference: local/global variables, user-defined methods, events,
// built-in callables, and the package tree that groups them.
//
// Grounded on original_source/boa3/model/variable.py for Variable, on
// boa3/model/builtin/{decorator/builtindecorator,method/builtinevent}.py
// for the Method/Event shape, and on boa3/model/imports/builtin.py and
// native/nativecontract.py for the package-tree layout — reshaped from a
// process-wide CompilerBuiltin singleton into an explicit *Scope value, the
// same non-singleton style internal/vmcode.Map already uses.
package symbols

import (
	"neoc/internal/types"
	"neoc/internal/vmcode"
)

// Symbol is any name a scope can resolve.
type Symbol interface {
	Identifier() string
	symbol()
}

// Variable is a local, global, or parameter binding.
type Variable struct {
	ID   string
	Type *types.Type

	// Slot is the local variable's storage slot once the code generator
	// assigns one; -1 for names not yet assigned a slot (globals).
	Slot int

	// ConstValue, when non-nil, marks this Variable as a fixed-value global
	// constant (an enum member such as FindOptions.KeysOnly) rather than a
	// storage slot binding: the code generator pushes this literal in place
	// of a LDLOC whenever the identifier resolves to it.
	ConstValue *int64
}

func (v *Variable) Identifier() string { return v.ID }
func (*Variable) symbol()              {}

// Param is a Variable with no independent storage slot; the code
// generator assigns it a slot identically to a local, in declaration
// order, during the method's INITSLOT prologue.
type Param = Variable

// Method is a user-defined or built-in callable.
type Method struct {
	ID         string
	Params     []*Param
	ReturnType *types.Type

	// IsPublic marks a @public-decorated method for inclusion in the
	// generated ABI/manifest.
	IsPublic bool
	// IsMetadata marks the single @metadata-decorated function whose
	// body's `field = literal` assignments populate the manifest's
	// author/email/description extras, supported standards and trusts.
	IsMetadata bool

	// Builtin, when non-nil, supplies this method's code-generation
	// behaviour in place of a compiled function body — see Builtin below.
	Builtin *Builtin
}

func (m *Method) Identifier() string { return m.ID }
func (*Method) symbol()              {}

// Arity reports the number of declared parameters.
func (m *Method) Arity() int { return len(m.Params) }

// Event is a contract event declaration: a name plus a fixed argument
// list, with no return type and no body. The analyser rejects a call to an
// Event symbol as a call to a non-callable symbol, so the code generator
// never lowers one.
type Event struct {
	ID     string
	Params []*Param
}

func (e *Event) Identifier() string { return e.ID }
func (*Event) symbol()              {}

// ClassType models a built-in or interop class surfaced as a symbol —
// e.g. the native Ledger/Policy contract classes — rather than a
// user-defined class statement, which this compiler subset does not
// support: interop objects are opaque handles threaded through syscalls,
// never user-subclassed or given their own methods.
type ClassType struct {
	ID      string
	Type    *types.Type
	Methods map[string]*Method
}

func (c *ClassType) Identifier() string { return c.ID }
func (*ClassType) symbol()              {}

// BuiltinKind distinguishes the code-generation strategies a built-in
// callable can use.
type BuiltinKind int

const (
	// BuiltinSyscall emits a single SYSCALL with a fixed 4-byte interop
	// method hash — e.g. every native-contract and interop-package call.
	BuiltinSyscall BuiltinKind = iota
	// BuiltinInline emits a fixed instruction sequence built once and
	// reused verbatim for every call site — e.g. max() over str operands.
	BuiltinInline
	// BuiltinPolymorphic selects its template through Builtin.Resolve,
	// which takes argument types. The one instance here, startswith(),
	// returns the same template for str and bytes, and the code generator
	// calls Resolve with nil.
	BuiltinPolymorphic
)

// Builtin is the code-generation descriptor attached to a Method whose
// body this compiler supplies, rather than compiling from source.
type Builtin struct {
	Kind BuiltinKind

	// InteropName is the syscall's ASCII method name for BuiltinSyscall
	// (e.g. "System.Runtime.Notify", "getMinimumDeploymentFee"); the code
	// generator derives the 4-byte SYSCALL operand from it by hashing,
	// mirroring how Neo identifies interop methods at the VM level.
	InteropName string

	// Inline is the fixed instruction template for BuiltinInline,
	// expressed as (opcode, operand) pairs; the code generator appends
	// them to the instruction map unmodified.
	Inline []InlineStep

	// Resolve picks the concrete instruction template for
	// BuiltinPolymorphic given the resolved argument types.
	Resolve func(args []*types.Type) []InlineStep
}

// InlineStep is one opcode-plus-operand step of an inline builtin body.
type InlineStep struct {
	Opcode  vmcode.OpCode
	Operand []byte
}
