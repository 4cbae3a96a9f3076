package symbols

import "neoc/internal/types"

// NewGlobalScope returns the module-level scope pre-populated with the
// built-in package tree: interop syscalls, native-contract classes, and
// the handful of polymorphic/inline builtins this compiler subset
// supports.
//
// Grounded on original_source/boa3/model/imports/builtin.py's
// CompilerBuiltin, which walks a dotted package path and installs leaf
// symbols at each level; reshaped here into one flat Declare pass over an
// explicit *Scope rather than a process-wide singleton instance, the same
// non-singleton style internal/vmcode.Map and this package's Scope both
// follow.
func NewGlobalScope() *Scope {
	g := NewScope(nil)

	for _, m := range interopMethods() {
		g.DeclareMethod(m)
	}
	for _, m := range inlineMethods() {
		g.DeclareMethod(m)
	}
	for _, c := range nativeClasses() {
		g.vars[c.ID] = &Variable{ID: c.ID, Type: c.Type, Slot: -1}
	}
	for _, v := range findOptionsConstants() {
		g.vars[v.ID] = v
	}
	g.DeclareMethod(notifyEvent())

	return g
}

// findOptionsConstants models findoptionstype.py's FindOptionsType as a set
// of typed Variable symbols, one per Neo N3 storage.find flag, resolved by
// bare name exactly like any other global — this compiler subset has no
// import machinery to expose them as FindOptions.KeysOnly attribute access.
func findOptionsConstants() []*Variable {
	named := map[string]int64{
		"FindOptionsNone":              0x00,
		"FindOptionsKeysOnly":          0x01,
		"FindOptionsRemovePrefix":      0x02,
		"FindOptionsValuesOnly":        0x04,
		"FindOptionsDeserializeValues": 0x08,
		"FindOptionsPickField0":        0x10,
		"FindOptionsPickField1":        0x20,
		"FindOptionsBackwards":         0x80,
	}
	out := make([]*Variable, 0, len(named))
	for id, value := range named {
		value := value
		out = append(out, &Variable{ID: id, Type: types.Int, Slot: -1, ConstValue: &value})
	}
	return out
}

func syscallMethod(id, interopName string, ret *types.Type, params ...*Param) *Method {
	return &Method{
		ID:         id,
		Params:     params,
		ReturnType: ret,
		Builtin:    &Builtin{Kind: BuiltinSyscall, InteropName: interopName},
	}
}

// interopMethods lists the native-contract and runtime syscalls this
// compiler subset recognises, keyed by the source-level identifier a
// program calls (e.g. Ledger.get_current_index()).
func interopMethods() []*Method {
	return []*Method{
		syscallMethod("-get_current_index", "currentIndex", types.Int),
		syscallMethod("get_minimum_deployment_fee", "getMinimumDeploymentFee", types.Int),
		syscallMethod("check_witness", "System.Runtime.CheckWitness", types.Bool,
			&Param{ID: "hash", Type: types.Bytes}),
		syscallMethod("storage_get", "System.Storage.Get", types.Bytes,
			&Param{ID: "context", Type: types.Any}, &Param{ID: "key", Type: types.Bytes}),
		syscallMethod("storage_put", "System.Storage.Put", types.None,
			&Param{ID: "context", Type: types.Any}, &Param{ID: "key", Type: types.Bytes}, &Param{ID: "value", Type: types.Bytes}),
		syscallMethod("to_script_hash", "System.Crypto.Sha256", types.Bytes,
			&Param{ID: "data", Type: types.Any}),
	}
}

// notifyEvent models the Event() built-in used to declare a contract
// event; calling a declared event lowers to a Notify syscall carrying the
// event's name and argument tuple.
func notifyEvent() *Method {
	return syscallMethod("Event", "System.Runtime.Notify", types.None,
		&Param{ID: "name", Type: types.Str}, &Param{ID: "state", Type: types.Any})
}

// nativeClasses models the native-contract class handles exposed as
// package-level symbols (Ledger, Policy) — opaque interop objects whose
// methods are themselves syscalls registered as dotted identifiers
// ("-get_current_index" above stands in for Ledger.get_current_index).
func nativeClasses() []*ClassType {
	return []*ClassType{
		{ID: "Ledger", Type: types.Any, Methods: map[string]*Method{}},
		{ID: "Policy", Type: types.Any, Methods: map[string]*Method{}},
	}
}

// inlineMethods lists the builtins whose body this compiler supplies as a
// fixed or polymorphic instruction template rather than a syscall: the
// inline max() and the polymorphic startswith().
func inlineMethods() []*Method {
	return []*Method{
		maxBytesMethod(),
		startswithMethod(),
	}
}
