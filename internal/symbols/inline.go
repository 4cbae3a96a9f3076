package symbols

import (
	"neoc/internal/types"
	"neoc/internal/vmcode"
)

// maxBytesMethod is max(a, b) specialised to str/bytes operands: compare
// lengths, keep the longer operand, dropping the other from the stack.
//
// Grounded on original_source/boa3/model/builtin/method/maxbytestringmethod.py,
// simplified from its full lexicographic byte-by-byte comparison loop
// (left unimplemented for this subset — see DESIGN.md) down to the length
// comparison this subset's operator table exposes, while keeping the same
// two-operand SIZE/GT/pick-and-drop shape.
func maxBytesMethod() *Method {
	return &Method{
		ID:         "max",
		Params:     []*Param{{ID: "a", Type: types.Str}, {ID: "b", Type: types.Str}},
		ReturnType: types.Str,
		Builtin: &Builtin{
			Kind: BuiltinInline,
			Inline: []InlineStep{
				{Opcode: vmcode.OVER},
				{Opcode: vmcode.SIZE},
				{Opcode: vmcode.REVERSE3},
				{Opcode: vmcode.SIZE},
				{Opcode: vmcode.GT},
				{Opcode: vmcode.JMPIFNOT, Operand: []byte{4}},
				{Opcode: vmcode.DROP},
				{Opcode: vmcode.JMP, Operand: []byte{3}},
				{Opcode: vmcode.NIP},
			},
		},
	}
}

// startswithMethod is str.startswith(prefix)/bytes.startswith(prefix): the
// instruction sequence is identical for both operand types (both lower to
// ByteString at the stack-item level), so this is modelled as a
// BuiltinPolymorphic whose Resolve always returns the same template. It is
// declared under the bare name startswith, taking self and prefix as its
// two parameters; the analyser resolves it like any other global method
// and does not consult Resolve.
//
// Grounded on original_source/boa3/model/builtin/classmethod/startswithmethod.py.
func startswithMethod() *Method {
	template := []InlineStep{
		{Opcode: vmcode.LEFT},
		{Opcode: vmcode.EQUAL},
	}
	return &Method{
		ID:         "startswith",
		Params:     []*Param{{ID: "self", Type: types.Str}, {ID: "prefix", Type: types.Str}},
		ReturnType: types.Bool,
		Builtin: &Builtin{
			Kind: BuiltinPolymorphic,
			Resolve: func(args []*types.Type) []InlineStep {
				return template
			},
		},
	}
}
