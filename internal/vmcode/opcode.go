// Package vmcode implements the Neo VM instruction map (C1): the data
// structure that owns the emitted instruction stream, resolves jump/call
// targets, re-pads instructions whose operand has outgrown its short form,
// and produces the final byte-for-byte script.
//
// Grounded on original_source/boa3/compiler/vmcodemapping.py (the map
// itself) and boa3/compiler/codegenerator.py (literal-to-opcode selection),
// reshaped into an explicit opcode table plus an append-only instruction
// sequence, the idiom a bytecode chunk type elsewhere in this module family
// also follows.
package vmcode

// OpCode is a single Neo VM opcode byte.
type OpCode byte

const (
	// Constants
	PUSHM1 OpCode = iota
	PUSH0
	PUSH1
	PUSH2
	PUSH3
	PUSH4
	PUSH5
	PUSH6
	PUSH7
	PUSH8
	PUSH9
	PUSH10
	PUSH11
	PUSH12
	PUSH13
	PUSH14
	PUSH15
	PUSH16
	PUSHNULL
	PUSHDATA1
	PUSHDATA2
	PUSHDATA4

	// Flow control
	NOP
	JMP
	JMP_L
	JMPIF
	JMPIF_L
	JMPIFNOT
	JMPIFNOT_L
	CALL
	CALL_L
	RET
	SYSCALL

	// Stack
	DUP
	DROP
	NIP
	OVER
	SWAP
	REVERSE3

	// Slots
	INITSLOT
	LDARG0
	LDARG1
	LDARG2
	LDARG3
	LDARG4
	LDARG5
	LDARG6
	LDARG
	STARG0
	STARG1
	STARG2
	STARG3
	STARG4
	STARG5
	STARG6
	STARG
	LDLOC0
	LDLOC1
	LDLOC2
	LDLOC3
	LDLOC4
	LDLOC5
	LDLOC6
	LDLOC
	STLOC0
	STLOC1
	STLOC2
	STLOC3
	STLOC4
	STLOC5
	STLOC6
	STLOC
	LDSFLD0
	LDSFLD1
	LDSFLD2
	LDSFLD3
	LDSFLD4
	LDSFLD5
	LDSFLD6
	LDSFLD
	STSFLD0
	STSFLD1
	STSFLD2
	STSFLD3
	STSFLD4
	STSFLD5
	STSFLD6
	STSFLD

	// Splice / arrays / maps
	SUBSTR
	LEFT
	RIGHT
	SIZE
	PICKITEM
	SETITEM
	NEWARRAY0
	NEWARRAY
	NEWMAP
	PACK
	APPEND

	// Arithmetic
	ADD
	SUB
	MUL
	DIV
	MOD
	NEGATE
	INC
	DEC

	// Boolean / comparison
	NOT
	BOOLAND
	BOOLOR
	NUMEQUAL
	NUMNOTEQUAL
	EQUAL
	NOTEQUAL
	GT
	LT
	GE
	LE

	// Type
	CONVERT
)

// ConvertIntegerType is the CONVERT immediate operand for the Integer
// stack-item type.
const ConvertIntegerType byte = 0x21

// OperandKind describes how an opcode's immediate operand is encoded.
type OperandKind int

const (
	NoOperand    OperandKind = iota
	FixedOperand             // a fixed-size immediate (e.g. INITSLOT's 2 bytes)
	JumpOperand              // a signed relative offset, 1 or 4 bytes
	DataOperand              // a length-prefixed byte string (PUSHDATAn)
)

// Info is the opcode information descriptor: the opcode byte, an
// operand-length hint, a max-operand-length, whether the opcode takes a
// jump/call target, and its "larger form" sibling for the short/long split.
type Info struct {
	Code        OpCode
	Mnemonic    string
	Kind        OperandKind
	FixedLen    int // valid when Kind == FixedOperand
	MaxOperand  int // longest payload a DataOperand form holds; Finalise ignores it for jumps
	LargerForm  OpCode
	HasLarger   bool
}

// HasTarget reports whether instructions of this opcode carry a VMCode
// target (jumps and calls) that must reference an instruction present, or
// eventually present, in the same map.
func (i Info) HasTarget() bool { return i.Kind == JumpOperand }

var table = map[OpCode]Info{
	PUSHM1: {Code: PUSHM1, Mnemonic: "PUSHM1", Kind: NoOperand},
	PUSHNULL: {Code: PUSHNULL, Mnemonic: "PUSHNULL", Kind: NoOperand},
	PUSHDATA1: {Code: PUSHDATA1, Mnemonic: "PUSHDATA1", Kind: DataOperand, MaxOperand: 255, LargerForm: PUSHDATA2, HasLarger: true},
	PUSHDATA2: {Code: PUSHDATA2, Mnemonic: "PUSHDATA2", Kind: DataOperand, MaxOperand: 65535, LargerForm: PUSHDATA4, HasLarger: true},
	PUSHDATA4: {Code: PUSHDATA4, Mnemonic: "PUSHDATA4", Kind: DataOperand, MaxOperand: 1<<31 - 1},

	NOP:        {Code: NOP, Mnemonic: "NOP", Kind: NoOperand},
	JMP:        {Code: JMP, Mnemonic: "JMP", Kind: JumpOperand, MaxOperand: 127, LargerForm: JMP_L, HasLarger: true},
	JMP_L:      {Code: JMP_L, Mnemonic: "JMP_L", Kind: JumpOperand, MaxOperand: 1<<31 - 1},
	JMPIF:      {Code: JMPIF, Mnemonic: "JMPIF", Kind: JumpOperand, MaxOperand: 127, LargerForm: JMPIF_L, HasLarger: true},
	JMPIF_L:    {Code: JMPIF_L, Mnemonic: "JMPIF_L", Kind: JumpOperand, MaxOperand: 1<<31 - 1},
	JMPIFNOT:   {Code: JMPIFNOT, Mnemonic: "JMPIFNOT", Kind: JumpOperand, MaxOperand: 127, LargerForm: JMPIFNOT_L, HasLarger: true},
	JMPIFNOT_L: {Code: JMPIFNOT_L, Mnemonic: "JMPIFNOT_L", Kind: JumpOperand, MaxOperand: 1<<31 - 1},
	CALL:       {Code: CALL, Mnemonic: "CALL", Kind: JumpOperand, MaxOperand: 127, LargerForm: CALL_L, HasLarger: true},
	CALL_L:     {Code: CALL_L, Mnemonic: "CALL_L", Kind: JumpOperand, MaxOperand: 1<<31 - 1},
	RET:        {Code: RET, Mnemonic: "RET", Kind: NoOperand},
	SYSCALL:    {Code: SYSCALL, Mnemonic: "SYSCALL", Kind: FixedOperand, FixedLen: 4},

	DUP:      {Code: DUP, Mnemonic: "DUP", Kind: NoOperand},
	DROP:     {Code: DROP, Mnemonic: "DROP", Kind: NoOperand},
	NIP:      {Code: NIP, Mnemonic: "NIP", Kind: NoOperand},
	OVER:     {Code: OVER, Mnemonic: "OVER", Kind: NoOperand},
	SWAP:     {Code: SWAP, Mnemonic: "SWAP", Kind: NoOperand},
	REVERSE3: {Code: REVERSE3, Mnemonic: "REVERSE3", Kind: NoOperand},

	INITSLOT: {Code: INITSLOT, Mnemonic: "INITSLOT", Kind: FixedOperand, FixedLen: 2},

	LDARG: {Code: LDARG, Mnemonic: "LDARG", Kind: FixedOperand, FixedLen: 1},
	STARG: {Code: STARG, Mnemonic: "STARG", Kind: FixedOperand, FixedLen: 1},
	LDLOC: {Code: LDLOC, Mnemonic: "LDLOC", Kind: FixedOperand, FixedLen: 1},
	STLOC: {Code: STLOC, Mnemonic: "STLOC", Kind: FixedOperand, FixedLen: 1},
	LDSFLD: {Code: LDSFLD, Mnemonic: "LDSFLD", Kind: FixedOperand, FixedLen: 1},
	STSFLD: {Code: STSFLD, Mnemonic: "STSFLD", Kind: FixedOperand, FixedLen: 1},

	SUBSTR:    {Code: SUBSTR, Mnemonic: "SUBSTR", Kind: NoOperand},
	LEFT:      {Code: LEFT, Mnemonic: "LEFT", Kind: NoOperand},
	RIGHT:     {Code: RIGHT, Mnemonic: "RIGHT", Kind: NoOperand},
	SIZE:      {Code: SIZE, Mnemonic: "SIZE", Kind: NoOperand},
	PICKITEM:  {Code: PICKITEM, Mnemonic: "PICKITEM", Kind: NoOperand},
	SETITEM:   {Code: SETITEM, Mnemonic: "SETITEM", Kind: NoOperand},
	NEWARRAY0: {Code: NEWARRAY0, Mnemonic: "NEWARRAY0", Kind: NoOperand},
	NEWARRAY:  {Code: NEWARRAY, Mnemonic: "NEWARRAY", Kind: NoOperand},
	NEWMAP:    {Code: NEWMAP, Mnemonic: "NEWMAP", Kind: NoOperand},
	PACK:      {Code: PACK, Mnemonic: "PACK", Kind: NoOperand},
	APPEND:    {Code: APPEND, Mnemonic: "APPEND", Kind: NoOperand},

	ADD:    {Code: ADD, Mnemonic: "ADD", Kind: NoOperand},
	SUB:    {Code: SUB, Mnemonic: "SUB", Kind: NoOperand},
	MUL:    {Code: MUL, Mnemonic: "MUL", Kind: NoOperand},
	DIV:    {Code: DIV, Mnemonic: "DIV", Kind: NoOperand},
	MOD:    {Code: MOD, Mnemonic: "MOD", Kind: NoOperand},
	NEGATE: {Code: NEGATE, Mnemonic: "NEGATE", Kind: NoOperand},
	INC:    {Code: INC, Mnemonic: "INC", Kind: NoOperand},
	DEC:    {Code: DEC, Mnemonic: "DEC", Kind: NoOperand},

	NOT:         {Code: NOT, Mnemonic: "NOT", Kind: NoOperand},
	BOOLAND:     {Code: BOOLAND, Mnemonic: "BOOLAND", Kind: NoOperand},
	BOOLOR:      {Code: BOOLOR, Mnemonic: "BOOLOR", Kind: NoOperand},
	NUMEQUAL:    {Code: NUMEQUAL, Mnemonic: "NUMEQUAL", Kind: NoOperand},
	NUMNOTEQUAL: {Code: NUMNOTEQUAL, Mnemonic: "NUMNOTEQUAL", Kind: NoOperand},
	EQUAL:       {Code: EQUAL, Mnemonic: "EQUAL", Kind: NoOperand},
	NOTEQUAL:    {Code: NOTEQUAL, Mnemonic: "NOTEQUAL", Kind: NoOperand},
	GT:          {Code: GT, Mnemonic: "GT", Kind: NoOperand},
	LT:          {Code: LT, Mnemonic: "LT", Kind: NoOperand},
	GE:          {Code: GE, Mnemonic: "GE", Kind: NoOperand},
	LE:          {Code: LE, Mnemonic: "LE", Kind: NoOperand},

	CONVERT: {Code: CONVERT, Mnemonic: "CONVERT", Kind: FixedOperand, FixedLen: 1},
}

func init() {
	// PUSH0..PUSH16 and LDARG0..6/STARG0..6/LDLOC0..6/STLOC0..6/LDSFLD0..6/
	// STSFLD0..6 are short-form families with no operand of their own; the
	// long forms (LDARG, STARG, ...) above take the explicit 1-byte index.
	for i := 0; i <= 16; i++ {
		c := OpCode(int(PUSH0) + i)
		table[c] = Info{Code: c, Mnemonic: pushMnemonic(i), Kind: NoOperand}
	}
	for i := 0; i <= 6; i++ {
		reg(LDARG0, i, "LDARG%d")
		reg(STARG0, i, "STARG%d")
		reg(LDLOC0, i, "LDLOC%d")
		reg(STLOC0, i, "STLOC%d")
		reg(LDSFLD0, i, "LDSFLD%d")
		reg(STSFLD0, i, "STSFLD%d")
	}
}

func reg(base OpCode, i int, format string) {
	c := OpCode(int(base) + i)
	table[c] = Info{Code: c, Mnemonic: mnemonicf(format, i), Kind: NoOperand}
}

func mnemonicf(format string, i int) string {
	// avoid importing fmt in init-heavy hot path; tiny manual formatter
	digit := byte('0' + i)
	out := make([]byte, 0, len(format))
	for j := 0; j < len(format); j++ {
		if format[j] == '%' && j+1 < len(format) && format[j+1] == 'd' {
			out = append(out, digit)
			j++
			continue
		}
		out = append(out, format[j])
	}
	return string(out)
}

func pushMnemonic(n int) string { return "PUSH" + itoa(n) }

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [4]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// LookupInfo returns the OpcodeInformation for code.
func LookupInfo(code OpCode) Info { return table[code] }

// LiteralPush returns the single short-form push opcode for an integer
// literal in [-1, 16], and ok=false outside that range.
func LiteralPush(v int64) (OpCode, bool) {
	if v < -1 || v > 16 {
		return 0, false
	}
	return OpCode(int(PUSH0) + int(v)), true
}
