// Package analyser implements the type analyser (C3): it walks a parsed
// module, resolves every name, checks every operator use and call against
// the operation and symbol tables, and accumulates diagnostics.
//
// Grounded on original_source/boa3/analyser/typeanalyser.py's TypeAnalyser:
// the same per-node visit_* responsibilities (visit_FunctionDef, visit_arg,
// visit_Return, visit_Assign, visit_BinOp/get_bin_op, visit_UnaryOp,
// visit_Num/visit_Str/visit_NameConstant), reshaped from an
// ast.NodeVisitor walking Python's own ast module into an ast.ExprVisitor/
// ast.StmtVisitor pair walking this package's internal/ast tree, and from
// raise/except control flow into accumulated diagnostics.List entries so
// one run reports every problem instead of stopping at the first.
package analyser

import (
	"neoc/internal/ast"
	"neoc/internal/diagnostics"
	"neoc/internal/operation"
	"neoc/internal/symbols"
	"neoc/internal/types"
)

// Result is a module's analysis: each function's resolved scope, keyed by
// its definition, for the code generator's slot assignment. Diagnostics
// are read from Analyser.Diagnostics.
type Result struct {
	Scopes map[*ast.FunctionDef]*symbols.Scope
}

// Analyser walks a module's function definitions in source order.
type Analyser struct {
	global *symbols.Scope
	diags  *diagnostics.List
	file   string

	metadataSeen *ast.FunctionDef
	scopes       map[*ast.FunctionDef]*symbols.Scope
}

func New(file string, global *symbols.Scope) *Analyser {
	return &Analyser{
		global: global,
		diags:  &diagnostics.List{},
		file:   file,
		scopes: map[*ast.FunctionDef]*symbols.Scope{},
	}
}

// Diagnostics returns every diagnostic accumulated so far.
func (a *Analyser) Diagnostics() *diagnostics.List { return a.diags }

// Analyse type-checks every function in mod and returns the resolved
// per-function scopes the code generator consumes for slot assignment.
func (a *Analyser) Analyse(mod *ast.Module) *Result {
	for _, fn := range mod.Functions {
		a.global.DeclareMethod(methodSignature(fn))
	}
	for _, fn := range mod.Functions {
		a.analyseFunction(fn)
	}
	return &Result{Scopes: a.scopes}
}

func methodSignature(fn *ast.FunctionDef) *symbols.Method {
	params := make([]*symbols.Param, len(fn.Params))
	for i, p := range fn.Params {
		t, _ := types.ParseAnnotation(p.Type)
		params[i] = &symbols.Param{ID: p.Name, Type: t, Slot: i}
	}
	ret, _ := types.ParseAnnotation(fn.ReturnType)
	return &symbols.Method{ID: fn.Name, Params: params, ReturnType: ret, IsPublic: fn.IsPublic(), IsMetadata: fn.IsMetadata()}
}

func (a *Analyser) loc(p ast.Pos) diagnostics.Location {
	return diagnostics.Location{File: a.file, Line: p.Line, Col: p.Col}
}

func (a *Analyser) analyseFunction(fn *ast.FunctionDef) {
	if fn.IsMetadata() {
		if a.metadataSeen != nil {
			a.diags.Add(diagnostics.NewNotSupportedOperation(a.loc(fn.Pos), "multiple @metadata functions"))
		}
		a.metadataSeen = fn
		// A @metadata function is a pure constructor of the manifest's
		// passthrough fields, evaluated abstractly by codegen.EvaluateMetadata
		// rather than type-checked like ordinary code — it never reaches the
		// VM, so the usual parameter/return/assignment diagnostics don't apply.
		a.scopes[fn] = symbols.NewScope(a.global)
		return
	}

	scope := symbols.NewScope(a.global)
	a.scopes[fn] = scope

	for _, p := range fn.Params {
		if p.Type == "" {
			a.diags.Add(diagnostics.NewTypeHintMissing(a.loc(p.Pos), p.Name))
			scope.Declare(p.Name, types.Any)
			continue
		}
		t, ok := types.ParseAnnotation(p.Type)
		if !ok {
			a.diags.Add(diagnostics.NewInvalidType(a.loc(p.Pos), p.Type))
			t = types.Any
		}
		scope.Declare(p.Name, t)
	}

	var returnType *types.Type
	if fn.ReturnType == "" {
		returnType = types.None
	} else if t, ok := types.ParseAnnotation(fn.ReturnType); ok {
		returnType = t
	} else {
		a.diags.Add(diagnostics.NewInvalidType(a.loc(fn.Pos), fn.ReturnType))
		returnType = types.Any
	}

	v := &visitor{a: a, scope: scope, returnType: returnType}
	for _, stmt := range fn.Body {
		stmt.Accept(v)
	}
}

// visitor walks one function body; it implements both ast.StmtVisitor and
// ast.ExprVisitor so expression type resolution can recurse through
// v.typeOf without a second tree walk.
type visitor struct {
	a          *Analyser
	scope      *symbols.Scope
	returnType *types.Type
}

// --- statements ---

func (v *visitor) VisitFunctionDef(s *ast.FunctionDef) any { return nil } // nested defs unsupported in this subset

func (v *visitor) VisitReturn(s *ast.Return) any {
	if tuple, ok := s.Value.(*ast.Tuple); ok {
		v.a.diags.Add(diagnostics.NewTooManyReturns(v.a.loc(s.Pos)))
		for _, el := range tuple.Elements {
			v.typeOf(el)
		}
		return nil
	}

	var actual *types.Type
	if s.Value == nil {
		actual = types.None
	} else {
		actual = v.typeOf(s.Value)
	}

	if v.returnType.IsNone() && !actual.IsNone() {
		v.a.diags.Add(diagnostics.NewTypeHintMissing(v.a.loc(s.Pos), "return"))
		return nil
	}
	if !types.AssignableTo(actual, v.returnType) {
		v.a.diags.Add(diagnostics.NewMismatchedTypes(v.a.loc(s.Pos), []string{v.returnType.Identifier()}, []string{actual.Identifier()}))
	}
	return nil
}

func (v *visitor) VisitAssign(s *ast.Assign) any {
	if len(s.Targets) > 1 {
		v.a.diags.Add(diagnostics.NewNotSupportedOperation(v.a.loc(s.Pos), "multiple assignment targets"))
	}

	isMultiTarget := isTuple(s.Value)
	for _, target := range s.Targets {
		isMultiTarget = isMultiTarget || isTuple(target)
	}
	if isMultiTarget {
		v.a.diags.Add(diagnostics.NewNotSupportedOperation(v.a.loc(s.Pos), "Multiple variable assignments"))
	}

	valueType := v.typeOf(s.Value)
	for _, target := range s.Targets {
		if isTuple(target) {
			continue
		}
		id, ok := target.(*ast.Identifier)
		if !ok {
			v.a.diags.Add(diagnostics.NewNotSupportedOperation(v.a.loc(s.Pos), "assignment to a non-identifier target"))
			continue
		}
		if existing, ok := v.scope.ResolveVariable(id.Name); ok && v.scope.DeclaredInThisScope(id.Name) {
			if !existing.Type.Equal(valueType) && !existing.Type.IsNone() {
				// reassignment with a different type narrows to Any rather
				// than raising: this subset allows rebinding, only the
				// declared parameter/return types are checked strictly.
				existing.Type = types.Any
			}
			continue
		}
		v.scope.Declare(id.Name, valueType)
	}
	return nil
}

func (v *visitor) VisitExprStmt(s *ast.ExprStmt) any {
	if s.Expr != nil {
		v.typeOf(s.Expr)
	}
	return nil
}

func (v *visitor) VisitIf(s *ast.If) any {
	v.typeOf(s.Cond)
	for _, stmt := range s.Then {
		stmt.Accept(v)
	}
	for _, stmt := range s.Else {
		stmt.Accept(v)
	}
	return nil
}

func (v *visitor) VisitWhile(s *ast.While) any {
	v.typeOf(s.Cond)
	for _, stmt := range s.Body {
		stmt.Accept(v)
	}
	return nil
}

func (v *visitor) VisitForIn(s *ast.ForIn) any {
	iterType := v.typeOf(s.Iterable)
	elemType := types.Any
	if iterType.Element != nil {
		elemType = iterType.Element
	}
	v.scope.Declare(s.Target, elemType)
	for _, stmt := range s.Body {
		stmt.Accept(v)
	}
	return nil
}

func (v *visitor) VisitBreak(s *ast.Break) any       { return nil }
func (v *visitor) VisitContinue(s *ast.Continue) any { return nil }

// --- expressions: typeOf resolves and records diagnostics in one pass ---

func (v *visitor) typeOf(e ast.Expr) *types.Type {
	if e == nil {
		return types.None
	}
	result := e.Accept(v)
	if t, ok := result.(*types.Type); ok {
		return t
	}
	return types.Any
}

func (v *visitor) VisitIntLiteral(e *ast.IntLiteral) any   { return types.Int }
func (v *visitor) VisitStrLiteral(e *ast.StrLiteral) any   { return types.Str }
func (v *visitor) VisitBoolLiteral(e *ast.BoolLiteral) any { return types.Bool }
func (v *visitor) VisitNoneLiteral(e *ast.NoneLiteral) any { return types.None }

func (v *visitor) VisitIdentifier(e *ast.Identifier) any {
	sym, ok := v.scope.Resolve(e.Name)
	if !ok {
		v.a.diags.Add(diagnostics.NewUnresolvedReference(v.a.loc(e.Pos), e.Name))
		return types.Any
	}
	switch s := sym.(type) {
	case *symbols.Variable:
		return s.Type
	case *symbols.Method:
		return types.Any
	default:
		return types.Any
	}
}

func (v *visitor) VisitBinOp(e *ast.BinOp) any {
	left := v.typeOf(e.Left)
	right := v.typeOf(e.Right)
	desc, ok, known := operation.LookupBinary(operation.Kind(e.Operator), left, right)
	if !known {
		v.a.diags.Add(diagnostics.NewNotSupportedOperation(v.a.loc(e.Pos), e.Operator))
		return types.Any
	}
	if !ok {
		v.a.diags.Add(diagnostics.NewMismatchedTypes(v.a.loc(e.Pos), []string{left.Identifier()}, []string{right.Identifier()}))
		return types.Any
	}
	return desc.Result
}

func (v *visitor) VisitUnaryOp(e *ast.UnaryOp) any {
	operand := v.typeOf(e.Operand)
	desc, ok, known := operation.LookupUnary(operation.Kind(e.Operator), operand)
	if !known {
		v.a.diags.Add(diagnostics.NewNotSupportedOperation(v.a.loc(e.Pos), e.Operator))
		return types.Any
	}
	if !ok {
		var expected []string
		for _, t := range []*types.Type{types.Int, types.Str, types.Bool, types.Bytes} {
			if _, accepts, _ := operation.LookupUnary(operation.Kind(e.Operator), t); accepts {
				expected = append(expected, t.Identifier())
			}
		}
		v.a.diags.Add(diagnostics.NewMismatchedTypes(v.a.loc(e.Pos), expected, []string{operand.Identifier()}))
		return types.Any
	}
	return desc.Result
}

func (v *visitor) VisitCall(e *ast.Call) any {
	callee, ok := resolveCallable(v, e.Callee)
	if !ok {
		return types.Any
	}
	args := make([]*types.Type, len(e.Args))
	for i, arg := range e.Args {
		args[i] = v.typeOf(arg)
	}
	if len(args) > len(callee.Params) {
		v.a.diags.Add(diagnostics.NewUnexpectedArgument(v.a.loc(e.Pos)))
	} else if len(args) < len(callee.Params) {
		v.a.diags.Add(diagnostics.NewUnfilledArgument(v.a.loc(e.Pos), callee.Params[len(args)].ID))
	}
	for i := 0; i < len(args) && i < len(callee.Params); i++ {
		want := callee.Params[i].Type
		if want != nil && !types.AssignableTo(args[i], want) {
			v.a.diags.Add(diagnostics.NewMismatchedTypes(v.a.loc(e.Pos), []string{want.Identifier()}, []string{args[i].Identifier()}))
		}
	}
	if callee.ReturnType == nil {
		return types.Any
	}
	return callee.ReturnType
}

// resolveCallable handles both bare-name calls (f(...)) and attribute
// calls (Ledger.get_current_index()), the latter looked up by its last
// dotted component against the global interop catalogue.
func resolveCallable(v *visitor, callee ast.Expr) (*symbols.Method, bool) {
	switch c := callee.(type) {
	case *ast.Identifier:
		sym, ok := v.scope.Resolve(c.Name)
		if !ok {
			v.a.diags.Add(diagnostics.NewUnresolvedReference(v.a.loc(c.Pos), c.Name))
			return nil, false
		}
		m, ok := sym.(*symbols.Method)
		if !ok {
			v.a.diags.Add(diagnostics.NewNotSupportedOperation(v.a.loc(c.Pos), "calling a non-callable symbol"))
			return nil, false
		}
		return m, true
	case *ast.Attribute:
		if _, ok := c.Object.(*ast.Identifier); ok {
			sym, ok := v.scope.Resolve(methodKeyForAttribute(c))
			if ok {
				if m, ok := sym.(*symbols.Method); ok {
					return m, true
				}
			}
		}
		v.a.diags.Add(diagnostics.NewUnresolvedReference(v.a.loc(c.Pos), c.Name))
		return nil, false
	default:
		v.a.diags.Add(diagnostics.NewNotSupportedOperation(v.a.loc(callee.Position()), "indirect call expression"))
		return nil, false
	}
}

// methodKeyForAttribute maps Ledger.get_current_index to this compiler's
// flat "-get_current_index" interop identifier.
func methodKeyForAttribute(a *ast.Attribute) string {
	return "-" + a.Name
}

func (v *visitor) VisitIndex(e *ast.Index) any {
	v.typeOf(e.Object)
	v.typeOf(e.Index)
	return types.Any
}

func (v *visitor) VisitSlice(e *ast.Slice) any {
	objType := v.typeOf(e.Object)
	if e.Lower != nil {
		v.typeOf(e.Lower)
	}
	if e.Upper != nil {
		v.typeOf(e.Upper)
	}
	return objType
}

func (v *visitor) VisitAttribute(e *ast.Attribute) any {
	v.typeOf(e.Object)
	return types.Any
}

// VisitTuple resolves each element so references inside an unsupported
// tuple still get reported, but never contributes a usable type: every
// call site that can receive a *ast.Tuple (VisitReturn, VisitAssign)
// checks for it directly, ahead of calling typeOf, and raises
// NotSupportedOperation/TooManyReturns instead of using this return value.
func (v *visitor) VisitTuple(e *ast.Tuple) any {
	for _, el := range e.Elements {
		v.typeOf(el)
	}
	return types.Any
}

// isTuple reports whether e is a tuple literal, the marker for the
// unsupported "multiple variable assignment" and "multiple return values"
// constructs.
func isTuple(e ast.Expr) bool {
	_, ok := e.(*ast.Tuple)
	return ok
}
