package symbols

import (
	"testing"

	"neoc/internal/types"
)

func TestScopeShadowsOuter(t *testing.T) {
	outer := NewScope(nil)
	outer.Declare("x", types.Int)

	inner := NewScope(outer)
	inner.Declare("x", types.Str)

	sym, ok := inner.ResolveVariable("x")
	if !ok {
		t.Fatal("expected to resolve x")
	}
	if !sym.Type.Equal(types.Str) {
		t.Fatalf("expected inner binding to shadow outer, got type %s", sym.Type)
	}

	outerSym, _ := outer.ResolveVariable("x")
	if !outerSym.Type.Equal(types.Int) {
		t.Fatalf("outer binding mutated by inner declare: got %s", outerSym.Type)
	}
}

func TestScopeResolveWalksAncestors(t *testing.T) {
	global := NewScope(nil)
	global.Declare("counter", types.Int)

	fn := NewScope(global)
	if _, ok := fn.ResolveVariable("counter"); !ok {
		t.Fatal("expected function scope to resolve a global variable")
	}
	if _, ok := fn.ResolveVariable("missing"); ok {
		t.Fatal("expected unresolved name to report ok=false")
	}
}

func TestDeclaredInThisScopeIgnoresAncestors(t *testing.T) {
	global := NewScope(nil)
	global.Declare("n", types.Int)
	fn := NewScope(global)

	if fn.DeclaredInThisScope("n") {
		t.Fatal("expected DeclaredInThisScope to ignore the parent scope")
	}
	fn.Declare("n", types.Int)
	if !fn.DeclaredInThisScope("n") {
		t.Fatal("expected DeclaredInThisScope to see a direct declaration")
	}
}

func TestVariablesPreservesDeclarationOrder(t *testing.T) {
	s := NewScope(nil)
	s.Declare("b", types.Int)
	s.Declare("a", types.Str)
	s.Declare("c", types.Bool)

	vars := s.Variables()
	got := make([]string, len(vars))
	for i, v := range vars {
		got[i] = v.ID
	}
	want := []string{"b", "a", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("slot order = %v, want %v", got, want)
		}
	}
}

func TestRedeclareDoesNotDuplicateOrder(t *testing.T) {
	s := NewScope(nil)
	s.Declare("x", types.Int)
	s.Declare("x", types.Str)

	if len(s.Variables()) != 1 {
		t.Fatalf("expected a redeclaration to keep a single slot, got %d", len(s.Variables()))
	}
}

func TestGlobalScopeResolvesInteropMethods(t *testing.T) {
	g := NewGlobalScope()

	sym, ok := g.Resolve("check_witness")
	if !ok {
		t.Fatal("expected check_witness to be declared in the global scope")
	}
	m, ok := sym.(*Method)
	if !ok {
		t.Fatalf("expected check_witness to resolve to a Method, got %T", sym)
	}
	if m.Builtin == nil || m.Builtin.Kind != BuiltinSyscall {
		t.Fatal("expected check_witness to be a syscall builtin")
	}
	if m.Builtin.InteropName != "System.Runtime.CheckWitness" {
		t.Fatalf("unexpected interop name %q", m.Builtin.InteropName)
	}
}

func TestGlobalScopeResolvesNativeClasses(t *testing.T) {
	g := NewGlobalScope()
	if _, ok := g.Resolve("Ledger"); !ok {
		t.Fatal("expected Ledger to be declared in the global scope")
	}
	if _, ok := g.Resolve("Policy"); !ok {
		t.Fatal("expected Policy to be declared in the global scope")
	}
}

func TestGlobalScopeResolvesFindOptionsConstants(t *testing.T) {
	g := NewGlobalScope()
	sym, ok := g.Resolve("FindOptionsKeysOnly")
	if !ok {
		t.Fatal("expected FindOptionsKeysOnly to be declared in the global scope")
	}
	v, ok := sym.(*Variable)
	if !ok {
		t.Fatalf("expected a Variable, got %T", sym)
	}
	if v.ConstValue == nil || *v.ConstValue != 0x01 {
		t.Fatalf("expected FindOptionsKeysOnly to be a constant 0x01, got %+v", v.ConstValue)
	}
	if !v.Type.Equal(types.Int) {
		t.Fatalf("expected FindOptionsKeysOnly to be typed Int, got %v", v.Type)
	}
}

func TestMaxBytesInlineBuiltinHasBalancedJumps(t *testing.T) {
	m := interopMethods()
	if len(m) == 0 {
		t.Fatal("expected at least one interop method registered")
	}

	max := maxBytesMethod()
	if max.Builtin.Kind != BuiltinInline {
		t.Fatal("expected max() to be an inline builtin")
	}
	if len(max.Builtin.Inline) == 0 {
		t.Fatal("expected max() to carry a non-empty instruction template")
	}
}

func TestStartswithResolvesPolymorphically(t *testing.T) {
	sw := startswithMethod()
	if sw.Builtin.Kind != BuiltinPolymorphic {
		t.Fatal("expected startswith() to be polymorphic")
	}
	steps := sw.Builtin.Resolve([]*types.Type{types.Str, types.Str})
	if len(steps) == 0 {
		t.Fatal("expected Resolve to return a non-empty instruction template")
	}
}
