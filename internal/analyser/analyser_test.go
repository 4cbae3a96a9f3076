package analyser

import (
	"testing"

	"neoc/internal/ast"
	"neoc/internal/diagnostics"
	"neoc/internal/lexer"
	"neoc/internal/parser"
	"neoc/internal/symbols"
)

func parseModule(t *testing.T, src string) *ast.Module {
	t.Helper()
	p := parser.NewParser(lexer.NewScanner(src).ScanTokens())
	mod := p.Parse()
	if len(p.Errors) > 0 {
		t.Fatalf("unexpected parse errors: %v", p.Errors)
	}
	return mod
}

func analyse(t *testing.T, src string) *diagnostics.List {
	t.Helper()
	mod := parseModule(t, src)
	a := New("test.py", symbols.NewGlobalScope())
	a.Analyse(mod)
	return a.Diagnostics()
}

func hasKind(l *diagnostics.List, k diagnostics.Kind) bool {
	for _, d := range l.Items() {
		if d.Kind == k {
			return true
		}
	}
	return false
}

func TestWellTypedFunctionHasNoDiagnostics(t *testing.T) {
	diags := analyse(t, "def add(a: int, b: int) -> int:\n    return a + b\n")
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags.Items())
	}
}

func TestMissingParamTypeHintIsReported(t *testing.T) {
	diags := analyse(t, "def f(a) -> int:\n    return 0\n")
	if !hasKind(diags, diagnostics.TypeHintMissing) {
		t.Fatalf("expected TypeHintMissing, got %v", diags.Items())
	}
}

func TestReturnTypeMismatchIsReported(t *testing.T) {
	diags := analyse(t, "def f() -> int:\n    return \"nope\"\n")
	if !hasKind(diags, diagnostics.MismatchedTypes) {
		t.Fatalf("expected MismatchedTypes, got %v", diags.Items())
	}
}

func TestReturningAValueFromAnUnannotatedFunctionIsTypeHintMissing(t *testing.T) {
	diags := analyse(t, "def f():\n    return 1\n")
	if !hasKind(diags, diagnostics.TypeHintMissing) {
		t.Fatalf("expected TypeHintMissing, got %v", diags.Items())
	}
	if hasKind(diags, diagnostics.MismatchedTypes) {
		t.Fatalf("did not expect MismatchedTypes alongside TypeHintMissing, got %v", diags.Items())
	}
}

func TestBareReturnFromAnUnannotatedFunctionHasNoDiagnostics(t *testing.T) {
	diags := analyse(t, "def f():\n    return\n")
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags.Items())
	}
}

func TestTooManyReturnsIsReportedForTupleReturn(t *testing.T) {
	diags := analyse(t, "def f(a: int, b: int) -> int:\n    return a, b\n")
	if !hasKind(diags, diagnostics.TooManyReturns) {
		t.Fatalf("expected TooManyReturns for a tuple-valued return, got %v", diags.Items())
	}
}

func TestMutuallyExclusiveReturnsInIfElseAreNotTooManyReturns(t *testing.T) {
	diags := analyse(t, "def f(a: int) -> int:\n    if a:\n        return 1\n    else:\n        return 2\n")
	if diags.HasErrors() {
		t.Fatalf("expected no diagnostics for mutually exclusive if/else returns, got %v", diags.Items())
	}
}

func TestSequentialUnconditionalReturnsAreNotTooManyReturns(t *testing.T) {
	// Two sequential unconditional returns are dead code in the second
	// statement, not a tuple-valued return; this subset does not flag it.
	diags := analyse(t, "def f() -> int:\n    return 1\n    return 2\n")
	if hasKind(diags, diagnostics.TooManyReturns) {
		t.Fatalf("did not expect TooManyReturns for sequential non-tuple returns, got %v", diags.Items())
	}
}

func TestUnresolvedReferenceIsReported(t *testing.T) {
	diags := analyse(t, "def f() -> int:\n    return missing_name\n")
	if !hasKind(diags, diagnostics.UnresolvedReference) {
		t.Fatalf("expected UnresolvedReference, got %v", diags.Items())
	}
}

func TestMismatchedOperandTypesIsReported(t *testing.T) {
	diags := analyse(t, "def f(a: int, b: bool) -> int:\n    return a + b\n")
	if !hasKind(diags, diagnostics.MismatchedTypes) {
		t.Fatalf("expected MismatchedTypes for int + bool, got %v", diags.Items())
	}
}

func TestUnsupportedOperatorIsReported(t *testing.T) {
	diags := analyse(t, "def f(a: int, b: int) -> int:\n    return a ** b\n")
	if !hasKind(diags, diagnostics.NotSupportedOperation) {
		t.Fatalf("expected NotSupportedOperation for **, got %v", diags.Items())
	}
}

func TestCallArgumentCountIsChecked(t *testing.T) {
	diags := analyse(t, "def f(a: int, b: int) -> int:\n    return a + b\n\ndef g() -> int:\n    return f(1)\n")
	if !hasKind(diags, diagnostics.UnfilledArgument) {
		t.Fatalf("expected UnfilledArgument, got %v", diags.Items())
	}
}

func TestForwardCallsResolve(t *testing.T) {
	diags := analyse(t, "def g() -> int:\n    return f(1, 2)\n\ndef f(a: int, b: int) -> int:\n    return a + b\n")
	if diags.HasErrors() {
		t.Fatalf("expected forward-declared call to resolve cleanly, got %v", diags.Items())
	}
}

func TestMultipleVariableAssignmentIsReported(t *testing.T) {
	diags := analyse(t, "def f() -> int:\n    a, b = 1, 2\n    return a + b\n")
	if !hasKind(diags, diagnostics.NotSupportedOperation) {
		t.Fatalf("expected NotSupportedOperation for a tuple assignment, got %v", diags.Items())
	}
}

func TestOrdinaryAssignmentIsNotReportedAsMultipleVariableAssignment(t *testing.T) {
	diags := analyse(t, "def f() -> int:\n    a = 1\n    return a\n")
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags.Items())
	}
}

func TestMetadataFunctionBodyIsNotTypeChecked(t *testing.T) {
	src := "@metadata\ndef manifest():\n" +
		"    author = \"Unit Test\"\n" +
		"    standard = \"NEP-17\", \"NEP-11\"\n\n" +
		"@public\ndef main() -> int:\n    return 1\n"
	diags := analyse(t, src)
	if diags.HasErrors() {
		t.Fatalf("expected a @metadata function's tuple-valued assignment to be exempt from analysis, got %v", diags.Items())
	}
}

func TestDiagnosticsAreInSourceOrder(t *testing.T) {
	diags := analyse(t, "def f(a, b) -> int:\n    return missing\n")
	sorted := diags.SortedByPosition()
	items := diags.Items()
	for i := range items {
		if items[i] != sorted[i] {
			t.Fatalf("diagnostics out of source order: %v vs sorted %v", items, sorted)
		}
	}
}
