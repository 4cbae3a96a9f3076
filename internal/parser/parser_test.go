package parser

import (
	"testing"

	"neoc/internal/ast"
	"neoc/internal/lexer"
)

func parseSource(t *testing.T, src string) *ast.Module {
	t.Helper()
	scanner := lexer.NewScanner(src)
	p := NewParser(scanner.ScanTokens())
	mod := p.Parse()
	if len(p.Errors) > 0 {
		t.Fatalf("unexpected parse errors: %v", p.Errors)
	}
	return mod
}

func TestParsesSimpleFunction(t *testing.T) {
	mod := parseSource(t, "def add(a: int, b: int) -> int:\n    return a + b\n")
	if len(mod.Functions) != 1 {
		t.Fatalf("expected 1 function, got %d", len(mod.Functions))
	}
	fn := mod.Functions[0]
	if fn.Name != "add" || fn.ReturnType != "int" {
		t.Fatalf("unexpected function header: %+v", fn)
	}
	if len(fn.Params) != 2 || fn.Params[0].Type != "int" {
		t.Fatalf("unexpected params: %+v", fn.Params)
	}
	if len(fn.Body) != 1 {
		t.Fatalf("expected 1 body statement, got %d", len(fn.Body))
	}
	ret, ok := fn.Body[0].(*ast.Return)
	if !ok {
		t.Fatalf("expected Return, got %T", fn.Body[0])
	}
	bin, ok := ret.Value.(*ast.BinOp)
	if !ok || bin.Operator != "+" {
		t.Fatalf("expected a + b, got %+v", ret.Value)
	}
}

func TestParsesDecorators(t *testing.T) {
	mod := parseSource(t, "@public\ndef main() -> int:\n    return 0\n")
	fn := mod.Functions[0]
	if !fn.IsPublic() {
		t.Fatal("expected @public to be recognised")
	}
	if fn.IsMetadata() {
		t.Fatal("did not expect @metadata to be set")
	}
}

func TestParsesIfElifElse(t *testing.T) {
	src := "def f(x: int) -> int:\n" +
		"    if x > 0:\n" +
		"        return 1\n" +
		"    elif x < 0:\n" +
		"        return -1\n" +
		"    else:\n" +
		"        return 0\n"
	mod := parseSource(t, src)
	fn := mod.Functions[0]
	ifStmt, ok := fn.Body[0].(*ast.If)
	if !ok {
		t.Fatalf("expected If, got %T", fn.Body[0])
	}
	if len(ifStmt.Else) != 1 {
		t.Fatalf("expected elif to desugar into a single nested If, got %d stmts", len(ifStmt.Else))
	}
	if _, ok := ifStmt.Else[0].(*ast.If); !ok {
		t.Fatalf("expected elif to produce a nested If, got %T", ifStmt.Else[0])
	}
}

func TestParsesWhileAndForIn(t *testing.T) {
	src := "def f() -> int:\n" +
		"    total = 0\n" +
		"    while total < 10:\n" +
		"        total = total + 1\n" +
		"    for x in items:\n" +
		"        total = total + x\n" +
		"    return total\n"
	mod := parseSource(t, src)
	fn := mod.Functions[0]
	if len(fn.Body) != 4 {
		t.Fatalf("expected 4 statements, got %d: %+v", len(fn.Body), fn.Body)
	}
	if _, ok := fn.Body[1].(*ast.While); !ok {
		t.Fatalf("expected While, got %T", fn.Body[1])
	}
	forIn, ok := fn.Body[2].(*ast.ForIn)
	if !ok {
		t.Fatalf("expected ForIn, got %T", fn.Body[2])
	}
	if forIn.Target != "x" {
		t.Fatalf("unexpected for target %q", forIn.Target)
	}
}

func TestParsesCallIndexAndAttribute(t *testing.T) {
	mod := parseSource(t, "def f() -> int:\n    return Ledger.get_current_index()\n")
	ret := mod.Functions[0].Body[0].(*ast.Return)
	call, ok := ret.Value.(*ast.Call)
	if !ok {
		t.Fatalf("expected Call, got %T", ret.Value)
	}
	attr, ok := call.Callee.(*ast.Attribute)
	if !ok || attr.Name != "get_current_index" {
		t.Fatalf("expected attribute access callee, got %+v", call.Callee)
	}
}

func TestParsesSliceAndIndex(t *testing.T) {
	mod := parseSource(t, "def f(data: bytes) -> bytes:\n    return data[1:2]\n")
	ret := mod.Functions[0].Body[0].(*ast.Return)
	if _, ok := ret.Value.(*ast.Slice); !ok {
		t.Fatalf("expected Slice, got %T", ret.Value)
	}
}

func TestParsesTupleReturn(t *testing.T) {
	mod := parseSource(t, "def f(a: int, b: int) -> int:\n    return a, b\n")
	ret := mod.Functions[0].Body[0].(*ast.Return)
	tuple, ok := ret.Value.(*ast.Tuple)
	if !ok {
		t.Fatalf("expected Tuple, got %T", ret.Value)
	}
	if len(tuple.Elements) != 2 {
		t.Fatalf("expected 2 tuple elements, got %d", len(tuple.Elements))
	}
}

func TestParsesTupleAssignmentTarget(t *testing.T) {
	mod := parseSource(t, "def f() -> int:\n    a, b = 1, 2\n    return a + b\n")
	assign := mod.Functions[0].Body[0].(*ast.Assign)
	if len(assign.Targets) != 1 {
		t.Fatalf("expected a single Targets entry holding the tuple, got %d", len(assign.Targets))
	}
	if _, ok := assign.Targets[0].(*ast.Tuple); !ok {
		t.Fatalf("expected tuple target, got %T", assign.Targets[0])
	}
	if _, ok := assign.Value.(*ast.Tuple); !ok {
		t.Fatalf("expected tuple value, got %T", assign.Value)
	}
}

func TestOperatorPrecedence(t *testing.T) {
	mod := parseSource(t, "def f() -> int:\n    return 1 + 2 * 3\n")
	ret := mod.Functions[0].Body[0].(*ast.Return)
	top, ok := ret.Value.(*ast.BinOp)
	if !ok || top.Operator != "+" {
		t.Fatalf("expected top-level +, got %+v", ret.Value)
	}
	if _, ok := top.Right.(*ast.BinOp); !ok {
		t.Fatalf("expected 2 * 3 to bind tighter than +, got %+v", top.Right)
	}
}
