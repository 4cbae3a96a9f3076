package manifest

import (
	"strings"
	"testing"

	"neoc/internal/analyser"
	"neoc/internal/codegen"
	"neoc/internal/lexer"
	"neoc/internal/parser"
	"neoc/internal/symbols"
)

func compile(t *testing.T, src string) []*codegen.CompiledMethod {
	t.Helper()
	mod := parser.NewParser(lexer.NewScanner(src).ScanTokens()).Parse()
	global := symbols.NewGlobalScope()
	a := analyser.New("test.py", global)
	result := a.Analyse(mod)
	if a.Diagnostics().HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", a.Diagnostics().Items())
	}
	g := codegen.New(global, result.Scopes)
	return g.Generate(mod)
}

func TestBuildIncludesOnlyPublicMethods(t *testing.T) {
	src := "def helper(x: int) -> int:\n    return x\n\n" +
		"@public\ndef main(x: int) -> int:\n    return helper(x)\n"
	methods := compile(t, src)

	m := Build(methods, nil, Options{Name: "test"})
	if len(m.ABI.Methods) != 1 {
		t.Fatalf("expected 1 public method in ABI, got %d: %+v", len(m.ABI.Methods), m.ABI.Methods)
	}
	if m.ABI.Methods[0].Name != "main" {
		t.Fatalf("expected 'main' in ABI, got %q", m.ABI.Methods[0].Name)
	}
}

func TestBuildSortsMethodsByNameRegardlessOfDeclarationOrder(t *testing.T) {
	src := "@public\ndef zeta() -> int:\n    return 1\n\n" +
		"@public\ndef alpha() -> int:\n    return 2\n"
	methods := compile(t, src)

	m := Build(methods, nil, Options{Name: "test"})
	if len(m.ABI.Methods) != 2 {
		t.Fatalf("expected 2 public methods, got %d", len(m.ABI.Methods))
	}
	if m.ABI.Methods[0].Name != "alpha" || m.ABI.Methods[1].Name != "zeta" {
		t.Fatalf("expected methods sorted alpha, zeta; got %q, %q", m.ABI.Methods[0].Name, m.ABI.Methods[1].Name)
	}
}

func TestBuildRecordsEntryOffset(t *testing.T) {
	src := "@public\ndef main() -> int:\n    return 1\n"
	methods := compile(t, src)

	m := Build(methods, nil, Options{Name: "test"})
	if m.ABI.Methods[0].Offset != 0 {
		t.Fatalf("expected the sole @public method's entry to sit at offset 0, got %d", m.ABI.Methods[0].Offset)
	}
}

func TestBuildParameterTypesUseABINames(t *testing.T) {
	src := "@public\ndef add(a: int, b: int) -> int:\n    return a + b\n"
	methods := compile(t, src)

	m := Build(methods, nil, Options{Name: "test"})
	params := m.ABI.Methods[0].Parameters
	if len(params) != 2 {
		t.Fatalf("expected 2 parameters, got %d", len(params))
	}
	for _, p := range params {
		if p.Type != "Integer" {
			t.Fatalf("expected parameter %q to report ABI type Integer, got %q", p.Name, p.Type)
		}
	}
	if m.ABI.Methods[0].ReturnType != "Integer" {
		t.Fatalf("expected return type Integer, got %q", m.ABI.Methods[0].ReturnType)
	}
}

func TestBuildIsDeterministicAcrossRepeatedCompiles(t *testing.T) {
	src := "@public\ndef zeta() -> int:\n    return 1\n\n" +
		"@public\ndef alpha(x: int) -> int:\n    return x\n"

	first, err := Build(compile(t, src), nil, Options{Name: "dapp", SupportedStandards: []string{"NEP-17"}}).MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	second, err := Build(compile(t, src), nil, Options{Name: "dapp", SupportedStandards: []string{"NEP-17"}}).MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(first) != string(second) {
		t.Fatalf("expected byte-identical manifests across repeated compiles of the same source")
	}
}

func TestBuildSortsSupportedStandards(t *testing.T) {
	methods := compile(t, "@public\ndef main() -> int:\n    return 1\n")
	m := Build(methods, nil, Options{Name: "dapp", SupportedStandards: []string{"NEP-11", "NEP-17"}})
	if strings.Join(m.SupportedStandards, ",") != "NEP-11,NEP-17" {
		t.Fatalf("expected sorted supported standards, got %v", m.SupportedStandards)
	}
}

func TestBuildOmitsNonPublicMethodsEvenWhenDeclaredFirst(t *testing.T) {
	src := "def internal_only() -> int:\n    return 1\n\n" +
		"@public\ndef main() -> int:\n    return internal_only()\n"
	methods := compile(t, src)
	if len(methods) != 2 {
		t.Fatalf("expected both functions compiled, got %d", len(methods))
	}

	m := Build(methods, nil, Options{Name: "test"})
	for _, am := range m.ABI.Methods {
		if am.Name == "internal_only" {
			t.Fatalf("expected non-public method to be excluded from the ABI")
		}
	}
}
