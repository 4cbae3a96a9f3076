package codegen

import "neoc/internal/ast"

// Metadata is the manifest passthrough populated by a @metadata-decorated
// function's body: author/email/description and the list-valued
// supported-standards/trusts fields. Grounded on
// original_source/boa3_test/tests/test_metadata.py's NeoMetadata-attribute
// pattern, narrowed to what this subset's AST can express — a flat sequence
// of `field = "literal"` (or `field = "a", "b"` for the list-valued fields)
// assignments, rather than a general object with attribute assignment.
type Metadata struct {
	SupportedStandards []string
	Trusts             []string
	Author             string
	Email              string
	Description        string
}

// EvaluateMetadata finds the module's @metadata function, if any, and
// interprets its body as a pure constructor of a Metadata record — the
// function is never compiled into the script (see Generate's skip of
// fn.IsMetadata()); this is the "invoked abstractly by the compiler" half
// of consuming it.
func EvaluateMetadata(mod *ast.Module) *Metadata {
	for _, fn := range mod.Functions {
		if fn.IsMetadata() {
			return evaluateMetadataBody(fn.Body)
		}
	}
	return nil
}

func evaluateMetadataBody(body []ast.Stmt) *Metadata {
	m := &Metadata{}
	for _, stmt := range body {
		assign, ok := stmt.(*ast.Assign)
		if !ok || len(assign.Targets) != 1 {
			continue
		}
		id, ok := assign.Targets[0].(*ast.Identifier)
		if !ok {
			continue
		}
		switch id.Name {
		case "author":
			m.Author = stringLiteral(assign.Value)
		case "email":
			m.Email = stringLiteral(assign.Value)
		case "description":
			m.Description = stringLiteral(assign.Value)
		case "standard", "supported_standards":
			m.SupportedStandards = stringList(assign.Value)
		case "trusts":
			m.Trusts = stringList(assign.Value)
		}
	}
	return m
}

func stringLiteral(e ast.Expr) string {
	if s, ok := e.(*ast.StrLiteral); ok {
		return s.Value
	}
	return ""
}

// stringList accepts either a single string literal (a one-element list)
// or a comma-separated *ast.Tuple of string literals.
func stringList(e ast.Expr) []string {
	if s, ok := e.(*ast.StrLiteral); ok {
		return []string{s.Value}
	}
	tuple, ok := e.(*ast.Tuple)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(tuple.Elements))
	for _, el := range tuple.Elements {
		if s, ok := el.(*ast.StrLiteral); ok {
			out = append(out, s.Value)
		}
	}
	return out
}
