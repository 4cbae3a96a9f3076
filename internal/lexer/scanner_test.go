package lexer

import "testing"

func tokenTypes(tokens []Token) []TokenType {
	out := make([]TokenType, len(tokens))
	for i, t := range tokens {
		out[i] = t.Type
	}
	return out
}

func TestIndentDedentAroundNestedBlock(t *testing.T) {
	src := "def f():\n    if x:\n        return 1\n    return 0\n"
	tokens := NewScanner(src).ScanTokens()
	types := tokenTypes(tokens)

	var indents, dedents int
	for _, ty := range types {
		if ty == TokenIndent {
			indents++
		}
		if ty == TokenDedent {
			dedents++
		}
	}
	if indents != 2 {
		t.Fatalf("expected 2 INDENT tokens, got %d: %v", indents, types)
	}
	if dedents != 2 {
		t.Fatalf("expected 2 DEDENT tokens, got %d: %v", dedents, types)
	}
}

func TestBlankAndCommentLinesDoNotAffectIndentation(t *testing.T) {
	src := "def f():\n    return 1\n\n    # a comment\n"
	tokens := NewScanner(src).ScanTokens()
	var indents, dedents int
	for _, tok := range tokens {
		if tok.Type == TokenIndent {
			indents++
		}
		if tok.Type == TokenDedent {
			dedents++
		}
	}
	if indents != 1 || dedents != 1 {
		t.Fatalf("expected exactly one INDENT/DEDENT pair, got indents=%d dedents=%d", indents, dedents)
	}
}

func TestOperatorTokens(t *testing.T) {
	tokens := NewScanner("a // b ** c -> d\n").ScanTokens()
	types := tokenTypes(tokens)
	want := []TokenType{TokenIdent, TokenDSlash, TokenIdent, TokenDStar, TokenIdent, TokenArrow, TokenIdent, TokenNewline, TokenEOF}
	if len(types) != len(want) {
		t.Fatalf("token count = %d, want %d: %v", len(types), len(want), types)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("token[%d] = %s, want %s (%v)", i, types[i], want[i], types)
		}
	}
}

func TestEOFAlwaysClosesOpenIndents(t *testing.T) {
	src := "def f():\n    return 1\n"
	tokens := NewScanner(src).ScanTokens()
	last := tokens[len(tokens)-1]
	if last.Type != TokenEOF {
		t.Fatalf("expected final token to be EOF, got %s", last.Type)
	}
	if tokens[len(tokens)-2].Type != TokenDedent {
		t.Fatalf("expected a trailing DEDENT before EOF, got %s", tokens[len(tokens)-2].Type)
	}
}
