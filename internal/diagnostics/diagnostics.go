// Package diagnostics implements the compiler's diagnostic kinds,
// accumulation, and stderr rendering.
//
// Grounded on original_source/boa3/exception/CompilerError.py for the kind
// set and message wording, shaped into the Go-idiomatic form of a located,
// renderable compiler error.
package diagnostics

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
)

// Kind is one of the compiler's diagnostic kinds.
type Kind string

const (
	TypeHintMissing         Kind = "TypeHintMissing"
	InvalidType             Kind = "InvalidType"
	MismatchedTypes         Kind = "MismatchedTypes"
	NotSupportedOperation   Kind = "NotSupportedOperation"
	UnresolvedReference     Kind = "UnresolvedReference"
	UnresolvedOperation     Kind = "UnresolvedOperation"
	TooManyReturns          Kind = "TooManyReturns"
	UnexpectedArgument      Kind = "UnexpectedArgument"
	UnfilledArgument        Kind = "UnfilledArgument"
	IncorrectNumberOfOperands Kind = "IncorrectNumberOfOperands"
	NameShadowing           Kind = "NameShadowing"
	RedeclaredSymbol        Kind = "RedeclaredSymbol"
)

// Severity distinguishes fatal diagnostics from advisory ones. Only Error
// severity inhibits code generation.
type Severity int

const (
	Error Severity = iota
	Warning
)

func (k Kind) severity() Severity {
	switch k {
	case NameShadowing, RedeclaredSymbol:
		return Warning
	default:
		return Error
	}
}

// Location is a source position rendered as "<file>:<line>:<col>".
type Location struct {
	File   string
	Line   int
	Col    int
}

// Diagnostic is one accumulated compiler diagnostic.
type Diagnostic struct {
	Kind     Kind
	Severity Severity
	Location Location
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d:%d - %s: %s", d.Location.File, d.Location.Line, d.Location.Col, d.Kind, d.Message)
}

// List accumulates diagnostics in the order they are raised. Because the
// AST walk is depth-first left-to-right, appending in traversal order
// already yields diagnostics in non-decreasing (line, column) order, as
// long as callers never reorder it.
type List struct {
	items []Diagnostic
}

func (l *List) Add(d Diagnostic) { l.items = append(l.items, d) }

func (l *List) HasErrors() bool {
	for _, d := range l.items {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

func (l *List) Items() []Diagnostic { return l.items }

// SortedByPosition returns a defensive copy sorted by (line, col), used by
// tests to assert ordering independent of any incidental reordering
// introduced upstream.
func (l *List) SortedByPosition() []Diagnostic {
	out := append([]Diagnostic(nil), l.items...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Location, out[j].Location
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Col < b.Col
	})
	return out
}

// helpers for building the exact messages of CompilerError.py

func New(kind Kind, loc Location, format string, args ...any) Diagnostic {
	return Diagnostic{Kind: kind, Severity: kind.severity(), Location: loc, Message: fmt.Sprintf(format, args...)}
}

func NewTypeHintMissing(loc Location, symbolID string) Diagnostic {
	return New(TypeHintMissing, loc, "Type hint is missing for the symbol '%s'", symbolID)
}

func NewInvalidType(loc Location, symbolID string) Diagnostic {
	return New(InvalidType, loc, "Invalid type: '%s'", symbolID)
}

func NewNotSupportedOperation(loc Location, what string) Diagnostic {
	return New(NotSupportedOperation, loc, "The following operation is not supported: '%s'", what)
}

func NewUnresolvedReference(loc Location, symbolID string) Diagnostic {
	return New(UnresolvedReference, loc, "Unresolved reference '%s'", symbolID)
}

func NewUnresolvedOperation(loc Location, typeID, operationID string) Diagnostic {
	return New(UnresolvedOperation, loc, "Unresolved reference '%s' does not have a definition of '%s' operator", typeID, operationID)
}

func NewMismatchedTypes(loc Location, expected, actual []string) Diagnostic {
	return New(MismatchedTypes, loc, "Expected type '%s', got '%s' instead", strings.Join(expected, "', '"), strings.Join(actual, "', '"))
}

func NewTooManyReturns(loc Location) Diagnostic {
	return New(TooManyReturns, loc, "Too many returns")
}

func NewIncorrectNumberOfOperands(loc Location, expected, actual int) Diagnostic {
	return New(IncorrectNumberOfOperands, loc, "Incorrect number of operands: expected '%d', got '%d' instead", expected, actual)
}

func NewUnexpectedArgument(loc Location) Diagnostic {
	return New(UnexpectedArgument, loc, "Unexpected argument")
}

func NewUnfilledArgument(loc Location, param string) Diagnostic {
	return New(UnfilledArgument, loc, "Parameter '%s' unfilled", param)
}

func NewNameShadowing(loc Location, name string) Diagnostic {
	return New(NameShadowing, loc, "'%s' shadows an outer-scope name", name)
}

func NewRedeclaredSymbol(loc Location, name string) Diagnostic {
	return New(RedeclaredSymbol, loc, "'%s' is already declared in this scope", name)
}

// Report renders every diagnostic to w in source order, one per line.
// When w is a terminal (per mattn/go-isatty) errors are coloured
// red and warnings yellow; redirected output stays plain so piped logs and
// CI artefacts remain grep-able.
func Report(w io.Writer, l *List) error {
	color := false
	if f, ok := w.(interface{ Fd() uintptr }); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	for _, d := range l.Items() {
		line := d.String()
		if color {
			code := "31" // red: error
			if d.Severity == Warning {
				code = "33" // yellow: warning
			}
			line = "\x1b[" + code + "m" + line + "\x1b[0m"
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return errors.Wrap(err, "diagnostics: write report")
		}
	}
	return nil
}
