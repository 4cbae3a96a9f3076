// Package neoc orchestrates one compile: lexing, parsing, type analysis,
// code generation, and NEF/manifest emission, wired together the way
// cmd/neoc's build command needs them and instrumented with clog so every
// stage's timing lands in one build's log output under a shared run_id.
package neoc

import (
	"fmt"
	"time"

	"github.com/pkg/errors"

	"neoc/internal/analyser"
	"neoc/internal/clog"
	"neoc/internal/codegen"
	"neoc/internal/diagnostics"
	"neoc/internal/lexer"
	"neoc/internal/manifest"
	"neoc/internal/nef"
	"neoc/internal/parser"
	"neoc/internal/symbols"
)

// CompileOptions carries everything one compile invocation needs as
// input: the source itself, the manifest's passthrough metadata, and the
// compiler version embedded in the NEF container.
type CompileOptions struct {
	SourceName string
	Source     string

	CompilerVersion string

	ManifestName      string
	SupportedStandards []string
	Trusts             []string
	Extra              map[string]string
}

// Result is one compile's output: the emitted bytecode inside its NEF
// container, the contract manifest, and the diagnostics (which may hold
// warnings even on success). After a failed compile only Diagnostics is
// set.
type Result struct {
	NEF         *nef.File
	Manifest    *manifest.Manifest
	Diagnostics *diagnostics.List
}

// Compile runs the full pipeline. log must be non-nil; the caller (the CLI
// or internal/batch, one per translation unit) owns the logger's run_id
// and lifetime. Compile returns a non-nil error only for a
// diagnostics-reported failure (compile errors) or an internal invariant
// violation; diagnostics-only warnings are returned inside
// Result.Diagnostics with a nil error.
func Compile(opts CompileOptions, log *clog.Logger) (*Result, error) {
	start := time.Now()
	tokens := lexer.NewScanner(opts.Source).ScanTokens()
	log.Phase(clog.PhaseLex, clog.Position{File: opts.SourceName}).Duration(clog.PhaseLex, time.Since(start))

	parseStart := time.Now()
	mod := parser.NewParser(tokens).Parse()
	log.Phase(clog.PhaseParse, clog.Position{File: opts.SourceName}).Duration(clog.PhaseParse, time.Since(parseStart))

	global := symbols.NewGlobalScope()
	a := analyser.New(opts.SourceName, global)

	analyseStart := time.Now()
	result := a.Analyse(mod)
	log.Phase(clog.PhaseAnalyse, clog.Position{File: opts.SourceName}).Duration(clog.PhaseAnalyse, time.Since(analyseStart))

	if a.Diagnostics().HasErrors() {
		return &Result{Diagnostics: a.Diagnostics()}, fmt.Errorf("%s: compile failed with %d diagnostic(s)", opts.SourceName, len(a.Diagnostics().Items()))
	}

	codegenStart := time.Now()
	g := codegen.New(global, result.Scopes)
	methods := g.Generate(mod)
	log.Phase(clog.PhaseCodegen, clog.Position{File: opts.SourceName}).Duration(clog.PhaseCodegen, time.Since(codegenStart))

	script := g.Map.Serialise()
	nefFile := nef.Build(script, opts.SourceName, opts.CompilerVersion)

	m := manifest.Build(methods, nil, manifestOptions(opts, codegen.EvaluateMetadata(mod)))

	log.Info("compile succeeded", "script_bytes", len(script), "methods", len(methods))
	return &Result{NEF: nefFile, Manifest: m, Diagnostics: a.Diagnostics()}, nil
}

// manifestOptions merges a @metadata function's evaluated fields over the
// CLI/project-supplied CompileOptions: the metadata function, when present,
// is the authoritative source (mirroring NeoMetadata in the original
// toolchain), with opts filling in anything it left unset.
func manifestOptions(opts CompileOptions, md *codegen.Metadata) manifest.Options {
	result := manifest.Options{
		Name:               opts.ManifestName,
		SupportedStandards: opts.SupportedStandards,
		Trusts:             opts.Trusts,
		Extra:              opts.Extra,
	}
	if md == nil {
		return result
	}
	if len(md.SupportedStandards) > 0 {
		result.SupportedStandards = md.SupportedStandards
	}
	if len(md.Trusts) > 0 {
		result.Trusts = md.Trusts
	}
	extra := map[string]string{}
	for k, v := range opts.Extra {
		extra[k] = v
	}
	if md.Author != "" {
		extra["Author"] = md.Author
	}
	if md.Email != "" {
		extra["Email"] = md.Email
	}
	if md.Description != "" {
		extra["Description"] = md.Description
	}
	result.Extra = extra
	return result
}

// WriteNEF serialises r.NEF, wrapping a serialisation failure (an
// oversized compiler-identity field, an internal invariant the rest of the
// pipeline should have prevented) with a stack trace so it survives this
// package boundary into the CLI's error output.
func (r *Result) WriteNEF() ([]byte, error) {
	out, err := r.NEF.Serialise()
	if err != nil {
		return nil, errors.Wrap(err, "neoc: serialise NEF container")
	}
	return out, nil
}
