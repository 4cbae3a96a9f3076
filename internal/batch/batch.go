// Package batch compiles multiple independent translation units
// concurrently: a build tool invoking the compiler across every .py file
// in a directory gets one goroutine per file, each carrying its own
// correlation id through the log.
package batch

import (
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"neoc/internal/clog"
	"neoc/internal/neoc"
)

// Unit is one translation unit to compile: a source file's name and
// contents, plus the manifest metadata that applies to it.
type Unit struct {
	SourceName string
	Source     string
	Options    neoc.CompileOptions
}

// UnitResult pairs one Unit's outcome with the run id its log lines were
// tagged with, so a failure in a concurrent batch can be traced back to
// its source file even after interleaved log output.
type UnitResult struct {
	SourceName string
	RunID      string
	Result     *neoc.Result
	Err        error
}

// Compile runs every unit concurrently via errgroup.Group, returning one
// UnitResult per unit in the same order units was given regardless of
// completion order. A unit's compile failure does not cancel the others —
// unlike errgroup.WithContext's cancel-on-first-error behaviour, a batch
// build wants every file's diagnostics, not just the first failure's.
func Compile(units []Unit, newLogger func(sourceName, runID string) *clog.Logger) []UnitResult {
	results := make([]UnitResult, len(units))
	var g errgroup.Group

	for i, u := range units {
		i, u := i, u
		g.Go(func() error {
			runID := uuid.NewString()
			log := newLogger(u.SourceName, runID)
			opts := u.Options
			opts.SourceName = u.SourceName
			opts.Source = u.Source

			result, err := neoc.Compile(opts, log)
			results[i] = UnitResult{SourceName: u.SourceName, RunID: runID, Result: result, Err: err}
			return nil
		})
	}
	g.Wait()
	return results
}

// Succeeded reports whether every unit in results compiled without error.
func Succeeded(results []UnitResult) bool {
	for _, r := range results {
		if r.Err != nil {
			return false
		}
	}
	return true
}
