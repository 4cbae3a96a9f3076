// Command neoc is the compiler's CLI: build a single source file, batch
// compile a directory, or watch a file and push recompiles to connected
// browser clients.
//
// Grounded on cmd/sentra/main.go's top-level command dispatch (an alias
// map plus per-command handling), reshaped onto github.com/urfave/cli/v3's
// Command tree so each subcommand gets flag parsing and help text for
// free instead of hand-rolled os.Args slicing.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"neoc/internal/batch"
	"neoc/internal/cache"
	"neoc/internal/clog"
	"neoc/internal/config"
	"neoc/internal/devserver"
	"neoc/internal/diagnostics"
	"neoc/internal/neoc"
)

const compilerVersion = "v0.1.0"

func main() { os.Exit(run(os.Args)) }

// run is factored out of main so testscript-driven CLI tests can invoke it
// in-process via testscript.RunMain instead of shelling out to a built
// binary.
func run(args []string) int {
	cmd := &cli.Command{
		Name:  "neoc",
		Usage: "compile a statically-typed Python subset to Neo N3 smart contract bytecode",
		Commands: []*cli.Command{
			buildCommand(),
			batchCommand(),
			watchCommand(),
		},
	}
	if err := cmd.Run(context.Background(), args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func buildCommand() *cli.Command {
	return &cli.Command{
		Name:    "build",
		Aliases: []string{"b"},
		Usage:   "compile a single source file and write its .nef and .manifest.json",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output directory (default: alongside the source file)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.Args().First()
			if path == "" {
				return fmt.Errorf("neoc build: a source file path is required")
			}
			outDir := cmd.String("out")
			if outDir == "" {
				outDir = filepath.Dir(path)
			}
			return runBuild(path, outDir)
		},
	}
}

func runBuild(path, outDir string) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("neoc build: %w", err)
	}
	project, err := config.Load(config.DefaultFileName)
	if err != nil {
		return fmt.Errorf("neoc build: %w", err)
	}

	log := clog.New(os.Stderr, path)
	opts := buildOptions(path, string(source), project)

	result, err := neoc.Compile(opts, log)
	if err != nil {
		diagnostics.Report(os.Stderr, result.Diagnostics)
		return err
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	nefBytes, err := result.WriteNEF()
	if err != nil {
		return fmt.Errorf("neoc build: %w", err)
	}
	if err := os.WriteFile(filepath.Join(outDir, base+".nef"), nefBytes, 0o644); err != nil {
		return fmt.Errorf("neoc build: write .nef: %w", err)
	}

	manifestBytes, err := result.Manifest.MarshalJSON()
	if err != nil {
		return fmt.Errorf("neoc build: marshal manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(outDir, base+".manifest.json"), manifestBytes, 0o644); err != nil {
		return fmt.Errorf("neoc build: write manifest: %w", err)
	}

	fmt.Println(result.NEF.Summary())
	return nil
}

func buildOptions(path, source string, project *config.Project) neoc.CompileOptions {
	name := project.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return neoc.CompileOptions{
		SourceName:         path,
		Source:             source,
		CompilerVersion:    compilerVersion,
		ManifestName:       name,
		SupportedStandards: project.SupportedStandards,
		Trusts:             project.Trusts,
		Extra:              project.Extra(),
	}
}

func batchCommand() *cli.Command {
	return &cli.Command{
		Name:  "batch",
		Usage: "concurrently compile every .py file in a directory",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "cache", Usage: "path to a build cache database (skips unchanged files)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir := cmd.Args().First()
			if dir == "" {
				return fmt.Errorf("neoc batch: a directory is required")
			}
			return runBatch(dir, cmd.String("cache"))
		},
	}
}

func runBatch(dir, cachePath string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("neoc batch: %w", err)
	}
	project, err := config.Load(config.DefaultFileName)
	if err != nil {
		return fmt.Errorf("neoc batch: %w", err)
	}

	var buildCache *cache.Cache
	if cachePath != "" {
		buildCache, err = cache.Open(cachePath)
		if err != nil {
			return fmt.Errorf("neoc batch: %w", err)
		}
		defer buildCache.Close()
	}

	var units []batch.Unit
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".py") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		source, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("neoc batch: read %s: %w", path, err)
		}
		if buildCache != nil {
			if _, found, _ := buildCache.Lookup(cache.Hash(string(source))); found {
				fmt.Printf("%s: cached, skipping\n", path)
				continue
			}
		}
		units = append(units, batch.Unit{
			SourceName: path,
			Source:     string(source),
			Options:    buildOptions(path, "", project),
		})
	}

	results := batch.Compile(units, func(sourceName, runID string) *clog.Logger {
		return clog.New(os.Stderr, runID)
	})

	for _, r := range results {
		if r.Err != nil {
			fmt.Printf("%s: FAILED (run %s): %v\n", r.SourceName, r.RunID, r.Err)
			continue
		}
		fmt.Printf("%s: OK (run %s)\n", r.SourceName, r.RunID)
		if buildCache != nil {
			script, _ := r.Result.WriteNEF()
			buildCache.Store(cache.Hash(sourceByName(units, r.SourceName)), r.SourceName, script)
		}
	}
	if !batch.Succeeded(results) {
		return fmt.Errorf("neoc batch: one or more files failed to compile")
	}
	return nil
}

func sourceByName(units []batch.Unit, sourceName string) string {
	for _, u := range units {
		if u.SourceName == sourceName {
			return u.Source
		}
	}
	return ""
}

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:    "watch",
		Aliases: []string{"w"},
		Usage:   "recompile a file on save and push the result to connected browser clients",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Value: ":8787", Usage: "address to serve the watch WebSocket on"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.Args().First()
			if path == "" {
				return fmt.Errorf("neoc watch: a source file path is required")
			}
			return runWatch(ctx, path, cmd.String("addr"))
		},
	}
}

func runWatch(ctx context.Context, path, addr string) error {
	project, err := config.Load(config.DefaultFileName)
	if err != nil {
		return err
	}
	hub := devserver.New()
	go http.ListenAndServe(addr, hub)
	fmt.Printf("watching %s, serving ws://%s\n", path, addr)

	var lastModTime time.Time
	for {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("neoc watch: %w", err)
		}
		if info.ModTime().After(lastModTime) {
			lastModTime = info.ModTime()
			broadcastRecompile(hub, path, project)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(300 * time.Millisecond):
		}
	}
}

func broadcastRecompile(hub *devserver.Hub, path string, project *config.Project) {
	source, err := os.ReadFile(path)
	if err != nil {
		hub.Broadcast(devserver.BuildEvent{SourceName: path, Success: false, Diagnostics: []string{err.Error()}})
		return
	}

	log := clog.New(os.Stderr, path)
	opts := buildOptions(path, string(source), project)
	result, err := neoc.Compile(opts, log)
	if err != nil {
		lines := make([]string, 0, len(result.Diagnostics.Items()))
		for _, d := range result.Diagnostics.Items() {
			lines = append(lines, d.String())
		}
		hub.Broadcast(devserver.BuildEvent{SourceName: path, Success: false, Diagnostics: lines})
		return
	}
	hub.Broadcast(devserver.BuildEvent{SourceName: path, Success: true, ScriptBytes: len(result.NEF.Script)})
}
