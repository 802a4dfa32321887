package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/blueprintdsl/blueprint/internal/cache"
	"github.com/blueprintdsl/blueprint/internal/checker"
	"github.com/blueprintdsl/blueprint/internal/config"
	"github.com/blueprintdsl/blueprint/internal/diagnostics"
	"github.com/blueprintdsl/blueprint/internal/linker"
	"github.com/blueprintdsl/blueprint/internal/loader"
	"github.com/blueprintdsl/blueprint/internal/model"
)

const version = "0.3.0"

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: %s <command> [args]

Commands:
  validate [dir]   validate all module fragments under dir (default ".")
  lint [dir]       like validate, but reference violations are warnings
  version          print the version

Flags:
  --no-cache       skip the validation result cache
`, os.Args[0])
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "validate":
		os.Exit(runValidate(os.Args[2:], false))
	case "lint":
		os.Exit(runValidate(os.Args[2:], true))
	case "version":
		fmt.Println(version)
	default:
		usage()
		os.Exit(2)
	}
}

func runValidate(args []string, lintMode bool) int {
	dir := "."
	useCache := true
	for _, arg := range args {
		switch arg {
		case "--no-cache":
			useCache = false
		default:
			dir = arg
		}
	}

	mods, err := loader.LoadDir(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		return 1
	}
	if len(mods) == 0 {
		fmt.Fprintf(os.Stderr, "ERROR: no %s fragments found under %s\n", config.FragmentFileExt, dir)
		return 1
	}

	var store *cache.Store
	var fingerprint string
	if useCache {
		store, fingerprint = openCache(dir, mods)
		if store != nil {
			defer store.Close()
		}
	}
	if store != nil {
		if lines, ok, err := store.Get(fingerprint); err == nil && ok {
			return report(lines, lintMode, len(mods))
		}
	}

	app, violations, err := linker.Link(mods)
	if err != nil {
		// Structural failure: nothing to cache, no partial model.
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		return 1
	}

	lines := make([]string, 0, len(violations))
	for _, v := range violations {
		lines = append(lines, "ERROR: "+v)
	}
	for _, d := range checker.Check(app) {
		lines = append(lines, d.Error())
	}

	if store != nil {
		if err := store.Put(fingerprint, lines); err != nil {
			fmt.Fprintf(os.Stderr, "WARNING: could not update cache: %s\n", err)
		}
	}
	return report(lines, lintMode, len(mods))
}

// openCache builds the fragment-set fingerprint and opens the per-project
// cache. Any failure disables caching for this run rather than failing it.
func openCache(dir string, mods []*model.Module) (*cache.Store, string) {
	paths := make([]string, 0, len(mods))
	for _, mod := range mods {
		paths = append(paths, mod.File)
	}
	fingerprint, err := cache.Fingerprint(paths)
	if err != nil {
		return nil, ""
	}
	if err := os.MkdirAll(filepath.Join(dir, config.CacheDirName), 0o755); err != nil {
		return nil, ""
	}
	store, err := cache.Open(cachePath(dir))
	if err != nil {
		return nil, ""
	}
	return store, fingerprint
}

func report(lines []string, lintMode bool, moduleCount int) int {
	color := isatty.IsTerminal(os.Stdout.Fd())
	exit := 0
	for _, line := range lines {
		severity := severityOf(line)
		if lintMode && severity == diagnostics.SeverityError && isReferenceViolation(line) {
			line = "WARNING: " + strings.TrimPrefix(line, "ERROR: ")
			severity = diagnostics.SeverityWarning
		}
		if severity == diagnostics.SeverityError {
			exit = 1
		}
		fmt.Println(colorize(line, severity, color))
	}
	if len(lines) == 0 {
		fmt.Printf("OK: %d module(s) validated, no problems found\n", moduleCount)
	}
	return exit
}

func severityOf(line string) diagnostics.Severity {
	if strings.HasPrefix(line, "WARNING:") || strings.Contains(line, ": warning: ") {
		return diagnostics.SeverityWarning
	}
	return diagnostics.SeverityError
}

func isReferenceViolation(line string) bool {
	return strings.Contains(line, "references unknown entity")
}

func colorize(line string, severity diagnostics.Severity, color bool) string {
	if !color {
		return line
	}
	if severity == diagnostics.SeverityWarning {
		return "\033[33m" + line + "\033[0m"
	}
	return "\033[31m" + line + "\033[0m"
}

func cachePath(dir string) string {
	return filepath.Join(dir, config.CacheDirName, config.CacheFileName)
}
