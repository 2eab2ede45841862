// Package config parses the command-line and environment inputs the
// VM needs to start (spec §6). The surface is four scalars, so this
// wraps the standard library's flag package rather than pulling in a
// configuration framework (see DESIGN.md for why no larger library
// earns its keep here).
package config

import (
	"flag"
	"os"
	"path/filepath"
)

// Config holds the resolved startup parameters for cmd/gojvm.
type Config struct {
	// MainClass is the name of the class whose main method should run:
	// the base name of the path argument with ".class" stripped, or ""
	// when no path was given.
	MainClass string
	// ClassDir is the directory main class's .class file. Derived from
	// the path argument the user passed, not separately flagged.
	ClassDir string
	// MaxFrameDepth bounds call-stack recursion.
	MaxFrameDepth int
	// Debug toggles verbose structured logging.
	Debug bool
}

// Parse reads args (normally os.Args[1:]) into a Config. The sole
// positional argument is a path to a .class file; everything else is
// a flag.
func Parse(args []string) (*Config, error) {
	fs := flag.NewFlagSet("gojvm", flag.ContinueOnError)
	maxDepth := fs.Int("max-frame-depth", 1024, "maximum nested method call depth")
	debug := fs.Bool("debug", os.Getenv("GOJVM_DEBUG") != "", "enable verbose structured logging")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	classPath := fs.Arg(0)
	dir := filepath.Dir(classPath)
	name := strippedClassName(classPath)

	return &Config{
		MainClass:     name,
		ClassDir:      dir,
		MaxFrameDepth: *maxDepth,
		Debug:         *debug,
	}, nil
}

func strippedClassName(path string) string {
	if path == "" {
		return ""
	}
	base := filepath.Base(path)
	if ext := filepath.Ext(base); ext == ".class" {
		base = base[:len(base)-len(ext)]
	}
	return base
}
