// Command gojvm runs the main method of a single compiled .class file.
package main

import (
	"fmt"
	"os"

	"github.com/gojvm/gojvm/config"
	"github.com/gojvm/gojvm/interp"
	"github.com/gojvm/gojvm/internal/jvmlog"
)

func main() {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "gojvm: %v\n", err)
		os.Exit(2)
	}
	if cfg.MainClass == "" {
		fmt.Fprintf(os.Stderr, "usage: gojvm <classfile>\n")
		os.Exit(2)
	}
	if cfg.Debug {
		os.Setenv("GOJVM_DEBUG", "1")
	}
	defer jvmlog.Sync()

	v := interp.New([]string{cfg.ClassDir})
	v.MaxFrameDepth = cfg.MaxFrameDepth

	if err := v.RunMain(cfg.MainClass); err != nil {
		jvmlog.L().Errorw("execution failed", "class", cfg.MainClass, "error", err)
		fmt.Fprintf(os.Stderr, "gojvm: %v\n", err)
		os.Exit(1)
	}
}
