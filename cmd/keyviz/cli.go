// Copyright (c) 2025 keyviz contributors
// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kvoverlay/keyviz/config"
)

// parseOptions parses CLI flags into a fully resolved Config: defaults,
// then an optional --config YAML file, then flags layered on top —
// flags always win, matching config.FlagValues.Apply's doc comment.
func parseOptions(args []string) (*config.Config, error) {
	cfg := config.Defaults()

	fs := flag.NewFlagSet("keyviz", flag.ContinueOnError)
	var parseOutput strings.Builder
	fs.SetOutput(&parseOutput)

	fv := config.RegisterFlags(fs, cfg)
	fs.Usage = func() { printUsage(os.Stderr, fs) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, flag.ErrHelp
		}
		if parseOutput.Len() > 0 {
			fmt.Fprint(os.Stderr, parseOutput.String())
		}
		fs.Usage()
		return nil, err
	}

	if fv.ConfigFile() != "" {
		loaded, err := config.Load(fv.ConfigFile())
		if err != nil {
			return nil, err
		}
		cfg = loaded

		// Re-register the flags over the file's values and parse again,
		// so a flag left unset keeps the file's value instead of the
		// built-in default it was first registered with.
		fs = flag.NewFlagSet("keyviz", flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		fv = config.RegisterFlags(fs, cfg)
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
	}

	if err := fv.Apply(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	name := filepath.Base(os.Args[0])
	fmt.Fprintf(w, "Usage: %s [flags]\n\n", name)
	fmt.Fprintln(w, "Renders a live overlay of keypresses on a wlr-layer-shell compositor.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	originalOutput := fs.Output()
	fs.SetOutput(w)
	fs.PrintDefaults()
	fs.SetOutput(originalOutput)
}
