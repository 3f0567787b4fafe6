// Copyright (c) 2025 keyviz contributors
// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/kvoverlay/keyviz/internal/app"
	"github.com/kvoverlay/keyviz/internal/errs"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := parseOptions(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return errs.Config.ExitCode()
	}

	a, err := app.Initialize(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "keyviz: %v\n", err)
		return errs.CodeFor(err)
	}

	return a.Run()
}
