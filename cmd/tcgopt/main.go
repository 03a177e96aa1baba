// SPDX-License-Identifier: Apache-2.0
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"tcgopt/internal/asm"
	"tcgopt/internal/errors"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: tcgopt <file.tcg>")
		os.Exit(1)
	}

	path := os.Args[1]

	source, err := os.ReadFile(path)
	if err != nil {
		color.Red("failed to read file: %s", err)
		os.Exit(1)
	}

	result, err := asm.OptimizeSource(path, string(source))
	if err != nil {
		reportError(path, string(source), err)
		os.Exit(1)
	}

	color.Cyan("-- before --")
	fmt.Print(result.Before)
	color.Cyan("-- after --")
	fmt.Print(result.After)

	before := countLiveOps(result.Before)
	after := countLiveOps(result.After)
	color.Green("✅ %s: %d ops -> %d ops", path, before, after)
}

func reportError(path, source string, err error) {
	diagnostic := asm.Diagnostic(err)
	reporter := errors.NewReporter(path, source)
	fmt.Print(reporter.Format(diagnostic))
}

// countLiveOps counts non-nop instruction lines in a printed .tcg listing,
// for the CLI's one-line op-count summary.
func countLiveOps(listing string) int {
	n := 0
	for _, line := range strings.Split(listing, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line == "nop" || strings.HasPrefix(line, "label") {
			continue
		}
		n++
	}
	return n
}
