// SPDX-License-Identifier: MIT

// configgen emits a complete example training input document.
//
// Usage:
//
//	configgen                      # YAML to stdout
//	configgen -format json         # JSON to stdout
//	configgen -o input.yaml        # write to file
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/polarmd/dpinput/internal/config"
)

func main() {
	format := flag.String("format", "yaml", "output format (yaml or json)")
	out := flag.String("o", "", "output file (default stdout)")
	flag.Parse()

	var f config.Format
	switch *format {
	case "yaml", "yml":
		f = config.FormatYAML
	case "json":
		f = config.FormatJSON
	default:
		fmt.Fprintf(os.Stderr, "configgen: unknown format %q (want yaml or json)\n", *format)
		os.Exit(2)
	}

	raw, err := config.RenderInput(config.ExampleInput(), f)
	if err != nil {
		fail(err)
	}

	if *out == "" {
		if _, err := os.Stdout.Write(raw); err != nil {
			fail(err)
		}
		return
	}
	if err := os.WriteFile(*out, raw, 0o644); err != nil {
		fail(err)
	}
	fmt.Printf("wrote %s\n", *out)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "configgen: %v\n", err)
	os.Exit(1)
}
