// SPDX-License-Identifier: MIT

// validate checks a training input document (YAML or JSON).
//
// Usage:
//
//	validate -f input.yaml
//	validate --file input.json
//	validate -f input.yaml -data    # also inspect the data systems
//
// Exit codes:
//   - 0: Input is valid
//   - 1: Input is invalid (parse, validation or data-system error)
//   - 2: Usage error (missing required flag)
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/polarmd/dpinput/internal/config"
	"github.com/polarmd/dpinput/internal/data"
	"github.com/polarmd/dpinput/internal/spin"
	"github.com/polarmd/dpinput/internal/validate"
)

var Version = "dev"

func main() {
	var file string
	var checkData bool
	var showVersion bool

	flag.StringVar(&file, "file", "", "path to input file (YAML or JSON)")
	flag.StringVar(&file, "f", "", "path to input file (shorthand)")
	flag.BoolVar(&checkData, "data", false, "inspect the referenced data systems")
	flag.BoolVar(&showVersion, "version", false, "print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Println(Version)
		os.Exit(0)
	}

	if file == "" {
		fmt.Fprintln(os.Stderr, "Error: --file is required")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  validate -f input.yaml")
		fmt.Fprintln(os.Stderr, "  validate --file input.json")
		os.Exit(2)
	}

	in, err := config.LoadInput(file)
	if err != nil {
		var verr validate.ValidationError
		if errors.As(err, &verr) {
			fmt.Fprintf(os.Stderr, "Validation errors in %s:\n", file)
			for _, fe := range verr.Errors() {
				fmt.Fprintf(os.Stderr, "  %s: %s\n", fe.Field, fe.Message)
			}
		} else {
			fmt.Fprintf(os.Stderr, "Input error in %s:\n", file)
			fmt.Fprintf(os.Stderr, "  %v\n", err)
		}
		os.Exit(1)
	}

	suffix := ""
	if in.Model.HasSpin() {
		suffix = " (spin model)"
	}
	fmt.Printf("✓ %s is valid: %d species%s\n", file, in.Model.NumSpecies(), suffix)

	if in.Model.HasSpin() {
		if layout, err := spin.NewLayout(in.Model); err == nil {
			fmt.Printf("  extended type map: %v\n", layout.TypeMap)
		}
	}

	if checkData {
		if !reportData(in) {
			os.Exit(1)
		}
	}
}

// reportData inspects every data system the input references and prints
// atom counts, set counts and resolved batch sizes.
func reportData(in config.Input) bool {
	ok := true
	sections := []struct {
		name    string
		section *config.DataSection
	}{
		{"training_data", &in.Training.TrainingData},
		{"validation_data", in.Training.ValidationData},
	}

	for _, s := range sections {
		if s.section == nil {
			continue
		}
		report := data.Scan(*s.section)
		fmt.Printf("%s:\n", s.name)
		for _, sys := range report.Systems {
			fmt.Printf("  %s: %d atoms, %d sets, batch_size %d\n",
				sys.Path, sys.NAtoms, sys.NSets, sys.BatchSize)
		}
		for _, missing := range report.Missing {
			fmt.Printf("  ✗ %s: missing or malformed\n", missing)
			ok = false
		}
		if bad := data.SpeciesCoverage(report, in.Model.NumSpecies()); len(bad) != 0 {
			fmt.Printf("  ✗ species indices %v exceed the type map (%d species)\n",
				bad, in.Model.NumSpecies())
			ok = false
		}
	}
	return ok
}
