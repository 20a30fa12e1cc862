// SPDX-License-Identifier: MIT

// dpinput-migrate upgrades a legacy training input document to the
// current layout.
//
// Usage:
//
//	dpinput-migrate -f input.json              # rewrite in place
//	dpinput-migrate -f input.json -o new.json  # write elsewhere
//	dpinput-migrate -f input.json --dry-run    # print to stdout
//
// Exit codes:
//   - 0: Migration succeeded (or document already current)
//   - 1: Migration failed
//   - 2: Usage error
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/renameio/v2"

	"github.com/polarmd/dpinput/internal/config"
)

func main() {
	var (
		file   = flag.String("f", "", "path to input file (YAML or JSON)")
		out    = flag.String("o", "", "output file (default: rewrite input in place)")
		dryRun = flag.Bool("dry-run", false, "print the migrated document instead of writing")
	)
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "Error: -f is required")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  dpinput-migrate -f input.json [--dry-run] [-o new.json]")
		os.Exit(2)
	}

	if err := run(*file, *out, *dryRun); err != nil {
		fmt.Fprintf(os.Stderr, "dpinput-migrate: %v\n", err)
		os.Exit(1)
	}
}

func run(file, out string, dryRun bool) error {
	format, err := config.FormatForPath(file)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}

	raw, err := config.ParseRaw(data, format)
	if err != nil {
		return fmt.Errorf("parse %s: %w", file, err)
	}

	from := config.DetectVersion(raw)
	migrated, applied, err := config.Update(raw)
	if err != nil {
		return fmt.Errorf("migrate %s: %w", file, err)
	}

	if from == config.VersionCurrent && len(applied) == 0 {
		fmt.Printf("%s is already current, nothing to do\n", file)
		return nil
	}

	fmt.Printf("%s: %s -> %s\n", file, from, config.VersionCurrent)
	for _, c := range applied {
		fmt.Printf("  %s -> %s: %s\n", c.From, c.To, c.Note)
	}

	rendered, err := config.RenderRaw(migrated, format)
	if err != nil {
		return err
	}

	// Decode the migrated document so an upgrade never writes a file the
	// strict loader would reject.
	if _, err := config.DecodeInput(rendered, format); err != nil {
		return fmt.Errorf("migrated document failed validation: %w", err)
	}

	if dryRun {
		_, err := os.Stdout.Write(rendered)
		return err
	}

	target := out
	if target == "" {
		target = file
	}
	if err := writeAtomic(target, rendered); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", target)
	return nil
}

// writeAtomic replaces the target through a temp file and rename, so an
// interrupted run never leaves a truncated input behind.
func writeAtomic(path string, data []byte) error {
	pending, err := renameio.NewPendingFile(path)
	if err != nil {
		return fmt.Errorf("create pending file: %w", err)
	}
	defer func() { _ = pending.Cleanup() }()

	if _, err := pending.Write(data); err != nil {
		return fmt.Errorf("write pending file: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
