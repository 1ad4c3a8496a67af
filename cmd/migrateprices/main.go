// Command migrateprices rewrites a legacy prices.json into the
// slot-per-potential layout.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"pricer/internal/pricedb"
)

func main() {
	input := flag.String("input", "prices.json", "Path to legacy prices.json")
	output := flag.String("output", "", "Output path (default: rewrite input in place)")
	noBackup := flag.Bool("no-backup", false, "Do not create a backup when writing in place")
	flag.Parse()

	if _, err := os.Stat(*input); err != nil {
		fmt.Fprintf(os.Stderr, "Input file %q does not exist\n", *input)
		os.Exit(1)
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, nil))
	if err := pricedb.Migrate(*input, *output, !*noBackup, log); err != nil {
		fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
		os.Exit(1)
	}
}
