// Command combine merges whole JSONL files into one CSV file, dropping
// private keys.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"sjsage522/tapeworker/internal/export"
	"sjsage522/tapeworker/internal/ingest"
	"sjsage522/tapeworker/internal/tabular"
	"sjsage522/tapeworker/logger"
)

const defaultOut = "results/combined.csv"

func main() {
	logger.Init()

	if err := run(os.Args[1:], os.Stderr); err != nil {
		logger.Default.Fatal().Err(err).Msg("combine failed")
	}
}

func run(args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("combine", flag.ContinueOnError)
	fs.SetOutput(stderr)
	out := fs.String("out", defaultOut, "output CSV file")
	plain := fs.Bool("strip-html", false, "convert HTML in string values to plain text")
	firstSeen := fs.Bool("first-seen", false, "order columns by first appearance instead of lexicographically")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: combine [-strip-html] [-first-seen] [-out results/combined.csv] <file>...")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("expected at least one JSONL file")
	}

	records, err := ingest.ReadFiles(fs.Args())
	if err != nil {
		return err
	}

	opts := export.Options{
		Order:        tabular.Lexicographic,
		StripPrivate: true,
		PlainText:    *plain,
	}
	if *firstSeen {
		opts.Order = tabular.FirstSeen
	}

	if err := export.WriteCSV(*out, export.Render(records, opts)); err != nil {
		return err
	}
	logger.Info("Wrote %d records to %s", len(records), *out)
	return nil
}
