// Command squash flattens the first N records of every JSONL file in a
// directory into one CSV file.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"sjsage522/tapeworker/internal/economics"
	"sjsage522/tapeworker/internal/export"
	"sjsage522/tapeworker/internal/ingest"
	"sjsage522/tapeworker/internal/tabular"
	"sjsage522/tapeworker/logger"

	"github.com/joho/godotenv"
)

func main() {
	godotenv.Load()
	logger.Init()

	if err := run(os.Args[1:], os.Stderr); err != nil {
		logger.Default.Fatal().Err(err).Msg("squash failed")
	}
}

func run(args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("squash", flag.ContinueOnError)
	fs.SetOutput(stderr)
	union := fs.Bool("union", false, "use the union of all record paths instead of the tape schema")
	out := fs.String("out", "out.csv", "output CSV file")
	plain := fs.Bool("strip-html", false, "convert HTML in string values to plain text")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: squash [-union] [-strip-html] [-out out.csv] <N> <directory>")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return errors.New("expected <N> and <directory>")
	}

	n, err := strconv.Atoi(fs.Arg(0))
	if err != nil || n < 1 {
		return fmt.Errorf("N must be a positive integer, got %q", fs.Arg(0))
	}

	records, err := ingest.ReadDir(fs.Arg(1), n)
	if err != nil {
		return err
	}

	rates, err := economics.ParseRates(os.Getenv("EUR_RATES"), economics.DefaultRates())
	if err != nil {
		return fmt.Errorf("EUR_RATES: %w", err)
	}

	opts := export.Options{
		Columns:   export.TapeColumns,
		Order:     tabular.Lexicographic,
		PlainText: *plain,
		Rates:     rates,
	}
	if *union {
		opts.Columns = nil
	}

	if err := export.WriteCSV(*out, export.Render(records, opts)); err != nil {
		return err
	}
	logger.Info("Wrote %d records to %s", len(records), *out)
	return nil
}
