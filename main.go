package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/ledgerdesk/statement-parser/internal/api"
	"github.com/ledgerdesk/statement-parser/internal/logger"
	"github.com/ledgerdesk/statement-parser/internal/models"
	"github.com/ledgerdesk/statement-parser/internal/pipeline"
	"github.com/ledgerdesk/statement-parser/internal/writer"
)

const version = "1.0.0"

func main() {
	hintFlag := flag.String("hint", "", "Account hint, e.g. \"bmo cad\" or \"td checking\"")
	csvFlag := flag.String("csv", "", "Also write transactions to a CSV file at this path")
	serveFlag := flag.Bool("serve", false, "Run as an HTTP server instead of converting one file")
	addrFlag := flag.String("addr", ":8080", "Listen address for -serve")
	versionFlag := flag.Bool("version", false, "Print version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Statement Parser

Converts a BMO or TD statement PDF into a JSON list of transactions
on stdout, with the detected account label.

Usage:
  statement-parser [flags] <statement.pdf>

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Auto-detect the account from the filename
  statement-parser "BMO_CAD_Statement_January 5, 2024.pdf"

  # Nudge detection with a hint
  statement-parser -hint "td checking" statement_jan_15_2024.pdf

  # Also export CSV
  statement-parser -csv out.csv statement.pdf

  # HTTP mode
  statement-parser -serve -addr :8080
`)
	}

	flag.Parse()

	if *versionFlag {
		fmt.Printf("statement-parser v%s\n", version)
		os.Exit(0)
	}

	log := logger.New()
	proc := pipeline.New(log)

	if *serveFlag {
		app := api.NewApp(proc)
		log.Info().Str("addr", *addrFlag).Msg("listening")
		if err := app.Listen(*addrFlag); err != nil {
			log.Fatal().Err(err).Msg("server failed")
		}
		return
	}

	if flag.NArg() != 1 {
		flag.Usage()
		emit(usageResult("Usage: statement-parser [flags] <statement.pdf>"))
		os.Exit(1)
	}

	result := proc.Process(flag.Arg(0), *hintFlag)
	emit(result)

	if *csvFlag != "" && result.Error == nil {
		w := &writer.CSVWriter{IncludeHeader: true}
		if err := w.WriteToFile(*csvFlag, result); err != nil {
			log.Error().Err(err).Msg("CSV write failed")
			os.Exit(1)
		}
	}

	if result.Error != nil {
		os.Exit(1)
	}
}

// emit writes the result as the sole stdout payload: one JSON object.
func emit(result models.ParseResult) {
	enc := json.NewEncoder(os.Stdout)
	if err := enc.Encode(result); err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode result: %v\n", err)
		os.Exit(1)
	}
}

func usageResult(msg string) models.ParseResult {
	return models.ParseResult{
		Transactions: []models.Transaction{},
		Error:        &msg,
	}
}
