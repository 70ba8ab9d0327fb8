package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/ledgerlens/statement-extractor/internal/api"
	"github.com/ledgerlens/statement-extractor/internal/balance"
	"github.com/ledgerlens/statement-extractor/internal/logging"
	"github.com/ledgerlens/statement-extractor/internal/models"
	"github.com/ledgerlens/statement-extractor/internal/pipeline"
	"github.com/ledgerlens/statement-extractor/internal/writer"
)

const version = "1.0.0"

func main() {
	serveFlag := flag.Bool("serve", false, "Run the HTTP API instead of converting files")
	addrFlag := flag.String("addr", "", "HTTP listen address (overrides config)")
	outputFlag := flag.String("output", "", "Output CSV file path (defaults to input filename with .csv extension)")
	configFlag := flag.String("config", "", "Path to config file")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	helpFlag := flag.Bool("help", false, "Show usage help")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Statement Extractor

Parses scanned and exported bank statement PDFs (TD, RBC, CIBC, BMO;
credit card and chequing/savings) into structured transactions with
reconciled opening and closing balances.

Usage:
  statement-extractor [flags] <input.pdf> [input2.pdf ...]
  statement-extractor --serve

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Convert a statement to CSV next to the input
  statement-extractor statement.pdf

  # Custom output path
  statement-extractor --output=transactions.csv statement.pdf

  # Run the upload API
  statement-extractor --serve --addr=:8080

Config file (YAML, --config or ./statement-extractor.yaml):
  ocr.dpi            rasterization density (default 300)
  reconcile.prefer   "text" or "ocr" (default "text")
  log.level          logrus level (default "info")
  log.format         "text" or "json" (default "text")
  server.addr        HTTP listen address (default ":8080")
`)
	}

	flag.Parse()

	if *versionFlag {
		fmt.Printf("statement-extractor v%s\n", version)
		os.Exit(0)
	}
	if *helpFlag || (!*serveFlag && flag.NArg() == 0) {
		flag.Usage()
		os.Exit(0)
	}

	if err := validateOutputFlag(*outputFlag, flag.NArg()); err != nil {
		fatalf("%v\n", err)
	}

	cfg, err := loadConfig(*configFlag)
	if err != nil {
		fatalf("config: %v\n", err)
	}
	logging.Setup(cfg.logLevel, cfg.logFormat)

	p := pipeline.New(pipeline.Config{Policy: cfg.policy, DPI: cfg.dpi})

	if *serveFlag {
		addr := cfg.addr
		if *addrFlag != "" {
			addr = *addrFlag
		}
		h := &api.Handler{Pipeline: p}
		fmt.Printf("Listening on %s\n", addr)
		if err := h.Router().Listen(addr); err != nil {
			fatalf("server: %v\n", err)
		}
		return
	}

	for _, inputPath := range flag.Args() {
		if err := processFile(p, inputPath, *outputFlag); err != nil {
			fmt.Fprintf(os.Stderr, "Error processing %s: %v\n", inputPath, err)
			os.Exit(1)
		}
	}
}

// validateOutputFlag rejects a single --output path for several inputs,
// which would write every statement's CSV over the same file.
func validateOutputFlag(output string, inputs int) error {
	if output != "" && inputs > 1 {
		return fmt.Errorf("--output cannot be used with multiple input files; omit it to write one CSV per input")
	}
	return nil
}

type config struct {
	dpi       float64
	policy    balance.Policy
	logLevel  string
	logFormat string
	addr      string
}

func loadConfig(path string) (config, error) {
	v := viper.New()
	v.SetDefault("ocr.dpi", 300.0)
	v.SetDefault("reconcile.prefer", "text")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("server.addr", ":8080")
	v.SetEnvPrefix("STMT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return config{}, err
		}
	} else {
		v.SetConfigName("statement-extractor")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return config{}, err
			}
		}
	}

	policy := balance.PreferText
	switch strings.ToLower(v.GetString("reconcile.prefer")) {
	case "text":
	case "ocr":
		policy = balance.PreferOCR
	default:
		return config{}, fmt.Errorf("reconcile.prefer must be \"text\" or \"ocr\"")
	}

	return config{
		dpi:       v.GetFloat64("ocr.dpi"),
		policy:    policy,
		logLevel:  v.GetString("log.level"),
		logFormat: v.GetString("log.format"),
		addr:      v.GetString("server.addr"),
	}, nil
}

func processFile(p *pipeline.Pipeline, inputPath, outputPath string) error {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("input file not found: %s", inputPath)
	}
	if ext := strings.ToLower(filepath.Ext(inputPath)); ext != ".pdf" {
		return fmt.Errorf("expected .pdf file, got %q", ext)
	}

	fmt.Printf("Processing: %s\n", inputPath)

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	result := p.Process(context.Background(), models.RawDocument{
		Data:     data,
		Filename: filepath.Base(inputPath),
	})

	fmt.Printf("  Detected: %s / %s\n", result.Format.Bank, result.Format.Kind)
	fmt.Printf("  Found %d transaction(s)\n", len(result.Transactions))
	printBalance("Opening", result.Balances.Opening)
	printBalance("Closing", result.Balances.Closing)
	for _, w := range result.Warnings {
		fmt.Printf("  Warning: %s\n", w)
	}

	outPath := outputPath
	if outPath == "" {
		outPath = strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + ".csv"
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()
	if err := writer.WriteCSV(f, result.Transactions); err != nil {
		return fmt.Errorf("CSV write failed: %w", err)
	}

	fmt.Printf("  Output: %s\n", outPath)
	fmt.Println("  Done.")
	return nil
}

func printBalance(name string, v float64) {
	if v == 0 {
		fmt.Printf("  %s balance: not found\n", name)
		return
	}
	fmt.Printf("  %s balance: %.2f\n", name, v)
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}
