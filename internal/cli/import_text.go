package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/shelfspace/bookshelf/internal/config"
	"github.com/shelfspace/bookshelf/internal/entrypoint"
	"github.com/shelfspace/bookshelf/internal/importer"
)

// ImportTextCommand runs the text-import pipeline over a file (or stdin)
// and prints the resulting preview as JSON, without touching a database.
type ImportTextCommand struct {
	FilePath string
	Timeout  time.Duration
	Verbose  bool
}

func NewImportTextCommand() *ImportTextCommand {
	return &ImportTextCommand{}
}

func (cmd *ImportTextCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("import-text", flag.ExitOnError)

	fs.StringVar(&cmd.FilePath, "file", "", "Path to a text file with pasted links (reads stdin if omitted)")
	fs.DurationVar(&cmd.Timeout, "timeout", 2*time.Minute, "Overall timeout for resolution and metadata fetching")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Print a per-item summary to stderr alongside the JSON")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s import-text [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Extract URLs from pasted text, resolve shorteners, fetch link metadata\n")
		fmt.Fprintf(os.Stderr, "and print the import preview as JSON to stdout.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Preview links from a file:\n")
		fmt.Fprintf(os.Stderr, "  %s import-text -file links.txt\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  # Preview links from the clipboard via stdin:\n")
		fmt.Fprintf(os.Stderr, "  pbpaste | %s import-text\n", os.Args[0])
	}

	return fs.Parse(args)
}

func (cmd *ImportTextCommand) Run() error {
	var reader io.Reader = os.Stdin
	if cmd.FilePath != "" {
		file, err := os.Open(cmd.FilePath)
		if err != nil {
			return fmt.Errorf("failed to open input file: %w", err)
		}
		defer file.Close()
		reader = file
	}

	text, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	cfg := config.NewConfig()
	resolver := entrypoint.BuildResolver(cfg)
	enricher := entrypoint.BuildEnricher(cfg, cfg.Import.MetadataBatchSize)
	pipeline := importer.NewPipeline(resolver, enricher, discardSnapshots{}, cfg.Import.MaxItems)

	ctx, cancel := context.WithTimeout(context.Background(), cmd.Timeout)
	defer cancel()

	result, err := pipeline.Run(ctx, string(text))
	if err != nil {
		return err
	}

	if cmd.Verbose {
		fmt.Fprintf(os.Stderr, "Found %d items (%d enriched, %d failed)\n",
			len(result.Items), result.Summary.Succeeded, result.Summary.Failed)
		if result.Summary.QuotaExceeded {
			fmt.Fprintln(os.Stderr, "Link preview quota exhausted part way through the run")
		}
		for _, item := range result.Items {
			status := "ok"
			if item.Error != "" {
				status = item.Error
			}
			fmt.Fprintf(os.Stderr, "  %-60s %s\n", item.DisplayTitle(), status)
		}
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// discardSnapshots satisfies the pipeline's snapshot dependency; a one-shot
// CLI run has nothing to resume.
type discardSnapshots struct{}

func (discardSnapshots) Save(string, *importer.Snapshot) error   { return nil }
func (discardSnapshots) Load(string) (*importer.Snapshot, error) { return nil, nil }
func (discardSnapshots) Delete(string) error                     { return nil }
