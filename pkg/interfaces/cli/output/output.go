package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Config holds configuration for output generation
type Config struct {
	Format    string
	OutputDir string
	Verbose   bool
	// Out receives console output; nil means stdout
	Out io.Writer
}

func (c Config) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

// Report is a command result that can be rendered in every supported format
type Report interface {
	// Name is the base name of files written to the output directory
	Name() string
	WriteText(w io.Writer) error
	// CSVRows returns the header followed by the data rows
	CSVRows() [][]string
}

// Generate creates output in the specified format
func Generate(report Report, config Config) error {
	switch config.Format {
	case "", "text":
		return generateTextOutput(report, config)
	case "json":
		return generateJSONOutput(report, config)
	case "csv":
		return generateCSVOutput(report, config)
	case "xlsx":
		return generateXLSXOutput(report, config)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

func generateTextOutput(report Report, config Config) error {
	if err := report.WriteText(config.out()); err != nil {
		return err
	}
	if config.OutputDir == "" {
		return nil
	}

	filename, err := outputFile(config, report.Name()+".txt")
	if err != nil {
		return err
	}
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filename, err)
	}
	defer file.Close()
	if err := report.WriteText(file); err != nil {
		return err
	}
	if config.Verbose {
		fmt.Fprintf(config.out(), "💾 Results saved to: %s\n", filename)
	}
	return nil
}

func generateJSONOutput(report Report, config Config) error {
	jsonData, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if config.OutputDir == "" {
		fmt.Fprintln(config.out(), string(jsonData))
		return nil
	}

	filename, err := outputFile(config, report.Name()+".json")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filename, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}
	if config.Verbose {
		fmt.Fprintf(config.out(), "💾 JSON results saved to: %s\n", filename)
	}
	return nil
}

// generateCSVOutput writes to stdout, or to <name>.csv when an output directory is set
func generateCSVOutput(report Report, config Config) error {
	w := config.out()
	var filename string
	if config.OutputDir != "" {
		var err error
		if filename, err = outputFile(config, report.Name()+".csv"); err != nil {
			return err
		}
		file, err := os.Create(filename)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", filename, err)
		}
		defer file.Close()
		w = file
	}

	writer := csv.NewWriter(w)
	if err := writer.WriteAll(report.CSVRows()); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}

	if filename != "" && config.Verbose {
		fmt.Fprintf(config.out(), "💾 CSV results saved to: %s\n", filename)
	}
	return nil
}

func outputFile(config Config, name string) (string, error) {
	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	return filepath.Join(config.OutputDir, name), nil
}
