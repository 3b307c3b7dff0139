package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tsawler/docflip/convert"
	cfgpkg "github.com/tsawler/docflip/internal/config"
)

var (
	// Global flags
	cfgFile       string
	debug         bool
	flagOutputDir string
	flagLogFormat string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "docflip",
	Short: "Convert DOCX documents to PDF and PDFs back to DOCX",
	Long: `docflip lays out DOCX documents onto PDF pages and rebuilds editable DOCX
files from PDFs or scanned page images, using the PDF text layer where one
exists and OCR where it does not.

Each conversion writes a new file and prints a JSON result record.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.docflip/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagOutputDir, "output-dir", "", "directory for output files (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "log format, text or json (overrides config)")
}

// loadConfig resolves the effective configuration: flags over environment
// over the config file over defaults.
func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	f := cmd.Root().PersistentFlags()
	if f.Changed("output-dir") && flagOutputDir != "" {
		c.OutputDir = flagOutputDir
	}
	if f.Changed("log-format") {
		if err := c.Set("log_format", flagLogFormat); err != nil {
			return err
		}
	}
	if debug {
		c.LogLevel = "debug"
	}
	cfg = c
	return nil
}

// logger builds the logger for the current command from the configuration.
func logger(cmd *cobra.Command) (logrus.FieldLogger, error) {
	l, err := cfg.Logger()
	if err != nil {
		return nil, err
	}
	l.SetOutput(cmd.ErrOrStderr())
	return l, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printError reports a failure. Conversion failures are printed as a JSON
// record with their stable code.
func printError(w io.Writer, err error) {
	var ce *convert.Error
	if errors.As(err, &ce) {
		_ = printJSON(w, struct {
			Code    convert.Code `json:"code"`
			Message string       `json:"message"`
		}{ce.Code, ce.Message})
		return
	}
	fmt.Fprintln(w, "✗ Error:", err)
}
