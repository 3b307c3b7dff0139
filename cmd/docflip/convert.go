package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tsawler/docflip"
	"github.com/tsawler/docflip/format"
	"github.com/tsawler/docflip/ocr"
)

var (
	flagPageSize      string
	flagMode          string
	flagLanguage      string
	flagStripRepeated bool
	flagNoOCR         bool
)

var toPDFCmd = &cobra.Command{
	Use:   "topdf <src>",
	Short: "Convert a DOCX document to PDF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runToPDF(cmd, args[0])
	},
}

var toDOCXCmd = &cobra.Command{
	Use:   "todocx <src>",
	Short: "Convert a PDF or a scanned page image to DOCX",
	Long: `Rebuild an editable DOCX from a PDF or an image.

Modes:
  text           use the PDF text layer only
  textAndImages  also embed an image of every page
  auto           fall back to OCR for pages without a text layer (default;
                 "ocrFallback" is accepted as a synonym)`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runToDOCX(cmd, args[0])
	},
}

var convertCmd = &cobra.Command{
	Use:   "convert <src>",
	Short: "Convert in the direction implied by the source format",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := docflip.Open(args[0]).Format()
		if err != nil {
			return err
		}
		switch f {
		case format.DOCX:
			return runToPDF(cmd, args[0])
		case format.PDF, format.Image:
			return runToDOCX(cmd, args[0])
		default:
			return fmt.Errorf("cannot convert %s: unrecognized format", args[0])
		}
	},
}

func init() {
	for _, c := range []*cobra.Command{toPDFCmd, convertCmd} {
		c.Flags().StringVar(&flagPageSize, "page-size", "", "page size: A4, LETTER or LEGAL (overrides config)")
	}
	for _, c := range []*cobra.Command{toDOCXCmd, convertCmd} {
		c.Flags().StringVar(&flagMode, "mode", "", "extraction mode: text, textAndImages or auto (overrides config)")
		c.Flags().StringVar(&flagLanguage, "language", "", `OCR language hint, "auto" or codes such as eng+fra (overrides config)`)
		c.Flags().BoolVar(&flagStripRepeated, "strip-repeated", false, "drop running headers and footers")
		c.Flags().BoolVar(&flagNoOCR, "no-ocr", false, "never run OCR")
	}
	rootCmd.AddCommand(toPDFCmd, toDOCXCmd, convertCmd)
}

// converter applies the effective configuration to a source.
func converter(src string, log logrus.FieldLogger) *docflip.Converter {
	conv := docflip.Open(src).
		OutputDir(cfg.OutputDir).
		Margin(cfg.MarginPt).
		Logger(log)

	pageSize := cfg.PageSize
	if flagPageSize != "" {
		pageSize = flagPageSize
	}
	mode := cfg.Mode
	if flagMode != "" {
		mode = flagMode
	}
	language := cfg.Language
	if flagLanguage != "" {
		language = flagLanguage
	}
	conv = conv.PageSize(pageSize).Mode(mode).Language(language)
	if cfg.StripRepeatedLines || flagStripRepeated {
		conv = conv.StripRepeatedLines()
	}
	return conv
}

func runToPDF(cmd *cobra.Command, src string) error {
	log, err := logger(cmd)
	if err != nil {
		return err
	}

	res, err := converter(src, log).ToPDF(cmd.Context())
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), res)
}

func runToDOCX(cmd *cobra.Command, src string) error {
	log, err := logger(cmd)
	if err != nil {
		return err
	}
	conv := converter(src, log)

	if !flagNoOCR {
		client, err := ocr.New()
		if err != nil {
			log.WithError(err).Warn("OCR unavailable; pages without a text layer will be empty")
		} else {
			defer client.Close()
			conv = conv.Recognizer(client)
		}
	}

	// OCR may not return on its own; bound the whole conversion.
	ctx := cmd.Context()
	if timeout := cfg.OCRTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	res, err := conv.ToDOCX(ctx)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), res)
}
