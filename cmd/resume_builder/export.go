package main

import (
	"fmt"
	"os"

	"github.com/jonathan/resume-builder/internal/config"
	"github.com/jonathan/resume-builder/internal/export"
	"github.com/jonathan/resume-builder/internal/rendering"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the resume as a print document or PDF",
	Long: "Renders the resume and exports it. --format print writes the A4 print document " +
		"(or, with --pdf, prints it to PDF through Chrome); --format pdf rasterizes the sheet " +
		"in headless Chrome and paginates it onto A4 pages.",
	RunE: runExport,
}

var (
	exportInput  string
	exportFormat string
	exportOutput string
	exportPDF    bool
	exportScale  float64
)

func init() {
	exportCmd.Flags().StringVarP(&exportInput, "in", "i", "", "Path to resume JSON file, or - for stdin (required)")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "pdf", "Export format: pdf or print")
	exportCmd.Flags().StringVarP(&exportOutput, "out", "o", "", "Output file (default derived from the full name)")
	exportCmd.Flags().BoolVar(&exportPDF, "pdf", false, "With --format print, print the document to PDF through Chrome")
	exportCmd.Flags().Float64Var(&exportScale, "scale", export.DefaultScale, "Device pixel ratio for rasterizing")

	if err := exportCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	rootCmd.AddCommand(exportCmd)
}

// newExporter builds the exporter for format. Chrome is only started by exporters that need it.
func newExporter(cfg config.Config, format string, printPDF bool, scale float64) (export.Exporter, error) {
	switch format {
	case "print":
		if printPDF {
			return &export.PrintExporter{Printer: export.NewChrome(cfg.ChromePath)}, nil
		}
		return &export.PrintExporter{}, nil
	case "pdf":
		return &export.PDFExporter{Rasterizer: export.NewChrome(cfg.ChromePath), Scale: scale}, nil
	default:
		return nil, fmt.Errorf("unknown format %q: use pdf or print", format)
	}
}

func runExport(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	doc, err := readDocument(exportInput, cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("invalid resume: %s", describeParseError(err))
	}

	exporter, err := newExporter(cfg, exportFormat, exportPDF, exportScale)
	if err != nil {
		return err
	}

	page, err := rendering.Page(rendering.Render(doc))
	if err != nil {
		return fmt.Errorf("failed to render resume: %w", err)
	}

	artifact, err := exporter.Export(cmd.Context(), export.Snapshot{HTML: page, FullName: doc.PersonalInfo.FullName})
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	out := exportOutput
	if out == "" {
		out = artifact.FileName
	}
	if err := writeOutput(out, artifact.Data, cmd.OutOrStdout()); err != nil {
		return err
	}

	if out != "-" {
		summary := fmt.Sprintf("Wrote %s (%d bytes", out, len(artifact.Data))
		if artifact.Pages > 0 {
			summary += fmt.Sprintf(", %d page(s)", artifact.Pages)
		}
		fmt.Fprintln(os.Stderr, summary+")")
	}
	return nil
}
