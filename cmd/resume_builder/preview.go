package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/resume-builder/internal/observability"
	"github.com/jonathan/resume-builder/internal/parsing"
	"github.com/jonathan/resume-builder/internal/rendering"
	"github.com/spf13/cobra"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Render the resume preview",
	Long: "Renders a resume document as the two-column sheet, either as JSON or as a standalone HTML page. " +
		"With --url, prints the preview link that carries the document in its query string.",
	RunE: runPreview,
}

var (
	previewInput  string
	previewFormat string
	previewOutput string
	previewURL    string
)

func init() {
	previewCmd.Flags().StringVarP(&previewInput, "in", "i", "", "Path to resume JSON file, or - for stdin (required)")
	previewCmd.Flags().StringVarP(&previewFormat, "format", "f", "html", "Output format: html or json")
	previewCmd.Flags().StringVarP(&previewOutput, "out", "o", "", "Output file (default stdout)")
	previewCmd.Flags().StringVar(&previewURL, "url", "", "Server base URL; print a preview link instead of rendering")

	if err := previewCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, _ []string) error {
	doc, err := readDocument(previewInput, cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("invalid resume: %s", describeParseError(err))
	}

	if previewURL != "" {
		query, err := parsing.EncodeQuery(doc)
		if err != nil {
			return err
		}
		link := strings.TrimRight(previewURL, "/") + "/preview?" + query
		return writeOutput(previewOutput, []byte(link+"\n"), cmd.OutOrStdout())
	}

	sheet := rendering.Render(doc)
	if verbose {
		observability.NewPrinter(cmd.ErrOrStderr()).PrintSheet(sheet)
	}

	var out []byte
	switch previewFormat {
	case "html":
		page, err := rendering.Page(sheet)
		if err != nil {
			return fmt.Errorf("failed to render preview: %w", err)
		}
		out = []byte(page)
	case "json":
		out, err = json.MarshalIndent(sheet, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode sheet: %w", err)
		}
		out = append(out, '\n')
	default:
		return fmt.Errorf("unknown format %q: use html or json", previewFormat)
	}

	return writeOutput(previewOutput, out, cmd.OutOrStdout())
}
