package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/jonathan/resume-builder/internal/editor"
	"github.com/jonathan/resume-builder/internal/observability"
	"github.com/jonathan/resume-builder/internal/parsing"
	"github.com/jonathan/resume-builder/internal/types"
	"github.com/spf13/cobra"
)

var improveCmd = &cobra.Command{
	Use:   "improve",
	Short: "Improve resume text with AI",
	Long: "Sends text to the field improvement service. With --text, prints the improved text. " +
		"With --in and one or more --field references (summary, experience[<id>].description, ...), " +
		"improves those fields of the document concurrently and writes the updated document.",
	RunE: runImprove,
}

var (
	improveText   string
	improveInput  string
	improveOutput string
	improveFields []string
	improveJSON   bool
)

func init() {
	improveCmd.Flags().StringVarP(&improveText, "text", "t", "", "Text to improve")
	improveCmd.Flags().StringVarP(&improveInput, "in", "i", "", "Path to resume JSON file, or - for stdin")
	improveCmd.Flags().StringArrayVar(&improveFields, "field", nil, "Field to improve; with --text, the field name sent as context")
	improveCmd.Flags().StringVarP(&improveOutput, "out", "o", "", "Output file (default stdout)")
	improveCmd.Flags().BoolVar(&improveJSON, "json", false, "Print the raw response as JSON")

	improveCmd.MarkFlagsMutuallyExclusive("text", "in")
	improveCmd.MarkFlagsOneRequired("text", "in")

	rootCmd.AddCommand(improveCmd)
}

func runImprove(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	improver, closeImprover, err := newImprover(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer closeImprover()

	if improveInput == "" {
		field := ""
		if len(improveFields) > 0 {
			field = improveFields[0]
		}
		req := types.ImproveRequest{Text: improveText, Field: field}
		if err := req.Validate(); err != nil {
			return fmt.Errorf("nothing to improve: --text is empty")
		}

		resp, err := improver.Improve(cmd.Context(), req)
		if err != nil {
			return err
		}
		return printImprovement(cmd, field, resp)
	}

	if len(improveFields) == 0 {
		return fmt.Errorf("--field is required with --in")
	}
	refs := make([]editor.FieldRef, 0, len(improveFields))
	for _, f := range improveFields {
		ref, err := editor.ParseFieldRef(f)
		if err != nil {
			return err
		}
		refs = append(refs, ref)
	}

	doc, err := readDocument(improveInput, cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("invalid resume: %s", describeParseError(err))
	}

	ed := editor.New(doc, improver)
	defer ed.Close()

	results, err := ed.ImproveFields(cmd.Context(), refs)
	if verbose {
		printer := observability.NewPrinter(os.Stderr)
		for _, ref := range refs {
			printer.PrintImprovement(ref.String(), results[ref])
		}
	}
	if err != nil {
		if len(results) == 0 {
			return fmt.Errorf("improvement failed: %w", err)
		}
		// Keep whatever succeeded
		fmt.Fprintf(os.Stderr, "Warning: %d of %d field(s) failed: %v\n", len(refs)-len(results), len(refs), err)
	}

	data, err := parsing.Encode(ed.Document())
	if err != nil {
		return err
	}
	return writeOutput(improveOutput, append(data, '\n'), cmd.OutOrStdout())
}

func printImprovement(cmd *cobra.Command, field string, resp *types.ImproveResponse) error {
	if resp == nil {
		return errors.New("improvement service returned no response")
	}
	if improveJSON {
		data, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return err
		}
		return writeOutput(improveOutput, append(data, '\n'), cmd.OutOrStdout())
	}
	if verbose {
		observability.NewPrinter(os.Stderr).PrintImprovement(field, resp)
	}
	return writeOutput(improveOutput, []byte(resp.Text+"\n"), cmd.OutOrStdout())
}
