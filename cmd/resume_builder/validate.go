package main

import (
	"fmt"

	"github.com/jonathan/resume-builder/internal/observability"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate resume JSON",
	Long:  "Checks JSON syntax, the required full name and the field types of a resume document.",
	RunE:  runValidate,
}

var (
	validateInput string
)

func init() {
	validateCmd.Flags().StringVarP(&validateInput, "in", "i", "", "Path to resume JSON file, or - for stdin (required)")

	if err := validateCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	doc, err := readDocument(validateInput, cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("invalid resume: %s", describeParseError(err))
	}

	if verbose {
		observability.NewPrinter(cmd.OutOrStdout()).PrintDocument(doc)
		return nil
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "✓ valid resume for %s\n", doc.PersonalInfo.FullName)
	return err
}
