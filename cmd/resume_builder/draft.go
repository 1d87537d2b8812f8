package main

import (
	"fmt"

	"github.com/jonathan/resume-builder/internal/parsing"
	"github.com/jonathan/resume-builder/internal/storage"
	"github.com/spf13/cobra"
)

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Manage the locally saved draft",
	Long:  "Saves, loads and clears the resume draft kept in the storage directory.",
}

var draftSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Validate a resume and save it as the draft",
	RunE:  runDraftSave,
}

var draftLoadCmd = &cobra.Command{
	Use:   "load",
	Short: "Print the saved draft",
	RunE:  runDraftLoad,
}

var draftClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the saved draft",
	RunE:  runDraftClear,
}

var (
	draftInput  string
	draftOutput string
)

func init() {
	draftSaveCmd.Flags().StringVarP(&draftInput, "in", "i", "", "Path to resume JSON file, or - for stdin (required)")
	draftLoadCmd.Flags().StringVarP(&draftOutput, "out", "o", "", "Output file (default stdout)")

	if err := draftSaveCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	draftCmd.AddCommand(draftSaveCmd, draftLoadCmd, draftClearCmd)
	rootCmd.AddCommand(draftCmd)
}

func runDraftSave(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}

	doc, err := readDocument(draftInput, cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("invalid resume: %s", describeParseError(err))
	}
	if err := storage.SaveDocument(store, storage.KeyDraft, doc); err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Saved draft for %s\n", doc.PersonalInfo.FullName)
	return err
}

func runDraftLoad(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}

	doc, ok, err := storage.LoadDocument(store, storage.KeyDraft)
	if err != nil {
		return fmt.Errorf("saved draft is unreadable: %s", describeParseError(err))
	}
	if !ok {
		return fmt.Errorf("no draft saved")
	}

	data, err := parsing.Encode(doc)
	if err != nil {
		return err
	}
	return writeOutput(draftOutput, append(data, '\n'), cmd.OutOrStdout())
}

func runDraftClear(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}

	if err := store.Remove(storage.KeyDraft); err != nil {
		return fmt.Errorf("failed to clear draft: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), "Draft cleared")
	return err
}
