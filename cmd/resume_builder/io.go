package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jonathan/resume-builder/internal/parsing"
	"github.com/jonathan/resume-builder/internal/types"
)

// readInput reads path, or stdin when path is "-".
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("input file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}
	return data, nil
}

// readDocument reads and validates a resume document.
func readDocument(path string, stdin io.Reader) (*types.Document, error) {
	data, err := readInput(path, stdin)
	if err != nil {
		return nil, err
	}
	return parsing.ParseBytes(data)
}

// writeOutput writes data to path, or to stdout when path is empty or "-".
func writeOutput(path string, data []byte, stdout io.Writer) error {
	if path == "" || path == "-" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// describeParseError renders a rejected document with its kind and field problems.
func describeParseError(err error) string {
	var invalid *parsing.ValidationError
	if !errors.As(err, &invalid) {
		return err.Error()
	}
	msg := fmt.Sprintf("%s: %s", invalid.Kind, invalid.Message)
	if invalid.Field != "" {
		msg = fmt.Sprintf("%s (%s): %s", invalid.Kind, invalid.Field, invalid.Message)
	}
	for _, p := range invalid.Problems {
		msg += fmt.Sprintf("\n  - %s: %s", p.Field, p.Message)
	}
	return msg
}
