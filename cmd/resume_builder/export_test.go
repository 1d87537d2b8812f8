package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jonathan/resume-builder/internal/config"
	"github.com/jonathan/resume-builder/internal/export"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunExport_PrintDocument(t *testing.T) {
	cmd, _ := testCommand(t)
	exportInput = writeFile(t, "resume.json", janeJSON)
	exportFormat, exportPDF, exportScale = "print", false, export.DefaultScale
	exportOutput = filepath.Join(t.TempDir(), "out.html")

	require.NoError(t, runExport(cmd, nil))

	data, err := os.ReadFile(exportOutput)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<title>Jane Doe - Resume</title>")
	assert.Contains(t, string(data), "window.print()")
	assert.Contains(t, string(data), "Backend engineer")
}

func TestRunExport_DefaultFileName(t *testing.T) {
	cmd, _ := testCommand(t)
	exportInput = writeFile(t, "resume.json", janeJSON)
	exportFormat, exportPDF, exportOutput = "print", false, ""

	t.Chdir(t.TempDir())
	require.NoError(t, runExport(cmd, nil))

	_, err := os.Stat("Jane_Doe.html")
	assert.NoError(t, err)
}

func TestNewExporter(t *testing.T) {
	cfg := config.Config{}

	exporter, err := newExporter(cfg, "print", false, 2)
	require.NoError(t, err)
	assert.Nil(t, exporter.(*export.PrintExporter).Printer)

	exporter, err = newExporter(cfg, "print", true, 2)
	require.NoError(t, err)
	assert.NotNil(t, exporter.(*export.PrintExporter).Printer)

	exporter, err = newExporter(cfg, "pdf", false, 3)
	require.NoError(t, err)
	assert.Equal(t, 3.0, exporter.(*export.PDFExporter).Scale)

	_, err = newExporter(cfg, "docx", false, 2)
	assert.Error(t, err)
}
