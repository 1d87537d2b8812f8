package export

import (
	"context"
	"log"
)

// Content types of exported artifacts.
const (
	ContentTypeHTML = "text/html; charset=utf-8"
	ContentTypePDF  = "application/pdf"
)

// Artifact is an exported file.
type Artifact struct {
	ContentType string
	FileName    string
	Data        []byte
	Pages       int
}

// Exporter converts a snapshot into an artifact.
type Exporter interface {
	Export(ctx context.Context, snap Snapshot) (*Artifact, error)
}

// Printer sends an HTML document through a print pipeline and returns the PDF it produced.
type Printer interface {
	PrintToPDF(ctx context.Context, html string) ([]byte, error)
}

// PrintExporter injects the snapshot into an A4 print document.
//
// Without a Printer the artifact is the HTML document itself, which opens the
// print dialog when loaded. With a Printer the document is printed to PDF.
type PrintExporter struct {
	Printer  Printer
	Selector string
}

// Export implements Exporter.
func (e *PrintExporter) Export(ctx context.Context, snap Snapshot) (*Artifact, error) {
	body, err := Prepare(snap, e.Selector)
	if err != nil {
		return nil, err
	}

	doc, err := PrintDocument(body, snap.FullName, e.Printer == nil)
	if err != nil {
		return nil, err
	}

	if e.Printer == nil {
		return &Artifact{
			ContentType: ContentTypeHTML,
			FileName:    htmlFileName(snap.FullName),
			Data:        []byte(doc),
		}, nil
	}

	data, err := e.Printer.PrintToPDF(ctx, doc)
	if err != nil {
		log.Printf("[export] print pipeline failed: %v", err)
		return nil, asRenderingError("print", "print pipeline failed", err)
	}
	if len(data) == 0 {
		return nil, &RenderingError{Stage: "print", Message: "print pipeline produced no output"}
	}
	return &Artifact{
		ContentType: ContentTypePDF,
		FileName:    FileName(snap.FullName),
		Data:        data,
	}, nil
}

func asRenderingError(stage, message string, err error) error {
	if re, ok := err.(*RenderingError); ok {
		return re
	}
	return &RenderingError{Stage: stage, Message: message, Cause: err}
}
