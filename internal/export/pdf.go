package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"log"
	"math"

	"github.com/go-pdf/fpdf"
)

// A4 page size in millimetres.
const (
	PageWidthMM  = 210.0
	PageHeightMM = 297.0
)

// DefaultScale is the minimum device pixel ratio used when rasterizing.
const DefaultScale = 2.0

// Rasterizer renders the node matching selector in an HTML document to a bitmap.
type Rasterizer interface {
	Rasterize(ctx context.Context, html, selector string, scale float64) (image.Image, error)
}

// PDFExporter rasterizes the sheet and paginates the bitmap onto A4 pages.
type PDFExporter struct {
	Rasterizer Rasterizer
	Scale      float64
	Selector   string
}

// Export implements Exporter.
func (e *PDFExporter) Export(ctx context.Context, snap Snapshot) (*Artifact, error) {
	if e.Rasterizer == nil {
		return nil, &RenderingError{Stage: "rasterize", Message: "no rasterizer configured"}
	}

	body, err := Prepare(snap, e.Selector)
	if err != nil {
		return nil, err
	}
	doc, err := PrintDocument(body, snap.FullName, false)
	if err != nil {
		return nil, err
	}

	selector := e.Selector
	if selector == "" {
		selector = DefaultSelector
	}
	bitmap, err := e.Rasterizer.Rasterize(ctx, doc, selector, e.scale())
	if err != nil {
		log.Printf("[export] rasterize failed: %v", err)
		return nil, asRenderingError("rasterize", "failed to rasterize snapshot", err)
	}

	pages, err := Paginate(bitmap)
	if err != nil {
		return nil, err
	}
	data, err := WritePDF(pages)
	if err != nil {
		return nil, err
	}

	log.Printf("[export] wrote %d page(s), %d bytes", len(pages), len(data))
	return &Artifact{
		ContentType: ContentTypePDF,
		FileName:    FileName(snap.FullName),
		Data:        data,
		Pages:       len(pages),
	}, nil
}

func (e *PDFExporter) scale() float64 {
	if e.Scale < DefaultScale {
		return DefaultScale
	}
	return e.Scale
}

// PageHeightPixels is the bitmap height of one A4 page for a bitmap of the given width.
func PageHeightPixels(width int) int {
	return int(math.Round(float64(width) * PageHeightMM / PageWidthMM))
}

// Paginate cuts a bitmap into A4-proportioned slices at fixed page-height
// offsets. The last slice keeps whatever height remains.
func Paginate(bitmap image.Image) ([]image.Image, error) {
	if bitmap == nil {
		return nil, &RenderingError{Stage: "paginate", Message: "bitmap is nil"}
	}
	bounds := bitmap.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, &RenderingError{Stage: "paginate", Message: fmt.Sprintf("bitmap has no area (%dx%d)", bounds.Dx(), bounds.Dy())}
	}

	pageHeight := PageHeightPixels(bounds.Dx())
	if pageHeight <= 0 {
		pageHeight = 1
	}

	pages := make([]image.Image, 0, bounds.Dy()/pageHeight+1)
	for top := bounds.Min.Y; top < bounds.Max.Y; top += pageHeight {
		bottom := min(top+pageHeight, bounds.Max.Y)
		pages = append(pages, crop(bitmap, image.Rect(bounds.Min.X, top, bounds.Max.X, bottom)))
	}
	return pages, nil
}

func crop(src image.Image, rect image.Rectangle) image.Image {
	if sub, ok := src.(interface {
		SubImage(r image.Rectangle) image.Image
	}); ok {
		return sub.SubImage(rect)
	}
	dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(dst, dst.Bounds(), src, rect.Min, draw.Src)
	return dst
}

// WritePDF places each page image at full A4 width on its own page.
func WritePDF(pages []image.Image) ([]byte, error) {
	if len(pages) == 0 {
		return nil, &RenderingError{Stage: "pdf", Message: "no pages to write"}
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	options := fpdf.ImageOptions{ImageType: "PNG"}

	for i, page := range pages {
		var buf bytes.Buffer
		if err := png.Encode(&buf, page); err != nil {
			return nil, &RenderingError{Stage: "pdf", Message: fmt.Sprintf("failed to encode page %d", i+1), Cause: err}
		}

		name := fmt.Sprintf("page-%d", i+1)
		pdf.AddPage()
		pdf.RegisterImageOptionsReader(name, options, &buf)

		bounds := page.Bounds()
		height := PageWidthMM * float64(bounds.Dy()) / float64(bounds.Dx())
		pdf.ImageOptions(name, 0, 0, PageWidthMM, height, false, options, 0, "")
	}

	if err := pdf.Error(); err != nil {
		return nil, &RenderingError{Stage: "pdf", Message: "failed to build PDF", Cause: err}
	}

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, &RenderingError{Stage: "pdf", Message: "failed to write PDF", Cause: err}
	}
	return out.Bytes(), nil
}
