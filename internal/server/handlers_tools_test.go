package server

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/jonathan/resume-builder/internal/export"
	"github.com/jonathan/resume-builder/internal/improve"
	"github.com/jonathan/resume-builder/internal/parsing"
	"github.com/jonathan/resume-builder/internal/rendering"
	"github.com/jonathan/resume-builder/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubImprover struct {
	resp *types.ImproveResponse
	err  error
	got  types.ImproveRequest
}

func (s *stubImprover) Improve(_ context.Context, req types.ImproveRequest) (*types.ImproveResponse, error) {
	s.got = req
	return s.resp, s.err
}

type stubPrinter struct{ html string }

func (p *stubPrinter) PrintToPDF(_ context.Context, html string) ([]byte, error) {
	p.html = html
	return []byte("%PDF-1.4 printed"), nil
}

// stubRasterizer returns a white bitmap tall enough for two A4 pages.
type stubRasterizer struct{ err error }

func (r *stubRasterizer) Rasterize(_ context.Context, _, _ string, _ float64) (image.Image, error) {
	if r.err != nil {
		return nil, r.err
	}
	width := 400
	return image.NewRGBA(image.Rect(0, 0, width, export.PageHeightPixels(width)+10)), nil
}

func sheetSnapshot(t *testing.T) string {
	t.Helper()
	doc, err := parsing.Parse(janeDocument)
	require.NoError(t, err)
	html, err := rendering.HTML(rendering.Render(doc))
	require.NoError(t, err)
	return "<html><body><nav>Editor</nav>" + html + "</body></html>"
}

func TestParse(t *testing.T) {
	ts := newTestServer(t, Deps{})

	rec := ts.do(t, http.MethodPost, "/resumes/parse", "", janeDocument)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Document *types.Document `json:"document"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Jane Doe", resp.Document.PersonalInfo.FullName)
	assert.NotNil(t, resp.Document.Projects)

	rec = ts.do(t, http.MethodPost, "/resumes/parse", "", "{ nope")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var failure documentErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &failure))
	assert.Equal(t, parsing.KindMalformedJSON, failure.Kind)

	rec = ts.do(t, http.MethodPost, "/resumes/parse", "", `{"personalInfo":{"fullName":"Jane"},"skills":[{"category":1}]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &failure))
	assert.Equal(t, parsing.KindSchemaMismatch, failure.Kind)
	assert.NotEmpty(t, failure.Problems)
}

func TestPreview(t *testing.T) {
	ts := newTestServer(t, Deps{})

	rec := ts.do(t, http.MethodPost, "/preview", "", janeDocument)
	require.Equal(t, http.StatusOK, rec.Code)
	var sheet rendering.Sheet
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sheet))
	assert.Equal(t, "Jane Doe", sheet.Header.Name)
	assert.Equal(t, []string{types.SectionSummary, types.SectionExperience}, sheet.SectionKeys())

	query := url.Values{parsing.QueryParam: {janeDocument}, "format": {"html"}}
	rec = ts.do(t, http.MethodGet, "/preview?"+query.Encode(), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<!DOCTYPE html>")
	assert.Contains(t, rec.Body.String(), "Backend engineer")

	rec = ts.do(t, http.MethodGet, "/preview", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImprove(t *testing.T) {
	improver := &stubImprover{resp: &types.ImproveResponse{
		Text:     "Led the migration of billing to Go",
		Feedback: &types.Feedback{Missing: []string{"metrics"}, Improve: []string{}},
	}}
	ts := newTestServer(t, Deps{Improver: improver})

	rec := ts.do(t, http.MethodPost, "/improve", "", types.ImproveRequest{Text: "did billing stuff", Field: "description"})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp types.ImproveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Led the migration of billing to Go", resp.Text)
	assert.Equal(t, []string{"metrics"}, resp.Feedback.Missing)
	assert.Equal(t, "description", improver.got.Field)

	rec = ts.do(t, http.MethodPost, "/improve", "", `{"text":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImprove_Failures(t *testing.T) {
	rec := newTestServer(t, Deps{}).do(t, http.MethodPost, "/improve", "", `{"text":"x"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "field improvement is not configured", decodeError(t, rec))

	improver := &stubImprover{err: &improve.Error{Message: "improvement service returned 500", StatusCode: 500}}
	rec = newTestServer(t, Deps{Improver: improver}).do(t, http.MethodPost, "/improve", "", `{"text":"x"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, decodeError(t, rec), "improvement service returned 500")
}

func TestExportPrint(t *testing.T) {
	printer := &stubPrinter{}
	ts := newTestServer(t, Deps{PrintExporter: &export.PrintExporter{Printer: printer}})
	req := types.ExportRequest{HTML: sheetSnapshot(t), FullName: "Jane  Doe"}

	rec := ts.do(t, http.MethodPost, "/export/print", "", req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, export.ContentTypeHTML, rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Jane_Doe.html"`, rec.Header().Get("Content-Disposition"))
	assert.Contains(t, rec.Body.String(), "window.print()")
	assert.NotContains(t, rec.Body.String(), "Editor", "only the sheet node is exported")

	rec = ts.do(t, http.MethodPost, "/export/print?output=pdf", "", req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, export.ContentTypePDF, rec.Header().Get("Content-Type"))
	assert.Equal(t, "%PDF-1.4 printed", rec.Body.String())
	assert.Contains(t, printer.html, "Jane Doe")
}

func TestExportPDF(t *testing.T) {
	ts := newTestServer(t, Deps{PDFExporter: &export.PDFExporter{Rasterizer: &stubRasterizer{}}})

	rec := ts.do(t, http.MethodPost, "/export/pdf", "", types.ExportRequest{HTML: sheetSnapshot(t), FullName: "Jane Doe"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, export.ContentTypePDF, rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Jane_Doe.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "2", rec.Header().Get("X-Page-Count"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF-"))
}

func TestExport_Failures(t *testing.T) {
	failing := &export.PDFExporter{Rasterizer: &stubRasterizer{err: errors.New("chrome crashed")}}
	ts := newTestServer(t, Deps{PDFExporter: failing})

	tests := []struct {
		name   string
		path   string
		body   any
		status int
		errMsg string
	}{
		{"missing html", "/export/pdf", types.ExportRequest{FullName: "Jane"}, http.StatusBadRequest, "HTML"},
		{"no sheet in snapshot", "/export/print", types.ExportRequest{HTML: "<p>hello</p>"}, http.StatusInternalServerError, "capture"},
		{"rasterizer failure", "/export/pdf", types.ExportRequest{HTML: sheetSnapshot(t)}, http.StatusInternalServerError, "rasterize"},
		{"print pdf not configured", "/export/print?output=pdf", types.ExportRequest{HTML: sheetSnapshot(t)}, http.StatusServiceUnavailable, "not configured"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodPost, tt.path, "", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, decodeError(t, rec), tt.errMsg)
		})
	}
}
