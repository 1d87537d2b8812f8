package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// DefaultChromeTimeout bounds one headless Chrome session.
const DefaultChromeTimeout = 60 * time.Second

// A4 page width in CSS pixels at 96 DPI.
const (
	a4WidthCSS  = 794
	a4HeightCSS = 1123
)

// Chrome drives a headless Chrome instance. It implements both Rasterizer and Printer.
type Chrome struct {
	ExecPath string
	Timeout  time.Duration
}

// NewChrome returns a Chrome driver. An empty execPath lets chromedp find the browser.
func NewChrome(execPath string) *Chrome {
	return &Chrome{ExecPath: execPath, Timeout: DefaultChromeTimeout}
}

// Rasterize takes a screenshot of selector at the given device scale factor.
func (c *Chrome) Rasterize(ctx context.Context, html, selector string, scale float64) (image.Image, error) {
	var shot []byte
	err := c.run(ctx, html,
		chromedp.EmulateViewport(a4WidthCSS, a4HeightCSS, chromedp.EmulateScale(scale)),
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Screenshot(selector, &shot, chromedp.NodeVisible, chromedp.ByQuery),
	)
	if err != nil {
		return nil, &RenderingError{Stage: "rasterize", Message: "chrome screenshot failed", Cause: err}
	}

	img, err := png.Decode(bytes.NewReader(shot))
	if err != nil {
		return nil, &RenderingError{Stage: "rasterize", Message: "failed to decode screenshot", Cause: err}
	}
	return img, nil
}

// PrintToPDF prints the document through Chrome's print pipeline on A4 paper.
func (c *Chrome) PrintToPDF(ctx context.Context, html string) ([]byte, error) {
	var pdf []byte
	err := c.run(ctx, html,
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			// A4: 210mm x 297mm -> inches: 8.27 x 11.69
			pdf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				WithMarginTop(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithMarginRight(0).
				WithPreferCSSPageSize(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, &RenderingError{Stage: "print", Message: "chrome print failed", Cause: err}
	}
	return pdf, nil
}

// run loads html from a temporary file and executes actions against it.
func (c *Chrome) run(ctx context.Context, html string, actions ...chromedp.Action) error {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if c.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(c.ExecPath))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultChromeTimeout
	}
	browserCtx, cancel = context.WithTimeout(browserCtx, timeout)
	defer cancel()

	tmpDir, err := os.MkdirTemp("", "resume-export-")
	if err != nil {
		return fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	htmlPath := filepath.Join(tmpDir, "index.html")
	if err := os.WriteFile(htmlPath, []byte(html), 0o600); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	steps := append([]chromedp.Action{chromedp.Navigate("file://" + htmlPath)}, actions...)
	return chromedp.Run(browserCtx, steps...)
}
