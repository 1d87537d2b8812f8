// Package export turns a rendered resume snapshot into a printable document or a PDF file.
package export

import (
	"regexp"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"

	"github.com/jonathan/resume-builder/internal/rendering"
)

// DefaultSelector picks the rendered sheet out of a page snapshot.
const DefaultSelector = "#" + rendering.SheetID

// Snapshot is the markup that was on screen when the export was requested.
type Snapshot struct {
	HTML     string `json:"html"`
	FullName string `json:"full_name"`
}

var nodeID = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

var (
	snapshotPolicyOnce sync.Once
	snapshotPolicy     *bluemonday.Policy
)

// ExtractNode returns the outer HTML of the first node matching selector.
// An empty selector means DefaultSelector.
func ExtractNode(html, selector string) (string, error) {
	if selector == "" {
		selector = DefaultSelector
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", &RenderingError{Stage: "capture", Message: "failed to parse snapshot", Cause: err}
	}

	node := doc.Find(selector).First()
	if node.Length() == 0 {
		return "", &RenderingError{Stage: "capture", Message: "snapshot has no node matching " + selector}
	}

	outer, err := goquery.OuterHtml(node)
	if err != nil {
		return "", &RenderingError{Stage: "capture", Message: "failed to serialize node", Cause: err}
	}
	return outer, nil
}

// Sanitize strips scripts, event handlers and unsafe URLs from snapshot markup.
func Sanitize(html string) string {
	return strings.TrimSpace(sanitizer().Sanitize(html))
}

// Prepare extracts the sheet node from the snapshot and sanitizes it.
func Prepare(snap Snapshot, selector string) (string, error) {
	if strings.TrimSpace(snap.HTML) == "" {
		return "", &RenderingError{Stage: "capture", Message: "snapshot is empty"}
	}
	node, err := ExtractNode(snap.HTML, selector)
	if err != nil {
		return "", err
	}
	cleaned := Sanitize(node)
	if cleaned == "" {
		return "", &RenderingError{Stage: "capture", Message: "snapshot has no printable content"}
	}
	return cleaned, nil
}

func sanitizer() *bluemonday.Policy {
	snapshotPolicyOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		policy.AllowElements("main", "aside", "section", "header", "div", "span", "h1", "h2", "h3", "ul", "li", "p", "a", "img")
		policy.AllowAttrs("class").Globally()
		policy.AllowAttrs("id").Matching(nodeID).Globally()
		policy.AllowAttrs("alt").OnElements("img")
		policy.AllowDataURIImages()
		snapshotPolicy = policy
	})
	return snapshotPolicy
}
