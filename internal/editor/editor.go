// Package editor holds one resume document being edited, field by field,
// together with the per-field AI improvement state.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-builder/internal/improve"
	"github.com/jonathan/resume-builder/internal/rendering"
	"github.com/jonathan/resume-builder/internal/types"
)

var (
	// ErrInFlight is returned when the field already has an improvement running.
	ErrInFlight = errors.New("improvement already in flight for this field")
	// ErrClosed is returned by edits after Close. Improvement results that
	// arrive after Close are discarded with this error.
	ErrClosed = errors.New("editor is closed")
	// ErrNoImprover is returned by ImproveField when the editor has no improver.
	ErrNoImprover = errors.New("no improver configured")
)

// Editor owns a document. Every edit copies the document, changes the copy
// and swaps it in, so readers always hold a consistent value.
type Editor struct {
	mu       sync.Mutex
	doc      *types.Document
	closed   bool
	feedback map[improve.Key]*types.Feedback

	improver improve.Service
	tracker  *improve.Tracker
}

// New returns an editor for doc. A nil doc starts from an empty document.
func New(doc *types.Document, improver improve.Service) *Editor {
	if doc == nil {
		doc = types.NewDocument()
	} else {
		doc = doc.Clone()
		doc.ApplyDefaults()
	}
	return &Editor{
		doc:      doc,
		feedback: make(map[improve.Key]*types.Feedback),
		improver: improver,
		tracker:  improve.NewTracker(),
	}
}

// Document returns a copy of the current document.
func (e *Editor) Document() *types.Document {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.Clone()
}

// Preview renders the current document.
func (e *Editor) Preview() *rendering.Sheet {
	return rendering.Render(e.Document())
}

// Update applies fn to a copy of the document and makes the copy current.
func (e *Editor) Update(fn func(doc *types.Document)) error {
	return e.update(func(doc *types.Document) error {
		fn(doc)
		return nil
	})
}

// update is Update for edits that can fail; on error the document is unchanged.
// Items left without a unique id get a fresh one.
func (e *Editor) update(fn func(doc *types.Document) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	next := e.doc.Clone()
	if err := fn(next); err != nil {
		return err
	}
	next.EnsureItemIDs()
	e.doc = next
	return nil
}

// Field returns the current value of one field. "current" is reported as "true"/"false".
func (e *Editor) Field(ref FieldRef) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return getField(e.doc, ref)
}

// SetField replaces one field's value.
func (e *Editor) SetField(ref FieldRef, value string) error {
	return e.update(func(doc *types.Document) error {
		return setField(doc, ref, value)
	})
}

// AddItem appends an empty item to a list section and returns its id.
func (e *Editor) AddItem(section string) (string, error) {
	id := types.NewItemID()
	if err := e.update(func(doc *types.Document) error {
		return addItem(doc, section, id)
	}); err != nil {
		return "", err
	}
	return id, nil
}

// RemoveItem removes an item from a list section along with its feedback.
func (e *Editor) RemoveItem(section, id string) error {
	if err := e.update(func(doc *types.Document) error {
		return removeItem(doc, section, id)
	}); err != nil {
		return err
	}

	e.mu.Lock()
	for key := range e.feedback {
		if key.ItemID == id {
			delete(e.feedback, key)
		}
	}
	e.mu.Unlock()
	return nil
}

// SetSectionVisible sets a section's visibility flag.
func (e *Editor) SetSectionVisible(section string, visible bool) error {
	if section != types.SectionSummary && !slices.Contains(types.ListSections, section) {
		return fmt.Errorf("%w: %q", ErrUnknownSection, section)
	}
	return e.update(func(doc *types.Document) error {
		if doc.VisibleSections == nil {
			doc.VisibleSections = types.DefaultVisibleSections()
		}
		doc.VisibleSections[section] = visible
		return nil
	})
}

// ImproveField sends one field to the improver and writes the returned text
// back into that field only. A second call for the same field while the first
// is running fails with ErrInFlight. The field is no longer loading once this
// returns, whatever the outcome.
func (e *Editor) ImproveField(ctx context.Context, ref FieldRef) (*types.ImproveResponse, error) {
	if e.improver == nil {
		return nil, ErrNoImprover
	}
	if ref.Section == types.SectionExperience && ref.Field == "current" {
		return nil, fmt.Errorf("%w: %s", ErrNotText, ref)
	}

	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}

	key := ref.Key()
	release, ok := e.tracker.TryAcquire(key)
	if !ok {
		return nil, ErrInFlight
	}
	defer release()

	text, err := e.Field(ref)
	if err != nil {
		return nil, err
	}

	resp, err := e.improver.Improve(ctx, types.ImproveRequest{Text: text, Field: ref.Path()})
	if err != nil {
		log.Printf("[editor] improve %s failed: %v", ref, err)
		return nil, err
	}

	if err := e.update(func(doc *types.Document) error {
		return setField(doc, ref, resp.Text)
	}); err != nil {
		if errors.Is(err, ErrClosed) {
			log.Printf("[editor] discarding improvement for %s: editor closed", ref)
		}
		return nil, err
	}

	e.mu.Lock()
	if resp.Feedback != nil {
		e.feedback[key] = resp.Feedback
	} else {
		delete(e.feedback, key)
	}
	e.mu.Unlock()
	return resp, nil
}

// ImproveFields improves several fields concurrently. Each result is applied
// to its own field as it arrives. Successful results are returned even when
// some fields fail; the error is the first failure.
func (e *Editor) ImproveFields(ctx context.Context, refs []FieldRef) (map[FieldRef]*types.ImproveResponse, error) {
	var (
		mu      sync.Mutex
		results = make(map[FieldRef]*types.ImproveResponse, len(refs))
		g       errgroup.Group
	)
	for _, ref := range refs {
		g.Go(func() error {
			resp, err := e.ImproveField(ctx, ref)
			if err != nil {
				return fmt.Errorf("%s: %w", ref, err)
			}
			mu.Lock()
			results[ref] = resp
			mu.Unlock()
			return nil
		})
	}
	err := g.Wait()
	return results, err
}

// Loading reports whether ref has an improvement in flight.
func (e *Editor) Loading(ref FieldRef) bool {
	return e.tracker.InFlight(ref.Key())
}

// Feedback returns the feedback from the last improvement of ref, or nil.
func (e *Editor) Feedback(ref FieldRef) *types.Feedback {
	e.mu.Lock()
	defer e.mu.Unlock()
	fb, ok := e.feedback[ref.Key()]
	if !ok {
		return nil
	}
	c := *fb
	c.Missing = slices.Clone(fb.Missing)
	c.Improve = slices.Clone(fb.Improve)
	return &c
}

// DismissFeedback forgets the feedback for ref.
func (e *Editor) DismissFeedback(ref FieldRef) {
	e.mu.Lock()
	delete(e.feedback, ref.Key())
	e.mu.Unlock()
}

// ApplySuggestion replaces the field with the "suggested" rewrite from its feedback.
func (e *Editor) ApplySuggestion(ref FieldRef) error {
	fb := e.Feedback(ref)
	if fb == nil || fb.Suggested == "" {
		return fmt.Errorf("no suggestion for %s", ref)
	}
	return e.SetField(ref, fb.Suggested)
}

// Close stops the editor from accepting edits. Improvements still running
// finish but their results are discarded.
func (e *Editor) Close() {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
}
