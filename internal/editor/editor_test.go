package editor

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-builder/internal/improve"
	"github.com/jonathan/resume-builder/internal/parsing"
	"github.com/jonathan/resume-builder/internal/types"
)

// fakeImprover answers from a map keyed by the input text. When gate is set,
// each call waits for a value on it before answering.
type fakeImprover struct {
	mu      sync.Mutex
	answers map[string]*types.ImproveResponse
	err     error
	calls   []types.ImproveRequest
	started chan types.ImproveRequest
	gate    chan struct{}
}

func (f *fakeImprover) Improve(_ context.Context, req types.ImproveRequest) (*types.ImproveResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	if f.started != nil {
		f.started <- req
	}
	if f.gate != nil {
		<-f.gate
	}
	if f.err != nil {
		return nil, f.err
	}
	if resp, ok := f.answers[req.Text]; ok {
		return resp, nil
	}
	return &types.ImproveResponse{Text: strings.ToUpper(req.Text)}, nil
}

func sampleDocument() *types.Document {
	doc := types.NewDocument()
	doc.PersonalInfo.FullName = "Jane Doe"
	doc.Summary = "engineer"
	doc.Experience = []types.Experience{
		{ID: "e1", Company: "Acme", Position: "Dev", StartDate: "2020-01", Description: "built stuff"},
		{ID: "e2", Company: "Globex", Position: "Intern", Description: "fixed bugs"},
	}
	doc.Projects = []types.Project{{ID: "p1", Name: "Tool", Description: "cli"}}
	return doc
}

func TestImproveField_ReplacesOnlyThatField(t *testing.T) {
	improver := &fakeImprover{answers: map[string]*types.ImproveResponse{
		"built stuff": {Text: "Built scalable web applications..."},
	}}
	ed := New(sampleDocument(), improver)
	before := ed.Document()

	ref := FieldRef{Section: types.SectionExperience, ItemID: "e1", Field: "description"}
	resp, err := ed.ImproveField(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, "Built scalable web applications...", resp.Text)

	after := ed.Document()
	assert.Equal(t, "Built scalable web applications...", after.Experience[0].Description)

	expected := before.Clone()
	expected.Experience[0].Description = "Built scalable web applications..."
	assert.Equal(t, expected, after, "nothing but the improved field changes")

	require.Len(t, improver.calls, 1)
	assert.Equal(t, types.ImproveRequest{Text: "built stuff", Field: "experience.description"}, improver.calls[0])
	assert.False(t, ed.Loading(ref))
}

func TestImproveField_SingleInFlightPerField(t *testing.T) {
	improver := &fakeImprover{started: make(chan types.ImproveRequest, 1), gate: make(chan struct{})}
	ed := New(sampleDocument(), improver)
	ref := FieldRef{Section: types.SectionSummary}

	done := make(chan error, 1)
	go func() {
		_, err := ed.ImproveField(context.Background(), ref)
		done <- err
	}()
	<-improver.started
	assert.True(t, ed.Loading(ref))

	_, err := ed.ImproveField(context.Background(), ref)
	assert.ErrorIs(t, err, ErrInFlight)

	close(improver.gate)
	require.NoError(t, <-done)
	assert.False(t, ed.Loading(ref))
	assert.Equal(t, "ENGINEER", ed.Document().Summary)
}

func TestImproveField_FailureClearsLoading(t *testing.T) {
	improver := &fakeImprover{err: &improve.Error{Message: "boom"}}
	ed := New(sampleDocument(), improver)
	ref := FieldRef{Section: types.SectionExperience, ItemID: "e2", Field: "description"}

	_, err := ed.ImproveField(context.Background(), ref)
	var ie *improve.Error
	require.ErrorAs(t, err, &ie)
	assert.False(t, ed.Loading(ref))
	assert.Equal(t, "fixed bugs", ed.Document().Experience[1].Description)

	improver.err = nil
	_, err = ed.ImproveField(context.Background(), ref)
	assert.NoError(t, err, "the field can be retried after a failure")
}

func TestImproveField_ConcurrentSiblingEditSurvives(t *testing.T) {
	improver := &fakeImprover{started: make(chan types.ImproveRequest, 1), gate: make(chan struct{})}
	ed := New(sampleDocument(), improver)

	done := make(chan error, 1)
	go func() {
		_, err := ed.ImproveField(context.Background(), FieldRef{Section: types.SectionExperience, ItemID: "e1", Field: "description"})
		done <- err
	}()
	<-improver.started

	require.NoError(t, ed.SetField(FieldRef{Section: types.SectionExperience, ItemID: "e1", Field: "company"}, "Acme Corp"))
	require.NoError(t, ed.SetField(FieldRef{Section: types.SectionSummary}, "edited while waiting"))

	close(improver.gate)
	require.NoError(t, <-done)

	doc := ed.Document()
	assert.Equal(t, "BUILT STUFF", doc.Experience[0].Description)
	assert.Equal(t, "Acme Corp", doc.Experience[0].Company)
	assert.Equal(t, "edited while waiting", doc.Summary)
}

func TestImproveField_DiscardedAfterClose(t *testing.T) {
	improver := &fakeImprover{started: make(chan types.ImproveRequest, 1), gate: make(chan struct{})}
	ed := New(sampleDocument(), improver)
	ref := FieldRef{Section: types.SectionSummary}

	done := make(chan error, 1)
	go func() {
		_, err := ed.ImproveField(context.Background(), ref)
		done <- err
	}()
	<-improver.started
	ed.Close()
	close(improver.gate)

	assert.ErrorIs(t, <-done, ErrClosed)
	assert.Equal(t, "engineer", ed.Document().Summary)
	assert.False(t, ed.Loading(ref))

	_, err := ed.ImproveField(context.Background(), ref)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, ed.SetField(ref, "x"), ErrClosed)
}

func TestImproveField_ItemRemovedWhileInFlight(t *testing.T) {
	improver := &fakeImprover{started: make(chan types.ImproveRequest, 1), gate: make(chan struct{})}
	ed := New(sampleDocument(), improver)

	done := make(chan error, 1)
	go func() {
		_, err := ed.ImproveField(context.Background(), FieldRef{Section: types.SectionExperience, ItemID: "e2", Field: "description"})
		done <- err
	}()
	<-improver.started
	require.NoError(t, ed.RemoveItem(types.SectionExperience, "e2"))
	close(improver.gate)

	assert.ErrorIs(t, <-done, ErrUnknownItem)
	assert.Len(t, ed.Document().Experience, 1)
}

func TestImproveField_StoresFeedback(t *testing.T) {
	improver := &fakeImprover{answers: map[string]*types.ImproveResponse{
		"engineer": {Text: "Senior engineer", Feedback: &types.Feedback{Missing: []string{"years"}, Improve: []string{}, Suggested: "Staff engineer"}},
	}}
	ed := New(sampleDocument(), improver)
	ref := FieldRef{Section: types.SectionSummary}

	_, err := ed.ImproveField(context.Background(), ref)
	require.NoError(t, err)

	fb := ed.Feedback(ref)
	require.NotNil(t, fb)
	assert.Equal(t, []string{"years"}, fb.Missing)

	fb.Missing[0] = "mutated"
	assert.Equal(t, "years", ed.Feedback(ref).Missing[0], "feedback is returned by copy")

	require.NoError(t, ed.ApplySuggestion(ref))
	assert.Equal(t, "Staff engineer", ed.Document().Summary)

	ed.DismissFeedback(ref)
	assert.Nil(t, ed.Feedback(ref))
	assert.Error(t, ed.ApplySuggestion(ref))
}

func TestImproveField_Rejections(t *testing.T) {
	ed := New(sampleDocument(), nil)
	_, err := ed.ImproveField(context.Background(), FieldRef{Section: types.SectionSummary})
	assert.ErrorIs(t, err, ErrNoImprover)

	ed = New(sampleDocument(), &fakeImprover{})
	_, err = ed.ImproveField(context.Background(), FieldRef{Section: types.SectionExperience, ItemID: "e1", Field: "current"})
	assert.ErrorIs(t, err, ErrNotText)

	_, err = ed.ImproveField(context.Background(), FieldRef{Section: types.SectionExperience, ItemID: "missing", Field: "description"})
	assert.ErrorIs(t, err, ErrUnknownItem)
}

func TestImproveFields_Concurrent(t *testing.T) {
	improver := &fakeImprover{}
	ed := New(sampleDocument(), improver)

	refs := []FieldRef{
		{Section: types.SectionSummary},
		{Section: types.SectionExperience, ItemID: "e1", Field: "description"},
		{Section: types.SectionExperience, ItemID: "e2", Field: "description"},
		{Section: types.SectionProjects, ItemID: "p1", Field: "description"},
	}
	results, err := ed.ImproveFields(context.Background(), refs)
	require.NoError(t, err)
	assert.Len(t, results, 4)

	doc := ed.Document()
	assert.Equal(t, "ENGINEER", doc.Summary)
	assert.Equal(t, "BUILT STUFF", doc.Experience[0].Description)
	assert.Equal(t, "FIXED BUGS", doc.Experience[1].Description)
	assert.Equal(t, "CLI", doc.Projects[0].Description)
	assert.Equal(t, "Acme", doc.Experience[0].Company)
}

func TestImproveFields_PartialFailure(t *testing.T) {
	ed := New(sampleDocument(), &fakeImprover{})
	refs := []FieldRef{
		{Section: types.SectionSummary},
		{Section: types.SectionExperience, ItemID: "nope", Field: "description"},
	}

	results, err := ed.ImproveFields(context.Background(), refs)
	assert.ErrorIs(t, err, ErrUnknownItem)
	assert.Contains(t, results, refs[0])
	assert.Equal(t, "ENGINEER", ed.Document().Summary)
}

func TestDocument_ReturnsCopy(t *testing.T) {
	ed := New(sampleDocument(), nil)
	doc := ed.Document()
	doc.Summary = "changed outside"
	doc.Experience[0].Company = "changed outside"

	fresh := ed.Document()
	assert.Equal(t, "engineer", fresh.Summary)
	assert.Equal(t, "Acme", fresh.Experience[0].Company)
}

func TestNew_CopiesInput(t *testing.T) {
	input := sampleDocument()
	ed := New(input, nil)
	require.NoError(t, ed.SetField(FieldRef{Section: types.SectionSummary}, "new"))
	assert.Equal(t, "engineer", input.Summary)

	assert.Equal(t, types.NewDocument(), New(nil, nil).Document())
}

func TestSetField(t *testing.T) {
	ed := New(sampleDocument(), nil)

	require.NoError(t, ed.SetField(FieldRef{Section: types.SectionPersonalInfo, Field: "email"}, "jane@example.com"))
	require.NoError(t, ed.SetField(FieldRef{Section: types.SectionExperience, ItemID: "e1", Field: "current"}, "true"))
	require.NoError(t, ed.SetField(FieldRef{Section: types.SectionProjects, ItemID: "p1", Field: "technologies"}, "Go, SQL"))

	doc := ed.Document()
	assert.Equal(t, "jane@example.com", doc.PersonalInfo.Email)
	assert.True(t, doc.Experience[0].Current)
	assert.Equal(t, "Go, SQL", doc.Projects[0].Technologies)

	value, err := ed.Field(FieldRef{Section: types.SectionExperience, ItemID: "e1", Field: "current"})
	require.NoError(t, err)
	assert.Equal(t, "true", value)

	assert.ErrorIs(t, ed.SetField(FieldRef{Section: "hobbies", Field: "x"}, "y"), ErrUnknownSection)
	assert.ErrorIs(t, ed.SetField(FieldRef{Section: types.SectionProjects, ItemID: "p1", Field: "stars"}, "y"), ErrUnknownField)
	assert.ErrorIs(t, ed.SetField(FieldRef{Section: types.SectionProjects, ItemID: "p9", Field: "name"}, "y"), ErrUnknownItem)
	assert.Error(t, ed.SetField(FieldRef{Section: types.SectionExperience, ItemID: "e1", Field: "current"}, "sometimes"))
	assert.True(t, ed.Document().Experience[0].Current, "failed edits leave the document unchanged")
}

func TestAddAndRemoveItems(t *testing.T) {
	ed := New(nil, nil)

	for _, section := range types.ListSections {
		id, err := ed.AddItem(section)
		require.NoError(t, err, section)
		require.NotEmpty(t, id)
		require.NoError(t, ed.RemoveItem(section, id), section)
	}

	id, err := ed.AddItem(types.SectionSkills)
	require.NoError(t, err)
	require.NoError(t, ed.SetField(FieldRef{Section: types.SectionSkills, ItemID: id, Field: "category"}, "Languages"))
	assert.Equal(t, "Languages", ed.Document().Skills[0].Category)

	_, err = ed.AddItem(types.SectionSummary)
	assert.ErrorIs(t, err, ErrUnknownSection)
	assert.ErrorIs(t, ed.RemoveItem(types.SectionSkills, "missing"), ErrUnknownItem)
}

func TestEditor_PastedItemsWithoutIDs(t *testing.T) {
	doc, err := parsing.Parse(`{"personalInfo":{"fullName":"Jane"},"experience":[{"position":"A"},{"position":"B"},{"id":"dup","position":"C"},{"id":"dup","position":"D"}]}`)
	require.NoError(t, err)
	ed := New(doc, nil)
	items := ed.Document().Experience
	require.Len(t, items, 4)

	require.NoError(t, ed.SetField(FieldRef{Section: types.SectionExperience, ItemID: items[1].ID, Field: "position"}, "B2"))
	require.NoError(t, ed.SetField(FieldRef{Section: types.SectionExperience, ItemID: items[3].ID, Field: "position"}, "D2"))

	var positions []string
	for _, e := range ed.Document().Experience {
		positions = append(positions, e.Position)
	}
	assert.Equal(t, []string{"A", "B2", "C", "D2"}, positions)

	assert.ErrorIs(t, ed.RemoveItem(types.SectionExperience, ""), ErrUnknownItem)
	require.NoError(t, ed.RemoveItem(types.SectionExperience, items[0].ID))
	assert.Len(t, ed.Document().Experience, 3, "only the addressed item is removed")
}

func TestEditor_UpdateAssignsIDs(t *testing.T) {
	ed := New(nil, nil)
	require.NoError(t, ed.Update(func(doc *types.Document) {
		doc.Projects = append(doc.Projects, types.Project{Name: "One"}, types.Project{Name: "Two"})
	}))

	projects := ed.Document().Projects
	require.Len(t, projects, 2)
	assert.NotEmpty(t, projects[0].ID)
	assert.NotEqual(t, projects[0].ID, projects[1].ID)
}

func TestFieldRef_KeyIgnoresIDOutsideLists(t *testing.T) {
	plain := FieldRef{Section: types.SectionPersonalInfo, Field: "email"}
	withID := FieldRef{Section: types.SectionPersonalInfo, ItemID: "x", Field: "email"}
	assert.Equal(t, plain.Key(), withID.Key())
	assert.Equal(t, "personalInfo.email", withID.String())
}

func TestSetSectionVisible(t *testing.T) {
	ed := New(sampleDocument(), nil)
	require.NoError(t, ed.SetSectionVisible(types.SectionProjects, false))

	assert.False(t, ed.Document().VisibleSections.Shows(types.SectionProjects))
	assert.NotContains(t, ed.Preview().SectionKeys(), types.SectionProjects)

	assert.ErrorIs(t, ed.SetSectionVisible("hobbies", true), ErrUnknownSection)
}

func TestParseFieldRef(t *testing.T) {
	tests := []struct {
		input string
		want  FieldRef
	}{
		{"summary", FieldRef{Section: types.SectionSummary}},
		{"personalInfo.email", FieldRef{Section: types.SectionPersonalInfo, Field: "email"}},
		{"experience[e1].description", FieldRef{Section: types.SectionExperience, ItemID: "e1", Field: "description"}},
	}
	for _, tt := range tests {
		got, err := ParseFieldRef(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, tt.input, got.String())
	}

	for _, bad := range []string{"", "experience", "experience.description", "[e1].x", "experience[e1.description", "personalInfo[x].email", "experience[].description"} {
		_, err := ParseFieldRef(bad)
		assert.Error(t, err, bad)
	}
}
