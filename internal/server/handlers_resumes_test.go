package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/resume-builder/internal/server/middleware"
	"github.com/jonathan/resume-builder/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const janeDocument = `{
	"personalInfo": {"fullName": "Jane Doe", "email": "jane@example.com"},
	"summary": "Backend engineer",
	"experience": [{"id": "1", "company": "Acme", "position": "Engineer", "startDate": "2020-01", "current": true}],
	"theme": {"accent": "#333"}
}`

func createResume(t *testing.T, ts *testServer, token, title string) types.ResumeRecord {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/resumes", token, `{"title":"`+title+`","content":`+janeDocument+`}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var record types.ResumeRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
	return record
}

func TestResumes_RequireToken(t *testing.T) {
	ts := newTestServer(t, Deps{})

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/resumes"},
		{http.MethodPost, "/resumes"},
		{http.MethodGet, "/resumes/" + uuid.NewString()},
		{http.MethodPatch, "/resumes/" + uuid.NewString()},
		{http.MethodDelete, "/resumes/" + uuid.NewString()},
		{http.MethodGet, "/resumes/" + uuid.NewString() + "/preview"},
	} {
		rec := ts.do(t, route.method, route.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", route.method, route.path)
	}
}

func TestResumes_CRUD(t *testing.T) {
	ts := newTestServer(t, Deps{})
	token, user := ts.register(t, "jane@example.com")

	created := createResume(t, ts, token, "Main")
	assert.Equal(t, user.ID, created.UserID)
	assert.Equal(t, "Main", created.Title)
	assert.Equal(t, "Jane Doe", created.Content.PersonalInfo.FullName)
	assert.Contains(t, created.Content.Extra, "theme", "unknown keys are kept")
	second := createResume(t, ts, token, "Second")

	rec := ts.do(t, http.MethodGet, "/resumes", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Resumes []types.ResumeSummary `json:"resumes"`
		Count   int                   `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Equal(t, 2, list.Count)
	assert.Equal(t, second.ID, list.Resumes[0].ID, "most recently updated first")
	assert.Equal(t, "Jane Doe", list.Resumes[0].FullName)

	rec = ts.do(t, http.MethodGet, "/resumes/"+created.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodPatch, "/resumes/"+created.ID.String(), token, `{"title":"Renamed"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var updated types.ResumeRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, "Backend engineer", updated.Content.Summary, "content is unchanged")

	rec = ts.do(t, http.MethodPatch, "/resumes/"+created.ID.String(), token,
		`{"content":{"personalInfo":{"fullName":"Jane Q. Doe"}}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, "Jane Q. Doe", updated.Content.PersonalInfo.FullName)
	assert.NotNil(t, updated.Content.Experience, "absent lists decode as empty")

	rec = ts.do(t, http.MethodDelete, "/resumes/"+created.ID.String(), token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, http.MethodDelete, "/resumes/"+created.ID.String(), token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = ts.do(t, http.MethodGet, "/resumes/"+created.ID.String(), token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResumes_OwnerScoped(t *testing.T) {
	ts := newTestServer(t, Deps{})
	janeToken, _ := ts.register(t, "jane@example.com")
	bobToken, _ := ts.register(t, "bob@example.com")

	resume := createResume(t, ts, janeToken, "Main")
	path := "/resumes/" + resume.ID.String()

	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, path, bobToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodPatch, path, bobToken, `{"title":"Mine"}`).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodDelete, path, bobToken, nil).Code)

	rec := ts.do(t, http.MethodGet, "/resumes", bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"resumes":[],"count":0}`, rec.Body.String())

	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, path, janeToken, nil).Code)
}

func TestResumes_InvalidInput(t *testing.T) {
	ts := newTestServer(t, Deps{})
	token, _ := ts.register(t, "jane@example.com")
	existing := createResume(t, ts, token, "Main")

	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		wantKind string
	}{
		{name: "missing content", method: http.MethodPost, path: "/resumes", body: `{"title":"Main"}`},
		{name: "missing title", method: http.MethodPost, path: "/resumes", body: `{"content":` + janeDocument + `}`},
		{name: "missing full name", method: http.MethodPost, path: "/resumes",
			body: `{"title":"Main","content":{"personalInfo":{"fullName":"  "}}}`, wantKind: "MissingRequiredField"},
		{name: "wrong field type", method: http.MethodPost, path: "/resumes",
			body: `{"title":"Main","content":{"personalInfo":{"fullName":"Jane"},"experience":"Acme"}}`, wantKind: "SchemaMismatch"},
		{name: "empty title on update", method: http.MethodPatch, path: "/resumes/" + existing.ID.String(), body: `{"title":""}`},
		{name: "bad id", method: http.MethodGet, path: "/resumes/not-a-uuid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body any
			if tt.body != "" {
				body = tt.body
			}
			rec := ts.do(t, tt.method, tt.path, token, body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

			if tt.wantKind != "" {
				var resp documentErrorResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, tt.wantKind, string(resp.Kind))
				assert.NotEmpty(t, resp.Error)
			}
		})
	}
}

func TestResumes_Preview(t *testing.T) {
	ts := newTestServer(t, Deps{})
	token, _ := ts.register(t, "jane@example.com")
	resume := createResume(t, ts, token, "Main")

	rec := ts.do(t, http.MethodGet, "/resumes/"+resume.ID.String()+"/preview", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Jane Doe"`)

	rec = ts.do(t, http.MethodGet, "/resumes/"+resume.ID.String()+"/preview?format=html", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `id="resume-sheet"`)
	assert.Contains(t, rec.Body.String(), "Jane Doe")
}

func TestHandleGetResume_Direct(t *testing.T) {
	ts := newTestServer(t, Deps{})
	_, user := ts.register(t, "jane@example.com")

	req := httptest.NewRequest(http.MethodGet, "/resumes/x", nil)
	req.SetPathValue("id", uuid.NewString())
	req = middleware.WithUserID(req, user.ID)
	rec := httptest.NewRecorder()

	ts.handleGetResume(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, decodeError(t, rec), "resume not found")
}
