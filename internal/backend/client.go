// Package backend is a client for the resume CRUD REST API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/resume-builder/internal/storage"
	"github.com/jonathan/resume-builder/internal/types"
)

// ErrUnauthorized is returned when no token is stored or the server rejects it.
var ErrUnauthorized = errors.New("unauthorized")

const maxResponseBytes = 10 << 20

// RemoteError is a non-2xx response other than 401.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
}

// Client talks to the REST API on behalf of one user. The bearer token lives in Store.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Store   storage.Store
}

// New returns a client for baseURL. A nil store keeps the token in memory.
func New(baseURL string, store storage.Store) *Client {
	if store == nil {
		store = storage.NewMemoryStore()
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 30 * time.Second},
		Store:   store,
	}
}

type resumeList struct {
	Resumes []types.ResumeSummary `json:"resumes"`
	Count   int                   `json:"count"`
}

// Login authenticates and stores the returned bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (*types.User, error) {
	var resp types.LoginResponse
	req := types.LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", false, req, &resp); err != nil {
		return nil, err
	}
	if err := c.Store.Set(storage.KeyToken, resp.Token); err != nil {
		return nil, fmt.Errorf("failed to store token: %w", err)
	}
	return resp.User, nil
}

// Register creates an account and stores the returned bearer token.
func (c *Client) Register(ctx context.Context, req *types.CreateUserRequest) (*types.User, error) {
	var resp types.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", false, req, &resp); err != nil {
		return nil, err
	}
	if err := c.Store.Set(storage.KeyToken, resp.Token); err != nil {
		return nil, fmt.Errorf("failed to store token: %w", err)
	}
	return resp.User, nil
}

// Logout forgets the stored token.
func (c *Client) Logout() error {
	return c.Store.Remove(storage.KeyToken)
}

// Token returns the stored bearer token, or "" when logged out.
func (c *Client) Token() (string, error) {
	token, _, err := c.Store.Get(storage.KeyToken)
	return token, err
}

// Profile returns the logged-in user.
func (c *Client) Profile(ctx context.Context) (*types.User, error) {
	var user types.User
	if err := c.do(ctx, http.MethodGet, "/users/me", true, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListResumes returns the user's stored resumes, most recently updated first.
func (c *Client) ListResumes(ctx context.Context) ([]types.ResumeSummary, error) {
	var list resumeList
	if err := c.do(ctx, http.MethodGet, "/resumes", true, nil, &list); err != nil {
		return nil, err
	}
	if list.Resumes == nil {
		list.Resumes = []types.ResumeSummary{}
	}
	return list.Resumes, nil
}

// GetResume fetches one stored resume.
func (c *Client) GetResume(ctx context.Context, id uuid.UUID) (*types.ResumeRecord, error) {
	var rec types.ResumeRecord
	if err := c.do(ctx, http.MethodGet, "/resumes/"+id.String(), true, nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// CreateResume stores a new resume.
func (c *Client) CreateResume(ctx context.Context, title string, doc *types.Document) (*types.ResumeRecord, error) {
	var rec types.ResumeRecord
	req := types.CreateResumeRequest{Title: title, Content: doc}
	if err := c.do(ctx, http.MethodPost, "/resumes", true, req, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// UpdateResume applies a partial update.
func (c *Client) UpdateResume(ctx context.Context, id uuid.UUID, req *types.UpdateResumeRequest) (*types.ResumeRecord, error) {
	var rec types.ResumeRecord
	if err := c.do(ctx, http.MethodPatch, "/resumes/"+id.String(), true, req, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// DeleteResume removes a stored resume.
func (c *Client) DeleteResume(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/resumes/"+id.String(), true, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, auth bool, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	if auth {
		token, err := c.Token()
		if err != nil {
			return fmt.Errorf("failed to read token: %w", err)
		}
		if token == "" {
			return fmt.Errorf("%w: not logged in", ErrUnauthorized)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if auth {
			_ = c.Store.Remove(storage.KeyToken)
		}
		return fmt.Errorf("%w: %s", ErrUnauthorized, errorMessage(resp, data))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RemoteError{StatusCode: resp.StatusCode, Message: errorMessage(resp, data)}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func errorMessage(resp *http.Response, data []byte) string {
	var body types.ErrorResponse
	if json.Unmarshal(data, &body) == nil && body.Error != "" {
		return body.Error
	}
	if text := strings.TrimSpace(string(data)); text != "" {
		return text
	}
	return http.StatusText(resp.StatusCode)
}
