package improve

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/jonathan/resume-builder/internal/types"
)

// maxResponseBytes caps how much of an endpoint response is read.
const maxResponseBytes = 1 << 20

// RemoteImprover calls an external improvement endpoint:
// POST {text, field?} answered by {text, feedback?} or {error}.
//
// No timeout is set beyond whatever the HTTP client carries.
type RemoteImprover struct {
	Endpoint string
	HTTP     *http.Client
}

// NewRemoteImprover returns an improver for endpoint using http.DefaultClient.
func NewRemoteImprover(endpoint string) *RemoteImprover {
	return &RemoteImprover{Endpoint: endpoint, HTTP: http.DefaultClient}
}

// Improve implements Service.
func (r *RemoteImprover) Improve(ctx context.Context, req types.ImproveRequest) (*types.ImproveResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if r.Endpoint == "" {
		return nil, &Error{Message: "no improvement endpoint configured"}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, &Error{Message: "failed to encode request", Cause: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Message: "failed to build request", Cause: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	client := r.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		log.Printf("[improve] request to endpoint failed: %v", err)
		return nil, &Error{Message: "could not reach the improvement service", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &Error{Message: "failed to read response", StatusCode: resp.StatusCode, Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Message: remoteMessage(resp.StatusCode, data), StatusCode: resp.StatusCode}
	}

	result, err := DecodeResponse(data)
	if err != nil {
		if ie, ok := err.(*Error); ok {
			ie.StatusCode = resp.StatusCode
		}
		return nil, err
	}
	return result, nil
}

func remoteMessage(status int, body []byte) string {
	var payload types.ErrorResponse
	if err := json.Unmarshal(body, &payload); err == nil && strings.TrimSpace(payload.Error) != "" {
		return payload.Error
	}
	return fmt.Sprintf("improvement service returned %d %s", status, http.StatusText(status))
}
