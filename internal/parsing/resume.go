// Package parsing validates externally supplied resume JSON and turns it into documents.
package parsing

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/jonathan/resume-builder/internal/schemas"
	"github.com/jonathan/resume-builder/internal/types"
)

// QueryParam is the query parameter the preview page reads the document from.
const QueryParam = "data"

// FullNameField is the only field a document is rejected for leaving empty.
const FullNameField = "personalInfo.fullName"

// Parse validates raw text as a resume document.
//
// The checks run in order: JSON syntax, presence of personalInfo.fullName,
// then field types against the embedded schema. Unknown top-level keys are
// kept, absent lists become empty and absent visibility becomes all-true.
func Parse(raw string) (*types.Document, error) {
	return ParseBytes([]byte(raw))
}

// ParseBytes is Parse for a byte slice.
func ParseBytes(data []byte) (*types.Document, error) {
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, &ValidationError{
			Kind:    KindMalformedJSON,
			Message: err.Error(),
			Cause:   err,
		}
	}

	if !hasFullName(generic) {
		return nil, &ValidationError{
			Kind:    KindMissingRequiredField,
			Field:   FullNameField,
			Message: "full name is required",
		}
	}

	if err := schemas.ValidateResume(string(data)); err != nil {
		return nil, schemaMismatch(err)
	}

	var doc types.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ValidationError{
			Kind:    KindSchemaMismatch,
			Message: fmt.Sprintf("failed to decode document: %v", err),
			Cause:   err,
		}
	}
	doc.ApplyDefaults()
	return &doc, nil
}

// Encode serializes a document as indented JSON, extra keys included.
func Encode(doc *types.Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("document is nil")
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return data, nil
}

// FromQuery parses the document carried in the preview page's query string.
func FromQuery(values url.Values) (*types.Document, error) {
	raw := values.Get(QueryParam)
	if raw == "" {
		return nil, &ValidationError{
			Kind:    KindMissingRequiredField,
			Field:   QueryParam,
			Message: "query parameter is missing",
		}
	}
	return Parse(raw)
}

// EncodeQuery returns a query string carrying doc as compact JSON.
func EncodeQuery(doc *types.Document) (string, error) {
	if doc == nil {
		return "", fmt.Errorf("document is nil")
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to encode document: %w", err)
	}
	return url.Values{QueryParam: {string(data)}}.Encode(), nil
}

func hasFullName(generic any) bool {
	root, ok := generic.(map[string]any)
	if !ok {
		return false
	}
	info, ok := root[types.SectionPersonalInfo].(map[string]any)
	if !ok {
		return false
	}
	name, ok := info["fullName"].(string)
	return ok && strings.TrimSpace(name) != ""
}

func schemaMismatch(err error) *ValidationError {
	result := &ValidationError{
		Kind:    KindSchemaMismatch,
		Message: "document does not match the resume schema",
		Cause:   err,
	}

	var verr *schemas.ValidationError
	if !errors.As(err, &verr) {
		result.Message = err.Error()
		return result
	}
	for _, fe := range verr.Errors {
		result.Problems = append(result.Problems, FieldProblem{Field: fe.Field, Message: fe.Message})
	}
	if len(result.Problems) > 0 {
		result.Field = result.Problems[0].Field
		result.Message = result.Problems[0].Message
	}
	return result
}
