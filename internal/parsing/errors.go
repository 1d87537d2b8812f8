package parsing

import "fmt"

// Kind classifies why a resume document was rejected.
type Kind string

const (
	// KindMalformedJSON means the input is not syntactically valid JSON.
	KindMalformedJSON Kind = "MalformedJSON"
	// KindMissingRequiredField means a field the document cannot exist without is absent or empty.
	KindMissingRequiredField Kind = "MissingRequiredField"
	// KindSchemaMismatch means a known field has the wrong JSON type.
	KindSchemaMismatch Kind = "SchemaMismatch"
)

// FieldProblem is one type mismatch reported by the schema check.
type FieldProblem struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports a rejected resume document
type ValidationError struct {
	Kind     Kind
	Field    string
	Message  string
	Problems []FieldProblem
	Cause    error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}
