package improve

import "fmt"

// KindAIImprovementFailed is the single failure kind of field improvement.
const KindAIImprovementFailed = "AIImprovementFailed"

// Error reports a failed improvement: network failure, a non-2xx response,
// or a response without replacement text.
type Error struct {
	Message string
	// StatusCode is the remote HTTP status, or 0 when no response was received.
	StatusCode int
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", KindAIImprovementFailed, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", KindAIImprovementFailed, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Kind returns KindAIImprovementFailed.
func (e *Error) Kind() string {
	return KindAIImprovementFailed
}
