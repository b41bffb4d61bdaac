package scorer

import "fmt"

// FailureKind separates failures for logging. Users see the same message for both.
type FailureKind string

const (
	// TransportFailure means the service could not be reached or the request was aborted.
	TransportFailure FailureKind = "transport"
	// ServiceFailure means the service answered with a bad status or an unusable body.
	ServiceFailure FailureKind = "service"
)

const userMessage = "Analysis engine error. Please try again."

type SubmissionError struct {
	Kind   FailureKind
	Status int
	Cause  error
}

func (e *SubmissionError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s failure (status %d): %v", e.Kind, e.Status, e.Cause)
	}
	return fmt.Sprintf("%s failure: %v", e.Kind, e.Cause)
}

func (e *SubmissionError) Unwrap() error {
	return e.Cause
}

// Message is the text shown to the user.
func (e *SubmissionError) Message() string {
	return userMessage
}
