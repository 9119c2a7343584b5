package embedding

import (
	"context"
	"errors"
	"fmt"
)

// ProviderError represents a failure of the external embedding provider for one text.
// Timeouts are reported as ProviderError wrapping context.DeadlineExceeded.
type ProviderError struct {
	Text  string
	Cause error
}

func (e *ProviderError) Error() string {
	if errors.Is(e.Cause, context.DeadlineExceeded) {
		return fmt.Sprintf("embedding provider timed out for %q", e.Text)
	}
	if e.Cause != nil {
		return fmt.Sprintf("embedding provider failed for %q: %v", e.Text, e.Cause)
	}
	return fmt.Sprintf("embedding provider failed for %q", e.Text)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

func asProviderError(text string, err error) error {
	var perr *ProviderError
	if errors.As(err, &perr) {
		return err
	}
	return &ProviderError{Text: text, Cause: err}
}
