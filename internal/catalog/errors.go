package catalog

import "fmt"

// LoadError is returned when a catalog file cannot be read, parsed or validated.
// A process must not serve requests with a catalog that failed to load.
type LoadError struct {
	Path   string
	Reason string
	Cause  error
}

func (e *LoadError) Error() string {
	path := e.Path
	if path == "" {
		path = "(inline catalog)"
	}
	if e.Cause != nil {
		return fmt.Sprintf("catalog %s: %s: %v", path, e.Reason, e.Cause)
	}
	return fmt.Sprintf("catalog %s: %s", path, e.Reason)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}
