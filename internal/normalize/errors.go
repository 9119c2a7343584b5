package normalize

import "fmt"

// InvalidSkillInputError is returned for raw skill input that is empty after cleaning.
// Callers should re-prompt the user.
type InvalidSkillInputError struct {
	Raw    string
	Reason string
}

func (e *InvalidSkillInputError) Error() string {
	if e.Raw == "" {
		return fmt.Sprintf("invalid skill input: %s", e.Reason)
	}
	return fmt.Sprintf("invalid skill input %q: %s", e.Raw, e.Reason)
}
