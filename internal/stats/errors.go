package stats

import "fmt"

// ValidationError reports a record or argument that is logically
// inconsistent, such as a sleep interval that ends before it starts.
type ValidationError struct {
	Kind   string
	ID     string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("stats: invalid %s: %s", e.Kind, e.Reason)
	}
	return fmt.Sprintf("stats: invalid %s record %q: %s", e.Kind, e.ID, e.Reason)
}
