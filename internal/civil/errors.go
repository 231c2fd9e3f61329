package civil

import "fmt"

// ParseError reports an input string that does not match any accepted layout.
type ParseError struct {
	Input    string
	Expected string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("civil: cannot parse %q as %s", e.Input, e.Expected)
}

// RangeError reports a well-formed input whose numeric field falls outside
// calendar bounds, e.g. month 13 or February 30.
type RangeError struct {
	Input string
	Field string
	Value int
}

func (e *RangeError) Error() string {
	if e.Input == "" {
		return fmt.Sprintf("civil: %s %d out of range", e.Field, e.Value)
	}
	return fmt.Sprintf("civil: %s %d out of range in %q", e.Field, e.Value, e.Input)
}
