package generator

import "fmt"

// GenerationError reports a profile the generator cannot turn into a transcript,
// for example a target level that sits below the baseline.
type GenerationError struct {
	Reason string
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation error: %s: %v", e.Reason, e.Err)
	}
	return "generation error: " + e.Reason
}

func (e *GenerationError) Unwrap() error { return e.Err }

func inconsistent(format string, args ...any) error {
	return &GenerationError{Reason: fmt.Sprintf(format, args...)}
}
