package modelhost

import (
	"errors"
	"fmt"
)

// ErrInvalidOptions is wrapped by every validation failure of Generate.
var ErrInvalidOptions = errors.New("invalid generation options")

type invalidOptionsError struct {
	msg string
}

func (e invalidOptionsError) Error() string {
	return e.msg
}

func (e invalidOptionsError) Unwrap() error {
	return ErrInvalidOptions
}

func newInvalidOptions(msg string) error {
	return invalidOptionsError{msg: msg}
}

// GenerationError is returned when the runtime fails to produce paraphrases.
// It only affects the request that caused it.
type GenerationError struct {
	// StatusCode is the runtime's HTTP status, zero when the call never got
	// an answer.
	StatusCode int
	// OOM is set when the runtime ran out of device memory.
	OOM bool
	Err error
}

func (e *GenerationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("generation failed (runtime status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// StartupError means the model could not be loaded and the process must
// not start serving.
type StartupError struct {
	Model    string
	Attempts int
	Err      error
}

func (e *StartupError) Error() string {
	if e.Attempts > 1 {
		return fmt.Sprintf("load model %q after %d attempts: %v", e.Model, e.Attempts, e.Err)
	}
	return fmt.Sprintf("load model %q: %v", e.Model, e.Err)
}

func (e *StartupError) Unwrap() error {
	return e.Err
}
