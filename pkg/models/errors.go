package models

import (
	"errors"
	"fmt"
)

var ErrEmptyBatch = errors.New("no texts to embed")

// BadConfigError indicates malformed or missing required configuration.
// It is surfaced at pipeline start and never retried.
type BadConfigError struct {
	Message       string
	OriginalError error
}

func (e *BadConfigError) Error() string {
	if e.OriginalError != nil {
		return fmt.Sprintf("bad config: %s (original error: %v)", e.Message, e.OriginalError)
	}
	return fmt.Sprintf("bad config: %s", e.Message)
}

func NewBadConfigError(message string, originalError error) *BadConfigError {
	return &BadConfigError{Message: message, OriginalError: originalError}
}
