package attendance

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrUnparseableFile is returned when an uploaded file cannot be decoded.
	// The raw store is left untouched.
	ErrUnparseableFile = errors.New("unparseable attendance file")

	// ErrStaleLoad is returned when a load finishes after a newer one has
	// already been published. Its result is discarded.
	ErrStaleLoad = errors.New("stale load discarded")

	// ErrPersonNotFound is returned when a person id is not in the dataset.
	ErrPersonNotFound = errors.New("person not found")

	// ErrNoData is returned when an operation needs a loaded dataset.
	ErrNoData = errors.New("no attendance data loaded")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// DecodeError describes why a file could not be read.
type DecodeError struct {
	Source string // file name as uploaded
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	msg := fmt.Sprintf("cannot read %q: %s", e.Source, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DecodeError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrUnparseableFile}
	}
	return []error{ErrUnparseableFile, e.Err}
}

// StaleLoadError reports the generation of a discarded load.
type StaleLoadError struct {
	Ticket    uint64
	Published uint64
}

func (e *StaleLoadError) Error() string {
	return fmt.Sprintf("load %d finished after load %d was published", e.Ticket, e.Published)
}

func (e *StaleLoadError) Unwrap() error {
	return ErrStaleLoad
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to the caller's input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrUnparseableFile)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPersonNotFound) || errors.Is(err, ErrNoData)
}

// IsConflict returns true if the error means the request lost a race.
func IsConflict(err error) bool {
	return errors.Is(err, ErrStaleLoad)
}
