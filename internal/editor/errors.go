package editor

import (
	"errors"
	"fmt"
)

// ErrSaveInFlight: a save for the same record is still committing. The
// engine rejects the second call instead of interleaving reconciliation.
var ErrSaveInFlight = errors.New("a save for this record is already in flight")

type ErrorKind int

const (
	// ValidationFailed is resolved locally; no persistence call was made.
	ValidationFailed ErrorKind = iota + 1
	SlugGenerationFailed
	PersistenceWriteFailed
)

func (k ErrorKind) String() string {
	switch k {
	case ValidationFailed:
		return "validation_failed"
	case SlugGenerationFailed:
		return "slug_generation_failed"
	case PersistenceWriteFailed:
		return "persistence_write_failed"
	}
	return "unknown"
}

// SaveError is the tagged result a failed save propagates. Handlers decide
// per-kind messaging; the underlying message is surfaced verbatim.
type SaveError struct {
	Kind ErrorKind
	Err  error

	// FieldErrors is populated for ValidationFailed only.
	FieldErrors map[string]string
}

func (e *SaveError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return e.Kind.String()
}

func (e *SaveError) Unwrap() error {
	return e.Err
}

// AsSaveError unwraps err into a *SaveError when it is one.
func AsSaveError(err error) (*SaveError, bool) {
	var se *SaveError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
