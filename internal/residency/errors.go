package residency

import (
	"errors"
	"fmt"
)

// missingFileError means the model asset is absent or unreadable. It is not
// retried automatically.
type missingFileError struct {
	filename string
	err      error
}

func (e missingFileError) Error() string {
	return fmt.Sprintf("model file missing: %s: %v", e.filename, e.err)
}

func (e missingFileError) Unwrap() error { return e.err }

// IsMissingFile reports whether err indicates an absent model file.
func IsMissingFile(err error) bool {
	var e missingFileError
	return errors.As(err, &e)
}

// engineFailureError means the native runtime failed to load the model.
type engineFailureError struct {
	filename string
	err      error
}

func (e engineFailureError) Error() string {
	return fmt.Sprintf("engine failed to load %s: %v", e.filename, e.err)
}

func (e engineFailureError) Unwrap() error { return e.err }

// IsEngineFailure reports whether err came from the native load primitive.
func IsEngineFailure(err error) bool {
	var e engineFailureError
	return errors.As(err, &e)
}
