package extract

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFileType is returned for extensions the pipeline cannot
// handle. Callers must reject the upload before processing.
var ErrUnsupportedFileType = errors.New("unsupported file type")

// ExtractionError reports that no text could be obtained from a readable
// file. It carries the underlying cause; extraction never panics past this
// boundary.
type ExtractionError struct {
	Path  string
	Cause error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed for %s: %v", e.Path, e.Cause)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}
