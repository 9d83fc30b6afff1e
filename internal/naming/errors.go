package naming

import (
	"errors"
	"fmt"
)

// ErrNotImagePlaneFile is matched by every decode failure:
//
//	if errors.Is(err, naming.ErrNotImagePlaneFile) {
//	    // skip the file
//	}
var ErrNotImagePlaneFile = errors.New("not an image plane file")

// NotImagePlaneFileError describes why a filename could not be decoded.
type NotImagePlaneFileError struct {
	// Name is the basename that failed to decode.
	Name string
	// Field names the offending field. Empty when the name as a whole does
	// not match the grammar.
	Field string
	// Reason is a human-readable description of the failed constraint.
	Reason string
}

func (e *NotImagePlaneFileError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: invalid %s: %s", ErrNotImagePlaneFile, e.Name, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", ErrNotImagePlaneFile, e.Name, e.Reason)
}

// Is reports whether target is ErrNotImagePlaneFile.
func (e *NotImagePlaneFileError) Is(target error) bool {
	return target == ErrNotImagePlaneFile
}
