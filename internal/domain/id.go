package domain

import (
	"fmt"
	"regexp"
)

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidID reports whether id is a plain record identifier: letters, digits,
// dashes and underscores only.
func ValidID(id string) bool {
	return idPattern.MatchString(id)
}

// CheckID returns ErrValidation when id is not a plain record identifier.
func CheckID(id string) error {
	if !ValidID(id) {
		return fmt.Errorf("%w: invalid id %q", ErrValidation, id)
	}
	return nil
}
