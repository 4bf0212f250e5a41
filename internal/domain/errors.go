package domain

import "errors"

var (
	ErrValidation    = errors.New("validation error")
	ErrNotFound      = errors.New("not found")
	ErrRentalOverlap = errors.New("rental dates overlap an existing rental")
	ErrNotEditing    = errors.New("record is not in edit mode")
	ErrSubmitting    = errors.New("an update is already being submitted")
)
