package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	ErrStatusConflict = errors.New("booking status changed concurrently")

	ErrInvalidTimeRange = errors.New("end date must be later than start date")
)
