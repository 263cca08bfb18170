package domain

import "errors"

var (
	// ErrNotFound signals an unknown video, job or scan id.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument signals malformed caller input, such as a bad
	// channel identifier or a scan with no categories selected.
	ErrInvalidArgument = errors.New("invalid argument")
)
