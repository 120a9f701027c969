package photo

import (
	"errors"
	"fmt"
)

// AccessError is returned when a photo cannot be opened or read.
type AccessError struct {
	Path string
	Err  error
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("access %s: %v", e.Path, e.Err)
}

func (e *AccessError) Unwrap() error {
	return e.Err
}

// DecodeError is returned when a photo is not a valid JPEG or its EXIF data
// is malformed.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsUnreadable reports whether err is a per-file failure from Locate.
func IsUnreadable(err error) bool {
	var accessErr *AccessError
	var decodeErr *DecodeError
	return errors.As(err, &accessErr) || errors.As(err, &decodeErr)
}
