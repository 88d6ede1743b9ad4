package apperrors

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("not found")
	ErrMissingCredentials = errors.New("missing credentials")
	ErrUnexpectedResponse = errors.New("unexpected response")
	ErrEncoderUnavailable = errors.New("video encoder unavailable")
)
