package convert

import "errors"

var (
	ErrInvalidDocument     = errors.New("invalid document")
	ErrUnsupportedPlatform = errors.New("unsupported platform")
)
