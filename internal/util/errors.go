package util

import "errors"

var (
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrObjectNotFound    = errors.New("object not found in storage")
	ErrSourceUnavailable = errors.New("clause source database unavailable")
)
