package extractor

import "errors"

var (
	// ErrInputNotFound is returned before any tier runs when the video is missing.
	ErrInputNotFound = errors.New("input video not found")
	// ErrWriteOutput wraps a failure to place the produced track at the output path.
	ErrWriteOutput = errors.New("write output failed")
)
