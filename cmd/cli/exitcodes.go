package main

import (
	"context"
	"errors"

	"github.com/himanishpuri/revsearch/pkg/revsearch"
)

// Exit codes
const (
	ExitSuccess          = 0 // Success, including "no match found"
	ExitError            = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError      = 2 // Configuration error (bad revsearch.yaml, unknown store)
	ExitDataError        = 3 // Undecodable fingerprint or empty audio
	ExitStoreUnavailable = 4 // Corpus store could not be listed
	ExitExtraction       = 5 // ffmpeg or fpcalc failed
	ExitCanceled         = 130
)

func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, revsearch.ErrBadQuery), errors.Is(err, revsearch.ErrInvalidName):
		return ExitDataError
	case errors.Is(err, revsearch.ErrStoreUnavailable):
		return ExitStoreUnavailable
	case errors.Is(err, revsearch.ErrExtraction):
		return ExitExtraction
	case errors.Is(err, context.Canceled):
		return ExitCanceled
	default:
		return ExitError
	}
}
