package revsearch

import (
	"errors"

	"github.com/himanishpuri/revsearch/pkg/revsearch/corpus"
)

var (
	// ErrBadQuery means the query fingerprint could not be decoded, or the
	// uploaded clip held no audio.
	ErrBadQuery = errors.New("revsearch: bad query")
	// ErrStoreUnavailable means the corpus could not be enumerated.
	ErrStoreUnavailable = corpus.ErrStoreUnavailable
	// ErrExtraction means ffmpeg or fpcalc failed.
	ErrExtraction = errors.New("revsearch: fingerprint extraction failed")
	// ErrReadOnlyStore is returned by write operations on a store without corpus.Writer.
	ErrReadOnlyStore = errors.New("revsearch: store is read-only")
	ErrInvalidName   = errors.New("revsearch: invalid track name")
)
