package revsearch

import "github.com/himanishpuri/revsearch/pkg/revsearch/fingerprint"

// NoMatchLabel is reported in place of an identifier when nothing matched.
const NoMatchLabel = "No match found"

// MatchResult is the outcome of matching one query against the corpus.
type MatchResult struct {
	BestID   string               // Record name of the closest entry, empty when Found is false
	Found    bool                 // False when the corpus had no comparable entry
	Distance fingerprint.Distance // Differing elements; fingerprint.Infinite when not found
	Scanned  int                  // Entries that decoded and were scored
	Skipped  int                  // Entries skipped because they could not be read or decoded
}

// Label returns BestID, or NoMatchLabel when nothing matched.
func (r MatchResult) Label() string {
	if !r.Found {
		return NoMatchLabel
	}
	return r.BestID
}

// Stats summarises the corpus behind a Service.
type Stats struct {
	Tracks int64
	Store  string
}
