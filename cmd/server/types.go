package main

import (
	"errors"
	"strings"

	"github.com/himanishpuri/revsearch/pkg/revsearch/fingerprint"
)

// MaxFingerprintLength bounds the base64 text accepted by /api/match/fingerprint
// (about 10 minutes of audio at the default fpcalc settings).
const MaxFingerprintLength = 1 << 20

// ReverseSearchResponse is returned by both match endpoints. Distance is
// null when nothing comparable was found.
type ReverseSearchResponse struct {
	BestMatch string               `json:"best_match"`
	Distance  fingerprint.Distance `json:"distance"`
	Scanned   int                  `json:"scanned"`
	Skipped   int                  `json:"skipped,omitempty"`
}

// MatchFingerprintRequest is the request body for POST /api/match/fingerprint
type MatchFingerprintRequest struct {
	// Fingerprint is the FINGERPRINT= value printed by fpcalc
	Fingerprint string `json:"fingerprint"`
}

func (r *MatchFingerprintRequest) Validate() error {
	r.Fingerprint = strings.TrimSpace(r.Fingerprint)
	if r.Fingerprint == "" {
		return errors.New("fingerprint is required")
	}
	if len(r.Fingerprint) > MaxFingerprintLength {
		return errors.New("fingerprint is too long")
	}
	return nil
}

type ListTracksResponse struct {
	Tracks []string `json:"tracks"`
	Count  int      `json:"count"`
}

type AddTrackResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

type DeleteTrackResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// MetricsResponse provides server health and corpus metrics
type MetricsResponse struct {
	Status     string `json:"status"`
	Store      string `json:"store"`
	TrackCount int64  `json:"track_count"`
	RateLimit  string `json:"rate_limit"`
}

// ErrorResponse is the standard error response format. Error carries the
// human-readable message, e.g. {"error": "No file uploaded", "code": 400}.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code,omitempty"`
}
