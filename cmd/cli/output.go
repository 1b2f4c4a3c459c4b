package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/himanishpuri/revsearch/pkg/revsearch"
	"github.com/himanishpuri/revsearch/pkg/revsearch/fingerprint"
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputHuman writes a human-readable string to stdout.
func outputHuman(format string, args ...any) {
	fmt.Printf(format, args...)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg, Code: code})
	}
	os.Exit(code)
}

// readInput reads a file argument, or stdin when the argument is "-".
func readInput(arg string) ([]byte, error) {
	if arg == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(arg)
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// MatchResponse mirrors the /reverse_search response body.
type MatchResponse struct {
	BestMatch string               `json:"best_match"`
	Distance  fingerprint.Distance `json:"distance"`
	Scanned   int                  `json:"scanned"`
	Skipped   int                  `json:"skipped"`
}

func printMatch(res revsearch.MatchResult) {
	if !humanOutput {
		outputJSON(MatchResponse{
			BestMatch: res.Label(),
			Distance:  res.Distance,
			Scanned:   res.Scanned,
			Skipped:   res.Skipped,
		})
		return
	}

	if !res.Found {
		outputHuman("%s (%d records scanned)\n", revsearch.NoMatchLabel, res.Scanned)
	} else {
		outputHuman("Best match: %s\n", res.BestID)
		outputHuman("Distance:   %s\n", res.Distance)
		outputHuman("Scanned:    %d records\n", res.Scanned)
	}
	if res.Skipped > 0 {
		outputHuman("Skipped:    %d unreadable records\n", res.Skipped)
	}
}
