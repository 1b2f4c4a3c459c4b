// Package match scans a corpus for the entry closest to a query fingerprint.
package match

import (
	"context"
	"runtime"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/himanishpuri/revsearch/pkg/revsearch/corpus"
	"github.com/himanishpuri/revsearch/pkg/revsearch/fingerprint"
)

// checkEvery is how many entries a worker scores between context checks.
const checkEvery = 1024

// Source yields corpus entries in enumeration order. *corpus.Index implements it.
type Source interface {
	Entries(ctx context.Context) ([]corpus.Entry, error)
}

type Logger interface {
	Warnf(format string, args ...any)
	Debugf(format string, args ...any)
}

// Result is the outcome of one scan.
type Result struct {
	// BestID is the identifier of the winning entry; empty when Found is false.
	BestID   string
	Found    bool
	Distance fingerprint.Distance
	// BestIndex is the enumeration index of the winner, -1 when nothing matched.
	BestIndex int

	Scanned int
	Skipped int
	// SkippedIndices holds the enumeration index of every entry that failed to decode.
	SkippedIndices *roaring.Bitmap
}

type Options struct {
	Scorer fingerprint.Scorer
	// Workers > 1 splits the scan across goroutines. The winner is the same
	// as for a sequential scan.
	Workers int
	Logger  Logger
}

type Engine struct {
	src     Source
	scorer  fingerprint.Scorer
	workers int
	log     Logger
}

func New(src Source, opts Options) *Engine {
	if opts.Scorer == nil {
		opts.Scorer = fingerprint.ElementHamming{}
	}
	if opts.Workers < 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.Workers == 0 {
		opts.Workers = 1
	}
	if opts.Logger == nil {
		opts.Logger = nopLogger{}
	}
	return &Engine{src: src, scorer: opts.Scorer, workers: opts.Workers, log: opts.Logger}
}

// FindBestMatch enumerates the source and scans it against query. Only a
// failure to enumerate (or cancellation) is returned as an error.
func (e *Engine) FindBestMatch(ctx context.Context, query fingerprint.Vector) (Result, error) {
	entries, err := e.src.Entries(ctx)
	if err != nil {
		return noMatch(), err
	}
	return e.Scan(ctx, query, entries)
}

// Scan scores already-loaded entries. Entries must be in enumeration order.
// Entries with Err set are skipped. Ties go to the earliest entry.
func (e *Engine) Scan(ctx context.Context, query fingerprint.Vector, entries []corpus.Entry) (Result, error) {
	res := noMatch()

	var bytes uint64
	for _, ent := range entries {
		if ent.Err != nil {
			res.Skipped++
			res.SkippedIndices.Add(uint32(ent.Index))
			e.log.Warnf("Skipping corpus entry %s: %v", ent.ID, ent.Err)
			continue
		}
		res.Scanned++
		bytes += uint64(ent.Size)
	}

	var best candidate
	var err error
	if e.workers > 1 && len(entries) > e.workers {
		best, err = e.scanParallel(ctx, query, entries)
	} else {
		best, err = e.scanRange(ctx, query, entries, 0, len(entries))
	}
	if err != nil {
		return noMatch(), err
	}

	if best.pos >= 0 {
		winner := entries[best.pos]
		res.BestID = winner.ID
		res.BestIndex = winner.Index
		res.Found = true
		res.Distance = best.score
	}

	e.log.Debugf("Scanned %d records (%s), skipped %d, best=%q distance=%s",
		res.Scanned, humanize.Bytes(bytes), res.Skipped, res.BestID, res.Distance)
	return res, nil
}

// candidate is a position in the entries slice and its score. pos -1 means none.
type candidate struct {
	pos   int
	score fingerprint.Distance
}

func (e *Engine) scanRange(ctx context.Context, query fingerprint.Vector, entries []corpus.Entry, lo, hi int) (candidate, error) {
	best := candidate{pos: -1, score: fingerprint.Infinite}
	for i := lo; i < hi; i++ {
		if (i-lo)%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return best, err
			}
		}
		ent := entries[i]
		if ent.Err != nil {
			continue
		}
		// Strict < keeps the first entry on ties.
		if score := e.scorer.Score(query, ent.Vector); score < best.score {
			best = candidate{pos: i, score: score}
		}
	}
	return best, nil
}

// scanParallel splits entries into contiguous chunks, one per worker. Each
// chunk reduces to its own first minimum; merging chunks in order with a
// strict < yields the lowest score at the lowest position, i.e. exactly the
// sequential winner regardless of completion order.
func (e *Engine) scanParallel(ctx context.Context, query fingerprint.Vector, entries []corpus.Entry) (candidate, error) {
	chunk := (len(entries) + e.workers - 1) / e.workers
	results := make([]candidate, 0, e.workers)
	for lo := 0; lo < len(entries); lo += chunk {
		results = append(results, candidate{pos: -1, score: fingerprint.Infinite})
	}

	g, gctx := errgroup.WithContext(ctx)
	for w := range results {
		lo := w * chunk
		hi := min(lo+chunk, len(entries))
		g.Go(func() error {
			c, err := e.scanRange(gctx, query, entries, lo, hi)
			if err != nil {
				return err
			}
			results[w] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return candidate{pos: -1, score: fingerprint.Infinite}, err
	}

	best := candidate{pos: -1, score: fingerprint.Infinite}
	for _, c := range results {
		if c.pos >= 0 && c.score < best.score {
			best = c
		}
	}
	return best, nil
}

func noMatch() Result {
	return Result{
		Distance:       fingerprint.Infinite,
		BestIndex:      -1,
		SkippedIndices: roaring.New(),
	}
}

type nopLogger struct{}

func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Debugf(string, ...any) {}
