package match

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/himanishpuri/revsearch/pkg/revsearch/corpus"
	"github.com/himanishpuri/revsearch/pkg/revsearch/fingerprint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource struct {
	entries []corpus.Entry
	err     error
}

func (s staticSource) Entries(ctx context.Context) ([]corpus.Entry, error) {
	return s.entries, s.err
}

func entriesOf(vectors ...fingerprint.Vector) []corpus.Entry {
	out := make([]corpus.Entry, len(vectors))
	for i, v := range vectors {
		out[i] = corpus.Entry{Index: i, ID: fmt.Sprintf("e%d.bin", i), Vector: v}
	}
	return out
}

func TestTieScenario(t *testing.T) {
	src := staticSource{entries: entriesOf(
		fingerprint.Vector{1, 2, 3},
		fingerprint.Vector{1, 2, 4},
	)}

	res, err := New(src, Options{}).FindBestMatch(context.Background(), fingerprint.Vector{1, 2, 3})
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, "e0.bin", res.BestID)
	assert.Equal(t, fingerprint.Distance(0), res.Distance)
	assert.Equal(t, 2, res.Scanned)
}

func TestFirstEntryWinsExactTie(t *testing.T) {
	src := staticSource{entries: entriesOf(
		fingerprint.Vector{9, 9, 9},
		fingerprint.Vector{1, 2, 0},
		fingerprint.Vector{1, 0, 3},
		fingerprint.Vector{0, 2, 3},
	)}

	for _, workers := range []int{1, 2, 3, 8} {
		res, err := New(src, Options{Workers: workers}).FindBestMatch(context.Background(), fingerprint.Vector{1, 2, 3})
		require.NoError(t, err)
		assert.Equal(t, "e1.bin", res.BestID, "workers=%d", workers)
		assert.Equal(t, fingerprint.Distance(1), res.Distance)
	}
}

func TestEmptyCorpus(t *testing.T) {
	res, err := New(staticSource{}, Options{}).FindBestMatch(context.Background(), fingerprint.Vector{1})
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Empty(t, res.BestID)
	assert.True(t, res.Distance.IsInfinite())
	assert.Equal(t, -1, res.BestIndex)
}

func TestAllEntriesUnusable(t *testing.T) {
	entries := entriesOf(nil, fingerprint.Vector{})
	entries[0].Err = errors.New("broken")

	res, err := New(staticSource{entries: entries}, Options{}).FindBestMatch(context.Background(), fingerprint.Vector{1, 2})
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.True(t, res.Distance.IsInfinite())
	assert.Equal(t, 1, res.Skipped)
	assert.True(t, res.SkippedIndices.Contains(0))
}

func TestSourceErrorPropagates(t *testing.T) {
	boom := fmt.Errorf("%w: disk gone", corpus.ErrStoreUnavailable)
	res, err := New(staticSource{err: boom}, Options{}).FindBestMatch(context.Background(), fingerprint.Vector{1})
	require.Error(t, err)
	assert.ErrorIs(t, err, corpus.ErrStoreUnavailable)
	assert.False(t, res.Found)
}

func TestSkipOnCorruption(t *testing.T) {
	dir := t.TempDir()
	query := fingerprint.Vector{5, 6, 7, 8, 9}
	raw, err := fingerprint.Encode(query, fingerprint.DefaultAlgorithm)
	require.NoError(t, err)

	other, err := fingerprint.Encode(fingerprint.Vector{5, 0, 0, 0, 0}, fingerprint.DefaultAlgorithm)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "aaa-corrupt.bin"), []byte("AQAABQ"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bbb-other.bin"), other, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ccc-duplicate.bin"), raw, 0o644))

	ix := corpus.NewIndex(corpus.NewDirStore(dir), corpus.Options{Order: corpus.OrderName})
	res, err := New(ix, Options{}).FindBestMatch(context.Background(), query)
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, "ccc-duplicate.bin", res.BestID)
	assert.Equal(t, fingerprint.Distance(0), res.Distance)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 2, res.Scanned)
	assert.True(t, res.SkippedIndices.Contains(0))
}

func bruteForce(query fingerprint.Vector, entries []corpus.Entry) (int, fingerprint.Distance) {
	bestPos, bestScore := -1, fingerprint.Infinite
	for i, e := range entries {
		if e.Err != nil {
			continue
		}
		m := min(len(query), len(e.Vector))
		if m == 0 {
			continue
		}
		d := 0
		for k := 0; k < m; k++ {
			if query[k] != e.Vector[k] {
				d++
			}
		}
		if fingerprint.Distance(d) < bestScore {
			bestPos, bestScore = i, fingerprint.Distance(d)
		}
	}
	return bestPos, bestScore
}

func TestScaleAgainstBruteForce(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping scale scan in short mode")
	}
	rng := rand.New(rand.NewPCG(2024, 10))

	query := make(fingerprint.Vector, 200)
	for i := range query {
		query[i] = rng.Uint32() % 4
	}

	entries := make([]corpus.Entry, 10000)
	for i := range entries {
		v := make(fingerprint.Vector, 200+rng.IntN(101))
		for k := range v {
			v[k] = rng.Uint32() % 4
		}
		entries[i] = corpus.Entry{Index: i, ID: fmt.Sprintf("track-%05d.bin", i), Vector: v}
		if i%997 == 0 {
			entries[i] = corpus.Entry{Index: i, ID: entries[i].ID, Err: errors.New("corrupt")}
		}
	}

	wantPos, wantScore := bruteForce(query, entries)
	require.GreaterOrEqual(t, wantPos, 0)

	for _, workers := range []int{1, 4, 16} {
		res, err := New(staticSource{entries: entries}, Options{Workers: workers}).FindBestMatch(context.Background(), query)
		require.NoError(t, err)
		assert.Equal(t, entries[wantPos].ID, res.BestID, "workers=%d", workers)
		assert.Equal(t, wantScore, res.Distance, "workers=%d", workers)
		assert.Equal(t, 11, res.Skipped)
	}
}

func TestParallelMatchesSequentialWithManyTies(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	query := fingerprint.Vector{1, 1, 1, 1}

	for round := 0; round < 50; round++ {
		entries := make([]corpus.Entry, 1+rng.IntN(300))
		for i := range entries {
			v := fingerprint.Vector{rng.Uint32() % 2, rng.Uint32() % 2, 1, 1}
			entries[i] = corpus.Entry{Index: i, ID: fmt.Sprintf("%d.bin", i), Vector: v}
		}

		seq, err := New(staticSource{entries: entries}, Options{Workers: 1}).FindBestMatch(context.Background(), query)
		require.NoError(t, err)
		par, err := New(staticSource{entries: entries}, Options{Workers: 7}).FindBestMatch(context.Background(), query)
		require.NoError(t, err)

		assert.Equal(t, seq.BestID, par.BestID)
		assert.Equal(t, seq.Distance, par.Distance)
		assert.Equal(t, seq.BestIndex, par.BestIndex)
	}
}

func TestBitHammingScorer(t *testing.T) {
	src := staticSource{entries: entriesOf(
		fingerprint.Vector{0xFF, 0xFF},
		fingerprint.Vector{0x01, 0x00},
	)}

	// Element counting ties at 2 differing elements and keeps the first entry;
	// bit counting prefers the entry with fewer flipped bits.
	res, err := New(src, Options{}).FindBestMatch(context.Background(), fingerprint.Vector{0x00, 0x01})
	require.NoError(t, err)
	assert.Equal(t, "e0.bin", res.BestID)

	res, err = New(src, Options{Scorer: fingerprint.BitHamming{}}).FindBestMatch(context.Background(), fingerprint.Vector{0x00, 0x01})
	require.NoError(t, err)
	assert.Equal(t, "e1.bin", res.BestID)
	assert.Equal(t, fingerprint.Distance(2), res.Distance)
}

func TestCanceledScan(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := staticSource{entries: entriesOf(fingerprint.Vector{1}, fingerprint.Vector{2}, fingerprint.Vector{3})}
	for _, workers := range []int{1, 2} {
		_, err := New(src, Options{Workers: workers}).FindBestMatch(ctx, fingerprint.Vector{1})
		assert.ErrorIs(t, err, context.Canceled)
	}
}
