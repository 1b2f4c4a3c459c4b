package corpus

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/himanishpuri/revsearch/pkg/revsearch/fingerprint"
)

// Order controls the enumeration order of Index entries, which is also the
// tie-break order of a match scan.
type Order int

const (
	// OrderStore keeps whatever order the store lists records in.
	OrderStore Order = iota
	// OrderName sorts records lexicographically by name.
	OrderName
)

// ParseOrder maps configuration values ("store", "name") to an Order.
func ParseOrder(s string) (Order, error) {
	switch s {
	case "", "store":
		return OrderStore, nil
	case "name":
		return OrderName, nil
	default:
		return OrderStore, fmt.Errorf("unknown corpus order %q (want store or name)", s)
	}
}

func (o Order) String() string {
	if o == OrderName {
		return "name"
	}
	return "store"
}

// Entry is one decoded corpus record. Err is set when the record could not be
// read or decoded; Vector is then nil and the entry must be skipped.
type Entry struct {
	Index  int
	ID     string
	Vector fingerprint.Vector
	Size   int
	Err    error
}

// OK reports whether the entry decoded successfully.
func (e Entry) OK() bool { return e.Err == nil }

// Options configures an Index.
type Options struct {
	Order Order
	// FetchConcurrency bounds parallel record reads. Defaults to GOMAXPROCS.
	FetchConcurrency int
}

// Index exposes a Store as a sequence of decoded entries. It reads the store
// on every call and keeps no state between scans.
type Index struct {
	store Store
	opts  Options
}

func NewIndex(store Store, opts Options) *Index {
	if opts.FetchConcurrency <= 0 {
		opts.FetchConcurrency = runtime.GOMAXPROCS(0)
	}
	return &Index{store: store, opts: opts}
}

// Store returns the underlying store.
func (ix *Index) Store() Store { return ix.store }

// Names lists the fingerprint records in enumeration order. Any listing
// failure is reported as ErrStoreUnavailable.
func (ix *Index) Names(ctx context.Context) ([]string, error) {
	all, err := ix.store.List(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	names := make([]string, 0, len(all))
	for _, name := range all {
		if IsRecordName(name) {
			names = append(names, name)
		}
	}
	if ix.opts.Order == OrderName {
		sort.Strings(names)
	}
	return names, nil
}

// Entries reads and decodes every record. Per-record failures are reported in
// Entry.Err; only enumeration failure or cancellation is returned as an error.
// Entries are returned in enumeration order with Index set to their position.
func (ix *Index) Entries(ctx context.Context) ([]Entry, error) {
	names, err := ix.Names(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.opts.FetchConcurrency)
	for i, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			entries[i] = ix.load(gctx, i, name)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func (ix *Index) load(ctx context.Context, i int, name string) Entry {
	e := Entry{Index: i, ID: name}

	data, err := ix.store.Read(ctx, name)
	if err != nil {
		e.Err = fmt.Errorf("reading %s: %w", name, err)
		return e
	}
	e.Size = len(data)

	raw, err := OpenRecord(name, data)
	if err != nil {
		e.Err = err
		return e
	}
	v, err := fingerprint.Decode(raw)
	if err != nil {
		e.Err = fmt.Errorf("%s: %w", name, err)
		return e
	}
	e.Vector = v
	return e
}
