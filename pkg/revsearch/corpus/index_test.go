package corpus

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/himanishpuri/revsearch/pkg/revsearch/fingerprint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encode(t *testing.T, v fingerprint.Vector) []byte {
	t.Helper()
	raw, err := fingerprint.Encode(v, fingerprint.DefaultAlgorithm)
	require.NoError(t, err)
	return raw
}

func writeFile(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
}

func TestIndexFiltersByExtension(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.bin", encode(t, fingerprint.Vector{1, 2, 3}))
	writeFile(t, dir, "notes.txt", []byte("hello"))
	writeFile(t, dir, "b.bin.bak", encode(t, fingerprint.Vector{4}))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.bin"), 0o755))

	ix := NewIndex(NewDirStore(dir), Options{})
	names, err := ix.Names(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a.bin"}, names)
}

func TestIndexEntriesSoftErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.bin", encode(t, fingerprint.Vector{7, 8, 9}))
	writeFile(t, dir, "corrupt.bin", []byte("@@not a fingerprint@@"))
	writeFile(t, dir, "binary.bin", []byte{0xff, 0xfe, 0x00})

	ix := NewIndex(NewDirStore(dir), Options{Order: OrderName})
	entries, err := ix.Entries(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 3)

	byID := map[string]Entry{}
	for i, e := range entries {
		assert.Equal(t, i, e.Index)
		byID[e.ID] = e
	}

	assert.True(t, byID["good.bin"].OK())
	assert.Equal(t, fingerprint.Vector{7, 8, 9}, byID["good.bin"].Vector)

	for _, id := range []string{"corrupt.bin", "binary.bin"} {
		e := byID[id]
		assert.False(t, e.OK(), id)
		assert.True(t, errors.Is(e.Err, fingerprint.ErrDecode), id)
		assert.Nil(t, e.Vector)
	}
}

func TestIndexMissingDirIsUnavailable(t *testing.T) {
	ix := NewIndex(NewDirStore(filepath.Join(t.TempDir(), "missing")), Options{})

	_, err := ix.Entries(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestIndexOrderName(t *testing.T) {
	store := &memStore{
		names: []string{"c.bin", "a.bin", "b.bin"},
		data:  map[string][]byte{},
	}
	for _, n := range store.names {
		store.data[n] = encode(t, fingerprint.Vector{1})
	}

	names, err := NewIndex(store, Options{Order: OrderStore}).Names(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"c.bin", "a.bin", "b.bin"}, names)

	names, err = NewIndex(store, Options{Order: OrderName}).Names(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a.bin", "b.bin", "c.bin"}, names)
}

func TestIndexCompressedRecords(t *testing.T) {
	dir := t.TempDir()
	store := NewDirStore(dir)
	ctx := context.Background()
	want := fingerprint.Vector{10, 20, 30, 40}
	raw := encode(t, want)

	for _, c := range []string{CompressionNone, CompressionZstd, CompressionLZ4, CompressionXZ} {
		name, err := RecordName("track-"+c, c)
		require.NoError(t, err)
		data, err := CompressRecord(c, raw)
		require.NoError(t, err)
		require.NoError(t, store.Put(ctx, name, data))
	}

	entries, err := NewIndex(store, Options{Order: OrderName}).Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 4)
	for _, e := range entries {
		require.NoError(t, e.Err, e.ID)
		assert.Equal(t, want, e.Vector, e.ID)
	}
}

func TestIndexCanceledContext(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.bin", encode(t, fingerprint.Vector{1}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewIndex(NewDirStore(dir), Options{}).Entries(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseOrder(t *testing.T) {
	o, err := ParseOrder("name")
	require.NoError(t, err)
	assert.Equal(t, OrderName, o)

	o, err = ParseOrder("")
	require.NoError(t, err)
	assert.Equal(t, OrderStore, o)

	_, err = ParseOrder("random")
	assert.Error(t, err)
}

type memStore struct {
	names []string
	data  map[string][]byte
}

func (m *memStore) List(ctx context.Context) ([]string, error) {
	return append([]string(nil), m.names...), nil
}

func (m *memStore) Read(ctx context.Context, name string) ([]byte, error) {
	b, ok := m.data[name]
	if !ok {
		return nil, ErrNotFound
	}
	return b, nil
}
