package minio

import (
	"context"
	"os"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/himanishpuri/revsearch/pkg/revsearch/corpus"
)

func TestRelativeName(t *testing.T) {
	tests := []struct {
		prefix, key, want string
	}{
		{"", "a.bin", "a.bin"},
		{"fingerprints", "fingerprints/a.bin", "a.bin"},
		{"fingerprints/", "fingerprints/a.bin", "a.bin"},
		{"fingerprints", "fingerprints/", ""},
		{"fp", "fp/nested/b.bin", "nested/b.bin"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, relativeName(tt.prefix, tt.key), "prefix=%q key=%q", tt.prefix, tt.key)
	}
}

func TestListPrefix(t *testing.T) {
	assert.Equal(t, "", listPrefix(""))
	assert.Equal(t, "fp/", listPrefix("fp"))
	assert.Equal(t, "fp/", listPrefix("fp/"))
}

func TestKey(t *testing.T) {
	s := &Store{bucket: "corpus", prefix: "fingerprints/"}
	assert.Equal(t, "fingerprints/a.bin", s.key("a.bin"))

	s = &Store{bucket: "corpus"}
	assert.Equal(t, "a.bin", s.key("a.bin"))
}

// TestStoreIntegration requires a running MinIO instance named by
// REVSEARCH_TEST_MINIO_ENDPOINT (credentials default to minioadmin).
func TestStoreIntegration(t *testing.T) {
	endpoint := os.Getenv("REVSEARCH_TEST_MINIO_ENDPOINT")
	if endpoint == "" {
		t.Skip("REVSEARCH_TEST_MINIO_ENDPOINT not set")
	}
	access, secret := os.Getenv("MINIO_ACCESS_KEY"), os.Getenv("MINIO_SECRET_KEY")
	if access == "" {
		access, secret = "minioadmin", "minioadmin"
	}

	client, err := Dial(endpoint, access, secret, false)
	if err != nil {
		t.Skipf("MinIO client creation failed: %v", err)
	}

	ctx := context.Background()
	if _, err := client.ListBuckets(ctx); err != nil {
		t.Skipf("MinIO not available: %v", err)
	}

	bucket := "revsearch-test"
	exists, err := client.BucketExists(ctx, bucket)
	require.NoError(t, err)
	if !exists {
		require.NoError(t, client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))
	}

	store := NewStore(client, bucket, "it-prefix/")
	require.NoError(t, store.Put(ctx, "a.bin", []byte("AQAAAA")))
	t.Cleanup(func() { _ = store.Delete(context.Background(), "a.bin") })

	names, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, names, "a.bin")

	data, err := store.Read(ctx, "a.bin")
	require.NoError(t, err)
	assert.Equal(t, []byte("AQAAAA"), data)

	require.NoError(t, store.Delete(ctx, "a.bin"))
	_, err = store.Read(ctx, "a.bin")
	assert.ErrorIs(t, err, corpus.ErrNotFound)
}
