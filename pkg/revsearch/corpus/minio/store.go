// Package minio reads fingerprint records from a MinIO (or any S3-compatible)
// bucket through the MinIO client.
package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/himanishpuri/revsearch/pkg/revsearch/corpus"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Store implements corpus.Store over the objects below prefix in bucket.
type Store struct {
	client *minio.Client
	bucket string
	prefix string
}

// Dial creates a MinIO client with static credentials.
func Dial(endpoint, accessKey, secretKey string, secure bool) (*minio.Client, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("creating minio client for %s: %w", endpoint, err)
	}
	return client, nil
}

// NewStore creates a store over bucket. prefix is prepended to every key
// (e.g. "fingerprints/").
func NewStore(client *minio.Client, bucket, prefix string) *Store {
	return &Store{client: client, bucket: bucket, prefix: prefix}
}

func (s *Store) String() string { return "minio://" + path.Join(s.bucket, s.prefix) }

func (s *Store) key(name string) string {
	return path.Join(s.prefix, name)
}

// List returns object names relative to the prefix, in bucket listing order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	var names []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    listPrefix(s.prefix),
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("listing bucket %s: %w", s.bucket, obj.Err)
		}
		if rel := relativeName(s.prefix, obj.Key); rel != "" {
			names = append(names, rel)
		}
	}
	return names, nil
}

func (s *Store) Read(ctx context.Context, name string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.key(name), minio.GetObjectOptions{})
	if err != nil {
		return nil, s.mapErr(name, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, s.mapErr(name, err)
	}
	return data, nil
}

func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, s.key(name), bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "text/plain",
	})
	if err != nil {
		return fmt.Errorf("uploading %s: %w", name, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, name string) error {
	err := s.client.RemoveObject(ctx, s.bucket, s.key(name), minio.RemoveObjectOptions{})
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("removing %s: %w", name, err)
	}
	return nil
}

func (s *Store) mapErr(name string, err error) error {
	if isNotFound(err) {
		return fmt.Errorf("object %s: %w", name, corpus.ErrNotFound)
	}
	return fmt.Errorf("fetching %s: %w", name, err)
}

func isNotFound(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NotFound"
}

// listPrefix makes sure a non-empty prefix is matched as a directory.
func listPrefix(prefix string) string {
	if prefix == "" || strings.HasSuffix(prefix, "/") {
		return prefix
	}
	return prefix + "/"
}

// relativeName strips the store prefix from an object key.
func relativeName(prefix, key string) string {
	rel := strings.TrimPrefix(key, listPrefix(prefix))
	return strings.TrimPrefix(rel, "/")
}

var (
	_ corpus.Store  = (*Store)(nil)
	_ corpus.Writer = (*Store)(nil)
)
