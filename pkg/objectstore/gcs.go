package objectstore

import (
	"context"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"

	"github.com/visionlake/geocol/pkg/errors"
)

// GCSStore implements Store on a Google Cloud Storage bucket using the
// ambient application default credentials.
type GCSStore struct {
	client *storage.Client
	bucket *storage.BucketHandle
	name   string
	logger *zap.Logger
}

// NewGCS creates a GCS-backed store for the given bucket.
func NewGCS(ctx context.Context, bucket string, logger *zap.Logger) (*GCSStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to create GCS client")
	}
	return &GCSStore{
		client: client,
		bucket: client.Bucket(bucket),
		name:   bucket,
		logger: logger,
	}, nil
}

// Put implements Store.
func (g *GCSStore) Put(ctx context.Context, key string, data []byte) error {
	w := g.bucket.Object(key).NewWriter(ctx)
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return errors.Wrap(err, errors.ErrorTypeConnection, "failed to upload object "+key)
	}
	if err := w.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConnection, "failed to finalize object "+key)
	}
	return nil
}

// List implements Store.
func (g *GCSStore) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	it := g.bucket.Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConnection, "failed to list objects")
		}
		keys = append(keys, attrs.Name)
	}
	return keys, nil
}

// RemovePrefix implements Store.
func (g *GCSStore) RemovePrefix(ctx context.Context, prefix string) error {
	keys, err := g.List(ctx, prefix)
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := g.bucket.Object(key).Delete(ctx); err != nil {
			return errors.Wrap(err, errors.ErrorTypeConnection, "failed to delete object "+key)
		}
	}
	g.logger.Debug("removed prefix",
		zap.String("bucket", g.name),
		zap.String("prefix", prefix),
		zap.Int("objects", len(keys)))
	return nil
}

// Probe implements Store.
func (g *GCSStore) Probe(ctx context.Context) error {
	if _, err := g.bucket.Attrs(ctx); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConnection, "bucket not reachable: "+g.name)
	}
	return nil
}

// Close implements Store.
func (g *GCSStore) Close() error {
	return g.client.Close()
}
