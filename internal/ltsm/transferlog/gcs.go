package transferlog

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// GCSProvider archives transfer-log objects to a Google Cloud Storage
// bucket.
type GCSProvider struct {
	Bucket string
	client *storage.Client
}

// NewGCSProvider creates a Provider writing to bucket using application
// default credentials.
func NewGCSProvider(ctx context.Context, bucket string) (*GCSProvider, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("transferlog: gcs client: %w", err)
	}
	return &GCSProvider{Bucket: bucket, client: client}, nil
}

func (p *GCSProvider) Upload(ctx context.Context, key string, r io.Reader, size int64) error {
	w := p.client.Bucket(p.Bucket).Object(key).NewWriter(ctx)
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("transferlog: gcs upload %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("transferlog: gcs upload %s: close: %w", key, err)
	}
	return nil
}

func (p *GCSProvider) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	r, err := p.client.Bucket(p.Bucket).Object(key).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("transferlog: gcs download %s: %w", key, err)
	}
	return r, nil
}

func (p *GCSProvider) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	it := p.client.Bucket(p.Bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		obj, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("transferlog: gcs list %s: %w", prefix, err)
		}
		keys = append(keys, obj.Name)
	}
	return keys, nil
}

func (p *GCSProvider) Delete(ctx context.Context, key string) error {
	if err := p.client.Bucket(p.Bucket).Object(key).Delete(ctx); err != nil {
		return fmt.Errorf("transferlog: gcs delete %s: %w", key, err)
	}
	return nil
}
