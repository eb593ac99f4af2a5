// Package transferlog archives LTSM file-transfer payloads (the
// transfer_files system command) to a pluggable object store so a
// connector operator can audit what left the session. Provider exposes
// Upload/Download/List/Delete over a bucket/base path; implementations
// stream io.Reader uploads of transfer chunks onto real cloud SDKs rather
// than whole-file path-to-path copies.
package transferlog

import (
	"context"
	"io"
)

// Provider archives and retrieves transfer-log objects under a key
// namespace (channel id + transfer id + file path).
type Provider interface {
	// Upload streams size bytes from r to key.
	Upload(ctx context.Context, key string, r io.Reader, size int64) error
	// Download returns a reader for the object stored at key.
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	// List enumerates keys under prefix.
	List(ctx context.Context, prefix string) ([]string, error)
	// Delete removes the object at key.
	Delete(ctx context.Context, key string) error
}
