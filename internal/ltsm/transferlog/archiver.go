package transferlog

import (
	"context"
	"fmt"
	"io"
	"path"
)

// Archiver records each file carried by a channel's transfer_files system
// command under the channel's own key prefix, so an operator can later
// list or retrieve what moved through a session.
type Archiver struct {
	provider Provider
}

// NewArchiver wraps provider with the channel/transfer key layout.
func NewArchiver(provider Provider) *Archiver {
	return &Archiver{provider: provider}
}

func keyFor(channel byte, transferID, filePath string) string {
	return path.Join(fmt.Sprintf("channel-%d", channel), transferID, path.Base(filePath))
}

// RecordFile archives one file's bytes under channel/transferID.
func (a *Archiver) RecordFile(ctx context.Context, channel byte, transferID, filePath string, r io.Reader, size int64) error {
	return a.provider.Upload(ctx, keyFor(channel, transferID, filePath), r, size)
}

// Retrieve returns a reader for a previously archived file.
func (a *Archiver) Retrieve(ctx context.Context, channel byte, transferID, filePath string) (io.ReadCloser, error) {
	return a.provider.Download(ctx, keyFor(channel, transferID, filePath))
}

// ListTransfer enumerates the files archived for one transfer.
func (a *Archiver) ListTransfer(ctx context.Context, channel byte, transferID string) ([]string, error) {
	prefix := path.Join(fmt.Sprintf("channel-%d", channel), transferID)
	return a.provider.List(ctx, prefix)
}

// Purge removes every archived file for one transfer.
func (a *Archiver) Purge(ctx context.Context, channel byte, transferID string) error {
	files, err := a.ListTransfer(ctx, channel, transferID)
	if err != nil {
		return err
	}
	for _, f := range files {
		if err := a.provider.Delete(ctx, f); err != nil {
			return err
		}
	}
	return nil
}
