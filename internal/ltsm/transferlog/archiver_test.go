package transferlog

import (
	"context"
	"sort"
	"strings"
	"testing"
)

func TestLocalProviderUploadDownloadRoundTrip(t *testing.T) {
	provider := NewLocalProvider(t.TempDir())
	ctx := context.Background()

	body := "hello transfer log"
	if err := provider.Upload(ctx, "channel-1/t1/a.txt", strings.NewReader(body), int64(len(body))); err != nil {
		t.Fatalf("upload: %v", err)
	}

	r, err := provider.Download(ctx, "channel-1/t1/a.txt")
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	defer r.Close()

	buf := make([]byte, len(body))
	if _, err := r.Read(buf); err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(buf) != body {
		t.Fatalf("got %q, want %q", buf, body)
	}
}

func TestLocalProviderRejectsPathTraversal(t *testing.T) {
	provider := NewLocalProvider(t.TempDir())
	ctx := context.Background()

	err := provider.Upload(ctx, "../../etc/passwd", strings.NewReader("x"), 1)
	if err == nil {
		t.Fatal("expected path traversal to be rejected")
	}
}

func TestArchiverListAndPurgeTransfer(t *testing.T) {
	provider := NewLocalProvider(t.TempDir())
	archiver := NewArchiver(provider)
	ctx := context.Background()

	if err := archiver.RecordFile(ctx, 3, "xfer1", "a.txt", strings.NewReader("aaa"), 3); err != nil {
		t.Fatalf("record a: %v", err)
	}
	if err := archiver.RecordFile(ctx, 3, "xfer1", "b.txt", strings.NewReader("bb"), 2); err != nil {
		t.Fatalf("record b: %v", err)
	}

	files, err := archiver.ListTransfer(ctx, 3, "xfer1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	sort.Strings(files)
	if len(files) != 2 {
		t.Fatalf("files = %v, want 2 entries", files)
	}

	if err := archiver.Purge(ctx, 3, "xfer1"); err != nil {
		t.Fatalf("purge: %v", err)
	}
	remaining, err := archiver.ListTransfer(ctx, 3, "xfer1")
	if err != nil {
		t.Fatalf("list after purge: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("remaining = %v, want none after purge", remaining)
	}
}
