package transferlog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalProvider archives transfer-log objects on a local or mounted
// filesystem: a containedPath traversal guard plus WalkDir listing,
// streaming writes from an io.Reader rather than copying between two
// file paths.
type LocalProvider struct {
	BasePath string
}

// NewLocalProvider creates a LocalProvider rooted at basePath.
func NewLocalProvider(basePath string) *LocalProvider {
	return &LocalProvider{BasePath: filepath.Clean(basePath)}
}

// containedPath resolves untrustedPath under basePath, rejecting any
// path that escapes it.
func containedPath(basePath, untrustedPath string) (string, error) {
	absBase, err := filepath.Abs(basePath)
	if err != nil {
		return "", fmt.Errorf("transferlog: resolve base path: %w", err)
	}
	joined := filepath.Join(absBase, filepath.FromSlash(untrustedPath))
	absJoined, err := filepath.Abs(joined)
	if err != nil {
		return "", fmt.Errorf("transferlog: resolve path: %w", err)
	}
	if !strings.HasPrefix(absJoined, absBase+string(filepath.Separator)) && absJoined != absBase {
		return "", fmt.Errorf("transferlog: path traversal detected: %q resolves outside %q", untrustedPath, absBase)
	}
	return absJoined, nil
}

func (p *LocalProvider) Upload(ctx context.Context, key string, r io.Reader, size int64) error {
	if p.BasePath == "" {
		return errors.New("transferlog: local provider base path is required")
	}
	dest, err := containedPath(p.BasePath, key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("transferlog: create archive directory: %w", err)
	}
	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("transferlog: create archive file: %w", err)
	}
	defer f.Close()

	_, err = io.Copy(f, io.LimitReader(r, size))
	if err != nil {
		return fmt.Errorf("transferlog: write archive file: %w", err)
	}
	return ctx.Err()
}

func (p *LocalProvider) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	src, err := containedPath(p.BasePath, key)
	if err != nil {
		return nil, err
	}
	return os.Open(src)
}

func (p *LocalProvider) List(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	root := p.BasePath
	if prefix != "" {
		var err error
		root, err = containedPath(p.BasePath, prefix)
		if err != nil {
			return nil, err
		}
	}
	if _, err := os.Stat(root); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("transferlog: stat prefix %s: %w", root, err)
	}

	var results []string
	walkErr := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(p.BasePath, path)
		if err != nil {
			return err
		}
		results = append(results, filepath.ToSlash(rel))
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("transferlog: list archive files: %w", walkErr)
	}
	return results, nil
}

func (p *LocalProvider) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target, err := containedPath(p.BasePath, key)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("transferlog: delete archive file: %w", err)
	}
	return nil
}
