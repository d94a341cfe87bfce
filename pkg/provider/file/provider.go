// Package file stores objects as files under a local directory.
//
// The bucket is a directory below BaseDir and keys are slash-separated
// paths inside it, so <base>/developer-task/b-wing/a.txt holds the object
// b-wing/a.txt. It lets every bwing command run without S3.
package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/3leaps/bwing/pkg/provider"
)

// MaxKeys caps one listing, mirroring the S3 page size.
const MaxKeys = 1000

// Provider implements provider.ObjectStore for local filesystem paths.
type Provider struct {
	bucket string
	root   string
}

var _ provider.ObjectStore = (*Provider)(nil)

type Config struct {
	BaseDir string
	Bucket  string
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.BaseDir) == "" {
		return fmt.Errorf("base dir is required")
	}
	if strings.TrimSpace(c.Bucket) == "" {
		return fmt.Errorf("bucket is required")
	}
	if strings.ContainsAny(c.Bucket, `/\`) || c.Bucket == "." || c.Bucket == ".." {
		return fmt.Errorf("invalid bucket name %q", c.Bucket)
	}
	return nil
}

// New returns a provider rooted at BaseDir/Bucket. The bucket directory
// does not have to exist yet; operations report ErrBucketNotFound until it does.
func New(cfg Config) (*Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Provider{
		bucket: cfg.Bucket,
		root:   filepath.Join(filepath.Clean(cfg.BaseDir), cfg.Bucket),
	}, nil
}

// Root returns the bucket directory.
func (p *Provider) Root() string {
	return p.root
}

// ListObjects returns up to MaxKeys sorted keys starting with prefix.
func (p *Provider) ListObjects(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := p.checkBucket("ListObjects"); err != nil {
		return nil, err
	}

	keys, err := p.collectKeys(ctx, prefix)
	if err != nil {
		return nil, p.wrapError("ListObjects", prefix, err)
	}
	sort.Strings(keys)
	if len(keys) > MaxKeys {
		keys = keys[:MaxKeys]
	}
	return keys, nil
}

// PutObject writes body to key atomically via a temp file and rename.
func (p *Provider) PutObject(ctx context.Context, key string, body io.Reader, opts provider.PutOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.checkBucket("PutObject"); err != nil {
		return err
	}

	full, err := p.fullPath(key)
	if err != nil {
		return p.wrapError("PutObject", key, err)
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return p.wrapError("PutObject", key, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(full), ".bwing-put-*")
	if err != nil {
		return p.wrapError("PutObject", key, err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	n, err := io.Copy(tmp, body)
	if err != nil {
		return p.wrapError("PutObject", key, err)
	}
	if opts.ContentLength >= 0 && n != opts.ContentLength {
		return p.wrapError("PutObject", key, fmt.Errorf("wrote %d bytes, expected %d", n, opts.ContentLength))
	}
	if err := tmp.Close(); err != nil {
		return p.wrapError("PutObject", key, err)
	}
	if err := os.Rename(tmpName, full); err != nil {
		return p.wrapError("PutObject", key, err)
	}
	return nil
}

// DeleteObject removes key. Deleting a missing key succeeds, as on S3.
func (p *Provider) DeleteObject(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.checkBucket("DeleteObject"); err != nil {
		return err
	}

	full, err := p.fullPath(key)
	if err != nil {
		return p.wrapError("DeleteObject", key, err)
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return p.wrapError("DeleteObject", key, err)
	}
	return nil
}

func (p *Provider) checkBucket(op string) error {
	st, err := os.Stat(p.root)
	if err == nil && st.IsDir() {
		return nil
	}
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return &provider.ProviderError{Op: op, Provider: provider.ProviderFile, Bucket: p.bucket, Err: provider.ErrBucketNotFound}
	}
	return p.wrapError(op, "", err)
}

// fullPath maps key to a path under root, rejecting traversal.
func (p *Provider) fullPath(key string) (string, error) {
	key = strings.TrimPrefix(key, "/")
	clean := strings.TrimPrefix(filepath.Clean("/"+key), "/")
	if clean == "" || clean != strings.TrimSuffix(key, "/") {
		return "", fmt.Errorf("invalid key path %q", key)
	}
	return filepath.Join(p.root, filepath.FromSlash(clean)), nil
}

// collectKeys walks the deepest directory named by prefix and keeps the
// files whose keys start with prefix.
func (p *Provider) collectKeys(ctx context.Context, prefix string) ([]string, error) {
	dir := p.root
	if i := strings.LastIndex(prefix, "/"); i >= 0 {
		full, err := p.fullPath(prefix[:i+1])
		if err != nil {
			return nil, err
		}
		dir = full
	}
	if _, err := os.Stat(dir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, err
	}

	keys := []string{}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".bwing-put-") {
			return nil
		}
		rel, err := filepath.Rel(p.root, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	return keys, err
}

func (p *Provider) wrapError(op, key string, err error) error {
	wrapped := &provider.ProviderError{Op: op, Provider: provider.ProviderFile, Bucket: p.bucket, Key: key, Err: err}
	// Normalize common filesystem errors to provider sentinels.
	switch {
	case errors.Is(err, fs.ErrNotExist):
		wrapped.Err = errors.Join(provider.ErrNotFound, err)
	case errors.Is(err, fs.ErrPermission):
		wrapped.Err = errors.Join(provider.ErrAccessDenied, err)
	}
	return wrapped
}
