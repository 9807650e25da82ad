package gcp

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/betoojeda/tienda-facil/internal/pkg/dbctx"
	"github.com/betoojeda/tienda-facil/internal/pkg/logger"
)

// diskBucketService keeps objects under a local directory that the HTTP
// server exposes at urlPrefix.
type diskBucketService struct {
	log       *logger.Logger
	root      string
	urlPrefix string
}

func NewDiskBucketService(log *logger.Logger, root, urlPrefix string) (BucketService, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	serviceLog := log.With("service", "DiskBucketService")
	serviceLog.Info("Object storage initialized", "mode", ObjectStorageModeDisk, "dir", root)
	return &diskBucketService{
		log:       serviceLog,
		root:      root,
		urlPrefix: "/" + strings.Trim(urlPrefix, "/"),
	}, nil
}

func (d *diskBucketService) resolve(key string) (string, error) {
	clean := path.Clean("/" + strings.TrimSpace(key))
	if clean == "/" {
		return "", fmt.Errorf("empty object key")
	}
	return filepath.Join(d.root, filepath.FromSlash(clean)), nil
}

func (d *diskBucketService) UploadFile(dbc dbctx.Context, key string, file io.Reader) error {
	p, err := d.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create object dir: %w", err)
	}
	tmp := p + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create object: %w", err)
	}
	if _, err := io.Copy(f, file); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("write object: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close object: %w", err)
	}
	return os.Rename(tmp, p)
}

func (d *diskBucketService) DeleteFile(dbc dbctx.Context, key string) error {
	p, err := d.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete object %q: %w", key, err)
	}
	return nil
}

func (d *diskBucketService) GetPublicURL(key string) string {
	return d.urlPrefix + path.Clean("/"+strings.TrimSpace(key))
}
