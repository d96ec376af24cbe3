// Package filestore provides local disk storage for uploaded files.
package filestore

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/mtembezi/maktaba/core"
)

const tmpFilePrefix = ".tmp-"

var _ core.FileStore = (*DiskStore)(nil) // interface compliance check

// DiskStore keeps files under a root directory on the local filesystem.
// Writes go through a temp file in the destination directory and an
// os.Rename so that readers never observe a partially written file.
type DiskStore struct {
	root string
}

func NewDiskStore(root string) (*DiskStore, error) {
	root = filepath.Clean(root)
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, errors.Wrapf(err, "creating storage root %s", root)
	}
	return &DiskStore{root: root}, nil
}

func (store *DiskStore) Save(ctx context.Context, key string, r io.Reader) (int64, error) {
	dst, err := store.path(key)
	if err != nil {
		return 0, err
	}

	dir := filepath.Dir(dst)
	if err = os.MkdirAll(dir, 0755); err != nil {
		return 0, errors.Wrapf(err, "creating directory %s", dir)
	}

	// the temp file lives in the destination directory so the rename stays on one filesystem
	tmp, err := os.CreateTemp(dir, tmpFilePrefix+"*")
	if err != nil {
		return 0, errors.Wrap(err, "creating temp file")
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return 0, errors.Wrap(err, "writing temp file")
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return 0, errors.Wrap(err, "syncing temp file")
	}
	if err = tmp.Close(); err != nil {
		return 0, errors.Wrap(err, "closing temp file")
	}
	if err = os.Chmod(tmp.Name(), 0644); err != nil {
		return 0, errors.Wrap(err, "setting file mode")
	}
	if err = os.Rename(tmp.Name(), dst); err != nil {
		return 0, errors.Wrapf(err, "renaming temp file to %s", dst)
	}
	return n, nil
}

func (store *DiskStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	src, err := store.path(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(src)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, core.ErrFileNotFound
		}
		return nil, errors.Wrapf(err, "opening %s", src)
	}
	return f, nil
}

func (store *DiskStore) Remove(ctx context.Context, key string) error {
	src, err := store.path(key)
	if err != nil {
		return err
	}
	if err = os.Remove(src); err != nil {
		// removing a missing file is not an error
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "removing %s", src)
	}
	return nil
}

// path resolves key to an absolute location under the store root.
// Keys are slash-separated relative paths; anything that could escape
// the root is rejected.
func (store *DiskStore) path(key string) (string, error) {
	if key == "" || strings.Contains(key, "\\") || path.Clean("/"+key) != "/"+key {
		return "", errors.Errorf("invalid file key %q", key)
	}
	return filepath.Join(store.root, filepath.FromSlash(key)), nil
}
