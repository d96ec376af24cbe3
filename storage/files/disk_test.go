package filestore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mtembezi/maktaba/core"
)

func TestDiskStoreSaveOpenRemove(t *testing.T) {
	ctx := context.Background()
	store, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	key := "notes/doc.pdf"
	content := "hello there"
	n, err := store.Save(ctx, key, strings.NewReader(content))
	if err != nil {
		t.Fatal(err)
	}
	if n != int64(len(content)) {
		t.Errorf("Save() n = %d, want %d", n, len(content))
	}

	f, err := store.Open(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	got, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != content {
		t.Errorf("Open() = %q, want %q", got, content)
	}

	// overwrites replace the previous contents
	if _, err = store.Save(ctx, key, strings.NewReader("v2")); err != nil {
		t.Fatal(err)
	}
	f, err = store.Open(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	got, _ = io.ReadAll(f)
	f.Close()
	if string(got) != "v2" {
		t.Errorf("Open() after overwrite = %q, want %q", got, "v2")
	}

	if err = store.Remove(ctx, key); err != nil {
		t.Fatal(err)
	}
	if _, err = store.Open(ctx, key); err != core.ErrFileNotFound {
		t.Errorf("Open() after Remove error = %v, want %v", err, core.ErrFileNotFound)
	}
	if err = store.Remove(ctx, key); err != nil {
		t.Errorf("Remove() on missing file error = %v, want nil", err)
	}
}

func TestDiskStoreOpenMissing(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err = store.Open(context.Background(), "notes/nope.pdf"); err != core.ErrFileNotFound {
		t.Errorf("Open() error = %v, want %v", err, core.ErrFileNotFound)
	}
}

func TestDiskStoreRejectsBadKeys(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store, err := NewDiskStore(root)
	if err != nil {
		t.Fatal(err)
	}

	keys := []string{
		"",
		"/etc/passwd",
		"../escape.txt",
		"notes/../../escape.txt",
		"notes/./doc.pdf",
		"notes//doc.pdf",
		"notes\\doc.pdf",
		"notes/doc.pdf/",
	}
	for _, key := range keys {
		if _, err = store.Save(ctx, key, strings.NewReader("x")); err == nil {
			t.Errorf("Save(%q) error = nil, want invalid key error", key)
		}
		if _, err = store.Open(ctx, key); err == nil {
			t.Errorf("Open(%q) error = nil, want invalid key error", key)
		}
		if err = store.Remove(ctx, key); err == nil {
			t.Errorf("Remove(%q) error = nil, want invalid key error", key)
		}
	}

	// nothing may leak outside the root
	if _, err = os.Stat(filepath.Join(filepath.Dir(root), "escape.txt")); !os.IsNotExist(err) {
		t.Errorf("Stat(escape.txt) error = %v, want not exist", err)
	}
}

func TestDiskStoreLeavesNoTempFiles(t *testing.T) {
	root := t.TempDir()
	store, err := NewDiskStore(root)
	if err != nil {
		t.Fatal(err)
	}
	if _, err = store.Save(context.Background(), "notes/doc.txt", strings.NewReader("ok")); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(filepath.Join(root, "notes"))
	if err != nil {
		t.Fatal(err)
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), tmpFilePrefix) {
			t.Errorf("temp file %s left behind", entry.Name())
		}
	}
}
