// Copyright 2026 Jetify Inc. and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package conf

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"go.jetify.com/crashgate/internal/debug"
)

// File is a Store backed by a settings file. The format follows the file
// extension: .json/.jsonc, .toml or .yaml/.yml. A missing file has no keys.
type File struct {
	path  string
	codec codec

	mu sync.Mutex // serializes Set
}

var _ Store = (*File)(nil)

func OpenFile(path string) (*File, error) {
	c, err := codecFor(path)
	if err != nil {
		return nil, err
	}
	return &File{path: path, codec: c}, nil
}

func (f *File) Path() string { return f.path }

func (f *File) Get(ctx context.Context, key string) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}
	m, err := f.read()
	if err != nil {
		return nil, err
	}
	return lookup(m, key), nil
}

// Set writes a single key, creating the file and its directory if needed.
func (f *File) Set(key string, value any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	m, err := f.read()
	if err != nil {
		return err
	}
	assign(m, key, value)
	data, err := f.codec.marshal(m)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(os.WriteFile(f.path, data, 0o644))
}

func (f *File) read() (map[string]any, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}
	m, err := f.codec.unmarshal(data)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", f.path)
	}
	return m, nil
}

// Watch calls onChange whenever the settings file is written, created,
// renamed or removed, until ctx is done. The parent directory is watched so
// that editors which replace the file on save are still seen.
func (f *File) Watch(ctx context.Context, onChange func()) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.WithStack(err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.WithStack(err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return errors.WithStack(err)
	}

	go func() {
		<-ctx.Done()
		watcher.Close()
	}()

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(f.path) {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
					event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
					onChange()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				debug.Log("conf: watch error: %v", err)
			}
		}
	}()
	return nil
}
