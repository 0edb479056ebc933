// Copyright 2026 Jetify Inc and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package plugin

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
	"github.com/tailscale/hujson"

	"go.jetify.com/crashgate/internal/debug"
)

const manifestName = "plugin.json"

// LoadDir registers every plugin whose manifest (plugin.json) is found under
// dir, at any depth. Manifests that fail to parse are skipped and logged.
// It returns the number of plugins registered.
func (r *Registry) LoadDir(dir string) (int, error) {
	paths, err := doublestar.FilepathGlob(filepath.Join(dir, "**", manifestName))
	if err != nil {
		return 0, errors.WithStack(err)
	}

	n := 0
	for _, path := range paths {
		p, err := readManifest(path)
		if err != nil {
			debug.Log("plugin: skipping %s: %v", path, err)
			continue
		}
		r.Register(p)
		n++
	}
	return n, nil
}

func readManifest(path string) (Plugin, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Plugin{}, errors.WithStack(err)
	}
	// Manifests may carry comments and trailing commas.
	content, err = hujson.Standardize(content)
	if err != nil {
		return Plugin{}, errors.WithStack(err)
	}
	p := Plugin{}
	if err := json.Unmarshal(content, &p); err != nil {
		return Plugin{}, errors.WithStack(err)
	}
	if p.Name == "" {
		return Plugin{}, errors.New("manifest has no name")
	}
	p.Path = path
	return p, nil
}
