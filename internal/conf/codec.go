// Copyright 2026 Jetify Inc. and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package conf

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"
)

type codec struct {
	unmarshal func(data []byte) (map[string]any, error)
	marshal   func(m map[string]any) ([]byte, error)
}

func codecFor(path string) (codec, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json", ".jsonc":
		return jsonCodec, nil
	case ".toml":
		return tomlCodec, nil
	case ".yaml", ".yml":
		return yamlCodec, nil
	default:
		return codec{}, errors.Errorf("unsupported settings file extension %q", ext)
	}
}

// jsonCodec accepts comments and trailing commas on read.
var jsonCodec = codec{
	unmarshal: func(data []byte) (map[string]any, error) {
		std, err := hujson.Standardize(data)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		m := map[string]any{}
		if err := json.Unmarshal(std, &m); err != nil {
			return nil, errors.WithStack(err)
		}
		return m, nil
	},
	marshal: func(m map[string]any) ([]byte, error) {
		data, err := json.Marshal(m)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		formatted, err := hujson.Format(data)
		return formatted, errors.WithStack(err)
	},
}

var tomlCodec = codec{
	unmarshal: func(data []byte) (map[string]any, error) {
		m := map[string]any{}
		return m, errors.WithStack(toml.Unmarshal(data, &m))
	},
	marshal: func(m map[string]any) ([]byte, error) {
		data, err := toml.Marshal(m)
		return data, errors.WithStack(err)
	},
}

var yamlCodec = codec{
	unmarshal: func(data []byte) (map[string]any, error) {
		m := map[string]any{}
		return m, errors.WithStack(yaml.Unmarshal(data, &m))
	},
	marshal: func(m map[string]any) ([]byte, error) {
		data, err := yaml.Marshal(m)
		return data, errors.WithStack(err)
	},
}

// lookup accepts both flat dotted keys ("privacy.crashReports": true) and
// nested tables ({"privacy": {"crashReports": true}}). The flat form wins.
func lookup(m map[string]any, key string) any {
	if v, ok := m[key]; ok {
		return v
	}
	var cur any = m
	for _, part := range strings.Split(key, ".") {
		table, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		if cur, ok = table[part]; !ok {
			return nil
		}
	}
	return cur
}

// assign writes the value under the key, using the flat form if the file
// already does and nested tables otherwise.
func assign(m map[string]any, key string, value any) {
	if _, ok := m[key]; ok {
		m[key] = value
		return
	}
	parts := strings.Split(key, ".")
	table := m
	for _, part := range parts[:len(parts)-1] {
		next, ok := table[part].(map[string]any)
		if !ok {
			next = map[string]any{}
			table[part] = next
		}
		table = next
	}
	table[parts[len(parts)-1]] = value
}
