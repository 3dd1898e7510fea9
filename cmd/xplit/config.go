// Copyright 2026 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	glog "github.com/golang/glog"
	"sigs.k8s.io/yaml"
)

// The default name for the xplit configuration file.
const defaultConfigName = "xplit.yaml"

const (
	formatText = "text"
	formatJSON = "json"

	binaryHex = "hex"
	binaryRaw = "raw"
)

// config holds defaults read from the YAML configuration file. Flags given on
// the command line take precedence.
type config struct {
	// Format selects split output: "text" or "json".
	Format string `json:"format"`
	// Binary selects how non-UTF-8 secrets are printed by recover: "hex" or
	// "raw".
	Binary string `json:"binary"`
}

func defaultConfigPath() string {
	cfgDir, err := os.UserConfigDir()
	if err != nil {
		glog.Warningf("Failed to get config directory location: %v", err.Error())
		return ""
	}
	return filepath.Join(cfgDir, defaultConfigName)
}

// loadConfig reads the configuration at path. An empty path selects the
// default location, which may be absent; an explicitly named file must exist.
func loadConfig(path string) (*config, error) {
	cfg := &config{Format: formatText, Binary: binaryHex}

	explicit := path != ""
	if !explicit {
		path = defaultConfigPath()
		if path == "" {
			return cfg, nil
		}
	}

	yamlBytes, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %v", err)
	}

	if err := yaml.UnmarshalStrict(yamlBytes, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %v", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %v", path, err)
	}

	return cfg, nil
}

func (c *config) validate() error {
	switch c.Format {
	case formatText, formatJSON:
	default:
		return fmt.Errorf("unknown format %q, expected %q or %q", c.Format, formatText, formatJSON)
	}

	switch c.Binary {
	case binaryHex, binaryRaw:
	default:
		return fmt.Errorf("unknown binary output %q, expected %q or %q", c.Binary, binaryHex, binaryRaw)
	}

	return nil
}
