// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package config replaces a FastBit-style global resource tree (a flat,
// dotted/starred name-value lookup, historically implemented in C++ as
// resource.h/resource.cpp) with an explicit Config value threaded through the
// call stack, while preserving its "*"-separated, longest-prefix-match
// lookup semantics: a lookup for "column*<col>*nbins" falls back to "*nbins"
// (and any other suffix of the full name) if no more specific entry is
// recorded.
package config

import (
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/gingi/go-ibis/internal/ibiserr"
)

// Config holds the flattened name/value pairs loaded from a tunables file
// plus any command-line overrides merged on top.
type Config struct {
	values map[string]string
}

// New constructs an empty Config.
func New() *Config {
	return &Config{values: make(map[string]string)}
}

// tomlDoc is the shape of the on-disk tunables file: a flat table of
// dotted/starred keys to string values, the way lookbusy1344-arm_emulator's
// own settings file is a flat TOML table of key/value pairs.
type tomlDoc map[string]string

// Load reads a TOML tunables file into a new Config.
func Load(path string) (*Config, error) {
	var doc tomlDoc

	if _, err := toml.DecodeFile(path, &doc); err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}

		return nil, ibiserr.Wrap(ibiserr.IO, err, "failed to load config file "+path)
	}

	cfg := New()
	for k, v := range doc {
		cfg.values[k] = v
	}

	return cfg, nil
}

// Set records (or overrides) a single name/value pair, as a command-line
// "-S name=value" override would.
func (c *Config) Set(name, value string) {
	c.values[name] = value
}

// Lookup searches for name using longest-prefix-match over "*"-separated
// components: "column*mycol*nbins" is tried first, then "*mycol*nbins" is
// NOT tried (the search strips from the left, dropping whole leading
// components, not substrings) — only "mycol*nbins", then "nbins", then
// "*nbins" are tried, matching the original's "descend then back off one
// level at a time" search.
func (c *Config) Lookup(name string) (string, bool) {
	parts := strings.Split(name, "*")

	for i := 0; i < len(parts); i++ {
		candidate := strings.Join(parts[i:], "*")
		if v, ok := c.values[candidate]; ok {
			return v, true
		}
	}
	// final fallback: the original always recognises a bare "*"-prefixed
	// global default for the last component.
	if v, ok := c.values["*"+parts[len(parts)-1]]; ok {
		return v, true
	}

	return "", false
}

// LookupUint is a convenience wrapper around Lookup for integer tunables
// such as nbins/ncoarse/nrefine.
func (c *Config) LookupUint(name string, fallback uint) uint {
	v, ok := c.Lookup(name)
	if !ok {
		return fallback
	}

	var n uint

	if _, err := parseUint(v, &n); err != nil {
		return fallback
	}

	return n
}

func parseUint(s string, out *uint) (int, error) {
	var n uint

	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, ibiserr.New(ibiserr.Format, "not a number: "+s)
		}

		n = n*10 + uint(r-'0')
	}

	*out = n

	return len(s), nil
}

// LookupBool is a convenience wrapper for boolean tunables such as
// "uncompressed".
func (c *Config) LookupBool(name string) bool {
	v, ok := c.Lookup(name)
	if !ok {
		return false
	}

	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
