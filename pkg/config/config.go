// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// DefaultFile is the config file the CLI looks for when none is given.
const DefaultFile = ".texbra.yaml"

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte, filename string) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 📚 Config represents the complete configuration
type Config struct {
	// Include lists globs of files to convert, relative to the batch root
	Include []string `json:"include,omitempty" yaml:"include,omitempty" hcl:"include,optional" toml:"include,omitempty"`
	// Ignore lists globs of files to skip
	Ignore []string `json:"ignore,omitempty" yaml:"ignore,omitempty" hcl:"ignore,optional" toml:"ignore,omitempty"`
	// Extensions accepted when loading and saving single files
	Extensions []string `json:"extensions,omitempty" yaml:"extensions,omitempty" hcl:"extensions,optional" toml:"extensions,omitempty"`
	// OutputSuffix is inserted before the extension of converted files
	OutputSuffix string `json:"output_suffix,omitempty" yaml:"output_suffix,omitempty" hcl:"output_suffix,optional" toml:"output_suffix,omitempty"`
	Overwrite    bool   `json:"overwrite,omitempty" yaml:"overwrite,omitempty" hcl:"overwrite,optional" toml:"overwrite,omitempty"`
	DryRun       bool   `json:"dry_run,omitempty" yaml:"dry_run,omitempty" hcl:"dry_run,optional" toml:"dry_run,omitempty"`
	Concurrency  int    `json:"concurrency,omitempty" yaml:"concurrency,omitempty" hcl:"concurrency,optional" toml:"concurrency,omitempty"`
	LogLevel     string `json:"log_level,omitempty" yaml:"log_level,omitempty" hcl:"log_level,optional" toml:"log_level,omitempty"`
}

// Default returns a validated config with every default applied.
func Default() *Config {
	cfg := &Config{}
	_ = cfg.Validate()
	return cfg
}

// 🎯 Load loads the configuration from a file
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, data, path)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// 🔍 Validate checks the configuration and fills in defaults
func (cfg *Config) Validate() error {
	if len(cfg.Include) == 0 {
		cfg.Include = []string{"**/*.tex"}
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = []string{".py", ".tex"}
	}
	if cfg.OutputSuffix == "" {
		cfg.OutputSuffix = ".conv"
	}
	if cfg.Concurrency == 0 {
		cfg.Concurrency = 4
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = zerolog.WarnLevel.String()
	}

	if cfg.Concurrency < 0 {
		return errors.Errorf("concurrency must be positive, got %d", cfg.Concurrency)
	}
	if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
		return errors.Errorf("log_level %q: %w", cfg.LogLevel, err)
	}
	for _, ext := range cfg.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return errors.Errorf("extension %q must start with a dot", ext)
		}
		if !doublestar.ValidatePattern("*" + ext) {
			return errors.Errorf("extension %q is not a valid file pattern", ext)
		}
	}
	for _, pattern := range append(append([]string{}, cfg.Include...), cfg.Ignore...) {
		if !doublestar.ValidatePattern(pattern) {
			return errors.Errorf("invalid glob pattern %q", pattern)
		}
	}

	return nil
}

// Level returns the parsed log level, falling back to warn.
func (cfg *Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		return zerolog.WarnLevel
	}
	return level
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	return fmt.Sprintf("include=%v ignore=%v suffix=%s concurrency=%d", cfg.Include, cfg.Ignore, cfg.OutputSuffix, cfg.Concurrency)
}
