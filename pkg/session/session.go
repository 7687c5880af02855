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

// Package session is a headless version of the two-pane editor host: an
// input pane that is converted into an output pane on every change, plus
// file load and save restricted to a whitelist of extensions.
package session

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/texbra/pkg/rewrite"
	"gitlab.com/tozd/go/errors"
)

// DefaultExtensions are the file types the load and save dialogs accept.
var DefaultExtensions = []string{".py", ".tex"}

var (
	// ErrMultipleFiles is returned when load or save gets more than one path.
	ErrMultipleFiles = errors.Base("selecting multiple files is not supported")
	// ErrNoFile is returned when load or save gets no path.
	ErrNoFile = errors.Base("no file selected")
	// ErrUnsupportedExtension is returned for files outside the whitelist.
	ErrUnsupportedExtension = errors.Base("unsupported file extension")
)

// 🪧 PaneError wraps a failed conversion or inversion with the message a
// host shows to the user instead of crashing.
type PaneError struct {
	Op  string // "conversion" or "inversion"
	Err error
}

func (e *PaneError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *PaneError) Unwrap() error {
	return e.Err
}

// Message is the user-visible text for e.
func (e *PaneError) Message() string {
	if errors.Is(e.Err, rewrite.ErrNotImplemented) {
		return strings.ToUpper(e.Op[:1]) + e.Op[1:] + " operation not implemented."
	}
	return "Error in " + e.Op + " function: \n" + e.Err.Error()
}

// 🖥️ Session holds the two panes
type Session struct {
	mu       sync.Mutex
	input    string
	output   string
	patterns []string
}

// New creates a session accepting files with the given extensions.
// With no extensions, DefaultExtensions are used.
func New(extensions ...string) *Session {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	patterns := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		patterns = append(patterns, "*"+ext)
	}
	return &Session{patterns: patterns}
}

// Input returns the input pane.
func (s *Session) Input() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

// Output returns the output pane.
func (s *Session) Output() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.output
}

// SetInput replaces the input pane and converts it into the output pane.
// On failure the output pane keeps its previous content.
func (s *Session) SetInput(ctx context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.input = text
	out, err := rewrite.Convert(text)
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("conversion failed")
		return &PaneError{Op: "conversion", Err: err}
	}
	s.output = out
	return nil
}

// SetOutput replaces the output pane and inverts it into the input pane.
// Inversion is not implemented, so this always fails and the input pane is
// left alone.
func (s *Session) SetOutput(ctx context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.output = text
	in, err := rewrite.Invert(text)
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("inversion failed")
		return &PaneError{Op: "inversion", Err: err}
	}
	s.input = in
	return nil
}

// Accepts reports whether path has a whitelisted extension.
func (s *Session) Accepts(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range s.patterns {
		if ok, _ := doublestar.Match(pattern, base); ok {
			return true
		}
	}
	return false
}

func (s *Session) selectOne(paths []string) (string, error) {
	switch {
	case len(paths) == 0:
		return "", errors.WithStack(ErrNoFile)
	case len(paths) > 1:
		return "", errors.WithStack(ErrMultipleFiles)
	case !s.Accepts(paths[0]):
		return "", errors.Errorf("%s: %w", paths[0], ErrUnsupportedExtension)
	}
	return paths[0], nil
}

// Load reads one file into the input pane and converts it right away.
// The input pane is updated even when the conversion fails.
func (s *Session) Load(ctx context.Context, paths ...string) error {
	path, err := s.selectOne(paths)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Errorf("reading %s: %w", path, err)
	}

	zerolog.Ctx(ctx).Debug().Str("path", path).Int("bytes", len(data)).Msg("loaded input")
	return s.SetInput(ctx, string(data))
}

// Save writes the output pane to a new file. Existing files are never
// overwritten.
func (s *Session) Save(ctx context.Context, paths ...string) error {
	path, err := s.selectOne(paths)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return errors.Errorf("creating %s: %w", path, err)
	}

	if _, err := io.WriteString(f, s.Output()); err != nil {
		_ = f.Close()
		return errors.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return errors.Errorf("closing %s: %w", path, err)
	}

	zerolog.Ctx(ctx).Debug().Str("path", path).Msg("saved output")
	return nil
}
