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

package operation

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/texbra/pkg/config"
	"github.com/walteh/texbra/pkg/log"
	"github.com/walteh/texbra/pkg/rewrite"
)

// writeTree creates files under a temp dir and returns the dir.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755), "creating parent dir")
		require.NoError(t, os.WriteFile(p, []byte(content), 0644), "writing %s", name)
	}
	return root
}

func newOp(t *testing.T, root string, cfg *config.Config) *ConvertOperation {
	t.Helper()
	op, err := New(Options{
		Config:   cfg,
		Root:     root,
		Rewriter: rewrite.NewDelimiterRewriter(),
	})
	require.NoError(t, err)
	return op
}

func readFile(t *testing.T, root, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(name)))
	require.NoError(t, err)
	return string(data)
}

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		opts        Options
		errContains string
	}{
		{
			name:        "missing_config",
			opts:        Options{Rewriter: rewrite.NewDelimiterRewriter()},
			errContains: "config is required",
		},
		{
			name:        "missing_rewriter",
			opts:        Options{Config: &config.Config{}},
			errContains: "rewriter is required",
		},
		{
			name:        "invalid_config",
			opts:        Options{Config: &config.Config{Concurrency: -2}, Rewriter: rewrite.NewDelimiterRewriter()},
			errContains: "validating config",
		},
		{
			name: "valid",
			opts: Options{Config: &config.Config{}, Rewriter: rewrite.NewDelimiterRewriter()},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, err := New(tt.opts)
			if tt.errContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, ".", op.root, "root should default to current dir")
		})
	}
}

func TestPlan(t *testing.T) {
	root := writeTree(t, map[string]string{
		"main.tex":              "",
		"chapters/one.tex":      "",
		"chapters/two.tex":      "",
		"chapters/draft-x.tex":  "",
		"chapters/one.conv.tex": "",
		"script.py":             "",
		"notes.md":              "",
	})

	op := newOp(t, root, &config.Config{
		Include: []string{"**/*.tex", "*.py", "main.tex"},
		Ignore:  []string{"**/draft-*.tex"},
	})

	files, err := op.Plan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"chapters/one.tex",
		"chapters/two.tex",
		"main.tex",
		"script.py",
	}, files)
}

func TestDestPath(t *testing.T) {
	op := newOp(t, t.TempDir(), &config.Config{OutputSuffix: ".out"})
	assert.Equal(t, "a/b.out.tex", op.DestPath("a/b.tex"))
	assert.Equal(t, "Makefile.out", op.DestPath("Makefile"))
}

func TestExecute(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.tex":      `x = \bra[\Big]{a{b}c}`,
		"b.tex":      "plain text",
		"c.tex":      `\bra[\Big]{broken`,
		"d.tex":      `\bra[\big]{d}`,
		"d.conv.tex": "already here",
	})

	op := newOp(t, root, &config.Config{Concurrency: 2})

	summary, err := op.Execute(context.Background())
	require.NoError(t, err)
	require.Len(t, summary.Files, 4, "converted outputs should not be planned")

	byPath := map[string]FileReport{}
	for _, f := range summary.Files {
		byPath[f.Path] = f
	}

	assert.Equal(t, log.StatusConverted, byPath["a.tex"].Status)
	assert.Equal(t, 1, byPath["a.tex"].Rewrites)
	assert.Equal(t, `x = \Big(a{b}c\Big)`, readFile(t, root, "a.conv.tex"))
	assert.NotEqual(t, byPath["a.tex"].InputDigest, byPath["a.tex"].OutputDigest)
	assert.Len(t, byPath["a.tex"].InputDigest, 64, "blake3-256 hex digest")

	assert.Equal(t, log.StatusUnchanged, byPath["b.tex"].Status)
	assert.Equal(t, byPath["b.tex"].InputDigest, byPath["b.tex"].OutputDigest)
	assert.NoFileExists(t, filepath.Join(root, "b.conv.tex"))

	assert.Equal(t, log.StatusFailed, byPath["c.tex"].Status)
	assert.ErrorIs(t, byPath["c.tex"].Err, rewrite.ErrBraceMismatch)
	assert.NoFileExists(t, filepath.Join(root, "c.conv.tex"))

	assert.Equal(t, log.StatusSkipped, byPath["d.tex"].Status)
	assert.Equal(t, "already here", readFile(t, root, "d.conv.tex"), "existing output should not be overwritten")

	assert.Equal(t, 1, summary.Count(log.StatusConverted))
	assert.Equal(t, 1, summary.Count(log.StatusFailed))

	err = summary.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, rewrite.ErrBraceMismatch)
	assert.Contains(t, err.Error(), "c.tex")
}

func TestExecuteOverwrite(t *testing.T) {
	root := writeTree(t, map[string]string{
		"d.tex":      `\bra[\big]{d}`,
		"d.conv.tex": "stale",
	})

	op := newOp(t, root, &config.Config{Overwrite: true})

	summary, err := op.Execute(context.Background())
	require.NoError(t, err)
	require.Len(t, summary.Files, 1)
	assert.Equal(t, log.StatusConverted, summary.Files[0].Status)
	assert.Equal(t, `\big(d\big)`, readFile(t, root, "d.conv.tex"))
	assert.NoError(t, summary.Err())

	// a second run finds an identical output and leaves it alone
	summary, err = op.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, log.StatusSkipped, summary.Files[0].Status)
}

func TestExecuteDryRun(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.tex": `\bra[\Big]{x}`,
	})

	op := newOp(t, root, &config.Config{DryRun: true})

	summary, err := op.Execute(context.Background())
	require.NoError(t, err)
	require.Len(t, summary.Files, 1)
	assert.Equal(t, log.StatusConverted, summary.Files[0].Status)
	assert.NoFileExists(t, filepath.Join(root, "a.conv.tex"))
}

func TestExecuteLogsFiles(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	root := writeTree(t, map[string]string{
		"a.tex": `\bra[\Big]{x}`,
	})

	buf := &bytes.Buffer{}
	logger := log.NewWithZerolog(buf, zerolog.Nop())

	op, err := New(Options{
		Config:   &config.Config{},
		Root:     root,
		Rewriter: rewrite.NewDelimiterRewriter(),
		Logger:   logger,
	})
	require.NoError(t, err)

	_, err = op.Execute(context.Background())
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "a.tex")
	assert.Contains(t, output, "converted [1]")
	assert.Contains(t, output, "Progress: 1/1")
}

func TestExecuteCancelled(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.tex": `\bra[\Big]{x}`,
	})

	op := newOp(t, root, &config.Config{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := op.Execute(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

type stubRewriter struct{}

func (stubRewriter) Rewrite(ctx context.Context, content io.Reader) (*rewrite.Result, error) {
	return rewrite.NewDelimiterRewriter().Rewrite(ctx, failingReader{})
}

func TestExecuteRewriterError(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.tex": "x",
	})

	op, err := New(Options{Config: &config.Config{}, Root: root, Rewriter: stubRewriter{}})
	require.NoError(t, err)

	summary, err := op.Execute(context.Background())
	require.NoError(t, err)
	require.Len(t, summary.Files, 1)
	assert.Equal(t, log.StatusFailed, summary.Files[0].Status)
	assert.ErrorIs(t, summary.Files[0].Err, io.ErrUnexpectedEOF)
}

func TestDiff(t *testing.T) {
	assert.Empty(t, Diff("same", "same"))

	d := Diff(`\bra[\Big]{x}`, `\Big(x\Big)`)
	assert.NotEmpty(t, d)
	assert.True(t, strings.Contains(d, "x"), "diff should keep common text")

	assert.NotEmpty(t, Delta("a", "b"))
}
