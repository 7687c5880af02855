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

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/texbra/pkg/rewrite"
)

type runResult struct {
	stdout string
	stderr string
	err    error
}

// run executes the CLI with args and stdin, isolated from any config file
// in the working directory.
func run(t *testing.T, stdin string, args ...string) runResult {
	t.Helper()

	color.NoColor = true
	pterm.DisableStyling()
	t.Cleanup(func() {
		color.NoColor = false
		pterm.EnableStyling()
	})

	cfgPath := filepath.Join(t.TempDir(), "texbra.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("concurrency: 2\n"), 0644))

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	cmd := newRootCmd()
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(context.Background())
	return runResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func TestConvertCommand(t *testing.T) {
	tests := []struct {
		name       string
		stdin      string
		wantStdout string
		wantErr    error
		wantStderr string
	}{
		{
			name:       "single",
			stdin:      `\bra[\Big]{x+y}`,
			wantStdout: `\Big(x+y\Big)`,
		},
		{
			name:       "nested_braces",
			stdin:      `\bra[\big]{a{b}c}`,
			wantStdout: `\big(a{b}c\big)`,
		},
		{
			name:       "two_occurrences",
			stdin:      `\bra[\Big]{x} \bra[\big]{y}`,
			wantStdout: `\Big(x\Big) \big(y\big)`,
		},
		{
			name:       "plain",
			stdin:      "plain text",
			wantStdout: "plain text",
		},
		{
			name:       "mismatch",
			stdin:      `\bra[\Big]{x`,
			wantErr:    rewrite.ErrBraceMismatch,
			wantStderr: "Error in conversion function",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(t, tt.stdin, "convert")

			if tt.wantErr != nil {
				require.Error(t, res.err)
				assert.ErrorIs(t, res.err, tt.wantErr)
				assert.Contains(t, res.stderr, tt.wantStderr)
				assert.Empty(t, res.stdout)
				return
			}

			require.NoError(t, res.err)
			assert.Equal(t, tt.wantStdout, res.stdout)
		})
	}
}

func TestConvertCommandFiles(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "paper.tex")
	out := filepath.Join(dir, "paper.out.tex")
	require.NoError(t, os.WriteFile(in, []byte(`$\bra[\Big]{\frac{1}{2}}$`), 0644))

	res := run(t, "", "convert", in, "--output", out, "--diff")
	require.NoError(t, res.err)
	assert.Empty(t, res.stdout)
	assert.Contains(t, res.stderr, "wrote "+out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, `$\Big(\frac{1}{2}\Big)$`, string(data))

	res = run(t, "", "convert", in, "--output", out)
	require.Error(t, res.err)
	assert.ErrorIs(t, res.err, os.ErrExist, "existing output must not be overwritten")

	md := filepath.Join(dir, "notes.md")
	require.NoError(t, os.WriteFile(md, []byte("x"), 0644))
	res = run(t, "", "convert", md)
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "unsupported file extension")
}

func TestInvertCommand(t *testing.T) {
	for _, stdin := range []string{"", `\Big(x\Big)`} {
		res := run(t, stdin, "invert")
		require.Error(t, res.err)
		assert.ErrorIs(t, res.err, rewrite.ErrNotImplemented)
		assert.Contains(t, res.stderr, "Inversion operation not implemented.")
		assert.Empty(t, res.stdout)
	}
}

func TestBatchCommand(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.tex"), []byte(`\bra[\Big]{a}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.tex"), []byte("plain"), 0644))

	res := run(t, "", "batch", root)
	require.NoError(t, res.err)
	assert.Contains(t, res.stderr, "a.tex")
	assert.Contains(t, res.stderr, "converted")

	data, err := os.ReadFile(filepath.Join(root, "a.conv.tex"))
	require.NoError(t, err)
	assert.Equal(t, `\Big(a\Big)`, string(data))

	require.NoError(t, os.WriteFile(filepath.Join(root, "c.tex"), []byte(`\bra[\Big]{`), 0644))
	res = run(t, "", "batch", root, "--dry-run")
	require.Error(t, res.err)
	assert.ErrorIs(t, res.err, rewrite.ErrBraceMismatch)
	assert.Contains(t, res.err.Error(), "1 file(s) failed")
	assert.NoFileExists(t, filepath.Join(root, "c.conv.tex"))
}

func TestScanCommand(t *testing.T) {
	res := run(t, "a \\bra[\\Big]{x}\n\\bra[\\big]{y\nz}", "scan")
	require.NoError(t, res.err)
	assert.Equal(t, "1:3\t\\Big\tx\n2:1\t\\big\ty\\nz\n", res.stdout)
	assert.Contains(t, res.stderr, "2 occurrence(s)")

	res = run(t, `\bra[\Big]{`, "scan")
	assert.ErrorIs(t, res.err, rewrite.ErrBraceMismatch)
}

func TestVersionCommand(t *testing.T) {
	res := run(t, "", "version", "--json")
	require.NoError(t, res.err)

	var info VersionInfo
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &info))
	assert.NotEmpty(t, info.GoVersion)
	assert.NotEmpty(t, info.Version)

	res = run(t, "", "version")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "texbra version info")
}

func TestMissingExplicitConfig(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "nope.yaml"), "convert"})
	cmd.SetIn(strings.NewReader(""))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "loading config")
}
