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
	"encoding/hex"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/texbra/pkg/config"
	"github.com/walteh/texbra/pkg/log"
	"github.com/walteh/texbra/pkg/rewrite"
	"github.com/zeebo/blake3"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// 🔧 Options contains configuration for the operation
type Options struct {
	// Config holds globs, suffix and write policy
	Config *config.Config
	// Root is the directory the globs are relative to
	Root string
	// Rewriter converts file contents
	Rewriter rewrite.Rewriter
	// Logger receives one line per file; optional
	Logger *log.Logger
}

// 📄 FileReport is the outcome for one file
type FileReport struct {
	Path         string // relative to Root, slash separated
	Dest         string // relative to Root, slash separated
	Status       string // one of the log.Status constants
	Rewrites     int
	InputDigest  string // blake3 hex of the source
	OutputDigest string // blake3 hex of the converted text
	Err          error
}

// 📊 Summary collects every FileReport of a run
type Summary struct {
	Files []FileReport
}

// Count returns how many files ended with status.
func (s *Summary) Count(status string) int {
	n := 0
	for _, f := range s.Files {
		if f.Status == status {
			n++
		}
	}
	return n
}

// Err joins the errors of every failed file, or returns nil.
func (s *Summary) Err() error {
	var errs []error
	for _, f := range s.Files {
		if f.Err != nil {
			errs = append(errs, f.Err)
		}
	}
	return errors.Join(errs...)
}

// 📦 ConvertOperation converts every planned file under a root
type ConvertOperation struct {
	cfg      *config.Config
	root     string
	rewriter rewrite.Rewriter
	logger   *log.Logger
}

// 🏭 New creates a new operation with the given options
func New(opts Options) (*ConvertOperation, error) {
	if opts.Config == nil {
		return nil, errors.Errorf("config is required")
	}
	if opts.Rewriter == nil {
		return nil, errors.Errorf("rewriter is required")
	}
	if opts.Root == "" {
		opts.Root = "."
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}
	return &ConvertOperation{
		cfg:      opts.Config,
		root:     opts.Root,
		rewriter: opts.Rewriter,
		logger:   opts.Logger,
	}, nil
}

// 🗺️ Plan lists the files Execute would convert, sorted and deduplicated
func (op *ConvertOperation) Plan(ctx context.Context) ([]string, error) {
	fsys := os.DirFS(op.root)

	seen := map[string]struct{}{}
	var files []string
	for _, pattern := range op.cfg.Include {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, errors.Errorf("expanding %q: %w", pattern, err)
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			if op.ignored(m) {
				zerolog.Ctx(ctx).Debug().Str("file", m).Msg("ignoring file")
				continue
			}
			files = append(files, m)
		}
	}

	sort.Strings(files)
	return files, nil
}

// ignored reports whether name matches an ignore glob or is itself an output.
func (op *ConvertOperation) ignored(name string) bool {
	for _, pattern := range op.cfg.Ignore {
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
	}
	ext := path.Ext(name)
	return strings.HasSuffix(strings.TrimSuffix(name, ext), op.cfg.OutputSuffix)
}

// DestPath returns where the converted form of name is written.
func (op *ConvertOperation) DestPath(name string) string {
	ext := path.Ext(name)
	return strings.TrimSuffix(name, ext) + op.cfg.OutputSuffix + ext
}

// 🏃 Execute converts every planned file
func (op *ConvertOperation) Execute(ctx context.Context) (*Summary, error) {
	files, err := op.Plan(ctx)
	if err != nil {
		return nil, errors.Errorf("planning: %w", err)
	}

	zerolog.Ctx(ctx).Info().Int("files", len(files)).Int("concurrency", op.cfg.Concurrency).Msg("converting files")

	reports := make([]FileReport, len(files))
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(op.cfg.Concurrency)
	for i, name := range files {
		i, name := i, name
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			reports[i] = op.convertFile(gctx, name)
			if op.logger != nil {
				op.logger.LogFile(gctx, log.FileEntry{
					Path:     reports[i].Path,
					Dest:     reports[i].Dest,
					Status:   reports[i].Status,
					Rewrites: reports[i].Rewrites,
					Err:      reports[i].Err,
				})
			}
			done.Add(1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, errors.Errorf("converting files: %w", err)
	}

	if op.logger != nil {
		op.logger.Progress(int(done.Load()), len(files))
	}

	return &Summary{Files: reports}, nil
}

// 📄 convertFile converts one file; failures are recorded, not returned
func (op *ConvertOperation) convertFile(ctx context.Context, name string) FileReport {
	report := FileReport{
		Path: name,
		Dest: op.DestPath(name),
	}
	fail := func(err error) FileReport {
		report.Status = log.StatusFailed
		report.Err = errors.Errorf("%s: %w", name, err)
		return report
	}

	data, err := os.ReadFile(op.abs(name))
	if err != nil {
		return fail(errors.Errorf("reading: %w", err))
	}
	report.InputDigest = digest(data)

	result, err := op.rewriter.Rewrite(ctx, bytes.NewReader(data))
	if err != nil {
		return fail(errors.Errorf("converting: %w", err))
	}
	report.Rewrites = result.Rewrites
	report.OutputDigest = digest([]byte(result.Modified))

	if ev := zerolog.Ctx(ctx).Debug(); ev.Enabled() {
		ev.Str("file", name).Str("delta", Delta(result.Original, result.Modified)).Msg("converted file")
	}

	if !result.WasModified {
		report.Status = log.StatusUnchanged
		return report
	}

	if op.cfg.DryRun {
		report.Status = log.StatusConverted
		return report
	}

	written, err := op.write(report.Dest, result.Modified, report.OutputDigest)
	if err != nil {
		return fail(errors.Errorf("writing %s: %w", report.Dest, err))
	}
	if !written {
		report.Status = log.StatusSkipped
		return report
	}

	report.Status = log.StatusConverted
	return report
}

// write stores content at dest. Without Overwrite an existing dest is left
// alone and write returns false; with Overwrite an identical dest is too.
func (op *ConvertOperation) write(dest, content, sum string) (bool, error) {
	target := op.abs(dest)

	if !op.cfg.Overwrite {
		f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		if _, err := f.WriteString(content); err != nil {
			_ = f.Close()
			return false, err
		}
		return true, f.Close()
	}

	if existing, err := os.ReadFile(target); err == nil && digest(existing) == sum {
		return false, nil
	}
	if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
		return false, err
	}
	return true, nil
}

func (op *ConvertOperation) abs(name string) string {
	return filepath.Join(op.root, filepath.FromSlash(name))
}

func digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
