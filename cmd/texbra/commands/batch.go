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

package commands

import (
	"github.com/spf13/cobra"
	"github.com/walteh/texbra/cmd/texbra/opts"
	"github.com/walteh/texbra/pkg/log"
	"github.com/walteh/texbra/pkg/operation"
	"github.com/walteh/texbra/pkg/rewrite"
	"gitlab.com/tozd/go/errors"
)

// NewBatchCmd creates a new batch command
func NewBatchCmd(opts *opts.RootOpts) *cobra.Command {
	var (
		dryRun      bool
		overwrite   bool
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "batch [root]",
		Short: "Convert every matching file under a directory",
		Long: `Batch converts every file under root (default ".") that matches the
include globs of the config and none of its ignore globs. Each file is written
next to its source with the output suffix inserted before the extension.
It will:
1. Plan the files to convert
2. Convert them in parallel
3. Print one line per file and a summary table
4. Fail if any file could not be converted`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			root := "."
			if len(args) == 1 {
				root = args[0]
			}

			cfg := *opts.Config
			if cmd.Flags().Changed("dry-run") {
				cfg.DryRun = dryRun
			}
			if cmd.Flags().Changed("overwrite") {
				cfg.Overwrite = overwrite
			}
			if cmd.Flags().Changed("concurrency") {
				cfg.Concurrency = concurrency
			}

			op, err := operation.New(operation.Options{
				Config:   &cfg,
				Root:     root,
				Rewriter: rewrite.NewDelimiterRewriter(),
				Logger:   opts.Logger,
			})
			if err != nil {
				return errors.Errorf("creating operation: %w", err)
			}

			opts.Logger.Header("converting files in " + root)

			summary, err := op.Execute(ctx)
			if err != nil {
				return errors.Errorf("running batch: %w", err)
			}

			opts.Logger.LogNewline()
			if err := opts.Logger.Summary(ctx); err != nil {
				return errors.Errorf("printing summary: %w", err)
			}

			if failed := summary.Count(log.StatusFailed); failed > 0 {
				return errors.Errorf("%d file(s) failed: %w", failed, summary.Err())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "convert without writing files")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace existing converted files")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "files converted in parallel")
	return cmd
}
