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
	"fmt"

	"github.com/spf13/cobra"
	"github.com/walteh/texbra/cmd/texbra/opts"
	"github.com/walteh/texbra/pkg/operation"
	"github.com/walteh/texbra/pkg/session"
	"gitlab.com/tozd/go/errors"
)

// NewConvertCmd creates a new convert command
func NewConvertCmd(opts *opts.RootOpts) *cobra.Command {
	var (
		output string
		diff   bool
	)

	cmd := &cobra.Command{
		Use:   "convert [file]",
		Short: "Rewrite one file or stdin",
		Long: `Convert rewrites every \bra[\SIZE]{ARG} in the input into \SIZE(ARG\SIZE).
The input is the given file (which must have an accepted extension) or stdin.
The result goes to stdout, or to --output, which must not exist yet.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess := opts.Session

			var err error
			if len(args) == 1 {
				err = sess.Load(ctx, args[0])
			} else {
				var text string
				if text, err = readStdin(cmd); err != nil {
					return err
				}
				err = sess.SetInput(ctx, text)
			}
			if err != nil {
				var paneErr *session.PaneError
				if errors.As(err, &paneErr) {
					opts.Logger.Error(paneErr.Message())
				}
				return err
			}

			if diff {
				fmt.Fprintln(cmd.ErrOrStderr(), operation.Diff(sess.Input(), sess.Output()))
			}

			if output != "" {
				if err := sess.Save(ctx, output); err != nil {
					return errors.Errorf("saving output: %w", err)
				}
				opts.Logger.Successf("wrote %s", output)
				return nil
			}

			_, err = fmt.Fprint(cmd.OutOrStdout(), sess.Output())
			return err
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the result to a new file instead of stdout")
	cmd.Flags().BoolVar(&diff, "diff", false, "print a diff of the changes to stderr")
	return cmd
}
