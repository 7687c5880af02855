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
	"github.com/walteh/texbra/pkg/session"
	"gitlab.com/tozd/go/errors"
)

// NewInvertCmd creates a new invert command
func NewInvertCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invert [file]",
		Short: "Turn SIZE(ARG SIZE) back into \\bra[SIZE]{ARG} (not implemented)",
		Long: `Invert is the reverse of convert. Converted text carries no marker telling
which SIZE( pairs came from \bra, so inversion is not implemented and this
command always fails.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var text string
			var err error
			if len(args) == 1 {
				text, err = readFile(args[0])
			} else {
				text, err = readStdin(cmd)
			}
			if err != nil {
				return err
			}

			err = opts.Session.SetOutput(ctx, text)
			var paneErr *session.PaneError
			if errors.As(err, &paneErr) {
				opts.Logger.Error(paneErr.Message())
			}
			return err
		},
	}

	return cmd
}
