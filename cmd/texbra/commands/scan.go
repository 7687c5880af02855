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
	"strings"

	"github.com/spf13/cobra"
	"github.com/walteh/texbra/cmd/texbra/opts"
	"github.com/walteh/texbra/pkg/rewrite"
)

// NewScanCmd creates a new scan command
func NewScanCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [file]",
		Short: "List every occurrence without rewriting",
		Long: `Scan prints one line per \bra occurrence in the file or stdin:
LINE:COLUMN, the size token and the argument with newlines escaped.
Occurrences nested inside an argument are listed too.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			matches, err := rewrite.FindAll(text)
			if err != nil {
				opts.Logger.Error(err.Error())
				return err
			}

			out := cmd.OutOrStdout()
			for _, m := range matches {
				line, col := rewrite.LineColumn(text, m.Start)
				arg := strings.ReplaceAll(m.Arg(text), "\n", `\n`)
				fmt.Fprintf(out, "%d:%d\t%s\t%s\n", line, col, m.Size, arg)
			}
			opts.Logger.Infof("%d occurrence(s)", len(matches))
			return nil
		},
	}

	return cmd
}
