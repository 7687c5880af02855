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
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/texbra/cmd/texbra/commands"
	"github.com/walteh/texbra/cmd/texbra/opts"
	"github.com/walteh/texbra/pkg/config"
	"github.com/walteh/texbra/pkg/log"
	"github.com/walteh/texbra/pkg/session"
	"gitlab.com/tozd/go/errors"
)

// newRootCmd builds the command tree. Flags live on the command rather than
// in package globals so tests can build fresh trees.
func newRootCmd() *cobra.Command {
	var (
		configFile string
		debug      bool
	)
	rootOpts := &opts.RootOpts{}

	cmd := &cobra.Command{
		Use:   "texbra",
		Short: "Rewrite \\bra[SIZE]{ARG} macros into explicit SIZE( ... SIZE) delimiters",
		Long: `texbra finds every \bra[\SIZE]{ARG} in a text and rewrites it into
\SIZE(ARG\SIZE). Nested braces inside ARG are kept as they are, and
occurrences nested inside ARG are rewritten as well.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, configFile)
			if err != nil {
				return err
			}

			level := cfg.Level()
			if debug {
				level = zerolog.DebugLevel
			}

			rootOpts.RunID = uuid.NewString()
			rootOpts.Config = cfg
			rootOpts.Logger = log.New(cmd.ErrOrStderr(), level).With("run_id", rootOpts.RunID)
			rootOpts.Session = session.New(cfg.Extensions...)

			cmd.SetContext(log.NewContext(cmd.Context(), rootOpts.Logger))
			rootOpts.Logger.Zerolog().Debug().Str("config", cfg.String()).Msg("configured")
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", config.DefaultFile, "config file path")
	cmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")

	cmd.AddCommand(
		commands.NewConvertCmd(rootOpts),
		commands.NewInvertCmd(rootOpts),
		commands.NewBatchCmd(rootOpts),
		commands.NewScanCmd(rootOpts),
		newVersionCmd(),
	)

	return cmd
}

// loadConfig reads the config file. A missing default file means defaults;
// a missing file the user asked for is an error.
func loadConfig(cmd *cobra.Command, path string) (*config.Config, error) {
	if !cmd.Flags().Changed("config") {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return config.Default(), nil
		}
	}

	cfg, err := config.Load(cmd.Context(), path)
	if err != nil {
		return nil, errors.Errorf("loading config: %w", err)
	}
	return cfg, nil
}
