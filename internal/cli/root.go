/*
Copyright © 2024 the TwinMAP authors.
This file is part of TwinMAP.

TwinMAP is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

TwinMAP is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with TwinMAP.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package cli implements the twinmap command line interface.
package cli

import (
	"fmt"
	"io"
	"slices"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/twinmap/config"
	"github.com/spf13/cobra"
)

// RootOptions holds the global flags.
type RootOptions struct {
	Verbose    bool
	Format     string
	ConfigPath string
}

// ValidFormats are the accepted output formats.
var ValidFormats = []string{"text", "json"}

// DefaultConfig is the configuration file read when --config is not
// given and TWINMAP_CONFIG is not set.
const DefaultConfig = "config.yaml"

// NewRootCommand creates the twinmap command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	cmd := &cobra.Command{
		Use:   "twinmap",
		Short: "TwinMAP post-processes digital twin results",
		Long: `TwinMAP maps reduced-order model results onto a simulation mesh.

It derives displacement, stress or fatigue results from a twin, projects
them onto the mesh of a named selection, optionally deflects the mesh,
and exports 3-D scenes, result tables and summaries.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return &ExitError{Code: ExitFailure, Err: fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)}
			}
			return nil
		},
	}
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log debugging information")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "configuration file (default $TWINMAP_CONFIG or "+DefaultConfig+")")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewConfigCommand(opts))
	return cmd
}

// load reads the configuration and creates a logger writing to w at
// the configured level.
func (o *RootOptions) load(w io.Writer, getenv func(string) string) (*config.Config, *logrus.Logger, error) {
	path := o.ConfigPath
	if path == "" {
		path = getenv(config.EnvPrefix + "_CONFIG")
	}
	if path == "" {
		path = DefaultConfig
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, &ExitError{Code: ExitFailure, Err: err}
	}
	log := logrus.New()
	log.SetOutput(w)
	log.SetLevel(cfg.Level())
	if o.Verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return cfg, log, nil
}
