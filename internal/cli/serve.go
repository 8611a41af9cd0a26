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

package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spatialmodel/twinmap/pipeline"
	"github.com/spatialmodel/twinmap/server"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

type serveOptions struct {
	addr  string
	rate  float64
	burst int
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve post-processing requests over HTTP",
		Long: `Serve the /load-config, /load-data, /export-3d, /export-json,
/export-field and /preview endpoints until interrupted.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := rootOpts.load(cmd.ErrOrStderr(), os.Getenv)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()
			s := server.New(pipeline.New(cfg, log), log, rate.Limit(opts.rate), opts.burst)
			return exitError(s.ListenAndServe(ctx, opts.addr))
		},
	}
	cmd.Flags().StringVar(&opts.addr, "addr", ":8000", "address to listen on")
	cmd.Flags().Float64Var(&opts.rate, "rate", 5, "requests per second allowed per client")
	cmd.Flags().IntVar(&opts.burst, "burst", 10, "request burst allowed per client")
	return cmd
}
