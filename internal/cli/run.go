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
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/skratchdot/open-golang/open"
	"github.com/spatialmodel/twinmap/config"
	"github.com/spatialmodel/twinmap/pipeline"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Artifact sets accepted by run --only.
var runTargets = []string{"all", "3d", "json", "field"}

type runOptions struct {
	only      string
	outputDir string
	open      bool
}

// openFile opens a file in the default application.
var openFile = open.Start

func (o *runOptions) addFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.only, "only", "all", "artifacts to write (all|3d|json|field)")
	fs.StringVarP(&o.outputDir, "output-dir", "o", "", "write every artifact to this directory")
	fs.BoolVar(&o.open, "open", false, "open the 3-D scene or report when done")
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run <request>",
		Short: "Run a post-processing request",
		Long: `Run the post-processing request in the given JSON or TOML file.

Artifacts are written only if every stage succeeds.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRequest(cmd.Context(), rootOpts, opts, args[0], cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	opts.addFlags(cmd.Flags())
	return cmd
}

func runRequest(ctx context.Context, rootOpts *RootOptions, opts *runOptions, path string, stdout, stderr io.Writer) error {
	if !slices.Contains(runTargets, opts.only) {
		return &ExitError{Code: ExitFailure, Err: fmt.Errorf("invalid --only %q: must be one of %v", opts.only, runTargets)}
	}
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, log, err := rootOpts.load(stderr, os.Getenv)
	if err != nil {
		return err
	}
	req, err := config.LoadRequest(path)
	if err != nil {
		return exitError(err)
	}
	if opts.outputDir != "" {
		req.OutputFiles.OutputDir = opts.outputDir
		req.OutputFiles.File3D.Output3DDir = opts.outputDir
	}

	p := pipeline.New(cfg, log)
	run := map[string]func(context.Context, *config.Request) (*pipeline.Outcome, error){
		"all":   p.Run,
		"3d":    p.Export3D,
		"json":  p.ExportJSON,
		"field": p.ExportField,
	}[opts.only]
	o, err := run(ctx, req)
	if err != nil {
		return exitError(err)
	}

	pr := printer{format: rootOpts.Format, w: stdout}
	err = pr.print(o, func(w io.Writer) error {
		fmt.Fprintf(w, "%s\n", o.Operation)
		if o.Scale != 0 {
			fmt.Fprintf(w, "  deflection scale: %g\n", o.Scale)
		}
		if o.Summary != nil {
			for _, k := range []string{"max ", "min "} {
				r := o.Summary.OutputParameters[k+o.Operation]
				fmt.Fprintf(w, "  %s%s: %g %s at %v\n", k, o.Operation, r.Value, o.Summary.Unit, r.Point)
			}
		}
		for _, f := range o.Files {
			fmt.Fprintf(w, "  wrote %s\n", f)
		}
		return nil
	})
	if err != nil {
		return exitError(err)
	}
	if opts.open && cfg.OutputBucket == "" {
		if f := viewable(o.Files); f != "" {
			if err := openFile(f); err != nil {
				log.WithError(err).Warn("could not open " + f)
			}
		}
	}
	return nil
}

// viewable returns the first 3-D scene or PDF report in files.
func viewable(files []string) string {
	for _, f := range files {
		switch filepath.Ext(f) {
		case ".gltf", ".wrl", ".obj", ".pdf":
			return f
		}
	}
	return ""
}
