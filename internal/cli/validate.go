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
	"fmt"
	"io"
	"os"

	"github.com/spatialmodel/twinmap/config"
	"github.com/spatialmodel/twinmap/pipeline"
	"github.com/spf13/cobra"
)

// ValidationResult is the JSON output of validate.
type ValidationResult struct {
	Valid     bool   `json:"valid"`
	Operation string `json:"operation,omitempty"`
	Error     string `json:"error,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <request>",
		Short: "Check a request against the configuration",
		Long: `Check the ROM index, named selection, operation and deformation scale
of a request against the configuration without reading any result.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
}

func runValidate(rootOpts *RootOptions, path string, stdout, stderr io.Writer) error {
	cfg, log, err := rootOpts.load(stderr, os.Getenv)
	if err != nil {
		return err
	}
	req, err := config.LoadRequest(path)
	if err != nil {
		return exitError(err)
	}
	op, verr := pipeline.New(cfg, log).Validate(req)
	res := ValidationResult{Valid: verr == nil}
	if verr == nil {
		res.Operation = op.Column()
	} else {
		res.Error = verr.Error()
	}
	pr := printer{format: rootOpts.Format, w: stdout}
	err = pr.print(res, func(w io.Writer) error {
		if res.Valid {
			_, err := fmt.Fprintf(w, "✓ %s is valid (%s)\n", path, res.Operation)
			return err
		}
		_, err := fmt.Fprintf(w, "✗ %s\n", res.Error)
		return err
	})
	if err != nil {
		return exitError(err)
	}
	return exitError(verr)
}
