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
	"encoding/json"
	"errors"
	"io"

	"github.com/spatialmodel/twinmap/config"
)

// Exit codes.
const (
	ExitSuccess    = 0
	ExitFailure    = 1
	ExitValidation = 2
)

// ExitError is an error with the exit code the process should end
// with.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }

func (e *ExitError) Unwrap() error { return e.Err }

// exitError wraps err with ExitValidation if it is caused by an
// invalid request and ExitFailure otherwise.
func exitError(err error) error {
	if err == nil {
		return nil
	}
	var v *config.ValidationError
	if errors.As(err, &v) {
		return &ExitError{Code: ExitValidation, Err: err}
	}
	return &ExitError{Code: ExitFailure, Err: err}
}

// ExitCode returns the exit code for err.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var e *ExitError
	if errors.As(err, &e) {
		return e.Code
	}
	return ExitFailure
}

// printer writes command results as text or JSON.
type printer struct {
	format string
	w      io.Writer
}

func (p printer) json() bool { return p.format == "json" }

func (p printer) print(v interface{}, text func(w io.Writer) error) error {
	if p.json() {
		e := json.NewEncoder(p.w)
		e.SetIndent("", "  ")
		return e.Encode(v)
	}
	return text(p.w)
}
