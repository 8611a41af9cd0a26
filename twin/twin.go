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

// Package twin evaluates reduced-order models (digital twins) that
// reproduce a result field over a set of points.
package twin

import (
	"context"
	"fmt"
)

// Evaluator evaluates the reduced-order models of a twin.
type Evaluator interface {
	// ROMNames returns the names of the reduced-order models, in
	// index order.
	ROMNames() []string

	// NamedSelections returns the named selections of a model.
	NamedSelections(rom string) ([]string, error)

	// Snapshot returns the flat field values and x, y, z point
	// coordinates of a model, restricted to the named selection if
	// selection is not nil.
	Snapshot(ctx context.Context, rom string, selection *string) (field, points []float64, err error)

	// Outputs returns the scalar outputs of the twin.
	Outputs() map[string]float64
}

// Inputs are the values a twin is initialized with.
type Inputs struct {
	ROMParameters map[string]float64 `json:"rom_parameters,omitempty" toml:"rom_parameters"`
	ROMInputs     map[string]float64 `json:"rom_inputs,omitempty" toml:"rom_inputs"`
	FieldInputs   map[string]string  `json:"field_inputs,omitempty" toml:"field_inputs"`
}

// ROM returns the name of the model at index i of e.
func ROM(e Evaluator, i int) (string, error) {
	names := e.ROMNames()
	if i < 0 || i >= len(names) {
		return "", fmt.Errorf("twin: ROM index %d out of range; twin has %d models", i, len(names))
	}
	return names[i], nil
}
