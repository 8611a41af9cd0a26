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

package config

import (
	"fmt"
	"slices"

	"github.com/spatialmodel/twinmap/derive"
)

// ValidationError is returned when a request asks for something the
// configuration does not allow.
type ValidationError struct {
	Field   string
	Value   interface{}
	Allowed interface{}
	Msg     string
}

func (e *ValidationError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("config: %s %v %s", e.Field, e.Value, e.Msg)
	}
	return fmt.Sprintf("config: %s %v is not valid; available: %v", e.Field, e.Value, e.Allowed)
}

// Validate checks the input parameters of req against c, in the order
// ROM index, named selection, operation and deformation scale, and
// returns the first problem found. On success it returns the
// requested operation.
func (c *Config) Validate(req *Request) (derive.Operation, error) {
	p := req.InputParameters
	if !slices.Contains(c.ROMs, p.ROMIndex) {
		return derive.Operation{}, &ValidationError{Field: "ROM index", Value: p.ROMIndex, Allowed: c.ROMs}
	}
	if p.NamedSelection != c.WholeBody && !slices.Contains(c.NamedSelections, p.NamedSelection) {
		return derive.Operation{}, &ValidationError{Field: "named selection", Value: fmt.Sprintf("%q", p.NamedSelection), Allowed: c.NamedSelections}
	}
	if len(p.Operation) != 2 {
		return derive.Operation{}, &ValidationError{Field: "operation", Value: p.Operation, Msg: "should have two parts"}
	}
	op, err := derive.ParseOperation(p.Operation[0], p.Operation[1])
	if err != nil || !c.Allowed(op) {
		return derive.Operation{}, &ValidationError{Field: "operation", Value: req.Detail(), Allowed: c.OperationNames()}
	}
	if !slices.Contains(c.DeformationScales, p.DeformationScale) {
		return derive.Operation{}, &ValidationError{Field: "deformation scale", Value: p.DeformationScale, Allowed: c.DeformationScales}
	}
	if op.Category() == derive.Fatigue && req.InputFiles.SNCurveFile == "" {
		return derive.Operation{}, &ValidationError{Field: "S-N curve file", Value: `""`, Msg: "is required for fatigue operations"}
	}
	return op, nil
}

// DeflectionPercent returns the deflection, in percent of the model
// size, for req: its deformation scale if set and the configured
// autoscale otherwise.
func (c *Config) DeflectionPercent(req *Request) float64 {
	if s := req.InputParameters.DeformationScale; s != 0 {
		return s
	}
	return c.Autoscale
}
