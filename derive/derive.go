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

// Package derive computes the scalar results visualized for an
// operation from raw displacement and stress samples.
package derive

import (
	"fmt"
	"math"

	"github.com/spatialmodel/twinmap/fatigue"
	"gonum.org/v1/gonum/spatial/r3"
)

// Deriver derives result tables from raw field samples.
type Deriver struct {
	// Curve is the S-N curve used by fatigue operations.
	Curve *fatigue.Curve
}

// Derive computes the result of op at each point. field holds
// op.Category().Width() raw values per point and points holds x, y
// and z per point. The rows of the returned table are in input order.
func (d Deriver) Derive(op Operation, field, points []float64) (*Table, error) {
	if len(points)%3 != 0 {
		return nil, fmt.Errorf("derive: %d point coordinates is not a multiple of 3", len(points))
	}
	n := len(points) / 3
	if w := op.Category().Width(); len(field) != w*n {
		return nil, fmt.Errorf("derive: %s needs %d values for %d points; have %d", op, w*n, n, len(field))
	}
	var values []float64
	switch op.Category() {
	case Displacement:
		values = d.displacement(op, field)
	case Stress:
		values = d.stress(op, field)
	case Fatigue:
		if d.Curve == nil {
			return nil, fmt.Errorf("derive: %s requires an S-N curve", op)
		}
		vm := vonMises(field)
		switch op.Component() {
		case Cycle:
			values = d.Curve.CyclesToFailure(vm)
		case Damage:
			values = d.Curve.Damage(vm)
		default:
			return nil, op.invalid()
		}
	default:
		return nil, op.invalid()
	}
	if values == nil {
		return nil, op.invalid()
	}
	return NewTable(op.Column(), points, values)
}

func (op Operation) invalid() error {
	return &InvalidOperationError{Category: string(op.category), Component: string(op.component)}
}

// displacement returns nil for a component it does not handle.
func (d Deriver) displacement(op Operation, field []float64) []float64 {
	switch op.Component() {
	case UX, UY, UZ:
		return column(field, 3, components[Displacement][op.Component()])
	case Norm:
		return Norms(field)
	}
	return nil
}

func (d Deriver) stress(op Operation, field []float64) []float64 {
	switch op.Component() {
	case XX, YY, ZZ, XY, YZ, XZ, ZX:
		return column(field, 6, components[Stress][op.Component()])
	case VonMisesComponent:
		return vonMises(field)
	}
	return nil
}

// column extracts column c of a flat table with width columns.
func column(field []float64, width, c int) []float64 {
	o := make([]float64, len(field)/width)
	for i := range o {
		o[i] = field[width*i+c]
	}
	return o
}

// VonMises returns the von Mises stress of each symmetric stress
// tensor in stress, stored as xx, yy, zz, xy, yz, zx.
func VonMises(stress []float64) ([]float64, error) {
	if len(stress)%6 != 0 {
		return nil, fmt.Errorf("derive: %d stress values is not a multiple of 6", len(stress))
	}
	return vonMises(stress), nil
}

func vonMises(s []float64) []float64 {
	o := make([]float64, len(s)/6)
	for i := range o {
		xx, yy, zz := s[6*i], s[6*i+1], s[6*i+2]
		xy, yz, zx := s[6*i+3], s[6*i+4], s[6*i+5]
		o[i] = math.Sqrt(0.5 * ((xx-yy)*(xx-yy) + (yy-zz)*(yy-zz) + (zz-xx)*(zz-xx) +
			6*(xy*xy+yz*yz+zx*zx)))
	}
	return o
}

// Norms returns the Euclidean length of each 3-vector in a flat
// x, y, z sequence.
func Norms(v []float64) []float64 {
	o := make([]float64, len(v)/3)
	for i := range o {
		o[i] = r3.Norm(r3.Vec{X: v[3*i], Y: v[3*i+1], Z: v[3*i+2]})
	}
	return o
}

// Vectors reshapes a flat x, y, z sequence into vectors.
func Vectors(v []float64) ([]r3.Vec, error) {
	if len(v)%3 != 0 {
		return nil, fmt.Errorf("derive: %d vector values is not a multiple of 3", len(v))
	}
	o := make([]r3.Vec, len(v)/3)
	for i := range o {
		o[i] = r3.Vec{X: v[3*i], Y: v[3*i+1], Z: v[3*i+2]}
	}
	return o, nil
}
