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

// Package deflect exaggerates displacement fields so that deformation
// is visible relative to the size of a model.
package deflect

import (
	"errors"
	"fmt"
	"math"

	"github.com/spatialmodel/twinmap/mesh"
	"github.com/spatialmodel/twinmap/unit"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrDegenerateField is matched by errors.Is for every
// DegenerateFieldError.
var ErrDegenerateField = errors.New("deflect: displacement field has zero magnitude")

// DegenerateFieldError is returned when a scale factor is requested
// for a reference field whose largest magnitude is zero.
type DegenerateFieldError struct {
	Points int
	Axis   int
}

func (e *DegenerateFieldError) Error() string {
	if e.Axis >= 0 {
		return fmt.Sprintf("deflect: axis %d of the reference displacement field (%d points) is zero everywhere", e.Axis, e.Points)
	}
	return fmt.Sprintf("deflect: reference displacement field (%d points) is zero everywhere", e.Points)
}

func (e *DegenerateFieldError) Unwrap() error { return ErrDegenerateField }

// Scale returns the factor that makes the largest displacement in
// field percent percent of the largest distance between any two of
// points. points are in meters and field is in fieldUnit. If axis is
// 0, 1 or 2 only that component of field is considered.
func Scale(percent float64, points, field []r3.Vec, fieldUnit string, axis int) (float64, error) {
	var maxMag float64
	for _, v := range field {
		if m := magnitude(v, axis); m > maxMag {
			maxMag = m
		}
	}
	maxMag = unit.ScalarToMeters(maxMag, fieldUnit)
	if maxMag == 0 {
		return 0, &DegenerateFieldError{Points: len(field), Axis: axis}
	}
	return percent / 100 * MaxDistance(points) / maxMag, nil
}

func magnitude(v r3.Vec, axis int) float64 {
	switch axis {
	case 0:
		return math.Abs(v.X)
	case 1:
		return math.Abs(v.Y)
	case 2:
		return math.Abs(v.Z)
	}
	return r3.Norm(v)
}

// MaxDistance returns the largest distance between any two points.
func MaxDistance(points []r3.Vec) float64 {
	var d2 float64
	for i, p := range points {
		for _, q := range points[i+1:] {
			d := r3.Sub(p, q)
			d2 = max(d2, r3.Dot(d, d))
		}
	}
	return math.Sqrt(d2)
}

// Isolate returns a copy of field with every component except axis
// set to zero. An axis outside 0 to 2 leaves the copy unchanged.
func Isolate(field []r3.Vec, axis int) []r3.Vec {
	o := make([]r3.Vec, len(field))
	for i, v := range field {
		switch axis {
		case 0:
			o[i] = r3.Vec{X: v.X}
		case 1:
			o[i] = r3.Vec{Y: v.Y}
		case 2:
			o[i] = r3.Vec{Z: v.Z}
		default:
			o[i] = v
		}
	}
	return o
}

// Apply returns a copy of m with each node moved by factor times its
// displacement. field holds one displacement per node in fieldUnit;
// if axis is 0, 1 or 2 only that component is applied. m must be in
// meters. m is not modified.
func Apply(m *mesh.Mesh, field []r3.Vec, fieldUnit string, factor float64, axis int) (*mesh.Mesh, error) {
	if len(field) != len(m.Nodes) {
		return nil, fmt.Errorf("deflect: %d displacements for %d nodes", len(field), len(m.Nodes))
	}
	if m.Unit != unit.Meter {
		return nil, fmt.Errorf("deflect: mesh is in %q; want %q", m.Unit, unit.Meter)
	}
	s := factor * unit.ScalarToMeters(1, fieldUnit)
	o := m.Copy()
	for i, v := range Isolate(field, axis) {
		o.Nodes[i] = r3.Add(o.Nodes[i], r3.Scale(s, v))
	}
	return o, nil
}
