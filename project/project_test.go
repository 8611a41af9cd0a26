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

package project

import (
	"errors"
	"math"
	"testing"

	"github.com/spatialmodel/twinmap/derive"
	"github.com/spatialmodel/twinmap/mesh"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

func target() *mesh.Mesh {
	return &mesh.Mesh{
		Unit: "m",
		Nodes: []r3.Vec{
			{X: 0, Y: 0, Z: 0},
			{X: 1, Y: 0, Z: 0},
			{X: 0, Y: 1, Z: 0},
			{X: 0, Y: 0, Z: 1},
		},
		Elements: []mesh.Element{{Type: mesh.Tet4, Nodes: []int{0, 1, 2, 3}}},
	}
}

func TestProjectNearest(t *testing.T) {
	// Source points are offset from the nodes by more than Radius.
	tbl, err := derive.NewTable("stress_xx", []float64{
		0.9, 0.1, 0,
		0, 0.05, 0.95,
		0.02, 0.01, 0,
		0.1, 0.8, 0.1,
	}, []float64{10, 30, 0, 20})
	if err != nil {
		t.Fatal(err)
	}
	f, values, err := Project(tbl, target())
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{0, 10, 20, 30}
	if !floats.Equal(values, want) {
		t.Errorf("%v != %v", values, want)
	}
	if f.Name != "stress_xx" || f.Vector() {
		t.Errorf("field %q vector=%v", f.Name, f.Vector())
	}
	if err := f.Check(); err != nil {
		t.Error(err)
	}
}

func TestProjectWithinRadius(t *testing.T) {
	d := Radius / 2
	tbl, err := derive.NewTable("displacement_norm", []float64{
		0, 0, 0,
		0, 0, 0,
		d, 0, 0,
		5, 5, 5,
	}, []float64{1, 3, 10, 100})
	if err != nil {
		t.Fatal(err)
	}
	_, values, err := Project(tbl, target())
	if err != nil {
		t.Fatal(err)
	}
	w := math.Exp(-Sharpness * Sharpness / 4)
	want := (1 + 3 + 10*w) / (2 + w)
	if !scalar.EqualWithinAbsOrRel(values[0], want, 1e-12, 1e-12) {
		t.Errorf("averaged value %g != %g", values[0], want)
	}
	// The other nodes are far from every source point.
	if values[1] != 10 {
		t.Errorf("node 1: %g", values[1])
	}
}

func TestProjectVectors(t *testing.T) {
	pts := []float64{
		1, 0.1, 0,
		0, 0, 0.1,
	}
	vecs := []r3.Vec{{X: 1}, {Z: -2}}
	f, err := ProjectVectors(pts, vecs, "displacement", target())
	if err != nil {
		t.Fatal(err)
	}
	want := []r3.Vec{{Z: -2}, {X: 1}, {Z: -2}, {Z: -2}}
	for i, v := range f.Vectors {
		if v != want[i] {
			t.Errorf("node %d: %v != %v", i, v, want[i])
		}
	}
	if want := []float64{2, 1, 2, 2}; !floats.Equal(f.Scalars(), want) {
		t.Errorf("scalars %v != %v", f.Scalars(), want)
	}
	if _, err := ProjectVectors(pts, vecs[:1], "displacement", target()); err == nil {
		t.Error("expected a length error")
	}
}

func TestProjectEmpty(t *testing.T) {
	tbl, err := derive.NewTable("stress_xx", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := Project(tbl, target()); !errors.Is(err, ErrNoSource) {
		t.Errorf("error %v", err)
	}
}
