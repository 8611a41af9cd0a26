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

package mesh

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Field is a mesh carrying one active per-node array: either a scalar
// per node (Values) or a vector per node (Vectors).
type Field struct {
	Mesh    *Mesh
	Name    string
	Values  []float64
	Vectors []r3.Vec
}

// Vector reports whether the active array of f is a vector array.
func (f *Field) Vector() bool { return f.Vectors != nil }

// Check makes sure the active array has one entry per mesh node.
func (f *Field) Check() error {
	n := len(f.Mesh.Nodes)
	if f.Vector() {
		if len(f.Vectors) != n {
			return fmt.Errorf("mesh: field %q has %d vectors for %d nodes", f.Name, len(f.Vectors), n)
		}
		return nil
	}
	if len(f.Values) != n {
		return fmt.Errorf("mesh: field %q has %d values for %d nodes", f.Name, len(f.Values), n)
	}
	return nil
}

// Scalars returns the per-node scalar values of f. For a vector field
// the Euclidean norm of each vector is returned.
func (f *Field) Scalars() []float64 {
	if !f.Vector() {
		return f.Values
	}
	o := make([]float64, len(f.Vectors))
	for i, v := range f.Vectors {
		o[i] = r3.Norm(v)
	}
	return o
}
