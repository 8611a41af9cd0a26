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

package derive

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Table is the derived result table: columns x, y, z and one result
// column, one row per input point, in input order.
type Table struct {
	X, Y, Z []float64
	Column  string
	Values  []float64
}

// NewTable creates a table from flat x,y,z point coordinates and
// one value per point.
func NewTable(column string, points, values []float64) (*Table, error) {
	if len(points)%3 != 0 {
		return nil, fmt.Errorf("derive: %d point coordinates is not a multiple of 3", len(points))
	}
	n := len(points) / 3
	if len(values) != n {
		return nil, fmt.Errorf("derive: %d values for %d points", len(values), n)
	}
	t := &Table{
		X:      make([]float64, n),
		Y:      make([]float64, n),
		Z:      make([]float64, n),
		Column: column,
		Values: values,
	}
	for i := 0; i < n; i++ {
		t.X[i], t.Y[i], t.Z[i] = points[3*i], points[3*i+1], points[3*i+2]
	}
	return t, nil
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Values) }

// Point returns the location of row i.
func (t *Table) Point(i int) r3.Vec { return r3.Vec{X: t.X[i], Y: t.Y[i], Z: t.Z[i]} }

// Columns returns the column names in order.
func (t *Table) Columns() []string { return []string{"x", "y", "z", t.Column} }

// Row returns row i in column order.
func (t *Table) Row(i int) [4]float64 {
	return [4]float64{t.X[i], t.Y[i], t.Z[i], t.Values[i]}
}
