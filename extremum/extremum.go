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

// Package extremum finds the largest and smallest values of a derived
// result table and where they occur.
package extremum

import (
	"errors"
	"math"

	"github.com/spatialmodel/twinmap/derive"
	"gonum.org/v1/gonum/floats"
)

// ErrEmptyTable is returned when a table has no rows with a value.
var ErrEmptyTable = errors.New("extremum: table has no values")

// Record is a result value and the location it occurs at.
type Record struct {
	Point [3]float64 `json:"points"`
	Value float64    `json:"result"`
}

// Result holds the maximum and minimum of a table.
type Result struct {
	Max Record `json:"max"`
	Min Record `json:"min"`
}

// Extrema returns the maximum and minimum of the result column of t.
// When a value occurs more than once the first row wins. NaN values
// are ignored.
func Extrema(t *derive.Table) (Result, error) {
	if t.Len() == 0 {
		return Result{}, ErrEmptyTable
	}
	hi := floats.MaxIdx(t.Values)
	if math.IsNaN(t.Values[hi]) {
		return Result{}, ErrEmptyTable
	}
	lo := floats.MinIdx(t.Values)
	return Result{Max: record(t, hi), Min: record(t, lo)}, nil
}

func record(t *derive.Table, i int) Record {
	r := t.Row(i)
	return Record{Point: [3]float64{r[0], r[1], r[2]}, Value: r[3]}
}
