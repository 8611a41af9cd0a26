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

// Package plot adapts curves and fields to gonum plotters.
package plot

import "fmt"

// XYs implements the gonum.org/v1/plot/plotter.XYer interface.
type XYs []XY

// XY is an x and y value.
type XY struct{ X, Y float64 }

// Len returns the number of X,Y pairs.
func (xys XYs) Len() int {
	return len(xys)
}

// XY return the x and y values at index i, where i < Len()
func (xys XYs) XY(i int) (float64, float64) {
	return xys[i].X, xys[i].Y
}

// NewXYs pairs x and y values.
func NewXYs(x, y []float64) (XYs, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("plot: %d x values but %d y values", len(x), len(y))
	}
	o := make(XYs, len(x))
	for i := range x {
		o[i] = XY{X: x[i], Y: y[i]}
	}
	return o, nil
}

// XYZs implements the gonum.org/v1/plot/plotter.XYZer interface:
// a location in the plot plane with a value at each location.
type XYZs []XYZ

// XYZ is a location and a value.
type XYZ struct{ X, Y, Z float64 }

// Len returns the number of points.
func (xyzs XYZs) Len() int { return len(xyzs) }

// XYZ returns the location and value of point i.
func (xyzs XYZs) XYZ(i int) (float64, float64, float64) {
	return xyzs[i].X, xyzs[i].Y, xyzs[i].Z
}

// XY returns the location of point i.
func (xyzs XYZs) XY(i int) (float64, float64) {
	return xyzs[i].X, xyzs[i].Y
}
