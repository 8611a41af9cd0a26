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

package unit

import (
	"reflect"
	"testing"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

func TestToMeters(t *testing.T) {
	v := []float64{1, -2.5, 1000, 0}
	tests := []struct {
		unit string
		want []float64
	}{
		{unit: "mm", want: []float64{0.001, -0.0025, 1, 0}},
		{unit: "cm", want: []float64{0.01, -0.025, 10, 0}},
		{unit: "m", want: []float64{1, -2.5, 1000, 0}},
		{unit: "km", want: []float64{1000, -2500, 1e6, 0}},
		{unit: "furlong", want: []float64{1, -2.5, 1000, 0}},
	}
	for _, test := range tests {
		t.Run(test.unit, func(t *testing.T) {
			have := ToMeters(v, test.unit)
			if !floats.EqualApprox(have, test.want, 1e-12) {
				t.Errorf("%v != %v", have, test.want)
			}
			// Converting again from meters must not change anything.
			again := ToMeters(have, Meter)
			if !reflect.DeepEqual(again, have) {
				t.Errorf("not idempotent once in meters: %v != %v", again, have)
			}
		})
	}
}

func TestToMetersDoesNotAlias(t *testing.T) {
	v := []float64{1, 2, 3}
	o := ToMeters(v, "mm")
	if v[0] != 1 || v[1] != 2 || v[2] != 3 {
		t.Errorf("input modified: %v", v)
	}
	o[0] = 42
	if v[0] != 1 {
		t.Error("output aliases input")
	}
}

func TestFactor(t *testing.T) {
	if f, ok := Factor(" mm "); !ok || f != 0.001 {
		t.Errorf("mm: %g, %v", f, ok)
	}
	if Known("inch") {
		t.Error("inch should not be known")
	}
	if have := ScalarToMeters(5, "cm"); !scalar.EqualWithinAbs(have, 0.05, 1e-15) {
		t.Errorf("%g != 0.05", have)
	}
}
