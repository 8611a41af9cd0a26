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

// Package unit converts lengths between linear unit systems.
package unit

import (
	"strings"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
)

// Meter is the unit every coordinate and displacement is
// normalized to before it is used in a calculation.
const Meter = "m"

var toMeters = map[string]float64{
	"mm": 0.001,
	"cm": 0.01,
	"m":  1,
	"km": 1000,
}

// Factor returns the multiplier that converts a value in unit u to
// meters. ok is false if u is not a recognized length unit.
func Factor(u string) (f float64, ok bool) {
	f, ok = toMeters[strings.TrimSpace(u)]
	return f, ok
}

// Known reports whether u is a recognized length unit.
func Known(u string) bool {
	_, ok := Factor(u)
	return ok
}

// ToMeters returns a copy of values converted from unit u to meters.
// Values in an unrecognized unit are returned unchanged and a
// warning is logged.
func ToMeters(values []float64, u string) []float64 {
	o := make([]float64, len(values))
	copy(o, values)
	f, ok := Factor(u)
	if !ok {
		logrus.WithField("unit", u).Warn("unit: unrecognized length unit; values left unchanged")
		return o
	}
	if f != 1 {
		floats.Scale(f, o)
	}
	return o
}

// ScalarToMeters converts a single value from unit u to meters,
// following the same rules as ToMeters.
func ScalarToMeters(v float64, u string) float64 {
	return ToMeters([]float64{v}, u)[0]
}
