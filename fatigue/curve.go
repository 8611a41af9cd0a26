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

// Package fatigue calculates cycles to failure and damage from an
// S-N (stress versus cycles to failure) curve.
package fatigue

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
)

// Curve is an S-N curve interpolated linearly in log10-log10 space.
// Outside the tabulated stress range the first and last segments are
// extrapolated. Cycle counts above the largest tabulated count are
// clamped to it: no damage accrues beyond the knee of the curve.
type Curve struct {
	// Stress and Cycles are the tabulated points, sorted by
	// increasing stress.
	Stress, Cycles []float64

	logS, logN []float64
	fit        interp.PiecewiseLinear
	maxCycles  float64
}

// NewCurve creates an S-N curve from paired stress and cycle values.
// All values must be strictly positive, there must be at least two
// points, and no stress value may repeat.
func NewCurve(stress, cycles []float64) (*Curve, error) {
	if len(stress) != len(cycles) {
		return nil, fmt.Errorf("fatigue: %d stress values but %d cycle values", len(stress), len(cycles))
	}
	if len(stress) < 2 {
		return nil, fmt.Errorf("fatigue: S-N curve needs at least 2 points; have %d", len(stress))
	}
	idx := make([]int, len(stress))
	for i := range idx {
		idx[i] = i
		if !(stress[i] > 0) || !(cycles[i] > 0) {
			return nil, fmt.Errorf("fatigue: S-N curve point %d (%g, %g) is not strictly positive", i, stress[i], cycles[i])
		}
	}
	sort.SliceStable(idx, func(a, b int) bool { return stress[idx[a]] < stress[idx[b]] })

	c := &Curve{
		Stress: make([]float64, len(idx)),
		Cycles: make([]float64, len(idx)),
		logS:   make([]float64, len(idx)),
		logN:   make([]float64, len(idx)),
	}
	for i, j := range idx {
		c.Stress[i], c.Cycles[i] = stress[j], cycles[j]
		c.logS[i], c.logN[i] = math.Log10(stress[j]), math.Log10(cycles[j])
		if i > 0 && !(c.logS[i] > c.logS[i-1]) {
			return nil, fmt.Errorf("fatigue: S-N curve stress value %g repeats", stress[j])
		}
	}
	if err := c.fit.Fit(c.logS, c.logN); err != nil {
		return nil, fmt.Errorf("fatigue: fitting S-N curve: %w", err)
	}
	c.maxCycles = floats.Max(c.Cycles)
	return c, nil
}

// MaxCycles returns the largest tabulated cycle count.
func (c *Curve) MaxCycles() float64 { return c.maxCycles }

// logCycles evaluates log10(cycles) at log10(stress) x, extrapolating
// the end segments linearly.
func (c *Curve) logCycles(x float64) float64 {
	n := len(c.logS)
	switch {
	case x < c.logS[0]:
		return extrapolate(c.logS[0], c.logN[0], c.logS[1], c.logN[1], x)
	case x > c.logS[n-1]:
		return extrapolate(c.logS[n-2], c.logN[n-2], c.logS[n-1], c.logN[n-1], x)
	default:
		return c.fit.Predict(x)
	}
}

func extrapolate(x0, y0, x1, y1, x float64) float64 {
	return y0 + (x-x0)*(y1-y0)/(x1-x0)
}

// CyclesToFailure returns the number of cycles to failure at each of
// the given von Mises stresses. Non-positive stresses never cause
// damage and get the largest tabulated cycle count.
func (c *Curve) CyclesToFailure(vonMises []float64) []float64 {
	o := make([]float64, len(vonMises))
	for i, s := range vonMises {
		if !(s > 0) {
			o[i] = c.maxCycles
			continue
		}
		n := math.Pow(10, c.logCycles(math.Log10(s)))
		if n > c.maxCycles {
			n = c.maxCycles
		}
		o[i] = n
	}
	return o
}

// Damage returns the damage, 1 / cycles to failure, at each of the
// given von Mises stresses.
func (c *Curve) Damage(vonMises []float64) []float64 {
	o := c.CyclesToFailure(vonMises)
	for i, n := range o {
		o[i] = 1 / n
	}
	return o
}
