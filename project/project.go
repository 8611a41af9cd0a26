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

// Package project interpolates scattered point results onto the nodes
// of a mesh.
package project

import (
	"errors"
	"fmt"
	"math"

	"github.com/spatialmodel/twinmap/derive"
	"github.com/spatialmodel/twinmap/mesh"
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// Radius is the search radius in meters. Source points closer than
	// Radius to a node are averaged; otherwise the node takes the value
	// of its closest source point.
	Radius = 1e-4

	// Sharpness sets how quickly the Gaussian averaging weight falls
	// off with distance inside Radius.
	Sharpness = 5.0
)

// ErrNoSource is returned when there are no source points to project.
var ErrNoSource = errors.New("project: no source points")

// Project interpolates the result column of t onto the nodes of
// target. It returns the target mesh carrying the field and the
// per-node values, in node order.
func Project(t *derive.Table, target *mesh.Mesh) (*mesh.Field, []float64, error) {
	src := make([]r3.Vec, t.Len())
	for i := range src {
		src[i] = t.Point(i)
	}
	ip, err := newInterpolator(src)
	if err != nil {
		return nil, nil, err
	}
	values := make([]float64, len(target.Nodes))
	for i, n := range target.Nodes {
		idx, w := ip.weights(n)
		var v float64
		for j, k := range idx {
			v += w[j] * t.Values[k]
		}
		values[i] = v
	}
	f := &mesh.Field{Mesh: target, Name: t.Column, Values: values}
	return f, values, nil
}

// ProjectVectors interpolates one vector per source point onto the
// nodes of target. points holds x, y and z per source point.
func ProjectVectors(points []float64, vectors []r3.Vec, name string, target *mesh.Mesh) (*mesh.Field, error) {
	src, err := derive.Vectors(points)
	if err != nil {
		return nil, fmt.Errorf("project: %w", err)
	}
	if len(src) != len(vectors) {
		return nil, fmt.Errorf("project: %d vectors for %d points", len(vectors), len(src))
	}
	ip, err := newInterpolator(src)
	if err != nil {
		return nil, err
	}
	o := make([]r3.Vec, len(target.Nodes))
	for i, n := range target.Nodes {
		idx, w := ip.weights(n)
		for j, k := range idx {
			o[i] = r3.Add(o[i], r3.Scale(w[j], vectors[k]))
		}
	}
	return &mesh.Field{Mesh: target, Name: name, Vectors: o}, nil
}

type interpolator struct {
	tree *kdtree.Tree
}

func newInterpolator(src []r3.Vec) (*interpolator, error) {
	if len(src) == 0 {
		return nil, ErrNoSource
	}
	pts := make(points, len(src))
	for i, p := range src {
		pts[i] = point{Vec: p, index: i}
	}
	return &interpolator{tree: kdtree.New(pts, false)}, nil
}

// weights returns the indices of the source points contributing to
// the value at q and their weights, which sum to one.
func (ip *interpolator) weights(q r3.Vec) ([]int, []float64) {
	keep := kdtree.NewDistKeeper(Radius * Radius)
	ip.tree.NearestSet(keep, point{Vec: q})
	var (
		idx []int
		w   []float64
		sum float64
	)
	for _, c := range keep.Heap {
		if c.Comparable == nil {
			continue
		}
		d := math.Sqrt(c.Dist) * Sharpness / Radius
		wi := math.Exp(-d * d)
		idx = append(idx, c.Comparable.(point).index)
		w = append(w, wi)
		sum += wi
	}
	if len(idx) == 0 {
		c, _ := ip.tree.Nearest(point{Vec: q})
		return []int{c.(point).index}, []float64{1}
	}
	for i := range w {
		w[i] /= sum
	}
	return idx, w
}

// point is a source location in the k-d tree.
type point struct {
	r3.Vec
	index int
}

func (p point) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(point)
	switch d {
	case 0:
		return p.X - q.X
	case 1:
		return p.Y - q.Y
	case 2:
		return p.Z - q.Z
	}
	panic("project: illegal dimension")
}

func (p point) Dims() int { return 3 }

// Distance returns the squared distance between p and c.
func (p point) Distance(c kdtree.Comparable) float64 {
	d := r3.Sub(p.Vec, c.(point).Vec)
	return r3.Dot(d, d)
}

type points []point

func (p points) Index(i int) kdtree.Comparable         { return p[i] }
func (p points) Len() int                              { return len(p) }
func (p points) Pivot(d kdtree.Dim) int                { return plane{points: p, Dim: d}.Pivot() }
func (p points) Slice(start, end int) kdtree.Interface { return p[start:end] }

// plane sorts points along one dimension.
type plane struct {
	kdtree.Dim
	points
}

func (p plane) Less(i, j int) bool {
	return p.points[i].Compare(p.points[j], p.Dim) < 0
}
func (p plane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }
func (p plane) Slice(start, end int) kdtree.SortSlicer {
	p.points = p.points[start:end]
	return p
}
func (p plane) Swap(i, j int) {
	p.points[i], p.points[j] = p.points[j], p.points[i]
}
