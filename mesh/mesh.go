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

/*Package mesh defines finite-element meshes, the fields attached to them,
and the simulation backend that supplies them.*/
package mesh

import (
	"context"
	"fmt"

	"github.com/spatialmodel/twinmap/unit"
	"gonum.org/v1/gonum/spatial/r3"
)

// Backend describes a simulation backend: given a result file, it
// returns the mesh the result is defined on. The returned mesh carries
// the unit of its coordinates and its named selections.
type Backend interface {
	Load(ctx context.Context, path string) (*Mesh, error)
}

// ElementType specifies the topology of an element.
type ElementType string

// Supported element types.
const (
	Tri3     ElementType = "tri3"
	Quad4    ElementType = "quad4"
	Tet4     ElementType = "tet4"
	Hex8     ElementType = "hex8"
	Wedge6   ElementType = "wedge6"
	Pyramid5 ElementType = "pyramid5"
)

// Nodes returns the number of nodes an element of type t connects.
func (t ElementType) Nodes() int {
	switch t {
	case Tri3:
		return 3
	case Quad4, Tet4:
		return 4
	case Pyramid5:
		return 5
	case Wedge6:
		return 6
	case Hex8:
		return 8
	default:
		return 0
	}
}

// Shell reports whether elements of type t are surface elements.
func (t ElementType) Shell() bool { return t == Tri3 || t == Quad4 }

// Element is a single mesh element.
type Element struct {
	Type  ElementType
	Nodes []int // indices into Mesh.Nodes
}

// Selection is a named subset of mesh elements.
type Selection struct {
	Name     string
	Elements []int // indices into Mesh.Elements
}

// Mesh is an unstructured 3-D finite-element mesh.
type Mesh struct {
	Nodes      []r3.Vec
	Elements   []Element
	Unit       string
	Selections []Selection
}

// Validate checks that the element connectivity and the named
// selections refer to existing nodes and elements.
func (m *Mesh) Validate() error {
	for i, e := range m.Elements {
		if n := e.Type.Nodes(); n == 0 {
			return fmt.Errorf("mesh: element %d has unsupported type %q", i, e.Type)
		} else if len(e.Nodes) != n {
			return fmt.Errorf("mesh: element %d (%s) has %d nodes; want %d", i, e.Type, len(e.Nodes), n)
		}
		for _, n := range e.Nodes {
			if n < 0 || n >= len(m.Nodes) {
				return fmt.Errorf("mesh: element %d refers to missing node %d", i, n)
			}
		}
	}
	for _, s := range m.Selections {
		for _, e := range s.Elements {
			if e < 0 || e >= len(m.Elements) {
				return fmt.Errorf("mesh: named selection %q refers to missing element %d", s.Name, e)
			}
		}
	}
	return nil
}

// AvailableNamedSelections returns the names of the named selections
// in the order they are stored.
func (m *Mesh) AvailableNamedSelections() []string {
	o := make([]string, len(m.Selections))
	for i, s := range m.Selections {
		o[i] = s.Name
	}
	return o
}

// NamedSelection returns the element indices of the selection with
// exactly the given name.
func (m *Mesh) NamedSelection(name string) ([]int, error) {
	for _, s := range m.Selections {
		if s.Name == name {
			return s.Elements, nil
		}
	}
	return nil, fmt.Errorf("mesh: no named selection %q", name)
}

// Copy returns a deep copy of m.
func (m *Mesh) Copy() *Mesh {
	o := &Mesh{
		Nodes:      make([]r3.Vec, len(m.Nodes)),
		Elements:   make([]Element, len(m.Elements)),
		Unit:       m.Unit,
		Selections: make([]Selection, len(m.Selections)),
	}
	copy(o.Nodes, m.Nodes)
	for i, e := range m.Elements {
		o.Elements[i] = Element{Type: e.Type, Nodes: append([]int(nil), e.Nodes...)}
	}
	for i, s := range m.Selections {
		o.Selections[i] = Selection{Name: s.Name, Elements: append([]int(nil), s.Elements...)}
	}
	return o
}

// ToMeters returns a copy of m with its node coordinates converted
// to meters. A mesh already in meters is copied unchanged. Coordinates
// in an unrecognized or missing unit pass through unchanged and are
// taken to be meters from then on.
func (m *Mesh) ToMeters() *Mesh {
	o := m.Copy()
	o.Unit = unit.Meter
	if m.Unit == unit.Meter {
		return o
	}
	flat := unit.ToMeters(m.Points(), m.Unit)
	for i := range o.Nodes {
		o.Nodes[i] = r3.Vec{X: flat[3*i], Y: flat[3*i+1], Z: flat[3*i+2]}
	}
	return o
}

// Points returns the node coordinates as a flat x,y,z sequence.
func (m *Mesh) Points() []float64 {
	o := make([]float64, 0, 3*len(m.Nodes))
	for _, p := range m.Nodes {
		o = append(o, p.X, p.Y, p.Z)
	}
	return o
}

// Scope returns the mesh restricted to the given elements. Every node
// referenced by a kept element is kept; nodes are renumbered in
// ascending order of their original index. Named selections are
// restricted to the kept elements and dropped if they become empty.
func (m *Mesh) Scope(elements []int) (*Mesh, error) {
	keepElem := make(map[int]int, len(elements))
	keepNode := make([]bool, len(m.Nodes))
	var order []int
	for _, ei := range elements {
		if ei < 0 || ei >= len(m.Elements) {
			return nil, fmt.Errorf("mesh: scoping refers to missing element %d", ei)
		}
		if _, ok := keepElem[ei]; ok {
			continue
		}
		keepElem[ei] = len(order)
		order = append(order, ei)
		for _, n := range m.Elements[ei].Nodes {
			keepNode[n] = true
		}
	}
	newNode := make([]int, len(m.Nodes))
	o := &Mesh{Unit: m.Unit}
	for i, k := range keepNode {
		if !k {
			newNode[i] = -1
			continue
		}
		newNode[i] = len(o.Nodes)
		o.Nodes = append(o.Nodes, m.Nodes[i])
	}
	o.Elements = make([]Element, len(order))
	for i, ei := range order {
		e := m.Elements[ei]
		nodes := make([]int, len(e.Nodes))
		for j, n := range e.Nodes {
			nodes[j] = newNode[n]
		}
		o.Elements[i] = Element{Type: e.Type, Nodes: nodes}
	}
	for _, s := range m.Selections {
		var sel []int
		for _, ei := range s.Elements {
			if j, ok := keepElem[ei]; ok {
				sel = append(sel, j)
			}
		}
		if len(sel) > 0 {
			o.Selections = append(o.Selections, Selection{Name: s.Name, Elements: sel})
		}
	}
	return o, nil
}

// Bounds returns the minimum and maximum node coordinates.
func (m *Mesh) Bounds() (lo, hi r3.Vec) {
	for i, p := range m.Nodes {
		if i == 0 {
			lo, hi = p, p
			continue
		}
		lo = r3.Vec{X: min(lo.X, p.X), Y: min(lo.Y, p.Y), Z: min(lo.Z, p.Z)}
		hi = r3.Vec{X: max(hi.X, p.X), Y: max(hi.Y, p.Y), Z: max(hi.Z, p.Z)}
	}
	return lo, hi
}
