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
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/kr/pretty"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

func loadBlock(t *testing.T) *Mesh {
	t.Helper()
	m, err := FileBackend{}.Load(context.Background(), "testdata/block.yaml")
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestLoad(t *testing.T) {
	m := loadBlock(t)
	if len(m.Nodes) != 12 || len(m.Elements) != 2 {
		t.Fatalf("nodes=%d elements=%d", len(m.Nodes), len(m.Elements))
	}
	if m.Unit != "mm" {
		t.Errorf("unit %q", m.Unit)
	}
	want := []string{"LEFT_BLOCK", "Right_Block", "BOTH"}
	if have := m.AvailableNamedSelections(); !reflect.DeepEqual(have, want) {
		t.Errorf("%v != %v", have, want)
	}
}

func TestDecodeJSON(t *testing.T) {
	doc := `{"unit": "m", "nodes": [[0,0,0],[1,0,0],[0,1,0]],
		"elements": [{"type": "tri3", "nodes": [0,1,2]}]}`
	m, err := Decode(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Elements) != 1 || m.Elements[0].Type != Tri3 {
		t.Errorf("%# v", pretty.Formatter(m))
	}
}

func TestDecodeInvalid(t *testing.T) {
	docs := map[string]string{
		"missing node": `{"nodes": [[0,0,0]], "elements": [{"type": "tri3", "nodes": [0,1,2]}]}`,
		"bad type":     `{"nodes": [[0,0,0]], "elements": [{"type": "hex20", "nodes": [0]}]}`,
		"node count":   `{"nodes": [[0,0,0],[1,0,0]], "elements": [{"type": "tri3", "nodes": [0,1]}]}`,
		"selection":    `{"nodes": [[0,0,0]], "named_selections": [{"name": "A", "elements": [3]}]}`,
	}
	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			if _, err := Decode(strings.NewReader(doc)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestScope(t *testing.T) {
	m := loadBlock(t)
	els, err := m.NamedSelection("Right_Block")
	if err != nil {
		t.Fatal(err)
	}
	s, err := m.Scope(els)
	if err != nil {
		t.Fatal(err)
	}
	wantNodes := []r3.Vec{
		{X: 10, Y: 0, Z: 0}, {X: 10, Y: 10, Z: 0}, {X: 10, Y: 0, Z: 10}, {X: 10, Y: 10, Z: 10},
		{X: 20, Y: 0, Z: 0}, {X: 20, Y: 10, Z: 0}, {X: 20, Y: 0, Z: 10}, {X: 20, Y: 10, Z: 10},
	}
	if !reflect.DeepEqual(s.Nodes, wantNodes) {
		t.Errorf("nodes: %v", pretty.Diff(s.Nodes, wantNodes))
	}
	wantElems := []Element{{Type: Hex8, Nodes: []int{0, 4, 5, 1, 2, 6, 7, 3}}}
	if !reflect.DeepEqual(s.Elements, wantElems) {
		t.Errorf("elements: %v", pretty.Diff(s.Elements, wantElems))
	}
	wantSel := []Selection{{Name: "Right_Block", Elements: []int{0}}, {Name: "BOTH", Elements: []int{0}}}
	if !reflect.DeepEqual(s.Selections, wantSel) {
		t.Errorf("selections: %v", pretty.Diff(s.Selections, wantSel))
	}
	// The original mesh is untouched.
	if len(m.Nodes) != 12 || len(m.Elements) != 2 {
		t.Error("scoping modified the original mesh")
	}
	if _, err := m.Scope([]int{5}); err == nil {
		t.Error("expected an error for a missing element")
	}
}

func TestToMeters(t *testing.T) {
	m := loadBlock(t)
	mm := m.ToMeters()
	if mm.Unit != "m" {
		t.Errorf("unit %q", mm.Unit)
	}
	if !scalar.EqualWithinAbs(mm.Nodes[8].X, 0.02, 1e-15) {
		t.Errorf("%g != 0.02", mm.Nodes[8].X)
	}
	if m.Nodes[8].X != 20 {
		t.Error("conversion modified the original mesh")
	}
	again := mm.ToMeters()
	if !reflect.DeepEqual(again.Nodes, mm.Nodes) {
		t.Error("converting a mesh in meters changed it")
	}
	lo, hi := mm.Bounds()
	if lo != (r3.Vec{}) || r3.Norm(r3.Sub(hi, r3.Vec{X: 0.02, Y: 0.01, Z: 0.01})) > 1e-15 {
		t.Errorf("bounds %v %v", lo, hi)
	}
}

func TestToMetersUnknownUnit(t *testing.T) {
	for _, u := range []string{"", "furlong"} {
		t.Run(u, func(t *testing.T) {
			m := loadBlock(t)
			m.Unit = u
			mm := m.ToMeters()
			if mm.Unit != "m" {
				t.Errorf("unit %q", mm.Unit)
			}
			if !reflect.DeepEqual(mm.Nodes, m.Nodes) {
				t.Error("coordinates in an unknown unit changed")
			}
		})
	}
}

func TestSurface(t *testing.T) {
	m := loadBlock(t)
	s, err := m.Surface()
	if err != nil {
		t.Fatal(err)
	}
	// Ten outer quads, each split in two; Euler gives 12 - E + 10 = 2.
	if len(s.Triangles) != 20 {
		t.Errorf("triangles: %d", len(s.Triangles))
	}
	if len(s.Edges) != 20 {
		t.Errorf("edges: %d", len(s.Edges))
	}
	for _, tri := range s.Triangles {
		for _, n := range tri {
			if n < 0 || n >= len(m.Nodes) {
				t.Fatalf("bad node %d", n)
			}
		}
	}
}

func TestFieldScalars(t *testing.T) {
	m := &Mesh{Nodes: []r3.Vec{{}, {}}}
	f := &Field{Mesh: m, Name: "u", Vectors: []r3.Vec{{X: 3, Y: 4}, {Z: -2}}}
	if err := f.Check(); err != nil {
		t.Fatal(err)
	}
	if have := f.Scalars(); !reflect.DeepEqual(have, []float64{5, 2}) {
		t.Errorf("%v", have)
	}
	f = &Field{Mesh: m, Name: "s", Values: []float64{1}}
	if err := f.Check(); err == nil {
		t.Error("expected a length error")
	}
}
