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
	"sort"
)

// faces lists the faces of each volumetric element type as local node
// indices, ordered so that the face normal points out of the element.
var faces = map[ElementType][][]int{
	Tet4: {{0, 2, 1}, {0, 1, 3}, {1, 2, 3}, {0, 3, 2}},
	Hex8: {
		{0, 3, 2, 1}, {4, 5, 6, 7}, {0, 1, 5, 4},
		{1, 2, 6, 5}, {2, 3, 7, 6}, {3, 0, 4, 7},
	},
	Wedge6: {
		{0, 2, 1}, {3, 4, 5},
		{0, 1, 4, 3}, {1, 2, 5, 4}, {2, 0, 3, 5},
	},
	Pyramid5: {{0, 3, 2, 1}, {0, 1, 4}, {1, 2, 4}, {2, 3, 4}, {3, 0, 4}},
}

// Surface is the triangulated outer surface of a mesh.
type Surface struct {
	Triangles [][3]int // node indices
	Edges     [][2]int // polygon edges before triangulation
}

// Surface extracts the outer surface of m. Faces of volumetric
// elements that are shared by two elements are interior and are
// skipped; shell elements are always part of the surface.
func (m *Mesh) Surface() (*Surface, error) {
	type face struct {
		nodes []int
		count int
	}
	var order []string
	index := make(map[string]*face)
	for i, e := range m.Elements {
		var local [][]int
		if e.Type.Shell() {
			local = [][]int{seq(len(e.Nodes))}
		} else {
			var ok bool
			if local, ok = faces[e.Type]; !ok {
				return nil, fmt.Errorf("mesh: element %d has unsupported type %q", i, e.Type)
			}
		}
		for _, lf := range local {
			nodes := make([]int, len(lf))
			for j, l := range lf {
				nodes[j] = e.Nodes[l]
			}
			k := faceKey(nodes)
			if e.Type.Shell() {
				k = fmt.Sprintf("shell%d", i)
			} else if f, ok := index[k]; ok {
				f.count++
				continue
			}
			index[k] = &face{nodes: nodes, count: 1}
			order = append(order, k)
		}
	}

	s := new(Surface)
	edges := make(map[[2]int]bool)
	for _, k := range order {
		f := index[k]
		if f.count != 1 {
			continue
		}
		n := f.nodes
		for j := 1; j+1 < len(n); j++ {
			s.Triangles = append(s.Triangles, [3]int{n[0], n[j], n[j+1]})
		}
		for j := range n {
			e := [2]int{n[j], n[(j+1)%len(n)]}
			if e[0] > e[1] {
				e[0], e[1] = e[1], e[0]
			}
			if !edges[e] {
				edges[e] = true
				s.Edges = append(s.Edges, e)
			}
		}
	}
	return s, nil
}

func seq(n int) []int {
	o := make([]int, n)
	for i := range o {
		o[i] = i
	}
	return o
}

// faceKey identifies a face independently of node order.
func faceKey(nodes []int) string {
	s := append([]int(nil), nodes...)
	sort.Ints(s)
	return fmt.Sprint(s)
}
