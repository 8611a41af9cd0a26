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

package render

import (
	"fmt"
	"io"
	"math"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/spatialmodel/twinmap/mesh"
)

// writeGLTF writes a self-contained glTF 2.0 document with the buffer
// embedded as a data URI. Edges, if any, become a second line
// primitive over the same positions.
func writeGLTF(w io.Writer, f *mesh.Field, tris [][3]int, edges [][2]int, cols []RGB) error {
	doc := gltf.NewDocument()
	doc.Asset.Generator = "TwinMAP"

	pos := make([][3]float32, len(f.Mesh.Nodes))
	for i, n := range f.Mesh.Nodes {
		pos[i] = [3]float32{float32(n.X), float32(n.Y), float32(n.Z)}
	}
	col := make([][3]uint8, len(cols))
	for i, c := range cols {
		col[i] = [3]uint8{colorByte(c[0]), colorByte(c[1]), colorByte(c[2])}
	}
	idx := make([]uint32, 0, 3*len(tris))
	for _, t := range tris {
		idx = append(idx, uint32(t[0]), uint32(t[1]), uint32(t[2]))
	}

	posAcc := modeler.WritePosition(doc, pos)
	m := &gltf.Mesh{Name: f.Name, Primitives: []*gltf.Primitive{{
		Indices: gltf.Index(modeler.WriteIndices(doc, idx)),
		Attributes: map[string]int{
			gltf.POSITION: posAcc,
			gltf.COLOR_0:  modeler.WriteColor(doc, col),
		},
		Mode: gltf.PrimitiveTriangles,
	}}}

	if len(edges) > 0 {
		li := make([]uint32, 0, 2*len(edges))
		for _, e := range edges {
			li = append(li, uint32(e[0]), uint32(e[1]))
		}
		m.Primitives = append(m.Primitives, &gltf.Primitive{
			Indices:    gltf.Index(modeler.WriteIndices(doc, li)),
			Attributes: map[string]int{gltf.POSITION: posAcc},
			Mode:       gltf.PrimitiveLines,
		})
	}
	doc.Meshes = append(doc.Meshes, m)
	doc.Nodes = append(doc.Nodes, &gltf.Node{Name: f.Name, Mesh: gltf.Index(len(doc.Meshes) - 1)})
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, len(doc.Nodes)-1)

	doc.Buffers[0].EmbeddedResource()
	e := gltf.NewEncoder(w)
	e.AsBinary = false
	if err := e.Encode(doc); err != nil {
		return fmt.Errorf("render: writing glTF: %w", err)
	}
	return nil
}

// colorByte maps a color channel in [0, 1] to a normalized byte.
func colorByte(c float64) uint8 {
	return uint8(math.Round(255 * min(max(c, 0), 1)))
}
