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
	"bufio"
	"fmt"
	"io"

	"github.com/spatialmodel/twinmap/mesh"
)

// writeVRML writes a VRML97 scene.
func writeVRML(w io.Writer, f *mesh.Field, tris [][3]int, edges [][2]int, cols []RGB) error {
	b := bufio.NewWriter(w)
	fmt.Fprintf(b, "#VRML V2.0 utf8\n# %s\n", f.Name)
	fmt.Fprintln(b, "Shape {")
	fmt.Fprintln(b, "  geometry IndexedFaceSet {")
	fmt.Fprintln(b, "    coord DEF nodes Coordinate {\n      point [")
	for _, n := range f.Mesh.Nodes {
		fmt.Fprintf(b, "        %g %g %g,\n", n.X, n.Y, n.Z)
	}
	fmt.Fprintln(b, "      ]\n    }")
	fmt.Fprintln(b, "    color Color {\n      color [")
	for _, c := range cols {
		fmt.Fprintf(b, "        %.4f %.4f %.4f,\n", c[0], c[1], c[2])
	}
	fmt.Fprintln(b, "      ]\n    }")
	fmt.Fprintln(b, "    colorPerVertex TRUE")
	fmt.Fprintln(b, "    solid FALSE")
	fmt.Fprintln(b, "    coordIndex [")
	for _, t := range tris {
		fmt.Fprintf(b, "      %d, %d, %d, -1,\n", t[0], t[1], t[2])
	}
	fmt.Fprintln(b, "    ]\n  }\n}")
	if len(edges) > 0 {
		fmt.Fprintln(b, "Shape {")
		fmt.Fprintln(b, "  appearance Appearance { material Material { emissiveColor 0 0 0 } }")
		fmt.Fprintln(b, "  geometry IndexedLineSet {")
		fmt.Fprintln(b, "    coord USE nodes")
		fmt.Fprintln(b, "    coordIndex [")
		for _, e := range edges {
			fmt.Fprintf(b, "      %d, %d, -1,\n", e[0], e[1])
		}
		fmt.Fprintln(b, "    ]\n  }\n}")
	}
	if err := b.Flush(); err != nil {
		return fmt.Errorf("render: writing VRML: %w", err)
	}
	return nil
}

// writeOBJ writes a Wavefront OBJ scene. Vertex colors follow the
// vertex coordinates, an extension most viewers read.
func writeOBJ(w io.Writer, f *mesh.Field, tris [][3]int, edges [][2]int, cols []RGB) error {
	b := bufio.NewWriter(w)
	fmt.Fprintf(b, "# TwinMAP %s\no %s\n", f.Name, f.Name)
	for i, n := range f.Mesh.Nodes {
		c := cols[i]
		fmt.Fprintf(b, "v %g %g %g %.4f %.4f %.4f\n", n.X, n.Y, n.Z, c[0], c[1], c[2])
	}
	for _, t := range tris {
		fmt.Fprintf(b, "f %d %d %d\n", t[0]+1, t[1]+1, t[2]+1)
	}
	for _, e := range edges {
		fmt.Fprintf(b, "l %d %d\n", e[0]+1, e[1]+1)
	}
	if err := b.Flush(); err != nil {
		return fmt.Errorf("render: writing OBJ: %w", err)
	}
	return nil
}
