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

// Package render writes meshes carrying a result field as colored 3-D
// scenes and images.
package render

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"slices"
	"strings"

	"github.com/spatialmodel/twinmap/mesh"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
)

// Scene is a mesh colored by its field.
type Scene struct {
	Field *mesh.Field

	// ShowEdges adds the outlines of the surface polygons.
	ShowEdges bool
}

// Formats lists the supported 3-D formats and their file extensions.
var Formats = map[string]string{
	"gltf": "gltf",
	"vrml": "wrl",
	"obj":  "obj",
}

// Extension returns the file extension of a 3-D format.
func Extension(format string) (string, error) {
	ext, ok := Formats[strings.ToLower(format)]
	if !ok {
		return "", fmt.Errorf("render: invalid 3-D format %q; use gltf, vrml or obj", format)
	}
	return ext, nil
}

// FormatNames returns the supported 3-D formats in sorted order.
func FormatNames() []string {
	names := make([]string, 0, len(Formats))
	for f := range Formats {
		names = append(names, f)
	}
	slices.Sort(names)
	return names
}

// Export writes s to w in the given format.
func Export(w io.Writer, format string, s Scene) error {
	if s.Field == nil {
		return fmt.Errorf("render: scene has no field")
	}
	if err := s.Field.Check(); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	surf, err := s.Field.Mesh.Surface()
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	cols := Colors(s.Field.Scalars())
	var edges [][2]int
	if s.ShowEdges {
		edges = surf.Edges
	}
	switch strings.ToLower(format) {
	case "gltf":
		return writeGLTF(w, s.Field, surf.Triangles, edges, cols)
	case "vrml":
		return writeVRML(w, s.Field, surf.Triangles, edges, cols)
	case "obj":
		return writeOBJ(w, s.Field, surf.Triangles, edges, cols)
	}
	_, err = Extension(format)
	return err
}

// RGB is a color with components between 0 and 1.
type RGB [3]float64

// ColorMap returns the color map for values, scaled to their range.
func ColorMap(values []float64) palette.ColorMap {
	cm := moreland.SmoothBlueRed()
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		lo, hi = min(lo, v), max(hi, v)
	}
	if lo > hi {
		lo, hi = 0, 1
	}
	if lo == hi {
		hi = lo + 1
	}
	cm.SetMin(lo)
	cm.SetMax(hi)
	return cm
}

// Colors maps each value to a color. NaN values are gray.
func Colors(values []float64) []RGB {
	cm := ColorMap(values)
	o := make([]RGB, len(values))
	for i, v := range values {
		c, err := cm.At(v)
		if err != nil {
			o[i] = RGB{0.5, 0.5, 0.5}
			continue
		}
		o[i] = toRGB(c)
	}
	return o
}

func toRGB(c color.Color) RGB {
	r, g, b, _ := c.RGBA()
	return RGB{float64(r) / 0xffff, float64(g) / 0xffff, float64(b) / 0xffff}
}
