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

	"github.com/spatialmodel/twinmap/mesh"
	tplot "github.com/spatialmodel/twinmap/plot"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Image writes a PNG plan view (x against y) of the nodes of f,
// colored by value.
func Image(w io.Writer, f *mesh.Field) error {
	if err := f.Check(); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	values := f.Scalars()
	xyz := make(tplot.XYZs, len(values))
	for i, n := range f.Mesh.Nodes {
		xyz[i] = tplot.XYZ{X: n.X, Y: n.Y, Z: values[i]}
	}
	cm := ColorMap(values)

	p := plot.New()
	p.Title.Text = f.Name
	p.X.Label.Text = "x (m)"
	p.Y.Label.Text = "y (m)"

	s, err := plotter.NewScatter(xyz)
	if err != nil {
		return fmt.Errorf("render: plotting %s: %w", f.Name, err)
	}
	s.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		gs := draw.GlyphStyle{Radius: vg.Points(3), Shape: draw.CircleGlyph{}}
		c, err := cm.At(xyz[i].Z)
		if err != nil {
			gs.Color = plotter.DefaultGlyphStyle.Color
			return gs
		}
		gs.Color = c
		return gs
	}
	p.Add(s, plotter.NewGrid())

	wt, err := p.WriterTo(6*vg.Inch, 6*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("render: plotting %s: %w", f.Name, err)
	}
	_, err = wt.WriteTo(w)
	return err
}
