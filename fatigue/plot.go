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

package fatigue

import (
	"fmt"
	"io"

	tplot "github.com/spatialmodel/twinmap/plot"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Plot writes a log-log PNG plot of the curve to w, with the
// tabulated points marked. stressUnit labels the stress axis.
func (c *Curve) Plot(w io.Writer, stressUnit string) error {
	// Cycles go on the horizontal axis, as S-N curves are usually drawn.
	xys, err := tplot.NewXYs(c.Cycles, c.Stress)
	if err != nil {
		return err
	}
	p := plot.New()
	p.Title.Text = "S-N curve"
	p.X.Label.Text = "Cycles to failure"
	p.Y.Label.Text = "Stress"
	if stressUnit != "" {
		p.Y.Label.Text = fmt.Sprintf("Stress (%s)", stressUnit)
	}
	p.X.Scale = plot.LogScale{}
	p.Y.Scale = plot.LogScale{}
	p.X.Tick.Marker = plot.LogTicks{Prec: -1}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}

	l, s, err := plotter.NewLinePoints(xys)
	if err != nil {
		return fmt.Errorf("fatigue: plotting S-N curve: %w", err)
	}
	p.Add(l, s, plotter.NewGrid())

	wt, err := p.WriterTo(6*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("fatigue: plotting S-N curve: %w", err)
	}
	_, err = wt.WriteTo(w)
	return err
}
