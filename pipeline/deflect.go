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

package pipeline

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/twinmap/deflect"
	"github.com/spatialmodel/twinmap/derive"
	"github.com/spatialmodel/twinmap/mesh"
	"github.com/spatialmodel/twinmap/project"
	"github.com/spatialmodel/twinmap/selection"
)

// deflect returns the projected field of j on the deflected scoped
// mesh and the scale factor used. The mesh is not deflected if the
// deflection percentage is zero or the request has no displacement
// twin to take the deflection from.
func (p *Pipeline) deflect(ctx context.Context, j *job) (*mesh.Field, float64, error) {
	percent := p.Config.DeflectionPercent(j.req)
	if percent == 0 {
		return j.projected, 0, nil
	}
	field, points := j.field, j.points
	if j.op.Category() != derive.Displacement {
		if j.req.InputFiles.TwinFile[string(derive.Displacement)] == "" {
			j.log.Warn("no displacement twin file; mesh not deflected")
			return j.projected, 0, nil
		}
		var err error
		if field, points, err = p.displacement(ctx, j); err != nil {
			return nil, 0, err
		}
	}
	if len(field) != len(points) {
		return nil, 0, fmt.Errorf("%d displacement values for %d point coordinates", len(field), len(points))
	}
	vectors, err := derive.Vectors(field)
	if err != nil {
		return nil, 0, err
	}
	pts, err := derive.Vectors(points)
	if err != nil {
		return nil, 0, err
	}
	u := p.Config.DisplacementUnit()
	axis := j.op.Axis()
	factor, err := deflect.Scale(percent, pts, vectors, u, axis)
	if err != nil {
		return nil, 0, err
	}
	nodal, err := project.ProjectVectors(points, vectors, "displacement", j.sel.Scoped)
	if err != nil {
		return nil, 0, err
	}
	m, err := deflect.Apply(j.sel.Scoped, nodal.Vectors, u, factor, axis)
	if err != nil {
		return nil, 0, err
	}
	j.log.WithFields(logrus.Fields{"percent": percent, "scale": factor}).Debug("mesh deflected")
	return &mesh.Field{Mesh: m, Name: j.projected.Name, Values: j.projected.Values}, factor, nil
}

// displacement evaluates the displacement twin of j's request on the
// requested selection.
func (p *Pipeline) displacement(ctx context.Context, j *job) (field, points []float64, err error) {
	ev, rom, err := p.openTwin(j.req, string(derive.Displacement))
	if err != nil {
		return nil, nil, err
	}
	var sel *string
	if j.sel.Mesh != nil {
		names, err := ev.NamedSelections(rom)
		if err != nil {
			return nil, nil, err
		}
		if h := selection.Lookup(names, j.req.InputParameters.NamedSelection); h != nil {
			sel = &h.Name
		}
	}
	return ev.Snapshot(ctx, rom, sel)
}
