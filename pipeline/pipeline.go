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

// Package pipeline runs post-processing requests: it resolves the
// named selection, derives the requested result from the twin,
// projects it onto the mesh, optionally deflects the mesh and writes
// the requested artifacts.
package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/twinmap/config"
	"github.com/spatialmodel/twinmap/derive"
	"github.com/spatialmodel/twinmap/fatigue"
	"github.com/spatialmodel/twinmap/mesh"
	"github.com/spatialmodel/twinmap/project"
	"github.com/spatialmodel/twinmap/selection"
	"github.com/spatialmodel/twinmap/twin"
)

// Stages of a request, as reported by StageError.
const (
	StageValidate  = "validate input"
	StageTwin      = "initialize twin"
	StageMesh      = "extract mesh"
	StageSelection = "get named selection"
	StageResult    = "get result"
	StageProject   = "project result on mesh"
	StageDeflect   = "deflect mesh"
	StageExtrema   = "obtain max and min value"
	StageExport    = "export"
)

// StageError records the stage a request failed in.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("pipeline: failed to %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func stageErr(stage string, err error) error {
	return &StageError{Stage: stage, Err: err}
}

// TwinOpener opens the twin described by the file at path.
type TwinOpener func(path string, in twin.Inputs) (twin.Evaluator, error)

// OpenFileTwin opens a twin.FileModel.
func OpenFileTwin(path string, in twin.Inputs) (twin.Evaluator, error) {
	return twin.Open(path, in)
}

// Pipeline runs requests against one configuration. It holds no
// per-request state and may be used concurrently.
type Pipeline struct {
	Config   *config.Config
	Backend  mesh.Backend
	OpenTwin TwinOpener
	Log      logrus.FieldLogger
}

// New returns a pipeline reading meshes and twins from files.
func New(cfg *config.Config, log logrus.FieldLogger) *Pipeline {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Pipeline{
		Config:   cfg,
		Backend:  mesh.FileBackend{},
		OpenTwin: OpenFileTwin,
		Log:      log,
	}
}

// job holds the state of one request.
type job struct {
	req  *config.Request
	op   derive.Operation
	log  logrus.FieldLogger
	twin twin.Evaluator
	rom  string

	// mesh is the full mesh in meters and sel its resolution.
	mesh *mesh.Mesh
	sel  *selection.Result

	field, points []float64
	curve         *fatigue.Curve
	table         *derive.Table
	projected     *mesh.Field
}

// twinSelection returns the twin-side selection to evaluate, nil for
// the whole model.
func (j *job) twinSelection() *string {
	if j.sel.Twin == nil {
		return nil
	}
	return &j.sel.Twin.Name
}

// namedSelection returns the selection name reported in outputs.
func (j *job) namedSelection() string {
	if j.sel.Twin != nil {
		return j.sel.Twin.Name
	}
	if j.sel.Mesh != nil {
		return j.sel.Mesh.Name
	}
	return j.req.InputParameters.NamedSelection
}

// Validate checks req against the configuration and returns the
// requested operation.
func (p *Pipeline) Validate(req *config.Request) (derive.Operation, error) {
	op, err := p.Config.Validate(req)
	if err != nil {
		return op, stageErr(StageValidate, err)
	}
	return op, nil
}

// prepare runs the stages every output needs: it validates req,
// evaluates the twin on the resolved selection, derives the result
// and projects it onto the scoped mesh.
func (p *Pipeline) prepare(ctx context.Context, req *config.Request) (*job, error) {
	j := &job{req: req}
	var err error
	if j.op, err = p.Validate(req); err != nil {
		return nil, err
	}
	j.log = p.Log.WithFields(logrus.Fields{
		"request":         uuid.Must(uuid.NewV7()).String(),
		"operation":       j.op.Column(),
		"named_selection": req.InputParameters.NamedSelection,
	})

	key := twin.FileKey(string(j.op.Category()))
	j.twin, j.rom, err = p.openTwin(req, key)
	if err != nil {
		return nil, stageErr(StageTwin, err)
	}
	j.log.WithField("rom", j.rom).Debug("twin initialized")

	m, err := p.Backend.Load(ctx, req.InputFiles.MeshFile)
	if err != nil {
		return nil, stageErr(StageMesh, err)
	}
	j.mesh = m.ToMeters()
	j.log.WithFields(logrus.Fields{
		"nodes": len(j.mesh.Nodes), "elements": len(j.mesh.Elements), "unit": m.Unit,
	}).Debug("mesh extracted")

	twinSelections, err := j.twin.NamedSelections(j.rom)
	if err != nil {
		return nil, stageErr(StageSelection, err)
	}
	j.sel, err = selection.Resolver{WholeBody: p.Config.WholeBody}.Resolve(
		twinSelections, j.mesh, req.InputParameters.NamedSelection)
	if err != nil {
		return nil, stageErr(StageSelection, err)
	}
	if j.sel.Mesh != nil && j.sel.Twin == nil {
		j.log.Warn("named selection not found in twin; evaluating the whole twin")
	}

	j.field, j.points, err = j.twin.Snapshot(ctx, j.rom, j.twinSelection())
	if err != nil {
		return nil, stageErr(StageResult, err)
	}
	if j.op.Category() == derive.Fatigue {
		if j.curve, err = fatigue.LoadCurve(req.InputFiles.SNCurveFile); err != nil {
			return nil, stageErr(StageResult, err)
		}
	}
	j.table, err = derive.Deriver{Curve: j.curve}.Derive(j.op, j.field, j.points)
	if err != nil {
		return nil, stageErr(StageResult, err)
	}

	j.projected, _, err = project.Project(j.table, j.sel.Scoped)
	if err != nil {
		return nil, stageErr(StageProject, err)
	}
	j.log.WithField("points", j.table.Len()).Debug("result projected")
	return j, nil
}

func (p *Pipeline) openTwin(req *config.Request, key string) (twin.Evaluator, string, error) {
	path, ok := req.InputFiles.TwinFile[key]
	if !ok || path == "" {
		return nil, "", fmt.Errorf("no %s twin file in request", key)
	}
	ev, err := p.OpenTwin(path, req.TwinInputs)
	if err != nil {
		return nil, "", err
	}
	rom, err := twin.ROM(ev, req.InputParameters.ROMIndex)
	if err != nil {
		return nil, "", err
	}
	return ev, rom, nil
}
