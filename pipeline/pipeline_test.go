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
	"bytes"
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spatialmodel/twinmap/config"
	"github.com/spatialmodel/twinmap/deflect"
	"github.com/spatialmodel/twinmap/derive"
	"github.com/spatialmodel/twinmap/extremum"
	"github.com/spatialmodel/twinmap/fatigue"
	"github.com/spatialmodel/twinmap/selection"
	"github.com/spatialmodel/twinmap/twin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPipeline(t *testing.T) (*Pipeline, *test.Hook) {
	t.Helper()
	cfg, err := config.Load("../testdata/config.yaml")
	require.NoError(t, err)
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	return New(cfg, log), hook
}

// loadRequest reads a request fixture and points its outputs at a
// fresh directory, which it returns.
func loadRequest(t *testing.T, name string) (*config.Request, string) {
	t.Helper()
	req, err := config.LoadRequest(filepath.Join("../testdata", name))
	require.NoError(t, err)
	dir := t.TempDir()
	req.OutputFiles.OutputDir = dir
	req.OutputFiles.File3D.Output3DDir = dir
	return req, dir
}

// withConfig returns a copy of p over an edited copy of its
// configuration.
func withConfig(p *Pipeline, edit func(c *config.Config)) *Pipeline {
	cfg := *p.Config
	cfg.NamedSelections = slices.Clone(cfg.NamedSelections)
	edit(&cfg)
	q := *p
	q.Config = &cfg
	return &q
}

func assertEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExportJSON(t *testing.T) {
	p, _ := newPipeline(t)
	req, dir := loadRequest(t, "request.json")

	o, err := p.ExportJSON(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "stress_von_mises", o.Operation)
	assert.Equal(t, []string{filepath.Join(dir, "output_data.json")}, o.Files)

	s := o.Summary
	assert.Equal(t, "MPa", s.Unit)
	assert.Equal(t, "right_block", s.NamedSelection)
	assert.Equal(t, map[string]float64{"max_load": 1200, "reaction_x": -35.5}, s.TwinOutputs)
	assert.Equal(t, extremum.Record{Point: [3]float64{0.02, 0, 0}, Value: 300},
		s.OutputParameters["max stress_von_mises"])
	assert.Equal(t, extremum.Record{Point: [3]float64{0.01, 0, 0}, Value: 200},
		s.OutputParameters["min stress_von_mises"])

	b, err := os.ReadFile(o.Files[0])
	require.NoError(t, err)
	assert.Contains(t, string(b), `"max stress_von_mises"`)
}

func TestExportField(t *testing.T) {
	p, _ := newPipeline(t)
	req, dir := loadRequest(t, "request.json")

	o, err := p.ExportField(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "stress_von_mises_result_field.json")}, o.Files)
	b, err := os.ReadFile(o.Files[0])
	require.NoError(t, err)
	lines := bytes.Split(bytes.TrimSpace(b), []byte("\n"))
	require.Len(t, lines, 8)
	assert.Equal(t, `{"x":0.01,"y":0,"z":0,"stress_von_mises":200}`, string(lines[0]))
}

func TestExport3D(t *testing.T) {
	p, _ := newPipeline(t)
	req, dir := loadRequest(t, "request.json")

	o, err := p.Export3D(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "stress_von_mises.gltf")}, o.Files)
	assert.Nil(t, o.Summary)

	// 10 % of the block diagonal, 10*sqrt(3) mm, over the largest
	// displacement, sqrt(4.25) mm.
	assert.InDelta(t, math.Sqrt(3/4.25), o.Scale, 1e-12)

	doc, err := gltf.Open(o.Files[0])
	require.NoError(t, err)
	assert.Equal(t, "2.0", doc.Asset.Version)
	require.Len(t, doc.Meshes, 1)
}

func TestExport3DUnitlessMesh(t *testing.T) {
	b, err := os.ReadFile("../testdata/block.yaml")
	require.NoError(t, err)
	b = bytes.Replace(b, []byte("unit: mm\n"), nil, 1)
	require.NotContains(t, string(b), "unit:")
	meshFile := filepath.Join(t.TempDir(), "block.yaml")
	require.NoError(t, os.WriteFile(meshFile, b, 0o644))

	p, _ := newPipeline(t)
	req, dir := loadRequest(t, "request.json")
	req.InputFiles.MeshFile = meshFile

	// Coordinates without a unit are taken as meters and deflected.
	o, err := p.Export3D(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "stress_von_mises.gltf")}, o.Files)
	assert.Greater(t, o.Scale, 0.0)
	assert.FileExists(t, o.Files[0])
}

func TestRunAll(t *testing.T) {
	p, _ := newPipeline(t)
	req, dir := loadRequest(t, "request.toml")

	o, err := p.Run(context.Background(), req)
	require.NoError(t, err)

	var names []string
	for _, f := range o.Files {
		assert.Equal(t, dir, filepath.Dir(f))
		assert.FileExists(t, f)
		names = append(names, filepath.Base(f))
	}
	assert.ElementsMatch(t, []string{
		"fatigue_damage_result_field.json",
		"output_data.json",
		"fatigue_damage.xlsx",
		"sn_curve.png",
		"report.pdf",
		"fatigue_damage.obj",
		"fatigue_damage.png",
	}, names)

	// The whole body is deflected by the configured autoscale.
	assert.Greater(t, o.Scale, 0.0)

	curve, err := fatigue.LoadCurve("../testdata/sn_curve.csv")
	require.NoError(t, err)
	s := o.Summary
	assert.Equal(t, "-", s.Unit)
	assert.Equal(t, selection.WholeBody, s.NamedSelection)
	hi := s.OutputParameters["max fatigue_damage"]
	assert.Equal(t, [3]float64{0.02, 0, 0}, hi.Point)
	assert.InDelta(t, curve.Damage([]float64{300})[0], hi.Value, 1e-15)
	lo := s.OutputParameters["min fatigue_damage"]
	assert.Equal(t, [3]float64{0, 0, 0}, lo.Point)
	assert.InDelta(t, 1e-6, lo.Value, 1e-18)
}

func TestMeshOnlySelection(t *testing.T) {
	p, hook := newPipeline(t)
	p = withConfig(p, func(c *config.Config) {
		c.NamedSelections = append(c.NamedSelections, "BOTH")
	})
	req, _ := loadRequest(t, "request.json")
	req.InputParameters.NamedSelection = "BOTH"

	o, err := p.ExportJSON(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "BOTH", o.Summary.NamedSelection)
	assert.Equal(t, 300.0, o.Summary.OutputParameters["max stress_von_mises"].Value)
	assert.Equal(t, 100.0, o.Summary.OutputParameters["min stress_von_mises"].Value)

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warned = true
		}
	}
	assert.True(t, warned, "no warning for a selection missing from the twin")
}

func TestFailures(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(p *Pipeline, req *config.Request)
		stage string
		check func(t *testing.T, err error)
	}{
		{
			name:  "operation",
			edit:  func(_ *Pipeline, req *config.Request) { req.InputParameters.Operation = []string{"stress", "ww"} },
			stage: StageValidate,
			check: func(t *testing.T, err error) {
				var v *config.ValidationError
				require.ErrorAs(t, err, &v)
				assert.Equal(t, "operation", v.Field)
			},
		},
		{
			name:  "format",
			edit:  func(_ *Pipeline, req *config.Request) { req.OutputFiles.File3D.OutputFormat = "stl" },
			stage: StageValidate,
			check: func(t *testing.T, err error) {
				var v *config.ValidationError
				require.ErrorAs(t, err, &v)
				assert.Equal(t, "output format", v.Field)
			},
		},
		{
			name: "selection",
			edit: func(p *Pipeline, req *config.Request) {
				*p = *withConfig(p, func(c *config.Config) {
					c.NamedSelections = append(c.NamedSelections, "MISSING")
				})
				req.InputParameters.NamedSelection = "MISSING"
			},
			stage: StageSelection,
			check: func(t *testing.T, err error) {
				var s *selection.SelectionNotFoundError
				require.ErrorAs(t, err, &s)
				assert.Equal(t, "MISSING", s.Name)
			},
		},
		{
			name:  "twin file",
			edit:  func(_ *Pipeline, req *config.Request) { delete(req.InputFiles.TwinFile, "stress") },
			stage: StageTwin,
		},
		{
			name:  "mesh file",
			edit:  func(_ *Pipeline, req *config.Request) { req.InputFiles.MeshFile = "missing.yaml" },
			stage: StageMesh,
		},
		{
			name: "twin",
			edit: func(p *Pipeline, _ *config.Request) {
				p.OpenTwin = func(string, twin.Inputs) (twin.Evaluator, error) {
					return nil, errors.New("license unavailable")
				}
			},
			stage: StageTwin,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newPipeline(t)
			req, dir := loadRequest(t, "request.json")
			tt.edit(p, req)

			_, err := p.Run(context.Background(), req)
			var se *StageError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.stage, se.Stage)
			if tt.check != nil {
				tt.check(t, err)
			}
			assertEmpty(t, dir)
		})
	}
}

func TestDegenerateDeflection(t *testing.T) {
	dir := t.TempDir()
	pts, err := os.ReadFile("../testdata/twin/points.bin")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "points.bin"), pts, 0o644))
	f, err := os.Create(filepath.Join(dir, "zero.bin"))
	require.NoError(t, err)
	require.NoError(t, twin.WriteFloats(f, make([]float64, 36)))
	require.NoError(t, f.Close())
	manifest := "[[rom]]\nname = \"rest\"\npoints = \"points.bin\"\nsnapshot = \"zero.bin\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "zero.toml"), []byte(manifest), 0o644))

	p, _ := newPipeline(t)
	req, out := loadRequest(t, "request.json")
	req.InputParameters.NamedSelection = selection.WholeBody
	req.InputParameters.Operation = []string{"displacement", "norm"}
	req.InputFiles.TwinFile = map[string]string{"displacement": filepath.Join(dir, "zero.toml")}

	_, err = p.Run(context.Background(), req)
	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StageDeflect, se.Stage)
	assert.ErrorIs(t, err, deflect.ErrDegenerateField)
	assertEmpty(t, out)

	// Without deflection the same field exports.
	still := withConfig(p, func(c *config.Config) { c.Autoscale = 0 })
	req.InputParameters.DeformationScale = 0
	o, err := still.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Zero(t, o.Scale)
	assert.Equal(t, 0.0, o.Summary.OutputParameters["max displacement_norm"].Value)
}

func TestCommitRollback(t *testing.T) {
	p, _ := newPipeline(t)
	req, _ := loadRequest(t, "request.json")
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	req.OutputFiles.OutputDir = filepath.Join(dir, "data")
	req.OutputFiles.File3D.Output3DDir = filepath.Join(blocker, "scene")

	_, err := p.Run(context.Background(), req)
	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StageExport, se.Stage)
	assertEmpty(t, filepath.Join(dir, "data"))
}

func TestCommitRollbackRestores(t *testing.T) {
	p, _ := newPipeline(t)
	req, _ := loadRequest(t, "request.json")
	dir := t.TempDir()
	data := filepath.Join(dir, "data")
	require.NoError(t, os.MkdirAll(data, 0o755))
	earlier := filepath.Join(data, "output_data.json")
	require.NoError(t, os.WriteFile(earlier, []byte("earlier run"), 0o644))
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	req.OutputFiles.OutputDir = data
	req.OutputFiles.File3D.Output3DDir = filepath.Join(blocker, "scene")

	_, err := p.Run(context.Background(), req)
	require.Error(t, err)

	// The earlier run's summary survives; this run's field file does not.
	b, err := os.ReadFile(earlier)
	require.NoError(t, err)
	assert.Equal(t, "earlier run", string(b))
	entries, err := os.ReadDir(data)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "output_data.json", entries[0].Name())
}

func TestOutputBucket(t *testing.T) {
	p, _ := newPipeline(t)
	p = withConfig(p, func(c *config.Config) { c.OutputBucket = "mem://" })
	req, dir := loadRequest(t, "request.json")
	req.OutputFiles.OutputDir = "results"

	o, err := p.ExportJSON(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{"results/output_data.json"}, o.Files)
	assertEmpty(t, dir)
}

func TestPreview(t *testing.T) {
	p, _ := newPipeline(t)
	req, dir := loadRequest(t, "request.json")
	b, err := p.Preview(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("\x89PNG")))
	assertEmpty(t, dir)
}

func TestValidate(t *testing.T) {
	p, _ := newPipeline(t)
	req, _ := loadRequest(t, "request.json")
	op, err := p.Validate(req)
	require.NoError(t, err)
	assert.Equal(t, derive.MustParseOperation("stress", "von_mises"), op)

	req.InputParameters.ROMIndex = 3
	_, err = p.Validate(req)
	var v *config.ValidationError
	require.ErrorAs(t, err, &v)
	assert.Equal(t, "ROM index", v.Field)
}
