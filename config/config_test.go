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

package config

import (
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/twinmap/derive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestConfig(t *testing.T) *Config {
	t.Helper()
	c, err := Load("../testdata/config.yaml")
	require.NoError(t, err)
	return c
}

func TestLoadYAML(t *testing.T) {
	c := loadTestConfig(t)
	assert.Equal(t, []int{0}, c.ROMs)
	assert.Equal(t, []string{"All_Body", "LEFT_BLOCK", "Right_Block"}, c.NamedSelections)
	assert.Equal(t, []string{"ux", "uy", "uz", "norm"}, c.Operations["displacement"])
	assert.Equal(t, []string{"cycle", "damage"}, c.Operations["fatigue"])
	assert.Equal(t, []float64{0, 5, 10, 20}, c.DeformationScales)
	assert.Equal(t, 10.0, c.Autoscale)
	assert.Equal(t, "All_Body", c.WholeBody)
	assert.Equal(t, logrus.InfoLevel, c.Level())

	assert.Equal(t, "MPa", c.Unit(derive.MustParseOperation("stress", "von_mises")))
	assert.Equal(t, "mm", c.Unit(derive.MustParseOperation("displacement", "ux")))
	assert.Equal(t, "cycles", c.Unit(derive.MustParseOperation("fatigue", "cycle")))
	assert.Equal(t, "-", c.Unit(derive.MustParseOperation("fatigue", "damage")))
	assert.Equal(t, "mm", c.DisplacementUnit())
	assert.Contains(t, c.String(), "stress_von_mises")
}

func TestLoadTOML(t *testing.T) {
	c, err := Load("testdata/config.toml")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, c.ROMs)
	assert.Equal(t, []float64{0, 2.5}, c.DeformationScales)
	assert.Equal(t, []string{"displacement_norm", "fatigue_damage"}, c.OperationNames())
	assert.Equal(t, "1/cycles", c.Unit(derive.MustParseOperation("fatigue", "damage")))
	assert.Equal(t, "", c.Unit(derive.MustParseOperation("fatigue", "cycle")))
	assert.Equal(t, logrus.DebugLevel, c.Level())
	assert.Equal(t, "mem://", c.OutputBucket)
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("TWINMAP_AUTOSCALE", "25")
	c := loadTestConfig(t)
	assert.Equal(t, 25.0, c.Autoscale)
}

func TestLoadInvalid(t *testing.T) {
	for _, path := range []string{"testdata/bad_operation.yaml", "testdata/bad_unit.yaml"} {
		t.Run(path, func(t *testing.T) {
			_, err := Load(path)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig), "error %v", err)
		})
	}
	_, err := Load("testdata/missing.yaml")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	c := loadTestConfig(t)
	valid := func() *Request {
		return &Request{
			InputParameters: InputParameters{
				ROMIndex:         0,
				NamedSelection:   "Right_Block",
				Operation:        []string{"stress", "von_mises"},
				DeformationScale: 10,
			},
			InputFiles: InputFiles{SNCurveFile: "sn.csv"},
		}
	}
	op, err := c.Validate(valid())
	require.NoError(t, err)
	assert.Equal(t, "stress_von_mises", op.Column())

	tests := []struct {
		name   string
		modify func(r *Request)
		field  string
	}{
		{name: "rom", modify: func(r *Request) { r.InputParameters.ROMIndex = 3 }, field: "ROM index"},
		{name: "selection", modify: func(r *Request) { r.InputParameters.NamedSelection = "right_block" }, field: "named selection"},
		{name: "parts", modify: func(r *Request) { r.InputParameters.Operation = []string{"stress"} }, field: "operation"},
		{name: "not allowed", modify: func(r *Request) { r.InputParameters.Operation = []string{"stress", "zx"} }, field: "operation"},
		{name: "unknown", modify: func(r *Request) { r.InputParameters.Operation = []string{"heat", "flux"} }, field: "operation"},
		{name: "scale", modify: func(r *Request) { r.InputParameters.DeformationScale = 7 }, field: "deformation scale"},
		{
			name: "order",
			modify: func(r *Request) {
				r.InputParameters.ROMIndex = 9
				r.InputParameters.DeformationScale = 7
			},
			field: "ROM index",
		},
		{
			name: "sn curve",
			modify: func(r *Request) {
				r.InputParameters.Operation = []string{"fatigue", "cycle"}
				r.InputFiles.SNCurveFile = ""
			},
			field: "S-N curve file",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			r := valid()
			test.modify(r)
			_, err := c.Validate(r)
			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "error %v", err)
			assert.Equal(t, test.field, ve.Field)
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Field: "ROM index", Value: 3, Allowed: []int{0}}
	assert.Equal(t, "config: ROM index 3 is not valid; available: [0]", err.Error())
}

func TestDeflectionPercent(t *testing.T) {
	c := loadTestConfig(t)
	r := &Request{}
	assert.Equal(t, 10.0, c.DeflectionPercent(r))
	r.InputParameters.DeformationScale = 20
	assert.Equal(t, 20.0, c.DeflectionPercent(r))
}

func TestLoadRequest(t *testing.T) {
	j, err := LoadRequest("../testdata/request.json")
	require.NoError(t, err)
	assert.Equal(t, "Right_Block", j.InputParameters.NamedSelection)
	assert.Equal(t, "stress_von_mises", j.Detail())
	assert.Equal(t, "stress_von_mises_result_field.json", j.FieldFile())
	assert.Equal(t, "../testdata/twin/stress.toml", j.InputFiles.TwinFile["stress"])
	assert.Equal(t, 1200.0, j.TwinInputs.ROMInputs["load"])
	assert.True(t, j.OutputFiles.File3D.ShowEdges)
	assert.Equal(t, "gltf", j.OutputFiles.File3D.OutputFormat)

	tm, err := LoadRequest("../testdata/request.toml")
	require.NoError(t, err)
	assert.Equal(t, []string{"fatigue", "damage"}, tm.InputParameters.Operation)
	assert.Equal(t, "../testdata/block.yaml", tm.InputFiles.MeshFile)
	assert.True(t, tm.OutputFiles.DataFile.XLSX)
	assert.Equal(t, "report.pdf", tm.OutputFiles.DataFile.Report)
	assert.Equal(t, "obj", tm.OutputFiles.File3D.OutputFormat)

	_, err = ReadRequest(strings.NewReader("{}"), "xml")
	assert.Error(t, err)
	_, err = ReadRequest(strings.NewReader("{"), "json")
	assert.Error(t, err)
}
