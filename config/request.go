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
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spatialmodel/twinmap/twin"
)

// Request describes one post-processing job.
type Request struct {
	InputParameters InputParameters `json:"input_parameters" toml:"input_parameters"`
	InputFiles      InputFiles      `json:"input_files" toml:"input_files"`
	TwinInputs      twin.Inputs     `json:"twin_inputs" toml:"twin_inputs"`
	OutputFiles     OutputFiles     `json:"output_files" toml:"output_files"`
}

// InputParameters select what is computed.
type InputParameters struct {
	ROMIndex       int      `json:"rom_index" toml:"rom_index"`
	NamedSelection string   `json:"named_selection" toml:"named_selection"`
	Operation      []string `json:"operation" toml:"operation"`

	// DeformationScale is the deflection in percent of the model
	// size. Zero means the configured autoscale.
	DeformationScale float64 `json:"deformation_scale" toml:"deformation_scale"`
}

// InputFiles locate the data a request reads.
type InputFiles struct {
	// TwinFile maps a result category to the twin manifest holding
	// its raw data.
	TwinFile map[string]string `json:"twin_file" toml:"twin_file"`

	// MeshFile is the simulation result the mesh is read from.
	MeshFile    string `json:"rst_file" toml:"rst_file"`
	SNCurveFile string `json:"sn_curve_file,omitempty" toml:"sn_curve_file"`
}

// OutputFiles name the artifacts a request writes.
type OutputFiles struct {
	OutputDir string   `json:"output_dir" toml:"output_dir"`
	DataFile  DataFile `json:"data_file" toml:"data_file"`
	File3D    File3D   `json:"3d_file" toml:"3d_file"`
}

// DataFile names the tabular artifacts.
type DataFile struct {
	// OutputData is the name of the summary JSON file.
	OutputData string `json:"output_data" toml:"output_data"`

	// FieldData is the suffix of the line-delimited JSON field file,
	// which is named <category>_<component>_<FieldData>.
	FieldData string `json:"field_data" toml:"field_data"`

	XLSX   bool   `json:"xlsx,omitempty" toml:"xlsx"`
	Report string `json:"report,omitempty" toml:"report"`
	SNPlot string `json:"sn_plot,omitempty" toml:"sn_plot"`
}

// File3D configures the 3-D scene artifact.
type File3D struct {
	OutputFormat string `json:"output_format" toml:"output_format"`
	ShowEdges    bool   `json:"show_edges" toml:"show_edges"`
	Output3DDir  string `json:"output_3d_dir" toml:"output_3d_dir"`
	Image        string `json:"image,omitempty" toml:"image"`
}

// ReadRequest reads a request in the given format, "json" or "toml".
func ReadRequest(r io.Reader, format string) (*Request, error) {
	req := new(Request)
	switch strings.ToLower(format) {
	case "json":
		d := json.NewDecoder(r)
		if err := d.Decode(req); err != nil {
			return nil, fmt.Errorf("config: decoding request: %w", err)
		}
	case "toml":
		if _, err := toml.NewDecoder(r).Decode(req); err != nil {
			return nil, fmt.Errorf("config: decoding request: %w", err)
		}
	default:
		return nil, fmt.Errorf("config: unsupported request format %q", format)
	}
	return req, nil
}

// LoadRequest reads the request file at path. Files ending in .toml
// are read as TOML and everything else as JSON.
func LoadRequest(path string) (*Request, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	format := "json"
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		format = "toml"
	}
	return ReadRequest(bytes.NewReader(b), format)
}

// Detail returns the result column name of the requested operation,
// e.g. "stress_von_mises".
func (r *Request) Detail() string {
	return strings.Join(r.InputParameters.Operation, "_")
}

// Default artifact names.
const (
	DefaultOutputData = "output_data.json"
	DefaultFieldData  = "result_field.json"
	DefaultFormat     = "gltf"
)

// FieldFile returns the name of the line-delimited JSON field file.
func (r *Request) FieldFile() string {
	name := r.OutputFiles.DataFile.FieldData
	if name == "" {
		name = DefaultFieldData
	}
	return r.Detail() + "_" + name
}

// SummaryFile returns the name of the summary JSON file.
func (r *Request) SummaryFile() string {
	if r.OutputFiles.DataFile.OutputData == "" {
		return DefaultOutputData
	}
	return r.OutputFiles.DataFile.OutputData
}

// Format returns the requested 3-D scene format.
func (r *Request) Format() string {
	if r.OutputFiles.File3D.OutputFormat == "" {
		return DefaultFormat
	}
	return r.OutputFiles.File3D.OutputFormat
}

// SceneDir returns the directory 3-D artifacts are written to.
func (r *Request) SceneDir() string {
	if r.OutputFiles.File3D.Output3DDir != "" {
		return r.OutputFiles.File3D.Output3DDir
	}
	return r.OutputFiles.OutputDir
}
