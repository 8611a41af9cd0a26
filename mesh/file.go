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

package mesh

import (
	"context"
	"fmt"
	"io"
	"os"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

// Make sure FileBackend fulfills the interface.
var _ Backend = FileBackend{}

// FileBackend reads meshes from YAML or JSON mesh documents.
type FileBackend struct{}

// Load reads the mesh document at path.
func (FileBackend) Load(_ context.Context, path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mesh: opening result file: %w", err)
	}
	defer f.Close()
	m, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("mesh: reading %s: %w", path, err)
	}
	return m, nil
}

type document struct {
	Unit     string       `yaml:"unit"`
	Nodes    [][3]float64 `yaml:"nodes"`
	Elements []struct {
		Type  ElementType `yaml:"type"`
		Nodes []int       `yaml:"nodes"`
	} `yaml:"elements"`
	NamedSelections []struct {
		Name     string `yaml:"name"`
		Elements []int  `yaml:"elements"`
	} `yaml:"named_selections"`
}

// Decode reads a mesh document. JSON documents are accepted as they
// are a subset of YAML.
func Decode(r io.Reader) (*Mesh, error) {
	var d document
	if err := yaml.NewDecoder(r).Decode(&d); err != nil {
		return nil, err
	}
	m := &Mesh{
		Unit:     d.Unit,
		Nodes:    make([]r3.Vec, len(d.Nodes)),
		Elements: make([]Element, len(d.Elements)),
	}
	for i, n := range d.Nodes {
		m.Nodes[i] = r3.Vec{X: n[0], Y: n[1], Z: n[2]}
	}
	for i, e := range d.Elements {
		m.Elements[i] = Element{Type: e.Type, Nodes: e.Nodes}
	}
	for _, s := range d.NamedSelections {
		m.Selections = append(m.Selections, Selection{Name: s.Name, Elements: s.Elements})
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}
