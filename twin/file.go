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

package twin

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileModel is a twin whose snapshots have been precomputed and stored
// on disk. It is described by a TOML manifest such as:
//
//	[outputs]
//	max_load = 1200.0
//
//	[[rom]]
//	name = "StaticROM1"
//	points = "points.bin"
//	snapshot = "displacement.bin"
//
//	[[rom.named_selection]]
//	name = "LEFT_BLOCK"
//	points = [0, 1, 2]
//
// Point and snapshot files hold little-endian float64 values and are
// relative to the manifest.
type FileModel struct {
	dir     string
	roms    []manifestROM
	outputs map[string]float64
	inputs  Inputs
}

type manifest struct {
	Outputs map[string]float64 `toml:"outputs"`
	ROM     []manifestROM      `toml:"rom"`
}

type manifestROM struct {
	Name           string              `toml:"name"`
	Points         string              `toml:"points"`
	Snapshot       string              `toml:"snapshot"`
	NamedSelection []manifestSelection `toml:"named_selection"`
}

type manifestSelection struct {
	Name   string `toml:"name"`
	Points []int  `toml:"points"`
}

// Open opens the twin described by the manifest at path and
// initializes it with the given inputs.
func Open(path string, in Inputs) (*FileModel, error) {
	var m manifest
	if _, err := toml.DecodeFile(path, &m); err != nil {
		return nil, fmt.Errorf("twin: reading manifest: %w", err)
	}
	if len(m.ROM) == 0 {
		return nil, fmt.Errorf("twin: manifest %s has no reduced-order models", path)
	}
	for _, r := range m.ROM {
		if r.Name == "" || r.Points == "" || r.Snapshot == "" {
			return nil, fmt.Errorf("twin: manifest %s: model %q needs a name, points and snapshot", path, r.Name)
		}
	}
	return &FileModel{
		dir:     filepath.Dir(path),
		roms:    m.ROM,
		outputs: m.Outputs,
		inputs:  in,
	}, nil
}

// Inputs returns the inputs the twin was initialized with.
func (f *FileModel) Inputs() Inputs { return f.inputs }

// ROMNames implements Evaluator.
func (f *FileModel) ROMNames() []string {
	o := make([]string, len(f.roms))
	for i, r := range f.roms {
		o[i] = r.Name
	}
	return o
}

func (f *FileModel) rom(name string) (*manifestROM, error) {
	for i := range f.roms {
		if f.roms[i].Name == name {
			return &f.roms[i], nil
		}
	}
	return nil, fmt.Errorf("twin: no reduced-order model %q", name)
}

// NamedSelections implements Evaluator.
func (f *FileModel) NamedSelections(rom string) ([]string, error) {
	r, err := f.rom(rom)
	if err != nil {
		return nil, err
	}
	o := make([]string, len(r.NamedSelection))
	for i, s := range r.NamedSelection {
		o[i] = s.Name
	}
	return o, nil
}

// Outputs implements Evaluator.
func (f *FileModel) Outputs() map[string]float64 { return maps.Clone(f.outputs) }

// Snapshot implements Evaluator.
func (f *FileModel) Snapshot(ctx context.Context, rom string, selection *string) (field, points []float64, err error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	r, err := f.rom(rom)
	if err != nil {
		return nil, nil, err
	}
	points, err = readFloatsFile(filepath.Join(f.dir, r.Points))
	if err != nil {
		return nil, nil, err
	}
	field, err = readFloatsFile(filepath.Join(f.dir, r.Snapshot))
	if err != nil {
		return nil, nil, err
	}
	if len(points)%3 != 0 || len(points) == 0 {
		return nil, nil, fmt.Errorf("twin: model %q has %d point coordinates", rom, len(points))
	}
	n := len(points) / 3
	if len(field)%n != 0 {
		return nil, nil, fmt.Errorf("twin: model %q has %d snapshot values for %d points", rom, len(field), n)
	}
	if selection == nil {
		return field, points, nil
	}

	var idx []int
	found := false
	for _, s := range r.NamedSelection {
		if s.Name == *selection {
			idx, found = s.Points, true
			break
		}
	}
	if !found {
		return nil, nil, fmt.Errorf("twin: model %q has no named selection %q", rom, *selection)
	}
	w := len(field) / n
	sf := make([]float64, 0, w*len(idx))
	sp := make([]float64, 0, 3*len(idx))
	for _, i := range idx {
		if i < 0 || i >= n {
			return nil, nil, fmt.Errorf("twin: named selection %q refers to missing point %d", *selection, i)
		}
		sf = append(sf, field[w*i:w*(i+1)]...)
		sp = append(sp, points[3*i:3*(i+1)]...)
	}
	return sf, sp, nil
}

func readFloatsFile(path string) ([]float64, error) {
	r, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("twin: %w", err)
	}
	defer r.Close()
	v, err := ReadFloats(r)
	if err != nil {
		return nil, fmt.Errorf("%w (in %s)", err, path)
	}
	return v, nil
}

// ReadFloats reads little-endian float64 values until r is exhausted.
func ReadFloats(r io.Reader) ([]float64, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("twin: reading values: %w", err)
	}
	if len(b)%8 != 0 {
		return nil, fmt.Errorf("twin: %d bytes is not a whole number of float64 values", len(b))
	}
	v := make([]float64, len(b)/8)
	if err := binary.Read(bytes.NewReader(b), binary.LittleEndian, v); err != nil {
		return nil, fmt.Errorf("twin: decoding values: %w", err)
	}
	return v, nil
}

// WriteFloats writes v to w as little-endian float64 values.
func WriteFloats(w io.Writer, v []float64) error {
	if err := binary.Write(w, binary.LittleEndian, v); err != nil {
		return fmt.Errorf("twin: writing values: %w", err)
	}
	return nil
}

// FileKey returns the key of the twin file that holds the raw data of
// a result category. Fatigue is derived from the stress twin.
func FileKey(category string) string {
	if category == "fatigue" {
		return "stress"
	}
	return category
}
