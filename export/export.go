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

// Package export writes derived results as data artifacts: a
// line-delimited JSON field file, a JSON summary, a spreadsheet and a
// PDF report.
package export

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/spatialmodel/twinmap/derive"
	"github.com/spatialmodel/twinmap/extremum"
)

// WriteField writes t to w as line-delimited JSON, one object with
// keys x, y, z and the result column per row. NaN values are written
// as null.
func WriteField(w io.Writer, t *derive.Table) error {
	b := bufio.NewWriter(w)
	keys := t.Columns()
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		b.WriteByte('{')
		for j, k := range keys {
			if j > 0 {
				b.WriteByte(',')
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}
			b.Write(kb)
			b.WriteByte(':')
			if err := writeNumber(b, row[j]); err != nil {
				return err
			}
		}
		b.WriteString("}\n")
	}
	if err := b.Flush(); err != nil {
		return fmt.Errorf("export: writing field: %w", err)
	}
	return nil
}

func writeNumber(w io.Writer, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		_, err := io.WriteString(w, "null")
		return err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	_, err = w.Write(b)
	return err
}

// Summary is the JSON summary of a result.
type Summary struct {
	TwinOutputs      map[string]float64         `json:"twin_outputs"`
	OutputParameters map[string]extremum.Record `json:"output_parameters"`
	Unit             string                     `json:"unit"`
	NamedSelection   string                     `json:"named_selection"`
}

// NewSummary creates the summary of the result column detail, with
// the extrema labeled "max <detail>" and "min <detail>".
func NewSummary(detail, unit, namedSelection string, twinOutputs map[string]float64, ext extremum.Result) *Summary {
	return &Summary{
		TwinOutputs: twinOutputs,
		OutputParameters: map[string]extremum.Record{
			"max " + detail: ext.Max,
			"min " + detail: ext.Min,
		},
		Unit:           unit,
		NamedSelection: namedSelection,
	}
}

// WriteSummary writes s to w as indented JSON.
func WriteSummary(w io.Writer, s *Summary) error {
	e := json.NewEncoder(w)
	e.SetIndent("", "    ")
	if err := e.Encode(s); err != nil {
		return fmt.Errorf("export: writing summary: %w", err)
	}
	return nil
}
