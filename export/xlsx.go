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

package export

import (
	"fmt"
	"io"
	"sort"

	"github.com/spatialmodel/twinmap/derive"
	"github.com/tealeg/xlsx"
)

// WriteXLSX writes t to w as a spreadsheet with a results sheet and,
// if s is not nil, a summary sheet.
func WriteXLSX(w io.Writer, t *derive.Table, s *Summary) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(sheetName(t.Column))
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	row := sheet.AddRow()
	for _, c := range t.Columns() {
		row.AddCell().SetString(c)
	}
	for i := 0; i < t.Len(); i++ {
		row = sheet.AddRow()
		for _, v := range t.Row(i) {
			row.AddCell().SetFloat(v)
		}
	}

	if s != nil {
		sheet, err := f.AddSheet("summary")
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		addPair := func(k, v string) {
			r := sheet.AddRow()
			r.AddCell().SetString(k)
			r.AddCell().SetString(v)
		}
		addPair("named_selection", s.NamedSelection)
		addPair("unit", s.Unit)
		labels := make([]string, 0, len(s.OutputParameters))
		for k := range s.OutputParameters {
			labels = append(labels, k)
		}
		sort.Strings(labels)
		for _, k := range labels {
			rec := s.OutputParameters[k]
			r := sheet.AddRow()
			r.AddCell().SetString(k)
			r.AddCell().SetFloat(rec.Value)
			for _, p := range rec.Point {
				r.AddCell().SetFloat(p)
			}
		}
		names := make([]string, 0, len(s.TwinOutputs))
		for k := range s.TwinOutputs {
			names = append(names, k)
		}
		sort.Strings(names)
		for _, k := range names {
			r := sheet.AddRow()
			r.AddCell().SetString(k)
			r.AddCell().SetFloat(s.TwinOutputs[k])
		}
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("export: writing spreadsheet: %w", err)
	}
	return nil
}

// sheetName shortens name to the 31 characters a sheet name may have.
func sheetName(name string) string {
	if len(name) > 31 {
		return name[:31]
	}
	return name
}
