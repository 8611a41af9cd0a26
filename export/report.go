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
	"bytes"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/phpdave11/gofpdf"
)

// Report holds the content of a PDF result report.
type Report struct {
	Title     string
	Operation string
	Summary   *Summary
	Created   time.Time

	// Images are PNG images, such as the field image or the S-N
	// curve, appended after the tables, in order.
	Images []Image
}

// Image is a titled PNG image.
type Image struct {
	Title string
	PNG   []byte
}

// WriteReport writes r to w as a PDF document.
func WriteReport(w io.Writer, r *Report) error {
	title := r.Title
	if title == "" {
		title = "Digital twin result report"
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(r.Created)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, title)
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	line := func(format string, args ...interface{}) {
		pdf.Cell(0, 6, fmt.Sprintf(format, args...))
		pdf.Ln(6)
	}
	line("Operation: %s", r.Operation)
	if !r.Created.IsZero() {
		line("Date: %s", r.Created.Format("2006-01-02 15:04"))
	}
	if s := r.Summary; s != nil {
		line("Named selection: %s", s.NamedSelection)
		line("Unit: %s", s.Unit)
		pdf.Ln(4)

		pdf.SetFont("Helvetica", "B", 11)
		for _, h := range []string{"Result", "Value", "x", "y", "z"} {
			pdf.CellFormat(36, 7, h, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 10)
		labels := make([]string, 0, len(s.OutputParameters))
		for k := range s.OutputParameters {
			labels = append(labels, k)
		}
		sort.Strings(labels)
		for _, k := range labels {
			rec := s.OutputParameters[k]
			pdf.CellFormat(36, 7, k, "1", 0, "L", false, 0, "")
			pdf.CellFormat(36, 7, fmt.Sprintf("%.6g", rec.Value), "1", 0, "R", false, 0, "")
			for _, p := range rec.Point {
				pdf.CellFormat(36, 7, fmt.Sprintf("%.6g", p), "1", 0, "R", false, 0, "")
			}
			pdf.Ln(-1)
		}

		if len(s.TwinOutputs) > 0 {
			pdf.Ln(4)
			pdf.SetFont("Helvetica", "B", 11)
			pdf.Cell(0, 6, "Twin outputs")
			pdf.Ln(6)
			pdf.SetFont("Helvetica", "", 10)
			names := make([]string, 0, len(s.TwinOutputs))
			for k := range s.TwinOutputs {
				names = append(names, k)
			}
			sort.Strings(names)
			for _, k := range names {
				line("%s: %.6g", k, s.TwinOutputs[k])
			}
		}
	}

	for i, img := range r.Images {
		name := fmt.Sprintf("image%d", i)
		pdf.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(img.PNG))
		pdf.AddPage()
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, img.Title)
		pdf.Ln(10)
		pdf.ImageOptions(name, 15, pdf.GetY(), 180, 0, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("export: writing report: %w", err)
	}
	return nil
}
