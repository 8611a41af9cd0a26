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

package extremum

import (
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/kr/pretty"
	"github.com/spatialmodel/twinmap/derive"
)

func table(t *testing.T, values ...float64) *derive.Table {
	t.Helper()
	pts := make([]float64, 0, 3*len(values))
	for i := range values {
		f := float64(i)
		pts = append(pts, f, f, f)
	}
	tbl, err := derive.NewTable("stress_von_mises", pts, values)
	if err != nil {
		t.Fatal(err)
	}
	return tbl
}

func TestExtrema(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   Result
	}{
		{
			name:   "first occurrence",
			values: []float64{5, -3, 5},
			want: Result{
				Max: Record{Point: [3]float64{0, 0, 0}, Value: 5},
				Min: Record{Point: [3]float64{1, 1, 1}, Value: -3},
			},
		},
		{
			name:   "single row",
			values: []float64{2},
			want: Result{
				Max: Record{Value: 2},
				Min: Record{Value: 2},
			},
		},
		{
			name:   "NaN ignored",
			values: []float64{math.NaN(), 1, -1, math.NaN()},
			want: Result{
				Max: Record{Point: [3]float64{1, 1, 1}, Value: 1},
				Min: Record{Point: [3]float64{2, 2, 2}, Value: -1},
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			have, err := Extrema(table(t, test.values...))
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(have, test.want) {
				t.Errorf("have != want: %v", pretty.Diff(have, test.want))
			}
		})
	}
}

func TestExtremaEmpty(t *testing.T) {
	for name, values := range map[string][]float64{
		"empty":   nil,
		"all NaN": {math.NaN(), math.NaN()},
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := Extrema(table(t, values...)); !errors.Is(err, ErrEmptyTable) {
				t.Errorf("error %v", err)
			}
		})
	}
}

func TestRecordJSON(t *testing.T) {
	b, err := json.Marshal(Record{Point: [3]float64{1, 2, 3}, Value: 4.5})
	if err != nil {
		t.Fatal(err)
	}
	if want := `{"points":[1,2,3],"result":4.5}`; string(b) != want {
		t.Errorf("%s != %s", b, want)
	}
}
