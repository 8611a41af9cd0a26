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

package fatigue

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang/groupcache/lru"
)

// ReadCurve reads an S-N curve from a semicolon-delimited table with
// a header row containing the columns Stress and Cycles.
func ReadCurve(r io.Reader) (*Curve, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("fatigue: reading S-N curve header: %w", err)
	}
	si, ci := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "stress":
			si = i
		case "cycles":
			ci = i
		}
	}
	if si < 0 || ci < 0 {
		return nil, fmt.Errorf("fatigue: S-N curve header %v must contain Stress and Cycles", header)
	}
	var stress, cycles []float64
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("fatigue: reading S-N curve: %w", err)
		}
		s, err := strconv.ParseFloat(strings.TrimSpace(rec[si]), 64)
		if err != nil {
			return nil, fmt.Errorf("fatigue: S-N curve line %d: %w", line, err)
		}
		c, err := strconv.ParseFloat(strings.TrimSpace(rec[ci]), 64)
		if err != nil {
			return nil, fmt.Errorf("fatigue: S-N curve line %d: %w", line, err)
		}
		stress = append(stress, s)
		cycles = append(cycles, c)
	}
	return NewCurve(stress, cycles)
}

type cacheKey struct {
	path    string
	modTime time.Time
	size    int64
}

var (
	cacheMu sync.Mutex
	cache   = lru.New(32)
)

// LoadCurve reads the S-N curve in the file at path. Curves are
// immutable, so parsed curves are shared between callers until the
// file changes.
func LoadCurve(path string) (*Curve, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("fatigue: opening S-N curve: %w", err)
	}
	key := cacheKey{path: path, modTime: fi.ModTime(), size: fi.Size()}
	cacheMu.Lock()
	c, ok := cache.Get(key)
	cacheMu.Unlock()
	if ok {
		return c.(*Curve), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("fatigue: opening S-N curve: %w", err)
	}
	defer f.Close()
	curve, err := ReadCurve(f)
	if err != nil {
		return nil, fmt.Errorf("%w (in %s)", err, path)
	}
	cacheMu.Lock()
	cache.Add(key, curve)
	cacheMu.Unlock()
	return curve, nil
}
