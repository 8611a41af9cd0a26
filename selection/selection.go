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

// Package selection matches a requested named selection against the
// selections of a reduced-order model and of a finite-element mesh.
package selection

import (
	"fmt"
	"strings"

	"github.com/spatialmodel/twinmap/mesh"
)

// WholeBody is the default sentinel requesting no scoping at all.
const WholeBody = "All_Body"

// SelectionNotFoundError is returned when the requested named
// selection does not exist on the mesh.
type SelectionNotFoundError struct {
	Name      string
	Available []string
}

func (e *SelectionNotFoundError) Error() string {
	return fmt.Sprintf("selection: named selection %q not found in mesh; available: %v", e.Name, e.Available)
}

// Handle identifies one named selection on one side of the lookup.
type Handle struct {
	Index int    // position in the list it was found in
	Name  string // name as spelled in that list
}

// Result holds the outcome of resolving a named selection. Twin and
// Mesh are looked up independently; either is nil when that side has
// no scoping restriction or does not know the selection.
type Result struct {
	Twin   *Handle
	Mesh   *Handle
	Scoped *mesh.Mesh
}

// Resolver resolves requested selections. The zero value uses
// WholeBody as the sentinel.
type Resolver struct {
	WholeBody string
}

func (r Resolver) sentinel() string {
	if r.WholeBody == "" {
		return WholeBody
	}
	return r.WholeBody
}

// Resolve matches requested case-insensitively against
// twinSelections and the named selections of m. Requesting the
// whole-body sentinel returns m unchanged with both handles nil.
// A selection missing from the twin leaves Twin nil without failing;
// a selection missing from the mesh returns *SelectionNotFoundError
// because the mesh cannot be scoped.
func (r Resolver) Resolve(twinSelections []string, m *mesh.Mesh, requested string) (*Result, error) {
	if requested == r.sentinel() {
		return &Result{Scoped: m}, nil
	}
	meshSelections := m.AvailableNamedSelections()
	res := &Result{
		Twin: Lookup(twinSelections, requested),
		Mesh: Lookup(meshSelections, requested),
	}
	if res.Mesh == nil {
		return nil, &SelectionNotFoundError{Name: requested, Available: meshSelections}
	}
	elements := m.Selections[res.Mesh.Index].Elements
	scoped, err := m.Scope(elements)
	if err != nil {
		return nil, fmt.Errorf("selection: scoping mesh to %q: %w", res.Mesh.Name, err)
	}
	res.Scoped = scoped
	return res, nil
}

// Lookup returns the first entry of names equal to name ignoring case,
// or nil if there is none.
func Lookup(names []string, name string) *Handle {
	for i, n := range names {
		if strings.EqualFold(n, name) {
			return &Handle{Index: i, Name: n}
		}
	}
	return nil
}
