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

package derive

import "fmt"

// Category is the family of result an operation derives.
type Category string

// Result categories.
const (
	Displacement Category = "displacement"
	Stress       Category = "stress"
	Fatigue      Category = "fatigue"
)

// Component selects what is derived within a category.
type Component string

// Displacement components.
const (
	UX   Component = "ux"
	UY   Component = "uy"
	UZ   Component = "uz"
	Norm Component = "norm"
)

// Stress components. XZ and ZX both name the sixth tensor entry.
const (
	XX                Component = "xx"
	YY                Component = "yy"
	ZZ                Component = "zz"
	XY                Component = "xy"
	YZ                Component = "yz"
	XZ                Component = "xz"
	ZX                Component = "zx"
	VonMisesComponent Component = "von_mises"
)

// Fatigue components.
const (
	Cycle  Component = "cycle"
	Damage Component = "damage"
)

// components lists, per category, each valid component and the
// column of the raw record it reads (-1 for computed values).
var components = map[Category]map[Component]int{
	Displacement: {UX: 0, UY: 1, UZ: 2, Norm: -1},
	Stress:       {XX: 0, YY: 1, ZZ: 2, XY: 3, YZ: 4, XZ: 5, ZX: 5, VonMisesComponent: -1},
	Fatigue:      {Cycle: -1, Damage: -1},
}

// Width returns the number of raw values per point for category c:
// 3 for displacement vectors and 6 for stress tensors. Fatigue is
// derived from stress.
func (c Category) Width() int {
	if c == Displacement {
		return 3
	}
	return 6
}

// InvalidOperationError is returned for a category and component
// combination that no deriver handles.
type InvalidOperationError struct {
	Category, Component string
}

func (e *InvalidOperationError) Error() string {
	return fmt.Sprintf("derive: invalid operation %q/%q", e.Category, e.Component)
}

// Operation is an immutable, validated (category, component) pair.
// The zero value is not a valid operation; use ParseOperation.
type Operation struct {
	category  Category
	component Component
}

// ParseOperation validates a category and component pair.
func ParseOperation(category, component string) (Operation, error) {
	comps, ok := components[Category(category)]
	if !ok {
		return Operation{}, &InvalidOperationError{Category: category, Component: component}
	}
	if _, ok := comps[Component(component)]; !ok {
		return Operation{}, &InvalidOperationError{Category: category, Component: component}
	}
	return Operation{category: Category(category), component: Component(component)}, nil
}

// MustParseOperation is like ParseOperation but panics on error.
func MustParseOperation(category, component string) Operation {
	op, err := ParseOperation(category, component)
	if err != nil {
		panic(err)
	}
	return op
}

// Category returns the category of op.
func (op Operation) Category() Category { return op.category }

// Component returns the component of op.
func (op Operation) Component() Component { return op.component }

// Axis returns the displacement axis (0, 1 or 2) op isolates, or -1
// if op is not a single-axis displacement operation.
func (op Operation) Axis() int {
	if op.category != Displacement {
		return -1
	}
	return components[Displacement][op.component]
}

// Column returns the name of the result column: the category and the
// component joined with an underscore, e.g. "stress_von_mises".
func (op Operation) Column() string {
	return string(op.category) + "_" + string(op.component)
}

func (op Operation) String() string { return op.Column() }
