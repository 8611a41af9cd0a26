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

// Package config holds the process configuration: which reduced-order
// models, named selections, operations and deformation scales requests
// may use, and the units results are reported in.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/twinmap/derive"
	"github.com/spatialmodel/twinmap/selection"
	"github.com/spatialmodel/twinmap/unit"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// ErrInvalidConfig is wrapped by every error caused by a malformed
// configuration file.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config is the process configuration. It is created once by Load and
// is not modified afterwards.
type Config struct {
	ROMs              []int               `json:"available_roms"`
	NamedSelections   []string            `json:"available_named_selections"`
	Operations        map[string][]string `json:"available_operations"`
	DeformationScales []float64           `json:"available_deformation_scale"`

	// Units maps a category, or for categories with per-component
	// units a result column such as fatigue_damage, to a unit.
	Units map[string]string `json:"operation_units"`

	// Autoscale is the deflection, in percent of the model size, used
	// when a request does not set a deformation scale.
	Autoscale float64 `json:"autoscale"`

	WholeBody    string `json:"whole_body"`
	OutputBucket string `json:"output_bucket,omitempty"`
	LogLevel     string `json:"log_level"`
}

// Defaults.
const (
	DefaultWholeBody = selection.WholeBody
	DefaultLogLevel  = "info"
	EnvPrefix        = "TWINMAP"
)

// Load reads the configuration file at path, which may be YAML, TOML
// or JSON. Values may be overridden by environment variables such as
// TWINMAP_AUTOSCALE.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetDefault("whole_body", DefaultWholeBody)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("autoscale", 0)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	c, err := parse(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}
	return c, nil
}

func parse(v *viper.Viper) (*Config, error) {
	c := &Config{
		WholeBody:    v.GetString("whole_body"),
		OutputBucket: v.GetString("output_bucket"),
		LogLevel:     v.GetString("log_level"),
		Operations:   make(map[string][]string),
		Units:        make(map[string]string),
	}
	var err error
	if c.Autoscale, err = cast.ToFloat64E(v.Get("autoscale")); err != nil {
		return nil, fmt.Errorf("autoscale: %w", err)
	}
	if c.ROMs, err = cast.ToIntSliceE(v.Get("available_roms")); err != nil {
		return nil, fmt.Errorf("available_roms: %w", err)
	}

	ns := v.Get("available_named_selections")
	if ns == nil {
		ns = v.Get("availabe_named_selections")
	}
	if c.NamedSelections, err = cast.ToStringSliceE(ns); err != nil {
		return nil, fmt.Errorf("available_named_selections: %w", err)
	}

	scales, err := cast.ToSliceE(v.Get("available_deformation_scale"))
	if err != nil {
		return nil, fmt.Errorf("available_deformation_scale: %w", err)
	}
	for _, s := range scales {
		f, err := cast.ToFloat64E(s)
		if err != nil {
			return nil, fmt.Errorf("available_deformation_scale: %w", err)
		}
		c.DeformationScales = append(c.DeformationScales, f)
	}

	ops, err := entries(v.Get("available_operations"))
	if err != nil {
		return nil, fmt.Errorf("available_operations: %w", err)
	}
	for category, comps := range ops {
		cs, err := cast.ToStringSliceE(comps)
		if err != nil {
			return nil, fmt.Errorf("available_operations: %s: %w", category, err)
		}
		for _, comp := range cs {
			if _, err := derive.ParseOperation(category, comp); err != nil {
				return nil, fmt.Errorf("available_operations: %w", err)
			}
		}
		c.Operations[category] = append(c.Operations[category], cs...)
	}
	if len(c.Operations) == 0 {
		return nil, errors.New("available_operations: no operations")
	}

	units, err := entries(v.Get("operation_units"))
	if err != nil {
		return nil, fmt.Errorf("operation_units: %w", err)
	}
	for category, u := range units {
		if s, err := cast.ToStringE(u); err == nil {
			c.Units[category] = s
			continue
		}
		// Per-component units, as used by fatigue.
		sub, err := entries(u)
		if err != nil {
			return nil, fmt.Errorf("operation_units: %s: %w", category, err)
		}
		for comp, su := range sub {
			s, err := cast.ToStringE(su)
			if err != nil {
				return nil, fmt.Errorf("operation_units: %s: %s: %w", category, comp, err)
			}
			c.Units[category+"_"+comp] = s
		}
	}
	if u, ok := c.Units[string(derive.Displacement)]; ok && !unit.Known(u) {
		return nil, fmt.Errorf("operation_units: displacement unit %q is not a length unit", u)
	}

	if c.Autoscale < 0 {
		return nil, fmt.Errorf("autoscale %g is negative", c.Autoscale)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return nil, fmt.Errorf("log_level: %w", err)
	}
	return c, nil
}

// entries reads a mapping written either as a map or as a list of
// single-key maps.
func entries(v interface{}) (map[string]interface{}, error) {
	if v == nil {
		return map[string]interface{}{}, nil
	}
	if m, err := cast.ToStringMapE(v); err == nil {
		return m, nil
	}
	list, err := cast.ToSliceE(v)
	if err != nil {
		return nil, err
	}
	o := make(map[string]interface{})
	for i, item := range list {
		m, err := cast.ToStringMapE(item)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		for k, val := range m {
			if prev, ok := o[k]; ok {
				// Repeated keys accumulate.
				pl, _ := cast.ToSliceE(prev)
				vl, err := cast.ToSliceE(val)
				if err != nil {
					return nil, fmt.Errorf("item %d: repeated key %q", i, k)
				}
				val = append(pl, vl...)
			}
			o[k] = val
		}
	}
	return o, nil
}

// Allowed reports whether the configuration permits op.
func (c *Config) Allowed(op derive.Operation) bool {
	return slices.Contains(c.Operations[string(op.Category())], string(op.Component()))
}

// Unit returns the unit results of op are reported in, or "" if no
// unit is configured.
func (c *Config) Unit(op derive.Operation) string {
	if u, ok := c.Units[op.Column()]; ok {
		return u
	}
	return c.Units[string(op.Category())]
}

// DisplacementUnit returns the unit of raw displacement values,
// meters if none is configured.
func (c *Config) DisplacementUnit() string {
	if u, ok := c.Units[string(derive.Displacement)]; ok {
		return u
	}
	return unit.Meter
}

// Level returns the configured log level.
func (c *Config) Level() logrus.Level {
	l, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return l
}

// OperationNames returns the permitted operations as result column
// names, sorted.
func (c *Config) OperationNames() []string {
	var o []string
	for category, comps := range c.Operations {
		for _, comp := range comps {
			o = append(o, category+"_"+comp)
		}
	}
	slices.Sort(o)
	return o
}

func (c *Config) String() string {
	return fmt.Sprintf("ROMs %v; named selections %s; operations %s; deformation scales %v; autoscale %g%%",
		c.ROMs, strings.Join(c.NamedSelections, ", "), strings.Join(c.OperationNames(), ", "),
		c.DeformationScales, c.Autoscale)
}
