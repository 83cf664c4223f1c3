// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package model runs one flow simulation case: it builds the two-layer
// topology from an aperture map, assembles the local-cubic-law coefficients,
// solves the banded system and derives the reported flow quantities.
package model

import (
	"strings"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/richardhaslam/netl-ap-map-flow/inp"
	"github.com/richardhaslam/netl-ap-map-flow/units"
)

// sides of the map where held-pressure boundaries may sit
const (
	SideLeft   = "LEFT"
	SideRight  = "RIGHT"
	SideTop    = "TOP"
	SideBottom = "BOTTOM"
)

// Params holds the physical and output settings of one case, read from the
// keyword input file. All values are SI.
type Params struct {

	// input map
	MapFile   string  // APER-MAP: aperture map data file
	VoxelSize float64 // VOXEL-SIZE: edge length of one voxel [m]
	AvgFact   float64 // MAP-AVERAGING-FACTOR: cells per voxel along x/z

	// physics
	Viscosity  float64 // FLUID-VISCOSITY [Pa·s]
	InletPress float64 // INLET-PRESS [Pa]
	OutletPres float64 // OUTLET-PRESS [Pa]
	InletSide  string  // INLET-SIDE: LEFT/RIGHT/TOP/BOTTOM
	OutletSide string  // OUTLET-SIDE: LEFT/RIGHT/TOP/BOTTOM

	// solve
	SolverName string // SOLVER: band or sparse

	// outputs
	StatFile    string // STAT-FILE
	VtkFile     string // VTK-FILE
	ProfileFile string // PRESS-PROFILE-FILE
	Overwrite   bool   // OVERWRITE: replace existing output files
}

// ParamsFromInput extracts and validates the case parameters
func ParamsFromInput(f *inp.InputFile) (*Params, error) {

	o := &Params{
		VoxelSize:  1.0,
		AvgFact:    1.0,
		SolverName: "band",
		InletSide:  SideLeft,
		OutletSide: SideRight,
	}

	var err error
	get := func(key string) (string, bool) { return f.GetValue(key) }

	// required
	mapfile, ok := get("APER-MAP")
	if !ok {
		return nil, chk.Err("input file does not set APER-MAP")
	}
	o.MapFile = mapfile
	if o.Viscosity, err = floatValue(f, "FLUID-VISCOSITY", true, 0); err != nil {
		return nil, err
	}
	if o.InletPress, err = floatValue(f, "INLET-PRESS", true, 0); err != nil {
		return nil, err
	}
	if o.OutletPres, err = floatValue(f, "OUTLET-PRESS", true, 0); err != nil {
		return nil, err
	}

	// optional
	if o.VoxelSize, err = floatValue(f, "VOXEL-SIZE", false, o.VoxelSize); err != nil {
		return nil, err
	}
	if o.AvgFact, err = floatValue(f, "MAP-AVERAGING-FACTOR", false, o.AvgFact); err != nil {
		return nil, err
	}
	if v, ok := get("INLET-SIDE"); ok {
		o.InletSide = strings.ToUpper(v)
	}
	if v, ok := get("OUTLET-SIDE"); ok {
		o.OutletSide = strings.ToUpper(v)
	}
	if v, ok := get("SOLVER"); ok {
		o.SolverName = strings.ToLower(v)
	}
	if v, ok := get("STAT-FILE"); ok {
		o.StatFile = v
	}
	if v, ok := get("VTK-FILE"); ok {
		o.VtkFile = v
	}
	if v, ok := get("PRESS-PROFILE-FILE"); ok {
		o.ProfileFile = v
	}
	if v, ok := get("OVERWRITE"); ok {
		o.Overwrite = io.Atob(v)
	}

	// checks
	for _, side := range []string{o.InletSide, o.OutletSide} {
		switch side {
		case SideLeft, SideRight, SideTop, SideBottom:
		default:
			return nil, chk.Err("invalid boundary side %q", side)
		}
	}
	if o.InletSide == o.OutletSide {
		return nil, chk.Err("inlet and outlet cannot share side %q", o.InletSide)
	}
	if o.Viscosity <= 0 {
		return nil, chk.Err("FLUID-VISCOSITY must be positive: %g", o.Viscosity)
	}
	if o.VoxelSize <= 0 {
		return nil, chk.Err("VOXEL-SIZE must be positive: %g", o.VoxelSize)
	}
	return o, nil
}

// floatValue reads a numeric keyword, converting an optional trailing unit
// to SI; e.g. "INLET-PRESS: 100 kPa"
func floatValue(f *inp.InputFile, key string, required bool, def float64) (float64, error) {
	raw, unit, ok := f.GetValueUnit(key)
	if !ok {
		if required {
			return 0, chk.Err("input file does not set %s", key)
		}
		return def, nil
	}
	val := io.Atof(raw)
	if unit != "" {
		conv, err := units.Convert(val, unit, "SI")
		if err != nil {
			return 0, chk.Err("cannot convert %s value %q [%s] to SI: %v", key, raw, unit, err)
		}
		val = conv
	}
	return val, nil
}
