// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package out

import (
	"os"

	"github.com/cpmech/gosl/chk"

	"github.com/richardhaslam/netl-ap-map-flow/apm"
	"github.com/richardhaslam/netl-ap-map-flow/model"
)

// WriteCaseOutputs writes every output the case parameters ask for: the
// statistics file, the VTK grid with the pressure field attached, and the
// pressure profile slices
func WriteCaseOutputs(run *model.Run) error {

	prm := run.Prm

	if prm.StatFile != "" {
		if !prm.Overwrite {
			if _, err := os.Stat(prm.StatFile); err == nil {
				return chk.Err("there is already a file at %q; set OVERWRITE to replace it", prm.StatFile)
			}
		}
		if err := WriteStats(prm.StatFile, prm.MapFile, "", run.Res); err != nil {
			return err
		}
	}

	if prm.VtkFile != "" {
		opt := VtkOptions{
			VoxelSize: prm.VoxelSize,
			AvgFact:   prm.AvgFact,
			CellData:  []NamedVector{{"pressure", run.Press}},
			Overwrite: prm.Overwrite,
		}
		if err := WriteVTK(run.Fld, prm.VtkFile, opt); err != nil {
			return err
		}
	}

	if prm.ProfileFile != "" {
		if !prm.Overwrite {
			if _, err := os.Stat(prm.ProfileFile); err == nil {
				return chk.Err("there is already a file at %q; set OVERWRITE to replace it", prm.ProfileFile)
			}
		}
		pfld, err := pressureField(run)
		if err != nil {
			return err
		}
		dir, ids := profileSlices(run)
		if err := WriteProfiles(pfld, prm.ProfileFile, dir, ids); err != nil {
			return err
		}
	}
	return nil
}

// pressureField reshapes the solved cell pressures into a data field
func pressureField(run *model.Run) (*apm.DataField, error) {
	nx, nz := run.Fld.Nx, run.Fld.Nz
	dmap := make([][]float64, nz)
	for iz := 0; iz < nz; iz++ {
		dmap[iz] = make([]float64, nx)
		for ix := 0; ix < nx; ix++ {
			dmap[iz][ix] = run.Press[iz*nx+ix]
		}
	}
	return apm.NewDataField(dmap, "pressure")
}

// profileSlices picks three slices along the flow axis: first, middle and
// last row or column, 1-based
func profileSlices(run *model.Run) (direction string, startIDs []int) {
	switch run.Prm.InletSide {
	case model.SideLeft, model.SideRight:
		return "x", []int{1, (run.Fld.Nz + 1) / 2, run.Fld.Nz}
	}
	return "z", []int{1, (run.Fld.Nx + 1) / 2, run.Fld.Nx}
}
