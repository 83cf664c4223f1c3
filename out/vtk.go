// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package out writes the simulation results: the legacy VTK structured-grid
// file read by ParaView, the statistics file mined by the campaign tooling,
// and plain tabular slices of the field data.
package out

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/richardhaslam/netl-ap-map-flow/apm"
)

// vtkHeader is the legacy ASCII VTK preamble
const vtkHeader = `# vtk DataFile Version 3.0
vtk output
ASCII
DATASET STRUCTURED_GRID
DIMENSIONS %d 2 %d
POINTS %d float
`

// NamedVector attaches a name to a cell data vector for export
type NamedVector struct {
	Name string
	Data []float64
}

// VtkOptions control the geometry written by WriteVTK
type VtkOptions struct {
	YValues   [][]float64 // data map used as the y coordinate; the field's own map when nil
	YOffsets  [][]float64 // data map shifting the y values; -YValues/2 when nil
	VoxelSize float64     // voxel edge length in the desired units
	AvgFact   float64     // x/z axis scaling factor
	CellData  []NamedVector
	Overwrite bool
}

// WriteVTK exports fld as an ASCII legacy VTK structured grid. The x and z
// coordinates come from the map dimensions; the aperture spans the two
// faces in y.
func WriteVTK(fld *apm.DataField, filename string, opt VtkOptions) error {

	// options
	if filename == "" {
		filename = strings.TrimSuffix(fld.Infile, filepath.Ext(fld.Infile)) + ".vtk"
	}
	if opt.VoxelSize == 0 {
		opt.VoxelSize = 1
	}
	if opt.AvgFact == 0 {
		opt.AvgFact = 1
	}
	yvals := opt.YValues
	if yvals == nil {
		yvals = fld.Dmap
	}
	yoffs := opt.YOffsets
	if yoffs == nil {
		yoffs = make([][]float64, len(yvals))
		for iz := range yvals {
			yoffs[iz] = make([]float64, len(yvals[iz]))
			for ix := range yvals[iz] {
				yoffs[iz][ix] = yvals[iz][ix] / -2.0
			}
		}
	}
	if !opt.Overwrite {
		if _, err := os.Stat(filename); err == nil {
			return chk.Err("there is already a file at %q; set Overwrite to replace it", filename)
		}
	}

	nx, nz := fld.Nx, fld.Nz
	npts := (nx + 1) * (nz + 1) * 2
	var sb strings.Builder
	sb.WriteString(io.Sf(vtkHeader, nx+1, nz+1, npts))

	// corner coordinate maps
	ycoords := scalePointData(apm.CellToPointData(yvals), opt.VoxelSize)
	yoffset := scalePointData(apm.CellToPointData(yoffs), opt.VoxelSize)

	// point coordinates: per grid row the lower face then the upper face
	point := func(x, y, z float64) {
		sb.WriteString(io.Sf("%14.6E %14.6E %14.6E\n", x, y, z))
	}
	for iz := 0; iz < nz; iz++ {
		z := float64(iz) * opt.VoxelSize * opt.AvgFact
		point(0.0, yoffset[iz][0][0], z)
		for ix := 0; ix < nx; ix++ {
			x := float64(ix) * opt.VoxelSize * opt.AvgFact
			point(x, yoffset[iz][ix][1], z)
		}
		y := yoffset[iz][0][0] + ycoords[iz][0][0]
		point(0.0, y, z)
		for ix := 0; ix < nx; ix++ {
			x := float64(ix) * opt.VoxelSize * opt.AvgFact
			point(x, yoffset[iz][ix][1]+ycoords[iz][ix][1], z)
		}
	}

	// final row of edges at the top of the map
	z := float64(nz) * opt.VoxelSize * opt.AvgFact
	point(0.0, yoffset[nz-1][0][3], z)
	for ix := 0; ix < nx; ix++ {
		x := float64(ix) * opt.VoxelSize * opt.AvgFact
		point(x, yoffset[nz-1][ix][2], z)
	}
	y := yoffset[nz-1][0][3] + ycoords[nz-1][0][3]
	point(0.0, y, z)
	for ix := 0; ix < nx; ix++ {
		x := float64(ix) * opt.VoxelSize * opt.AvgFact
		point(x, yoffset[nz-1][ix][2]+ycoords[nz-1][ix][2], z)
	}

	// cell data: the field's own vector first
	sb.WriteString(io.Sf("\nCELL_DATA %d\n", nx*nz))
	cellData := append([]NamedVector{{fld.FieldName, fld.Dvec}}, opt.CellData...)
	for _, cd := range cellData {
		sb.WriteString("\n")
		sb.WriteString(io.Sf("SCALARS %s float\n", cd.Name))
		sb.WriteString("LOOKUP_TABLE default\n")
		for _, v := range cd.Data {
			sb.WriteString(io.Sf("%14.6e\n", v))
		}
	}

	io.WriteStringToFileD(filepath.Dir(filename), filepath.Base(filename), sb.String())
	return nil
}

// scalePointData multiplies every corner value by s
func scalePointData(pd [][][4]float64, s float64) [][][4]float64 {
	for iz := range pd {
		for ix := range pd[iz] {
			for c := 0; c < 4; c++ {
				pd[iz][ix][c] *= s
			}
		}
	}
	return pd
}
