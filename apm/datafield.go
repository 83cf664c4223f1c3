// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package apm handles 2-D aperture-map field data: reading the raw map file,
// the cell-interface list used to build adjacency, and the derived data
// (point data, thresholded maps, row/column vectors) consumed by the model
// and the exporters.
package apm

import (
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// delimPattern extracts the separator between two numeric tokens
var delimPattern = regexp.MustCompile(`[-0-9.+eE]+([^-0-9.+eE]+)[-0-9.+eE]+`)

// DataField stores the raw data of a 2-D field file and the quantities
// derived from it. Dmap is indexed [iz][ix]; Dvec is the row-major
// flattening used as cell data everywhere downstream.
type DataField struct {

	// dimensions and data
	Nx   int         // number of cells per row
	Nz   int         // number of rows
	Dmap [][]float64 // [nz][nx] cell data, mutable via Threshold
	Dvec []float64   // [nz*nx] row-major cell data, rebuilt from Dmap on Threshold

	// metadata
	FieldName string // name used for the primary data vector on export
	Infile    string // source file, when read from disk

	// derived
	raw        [][]float64 // pristine copy of the parsed map
	interfaces [][2]int    // cell pairs sharing a face
}

// NewDataField builds a field from an in-memory cell map
func NewDataField(dmap [][]float64, fieldName string) (*DataField, error) {
	if len(dmap) < 1 || len(dmap[0]) < 1 {
		return nil, chk.Err("data map must have at least one row and one column")
	}
	o := &DataField{Nz: len(dmap), Nx: len(dmap[0]), FieldName: fieldName}
	o.Dmap = make([][]float64, o.Nz)
	o.raw = make([][]float64, o.Nz)
	o.Dvec = make([]float64, 0, o.Nz*o.Nx)
	for iz, rowdat := range dmap {
		if len(rowdat) != o.Nx {
			return nil, chk.Err("row %d has %d values; expected %d", iz, len(rowdat), o.Nx)
		}
		o.Dmap[iz] = make([]float64, o.Nx)
		o.raw[iz] = make([]float64, o.Nx)
		copy(o.Dmap[iz], rowdat)
		copy(o.raw[iz], rowdat)
		o.Dvec = append(o.Dvec, o.Dmap[iz]...)
	}
	o.defineCellInterfaces()
	return o, nil
}

// ReadDataField parses a field data file. The delimiter is detected from the
// first line; whitespace separation is the fallback.
func ReadDataField(filename, fieldName string) (*DataField, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, chk.Err("cannot read field data file: %v", err)
	}
	var dmap [][]float64
	delim := ""
	for _, line := range strings.Split(string(b), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if dmap == nil {
			if m := delimPattern.FindStringSubmatch(line); m != nil {
				delim = strings.TrimSpace(m[1])
			}
		}
		var toks []string
		if delim == "" {
			toks = strings.Fields(line)
		} else {
			toks = strings.Split(line, delim)
		}
		rowdat := make([]float64, 0, len(toks))
		for _, t := range toks {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			rowdat = append(rowdat, io.Atof(t))
		}
		dmap = append(dmap, rowdat)
	}
	o, err := NewDataField(dmap, fieldName)
	if err != nil {
		return nil, chk.Err("%s: %v", filename, err)
	}
	o.Infile = filename
	return o, nil
}

// Clone returns a fully independent copy of the field
func (o *DataField) Clone() *DataField {
	clone, _ := NewDataField(o.Dmap, o.FieldName)
	clone.Infile = o.Infile
	for iz := range o.raw {
		copy(clone.raw[iz], o.raw[iz])
	}
	return clone
}

// defineCellInterfaces lists every pair of cells sharing a face: the right
// column's vertical faces, the interior faces, then the top row's
// horizontal faces
func (o *DataField) defineCellInterfaces() {
	o.interfaces = o.interfaces[:0]
	for i := o.Nx - 1; i < (o.Nz-1)*o.Nx; i += o.Nx {
		o.interfaces = append(o.interfaces, [2]int{i, i + o.Nx})
	}
	for iz := 0; iz < o.Nz-1; iz++ {
		for ix := 0; ix < o.Nx-1; ix++ {
			ib := iz*o.Nx + ix
			o.interfaces = append(o.interfaces, [2]int{ib, ib + 1})
			o.interfaces = append(o.interfaces, [2]int{ib, ib + o.Nx})
		}
	}
	for i := (o.Nz - 1) * o.Nx; i < o.Nz*o.Nx-1; i++ {
		o.interfaces = append(o.interfaces, [2]int{i, i + 1})
	}
}

// Interfaces returns the cell pairs sharing a face
func (o *DataField) Interfaces() [][2]int { return o.interfaces }

// Adjacency returns the weighted undirected adjacency of the cells based on
// the product of values sharing an interface. Data defaults to the field's
// own cell data; zero and negative weights are culled, which removes closed
// cells from the connectivity.
func (o *DataField) Adjacency(data []float64) (pairs [][2]int, weights []float64) {
	if data == nil {
		data = o.Dvec
	}
	for _, iface := range o.interfaces {
		w := 2 * data[iface[0]] * data[iface[1]]
		if w > 0 {
			pairs = append(pairs, iface)
			weights = append(weights, w)
		}
	}
	return
}

// PointData averages the cell data onto cell corners. The result is indexed
// [iz][ix][corner] with corners 0=BLC 1=BRC 2=TRC 3=TLC.
func (o *DataField) PointData() [][][4]float64 {
	return CellToPointData(o.Dmap)
}

// CellToPointData averages a cell data map onto the cell corners. The
// result is indexed [iz][ix][corner] with corners 0=BLC 1=BRC 2=TRC 3=TLC.
func CellToPointData(dmap [][]float64) [][][4]float64 {

	nz, nx := len(dmap), len(dmap[0])
	pd := make([][][4]float64, nz+1)
	for iz := range pd {
		pd[iz] = make([][4]float64, nx+1)
	}

	// map corners first
	pd[0][0][0] = dmap[0][0]
	pd[0][nx][1] = dmap[0][nx-1]
	pd[nz][nx][2] = dmap[nz-1][nx-1]
	pd[nz][0][3] = dmap[nz-1][0]

	// interior averages
	for iz := 0; iz < nz; iz++ {
		for ix := 0; ix < nx; ix++ {
			val := windowAverage(dmap, iz, ix, iz+2, ix+2)
			pd[iz][ix][2] = val
			pd[iz+1][ix+1][0] = val
			pd[iz+1][ix][1] = val
			pd[iz][ix+1][3] = val
		}
	}

	// left and right edges
	for iz := 0; iz < nz; iz++ {
		val := windowAverage(dmap, iz, 0, iz+2, 1)
		pd[iz][0][3] = val
		pd[iz+1][0][0] = val
		val = windowAverage(dmap, iz, nx-1, iz+2, nx)
		pd[iz][nx-1][2] = val
		pd[iz+1][nx-1][1] = val
	}

	// bottom and top edges
	for ix := 0; ix < nx; ix++ {
		val := windowAverage(dmap, 0, ix, 1, ix+2)
		pd[0][ix][1] = val
		pd[0][ix+1][0] = val
		val = windowAverage(dmap, nz-1, ix, nz, ix+2)
		pd[nz-1][ix][2] = val
		pd[nz-1][ix+1][3] = val
	}

	return pd[:nz]
}

// windowAverage averages dmap over the clipped window [iz0,iz1) x [ix0,ix1)
func windowAverage(dmap [][]float64, iz0, ix0, iz1, ix1 int) float64 {
	if iz1 > len(dmap) {
		iz1 = len(dmap)
	}
	if ix1 > len(dmap[0]) {
		ix1 = len(dmap[0])
	}
	sum, cnt := 0.0, 0.0
	for iz := iz0; iz < iz1; iz++ {
		for ix := ix0; ix < ix1; ix++ {
			sum += dmap[iz][ix]
			cnt++
		}
	}
	return sum / cnt
}

// Threshold replaces values outside (vmin, vmax) by repl. The limits are
// applied only when the corresponding flag is on; repl is typically NaN.
func (o *DataField) Threshold(vmin, vmax, repl float64, useMin, useMax bool) {
	for iz := 0; iz < o.Nz; iz++ {
		for ix := 0; ix < o.Nx; ix++ {
			v := o.Dmap[iz][ix]
			if useMin && v <= vmin {
				o.Dmap[iz][ix] = repl
			}
			if useMax && v >= vmax {
				o.Dmap[iz][ix] = repl
			}
		}
	}
	// relink the flattened vector
	o.Dvec = o.Dvec[:0]
	for iz := 0; iz < o.Nz; iz++ {
		o.Dvec = append(o.Dvec, o.Dmap[iz]...)
	}
}

// Raw returns the pristine value of cell (iz,ix) before any thresholding
func (o *DataField) Raw(iz, ix int) float64 { return o.raw[iz][ix] }

// DataVect returns one row ("x") or one column ("z") of the data map.
// startID is 1-based, matching the legacy slice convention, and is clamped
// to the map extent.
func (o *DataField) DataVect(direction string, startID int) ([]float64, error) {
	switch strings.ToLower(direction) {
	case "x":
		if startID > o.Nz {
			startID = o.Nz
		}
		if startID < 1 {
			startID = 1
		}
		v := make([]float64, o.Nx)
		copy(v, o.Dmap[startID-1])
		return v, nil
	case "z":
		if startID > o.Nx {
			startID = o.Nx
		}
		if startID < 1 {
			startID = 1
		}
		v := make([]float64, o.Nz)
		for iz := 0; iz < o.Nz; iz++ {
			v[iz] = o.Dmap[iz][startID-1]
		}
		return v, nil
	}
	return nil, chk.Err("invalid direction %q: can only be x or z", direction)
}

// Percentile returns the value at the given percentile of data
func Percentile(perc float64, data []float64) float64 {
	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)
	tot := float64(len(sorted))
	num := 0.0
	index := 0
	for i := range sorted {
		index = i
		if num/tot*100.0 >= perc {
			break
		}
		num++
	}
	return sorted[index]
}
