// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/richardhaslam/netl-ap-map-flow/apm"
	"github.com/richardhaslam/netl-ap-map-flow/band"
)

// Run holds all data of one simulation case: the aperture field, the
// two-layer topology built from it, and the kernel buffers. One Run owns
// its buffers exclusively; concurrent cases each hold their own Run.
type Run struct {

	// input
	Prm *Params        // case parameters
	Fld *apm.DataField // aperture map [voxels]

	// kernel
	Tpo *band.Topology // two-layer coupling structure of the open cells
	Idx *band.IndexSet // solve ordering and band structure
	Sys *band.System   // coefficient storage and solver

	// active-cell bookkeeping
	active   []int   // active index → cell id
	cellNode []int   // cell id → active index; -1 for closed cells
	adjCells [][]int // [nact][<=4] active indices of in-plane neighbours

	// results
	Press []float64 // [ncell] cell pressure after solve; NaN for closed cells
	Res   *Results
}

// Results holds the reported quantities of one solved case (SI units)
type Results struct {
	Nx, Nz    int     // map dimensions
	NumActive int     // open cells
	QIn       float64 // inflow through the inlet boundary [m³/s]
	QOut      float64 // outflow through the outlet boundary [m³/s]
	MinAper   float64 // minimum open aperture [m]
	MaxAper   float64 // maximum aperture [m]
	AvgAper   float64 // mean aperture over open cells [m]
	PressDrop float64 // inlet minus outlet pressure [Pa]
	Perm      float64 // Darcy permeability estimate [m²]
}

// NewRun loads the aperture map and builds the kernel structures
func NewRun(prm *Params) (*Run, error) {

	o := &Run{Prm: prm}

	// aperture field
	fld, err := apm.ReadDataField(prm.MapFile, "aperture")
	if err != nil {
		return nil, err
	}
	o.Fld = fld

	if err := o.buildTopology(); err != nil {
		return nil, err
	}

	// kernel buffers
	o.Idx, err = band.BuildIndexSet(o.Tpo)
	if err != nil {
		return nil, err
	}
	o.Sys, err = band.NewSystem(o.Idx)
	if err != nil {
		return nil, err
	}
	if prm.SolverName != "band" {
		if err := o.Sys.UseSolver(prm.SolverName); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// buildTopology derives the two-layer node set from the open cells. Each
// open cell carries a top node (natural id 2a) and a bottom node (2a+1);
// the sheets couple in-plane only, following the aperture connectivity with
// closed cells culled.
func (o *Run) buildTopology() error {

	fld := o.Fld
	ncell := fld.Nx * fld.Nz

	// active cells
	o.cellNode = make([]int, ncell)
	for c := 0; c < ncell; c++ {
		o.cellNode[c] = -1
	}
	for c := 0; c < ncell; c++ {
		if fld.Dvec[c] > 0 {
			o.cellNode[c] = len(o.active)
			o.active = append(o.active, c)
		}
	}
	nact := len(o.active)
	if nact == 0 {
		return chk.Err("aperture map %q has no open cells", o.Prm.MapFile)
	}

	// in-plane neighbours of each active cell
	pairs, _ := fld.Adjacency(nil)
	o.adjCells = make([][]int, nact)
	for _, pr := range pairs {
		a1, a2 := o.cellNode[pr[0]], o.cellNode[pr[1]]
		if a1 < 0 || a2 < 0 {
			continue
		}
		o.adjCells[a1] = append(o.adjCells[a1], a2)
		o.adjCells[a2] = append(o.adjCells[a2], a1)
	}

	// node groups and adjacency for both sheets
	group := make([]band.NodeGroup, 2*nact)
	adjacency := make([][]int, 2*nact)
	for a := 0; a < nact; a++ {
		group[2*a] = band.Top
		group[2*a+1] = band.Bottom
		for _, an := range o.adjCells[a] {
			adjacency[2*a] = append(adjacency[2*a], 2*an)
			adjacency[2*a+1] = append(adjacency[2*a+1], 2*an+1)
		}
	}

	var err error
	o.Tpo, err = band.NewTopology(nact, nact, group, adjacency)
	return err
}

// aperture returns the physical aperture [m] of active cell a
func (o *Run) aperture(a int) float64 {
	return o.Fld.Dvec[o.active[a]] * o.Prm.VoxelSize
}

// tHalf returns the half-sheet transmissibility of an interface between
// apertures b1 and b2: local cubic law with the harmonic-mean aperture,
// split evenly between the two sheets
func (o *Run) tHalf(b1, b2 float64) float64 {
	bh := 2 * b1 * b2 / (b1 + b2)
	return bh * bh * bh / (12 * o.Prm.Viscosity) / 2
}

// tBoundary returns the half-sheet transmissibility of a held-pressure
// boundary face, at half a cell distance
func (o *Run) tBoundary(b float64) float64 {
	return b * b * b / (12 * o.Prm.Viscosity)
}

// sideCells returns the cell ids along one side of the map
func (o *Run) sideCells(side string) []int {
	nx, nz := o.Fld.Nx, o.Fld.Nz
	var cells []int
	switch side {
	case SideLeft:
		for iz := 0; iz < nz; iz++ {
			cells = append(cells, iz*nx)
		}
	case SideRight:
		for iz := 0; iz < nz; iz++ {
			cells = append(cells, iz*nx+nx-1)
		}
	case SideBottom:
		for ix := 0; ix < nx; ix++ {
			cells = append(cells, ix)
		}
	case SideTop:
		for ix := 0; ix < nx; ix++ {
			cells = append(cells, (nz-1)*nx+ix)
		}
	}
	return cells
}

// Assemble fills the coefficient store from the local cubic law. Interior
// equations balance the in-plane fluxes; inlet/outlet cells gain a
// held-pressure face term.
func (o *Run) Assemble() error {

	// boundary transmissibilities per active cell
	nact := len(o.active)
	bcT := make([]float64, nact)
	bcP := make([]float64, nact)
	for _, bc := range []struct {
		side  string
		press float64
	}{
		{o.Prm.InletSide, o.Prm.InletPress},
		{o.Prm.OutletSide, o.Prm.OutletPres},
	} {
		for _, c := range o.sideCells(bc.side) {
			if a := o.cellNode[c]; a >= 0 {
				bcT[a] = o.tBoundary(o.aperture(a)) / 2
				bcP[a] = bc.press
			}
		}
	}

	// one equation per node, both sheets
	for a := 0; a < nact; a++ {
		ba := o.aperture(a)
		var terms [band.MaxCoupling]float64
		diag := 0.0
		for k, an := range o.adjCells[a] {
			t := o.tHalf(ba, o.aperture(an))
			terms[k] = t
			diag -= t
		}
		diag -= bcT[a]
		src := -bcT[a] * bcP[a]
		for _, node := range []int{2 * a, 2*a + 1} {
			if err := o.Sys.SetCoefficients(node, diag, terms); err != nil {
				return err
			}
			if err := o.Sys.SetSource(node, src); err != nil {
				return err
			}
		}
	}
	return nil
}

// Solve runs the direct solve and derives the reported quantities
func (o *Run) Solve() (*Results, error) {

	x, err := o.Sys.Solve()
	if err != nil {
		return nil, err
	}

	// cell pressures: the two sheets averaged; closed cells flagged
	fld := o.Fld
	ncell := fld.Nx * fld.Nz
	o.Press = make([]float64, ncell)
	for c := 0; c < ncell; c++ {
		o.Press[c] = math.NaN()
	}
	for a, c := range o.active {
		o.Press[c] = 0.5 * (x[2*a] + x[2*a+1])
	}

	// boundary flows
	qIn, qOut := 0.0, 0.0
	for _, c := range o.sideCells(o.Prm.InletSide) {
		if a := o.cellNode[c]; a >= 0 {
			tb := o.tBoundary(o.aperture(a)) / 2
			qIn += tb*(o.Prm.InletPress-x[2*a]) + tb*(o.Prm.InletPress-x[2*a+1])
		}
	}
	for _, c := range o.sideCells(o.Prm.OutletSide) {
		if a := o.cellNode[c]; a >= 0 {
			tb := o.tBoundary(o.aperture(a)) / 2
			qOut += tb*(x[2*a]-o.Prm.OutletPres) + tb*(x[2*a+1]-o.Prm.OutletPres)
		}
	}

	// aperture statistics over open cells
	minb, maxb, sum := math.MaxFloat64, 0.0, 0.0
	for a := range o.active {
		b := o.aperture(a)
		if b < minb {
			minb = b
		}
		if b > maxb {
			maxb = b
		}
		sum += b
	}
	avgb := sum / float64(len(o.active))

	// Darcy permeability from the outlet flow
	length, width := o.flowGeometry()
	dp := o.Prm.InletPress - o.Prm.OutletPres
	perm := 0.0
	if dp != 0 && avgb > 0 {
		perm = qOut * o.Prm.Viscosity * length / (width * avgb * dp)
	}

	o.Res = &Results{
		Nx:        fld.Nx,
		Nz:        fld.Nz,
		NumActive: len(o.active),
		QIn:       qIn,
		QOut:      qOut,
		MinAper:   minb,
		MaxAper:   maxb,
		AvgAper:   avgb,
		PressDrop: dp,
		Perm:      perm,
	}
	return o.Res, nil
}

// flowGeometry returns the map length along the flow axis and the width
// across it [m]
func (o *Run) flowGeometry() (length, width float64) {
	scale := o.Prm.VoxelSize * o.Prm.AvgFact
	switch o.Prm.InletSide {
	case SideLeft, SideRight:
		return float64(o.Fld.Nx) * scale, float64(o.Fld.Nz) * scale
	}
	return float64(o.Fld.Nz) * scale, float64(o.Fld.Nx) * scale
}

// Free releases the kernel buffers. Safe to call repeatedly.
func (o *Run) Free() {
	if o.Sys != nil {
		o.Sys.Release()
	}
}

// Execute runs one complete case: load, assemble, solve
func Execute(prm *Params, verbose bool) (*Run, error) {
	run, err := NewRun(prm)
	if err != nil {
		return nil, err
	}
	if verbose {
		io.Pf("> Aperture map %q: %d x %d cells, %d open\n", prm.MapFile, run.Fld.Nx, run.Fld.Nz, len(run.active))
	}
	if err := run.Assemble(); err != nil {
		run.Free()
		return nil, err
	}
	res, err := run.Solve()
	if err != nil {
		run.Free()
		return nil, err
	}
	if verbose {
		io.Pf("> Solved %d equations (bandwidth %d): Qin=%g Qout=%g m³/s\n",
			run.Idx.Size.Ntot, run.Idx.Size.Mband, res.QIn, res.QOut)
	}
	return run, nil
}
