// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/richardhaslam/netl-ap-map-flow/inp"
)

// writeMap writes an aperture map file and returns its path
func writeMap(tst *testing.T, content string) string {
	fn := filepath.Join(tst.TempDir(), "frac.txt")
	if err := os.WriteFile(fn, []byte(content), 0644); err != nil {
		tst.Fatalf("cannot write map: %v", err)
	}
	return fn
}

func uniformParams(mapFile string) *Params {
	return &Params{
		MapFile:    mapFile,
		VoxelSize:  1.0,
		AvgFact:    1.0,
		Viscosity:  1.0,
		InletPress: 100.0,
		OutletPres: 0.0,
		InletSide:  SideLeft,
		OutletSide: SideRight,
		SolverName: "band",
	}
}

func Test_model01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("model01. uniform map gives the linear gradient")

	// uniform unit aperture: every interior face and every boundary face
	// carries the same transmissibility, so the pressure drops in equal
	// steps across the nx+1 faces
	mapFile := writeMap(tst, "1 1 1 1\n1 1 1 1\n1 1 1 1\n")
	run, err := Execute(uniformParams(mapFile), false)
	if err != nil {
		tst.Errorf("execute failed:\n%v", err)
		return
	}
	defer run.Free()

	want := []float64{80, 60, 40, 20}
	for iz := 0; iz < 3; iz++ {
		for ix := 0; ix < 4; ix++ {
			chk.Float64(tst, "press", 1e-10, run.Press[iz*4+ix], want[ix])
		}
	}

	res := run.Res
	chk.IntAssert(res.NumActive, 12)
	chk.Float64(tst, "qin", 1e-10, res.QIn, 5.0)
	chk.Float64(tst, "qout", 1e-10, res.QOut, 5.0)
	chk.Float64(tst, "min aperture", 1e-15, res.MinAper, 1.0)
	chk.Float64(tst, "avg aperture", 1e-15, res.AvgAper, 1.0)
	chk.Float64(tst, "press drop", 1e-15, res.PressDrop, 100.0)
	chk.Float64(tst, "permeability", 1e-12, res.Perm, 1.0/15.0)
}

func Test_model02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("model02. closed cells are culled")

	mapFile := writeMap(tst, "1 1 1\n1 0 1\n1 1 1\n")
	run, err := Execute(uniformParams(mapFile), false)
	if err != nil {
		tst.Errorf("execute failed:\n%v", err)
		return
	}
	defer run.Free()

	chk.IntAssert(run.Res.NumActive, 8)
	if !math.IsNaN(run.Press[4]) {
		tst.Errorf("closed cell pressure must be NaN: %g", run.Press[4])
		return
	}

	// flow detours around the closed cell but mass is still conserved
	chk.Float64(tst, "balance", 1e-10, run.Res.QIn, run.Res.QOut)
	if run.Res.QOut <= 0 {
		tst.Errorf("outflow must be positive: %g", run.Res.QOut)
		return
	}

	// top and bottom sheets are symmetric
	for _, p := range run.Press {
		if math.IsNaN(p) {
			continue
		}
		if p < 0 || p > 100 {
			tst.Errorf("pressure %g outside the boundary range", p)
			return
		}
	}
}

func Test_model03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("model03. sparse backend matches the band solver")

	mapFile := writeMap(tst, "800 700 600\n500 100 900\n400 300 200\n")

	prm1 := uniformParams(mapFile)
	prm1.VoxelSize = 1e-6
	prm1.Viscosity = 0.001
	run1, err := Execute(prm1, false)
	if err != nil {
		tst.Errorf("band execute failed:\n%v", err)
		return
	}
	defer run1.Free()

	prm2 := uniformParams(mapFile)
	prm2.VoxelSize = 1e-6
	prm2.Viscosity = 0.001
	prm2.SolverName = "sparse"
	run2, err := Execute(prm2, false)
	if err != nil {
		tst.Errorf("sparse execute failed:\n%v", err)
		return
	}
	defer run2.Free()

	for c := range run1.Press {
		chk.Float64(tst, "press", 1e-6, run1.Press[c], run2.Press[c])
	}
}

func Test_model04(tst *testing.T) {

	//verbose()
	chk.PrintTitle("model04. parameter extraction and validation")

	content := "APER-MAP: frac.txt\n" +
		"FLUID-VISCOSITY: 1 cP\n" +
		"INLET-PRESS: 1 kPa\n" +
		"OUTLET-PRESS: 0\n" +
		"INLET-SIDE: TOP\n" +
		"OUTLET-SIDE: BOTTOM\n" +
		"SOLVER: SPARSE\n" +
		"OVERWRITE: TRUE\n"
	f, err := inp.ParseInputFile(content, nil)
	if err != nil {
		tst.Errorf("parse failed:\n%v", err)
		return
	}
	prm, err := ParamsFromInput(f)
	if err != nil {
		tst.Errorf("params failed:\n%v", err)
		return
	}
	chk.Float64(tst, "viscosity", 1e-15, prm.Viscosity, 0.001)
	chk.Float64(tst, "inlet press", 1e-12, prm.InletPress, 1000.0)
	if prm.InletSide != SideTop || prm.OutletSide != SideBottom {
		tst.Errorf("sides: %q %q", prm.InletSide, prm.OutletSide)
		return
	}
	if prm.SolverName != "sparse" || !prm.Overwrite {
		tst.Errorf("solver %q overwrite %v", prm.SolverName, prm.Overwrite)
		return
	}

	// missing keywords and invalid sides must fail
	f2, _ := inp.ParseInputFile("FLUID-VISCOSITY: 1\nINLET-PRESS: 1\nOUTLET-PRESS: 0\n", nil)
	if _, err := ParamsFromInput(f2); err == nil {
		tst.Errorf("missing APER-MAP must fail")
		return
	}
	f3, _ := inp.ParseInputFile(content, nil)
	f3.UpdateArgs(map[string]string{"OUTLET-SIDE": "TOP"})
	if _, err := ParamsFromInput(f3); err == nil {
		tst.Errorf("shared boundary side must fail")
		return
	}
}
