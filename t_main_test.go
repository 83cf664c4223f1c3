// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_cmd01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("cmd01. missing input file gives nonzero status")

	status := run(filepath.Join(tst.TempDir(), "missing.inp"), false)
	chk.IntAssert(status, 1)
}

func Test_cmd02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("cmd02. small case runs to completion with zero status")

	dir := tst.TempDir()
	mapfile := filepath.Join(dir, "uniform.txt")
	if err := os.WriteFile(mapfile, []byte("1 1 1 1\n1 1 1 1\n1 1 1 1\n"), 0644); err != nil {
		tst.Fatalf("cannot write map file:\n%v", err)
	}
	statfile := filepath.Join(dir, "stats.csv")
	infile := filepath.Join(dir, "case.inp")
	content := "APER-MAP: " + mapfile + "\n" +
		"FLUID-VISCOSITY: 0.001\n" +
		"INLET-PRESS: 100\n" +
		"OUTLET-PRESS: 0\n" +
		"STAT-FILE: " + statfile + "\n"
	if err := os.WriteFile(infile, []byte(content), 0644); err != nil {
		tst.Fatalf("cannot write input file:\n%v", err)
	}

	status := run(infile, false)
	chk.IntAssert(status, 0)

	if _, err := os.Stat(statfile); err != nil {
		tst.Errorf("stat file was not written:\n%v", err)
	}
}
