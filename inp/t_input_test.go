// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inp

import (
	"strings"
	"testing"

	"github.com/cpmech/gosl/chk"
)

const initContent = `;fracture flow input
APER-MAP: maps/fracture.txt
FLUID-VISCOSITY: 0.001 pa*s
INLET-PRESS: 100 kPa
OUTLET-PRESS: 0 kPa
;OVERWRITE: TRUE
STAT-FILE: NONE
`

func Test_inp01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("inp01. parse lines, values and units")

	f, err := ParseInputFile(initContent, nil)
	if err != nil {
		tst.Errorf("parse failed:\n%v", err)
		return
	}

	v, ok := f.GetValue("APER-MAP")
	if !ok || v != "maps/fracture.txt" {
		tst.Errorf("APER-MAP: got %q ok=%v", v, ok)
		return
	}
	v, unit, ok := f.GetValueUnit("INLET-PRESS")
	if !ok || v != "100" || unit != "kPa" {
		tst.Errorf("INLET-PRESS: got %q [%s] ok=%v", v, unit, ok)
		return
	}

	// commented-out lines carry no value
	if _, ok := f.GetValue("OVERWRITE"); ok {
		tst.Errorf("commented keyword must report absent")
		return
	}

	// reconstruction round trip
	f2, err := ParseInputFile(f.String(), nil)
	if err != nil {
		tst.Errorf("reparse failed:\n%v", err)
		return
	}
	if f.String() != f2.String() {
		tst.Errorf("reconstruction is not stable:\n%q\n%q", f.String(), f2.String())
		return
	}
}

func Test_inp02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("inp02. update args and clone independence")

	f, err := ParseInputFile(initContent, nil)
	if err != nil {
		tst.Errorf("parse failed:\n%v", err)
		return
	}
	clone := f.Clone(nil)
	clone.UpdateArgs(map[string]string{
		"INLET-PRESS": "500",
		"OVERWRITE":   "TRUE",
	})

	v, _ := clone.GetValue("INLET-PRESS")
	if v != "500" {
		tst.Errorf("clone INLET-PRESS: got %q", v)
		return
	}

	// updating uncomments the line
	v, ok := clone.GetValue("OVERWRITE")
	if !ok || v != "TRUE" {
		tst.Errorf("clone OVERWRITE: got %q ok=%v", v, ok)
		return
	}

	// the source file is untouched
	v, _ = f.GetValue("INLET-PRESS")
	if v != "100" {
		tst.Errorf("source INLET-PRESS changed: got %q", v)
		return
	}
	if _, ok := f.GetValue("OVERWRITE"); ok {
		tst.Errorf("source OVERWRITE must stay commented")
		return
	}
}

func Test_inp03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("inp03. filename templates")

	formats := map[string]string{
		"STAT-FILE":  "results/%JOB-NAME%-stat.csv",
		"input_file": "results/%JOB-NAME%-init.inp",
	}
	f, err := ParseInputFile(initContent, formats)
	if err != nil {
		tst.Errorf("parse failed:\n%v", err)
		return
	}

	// JOB-NAME has no argument line; it resolves as a template token only
	f.UpdateArgs(map[string]string{"JOB-NAME": "frac-01"})
	if err := f.ConstructFileNames(false); err != nil {
		tst.Errorf("construct failed:\n%v", err)
		return
	}
	v, _ := f.GetValue("STAT-FILE")
	if v != "results/frac-01-stat.csv" {
		tst.Errorf("STAT-FILE: got %q", v)
		return
	}
	if f.OutfileName != "results/frac-01-init.inp" {
		tst.Errorf("outfile name: got %q", f.OutfileName)
		return
	}

	// a template for an undefined keyword must fail
	f2, err := ParseInputFile(initContent, map[string]string{"VTK-FILE": "out.vtk"})
	if err != nil {
		tst.Errorf("parse failed:\n%v", err)
		return
	}
	if err := f2.ConstructFileNames(false); err == nil {
		tst.Errorf("undefined outfile keyword must fail")
		return
	}
}

func Test_inp04(tst *testing.T) {

	//verbose()
	chk.PrintTitle("inp04. memory estimate scaling")

	small := EstimateRAM(100)
	big := EstimateRAM(10000)
	if small <= 0 || big <= small {
		tst.Errorf("estimate must grow with the cell count: %g %g", small, big)
		return
	}
	// a trivial map stays well under a gigabyte
	if small > 0.01 {
		tst.Errorf("estimate for 100 cells too large: %g", small)
		return
	}
}

func Test_inp05(tst *testing.T) {

	//verbose()
	chk.PrintTitle("inp05. line reconstruction details")

	arg := NewArgInput(";OUTLET-PRESS: 0 kPa")
	if !arg.CommentedOut || arg.Keyword != "OUTLET-PRESS" {
		tst.Errorf("comment parse: %+v", arg)
		return
	}
	arg.UpdateValue("10", false)
	line := arg.OutputLine()
	if strings.HasPrefix(line, ";") || !strings.Contains(line, "10 kPa") {
		tst.Errorf("updated line: %q", line)
		return
	}
}
