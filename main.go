// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"os"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/richardhaslam/netl-ap-map-flow/inp"
	"github.com/richardhaslam/netl-ap-map-flow/model"
	"github.com/richardhaslam/netl-ap-map-flow/out"
)

func main() {

	// read input parameters
	fnamepath, _ := io.ArgToFilename(0, "", ".inp", true)
	verbose := io.ArgToBool(1, true)

	os.Exit(run(fnamepath, verbose))
}

// run executes one simulation case and reports the process exit status:
// zero on success, one after any abort
func run(fnamepath string, verbose bool) (status int) {

	// catch errors
	defer func() {
		if err := recover(); err != nil {
			io.PfRed("\nERROR: %v\n", err)
			io.Pf("See location of error below:\n")
			chk.Verbose = true
			for i := 5; i > 3; i-- {
				chk.CallerInfo(i)
			}
			status = 1
		}
	}()

	// message
	if verbose {
		io.PfWhite("\nAP-Map Flow -- Local Cubic Law Simulator\n")
		io.Pf("Copyright 2016 The Gofem Authors. All rights reserved.\n")
		io.Pf("Use of this source code is governed by a BSD-style\n")
		io.Pf("license that can be found in the LICENSE file.\n")

		io.Pf("\n%v\n", io.ArgsTable("INPUT ARGUMENTS",
			"filename path", "fnamepath", fnamepath,
			"show messages", "verbose", verbose,
		))
	}

	// case definition
	infile, err := inp.ReadInputFile(fnamepath, nil)
	if err != nil {
		chk.Panic("cannot read input file:\n%v", err)
	}
	if err := infile.ConstructFileNames(true); err != nil {
		chk.Panic("cannot resolve output filenames:\n%v", err)
	}
	prm, err := model.ParamsFromInput(infile)
	if err != nil {
		chk.Panic("invalid case parameters:\n%v", err)
	}

	// run simulation
	run, err := model.Execute(prm, verbose)
	if err != nil {
		chk.Panic("Run failed:\n%v", err)
	}
	defer run.Free()

	// write outputs
	if err := out.WriteCaseOutputs(run); err != nil {
		chk.Panic("cannot write outputs:\n%v", err)
	}
	if verbose {
		res := run.Res
		io.Pf("\nQin  = %g m³/s\nQout = %g m³/s\nPerm = %g m²\n", res.QIn, res.QOut, res.Perm)
	}
	return 0
}
