// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"os"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	log "github.com/sirupsen/logrus"

	"github.com/richardhaslam/netl-ap-map-flow/bulkrun"
)

func main() {

	// read input parameters
	cfgpath, _ := io.ArgToFilename(0, "", ".ini", true)
	dryRun := io.ArgToBool(1, false)
	verbose := io.ArgToBool(2, true)

	os.Exit(run(cfgpath, dryRun, verbose))
}

// run drives one campaign and reports the process exit status: zero on
// success, one after any abort
func run(cfgpath string, dryRun, verbose bool) (status int) {

	// catch errors
	defer func() {
		if err := recover(); err != nil {
			io.PfRed("\nERROR: %v\n", err)
			chk.Verbose = true
			for i := 5; i > 3; i-- {
				chk.CallerInfo(i)
			}
			status = 1
		}
	}()

	// message
	if verbose {
		io.PfWhite("\nAP-Map Bulk Run -- Campaign Driver\n")
		io.Pf("\n%v\n", io.ArgsTable("INPUT ARGUMENTS",
			"campaign configuration", "cfgpath", cfgpath,
			"write inputs only", "dryRun", dryRun,
			"show messages", "verbose", verbose,
		))
	} else {
		log.SetLevel(log.WarnLevel)
	}

	// run campaign
	cfg, err := bulkrun.LoadConfig(cfgpath)
	if err != nil {
		chk.Panic("cannot load campaign:\n%v", err)
	}
	if err := bulkrun.NewPool(cfg, dryRun).Run(); err != nil {
		chk.Panic("campaign failed:\n%v", err)
	}
	return 0
}
