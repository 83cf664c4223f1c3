// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package out

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/richardhaslam/netl-ap-map-flow/model"
)

// StatEntry is one value with its unit tag
type StatEntry struct {
	Value float64
	Unit  string
}

// StatFile parses and stores the content of a simulation statistics file,
// which the campaign tooling mines for results
type StatFile struct {
	Infile  string
	MapFile string
	PvtFile string
	Data    map[string]StatEntry
}

var unitTag = regexp.MustCompile(`\[(.*?)\]$`)

// WriteStats writes the statistics of one solved case. The layout pairs a
// line of "KEY [unit]" headers with a line of values, after the two
// file-reference lines.
func WriteStats(filename, mapFile, pvtFile string, res *model.Results) error {

	if pvtFile == "" {
		pvtFile = "NONE"
	}
	var sb strings.Builder
	sb.WriteString(io.Sf("APER-MAP:, %s\n", mapFile))
	sb.WriteString(io.Sf("PVT-FILE:, %s\n", pvtFile))
	sb.WriteString("#\n# GRID\n")
	sb.WriteString("NX [-], NZ [-], NUM-ACTIVE [-]\n")
	sb.WriteString(io.Sf("%d, %d, %d\n", res.Nx, res.Nz, res.NumActive))
	sb.WriteString("# APERTURE\n")
	sb.WriteString("MIN-APERTURE [m], MAX-APERTURE [m], AVG-APERTURE [m]\n")
	sb.WriteString(io.Sf("%g, %g, %g\n", res.MinAper, res.MaxAper, res.AvgAper))
	sb.WriteString("# FLOW\n")
	sb.WriteString("INLET-FLOW [m^3/sec], OUTLET-FLOW [m^3/sec], PRESS-DROP [Pa], PERMEABILITY [m^2]\n")
	sb.WriteString(io.Sf("%g, %g, %g, %g\n", res.QIn, res.QOut, res.PressDrop, res.Perm))

	io.WriteStringToFileD(filepath.Dir(filename), filepath.Base(filename), sb.String())
	return nil
}

// ReadStatFile parses a statistics file
func ReadStatFile(filename string) (*StatFile, error) {

	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, chk.Err("cannot read stat file: %v", err)
	}
	o := &StatFile{Infile: filename, Data: make(map[string]StatEntry)}

	// strip comments, trailing commas and blank lines
	var lines []string
	for _, line := range strings.Split(string(b), "\n") {
		line = regexp.MustCompile(`, *$`).ReplaceAllString(line, "")
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) < 2 {
		return nil, chk.Err("stat file %q is too short", filename)
	}

	// the two file-reference lines
	mapflds := strings.SplitN(lines[0], ",", 2)
	pvtflds := strings.SplitN(lines[1], ",", 2)
	if len(mapflds) < 2 || len(pvtflds) < 2 {
		return nil, chk.Err("stat file %q has malformed header lines", filename)
	}
	o.MapFile = strings.TrimSpace(mapflds[1])
	o.PvtFile = strings.TrimSpace(pvtflds[1])
	lines = lines[2:]

	// pairs of key line → value line
	if len(lines)%2 != 0 {
		return nil, chk.Err("stat file %q has an unpaired key line", filename)
	}
	for i := 0; i < len(lines); i += 2 {
		keys := strings.Split(lines[i], ",")
		vals := strings.Split(lines[i+1], ",")
		if len(keys) != len(vals) {
			return nil, chk.Err("stat file %q: %d keys but %d values at line pair %d", filename, len(keys), len(vals), i)
		}
		for j, key := range keys {
			key = strings.TrimSpace(key)
			unit := "-"
			if m := unitTag.FindStringSubmatch(key); m != nil {
				unit = m[1]
				key = strings.TrimSpace(unitTag.ReplaceAllString(key, ""))
			}
			o.Data[key] = StatEntry{Value: io.Atof(strings.TrimSpace(vals[j])), Unit: unit}
		}
	}
	return o, nil
}
