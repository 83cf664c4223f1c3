// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bulkrun

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/richardhaslam/netl-ap-map-flow/apm"
	"github.com/richardhaslam/netl-ap-map-flow/inp"
)

// Case is one simulation of the campaign: a fully resolved input file bound
// to a single aperture map and parameter combination
type Case struct {
	Ident  string         // unique case identifier, e.g. "fracture-1#003"
	Map    string         // aperture map file
	Input  *inp.InputFile // resolved per-case input file
	RAMreq float64        // estimated memory requirement [GB]
}

// mapKey returns the override key of a map file: its base name without
// extension, matching the [map.NAME] section names
func mapKey(mapFile string) string {
	base := filepath.Base(mapFile)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// BuildCases expands the campaign configuration into the full case matrix.
// Every aperture map is crossed with every combination of the parameter
// lists applying to it; per-map overrides replace the global lists and
// filename templates wholesale, keyword by keyword.
func BuildCases(cfg *Config) ([]*Case, error) {

	tmpl, err := inp.ReadInputFile(cfg.InitInput, cfg.Formats)
	if err != nil {
		return nil, err
	}

	var cases []*Case
	for _, mapFile := range cfg.Maps {

		fld, err := apm.ReadDataField(mapFile, "aperture")
		if err != nil {
			return nil, fmt.Errorf("bulkrun: cannot read aperture map %q: %w", mapFile, err)
		}
		ram := inp.EstimateRAM(fld.Nx * fld.Nz)

		params, formats := cfg.Params, cfg.Formats
		if ovr, ok := cfg.PerMap[mapKey(mapFile)]; ok {
			params = mergeParams(cfg.Params, ovr.Params)
			formats = mergeFormats(cfg.Formats, ovr.Formats)
		}

		combos := paramCombos(params)
		log.WithFields(log.Fields{
			"map":    mapFile,
			"cases":  len(combos),
			"ram-GB": fmt.Sprintf("%.3f", ram),
		}).Info("case matrix for map")

		for i, combo := range combos {
			c := &Case{
				Ident:  fmt.Sprintf("%s#%03d", mapKey(mapFile), i),
				Map:    mapFile,
				Input:  tmpl.Clone(formats),
				RAMreq: ram,
			}
			combo["APER-MAP"] = mapFile
			c.Input.UpdateArgs(combo)
			c.Input.RAMreq = ram
			cases = append(cases, c)
		}
	}
	return cases, nil
}

// mergeParams overlays per-map parameter lists on the global ones
func mergeParams(global, ovr map[string][]string) map[string][]string {
	merged := make(map[string][]string, len(global)+len(ovr))
	for k, v := range global {
		merged[k] = v
	}
	for k, v := range ovr {
		merged[k] = v
	}
	return merged
}

// mergeFormats overlays per-map filename templates on the global ones
func mergeFormats(global, ovr map[string]string) map[string]string {
	merged := make(map[string]string, len(global)+len(ovr))
	for k, v := range global {
		merged[k] = v
	}
	for k, v := range ovr {
		merged[k] = v
	}
	return merged
}

// paramCombos returns the cartesian product of the parameter lists, in a
// deterministic order (keywords sorted, values in list order)
func paramCombos(params map[string][]string) []map[string]string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if len(params[k]) > 0 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	combos := []map[string]string{{}}
	for _, key := range keys {
		next := make([]map[string]string, 0, len(combos)*len(params[key]))
		for _, base := range combos {
			for _, val := range params[key] {
				combo := make(map[string]string, len(base)+1)
				for k, v := range base {
					combo[k] = v
				}
				combo[key] = val
				next = append(next, combo)
			}
		}
		combos = next
	}
	return combos
}
