// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package bulkrun drives a campaign of flow simulations: it expands an ini
// run configuration into the matrix of parameter combinations, budgets the
// concurrent workers by CPU count and memory, and runs each generated case
// on its own private kernel instance.
package bulkrun

import (
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"
)

// Config holds the whole campaign configuration
type Config struct {

	// [bulk-run] keywords
	InitInput  string        // initial input file used as the template of every case
	NumWorkers int           // concurrent case limit
	SysRAM     float64       // usable system memory [GB]; 90% is budgeted
	StartDelay time.Duration // delay between case launches
	PollDelay  time.Duration // delay between completion checks
	StatusAddr string        // optional websocket status address, e.g. ":8899"

	// campaign matrix
	Maps    []string                 // aperture map files
	Params  map[string][]string      // global parameter lists, keyword → values
	Formats map[string]string        // global filename templates
	PerMap  map[string]*MapOverrides // per-map overrides keyed by map name
}

// MapOverrides carries parameter lists and filename templates applying to
// the cases of a single aperture map only
type MapOverrides struct {
	Params  map[string][]string
	Formats map[string]string
}

// LoadConfig reads a campaign configuration file
func LoadConfig(filename string) (*Config, error) {
	file, err := ini.Load(filename)
	if err != nil {
		return nil, fmt.Errorf("bulkrun: cannot read configuration %q: %w", filename, err)
	}
	return parseConfig(file)
}

func parseConfig(file *ini.File) (*Config, error) {

	br := file.Section("bulk-run")
	o := &Config{
		InitInput:  br.Key("init-input").MustString("FRACTURE_INITIALIZATION.INP"),
		NumWorkers: br.Key("num-workers").MustInt(4),
		SysRAM:     br.Key("sys-ram").MustFloat64(8.0),
		StartDelay: br.Key("start-delay").MustDuration(5 * time.Second),
		PollDelay:  br.Key("poll-delay").MustDuration(5 * time.Second),
		StatusAddr: br.Key("status-addr").String(),
		Params:     make(map[string][]string),
		Formats:    make(map[string]string),
		PerMap:     make(map[string]*MapOverrides),
	}
	if o.NumWorkers < 1 {
		return nil, fmt.Errorf("bulkrun: num-workers must be at least 1 (got %d)", o.NumWorkers)
	}

	// aperture maps
	for _, v := range file.Section("maps").Key("files").Strings(",") {
		if v = strings.TrimSpace(v); v != "" {
			o.Maps = append(o.Maps, v)
		}
	}
	if len(o.Maps) == 0 {
		return nil, fmt.Errorf("bulkrun: configuration lists no aperture maps")
	}

	// global parameter lists and filename templates
	for _, key := range file.Section("params").Keys() {
		o.Params[key.Name()] = splitList(key.String())
	}
	for _, key := range file.Section("formats").Keys() {
		o.Formats[key.Name()] = key.String()
	}

	// per-map override sections: [map.coarse] applies to coarse.txt only
	for _, sec := range file.ChildSections("map") {
		name := strings.TrimSpace(strings.TrimPrefix(sec.Name(), "map."))
		ovr := &MapOverrides{
			Params:  make(map[string][]string),
			Formats: make(map[string]string),
		}
		for _, key := range sec.Keys() {
			if strings.HasPrefix(key.Name(), "format-") {
				ovr.Formats[strings.TrimPrefix(key.Name(), "format-")] = key.String()
				continue
			}
			ovr.Params[key.Name()] = splitList(key.String())
		}
		o.PerMap[name] = ovr
		log.WithField("map", name).Debug("per-map overrides loaded")
	}
	return o, nil
}

// splitList splits a comma separated value list
func splitList(v string) []string {
	var vals []string
	for _, f := range strings.Split(v, ",") {
		if f = strings.TrimSpace(f); f != "" {
			vals = append(vals, f)
		}
	}
	return vals
}
