// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bulkrun

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/richardhaslam/netl-ap-map-flow/model"
	"github.com/richardhaslam/netl-ap-map-flow/out"
)

// Pool runs the cases of a campaign with bounded concurrency: at most
// NumWorkers cases at a time, and never more estimated memory in flight
// than 90% of the configured system RAM.
type Pool struct {
	cfg    *Config
	hub    *Hub
	dryRun bool
}

// NewPool prepares a campaign runner. When the configuration names a status
// address the websocket hub is started as well.
func NewPool(cfg *Config, dryRun bool) *Pool {
	o := &Pool{cfg: cfg, dryRun: dryRun}
	if cfg.StatusAddr != "" {
		o.hub = NewHub()
		go o.hub.Run()
		go o.hub.ListenAndServe(cfg.StatusAddr)
	}
	return o
}

// caseDone reports one finished case back to the launch loop
type caseDone struct {
	cs  *Case
	err error
}

// Run executes the whole campaign. Cases are launched in matrix order as
// soon as a worker slot and enough memory budget are free; completions are
// polled between launch attempts. The first error does not stop the
// campaign; the collected failure count is reported at the end.
func (o *Pool) Run() error {

	cases, err := BuildCases(o.cfg)
	if err != nil {
		return err
	}
	budget := 0.9 * o.cfg.SysRAM
	log.WithFields(log.Fields{
		"cases":   len(cases),
		"workers": o.cfg.NumWorkers,
		"ram-GB":  fmt.Sprintf("%.2f", budget),
	}).Info("campaign start")

	doneCh := make(chan caseDone, len(cases))
	running, ramUsed := 0, 0.0
	completed, failed := 0, 0

	collect := func(d caseDone) {
		running--
		ramUsed -= d.cs.RAMreq
		completed++
		o.notify(d.cs, completed, len(cases), d.err)
		if d.err != nil {
			failed++
			log.WithField("case", d.cs.Ident).WithError(d.err).Error("case failed")
			return
		}
		log.WithField("case", d.cs.Ident).Info("case done")
	}

	for _, cs := range cases {
		if cs.RAMreq > budget {
			completed++
			failed++
			err := fmt.Errorf("estimated %.2f GB exceeds the %.2f GB budget", cs.RAMreq, budget)
			o.notify(cs, completed, len(cases), err)
			log.WithField("case", cs.Ident).WithError(err).Error("case skipped")
			continue
		}

		// wait for a worker slot and enough memory
		for running >= o.cfg.NumWorkers || ramUsed+cs.RAMreq > budget {
			select {
			case d := <-doneCh:
				collect(d)
			case <-time.After(o.cfg.PollDelay):
			}
		}

		running++
		ramUsed += cs.RAMreq
		log.WithFields(log.Fields{
			"case":   cs.Ident,
			"map":    cs.Map,
			"ram-GB": fmt.Sprintf("%.3f", cs.RAMreq),
		}).Info("case start")
		go func(cs *Case) {
			doneCh <- caseDone{cs: cs, err: o.runCase(cs)}
		}(cs)
		time.Sleep(o.cfg.StartDelay)
	}

	for running > 0 {
		collect(<-doneCh)
	}
	log.WithFields(log.Fields{"completed": completed, "failed": failed}).Info("campaign end")
	if failed > 0 {
		return fmt.Errorf("bulkrun: %d of %d cases failed", failed, len(cases))
	}
	return nil
}

// runCase materialises the input file of one case and solves it in-process.
// In dry-run mode the input file is written but nothing is solved.
func (o *Pool) runCase(cs *Case) error {
	if err := cs.Input.Write(""); err != nil {
		return err
	}
	if o.dryRun {
		log.WithFields(log.Fields{"case": cs.Ident, "input": cs.Input.OutfileName}).Info("dry run: input written")
		return nil
	}
	prm, err := model.ParamsFromInput(cs.Input)
	if err != nil {
		return err
	}
	run, err := model.Execute(prm, false)
	if err != nil {
		return err
	}
	defer run.Free()
	return out.WriteCaseOutputs(run)
}

// notify pushes a case status update to the websocket hub, if one is up
func (o *Pool) notify(cs *Case, completed, total int, err error) {
	if o.hub == nil {
		return
	}
	st := CaseStatus{Ident: cs.Ident, Map: cs.Map, Completed: completed, Total: total}
	if err != nil {
		st.State = "failed"
		st.Error = err.Error()
	} else {
		st.State = "done"
	}
	o.hub.Broadcast(st)
}
