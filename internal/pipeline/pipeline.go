// Copyright 2025 Calloway Mechanical Services
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package pipeline drives a single collection run: fetch raw records from
// the vendor, normalize them and write the batch to the configured sink.
package pipeline

import (
	"context"

	"github.com/callowaymech/hd-leads/internal/config"
	"github.com/callowaymech/hd-leads/internal/iconx"
	"github.com/callowaymech/hd-leads/internal/models"
	"github.com/callowaymech/hd-leads/internal/normalize"
	"github.com/callowaymech/hd-leads/internal/sink"
	"github.com/rs/zerolog/log"
)

// Fetcher is the vendor-facing half of the pipeline, satisfied by
// [*iconx.Client].
type Fetcher interface {
	FetchLeads(ctx context.Context, window config.Window, statuses []models.Status) ([]iconx.Record, error)
}

// Result summarizes a completed run.
type Result struct {
	Written int
	Dropped int
}

// Pipeline wires a [Fetcher] and a [sink.Writer] together for one run.
type Pipeline struct {
	cfg     *config.RunConfig
	fetcher Fetcher
	writer  sink.Writer
}

// New returns a newly instantiated [*Pipeline].
func New(cfg *config.RunConfig, fetcher Fetcher, writer sink.Writer) *Pipeline {
	return &Pipeline{cfg: cfg, fetcher: fetcher, writer: writer}
}

// Run executes the pipeline sequentially: fetch, normalize, write. Any
// component failure aborts the run; there is no cross-component
// compensation for writes that already happened.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	records, err := p.fetcher.FetchLeads(ctx, p.cfg.Window, p.cfg.Statuses)
	if err != nil {
		return Result{}, err
	}

	log.Info().Int("num", len(records)).Msg("fetched leads")

	leads, dropped := normalize.Normalize(records, normalize.Options{
		Window:   p.cfg.Window,
		Statuses: p.cfg.Statuses,
	})

	logSummary(leads)

	if len(leads) == 0 {
		log.Info().Msg("no leads to write")
		return Result{Dropped: dropped}, nil
	}

	mode := sink.Append
	if p.cfg.Replace {
		mode = sink.Replace
	}

	if err := p.writer.Write(ctx, leads, mode); err != nil {
		return Result{Dropped: dropped}, err
	}

	return Result{Written: len(leads), Dropped: dropped}, nil
}

func logSummary(leads []*models.Lead) {
	counts := make(map[models.Status]int)
	for _, lead := range leads {
		counts[lead.Status]++
	}

	summary := log.Info()
	for status, count := range counts {
		summary = summary.Int(string(status), count)
	}
	summary.Msg("lead summary")
}
