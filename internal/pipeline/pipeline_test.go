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

package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/callowaymech/hd-leads/internal/config"
	"github.com/callowaymech/hd-leads/internal/iconx"
	"github.com/callowaymech/hd-leads/internal/models"
	"github.com/callowaymech/hd-leads/internal/sink"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	records []iconx.Record
	err     error
}

func (f *fakeFetcher) FetchLeads(
	_ context.Context,
	_ config.Window,
	_ []models.Status,
) ([]iconx.Record, error) {
	return f.records, f.err
}

type fakeWriter struct {
	leads []*models.Lead
	mode  sink.Mode
	calls int
	err   error
}

func (w *fakeWriter) Write(_ context.Context, leads []*models.Lead, mode sink.Mode) error {
	w.calls++
	w.leads, w.mode = leads, mode

	return w.err
}

func testConfig(replace bool) *config.RunConfig {
	return &config.RunConfig{
		Window: config.Window{
			Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		},
		MVendorID: "50020059",
		Replace:   replace,
	}
}

func TestRunWritesNormalizedBatch(t *testing.T) {
	fetcher := &fakeFetcher{records: []iconx.Record{
		{"Id": "1-B", "SFIWorkflowOnlyStatus": "Done", "Created": "01/03/2024 10:00:00"},
		{"Id": "1-A", "SFIWorkflowOnlyStatus": "New", "Created": "01/02/2024 10:00:00"},
		{"Id": "1-C", "SFIWorkflowOnlyStatus": "New"}, // missing Created
	}}
	writer := &fakeWriter{}

	result, err := New(testConfig(false), fetcher, writer).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Written)
	assert.Equal(t, 1, result.Dropped)

	require.Len(t, writer.leads, 2)
	assert.Equal(t, "1-A", writer.leads[0].ID)
	assert.Equal(t, "1-B", writer.leads[1].ID)
	assert.Equal(t, sink.Append, writer.mode)
}

func TestRunReplaceMode(t *testing.T) {
	fetcher := &fakeFetcher{records: []iconx.Record{
		{"Id": "1-A", "SFIWorkflowOnlyStatus": "New", "Created": "01/02/2024 10:00:00"},
	}}
	writer := &fakeWriter{}

	_, err := New(testConfig(true), fetcher, writer).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sink.Replace, writer.mode)
}

func TestRunAbortsOnFetchFailure(t *testing.T) {
	fetcher := &fakeFetcher{err: iconx.ErrorAuth}
	writer := &fakeWriter{}

	result, err := New(testConfig(false), fetcher, writer).Run(context.Background())
	require.ErrorIs(t, err, iconx.ErrorAuth)

	assert.Zero(t, result.Written)
	assert.Zero(t, writer.calls)
}

func TestRunSurfacesSinkFailure(t *testing.T) {
	fetcher := &fakeFetcher{records: []iconx.Record{
		{"Id": "1-A", "SFIWorkflowOnlyStatus": "New", "Created": "01/02/2024 10:00:00"},
	}}
	writer := &fakeWriter{err: sink.ErrorSinkUnavailable}

	result, err := New(testConfig(false), fetcher, writer).Run(context.Background())
	require.ErrorIs(t, err, sink.ErrorSinkUnavailable)
	assert.Zero(t, result.Written)
}

func TestRunSkipsWriteWhenBatchIsEmpty(t *testing.T) {
	fetcher := &fakeFetcher{}
	writer := &fakeWriter{}

	result, err := New(testConfig(false), fetcher, writer).Run(context.Background())
	require.NoError(t, err)

	assert.Zero(t, result.Written)
	assert.Zero(t, writer.calls)
}
