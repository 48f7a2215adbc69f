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

package sink

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/callowaymech/hd-leads/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLead(id string, status models.Status, created time.Time) *models.Lead {
	return &models.Lead{
		ID:           id,
		Status:       status,
		CreatedAt:    models.NewTimeValid(created),
		VendorID:     "50020059",
		CustomerName: "Pat Doyle",
		Phone:        "555-0101",
		Address:      "12 Main St, Austin, TX, 78701",
		JobType:      "Water Heaters",
	}
}

func readLines(t *testing.T, file string) []string {
	t.Helper()

	b, err := os.ReadFile(file)
	require.NoError(t, err)

	return strings.Split(strings.TrimRight(string(b), "\n"), "\n")
}

func TestCsvWriterAppend(t *testing.T) {
	file := filepath.Join(t.TempDir(), "leads.csv")
	writer := NewCsvWriter(file)

	created := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	batch := []*models.Lead{testLead("1-A", models.StatusNew, created)}

	require.NoError(t, writer.Write(context.Background(), batch, Append))

	lines := readLines(t, file)
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(models.Columns(), ","), lines[0])
	assert.Contains(t, lines[1], "1-A")
	assert.Contains(t, lines[1], "01/02/2024 10:00:00")

	// A second append must not repeat the header.
	batch = []*models.Lead{testLead("1-B", models.StatusDone, created.Add(time.Hour))}
	require.NoError(t, writer.Write(context.Background(), batch, Append))

	lines = readLines(t, file)
	require.Len(t, lines, 3)
	assert.Contains(t, lines[2], "1-B")
}

func TestCsvWriterReplaceIsIdempotent(t *testing.T) {
	file := filepath.Join(t.TempDir(), "leads.csv")
	writer := NewCsvWriter(file)

	created := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	batch := []*models.Lead{
		testLead("1-A", models.StatusNew, created),
		testLead("1-B", models.StatusConfirmed, created.Add(time.Hour)),
	}

	require.NoError(t, writer.Write(context.Background(), batch, Replace))
	first, err := os.ReadFile(file)
	require.NoError(t, err)

	require.NoError(t, writer.Write(context.Background(), batch, Replace))
	second, err := os.ReadFile(file)
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))

	lines := readLines(t, file)
	assert.Len(t, lines, 3)
}

func TestCsvWriterReplaceClearsPriorContent(t *testing.T) {
	file := filepath.Join(t.TempDir(), "leads.csv")
	writer := NewCsvWriter(file)

	created := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)

	stale := []*models.Lead{testLead("old", models.StatusDone, created)}
	require.NoError(t, writer.Write(context.Background(), stale, Append))

	fresh := []*models.Lead{testLead("new", models.StatusNew, created)}
	require.NoError(t, writer.Write(context.Background(), fresh, Replace))

	content, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.NotContains(t, string(content), "old")
	assert.Contains(t, string(content), "new")
}

func TestCsvWriterAppendToUnterminatedFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "leads.csv")

	// A file written by hand (or another tool) whose last line has no
	// trailing newline.
	existing := strings.Join(models.Columns(), ",") + "\n" +
		"1-A,New,01/02/2024 10:00:00,50020059,Pat Doyle,555-0101,12 Main St,Repair"
	require.NoError(t, os.WriteFile(file, []byte(existing), 0644))

	writer := NewCsvWriter(file)
	created := time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC)
	batch := []*models.Lead{testLead("1-B", models.StatusConfirmed, created)}

	require.NoError(t, writer.Write(context.Background(), batch, Append))

	lines := readLines(t, file)
	require.Len(t, lines, 3)
	assert.True(t, strings.HasSuffix(lines[1], "Repair"))
	assert.True(t, strings.HasPrefix(lines[2], "1-B,"))
}

func TestCsvWriterUnavailableDestination(t *testing.T) {
	writer := NewCsvWriter(filepath.Join(t.TempDir(), "missing", "leads.csv"))

	err := writer.Write(context.Background(), nil, Append)
	require.ErrorIs(t, err, ErrorSinkUnavailable)
}
