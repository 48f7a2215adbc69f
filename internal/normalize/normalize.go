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

// Package normalize maps raw vendor lead records onto the canonical
// [models.Lead] schema, filters them by window and status, de-duplicates
// by id and orders the batch deterministically.
package normalize

import (
	"errors"
	"slices"
	"strings"

	"github.com/callowaymech/hd-leads/internal/config"
	"github.com/callowaymech/hd-leads/internal/iconx"
	"github.com/callowaymech/hd-leads/internal/models"
	"github.com/rs/zerolog/log"
)

// ErrorSchema is returned when a raw record lacks a required field. The
// offending record is dropped and counted; the batch continues.
var ErrorSchema = errors.New("lead record is missing a required field")

// Vendor keys accepted for each canonical field, in priority order. The
// first key carrying a non-empty value wins. Keeping the mapping in one
// table makes vendor schema drift show up here instead of as silent
// empty columns.
var (
	idKeys        = []string{"Id"}
	statusKeys    = []string{"SFIWorkflowOnlyStatus"}
	createdKeys   = []string{"Created"}
	vendorKeys    = []string{"SFIMVendor"}
	firstNameKeys = []string{"ContactFirstName"}
	lastNameKeys  = []string{"ContactLastName"}
	phoneKeys     = []string{"MMSVPreferredContactPhoneNumber", "SFIContactHomePhone", "CellularPhone"}
	streetKeys    = []string{"MMSVSiteAddress"}
	cityKeys      = []string{"MMSVSiteCity"}
	stateKeys     = []string{"MMSVSiteState"}
	zipKeys       = []string{"MMSVSitePostalCode"}
	jobTypeKeys   = []string{"SFIProgramGroupNameUnconstrained", "Description"}
)

// Options configures a normalization pass.
type Options struct {
	Window   config.Window
	Statuses []models.Status // empty means no status filtering
}

// Normalize maps raw vendor records to [models.Lead] values, applying the
// window bound, the status filter and last-occurrence-wins de-duplication
// by id. The output is ordered by (created_at, id) ascending. The second
// return value counts records dropped for schema defects.
func Normalize(records []iconx.Record, opts Options) ([]*models.Lead, int) {
	var dropped int
	byID := make(map[string]*models.Lead, len(records))
	order := make([]string, 0, len(records))

	for _, record := range records {
		lead, err := toLead(record)
		if err != nil {
			dropped++
			log.Warn().Err(err).Str("id", record.Get("Id")).Msg("dropping lead record")
			continue
		}

		created, _ := lead.CreatedAt.Get()
		if !opts.Window.Contains(created) {
			continue
		}

		if len(opts.Statuses) > 0 && !slices.Contains(opts.Statuses, lead.Status) {
			continue
		}

		// Vendor pagination can repeat a lead across page boundaries;
		// the last occurrence wins.
		if _, seen := byID[lead.ID]; !seen {
			order = append(order, lead.ID)
		}
		byID[lead.ID] = lead
	}

	leads := make([]*models.Lead, 0, len(order))
	for _, id := range order {
		leads = append(leads, byID[id])
	}

	slices.SortFunc(leads, func(a, b *models.Lead) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}

		return strings.Compare(a.ID, b.ID)
	})

	return leads, dropped
}

func toLead(record iconx.Record) (*models.Lead, error) {
	id := pick(record, idKeys)
	status := pick(record, statusKeys)
	created := pick(record, createdKeys)

	if id == "" || status == "" || created == "" {
		return nil, ErrorSchema
	}

	createdAt, err := models.ParseTime(created)
	if err != nil {
		// An unordered record would break deterministic output, so a
		// bad timestamp counts as a schema defect.
		return nil, ErrorSchema
	}

	return &models.Lead{
		ID:           id,
		Status:       models.Status(status),
		CreatedAt:    createdAt,
		VendorID:     pick(record, vendorKeys),
		CustomerName: joinFields(" ", pick(record, firstNameKeys), pick(record, lastNameKeys)),
		Phone:        pick(record, phoneKeys),
		Address: joinFields(
			", ",
			pick(record, streetKeys),
			pick(record, cityKeys),
			pick(record, stateKeys),
			pick(record, zipKeys),
		),
		JobType: pick(record, jobTypeKeys),
	}, nil
}

func pick(record iconx.Record, keys []string) string {
	for _, key := range keys {
		if value := record.Get(key); value != "" {
			return value
		}
	}

	return ""
}

func joinFields(sep string, fields ...string) string {
	parts := fields[:0:0]
	for _, field := range fields {
		if field != "" {
			parts = append(parts, field)
		}
	}

	return strings.Join(parts, sep)
}
