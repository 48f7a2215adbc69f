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

package config

import (
	"fmt"
	"time"

	"github.com/callowaymech/hd-leads/internal/models"
	"github.com/kelseyhightower/envconfig"
)

// Credentials holds the secrets and destination identifiers read from the
// environment. Components never read the environment themselves; these
// values flow into a [RunConfig] at startup.
type Credentials struct {
	APIKey                string `envconfig:"HD_API_KEY"             required:"true"`
	APISecret             string `envconfig:"HD_API_SECRET"          required:"true"`
	MVendorID             string `envconfig:"MVENDOR_ID"             default:"50020059"`
	GoogleCredentialsFile string `envconfig:"GOOGLE_CREDENTIALS_FILE" default:"credentials.json"`
	SpreadsheetID         string `envconfig:"SPREADSHEET_ID"`
	SheetName             string `envconfig:"SHEET_NAME"             default:"Leads"`
}

// FromEnv reads [Credentials] from the process environment.
func FromEnv() (*Credentials, error) {
	var creds Credentials
	if err := envconfig.Process("", &creds); err != nil {
		return nil, fmt.Errorf("failed to read credentials from env: %w", err)
	}

	return &creds, nil
}

// Window is an inclusive date window used to bound fetched leads.
type Window struct {
	Start, End time.Time
}

// LastDays returns a [Window] covering the last n days up to now.
func LastDays(n int) Window {
	now := time.Now()

	return Window{Start: now.AddDate(0, 0, -n), End: now}
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Output selects the destination for normalized leads. A non-empty CSVPath
// selects the file sink; otherwise the spreadsheet identified by
// SpreadsheetID and SheetName is used.
type Output struct {
	CSVPath         string
	CredentialsFile string
	SpreadsheetID   string
	SheetName       string
}

// RunConfig carries everything a single run needs. It is constructed once
// per invocation and treated as immutable for the run's duration.
type RunConfig struct {
	Window    Window
	Statuses  []models.Status // empty means no status filtering
	MVendorID string
	Replace   bool
	Output    Output
}
