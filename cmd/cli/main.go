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

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/callowaymech/hd-leads/internal/config"
	"github.com/callowaymech/hd-leads/internal/iconx"
	"github.com/callowaymech/hd-leads/internal/models"
	"github.com/callowaymech/hd-leads/internal/pipeline"
	"github.com/callowaymech/hd-leads/internal/sink"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const (
	APPNAME string = "hdleads"
	VERSION string = "0.1.0"
)

var (
	days             int
	statuses         []string
	replace, debug   bool
	csvOut, sheetTab string
)

var rootCmd = &cobra.Command{
	Use:           APPNAME,
	Short:         "Collect Home Depot service leads into Google Sheets or a CSV file",
	RunE:          run,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("run failed")
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = VERSION

	rootCmd.Flags().
		IntVarP(&days, "days", "d", 7, "number of days to look back")

	rootCmd.Flags().
		StringSliceVarP(&statuses, "status", "s", nil, "filter by lead status (repeatable; default all)")

	rootCmd.Flags().
		BoolVar(&replace, "replace", false, "replace all destination data instead of appending")

	rootCmd.Flags().
		StringVar(&csvOut, "csv", "", "export to the given CSV file instead of Google Sheets")

	rootCmd.Flags().
		StringVarP(&sheetTab, "sheet", "t", "", "spreadsheet tab to write to (default from SHEET_NAME)")

	rootCmd.Flags().BoolVar(&debug, "debug", false, "print debugging information")
}

func run(cmd *cobra.Command, args []string) error {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	creds, err := config.FromEnv()
	if err != nil {
		return err
	}

	statusFilter := make([]models.Status, 0, len(statuses))
	for _, s := range statuses {
		status, err := models.ParseStatus(s)
		if err != nil {
			return err
		}
		statusFilter = append(statusFilter, status)
	}

	sheetName := creds.SheetName
	if sheetTab != "" {
		sheetName = sheetTab
	}

	cfg := &config.RunConfig{
		Window:    config.LastDays(days),
		Statuses:  statusFilter,
		MVendorID: creds.MVendorID,
		Replace:   replace,
		Output: config.Output{
			CSVPath:         csvOut,
			CredentialsFile: creds.GoogleCredentialsFile,
			SpreadsheetID:   creds.SpreadsheetID,
			SheetName:       sheetName,
		},
	}

	log.Info().
		Str("mvendor", cfg.MVendorID).
		Int("days", days).
		Strs("statuses", statuses).
		Bool("replace", cfg.Replace).
		Msg("collecting leads")

	ctx := cmd.Context()

	writer, err := newWriter(ctx, cfg)
	if err != nil {
		return err
	}

	client := iconx.New(creds.APIKey, creds.APISecret, cfg.MVendorID)

	result, err := pipeline.New(cfg, client, writer).Run(ctx)
	if err != nil {
		return err
	}

	log.Info().
		Int("written", result.Written).
		Int("dropped", result.Dropped).
		Msg("run complete")

	return nil
}

// newWriter selects the sink for this run. When no spreadsheet is
// configured or its credentials file is missing, the run falls back to a
// timestamped CSV file rather than failing.
func newWriter(ctx context.Context, cfg *config.RunConfig) (sink.Writer, error) {
	out := cfg.Output

	if out.CSVPath != "" {
		return sink.NewCsvWriter(out.CSVPath), nil
	}

	fallback := fmt.Sprintf("leads_%s.csv", time.Now().Format("20060102_150405"))

	if out.SpreadsheetID == "" {
		log.Warn().Str("file", fallback).Msg("no SPREADSHEET_ID configured, exporting to csv")
		return sink.NewCsvWriter(fallback), nil
	}

	if _, err := os.Stat(out.CredentialsFile); err != nil {
		log.Warn().
			Str("file", fallback).
			Str("credentials", out.CredentialsFile).
			Msg("google credentials file not found, exporting to csv")
		return sink.NewCsvWriter(fallback), nil
	}

	return sink.NewSheetsWriter(ctx, out.CredentialsFile, out.SpreadsheetID, out.SheetName)
}
