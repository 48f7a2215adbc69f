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
	"errors"
	"fmt"
	"net/http"
	"slices"

	"github.com/callowaymech/hd-leads/internal/models"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	headerRange string = "A1:H1"
	dataRange   string = "A2:H"
	fullRange   string = "A:H"
)

// SheetsWriter is an implementation of a [Writer] that writes lead data
// to a tab of a Google Sheets spreadsheet.
type SheetsWriter struct {
	service       *sheets.Service
	spreadsheetID string
	sheetName     string
}

// NewSheetsWriter returns an instance of a [Writer] that writes lead data
// to the named sheet tab, authenticating with the given service-account
// credentials file.
func NewSheetsWriter(
	ctx context.Context,
	credentialsFile, spreadsheetID, sheetName string,
) (*SheetsWriter, error) {
	service, err := sheets.NewService(
		ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrorSinkUnavailable, err)
	}

	return &SheetsWriter{
		service:       service,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

func (s *SheetsWriter) Write(ctx context.Context, leads []*models.Lead, mode Mode) error {
	if err := s.ensureHeaders(ctx); err != nil {
		return err
	}

	if mode == Replace {
		if err := s.clearData(ctx); err != nil {
			return err
		}
	}

	rows := make([][]any, 0, len(leads))
	for _, lead := range leads {
		row := lead.Row()
		values := make([]any, len(row))
		for i, cell := range row {
			values[i] = cell
		}
		rows = append(rows, values)
	}

	_, err := s.service.Spreadsheets.Values.
		Append(s.spreadsheetID, s.rng(fullRange), &sheets.ValueRange{Values: rows}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrorSinkUnavailable, err)
	}

	log.Debug().
		Str("sheet", s.sheetName).
		Int("num", len(leads)).
		Msg("wrote leads to spreadsheet")

	return nil
}

func (s *SheetsWriter) rng(cells string) string {
	return s.sheetName + "!" + cells
}

// ensureHeaders writes the fixed column header when the sheet is empty or
// carries a different first row, creating the sheet tab if it is missing.
func (s *SheetsWriter) ensureHeaders(ctx context.Context) error {
	result, err := s.service.Spreadsheets.Values.
		Get(s.spreadsheetID, s.rng(headerRange)).
		Context(ctx).
		Do()

	if err != nil {
		// The vendor reports a missing sheet tab as a bad request.
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == http.StatusBadRequest {
			if err := s.createSheet(ctx); err != nil {
				return err
			}

			result = &sheets.ValueRange{}
		} else {
			return fmt.Errorf("%w: %v", ErrorSinkUnavailable, err)
		}
	}

	columns := models.Columns()
	if len(result.Values) > 0 && headersMatch(result.Values[0], columns) {
		return nil
	}

	header := make([]any, len(columns))
	for i, column := range columns {
		header[i] = column
	}

	_, err = s.service.Spreadsheets.Values.
		Update(s.spreadsheetID, s.rng(headerRange), &sheets.ValueRange{Values: [][]any{header}}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrorSinkUnavailable, err)
	}

	log.Debug().Str("sheet", s.sheetName).Msg("set spreadsheet header row")

	return nil
}

func headersMatch(row []any, columns []string) bool {
	cells := make([]string, 0, len(row))
	for _, cell := range row {
		s, ok := cell.(string)
		if !ok {
			return false
		}
		cells = append(cells, s)
	}

	return slices.Equal(cells, columns)
}

func (s *SheetsWriter) createSheet(ctx context.Context) error {
	request := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: s.sheetName},
			},
		}},
	}

	_, err := s.service.Spreadsheets.
		BatchUpdate(s.spreadsheetID, request).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrorSinkUnavailable, err)
	}

	log.Info().Str("sheet", s.sheetName).Msg("created spreadsheet tab")

	return nil
}

func (s *SheetsWriter) clearData(ctx context.Context) error {
	_, err := s.service.Spreadsheets.Values.
		Clear(s.spreadsheetID, s.rng(dataRange), &sheets.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrorSinkUnavailable, err)
	}

	log.Debug().Str("sheet", s.sheetName).Msg("cleared existing spreadsheet rows")

	return nil
}
