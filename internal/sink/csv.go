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
	"fmt"
	"os"

	"github.com/callowaymech/hd-leads/internal/models"
	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"
)

// CsvWriter is an implementation of a [Writer] that writes lead data to
// a local CSV file with a fixed header row.
type CsvWriter struct {
	file string
}

// NewCsvWriter returns an instance of a [Writer] that writes lead data to
// the given CSV file.
func NewCsvWriter(file string) *CsvWriter {
	return &CsvWriter{file}
}

func (c *CsvWriter) Write(_ context.Context, leads []*models.Lead, mode Mode) error {
	// Appends open read-write so the file's tail can be inspected.
	flags := os.O_CREATE | os.O_RDWR | os.O_APPEND
	if mode == Replace {
		flags = os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	}

	file, err := os.OpenFile(c.file, flags, 0644)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrorSinkUnavailable, err)
	}
	defer file.Close()

	// The header is written only at the top of the file; appends to a
	// non-empty file must not repeat it.
	withHeader := true
	if mode == Append {
		info, err := file.Stat()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrorSinkUnavailable, err)
		}

		if info.Size() > 0 {
			withHeader = false

			// A prior writer may have left the final line unterminated;
			// without a newline the first new row would merge onto it.
			tail := make([]byte, 1)
			if _, err := file.ReadAt(tail, info.Size()-1); err != nil {
				return fmt.Errorf("%w: %v", ErrorSinkUnavailable, err)
			}

			if tail[0] != '\n' {
				if _, err := file.Write([]byte("\n")); err != nil {
					return fmt.Errorf("%w: %v", ErrorSinkUnavailable, err)
				}
			}
		}
	}

	if withHeader {
		err = gocsv.MarshalFile(leads, file)
	} else {
		err = gocsv.MarshalWithoutHeaders(leads, file)
	}

	if err != nil {
		return fmt.Errorf("%w: %v", ErrorSinkUnavailable, err)
	}

	log.Debug().Str("file", c.file).Int("num", len(leads)).Msg("wrote leads to csv")

	return nil
}
