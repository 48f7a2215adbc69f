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

package iconx

import "encoding/json"

// Record is a raw lead row as returned by the vendor, keyed by the
// vendor's own field names. Nested values (notes lists and the like) are
// not needed downstream and are discarded during decoding.
type Record map[string]string

func (r *Record) UnmarshalJSON(data []byte) error {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	rec := make(Record, len(fields))
	for key, value := range fields {
		if s, ok := value.(string); ok {
			rec[key] = s
		}
	}

	*r = rec

	return nil
}

// Get returns the value of the given vendor field, or "" when absent.
func (r Record) Get(key string) string {
	return r[key]
}

type lookupRequest struct {
	Input lookupInput `json:"SFILEADLOOKUPWS_Input"`
}

type lookupInput struct {
	PageSize    string     `json:"PageSize"`
	Leads       lookupList `json:"ListOfSfileadbows"`
	StartRowNum string     `json:"StartRowNum"`
}

type lookupList struct {
	Headers []lookupHeader `json:"Sfileadheaderws"`
}

type lookupHeader struct {
	Searchspec string `json:"Searchspec"`
}

type lookupResponse struct {
	Output lookupOutput `json:"SFILEADLOOKUPWS_Output"`
}

type lookupOutput struct {
	LastPage string     `json:"LastPage"`
	Leads    recordList `json:"ListOfSfileadbows"`
}

// recordList tolerates the vendor's habit of returning Sfileadheaderws as
// a single object when a page holds exactly one lead and as an array
// otherwise.
type recordList struct {
	Records []Record
}

func (l *recordList) UnmarshalJSON(data []byte) error {
	var multi struct {
		Records []Record `json:"Sfileadheaderws"`
	}
	if err := json.Unmarshal(data, &multi); err == nil {
		l.Records = multi.Records
		return nil
	}

	var single struct {
		Record Record `json:"Sfileadheaderws"`
	}
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}

	if len(single.Record) > 0 {
		l.Records = []Record{single.Record}
	}

	return nil
}
