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

package models

import (
	"strconv"
	"time"
)

// TimeLayout is the timestamp layout used by the ICONX API.
const TimeLayout string = "01/02/2006 15:04:05"

// Time is a sugared representation of a Go [time.Time] value with
// additional methods to check if it's a zero value. It marshals to and
// from the vendor's timestamp layout in both CSV and JSON.
type Time struct {
	valid bool
	time  time.Time
}

// NewTime creates and returns a new instance of [*Time].
func NewTime() *Time {
	return &Time{}
}

// NewTimeValid creates and returns a new (valid) instance of [*Time].
func NewTimeValid(time time.Time) *Time {
	return &Time{valid: true, time: time}
}

// ParseTime parses a vendor timestamp string into a [*Time].
func ParseTime(s string) (*Time, error) {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return nil, err
	}

	return NewTimeValid(t), nil
}

// Valid returns true if the underlying time is not a zero value.
func (t *Time) Valid() bool {
	return t.valid
}

// Get returns the underlying [time.Time] value.
func (t *Time) Get() (time.Time, bool) {
	if t == nil {
		return time.Time{}, false
	}

	return t.time, t.valid
}

// Set sets the underlying [time.Time] value with the provided arg.
func (t *Time) Set(_t time.Time) {
	t.valid = true
	t.time = _t
}

// Compare compares t with other, treating an invalid [*Time] as the zero
// time. The result follows the convention of [time.Time.Compare].
func (t *Time) Compare(other *Time) int {
	a, _ := t.Get()
	b, _ := other.Get()

	return a.Compare(b)
}

func (t *Time) marshal() (string, error) {
	if t == nil || !t.valid {
		return "", nil
	}

	return t.time.Format(TimeLayout), nil
}

func (t *Time) unmarshal(record string) error {
	if record == "" {
		return nil
	}

	time, err := time.Parse(TimeLayout, record)
	if err != nil {
		return err
	}

	*t = Time{valid: true, time: time}

	return nil
}

func (t *Time) MarshalCSV() (string, error) {
	return t.marshal()
}

func (t *Time) UnmarshalCSV(record string) error {
	return t.unmarshal(record)
}

func (t *Time) MarshalJSON() ([]byte, error) {
	s, err := t.marshal()
	if err != nil {
		return nil, err
	}

	return []byte(strconv.Quote(s)), nil
}

func (t *Time) UnmarshalJSON(field []byte) error {
	s, err := strconv.Unquote(string(field))
	if err != nil {
		return err
	}

	return t.unmarshal(s)
}
