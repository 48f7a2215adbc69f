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

import "fmt"

// Status is the workflow status assigned to a lead by the vendor.
type Status string

// Statuses reported by the ICONX API.
const (
	StatusNew          Status = "New"
	StatusAcknowledged Status = "Acknowledged"
	StatusConfirmed    Status = "Confirmed"
	StatusDone         Status = "Done"
	StatusUnqualified  Status = "Unqualified-SP-Action-Required"
)

// ParseStatus validates a status string supplied on the command line and
// returns it as a [Status].
func ParseStatus(s string) (Status, error) {
	switch status := Status(s); status {
	case StatusNew, StatusAcknowledged, StatusConfirmed, StatusDone, StatusUnqualified:
		return status, nil
	default:
		return "", fmt.Errorf("unknown lead status: %q", s)
	}
}

// Lead represents a normalized service lead.
type Lead struct {
	ID           string `json:"id"            csv:"id"`
	Status       Status `json:"status"        csv:"status"`
	CreatedAt    *Time  `json:"created_at"    csv:"created_at"`
	VendorID     string `json:"vendor_id"     csv:"vendor_id"`
	CustomerName string `json:"customer_name" csv:"customer_name"`
	Phone        string `json:"phone"         csv:"phone"`
	Address      string `json:"address"       csv:"address"`
	JobType      string `json:"job_type"      csv:"job_type"`
}

// Columns returns the fixed output column order shared by every sink.
func Columns() []string {
	return []string{
		"id",
		"status",
		"created_at",
		"vendor_id",
		"customer_name",
		"phone",
		"address",
		"job_type",
	}
}

// Row returns the lead's values in the order given by [Columns].
func (l *Lead) Row() []string {
	var created string
	if t, ok := l.CreatedAt.Get(); ok {
		created = t.Format(TimeLayout)
	}

	return []string{
		l.ID,
		string(l.Status),
		created,
		l.VendorID,
		l.CustomerName,
		l.Phone,
		l.Address,
		l.JobType,
	}
}
