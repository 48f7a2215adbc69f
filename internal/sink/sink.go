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

	"github.com/callowaymech/hd-leads/internal/models"
)

// ErrorSinkUnavailable is returned when the destination cannot be reached
// or written. It is fatal to the run; no partial-write recovery is
// attempted.
var ErrorSinkUnavailable = errors.New("sink destination is unavailable")

// Mode selects how a write treats the destination's existing content.
type Mode int

const (
	// Append adds rows after existing content. No duplicate check is made
	// against prior runs.
	Append Mode = iota

	// Replace clears the destination's data region before writing the
	// full record set. The header row is kept.
	Replace
)

// Writer defines an interface for persisting a batch of normalized leads
// to a destination.
type Writer interface {
	// Write writes the ordered batch to the underlying destination using
	// the given [Mode].
	Write(ctx context.Context, leads []*models.Lead, mode Mode) error
}
