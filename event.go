// Copyright 2026 CloudWeGo Authors
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

package wasipoll

import (
	"fmt"
	"strings"
)

// Token is chosen by the caller to correlate a registration with its events.
// The host poller carries tokens as 32-bit values.
type Token uint32

// Interest is the set of readiness conditions a registration waits for.
type Interest uint8

const (
	// Readable asks for read readiness.
	Readable Interest = 1 << iota
	// Writable asks for write readiness.
	Writable
)

// Add returns the union of both interests.
func (i Interest) Add(other Interest) Interest { return i | other }

// Remove returns i without other.
func (i Interest) Remove(other Interest) Interest { return i &^ other }

// IsReadable reports whether read readiness is requested.
func (i Interest) IsReadable() bool { return i&Readable != 0 }

// IsWritable reports whether write readiness is requested.
func (i Interest) IsWritable() bool { return i&Writable != 0 }

func (i Interest) String() string {
	var parts []string
	if i.IsReadable() {
		parts = append(parts, "READABLE")
	}
	if i.IsWritable() {
		parts = append(parts, "WRITABLE")
	}
	if len(parts) == 0 {
		return "EMPTY"
	}
	return strings.Join(parts, " | ")
}

func interestOf(readable, writable bool) (i Interest) {
	if readable {
		i |= Readable
	}
	if writable {
		i |= Writable
	}
	return i
}

// Event is one readiness notification. It is also the slot type of the host wait buffer.
type Event struct {
	token    Token
	readable bool
	writable bool
}

// NewEvent builds an Event, mostly useful to hosts and tests.
func NewEvent(token Token, readable, writable bool) Event {
	return Event{token: token, readable: readable, writable: writable}
}

// Token returns the token the source was registered with.
func (e Event) Token() Token { return e.token }

// IsReadable reports read readiness.
func (e Event) IsReadable() bool { return e.readable }

// IsWritable reports write readiness.
func (e Event) IsWritable() bool { return e.writable }

// The host poller reports nothing beyond readable and writable, so the
// remaining predicates are always false on this backend.

// IsError is always false.
func (e Event) IsError() bool { return false }

// IsReadClosed is always false.
func (e Event) IsReadClosed() bool { return false }

// IsWriteClosed is always false.
func (e Event) IsWriteClosed() bool { return false }

// IsPriority is always false.
func (e Event) IsPriority() bool { return false }

// IsAIO is always false.
func (e Event) IsAIO() bool { return false }

// IsLIO is always false.
func (e Event) IsLIO() bool { return false }

func (e Event) String() string {
	return fmt.Sprintf("Event{token: %d, readable: %t, writable: %t}", e.token, e.readable, e.writable)
}

// Events is the output of Selector.Select. It is reset on every call.
type Events []Event

// NewEvents returns an empty Events with room for capacity events.
func NewEvents(capacity int) Events {
	return make(Events, 0, capacity)
}

// Clear empties the slice keeping its storage.
func (es *Events) Clear() {
	*es = (*es)[:0]
}

// Len returns the number of events.
func (es Events) Len() int { return len(es) }

// IsEmpty reports whether no events were delivered.
func (es Events) IsEmpty() bool { return len(es) == 0 }
