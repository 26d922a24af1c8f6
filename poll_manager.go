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
	"sync"
)

// pollmanager holds the process-wide poller. The host offers one poller per
// process in practice, so every Selector without WithPoller shares it.
var pollmanager manager

type manager struct {
	once sync.Once
	poll *Poller
	err  error
}

// Pick returns the process-wide poller, opening it on the first call. A failed
// open is remembered and returned to every later caller.
func (m *manager) Pick() (*Poller, error) {
	m.once.Do(func() {
		m.poll, m.err = OpenPoller(DefaultHost())
	})
	return m.poll, m.err
}

// DefaultPoller returns the process-wide poller.
func DefaultPoller() (*Poller, error) {
	return pollmanager.Pick()
}

var (
	hostOnce sync.Once
	host     Host
)

// DefaultHost returns the host of the running platform.
func DefaultHost() Host {
	hostOnce.Do(func() {
		host = openHost()
	})
	return host
}
