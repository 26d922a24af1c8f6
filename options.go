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

	"github.com/joeycumines/logiface"
	"github.com/prometheus/client_golang/prometheus"
)

// DefaultEventCapacity is the number of slots handed to one poller wait.
const DefaultEventCapacity = 128

// Option configures selectors, streams and sockets.
type Option struct {
	f func(*options)
}

type options struct {
	poller     *Poller
	host       Host
	logger     *logiface.Logger[logiface.Event]
	registerer prometheus.Registerer
	capacity   int
}

// WithPoller makes a Selector use p instead of the process-wide poller.
func WithPoller(p *Poller) Option {
	return Option{func(op *options) {
		op.poller = p
	}}
}

// WithHost sets the host used by streams and sockets. Selectors take their host
// from their poller.
func WithHost(h Host) Option {
	return Option{func(op *options) {
		op.host = h
	}}
}

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(l *logiface.Logger[logiface.Event]) Option {
	return Option{func(op *options) {
		op.logger = l
	}}
}

// WithRegisterer registers selector metrics on r, labelled with the selector id.
// The series stay registered for the life of the process; only a failed
// NewEventLoop removes them again.
func WithRegisterer(r prometheus.Registerer) Option {
	return Option{func(op *options) {
		op.registerer = r
	}}
}

// WithEventCapacity sets how many events one Select may return.
func WithEventCapacity(n int) Option {
	return Option{func(op *options) {
		op.capacity = n
	}}
}

func resolveOptions(ops []Option) *options {
	opt := &options{capacity: DefaultEventCapacity}
	for _, do := range ops {
		if do.f != nil {
			do.f(opt)
		}
	}
	return opt
}

func (o *options) verify() error {
	if o.capacity <= 0 {
		return fmt.Errorf("wasipoll: event capacity must be positive, got %d", o.capacity)
	}
	return nil
}

// socketHost returns the configured host or the platform host.
func (o *options) socketHost() Host {
	if o.host != nil {
		return o.host
	}
	if o.poller != nil {
		return o.poller.host
	}
	return DefaultHost()
}
