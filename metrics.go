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
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "wasipoll"

// selectorMetrics is shared by a Selector, its clones and its wakers.
type selectorMetrics struct {
	selects       prometheus.Counter
	events        prometheus.Counter
	rearmFailures prometheus.Counter
	registrations prometheus.Gauge
	wakes         prometheus.Counter
	wakeRetries   prometheus.Counter

	reg prometheus.Registerer
}

func (m *selectorMetrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.selects, m.events, m.rearmFailures, m.registrations, m.wakes, m.wakeRetries}
}

// unregister removes the collectors from the registerer, if any.
func (m *selectorMetrics) unregister() {
	if m.reg == nil {
		return
	}
	for _, c := range m.collectors() {
		m.reg.Unregister(c)
	}
}

func newSelectorMetrics(id uint64, reg prometheus.Registerer) (*selectorMetrics, error) {
	m := &selectorMetrics{
		selects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "selects_total",
			Help:      "Number of completed poller waits.",
		}),
		events: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "events_total",
			Help:      "Number of readiness events delivered.",
		}),
		rearmFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "rearm_failures_total",
			Help:      "Number of failed re-arms after an event was delivered.",
		}),
		registrations: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "registrations",
			Help:      "Number of live registrations.",
		}),
		wakes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "wakes_total",
			Help:      "Number of successful waker signals.",
		}),
		wakeRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "wake_retries_total",
			Help:      "Number of waker writes retried after draining an overflowing counter.",
		}),
	}
	if reg == nil {
		return m, nil
	}
	reg = prometheus.WrapRegistererWith(prometheus.Labels{"selector": strconv.FormatUint(id, 10)}, reg)
	for i, c := range m.collectors() {
		if err := reg.Register(c); err != nil {
			for _, done := range m.collectors()[:i] {
				reg.Unregister(done)
			}
			return nil, err
		}
	}
	m.reg = reg
	return m, nil
}
