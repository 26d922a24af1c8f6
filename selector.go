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
	"sync/atomic"
	"time"

	"github.com/joeycumines/logiface"
)

var nextSelectorID atomic.Uint64

// subscription is the registry record of one live registration.
type subscription struct {
	fd       int
	readable bool
	writable bool
}

// subscriptions is the registry shared by a Selector and all of its clones.
type subscriptions struct {
	sync.Mutex
	m map[Token]subscription
}

// Selector registers handles on the host poller and waits for their readiness.
//
// The registry lock is held while re-arming delivered events, not while waiting.
// Only one goroutine may call Select at a time.
type Selector struct {
	id       uint64
	poll     *Poller
	subs     *subscriptions
	capacity int
	logger   *logiface.Logger[logiface.Event]
	metrics  *selectorMetrics
}

// NewSelector returns a Selector with an empty registry. Unless WithPoller is
// given it uses the process-wide poller, opening it on first use.
func NewSelector(ops ...Option) (*Selector, error) {
	opt := resolveOptions(ops)
	if err := opt.verify(); err != nil {
		return nil, err
	}
	poll := opt.poller
	if poll == nil {
		var err error
		if poll, err = DefaultPoller(); err != nil {
			return nil, err
		}
	}
	id := nextSelectorID.Add(1)
	metrics, err := newSelectorMetrics(id, opt.registerer)
	if err != nil {
		return nil, err
	}
	return &Selector{
		id:       id,
		poll:     poll,
		subs:     &subscriptions{m: make(map[Token]subscription)},
		capacity: opt.capacity,
		logger:   opt.logger,
		metrics:  metrics,
	}, nil
}

// ID identifies the selector in logs and metrics. Clones share it.
func (s *Selector) ID() uint64 { return s.id }

// Poller returns the poller the selector waits on.
func (s *Selector) Poller() *Poller { return s.poll }

// TryClone returns a selector sharing the registry, its lock and the poller.
func (s *Selector) TryClone() (*Selector, error) {
	c := *s
	return &c, nil
}

// Select waits for readiness and replaces the content of events with the result.
//
// timeout is accepted but not honoured: the host wait has no timeout parameter,
// so Select blocks until the host reports at least one event.
//
// Every delivered event whose token is still registered is re-armed with its
// registered handle and interest. A failed re-arm is not returned; the event is
// delivered anyway.
func (s *Selector) Select(events *Events, timeout time.Duration) error {
	events.Clear()
	buf := allocbuf(s.capacity)
	defer freebuf(buf)

	n, err := s.poll.Wait(buf.events)
	if err != nil {
		return err
	}
	s.metrics.selects.Inc()
	for i := 0; i < n; i++ {
		ev := buf.events[i]
		s.rearm(ev.token)
		*events = append(*events, ev)
	}
	s.metrics.events.Add(float64(n))
	return nil
}

func (s *Selector) rearm(token Token) {
	s.subs.Lock()
	defer s.subs.Unlock()
	sub, ok := s.subs.m[token]
	if !ok {
		return
	}
	err := s.poll.Control(sub.fd, Event{token: token, readable: sub.readable, writable: sub.writable}, PollModify)
	if err != nil {
		s.metrics.rearmFailures.Inc()
		s.logger.Debug().
			Uint64("selector", s.id).
			Int("fd", sub.fd).
			Uint64("token", uint64(token)).
			Err(err).
			Log("re-arm failed")
	}
}

// Register submits fd to the poller under token. The registry is only updated
// when the poller accepted the handle.
//
// A handle must not be registered twice under different tokens.
func (s *Selector) Register(fd int, token Token, interests Interest) error {
	if !interests.IsReadable() && !interests.IsWritable() {
		return ErrEmptyInterest
	}
	sub := subscription{fd: fd, readable: interests.IsReadable(), writable: interests.IsWritable()}
	err := s.poll.Control(fd, Event{token: token, readable: sub.readable, writable: sub.writable}, PollAdd)
	if err != nil {
		return err
	}
	s.subs.Lock()
	if _, ok := s.subs.m[token]; !ok {
		s.metrics.registrations.Inc()
	}
	s.subs.m[token] = sub
	s.subs.Unlock()
	return nil
}

// Reregister is Deregister followed by Register. It is not atomic: a Select
// running in between may see neither registration.
func (s *Selector) Reregister(fd int, token Token, interests Interest) error {
	if err := s.Deregister(fd); err != nil {
		return err
	}
	return s.Register(fd, token, interests)
}

// Deregister removes fd from the poller and from the registry. The registry is
// cleaned even when the poller refused; the poller error is what gets returned.
func (s *Selector) Deregister(fd int) error {
	err := s.poll.Control(fd, Event{}, PollDetach)

	s.subs.Lock()
	found := false
	var token Token
	for k, v := range s.subs.m {
		if v.fd == fd {
			token, found = k, true
		}
	}
	if found {
		delete(s.subs.m, token)
		s.metrics.registrations.Dec()
	}
	s.subs.Unlock()

	return err
}

// RegisterWaker reports whether a waker was already registered. Tracking is
// disabled on this backend, so it is always false.
func (s *Selector) RegisterWaker() bool {
	return false
}

// registered reports the subscription for token, for tests and the event loop.
func (s *Selector) registered(token Token) (subscription, bool) {
	s.subs.Lock()
	defer s.subs.Unlock()
	sub, ok := s.subs.m[token]
	return sub, ok
}
