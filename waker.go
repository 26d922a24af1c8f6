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

	"code.hybscloud.com/iox"
)

// Waker interrupts a Select by making a counter resource readable.
type Waker struct {
	fd  int
	sel *Selector
}

// NewWaker allocates a counter on the selector's host and registers it readable
// under token. The counter is closed again if the registration fails.
func NewWaker(sel *Selector, token Token) (*Waker, error) {
	host := sel.poll.host
	fd, err := host.CounterCreate()
	if err != nil {
		return nil, wrapErrno("counter_create", err)
	}
	if err = sel.Register(fd, token, Readable); err != nil {
		_ = host.Close(fd)
		return nil, err
	}
	return &Waker{fd: fd, sel: sel}, nil
}

// Fd returns the counter handle.
func (w *Waker) Fd() int { return w.fd }

// Wake signals the counter once. Signals collapse: waking twice before the
// selector reports the waker yields one event.
//
// The write only fails with would-block when the counter is about to overflow;
// in that case the counter is drained and the write is retried exactly once.
// A retry that would block again is returned, wrapping iox.ErrWouldBlock.
func (w *Waker) Wake() error {
	host := w.sel.poll.host
	err := host.CounterWrite1(w.fd)
	if iox.IsWouldBlock(err) {
		w.sel.metrics.wakeRetries.Inc()
		w.sel.logger.Debug().
			Uint64("selector", w.sel.id).
			Int("fd", w.fd).
			Log("waker counter full, draining")
		if err = w.Reset(); err != nil {
			return err
		}
		err = host.CounterWrite1(w.fd)
		if iox.IsWouldBlock(err) {
			return fmt.Errorf("wasipoll: counter_write1: %w", err)
		}
	}
	if err != nil {
		return wrapErrno("counter_write1", err)
	}
	w.sel.metrics.wakes.Inc()
	return nil
}

// Reset drains the counter. Draining an unsignalled waker is a no-op.
func (w *Waker) Reset() error {
	err := w.sel.poll.host.CounterRead(w.fd)
	if err == nil || iox.IsWouldBlock(err) {
		return nil
	}
	return wrapErrno("counter_read", err)
}
