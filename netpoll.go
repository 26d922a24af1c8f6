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
	"context"
	"math"
	"sync"
	"sync/atomic"
)

// WakerToken is the token an EventLoop reserves for its waker.
const WakerToken = Token(math.MaxUint32 - 1)

// OnReady handles one readiness event. Since events are re-armed, OnReady must
// either consume the readiness (read until would-block, write, ...) or
// deregister the handle, otherwise it is called again on the next turn.
//
// Return: the error is logged and otherwise ignored.
type OnReady func(ev Event) error

// EventLoop drives a Selector on one goroutine and dispatches events by token.
type EventLoop struct {
	sync.Mutex
	sel      *Selector
	waker    *Waker
	handlers map[Token]OnReady
	closed   atomic.Bool
	stop     chan error
	done     chan struct{}
}

// NewEventLoop creates a Selector and a Waker registered under WakerToken.
func NewEventLoop(ops ...Option) (*EventLoop, error) {
	sel, err := NewSelector(ops...)
	if err != nil {
		return nil, err
	}
	waker, err := NewWaker(sel, WakerToken)
	if err != nil {
		sel.metrics.unregister()
		return nil, err
	}
	return &EventLoop{
		sel:      sel,
		waker:    waker,
		handlers: make(map[Token]OnReady),
		stop:     make(chan error, 1),
		done:     make(chan struct{}),
	}, nil
}

// Selector returns the loop's selector.
func (evl *EventLoop) Selector() *Selector { return evl.sel }

// Register adds fd under token and routes its events to onReady.
func (evl *EventLoop) Register(fd int, token Token, interests Interest, onReady OnReady) error {
	if token == WakerToken {
		return ErrReservedToken
	}
	if evl.closed.Load() {
		return ErrLoopClosed
	}
	evl.Lock()
	evl.handlers[token] = onReady
	evl.Unlock()
	if err := evl.sel.Register(fd, token, interests); err != nil {
		evl.Lock()
		delete(evl.handlers, token)
		evl.Unlock()
		return err
	}
	return nil
}

// Deregister removes fd and the handler of token.
func (evl *EventLoop) Deregister(fd int, token Token) error {
	evl.Lock()
	delete(evl.handlers, token)
	evl.Unlock()
	return evl.sel.Deregister(fd)
}

// Serve runs the loop until Shutdown. It must be called by exactly one goroutine.
func (evl *EventLoop) Serve() error {
	defer close(evl.done)
	events := NewEvents(evl.sel.capacity)
	for {
		if err := evl.sel.Select(&events, -1); err != nil {
			return err
		}
		for _, ev := range events {
			if ev.Token() == WakerToken {
				if err := evl.waker.Reset(); err != nil {
					evl.sel.logger.Err().Uint64("selector", evl.sel.id).Err(err).Log("waker reset failed")
				}
				continue
			}
			evl.Lock()
			onReady := evl.handlers[ev.Token()]
			evl.Unlock()
			if onReady == nil {
				continue
			}
			if err := onReady(ev); err != nil {
				evl.sel.logger.Err().
					Uint64("selector", evl.sel.id).
					Uint64("token", uint64(ev.Token())).
					Err(err).
					Log("handler failed")
			}
		}
		select {
		case err := <-evl.stop:
			return err
		default:
		}
	}
}

// Shutdown stops Serve and waits for it to return, or for ctx to end.
func (evl *EventLoop) Shutdown(ctx context.Context) error {
	if !evl.closed.CompareAndSwap(false, true) {
		return ErrLoopClosed
	}
	evl.quit(nil)
	if err := evl.waker.Wake(); err != nil {
		return err
	}
	select {
	case <-evl.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (evl *EventLoop) quit(err error) {
	select {
	case evl.stop <- err:
	default:
	}
}
