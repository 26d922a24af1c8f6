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
	"runtime"
	"sync/atomic"
)

// unusedToken fills wait slots the host did not write.
const unusedToken = Token(^uint32(0))

func allocbuf(size int) *eventBuffer {
	if size != DefaultEventCapacity {
		return newEventBuffer(size)
	}
	return bufcache.alloc()
}

func freebuf(b *eventBuffer) {
	if len(b.events) != DefaultEventCapacity {
		return
	}
	bufcache.free(b)
}

var bufcache = &eventBufferCache{}

// eventBuffer is the scratch space of one poller wait.
type eventBuffer struct {
	events []Event
	next   *eventBuffer
}

func newEventBuffer(size int) *eventBuffer {
	b := &eventBuffer{events: make([]Event, size)}
	b.reset()
	return b
}

func (b *eventBuffer) reset() {
	for i := range b.events {
		b.events[i] = Event{token: unusedToken}
	}
}

// eventBufferCache is a free list of default sized buffers. Select runs on one
// goroutine per selector, so the list rarely holds more than a few entries.
type eventBufferCache struct {
	locked int32
	first  *eventBuffer
}

func (c *eventBufferCache) alloc() *eventBuffer {
	c.lock()
	b := c.first
	if b != nil {
		c.first = b.next
		b.next = nil
	}
	c.unlock()
	if b == nil {
		b = newEventBuffer(DefaultEventCapacity)
	}
	return b
}

func (c *eventBufferCache) free(b *eventBuffer) {
	b.reset()
	c.lock()
	b.next = c.first
	c.first = b
	c.unlock()
}

func (c *eventBufferCache) lock() {
	for !atomic.CompareAndSwapInt32(&c.locked, 0, 1) {
		runtime.Gosched()
	}
}

func (c *eventBufferCache) unlock() {
	atomic.StoreInt32(&c.locked, 0)
}
