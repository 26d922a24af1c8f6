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
	"math"
	"net/netip"
	"sort"
	"sync"
	"syscall"
	"testing"

	"code.hybscloud.com/iox"
	"github.com/stretchr/testify/require"
)

// fakeReg is one handle submitted to a fake poller. It is disarmed once
// reported, like the real single-shot poller.
type fakeReg struct {
	token    Token
	readable bool
	writable bool
	armed    bool
}

type fakeReadiness struct {
	readable bool
	writable bool
}

// fakeHost is an in-memory Host. Waits never block unless block is set, in
// which case PollerWait parks until something is ready.
type fakeHost struct {
	mu    sync.Mutex
	cond  *sync.Cond
	block bool

	nextFd  int
	polls   map[int]map[int]*fakeReg
	ready   map[int]fakeReadiness
	counter map[int]uint64
	// counterMax is the largest value the counter holds before writes would block.
	counterMax uint64

	failCreate  error
	failAdd     error
	failModify  error
	failDelete  error
	failWait    error
	failCounter error
	failRecv    error
	failSend    error
	failClose   error

	adds, modifies, deletes, waits int
	counterWrites                  int

	inbox     map[int][]byte
	sent      map[int][]byte
	shutdowns map[int][]SdFlags
	ttl       map[int]uint32
	nodelay   map[int]bool
	pending   map[int]syscall.Errno
	connected map[int]netip.AddrPort
	closed    map[int]bool
	flushes   int
}

var _ Host = (*fakeHost)(nil)

func newFakeHost() *fakeHost {
	h := &fakeHost{
		nextFd:     100,
		polls:      make(map[int]map[int]*fakeReg),
		ready:      make(map[int]fakeReadiness),
		counter:    make(map[int]uint64),
		counterMax: math.MaxUint64 - 1,
		inbox:      make(map[int][]byte),
		sent:       make(map[int][]byte),
		shutdowns:  make(map[int][]SdFlags),
		ttl:        make(map[int]uint32),
		nodelay:    make(map[int]bool),
		pending:    make(map[int]syscall.Errno),
		connected:  make(map[int]netip.AddrPort),
		closed:     make(map[int]bool),
	}
	h.cond = sync.NewCond(&h.mu)
	return h
}

// newTestSelector returns a selector on its own poller over a fresh fake host.
func newTestSelector(t *testing.T, ops ...Option) (*Selector, *fakeHost) {
	t.Helper()
	h := newFakeHost()
	p, err := OpenPoller(h)
	require.NoError(t, err)
	sel, err := NewSelector(append([]Option{WithPoller(p)}, ops...)...)
	require.NoError(t, err)
	return sel, h
}

func (h *fakeHost) alloc() int {
	h.nextFd++
	return h.nextFd
}

// setReady marks fd ready and wakes a parked wait.
func (h *fakeHost) setReady(fd int, readable, writable bool) {
	h.mu.Lock()
	h.ready[fd] = fakeReadiness{readable: readable, writable: writable}
	h.mu.Unlock()
	h.cond.Broadcast()
}

func (h *fakeHost) reg(poller, fd int) (*fakeReg, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.polls[poller][fd]
	if !ok {
		return nil, false
	}
	cp := *r
	return &cp, true
}

func (h *fakeHost) counterValue(fd int) uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.counter[fd]
}

func (h *fakeHost) stats() (adds, modifies, deletes, waits int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.adds, h.modifies, h.deletes, h.waits
}

func (h *fakeHost) readiness(fd int) fakeReadiness {
	if v, ok := h.counter[fd]; ok {
		return fakeReadiness{readable: v > 0}
	}
	return h.ready[fd]
}

func (h *fakeHost) PollerCreate() (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.failCreate != nil {
		return 0, h.failCreate
	}
	fd := h.alloc()
	h.polls[fd] = make(map[int]*fakeReg)
	return fd, nil
}

func (h *fakeHost) collect(poller int, events []Event) int {
	regs := h.polls[poller]
	fds := make([]int, 0, len(regs))
	for fd := range regs {
		fds = append(fds, fd)
	}
	sort.Ints(fds)
	n := 0
	for _, fd := range fds {
		if n == len(events) {
			break
		}
		r := regs[fd]
		if !r.armed {
			continue
		}
		rd := h.readiness(fd)
		readable, writable := r.readable && rd.readable, r.writable && rd.writable
		if !readable && !writable {
			continue
		}
		r.armed = false
		events[n] = Event{token: r.token, readable: readable, writable: writable}
		n++
	}
	return n
}

func (h *fakeHost) PollerWait(poller int, events []Event) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.waits++
	for {
		if h.failWait != nil {
			return 0, h.failWait
		}
		if _, ok := h.polls[poller]; !ok {
			return 0, syscall.EBADF
		}
		n := h.collect(poller, events)
		if n > 0 || !h.block {
			return n, nil
		}
		h.cond.Wait()
	}
}

func (h *fakeHost) PollerAdd(poller, fd int, ev Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.adds++
	if h.failAdd != nil {
		return h.failAdd
	}
	regs, ok := h.polls[poller]
	if !ok {
		return syscall.EBADF
	}
	if _, ok = regs[fd]; ok {
		return syscall.EEXIST
	}
	regs[fd] = &fakeReg{token: ev.token, readable: ev.readable, writable: ev.writable, armed: true}
	h.cond.Broadcast()
	return nil
}

func (h *fakeHost) PollerModify(poller, fd int, ev Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.modifies++
	if h.failModify != nil {
		return h.failModify
	}
	r, ok := h.polls[poller][fd]
	if !ok {
		return syscall.ENOENT
	}
	*r = fakeReg{token: ev.token, readable: ev.readable, writable: ev.writable, armed: true}
	return nil
}

func (h *fakeHost) PollerDelete(poller, fd int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.deletes++
	if h.failDelete != nil {
		return h.failDelete
	}
	if _, ok := h.polls[poller][fd]; !ok {
		return syscall.ENOENT
	}
	delete(h.polls[poller], fd)
	return nil
}

func (h *fakeHost) CounterCreate() (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.failCounter != nil {
		return 0, h.failCounter
	}
	fd := h.alloc()
	h.counter[fd] = 0
	return fd, nil
}

func (h *fakeHost) CounterWrite1(fd int) error {
	h.mu.Lock()
	h.counterWrites++
	v, ok := h.counter[fd]
	if !ok {
		h.mu.Unlock()
		return syscall.EBADF
	}
	if v >= h.counterMax {
		h.mu.Unlock()
		return iox.ErrWouldBlock
	}
	h.counter[fd] = v + 1
	h.mu.Unlock()
	h.cond.Broadcast()
	return nil
}

func (h *fakeHost) CounterRead(fd int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	v, ok := h.counter[fd]
	if !ok {
		return syscall.EBADF
	}
	if v == 0 {
		return iox.ErrWouldBlock
	}
	h.counter[fd] = 0
	return nil
}

func (h *fakeHost) Recv(fd int, bufs [][]byte, flags uint16) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.failRecv != nil {
		return 0, h.failRecv
	}
	n := 0
	for _, b := range bufs {
		c := copy(b, h.inbox[fd])
		h.inbox[fd] = h.inbox[fd][c:]
		n += c
	}
	return n, nil
}

func (h *fakeHost) Send(fd int, bufs [][]byte, flags uint16) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.failSend != nil {
		return 0, h.failSend
	}
	n := 0
	for _, b := range bufs {
		h.sent[fd] = append(h.sent[fd], b...)
		n += len(b)
	}
	return n, nil
}

func (h *fakeHost) Shutdown(fd int, how SdFlags) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.shutdowns[fd] = append(h.shutdowns[fd], how)
	return nil
}

func (h *fakeHost) TTL(fd int) (uint32, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed[fd] {
		return 0, syscall.EBADF
	}
	return h.ttl[fd], nil
}

func (h *fakeHost) SetTTL(fd int, ttl uint32) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed[fd] {
		return syscall.EBADF
	}
	h.ttl[fd] = ttl
	return nil
}

func (h *fakeHost) Nodelay(fd int) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed[fd] {
		return false, syscall.EBADF
	}
	return h.nodelay[fd], nil
}

func (h *fakeHost) SetNodelay(fd int, nodelay bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed[fd] {
		return syscall.EBADF
	}
	h.nodelay[fd] = nodelay
	return nil
}

func (h *fakeHost) Flush(fd int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed[fd] {
		return syscall.EBADF
	}
	h.flushes++
	return nil
}

func (h *fakeHost) TakeError(fd int) (syscall.Errno, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed[fd] {
		return 0, syscall.EBADF
	}
	code := h.pending[fd]
	delete(h.pending, fd)
	return code, nil
}

func (h *fakeHost) NewV4Socket() (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.alloc(), nil
}

func (h *fakeHost) Connect(fd int, addr netip.AddrPort) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !addr.Addr().Is4() {
		return syscall.EAFNOSUPPORT
	}
	h.connected[fd] = addr
	return nil
}

func (h *fakeHost) Close(fd int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.failClose != nil {
		return h.failClose
	}
	h.closed[fd] = true
	return nil
}
