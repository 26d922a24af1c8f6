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

// Package wasipoll is a readiness selector for sandboxed hosts that only expose
// sockets and polling through a narrow handle-based ABI.
//
// The host poller is single-shot: once it reports an event for a handle, the
// handle stays silent until it is submitted again. Selector re-arms every
// delivered event, so callers observe level-triggered readiness.
//
// A Selector is meant to be driven by one goroutine. Registration from other
// goroutines is serialized by the registry lock, but concurrent Select calls on
// one Selector are unsupported.
package wasipoll

import (
	"net/netip"
	"syscall"
)

// PollHost is the host's readiness multiplexer.
type PollHost interface {
	// PollerCreate allocates a poller handle.
	PollerCreate() (int, error)

	// PollerWait blocks until at least one event is ready and fills events.
	// It has no timeout.
	PollerWait(poller int, events []Event) (int, error)

	// PollerAdd submits fd with the readiness and token carried by ev.
	PollerAdd(poller, fd int, ev Event) error

	// PollerModify resubmits fd, re-arming it after an event was delivered.
	PollerModify(poller, fd int, ev Event) error

	// PollerDelete removes fd from the poller.
	PollerDelete(poller, fd int) error
}

// CounterHost is the host's counter resource, used to interrupt PollerWait.
type CounterHost interface {
	CounterCreate() (int, error)

	// CounterWrite1 adds one to the counter. It returns iox.ErrWouldBlock when
	// the counter would overflow.
	CounterWrite1(fd int) error

	// CounterRead drains the counter. It returns iox.ErrWouldBlock when empty.
	CounterRead(fd int) error
}

// SocketHost is the host's socket surface.
type SocketHost interface {
	Recv(fd int, bufs [][]byte, flags uint16) (int, error)
	Send(fd int, bufs [][]byte, flags uint16) (int, error)
	Shutdown(fd int, how SdFlags) error

	TTL(fd int) (uint32, error)
	SetTTL(fd int, ttl uint32) error
	Nodelay(fd int) (bool, error)
	SetNodelay(fd int, nodelay bool) error
	Flush(fd int) error

	// TakeError returns the pending socket error code, zero if none. err is
	// set only when the query itself failed.
	TakeError(fd int) (code syscall.Errno, err error)

	NewV4Socket() (int, error)
	Connect(fd int, addr netip.AddrPort) error
	Close(fd int) error
}

// Host is the complete foreign ABI the package depends on.
type Host interface {
	PollHost
	CounterHost
	SocketHost
}

// SdFlags is the host's shutdown direction bitmask.
type SdFlags uint8

const (
	// SdRD shuts down the read half.
	SdRD SdFlags = 1 << iota
	// SdWR shuts down the write half.
	SdWR
)

// PollEvent defines the operation of Poller.Control.
type PollEvent int

const (
	// PollAdd submits a new handle.
	PollAdd PollEvent = 0x1

	// PollModify resubmits a handle, used to re-arm after delivery.
	PollModify PollEvent = 0x2

	// PollDetach removes a handle.
	PollDetach PollEvent = 0x3
)

func (e PollEvent) String() string {
	switch e {
	case PollAdd:
		return "poller_add"
	case PollModify:
		return "poller_modify"
	case PollDetach:
		return "poller_delete"
	}
	return "poller_unknown"
}

// Poller owns one host poller handle. It is shared by every Selector built on it
// and is never closed by this package.
type Poller struct {
	host Host
	fd   int
}

// OpenPoller creates a poller on host.
func OpenPoller(host Host) (*Poller, error) {
	fd, err := host.PollerCreate()
	if err != nil {
		return nil, wrapErrno("poller_create", err)
	}
	return &Poller{host: host, fd: fd}, nil
}

// Fd returns the host poller handle.
func (p *Poller) Fd() int { return p.fd }

// Host returns the host the poller was created on.
func (p *Poller) Host() Host { return p.host }

// Wait fills buf with ready events.
func (p *Poller) Wait(buf []Event) (int, error) {
	n, err := p.host.PollerWait(p.fd, buf)
	if err != nil {
		return 0, wrapErrno("poller_wait", err)
	}
	if n > len(buf) {
		n = len(buf)
	}
	return n, nil
}

// Control submits, resubmits or removes fd.
func (p *Poller) Control(fd int, ev Event, op PollEvent) (err error) {
	switch op {
	case PollAdd:
		err = p.host.PollerAdd(p.fd, fd, ev)
	case PollModify:
		err = p.host.PollerModify(p.fd, fd, ev)
	case PollDetach:
		err = p.host.PollerDelete(p.fd, fd)
	default:
		return &ABIError{Op: op.String(), Errno: syscall.EINVAL}
	}
	return wrapErrno(op.String(), err)
}
