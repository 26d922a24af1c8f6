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

//go:build wasip1

package wasipoll

import (
	"net/netip"
	"runtime"
	"syscall"
	"unsafe"

	"code.hybscloud.com/iox"
)

// Imports from the wasmer experimental network extension. Every errno-returning
// call follows the wasi convention: 0 is success, anything else an errno.

//go:wasmimport wasi_experimental_network_unstable poller_create
func poller_create(pollOut unsafe.Pointer) uint32

//go:wasmimport wasi_experimental_network_unstable poller_add
func poller_add(poll, fd uint32, event unsafe.Pointer) uint32

//go:wasmimport wasi_experimental_network_unstable poller_modify
func poller_modify(poll, fd uint32, event unsafe.Pointer) uint32

//go:wasmimport wasi_experimental_network_unstable poller_delete
func poller_delete(poll, fd uint32) uint32

//go:wasmimport wasi_experimental_network_unstable poller_wait
func poller_wait(poll uint32, events unsafe.Pointer, eventsLen uint32, eventsOut unsafe.Pointer) uint32

//go:wasmimport wasi_experimental_network_unstable socket_recv
func socket_recv(fd uint32, iovs unsafe.Pointer, iovsLen uint32, flags uint32, nread unsafe.Pointer) uint32

//go:wasmimport wasi_experimental_network_unstable socket_send
func socket_send(fd uint32, iovs unsafe.Pointer, iovsLen uint32, flags uint32, nwritten unsafe.Pointer) uint32

//go:wasmimport wasi_experimental_network_unstable socket_shutdown
func socket_shutdown(fd uint32, how uint32) uint32

//go:wasmimport wasi_experimental_network_unstable wasi_eventfd
func wasi_eventfd() uint32

//go:wasmimport wasi_experimental_network_unstable wasi_eventfd_write1
func wasi_eventfd_write1(fd uint32) int32

//go:wasmimport wasi_experimental_network_unstable wasi_eventfd_read
func wasi_eventfd_read(fd uint32) int32

//go:wasmimport wasi_experimental_network_unstable wasi_socket_ttl
func wasi_socket_ttl(fd uint32, ttl unsafe.Pointer) uint32

//go:wasmimport wasi_experimental_network_unstable wasi_socket_set_ttl
func wasi_socket_set_ttl(fd uint32, ttl uint32) uint32

//go:wasmimport wasi_experimental_network_unstable wasi_socket_nodelay
func wasi_socket_nodelay(fd uint32, nodelay unsafe.Pointer) uint32

//go:wasmimport wasi_experimental_network_unstable wasi_socket_set_nodelay
func wasi_socket_set_nodelay(fd uint32, nodelay uint32) uint32

//go:wasmimport wasi_experimental_network_unstable wasi_socket_flush
func wasi_socket_flush(fd uint32) uint32

//go:wasmimport wasi_experimental_network_unstable wasi_socket_take_error
func wasi_socket_take_error(fd uint32, socketError unsafe.Pointer) uint32

//go:wasmimport wasi_experimental_network_unstable wasi_new_v4_socket
func wasi_new_v4_socket(fdOut unsafe.Pointer) uint32

//go:wasmimport wasi_experimental_network_unstable wasi_connect_socket
func wasi_connect_socket(fd uint32, addr unsafe.Pointer) uint32

//go:wasmimport wasi_snapshot_preview1 fd_close
func fd_close(fd uint32) uint32

// wasiPollEvent mirrors __wasi_poll_event_t.
type wasiPollEvent struct {
	token    uint32
	readable bool
	writable bool
	_        [2]byte
}

// wasiCiovec mirrors __wasi_ciovec_t: a 32-bit linear memory address and length.
type wasiCiovec struct {
	buf    uint32
	bufLen uint32
}

const afInet = 1

// wasiSocketAddress mirrors the v4 arm of __wasi_socket_address_t, padded to
// the size of the union.
type wasiSocketAddress struct {
	family  uint16
	address [4]byte
	port    uint16
	_       [20]byte
}

func openHost() Host {
	return wasiHost{}
}

type wasiHost struct{}

var _ Host = wasiHost{}

// status16 keeps the low half of a 16-bit errno returned in an i32.
func status16(s uint32) syscall.Errno {
	return syscall.Errno(uint16(s))
}

func statusErr(s uint32) error {
	if e := status16(s); e != 0 {
		return e
	}
	return nil
}

func (wasiHost) PollerCreate() (int, error) {
	var poll uint32
	if err := statusErr(poller_create(unsafe.Pointer(&poll))); err != nil {
		return 0, err
	}
	return int(poll), nil
}

func (wasiHost) PollerWait(poller int, events []Event) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}
	raw := make([]wasiPollEvent, len(events))
	for i := range raw {
		raw[i].token = uint32(unusedToken)
	}
	var n uint32
	err := statusErr(poller_wait(uint32(poller), unsafe.Pointer(&raw[0]), uint32(len(raw)), unsafe.Pointer(&n)))
	if err != nil {
		return 0, err
	}
	for i := 0; i < int(n) && i < len(events); i++ {
		events[i] = Event{token: Token(raw[i].token), readable: raw[i].readable, writable: raw[i].writable}
	}
	return int(n), nil
}

func toWasiEvent(ev Event) wasiPollEvent {
	return wasiPollEvent{token: uint32(ev.token), readable: ev.readable, writable: ev.writable}
}

func (wasiHost) PollerAdd(poller, fd int, ev Event) error {
	raw := toWasiEvent(ev)
	return statusErr(poller_add(uint32(poller), uint32(fd), unsafe.Pointer(&raw)))
}

func (wasiHost) PollerModify(poller, fd int, ev Event) error {
	raw := toWasiEvent(ev)
	return statusErr(poller_modify(uint32(poller), uint32(fd), unsafe.Pointer(&raw)))
}

func (wasiHost) PollerDelete(poller, fd int) error {
	return statusErr(poller_delete(uint32(poller), uint32(fd)))
}

// CounterCreate cannot fail: the host returns the handle directly.
func (wasiHost) CounterCreate() (int, error) {
	return int(wasi_eventfd()), nil
}

func counterStatus(s int32) error {
	switch s {
	case 0:
		return nil
	case 1:
		return iox.ErrWouldBlock
	}
	return syscall.Errno(s)
}

func (wasiHost) CounterWrite1(fd int) error {
	return counterStatus(wasi_eventfd_write1(uint32(fd)))
}

func (wasiHost) CounterRead(fd int) error {
	return counterStatus(wasi_eventfd_read(uint32(fd)))
}

func ciovecs(bufs [][]byte) []wasiCiovec {
	iovs := make([]wasiCiovec, 0, len(bufs))
	for _, b := range bufs {
		if len(b) == 0 {
			continue
		}
		iovs = append(iovs, wasiCiovec{
			buf:    uint32(uintptr(unsafe.Pointer(unsafe.SliceData(b)))),
			bufLen: uint32(len(b)),
		})
	}
	return iovs
}

func (wasiHost) Recv(fd int, bufs [][]byte, flags uint16) (int, error) {
	iovs := ciovecs(bufs)
	if len(iovs) == 0 {
		return 0, nil
	}
	var n uint32
	s := socket_recv(uint32(fd), unsafe.Pointer(&iovs[0]), uint32(len(iovs)), uint32(flags), unsafe.Pointer(&n))
	runtime.KeepAlive(bufs)
	if err := statusErr(s); err != nil {
		return 0, err
	}
	return int(n), nil
}

func (wasiHost) Send(fd int, bufs [][]byte, flags uint16) (int, error) {
	iovs := ciovecs(bufs)
	if len(iovs) == 0 {
		return 0, nil
	}
	var n uint32
	s := socket_send(uint32(fd), unsafe.Pointer(&iovs[0]), uint32(len(iovs)), uint32(flags), unsafe.Pointer(&n))
	runtime.KeepAlive(bufs)
	if err := statusErr(s); err != nil {
		return 0, err
	}
	return int(n), nil
}

func (wasiHost) Shutdown(fd int, how SdFlags) error {
	return statusErr(socket_shutdown(uint32(fd), uint32(how)))
}

func (wasiHost) TTL(fd int) (uint32, error) {
	var ttl uint32
	if err := statusErr(wasi_socket_ttl(uint32(fd), unsafe.Pointer(&ttl))); err != nil {
		return 0, err
	}
	return ttl, nil
}

func (wasiHost) SetTTL(fd int, ttl uint32) error {
	return statusErr(wasi_socket_set_ttl(uint32(fd), ttl))
}

func (wasiHost) Nodelay(fd int) (bool, error) {
	var v uint32
	if err := statusErr(wasi_socket_nodelay(uint32(fd), unsafe.Pointer(&v))); err != nil {
		return false, err
	}
	return v != 0, nil
}

func (wasiHost) SetNodelay(fd int, nodelay bool) error {
	var v uint32
	if nodelay {
		v = 1
	}
	return statusErr(wasi_socket_set_nodelay(uint32(fd), v))
}

func (wasiHost) Flush(fd int) error {
	return statusErr(wasi_socket_flush(uint32(fd)))
}

func (wasiHost) TakeError(fd int) (syscall.Errno, error) {
	var code uint32
	if err := statusErr(wasi_socket_take_error(uint32(fd), unsafe.Pointer(&code))); err != nil {
		return 0, err
	}
	return syscall.Errno(code), nil
}

func (wasiHost) NewV4Socket() (int, error) {
	var fd uint32
	if err := statusErr(wasi_new_v4_socket(unsafe.Pointer(&fd))); err != nil {
		return 0, err
	}
	return int(fd), nil
}

func (wasiHost) Connect(fd int, addr netip.AddrPort) error {
	sa := wasiSocketAddress{family: afInet, address: addr.Addr().As4(), port: addr.Port()}
	return status32(wasi_connect_socket(uint32(fd), unsafe.Pointer(&sa)))
}

func (wasiHost) Close(fd int) error {
	return statusErr(fd_close(uint32(fd)))
}
