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

//go:build linux

package wasipoll

import (
	"encoding/binary"
	"net/netip"
	"syscall"

	"code.hybscloud.com/iox"
	"github.com/bytedance/gopkg/lang/mcache"
	"golang.org/x/sys/unix"
)

// openHost returns the native Linux host: epoll for the poller, eventfd for
// the counter and plain sockets for streams.
func openHost() Host {
	return linuxHost{}
}

// NewLinuxHost returns the native Linux host.
func NewLinuxHost() Host {
	return linuxHost{}
}

type linuxHost struct{}

var _ Host = linuxHost{}

func (linuxHost) PollerCreate() (int, error) {
	return unix.EpollCreate1(unix.EPOLL_CLOEXEC)
}

func (linuxHost) PollerWait(poller int, events []Event) (int, error) {
	return EpollWait(poller, events)
}

func (linuxHost) PollerAdd(poller, fd int, ev Event) error {
	return EpollCtl(poller, unix.EPOLL_CTL_ADD, fd, ev)
}

func (linuxHost) PollerModify(poller, fd int, ev Event) error {
	return EpollCtl(poller, unix.EPOLL_CTL_MOD, fd, ev)
}

func (linuxHost) PollerDelete(poller, fd int) error {
	return EpollCtl(poller, unix.EPOLL_CTL_DEL, fd, Event{})
}

func (linuxHost) CounterCreate() (int, error) {
	return unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
}

// CounterWrite1 adds one; eventfd only refuses a write that would overflow.
func (linuxHost) CounterWrite1(fd int) error {
	buf := mcache.Malloc(8)
	defer mcache.Free(buf)
	binary.NativeEndian.PutUint64(buf, 1)
	_, err := unix.Write(fd, buf)
	if err == unix.EAGAIN {
		return iox.ErrWouldBlock
	}
	return err
}

func (linuxHost) CounterRead(fd int) error {
	buf := mcache.Malloc(8)
	defer mcache.Free(buf)
	_, err := unix.Read(fd, buf)
	if err == unix.EAGAIN {
		return iox.ErrWouldBlock
	}
	return err
}

func (linuxHost) Recv(fd int, bufs [][]byte, flags uint16) (int, error) {
	return unix.Readv(fd, bufs)
}

func (linuxHost) Send(fd int, bufs [][]byte, flags uint16) (int, error) {
	return unix.Writev(fd, bufs)
}

func (linuxHost) Shutdown(fd int, how SdFlags) error {
	var flag int
	switch how {
	case SdRD:
		flag = unix.SHUT_RD
	case SdWR:
		flag = unix.SHUT_WR
	case SdRD | SdWR:
		flag = unix.SHUT_RDWR
	default:
		return unix.EINVAL
	}
	return unix.Shutdown(fd, flag)
}

func (linuxHost) TTL(fd int) (uint32, error) {
	ttl, err := unix.GetsockoptInt(fd, unix.IPPROTO_IP, unix.IP_TTL)
	return uint32(ttl), err
}

func (linuxHost) SetTTL(fd int, ttl uint32) error {
	return unix.SetsockoptInt(fd, unix.IPPROTO_IP, unix.IP_TTL, int(ttl))
}

func (linuxHost) Nodelay(fd int) (bool, error) {
	v, err := unix.GetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_NODELAY)
	return v != 0, err
}

func (linuxHost) SetNodelay(fd int, nodelay bool) error {
	v := 0
	if nodelay {
		v = 1
	}
	return unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_NODELAY, v)
}

// Flush is a no-op: the kernel sends as soon as it can.
func (linuxHost) Flush(fd int) error {
	return nil
}

func (linuxHost) TakeError(fd int) (syscall.Errno, error) {
	code, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_ERROR)
	if err != nil {
		return 0, err
	}
	return syscall.Errno(code), nil
}

func (linuxHost) NewV4Socket() (int, error) {
	return unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
}

// Connect starts a non-blocking connect. EINPROGRESS counts as success; the
// outcome is read later through TakeError once the socket turns writable.
func (linuxHost) Connect(fd int, addr netip.AddrPort) error {
	sa := &unix.SockaddrInet4{Port: int(addr.Port()), Addr: addr.Addr().As4()}
	err := unix.Connect(fd, sa)
	if err == unix.EINPROGRESS {
		return nil
	}
	return err
}

func (linuxHost) Close(fd int) error {
	return unix.Close(fd)
}
