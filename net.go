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
	"net/netip"
	"time"
)

// The host can create an IPv4 TCP socket and connect it. Everything else a
// socket layer usually offers returns ErrUnsupported.

// TCPKeepalive holds keepalive parameters.
type TCPKeepalive struct {
	Time     time.Duration
	Interval time.Duration
	Retries  uint32
}

// TCPSocket is an unconnected TCP socket handle.
type TCPSocket struct {
	fd   int
	host SocketHost
}

// NewTCPSocketV4 creates an IPv4 TCP socket on the host.
func NewTCPSocketV4(ops ...Option) (*TCPSocket, error) {
	host := resolveOptions(ops).socketHost()
	fd, err := host.NewV4Socket()
	if err != nil {
		return nil, wrapErrno("new_v4_socket", err)
	}
	return &TCPSocket{fd: fd, host: host}, nil
}

// NewTCPSocketV6 is unsupported.
func NewTCPSocketV6(ops ...Option) (*TCPSocket, error) {
	return nil, ErrUnsupported
}

// TCPSocketFromFd wraps an existing socket handle.
func TCPSocketFromFd(fd int, ops ...Option) *TCPSocket {
	return &TCPSocket{fd: fd, host: resolveOptions(ops).socketHost()}
}

// Fd returns the socket handle.
func (s *TCPSocket) Fd() int { return s.fd }

// Connect connects to an IPv4 address and returns the stream. IPv6 addresses
// return ErrNotImplemented.
func (s *TCPSocket) Connect(addr netip.AddrPort) (*TCPStream, error) {
	if !addr.Addr().Unmap().Is4() {
		return nil, ErrNotImplemented
	}
	addr = netip.AddrPortFrom(addr.Addr().Unmap(), addr.Port())
	if err := s.host.Connect(s.fd, addr); err != nil {
		return nil, wrapErrno("connect_socket", err)
	}
	return &TCPStream{fd: s.fd, host: s.host}, nil
}

// Close releases the socket handle. Errors are ignored.
func (s *TCPSocket) Close() {
	_ = s.host.Close(s.fd)
}

func (s *TCPSocket) Bind(addr netip.AddrPort) error { return ErrUnsupported }

func (s *TCPSocket) Listen(backlog uint32) (*TCPListener, error) { return nil, ErrUnsupported }

func (s *TCPSocket) SetReuseAddr(reuse bool) error { return ErrUnsupported }

func (s *TCPSocket) ReuseAddr() (bool, error) { return false, ErrUnsupported }

func (s *TCPSocket) LocalAddr() (netip.AddrPort, error) { return netip.AddrPort{}, ErrUnsupported }

func (s *TCPSocket) SetLinger(d *time.Duration) error { return ErrUnsupported }

func (s *TCPSocket) Linger() (*time.Duration, error) { return nil, ErrUnsupported }

func (s *TCPSocket) SetKeepalive(keepalive bool) error { return ErrUnsupported }

func (s *TCPSocket) Keepalive() (bool, error) { return false, ErrUnsupported }

func (s *TCPSocket) SetKeepaliveParams(k TCPKeepalive) error { return ErrUnsupported }

func (s *TCPSocket) KeepaliveTime() (*time.Duration, error) { return nil, ErrUnsupported }

func (s *TCPSocket) SetRecvBufferSize(size uint32) error { return ErrUnsupported }

func (s *TCPSocket) RecvBufferSize() (uint32, error) { return 0, ErrUnsupported }

func (s *TCPSocket) SetSendBufferSize(size uint32) error { return ErrUnsupported }

func (s *TCPSocket) SendBufferSize() (uint32, error) { return 0, ErrUnsupported }

// TCPListener exists for API symmetry; Listen never returns one.
type TCPListener struct {
	fd int
}

// Accept is unsupported.
func (l *TCPListener) Accept() (*TCPStream, netip.AddrPort, error) {
	return nil, netip.AddrPort{}, ErrUnsupported
}

// UDPSocket is a UDP socket handle.
type UDPSocket struct {
	fd int
}

// BindUDP is unsupported.
func BindUDP(addr netip.AddrPort) (*UDPSocket, error) {
	return nil, ErrUnsupported
}

// OnlyV6 is unsupported.
func (u *UDPSocket) OnlyV6() (bool, error) {
	return false, ErrUnsupported
}
