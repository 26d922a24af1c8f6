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
	"io"
	"net/netip"
)

// Shutdown selects which halves of a stream to shut down.
type Shutdown int

const (
	ShutdownRead Shutdown = iota
	ShutdownWrite
	ShutdownBoth
)

// sdflags maps a direction to the host shutdown flag.
func (how Shutdown) sdflags() (SdFlags, error) {
	switch how {
	case ShutdownRead:
		return SdRD, nil
	case ShutdownWrite:
		return SdWR, nil
	case ShutdownBoth:
		return SdRD | SdWR, nil
	}
	return 0, fmt.Errorf("wasipoll: invalid shutdown direction %d", int(how))
}

// placeholderAddr is what PeerAddr and LocalAddr report. The host offers no
// address query.
var placeholderAddr = netip.AddrPortFrom(netip.IPv4Unspecified(), 0)

// TCPStream passes reads, writes and socket options straight to the host.
// It does not buffer and is not closed implicitly.
type TCPStream struct {
	fd   int
	host SocketHost
}

// NewTCPStream wraps a connected, non-blocking socket handle.
func NewTCPStream(fd int, ops ...Option) *TCPStream {
	return &TCPStream{fd: fd, host: resolveOptions(ops).socketHost()}
}

// Fd returns the socket handle.
func (s *TCPStream) Fd() int { return s.fd }

// Read receives into p. A zero-byte receive into a non-empty p is io.EOF.
func (s *TCPStream) Read(p []byte) (int, error) {
	return s.recv([][]byte{p}, len(p))
}

// ReadVectored receives into bufs with a single host call.
func (s *TCPStream) ReadVectored(bufs [][]byte) (int, error) {
	size := 0
	for _, b := range bufs {
		size += len(b)
	}
	return s.recv(bufs, size)
}

func (s *TCPStream) recv(bufs [][]byte, size int) (int, error) {
	n, err := s.host.Recv(s.fd, bufs, 0)
	if err != nil {
		return 0, wrapErrno("socket_recv", err)
	}
	if n == 0 && size > 0 {
		return 0, io.EOF
	}
	return n, nil
}

// Write sends p.
func (s *TCPStream) Write(p []byte) (int, error) {
	return s.WriteVectored([][]byte{p})
}

// WriteVectored sends bufs with a single host call.
func (s *TCPStream) WriteVectored(bufs [][]byte) (int, error) {
	n, err := s.host.Send(s.fd, bufs, 0)
	if err != nil {
		return 0, wrapErrno("socket_send", err)
	}
	return n, nil
}

// Peek is not implemented on this backend and never reads.
func (s *TCPStream) Peek(p []byte) (int, error) {
	return 0, ErrNotImplemented
}

// TTL returns the IP time-to-live of outgoing packets.
func (s *TCPStream) TTL() (uint32, error) {
	ttl, err := s.host.TTL(s.fd)
	return ttl, wrapErrno("socket_ttl", err)
}

// SetTTL sets the IP time-to-live of outgoing packets.
func (s *TCPStream) SetTTL(ttl uint32) error {
	return wrapErrno("socket_set_ttl", s.host.SetTTL(s.fd, ttl))
}

// Nodelay reports whether Nagle's algorithm is disabled.
func (s *TCPStream) Nodelay() (bool, error) {
	nodelay, err := s.host.Nodelay(s.fd)
	return nodelay, wrapErrno("socket_nodelay", err)
}

// SetNodelay disables Nagle's algorithm when nodelay is true.
func (s *TCPStream) SetNodelay(nodelay bool) error {
	return wrapErrno("socket_set_nodelay", s.host.SetNodelay(s.fd, nodelay))
}

// Flush asks the host to push out pending data.
func (s *TCPStream) Flush() error {
	return wrapErrno("socket_flush", s.host.Flush(s.fd))
}

// Shutdown shuts down one or both halves of the stream.
func (s *TCPStream) Shutdown(how Shutdown) error {
	flags, err := how.sdflags()
	if err != nil {
		return err
	}
	return wrapErrno("socket_shutdown", s.host.Shutdown(s.fd, flags))
}

// TakeError returns and clears the pending socket error. sockErr is nil when no
// error is pending; err is set only when the query itself failed.
func (s *TCPStream) TakeError() (sockErr error, err error) {
	code, err := s.host.TakeError(s.fd)
	if err != nil {
		return nil, wrapErrno("socket_take_error", err)
	}
	if code == 0 {
		return nil, nil
	}
	return &ABIError{Op: "take_error", Errno: code}, nil
}

// PeerAddr always returns 0.0.0.0:0; the real peer is not resolved.
func (s *TCPStream) PeerAddr() (netip.AddrPort, error) {
	return placeholderAddr, nil
}

// LocalAddr always returns 0.0.0.0:0; the real address is not resolved.
func (s *TCPStream) LocalAddr() (netip.AddrPort, error) {
	return placeholderAddr, nil
}

// Close releases the socket handle.
func (s *TCPStream) Close() error {
	return wrapErrno("fd_close", s.host.Close(s.fd))
}
