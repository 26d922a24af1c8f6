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
	"errors"
	"fmt"
	"syscall"
)

var (
	// ErrUnsupported is returned by every socket helper the wasi host has no call for.
	// It matches errors.ErrUnsupported.
	ErrUnsupported = fmt.Errorf("not supported on wasi: %w", errors.ErrUnsupported)

	// ErrNotImplemented is returned by operations the backend could support but does not,
	// currently Peek and IPv6 connect. It never matches ErrUnsupported.
	ErrNotImplemented = errors.New("wasipoll: not implemented")

	// ErrEmptyInterest is returned when registering without readable or writable interest.
	ErrEmptyInterest = errors.New("wasipoll: empty interest")

	// ErrReservedToken is returned when registering a handler under WakerToken.
	ErrReservedToken = errors.New("wasipoll: token reserved for the event loop waker")

	// ErrLoopClosed is returned by an EventLoop after Shutdown.
	ErrLoopClosed = errors.New("wasipoll: event loop closed")
)

// ABIError is a nonzero status returned by a host call.
type ABIError struct {
	Op    string
	Errno syscall.Errno
}

func (e *ABIError) Error() string {
	return fmt.Sprintf("wasipoll: %s: %s (errno %d)", e.Op, e.Errno.Error(), uint32(e.Errno))
}

// Unwrap exposes the raw errno so errors.Is(err, syscall.EBADF) and friends work.
func (e *ABIError) Unwrap() error {
	return e.Errno
}

// Code returns the raw host status.
func (e *ABIError) Code() uint32 {
	return uint32(e.Errno)
}

// errno converts a host status into an error, nil for success.
func errno(op string, status uint32) error {
	if status == 0 {
		return nil
	}
	return &ABIError{Op: op, Errno: syscall.Errno(status)}
}

// status32 converts a full 32-bit host status, for calls that do not return a
// 16-bit errno.
func status32(s uint32) error {
	if s == 0 {
		return nil
	}
	return syscall.Errno(s)
}

// wrapErrno converts an error carrying a syscall.Errno into an *ABIError.
// Anything else passes through untouched.
func wrapErrno(op string, err error) error {
	if err == nil {
		return nil
	}
	var en syscall.Errno
	if errors.As(err, &en) {
		if en == 0 {
			return nil
		}
		return &ABIError{Op: op, Errno: en}
	}
	return err
}
