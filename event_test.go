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
	"math"
	"syscall"
	"testing"

	"code.hybscloud.com/iox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventPredicatesAlwaysFalse(t *testing.T) {
	tokens := []Token{0, 1, 42, WakerToken, math.MaxUint32}
	for _, tok := range tokens {
		for _, readable := range []bool{false, true} {
			for _, writable := range []bool{false, true} {
				ev := NewEvent(tok, readable, writable)
				assert.Equal(t, tok, ev.Token())
				assert.Equal(t, readable, ev.IsReadable())
				assert.Equal(t, writable, ev.IsWritable())
				assert.False(t, ev.IsError())
				assert.False(t, ev.IsReadClosed())
				assert.False(t, ev.IsWriteClosed())
				assert.False(t, ev.IsPriority())
				assert.False(t, ev.IsAIO())
				assert.False(t, ev.IsLIO())
			}
		}
	}
	assert.Equal(t, "Event{token: 3, readable: true, writable: false}", NewEvent(3, true, false).String())
}

func TestInterest(t *testing.T) {
	both := Readable.Add(Writable)
	assert.True(t, both.IsReadable())
	assert.True(t, both.IsWritable())
	assert.Equal(t, Writable, both.Remove(Readable))
	assert.Equal(t, "READABLE | WRITABLE", both.String())
	assert.Equal(t, "READABLE", Readable.String())
	assert.Equal(t, "WRITABLE", Writable.String())
	assert.Equal(t, "EMPTY", Interest(0).String())

	assert.Equal(t, Interest(0), interestOf(false, false))
	assert.Equal(t, Readable, interestOf(true, false))
	assert.Equal(t, both, interestOf(true, true))
}

func TestEvents(t *testing.T) {
	events := NewEvents(4)
	assert.True(t, events.IsEmpty())
	assert.Equal(t, 4, cap(events))

	events = append(events, NewEvent(1, true, false), NewEvent(2, false, true))
	assert.Equal(t, 2, events.Len())
	events.Clear()
	assert.True(t, events.IsEmpty())
	assert.Equal(t, 4, cap(events))
}

func TestErrno(t *testing.T) {
	assert.NoError(t, errno("poller_add", 0))

	err := errno("poller_add", uint32(syscall.EBADF))
	var abi *ABIError
	require.True(t, errors.As(err, &abi))
	assert.Equal(t, "poller_add", abi.Op)
	assert.Equal(t, uint32(syscall.EBADF), abi.Code())
	assert.ErrorIs(t, err, syscall.EBADF)
	assert.Contains(t, err.Error(), "poller_add")
}

func TestStatus32(t *testing.T) {
	assert.NoError(t, status32(0))
	assert.Equal(t, syscall.Errno(0x10000), status32(0x10000))
	assert.ErrorIs(t, status32(uint32(syscall.ECONNREFUSED)), syscall.ECONNREFUSED)
}

func TestWrapErrno(t *testing.T) {
	assert.NoError(t, wrapErrno("op", nil))
	assert.NoError(t, wrapErrno("op", syscall.Errno(0)))
	assert.ErrorIs(t, wrapErrno("op", iox.ErrWouldBlock), iox.ErrWouldBlock)

	plain := errors.New("plain")
	assert.Equal(t, plain, wrapErrno("op", plain))

	err := wrapErrno("socket_recv", syscall.EAGAIN)
	var abi *ABIError
	require.ErrorAs(t, err, &abi)
	assert.Equal(t, "socket_recv", abi.Op)
	assert.Equal(t, syscall.EAGAIN, abi.Errno)
}

func TestErrorKindsAreDistinct(t *testing.T) {
	assert.ErrorIs(t, ErrUnsupported, errors.ErrUnsupported)
	assert.NotErrorIs(t, ErrNotImplemented, ErrUnsupported)
	assert.NotErrorIs(t, ErrNotImplemented, errors.ErrUnsupported)
	assert.NotErrorIs(t, ErrEmptyInterest, ErrUnsupported)
}
