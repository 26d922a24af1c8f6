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
	"golang.org/x/sys/unix"
)

// EPOLLONESHOT gives epoll the same single-shot behaviour as the wasi poller:
// after one event the handle is disabled until EPOLL_CTL_MOD re-arms it.
const epollOneshot = unix.EPOLLONESHOT

// EpollCtl implements epoll_ctl for a token-carrying event.
func EpollCtl(epfd int, op int, fd int, ev Event) error {
	var evt unix.EpollEvent
	evt.Events = epollOneshot
	if ev.readable {
		evt.Events |= unix.EPOLLIN | unix.EPOLLRDHUP
	}
	if ev.writable {
		evt.Events |= unix.EPOLLOUT
	}
	// The data word holds the token, not the fd.
	evt.Fd = int32(ev.token)
	if op == unix.EPOLL_CTL_DEL {
		return unix.EpollCtl(epfd, op, fd, nil)
	}
	return unix.EpollCtl(epfd, op, fd, &evt)
}

// EpollWait implements epoll_wait without a timeout, retrying on EINTR.
func EpollWait(epfd int, events []Event) (n int, err error) {
	if len(events) == 0 {
		return 0, nil
	}
	var stack [DefaultEventCapacity]unix.EpollEvent
	raw := stack[:]
	if len(events) > len(raw) {
		raw = make([]unix.EpollEvent, len(events))
	}
	raw = raw[:len(events)]
	for {
		n, err = unix.EpollWait(epfd, raw, -1)
		if err != unix.EINTR {
			break
		}
	}
	if err != nil {
		return 0, err
	}
	for i := 0; i < n; i++ {
		events[i] = Event{
			token:    Token(uint32(raw[i].Fd)),
			readable: raw[i].Events&(unix.EPOLLIN|unix.EPOLLRDHUP) != 0,
			writable: raw[i].Events&unix.EPOLLOUT != 0,
		}
	}
	return n, nil
}
