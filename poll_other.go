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

//go:build !linux && !wasip1

package wasipoll

import (
	"net/netip"
	"syscall"
)

func openHost() Host {
	return noHost{}
}

// noHost backs platforms without a host implementation.
type noHost struct{}

func (noHost) PollerCreate() (int, error) { return 0, ErrUnsupported }
func (noHost) PollerWait(int, []Event) (int, error) { return 0, ErrUnsupported }
func (noHost) PollerAdd(int, int, Event) error { return ErrUnsupported }
func (noHost) PollerModify(int, int, Event) error { return ErrUnsupported }
func (noHost) PollerDelete(int, int) error { return ErrUnsupported }
func (noHost) CounterCreate() (int, error) { return 0, ErrUnsupported }
func (noHost) CounterWrite1(int) error { return ErrUnsupported }
func (noHost) CounterRead(int) error { return ErrUnsupported }
func (noHost) Recv(int, [][]byte, uint16) (int, error) { return 0, ErrUnsupported }
func (noHost) Send(int, [][]byte, uint16) (int, error) { return 0, ErrUnsupported }
func (noHost) Shutdown(int, SdFlags) error { return ErrUnsupported }
func (noHost) TTL(int) (uint32, error) { return 0, ErrUnsupported }
func (noHost) SetTTL(int, uint32) error { return ErrUnsupported }
func (noHost) Nodelay(int) (bool, error) { return false, ErrUnsupported }
func (noHost) SetNodelay(int, bool) error { return ErrUnsupported }
func (noHost) Flush(int) error { return ErrUnsupported }
func (noHost) TakeError(int) (syscall.Errno, error) { return 0, ErrUnsupported }
func (noHost) NewV4Socket() (int, error) { return 0, ErrUnsupported }
func (noHost) Connect(int, netip.AddrPort) error { return ErrUnsupported }
func (noHost) Close(int) error { return ErrUnsupported }
