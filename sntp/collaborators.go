/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package sntp

import (
	"context"
	"net/netip"
)

// Resolver turns a configured server's display name into an address the
// Transport can send to. A non-nil error is reported to the caller as
// ErrDNSFailure; the current server is not advanced on this failure (the
// caller may simply retry).
type Resolver interface {
	Resolve(ctx context.Context, server ServerInfo) (netip.Addr, error)
}

// Clock is the host's time source and sink. Now must be cheap and
// monotonic enough that the millisecond differences the Client computes
// against it are meaningful; Set is the point where a caller applies the
// computed offset, e.g. by slewing or stepping the system clock.
type Clock interface {
	Now() Timestamp
	Set(server ServerInfo, serverTime Timestamp, offsetSec int32, leap LeapIndicator)
}

// Transport is a non-blocking datagram transport. SendTo/RecvFrom follow
// the same three-way contract as the distilled spec's C function
// pointers: (n > 0, nil) is progress, (0, nil) is would-block, and any
// non-nil error is terminal and mapped to ErrNetworkFailure.
type Transport interface {
	SendTo(ctx context.Context, addr netip.Addr, port uint16, buf []byte) (int, error)
	RecvFrom(ctx context.Context, addr netip.Addr, port uint16, buf []byte) (int, error)
}

// Authenticator is the optional symmetric-key authentication hook.
// GenerateClientAuth appends its trailer to buf after PacketSizeBytes and
// reports how many bytes it wrote; ValidateServerAuth checks the full
// packet (including that trailer) against the expected server signature.
type Authenticator interface {
	GenerateClientAuth(server ServerInfo, buf []byte) (n int, err error)
	ValidateServerAuth(server ServerInfo, buf []byte) error
}

// Collaborators bundles every capability a Client needs from its host.
// Authenticator is optional: leave it nil to run unauthenticated.
type Collaborators struct {
	Resolver      Resolver
	Clock         Clock
	Transport     Transport
	Authenticator Authenticator
	// Observer, if set, receives a level-gated structured trace of each
	// state transition. See observer.go.
	Observer Observer
}

func (c Collaborators) validate() error {
	if c.Resolver == nil || c.Clock == nil || c.Transport == nil {
		return ErrBadParameter
	}
	return nil
}
