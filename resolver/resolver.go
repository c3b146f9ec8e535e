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

// Package resolver implements the sntp.Resolver collaborator over the
// standard library's DNS client.
package resolver

import (
	"context"
	"fmt"
	"net"
	"net/netip"

	"github.com/coresync/sntp/sntp"
)

// DNS resolves ServerInfo.Name to a netip.Addr, preferring a literal IP
// address (no DNS round trip) and otherwise taking the first address
// LookupNetIP returns for the requested network.
type DNS struct {
	// Network restricts the lookup to "ip4" or "ip6"; "ip" (the zero
	// value) accepts either family.
	Network string
	// Resolver is the underlying net.Resolver to use; nil selects
	// net.DefaultResolver.
	Resolver *net.Resolver
}

func (d DNS) resolver() *net.Resolver {
	if d.Resolver != nil {
		return d.Resolver
	}
	return net.DefaultResolver
}

func (d DNS) network() string {
	if d.Network == "" {
		return "ip"
	}
	return d.Network
}

// Resolve implements sntp.Resolver.
func (d DNS) Resolve(ctx context.Context, server sntp.ServerInfo) (netip.Addr, error) {
	if addr, err := netip.ParseAddr(server.Name); err == nil {
		return addr, nil
	}

	addrs, err := d.resolver().LookupNetIP(ctx, d.network(), server.Name)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("resolver: lookup %q: %w", server.Name, err)
	}
	if len(addrs) == 0 {
		return netip.Addr{}, fmt.Errorf("resolver: lookup %q: no addresses returned", server.Name)
	}
	return addrs[0], nil
}
