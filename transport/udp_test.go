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

package transport

import (
	"context"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRecvFromReturnsZeroWhenNothingQueued(t *testing.T) {
	conn, err := Listen("127.0.0.1:0")
	require.NoError(t, err)
	defer conn.Close()

	buf := make([]byte, 48)
	n, err := conn.RecvFrom(context.Background(), netip.MustParseAddr("127.0.0.1"), 0, buf)
	require.NoError(t, err)
	require.Equal(t, 0, n)
}

func TestSendToContextCanceled(t *testing.T) {
	conn, err := Listen("127.0.0.1:0")
	require.NoError(t, err)
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = conn.SendTo(ctx, netip.MustParseAddr("127.0.0.1"), 123, make([]byte, 48))
	require.Error(t, err)
}

func TestUDPRoundTripViaAddrPort(t *testing.T) {
	server, err := Listen("127.0.0.1:0")
	require.NoError(t, err)
	defer server.Close()
	client, err := Listen("127.0.0.1:0")
	require.NoError(t, err)
	defer client.Close()

	serverAddr := server.localAddrPort()
	loopback := netip.MustParseAddr("127.0.0.1")

	msg := []byte("sntp-round-trip")
	require.Eventually(t, func() bool {
		n, err := client.SendTo(context.Background(), loopback, serverAddr.Port(), msg)
		return err == nil && n == len(msg)
	}, time.Second, time.Millisecond)

	buf := make([]byte, 64)
	require.Eventually(t, func() bool {
		n, err := server.RecvFrom(context.Background(), loopback, client.localAddrPort().Port(), buf)
		return err == nil && n == len(msg)
	}, time.Second, time.Millisecond)
}
