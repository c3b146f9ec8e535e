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

// Package transport implements the sntp.Transport collaborator over a
// single shared, non-blocking UDP socket.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// UDP is a non-blocking sntp.Transport backed by one unconnected UDP
// socket, suitable for talking to many servers without allocating a
// connection per peer.
//
// Every SendTo/RecvFrom call sets an immediate (already-past) deadline
// before issuing its syscall: a kernel buffer with no room, or a socket
// with nothing queued, surfaces as a timeout, which this type translates
// to (0, nil) — would-block — rather than an error. This mirrors the
// three-way SendTo/RecvFrom contract sntp.Client is built around.
type UDP struct {
	conn *net.UDPConn
}

// Listen opens a UDP socket bound to localAddr (use ":0" for an ephemeral
// client port).
func Listen(localAddr string) (*UDP, error) {
	addr, err := net.ResolveUDPAddr("udp", localAddr)
	if err != nil {
		return nil, fmt.Errorf("transport: resolve local address %q: %w", localAddr, err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("transport: listen %q: %w", localAddr, err)
	}
	return &UDP{conn: conn}, nil
}

// Close releases the underlying socket.
func (u *UDP) Close() error {
	return u.conn.Close()
}

// localAddrPort reports the socket's bound address, mainly useful in tests
// that bind to an ephemeral port.
func (u *UDP) localAddrPort() netip.AddrPort {
	return u.conn.LocalAddr().(*net.UDPAddr).AddrPort()
}

func wouldBlock(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, os.ErrDeadlineExceeded) || errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK)
}

// SendTo implements sntp.Transport.
func (u *UDP) SendTo(ctx context.Context, addr netip.Addr, port uint16, buf []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := u.conn.SetWriteDeadline(time.Now()); err != nil {
		return 0, fmt.Errorf("transport: set write deadline: %w", err)
	}
	n, err := u.conn.WriteToUDPAddrPort(buf, netip.AddrPortFrom(addr, port))
	if err != nil {
		if wouldBlock(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("transport: send to %s: %w", addr, err)
	}
	return n, nil
}

// RecvFrom implements sntp.Transport. The sender address is not checked
// against addr/port here: DeserializeResponse's originate-timestamp echo
// check is what actually authenticates the response as belonging to this
// transaction, matching how the reference client treats the source
// address as informational only.
func (u *UDP) RecvFrom(ctx context.Context, _ netip.Addr, _ uint16, buf []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := u.conn.SetReadDeadline(time.Now()); err != nil {
		return 0, fmt.Errorf("transport: set read deadline: %w", err)
	}
	n, _, err := u.conn.ReadFromUDPAddrPort(buf)
	if err != nil {
		if wouldBlock(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("transport: recv: %w", err)
	}
	return n, nil
}
