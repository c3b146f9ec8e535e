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
	"errors"
	"fmt"
	"net/netip"
	"time"
)

// Client owns one SNTP transaction's worth of state: the server list, the
// wire buffer, the injected collaborators, and the bookkeeping needed to
// sequence a single in-flight request/response exchange. It supports
// exactly one outstanding request at a time; nothing in Client spawns a
// goroutine or holds a lock.
type Client struct {
	servers         []ServerInfo
	responseTimeout time.Duration
	buf             []byte
	packetSize      int
	collab          Collaborators

	currentServerIndex int
	currentServerAddr  netip.Addr
	lastRequestTime    Timestamp
	lastResponse       ResponseData

	sendRetryTimeout   time.Duration
	recvPollingTimeout time.Duration
}

// Option configures a Client at construction time.
type Option func(*Client)

// WithSendRetryTimeout overrides the default max duration of zero-progress
// send before SendTimeRequest gives up with ErrNetworkFailure.
func WithSendRetryTimeout(d time.Duration) Option {
	return func(c *Client) { c.sendRetryTimeout = d }
}

// WithRecvPollingTimeout overrides the default max zero-progress duration
// inside ReceiveTimeResponse's drain loop, measured from the last byte of
// progress.
func WithRecvPollingTimeout(d time.Duration) Option {
	return func(c *Client) { c.recvPollingTimeout = d }
}

// NewClient validates its inputs, copies them in, and returns a Client
// ready to issue its first request against servers[0].
//
// servers must be non-empty; buf must have capacity for at least
// PacketSizeBytes; collab's Resolver, Clock and Transport must be non-nil
// (Authenticator is optional).
func NewClient(servers []ServerInfo, responseTimeout time.Duration, buf []byte, collab Collaborators, opts ...Option) (*Client, error) {
	if len(servers) == 0 {
		return nil, fmt.Errorf("sntp: new client: no servers configured: %w", ErrBadParameter)
	}
	if cap(buf) < PacketSizeBytes {
		return nil, fmt.Errorf("sntp: new client: %w", ErrBufferTooSmall)
	}
	if err := collab.validate(); err != nil {
		return nil, fmt.Errorf("sntp: new client: missing collaborator: %w", err)
	}

	c := &Client{
		servers:            append([]ServerInfo(nil), servers...),
		responseTimeout:    responseTimeout,
		buf:                buf[:cap(buf)],
		packetSize:         PacketSizeBytes,
		collab:             collab,
		sendRetryTimeout:   defaultSendRetryTimeout,
		recvPollingTimeout: defaultRecvPollingTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// CurrentServerIndex reports which configured server the next
// SendTimeRequest will target; it equals len(servers) once every server
// has been tried and rejected, at which point the Client must be
// re-created via NewClient before another request can be sent.
func (c *Client) CurrentServerIndex() int { return c.currentServerIndex }

// SendTimeRequest resolves the current server, serializes a request built
// from the Clock's current reading and random, and sends it over the
// Transport, retrying zero-progress sends until SendRetryTimeout elapses.
//
// The server index is not advanced here — only ReceiveTimeResponse's
// rejection handling advances it.
func (c *Client) SendTimeRequest(ctx context.Context, random uint32) error {
	if c.currentServerIndex >= len(c.servers) {
		return fmt.Errorf("sntp: send request: %w", ErrChangeServer)
	}
	server := c.servers[c.currentServerIndex]

	addr, err := c.collab.Resolver.Resolve(ctx, server)
	if err != nil {
		return fmt.Errorf("sntp: send request: resolve %q: %w", server.Name, errors.Join(err, ErrDNSFailure))
	}
	c.currentServerAddr = addr

	c.lastRequestTime = c.collab.Clock.Now()
	if err := SerializeRequest(&c.lastRequestTime, random, c.buf); err != nil {
		return fmt.Errorf("sntp: send request: %w", err)
	}
	c.packetSize = PacketSizeBytes

	if c.collab.Authenticator != nil {
		n, err := c.collab.Authenticator.GenerateClientAuth(server, c.buf)
		if err != nil {
			return fmt.Errorf("sntp: send request: generate auth: %w", errors.Join(err, ErrAuthFailure))
		}
		if n > len(c.buf)-PacketSizeBytes {
			return fmt.Errorf("sntp: send request: auth trailer of %d bytes: %w", n, ErrBufferTooSmall)
		}
		c.packetSize = PacketSizeBytes + n
	}

	c.collab.Observer.trace(LevelDebug, "sending sntp request", map[string]any{
		"server": server.Name, "bytes": c.packetSize,
	})

	return c.sendAll(ctx, server, c.buf[:c.packetSize])
}

// sendAll implements the retryable send loop of §4.5.2: progress resets
// the retry clock, would-block accumulates against SendRetryTimeout.
func (c *Client) sendAll(ctx context.Context, server ServerInfo, out []byte) error {
	lastSendTime := c.collab.Clock.Now()
	for len(out) > 0 {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("sntp: send request: %w", errors.Join(err, ErrNetworkFailure))
		}
		n, err := c.collab.Transport.SendTo(ctx, c.currentServerAddr, server.port(), out)
		if err != nil {
			return fmt.Errorf("sntp: send request: %w", errors.Join(err, ErrNetworkFailure))
		}
		if n > 0 {
			out = out[n:]
			lastSendTime = c.collab.Clock.Now()
			continue
		}
		now := c.collab.Clock.Now()
		if elapsedMillisSince(lastSendTime, now) >= c.sendRetryTimeout.Milliseconds() {
			return fmt.Errorf("sntp: send request: no progress for %s: %w", c.sendRetryTimeout, ErrNetworkFailure)
		}
	}
	return nil
}

// ReceiveTimeResponse polls for a response, blocking the caller for at
// most blockTime, but never past ResponseTimeout measured from the
// request's send time. See §4.5.3 for the exact state sequence.
func (c *Client) ReceiveTimeResponse(ctx context.Context, blockTime time.Duration) error {
	if c.currentServerIndex >= len(c.servers) {
		return fmt.Errorf("sntp: receive response: %w", ErrChangeServer)
	}
	server := c.servers[c.currentServerIndex]
	loopStart := c.collab.Clock.Now()

	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("sntp: receive response: %w", errors.Join(err, ErrNetworkFailure))
		}
		now := c.collab.Clock.Now()
		if elapsedMillisSince(c.lastRequestTime, now) >= c.responseTimeout.Milliseconds() {
			return fmt.Errorf("sntp: receive response: %w", ErrResponseTimeout)
		}
		if elapsedMillisSince(loopStart, now) >= blockTime.Milliseconds() {
			return fmt.Errorf("sntp: receive response: %w", ErrNoResponseReceived)
		}

		n, err := c.collab.Transport.RecvFrom(ctx, c.currentServerAddr, server.port(), c.buf[:1])
		if err != nil {
			return fmt.Errorf("sntp: receive response: %w", errors.Join(err, ErrNetworkFailure))
		}
		if n == 0 {
			continue
		}

		if err := c.drain(ctx, server); err != nil {
			return err
		}
		return c.handleResponse(server)
	}
}

// drain reads the remaining packetSize-1 bytes after the 1-byte
// availability probe has already landed byte 0, failing with
// ErrNetworkFailure if no further progress arrives within
// RecvPollingTimeout of the last byte received.
func (c *Client) drain(ctx context.Context, server ServerInfo) error {
	filled := 1
	lastProgress := c.collab.Clock.Now()
	for filled < c.packetSize {
		n, err := c.collab.Transport.RecvFrom(ctx, c.currentServerAddr, server.port(), c.buf[filled:c.packetSize])
		if err != nil {
			return fmt.Errorf("sntp: receive response: drain: %w", errors.Join(err, ErrNetworkFailure))
		}
		if n > 0 {
			filled += n
			lastProgress = c.collab.Clock.Now()
			continue
		}
		now := c.collab.Clock.Now()
		if elapsedMillisSince(lastProgress, now) >= c.recvPollingTimeout.Milliseconds() {
			return fmt.Errorf("sntp: receive response: drain: no progress for %s: %w", c.recvPollingTimeout, ErrNetworkFailure)
		}
	}
	return nil
}

// handleResponse validates auth (if configured), deserializes the packet,
// rotates the server index on rejection, and applies the result to the
// Clock on success.
func (c *Client) handleResponse(server ServerInfo) error {
	if c.collab.Authenticator != nil {
		if err := c.collab.Authenticator.ValidateServerAuth(server, c.buf[:c.packetSize]); err != nil {
			return fmt.Errorf("sntp: receive response: validate auth: %w", err)
		}
	}

	t4 := c.collab.Clock.Now()
	resp, err := DeserializeResponse(c.lastRequestTime, t4, c.buf[:PacketSizeBytes])

	switch {
	case errors.Is(err, ErrRejectedChangeServer), errors.Is(err, ErrRejectedRetryWithBackoff), errors.Is(err, ErrRejectedOtherCode):
		c.currentServerIndex++
		c.collab.Observer.trace(LevelInfo, "server rejected request", map[string]any{
			"server": server.Name, "code": fmt.Sprintf("%08x", resp.RejectedResponseCode),
		})
		return fmt.Errorf("sntp: receive response: %w", errors.Join(err, ErrRejectedResponse))
	case errors.Is(err, ErrInvalidResponse):
		return fmt.Errorf("sntp: receive response: %w", err)
	case errors.Is(err, ErrClockOffsetOverflow):
		c.collab.Observer.trace(LevelWarn, "clock offset overflow, trusting server_time only", map[string]any{
			"server": server.Name,
		})
	case err != nil:
		return fmt.Errorf("sntp: receive response: %w", err)
	}

	c.lastResponse = resp
	c.collab.Clock.Set(server, resp.ServerTime, resp.ClockOffsetSec, resp.Leap)
	return nil
}

// LastResponse returns the ResponseData from the most recent transaction
// that reached Clock.Set, i.e. the last StatusSuccess or
// StatusClockOffsetOverflow outcome. Its zero value is returned if no
// transaction has succeeded yet.
func (c *Client) LastResponse() ResponseData {
	return c.lastResponse
}
