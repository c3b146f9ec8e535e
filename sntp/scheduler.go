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
	"math/rand"
	"time"
)

// Scheduler drives repeated SNTP transactions against a Client at a fixed
// poll interval, rebuilding the Client from scratch whenever its server
// list is exhausted (ErrChangeServer).
type Scheduler struct {
	newClient func() (*Client, error)
	interval  time.Duration
	blockTime time.Duration
}

// NewScheduler builds a Scheduler that calls newClient to obtain a fresh
// Client every time the previous one runs out of servers to try, polling
// at the given interval. blockTime bounds how long a single
// ReceiveTimeResponse call may wait for a datagram.
func NewScheduler(newClient func() (*Client, error), interval, blockTime time.Duration) (*Scheduler, error) {
	if newClient == nil {
		return nil, ErrBadParameter
	}
	if interval <= 0 {
		return nil, ErrZeroPollInterval
	}
	return &Scheduler{newClient: newClient, interval: interval, blockTime: blockTime}, nil
}

// Run executes one transaction per tick of its poll interval until ctx is
// canceled, invoking onResult after each attempt with the Client that ran
// it (nil error means the Client's Clock.Set was called, and
// client.LastResponse() reflects that transaction). Run returns ctx.Err()
// once ctx is done, or earlier with newClient's error if a Client cannot
// be built.
func (s *Scheduler) Run(ctx context.Context, onResult func(client *Client, err error)) error {
	client, err := s.newClient()
	if err != nil {
		return err
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		err := s.runOnce(ctx, client)
		if onResult != nil {
			onResult(client, err)
		}
		if errors.Is(err, ErrChangeServer) {
			client, err = s.newClient()
			if err != nil {
				return err
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// runOnce issues a single request/response pair against client, advancing
// its server index on rejection. A caller that sees ErrChangeServer
// returned here has exhausted every configured server and must obtain a
// fresh Client before trying again.
func (s *Scheduler) runOnce(ctx context.Context, client *Client) error {
	if err := client.SendTimeRequest(ctx, rand.Uint32()); err != nil { //nolint:gosec
		return err
	}
	return client.ReceiveTimeResponse(ctx, s.blockTime)
}
