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

package sysclock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSystemNowConvertsEpoch(t *testing.T) {
	orig := timeNow
	defer func() { timeNow = orig }()
	timeNow = func() time.Time {
		return time.Date(1970, 1, 1, 0, 0, 0, 500_000_000, time.UTC)
	}

	got := System{}.Now()
	require.Equal(t, sntpAtUnixEpoch, got.Seconds)
	require.InDelta(t, uint32(1<<31), got.Fraction, float64(1<<20))
}

func TestSecondsToDuration(t *testing.T) {
	require.Equal(t, 5*time.Second, secondsToDuration(5))
	require.Equal(t, -3*time.Second, secondsToDuration(-3))
}
