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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConvertToUnixTimeEra0(t *testing.T) {
	// SNTP second sntpAtUnixEpoch maps to UNIX second 0.
	secs, micros, err := ConvertToUnixTime(Timestamp{Seconds: sntpAtUnixEpoch + 100})
	require.NoError(t, err)
	require.Equal(t, int64(100), secs)
	require.Equal(t, int64(0), micros)
}

func TestConvertToUnixTimeEra1(t *testing.T) {
	secs, _, err := ConvertToUnixTime(Timestamp{Seconds: 100})
	require.NoError(t, err)
	require.Equal(t, unixAtSntpEra1Smallest+100, secs)
}

func TestConvertToUnixTimeUnsupportedGap(t *testing.T) {
	_, _, err := ConvertToUnixTime(Timestamp{Seconds: sntpAtUnixRollover + 1})
	require.ErrorIs(t, err, ErrTimeNotSupported)
}

func TestConvertToUnixTimeFractionToMicros(t *testing.T) {
	_, micros, err := ConvertToUnixTime(Timestamp{Seconds: sntpAtUnixEpoch, Fraction: 4295 * 500000})
	require.NoError(t, err)
	require.Equal(t, int64(500000), micros)
}
