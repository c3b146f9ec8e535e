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
	"time"

	"github.com/stretchr/testify/require"
)

func TestCalculatePollInterval(t *testing.T) {
	cases := []struct {
		name              string
		freqTolerancePpm  uint16
		desiredAccuracyMs uint16
		want              time.Duration
	}{
		// exact = 1024*1000/1000 = 1024, already a power of two.
		{"exact power of two", 1000, 1024, 1024 * time.Second},
		// exact = 3*1000/2 = 1500, rounds down to 1024.
		{"rounds down to power of two", 2, 3, 1024 * time.Second},
		// exact = 1000*1000/1 = 1,000,000, rounds down to 2^19.
		{"tight tolerance, generous accuracy", 1, 1000, 524288 * time.Second},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := CalculatePollInterval(tc.freqTolerancePpm, tc.desiredAccuracyMs)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestCalculatePollIntervalZero(t *testing.T) {
	_, err := CalculatePollInterval(1000, 0)
	require.ErrorIs(t, err, ErrZeroPollInterval)
}
