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
	"fmt"
	"math"
)

// eraSeconds is the span of one NTP era: 2^32 seconds, carried as a signed
// 64-bit value so every candidate difference below can be computed and
// compared explicitly instead of relying on unsigned wraparound semantics.
const eraSeconds int64 = 1 << 32

// safeTimeDifference computes the era-safe signed difference (srv - cli)
// between two u32 NTP second counts, choosing whichever of the three
// candidate interpretations (same era, server one era ahead, client one
// era ahead) has the smallest magnitude.
//
// The exactly-antipodal case (|diff| == 2^31) is ambiguous by construction;
// this implementation biases it toward "server ahead": srv - cli == -2^31
// returns math.MaxInt32, and srv - cli == +2^31 keeps the same-era value
// +2^31 (ties prefer the same-era candidate). See DESIGN.md.
func safeTimeDifference(srv, cli uint32) int64 {
	same := int64(srv) - int64(cli)
	if same == math.MinInt32 {
		return math.MaxInt32
	}

	srvAhead := int64(srv) + eraSeconds - int64(cli)
	cliAhead := int64(srv) - (eraSeconds + int64(cli))

	best := same
	if abs64(srvAhead) < abs64(best) {
		best = srvAhead
	}
	if abs64(cliAhead) < abs64(best) {
		best = cliAhead
	}
	return best
}

func abs64(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}

// calculateClockOffset computes offset = ((T2-T1) + (T3-T4)) / 2 as a
// signed 32-bit seconds value. It returns ErrClockOffsetOverflow (with the
// sentinel ClockOffsetOverflow already assigned to the returned value) when
// the averaged offset does not fit in int32. Each era-safe difference lies
// in (-2^31, 2^31], so this happens only when both differences are exactly
// +2^31 s; any other skew of up to about 68 years is returned as-is.
func calculateClockOffset(t1, t2, t3, t4 Timestamp) (int32, error) {
	d1 := safeTimeDifference(t2.Seconds, t1.Seconds)
	d2 := safeTimeDifference(t3.Seconds, t4.Seconds)

	sum := (d1 + d2) >> 1
	if sum > math.MaxInt32 || sum < math.MinInt32 {
		return ClockOffsetOverflow, fmt.Errorf("sntp: clock offset %d s does not fit in int32: %w", sum, ErrClockOffsetOverflow)
	}
	return int32(sum), nil
}

// ErrClockOffsetOverflow is the sentinel for StatusClockOffsetOverflow,
// declared here alongside the one function that produces it.
var ErrClockOffsetOverflow = newStatusError(StatusClockOffsetOverflow, "sntp: clock offset overflow")
