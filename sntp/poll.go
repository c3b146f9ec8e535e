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
	"math/bits"
	"time"
)

// CalculatePollInterval returns the largest power-of-two poll interval
// that still keeps clock drift at or under desiredAccuracyMs, given the
// host clock's frequency tolerance in parts-per-million.
//
// exact = desiredAccuracyMs * 1000 / freqTolerancePpm (seconds). If the
// division floors to zero, ErrZeroPollInterval is returned: the caller's
// accuracy budget is tighter than one second can buy at this clock's
// tolerance.
func CalculatePollInterval(freqTolerancePpm, desiredAccuracyMs uint16) (time.Duration, error) {
	exact := uint64(desiredAccuracyMs) * 1000 / uint64(freqTolerancePpm)
	if exact == 0 {
		return 0, ErrZeroPollInterval
	}
	k := bits.Len64(exact) - 1
	return time.Duration(uint64(1)<<uint(k)) * time.Second, nil
}
