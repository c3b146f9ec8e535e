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

// millisBetween returns (later - earlier) in milliseconds, era-safe: the
// seconds component goes through the same safeTimeDifference used by the
// offset calculator, so a Clock that happens to straddle the 2^32-second
// era boundary between two readings does not look like a multi-decade
// jump.
func millisBetween(earlier, later Timestamp) int64 {
	secDiff := safeTimeDifference(later.Seconds, earlier.Seconds)
	fracDiff := int64(later.Fraction) - int64(earlier.Fraction)
	return secDiff*1000 + (fracDiff*1000)>>32
}

// elapsedMillisSince returns the absolute number of milliseconds between
// two Timestamp readings of the same Clock, tolerant of 32-bit wraparound.
// The retry and timeout accounting in client.go uses this instead of the
// host's wall clock so the whole state machine depends on exactly one
// collaborator-supplied notion of time.
func elapsedMillisSince(start, now Timestamp) int64 {
	d := millisBetween(start, now)
	if d < 0 {
		return -d
	}
	return d
}
