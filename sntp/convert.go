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

// Constants tying SNTP's 1900 epoch to UNIX's 1970 epoch across both
// supported NTP eras.
const (
	// sntpAtUnixEpoch is the SNTP second count at the UNIX epoch
	// (1 Jan 1970): 70 years plus 17 leap days.
	sntpAtUnixEpoch uint32 = 2208988800
	// sntpAtUnixRollover is the SNTP second count at the signed-32-bit UNIX
	// time rollover (19 Jan 2038), the largest era-1 value this package
	// converts.
	sntpAtUnixRollover uint32 = 61505151
	// unixAtSntpEra1Smallest is the UNIX second count corresponding to
	// SNTP second 0 in era 1 (7 Feb 2036 06:28:16 UTC).
	unixAtSntpEra1Smallest int64 = 2085978496
	// fractionPerMicrosecond converts SNTP fraction units to microseconds:
	// fraction / fractionPerMicrosecond ≈ microseconds.
	fractionPerMicrosecond uint32 = 4295
)

// ConvertToUnixTime converts an SNTP Timestamp to UNIX seconds and
// microseconds. Supported input is either era 0 after the UNIX epoch
// (Seconds >= sntpAtUnixEpoch) or era 1 before the 2038 UNIX rollover
// (Seconds <= sntpAtUnixRollover); anything else returns
// ErrTimeNotSupported.
func ConvertToUnixTime(t Timestamp) (unixSecs int64, unixMicros int64, err error) {
	switch {
	case t.Seconds >= sntpAtUnixEpoch:
		unixSecs = int64(t.Seconds) - int64(sntpAtUnixEpoch)
	case t.Seconds <= sntpAtUnixRollover:
		unixSecs = unixAtSntpEra1Smallest + int64(t.Seconds)
	default:
		return 0, 0, ErrTimeNotSupported
	}
	unixMicros = int64(t.Fraction / fractionPerMicrosecond)
	return unixSecs, unixMicros, nil
}
