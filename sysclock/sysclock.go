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

// Package sysclock adapts the host's realtime clock to the sntp.Clock
// collaborator interface, stepping CLOCK_REALTIME through clock_adjtime(2)
// rather than slewing time.Now() in process.
package sysclock

import (
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/coresync/sntp/clock"
	"github.com/coresync/sntp/sntp"
)

// timeNow is a var so tests can substitute a fixed instant.
var timeNow = time.Now

func secondsToDuration(sec int32) time.Duration {
	return time.Duration(sec) * time.Second
}

// sntpAtUnixEpoch is the SNTP second count at the UNIX epoch (1 Jan 1970).
const sntpAtUnixEpoch uint32 = 2208988800

// nanosPerSecond expressed as a float64 so fraction conversion avoids
// 32-bit intermediate overflow.
const nanosPerSecond = 1e9

// System is an sntp.Clock backed by CLOCK_REALTIME. Set steps the clock by
// the computed offset and marks it synchronized; it never slews.
type System struct{}

// Now reads the host's realtime clock and renders it as an SNTP Timestamp.
func (System) Now() sntp.Timestamp {
	now := timeNow()
	secs := uint32(now.Unix()) + sntpAtUnixEpoch
	frac := uint32(float64(now.Nanosecond()) / nanosPerSecond * (1 << 32))
	return sntp.Timestamp{Seconds: secs, Fraction: frac}
}

// Set steps CLOCK_REALTIME by offsetSec seconds and marks the clock
// synchronized. A leap second pending per leap is only logged: stepping
// the kernel's leap-second state requires STA_INS/STA_DEL bits this
// package does not set, since the spec's scope ends at computing the
// offset, not administering leap seconds.
func (System) Set(server sntp.ServerInfo, serverTime sntp.Timestamp, offsetSec int32, leap sntp.LeapIndicator) {
	if offsetSec == sntp.ClockOffsetOverflow {
		log.WithField("server", server.Name).Warn("sysclock: refusing to step clock on overflowed offset")
		return
	}
	if leap != sntp.NoLeapSecond {
		log.WithFields(log.Fields{"server": server.Name, "leap": leap.String()}).Info("sysclock: server signaled upcoming leap second")
	}

	step := secondsToDuration(offsetSec)
	state, err := clock.Step(unix.CLOCK_REALTIME, step)
	if err != nil {
		log.WithError(err).WithField("server", server.Name).Error("sysclock: failed to step clock")
		return
	}
	if state != unix.TIME_OK {
		log.WithField("state", state).Warn("sysclock: clock state not TIME_OK after stepping")
	}

	if err := clock.SetSync(); err != nil {
		log.WithError(err).Warn("sysclock: failed to mark clock synchronized")
	}
}

// FrequencyTolerancePPM reads the host clock's current tolerance (derived
// from clock_adjtime's reported maximum frequency adjustment) for use with
// sntp.CalculatePollInterval.
func FrequencyTolerancePPM() (uint16, error) {
	freqPPB, state, err := clock.MaxFreqPPB(unix.CLOCK_REALTIME)
	if err != nil {
		return 0, err
	}
	if state != unix.TIME_OK {
		log.WithField("state", state).Warn("sysclock: clock state not TIME_OK after reading max frequency")
	}
	ppm := freqPPB / 1000
	if ppm <= 0 {
		return 1, nil
	}
	if ppm > float64(^uint16(0)) {
		return ^uint16(0), nil
	}
	return uint16(ppm), nil
}
