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

/*
Package sntp implements an SNTPv4 (RFC 4330) client core: wire-format
framing of the 48-byte packet, era-safe clock-offset arithmetic, and the
send/receive state machine that drives a single in-flight transaction
against a rotating list of servers.

The package owns no socket, no DNS resolver and no system clock. Those are
injected by the caller through the Collaborators interfaces, so the core
stays usable on constrained devices and in tests alike.
*/
package sntp

import "time"

// PacketSizeBytes is the fixed size of the base SNTP packet, before any
// authenticator payload is appended.
const PacketSizeBytes = 48

// ClockOffsetOverflow is returned in ResponseData.ClockOffsetSec when the
// true offset does not fit in a signed 32-bit seconds value.
const ClockOffsetOverflow int32 = 0x7FFFFFFF

// DefaultPort is the standard SNTP/NTP UDP port.
const DefaultPort uint16 = 123

// Default governing timeouts for the retry loops inside SendTimeRequest and
// ReceiveTimeResponse. Configurable per Client via WithSendRetryTimeout and
// WithRecvPollingTimeout.
const (
	defaultSendRetryTimeout   = 1000 * time.Millisecond
	defaultRecvPollingTimeout = 200 * time.Millisecond
)

// Timestamp is an SNTP 64-bit fixed-point timestamp: whole seconds since
// 1 Jan 1900 UTC plus a fractional part where one unit is 2^-32 s. Any
// (Seconds, Fraction) pair is well-formed; no normalization is required,
// and era roll-over at Seconds == 2^32 is handled arithmetically by the
// offset calculator, not by this type.
type Timestamp struct {
	Seconds  uint32
	Fraction uint32
}

// LeapIndicator hints at an upcoming leap-second insertion, deletion, or
// that the server itself isn't synchronized.
type LeapIndicator uint8

// The four LI values a server can report, encoded in bits 6-7 of byte 0.
const (
	NoLeapSecond LeapIndicator = iota
	LastMinuteHas61Seconds
	LastMinuteHas59Seconds
	AlarmServerNotSynchronized
)

var leapIndicatorToString = map[LeapIndicator]string{
	NoLeapSecond:               "NoLeapSecond",
	LastMinuteHas61Seconds:     "LastMinuteHas61Seconds",
	LastMinuteHas59Seconds:     "LastMinuteHas59Seconds",
	AlarmServerNotSynchronized: "AlarmServerNotSynchronized",
}

func (l LeapIndicator) String() string {
	if s, ok := leapIndicatorToString[l]; ok {
		return s
	}
	return "Unknown"
}

// ServerInfo is an opaque handle identifying a configured server: its
// display/resolvable name and UDP port (DefaultPort when unset by the
// caller).
type ServerInfo struct {
	Name string
	Port uint16
}

func (s ServerInfo) port() uint16 {
	if s.Port == 0 {
		return DefaultPort
	}
	return s.Port
}

// ResponseData is the parsed result of DeserializeResponse.
type ResponseData struct {
	// ServerTime is the packet's transmit timestamp (T3), valid whenever
	// DeserializeResponse returns a nil error or one matching
	// ErrClockOffsetOverflow.
	ServerTime Timestamp
	// Leap is decoded from the response's LI field.
	Leap LeapIndicator
	// RejectedResponseCode is 0 when the response was accepted, otherwise
	// the big-endian reading of the 4-byte ASCII Kiss-o'-Death code.
	RejectedResponseCode uint32
	// ClockOffsetSec is the signed offset in whole seconds to add to the
	// local clock to align it with the server, or ClockOffsetOverflow.
	ClockOffsetSec int32
}
