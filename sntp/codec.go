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
	"encoding/binary"
	"fmt"
)

// Wire offsets, kept as named constants rather than a struct overlay so the
// codec never depends on the compiler's struct layout or the host's
// endianness (see DESIGN.md).
const (
	offSettings       = 0
	offStratum        = 1
	offRootDelay      = 4
	offRootDispersion = 8
	offReferenceID    = 12
	offReferenceTime  = 16
	offOriginateTime  = 24
	offReceiveTime    = 32
	offTransmitTime   = 40
)

// clientSettingsByte is LI=0, VN=4, Mode=3 (client), i.e. 0x23.
const clientSettingsByte = 0<<6 | 4<<3 | 3

const modeServer = 4

var leapIndicatorFromBits = [4]LeapIndicator{
	NoLeapSecond,
	LastMinuteHas61Seconds,
	LastMinuteHas59Seconds,
	AlarmServerNotSynchronized,
}

// KoD codes recognized in the reference-ID field of a Stratum==0 response.
const (
	kodDeny uint32 = 0x44454E59 // "DENY"
	kodRstr uint32 = 0x52535452 // "RSTR"
	kodRate uint32 = 0x52415445 // "RATE"
)

func putTimestamp(buf []byte, off int, t Timestamp) {
	binary.BigEndian.PutUint32(buf[off:], t.Seconds)
	binary.BigEndian.PutUint32(buf[off+4:], t.Fraction)
}

func getTimestamp(buf []byte, off int) Timestamp {
	return Timestamp{
		Seconds:  binary.BigEndian.Uint32(buf[off:]),
		Fraction: binary.BigEndian.Uint32(buf[off+4:]),
	}
}

// SerializeRequest writes a 48-byte SNTPv4 client request into buf.
//
// random's upper 16 bits are OR-ed onto the low 16 bits of requestTime's
// fraction before it is written out; requestTime is mutated in place so
// the caller retains the exact value the server is expected to echo back
// as the originate timestamp (T1), including the nonce overlay.
func SerializeRequest(requestTime *Timestamp, random uint32, buf []byte) error {
	if requestTime == nil || buf == nil {
		return fmt.Errorf("sntp: serialize request: %w", ErrBadParameter)
	}
	if len(buf) < PacketSizeBytes {
		return fmt.Errorf("sntp: serialize request: %w", ErrBufferTooSmall)
	}

	for i := range buf[:PacketSizeBytes] {
		buf[i] = 0
	}

	buf[offSettings] = clientSettingsByte
	requestTime.Fraction |= random >> 16
	putTimestamp(buf, offTransmitTime, *requestTime)
	return nil
}

// DeserializeResponse validates and decodes a server response.
//
// t1 is the originate timestamp the client sent (post nonce-overlay); t4 is
// the client's wall-clock reading of when the datagram arrived. buf must
// hold at least PacketSizeBytes bytes; only the first PacketSizeBytes are
// inspected, so an authenticator trailer is simply ignored here.
//
// A Kiss-o'-Death response (Stratum == 0) is classified into one of
// ErrRejectedChangeServer, ErrRejectedRetryWithBackoff or
// ErrRejectedOtherCode, with ResponseData.RejectedResponseCode set to the
// raw 4-byte code; callers that want the unified rejection status wrap
// these into ErrRejectedResponse. An accepted response returns the parsed
// ResponseData and either a nil error or an ErrClockOffsetOverflow-wrapping
// error when the offset could not be represented (ServerTime is still
// populated in that case).
func DeserializeResponse(t1, t4 Timestamp, buf []byte) (ResponseData, error) {
	var out ResponseData
	if buf == nil || len(buf) < PacketSizeBytes {
		return out, fmt.Errorf("sntp: deserialize response: %w", ErrBadParameter)
	}

	if buf[offSettings]&0x07 != modeServer {
		return out, fmt.Errorf("sntp: deserialize response: unexpected mode: %w", ErrInvalidResponse)
	}
	echoed := getTimestamp(buf, offOriginateTime)
	if echoed != t1 {
		return out, fmt.Errorf("sntp: deserialize response: originate timestamp mismatch: %w", ErrInvalidResponse)
	}

	stratum := buf[offStratum]
	if stratum == 0 {
		code := binary.BigEndian.Uint32(buf[offReferenceID:])
		out.RejectedResponseCode = code
		return out, fmt.Errorf("sntp: deserialize response: kiss-o'-death code %08x: %w", code, classifyKoD(code))
	}

	t2 := getTimestamp(buf, offReceiveTime)
	t3 := getTimestamp(buf, offTransmitTime)
	out.ServerTime = t3
	out.Leap = leapIndicatorFromBits[(buf[offSettings]>>6)&0x03]

	offsetSec, err := calculateClockOffset(t1, t2, t3, t4)
	out.ClockOffsetSec = offsetSec
	if err != nil {
		return out, err
	}
	return out, nil
}

// classifyKoD maps a Kiss-o'-Death reference-ID code to
// ErrRejectedChangeServer, ErrRejectedRetryWithBackoff or
// ErrRejectedOtherCode; the exact code survives in
// ResponseData.RejectedResponseCode for logging and metrics.
func classifyKoD(code uint32) error {
	switch code {
	case kodDeny, kodRstr:
		return ErrRejectedChangeServer
	case kodRate:
		return ErrRejectedRetryWithBackoff
	default:
		return ErrRejectedOtherCode
	}
}
