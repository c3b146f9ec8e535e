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

package auth

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coresync/sntp/sntp"
)

func testKeyStore() StaticKeyStore {
	return StaticKeyStore{
		"time.example.com": {KeyID: 7, Secret: []byte("super-secret-key-material")},
	}
}

func TestGenerateThenValidateRoundTrip(t *testing.T) {
	h := HMAC{Keys: testKeyStore()}
	server := sntp.ServerInfo{Name: "time.example.com"}

	buf := make([]byte, sntp.PacketSizeBytes+TrailerSize)
	for i := range buf[:sntp.PacketSizeBytes] {
		buf[i] = byte(i)
	}

	n, err := h.GenerateClientAuth(server, buf)
	require.NoError(t, err)
	require.Equal(t, TrailerSize, n)

	require.NoError(t, h.ValidateServerAuth(server, buf))
}

func TestValidateRejectsTamperedPacket(t *testing.T) {
	h := HMAC{Keys: testKeyStore()}
	server := sntp.ServerInfo{Name: "time.example.com"}

	buf := make([]byte, sntp.PacketSizeBytes+TrailerSize)
	_, err := h.GenerateClientAuth(server, buf)
	require.NoError(t, err)

	buf[0] ^= 0xFF
	err = h.ValidateServerAuth(server, buf)
	require.ErrorIs(t, err, sntp.ErrServerNotAuthenticated)
}

func TestValidateRejectsUnknownKeyID(t *testing.T) {
	h := HMAC{Keys: testKeyStore()}
	server := sntp.ServerInfo{Name: "time.example.com"}

	buf := make([]byte, sntp.PacketSizeBytes+TrailerSize)
	_, err := h.GenerateClientAuth(server, buf)
	require.NoError(t, err)

	buf[sntp.PacketSizeBytes] = 0xFF // corrupt key ID's high byte
	err = h.ValidateServerAuth(server, buf)
	require.ErrorIs(t, err, sntp.ErrServerNotAuthenticated)
}

func TestGenerateClientAuthUnknownServer(t *testing.T) {
	h := HMAC{Keys: testKeyStore()}
	buf := make([]byte, sntp.PacketSizeBytes+TrailerSize)
	_, err := h.GenerateClientAuth(sntp.ServerInfo{Name: "unknown.example.com"}, buf)
	require.Error(t, err)
}

func TestGenerateClientAuthBufferTooSmall(t *testing.T) {
	h := HMAC{Keys: testKeyStore()}
	buf := make([]byte, sntp.PacketSizeBytes)
	_, err := h.GenerateClientAuth(sntp.ServerInfo{Name: "time.example.com"}, buf)
	require.ErrorIs(t, err, sntp.ErrBufferTooSmall)
}
