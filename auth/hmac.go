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

// Package auth implements the optional sntp.Authenticator collaborator
// using symmetric-key HMAC-SHA256 trailers, modeled on NTPv4's optional
// MAC extension field (RFC 5905 §7.3): a 4-byte key identifier followed
// by the digest.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/coresync/sntp/sntp"
)

const (
	keyIDSize  = 4
	digestSize = sha256.Size
	// TrailerSize is the number of bytes GenerateClientAuth appends after
	// the base packet, and the number ValidateServerAuth expects there.
	TrailerSize = keyIDSize + digestSize
)

// KeyStore resolves a server's configured key identifier and secret. The
// caller owns key material lifetime; HMAC looks nothing up on its own.
type KeyStore interface {
	Key(server sntp.ServerInfo) (keyID uint32, secret []byte, err error)
}

// StaticKeyStore is a KeyStore backed by a fixed map keyed by server name,
// suitable for a handful of configured servers sharing one pre-provisioned
// symmetric key.
type StaticKeyStore map[string]struct {
	KeyID  uint32
	Secret []byte
}

// Key implements KeyStore.
func (s StaticKeyStore) Key(server sntp.ServerInfo) (uint32, []byte, error) {
	entry, ok := s[server.Name]
	if !ok {
		return 0, nil, fmt.Errorf("auth: no key configured for %q", server.Name)
	}
	return entry.KeyID, entry.Secret, nil
}

// HMAC implements sntp.Authenticator with an HMAC-SHA256 trailer: 4 bytes
// of big-endian key ID followed by a 32-byte digest computed over the base
// packet bytes.
type HMAC struct {
	Keys KeyStore
}

// GenerateClientAuth implements sntp.Authenticator.
func (h HMAC) GenerateClientAuth(server sntp.ServerInfo, buf []byte) (int, error) {
	if len(buf) < sntp.PacketSizeBytes+TrailerSize {
		return 0, fmt.Errorf("auth: buffer too small for trailer: %w", sntp.ErrBufferTooSmall)
	}
	keyID, secret, err := h.Keys.Key(server)
	if err != nil {
		return 0, fmt.Errorf("auth: %w", err)
	}

	trailer := buf[sntp.PacketSizeBytes : sntp.PacketSizeBytes+TrailerSize]
	binary.BigEndian.PutUint32(trailer[:keyIDSize], keyID)

	mac := hmac.New(sha256.New, secret)
	mac.Write(buf[:sntp.PacketSizeBytes])
	copy(trailer[keyIDSize:], mac.Sum(nil))

	return TrailerSize, nil
}

// ValidateServerAuth implements sntp.Authenticator.
func (h HMAC) ValidateServerAuth(server sntp.ServerInfo, buf []byte) error {
	if len(buf) < sntp.PacketSizeBytes+TrailerSize {
		return fmt.Errorf("auth: response missing trailer: %w", sntp.ErrServerNotAuthenticated)
	}
	trailer := buf[sntp.PacketSizeBytes : sntp.PacketSizeBytes+TrailerSize]
	gotKeyID := binary.BigEndian.Uint32(trailer[:keyIDSize])

	wantKeyID, secret, err := h.Keys.Key(server)
	if err != nil {
		return fmt.Errorf("auth: %w", err)
	}

	mac := hmac.New(sha256.New, secret)
	mac.Write(buf[:sntp.PacketSizeBytes])
	want := mac.Sum(nil)

	if gotKeyID != wantKeyID || !hmac.Equal(trailer[keyIDSize:], want) {
		return fmt.Errorf("auth: mac mismatch: %w", sntp.ErrServerNotAuthenticated)
	}
	return nil
}
