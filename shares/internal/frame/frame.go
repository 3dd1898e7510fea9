// Copyright 2026 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package frame wraps share payloads in a self-verifying frame and renders
// them as base64 text.
//
// The frame layout (before base64 encoding) is:
//
//	len(payload) (8 bytes, big endian)
//	|| payload
//	|| CRC-32 of payload, IEEE polynomial (4 bytes, big endian)
//
// Encoded shares use the standard base64 alphabet with padding. Decoding
// accepts surrounding whitespace but rejects whitespace inside the text.
package frame

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"strings"
	"unicode"
)

const (
	// HeaderSize is the size of the length field in bytes.
	HeaderSize = 8
	// ChecksumSize is the size of the CRC-32 trailer in bytes.
	ChecksumSize = crc32.Size
	// Overhead is the number of bytes a frame adds to its payload.
	Overhead = HeaderSize + ChecksumSize
)

var (
	// ErrEncoding is returned when the text is not valid base64.
	ErrEncoding = errors.New("share is not valid base64")
	// ErrFraming is returned when the decoded bytes do not form a frame.
	ErrFraming = errors.New("share is malformed")
	// ErrChecksum is returned when the payload does not match its checksum.
	ErrChecksum = errors.New("share checksum mismatch")
)

var encoding = base64.StdEncoding.Strict()

// Encode frames payload and returns its base64 text. The output depends only
// on payload.
func Encode(payload []byte) string {
	buf := make([]byte, Overhead+len(payload))
	binary.BigEndian.PutUint64(buf[:HeaderSize], uint64(len(payload)))
	copy(buf[HeaderSize:], payload)
	binary.BigEndian.PutUint32(buf[HeaderSize+len(payload):], crc32.ChecksumIEEE(payload))

	return encoding.EncodeToString(buf)
}

// Decode parses text produced by Encode, verifies it and returns a copy of
// the payload.
func Decode(text string) ([]byte, error) {
	trimmed := strings.TrimSpace(text)
	if i := strings.IndexFunc(trimmed, unicode.IsSpace); i >= 0 {
		return nil, fmt.Errorf("%w: whitespace at offset %d", ErrEncoding, i)
	}

	raw, err := encoding.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}

	if len(raw) < Overhead {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the minimum of %d", ErrFraming, len(raw), Overhead)
	}

	declared := binary.BigEndian.Uint64(raw[:HeaderSize])
	actual := uint64(len(raw) - Overhead)
	if declared != actual {
		return nil, fmt.Errorf("%w: header declares %d payload bytes but %d are present", ErrFraming, declared, actual)
	}

	end := HeaderSize + int(actual)
	payload := raw[HeaderSize:end]
	want := binary.BigEndian.Uint32(raw[end:])
	if got := crc32.ChecksumIEEE(payload); got != want {
		return nil, fmt.Errorf("%w: computed %08x, stored %08x", ErrChecksum, got, want)
	}

	return append([]byte{}, payload...), nil
}
