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


// Package pad generates one-time pads and combines byte slices with XOR.
package pad

import (
	"errors"
	"fmt"

	"github.com/google/tink/go/subtle/random"
)

// maxChunk bounds a single request to Tink, which takes a uint32 length.
const maxChunk = 1 << 30

// ErrEntropy is wrapped by every error caused by the random source failing to
// supply bytes.
var ErrEntropy = errors.New("random source unavailable")

// Source is a source of uniformly random bytes. Implementations must be safe
// for concurrent use.
type Source interface {
	Read(p []byte) (int, error)
}

// TinkSource reads from Tink's CSPRNG. It has no seeding API.
type TinkSource struct{}

// Read fills p with random bytes. Tink panics when the operating system
// cannot supply randomness; that panic is reported as an error.
func (TinkSource) Read(p []byte) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrEntropy, r)
		}
	}()

	for n < len(p) {
		chunk := len(p) - n
		if chunk > maxChunk {
			chunk = maxChunk
		}
		n += copy(p[n:], random.GetRandomBytes(uint32(chunk)))
	}
	return n, nil
}

// LengthError is returned by Combine when its inputs differ in length.
type LengthError struct {
	Len1, Len2 int
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("cannot combine slices of different lengths: %d and %d", e.Len1, e.Len2)
}

// Generate returns n bytes read from src. A zero n yields an empty, non-nil
// slice without touching src.
func Generate(src Source, n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("pad length must not be negative, got %d", n)
	}
	if src == nil {
		return nil, fmt.Errorf("%w: no source configured", ErrEntropy)
	}

	buf := make([]byte, n)
	if n == 0 {
		return buf, nil
	}

	read := 0
	for read < n {
		m, err := src.Read(buf[read:])
		read += m
		if err != nil {
			if errors.Is(err, ErrEntropy) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %v", ErrEntropy, err)
		}
		if m == 0 {
			return nil, fmt.Errorf("%w: short read, got %d of %d bytes", ErrEntropy, read, n)
		}
	}
	return buf, nil
}

// Combine returns the byte-wise XOR of a and b. Combine(Combine(a, b), b)
// equals a.
func Combine(a, b []byte) ([]byte, error) {
	if len(a) != len(b) {
		return nil, &LengthError{Len1: len(a), Len2: len(b)}
	}

	out := make([]byte, len(a))
	for i := range a {
		out[i] = a[i] ^ b[i]
	}
	return out, nil
}
