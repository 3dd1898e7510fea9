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


// Package shares implements two-of-two secret sharing with a one-time pad.
//
// Split masks a secret with a fresh random pad and returns two encoded shares:
// the masked secret and the pad itself. Either share alone is uniformly random
// and reveals nothing about the secret; Recover XORs the two payloads back
// together. Each share carries its own length and CRC-32 so that transcription
// errors are caught before they can corrupt the result.
//
// The checksum covers each share on its own. Two valid shares from different
// splits of equal-length secrets recover to garbage without an error; only
// pairs of different lengths are rejected.
package shares

import (
	"errors"
	"fmt"

	"github.com/GoogleCloudPlatform/xplit/shares/internal/frame"
	"github.com/GoogleCloudPlatform/xplit/shares/internal/pad"
	glog "github.com/golang/glog"
	"github.com/google/uuid"
)

// Source supplies the random bytes used for pads. It must be safe for
// concurrent use.
type Source interface {
	Read(p []byte) (int, error)
}

// SplitResult holds the two encoded shares of one secret.
type SplitResult struct {
	// ID is a random identifier for this split. It is not embedded in the
	// shares and is only meant to help holders tell pairs apart.
	ID     string
	Share1 string
	Share2 string
}

// Splitter splits secrets using a configurable random source.
type Splitter struct {
	src pad.Source
}

// NewSplitter returns a Splitter drawing pads from src. A nil src selects
// Tink's CSPRNG.
func NewSplitter(src Source) *Splitter {
	if src == nil {
		return &Splitter{src: pad.TinkSource{}}
	}
	return &Splitter{src: src}
}

var defaultSplitter = NewSplitter(nil)

// Split splits secret into two encoded shares using the default CSPRNG. It
// only fails if the random source is unavailable.
func Split(secret []byte) (share1, share2 string, err error) {
	res, err := defaultSplitter.Split(secret)
	if err != nil {
		return "", "", err
	}
	return res.Share1, res.Share2, nil
}

// Split generates a pad for secret and returns both encoded shares. Share 1
// is the secret XOR the pad, share 2 is the pad.
func (s *Splitter) Split(secret []byte) (*SplitResult, error) {
	p, err := pad.Generate(s.src, len(secret))
	if err != nil {
		return nil, &Error{Kind: KindEntropy, Err: err}
	}
	defer clear(p)

	masked, err := pad.Combine(secret, p)
	if err != nil {
		return nil, fmt.Errorf("unable to mask secret: %w", err)
	}
	defer clear(masked)

	id, err := uuid.NewRandom()
	if err != nil {
		return nil, &Error{Kind: KindEntropy, Err: fmt.Errorf("failed to create split ID: %w", err)}
	}

	res := &SplitResult{
		ID:     id.String(),
		Share1: frame.Encode(masked),
		Share2: frame.Encode(p),
	}
	glog.V(2).Infof("Split %v: %d-byte secret", res.ID, len(secret))

	return res, nil
}

// Recover verifies both shares and returns the secret they encode. The order
// of the arguments does not matter. On failure the returned error is an
// *Error and no bytes are returned.
func Recover(share1, share2 string) ([]byte, error) {
	p1, err := decodeShare(1, share1)
	if err != nil {
		return nil, err
	}
	defer clear(p1)

	p2, err := decodeShare(2, share2)
	if err != nil {
		return nil, err
	}
	defer clear(p2)

	secret, err := pad.Combine(p1, p2)
	if err != nil {
		var lenErr *pad.LengthError
		if errors.As(err, &lenErr) {
			return nil, &Error{Kind: KindLengthMismatch, Len1: lenErr.Len1, Len2: lenErr.Len2, Err: err}
		}
		return nil, err
	}
	glog.V(2).Infof("Recovered %d-byte secret", len(secret))

	return secret, nil
}

// decodeShare maps codec failures onto error kinds, tagging them with the
// share number.
func decodeShare(n int, text string) ([]byte, error) {
	payload, err := frame.Decode(text)
	if err == nil {
		return payload, nil
	}

	kind := KindFraming
	switch {
	case errors.Is(err, frame.ErrEncoding):
		kind = KindDecoding
	case errors.Is(err, frame.ErrChecksum):
		kind = KindIntegrity
	}
	glog.V(1).Infof("Share %d rejected: %v", n, kind)

	return nil, &Error{Kind: kind, Share: n, Err: err}
}
