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


package shares

import (
	"errors"
	"fmt"
)

// Kind classifies a split or recover failure.
type Kind int

// The complete set of failure kinds.
const (
	// KindEntropy means the random source could not supply a pad. Split
	// aborts and nothing is returned.
	KindEntropy Kind = 1 + iota
	// KindLengthMismatch means two individually valid shares carry payloads of
	// different lengths, so they cannot come from the same split.
	KindLengthMismatch
	// KindDecoding means a share is not valid base64 text.
	KindDecoding
	// KindFraming means a share decoded to bytes that are too short or whose
	// declared length is wrong.
	KindFraming
	// KindIntegrity means a share failed its CRC-32 check.
	KindIntegrity
)

func (k Kind) String() string {
	switch k {
	case KindEntropy:
		return "entropy failure"
	case KindLengthMismatch:
		return "length mismatch"
	case KindDecoding:
		return "decoding error"
	case KindFraming:
		return "framing error"
	case KindIntegrity:
		return "integrity error"
	default:
		return fmt.Sprintf("unknown error kind: %d", int(k))
	}
}

// Error is the error type returned by Split and Recover.
type Error struct {
	Kind Kind
	// Share is 1 or 2 for errors tied to a single share, 0 otherwise.
	Share int
	// Len1 and Len2 are the payload lengths of the two shares, set for
	// KindLengthMismatch.
	Len1, Len2 int
	// Err is the underlying cause.
	Err error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindLengthMismatch:
		return fmt.Sprintf("shares do not match: share 1 holds %d bytes, share 2 holds %d bytes", e.Len1, e.Len2)
	case e.Share != 0 && e.Err != nil:
		return fmt.Sprintf("share %d: %v: %v", e.Share, e.Kind, e.Err)
	case e.Share != 0:
		return fmt.Sprintf("share %d: %v", e.Share, e.Kind)
	case e.Err != nil:
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is an *Error of kind k.
func IsKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

// KindOf returns the kind of err, or 0 if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
