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
	"bytes"
	"encoding/base64"
	"errors"
	"sync"
	"testing"

	"github.com/GoogleCloudPlatform/xplit/internal/testutil"
	"github.com/GoogleCloudPlatform/xplit/shares/internal/frame"
	"github.com/GoogleCloudPlatform/xplit/shares/internal/pad"
	"github.com/google/go-cmp/cmp"
	"github.com/google/tink/go/subtle/random"
)

func TestSplitRecoverRoundTrip(t *testing.T) {
	testCases := []struct {
		name   string
		secret []byte
	}{
		{name: "empty", secret: []byte{}},
		{name: "nil", secret: nil},
		{name: "single byte", secret: []byte{0x42}},
		{name: "text", secret: []byte("Hello, World!")},
		{name: "binary with nulls and high bits", secret: []byte{0x00, 0xff, 0x80, 0x00, 0x7f, 0xfe, 0x00, 0x01}},
		{name: "utf-8", secret: []byte("pässwörd 🔑")},
		{name: "large random", secret: random.GetRandomBytes(1 << 16)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			share1, share2, err := Split(tc.secret)
			if err != nil {
				t.Fatalf("Split() failed: %v", err)
			}

			got, err := Recover(share1, share2)
			if err != nil {
				t.Fatalf("Recover() failed: %v", err)
			}
			if !bytes.Equal(got, tc.secret) {
				t.Errorf("Recover(Split(s)) = %x, want %x", got, tc.secret)
			}
		})
	}
}

func TestSplitRecoverRandomLengths(t *testing.T) {
	for i := 0; i < 200; i++ {
		secret := random.GetRandomBytes(random.GetRandomUint32() % 512)

		share1, share2, err := Split(secret)
		if err != nil {
			t.Fatalf("Split() failed: %v", err)
		}
		got, err := Recover(share1, share2)
		if err != nil {
			t.Fatalf("Recover() failed: %v", err)
		}
		if !bytes.Equal(got, secret) {
			t.Fatalf("Recover(Split(s)) = %x, want %x", got, secret)
		}
	}
}

func TestRecoverEmptySecretIsNotNil(t *testing.T) {
	share1, share2, err := Split(nil)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Recover(share1, share2)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("Recover() = %#v, want empty non-nil slice", got)
	}
}

func TestRecoverIsCommutative(t *testing.T) {
	secret := []byte("Hello, World!")
	share1, share2, err := Split(secret)
	if err != nil {
		t.Fatal(err)
	}

	got, err := Recover(share2, share1)
	if err != nil {
		t.Fatalf("Recover(share2, share1) failed: %v", err)
	}
	if diff := cmp.Diff(secret, got); diff != "" {
		t.Errorf("Recover(share2, share1) mismatch (-want +got):\n%s", diff)
	}
}

func TestSplitTwiceYieldsDifferentShares(t *testing.T) {
	secret := []byte("Hello, World!")

	a1, a2, err := Split(secret)
	if err != nil {
		t.Fatal(err)
	}
	b1, b2, err := Split(secret)
	if err != nil {
		t.Fatal(err)
	}

	if a1 == b1 || a2 == b2 {
		t.Errorf("two splits of the same secret produced a repeated share")
	}

	for _, pair := range [][2]string{{a1, a2}, {b1, b2}} {
		got, err := Recover(pair[0], pair[1])
		if err != nil {
			t.Fatalf("Recover() failed: %v", err)
		}
		if !bytes.Equal(got, secret) {
			t.Errorf("Recover() = %q, want %q", got, secret)
		}
	}
}

func TestSplitWithDeterministicSource(t *testing.T) {
	res, err := NewSplitter(testutil.ConstantSource(0)).Split([]byte("Hello, World!"))
	if err != nil {
		t.Fatalf("Split() failed: %v", err)
	}

	// A zero pad leaves the secret unmasked in share 1.
	want := &SplitResult{
		ID:     res.ID,
		Share1: "AAAAAAAAAA1IZWxsbywgV29ybGQh7ErD0A==",
		Share2: frame.Encode(make([]byte, 13)),
	}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Errorf("Split() mismatch (-want +got):\n%s", diff)
	}
}

func TestSplitWithFixedPad(t *testing.T) {
	secret := []byte{0x00, 0xff, 0x55}
	padBytes := []byte{0x0f, 0x0f, 0xff}

	res, err := NewSplitter(testutil.NewFixedSource(padBytes)).Split(secret)
	if err != nil {
		t.Fatalf("Split() failed: %v", err)
	}

	if got, want := res.Share1, frame.Encode([]byte{0x0f, 0xf0, 0xaa}); got != want {
		t.Errorf("Share1 = %q, want %q", got, want)
	}
	if got, want := res.Share2, frame.Encode(padBytes); got != want {
		t.Errorf("Share2 = %q, want %q", got, want)
	}
}

func TestSplitAssignsUniqueIDs(t *testing.T) {
	s := NewSplitter(nil)
	a, err := s.Split([]byte("x"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := s.Split([]byte("x"))
	if err != nil {
		t.Fatal(err)
	}
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("Split IDs = %q, %q, want distinct non-empty IDs", a.ID, b.ID)
	}
}

func TestSplitEntropyFailure(t *testing.T) {
	for _, src := range []Source{testutil.FailingSource{}, testutil.StalledSource{}, testutil.NewFixedSource([]byte{1})} {
		res, err := NewSplitter(src).Split([]byte("secret"))
		if !IsKind(err, KindEntropy) {
			t.Errorf("Split() with %T = %v, want entropy failure", src, err)
		}
		if !errors.Is(err, pad.ErrEntropy) {
			t.Errorf("Split() with %T = %v, want error wrapping pad.ErrEntropy", src, err)
		}
		if res != nil {
			t.Errorf("Split() with %T returned %+v alongside an error", src, res)
		}
	}
}

func TestSplitEmptySecretDoesNotReadSource(t *testing.T) {
	if _, err := NewSplitter(testutil.FailingSource{}).Split(nil); err != nil {
		t.Errorf("Split(nil) = %v, want nil error", err)
	}
}

func TestRecoverRejectsEmptyShare(t *testing.T) {
	share1, share2, err := Split([]byte("Hello, World!"))
	if err != nil {
		t.Fatal(err)
	}

	testCases := []struct {
		name           string
		share1, share2 string
		wantShare      int
	}{
		{name: "first share empty", share1: "", share2: share2, wantShare: 1},
		{name: "second share empty", share1: share1, share2: "", wantShare: 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Recover(tc.share1, tc.share2)
			if got != nil {
				t.Errorf("Recover() returned %x alongside an error", got)
			}

			var e *Error
			if !errors.As(err, &e) {
				t.Fatalf("Recover() = %v, want *Error", err)
			}
			if e.Kind != KindDecoding && e.Kind != KindFraming {
				t.Errorf("Recover() kind = %v, want decoding or framing error", e.Kind)
			}
			if e.Share != tc.wantShare {
				t.Errorf("Recover() share = %d, want %d", e.Share, tc.wantShare)
			}
		})
	}
}

func TestRecoverReportsFailingShare(t *testing.T) {
	share1, share2, err := Split([]byte("Hello, World!"))
	if err != nil {
		t.Fatal(err)
	}

	testCases := []struct {
		name           string
		share1, share2 string
		want           *Error
	}{
		{
			name:   "invalid base64 in share 1",
			share1: "not valid base64!!!",
			share2: share2,
			want:   &Error{Kind: KindDecoding, Share: 1},
		},
		{
			name:   "invalid base64 in share 2",
			share1: share1,
			share2: "also not valid!!!",
			want:   &Error{Kind: KindDecoding, Share: 2},
		},
		{
			name:   "short frame in share 2",
			share1: share1,
			share2: "AAAAAAAA",
			want:   &Error{Kind: KindFraming, Share: 2},
		},
		{
			name:   "corrupted share 1",
			share1: "AAAAAAAAAAFi6Le+Qw==",
			share2: share2,
			want:   &Error{Kind: KindIntegrity, Share: 1},
		},
		{
			name:   "both shares bad reports share 1",
			share1: "AAAAAAAAAAAAAA==",
			share2: "BBBBBBBBBBBBBB==",
			want:   &Error{Kind: KindFraming, Share: 1},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Recover(tc.share1, tc.share2)

			var got *Error
			if !errors.As(err, &got) {
				t.Fatalf("Recover() = %v, want *Error", err)
			}
			if got.Kind != tc.want.Kind || got.Share != tc.want.Share {
				t.Errorf("Recover() = {%v, share %d}, want {%v, share %d}", got.Kind, got.Share, tc.want.Kind, tc.want.Share)
			}
		})
	}
}

func flipBit(t *testing.T, share string, bit int) string {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(share)
	if err != nil {
		t.Fatalf("test share is not base64: %v", err)
	}
	raw[bit/8] ^= 1 << (bit % 8)
	return base64.StdEncoding.EncodeToString(raw)
}

func TestRecoverDetectsPayloadBitFlips(t *testing.T) {
	secret := []byte{0x00, 0x01, 0xfe, 0xff, 'a', 'b'}
	share1, share2, err := Split(secret)
	if err != nil {
		t.Fatal(err)
	}

	first := frame.HeaderSize * 8
	last := (frame.HeaderSize + len(secret)) * 8
	for bit := first; bit < last; bit++ {
		got, err := Recover(flipBit(t, share1, bit), share2)
		if !IsKind(err, KindIntegrity) || got != nil {
			t.Errorf("share 1 bit %d flipped: Recover() = (%x, %v), want integrity error", bit, got, err)
		}

		got, err = Recover(share1, flipBit(t, share2, bit))
		var e *Error
		if !errors.As(err, &e) || e.Kind != KindIntegrity || e.Share != 2 || got != nil {
			t.Errorf("share 2 bit %d flipped: Recover() = (%x, %v), want integrity error on share 2", bit, got, err)
		}
	}
}

func TestRecoverDetectsTruncation(t *testing.T) {
	share1, share2, err := Split([]byte("Hello, World!"))
	if err != nil {
		t.Fatal(err)
	}

	for n := 0; n < len(share1); n++ {
		got, err := Recover(share1[:n], share2)
		k := KindOf(err)
		if (k != KindDecoding && k != KindFraming) || got != nil {
			t.Errorf("Recover(share1[:%d], share2) = (%x, %v), want decoding or framing error", n, got, err)
		}
	}
	for n := 0; n < len(share2); n++ {
		got, err := Recover(share1, share2[:n])
		k := KindOf(err)
		if (k != KindDecoding && k != KindFraming) || got != nil {
			t.Errorf("Recover(share1, share2[:%d]) = (%x, %v), want decoding or framing error", n, got, err)
		}
	}
}

func TestRecoverDetectsLengthMismatch(t *testing.T) {
	short1, _, err := Split([]byte("abc"))
	if err != nil {
		t.Fatal(err)
	}
	_, long2, err := Split([]byte("abcdef"))
	if err != nil {
		t.Fatal(err)
	}

	got, err := Recover(short1, long2)
	if got != nil {
		t.Errorf("Recover() returned %x alongside an error", got)
	}

	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("Recover() = %v, want *Error", err)
	}
	want := &Error{Kind: KindLengthMismatch, Len1: 3, Len2: 6}
	if diff := cmp.Diff(want, e, cmp.FilterPath(func(p cmp.Path) bool { return p.Last().String() == ".Err" }, cmp.Ignore())); diff != "" {
		t.Errorf("Recover() error mismatch (-want +got):\n%s", diff)
	}
}

func TestRecoverTrimsSurroundingWhitespace(t *testing.T) {
	share1, share2, err := Split([]byte("Hello, World!"))
	if err != nil {
		t.Fatal(err)
	}

	got, err := Recover("  "+share1+"\n", "\t"+share2+"\r\n")
	if err != nil {
		t.Fatalf("Recover() failed: %v", err)
	}
	if string(got) != "Hello, World!" {
		t.Errorf("Recover() = %q, want %q", got, "Hello, World!")
	}

	inner := share1[:4] + "\n" + share1[4:]
	if _, err := Recover(inner, share2); !IsKind(err, KindDecoding) {
		t.Errorf("Recover() with an embedded newline = %v, want decoding error", err)
	}
}

// chiSquare returns the chi-square statistic of the byte histogram against a
// uniform distribution.
func chiSquare(hist [256]int, total int) float64 {
	expected := float64(total) / 256
	var sum float64
	for _, observed := range hist {
		d := float64(observed) - expected
		sum += d * d / expected
	}
	return sum
}

func TestSharesLookUniform(t *testing.T) {
	const (
		splits    = 400
		secretLen = 64
		// 255 degrees of freedom: mean 255, standard deviation ~22.6.
		limit = 400
	)

	for _, fill := range []byte{0x00, 0x41, 0xff} {
		secret := bytes.Repeat([]byte{fill}, secretLen)

		var hist1, hist2 [256]int
		for i := 0; i < splits; i++ {
			share1, share2, err := Split(secret)
			if err != nil {
				t.Fatal(err)
			}
			p1, err := frame.Decode(share1)
			if err != nil {
				t.Fatal(err)
			}
			p2, err := frame.Decode(share2)
			if err != nil {
				t.Fatal(err)
			}
			for j := range p1 {
				hist1[p1[j]]++
				hist2[p2[j]]++
			}
		}

		if x := chiSquare(hist1, splits*secretLen); x > limit {
			t.Errorf("secret filled with %#x: share 1 chi-square = %.1f, want <= %d", fill, x, limit)
		}
		if x := chiSquare(hist2, splits*secretLen); x > limit {
			t.Errorf("secret filled with %#x: share 2 chi-square = %.1f, want <= %d", fill, x, limit)
		}
	}
}

func TestConcurrentSplitRecover(t *testing.T) {
	var wg sync.WaitGroup
	errs := make(chan error, 32)

	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			secret := random.GetRandomBytes(uint32(i * 7))
			share1, share2, err := Split(secret)
			if err != nil {
				errs <- err
				return
			}
			got, err := Recover(share1, share2)
			if err != nil {
				errs <- err
				return
			}
			if !bytes.Equal(got, secret) {
				errs <- errors.New("recovered secret does not match")
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}
