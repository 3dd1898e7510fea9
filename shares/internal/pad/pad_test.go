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


package pad

import (
	"bytes"
	"errors"
	"testing"

	"github.com/GoogleCloudPlatform/xplit/internal/testutil"
	"github.com/google/go-cmp/cmp"
	"github.com/google/tink/go/subtle/random"
)

func TestGenerateReturnsRequestedLength(t *testing.T) {
	for _, n := range []int{0, 1, 13, 4096} {
		p, err := Generate(TinkSource{}, n)
		if err != nil {
			t.Fatalf("Generate(TinkSource{}, %d) failed: %v", n, err)
		}
		if len(p) != n {
			t.Errorf("Generate(TinkSource{}, %d) returned %d bytes", n, len(p))
		}
	}
}

func TestGenerateZeroIsEmptyNotNil(t *testing.T) {
	p, err := Generate(testutil.FailingSource{}, 0)
	if err != nil {
		t.Fatalf("Generate(_, 0) = %v, want nil error", err)
	}
	if p == nil || len(p) != 0 {
		t.Errorf("Generate(_, 0) = %#v, want empty non-nil slice", p)
	}
}

func TestGenerateIsNotRepeated(t *testing.T) {
	a, err := Generate(TinkSource{}, 32)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Generate(TinkSource{}, 32)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(a, b) {
		t.Errorf("two 32-byte pads were identical: %x", a)
	}
}

func TestGenerateUsesSource(t *testing.T) {
	want := []byte{0xde, 0xad, 0xbe, 0xef}
	got, err := Generate(testutil.NewFixedSource(want), len(want))
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Generate() mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateFailures(t *testing.T) {
	testCases := []struct {
		name string
		src  Source
		n    int
	}{
		{name: "failing source", src: testutil.FailingSource{}, n: 8},
		{name: "stalled source", src: testutil.StalledSource{}, n: 8},
		{name: "exhausted source", src: testutil.NewFixedSource([]byte{1, 2, 3}), n: 8},
		{name: "nil source", src: nil, n: 8},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Generate(tc.src, tc.n); !errors.Is(err, ErrEntropy) {
				t.Errorf("Generate() = %v, want error wrapping ErrEntropy", err)
			}
		})
	}
}

func TestGenerateRejectsNegativeLength(t *testing.T) {
	if _, err := Generate(TinkSource{}, -1); err == nil {
		t.Fatal("Generate(_, -1) succeeded, want error")
	}
}

func TestCombineIsInvolution(t *testing.T) {
	for _, n := range []int{0, 1, 7, 256} {
		a := random.GetRandomBytes(uint32(n))
		b := random.GetRandomBytes(uint32(n))

		ab, err := Combine(a, b)
		if err != nil {
			t.Fatalf("Combine(a, b) failed: %v", err)
		}
		back, err := Combine(ab, b)
		if err != nil {
			t.Fatalf("Combine(Combine(a, b), b) failed: %v", err)
		}
		if !bytes.Equal(back, a) {
			t.Errorf("Combine(Combine(a, b), b) = %x, want %x", back, a)
		}
	}
}

func TestCombineKnownValues(t *testing.T) {
	got, err := Combine([]byte{0x00, 0xff, 0x0f, 0xaa}, []byte{0xff, 0xff, 0xf0, 0x55})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]byte{0xff, 0x00, 0xff, 0xff}, got); diff != "" {
		t.Errorf("Combine() mismatch (-want +got):\n%s", diff)
	}
}

func TestCombineDoesNotAliasInputs(t *testing.T) {
	a := []byte{1, 2, 3}
	b := []byte{0, 0, 0}
	out, err := Combine(a, b)
	if err != nil {
		t.Fatal(err)
	}
	out[0] = 9
	if a[0] != 1 {
		t.Errorf("Combine() output aliases its first input")
	}
}

func TestCombineLengthMismatch(t *testing.T) {
	_, err := Combine(make([]byte, 3), make([]byte, 5))

	var lenErr *LengthError
	if !errors.As(err, &lenErr) {
		t.Fatalf("Combine() = %v, want *LengthError", err)
	}
	if diff := cmp.Diff(&LengthError{Len1: 3, Len2: 5}, lenErr); diff != "" {
		t.Errorf("LengthError mismatch (-want +got):\n%s", diff)
	}
}
