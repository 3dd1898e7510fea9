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


// Package testutil contains deterministic random sources for unit tests.
package testutil

import (
	"errors"
	"io"
	"sync"
)

// ErrSourceFailed is returned by FailingSource.
var ErrSourceFailed = errors.New("test source failed")

// FixedSource hands out a predetermined byte stream and then reports
// io.ErrUnexpectedEOF.
type FixedSource struct {
	mu   sync.Mutex
	data []byte
}

// NewFixedSource returns a source that yields data exactly once.
func NewFixedSource(data []byte) *FixedSource {
	return &FixedSource{data: append([]byte(nil), data...)}
}

func (s *FixedSource) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := copy(p, s.data)
	s.data = s.data[n:]
	if n < len(p) {
		return n, io.ErrUnexpectedEOF
	}
	return n, nil
}

// ConstantSource fills every request with the same byte.
type ConstantSource byte

func (c ConstantSource) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(c)
	}
	return len(p), nil
}

// FailingSource always fails.
type FailingSource struct{}

func (FailingSource) Read([]byte) (int, error) {
	return 0, ErrSourceFailed
}

// StalledSource returns no bytes and no error.
type StalledSource struct{}

func (StalledSource) Read([]byte) (int, error) {
	return 0, nil
}
