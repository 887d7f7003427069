//
// Copyright 2020 Google LLC
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
//

// Package rand provides randomness sources for the noise generation
// primitives. A Source is an explicit capability: every sampling function
// takes one as a parameter, and there is no hidden package-level generator.
package rand

import (
	"bufio"
	cryptorand "crypto/rand"
	"encoding/binary"
	"io"
	"math"
	"math/bits"
	"sync"

	log "github.com/golang/glog"
	"golang.org/x/crypto/sha3"
)

// Source draws uniform bits from an underlying reader and derives the
// primitive distributions the samplers consume. A Source is safe for
// concurrent use; independent computations should still prefer independent
// Sources so their draw sequences stay reproducible.
type Source struct {
	mu sync.Mutex
	r  io.Reader

	bitMu  sync.Mutex
	bitBuf uint8
	bitPos int8
}

// NewSource returns a cryptographically secure Source backed by a buffered
// crypto/rand reader.
func NewSource() *Source {
	return NewReaderSource(bufio.NewReaderSize(cryptorand.Reader, 65536))
}

// NewReaderSource returns a Source that draws its bits from r. The caller is
// responsible for the quality of r; tests use fixed byte streams for exact
// replay.
func NewReaderSource(r io.Reader) *Source {
	return &Source{r: r, bitPos: math.MaxInt8}
}

// NewSeededSource returns a deterministic Source whose bit stream is the
// SHAKE256 expansion of seed. Equal seeds yield equal draw sequences, which
// makes noise generation replayable without weakening the stream's
// statistical quality.
func NewSeededSource(seed []byte) *Source {
	h := sha3.NewShake256()
	h.Write(seed)
	return NewReaderSource(h)
}

func (s *Source) read(b []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return io.ReadFull(s.r, b)
}

// U64 returns a uniformly random uint64.
func (s *Source) U64() uint64 {
	var r [8]uint8
	if _, err := s.read(r[:]); err != nil {
		log.Fatalf("out of randomness, should never happen: %v", err)
	}
	return binary.LittleEndian.Uint64(r[:])
}

// U8 returns a uniformly random uint8.
func (s *Source) U8() uint8 {
	var r [1]uint8
	if _, err := s.read(r[:]); err != nil {
		log.Fatalf("out of randomness, should never happen: %v", err)
	}
	return r[0]
}

// Sign returns +1.0 or -1.0 with equal probabilities.
func (s *Source) Sign() float64 {
	if s.Boolean() {
		return 1.0
	}
	return -1.0
}

// Boolean returns true or false with equal probability.
func (s *Source) Boolean() bool {
	s.bitMu.Lock()
	defer s.bitMu.Unlock()
	if s.bitPos > 7 { // Out of random bits.
		s.bitBuf = s.U8()
		s.bitPos = 0
	}
	res := s.bitBuf&(1<<s.bitPos) > 0
	s.bitPos++
	return res
}

// I63n returns an integer from the set {0,...,n-1} uniformly at random.
// The value of n must be positive. This is the bounded uniform draw that
// external consumers of the randomness capability rely on.
func (s *Source) I63n(n int64) int64 {
	largestMultipleOfN := (math.MaxInt64 / n) * n
	var positiveRandomInteger int64
	for true {
		// Draw random 64 bit sequence and set sign bit to 0.
		positiveRandomInteger = int64(s.U64()) & 0x7fffffffffffffff
		if positiveRandomInteger < largestMultipleOfN {
			break
		}
	}
	return positiveRandomInteger % n
}

// Uniform returns a float64 from the interval (0,1] such that each float
// in the interval is returned with positive probability and the resulting
// distribution simulates a continuous uniform distribution on (0, 1].
func (s *Source) Uniform() float64 {
	i := s.U64() % (1 << 53)
	r := (1 + float64(i)/(1<<53)) / math.Pow(2, s.Geometric())
	// We want to avoid returning 0, since we're taking the log of the output.
	if r == 0 {
		return 1
	}
	return r
}

// Geometric returns a float64 that counts the number of Bernoulli trials until
// the first success for a success probability of 0.5.
func (s *Source) Geometric() float64 {
	// 1 plus the number of leading zeros from an infinite stream of random bits
	// follows the desired geometric distribution.
	b := 1
	var r uint8
	for r == 0 {
		r = s.U8()
		b += bits.LeadingZeros8(r)
	}
	return float64(b)
}
