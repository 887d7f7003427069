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

// Package snapping provides a differentially private binary choice that snaps
// its probability computation onto a floating point grid coarse enough to be
// exact.
//
// BinaryChoice selects between two outcomes with probabilities proportional
// to exp(-i·ε·r/δᵣ) for i ∈ {0, 1}, where δ is a caller supplied weight, r is
// a power of 2 derived from δ and ε, and δᵣ is δ rounded up to a multiple of
// r. Because r is an exact power of 2 and δᵣ is an exact multiple of r, the
// quotient r/δᵣ and the resulting selection probability are free of the data
// dependent rounding errors that a naive evaluation of exp(-ε·i/δ) would
// exhibit; such errors are known to leak information about δ.
package snapping

import (
	"fmt"
	"math"

	"github.com/mozkeeler/dprio/checks"
	"github.com/mozkeeler/dprio/rand"
)

// bitWidth returns the number of significand bits required to evaluate the
// selection probability for the given ε without rounding, namely
// 10 + ⌊1 + log₂(2/ε)⌋. Smaller values of ε require more bits. The result is
// capped at 116 bits, i.e. ε ≤ 2⁻¹⁰⁵ yields an error wrapping
// checks.ErrParameter instead of an unworkably wide significand.
func bitWidth(epsilon float64) (int, error) {
	if err := checks.CheckEpsilonSelector(epsilon); err != nil {
		return 0, err
	}
	addition := 1.0 + math.Log2(2.0/epsilon)
	if addition >= 107.0 {
		return 0, fmt.Errorf("%w: Epsilon is %e which requires a bit width addition of %f, the addition must be less than 107", checks.ErrParameter, epsilon, addition)
	}
	return 10 + int(math.Trunc(addition)), nil
}

// roundingGranularity returns the power of 2 grid width r onto which delta is
// snapped before the selection probability is computed. r is the smallest
// power of 2 strictly greater than ⌊(δ/ε)·2ᵏ⌋ + 1 where k is the bit width
// for ε. It is determined with integer shifts rather than a float logarithm
// so that the result is exact.
func roundingGranularity(delta, epsilon float64) (float64, error) {
	if err := checks.CheckEpsilonStrict(epsilon); err != nil {
		return 0, err
	}
	if err := checks.CheckDelta(delta); err != nil {
		return 0, err
	}
	width, err := bitWidth(epsilon)
	if err != nil {
		return 0, err
	}
	scaled := delta / epsilon * math.Exp2(float64(width))
	if scaled >= math.Exp2(63.0) {
		return 0, fmt.Errorf("%w: Delta %e is too large compared to Epsilon %e, (Delta / Epsilon)·2^%d must be less than 2⁶³", checks.ErrParameter, delta, epsilon, width)
	}
	minimum := uint64(math.Trunc(scaled)) + 1
	powerOfTwo := uint64(1)
	for minimum > 0 {
		minimum >>= 1
		powerOfTwo <<= 1
	}
	return float64(powerOfTwo), nil
}

// roundToNearestMultiple rounds delta up to the nearest multiple of the grid
// width r.
func roundToNearestMultiple(delta, r float64) float64 {
	return r * math.Ceil(delta/r)
}

// BinaryChoiceProbability returns the probability with which BinaryChoice
// selects outcome 0 for the given delta and epsilon. It is subject to the
// same parameter domains as BinaryChoice.
func BinaryChoiceProbability(delta, epsilon float64) (float64, error) {
	if err := checks.CheckDeltaStrict(delta); err != nil {
		return 0, err
	}
	r, err := roundingGranularity(delta, epsilon)
	if err != nil {
		return 0, err
	}
	deltaR := roundToNearestMultiple(delta, r)
	// Weights of the two outcomes, proportional to exp(-i·ε·r/δᵣ). Since r
	// is a power of 2 and δᵣ a multiple of r, the quotient r/δᵣ is exact.
	proportionalProbability0 := 1.0
	proportionalProbability1 := math.Exp(-1.0 * epsilon * r / deltaR)
	return proportionalProbability0 / (proportionalProbability0 + proportionalProbability1), nil
}

// BinaryChoice returns 0 with probability 1/(1+exp(-ε·r/δᵣ)) and 1 otherwise,
// where r is the rounding granularity for delta and epsilon and δᵣ is delta
// rounded up to a multiple of r. Delta must be finite and strictly positive.
// Epsilon must be at least 1e-32 and in particular greater than 2⁻¹⁰⁵;
// smaller values would require the probability to be evaluated with more
// precision than a float64 carries.
func BinaryChoice(s *rand.Source, delta, epsilon float64) (uint64, error) {
	probability0, err := BinaryChoiceProbability(delta, epsilon)
	if err != nil {
		return 0, err
	}
	if s.Uniform() <= probability0 {
		return 0, nil
	}
	return 1, nil
}
