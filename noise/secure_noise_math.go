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

package noise

import (
	"fmt"
	"math"

	"github.com/mozkeeler/dprio/checks"
)

// granularityParam determines the resolution of the numerical noise that is
// being generated relative to the L_1 sensitivity and privacy parameter
// epsilon. More precisely, the granularity parameter corresponds to the value
// 2ᵏ described in
// https://github.com/google/differential-privacy/blob/main/common_docs/Secure_Noise_Generation.pdf.
// Larger values result in more fine grained noise, but increase the chance of
// sampling inaccuracies due to overflows.
//
// This parameter must be a power of 2.
var granularityParam = math.Exp2(40)

// CeilPowerOfTwo returns the smallest power of 2 larger or equal to x that is
// reachable by doubling from 2⁰. The value of x must be a nonnegative number
// not greater than 2¹⁰²³; inputs of 1 or less (including 0) yield 1. The
// result is guaranteed to be an exact power of 2.
//
// The exponent is found by an exact doubling search rather than by rounding a
// logarithm. A logarithm-then-round approach can land one power of 2 off for
// inputs close to a power of 2, which would silently change the scale of the
// generated noise.
func CeilPowerOfTwo(x float64) (float64, error) {
	if x < 0.0 || math.IsNaN(x) {
		return 0, fmt.Errorf("%w: x is %f, must be a nonnegative number", checks.ErrParameter, x)
	}
	if x > math.Exp2(1023.0) {
		return 0, fmt.Errorf("%w: x is %e, must not be greater than 2^1023", checks.ErrParameter, x)
	}
	exponent := 0.0
	val := math.Exp2(exponent)
	for val < x {
		exponent++
		val = math.Exp2(exponent)
	}
	return val, nil
}

// Granularity returns the resolution at which noise for the given L_1
// sensitivity and ε is generated: the smallest reachable power of 2 at or
// above l1Sensitivity/epsilon, divided by granularityParam. The fixed divisor
// reserves resolution headroom below the sensitivity/epsilon ratio so the
// sampler has enough precision to work with. The result is always an exact
// power of 2.
func Granularity(l1Sensitivity, epsilon float64) (float64, error) {
	v, err := CeilPowerOfTwo(l1Sensitivity / epsilon)
	if err != nil {
		return 0, err
	}
	return v / granularityParam, nil
}

// MinBits returns the minimum number of random bits the geometric sampler
// needs to consume to keep its statistical bias below the target of the
// underlying analysis, namely ⌈log₂(6·ln(10)·granularity/λ)⌉ with λ computed
// the same way Int64 computes it. The value is advisory; sampling does not
// depend on it.
func MinBits(l1Sensitivity, epsilon float64) (uint, error) {
	if err := checks.CheckL1Sensitivity(l1Sensitivity); err != nil {
		return 0, err
	}
	if err := checks.CheckEpsilonStrict(epsilon); err != nil {
		return 0, err
	}
	granularity, err := Granularity(l1Sensitivity, epsilon)
	if err != nil {
		return 0, err
	}
	lambda := granularity * epsilon / (l1Sensitivity + granularity)
	if err := checks.CheckLambda(lambda); err != nil {
		return 0, err
	}
	ratio := 6.0 * math.Ln10 * granularity / lambda
	if math.IsInf(ratio, 1) {
		return 0, fmt.Errorf("%w: bit budget for L1Sensitivity %e and Epsilon %e is not representable", checks.ErrParameter, l1Sensitivity, epsilon)
	}
	bits := math.Ceil(math.Log2(ratio))
	if bits < 0 {
		bits = 0
	}
	return uint(bits), nil
}

// roundToMultiple returns the multiple of granularity that is closest to x.
// Ties are resolved away from zero. The value of granularity must be
// positive.
func roundToMultiple(x, granularity int64) int64 {
	result := x / granularity * granularity
	if x%granularity >= (granularity+1)/2 {
		result += granularity
	}
	if x%granularity <= -(granularity+1)/2 {
		result -= granularity
	}
	return result
}

// saturatedInt64 converts v to an int64, saturating at the int64 range
// bounds. The conversion of an out-of-range float64 is left
// implementation-defined by the language, so the bounds are checked
// explicitly.
func saturatedInt64(v float64) int64 {
	if v >= math.MaxInt64 {
		return math.MaxInt64
	}
	if v <= math.MinInt64 {
		return math.MinInt64
	}
	return int64(v)
}
