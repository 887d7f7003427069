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
	"math"

	"github.com/mozkeeler/dprio/checks"
	"github.com/mozkeeler/dprio/rand"
)

// Geometric draws a sample from a geometric distribution with parameter
//
//	p = 1 - e^-λ.
//
// More precisely, it returns the number of Bernoulli trials until the first
// success where the success probability is p = 1 - e^-λ. The returned sample
// is truncated to the max int64 value. To ensure that a truncation happens
// with probability less than 10⁻⁶, λ must be greater than 2⁻⁵⁹; smaller
// values fail with an error wrapping checks.ErrParameter.
//
// The distribution is inverted via repeated exact comparisons instead of a
// single floating point evaluation of the inverse CDF. Evaluating the inverse
// CDF directly leaks information through its rounding artifacts; the binary
// search below does not.
func Geometric(s *rand.Source, lambda float64) (int64, error) {
	if err := checks.CheckLambda(lambda); err != nil {
		return 0, err
	}

	// Return truncated sample in the case that the sample exceeds the max int64.
	if s.Uniform() > -1.0*math.Expm1(-1.0*lambda*math.MaxInt64) {
		return math.MaxInt64, nil
	}

	// Perform a binary search for the sample in the interval from 1 to max int64.
	// Each iteration splits the interval in two and randomly keeps either the
	// left or the right subinterval depending on the respective probability of
	// the sample being contained in them. The search ends once the interval only
	// contains a single sample.
	var left int64 = 0              // exclusive bound
	var right int64 = math.MaxInt64 // inclusive bound

	for left+1 < right {
		// Compute a midpoint that divides the probability mass of the current interval
		// approximately evenly between the left and right subinterval. The resulting
		// midpoint will be less or equal to the arithmetic mean of the interval. This
		// reduces the expected number of iterations of the binary search compared to a
		// search that uses the arithmetic mean as a midpoint. The speed up is more
		// pronounced the higher the success probability p is.
		//
		// Subtracting the floor of the correction term from the integer left is the
		// exact integer form of ⌈left - correction/λ⌉; it stays precise even when
		// left itself is too large to round-trip through a float64. The log1p and
		// expm1 forms are load-bearing: composing log and exp naively loses the
		// precision this sampler exists to guarantee.
		mid := left - int64(math.Floor((math.Log(0.5)+math.Log1p(math.Exp(lambda*float64(left-right))))/lambda))
		// Ensure that mid is contained in the search interval. This is a safeguard to
		// account for potential mathematical inaccuracies due to finite precision arithmetic.
		if mid <= left {
			mid = left + 1
		} else if mid >= right {
			mid = right - 1
		}

		// Probability that the sample is at most mid, i.e.,
		//   q = Pr[X ≤ mid | left < X ≤ right]
		// where X denotes the sample. The value of q should be approximately one half.
		q := math.Expm1(lambda*float64(left-mid)) / math.Expm1(lambda*float64(left-right))
		if s.Uniform() <= q {
			right = mid
		} else {
			left = mid
		}
	}
	return right, nil
}

// TwoSidedGeometric draws a sample from a geometric distribution that is
// mirrored at 0. The non-negative part of the distribution's PDF matches
// the PDF of a geometric distribution of parameter p = 1 - e^-λ that is
// shifted to the left by 1 and scaled accordingly. It fails for the same λ
// values Geometric fails for.
func TwoSidedGeometric(s *rand.Source, lambda float64) (int64, error) {
	var sample int64 = 0
	var sign int64 = -1
	// Keep a sample of 0 only if the sign is positive. Otherwise, the
	// probability of 0 would be twice as high as it should be.
	for sample == 0 && sign == -1 {
		geo, err := Geometric(s, lambda)
		if err != nil {
			return 0, err
		}
		sample = geo - 1
		sign = int64(s.Sign())
	}
	// sample is in [0, MaxInt64-1], so the negation cannot wrap around.
	return sample * sign, nil
}
