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

// Package checks contains parameter checks for the noise generation
// primitives. All checks report domain violations as errors wrapping
// ErrParameter, so callers can discriminate them with errors.Is without
// inspecting messages.
package checks

import (
	"errors"
	"fmt"
	"math"
)

// ErrParameter is the single error kind for parameters outside their
// documented domains. Sampling never proceeds on a wrapped ErrParameter;
// returning a default or partial noise value would leak the exact input.
var ErrParameter = errors.New("parameter out of domain")

// lambdaLowThreshold is the smallest usable scale parameter for geometric
// sampling. Below 2⁻⁵⁹ the binary-search inversion loses too much precision
// to guarantee the sampled distribution.
var lambdaLowThreshold = math.Exp2(-59.0)

// epsilonSelectorMin is the smallest ε for which the snapped binary choice
// can compute a bit width.
const epsilonSelectorMin = 1.0e-32

// CheckL1Sensitivity returns an error if l1Sensitivity is nonpositive or +∞.
func CheckL1Sensitivity(l1Sensitivity float64) error {
	if l1Sensitivity <= 0 || math.IsInf(l1Sensitivity, 0) || math.IsNaN(l1Sensitivity) {
		return fmt.Errorf("%w: L1Sensitivity is %f, must be strictly positive and finite", ErrParameter, l1Sensitivity)
	}
	return nil
}

// CheckEpsilonStrict returns an error if ε is nonpositive or +∞.
func CheckEpsilonStrict(epsilon float64) error {
	if epsilon <= 0 || math.IsInf(epsilon, 0) || math.IsNaN(epsilon) {
		return fmt.Errorf("%w: Epsilon is %f, must be strictly positive and finite", ErrParameter, epsilon)
	}
	return nil
}

// CheckEpsilonSelector returns an error if ε is below 1e-32 or +∞. The
// snapped binary choice needs this stronger lower bound so that the bit
// width 10+⌊1+log₂(2/ε)⌋ stays representable.
func CheckEpsilonSelector(epsilon float64) error {
	if epsilon < epsilonSelectorMin || math.IsInf(epsilon, 0) || math.IsNaN(epsilon) {
		return fmt.Errorf("%w: Epsilon is %e, must be at least 1e-32 and finite", ErrParameter, epsilon)
	}
	return nil
}

// CheckDelta returns an error if δ is negative or not finite. Unlike a
// privacy parameter, δ here is a numeric bound on the protected value, so
// values of 1 and above are legal.
func CheckDelta(delta float64) error {
	if math.IsNaN(delta) {
		return fmt.Errorf("%w: Delta is %e, cannot be NaN", ErrParameter, delta)
	}
	if math.IsInf(delta, 0) {
		return fmt.Errorf("%w: Delta is %e, must be finite", ErrParameter, delta)
	}
	if delta < 0 {
		return fmt.Errorf("%w: Delta is %e, cannot be negative", ErrParameter, delta)
	}
	return nil
}

// CheckDeltaStrict returns an error if δ is nonpositive or not finite.
func CheckDeltaStrict(delta float64) error {
	if math.IsNaN(delta) {
		return fmt.Errorf("%w: Delta is %e, cannot be NaN", ErrParameter, delta)
	}
	if math.IsInf(delta, 0) {
		return fmt.Errorf("%w: Delta is %e, must be finite", ErrParameter, delta)
	}
	if delta <= 0 {
		return fmt.Errorf("%w: Delta is %e, must be strictly positive", ErrParameter, delta)
	}
	return nil
}

// CheckLambda returns an error if λ is at most 2⁻⁵⁹ or NaN.
func CheckLambda(lambda float64) error {
	if lambda <= lambdaLowThreshold || math.IsNaN(lambda) {
		return fmt.Errorf("%w: Lambda is %e, must be greater than 2^-59", ErrParameter, lambda)
	}
	return nil
}

// CheckMaxContributions returns an error if maxContributions is nonpositive.
func CheckMaxContributions(maxContributions int64) error {
	if maxContributions <= 0 {
		return fmt.Errorf("%w: MaxContributions is %d, must be strictly positive", ErrParameter, maxContributions)
	}
	return nil
}

// CheckBoundsInt64 returns an error if lower is larger than upper, and
// ensures the bounds won't lead to sensitivity overflow.
func CheckBoundsInt64(lower, upper int64) error {
	if lower == math.MinInt64 || upper == math.MinInt64 {
		return fmt.Errorf("%w: Lower bound (%d) and upper bound (%d) must be strictly larger than MinInt64=%d to avoid sensitivity overflow", ErrParameter, lower, upper, math.MinInt64)
	}
	if lower > upper {
		return fmt.Errorf("%w: Upper bound (%d) must be larger than lower bound (%d)", ErrParameter, upper, lower)
	}
	return nil
}
