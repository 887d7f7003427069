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

// Package dpagg contains differentially private aggregation primitives built
// on the discrete noise generation in package noise.
package dpagg

import (
	"fmt"
	"math"

	"github.com/mozkeeler/dprio/checks"
	"github.com/mozkeeler/dprio/noise"
	"github.com/mozkeeler/dprio/rand"
)

// BoundedSumInt64 calculates a differentially private sum of a collection of
// int64 values. Each summand is clamped into [Lower, Upper] before it is
// added, and a single privacy unit may contribute at most MaxContributions
// summands, so the L_1 sensitivity of the sum is
// max(|Lower|, |Upper|)·MaxContributions and the added noise is calibrated
// accordingly. If a privacy unit contributes more summands than declared, the
// contributions should be pre-aggregated before passing them to
// BoundedSumInt64.
//
// The provided differentially private sum is an unbiased estimate of the raw
// bounded sum in the sense that its expected value is equal to the raw
// bounded sum.
//
// Note: Do not use when your results may cause overflows for int64
// values. This aggregation is not hardened for such applications yet.
//
// Not thread-safe.
type BoundedSumInt64 struct {
	// Parameters
	epsilon          float64
	l1Sensitivity    int64
	maxContributions int64
	lower            int64
	upper            int64
	src              *rand.Source

	// State variables
	sum   int64
	state aggregationState
}

func bsEquallyInitializedInt64(bs1, bs2 *BoundedSumInt64) bool {
	return bs1.epsilon == bs2.epsilon &&
		bs1.maxContributions == bs2.maxContributions &&
		bs1.lower == bs2.lower &&
		bs1.upper == bs2.upper &&
		bs1.state == bs2.state
}

// BoundedSumInt64Options contains the options necessary to initialize a
// BoundedSumInt64.
type BoundedSumInt64Options struct {
	Epsilon          float64 // Privacy parameter ε. Required.
	MaxContributions int64   // How many summands may a single privacy unit contribute? Required.
	// Lower and Upper bounds for clamping. Required; must be such that
	// Lower <= Upper, and they cannot be both 0.
	Lower, Upper int64
	Rand         *rand.Source // Source of randomness. Defaults to a fresh cryptographically secure source.
}

// NewBoundedSumInt64 returns a new BoundedSumInt64, whose sum is initialized
// at 0.
func NewBoundedSumInt64(opt *BoundedSumInt64Options) (*BoundedSumInt64, error) {
	if opt == nil {
		opt = &BoundedSumInt64Options{} // Prevents panicking due to a nil pointer dereference.
	}

	maxContributions := opt.MaxContributions
	if maxContributions == 0 {
		return nil, fmt.Errorf("NewBoundedSumInt64: MaxContributions must be set")
	}
	if err := checks.CheckMaxContributions(maxContributions); err != nil {
		return nil, fmt.Errorf("NewBoundedSumInt64: %w", err)
	}

	// Check bounds and use them to compute the L_1 sensitivity.
	lower, upper := opt.Lower, opt.Upper
	if lower == 0 && upper == 0 {
		return nil, fmt.Errorf("NewBoundedSumInt64: Lower and Upper must be set (automatic bounds determination is not implemented yet). Lower and Upper cannot be both 0")
	}
	if err := checks.CheckBoundsInt64(lower, upper); err != nil {
		return nil, fmt.Errorf("NewBoundedSumInt64: %w", err)
	}
	l1, err := getL1Int(lower, upper, maxContributions)
	if err != nil {
		return nil, fmt.Errorf("NewBoundedSumInt64: %w", err)
	}

	src := opt.Rand
	if src == nil {
		src = rand.NewSource()
	}
	// Check that the parameters are compatible with the noise generation by
	// adding noise to some placeholder value.
	if _, err := noise.AddInt64(src, 0, float64(l1), opt.Epsilon); err != nil {
		return nil, fmt.Errorf("NewBoundedSumInt64: %w", err)
	}

	return &BoundedSumInt64{
		epsilon:          opt.Epsilon,
		l1Sensitivity:    l1,
		maxContributions: maxContributions,
		lower:            lower,
		upper:            upper,
		src:              src,
		sum:              0,
		state:            defaultState,
	}, nil
}

// l1IntOverflows checks if multiplication of the given numbers overflows int64.
// If x != x*y/y then x*y overflowed and the multiplication result is incorrect.
// Thus, the equation evaluates to false.
func l1IntOverflows(bound, maxContributions int64) bool {
	mult := bound * maxContributions
	return mult/maxContributions != bound
}

// getL1Int checks that the sensitivity parameters will not create overflow
// errors, and returns the L_1 sensitivity of the BoundedSum object, which is
// calculated by the formula max(|lower|, |upper|) * maxContributions.
func getL1Int(lower, upper, maxContributions int64) (int64, error) {
	// If lower or upper is math.MinInt64, the sensitivity will overflow.
	if lower == math.MinInt64 || upper == math.MinInt64 {
		return math.MaxInt64, fmt.Errorf("lower = %d and upper = %d must be strictly larger than math.MinInt64 to avoid sensitivity overflow", lower, upper)
	}
	if lower < 0 {
		lower = -lower
	}
	if upper < 0 {
		upper = -upper
	}
	if l1IntOverflows(lower, maxContributions) {
		return math.MaxInt64, fmt.Errorf(
			"lower = %d and maxContributions = %d are too high - the L_1 sensitivity may overflow",
			lower, maxContributions)
	}
	if l1IntOverflows(upper, maxContributions) {
		return math.MaxInt64, fmt.Errorf(
			"upper = %d and maxContributions = %d are too high - the L_1 sensitivity may overflow",
			upper, maxContributions)
	}
	if lower > upper {
		return lower * maxContributions, nil
	}
	return upper * maxContributions, nil
}

// Add adds a new summand to the BoundedSumInt64, clamping it into
// [Lower, Upper] first.
func (bs *BoundedSumInt64) Add(e int64) error {
	if bs.state != defaultState {
		return fmt.Errorf("BoundedSumInt64 cannot be amended: %v", bs.state.errorMessage())
	}
	clamped, err := ClampInt64(e, bs.lower, bs.upper)
	if err != nil {
		return fmt.Errorf("couldn't clamp input value %v: %w", e, err)
	}
	bs.sum += clamped
	return nil
}

// Merge merges bs2 into bs (i.e., adds to bs all entries that were added to
// bs2). bs2 is consumed by this operation: bs2 may not be used after it is
// merged into bs.
func (bs *BoundedSumInt64) Merge(bs2 *BoundedSumInt64) error {
	if err := checkMergeBoundedSumInt64(bs, bs2); err != nil {
		return err
	}
	bs.sum += bs2.sum
	bs2.state = merged
	return nil
}

func checkMergeBoundedSumInt64(bs1, bs2 *BoundedSumInt64) error {
	if bs1.state != defaultState {
		return fmt.Errorf("checkMergeBoundedSumInt64: bs1 cannot be merged with another BoundedSum instance: %v", bs1.state.errorMessage())
	}
	if bs2.state != defaultState {
		return fmt.Errorf("checkMergeBoundedSumInt64: bs2 cannot be merged with another BoundedSum instance: %v", bs2.state.errorMessage())
	}
	if !bsEquallyInitializedInt64(bs1, bs2) {
		return fmt.Errorf("checkMergeBoundedSumInt64: bs1 and bs2 are not compatible")
	}
	return nil
}

// Result returns a differentially private estimate of the sum of bounded
// elements added so far. The method can be called only once.
//
// The returned value is an unbiased estimate of the raw bounded sum.
//
// The returned value may sometimes be outside the set of possible raw bounded
// sums, e.g., the differentially private bounded sum may be positive although
// neither the lower nor the upper bound are positive. This can be corrected
// by the caller of this method, e.g., by snapping the result to the closest
// value representing a bounded sum that is possible. Note that such post
// processing introduces bias to the result.
func (bs *BoundedSumInt64) Result() (int64, error) {
	if bs.state != defaultState {
		return 0, fmt.Errorf("BoundedSumInt64's noised result cannot be computed: %v", bs.state.errorMessage())
	}
	bs.state = resultReturned
	return noise.AddInt64(bs.src, bs.sum, float64(bs.l1Sensitivity), bs.epsilon)
}
