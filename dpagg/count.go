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

package dpagg

import (
	"fmt"

	"github.com/mozkeeler/dprio/checks"
	"github.com/mozkeeler/dprio/noise"
	"github.com/mozkeeler/dprio/rand"
)

// Count calculates a differentially private count of a collection of values.
//
// It supports privacy units that contribute to the count multiple times (via
// the MaxContributions parameter) by scaling the added noise appropriately:
// the noise is calibrated to an L_1 sensitivity of MaxContributions.
//
// The provided differentially private count is an unbiased estimate of the raw
// count meaning that its expected value is equal to the raw count.
//
// Note: Do not use when your results may cause overflows for int64 values.
// This aggregation is not hardened for such applications yet.
//
// Not thread-safe.
type Count struct {
	// Parameters
	epsilon          float64
	maxContributions int64
	src              *rand.Source

	// State variables
	count int64
	state aggregationState
}

func countEquallyInitialized(c1, c2 *Count) bool {
	return c1.epsilon == c2.epsilon &&
		c1.maxContributions == c2.maxContributions &&
		c1.state == c2.state
}

// CountOptions contains the options necessary to initialize a Count.
type CountOptions struct {
	Epsilon          float64      // Privacy parameter ε. Required.
	MaxContributions int64        // How many times may a single privacy unit contribute? Defaults to 1.
	Rand             *rand.Source // Source of randomness. Defaults to a fresh cryptographically secure source.
}

// NewCount returns a new Count, initialized at 0.
func NewCount(opt *CountOptions) (*Count, error) {
	if opt == nil {
		opt = &CountOptions{} // Prevents panicking due to a nil pointer dereference.
	}

	maxContributions := opt.MaxContributions
	if maxContributions == 0 {
		maxContributions = 1
	}
	if err := checks.CheckMaxContributions(maxContributions); err != nil {
		return nil, fmt.Errorf("NewCount: %w", err)
	}

	src := opt.Rand
	if src == nil {
		src = rand.NewSource()
	}
	// Check that the parameters are compatible with the noise generation by
	// adding noise to some placeholder value.
	if _, err := noise.AddInt64(src, 0, float64(maxContributions), opt.Epsilon); err != nil {
		return nil, fmt.Errorf("NewCount: %w", err)
	}

	return &Count{
		epsilon:          opt.Epsilon,
		maxContributions: maxContributions,
		src:              src,
		count:            0,
		state:            defaultState,
	}, nil
}

// Increment increments the count by one.
func (c *Count) Increment() error {
	return c.IncrementBy(1)
}

// IncrementBy increments the count by the given value.
// Note that this shouldn't be used to raise a single privacy unit's
// contribution beyond what MaxContributions declares; it is meant for adding
// batches of entries from distinct privacy units.
func (c *Count) IncrementBy(count int64) error {
	if c.state != defaultState {
		return fmt.Errorf("Count cannot be amended: %v", c.state.errorMessage())
	}
	c.count += count
	return nil
}

// Merge merges c2 into c (i.e., adds to c all entries that were added to c2).
// c2 is consumed by this operation: it may not be used after it is merged
// into c.
func (c *Count) Merge(c2 *Count) error {
	if err := checkMergeCount(c, c2); err != nil {
		return err
	}
	c.count += c2.count
	c2.state = merged
	return nil
}

func checkMergeCount(c1, c2 *Count) error {
	if c1.state != defaultState {
		return fmt.Errorf("checkMergeCount: c1 cannot be merged with another Count instance: %v", c1.state.errorMessage())
	}
	if c2.state != defaultState {
		return fmt.Errorf("checkMergeCount: c2 cannot be merged with another Count instance: %v", c2.state.errorMessage())
	}
	if !countEquallyInitialized(c1, c2) {
		return fmt.Errorf("checkMergeCount: c1 and c2 are not compatible")
	}
	return nil
}

// Result returns a differentially private estimate of the current count. The
// method can be called only once.
//
// The returned value is an unbiased estimate of the raw count.
//
// The returned value may sometimes be negative. This can be corrected by
// setting negative results to 0. Note that such post processing introduces
// bias to the result.
func (c *Count) Result() (int64, error) {
	if c.state != defaultState {
		return 0, fmt.Errorf("Count's noised result cannot be computed: %v", c.state.errorMessage())
	}
	c.state = resultReturned
	return noise.AddInt64(c.src, c.count, float64(c.maxContributions), c.epsilon)
}
