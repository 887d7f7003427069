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

// Package noise generates discrete noise for differential privacy. The noise
// follows a symmetric geometric distribution, the discrete analogue of the
// Laplace distribution, and is sampled by a mechanism that is robust against
// unintentional privacy leaks due to artifacts of floating point arithmetic.
// See
// https://github.com/google/differential-privacy/blob/main/common_docs/Secure_Noise_Generation.pdf
// for more information.
//
// All sampling functions take an explicit *rand.Source. Production callers
// pass a cryptographically secure source (rand.NewSource); tests pass
// deterministic sources for exact replay.
package noise

import (
	"fmt"
	"math"

	"github.com/mozkeeler/dprio/checks"
	"github.com/mozkeeler/dprio/rand"
)

// Int64 returns a fresh noise value calibrated to the given L_1 sensitivity
// and ε, suitable for addition to a private integer aggregate.
//
// The sample is drawn from a two-sided geometric distribution with parameter
// λ = granularity·ε / (l1Sensitivity + granularity) and then scaled by the
// granularity. Sub-unit granularities scale in the float domain and round to
// the nearest integer; granularities above 1 are exact powers of 2 and scale
// by exact integer multiplication so that no floating point rounding is
// introduced.
func Int64(s *rand.Source, l1Sensitivity, epsilon float64) (int64, error) {
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
	if granularity >= math.Exp2(63.0) {
		return 0, fmt.Errorf("%w: granularity is %e, must be smaller than 2^63 to be representable as an int64", checks.ErrParameter, granularity)
	}
	sample, err := TwoSidedGeometric(s, granularity*epsilon/(l1Sensitivity+granularity))
	if err != nil {
		return 0, err
	}
	if granularity <= 1 {
		return saturatedInt64(math.Round(float64(sample) * granularity)), nil
	}
	return sample * int64(granularity), nil
}

// AddInt64 adds noise calibrated to the given L_1 sensitivity and ε to the
// specified int64 x. For granularities above 1, x is first rounded to the
// nearest multiple of the granularity so that the noised value does not
// reveal x at a finer resolution than the noise itself.
func AddInt64(s *rand.Source, x int64, l1Sensitivity, epsilon float64) (int64, error) {
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
	if granularity >= math.Exp2(63.0) {
		return 0, fmt.Errorf("%w: granularity is %e, must be smaller than 2^63 to be representable as an int64", checks.ErrParameter, granularity)
	}
	sample, err := TwoSidedGeometric(s, granularity*epsilon/(l1Sensitivity+granularity))
	if err != nil {
		return 0, err
	}
	if granularity <= 1 {
		return x + saturatedInt64(math.Round(float64(sample)*granularity)), nil
	}
	return roundToMultiple(x, int64(granularity)) + sample*int64(granularity), nil
}
