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
	"errors"
	"math"
	"testing"

	"github.com/mozkeeler/dprio/checks"
)

func TestCeilPowerOfTwo(t *testing.T) {
	for _, tc := range []struct {
		desc string
		x    float64
		want float64
	}{
		{"zero yields the base case", 0.0, 1.0},
		{"fractional input rounds up to the base case", 0.3, 1.0},
		{"one is a power of 2", 1.0, 1.0},
		{"rounds up between powers", 1.5, 2.0},
		{"two is a power of 2", 2.0, 2.0},
		{"five rounds up to eight", 5.0, 8.0},
		{"eight is a power of 2", 8.0, 8.0},
		{"just below a power of 2", 1023.9, 1024.0},
		{"just above a power of 2", 1024.1, 2048.0},
		{"large power of 2", math.Exp2(52.0), math.Exp2(52.0)},
		{"just above a large power of 2", math.Exp2(52.0) + 1.0, math.Exp2(53.0)},
		{"upper end of the domain", math.Exp2(1023.0), math.Exp2(1023.0)},
		{"between the two largest powers", 1.5 * math.Exp2(1022.0), math.Exp2(1023.0)},
	} {
		got, err := CeilPowerOfTwo(tc.x)
		if err != nil {
			t.Errorf("CeilPowerOfTwo(%g): when %s got unexpected error %v", tc.x, tc.desc, err)
		}
		if got != tc.want {
			t.Errorf("CeilPowerOfTwo(%g): when %s got %g, want %g", tc.x, tc.desc, got, tc.want)
		}
	}
}

func TestCeilPowerOfTwoResultIsSmallestPower(t *testing.T) {
	// For inputs of at least 1, halving the result must land strictly below
	// the input, otherwise a smaller power of 2 would have sufficed.
	for _, x := range []float64{1.0, 1.1, 2.0, 3.0, 5.0, 41.0, 1024.0, 1e10, 1.0001 * math.Exp2(1000.0)} {
		got, err := CeilPowerOfTwo(x)
		if err != nil {
			t.Fatalf("CeilPowerOfTwo(%g): got unexpected error %v", x, err)
		}
		if got < x {
			t.Errorf("CeilPowerOfTwo(%g): got %g, want a value at least %g", x, got, x)
		}
		if got/2.0 >= x {
			t.Errorf("CeilPowerOfTwo(%g): got %g, but %g is already large enough", x, got, got/2.0)
		}
	}
}

func TestCeilPowerOfTwoErrors(t *testing.T) {
	for _, tc := range []struct {
		desc string
		x    float64
	}{
		{"negative input", -1.0},
		{"input is NaN", math.NaN()},
		{"input is negative infinity", math.Inf(-1)},
		{"input is positive infinity", math.Inf(1)},
		{"input above 2^1023", 1.1 * math.Exp2(1023.0)},
		{"input is max float64", math.MaxFloat64},
	} {
		if _, err := CeilPowerOfTwo(tc.x); !errors.Is(err, checks.ErrParameter) {
			t.Errorf("CeilPowerOfTwo(%g): when %s got %v, want an error wrapping ErrParameter", tc.x, tc.desc, err)
		}
	}
}

func TestGranularity(t *testing.T) {
	for _, tc := range []struct {
		desc                   string
		l1Sensitivity, epsilon float64
		want                   float64
	}{
		{"unit sensitivity and epsilon", 1.0, 1.0, math.Exp2(-40.0)},
		{"sensitivity twice the epsilon", 2.0, 1.0, math.Exp2(-39.0)},
		{"epsilon above the sensitivity", 1.0, 2.0, math.Exp2(-40.0)},
		{"ratio rounds up to the next power", 1000.0, 1.0, math.Exp2(-30.0)},
		{"ratio above 2^40", math.Exp2(42.0), 1.0, 4.0},
	} {
		got, err := Granularity(tc.l1Sensitivity, tc.epsilon)
		if err != nil {
			t.Errorf("Granularity(%g, %g): when %s got unexpected error %v", tc.l1Sensitivity, tc.epsilon, tc.desc, err)
		}
		if got != tc.want {
			t.Errorf("Granularity(%g, %g): when %s got %g, want %g", tc.l1Sensitivity, tc.epsilon, tc.desc, got, tc.want)
		}
	}
}

func TestGranularityErrors(t *testing.T) {
	for _, tc := range []struct {
		desc                   string
		l1Sensitivity, epsilon float64
	}{
		{"negative sensitivity", -1.0, 1.0},
		{"negative epsilon", 1.0, -1.0},
		{"both zero", 0.0, 0.0},
		{"ratio above 2^1023", math.MaxFloat64, 1.0e-10},
	} {
		if _, err := Granularity(tc.l1Sensitivity, tc.epsilon); !errors.Is(err, checks.ErrParameter) {
			t.Errorf("Granularity(%g, %g): when %s got %v, want an error wrapping ErrParameter", tc.l1Sensitivity, tc.epsilon, tc.desc, err)
		}
	}
}

func TestMinBits(t *testing.T) {
	for _, tc := range []struct {
		desc                   string
		l1Sensitivity, epsilon float64
		want                   uint
	}{
		// 6·ln(10)·granularity/λ = 6·ln(10)·(l1Sensitivity+granularity)/ε,
		// so the expected values are ⌈log₂(13.8155...·(l1+g)/ε)⌉.
		{"unit sensitivity and epsilon", 1.0, 1.0, 4},
		{"quarter epsilon", 1.0, 0.25, 6},
		{"sensitivity of 16", 16.0, 1.0, 8},
		{"large epsilon clamps to zero", 1.0, 1.0e10, 0},
	} {
		got, err := MinBits(tc.l1Sensitivity, tc.epsilon)
		if err != nil {
			t.Errorf("MinBits(%g, %g): when %s got unexpected error %v", tc.l1Sensitivity, tc.epsilon, tc.desc, err)
		}
		if got != tc.want {
			t.Errorf("MinBits(%g, %g): when %s got %d, want %d", tc.l1Sensitivity, tc.epsilon, tc.desc, got, tc.want)
		}
	}
}

func TestMinBitsErrors(t *testing.T) {
	for _, tc := range []struct {
		desc                   string
		l1Sensitivity, epsilon float64
	}{
		{"zero sensitivity", 0.0, 1.0},
		{"negative sensitivity", -1.0, 1.0},
		{"sensitivity is NaN", math.NaN(), 1.0},
		{"zero epsilon", 1.0, 0.0},
		{"epsilon is NaN", 1.0, math.NaN()},
		{"epsilon is positive infinity", 1.0, math.Inf(1)},
		{"derived lambda is too small", 1.0, math.Exp2(-60.0)},
	} {
		if _, err := MinBits(tc.l1Sensitivity, tc.epsilon); !errors.Is(err, checks.ErrParameter) {
			t.Errorf("MinBits(%g, %g): when %s got %v, want an error wrapping ErrParameter", tc.l1Sensitivity, tc.epsilon, tc.desc, err)
		}
	}
}

func TestRoundToMultiple(t *testing.T) {
	for _, tc := range []struct {
		x, granularity, want int64
	}{
		{0, 4, 0},
		{1, 4, 0},
		{2, 4, 4},
		{3, 4, 4},
		{4, 4, 4},
		{5, 4, 4},
		{6, 4, 8},
		{-1, 4, 0},
		{-2, 4, -4},
		{-3, 4, -4},
		{-6, 4, -8},
		{7, 1, 7},
		{9, 3, 9},
		{10, 3, 9},
		{11, 3, 12},
		{-10, 3, -9},
		{-11, 3, -12},
	} {
		if got := roundToMultiple(tc.x, tc.granularity); got != tc.want {
			t.Errorf("roundToMultiple(%d, %d): got %d, want %d", tc.x, tc.granularity, got, tc.want)
		}
	}
}

func TestSaturatedInt64(t *testing.T) {
	for _, tc := range []struct {
		desc string
		v    float64
		want int64
	}{
		{"zero", 0.0, 0},
		{"in range positive", 123.0, 123},
		{"in range negative", -123.0, -123},
		{"largest float64 below 2^63", math.Exp2(63.0) - 1024.0, math.MaxInt64 - 1023},
		{"2^63 saturates", math.Exp2(63.0), math.MaxInt64},
		{"far above the int64 range", 1.0e30, math.MaxInt64},
		{"-2^63 is representable", -math.Exp2(63.0), math.MinInt64},
		{"far below the int64 range", -1.0e30, math.MinInt64},
	} {
		if got := saturatedInt64(tc.v); got != tc.want {
			t.Errorf("saturatedInt64(%g): when %s got %d, want %d", tc.v, tc.desc, got, tc.want)
		}
	}
}
