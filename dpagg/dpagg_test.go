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
	"math"
	"testing"
)

// This file contains values and helpers shared by the tests of the DP
// aggregations.

var ln3 = math.Log(3)

// quietEpsilon is a privacy budget so large that the noise added to a result
// is 0 except with a probability of about 2·e^(-quietEpsilon/(2·l1)). For the
// sensitivities used in these tests that is below 10⁻⁷⁰, so the aggregation
// logic can be observed without statistical noise.
const quietEpsilon = 1.0e3

func getNoiselessCount(t *testing.T) *Count {
	c, err := NewCount(&CountOptions{
		Epsilon:          quietEpsilon,
		MaxContributions: 1,
	})
	if err != nil {
		t.Fatalf("NewCount: got unexpected error %v", err)
	}
	return c
}

func getNoiselessSum(t *testing.T) *BoundedSumInt64 {
	bs, err := NewBoundedSumInt64(&BoundedSumInt64Options{
		Epsilon:          quietEpsilon,
		MaxContributions: 1,
		Lower:            -3,
		Upper:            3,
	})
	if err != nil {
		t.Fatalf("NewBoundedSumInt64: got unexpected error %v", err)
	}
	return bs
}
