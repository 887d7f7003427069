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

// aggregationState is the state of an aggregation object with respect to its
// privacy budget. Once an object leaves the default state, it may no longer
// be amended: its budget has been consumed by the noised result or handed
// over to the aggregation it was merged into.
type aggregationState int

const (
	defaultState aggregationState = iota
	merged
	resultReturned
)

var errorMessages = map[aggregationState]string{
	defaultState:   "",
	merged:         "object has been already merged",
	resultReturned: "noised result was already computed and returned",
}

var stateNames = map[aggregationState]string{
	defaultState:   "Default",
	merged:         "Merged",
	resultReturned: "ResultReturned",
}

func (s aggregationState) errorMessage() string {
	return errorMessages[s]
}

func (s aggregationState) String() string {
	return stateNames[s]
}
