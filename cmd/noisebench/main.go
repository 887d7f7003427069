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

// This is a command line utility which samples the discrete noise primitives
// and reports summary statistics, which helps with sanity checking parameter
// choices before they are used on real data.
// Usage example:
// go run . --scenario=noise --l1_sensitivity=2 --epsilon=1.1 --samples=1000000
// go run . --scenario=choice --delta=1 --epsilon=0.7 --samples=1000000 --seed=review
// go run . --scenario=granularity --l1_sensitivity=4096 --epsilon=0.25
package main

import (
	"flag"
	"math"

	log "github.com/golang/glog"
	"github.com/grd/stat"
	"github.com/mozkeeler/dprio/checks"
	"github.com/mozkeeler/dprio/noise"
	"github.com/mozkeeler/dprio/rand"
	"github.com/mozkeeler/dprio/snapping"
)

var (
	scenario = flag.String("scenario", "", "Scenario ID:\n"+
		"noise - draws noise samples for l1_sensitivity and epsilon and reports their sample mean and variance.\n"+
		"choice - draws snapped binary choices for delta and epsilon and reports the frequency of outcome 0.\n"+
		"granularity - prints the noise resolution and the sampler parameter for l1_sensitivity and epsilon.")
	l1Sensitivity   = flag.Float64("l1_sensitivity", 1.0, "L_1 sensitivity of the statistic the noise protects.")
	epsilon         = flag.Float64("epsilon", math.Log(3), "Differential privacy parameter epsilon.")
	delta           = flag.Float64("delta", 1.0, "Weight separating the two outcomes of the binary choice.")
	numberOfSamples = flag.Int("samples", 1000000, "Number of samples to draw in the noise and choice scenarios.")
	seed            = flag.String("seed", "", "Seed for a deterministic randomness source. An empty seed selects the cryptographically secure source.")
)

const (
	noiseScenarioID       = "noise"
	choiceScenarioID      = "choice"
	granularityScenarioID = "granularity"
)

func main() {
	flag.Parse()

	log.Infof("The benchmark was run with arguments: scenario = %q, l1Sensitivity = %f,"+
		" epsilon = %f, delta = %f, samples = %d, seed = %q",
		*scenario,
		*l1Sensitivity,
		*epsilon,
		*delta,
		*numberOfSamples,
		*seed,
	)

	if *scenario == "" {
		log.Exit("No scenario was chosen")
	}
	if *numberOfSamples <= 0 {
		log.Exit("The number of samples must be positive")
	}

	src := rand.NewSource()
	if *seed != "" {
		src = rand.NewSeededSource([]byte(*seed))
	}

	var err error
	switch id := *scenario; id {
	case noiseScenarioID:
		err = runNoiseScenario(src, *numberOfSamples, *l1Sensitivity, *epsilon)
	case choiceScenarioID:
		err = runChoiceScenario(src, *numberOfSamples, *delta, *epsilon)
	case granularityScenarioID:
		err = runGranularityScenario(*l1Sensitivity, *epsilon)
	default:
		log.Exitf("There is no scenario with id = %q", id)
	}
	if err != nil {
		log.Exitf("Couldn't execute the %s scenario, err = %v", *scenario, err)
	}

	log.Infof("Successfully finished executing the scenario")
}

// runNoiseScenario draws n noise samples calibrated to (l1Sensitivity,
// epsilon) and reports their sample mean and variance together with the
// advisory number of random bits the sampler should consume per sample.
func runNoiseScenario(src *rand.Source, n int, l1Sensitivity, epsilon float64) error {
	samples := make(stat.IntSlice, n)
	for i := 0; i < n; i++ {
		sample, err := noise.Int64(src, l1Sensitivity, epsilon)
		if err != nil {
			return err
		}
		samples[i] = sample
	}
	bits, err := noise.MinBits(l1Sensitivity, epsilon)
	if err != nil {
		return err
	}
	log.Infof("Drew %d noise samples for l1_sensitivity = %f and epsilon = %f", n, l1Sensitivity, epsilon)
	log.Infof("Sample mean = %f, sample variance = %f", stat.Mean(samples), stat.Variance(samples))
	log.Infof("The sampler should consume at least %d random bits per sample", bits)
	return nil
}

// runChoiceScenario draws n snapped binary choices for (delta, epsilon) and
// reports the empirical frequency of outcome 0 next to its exact probability.
func runChoiceScenario(src *rand.Source, n int, delta, epsilon float64) error {
	zeros := 0
	for i := 0; i < n; i++ {
		outcome, err := snapping.BinaryChoice(src, delta, epsilon)
		if err != nil {
			return err
		}
		if outcome == 0 {
			zeros++
		}
	}
	probability0, err := snapping.BinaryChoiceProbability(delta, epsilon)
	if err != nil {
		return err
	}
	log.Infof("Drew %d binary choices for delta = %f and epsilon = %f", n, delta, epsilon)
	log.Infof("Outcome 0 frequency = %f, exact probability = %f", float64(zeros)/float64(n), probability0)
	return nil
}

// runGranularityScenario prints the resolution at which noise for
// (l1Sensitivity, epsilon) is generated and the parameter of the underlying
// geometric sampler.
func runGranularityScenario(l1Sensitivity, epsilon float64) error {
	if err := checks.CheckL1Sensitivity(l1Sensitivity); err != nil {
		return err
	}
	if err := checks.CheckEpsilonStrict(epsilon); err != nil {
		return err
	}
	granularity, err := noise.Granularity(l1Sensitivity, epsilon)
	if err != nil {
		return err
	}
	lambda := granularity * epsilon / (l1Sensitivity + granularity)
	log.Infof("Noise for l1_sensitivity = %f and epsilon = %f is generated at a resolution of %e", l1Sensitivity, epsilon, granularity)
	log.Infof("The geometric sampler runs with lambda = %e", lambda)
	return nil
}
