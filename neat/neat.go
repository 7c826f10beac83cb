// Package neat carries the ambient configuration, logging, and context
// plumbing shared by the traits, genetics, and RNG packages: it is the
// library's "external interface" layer rather than an evolutionary
// operator itself.
package neat

import (
	"github.com/pkg/errors"

	"github.com/corvid-labs/neatcore/neat/math"
)

// EpochExecutorType names the strategy used to drive a generation forward.
// The core itself is single-threaded cooperative (see SearchMode for the
// only externally-driven flag it reads); this value is metadata for the
// host.
type EpochExecutorType string

const (
	EpochExecutorSequential EpochExecutorType = "sequential"
	EpochExecutorParallel   EpochExecutorType = "parallel"
)

// GenomeCompatibilityMethod names a CompatibilityDistance traversal
// strategy. It is carried in Options as configuration only: Genome's
// CompatibilityDistance does not read it and always uses its single
// merge walk over the sorted links.
type GenomeCompatibilityMethod string

const (
	GenomeCompatibilityLinear GenomeCompatibilityMethod = "linear"
	GenomeCompatibilityFast   GenomeCompatibilityMethod = "fast"
)

// SearchMode is the externally-driven flag read (never written) by the
// reproduction pipeline to decide which mutation categories are eligible.
type SearchMode string

const (
	Complexifying SearchMode = "complexifying"
	Blended       SearchMode = "blended"
	Simplifying   SearchMode = "simplifying"
)

// CompatEqualityDelta is the compatibility-distance threshold below which
// two genomes are considered identical for duplicate elimination.
const CompatEqualityDelta = 1e-7

// Options is the Parameters value-object consumed (never owned) by the
// core: every probability and threshold named in the reproduction and
// mutation pipelines.
type Options struct {
	// Reproduction selection
	SurvivalRate              float64 `yaml:"survival_rate"`
	CrossoverRate             float64 `yaml:"crossover_rate"`
	InterspeciesCrossoverRate float64 `yaml:"interspecies_crossover_rate"`
	MultipointCrossoverRate   float64 `yaml:"multipoint_crossover_rate"`
	OverallMutationRate       float64 `yaml:"overall_mutation_rate"`
	RouletteWheelSelection    bool    `yaml:"roulette_wheel_selection"`
	AllowClones               bool    `yaml:"allow_clones"`
	ArchiveEnforcement        bool    `yaml:"archive_enforcement"`
	EliteFraction             float64 `yaml:"elite_fraction"`

	// Fitness sharing / aging
	YoungAgeTreshold     int     `yaml:"young_age_treshold"`
	YoungAgeFitnessBoost float64 `yaml:"young_age_fitness_boost"`
	OldAgeTreshold       int     `yaml:"old_age_treshold"`
	OldAgePenalty        float64 `yaml:"old_age_penalty"`
	SpeciesMaxStagnation int     `yaml:"species_max_stagnation"`

	// Mutation dispatch probabilities (§4.4, in roulette order)
	MutateAddNeuronProb             float64 `yaml:"mutate_add_neuron_prob"`
	MutateAddLinkProb                float64 `yaml:"mutate_add_link_prob"`
	MutateRemSimpleNeuronProb        float64 `yaml:"mutate_rem_simple_neuron_prob"`
	MutateRemLinkProb                float64 `yaml:"mutate_rem_link_prob"`
	MutateNeuronActivationTypeProb   float64 `yaml:"mutate_neuron_activation_type_prob"`
	MutateWeightsProb                float64 `yaml:"mutate_weights_prob"`
	MutateActivationAProb            float64 `yaml:"mutate_activation_a_prob"`
	MutateActivationBProb            float64 `yaml:"mutate_activation_b_prob"`
	MutateNeuronTimeConstantsProb    float64 `yaml:"mutate_neuron_time_constants_prob"`
	MutateNeuronBiasesProb           float64 `yaml:"mutate_neuron_biases_prob"`
	MutateNeuronTraitsProb           float64 `yaml:"mutate_neuron_traits_prob"`
	MutateLinkTraitsProb             float64 `yaml:"mutate_link_traits_prob"`
	MutateGenomeTraitsProb           float64 `yaml:"mutate_genome_traits_prob"`

	// Weight/link mutation magnitudes
	WeightMutPower float64 `yaml:"weight_mut_power"`
	NewLinkTries   int     `yaml:"newlink_tries"`
	RecurOnlyProb  float64 `yaml:"recur_only_prob"`

	// Compatibility distance coefficients
	DisjointCoeff   float64                   `yaml:"disjoint_coeff"`
	ExcessCoeff     float64                   `yaml:"excess_coeff"`
	MutdiffCoeff    float64                   `yaml:"mutdiff_coeff"`
	CompatThreshold float64                   `yaml:"compat_threshold"`
	GenCompatMethod GenomeCompatibilityMethod `yaml:"genome_compat_method"`

	// Population / run shape
	PopSize        int `yaml:"pop_size"`
	DropOffAge     int `yaml:"dropoff_age"`
	AgeSignificance float64 `yaml:"age_significance"`
	SurvivalThresh float64 `yaml:"survival_thresh"`
	PrintEvery     int `yaml:"print_every"`
	NumRuns        int `yaml:"num_runs"`
	NumGenerations int `yaml:"num_generations"`

	EpochExecutorType EpochExecutorType `yaml:"epoch_executor"`
	LogLevel          string            `yaml:"log_level"`

	// NodeActivatorsWithProbs holds raw "Name prob" lines as read from the
	// YAML config's node_activators list (the legacy plain-text loader does
	// not accept this key); NodeActivators/NodeActivatorsProb are the
	// parsed form populated by initNodeActivators.
	NodeActivatorsWithProbs []string                   `yaml:"node_activators,omitempty"`
	NodeActivators          []math.ActivationFunction  `yaml:"-"`
	NodeActivatorsProb      []float64                  `yaml:"-"`
}

// Validate enforces the probability-in-[0,1] and positive-integer
// invariants the reproduction and mutation pipelines rely on.
func (o *Options) Validate() error {
	probs := map[string]float64{
		"SurvivalRate":              o.SurvivalRate,
		"CrossoverRate":             o.CrossoverRate,
		"InterspeciesCrossoverRate": o.InterspeciesCrossoverRate,
		"MultipointCrossoverRate":   o.MultipointCrossoverRate,
		"OverallMutationRate":       o.OverallMutationRate,
		"EliteFraction":             o.EliteFraction,
	}
	for name, v := range probs {
		if v < 0 || v > 1 {
			return errors.Errorf("%s must be in [0, 1], got %v", name, v)
		}
	}
	if o.PopSize <= 0 {
		return errors.Errorf("PopSize must be positive, got %d", o.PopSize)
	}
	if o.DropOffAge < 0 {
		return errors.Errorf("DropOffAge must not be negative, got %d", o.DropOffAge)
	}
	return nil
}
