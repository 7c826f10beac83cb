package genetics

import (
	"github.com/corvid-labs/neatcore/neat"
	"github.com/corvid-labs/neatcore/neat/math"
	"github.com/corvid-labs/neatcore/neat/rng"
)

// buildMinimalGenome returns a 2-input/1-output genome with no hidden
// neurons and both input-to-output links enabled, the canonical starting
// topology new populations are seeded from.
func buildMinimalGenome(id int, r *rng.RNG) *Genome {
	in1 := &NeuronGene{ID: 1, Type: NeuronInput, SplitY: 0, A: 1.0, TimeConstant: 1.0, ActivationFunction: math.SignedSigmoid}
	in2 := &NeuronGene{ID: 2, Type: NeuronInput, SplitY: 0, A: 1.0, TimeConstant: 1.0, ActivationFunction: math.SignedSigmoid}
	out := &NeuronGene{ID: 3, Type: NeuronOutput, SplitY: 1, A: 1.0, TimeConstant: 1.0, ActivationFunction: math.SignedSigmoid}

	l1 := &LinkGene{FromNeuronID: 1, ToNeuronID: 3, InnovationID: 1, Weight: 0.5, IsEnabled: true}
	l2 := &LinkGene{FromNeuronID: 2, ToNeuronID: 3, InnovationID: 2, Weight: -0.5, IsEnabled: true}

	return NewGenome(id, []*NeuronGene{in1, in2, out}, []*LinkGene{l1, l2}, nil)
}

func testOptions() *neat.Options {
	return &neat.Options{
		SurvivalRate:              0.5,
		CrossoverRate:             0.7,
		InterspeciesCrossoverRate: 0.05,
		MultipointCrossoverRate:   0.5,
		OverallMutationRate:       0.25,
		RouletteWheelSelection:    false,
		AllowClones:               true,
		ArchiveEnforcement:        true,
		EliteFraction:             0.1,

		YoungAgeTreshold:     10,
		YoungAgeFitnessBoost: 1.2,
		OldAgeTreshold:       50,
		OldAgePenalty:        0.5,
		SpeciesMaxStagnation: 15,

		MutateAddNeuronProb:           0.03,
		MutateAddLinkProb:             0.05,
		MutateRemSimpleNeuronProb:     0.0,
		MutateRemLinkProb:             0.0,
		MutateNeuronActivationTypeProb: 0.0,
		MutateWeightsProb:             0.8,
		MutateActivationAProb:         0.0,
		MutateActivationBProb:        0.0,
		MutateNeuronTimeConstantsProb: 0.0,
		MutateNeuronBiasesProb:       0.0,
		MutateNeuronTraitsProb:       0.0,
		MutateLinkTraitsProb:         0.0,
		MutateGenomeTraitsProb:       0.0,

		WeightMutPower: 0.5,
		NewLinkTries:   20,
		RecurOnlyProb:  0.0,

		DisjointCoeff:   1.0,
		ExcessCoeff:     1.0,
		MutdiffCoeff:    0.4,
		CompatThreshold: 3.0,

		PopSize:    50,
		DropOffAge: 15,
	}
}

func testRNG() *rng.RNG { return rng.NewRNG(42) }
