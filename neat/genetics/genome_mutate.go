package genetics

import (
	"github.com/pkg/errors"

	"github.com/corvid-labs/neatcore/neat"
	"github.com/corvid-labs/neatcore/neat/rng"
	"github.com/corvid-labs/neatcore/neat/traits"
)

// mutationCategory enumerates the 13 roulette slices of the mutation
// dispatch, in the order Parameters names them.
type mutationCategory int

const (
	mutAddNeuron mutationCategory = iota
	mutAddLink
	mutRemNeuron
	mutRemLink
	mutNeuronActivationType
	mutWeights
	mutActivationA
	mutActivationB
	mutNeuronTimeConstants
	mutNeuronBiases
	mutNeuronTraits
	mutLinkTraits
	mutGenomeTraits
	mutationCategoryCount
)

// Mutate applies exactly one mutation category, chosen by roulette over
// the per-category probabilities in params, gated by search mode and the
// isClone flag: additive categories (add-neuron, add-link) are zeroed when
// mode is Simplifying or the baby is a clone; subtractive categories
// (remove-neuron, remove-link) are zeroed when mode is Complexifying or
// the baby is a clone. The roulette retries with a fresh draw until the
// chosen mutation reports success.
func (g *Genome) Mutate(db *InnovationDB, params *neat.Options, mode neat.SearchMode, isClone bool, r *rng.RNG) error {
	for {
		probs := g.mutationProbs(params, mode, isClone)
		cat := mutationCategory(r.Roulette(probs))
		ok, err := g.applyMutation(cat, db, params, r)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
}

func (g *Genome) mutationProbs(params *neat.Options, mode neat.SearchMode, isClone bool) []float64 {
	p := []float64{
		params.MutateAddNeuronProb,
		params.MutateAddLinkProb,
		params.MutateRemSimpleNeuronProb,
		params.MutateRemLinkProb,
		params.MutateNeuronActivationTypeProb,
		params.MutateWeightsProb,
		params.MutateActivationAProb,
		params.MutateActivationBProb,
		params.MutateNeuronTimeConstantsProb,
		params.MutateNeuronBiasesProb,
		params.MutateNeuronTraitsProb,
		params.MutateLinkTraitsProb,
		params.MutateGenomeTraitsProb,
	}
	additiveOff := mode == neat.Simplifying || isClone
	subtractiveOff := mode == neat.Complexifying || isClone
	if additiveOff {
		p[mutAddNeuron] = 0
		p[mutAddLink] = 0
	}
	if subtractiveOff {
		p[mutRemNeuron] = 0
		p[mutRemLink] = 0
	}
	return p
}

func (g *Genome) applyMutation(cat mutationCategory, db *InnovationDB, params *neat.Options, r *rng.RNG) (bool, error) {
	switch cat {
	case mutAddNeuron:
		return g.MutateAddNeuron(db, params, r)
	case mutAddLink:
		return g.MutateAddLink(db, params, r)
	case mutRemNeuron:
		return g.MutateRemoveSimpleNeuron(r)
	case mutRemLink:
		return g.MutateRemoveLink(r)
	case mutNeuronActivationType:
		return g.MutateNeuronActivationType(params, r)
	case mutWeights:
		return g.MutateLinkWeights(params, r)
	case mutActivationA:
		return g.MutateActivationA(params, r)
	case mutActivationB:
		return g.MutateActivationB(params, r)
	case mutNeuronTimeConstants:
		return g.MutateNeuronTimeConstants(params, r)
	case mutNeuronBiases:
		return g.MutateNeuronBiases(params, r)
	case mutNeuronTraits:
		return g.MutateNeuronTraits(r)
	case mutLinkTraits:
		return g.MutateLinkTraits(r)
	case mutGenomeTraits:
		return g.MutateGenomeTraits(r)
	default:
		return false, errors.Errorf("unknown mutation category: %d", cat)
	}
}

// MutateAddNeuron splits a random enabled link with a new hidden neuron,
// disabling the original and registering two replacement links. The new
// neuron's ID and the two links' innovation IDs are resolved through db so
// that independent lineages splitting the same link converge on the same
// historical markers.
func (g *Genome) MutateAddNeuron(db *InnovationDB, params *neat.Options, r *rng.RNG) (bool, error) {
	enabled := make([]*LinkGene, 0, len(g.Links))
	for _, l := range g.Links {
		if l.IsEnabled {
			enabled = append(enabled, l)
		}
	}
	if len(enabled) == 0 {
		return false, nil
	}
	idx, err := r.RandInt(0, len(enabled)-1)
	if err != nil {
		return false, err
	}
	split := enabled[idx]
	split.IsEnabled = false

	neuronID, in1, in2 := db.NeuronSplitIDs(split.FromNeuronID, split.ToNeuronID)
	fromNode, _ := g.NeuronByID(split.FromNeuronID)
	toNode, _ := g.NeuronByID(split.ToNeuronID)

	newNeuron, err := NewNeuronGene(neuronID, NeuronHidden, g.TraitParams, r)
	if err != nil {
		return false, err
	}
	newNeuron.SplitY = (fromNode.SplitY + toNode.SplitY) / 2.0

	link1, err := NewLinkGene(split.FromNeuronID, neuronID, in1, 1.0, split.IsRecurrent, g.TraitParams, r)
	if err != nil {
		return false, err
	}
	link2, err := NewLinkGene(neuronID, split.ToNeuronID, in2, split.Weight, false, g.TraitParams, r)
	if err != nil {
		return false, err
	}

	g.Neurons = neuronInsert(g.Neurons, newNeuron)
	g.Links = geneInsert(g.Links, link1)
	g.Links = geneInsert(g.Links, link2)
	return true, nil
}

// MutateAddLink attempts, up to params.NewLinkTries times, to connect two
// neurons that are not already directly linked.
func (g *Genome) MutateAddLink(db *InnovationDB, params *neat.Options, r *rng.RNG) (bool, error) {
	if len(g.Neurons) < 2 {
		return false, nil
	}
	tries := params.NewLinkTries
	if tries <= 0 {
		tries = 20
	}
	for i := 0; i < tries; i++ {
		fromIdx, err := r.RandInt(0, len(g.Neurons)-1)
		if err != nil {
			return false, err
		}
		toIdx, err := r.RandInt(0, len(g.Neurons)-1)
		if err != nil {
			return false, err
		}
		from, to := g.Neurons[fromIdx], g.Neurons[toIdx]
		if to.Type == NeuronInput || to.Type == NeuronBias {
			continue
		}
		recurrent := from.SplitY >= to.SplitY
		if recurrent && r.RandFloat() >= params.RecurOnlyProb {
			continue
		}
		if _, exists := g.HasLink(from.ID, to.ID, recurrent); exists {
			continue
		}
		innovationID := db.LinkInnovationID(from.ID, to.ID)
		weight := r.RandFloatSigned() * params.WeightMutPower
		link, err := NewLinkGene(from.ID, to.ID, innovationID, weight, recurrent, g.TraitParams, r)
		if err != nil {
			return false, err
		}
		g.Links = geneInsert(g.Links, link)
		return true, nil
	}
	return false, nil
}

// MutateRemoveSimpleNeuron removes a hidden neuron that has exactly one
// enabled incoming and one enabled outgoing link, reconnecting its
// predecessor directly to its successor.
func (g *Genome) MutateRemoveSimpleNeuron(r *rng.RNG) (bool, error) {
	type candidate struct {
		neuron *NeuronGene
		in     *LinkGene
		out    *LinkGene
	}
	var candidates []candidate
	for _, n := range g.Neurons {
		if n.Type != NeuronHidden {
			continue
		}
		var in, out *LinkGene
		inCount, outCount := 0, 0
		for _, l := range g.Links {
			if !l.IsEnabled {
				continue
			}
			if l.ToNeuronID == n.ID {
				in = l
				inCount++
			}
			if l.FromNeuronID == n.ID {
				out = l
				outCount++
			}
		}
		if inCount == 1 && outCount == 1 {
			candidates = append(candidates, candidate{n, in, out})
		}
	}
	if len(candidates) == 0 {
		return false, nil
	}
	idx, err := r.RandInt(0, len(candidates)-1)
	if err != nil {
		return false, err
	}
	c := candidates[idx]
	c.in.IsEnabled = false
	c.out.IsEnabled = false

	remaining := make([]*NeuronGene, 0, len(g.Neurons)-1)
	for _, n := range g.Neurons {
		if n.ID != c.neuron.ID {
			remaining = append(remaining, n)
		}
	}
	g.Neurons = remaining
	return true, nil
}

// MutateRemoveLink removes a random link gene (enabled or disabled),
// retrying up to 128 times whenever the removal would leave the genome with
// zero enabled links or a dead end. On exhaustion the genome is left
// unchanged.
func (g *Genome) MutateRemoveLink(r *rng.RNG) (bool, error) {
	if len(g.Links) == 0 {
		return false, nil
	}
	const maxTries = 128
	for i := 0; i < maxTries; i++ {
		idx, err := r.RandInt(0, len(g.Links)-1)
		if err != nil {
			return false, err
		}
		victim := g.Links[idx]
		wasEnabled := victim.IsEnabled
		victim.IsEnabled = false

		if g.NumEnabledLinks() == 0 || g.HasDeadEnds() {
			victim.IsEnabled = wasEnabled
			continue
		}
		g.Links = append(append([]*LinkGene{}, g.Links[:idx]...), g.Links[idx+1:]...)
		return true, nil
	}
	return false, nil
}

// MutateNeuronActivationType re-rolls a random non-input/bias neuron's
// activation function from the weighted set in params.
func (g *Genome) MutateNeuronActivationType(params *neat.Options, r *rng.RNG) (bool, error) {
	if len(params.NodeActivators) == 0 {
		return false, nil
	}
	candidates := make([]*NeuronGene, 0, len(g.Neurons))
	for _, n := range g.Neurons {
		if n.Type != NeuronInput && n.Type != NeuronBias {
			candidates = append(candidates, n)
		}
	}
	if len(candidates) == 0 {
		return false, nil
	}
	idx, err := r.RandInt(0, len(candidates)-1)
	if err != nil {
		return false, err
	}
	n := candidates[idx]
	newFn := params.NodeActivators[r.Roulette(params.NodeActivatorsProb)]
	if newFn == n.ActivationFunction {
		return false, nil
	}
	n.ActivationFunction = newFn
	return true, nil
}

// MutateLinkWeights perturbs every link's weight with a three-tier policy:
// most links get a small Gaussian nudge, a minority get a full replacement
// ("severe" mutation). Weights are not clamped to any range.
func (g *Genome) MutateLinkWeights(params *neat.Options, r *rng.RNG) (bool, error) {
	if len(g.Links) == 0 {
		return false, nil
	}
	mutated := false
	severeProb := 0.3
	for _, l := range g.Links {
		switch {
		case r.RandFloat() < severeProb:
			l.Weight = r.RandGaussSigned() * params.WeightMutPower * 2.5
		case r.RandFloat() < 0.1:
			l.Weight = r.RandGaussSigned() * params.WeightMutPower
		default:
			l.Weight += r.RandGaussSigned() * params.WeightMutPower * 0.1
		}
		mutated = true
	}
	return mutated, nil
}

// MutateActivationA perturbs a random neuron's auxiliary shape parameter A.
func (g *Genome) MutateActivationA(params *neat.Options, r *rng.RNG) (bool, error) {
	return g.perturbNeuronScalar(r, func(n *NeuronGene) *float64 { return &n.A }, params.WeightMutPower)
}

// MutateActivationB perturbs a random neuron's auxiliary shape parameter B.
func (g *Genome) MutateActivationB(params *neat.Options, r *rng.RNG) (bool, error) {
	return g.perturbNeuronScalar(r, func(n *NeuronGene) *float64 { return &n.B }, params.WeightMutPower)
}

// MutateNeuronTimeConstants perturbs a random neuron's time constant.
func (g *Genome) MutateNeuronTimeConstants(params *neat.Options, r *rng.RNG) (bool, error) {
	return g.perturbNeuronScalar(r, func(n *NeuronGene) *float64 { return &n.TimeConstant }, params.WeightMutPower)
}

// MutateNeuronBiases perturbs a random neuron's bias.
func (g *Genome) MutateNeuronBiases(params *neat.Options, r *rng.RNG) (bool, error) {
	return g.perturbNeuronScalar(r, func(n *NeuronGene) *float64 { return &n.Bias }, params.WeightMutPower)
}

func (g *Genome) perturbNeuronScalar(r *rng.RNG, field func(*NeuronGene) *float64, power float64) (bool, error) {
	if len(g.Neurons) == 0 {
		return false, nil
	}
	idx, err := r.RandInt(0, len(g.Neurons)-1)
	if err != nil {
		return false, err
	}
	f := field(g.Neurons[idx])
	*f += r.RandFloatSigned() * power
	return true, nil
}

// MutateNeuronTraits mutates a random neuron's trait map.
func (g *Genome) MutateNeuronTraits(r *rng.RNG) (bool, error) {
	if len(g.Neurons) == 0 {
		return false, nil
	}
	idx, err := r.RandInt(0, len(g.Neurons)-1)
	if err != nil {
		return false, err
	}
	return traits.MutateTraits(g.Neurons[idx].Traits, g.TraitParams, r)
}

// MutateLinkTraits mutates a random link's trait map.
func (g *Genome) MutateLinkTraits(r *rng.RNG) (bool, error) {
	if len(g.Links) == 0 {
		return false, nil
	}
	idx, err := r.RandInt(0, len(g.Links)-1)
	if err != nil {
		return false, err
	}
	return traits.MutateTraits(g.Links[idx].Traits, g.TraitParams, r)
}

// MutateGenomeTraits mutates the genome-level trait map.
func (g *Genome) MutateGenomeTraits(r *rng.RNG) (bool, error) {
	return traits.MutateTraits(g.Traits, g.TraitParams, r)
}
