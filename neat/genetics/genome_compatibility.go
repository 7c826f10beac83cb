package genetics

import (
	"math"

	"github.com/corvid-labs/neatcore/neat"
	"github.com/corvid-labs/neatcore/neat/traits"
)

// CompatibilityDistance walks both genomes' Links (sorted by innovation ID)
// in lockstep, classifying genes as matching, disjoint, or excess, and
// combines the three counts into a single scalar using the weights in
// params:
//
//	DisjointCoeff*numDisjoint + ExcessCoeff*numExcess + MutdiffCoeff*(mutDiffTotal/numMatching)
//
// Matching genes contribute the absolute weight difference to mutDiffTotal;
// trait distance on matching neuron and link trait maps is added as well.
func (g *Genome) CompatibilityDistance(other *Genome, params *neat.Options) float64 {
	var numDisjoint, numExcess, numMatching float64
	var weightDiffTotal, traitDiffTotal float64

	i, j := 0, 0
	maxInnovA, maxInnovB := lastInnovationID(g.Links), lastInnovationID(other.Links)

	for i < len(g.Links) || j < len(other.Links) {
		switch {
		case i >= len(g.Links):
			if other.Links[j].InnovationID <= maxInnovA {
				numDisjoint++
			} else {
				numExcess++
			}
			j++
		case j >= len(other.Links):
			if g.Links[i].InnovationID <= maxInnovB {
				numDisjoint++
			} else {
				numExcess++
			}
			i++
		case g.Links[i].InnovationID == other.Links[j].InnovationID:
			numMatching++
			weightDiffTotal += math.Abs(g.Links[i].Weight - other.Links[j].Weight)
			traitDiffTotal += traits.Distance(g.Links[i].Traits, other.Links[j].Traits, g.TraitParams)
			i++
			j++
		case g.Links[i].InnovationID < other.Links[j].InnovationID:
			if g.Links[i].InnovationID <= maxInnovB {
				numDisjoint++
			} else {
				numExcess++
			}
			i++
		default:
			if other.Links[j].InnovationID <= maxInnovA {
				numDisjoint++
			} else {
				numExcess++
			}
			j++
		}
	}

	neuronTraitDiff := compatibilityNeuronTraitDiff(g, other)
	genomeTraitDiff := traits.Distance(g.Traits, other.Traits, g.TraitParams)

	mutDiff := 0.0
	if numMatching > 0 {
		mutDiff = (weightDiffTotal + traitDiffTotal) / numMatching
	}

	return params.DisjointCoeff*numDisjoint +
		params.ExcessCoeff*numExcess +
		params.MutdiffCoeff*mutDiff +
		params.MutdiffCoeff*neuronTraitDiff +
		params.MutdiffCoeff*genomeTraitDiff
}

// compatibilityNeuronTraitDiff sums trait distance over neurons present
// (by ID) in both genomes; neurons unique to one side contribute nothing,
// since their structural novelty is already captured by link disjoint/
// excess counts.
func compatibilityNeuronTraitDiff(a, b *Genome) float64 {
	total := 0.0
	for _, na := range a.Neurons {
		nb, ok := b.NeuronByID(na.ID)
		if !ok {
			continue
		}
		total += traits.Distance(na.Traits, nb.Traits, a.TraitParams)
	}
	return total
}

func lastInnovationID(links []*LinkGene) int64 {
	if len(links) == 0 {
		return 0
	}
	return links[len(links)-1].InnovationID
}

// IsCompatibleWith reports whether other falls within params.CompatThreshold
// of this genome, the criterion the speciation pass uses to decide whether
// a genome belongs to an existing species.
func (g *Genome) IsCompatibleWith(other *Genome, params *neat.Options) bool {
	return g.CompatibilityDistance(other, params) < params.CompatThreshold
}
