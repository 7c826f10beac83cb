package genetics

import (
	"github.com/corvid-labs/neatcore/neat"
	"github.com/corvid-labs/neatcore/neat/rng"
	"github.com/corvid-labs/neatcore/neat/traits"
)

// Mate produces an offspring genome from g and other via multipoint
// crossover: matching genes are picked 50/50 from either parent (with the
// matching link's enabled flag inherited from whichever parent's copy wins
// the coin flip, so a disabled-in-one-parent link has a chance of coming
// back enabled), while disjoint and excess genes are inherited from the
// fitter parent only - or from both, tie-broken by genome size, when
// fitness1 == fitness2. When avgMode is true, matching-gene weights are
// averaged instead of picked.
func (g *Genome) Mate(other *Genome, newID int, fitness1, fitness2 float64, avgMode bool, params *neat.Options, r *rng.RNG) (*Genome, error) {
	fitter, lessFit := g, other
	fitterFitness, lessFitFitness := fitness1, fitness2
	if fitness2 > fitness1 {
		fitter, lessFit = other, g
		fitterFitness, lessFitFitness = fitness2, fitness1
	}
	sameFitness := fitterFitness == lessFitFitness
	// tieWinner names which side of a fitness tie also has the smaller
	// genome and so is favored for disjoint/excess inheritance: 1 for the
	// (arbitrarily assigned) fitter side, 2 for the less-fit side, 0 when
	// the genomes are the same size and neither side wins the tiebreak.
	tieWinner := 0
	if sameFitness {
		switch {
		case len(fitter.Links) < len(lessFit.Links):
			tieWinner = 1
		case len(lessFit.Links) < len(fitter.Links):
			tieWinner = 2
		}
	}

	neuronIDs := make(map[int]bool)
	var babyLinks []*LinkGene

	i, j := 0, 0
	for i < len(g.Links) || j < len(other.Links) {
		var chosen *LinkGene
		var skip bool

		switch {
		case i >= len(g.Links):
			chosen, skip = inheritFromOne(other.Links[j], other == fitter, sameFitness, tieWinner, r)
			j++
		case j >= len(other.Links):
			chosen, skip = inheritFromOne(g.Links[i], g == fitter, sameFitness, tieWinner, r)
			i++
		case g.Links[i].InnovationID == other.Links[j].InnovationID:
			a, b := g.Links[i], other.Links[j]
			chosen = a
			if avgMode {
				cp := *a
				cp.Weight = (a.Weight + b.Weight) / 2.0
				chosen = &cp
			} else if r.RandFloat() < 0.5 {
				chosen = b
			}
			if !a.IsEnabled || !b.IsEnabled {
				if r.RandFloat() < 0.75 {
					enabledCopy := *chosen
					enabledCopy.IsEnabled = false
					chosen = &enabledCopy
				}
			}
			mated, err := traits.MateTraits(a.Traits, b.Traits, g.TraitParams, r)
			if err != nil {
				return nil, err
			}
			cp := *chosen
			cp.Traits = mated
			chosen = &cp
			i++
			j++
		case g.Links[i].InnovationID < other.Links[j].InnovationID:
			chosen, skip = inheritFromOne(g.Links[i], g == fitter, sameFitness, tieWinner, r)
			i++
		default:
			chosen, skip = inheritFromOne(other.Links[j], other == fitter, sameFitness, tieWinner, r)
			j++
		}

		if skip || chosen == nil {
			continue
		}
		cp := chosen.Duplicate()
		babyLinks = append(babyLinks, cp)
		neuronIDs[cp.FromNeuronID] = true
		neuronIDs[cp.ToNeuronID] = true
	}

	babyNeurons, err := g.buildBabyNeurons(other, neuronIDs, r)
	if err != nil {
		return nil, err
	}

	babyTraits, err := traits.MateTraits(g.Traits, other.Traits, g.TraitParams, r)
	if err != nil {
		return nil, err
	}

	baby := NewGenome(newID, babyNeurons, babyLinks, babyTraits)
	baby.TraitParams = g.TraitParams
	return baby, nil
}

// inheritFromOne decides whether a disjoint/excess gene unique to one
// parent is passed to the offspring: always when that parent is strictly
// fitter, never when fitness is unequal and this parent is the less-fit
// one. On a fitness tie, the side that also wins the smaller-genome
// tiebreak (tieWinner) is always kept; the other side's genes are kept by a
// coin flip. When both genomes are the same size, neither side wins the
// tiebreak and every unique gene is a coin flip.
func inheritFromOne(l *LinkGene, fromFitter bool, sameFitness bool, tieWinner int, r *rng.RNG) (*LinkGene, bool) {
	if !sameFitness {
		if fromFitter {
			return l, false
		}
		return nil, true
	}
	isTieWinnerSide := (fromFitter && tieWinner == 1) || (!fromFitter && tieWinner == 2)
	if isTieWinnerSide || r.RandFloat() < 0.5 {
		return l, false
	}
	return nil, true
}

// buildBabyNeurons assembles the neuron set for a crossed-over genome: every
// neuron referenced by a surviving link, plus every input/bias/output
// neuron from both parents (sensors and outputs are never dropped even if a
// parent's link to them did not survive crossover).
func (g *Genome) buildBabyNeurons(other *Genome, referenced map[int]bool, r *rng.RNG) ([]*NeuronGene, error) {
	seen := make(map[int]bool)
	var result []*NeuronGene

	add := func(n *NeuronGene) {
		if seen[n.ID] {
			return
		}
		seen[n.ID] = true
		result = append(result, n.Duplicate())
	}

	for _, n := range g.Neurons {
		if referenced[n.ID] || n.Type == NeuronInput || n.Type == NeuronBias || n.Type == NeuronOutput {
			add(n)
		}
	}
	for _, n := range other.Neurons {
		if referenced[n.ID] || n.Type == NeuronInput || n.Type == NeuronBias || n.Type == NeuronOutput {
			add(n)
		}
	}
	return result, nil
}

