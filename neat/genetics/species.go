package genetics

import (
	"math"
	"sort"

	"github.com/pkg/errors"

	"github.com/corvid-labs/neatcore/neat"
	"github.com/corvid-labs/neatcore/neat/rng"
)

// errNoEvaluatedIndividuals is returned by GetIndividual when a species has
// no genome with IsEvaluated() true: a programmer-fault condition, since
// the caller is expected to evaluate every genome in a generation before
// reproduction reads fitness off any of them.
var errNoEvaluatedIndividuals = errors.New("species has no evaluated individuals")

// Color is a cosmetic RGB triple assigned at species creation for
// visualization only; it never influences selection.
type Color struct {
	R uint8 `yaml:"r"`
	G uint8 `yaml:"g"`
	B uint8 `yaml:"b"`
}

// Species groups genomes whose mutual compatibility distance falls under
// the population's threshold. Reproduction happens within a species so
// that structurally similar genomes mate with each other, protecting novel
// structure from being outcompeted before it has a chance to optimize.
type Species struct {
	ID             int     `yaml:"id"`
	Representative *Genome `yaml:"representative"`
	// BestGenome is the member that set BestFitness, kept even after it is
	// later outcompeted or its generation is replaced; a host reading back a
	// population after a run wants the best genome a species ever produced,
	// not just whoever currently happens to hold top fitness.
	BestGenome  *Genome   `yaml:"best_genome,omitempty"`
	Individuals []*Genome `yaml:"individuals"`

	AgeGenerations     int `yaml:"age_generations"`
	AgeEvaluations     int `yaml:"age_evaluations"`
	GensNoImprovement  int `yaml:"gens_no_improvement"`
	EvalsNoImprovement int `yaml:"evals_no_improvement"`

	OffspringRqd int `yaml:"offspring_rqd"`

	BestFitness    float64 `yaml:"best_fitness"`
	AverageFitness float64 `yaml:"average_fitness"`

	BestSpecies  bool `yaml:"best_species"`
	WorstSpecies bool `yaml:"worst_species"`

	Color Color `yaml:"color"`
}

// NewSpecies creates a species represented by the given genome; the
// representative is the genome compatibility checks against this species
// are made against. Population.reSpeciate replaces it with the species'
// first member after each generation is reassigned.
func NewSpecies(id int, representative *Genome, cosmetic *rng.RNG) *Species {
	return &Species{
		ID:             id,
		Representative: representative,
		Individuals:    []*Genome{representative},
		BestFitness:    representative.GetFitness(),
		Color:          randomSpeciesColor(cosmetic),
	}
}

// randomSpeciesColor draws a cosmetic-only RGB triple. It intentionally
// reuses cosmetic (the population's dedicated decorative RNG, never the
// evolutionary stream) and preserves an original quirk: the green channel
// is drawn from the same call site pattern as red, so on some draws green
// clamps to the same byte as red rather than varying independently.
func randomSpeciesColor(cosmetic *rng.RNG) Color {
	r := uint8(cosmetic.RandFloat() * 255)
	g := uint8(cosmetic.RandFloat() * 255)
	if g < r {
		g = r
	}
	b := uint8(cosmetic.RandFloat() * 255)
	return Color{R: r, G: g, B: b}
}

// AddIndividual appends a genome to the species' membership.
func (s *Species) AddIndividual(g *Genome) {
	s.Individuals = append(s.Individuals, g)
}

// Size returns the number of member genomes.
func (s *Species) Size() int { return len(s.Individuals) }

// CalculateAverageFitness sets AverageFitness to the mean raw fitness of the
// species' evaluated members only (unevaluated members have no meaningful
// fitness yet and are excluded, not treated as zero), and reports it. A
// species with no evaluated members has zero average fitness.
func (s *Species) CalculateAverageFitness() float64 {
	total := 0.0
	count := 0
	for _, g := range s.Individuals {
		if g.IsEvaluated() {
			total += g.GetFitness()
			count++
		}
	}
	if count == 0 {
		s.AverageFitness = 0
		return 0
	}
	s.AverageFitness = total / float64(count)
	return s.AverageFitness
}

// AdjustFitness applies fitness sharing and age-based boosts/penalties to
// every member's adjusted fitness, then divides by membership size so that
// a large species doesn't dominate offspring allocation purely by being
// large:
//
//  1. clamp raw fitness to a floor of 1e-4 so it is never non-positive
//  2. track whether this generation improved on the species' historical
//     best, resetting the stagnation counter when it does
//  3. apply a young-age boost or an old-age penalty
//  4. apply a severe stagnation penalty unless this is the best species in
//     the population (protects the population's single best lineage from
//     being starved out by its own species' bookkeeping)
//  5. divide by the member count (fitness sharing)
func (s *Species) AdjustFitness(params *neat.Options) {
	improved := false
	for _, g := range s.Individuals {
		fitness := g.GetFitness()
		if fitness < 1e-4 {
			fitness = 1e-4
		}
		if fitness > s.BestFitness {
			s.BestFitness = fitness
			s.BestGenome = g
			improved = true
		}

		switch {
		case s.AgeGenerations < params.YoungAgeTreshold:
			fitness *= params.YoungAgeFitnessBoost
		case s.AgeGenerations > params.OldAgeTreshold:
			fitness *= params.OldAgePenalty
		}

		if s.GensNoImprovement > params.SpeciesMaxStagnation && !s.BestSpecies {
			fitness *= 0.0000001
		}

		g.SetAdjFitness(fitness / float64(len(s.Individuals)))
	}

	s.AgeEvaluations += len(s.Individuals)
	if improved {
		s.GensNoImprovement = 0
		s.EvalsNoImprovement = 0
	} else {
		s.GensNoImprovement++
		s.EvalsNoImprovement += len(s.Individuals)
	}
	s.CalculateAverageFitness()
}

// GetIndividual returns a genome to serve as a reproduction parent: with
// roulette-wheel selection enabled, it draws proportional to raw fitness
// among evaluated members; otherwise it picks uniformly among the top
// SurvivalRate fraction of evaluated members (ranked best-adjusted-fitness
// first). It is an error to call this when no member has been evaluated.
func (s *Species) GetIndividual(params *neat.Options, r *rng.RNG) (*Genome, error) {
	evaluated := make([]*Genome, 0, len(s.Individuals))
	for _, g := range s.Individuals {
		if g.IsEvaluated() {
			evaluated = append(evaluated, g)
		}
	}
	if len(evaluated) == 0 {
		return nil, errNoEvaluatedIndividuals
	}

	sort.SliceStable(evaluated, func(i, j int) bool {
		return evaluated[i].GetAdjFitness() > evaluated[j].GetAdjFitness()
	})

	if params.RouletteWheelSelection {
		probs := make([]float64, len(evaluated))
		for i, g := range evaluated {
			probs[i] = g.GetFitness()
		}
		return evaluated[r.Roulette(probs)], nil
	}

	poolSize := int(math.Ceil(params.SurvivalRate * float64(len(evaluated))))
	if poolSize < 1 {
		poolSize = 1
	}
	if poolSize > len(evaluated) {
		poolSize = len(evaluated)
	}
	idx, err := r.RandInt(0, poolSize-1)
	if err != nil {
		return nil, err
	}
	return evaluated[idx], nil
}

// ReproduceOne produces a single offspring genome: with probability
// params.CrossoverRate, and only when mode is not Simplifying, it mates two
// parents (drawn from this species, or with probability
// params.InterspeciesCrossoverRate from a randomly chosen other species
// among candidates), otherwise it clones a single parent asexually. A
// crossed-over baby is then mutated with probability
// params.OverallMutationRate; an asexual baby is always mutated, since
// cloning alone produces no variation. The bool result reports whether
// crossover happened (false for an asexual baby, including the case where
// the chosen father turned out to be the mother).
func (s *Species) ReproduceOne(newID int, db *InnovationDB, params *neat.Options, mode neat.SearchMode, candidates []*Species, r *rng.RNG) (*Genome, bool, error) {
	mom, err := s.GetIndividual(params, r)
	if err != nil {
		return nil, false, err
	}

	var baby *Genome
	mated := false
	if mode != neat.Simplifying && r.RandFloat() < params.CrossoverRate {
		dadSpecies := s
		others := make([]*Species, 0, len(candidates))
		for _, c := range candidates {
			if c != s {
				others = append(others, c)
			}
		}
		if r.RandFloat() < params.InterspeciesCrossoverRate && len(others) > 0 {
			idx, err := r.RandInt(0, len(others)-1)
			if err != nil {
				return nil, false, err
			}
			dadSpecies = others[idx]
		}
		dad, err := dadSpecies.GetIndividual(params, r)
		if err != nil {
			return nil, false, err
		}
		if !params.AllowClones {
			const maxFatherRetries = 1024
			for attempt := 0; attempt < maxFatherRetries &&
				(dad.GetID() == mom.GetID() || mom.CompatibilityDistance(dad, params) < neat.CompatEqualityDelta); attempt++ {
				dad, err = dadSpecies.GetIndividual(params, r)
				if err != nil {
					return nil, false, err
				}
			}
		}
		if dad.GetID() == mom.GetID() {
			baby = mom.Duplicate(newID)
		} else {
			avgMode := r.RandFloat() >= params.MultipointCrossoverRate
			baby, err = mom.Mate(dad, newID, mom.GetFitness(), dad.GetFitness(), avgMode, params, r)
			if err != nil {
				return nil, false, err
			}
			mated = true
		}
	} else {
		baby = mom.Duplicate(newID)
	}

	if !mated || r.RandFloat() < params.OverallMutationRate {
		if err := baby.Mutate(db, params, mode, !mated, r); err != nil {
			return nil, false, err
		}
	}
	return baby, mated, nil
}

// Reproduce fills OffspringRqd slots with new genomes. The top
// max(1, round(EliteFraction*|members|)) members (by raw fitness) are
// preserved as exact elite copies (CloneAsIs, no mutation); every remaining
// slot is filled by ReproduceOne, retried up to 1024 times whenever the
// result fails the genome's structural constraints, has no enabled link, or
// duplicates (within neat.CompatEqualityDelta) an offspring this species
// already accepted or an archived ancestor, unless params.AllowClones
// permits duplicates outright. A slot that exhausts its retries falls back
// to a Duplicate of the species champion (fitness reset, no mutation)
// rather than leaving the slot unfilled.
func (s *Species) Reproduce(db *InnovationDB, params *neat.Options, mode neat.SearchMode, candidates []*Species, archive []*Genome, nextID func() int, r *rng.RNG) ([]*Genome, error) {
	if s.OffspringRqd <= 0 {
		return nil, nil
	}
	if len(s.Individuals) == 0 {
		return nil, errors.New("attempt to reproduce from an empty species")
	}

	sort.SliceStable(s.Individuals, func(i, j int) bool {
		return s.Individuals[i].GetFitness() > s.Individuals[j].GetFitness()
	})

	eliteCount := int(math.Round(params.EliteFraction * float64(len(s.Individuals))))
	if eliteCount < 1 {
		eliteCount = 1
	}
	if eliteCount > s.OffspringRqd {
		eliteCount = s.OffspringRqd
	}

	babies := make([]*Genome, 0, s.OffspringRqd)
	for i := 0; i < eliteCount; i++ {
		idx := i
		if idx >= len(s.Individuals) {
			idx = len(s.Individuals) - 1
		}
		babies = append(babies, s.Individuals[idx].CloneAsIs(nextID()))
	}

	const maxRetries = 1024
	for len(babies) < s.OffspringRqd {
		var baby *Genome
		for attempt := 0; attempt < maxRetries; attempt++ {
			id := nextID()
			b, _, err := s.ReproduceOne(id, db, params, mode, candidates, r)
			if err != nil {
				return nil, err
			}
			if b.FailsConstraints(params) || b.RequireEnabledLinks() != nil {
				continue
			}
			if !params.AllowClones && isDuplicate(b, babies, archive, params) {
				continue
			}
			baby = b
			break
		}
		if baby == nil {
			baby = s.champion().Duplicate(nextID())
		}
		babies = append(babies, baby)
	}
	return babies, nil
}

// isDuplicate reports whether g matches (within neat.CompatEqualityDelta)
// any of the given babies, or - only when params.ArchiveEnforcement is set -
// any genome ever archived. Reproduce passes only the babies this species
// has accepted so far; babies of other species in the same generation are
// not checked.
func isDuplicate(g *Genome, babies, archive []*Genome, params *neat.Options) bool {
	for _, other := range babies {
		if g.CompatibilityDistance(other, params) < neat.CompatEqualityDelta {
			return true
		}
	}
	if !params.ArchiveEnforcement {
		return false
	}
	for _, other := range archive {
		if g.CompatibilityDistance(other, params) < neat.CompatEqualityDelta {
			return true
		}
	}
	return false
}

// champion returns the species member with the highest fitness, sorting
// Individuals as a side effect so later callers see best-first order.
func (s *Species) champion() *Genome {
	sort.SliceStable(s.Individuals, func(i, j int) bool {
		return s.Individuals[i].GetFitness() > s.Individuals[j].GetFitness()
	})
	return s.Individuals[0]
}
