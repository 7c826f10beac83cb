package genetics

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/corvid-labs/neatcore/neat"
	"github.com/corvid-labs/neatcore/neat/rng"
)

// Population is a group of genomes organized into species, plus the shared
// bookkeeping every reproduction cycle reads and writes: the innovation
// database, ID counters, and the per-generation fitness statistics.
type Population struct {
	Species []*Species

	Innovations *InnovationDB

	SearchMode neat.SearchMode

	// GenomeArchive holds every genome ever accepted into the population
	// when params.ArchiveEnforcement is set (it stays empty otherwise); the
	// duplicate-elimination check during reproduction consults it so that a
	// baby identical to a long-extinct ancestor is still rejected.
	GenomeArchive []*Genome

	HighestFitness              float64
	EpochsHighestFitnessLastSeen int

	MeanFitness float64
	Variance    float64
	StandardDev float64

	// MeanComplexity is the average link count across the generation,
	// tracked alongside fitness so a host can watch for runaway bloat.
	MeanComplexity float64

	mu            sync.Mutex
	nextGenomeID  int
	nextSpeciesID int

	// cosmetic is a dedicated RNG stream for decorative species color,
	// kept separate from the caller-supplied evolutionary RNG so that
	// drawing a color never perturbs the sequence of evolutionary
	// decisions a run would otherwise make.
	cosmetic *rng.RNG
}

// NewPopulation builds an initial population of PopSize genomes cloned and
// lightly perturbed from seed, then speciates them. The innovation database
// is seeded so that subsequent structural mutations allocate IDs above
// every one already used by seed.
func NewPopulation(seed *Genome, params *neat.Options, r *rng.RNG) (*Population, error) {
	if params.PopSize <= 0 {
		return nil, errors.Errorf("population size must be positive, got %d", params.PopSize)
	}

	maxNeuronID := 0
	for _, n := range seed.Neurons {
		if n.ID > maxNeuronID {
			maxNeuronID = n.ID
		}
	}
	var maxInnovationID int64
	for _, l := range seed.Links {
		if l.InnovationID > maxInnovationID {
			maxInnovationID = l.InnovationID
		}
	}

	p := &Population{
		Innovations:   NewInnovationDB(maxInnovationID+1, maxNeuronID+1),
		SearchMode:    neat.Complexifying,
		nextGenomeID:  seed.GetID() + 1,
		nextSpeciesID: 1,
		cosmetic:      rng.NewRNG(1),
	}

	genomes := make([]*Genome, 0, params.PopSize)
	for i := 0; i < params.PopSize; i++ {
		g := seed.Duplicate(p.allocGenomeID())
		if _, err := g.MutateLinkWeights(params, r); err != nil {
			return nil, err
		}
		genomes = append(genomes, g)
	}

	if err := p.speciate(genomes, params); err != nil {
		return nil, err
	}
	if params.ArchiveEnforcement {
		p.GenomeArchive = append(p.GenomeArchive, genomes...)
	}
	return p, nil
}

func (p *Population) allocGenomeID() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextGenomeID
	p.nextGenomeID++
	return id
}

// Genomes returns every genome across every species, in no particular
// order.
func (p *Population) Genomes() []*Genome {
	var all []*Genome
	for _, sp := range p.Species {
		all = append(all, sp.Individuals...)
	}
	return all
}

// speciate assigns each genome to the first existing species it is
// compatible with (by CompatibilityDistance under params.CompatThreshold),
// or starts a new species if none match.
func (p *Population) speciate(genomes []*Genome, params *neat.Options) error {
	if len(genomes) == 0 {
		return errors.New("no genomes to speciate")
	}
	for _, g := range genomes {
		placed := false
		for _, sp := range p.Species {
			if g.IsCompatibleWith(sp.Representative, params) {
				sp.AddIndividual(g)
				placed = true
				break
			}
		}
		if !placed {
			id := p.nextSpeciesIDAndIncrement()
			p.Species = append(p.Species, NewSpecies(id, g, p.cosmetic))
		}
	}
	return nil
}

// reSpeciate reassigns the next generation's genomes to existing species
// (matched against each species' surviving Representative) before falling
// back to starting a new species, so that age, stagnation count, and best-
// fitness history carry over generation to generation instead of resetting
// every epoch. Species left with no members after reassignment go extinct.
func (p *Population) reSpeciate(nextGen []*Genome, params *neat.Options) error {
	if len(nextGen) == 0 {
		return errors.New("no genomes to speciate")
	}
	for _, sp := range p.Species {
		sp.Individuals = nil
	}

	for _, g := range nextGen {
		placed := false
		for _, sp := range p.Species {
			if g.IsCompatibleWith(sp.Representative, params) {
				sp.AddIndividual(g)
				placed = true
				break
			}
		}
		if !placed {
			id := p.nextSpeciesIDAndIncrement()
			p.Species = append(p.Species, NewSpecies(id, g, p.cosmetic))
		}
	}

	survivors := p.Species[:0]
	for _, sp := range p.Species {
		if len(sp.Individuals) > 0 {
			sp.Representative = sp.Individuals[0]
			survivors = append(survivors, sp)
		}
	}
	p.Species = survivors
	return nil
}

func (p *Population) nextSpeciesIDAndIncrement() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextSpeciesID
	p.nextSpeciesID++
	return id
}

// Epoch advances the population by one generation: adjust every species'
// fitness, allocate offspring proportional to adjusted fitness, reproduce
// each species into a fresh genome set, re-speciate the result, and refresh
// the population-level fitness statistics. The caller is responsible for
// having set every genome's fitness (via SetFitness + SetEvaluated) before
// calling Epoch.
func (p *Population) Epoch(params *neat.Options, r *rng.RNG) error {
	allGenomes := p.Genomes()
	if len(allGenomes) == 0 {
		return errors.New("cannot epoch an empty population")
	}

	for _, sp := range p.Species {
		sp.AgeGenerations++
		sp.AdjustFitness(params)
	}

	p.markBestAndWorstSpecies()
	p.allocateOffspring(params)

	var nextGen []*Genome
	for _, sp := range p.Species {
		babies, err := sp.Reproduce(p.Innovations, params, p.SearchMode, p.Species, p.GenomeArchive, p.allocGenomeIDFunc(), r)
		if err != nil {
			return err
		}
		nextGen = append(nextGen, babies...)
	}
	if len(nextGen) == 0 {
		return errors.New("epoch produced no offspring")
	}

	if err := p.reSpeciate(nextGen, params); err != nil {
		return err
	}
	if params.ArchiveEnforcement {
		p.GenomeArchive = append(p.GenomeArchive, nextGen...)
	}

	p.updateStatistics(nextGen)
	return nil
}

func (p *Population) allocGenomeIDFunc() func() int {
	return func() int { return p.allocGenomeID() }
}

// markBestAndWorstSpecies flags exactly one species as BestSpecies (used
// by AdjustFitness to exempt it from the stagnation penalty) and one as
// WorstSpecies, ranked by average fitness.
func (p *Population) markBestAndWorstSpecies() {
	if len(p.Species) == 0 {
		return
	}
	ranked := make([]*Species, len(p.Species))
	copy(ranked, p.Species)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].AverageFitness > ranked[j].AverageFitness })
	for _, sp := range p.Species {
		sp.BestSpecies = false
		sp.WorstSpecies = false
	}
	ranked[0].BestSpecies = true
	ranked[len(ranked)-1].WorstSpecies = true
}

// allocateOffspring distributes the target population size across species
// in proportion to each species' share of total adjusted fitness, with any
// rounding remainder going to the single highest-average-fitness species.
func (p *Population) allocateOffspring(params *neat.Options) {
	totalAdjFitness := 0.0
	for _, sp := range p.Species {
		for _, g := range sp.Individuals {
			totalAdjFitness += g.GetAdjFitness()
		}
	}
	if totalAdjFitness == 0 {
		even := params.PopSize / len(p.Species)
		for _, sp := range p.Species {
			sp.OffspringRqd = even
		}
		return
	}

	allocated := 0
	var best *Species
	for _, sp := range p.Species {
		speciesAdjFitness := 0.0
		for _, g := range sp.Individuals {
			speciesAdjFitness += g.GetAdjFitness()
		}
		share := speciesAdjFitness / totalAdjFitness
		sp.OffspringRqd = int(share*float64(params.PopSize) + 0.5)
		allocated += sp.OffspringRqd
		if best == nil || sp.AverageFitness > best.AverageFitness {
			best = sp
		}
	}
	if diff := params.PopSize - allocated; diff != 0 && best != nil {
		best.OffspringRqd += diff
		if best.OffspringRqd < 0 {
			best.OffspringRqd = 0
		}
	}
}

// updateStatistics recomputes MeanFitness/Variance/StandardDev over the
// given generation's raw fitness values using gonum/stat, and tracks
// whether the population's historical best has improved.
func (p *Population) updateStatistics(genomes []*Genome) {
	fitnesses := make([]float64, len(genomes))
	maxFitness := 0.0
	for i, g := range genomes {
		fitnesses[i] = g.GetFitness()
		if fitnesses[i] > maxFitness {
			maxFitness = fitnesses[i]
		}
	}
	p.MeanFitness = stat.Mean(fitnesses, nil)
	p.Variance = stat.Variance(fitnesses, nil)
	p.StandardDev = stat.StdDev(fitnesses, nil)

	complexities := make([]float64, len(genomes))
	for i, g := range genomes {
		complexities[i] = float64(g.NumLinks())
	}
	p.MeanComplexity = floats.Sum(complexities) / float64(len(complexities))

	if maxFitness > p.HighestFitness {
		p.HighestFitness = maxFitness
		p.EpochsHighestFitnessLastSeen = 0
	} else {
		p.EpochsHighestFitnessLastSeen++
	}

	neat.DebugLog("POPULATION: epoch stats computed")
}
