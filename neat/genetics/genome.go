// Package genetics implements the genome data model and the reproduction
// pipeline built on top of it: genes, genomes, species, the innovation
// database, and the population container.
package genetics

import (
	"sort"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/corvid-labs/neatcore/neat"
	"github.com/corvid-labs/neatcore/neat/traits"
)

// Genome is an ordered pair of neuron and link gene slices plus a
// genome-level trait map and the bookkeeping fields the reproduction
// pipeline reads and writes.
type Genome struct {
	id int

	// Neurons is kept sorted by ID; Links is kept sorted by innovation ID
	// after SortGenes (callers mutate structurally via the helpers below,
	// which preserve the invariant incrementally).
	Neurons []*NeuronGene
	Links   []*LinkGene

	Traits traits.Map

	// TraitParams is the trait parameter catalog shared across the whole
	// population; it is not serialized as part of the genome (every genome
	// in a run shares one catalog) but is needed wherever a mutation or
	// distance calculation needs a trait's bounds or mutation probability
	// rather than just its current value.
	TraitParams traits.ParamSet `yaml:"-"`

	fitness         float64
	adjFitness      float64
	offspringAmount float64
	evaluated       bool
}

// NewGenome builds a genome from already-sorted neuron and link slices.
func NewGenome(id int, neurons []*NeuronGene, links []*LinkGene, genomeTraits traits.Map) *Genome {
	g := &Genome{
		id:      id,
		Neurons: neurons,
		Links:   links,
		Traits:  genomeTraits,
	}
	g.SortGenes()
	return g
}

func (g *Genome) GetID() int     { return g.id }
func (g *Genome) SetID(id int)   { g.id = id }

func (g *Genome) GetFitness() float64   { return g.fitness }
func (g *Genome) SetFitness(f float64)  { g.fitness = f }

func (g *Genome) GetAdjFitness() float64  { return g.adjFitness }
func (g *Genome) SetAdjFitness(f float64) { g.adjFitness = f }

func (g *Genome) GetOffspringAmount() float64  { return g.offspringAmount }
func (g *Genome) SetOffspringAmount(a float64) { g.offspringAmount = a }

func (g *Genome) IsEvaluated() bool   { return g.evaluated }
func (g *Genome) SetEvaluated()       { g.evaluated = true }
func (g *Genome) ResetEvaluated()     { g.evaluated = false }

// SortGenes sorts Links by innovation ID. It is idempotent and stable.
func (g *Genome) SortGenes() {
	sort.SliceStable(g.Links, func(i, j int) bool { return g.Links[i].InnovationID < g.Links[j].InnovationID })
	sort.SliceStable(g.Neurons, func(i, j int) bool { return g.Neurons[i].ID < g.Neurons[j].ID })
}

// neuronInsert inserts n into neurons maintaining ascending-ID order.
func neuronInsert(neurons []*NeuronGene, n *NeuronGene) []*NeuronGene {
	idx := sort.Search(len(neurons), func(i int) bool { return neurons[i].ID >= n.ID })
	neurons = append(neurons, nil)
	copy(neurons[idx+1:], neurons[idx:])
	neurons[idx] = n
	return neurons
}

// geneInsert inserts l into links maintaining ascending-innovation-ID order.
func geneInsert(links []*LinkGene, l *LinkGene) []*LinkGene {
	idx := sort.Search(len(links), func(i int) bool { return links[i].InnovationID >= l.InnovationID })
	links = append(links, nil)
	copy(links[idx+1:], links[idx:])
	links[idx] = l
	return links
}

// NeuronByID returns the neuron with the given ID via binary search over
// the sorted Neurons slice.
func (g *Genome) NeuronByID(id int) (*NeuronGene, bool) {
	i := sort.Search(len(g.Neurons), func(i int) bool { return g.Neurons[i].ID >= id })
	if i < len(g.Neurons) && g.Neurons[i].ID == id {
		return g.Neurons[i], true
	}
	return nil, false
}

// HasLink reports whether a link with the given (from, to, recurrent)
// triple already exists, enforcing the genome's no-duplicate-triple
// invariant at mutation time.
func (g *Genome) HasLink(fromID, toID int, recurrent bool) (*LinkGene, bool) {
	for _, l := range g.Links {
		if l.FromNeuronID == fromID && l.ToNeuronID == toID && l.IsRecurrent == recurrent {
			return l, true
		}
	}
	return nil, false
}

// NumLinks returns the number of link genes, regardless of enabled state.
func (g *Genome) NumLinks() int { return len(g.Links) }

// NumEnabledLinks returns the number of enabled link genes.
func (g *Genome) NumEnabledLinks() int {
	n := 0
	for _, l := range g.Links {
		if l.IsEnabled {
			n++
		}
	}
	return n
}

// HasDeadEnds reports whether any non-input/bias neuron lacks an enabled
// incoming link, or any non-output neuron lacks an enabled outgoing link.
func (g *Genome) HasDeadEnds() bool {
	hasIncoming := make(map[int]bool, len(g.Neurons))
	hasOutgoing := make(map[int]bool, len(g.Neurons))
	for _, l := range g.Links {
		if !l.IsEnabled {
			continue
		}
		hasOutgoing[l.FromNeuronID] = true
		hasIncoming[l.ToNeuronID] = true
	}
	for _, n := range g.Neurons {
		switch n.Type {
		case NeuronInput, NeuronBias:
			if !hasOutgoing[n.ID] {
				return true
			}
		case NeuronOutput:
			if !hasIncoming[n.ID] {
				return true
			}
		default:
			if !hasIncoming[n.ID] || !hasOutgoing[n.ID] {
				return true
			}
		}
	}
	return false
}

// FailsConstraints reports whether the genome violates one of the data
// model invariants: link endpoints resolving to a neuron in the genome,
// input/bias split_y==0, output split_y==1, and no duplicate
// (from,to,recurrent) link triple.
func (g *Genome) FailsConstraints(_ *neat.Options) bool {
	for _, n := range g.Neurons {
		switch n.Type {
		case NeuronInput, NeuronBias:
			if n.SplitY != 0 {
				return true
			}
		case NeuronOutput:
			if n.SplitY != 1 {
				return true
			}
		}
	}
	seen := make(map[[3]interface{}]bool, len(g.Links))
	for _, l := range g.Links {
		if _, ok := g.NeuronByID(l.FromNeuronID); !ok {
			return true
		}
		if _, ok := g.NeuronByID(l.ToNeuronID); !ok {
			return true
		}
		key := [3]interface{}{l.FromNeuronID, l.ToNeuronID, l.IsRecurrent}
		if seen[key] {
			return true
		}
		seen[key] = true
	}
	return false
}

// Duplicate returns a deep copy of the genome with a new ID. Fitness,
// adjusted fitness, offspring amount and evaluated are reset, matching
// baby-finalization semantics; callers that need an exact elite copy call
// CloneAsIs instead.
func (g *Genome) Duplicate(newID int) *Genome {
	cp := g.CloneAsIs(newID)
	cp.fitness = 0
	cp.adjFitness = 0
	cp.offspringAmount = 0
	cp.evaluated = false
	return cp
}

// CloneAsIs returns a deep copy of the genome with a new ID, preserving
// fitness/adjFitness/offspringAmount/evaluated verbatim - used for elite
// copies, which are "exact copies" per the reproduction spec.
func (g *Genome) CloneAsIs(newID int) *Genome {
	neurons := make([]*NeuronGene, len(g.Neurons))
	for i, n := range g.Neurons {
		neurons[i] = n.Duplicate()
	}
	links := make([]*LinkGene, len(g.Links))
	for i, l := range g.Links {
		links[i] = l.Duplicate()
	}
	return &Genome{
		id:              newID,
		Neurons:         neurons,
		Links:           links,
		Traits:          duplicateTraitMap(g.Traits),
		TraitParams:     g.TraitParams,
		fitness:         g.fitness,
		adjFitness:      g.adjFitness,
		offspringAmount: g.offspringAmount,
		evaluated:       g.evaluated,
	}
}

// IsEqual reports whether two genomes have identical neuron and link
// content (ignoring ID, fitness and bookkeeping fields).
func (g *Genome) IsEqual(o *Genome) bool {
	if len(g.Neurons) != len(o.Neurons) || len(g.Links) != len(o.Links) {
		return false
	}
	for i := range g.Neurons {
		if !g.Neurons[i].Equal(o.Neurons[i]) {
			return false
		}
	}
	for i := range g.Links {
		a, b := g.Links[i], o.Links[i]
		if a.InnovationID != b.InnovationID || a.FromNeuronID != b.FromNeuronID ||
			a.ToNeuronID != b.ToNeuronID || a.Weight != b.Weight ||
			a.IsRecurrent != b.IsRecurrent || a.IsEnabled != b.IsEnabled {
			return false
		}
	}
	return true
}

// genomeYAML mirrors Genome's exported fields plus the unexported ID and
// fitness bookkeeping that yaml.v3 cannot reach directly, the way the
// teacher's yamlGenomeWriter/yamlGenomeReader hand-encode a Genome into a
// map to carry its Id across the same gap.
type genomeYAML struct {
	ID              int           `yaml:"id"`
	Neurons         []*NeuronGene `yaml:"neurons"`
	Links           []*LinkGene   `yaml:"links"`
	Traits          traits.Map    `yaml:"traits,omitempty"`
	Fitness         float64       `yaml:"fitness"`
	AdjFitness      float64       `yaml:"adj_fitness"`
	OffspringAmount float64       `yaml:"offspring_amount"`
	Evaluated       bool          `yaml:"evaluated"`
}

func (g *Genome) MarshalYAML() (interface{}, error) {
	return genomeYAML{
		ID:              g.id,
		Neurons:         g.Neurons,
		Links:           g.Links,
		Traits:          g.Traits,
		Fitness:         g.fitness,
		AdjFitness:      g.adjFitness,
		OffspringAmount: g.offspringAmount,
		Evaluated:       g.evaluated,
	}, nil
}

func (g *Genome) UnmarshalYAML(value *yaml.Node) error {
	var y genomeYAML
	if err := value.Decode(&y); err != nil {
		return errors.Wrap(err, "failed to unmarshal genome")
	}
	g.id = y.ID
	g.Neurons = y.Neurons
	g.Links = y.Links
	g.Traits = y.Traits
	g.fitness = y.Fitness
	g.adjFitness = y.AdjFitness
	g.offspringAmount = y.OffspringAmount
	g.evaluated = y.Evaluated
	g.SortGenes()
	return nil
}

var errNoEnabledLinks = errors.New("genome has no enabled links")

// RequireEnabledLinks returns errNoEnabledLinks if the genome has no
// enabled link genes. Species.Reproduce checks this on every offspring
// before accepting it, since a genome with zero enabled links cannot be
// evaluated.
func (g *Genome) RequireEnabledLinks() error {
	if g.NumEnabledLinks() == 0 {
		return errNoEnabledLinks
	}
	return nil
}
