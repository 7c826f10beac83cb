package genetics

import "sync"

// InnovationKind distinguishes the two structural changes the database
// tracks: a new link between two existing neurons, or a new neuron
// splitting an existing link.
type InnovationKind byte

const (
	NewLink InnovationKind = iota
	NewNeuron
)

type innovationKey struct {
	FromID int
	ToID   int
	Kind   InnovationKind
}

// neuronSplit records the stable IDs assigned the first time a given link
// was split: the new neuron's ID plus the innovation IDs of the two links
// the split produces (from->new and new->to).
type neuronSplit struct {
	NeuronID int
	In1      int64
	In2      int64
}

// InnovationDB is the process-wide (in practice, population-wide) registry
// mapping structural changes to stable historical IDs, so that two genomes
// which independently evolve the "same" structural change share a marker
// that crossover can align on. It is created once with the population and
// never reset; every reproduction call borrows it under exclusive lock.
type InnovationDB struct {
	mu sync.Mutex

	links   map[innovationKey]int64
	neurons map[innovationKey]neuronSplit

	nextInnovationID int64
	nextNeuronID     int
}

// NewInnovationDB creates a database whose innovation and neuron ID
// counters start at the given values: each is the first ID the database
// hands out, so callers seeding an initial population pass one more than
// the highest innovation and neuron IDs the seed genome already uses.
func NewInnovationDB(startInnovationID int64, startNeuronID int) *InnovationDB {
	return &InnovationDB{
		links:            make(map[innovationKey]int64),
		neurons:          make(map[innovationKey]neuronSplit),
		nextInnovationID: startInnovationID,
		nextNeuronID:     startNeuronID,
	}
}

// LinkInnovationID returns the stable innovation ID for a new link between
// fromID and toID, allocating one if this exact change has not been seen
// before in this population.
func (db *InnovationDB) LinkInnovationID(fromID, toID int) int64 {
	db.mu.Lock()
	defer db.mu.Unlock()

	key := innovationKey{FromID: fromID, ToID: toID, Kind: NewLink}
	if id, ok := db.links[key]; ok {
		return id
	}
	id := db.nextInnovationID
	db.nextInnovationID++
	db.links[key] = id
	return id
}

// NeuronSplitIDs returns the stable (neuron ID, link1 innovation ID, link2
// innovation ID) triple for splitting the link fromID->toID with a new
// neuron, allocating fresh IDs the first time this split is requested.
func (db *InnovationDB) NeuronSplitIDs(fromID, toID int) (neuronID int, in1, in2 int64) {
	db.mu.Lock()
	defer db.mu.Unlock()

	key := innovationKey{FromID: fromID, ToID: toID, Kind: NewNeuron}
	if s, ok := db.neurons[key]; ok {
		return s.NeuronID, s.In1, s.In2
	}
	neuronID = db.nextNeuronID
	db.nextNeuronID++
	in1 = db.nextInnovationID
	db.nextInnovationID++
	in2 = db.nextInnovationID
	db.nextInnovationID++
	db.neurons[key] = neuronSplit{NeuronID: neuronID, In1: in1, In2: in2}
	return neuronID, in1, in2
}

// ReserveNeuronID allocates a fresh neuron ID with no associated split
// record, used when seeding the initial population's hidden neurons.
func (db *InnovationDB) ReserveNeuronID() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	id := db.nextNeuronID
	db.nextNeuronID++
	return id
}
