package genetics

import (
	"github.com/corvid-labs/neatcore/neat/math"
	"github.com/corvid-labs/neatcore/neat/rng"
	"github.com/corvid-labs/neatcore/neat/traits"
)

// NeuronType is the role a NeuronGene plays in the network.
type NeuronType byte

const (
	NeuronNone NeuronType = iota
	NeuronInput
	NeuronBias
	NeuronHidden
	NeuronOutput
)

func (t NeuronType) String() string {
	switch t {
	case NeuronInput:
		return "INPUT"
	case NeuronBias:
		return "BIAS"
	case NeuronHidden:
		return "HIDDEN"
	case NeuronOutput:
		return "OUTPUT"
	default:
		return "NONE"
	}
}

// NeuronGene is a node gene: immutable identity (ID, Type), mutable depth,
// activation shape, and display coordinates.
type NeuronGene struct {
	ID                 int                     `yaml:"id"`
	Type               NeuronType              `yaml:"type"`
	SplitY             float64                 `yaml:"split_y"`
	A                  float64                 `yaml:"a"`
	B                  float64                 `yaml:"b"`
	TimeConstant       float64                 `yaml:"time_constant"`
	Bias               float64                 `yaml:"bias"`
	ActivationFunction math.ActivationFunction `yaml:"activation_function"`
	X                  float64                 `yaml:"x"`
	Y                  float64                 `yaml:"y"`
	Traits             traits.Map              `yaml:"traits,omitempty"`
}

// NewNeuronGene creates a node gene of the given type and draws its trait
// values from params. Input and bias neurons get SplitY=0, output neurons
// SplitY=1, matching the genome invariant; hidden neurons are left to the
// caller (structural mutation assigns a split depth between endpoints).
func NewNeuronGene(id int, typ NeuronType, params traits.ParamSet, r *rng.RNG) (*NeuronGene, error) {
	tm, err := traits.InitTraits(params, r)
	if err != nil {
		return nil, err
	}
	n := &NeuronGene{
		ID:                 id,
		Type:               typ,
		A:                  1.0,
		TimeConstant:       1.0,
		ActivationFunction: math.SignedSigmoid,
		Traits:             tm,
	}
	switch typ {
	case NeuronInput, NeuronBias:
		n.SplitY = 0
	case NeuronOutput:
		n.SplitY = 1
	}
	return n, nil
}

// Equal compares every mutable and immutable field, per the genome
// invariant that neuron-gene equality is not identity-only.
func (n *NeuronGene) Equal(o *NeuronGene) bool {
	if o == nil {
		return false
	}
	return n.ID == o.ID &&
		n.Type == o.Type &&
		n.SplitY == o.SplitY &&
		n.A == o.A &&
		n.B == o.B &&
		n.TimeConstant == o.TimeConstant &&
		n.Bias == o.Bias &&
		n.ActivationFunction == o.ActivationFunction &&
		n.X == o.X &&
		n.Y == o.Y
}

// Duplicate returns a deep copy, including a fresh trait map.
func (n *NeuronGene) Duplicate() *NeuronGene {
	cp := *n
	cp.Traits = duplicateTraitMap(n.Traits)
	return &cp
}

// LinkGene is an edge gene: identity is the innovation ID, which also
// determines ordering among link genes within a genome.
type LinkGene struct {
	FromNeuronID int        `yaml:"from_neuron_id"`
	ToNeuronID   int        `yaml:"to_neuron_id"`
	InnovationID int64      `yaml:"innovation_id"`
	Weight       float64    `yaml:"weight"`
	IsRecurrent  bool       `yaml:"is_recurrent"`
	IsEnabled    bool       `yaml:"is_enabled"`
	Traits       traits.Map `yaml:"traits,omitempty"`
}

// NewLinkGene creates an enabled link gene with the given weight and draws
// its trait values from params.
func NewLinkGene(fromID, toID int, innovationID int64, weight float64, recurrent bool, params traits.ParamSet, r *rng.RNG) (*LinkGene, error) {
	tm, err := traits.InitTraits(params, r)
	if err != nil {
		return nil, err
	}
	return &LinkGene{
		FromNeuronID: fromID,
		ToNeuronID:   toID,
		InnovationID: innovationID,
		Weight:       weight,
		IsRecurrent:  recurrent,
		IsEnabled:    true,
		Traits:       tm,
	}, nil
}

// Less orders link genes by innovation ID.
func (l *LinkGene) Less(o *LinkGene) bool { return l.InnovationID < o.InnovationID }

// Duplicate returns a deep copy, including a fresh trait map.
func (l *LinkGene) Duplicate() *LinkGene {
	cp := *l
	cp.Traits = duplicateTraitMap(l.Traits)
	return &cp
}

func duplicateTraitMap(m traits.Map) traits.Map {
	if m == nil {
		return nil
	}
	out := make(traits.Map, len(m))
	for k, v := range m {
		cp := *v
		out[k] = &cp
	}
	return out
}
