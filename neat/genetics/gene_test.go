package genetics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvid-labs/neatcore/neat/math"
	"github.com/corvid-labs/neatcore/neat/traits"
)

func TestNewNeuronGene_defaults(t *testing.T) {
	n, err := NewNeuronGene(1, NeuronInput, nil, testRNG())
	require.NoError(t, err)
	assert.Equal(t, 0.0, n.SplitY)
	assert.Equal(t, math.SignedSigmoid, n.ActivationFunction)
	assert.Equal(t, 1.0, n.A)
	assert.Equal(t, 1.0, n.TimeConstant)

	out, err := NewNeuronGene(2, NeuronOutput, nil, testRNG())
	require.NoError(t, err)
	assert.Equal(t, 1.0, out.SplitY)
}

func TestNeuronGene_Equal(t *testing.T) {
	a, _ := NewNeuronGene(1, NeuronHidden, nil, testRNG())
	b := a.Duplicate()
	assert.True(t, a.Equal(b))

	b.Bias = 5
	assert.False(t, a.Equal(b))
}

func TestNewLinkGene(t *testing.T) {
	l, err := NewLinkGene(1, 2, 10, 0.75, true, nil, testRNG())
	require.NoError(t, err)
	assert.Equal(t, int64(10), l.InnovationID)
	assert.True(t, l.IsEnabled)
	assert.True(t, l.IsRecurrent)
}

func TestLinkGene_Less(t *testing.T) {
	a := &LinkGene{InnovationID: 1}
	b := &LinkGene{InnovationID: 2}
	assert.True(t, a.Less(b))
	assert.False(t, b.Less(a))
}

func TestLinkGene_Duplicate_independentTraits(t *testing.T) {
	l := &LinkGene{InnovationID: 1, Traits: traits.Map{"x": {Value: traits.TraitValue{Kind: traits.FloatValue, Float: 1}}}}
	cp := l.Duplicate()
	cp.Weight = 42
	assert.NotEqual(t, l.Weight, cp.Weight)
	cp.Traits["x"].Value.Float = 42
	assert.Equal(t, 1.0, l.Traits["x"].Value.Float)
}
