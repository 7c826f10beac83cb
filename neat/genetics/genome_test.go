package genetics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestNewGenome_sortsGenes(t *testing.T) {
	l2 := &LinkGene{FromNeuronID: 1, ToNeuronID: 2, InnovationID: 5}
	l1 := &LinkGene{FromNeuronID: 1, ToNeuronID: 2, InnovationID: 1}
	n2 := &NeuronGene{ID: 2, Type: NeuronOutput}
	n1 := &NeuronGene{ID: 1, Type: NeuronInput}

	g := NewGenome(1, []*NeuronGene{n2, n1}, []*LinkGene{l2, l1}, nil)
	assert.Equal(t, 1, g.Neurons[0].ID)
	assert.Equal(t, int64(1), g.Links[0].InnovationID)
}

func TestGenome_NeuronByID(t *testing.T) {
	g := buildMinimalGenome(1, testRNG())
	n, ok := g.NeuronByID(3)
	require.True(t, ok)
	assert.Equal(t, NeuronOutput, n.Type)

	_, ok = g.NeuronByID(99)
	assert.False(t, ok)
}

func TestGenome_HasLink(t *testing.T) {
	g := buildMinimalGenome(1, testRNG())
	l, ok := g.HasLink(1, 3, false)
	require.True(t, ok)
	assert.Equal(t, int64(1), l.InnovationID)

	_, ok = g.HasLink(2, 1, false)
	assert.False(t, ok)
}

func TestGenome_NumEnabledLinks(t *testing.T) {
	g := buildMinimalGenome(1, testRNG())
	assert.Equal(t, 2, g.NumEnabledLinks())
	g.Links[0].IsEnabled = false
	assert.Equal(t, 1, g.NumEnabledLinks())
}

func TestGenome_HasDeadEnds_false(t *testing.T) {
	g := buildMinimalGenome(1, testRNG())
	assert.False(t, g.HasDeadEnds())
}

func TestGenome_HasDeadEnds_true(t *testing.T) {
	g := buildMinimalGenome(1, testRNG())
	g.Links[0].IsEnabled = false
	g.Links[1].IsEnabled = false
	assert.True(t, g.HasDeadEnds())
}

func TestGenome_FailsConstraints_dangling(t *testing.T) {
	g := buildMinimalGenome(1, testRNG())
	g.Links = append(g.Links, &LinkGene{FromNeuronID: 1, ToNeuronID: 999, InnovationID: 3, IsEnabled: true})
	assert.True(t, g.FailsConstraints(testOptions()))
}

func TestGenome_FailsConstraints_duplicateTriple(t *testing.T) {
	g := buildMinimalGenome(1, testRNG())
	g.Links = append(g.Links, &LinkGene{FromNeuronID: 1, ToNeuronID: 3, InnovationID: 3, IsEnabled: true})
	assert.True(t, g.FailsConstraints(testOptions()))
}

func TestGenome_FailsConstraints_badSplitY(t *testing.T) {
	g := buildMinimalGenome(1, testRNG())
	g.Neurons[0].SplitY = 0.5
	assert.True(t, g.FailsConstraints(testOptions()))
}

func TestGenome_Duplicate_resetsFitness(t *testing.T) {
	g := buildMinimalGenome(1, testRNG())
	g.SetFitness(10)
	g.SetEvaluated()

	cp := g.Duplicate(2)
	assert.Equal(t, 2, cp.GetID())
	assert.Equal(t, 0.0, cp.GetFitness())
	assert.False(t, cp.IsEvaluated())
	assert.True(t, cp.IsEqual(g))

	// deep copy: mutating the duplicate must not affect the original
	cp.Links[0].Weight = 99
	assert.NotEqual(t, g.Links[0].Weight, cp.Links[0].Weight)
}

func TestGenome_CloneAsIs_preservesFitness(t *testing.T) {
	g := buildMinimalGenome(1, testRNG())
	g.SetFitness(10)
	g.SetEvaluated()

	cp := g.CloneAsIs(2)
	assert.Equal(t, 10.0, cp.GetFitness())
	assert.True(t, cp.IsEvaluated())
}

func TestGenome_IsEqual(t *testing.T) {
	g1 := buildMinimalGenome(1, testRNG())
	g2 := buildMinimalGenome(2, testRNG())
	assert.True(t, g1.IsEqual(g2))

	g2.Links[0].Weight = 123
	assert.False(t, g1.IsEqual(g2))
}

func TestGenome_RequireEnabledLinks(t *testing.T) {
	g := buildMinimalGenome(1, testRNG())
	assert.NoError(t, g.RequireEnabledLinks())

	g.Links[0].IsEnabled = false
	g.Links[1].IsEnabled = false
	assert.Error(t, g.RequireEnabledLinks())
}

func TestGenome_YAMLRoundTrip(t *testing.T) {
	g := buildMinimalGenome(7, testRNG())
	g.SetFitness(3.5)
	g.SetEvaluated()

	out, err := yaml.Marshal(g)
	require.NoError(t, err)

	var back Genome
	require.NoError(t, yaml.Unmarshal(out, &back))

	assert.Equal(t, g.GetID(), back.GetID())
	assert.Equal(t, g.GetFitness(), back.GetFitness())
	assert.Equal(t, g.IsEvaluated(), back.IsEvaluated())
	assert.True(t, g.IsEqual(&back))
}
