package genetics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenome_Mate_multipoint(t *testing.T) {
	g1 := buildMinimalGenome(1, testRNG())
	g2 := buildMinimalGenome(2, testRNG())
	g2.Links[0].Weight = 5.0

	params := testOptions()
	baby, err := g1.Mate(g2, 3, 1.0, 1.0, false, params, testRNG())
	require.NoError(t, err)
	assert.Equal(t, 3, baby.GetID())
	assert.Len(t, baby.Links, 2)
	assert.NoError(t, baby.RequireEnabledLinks())
}

func TestGenome_Mate_avgMode_averagesWeights(t *testing.T) {
	g1 := buildMinimalGenome(1, testRNG())
	g2 := buildMinimalGenome(2, testRNG())
	g1.Links[0].Weight = 1.0
	g2.Links[0].Weight = 3.0

	baby, err := g1.Mate(g2, 3, 1.0, 1.0, true, testOptions(), testRNG())
	require.NoError(t, err)
	l, ok := baby.HasLink(1, 3, false)
	require.True(t, ok)
	assert.InDelta(t, 2.0, l.Weight, 1e-9)
}

func TestGenome_Mate_inheritsExcessFromFitterParent(t *testing.T) {
	g1 := buildMinimalGenome(1, testRNG())
	g2 := buildMinimalGenome(2, testRNG())
	g2.Links = geneInsert(g2.Links, &LinkGene{FromNeuronID: 1, ToNeuronID: 3, InnovationID: 99, Weight: 7, IsEnabled: true})

	baby, err := g1.Mate(g2, 3, 1.0, 2.0, false, testOptions(), testRNG())
	require.NoError(t, err)

	var hasExcess bool
	for _, l := range baby.Links {
		if l.InnovationID == 99 {
			hasExcess = true
		}
	}
	assert.True(t, hasExcess, "excess gene from the fitter parent (g2) should survive")
}

func TestGenome_Mate_keepsSensorsAndOutputs(t *testing.T) {
	g1 := buildMinimalGenome(1, testRNG())
	g2 := buildMinimalGenome(2, testRNG())

	baby, err := g1.Mate(g2, 3, 1.0, 1.0, false, testOptions(), testRNG())
	require.NoError(t, err)

	var inputs, outputs int
	for _, n := range baby.Neurons {
		switch n.Type {
		case NeuronInput:
			inputs++
		case NeuronOutput:
			outputs++
		}
	}
	assert.Equal(t, 2, inputs)
	assert.Equal(t, 1, outputs)
}
