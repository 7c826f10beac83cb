package genetics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPopulation_seedsSpecies(t *testing.T) {
	seed := buildMinimalGenome(0, testRNG())
	params := testOptions()
	params.PopSize = 20

	pop, err := NewPopulation(seed, params, testRNG())
	require.NoError(t, err)
	assert.Len(t, pop.Genomes(), 20)
	assert.NotEmpty(t, pop.Species)
}

func TestNewPopulation_rejectsNonPositiveSize(t *testing.T) {
	seed := buildMinimalGenome(0, testRNG())
	params := testOptions()
	params.PopSize = 0
	_, err := NewPopulation(seed, params, testRNG())
	assert.Error(t, err)
}

func TestPopulation_Epoch_advancesGeneration(t *testing.T) {
	seed := buildMinimalGenome(0, testRNG())
	params := testOptions()
	params.PopSize = 10
	params.CompatThreshold = 100 // keep everything in one species for a simple test

	pop, err := NewPopulation(seed, params, testRNG())
	require.NoError(t, err)

	for _, g := range pop.Genomes() {
		g.SetFitness(float64(g.GetID()) + 1)
		g.SetEvaluated()
	}

	err = pop.Epoch(params, testRNG())
	require.NoError(t, err)
	assert.NotEmpty(t, pop.Genomes())
	assert.True(t, len(pop.GenomeArchive) > 10)
}

func TestPopulation_Epoch_rejectsUnspeciated(t *testing.T) {
	pop := &Population{}
	err := pop.Epoch(testOptions(), testRNG())
	assert.Error(t, err)
}
