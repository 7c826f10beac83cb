package genetics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvid-labs/neatcore/neat"
)

func TestMutateAddNeuron_splitsLink(t *testing.T) {
	g := buildMinimalGenome(1, testRNG())
	db := NewInnovationDB(3, 4)
	r := testRNG()

	ok, err := g.MutateAddNeuron(db, testOptions(), r)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, g.Neurons, 4)

	enabledCount := 0
	for _, l := range g.Links {
		if l.IsEnabled {
			enabledCount++
		}
	}
	// one original link was split (disabled) and two new links enabled,
	// the other original link remains enabled
	assert.Equal(t, 3, enabledCount)
}

func TestMutateAddNeuron_sameSplitReusesInnovation(t *testing.T) {
	g1 := buildMinimalGenome(1, testRNG())
	g2 := buildMinimalGenome(2, testRNG())
	db := NewInnovationDB(3, 4)
	r := testRNG()

	// force both genomes to split the same (from=1,to=3) link
	g1.Links[0].IsEnabled, g1.Links[1].IsEnabled = true, false
	g2.Links[0].IsEnabled, g2.Links[1].IsEnabled = true, false

	_, err := g1.MutateAddNeuron(db, testOptions(), r)
	require.NoError(t, err)
	_, err = g2.MutateAddNeuron(db, testOptions(), r)
	require.NoError(t, err)

	assert.Equal(t, g1.Neurons[len(g1.Neurons)-1].ID, g2.Neurons[len(g2.Neurons)-1].ID)
}

func TestMutateAddLink_addsNewLink(t *testing.T) {
	g := buildMinimalGenome(1, testRNG())
	// remove one link so a slot is free to add back
	g.Links = g.Links[:1]
	db := NewInnovationDB(3, 4)
	params := testOptions()
	params.RecurOnlyProb = 1.0
	// each try picks a free (from, to) pair with probability 2/9, so this
	// many tries make a miss on every one of them practically impossible
	params.NewLinkTries = 1000
	r := testRNG()

	ok, err := g.MutateAddLink(db, params, r)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, g.Links, 2)
}

func TestMutateRemoveLink_preservesNoDeadEnds(t *testing.T) {
	g := buildMinimalGenome(1, testRNG())
	db := NewInnovationDB(3, 4)
	params := testOptions()
	// split a link: the split link is left disabled, and removing it leaves
	// no dead end
	_, err := g.MutateAddNeuron(db, params, testRNG())
	require.NoError(t, err)

	r := testRNG()
	_, err = g.MutateRemoveLink(r)
	require.NoError(t, err)
	assert.False(t, g.HasDeadEnds())
}

func TestMutateLinkWeights_changesWeights(t *testing.T) {
	g := buildMinimalGenome(1, testRNG())
	before := g.Links[0].Weight
	ok, err := g.MutateLinkWeights(testOptions(), testRNG())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotEqual(t, before, g.Links[0].Weight)
}

func TestGenome_Mutate_dispatchesToEligibleCategory(t *testing.T) {
	g := buildMinimalGenome(1, testRNG())
	db := NewInnovationDB(3, 4)
	params := testOptions()
	params.MutateWeightsProb = 1.0
	// zero every other probability so dispatch always lands on weights
	params.MutateAddNeuronProb = 0
	params.MutateAddLinkProb = 0
	params.MutateRemSimpleNeuronProb = 0
	params.MutateRemLinkProb = 0
	params.MutateNeuronActivationTypeProb = 0
	params.MutateActivationAProb = 0
	params.MutateActivationBProb = 0
	params.MutateNeuronTimeConstantsProb = 0
	params.MutateNeuronBiasesProb = 0
	params.MutateNeuronTraitsProb = 0
	params.MutateLinkTraitsProb = 0
	params.MutateGenomeTraitsProb = 0

	before := g.Links[0].Weight
	err := g.Mutate(db, params, neat.Complexifying, false, testRNG())
	require.NoError(t, err)
	assert.NotEqual(t, before, g.Links[0].Weight)
}

func TestGenome_Mutate_additiveZeroedOnClone(t *testing.T) {
	params := testOptions()
	params.MutateAddNeuronProb = 1.0
	params.MutateAddLinkProb = 1.0
	params.MutateWeightsProb = 1.0

	g := buildMinimalGenome(1, testRNG())
	db := NewInnovationDB(3, 4)
	before := len(g.Neurons)
	err := g.Mutate(db, params, neat.Complexifying, true, testRNG())
	require.NoError(t, err)
	// with isClone=true, additive categories are zeroed, so only weights mutate
	assert.Equal(t, before, len(g.Neurons))
}
