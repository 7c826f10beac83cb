package traits

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvid-labs/neatcore/neat/rng"
)

func testParams() ParamSet {
	return ParamSet{
		"weight_power": {
			Name:    "weight_power",
			Type:    TypeFloat,
			Numeric: &NumericDetails{Min: 0, Max: 1, MutPower: 0.1, MutReplaceProb: 0.1},
			MutationProbability: 1.0,
		},
		"trials": {
			Name:    "trials",
			Type:    TypeInt,
			Numeric: &NumericDetails{Min: 0, Max: 10, MutPower: 1, MutReplaceProb: 0.1},
			MutationProbability: 1.0,
		},
		"shape": {
			Name:                "shape",
			Type:                TypeStr,
			Set:                 &SetDetails{StrSet: []string{"square", "circle"}, Probs: []float64{0.5, 0.5}},
			MutationProbability: 1.0,
		},
		"gated": {
			Name:                 "gated",
			Type:                 TypeFloat,
			Numeric:              &NumericDetails{Min: 0, Max: 1, MutPower: 0.1, MutReplaceProb: 0.1},
			MutationProbability:  1.0,
			DepKey:               "shape",
			DepValues:            []TraitValue{{Kind: StrValue, Str: "circle"}},
		},
	}
}

func TestInitTraits(t *testing.T) {
	params := testParams()
	r := rng.NewRNG(1)
	m, err := InitTraits(params, r)
	require.NoError(t, err)
	require.Len(t, m, len(params))
	assert.Equal(t, FloatValue, m["weight_power"].Value.Kind)
	assert.Equal(t, IntValue, m["trials"].Value.Kind)
	assert.Equal(t, StrValue, m["shape"].Value.Kind)
	// InitTraits always draws a value even when gated, regardless of the
	// current value of the trait it depends on.
	assert.Equal(t, FloatValue, m["gated"].Value.Kind)
}

func TestInitTraits_emptySetFails(t *testing.T) {
	params := ParamSet{
		"bad": {Name: "bad", Type: TypeStr, Set: &SetDetails{}, MutationProbability: 1.0},
	}
	_, err := InitTraits(params, rng.NewRNG(1))
	assert.Error(t, err)
}

func TestMateTraits_typeMismatchFails(t *testing.T) {
	a := Map{"x": {Value: TraitValue{Kind: IntValue, Int: 1}}}
	b := Map{"x": {Value: TraitValue{Kind: StrValue, Str: "y"}}}
	params := ParamSet{"x": {Name: "x", Type: TypeInt}}
	_, err := MateTraits(a, b, params, rng.NewRNG(1))
	assert.Error(t, err)
}

func TestMateTraits_averagesNumeric(t *testing.T) {
	params := ParamSet{"x": {Name: "x", Type: TypeFloat, Numeric: &NumericDetails{Min: 0, Max: 10}}}
	a := Map{"x": {Value: TraitValue{Kind: FloatValue, Float: 2.0}}}
	b := Map{"x": {Value: TraitValue{Kind: FloatValue, Float: 4.0}}}
	seenAverage := false
	for i := 0; i < 200; i++ {
		child, err := MateTraits(a, b, params, rng.NewRNG(int64(i)))
		require.NoError(t, err)
		v := child["x"].Value.Float
		if v == 3.0 {
			seenAverage = true
		}
		assert.True(t, v == 2.0 || v == 3.0 || v == 4.0)
	}
	assert.True(t, seenAverage, "expected to observe an averaged value across many trials")
}

func TestMutateTraits_gatedSkipped(t *testing.T) {
	params := testParams()
	traits := Map{
		"shape": {Value: TraitValue{Kind: StrValue, Str: "square"}, DepKey: "", DepValues: nil},
		"gated": {Value: TraitValue{Kind: FloatValue, Float: 0.5}, DepKey: "shape",
			DepValues: []TraitValue{{Kind: StrValue, Str: "circle"}}},
	}
	r := rng.NewRNG(1)
	_, err := MutateTraits(traits, ParamSet{"gated": params["gated"], "shape": params["shape"]}, r)
	require.NoError(t, err)
	assert.Equal(t, 0.5, traits["gated"].Value.Float, "gated trait must not mutate while dependency condition is false")
}

func TestMutateTraits_activeMutates(t *testing.T) {
	params := ParamSet{
		"x": {Name: "x", Type: TypeFloat, Numeric: &NumericDetails{Min: 0, Max: 1, MutPower: 0.5, MutReplaceProb: 0}, MutationProbability: 1.0},
	}
	traits := Map{"x": {Value: TraitValue{Kind: FloatValue, Float: 0.5}}}
	mutatedAtLeastOnce := false
	for i := 0; i < 50; i++ {
		did, err := MutateTraits(traits, params, rng.NewRNG(int64(i)))
		require.NoError(t, err)
		if did {
			mutatedAtLeastOnce = true
		}
	}
	assert.True(t, mutatedAtLeastOnce)
}

func TestDistance_gatedBothSides(t *testing.T) {
	params := ParamSet{
		"shape": {Name: "shape", Type: TypeStr},
		"gated": {Name: "gated", Type: TypeFloat, DepKey: "shape",
			DepValues: []TraitValue{{Kind: StrValue, Str: "circle"}}},
	}
	a := Map{
		"shape": {Value: TraitValue{Kind: StrValue, Str: "square"}},
		"gated": {Value: TraitValue{Kind: FloatValue, Float: 10}},
	}
	b := Map{
		"shape": {Value: TraitValue{Kind: StrValue, Str: "square"}},
		"gated": {Value: TraitValue{Kind: FloatValue, Float: 0}},
	}
	// "gated" is inactive on both sides (shape=="square"), so it
	// contributes nothing despite the huge raw value difference.
	assert.Equal(t, 0.0, Distance(a, b, params))
}

func TestDistance_numeric(t *testing.T) {
	params := ParamSet{"x": {Name: "x", Type: TypeFloat}}
	a := Map{"x": {Value: TraitValue{Kind: FloatValue, Float: 5}}}
	b := Map{"x": {Value: TraitValue{Kind: FloatValue, Float: 2}}}
	assert.Equal(t, 3.0, Distance(a, b, params))
}
