// Package traits implements the dynamically-typed, parameter-driven
// attributes attached to genes: a tagged-union value type plus the
// init/mate/mutate/distance operators that act on it.
//
// Traits save a genetic algorithm from having to search a vast parameter
// landscape on every gene - instead a gene points at a named trait and the
// trait's value evolves on its own, gated by TraitParameters.
package traits

import (
	"math"

	"github.com/pkg/errors"

	"github.com/corvid-labs/neatcore/neat/rng"
)

// ValueKind identifies which arm of the TraitValue tagged union is populated.
type ValueKind byte

const (
	IntValue ValueKind = iota
	FloatValue
	StrValue
	IntSetValue
	FloatSetValue
	ExternValue
)

// Extern is the interface an opaque, foreign-object trait value must
// implement so the core can still init/mate/mutate/measure it generically.
type Extern interface {
	Mate(other Extern) Extern
	Mutate(r *rng.RNG) (Extern, bool)
	DistanceTo(other Extern) float64
}

// TraitValue is a tagged union over the handful of concrete value shapes a
// trait may carry.
type TraitValue struct {
	Kind   ValueKind `yaml:"kind"`
	Int    int       `yaml:"int,omitempty"`
	Float  float64   `yaml:"float,omitempty"`
	Str    string    `yaml:"str,omitempty"`
	Extern Extern    `yaml:"-"`
}

// Equal reports whether two values of the same kind are identical.
func (v TraitValue) Equal(o TraitValue) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case IntValue, IntSetValue:
		return v.Int == o.Int
	case FloatValue, FloatSetValue:
		return v.Float == o.Float
	case StrValue:
		return v.Str == o.Str
	case ExternValue:
		return v.Extern == o.Extern
	default:
		return false
	}
}

// NumericDetails parametrizes int and float traits.
type NumericDetails struct {
	Min            float64 `yaml:"min"`
	Max            float64 `yaml:"max"`
	MutPower       float64 `yaml:"mut_power"`
	MutReplaceProb float64 `yaml:"mut_replace_prob"`
}

// SetDetails parametrizes the three categorical trait kinds: str, intset,
// and floatset. Exactly one of StrSet/IntSet/FloatSet is populated,
// matching the TraitParameters.Type that selects it.
type SetDetails struct {
	StrSet   []string  `yaml:"str_set,omitempty"`
	IntSet   []int     `yaml:"int_set,omitempty"`
	FloatSet []float64 `yaml:"float_set,omitempty"`
	Probs    []float64 `yaml:"probs,omitempty"`
}

func (s *SetDetails) size() int {
	switch {
	case s.StrSet != nil:
		return len(s.StrSet)
	case s.IntSet != nil:
		return len(s.IntSet)
	default:
		return len(s.FloatSet)
	}
}

// resizedProbs returns Probs resized to exactly n entries: padded with
// trailing zeros if shorter, truncated if longer.
func (s *SetDetails) resizedProbs(n int) []float64 {
	out := make([]float64, n)
	copy(out, s.Probs)
	return out
}

// ParamType names which arm of TraitParameters.Details governs a trait.
type ParamType string

const (
	TypeInt      ParamType = "int"
	TypeFloat    ParamType = "float"
	TypeStr      ParamType = "str"
	TypeIntSet   ParamType = "intset"
	TypeFloatSet ParamType = "floatset"
	TypeObject   ParamType = "object"
)

// Producer manufactures a fresh Extern value for object-typed traits.
type Producer func(r *rng.RNG) Extern

// TraitParameters is the per-trait-name configuration record: type, the
// type-specific details, mutation probability, and optional conditional
// activation.
type TraitParameters struct {
	Name                 string          `yaml:"name"`
	Type                 ParamType       `yaml:"type"`
	Numeric              *NumericDetails `yaml:"numeric,omitempty"`
	Set                  *SetDetails     `yaml:"set,omitempty"`
	Producer             Producer        `yaml:"-"`
	MutationProbability  float64         `yaml:"mutation_probability"`
	DepKey               string          `yaml:"dep_key,omitempty"`
	DepValues            []TraitValue    `yaml:"dep_values,omitempty"`
}

// Trait is a live instance of a trait value carried by a gene or genome.
type Trait struct {
	Value     TraitValue   `yaml:"value"`
	DepKey    string       `yaml:"dep_key,omitempty"`
	DepValues []TraitValue `yaml:"dep_values,omitempty"`
}

// Map is the trait-name-keyed collection carried by genes and genomes.
type Map map[string]*Trait

// ParamSet is the trait-name-keyed set of parameters a Population carries
// and threads through every Init/Mate/Mutate/Distance call.
type ParamSet map[string]*TraitParameters

// isActive reports whether the named trait should participate in mutation
// or distance computation given the current state of traits. A trait with
// no DepKey is always active. InitTraits deliberately does not consult this
// - every trait needs an initial value so that a later dependency flip has
// something to read.
func isActive(tp *TraitParameters, traits Map) bool {
	if tp.DepKey == "" {
		return true
	}
	dep, ok := traits[tp.DepKey]
	if !ok {
		return false
	}
	for _, want := range tp.DepValues {
		if dep.Value.Equal(want) {
			return true
		}
	}
	return false
}

// InitTraits draws an initial value for every trait named in params.
func InitTraits(params ParamSet, r *rng.RNG) (Map, error) {
	out := make(Map, len(params))
	for name, tp := range params {
		v, err := initOne(tp, r)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to init trait %q", name)
		}
		out[name] = &Trait{Value: v, DepKey: tp.DepKey, DepValues: tp.DepValues}
	}
	return out, nil
}

func initOne(tp *TraitParameters, r *rng.RNG) (TraitValue, error) {
	switch tp.Type {
	case TypeInt:
		v, err := r.RandInt(int(tp.Numeric.Min), int(tp.Numeric.Max))
		if err != nil {
			return TraitValue{}, err
		}
		return TraitValue{Kind: IntValue, Int: v}, nil
	case TypeFloat:
		v := tp.Numeric.Min + r.RandFloat()*(tp.Numeric.Max-tp.Numeric.Min)
		return TraitValue{Kind: FloatValue, Float: v}, nil
	case TypeStr:
		if tp.Set.size() == 0 {
			return TraitValue{}, errors.Errorf("trait %q: empty categorical set", tp.Name)
		}
		idx := r.Roulette(tp.Set.resizedProbs(tp.Set.size()))
		return TraitValue{Kind: StrValue, Str: tp.Set.StrSet[idx]}, nil
	case TypeIntSet:
		if tp.Set.size() == 0 {
			return TraitValue{}, errors.Errorf("trait %q: empty categorical set", tp.Name)
		}
		idx := r.Roulette(tp.Set.resizedProbs(tp.Set.size()))
		return TraitValue{Kind: IntSetValue, Int: tp.Set.IntSet[idx]}, nil
	case TypeFloatSet:
		if tp.Set.size() == 0 {
			return TraitValue{}, errors.Errorf("trait %q: empty categorical set", tp.Name)
		}
		idx := r.Roulette(tp.Set.resizedProbs(tp.Set.size()))
		return TraitValue{Kind: FloatSetValue, Float: tp.Set.FloatSet[idx]}, nil
	case TypeObject:
		if tp.Producer == nil {
			return TraitValue{}, errors.Errorf("trait %q: no producer configured", tp.Name)
		}
		return TraitValue{Kind: ExternValue, Extern: tp.Producer(r)}, nil
	default:
		return TraitValue{}, errors.Errorf("trait %q: unknown type %q", tp.Name, tp.Type)
	}
}

// MateTraits combines two parents' trait maps into a child map, used by
// Genome.Mate: with probability 1/2 it picks one parent's value outright,
// otherwise averages numerics / chooses either-or for categorical values /
// delegates to Extern.Mate for opaque objects. Every trait present in both
// parents must resolve to the same TraitParameters type; mismatches fail
// fast as a programmer fault.
func MateTraits(a, b Map, params ParamSet, r *rng.RNG) (Map, error) {
	out := make(Map, len(params))
	for name, tp := range params {
		ta, oka := a[name]
		tb, okb := b[name]
		switch {
		case oka && okb:
			v, err := mateOneRandom(ta.Value, tb.Value, tp, r)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to mate trait %q", name)
			}
			out[name] = &Trait{Value: v, DepKey: tp.DepKey, DepValues: tp.DepValues}
		case oka:
			out[name] = &Trait{Value: ta.Value, DepKey: tp.DepKey, DepValues: tp.DepValues}
		case okb:
			out[name] = &Trait{Value: tb.Value, DepKey: tp.DepKey, DepValues: tp.DepValues}
		}
	}
	return out, nil
}

func mateOneRandom(a, b TraitValue, tp *TraitParameters, r *rng.RNG) (TraitValue, error) {
	if a.Kind != b.Kind {
		return TraitValue{}, errors.Errorf("trait %q: type mismatch between parents", tp.Name)
	}
	if r.RandFloat() < 0.5 {
		if r.RandFloat() < 0.5 {
			return a, nil
		}
		return b, nil
	}
	switch a.Kind {
	case IntValue:
		return TraitValue{Kind: IntValue, Int: (a.Int + b.Int) / 2}, nil
	case FloatValue:
		return TraitValue{Kind: FloatValue, Float: (a.Float + b.Float) / 2.0}, nil
	case StrValue, IntSetValue, FloatSetValue:
		if r.RandFloat() < 0.5 {
			return a, nil
		}
		return b, nil
	case ExternValue:
		return TraitValue{Kind: ExternValue, Extern: a.Extern.Mate(b.Extern)}, nil
	default:
		return TraitValue{}, errors.Errorf("trait %q: unknown value kind", tp.Name)
	}
}

// MutateTraits gives each gated-active trait a chance to mutate, in place,
// per its MutationProbability. It returns true if any trait actually
// changed value.
func MutateTraits(traits Map, params ParamSet, r *rng.RNG) (bool, error) {
	mutated := false
	for name, tp := range params {
		t, ok := traits[name]
		if !ok || !isActive(tp, traits) {
			continue
		}
		did, err := mutateOne(t, tp, r)
		if err != nil {
			return mutated, errors.Wrapf(err, "failed to mutate trait %q", name)
		}
		mutated = mutated || did
	}
	return mutated, nil
}

func mutateOne(t *Trait, tp *TraitParameters, r *rng.RNG) (bool, error) {
	if r.RandFloat() >= tp.MutationProbability {
		return false, nil
	}
	old := t.Value
	switch tp.Type {
	case TypeInt:
		var v int
		if r.RandFloat() < tp.Numeric.MutReplaceProb {
			replaced, err := r.RandInt(int(tp.Numeric.Min), int(tp.Numeric.Max))
			if err != nil {
				return false, err
			}
			v = replaced
		} else {
			delta, err := r.RandInt(-int(tp.Numeric.MutPower), int(tp.Numeric.MutPower))
			if err != nil {
				return false, err
			}
			v = clampInt(old.Int+delta, int(tp.Numeric.Min), int(tp.Numeric.Max))
		}
		t.Value = TraitValue{Kind: IntValue, Int: v}
	case TypeFloat:
		var v float64
		if r.RandFloat() < tp.Numeric.MutReplaceProb {
			v = tp.Numeric.Min + r.RandFloat()*(tp.Numeric.Max-tp.Numeric.Min)
		} else {
			v = clampFloat(old.Float+r.RandFloatSigned()*tp.Numeric.MutPower, tp.Numeric.Min, tp.Numeric.Max)
		}
		t.Value = TraitValue{Kind: FloatValue, Float: v}
	case TypeStr:
		idx := r.Roulette(tp.Set.resizedProbs(tp.Set.size()))
		t.Value = TraitValue{Kind: StrValue, Str: tp.Set.StrSet[idx]}
	case TypeIntSet:
		idx := r.Roulette(tp.Set.resizedProbs(tp.Set.size()))
		t.Value = TraitValue{Kind: IntSetValue, Int: tp.Set.IntSet[idx]}
	case TypeFloatSet:
		idx := r.Roulette(tp.Set.resizedProbs(tp.Set.size()))
		t.Value = TraitValue{Kind: FloatSetValue, Float: tp.Set.FloatSet[idx]}
	case TypeObject:
		newVal, did := old.Extern.Mutate(r)
		if !did {
			return false, nil
		}
		t.Value = TraitValue{Kind: ExternValue, Extern: newVal}
	default:
		return false, errors.Errorf("trait %q: unknown type %q", tp.Name, tp.Type)
	}
	return !t.Value.Equal(old), nil
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func clampFloat(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Distance sums the per-trait distance contribution between two trait
// maps. A trait only contributes when gated-active on both sides.
func Distance(a, b Map, params ParamSet) float64 {
	total := 0.0
	for name, tp := range params {
		ta, oka := a[name]
		tb, okb := b[name]
		if !oka || !okb {
			continue
		}
		if !isActive(tp, a) || !isActive(tp, b) {
			continue
		}
		total += distanceOne(ta.Value, tb.Value)
	}
	return total
}

func distanceOne(a, b TraitValue) float64 {
	switch a.Kind {
	case IntValue, IntSetValue:
		return math.Abs(float64(a.Int - b.Int))
	case FloatValue, FloatSetValue:
		return math.Abs(a.Float - b.Float)
	case StrValue:
		if a.Str == b.Str {
			return 0
		}
		return 1
	case ExternValue:
		return a.Extern.DistanceTo(b.Extern)
	default:
		return 0
	}
}
