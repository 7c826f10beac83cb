// Package math defines small numeric enumerations shared across the NEAT
// data model. It does not implement the activation functions themselves -
// evaluating a phenotype is the host's responsibility.
package math

import "fmt"

// ActivationFunction identifies the non-linearity carried by a NeuronGene.
// Ordinal values are part of the public contract: hosts persisting genomes
// rely on them staying stable across releases.
type ActivationFunction byte

const (
	SignedSigmoid ActivationFunction = iota
	UnsignedSigmoid
	Tanh
	TanhCubic
	SignedStep
	UnsignedStep
	SignedGauss
	UnsignedGauss
	Abs
	SignedSine
	UnsignedSine
	Linear
	Relu
	Softplus
)

var activationNames = map[ActivationFunction]string{
	SignedSigmoid:   "SignedSigmoid",
	UnsignedSigmoid: "UnsignedSigmoid",
	Tanh:            "Tanh",
	TanhCubic:       "TanhCubic",
	SignedStep:      "SignedStep",
	UnsignedStep:    "UnsignedStep",
	SignedGauss:     "SignedGauss",
	UnsignedGauss:   "UnsignedGauss",
	Abs:             "Abs",
	SignedSine:      "SignedSine",
	UnsignedSine:    "UnsignedSine",
	Linear:          "Linear",
	Relu:            "Relu",
	Softplus:        "Softplus",
}

var activationByName = func() map[string]ActivationFunction {
	m := make(map[string]ActivationFunction, len(activationNames))
	for t, n := range activationNames {
		m[n] = t
	}
	return m
}()

// String returns the canonical name of the activation function.
func (a ActivationFunction) String() string {
	if n, ok := activationNames[a]; ok {
		return n
	}
	return fmt.Sprintf("ActivationFunction(%d)", byte(a))
}

// ActivationTypeFromName resolves a canonical name back into its enum value.
func ActivationTypeFromName(name string) (ActivationFunction, error) {
	if t, ok := activationByName[name]; ok {
		return t, nil
	}
	return 0, fmt.Errorf("unsupported activation function name: %s", name)
}

// AllActivations lists every defined activation function, ordered by ordinal.
func AllActivations() []ActivationFunction {
	return []ActivationFunction{
		SignedSigmoid, UnsignedSigmoid, Tanh, TanhCubic, SignedStep, UnsignedStep,
		SignedGauss, UnsignedGauss, Abs, SignedSine, UnsignedSine, Linear, Relu, Softplus,
	}
}
