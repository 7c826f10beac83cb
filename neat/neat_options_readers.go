package neat

import (
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"github.com/corvid-labs/neatcore/neat/math"
)

// LoadYAMLOptions loads NEAT options encoded as a YAML file.
func LoadYAMLOptions(r io.Reader) (*Options, error) {
	content, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var opts Options
	if err = yaml.Unmarshal(content, &opts); err != nil {
		return nil, errors.Wrap(err, "failed to decode NEAT options from YAML")
	}

	if err = InitLogger(opts.LogLevel); err != nil {
		return nil, errors.Wrap(err, "failed to initialize logger")
	}
	if err = opts.initNodeActivators(); err != nil {
		return nil, errors.Wrap(err, "failed to read node activators")
	}
	if err = opts.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid NEAT options")
	}
	return &opts, nil
}

// LoadNeatOptions loads NEAT options configuration from the legacy plain
// text format (.neat): one "name value" pair per line.
func LoadNeatOptions(r io.Reader) (*Options, error) {
	c := &Options{}
	var name string
	var param string
	for {
		_, err := fmt.Fscanf(r, "%s %v\n", &name, &param)
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
		switch name {
		case "survival_rate":
			c.SurvivalRate = cast.ToFloat64(param)
		case "crossover_rate":
			c.CrossoverRate = cast.ToFloat64(param)
		case "interspecies_crossover_rate":
			c.InterspeciesCrossoverRate = cast.ToFloat64(param)
		case "multipoint_crossover_rate":
			c.MultipointCrossoverRate = cast.ToFloat64(param)
		case "overall_mutation_rate":
			c.OverallMutationRate = cast.ToFloat64(param)
		case "roulette_wheel_selection":
			c.RouletteWheelSelection = cast.ToBool(param)
		case "allow_clones":
			c.AllowClones = cast.ToBool(param)
		case "archive_enforcement":
			c.ArchiveEnforcement = cast.ToBool(param)
		case "elite_fraction":
			c.EliteFraction = cast.ToFloat64(param)
		case "young_age_treshold":
			c.YoungAgeTreshold = cast.ToInt(param)
		case "young_age_fitness_boost":
			c.YoungAgeFitnessBoost = cast.ToFloat64(param)
		case "old_age_treshold":
			c.OldAgeTreshold = cast.ToInt(param)
		case "old_age_penalty":
			c.OldAgePenalty = cast.ToFloat64(param)
		case "species_max_stagnation":
			c.SpeciesMaxStagnation = cast.ToInt(param)
		case "mutate_add_neuron_prob":
			c.MutateAddNeuronProb = cast.ToFloat64(param)
		case "mutate_add_link_prob":
			c.MutateAddLinkProb = cast.ToFloat64(param)
		case "mutate_rem_simple_neuron_prob":
			c.MutateRemSimpleNeuronProb = cast.ToFloat64(param)
		case "mutate_rem_link_prob":
			c.MutateRemLinkProb = cast.ToFloat64(param)
		case "mutate_neuron_activation_type_prob":
			c.MutateNeuronActivationTypeProb = cast.ToFloat64(param)
		case "mutate_weights_prob":
			c.MutateWeightsProb = cast.ToFloat64(param)
		case "mutate_activation_a_prob":
			c.MutateActivationAProb = cast.ToFloat64(param)
		case "mutate_activation_b_prob":
			c.MutateActivationBProb = cast.ToFloat64(param)
		case "mutate_neuron_time_constants_prob":
			c.MutateNeuronTimeConstantsProb = cast.ToFloat64(param)
		case "mutate_neuron_biases_prob":
			c.MutateNeuronBiasesProb = cast.ToFloat64(param)
		case "mutate_neuron_traits_prob":
			c.MutateNeuronTraitsProb = cast.ToFloat64(param)
		case "mutate_link_traits_prob":
			c.MutateLinkTraitsProb = cast.ToFloat64(param)
		case "mutate_genome_traits_prob":
			c.MutateGenomeTraitsProb = cast.ToFloat64(param)
		case "weight_mut_power":
			c.WeightMutPower = cast.ToFloat64(param)
		case "newlink_tries":
			c.NewLinkTries = cast.ToInt(param)
		case "recur_only_prob":
			c.RecurOnlyProb = cast.ToFloat64(param)
		case "disjoint_coeff":
			c.DisjointCoeff = cast.ToFloat64(param)
		case "excess_coeff":
			c.ExcessCoeff = cast.ToFloat64(param)
		case "mutdiff_coeff":
			c.MutdiffCoeff = cast.ToFloat64(param)
		case "compat_threshold":
			c.CompatThreshold = cast.ToFloat64(param)
		case "genome_compat_method":
			c.GenCompatMethod = GenomeCompatibilityMethod(param)
		case "pop_size":
			c.PopSize = cast.ToInt(param)
		case "dropoff_age":
			c.DropOffAge = cast.ToInt(param)
		case "age_significance":
			c.AgeSignificance = cast.ToFloat64(param)
		case "survival_thresh":
			c.SurvivalThresh = cast.ToFloat64(param)
		case "print_every":
			c.PrintEvery = cast.ToInt(param)
		case "num_runs":
			c.NumRuns = cast.ToInt(param)
		case "num_generations":
			c.NumGenerations = cast.ToInt(param)
		case "epoch_executor":
			c.EpochExecutorType = EpochExecutorType(param)
		case "log_level":
			c.LogLevel = param
		default:
			return nil, errors.Errorf("unknown configuration parameter found: %s = %s", name, param)
		}
	}
	if err := InitLogger(c.LogLevel); err != nil {
		return nil, errors.Wrap(err, "failed to initialize logger")
	}
	if err := c.initNodeActivators(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// ReadNeatOptionsFromFile reads NEAT options from configFilePath, resolving
// the encoding from the file extension.
func ReadNeatOptionsFromFile(configFilePath string) (*Options, error) {
	configFile, err := os.Open(configFilePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open config file")
	}
	fileName := configFile.Name()
	if strings.HasSuffix(fileName, "yml") || strings.HasSuffix(fileName, "yaml") {
		return LoadYAMLOptions(configFile)
	}
	return LoadNeatOptions(configFile)
}

// initNodeActivators parses the "ActivatorName prob" lines captured in
// NodeActivatorsWithProbs, defaulting to a single SignedSigmoid activator
// when none were configured.
func (c *Options) initNodeActivators() (err error) {
	if len(c.NodeActivatorsWithProbs) == 0 {
		c.NodeActivators = []math.ActivationFunction{math.SignedSigmoid}
		c.NodeActivatorsProb = []float64{1.0}
		return nil
	}
	lines := c.NodeActivatorsWithProbs
	c.NodeActivators = make([]math.ActivationFunction, len(lines))
	c.NodeActivatorsProb = make([]float64, len(lines))
	for i, line := range lines {
		fields := strings.Fields(line)
		if c.NodeActivators[i], err = math.ActivationTypeFromName(fields[0]); err != nil {
			return err
		}
		if c.NodeActivatorsProb[i], err = strconv.ParseFloat(fields[1], 64); err != nil {
			return err
		}
	}
	return nil
}
