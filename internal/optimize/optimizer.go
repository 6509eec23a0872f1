// Package optimize searches the space of speed vectors with a genetic
// algorithm. The optimizer always maximizes the objective it is handed;
// sign conventions live in the fitness adapter.
package optimize

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/solarracing/strategy-core/pkg/logger"
	"github.com/solarracing/strategy-core/pkg/utils"
)

// SelectionScheme names a parent-selection strategy.
type SelectionScheme string

const (
	// SelectionTournament is steady-state tournament selection. Fitness ties
	// go to the individual earlier in population order.
	SelectionTournament SelectionScheme = "tournament"
	// SelectionRoulette is fitness-proportional selection.
	SelectionRoulette SelectionScheme = "roulette"
)

// CrossoverScheme names a recombination strategy.
type CrossoverScheme string

const (
	CrossoverSinglePoint CrossoverScheme = "single_point"
	CrossoverTwoPoint    CrossoverScheme = "two_point"
	CrossoverUniform     CrossoverScheme = "uniform"
)

// MutationMode names how a selected gene is changed.
type MutationMode string

const (
	// MutationRandom resamples the gene uniformly within its bounds.
	MutationRandom MutationMode = "random"
	// MutationPerturb shifts the gene by up to MutationMaxDelta either way.
	MutationPerturb MutationMode = "perturb"
)

// FailurePolicy decides what an objective error does to the optimization.
type FailurePolicy string

const (
	// FailureAbort aborts the run, aggregating every error of the generation.
	FailureAbort FailurePolicy = "fail"
	// FailurePenalize assigns the failed individual -Inf fitness and goes on.
	FailurePenalize FailurePolicy = "penalize"
)

// Objective is the function the optimizer maximizes.
type Objective func(vector []float64) (float64, error)

// Config holds the GA hyperparameters.
type Config struct {
	// PopulationSize is the number of individuals per generation.
	PopulationSize int `yaml:"population_size"`
	// Parents is the number of parents selected per generation.
	Parents int `yaml:"parents"`
	// Selection picks the parent-selection scheme.
	Selection SelectionScheme `yaml:"selection"`
	// TournamentK is the tournament size for tournament selection.
	TournamentK int `yaml:"tournament_k"`
	// Crossover picks the recombination scheme.
	Crossover CrossoverScheme `yaml:"crossover"`
	// MutationMode picks how mutated genes change.
	MutationMode MutationMode `yaml:"mutation_mode"`
	// MutationPercent is the fraction of genes mutated per offspring, in [0, 1].
	MutationPercent float64 `yaml:"mutation_percent"`
	// MutationMaxDelta bounds a perturb-mode mutation step.
	MutationMaxDelta float64 `yaml:"mutation_max_delta"`
	// Elitism is the number of top individuals carried over unchanged.
	Elitism int `yaml:"elitism"`
	// Generations is the hard generation limit.
	Generations int `yaml:"generations"`
	// Saturate stops the run after this many generations without improvement
	// of the best fitness; zero disables stagnation stopping.
	Saturate int `yaml:"saturate"`
	// Seed seeds the optimizer's RNG; zero picks a time-based seed.
	Seed int64 `yaml:"seed"`
	// Workers is the number of concurrent fitness evaluations.
	Workers int `yaml:"workers"`
	// FailurePolicy decides what an objective error does to the run.
	FailurePolicy FailurePolicy `yaml:"failure_policy"`
	// InitSigma scales the gaussian noise of the initial population relative
	// to each gene's range.
	InitSigma float64 `yaml:"init_sigma"`
}

// DefaultConfig returns the hyperparameters used for schedule optimization
// runs when nothing else is configured.
func DefaultConfig() Config {
	return Config{
		PopulationSize:   20,
		Parents:          8,
		Selection:        SelectionTournament,
		TournamentK:      3,
		Crossover:        CrossoverSinglePoint,
		MutationMode:     MutationRandom,
		MutationPercent:  0.15,
		MutationMaxDelta: 5,
		Elitism:          2,
		Generations:      50,
		Saturate:         15,
		Workers:          4,
		FailurePolicy:    FailurePenalize,
		InitSigma:        0.1,
	}
}

func (c *Config) validate() error {
	if c.PopulationSize < 2 {
		return fmt.Errorf("population size must be at least 2, got %d", c.PopulationSize)
	}
	if c.Parents < 2 || c.Parents > c.PopulationSize {
		return fmt.Errorf("parents must be in [2, population size], got %d", c.Parents)
	}
	switch c.Selection {
	case SelectionTournament:
		if c.TournamentK < 1 || c.TournamentK > c.PopulationSize {
			return fmt.Errorf("tournament size must be in [1, population size], got %d", c.TournamentK)
		}
	case SelectionRoulette:
	default:
		return fmt.Errorf("unsupported selection scheme %q", c.Selection)
	}
	switch c.Crossover {
	case CrossoverSinglePoint, CrossoverTwoPoint, CrossoverUniform:
	default:
		return fmt.Errorf("unsupported crossover scheme %q", c.Crossover)
	}
	switch c.MutationMode {
	case MutationRandom:
	case MutationPerturb:
		if c.MutationMaxDelta <= 0 {
			return fmt.Errorf("perturb mutation needs a positive max delta, got %f", c.MutationMaxDelta)
		}
	default:
		return fmt.Errorf("unsupported mutation mode %q", c.MutationMode)
	}
	if c.MutationPercent < 0 || c.MutationPercent > 1 {
		return fmt.Errorf("mutation percent %f outside [0, 1]", c.MutationPercent)
	}
	if c.Elitism < 0 || c.Elitism >= c.PopulationSize {
		return fmt.Errorf("elitism must be in [0, population size), got %d", c.Elitism)
	}
	if c.Generations < 1 {
		return fmt.Errorf("generation limit must be at least 1, got %d", c.Generations)
	}
	if c.Saturate < 0 {
		return fmt.Errorf("saturation window cannot be negative, got %d", c.Saturate)
	}
	switch c.FailurePolicy {
	case FailureAbort, FailurePenalize:
	default:
		return fmt.Errorf("unsupported failure policy %q", c.FailurePolicy)
	}
	if c.InitSigma < 0 {
		return fmt.Errorf("init sigma cannot be negative, got %f", c.InitSigma)
	}
	return nil
}

// Recorder receives optimizer telemetry.
type Recorder interface {
	ObserveGeneration(generation int, bestFitness float64)
	AddEvaluations(n int)
}

type nopRecorder struct{}

func (nopRecorder) ObserveGeneration(int, float64) {}
func (nopRecorder) AddEvaluations(int)             {}

// Best is the best solution found so far: a copy of the vector, its fitness
// and the population index the individual held when it was discovered.
type Best struct {
	Vector  []float64
	Fitness float64
	Index   int
}

// GenerationStats is one entry of the evolution history.
type GenerationStats struct {
	Generation  int
	BestFitness float64
	MeanFitness float64
	// Diversity is the mean per-gene standard deviation across the
	// population.
	Diversity float64
}

type individual struct {
	genes     []float64
	fitness   float64
	evaluated bool
}

// Optimizer runs the GA. It is not safe for concurrent use; one goroutine
// drives Evolve while fitness evaluations fan out internally.
type Optimizer struct {
	cfg       Config
	bounds    Bounds
	objective Objective
	rng       *utils.RandSource
	recorder  Recorder
	validator func([]float64) bool

	population []individual
	generation int
	best       Best
	stale      int
	history    []GenerationStats
}

// Option customizes an Optimizer.
type Option func(*Optimizer)

// WithRecorder attaches a telemetry recorder.
func WithRecorder(r Recorder) Option {
	return func(o *Optimizer) { o.recorder = r }
}

// WithSeedValidator rejects initial individuals the validator refuses;
// rejected individuals are resampled a bounded number of times.
func WithSeedValidator(valid func([]float64) bool) Option {
	return func(o *Optimizer) { o.validator = valid }
}

// New validates the configuration and builds an Optimizer for the given
// bounds and objective.
func New(cfg Config, bounds Bounds, objective Objective, opts ...Option) (*Optimizer, error) {
	if objective == nil {
		return nil, fmt.Errorf("objective function is required")
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("optimizer config: %w", err)
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	o := &Optimizer{
		cfg:       cfg,
		bounds:    bounds,
		objective: objective,
		rng:       utils.NewRandSource(cfg.Seed),
		recorder:  nopRecorder{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Evolve runs the GA until the generation limit, the stagnation criterion or
// context cancellation. On cancellation it stops after the current
// generation's evaluation and returns the best solution found so far along
// with ctx.Err(); the Best value is valid either way.
func (o *Optimizer) Evolve(ctx context.Context) (Best, error) {
	if o.population == nil {
		o.seedPopulation()
	}

	for {
		// A generation's evaluation always runs to completion; cancellation
		// is honoured between generations so partial work is never lost.
		if err := o.evaluate(); err != nil {
			return o.best, err
		}
		o.updateBest()
		o.recordGeneration()

		if err := ctx.Err(); err != nil {
			logger.Info("optimization cancelled",
				"generation", o.generation,
				"best_fitness", o.best.Fitness)
			return o.best, err
		}
		if o.generation+1 >= o.cfg.Generations {
			break
		}
		if o.cfg.Saturate > 0 && o.stale >= o.cfg.Saturate {
			logger.Info("optimization saturated",
				"generation", o.generation,
				"stale_generations", o.stale)
			break
		}

		o.population = o.nextGeneration()
		o.generation++
	}
	return o.best, nil
}

// BestSolution returns a copy of the best vector, its fitness and its
// population index at discovery. Valid after at least one evaluated
// generation.
func (o *Optimizer) BestSolution() ([]float64, float64, int) {
	vector := make([]float64, len(o.best.Vector))
	copy(vector, o.best.Vector)
	return vector, o.best.Fitness, o.best.Index
}

// Generation returns the current generation counter.
func (o *Optimizer) Generation() int {
	return o.generation
}

// History returns the per-generation evolution statistics recorded so far.
func (o *Optimizer) History() []GenerationStats {
	out := make([]GenerationStats, len(o.history))
	copy(out, o.history)
	return out
}

// seedPopulation draws the initial population: gaussian noise around each
// gene's range midpoint, smoothed with a short moving average so neighbour
// intervals start with compatible speeds.
func (o *Optimizer) seedPopulation() {
	const maxAttempts = 32

	o.population = make([]individual, o.cfg.PopulationSize)
	for i := range o.population {
		var genes []float64
		for attempt := 0; ; attempt++ {
			genes = o.sampleVector()
			if o.validator == nil || o.validator(genes) || attempt >= maxAttempts {
				break
			}
		}
		o.population[i] = individual{genes: genes}
	}
}

func (o *Optimizer) sampleVector() []float64 {
	n := o.bounds.Genes()
	genes := make([]float64, n)
	for i := range genes {
		span := o.bounds.High(i) - o.bounds.Low(i)
		center := o.bounds.Low(i) + span/2
		genes[i] = o.bounds.Clamp(i, o.rng.NormFloat64(center, o.cfg.InitSigma*span))
	}
	smooth(genes)
	for i := range genes {
		genes[i] = o.bounds.Clamp(i, genes[i])
	}
	return genes
}

// smooth applies one 3-point moving-average pass in place.
func smooth(genes []float64) {
	if len(genes) < 3 {
		return
	}
	prev := genes[0]
	for i := 1; i < len(genes)-1; i++ {
		cur := genes[i]
		genes[i] = (prev + cur + genes[i+1]) / 3
		prev = cur
	}
}

// evaluate computes fitness for every unevaluated individual using a worker
// pool. Workers write only their own individual's slot, so no locking is
// needed beyond the job feed.
func (o *Optimizer) evaluate() error {
	jobs := make(chan int)
	errs := make([]error, len(o.population))
	pending := 0
	for i := range o.population {
		if !o.population[i].evaluated {
			pending++
		}
	}

	var wg sync.WaitGroup
	for w := 0; w < o.cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				fitness, err := o.objective(o.population[i].genes)
				if err != nil {
					errs[i] = fmt.Errorf("individual %d: %w", i, err)
					fitness = math.Inf(-1)
				}
				o.population[i].fitness = fitness
				o.population[i].evaluated = true
			}
		}()
	}
	for i := range o.population {
		if !o.population[i].evaluated {
			jobs <- i
		}
	}
	close(jobs)
	wg.Wait()

	o.recorder.AddEvaluations(pending)

	if o.cfg.FailurePolicy == FailureAbort {
		if err := errors.Join(errs...); err != nil {
			return fmt.Errorf("generation %d evaluation: %w", o.generation, err)
		}
	}
	return nil
}

func (o *Optimizer) updateBest() {
	improved := false
	for i := range o.population {
		if o.best.Vector == nil || o.population[i].fitness > o.best.Fitness {
			vector := make([]float64, len(o.population[i].genes))
			copy(vector, o.population[i].genes)
			o.best = Best{Vector: vector, Fitness: o.population[i].fitness, Index: i}
			improved = true
		}
	}
	if improved {
		o.stale = 0
	} else {
		o.stale++
	}
}

func (o *Optimizer) recordGeneration() {
	fitnesses := make([]float64, len(o.population))
	for i := range o.population {
		fitnesses[i] = o.population[i].fitness
	}
	o.history = append(o.history, GenerationStats{
		Generation:  o.generation,
		BestFitness: o.best.Fitness,
		MeanFitness: utils.Mean(fitnesses),
		Diversity:   o.diversity(),
	})
	o.recorder.ObserveGeneration(o.generation, o.best.Fitness)
	logger.Debug("generation evaluated",
		"generation", o.generation,
		"best_fitness", o.best.Fitness)
}

// diversity is the mean per-gene standard deviation across the population.
func (o *Optimizer) diversity() float64 {
	genes := o.bounds.Genes()
	if genes == 0 || len(o.population) == 0 {
		return 0
	}
	total := 0.0
	column := make([]float64, len(o.population))
	for g := 0; g < genes; g++ {
		for i := range o.population {
			column[i] = o.population[i].genes[g]
		}
		total += utils.StdDev(column)
	}
	return total / float64(genes)
}

// nextGeneration builds the successor population: elites carried unchanged,
// the rest offspring of selected parents, crossed over and mutated.
func (o *Optimizer) nextGeneration() []individual {
	next := make([]individual, 0, o.cfg.PopulationSize)

	for _, e := range o.elites() {
		genes := make([]float64, len(e.genes))
		copy(genes, e.genes)
		next = append(next, individual{genes: genes, fitness: e.fitness, evaluated: true})
	}

	parents := o.selectParents()
	for len(next) < o.cfg.PopulationSize {
		a := parents[o.rng.Intn(len(parents))]
		b := parents[o.rng.Intn(len(parents))]
		child := o.crossover(a.genes, b.genes)
		o.mutate(child)
		next = append(next, individual{genes: child})
	}
	return next
}

// elites returns the top-fitness individuals in population order among ties.
func (o *Optimizer) elites() []individual {
	if o.cfg.Elitism == 0 {
		return nil
	}
	indices := make([]int, len(o.population))
	for i := range indices {
		indices[i] = i
	}
	// insertion sort by fitness descending, stable so earlier individuals
	// win ties
	for i := 1; i < len(indices); i++ {
		for j := i; j > 0 && o.population[indices[j]].fitness > o.population[indices[j-1]].fitness; j-- {
			indices[j], indices[j-1] = indices[j-1], indices[j]
		}
	}
	elites := make([]individual, 0, o.cfg.Elitism)
	for _, idx := range indices[:o.cfg.Elitism] {
		elites = append(elites, o.population[idx])
	}
	return elites
}
