package optimize

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

// Bound is an inclusive interval for one parameter dimension.
type Bound struct {
	Min float64
	Max float64
}

// Problem describes the function to minimize and the box it is searched in.
// The objective must be safe for concurrent calls: population members are
// evaluated in parallel.
type Problem struct {
	Objective func(x []float64) float64
	Bounds    []Bound
}

// Options tune the optimizer. Zero values select the defaults documented on
// each field.
type Options struct {
	// PopulationFactor scales the population: size = factor * dimensions.
	// Default 15.
	PopulationFactor int
	// MaxGenerations caps the number of generations. Reaching the cap is a
	// normal termination mode, not an error. Default 100.
	MaxGenerations int
	// CrossoverProb is the binomial crossover probability. Default 0.7.
	CrossoverProb float64
	// Tol stops the run once std(objectives) <= Tol*|mean(objectives)|.
	// Default 0.01.
	Tol float64
	// Seed drives every random decision of the run.
	Seed uint64
	// Initial optionally replaces the first population member, letting a
	// caller seed the search with its current best guess.
	Initial []float64
	// Workers bounds concurrent objective evaluations. Default NumCPU.
	Workers int
}

// Result is the outcome of a completed run.
type Result struct {
	// X is the best parameter vector found, always inside the bounds.
	X []float64
	// F is the objective value at X.
	F float64
	// Generations is the number of evolution steps performed.
	Generations int
	// Evaluations counts objective calls.
	Evaluations int
	// Converged reports whether the tolerance test was met before the
	// generation cap.
	Converged bool
}

const (
	defaultPopulationFactor = 15
	defaultMaxGenerations   = 100
	defaultCrossoverProb    = 0.7
	defaultTol              = 0.01
)

// mutation scale is dithered per generation in [ditherLo, ditherHi).
const (
	ditherLo = 0.5
	ditherHi = 1.0
)

// DifferentialEvolution minimizes p.Objective inside p.Bounds.
func DifferentialEvolution(p Problem, o Options) (Result, error) {
	if p.Objective == nil {
		return Result{}, errors.New("optimize: nil objective")
	}
	dims := len(p.Bounds)
	if dims == 0 {
		return Result{}, errors.New("optimize: empty bounds")
	}
	for i, b := range p.Bounds {
		if b.Max < b.Min || math.IsNaN(b.Min) || math.IsNaN(b.Max) {
			return Result{}, fmt.Errorf("optimize: invalid bound %d: [%v, %v]", i, b.Min, b.Max)
		}
	}
	if o.Initial != nil && len(o.Initial) != dims {
		return Result{}, fmt.Errorf("optimize: initial guess has %d dimensions, bounds have %d", len(o.Initial), dims)
	}

	factor := o.PopulationFactor
	if factor <= 0 {
		factor = defaultPopulationFactor
	}
	maxGen := o.MaxGenerations
	if maxGen <= 0 {
		maxGen = defaultMaxGenerations
	}
	cr := o.CrossoverProb
	if cr <= 0 {
		cr = defaultCrossoverProb
	}
	tol := o.Tol
	if tol <= 0 {
		tol = defaultTol
	}
	workers := o.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	size := factor * dims
	if size < 5 {
		size = 5
	}
	rng := rand.New(rand.NewPCG(o.Seed, 0x9e3779b97f4a7c15))

	pop := haltonPopulation(size, p.Bounds)
	if o.Initial != nil {
		pop[0] = clamp(append([]float64(nil), o.Initial...), p.Bounds)
	}

	res := Result{}
	energies := make([]float64, size)
	evalAll(p.Objective, pop, energies, workers)
	res.Evaluations += size

	best := argmin(energies)
	trials := make([][]float64, size)
	trialEnergies := make([]float64, size)

	for gen := 1; gen <= maxGen; gen++ {
		scale := ditherLo + rng.Float64()*(ditherHi-ditherLo)

		// All random draws happen here, before any evaluation, so the
		// stream consumption order is independent of worker scheduling.
		for i := range pop {
			r0, r1, r2 := pick3(rng, size, i)
			mutant := make([]float64, dims)
			for j := 0; j < dims; j++ {
				mutant[j] = pop[r0][j] +
					scale*(pop[best][j]-pop[r0][j]) +
					scale*(pop[r1][j]-pop[r2][j])
			}
			clamp(mutant, p.Bounds)

			trial := append([]float64(nil), pop[i]...)
			fill := rng.IntN(dims)
			for j := 0; j < dims; j++ {
				if j == fill || rng.Float64() < cr {
					trial[j] = mutant[j]
				}
			}
			trials[i] = trial
		}

		evalAll(p.Objective, trials, trialEnergies, workers)
		res.Evaluations += size

		// Deferred update: the whole generation is evaluated against the
		// old population before any replacement takes effect.
		for i := range pop {
			if trialEnergies[i] < energies[i] {
				pop[i] = trials[i]
				energies[i] = trialEnergies[i]
			}
		}
		best = argmin(energies)
		res.Generations = gen

		mean, std := stat.MeanStdDev(energies, nil)
		if std <= tol*math.Abs(mean) {
			res.Converged = true
			break
		}
	}

	res.X = append([]float64(nil), pop[best]...)
	res.F = energies[best]
	return res, nil
}

// evalAll fills energies[i] = obj(points[i]) using up to workers goroutines.
func evalAll(obj func([]float64) float64, points [][]float64, energies []float64, workers int) {
	if workers == 1 {
		for i, x := range points {
			energies[i] = obj(x)
		}
		return
	}
	var g errgroup.Group
	g.SetLimit(workers)
	for i := range points {
		g.Go(func() error {
			energies[i] = obj(points[i])
			return nil
		})
	}
	// The workers never return errors; Wait only joins them.
	_ = g.Wait()
}

// pick3 returns three distinct population indices, all different from skip.
func pick3(rng *rand.Rand, n, skip int) (int, int, int) {
	idx := [3]int{-1, -1, -1}
	for k := 0; k < 3; k++ {
		for {
			c := rng.IntN(n)
			if c == skip || c == idx[0] || c == idx[1] {
				continue
			}
			idx[k] = c
			break
		}
	}
	return idx[0], idx[1], idx[2]
}

func argmin(xs []float64) int {
	best := 0
	for i, x := range xs {
		if x < xs[best] {
			best = i
		}
	}
	return best
}

func clamp(x []float64, bounds []Bound) []float64 {
	for j, b := range bounds {
		if x[j] < b.Min {
			x[j] = b.Min
		}
		if x[j] > b.Max {
			x[j] = b.Max
		}
	}
	return x
}
