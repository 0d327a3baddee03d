// Package optimize implements a self-contained differential-evolution
// optimizer for bounded, non-convex, non-differentiable objectives.
//
// The variant is rand-to-best/1 with binomial crossover: each trial vector is
// built from a random population member pulled toward the best-known
// candidate plus a scaled difference of two further random members.
// Population replacement is deferred to generation boundaries so that
// objective evaluations can run in parallel without changing the result, and
// all randomness is drawn from a single seeded stream before any evaluation
// starts, making a run fully deterministic for fixed inputs.
package optimize
