package causal

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// stream derives the deterministic random stream for one worker. The worker
// id is the sole source of decorrelation between replicas sharing a
// simulation seed.
func stream(simSeed uint64, workerID int) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(workerID), simSeed))
}

// drawAdmissions samples the per-admission quantities for count admissions
// from rng: first the whole batch of delays to admission, then the whole
// batch of stay lengths. The fixed batch order makes stream consumption a
// reproducible function of (params, count, rng state), which the engine's
// determinism contract relies on.
func drawAdmissions(p Params, count int, rng *rand.Rand) (delays, stays []int) {
	delays = make([]int, count)
	if p.DelayLambda > 0 {
		pois := distuv.Poisson{Lambda: p.DelayLambda, Src: rng}
		for i := range delays {
			delays[i] = int(pois.Rand())
		}
	}
	// DelayLambda == 0 is the degenerate distribution at zero; the delay
	// batch then consumes nothing from the stream.

	stays = make([]int, count)
	// Inverse-CDF sampling of a normal truncated to [0, +inf): map a
	// uniform draw into the upper tail of the CDF and invert.
	lo := distuv.UnitNormal.CDF((0 - p.StayLoc) / p.StayScale)
	for i := range stays {
		u := lo + rng.Float64()*(1-lo)
		if u >= 1 {
			u = math.Nextafter(1, 0)
		}
		stay := math.RoundToEven(p.StayLoc + p.StayScale*distuv.UnitNormal.Quantile(u))
		if stay < 0 {
			stay = 0
		}
		stays[i] = int(stay)
	}
	return delays, stays
}
