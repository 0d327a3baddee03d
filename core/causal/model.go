package causal

import (
	"errors"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lkirchmair/bedcast/core/dataset"
	"github.com/lkirchmair/bedcast/core/logger"
	"github.com/lkirchmair/bedcast/core/metrics"
)

// Mode selects how Monte Carlo replicas are executed.
type Mode int

const (
	// Sequential runs replicas one after another on the calling goroutine.
	Sequential Mode = iota
	// Concurrent runs replicas on a worker pool.
	Concurrent
)

func (m Mode) String() string {
	switch m {
	case Sequential:
		return "sequential"
	case Concurrent:
		return "concurrent"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Config is the initial state of a Model.
type Config struct {
	Region     string
	BedType    dataset.BedType
	Categories []string
	From, To   time.Time
	// Buffer is the number of lookback days prepended to the case series to
	// seed admissions already in flight at window start. Buffer days take
	// part in the simulation but are stripped from its output.
	Buffer int
	Params Params
	// SimulationSeed drives replica streams, CalibrationSeed the optimizer.
	SimulationSeed  uint64
	CalibrationSeed uint64
}

// Model holds the live window state and parameters of the causal model.
// It is not safe for concurrent use.
type Model struct {
	params  Params
	simSeed uint64
	calSeed uint64

	region     string
	bedType    dataset.BedType
	categories []string
	from, to   time.Time
	buffer     int

	// cases covers [from-buffer, to]; occupancy covers [from, min(to, data max)].
	cases     []int
	occupancy []int

	caseData dataset.CaseProvider
	occData  dataset.OccupancyProvider

	log  logger.Logger
	sink metrics.Sink
}

// New builds a Model and loads the case and occupancy arrays for the
// configured window. Loading fails fast on unknown regions or bed types and
// on windows outside the available data range.
func New(cfg Config, cases dataset.CaseProvider, occ dataset.OccupancyProvider, log logger.Logger, sink metrics.Sink) (*Model, error) {
	if cases == nil || occ == nil {
		return nil, errors.New("causal: nil data provider")
	}
	if err := cfg.Params.Validate(); err != nil {
		return nil, err
	}
	if cfg.Buffer < 0 {
		return nil, fmt.Errorf("causal: negative buffer %d", cfg.Buffer)
	}
	if cfg.To.Before(cfg.From) {
		return nil, fmt.Errorf("causal: window end %s before start %s",
			cfg.To.Format(time.DateOnly), cfg.From.Format(time.DateOnly))
	}
	if log == nil {
		log = nopLogger{}
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	m := &Model{
		params:     cfg.Params,
		simSeed:    cfg.SimulationSeed,
		calSeed:    cfg.CalibrationSeed,
		region:     cfg.Region,
		bedType:    cfg.BedType,
		categories: cfg.Categories,
		from:       dataset.Day(cfg.From),
		to:         dataset.Day(cfg.To),
		buffer:     cfg.Buffer,
		caseData:   cases,
		occData:    occ,
		log:        log,
		sink:       sink,
	}
	if err := m.Update(Update{}); err != nil {
		return nil, err
	}
	return m, nil
}

// Update is a partial change of the live window state. Nil fields keep their
// prior values.
type Update struct {
	Region     *string
	BedType    *dataset.BedType
	Categories []string
	From       *time.Time
	To         *time.Time
	Buffer     *int
}

// Update applies u and recomputes the cached case and occupancy arrays for
// the resulting window. On error the prior state is left untouched.
func (m *Model) Update(u Update) error {
	region, bedType := m.region, m.bedType
	categories, buffer := m.categories, m.buffer
	from, to := m.from, m.to
	if u.Region != nil {
		region = *u.Region
	}
	if u.BedType != nil {
		bedType = *u.BedType
	}
	if u.Categories != nil {
		categories = u.Categories
	}
	if u.From != nil {
		from = dataset.Day(*u.From)
	}
	if u.To != nil {
		to = dataset.Day(*u.To)
	}
	if u.Buffer != nil {
		if *u.Buffer < 0 {
			return fmt.Errorf("causal: negative buffer %d", *u.Buffer)
		}
		buffer = *u.Buffer
	}
	if to.Before(from) {
		return fmt.Errorf("causal: window end %s before start %s",
			to.Format(time.DateOnly), from.Format(time.DateOnly))
	}

	cases, err := m.caseData.Cases(from, to, region, categories, buffer)
	if err != nil {
		return fmt.Errorf("load case series: %w", err)
	}
	// The occupancy window is clamped to the data horizon so that forecast
	// windows extending past the last report can still be simulated.
	occTo := to
	if max := dataset.Day(m.occData.MaxDate()); occTo.After(max) {
		occTo = max
	}
	occupancy, err := m.occData.Occupancy(from, occTo, region, bedType)
	if err != nil {
		return fmt.Errorf("load occupancy series: %w", err)
	}

	m.region, m.bedType = region, bedType
	m.categories, m.buffer = categories, buffer
	m.from, m.to = from, to
	m.cases, m.occupancy = cases, occupancy
	return nil
}

// Params returns the live parameter vector.
func (m *Model) Params() Params { return m.params }

// SetParams replaces the live parameter vector.
func (m *Model) SetParams(p Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	m.params = p
	return nil
}

// Window reports the live window state.
func (m *Model) Window() (region string, bedType dataset.BedType, from, to time.Time, buffer int) {
	return m.region, m.bedType, m.from, m.to, m.buffer
}

// ReferenceOccupancy returns a copy of the observed occupancy for the
// current window.
func (m *Model) ReferenceOccupancy() []int {
	return append([]int(nil), m.occupancy...)
}

// Simulate runs one replica of the model with the live parameters. The
// result is a pure function of (parameters, case series, worker id,
// simulation seed); repeated calls return identical series.
func (m *Model) Simulate(workerID int) []int {
	return m.simulate(m.params, workerID)
}

func (m *Model) simulate(p Params, workerID int) []int {
	cases := m.cases
	n := len(cases)

	admissions := make([]int, n)
	total := 0
	for t, c := range cases {
		a := int(math.Floor(float64(c) * p.HospitalizationP))
		if a < 0 {
			a = 0
		}
		admissions[t] = a
		total += a
	}

	delays, stays := drawAdmissions(p, total, stream(m.simSeed, workerID))

	// Each admission on day t occupies a bed over [t+delay, t+delay+stay+1).
	// The intervals are accumulated as a difference array and prefix-summed,
	// which keeps the cost linear in the admission count; the draw order
	// above is unchanged from the per-day formulation.
	diff := make([]int, n+1)
	pos := 0
	for t := 0; t < n; t++ {
		for i := 0; i < admissions[t]; i++ {
			begin := t + delays[pos+i]
			if begin >= n {
				continue
			}
			end := begin + stays[pos+i] + 1
			if end > n {
				end = n
			}
			diff[begin]++
			diff[end]--
		}
		pos += admissions[t]
	}

	out := make([]int, n-m.buffer)
	running := 0
	for t := 0; t < n; t++ {
		running += diff[t]
		if t >= m.buffer {
			out[t-m.buffer] = running
		}
	}
	return out
}

// MonteCarlo runs n independent replicas with worker ids 0..n-1 and returns
// their elementwise mean, rounded half-to-even. With n=1 the result equals
// Simulate(0) exactly.
func (m *Model) MonteCarlo(n int, mode Mode) ([]int, error) {
	start := time.Now()
	out, err := m.monteCarlo(m.params, n, mode)
	if err != nil {
		return nil, err
	}
	if err := m.sink.RecordSimulation(metrics.SimulationEvent{
		Replicas: n,
		Mode:     mode.String(),
		Days:     len(out),
		Duration: time.Since(start),
		Time:     time.Now(),
	}); err != nil {
		m.log.Warnf("record simulation event: %v", err)
	}
	return out, nil
}

func (m *Model) monteCarlo(p Params, n int, mode Mode) ([]int, error) {
	if n <= 0 {
		return nil, fmt.Errorf("causal: replica count must be positive, got %d", n)
	}
	replicas := make([][]int, n)
	switch mode {
	case Sequential:
		for i := 0; i < n; i++ {
			replicas[i] = m.simulate(p, i)
		}
	case Concurrent:
		var g errgroup.Group
		for i := 0; i < n; i++ {
			g.Go(func() error {
				replicas[i] = m.simulate(p, i)
				return nil
			})
		}
		_ = g.Wait()
	default:
		return nil, fmt.Errorf("causal: invalid execution mode %d", int(mode))
	}

	days := len(replicas[0])
	mean := make([]int, days)
	for t := 0; t < days; t++ {
		sum := 0.0
		for i := range replicas {
			sum += float64(replicas[i][t])
		}
		mean[t] = int(math.RoundToEven(sum / float64(n)))
	}
	return mean, nil
}

// Predict extends the window by days forecast days, runs a Monte Carlo
// simulation over the extended window, restores the original window and
// returns the trailing days entries. Case counts for the forecast horizon
// must already be present in the case data set.
func (m *Model) Predict(days, n int, mode Mode) ([]int, error) {
	if days <= 0 {
		return nil, fmt.Errorf("causal: forecast days must be positive, got %d", days)
	}
	start := time.Now()
	origTo := m.to
	extended := m.to.AddDate(0, 0, days)
	if err := m.Update(Update{To: &extended}); err != nil {
		return nil, fmt.Errorf("extend window: %w", err)
	}
	sim, simErr := m.monteCarlo(m.params, n, mode)
	restoreErr := m.Update(Update{To: &origTo})
	if simErr != nil {
		return nil, simErr
	}
	if restoreErr != nil {
		return nil, fmt.Errorf("restore window: %w", restoreErr)
	}
	if err := m.sink.RecordForecast(metrics.ForecastEvent{
		Days:     days,
		Replicas: n,
		Duration: time.Since(start),
		Time:     time.Now(),
	}); err != nil {
		m.log.Warnf("record forecast event: %v", err)
	}
	return sim[len(sim)-days:], nil
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}
