package metrics

import (
	"sort"
	"sync"

	"github.com/citypulse/dashboard/internal/model"
)

// DefaultSeriesCap is how many readings are retained per metric type
const DefaultSeriesCap = 24

// Trend describes the direction a metric is moving in
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

// Summary is the derived view of one metric series
type Summary struct {
	Current float64               `json:"current"`
	Average float64               `json:"average"`
	Min     float64               `json:"min"`
	Max     float64               `json:"max"`
	Count   int                   `json:"count"`
	Trend   Trend                 `json:"trend"`
	Window  []model.SensorReading `json:"window"`
}

// Engine maintains a bounded reading series per metric type and
// derives summaries from it on demand. Summaries are recomputed from
// the retained readings every time; no aggregate state is cached.
type Engine struct {
	series map[string][]model.SensorReading
	mu     sync.RWMutex
	cap    int
}

// NewEngine creates a new aggregation engine. cap bounds the readings
// retained per metric type; values below 1 fall back to DefaultSeriesCap.
func NewEngine(cap int) *Engine {
	if cap < 1 {
		cap = DefaultSeriesCap
	}
	return &Engine{
		series: make(map[string][]model.SensorReading),
		cap:    cap,
	}
}

// Ingest appends a reading to its metric series, evicting the oldest
// reading once the series is full
func (e *Engine) Ingest(r model.SensorReading) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := append(e.series[r.MetricType], r)
	if len(s) > e.cap {
		s = s[len(s)-e.cap:]
	}
	e.series[r.MetricType] = s
}

// Series returns a copy of the retained readings for a metric type,
// oldest first
func (e *Engine) Series(metricType string) []model.SensorReading {
	e.mu.RLock()
	defer e.mu.RUnlock()

	s := e.series[metricType]
	out := make([]model.SensorReading, len(s))
	copy(out, s)
	return out
}

// Types returns the metric types seen so far, sorted
func (e *Engine) Types() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	types := make([]string, 0, len(e.series))
	for t := range e.series {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Summarize derives a summary for every metric type with at least one
// retained reading
func (e *Engine) Summarize() map[string]Summary {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make(map[string]Summary, len(e.series))
	for t, s := range e.series {
		out[t] = summarize(s)
	}
	return out
}

// SummarizeType derives the summary for a single metric type
func (e *Engine) SummarizeType(metricType string) (Summary, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	s, ok := e.series[metricType]
	if !ok {
		return Summary{}, false
	}
	return summarize(s), true
}

func summarize(s []model.SensorReading) Summary {
	if len(s) == 0 {
		return Summary{Trend: TrendStable, Window: []model.SensorReading{}}
	}

	values := make([]float64, len(s))
	min, max, sum := s[0].Value, s[0].Value, 0.0
	for i, r := range s {
		values[i] = r.Value
		sum += r.Value
		if r.Value < min {
			min = r.Value
		}
		if r.Value > max {
			max = r.Value
		}
	}

	window := make([]model.SensorReading, len(s))
	copy(window, s)

	return Summary{
		Current: s[len(s)-1].Value,
		Average: sum / float64(len(s)),
		Min:     min,
		Max:     max,
		Count:   len(s),
		Trend:   computeTrend(values),
		Window:  window,
	}
}

// computeTrend compares the mean of the up-to-5 most recent readings
// against the mean of the 5 readings before them. With fewer than 10
// readings there is no full previous window and the comparison falls
// back to recent-vs-recent, so short series always read as stable.
// A relative change under 5% reads as stable too.
func computeTrend(values []float64) Trend {
	n := len(values)
	if n < 2 {
		return TrendStable
	}

	recentLen := 5
	if n < recentLen {
		recentLen = n
	}
	recent := mean(values[n-recentLen:])

	previous := recent
	if n >= 10 {
		previous = mean(values[n-10 : n-5])
	}

	var changePct float64
	if previous != 0 {
		changePct = (recent - previous) / previous * 100
	}

	switch {
	case changePct >= 5:
		return TrendIncreasing
	case changePct <= -5:
		return TrendDecreasing
	default:
		return TrendStable
	}
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
