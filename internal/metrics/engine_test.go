package metrics

import (
	"testing"
	"time"

	"github.com/citypulse/dashboard/internal/model"
)

func reading(metricType string, value float64) model.SensorReading {
	return model.SensorReading{
		SensorID:   1,
		MetricType: metricType,
		Value:      value,
		Timestamp:  time.Now().UTC(),
	}
}

func ingestValues(e *Engine, metricType string, values ...float64) {
	for _, v := range values {
		e.Ingest(reading(metricType, v))
	}
}

func TestEngine_SummarizeBasics(t *testing.T) {
	e := NewEngine(24)
	ingestValues(e, "traffic_flow", 10, 20, 30)

	summary, ok := e.SummarizeType("traffic_flow")
	if !ok {
		t.Fatal("Expected a summary for traffic_flow")
	}
	if summary.Current != 30 {
		t.Errorf("Expected current 30, got %f", summary.Current)
	}
	if summary.Average != 20 {
		t.Errorf("Expected average 20, got %f", summary.Average)
	}
	if summary.Min != 10 {
		t.Errorf("Expected min 10, got %f", summary.Min)
	}
	if summary.Max != 30 {
		t.Errorf("Expected max 30, got %f", summary.Max)
	}
	if summary.Count != 3 {
		t.Errorf("Expected count 3, got %d", summary.Count)
	}
	if len(summary.Window) != 3 {
		t.Errorf("Expected window of 3 readings, got %d", len(summary.Window))
	}
}

func TestEngine_SeriesCapEvictsOldest(t *testing.T) {
	e := NewEngine(24)
	for i := 1; i <= 25; i++ {
		e.Ingest(reading("air_quality", float64(i)))
	}

	series := e.Series("air_quality")
	if len(series) != 24 {
		t.Fatalf("Expected 24 retained readings, got %d", len(series))
	}
	if series[0].Value != 2 {
		t.Errorf("Expected oldest retained value 2, got %f", series[0].Value)
	}
	if series[23].Value != 25 {
		t.Errorf("Expected newest value 25, got %f", series[23].Value)
	}
}

func TestEngine_SeparateSeriesPerMetricType(t *testing.T) {
	e := NewEngine(24)
	ingestValues(e, "traffic_flow", 1, 2)
	ingestValues(e, "air_quality", 100)

	if got := len(e.Series("traffic_flow")); got != 2 {
		t.Errorf("Expected 2 traffic_flow readings, got %d", got)
	}
	if got := len(e.Series("air_quality")); got != 1 {
		t.Errorf("Expected 1 air_quality reading, got %d", got)
	}

	types := e.Types()
	if len(types) != 2 || types[0] != "air_quality" || types[1] != "traffic_flow" {
		t.Errorf("Unexpected metric types: %v", types)
	}
}

func TestEngine_SummarizeEmpty(t *testing.T) {
	e := NewEngine(24)

	if got := e.Summarize(); len(got) != 0 {
		t.Errorf("Expected no summaries, got %d", len(got))
	}
	if _, ok := e.SummarizeType("nope"); ok {
		t.Error("Expected no summary for unknown metric type")
	}
}

func TestEngine_SeriesReturnsCopy(t *testing.T) {
	e := NewEngine(24)
	ingestValues(e, "noise_level", 55)

	series := e.Series("noise_level")
	series[0].Value = 999

	if got := e.Series("noise_level")[0].Value; got != 55 {
		t.Errorf("Internal series was mutated through the returned copy: %f", got)
	}
}

func TestComputeTrend_SingleReadingIsStable(t *testing.T) {
	e := NewEngine(24)
	ingestValues(e, "water_level", 3.2)

	summary, _ := e.SummarizeType("water_level")
	if summary.Trend != TrendStable {
		t.Errorf("Expected stable trend for a single reading, got %s", summary.Trend)
	}
}

func TestComputeTrend_ConstantSeriesIsStable(t *testing.T) {
	e := NewEngine(24)
	for i := 0; i < 24; i++ {
		e.Ingest(reading("energy_usage", 42))
	}

	summary, _ := e.SummarizeType("energy_usage")
	if summary.Trend != TrendStable {
		t.Errorf("Expected stable trend for a constant series, got %s", summary.Trend)
	}
}

func TestComputeTrend_RisingSeriesIsIncreasing(t *testing.T) {
	e := NewEngine(24)
	// Each step is well above 5% of the previous window's mean
	for i := 1; i <= 12; i++ {
		e.Ingest(reading("traffic_flow", float64(i*10)))
	}

	summary, _ := e.SummarizeType("traffic_flow")
	if summary.Trend != TrendIncreasing {
		t.Errorf("Expected increasing trend, got %s", summary.Trend)
	}
}

func TestComputeTrend_FallingSeriesIsDecreasing(t *testing.T) {
	e := NewEngine(24)
	for i := 12; i >= 1; i-- {
		e.Ingest(reading("air_quality", float64(i*10)))
	}

	summary, _ := e.SummarizeType("air_quality")
	if summary.Trend != TrendDecreasing {
		t.Errorf("Expected decreasing trend, got %s", summary.Trend)
	}
}

func TestComputeTrend_SmallDriftIsStable(t *testing.T) {
	e := NewEngine(24)
	// Drifts upward but the window means stay within 5% of each other
	values := []float64{100, 100.2, 100.4, 100.6, 100.8, 101, 101.2, 101.4, 101.6, 101.8}
	ingestValues(e, "humidity", values...)

	summary, _ := e.SummarizeType("humidity")
	if summary.Trend != TrendStable {
		t.Errorf("Expected stable trend for drift under 5%%, got %s", summary.Trend)
	}
}

func TestComputeTrend_ZeroPreviousWindowIsStable(t *testing.T) {
	e := NewEngine(24)
	// Previous window is all zeros; the change is treated as 0%
	ingestValues(e, "rainfall", 0, 0, 0, 0, 0, 50, 60, 70, 80, 90)

	summary, _ := e.SummarizeType("rainfall")
	if summary.Trend != TrendStable {
		t.Errorf("Expected stable trend when previous window is zero, got %s", summary.Trend)
	}
}

func TestComputeTrend_ShortSeriesIsStable(t *testing.T) {
	// Under 10 readings there is no previous window to compare
	// against, so even a steep jump reads as stable
	e := NewEngine(24)
	ingestValues(e, "noise_level", 10, 10, 100, 100, 100, 100, 100)

	summary, _ := e.SummarizeType("noise_level")
	if summary.Trend != TrendStable {
		t.Errorf("Expected stable trend for a short series, got %s", summary.Trend)
	}
}

func TestComputeTrend_EngagesAtTenReadings(t *testing.T) {
	values := []float64{10, 10, 10, 10, 10, 100, 100, 100, 100}
	if got := computeTrend(values); got != TrendStable {
		t.Errorf("Expected stable at 9 readings, got %s", got)
	}

	values = append(values, 100)
	if got := computeTrend(values); got != TrendIncreasing {
		t.Errorf("Expected increasing at 10 readings, got %s", got)
	}
}

func TestComputeTrend_ExactThreshold(t *testing.T) {
	// Previous mean 100, recent mean 105: exactly +5% reads as increasing
	values := []float64{100, 100, 100, 100, 100, 105, 105, 105, 105, 105}
	if got := computeTrend(values); got != TrendIncreasing {
		t.Errorf("Expected increasing at +5%% change, got %s", got)
	}

	// Just under the threshold stays stable
	values = []float64{100, 100, 100, 100, 100, 104.9, 104.9, 104.9, 104.9, 104.9}
	if got := computeTrend(values); got != TrendStable {
		t.Errorf("Expected stable under +5%% change, got %s", got)
	}
}

func TestEngine_DefaultCap(t *testing.T) {
	e := NewEngine(0)
	for i := 0; i < 30; i++ {
		e.Ingest(reading("traffic_flow", float64(i)))
	}
	if got := len(e.Series("traffic_flow")); got != DefaultSeriesCap {
		t.Errorf("Expected default cap %d, got %d", DefaultSeriesCap, got)
	}
}
