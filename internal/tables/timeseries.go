package tables

import (
	"time"

	"github.com/roach88/soundwave/internal/store"
)

// Point is one sample of a perf timeseries.
type Point struct {
	TestSuite   string
	Measurement string
	Bot         string
	TestCase    string
	PointID     int64
	Value       float64
	Timestamp   time.Time
	CommitPos   *int64
	ChromiumRev string
	ClankRev    string
}

// TimeseriesColumns is the column order of the timeseries table.
var TimeseriesColumns = []string{
	"test_suite", "measurement", "bot", "test_case", "point_id", "value",
	"timestamp", "commit_pos", "chromium_rev", "clank_rev",
}

// Timeseries maps Point onto the timeseries table. A point is keyed by its
// series path and point id.
var Timeseries = store.NewTable("timeseries", TimeseriesColumns, pointValues, pointFromValues)

func pointValues(p Point) []any {
	return []any{
		p.TestSuite,
		p.Measurement,
		p.Bot,
		p.TestCase,
		p.PointID,
		p.Value,
		timeValue(p.Timestamp),
		int64Value(p.CommitPos),
		p.ChromiumRev,
		p.ClankRev,
	}
}

func pointFromValues(values []any) (Point, error) {
	r, err := newRow("timeseries", TimeseriesColumns, values)
	if err != nil {
		return Point{}, err
	}
	p := Point{
		TestSuite:   r.text(0),
		Measurement: r.text(1),
		Bot:         r.text(2),
		TestCase:    r.text(3),
		PointID:     r.integer(4),
		Value:       r.number(5),
		Timestamp:   r.timestamp(6),
		CommitPos:   r.integerPtr(7),
		ChromiumRev: r.text(8),
		ClankRev:    r.text(9),
	}
	if r.err != nil {
		return Point{}, r.err
	}
	return p, nil
}
