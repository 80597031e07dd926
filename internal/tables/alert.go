package tables

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/soundwave/internal/store"
)

// Alert is a regression or improvement flagged by the perf dashboard on one
// timeseries over a revision range.
type Alert struct {
	Key                 string
	Timestamp           time.Time
	TestSuite           string
	Measurement         string
	Bot                 string
	TestCase            string
	StartRevision       int64
	EndRevision         int64
	MedianBeforeAnomaly *float64
	MedianAfterAnomaly  *float64
	Units               string
	Improvement         bool
	BugID               *int64
	Status              string
	BisectStatus        string
}

// AlertColumns is the column order of the alerts table.
var AlertColumns = []string{
	"key", "timestamp", "test_suite", "measurement", "bot", "test_case",
	"start_revision", "end_revision", "median_before_anomaly",
	"median_after_anomaly", "units", "improvement", "bug_id", "status",
	"bisect_status",
}

// Alerts maps Alert onto the alerts table.
var Alerts = store.NewTable("alerts", AlertColumns, alertValues, alertFromValues)

func alertValues(a Alert) []any {
	return []any{
		a.Key,
		timeValue(a.Timestamp),
		a.TestSuite,
		a.Measurement,
		a.Bot,
		a.TestCase,
		a.StartRevision,
		a.EndRevision,
		float64Value(a.MedianBeforeAnomaly),
		float64Value(a.MedianAfterAnomaly),
		a.Units,
		a.Improvement,
		int64Value(a.BugID),
		a.Status,
		a.BisectStatus,
	}
}

func alertFromValues(values []any) (Alert, error) {
	r, err := newRow("alerts", AlertColumns, values)
	if err != nil {
		return Alert{}, err
	}
	a := Alert{
		Key:                 r.text(0),
		Timestamp:           r.timestamp(1),
		TestSuite:           r.text(2),
		Measurement:         r.text(3),
		Bot:                 r.text(4),
		TestCase:            r.text(5),
		StartRevision:       r.integer(6),
		EndRevision:         r.integer(7),
		MedianBeforeAnomaly: r.numberPtr(8),
		MedianAfterAnomaly:  r.numberPtr(9),
		Units:               r.text(10),
		Improvement:         r.flag(11),
		BugID:               r.integerPtr(12),
		Status:              r.text(13),
		BisectStatus:        r.text(14),
	}
	if r.err != nil {
		return Alert{}, r.err
	}
	return a, nil
}

// alertNamespace scopes derived alert keys.
var alertNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://chromeperf.appspot.com/alerts"))

// SeriesPath is the slash-joined path identifying the timeseries an alert or
// point belongs to.
func SeriesPath(testSuite, measurement, bot, testCase string) string {
	return strings.Join([]string{testSuite, measurement, bot, testCase}, "/")
}

// AlertKey derives a stable key for an alert from its series path and
// revision range. Alerts imported without a dashboard key get this one, so
// re-importing the same file does not create duplicates.
func AlertKey(a Alert) string {
	name := fmt.Sprintf("%s@%d:%d",
		SeriesPath(a.TestSuite, a.Measurement, a.Bot, a.TestCase),
		a.StartRevision, a.EndRevision)
	return uuid.NewSHA1(alertNamespace, []byte(norm.NFC.String(name))).String()
}

// withAlertKey fills in a derived key when the alert has none.
func withAlertKey(a Alert) Alert {
	if a.Key == "" {
		a.Key = AlertKey(a)
	}
	return a
}
