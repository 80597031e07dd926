package tables

import (
	"time"

	"github.com/roach88/soundwave/internal/store"
)

// Bug is a tracker issue that alerts were triaged into.
//
// An empty list field is stored as [] and reads back as nil, so a Bug with
// CC: []string{} round-trips to one with CC: nil.
type Bug struct {
	ID         int64
	Summary    string
	Published  time.Time
	Updated    time.Time
	State      string
	Status     string
	Author     string
	Owner      string
	CC         []string
	Components []string
	Labels     []string
}

// BugColumns is the column order of the bugs table.
var BugColumns = []string{
	"id", "summary", "published", "updated", "state", "status", "author",
	"owner", "cc", "components", "labels",
}

// Bugs maps Bug onto the bugs table. List fields are stored as JSON arrays.
var Bugs = store.NewTable("bugs", BugColumns, bugValues, bugFromValues)

func bugValues(b Bug) []any {
	return []any{
		b.ID,
		b.Summary,
		timeValue(b.Published),
		timeValue(b.Updated),
		b.State,
		b.Status,
		b.Author,
		b.Owner,
		stringsValue(b.CC),
		stringsValue(b.Components),
		stringsValue(b.Labels),
	}
}

func bugFromValues(values []any) (Bug, error) {
	r, err := newRow("bugs", BugColumns, values)
	if err != nil {
		return Bug{}, err
	}
	b := Bug{
		ID:         r.integer(0),
		Summary:    r.text(1),
		Published:  r.timestamp(2),
		Updated:    r.timestamp(3),
		State:      r.text(4),
		Status:     r.text(5),
		Author:     r.text(6),
		Owner:      r.text(7),
		CC:         r.list(8),
		Components: r.list(9),
		Labels:     r.list(10),
	}
	if r.err != nil {
		return Bug{}, r.err
	}
	return b, nil
}
