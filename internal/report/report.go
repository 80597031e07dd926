// Package report renders bisect job results as the plain-text report that
// is posted to the tracking bug.
package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Results is the payload of a finished bisect job.
type Results struct {
	Status         string     `json:"status" yaml:"status"`
	BisectBot      string     `json:"bisect_bot" yaml:"bisect_bot"`
	BugID          *int64     `json:"bug_id" yaml:"bug_id"`
	Command        string     `json:"command" yaml:"command"`
	Metric         string     `json:"metric" yaml:"metric"`
	Change         string     `json:"change" yaml:"change"`
	Score          *float64   `json:"score" yaml:"score"`
	BuildbotLogURL string     `json:"buildbot_log_url" yaml:"buildbot_log_url"`
	IssueURL       string     `json:"issue_url" yaml:"issue_url"`
	TestType       string     `json:"test_type" yaml:"test_type"`
	AbortedReason  string     `json:"aborted_reason" yaml:"aborted_reason"`
	Warnings       []string   `json:"warnings" yaml:"warnings"`
	Culprit        *Culprit   `json:"culprit_data" yaml:"culprit_data"`
	Revisions      []Revision `json:"revision_data" yaml:"revision_data"`
}

// Culprit describes the suspected CL.
type Culprit struct {
	Subject    string `json:"subject" yaml:"subject"`
	Author     string `json:"author" yaml:"author"`
	CommitInfo string `json:"commit_info" yaml:"commit_info"`
	CL         string `json:"cl" yaml:"cl"`
	CLDate     string `json:"cl_date" yaml:"cl_date"`
}

// Revision is one tested revision.
type Revision struct {
	RevisionString string    `json:"revision_string" yaml:"revision_string"`
	CommitHash     string    `json:"commit_hash" yaml:"commit_hash"`
	CommitPos      *int64    `json:"commit_pos" yaml:"commit_pos"`
	DepotName      string    `json:"depot_name" yaml:"depot_name"`
	DepsRevision   string    `json:"deps_revision" yaml:"deps_revision"`
	MeanValue      *float64  `json:"mean_value" yaml:"mean_value"`
	StdDev         *float64  `json:"std_dev" yaml:"std_dev"`
	Values         []float64 `json:"values" yaml:"values"`
	Result         string    `json:"result" yaml:"result"`
}

const reportTemplate = `
===== BISECT JOB RESULTS =====
Status: %s

%s

Bisect job ran on: %s
Bug ID: %s

Test Command: %s
Test Metric: %s
Relative Change: %s
Score: %s

Buildbot stdio: %s
Job details: %s

`

const abortedTemplate = `
=== Bisection aborted ===
The bisect was aborted because %s
Please contact the team (see below) if you believe this is in error.
`

const warningsTemplate = `
=== Warnings ===
The following warnings were raised by the bisect job:

%s
`

const culpritTemplate = `
===== SUSPECTED CL(s) =====
Subject : %s
Author  : %s
Commit description:
  %s
Commit  : %s
Date    : %s

`

const revisionTableTemplate = `
===== TESTED REVISIONS =====
%s`

const thankYou = `
| O O | Visit http://www.chromium.org/developers/speed-infra/perf-bug-faq
|  X  | for more information addressing perf regression bugs. For feedback,
| / \ | file a bug with label Cr-Tests-AutoBisect.  Thank you!`

// Render produces the report text. Sections for an aborted run, warnings,
// the suspected CL and the revision table appear only when the results
// carry them. A nil Results renders as the empty string.
func Render(r *Results) string {
	if r == nil {
		return ""
	}

	var result strings.Builder
	if r.AbortedReason != "" {
		fmt.Fprintf(&result, abortedTemplate, r.AbortedReason)
	}
	if len(r.Warnings) > 0 {
		bullets := make([]string, len(r.Warnings))
		for i, w := range r.Warnings {
			bullets[i] = " * " + w
		}
		fmt.Fprintf(&result, warningsTemplate, strings.Join(bullets, "\n"))
	}
	if c := r.Culprit; c != nil {
		fmt.Fprintf(&result, culpritTemplate, c.Subject, c.Author, c.CommitInfo, c.CL, c.CLDate)
	}
	if len(r.Revisions) > 0 {
		fmt.Fprintf(&result, revisionTableTemplate, revisionTable(r))
	}

	var bugID, score string
	if r.BugID != nil {
		bugID = strconv.FormatInt(*r.BugID, 10)
	}
	if r.Score != nil {
		score = formatNumber(r.Score)
	}

	var out strings.Builder
	fmt.Fprintf(&out, reportTemplate,
		r.Status, result.String(), r.BisectBot, bugID,
		r.Command, r.Metric, r.Change, score,
		r.BuildbotLogURL, r.IssueURL)
	out.WriteString(thankYou)
	return out.String()
}

func revisionTable(r *Results) string {
	meanHeader := "Mean Value"
	if r.TestType == "return_code" {
		meanHeader = "Exit Code"
	}

	rows := [][]string{{"Revision", meanHeader, "Std. Dev.", "Num Values", "Good?", ""}}
	for _, rev := range r.Revisions {
		marker := ""
		if r.Culprit != nil && rev.CommitHash != "" && rev.CommitHash == r.Culprit.CL {
			marker = "<-"
		}
		rows = append(rows, []string{
			revisionString(rev),
			formatNumber(rev.MeanValue),
			formatNumber(rev.StdDev),
			strconv.Itoa(len(rev.Values)),
			rev.Result,
			marker,
		})
	}
	return prettyTable(rows)
}

// revisionString names a revision, falling back to the commit-position form
// used before revision strings were reported.
func revisionString(rev Revision) string {
	if rev.RevisionString != "" {
		return rev.RevisionString
	}
	s := "chromium@" + optionalInt(rev.CommitPos)
	if rev.DepotName != "" && rev.DepotName != "chromium" {
		deps := rev.DepsRevision
		if deps == "" {
			deps = "unknown"
		}
		s += "," + rev.DepotName + "@" + deps
	}
	return s
}

func optionalInt(n *int64) string {
	if n == nil {
		return "unknown"
	}
	return strconv.FormatInt(*n, 10)
}

// formatNumber rounds to six decimal places; missing values print as N/A.
func formatNumber(x *float64) string {
	if x == nil {
		return "N/A"
	}
	rounded := math.Round(*x*1e6) / 1e6
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}

// prettyTable lays rows out in fixed-width columns: 24 characters for the
// first, 12 for the rest. Trailing spaces are trimmed.
func prettyTable(rows [][]string) string {
	lines := make([]string, len(rows))
	for i, row := range rows {
		var b strings.Builder
		for j, cell := range row {
			width := 12
			if j == 0 {
				width = 24
			}
			fmt.Fprintf(&b, "%-*s", width, cell)
		}
		lines[i] = strings.TrimRight(b.String(), " ")
	}
	return strings.Join(lines, "\n")
}
