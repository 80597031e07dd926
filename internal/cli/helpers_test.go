package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const bugsYAML = `table: bugs
records:
  - id: 812345
    summary: Regression in cnn load time
    published: "2018-03-14T15:09:26Z"
    state: open
    status: Assigned
    author: sheriff@chromium.org
    cc: [dev@chromium.org]
    components: [Speed>Metrics]
  - id: 812346
    summary: Memory regression on linux
    state: closed
`

const pointsJSON = `{
  "table": "timeseries",
  "records": [
    {"test_suite": "system_health", "measurement": "fcp", "bot": "linux", "test_case": "cnn", "point_id": 543210, "value": 812.5},
    {"test_suite": "system_health", "measurement": "fcp", "bot": "linux", "test_case": "cnn", "point_id": 543250, "value": 903.25, "commit_pos": 543250}
  ]
}
`

func writeRecordFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// execute runs cmd with args and returns stdout.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}
