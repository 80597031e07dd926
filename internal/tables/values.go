package tables

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// The coercions below accept what the SQLite drivers hand back from a scan
// as well as what the YAML, JSON and CUE decoders produce for record files.

func toString(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	case json.Number:
		return x.String(), nil
	case int, int64, float64:
		return fmt.Sprint(x), nil
	default:
		return "", fmt.Errorf("cannot use %T as text", v)
	}
}

func toInt64(v any) (int64, error) {
	switch x := v.(type) {
	case nil:
		return 0, nil
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return 0, fmt.Errorf("%d overflows int64", x)
		}
		return int64(x), nil
	case float64:
		if x != math.Trunc(x) {
			return 0, fmt.Errorf("%v is not an integer", x)
		}
		return int64(x), nil
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case json.Number:
		return x.Int64()
	case string:
		return strconv.ParseInt(x, 10, 64)
	case []byte:
		return strconv.ParseInt(string(x), 10, 64)
	default:
		return 0, fmt.Errorf("cannot use %T as integer", v)
	}
}

func toInt64Ptr(v any) (*int64, error) {
	if v == nil {
		return nil, nil
	}
	n, err := toInt64(v)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func toFloat64(v any) (float64, error) {
	switch x := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case int:
		return float64(x), nil
	case json.Number:
		return x.Float64()
	case string:
		return strconv.ParseFloat(x, 64)
	case []byte:
		return strconv.ParseFloat(string(x), 64)
	default:
		return 0, fmt.Errorf("cannot use %T as number", v)
	}
}

func toFloat64Ptr(v any) (*float64, error) {
	if v == nil {
		return nil, nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func toBool(v any) (bool, error) {
	switch x := v.(type) {
	case nil:
		return false, nil
	case bool:
		return x, nil
	case string:
		return strconv.ParseBool(x)
	default:
		n, err := toInt64(v)
		if err != nil {
			return false, fmt.Errorf("cannot use %T as boolean", v)
		}
		return n != 0, nil
	}
}

// toTime reads an RFC 3339 timestamp, keeping fractional seconds. Empty and
// NULL give the zero time.
func toTime(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return x.UTC(), nil
	default:
		s, err := toString(v)
		if err != nil {
			return time.Time{}, err
		}
		if s == "" {
			return time.Time{}, nil
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return time.Time{}, err
		}
		return t.UTC(), nil
	}
}

// toStrings reads a list column. The column holds a JSON array; file
// decoders may already hand over a list.
func toStrings(v any) ([]string, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case []string:
		if len(x) == 0 {
			return nil, nil
		}
		return x, nil
	case []any:
		if len(x) == 0 {
			return nil, nil
		}
		out := make([]string, len(x))
		for i, e := range x {
			s, err := toString(e)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = s
		}
		return out, nil
	default:
		s, err := toString(v)
		if err != nil {
			return nil, err
		}
		if s == "" {
			return nil, nil
		}
		var out []string
		if err := json.Unmarshal([]byte(s), &out); err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}
		if len(out) == 0 {
			return nil, nil
		}
		return out, nil
	}
}

func timeValue(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func stringsValue(s []string) any {
	if len(s) == 0 {
		return "[]"
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false) // component names contain '>'
	_ = enc.Encode(s)        // a []string always encodes
	return strings.TrimSuffix(buf.String(), "\n")
}

func int64Value(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

func float64Value(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

// row decodes one row positionally and keeps the first error, tagged with
// the column it came from.
type row struct {
	values  []any
	columns []string
	err     error
}

func newRow(table string, columns []string, values []any) (*row, error) {
	if len(values) != len(columns) {
		return nil, fmt.Errorf("%s: %d values for %d columns", table, len(values), len(columns))
	}
	return &row{values: values, columns: columns}, nil
}

func (r *row) fail(i int, err error) {
	if r.err == nil && err != nil {
		r.err = fmt.Errorf("column %s: %w", r.columns[i], err)
	}
}

func (r *row) text(i int) string {
	s, err := toString(r.values[i])
	r.fail(i, err)
	return s
}

func (r *row) integer(i int) int64 {
	n, err := toInt64(r.values[i])
	r.fail(i, err)
	return n
}

func (r *row) integerPtr(i int) *int64 {
	n, err := toInt64Ptr(r.values[i])
	r.fail(i, err)
	return n
}

func (r *row) number(i int) float64 {
	f, err := toFloat64(r.values[i])
	r.fail(i, err)
	return f
}

func (r *row) numberPtr(i int) *float64 {
	f, err := toFloat64Ptr(r.values[i])
	r.fail(i, err)
	return f
}

func (r *row) flag(i int) bool {
	b, err := toBool(r.values[i])
	r.fail(i, err)
	return b
}

func (r *row) timestamp(i int) time.Time {
	t, err := toTime(r.values[i])
	r.fail(i, err)
	return t
}

func (r *row) list(i int) []string {
	s, err := toStrings(r.values[i])
	r.fail(i, err)
	return s
}
