// Package ingest reads record files: a table name plus a list of records,
// each a map from column name to value. YAML, JSON and CUE are accepted.
//
//	table: alerts
//	records:
//	  - key: abc
//	    test_suite: system_health.common_desktop
//	    start_revision: 543210
package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// Document is the content of one record file.
type Document struct {
	Table   string           `json:"table" yaml:"table"`
	Records []map[string]any `json:"records" yaml:"records"`
}

// Error codes carried by LoadError.
const (
	ErrCodeNotFound    = "NOT_FOUND"
	ErrCodeParse       = "PARSE_ERROR"
	ErrCodeUnsupported = "UNSUPPORTED"
	ErrCodeInvalid     = "INVALID"
)

// LoadError reports why a record file could not be loaded.
type LoadError struct {
	Code    string
	File    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", e.File, e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.File, e.Code, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Load reads a record file, choosing the decoder by extension
// (.yaml, .yml, .json, .cue). String values are NFC-normalised.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &LoadError{Code: ErrCodeNotFound, File: path, Message: "file not found", Err: err}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, File: path, Message: "read failed", Err: err}
	}

	ext := strings.ToLower(filepath.Ext(path))
	doc, err := Parse(data, ext, path)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Parse decodes record file content. format is a file extension including
// the dot; name is only used in errors and CUE positions.
func Parse(data []byte, format, name string) (*Document, error) {
	var doc Document
	switch format {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, &LoadError{Code: ErrCodeParse, File: name, Message: "invalid YAML", Err: err}
		}
	case ".json":
		if err := decodeJSON(data, &doc); err != nil {
			return nil, &LoadError{Code: ErrCodeParse, File: name, Message: "invalid JSON", Err: err}
		}
	case ".cue":
		jsonData, err := exportCUE(data, name)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeParse, File: name, Message: "invalid CUE", Err: err}
		}
		if err := decodeJSON(jsonData, &doc); err != nil {
			return nil, &LoadError{Code: ErrCodeParse, File: name, Message: "CUE value is not a record document", Err: err}
		}
	default:
		return nil, &LoadError{Code: ErrCodeUnsupported, File: name, Message: fmt.Sprintf("unsupported file type %q", format)}
	}

	if doc.Table == "" {
		return nil, &LoadError{Code: ErrCodeInvalid, File: name, Message: "missing table name"}
	}
	for i, rec := range doc.Records {
		if rec == nil {
			return nil, &LoadError{Code: ErrCodeInvalid, File: name, Message: fmt.Sprintf("record %d is empty", i)}
		}
		doc.Records[i] = normalize(rec).(map[string]any)
	}
	doc.Table = norm.NFC.String(doc.Table)

	return &doc, nil
}

// decodeJSON keeps numbers as json.Number so large integers survive.
func decodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

// exportCUE evaluates a CUE file and exports it as JSON. The value must be
// concrete: record files are data, not schemas.
func exportCUE(data []byte, name string) ([]byte, error) {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(name))
	if err := value.Err(); err != nil {
		return nil, err
	}
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return nil, err
	}
	return value.MarshalJSON()
}

// normalize applies NFC to every string in a decoded value.
func normalize(v any) any {
	switch x := v.(type) {
	case string:
		return norm.NFC.String(x)
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[norm.NFC.String(k)] = normalize(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = normalize(e)
		}
		return out
	default:
		return v
	}
}
