package switchhub

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is the encoding of a workflow description.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

func (f Format) String() string {
	if f == FormatYAML {
		return "yaml"
	}
	return "json"
}

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
	}
}

// Accepted spellings per step field, in priority order. Older descriptions
// use the long forms.
var (
	statusKeys  = []string{"status", "status_text"}
	expectKeys  = []string{"expect", "expect_regex"}
	timeoutKeys = []string{"timeout", "timeout_sec"}
)

// LoadWorkflow reads and parses a workflow description file.
func LoadWorkflow(path string) (*Workflow, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = fmt.Errorf("%w: %v", ErrWorkflowNotFound, err)
		}
		return nil, &LoadError{Path: path, Err: err}
	}

	wf, err := ParseWorkflow(data, format)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Path = path
		}
		return nil, err
	}
	return wf, nil
}

// ParseWorkflow decodes a description and resolves it into a Workflow.
func ParseWorkflow(data []byte, format Format) (*Workflow, error) {
	raw, err := decode(data, format)
	if err != nil {
		return nil, &LoadError{Err: fmt.Errorf("%w: %v", ErrMalformedWorkflow, err)}
	}

	root, ok := asFields(raw)
	if !ok {
		return nil, &LoadError{Err: fmt.Errorf("%w: top level is not an object", ErrMalformedWorkflow)}
	}

	wf, err := resolveWorkflow(root)
	if err != nil {
		return nil, &LoadError{Err: err}
	}
	return wf, nil
}

func decode(data []byte, format Format) (any, error) {
	var raw any
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		if dec.More() {
			return nil, errors.New("trailing data after workflow object")
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	default:
		return nil, ErrUnknownFormat
	}
	return raw, nil
}

func resolveWorkflow(root fields) (*Workflow, error) {
	name, ok, err := root.str("name")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: name", ErrMissingField)
	}

	description, _, err := root.str("description")
	if err != nil {
		return nil, err
	}

	_, rawSteps, ok := root.lookup("steps")
	if !ok {
		return nil, fmt.Errorf("%w: steps", ErrMissingField)
	}
	list, ok := rawSteps.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: steps must be a list", ErrInvalidField)
	}

	wf := &Workflow{
		Name:        name,
		Description: description,
		Steps:       make([]Step, 0, len(list)),
	}
	for i, item := range list {
		f, ok := asFields(item)
		if !ok {
			return nil, fmt.Errorf("steps[%d]: %w: not an object", i, ErrInvalidField)
		}
		step, err := resolveStep(f)
		if err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
		wf.Steps = append(wf.Steps, step)
	}
	return wf, nil
}

func resolveStep(f fields) (Step, error) {
	var s Step
	var err error
	var ok bool

	if s.Name, ok, err = f.str("name"); err != nil {
		return s, err
	} else if !ok {
		return s, fmt.Errorf("%w: name", ErrMissingField)
	}

	status, err := f.optString(statusKeys...)
	if err != nil {
		return s, err
	}
	s.StatusText = s.Name
	if status != nil {
		s.StatusText = *status
	}

	if s.Command, err = f.optString("command"); err != nil {
		return s, err
	}
	if s.Interrupt, err = f.optString("interrupt"); err != nil {
		return s, err
	}
	if s.ExpectPattern, err = f.optString(expectKeys...); err != nil {
		return s, err
	}

	if s.TimeoutSeconds, ok, err = f.integer(timeoutKeys...); err != nil {
		return s, err
	} else if !ok {
		s.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if s.RequirePhysicalInteract, _, err = f.boolean("require_physical_interact"); err != nil {
		return s, err
	}
	if s.HoldInteractTimer, _, err = f.integer("hold_interact_timer"); err != nil {
		return s, err
	}

	if _, err := s.Pattern(); err != nil {
		return s, fmt.Errorf("%w: expect: %v", ErrInvalidField, err)
	}
	if s.HasInterrupt() && s.ExpectPattern == nil {
		return s, fmt.Errorf("%w: interrupt needs an expect pattern to know when it worked", ErrInvalidField)
	}
	return s, nil
}

// fields is one decoded object of a description.
type fields map[string]any

func asFields(v any) (fields, bool) {
	switch m := v.(type) {
	case map[string]any:
		return fields(m), true
	case map[any]any:
		out := make(fields, len(m))
		for k, v := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[ks] = v
		}
		return out, true
	default:
		return nil, false
	}
}

// lookup returns the first of keys holding a non-null value.
func (f fields) lookup(keys ...string) (string, any, bool) {
	for _, k := range keys {
		if v, ok := f[k]; ok && v != nil {
			return k, v, true
		}
	}
	return "", nil, false
}

func (f fields) str(key string) (string, bool, error) {
	v, err := f.optString(key)
	if err != nil || v == nil {
		return "", false, err
	}
	return *v, true, nil
}

func (f fields) optString(keys ...string) (*string, error) {
	key, v, ok := f.lookup(keys...)
	if !ok {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be a string", ErrInvalidField, key)
	}
	return &s, nil
}

func (f fields) boolean(key string) (bool, bool, error) {
	_, v, ok := f.lookup(key)
	if !ok {
		return false, false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, false, fmt.Errorf("%w: %s must be a boolean", ErrInvalidField, key)
	}
	return b, true, nil
}

// integer accepts whole, non-negative numbers only.
func (f fields) integer(keys ...string) (int, bool, error) {
	key, v, ok := f.lookup(keys...)
	if !ok {
		return 0, false, nil
	}

	var n float64
	switch x := v.(type) {
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return 0, false, fmt.Errorf("%w: %s: %v", ErrInvalidField, key, err)
		}
		n = parsed
	case int:
		n = float64(x)
	case int64:
		n = float64(x)
	case uint64:
		n = float64(x)
	case float64:
		n = x
	default:
		return 0, false, fmt.Errorf("%w: %s must be a number", ErrInvalidField, key)
	}

	if n < 0 || n != math.Trunc(n) || n > math.MaxInt32 {
		return 0, false, fmt.Errorf("%w: %s must be a whole number >= 0, got %v", ErrInvalidField, key, v)
	}
	return int(n), true, nil
}

// DiscoverWorkflows lists the workflow descriptions in dir, sorted by name.
func DiscoverWorkflows(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, err := FormatFromPath(entry.Name()); err == nil {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
