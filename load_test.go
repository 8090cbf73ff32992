package switchhub

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWorkflowJSON(t *testing.T) {
	data := []byte(`{
		"name": "Recover",
		"description": "Break into rommon",
		"steps": [
			{"name": "Break", "status": "Sending break", "interrupt": "__BREAK__", "expect": "rommon", "timeout": 60},
			{"name": "Confreg", "status_text": "Ignoring startup config", "command": "confreg 0x2142", "expect_regex": "rommon", "timeout_sec": 5},
			{"name": "Boot", "command": "reset", "command_unused": 1, "require_physical_interact": true, "hold_interact_timer": 15},
			{"name": "Nothing", "command": null}
		]
	}`)

	wf, err := ParseWorkflow(data, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "Recover", wf.Name)
	assert.Equal(t, "Break into rommon", wf.Description)
	require.Len(t, wf.Steps, 4)

	brk := wf.Steps[0]
	assert.Equal(t, "Sending break", brk.StatusText)
	assert.True(t, brk.IsBreak())
	assert.Equal(t, 60, brk.TimeoutSeconds)

	confreg := wf.Steps[1]
	assert.Equal(t, "Ignoring startup config", confreg.StatusText)
	require.NotNil(t, confreg.ExpectPattern)
	assert.Equal(t, "rommon", *confreg.ExpectPattern)
	assert.Equal(t, 5, confreg.TimeoutSeconds)

	boot := wf.Steps[2]
	assert.Equal(t, "Boot", boot.StatusText)
	assert.Equal(t, DefaultTimeoutSeconds, boot.TimeoutSeconds)
	assert.True(t, boot.RequirePhysicalInteract)
	assert.Equal(t, 15, boot.HoldInteractTimer)
	assert.Nil(t, boot.ExpectPattern)

	assert.Nil(t, wf.Steps[3].Command)
}

func TestParseWorkflowYAML(t *testing.T) {
	data := []byte(`
name: Inventory
steps:
  - name: Version
    command: show version
    expect: 'Version \d+'
    timeout: 3
  - name: Wait
    timeout: 0
`)
	wf, err := ParseWorkflow(data, FormatYAML)
	require.NoError(t, err)
	require.Len(t, wf.Steps, 2)
	assert.Equal(t, "show version", *wf.Steps[0].Command)
	assert.Equal(t, `Version \d+`, *wf.Steps[0].ExpectPattern)
	assert.Equal(t, 3, wf.Steps[0].TimeoutSeconds)
	assert.Equal(t, 0, wf.Steps[1].TimeoutSeconds)
}

func TestParseWorkflowAliasPriority(t *testing.T) {
	data := []byte(`{"name": "x", "steps": [{"name": "a", "timeout": 3, "timeout_sec": 9, "status": null, "status_text": "long"}]}`)
	wf, err := ParseWorkflow(data, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, 3, wf.Steps[0].TimeoutSeconds)
	assert.Equal(t, "long", wf.Steps[0].StatusText)
}

func TestParseWorkflowErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"not json", `{name`, ErrMalformedWorkflow},
		{"trailing data", `{"name": "x", "steps": []} {}`, ErrMalformedWorkflow},
		{"not an object", `[1, 2]`, ErrMalformedWorkflow},
		{"missing name", `{"steps": []}`, ErrMissingField},
		{"missing steps", `{"name": "x"}`, ErrMissingField},
		{"steps not a list", `{"name": "x", "steps": {}}`, ErrInvalidField},
		{"step not an object", `{"name": "x", "steps": ["a"]}`, ErrInvalidField},
		{"step without name", `{"name": "x", "steps": [{"command": "a"}]}`, ErrMissingField},
		{"command not a string", `{"name": "x", "steps": [{"name": "a", "command": 5}]}`, ErrInvalidField},
		{"negative timeout", `{"name": "x", "steps": [{"name": "a", "timeout": -1}]}`, ErrInvalidField},
		{"fractional timeout", `{"name": "x", "steps": [{"name": "a", "timeout": 1.5}]}`, ErrInvalidField},
		{"string timeout", `{"name": "x", "steps": [{"name": "a", "timeout": "10"}]}`, ErrInvalidField},
		{"bad flag", `{"name": "x", "steps": [{"name": "a", "require_physical_interact": "yes"}]}`, ErrInvalidField},
		{"bad pattern", `{"name": "x", "steps": [{"name": "a", "expect": "("}]}`, ErrInvalidField},
		{"interrupt without expect", `{"name": "x", "steps": [{"name": "a", "interrupt": "__BREAK__"}]}`, ErrInvalidField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseWorkflow([]byte(tt.data), FormatJSON)
			require.Error(t, err)

			var le *LoadError
			assert.True(t, errors.As(err, &le), "Expected a LoadError, got %T", err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLoadWorkflow(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "inventory.yml")
	require.NoError(t, os.WriteFile(good, []byte("name: Inventory\nsteps:\n  - name: a\n    command: show clock\n"), 0o644))

	wf, err := LoadWorkflow(good)
	require.NoError(t, err)
	assert.Equal(t, "Inventory", wf.Name)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"name": "x"}`), 0o644))

	_, err = LoadWorkflow(bad)
	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, bad, le.Path)
	assert.ErrorIs(t, err, ErrMissingField)

	_, err = LoadWorkflow(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, ErrWorkflowNotFound)

	_, err = LoadWorkflow(filepath.Join(dir, "notes.txt"))
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestDiscoverWorkflows(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.yaml", "a.json", "c.yml", "README.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.json"), 0o755))

	files, err := DiscoverWorkflows(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.json"),
		filepath.Join(dir, "b.yaml"),
		filepath.Join(dir, "c.yml"),
	}, files)

	_, err = DiscoverWorkflows(filepath.Join(dir, "nope"))
	assert.Error(t, err)
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
		ok   bool
	}{
		{"a.json", FormatJSON, true},
		{"a.JSON", FormatJSON, true},
		{"a.yaml", FormatYAML, true},
		{"a.yml", FormatYAML, true},
		{"a.toml", 0, false},
	}
	for _, tt := range tests {
		got, err := FormatFromPath(tt.path)
		if tt.ok != (err == nil) {
			t.Errorf("%s: Expected ok %v, got error %v", tt.path, tt.ok, err)
			continue
		}
		if tt.ok && got != tt.want {
			t.Errorf("%s: Expected %v, got %v", tt.path, tt.want, got)
		}
	}
}

func TestBundledWorkflowsLoad(t *testing.T) {
	files, err := DiscoverWorkflows("workflows")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, path := range files {
		wf, err := LoadWorkflow(path)
		if assert.NoError(t, err, path) {
			assert.NotEmpty(t, wf.Steps, path)
		}
	}
}
