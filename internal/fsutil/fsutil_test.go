package fsutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDumpJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.json")

	require.NoError(t, DumpJSON(path, json.RawMessage(`{"objects":[{"id":1}],"tags":[]}`)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\n    \"objects\": [\n        {\n            \"id\": 1\n        }\n    ],\n    \"tags\": []\n}\n", string(data))
}

func TestDumpJSON_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	err := DumpJSON(path, json.RawMessage(`{"objects":`))
	assert.Error(t, err)
}

func TestMkdir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "ann")
	require.NoError(t, Mkdir(dir))
	require.NoError(t, Mkdir(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestLocalName(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
	}{
		{"day", true},
		{"frame 1.jpg", true},
		{".hidden", true},
		{"", false},
		{"..", false},
		{"../escape", false},
		{"nested/dir", false},
		{`win\dir`, false},
		{"/abs", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LocalName(tt.name)
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, tt.name, got)
				return
			}
			assert.ErrorIs(t, err, ErrUnsafeName)
		})
	}
}

func TestReset(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "5_roads")
	require.NoError(t, Mkdir(filepath.Join(dir, "day", "ann")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "meta.json"), []byte("{}"), 0o644))

	require.NoError(t, Reset(dir))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
