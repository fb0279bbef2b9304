package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listing = `{"entries":[{"name":"a.txt","type":"file"},{"name":"src","type":"directory"},{"name":"b.go","type":"file"}]}`

func writeListing(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "listing.json")
	require.NoError(t, os.WriteFile(path, []byte(listing), 0o644))
	return path
}

func TestRunViews(t *testing.T) {
	path := writeListing(t)

	var out bytes.Buffer
	require.NoError(t, run(path, "paths", &out))
	assert.Equal(t, "a.txt\nb.go\n", out.String())

	out.Reset()
	require.NoError(t, run(path, "dirs", &out))
	assert.Equal(t, "[\n  {\n    \"name\": \"src\",\n    \"type\": \"directory\"\n  }\n]\n", out.String())

	out.Reset()
	require.NoError(t, run(path, "tree", &out))
	assert.Contains(t, out.String(), "\"entries\": [")
}

func TestRunRejectsUnknownView(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, run(writeListing(t), "bogus", &out))
}

func TestRunRejectsMalformedInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"entries": [`), 0o644))
	var out bytes.Buffer
	assert.ErrorContains(t, run(path, "tree", &out), "decode")
}
