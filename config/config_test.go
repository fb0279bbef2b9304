package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/stargate/command"
)

func TestDecodeFullConfig(t *testing.T) {
	src := `
command_timeout: 5s
multiplexer: stargate
structured_flag: --json
object_native: [list-directory, ps]
search_paths: [/opt/sg/bin]
history_file: /tmp/sg_history
prompt: "$ "
log_level: debug
tui: true
`
	cfg, err := Decode(strings.NewReader(src), "inline.yaml")
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.CommandTimeout)
	assert.Equal(t, "stargate", cfg.Multiplexer)
	assert.Equal(t, "--json", cfg.StructuredFlag)
	assert.Equal(t, []string{"list-directory", "ps"}, cfg.ObjectNative)
	assert.Equal(t, []string{"/opt/sg/bin"}, cfg.SearchPaths)
	assert.Equal(t, "/tmp/sg_history", cfg.HistoryFile)
	assert.Equal(t, "$ ", cfg.Prompt)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.True(t, cfg.TUI)
}

func TestDecodeDefaults(t *testing.T) {
	cfg, err := Decode(strings.NewReader(""), "empty.yaml")
	require.NoError(t, err)
	assert.Equal(t, command.DefaultTimeout, cfg.CommandTimeout)
	assert.Equal(t, command.DefaultStructuredFlag, cfg.StructuredFlag)
	assert.Equal(t, DefaultPrompt, cfg.Prompt)
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel)
	assert.False(t, cfg.TUI)
}

func TestDecodeRejectsUnknownKeys(t *testing.T) {
	_, err := Decode(strings.NewReader("colour: blue\n"), "bad.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "colour")
}

func TestDecodeCollectsValidationIssues(t *testing.T) {
	src := "command_timeout: -1s\nlog_level: loud\nsearch_paths: [\"\"]\n"
	_, err := Decode(strings.NewReader(src), "bad.yaml")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Issues, 3)
}

func TestLoadExplicitPathMustExist(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("prompt: \"> \"\n"), 0o644))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "> ", cfg.Prompt)
	assert.Equal(t, path, cfg.Path)
}

func TestExecutorCarriesSettings(t *testing.T) {
	cfg := Default()
	cfg.Multiplexer = "stargate"
	cfg.CommandTimeout = time.Second
	p := cfg.Executor(nil)
	assert.Equal(t, "stargate", p.Multiplexer)
	assert.Equal(t, time.Second, p.Timeout)
	assert.Equal(t, command.DefaultStructuredFlag, p.StructuredFlag)
}
