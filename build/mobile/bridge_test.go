package mobile

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) runResult {
	t.Helper()
	var r runResult
	require.NoError(t, json.Unmarshal([]byte(raw), &r))
	return r
}

func TestRunCollectsOutput(t *testing.T) {
	r := decode(t, Run("script \"lib/util.sg\"\nprint twice(4)\nexit 4", `{"lib/util.sg":"fn twice(x) { return x * 2 }"}`))
	assert.Empty(t, r.Error)
	assert.Equal(t, 4, r.ExitCode)
	require.Len(t, r.Outputs, 1)
	assert.Equal(t, "8", r.Outputs[0].Text)
}

func TestRunReportsErrors(t *testing.T) {
	r := decode(t, Run("print 1 / 0", ""))
	assert.Equal(t, 1, r.ExitCode)
	assert.Contains(t, r.Error, "ArithmeticError")

	r = decode(t, Run("let = 1", ""))
	assert.Equal(t, 1, r.ExitCode)
	assert.NotEmpty(t, r.Error)

	r = decode(t, Run("print 1", "{"))
	assert.Equal(t, 2, r.ExitCode)
	assert.Contains(t, r.Error, "invalid scripts json")
}
