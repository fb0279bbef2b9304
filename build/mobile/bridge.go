// Package mobile exposes the interpreter to gomobile bindings. Scripts
// run without a command executor, so external commands fail with
// CommandNotFound.
package mobile

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/gosuda/stargate"
	sgruntime "github.com/gosuda/stargate/runtime"
)

type runResult struct {
	Outputs  []sgruntime.Output `json:"outputs"`
	ExitCode int                `json:"exit_code"`
	Error    string             `json:"error,omitempty"`
}

// Run executes source and returns a JSON result.
// scriptsJSON maps paths to sources for `script` statements:
// {"lib/util.sg":"fn helper() { ... }"}
func Run(source, scriptsJSON string) string {
	result := runResult{}

	scripts := map[string]string{}
	if strings.TrimSpace(scriptsJSON) != "" {
		if err := json.Unmarshal([]byte(scriptsJSON), &scripts); err != nil {
			result.Error = fmt.Sprintf("invalid scripts json: %v", err)
			result.ExitCode = 2
			return encode(result)
		}
	}

	it := sgruntime.New(sgruntime.WithScriptLoader(func(p string) (string, error) {
		src, ok := scripts[path.Clean(p)]
		if !ok {
			return "", fmt.Errorf("script %s not provided", p)
		}
		return src, nil
	}))
	it.SetOutputHook(func(out sgruntime.Output) {
		result.Outputs = append(result.Outputs, out)
	})

	prog, err := stargate.Parse(source)
	if err != nil {
		result.Error = err.Error()
		result.ExitCode = 1
		return encode(result)
	}
	code, err := it.Run(context.Background(), prog)
	result.ExitCode = code
	if err != nil {
		result.Error = err.Error()
	}
	return encode(result)
}

func encode(r runResult) string {
	b, _ := json.Marshal(r)
	return string(b)
}
