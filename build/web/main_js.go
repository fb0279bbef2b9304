//go:build js && wasm

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"syscall/js"

	"github.com/gosuda/stargate"
	sgruntime "github.com/gosuda/stargate/runtime"
)

type runResult struct {
	Outputs  []sgruntime.Output `json:"outputs"`
	ExitCode int                `json:"exit_code"`
	Error    string             `json:"error,omitempty"`
}

// runSource backs stargateRun(source, scriptsJSON?). Printed lines are
// also forwarded to stargateOutput(text) when the page defines it.
func runSource(this js.Value, args []js.Value) any {
	result := runResult{}
	if len(args) < 1 {
		result.Error = "stargateRun requires source text"
		result.ExitCode = 2
		return encode(result)
	}

	scripts := map[string]string{}
	if len(args) > 1 && args[1].Type() == js.TypeString && args[1].String() != "" {
		if err := json.Unmarshal([]byte(args[1].String()), &scripts); err != nil {
			result.Error = fmt.Sprintf("invalid scripts json: %v", err)
			result.ExitCode = 2
			return encode(result)
		}
	}

	sink := js.Global().Get("stargateOutput")
	it := sgruntime.New(sgruntime.WithScriptLoader(func(p string) (string, error) {
		src, ok := scripts[path.Clean(p)]
		if !ok {
			return "", fmt.Errorf("script %s not provided", p)
		}
		return src, nil
	}))
	it.SetOutputHook(func(out sgruntime.Output) {
		result.Outputs = append(result.Outputs, out)
		if sink.Type() == js.TypeFunction {
			sink.Invoke(out.Text)
		}
	})

	prog, err := stargate.Parse(args[0].String())
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

func main() {
	js.Global().Set("stargateRun", js.FuncOf(runSource))
	select {}
}
