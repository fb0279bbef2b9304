package sgruntime

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// nativeObject backs instances implemented by the host, such as the ut
// module.
type nativeObject interface {
	property(name string) (Value, error)
	call(name string, args []Value) (Value, error)
	members() []string
}

type registeredTest struct {
	name string
	fn   *Closure
}

// TestResult is the outcome of one test function.
type TestResult struct {
	Name   string
	Passed bool
	Err    error
}

// TestRegistry collects functions annotated with [test] in declaration
// order and runs them at most once.
type TestRegistry struct {
	it      *Interpreter
	tests   []registeredTest
	results []TestResult
	ran     bool
}

func newTestRegistry(it *Interpreter) *TestRegistry {
	return &TestRegistry{it: it}
}

func (r *TestRegistry) register(name string, fn *Closure) {
	for i, t := range r.tests {
		if t.name == name {
			r.tests[i].fn = fn
			return
		}
	}
	r.tests = append(r.tests, registeredTest{name: name, fn: fn})
}

// Names returns the registered test names in declaration order.
func (r *TestRegistry) Names() []string {
	out := make([]string, 0, len(r.tests))
	for _, t := range r.tests {
		out = append(out, t.name)
	}
	return out
}

func (r *TestRegistry) pending() bool {
	return !r.ran && len(r.tests) > 0
}

// Run executes every registered test once. An AssertionFailure fails
// only its own test; any other error aborts the run.
func (r *TestRegistry) Run() error {
	if r.ran {
		return nil
	}
	r.ran = true
	it := r.it
	it.emit(fmt.Sprintf("Running %d test(s)", len(r.tests)))
	for _, t := range r.tests {
		_, err := it.callClosure(t.fn, nil)
		var re *Error
		switch {
		case err == nil:
			it.emit(fmt.Sprintf("Running test: %s... ✓ PASSED", t.name))
			r.results = append(r.results, TestResult{Name: t.name, Passed: true})
		case errors.As(err, &re) && re.Kind == AssertionFailure:
			it.emit(fmt.Sprintf("Running test: %s... ✗ FAILED", t.name))
			it.emit("  Error: " + re.Msg)
			r.results = append(r.results, TestResult{Name: t.name, Err: err})
		default:
			return err
		}
		it.logger.Debug("test finished", slog.String("name", t.name), slog.Bool("passed", err == nil))
	}
	it.emit("")
	it.emit("Test Results:")
	it.emit(fmt.Sprintf("Passed: %d", r.Passed()))
	it.emit(fmt.Sprintf("Failed: %d", r.Failed()))
	it.emit(fmt.Sprintf("Total:  %d", r.Total()))
	return nil
}

func (r *TestRegistry) Results() []TestResult {
	return r.results
}

func (r *TestRegistry) Passed() int {
	n := 0
	for _, res := range r.results {
		if res.Passed {
			n++
		}
	}
	return n
}

func (r *TestRegistry) Failed() int {
	return len(r.results) - r.Passed()
}

func (r *TestRegistry) Total() int {
	return len(r.results)
}

func (r *TestRegistry) stats() Value {
	d := NewDict()
	d.PutStr("passed", Int(int32(r.Passed())))
	d.PutStr("failed", Int(int32(r.Failed())))
	d.PutStr("total", Int(int32(r.Total())))
	return DictVal(d)
}

func (r *TestRegistry) module() *Instance {
	return &Instance{Class: "ut", Fields: NewDict(), native: utModule{r}}
}

// utModule is the instance bound by `use ut`.
type utModule struct {
	r *TestRegistry
}

func (m utModule) members() []string {
	names := []string{"assert_equals", "assert_not_equals", "assert_true", "assert_false", "run", "stats", "healthy"}
	sort.Strings(names)
	return names
}

func (m utModule) property(name string) (Value, error) {
	switch name {
	case "stats", "healthy":
		if err := m.r.Run(); err != nil {
			return None, err
		}
		if name == "stats" {
			return m.r.stats(), nil
		}
		if m.r.Failed() == 0 {
			return Int(0), nil
		}
		return Int(1), nil
	default:
		return None, newError(PropertyError, "ut has no property %q", name)
	}
}

func (m utModule) call(name string, args []Value) (Value, error) {
	switch name {
	case "assert_equals", "assert_not_equals":
		if len(args) < 2 || len(args) > 3 {
			return None, typeErrorf("ut.%s() expects 2 or 3 arguments (actual, expected, [message])", name)
		}
		equal := Equal(args[0], args[1])
		if equal == (name == "assert_equals") {
			return Bool(true), nil
		}
		var b strings.Builder
		b.WriteString(assertionHeader(args, 2))
		if name == "assert_equals" {
			fmt.Fprintf(&b, "\n  Expected: %s\n  Actual:   %s", Display(args[1]), Display(args[0]))
		} else {
			fmt.Fprintf(&b, "\n  Both values: %s", Display(args[0]))
		}
		return None, newError(AssertionFailure, "%s", b.String())
	case "assert_true", "assert_false":
		if len(args) < 1 || len(args) > 2 {
			return None, typeErrorf("ut.%s() expects 1 or 2 arguments (condition, [message])", name)
		}
		if args[0].kind != BoolKind {
			return None, typeErrorf("ut.%s() condition must be bool, got %s", name, args[0].kind)
		}
		want := name == "assert_true"
		if args[0].b == want {
			return Bool(true), nil
		}
		return None, newError(AssertionFailure, "%s\n  Expected: %t\n  Actual:   %t", assertionHeader(args, 1), want, args[0].b)
	case "run":
		if len(args) != 0 {
			return None, typeErrorf("ut.run() expects no arguments, got %d", len(args))
		}
		if err := m.r.Run(); err != nil {
			return None, err
		}
		return m.r.stats(), nil
	default:
		return None, newError(PropertyError, "ut has no method %q", name)
	}
}

func assertionHeader(args []Value, msgIndex int) string {
	if len(args) > msgIndex {
		return Display(args[msgIndex])
	}
	return "assertion failed"
}
