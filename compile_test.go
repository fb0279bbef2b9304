package stargate_test

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/gosuda/stargate"
	"github.com/gosuda/stargate/command"
	"github.com/gosuda/stargate/parser"
	sgruntime "github.com/gosuda/stargate/runtime"
)

func runScript(t *testing.T, src string, opts ...sgruntime.Option) (string, int, error) {
	t.Helper()
	var out bytes.Buffer
	opts = append(opts, sgruntime.WithOutput(&out))
	code, err := stargate.RunSource(context.Background(), src, opts...)
	return out.String(), code, err
}

func mustRun(t *testing.T, src string, opts ...sgruntime.Option) string {
	t.Helper()
	out, code, err := runScript(t, src, opts...)
	if err != nil {
		t.Fatalf("run failed: %v\noutput:\n%s", err, out)
	}
	if code != 0 {
		t.Fatalf("unexpected exit code %d\noutput:\n%s", code, out)
	}
	return out
}

func expectKind(t *testing.T, err error, want sgruntime.ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s, got nil error", want)
	}
	got, ok := sgruntime.KindOf(err)
	if !ok {
		t.Fatalf("expected runtime error %s, got %T: %v", want, err, err)
	}
	if got != want {
		t.Fatalf("expected %s, got %s: %v", want, got, err)
	}
}

func TestCompileAndRunBasicFlow(t *testing.T) {
	out := mustRun(t, `
let a = 10
fn inc(x) { return x + 1 }
if inc(a) == 11 {
    print "ok"
} else {
    print "ng"
}
print "done"
`)
	if out != "ok\ndone\n" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestParseReturnsProgram(t *testing.T) {
	prog, err := stargate.Parse("let x = 1; print x")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(prog.Statements) != 2 {
		t.Fatalf("unexpected statement count: %d", len(prog.Statements))
	}
}

func TestParseErrorExitsOne(t *testing.T) {
	_, code, err := runScript(t, "let = 3")
	if err == nil {
		t.Fatalf("expected parse error")
	}
	if code != 1 {
		t.Fatalf("unexpected exit code: %d", code)
	}
	if _, ok := err.(*parser.Error); !ok {
		t.Fatalf("expected *parser.Error, got %T", err)
	}
}

func TestDivisionAndModuloByZero(t *testing.T) {
	for _, src := range []string{"print 1 / 0", "print 5 % 0", "print 1.5 / 0.0", "print 2.5 % 0"} {
		_, code, err := runScript(t, src)
		expectKind(t, err, sgruntime.ArithmeticError)
		if code != 1 {
			t.Fatalf("%s: unexpected exit code %d", src, code)
		}
	}
}

func TestNumericRules(t *testing.T) {
	out := mustRun(t, `
print 7 / 2
print 6 / 3
print 2147483647 + 1
print 7 % 3
print -7 % 3
print 1 + 0.5
print 10 - 3 * 2
`)
	want := "3.5\n2\n2147483648\n1\n-1\n1.5\n4\n"
	if out != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", out, want)
	}
}

func TestLetShadowing(t *testing.T) {
	out := mustRun(t, `
let x = 1
if true {
    let x = 2
    print x
}
print x
`)
	if out != "2\n1\n" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestAssignToUndeclaredIsNameError(t *testing.T) {
	_, _, err := runScript(t, "y = 3")
	expectKind(t, err, sgruntime.NameError)
}

func TestFunctionScoping(t *testing.T) {
	_, _, err := runScript(t, `
fn f() { return y }
fn g() {
    let y = 5
    return f()
}
print g()
`)
	expectKind(t, err, sgruntime.NameError)

	out := mustRun(t, `
let total = 0
fn add(n) { total = total + n }
add(2)
add(3)
print total
`)
	if out != "5\n" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestArgumentCountMismatch(t *testing.T) {
	_, _, err := runScript(t, "fn f(a, b) { return a }\nf(1)")
	expectKind(t, err, sgruntime.TypeError)
}

func TestClassInheritanceThreeLevels(t *testing.T) {
	out := mustRun(t, `
class Animal {
    let name = "animal"
    let legs = 4
    fn describe() { return name + " has " + legs + " legs" }
}
class Bird extends Animal {
    let legs = 2
    let wings = 2
}
class Penguin extends Bird {
    let name = "penguin"
    fn swim() { return this.name + " swims" }
}
let p = new Penguin()
print p.describe()
print p.swim()
print p.wings
print keys(p)
`)
	want := "penguin has 2 legs\npenguin swims\n2\n[name, legs, wings]\n"
	if out != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", out, want)
	}
}

func TestCyclicInheritance(t *testing.T) {
	_, _, err := runScript(t, `
class A extends B {}
class B extends A {}
let a = new A()
`)
	expectKind(t, err, sgruntime.TypeError)
	if !strings.Contains(err.Error(), "cyclic inheritance") {
		t.Fatalf("unexpected message: %v", err)
	}

	_, _, err = runScript(t, "class C extends Missing {}\nlet c = new C()")
	expectKind(t, err, sgruntime.NameError)
}

func TestEscapingClosures(t *testing.T) {
	out := mustRun(t, `
fn make_counter() {
    let count = 0
    return || {
        count = count + 1
        return count
    }
}
let c = make_counter()
c()
c()
print c()
let d = make_counter()
print d()
let double = |x| x * 2
print [1, 2, 3].map(double)
print [1, 2, 3, 4].filter(x: x % 2 == 0)
print [1, 2, 3].reduce(0, acc, x: acc + x)
`)
	want := "3\n1\n[2, 4, 6]\n[2, 4]\n6\n"
	if out != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", out, want)
	}
}

func TestNegativeIndexingAndSlices(t *testing.T) {
	out, _, err := runScript(t, `
let xs = [10, 20, 30]
print xs[-1]
print xs[-3]
print "hello"[-1]
print xs[1:]
print xs[-2:]
print xs[:10]
print xs[5]
`)
	expectKind(t, err, sgruntime.IndexError)
	want := "30\n10\no\n[20, 30]\n[20, 30]\n[10, 20, 30]\n"
	if out != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", out, want)
	}
}

func TestMissingPropertyIsError(t *testing.T) {
	_, _, err := runScript(t, "let d = {a: 1}\nprint d.b")
	expectKind(t, err, sgruntime.PropertyError)
	_, _, err = runScript(t, "let d = {a: 1}\nprint d[\"b\"]")
	expectKind(t, err, sgruntime.PropertyError)
}

func TestConditionsRequireBool(t *testing.T) {
	for _, src := range []string{
		`if 1 { print "x" }`,
		`while "yes" { print "x" }`,
		`print !0`,
		`print true && 1`,
	} {
		_, _, err := runScript(t, src)
		expectKind(t, err, sgruntime.TypeError)
	}
	out := mustRun(t, `print bool(1) && !bool("")`)
	if out != "true\n" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestCollections(t *testing.T) {
	out := mustRun(t, `
let d = {b: 1, a: 2}
d.c = 3
print d
let s = {3, 1, 2, 1}
print s
print s.contains(1.0)
print set(1, 2).union(set{2, 3}).to_list()
let xs = [1]
xs.append(2)
xs[0] = 5
print xs
`)
	want := "{b: 1, a: 2, c: 3}\n{1, 2, 3}\ntrue\n[1, 2, 3]\n[5, 2]\n"
	if out != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", out, want)
	}
}

func TestLoops(t *testing.T) {
	out := mustRun(t, `
let total = 0
for x in [1, 2, 3] { total = total + x }
print total
for k, v in {a: 1, b: 2} { print k + "=" + v }
for i, x in ["p", "q"] { print i + ":" + x }
let i = 0
while true {
    i = i + 1
    if i == 2 { continue }
    if i > 3 { break }
    print i
}
`)
	want := "6\na=1\nb=2\n0:p\n1:q\n1\n3\n"
	if out != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", out, want)
	}
}

func TestInterpolation(t *testing.T) {
	out := mustRun(t, `
let name = "sg"
print "hello {name}, {1 + 2}"
print "empty {} and \{escaped\}"
print "list: {[1, none]}"
`)
	want := "hello sg, 3\nempty {} and {escaped}\nlist: [1, none]\n"
	if out != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", out, want)
	}
}

func TestExitCodes(t *testing.T) {
	cases := []struct {
		src  string
		code int
	}{
		{"exit(3)", 3},
		{"exit 7", 7},
		{"exit true", 0},
		{"exit false", 1},
		{"exit", 0},
		{"fn f() { exit 4 }\nf()\nprint \"unreachable\"", 4},
		{"print 1", 0},
	}
	for _, tc := range cases {
		_, code, err := runScript(t, tc.src)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", tc.src, err)
		}
		if code != tc.code {
			t.Fatalf("%q: got exit code %d, want %d", tc.src, code, tc.code)
		}
	}
}

func TestTestFrameworkStats(t *testing.T) {
	out, code, err := runScript(t, `
use ut

[test]
fn test_addition() {
    ut.assert_equals(1 + 1, 2)
}

[test]
fn test_broken() {
    ut.assert_equals(1 + 1, 3, "math is broken")
    print "unreachable"
}

print ut.stats
exit(ut.healthy)
`)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if code != 1 {
		t.Fatalf("unexpected exit code: %d", code)
	}
	for _, want := range []string{
		"Running 2 test(s)",
		"Running test: test_addition... ✓ PASSED",
		"Running test: test_broken... ✗ FAILED",
		"  Error: math is broken",
		"Test Results:",
		"{passed: 1, failed: 1, total: 2}",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "unreachable") {
		t.Fatalf("assertion failure did not abort the test:\n%s", out)
	}
}

func TestTestsRunAutomatically(t *testing.T) {
	out, code, err := runScript(t, `
use ut
[test]
fn test_truth() { ut.assert_true(1 < 2) }
`)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if code != 0 {
		t.Fatalf("unexpected exit code: %d", code)
	}
	if !strings.Contains(out, "✓ PASSED") {
		t.Fatalf("tests were not run:\n%s", out)
	}

	_, code, _ = runScript(t, "use ut\n[test]\nfn test_lie() { ut.assert_false(true) }")
	if code != 1 {
		t.Fatalf("failing auto-run should exit 1, got %d", code)
	}
}

type fakeExecutor struct {
	calls []command.Invocation
	reply map[string]string
}

func (f *fakeExecutor) Execute(_ context.Context, inv command.Invocation) (*command.Result, error) {
	f.calls = append(f.calls, inv)
	if inv.Name == "echo-json" {
		data, err := command.Decode(inv.Input)
		if err != nil {
			return nil, &command.Error{Kind: command.Malformed, Name: inv.Name, Err: err}
		}
		return &command.Result{Data: data, Raw: inv.Input}, nil
	}
	raw, ok := f.reply[inv.Name]
	if !ok {
		return nil, &command.Error{Kind: command.NotFound, Name: inv.Name, Err: fmt.Errorf("not found")}
	}
	res := &command.Result{Raw: []byte(raw)}
	if inv.Structured {
		data, err := command.Decode(res.Raw)
		if err != nil {
			return nil, &command.Error{Kind: command.Malformed, Name: inv.Name, Err: err}
		}
		res.Data = data
	}
	return res, nil
}

func TestPipelineRoundTrip(t *testing.T) {
	exec := &fakeExecutor{reply: map[string]string{
		"list-directory": `{"entries":[{"name":"a.txt","type":"file"},{"name":"src","type":"directory"}]}`,
	}}
	out := mustRun(t, `
let listing = list-directory /tmp --all
print len(listing.entries)
print listing.entries[0].name
print listing.entries.map(e: e.name)
print listing.files().map(e: e.name)
print [1, 2, 3] | echo-json
print {k: "v"} | echo-json
print [1, 2] | |xs| xs.map(x: x * 2)
`, sgruntime.WithExecutor(exec))
	want := "2\na.txt\n[a.txt, src]\n[a.txt]\n[1,2,3]\n{\"k\":\"v\"}\n[2, 4]\n"
	if out != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", out, want)
	}
	first := exec.calls[0]
	if first.Name != "list-directory" || !first.Structured || strings.Join(first.Args, " ") != "/tmp --all" {
		t.Fatalf("unexpected invocation: %+v", first)
	}
	if first.Input != nil {
		t.Fatalf("standalone command should not get input: %q", first.Input)
	}
	if got := string(exec.calls[1].Input); got != "[1,2,3]" {
		t.Fatalf("unexpected pipeline input: %q", got)
	}
}

func TestPipelineTargetMustBeCallable(t *testing.T) {
	_, _, err := runScript(t, "print 1 | 2")
	expectKind(t, err, sgruntime.TypeError)
}

func TestCommandErrors(t *testing.T) {
	exec := &fakeExecutor{reply: map[string]string{"bad-output": "{not json"}}
	_, _, err := runScript(t, "let x = missing-command", sgruntime.WithExecutor(exec))
	expectKind(t, err, sgruntime.CommandNotFound)
	_, _, err = runScript(t, "let x = bad-output", sgruntime.WithExecutor(exec))
	expectKind(t, err, sgruntime.ParseError)
}

func TestExecPrintsRawOutput(t *testing.T) {
	exec := &fakeExecutor{reply: map[string]string{"echo": "hi\n"}}
	out := mustRun(t, `exec "echo hi"`, sgruntime.WithExecutor(exec))
	if out != "hi\n" {
		t.Fatalf("unexpected output: %q", out)
	}
	if exec.calls[0].Structured {
		t.Fatalf("exec should run unstructured")
	}
}

func TestScriptInclude(t *testing.T) {
	loader := func(path string) (string, error) {
		if path != "lib.sg" {
			return "", fmt.Errorf("no such script %s", path)
		}
		return "fn helper(x) { return x * 10 }", nil
	}
	out := mustRun(t, "script \"lib.sg\"\nprint helper(2)", sgruntime.WithScriptLoader(loader))
	if out != "20\n" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestNameErrorSuggestsCloseName(t *testing.T) {
	_, _, err := runScript(t, "let counter = 1\nprint countr")
	expectKind(t, err, sgruntime.NameError)
	if !strings.Contains(err.Error(), `did you mean "counter"`) {
		t.Fatalf("missing suggestion: %v", err)
	}
	if !strings.Contains(err.Error(), "2:1") {
		t.Fatalf("missing position: %v", err)
	}
}
