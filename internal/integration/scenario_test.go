// Package integration runs the full pipeline (check -> compile -> schedule
// -> step) end to end against small txtar-fixtured scenarios, the way a
// golden-file test suite would. Grounded on golang.org/x/tools/txtar, an
// indirect dependency of the teacher promoted here to direct use: a single
// fixture carries both the input AST and the expected per-instant output in
// one readable block instead of scattering them across files.
package integration_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	"lustre/internal/astjson"
	"lustre/internal/check"
	"lustre/internal/compile"
	"lustre/internal/schedule"
	"lustre/internal/step"
	"lustre/internal/values"
)

// runScenario parses a txtar archive with an "ast.json" file (the node
// graph), a "steps.json" file (one array of wire input values per instant),
// and a "want.txt" file (one expected "out1 out2 ..." line per instant,
// joined by spaces), and asserts the stepped outputs match line for line.
func runScenario(t *testing.T, archive string, node string) {
	t.Helper()
	ar := txtar.Parse([]byte(archive))

	var astJSON, stepsJSON, want []byte
	for _, f := range ar.Files {
		switch f.Name {
		case "ast.json":
			astJSON = f.Data
		case "steps.json":
			stepsJSON = f.Data
		case "want.txt":
			want = f.Data
		}
	}
	require.NotNil(t, astJSON, "fixture missing ast.json")
	require.NotNil(t, stepsJSON, "fixture missing steps.json")

	a, err := astjson.Decode(bytes.NewReader(astJSON))
	require.NoError(t, err)

	checked := check.Check(a)
	require.Empty(t, checked.Diagnostics)

	var rawSteps [][]astjson.Value
	require.NoError(t, json.Unmarshal(stepsJSON, &rawSteps))

	compiler := compile.New(a)
	cn, err := compiler.Compile(node)
	require.NoError(t, err)
	order := schedule.Order(cn)
	schedule.Reset(cn)

	wantLines := strings.Split(strings.TrimSpace(string(want)), "\n")
	require.Len(t, wantLines, len(rawSteps))

	for i, wireInputs := range rawSteps {
		inputs := make([]values.Value, len(wireInputs))
		for j, v := range wireInputs {
			dv, err := astjson.DecodeValue(v)
			require.NoError(t, err)
			inputs[j] = dv
		}
		require.NoError(t, step.Step(cn, order, inputs))

		got := make([]string, len(cn.OutputIdx))
		for j, idx := range cn.OutputIdx {
			got[j] = cn.Values[idx].String()
		}
		assertInstantEqual(t, wantLines[i], strings.Join(got, " "), i)
	}
}

func assertInstantEqual(t *testing.T, want, got string, instant int) {
	t.Helper()
	if want != got {
		t.Errorf("instant %d: want %q, got %q", instant, want, got)
	}
}

// TestCounterAccumulatesAcrossInstants exercises `out = 0 -> pre(out) + step`,
// the canonical self-referential-output pattern (spec §4.1 "fby"/"pre"
// desugaring, §4.5 one-instant stepping).
func TestCounterAccumulatesAcrossInstants(t *testing.T) {
	runScenario(t, `
-- ast.json --
{"nodes":[{"name":"Counter",
  "inputs":[{"name":"step","type":{"kind":"int"}}],
  "outputs":[{"name":"out","type":{"kind":"int"}}],
  "equations":[{"name":"out","expr":
    {"kind":"bin","op":"->","lhs":{"kind":"lit","lit":{"kind":"int","int":0}},
     "rhs":{"kind":"bin","op":"+",
       "lhs":{"kind":"un","op":"pre","unary":{"kind":"var","name":"out"}},
       "rhs":{"kind":"var","name":"step"}}}}]}]}
-- steps.json --
[[{"kind":"int","int":1}],[{"kind":"int","int":1}],[{"kind":"int","int":5}]]
-- want.txt --
0
1
6
`, "Counter")
}

// TestArrayLiftedCallStepsEachElementIndependently exercises spec §4.1.1's
// array-lifting rule: Acc is inlined into Caller unconditionally (spec
// §4.3), so its single Pre slot stores the whole array value of y each
// instant; §4.2's pointwise lifting of + over that stored array gives each
// element independent accumulated history for free, with no per-element
// runtime state of its own.
func TestArrayLiftedCallStepsEachElementIndependently(t *testing.T) {
	runScenario(t, `
-- ast.json --
{"nodes":[
  {"name":"Acc",
   "inputs":[{"name":"x","type":{"kind":"int"}}],
   "outputs":[{"name":"y","type":{"kind":"int"}}],
   "equations":[{"name":"y","expr":
     {"kind":"bin","op":"->","lhs":{"kind":"var","name":"x"},
      "rhs":{"kind":"bin","op":"+",
        "lhs":{"kind":"un","op":"pre","unary":{"kind":"var","name":"y"}},
        "rhs":{"kind":"var","name":"x"}}}}]},
  {"name":"Caller",
   "inputs":[{"name":"xs","type":{"kind":"array","elem":{"kind":"int"},"len":2}}],
   "outputs":[{"name":"ys","type":{"kind":"array","elem":{"kind":"int"},"len":2}}],
   "equations":[{"name":"ys","expr":
     {"kind":"call","callee":"Acc","args":[{"kind":"var","name":"xs"}]}}]}
]}
-- steps.json --
[[{"kind":"array","elems":[{"kind":"int","int":1},{"kind":"int","int":10}]}],
 [{"kind":"array","elems":[{"kind":"int","int":1},{"kind":"int","int":10}]}]]
-- want.txt --
[1, 10]
[2, 20]
`, "Caller")
}

func TestOutputTypeMismatchBlocksRun(t *testing.T) {
	a, err := astjson.Decode(strings.NewReader(`{"nodes":[{"name":"Bad",
		"outputs":[{"name":"out","type":{"kind":"bool"}}],
		"equations":[{"name":"out","expr":{"kind":"lit","lit":{"kind":"int","int":1}}}]}]}`))
	require.NoError(t, err)
	checked := check.Check(a)
	require.NotEmpty(t, checked.Diagnostics)
}
