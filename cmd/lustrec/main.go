// cmd/lustrec is a thin CLI wiring the analysis pipeline end to end:
// check -> compile -> schedule -> step, plus a standalone constant
// propagation/test-verdict pass. It reads the JSON AST format
// internal/astjson defines, since the surface parser is outside this
// repo's scope (spec §1). Command dispatch is a hand-rolled os.Args
// switch with short aliases, mirroring the teacher's cmd/sentra/main.go.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"

	"lustre/internal/astjson"
	"lustre/internal/check"
	"lustre/internal/compile"
	"lustre/internal/constprop"
	"lustre/internal/diag"
	"lustre/internal/lustreerr"
	"lustre/internal/schedule"
	"lustre/internal/step"
	"lustre/internal/values"
)

const version = "0.1.0"

var commandAliases = map[string]string{
	"c": "check",
	"p": "propagate",
	"r": "run",
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}
	cmd := args[0]
	if alias, ok := commandAliases[cmd]; ok {
		cmd = alias
	}

	var err error
	switch cmd {
	case "--version", "-v", "version":
		fmt.Println("lustrec " + version)
		return
	case "check":
		err = runCheck(args[1:])
	case "propagate":
		err = runPropagate(args[1:])
	case "run":
		err = runRun(args[1:])
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		var ierr *lustreerr.Error
		if pkgerrors.As(err, &ierr) {
			fmt.Fprintf(os.Stderr, "lustrec: internal error [%s]: %s\n", ierr.Kind, ierr.Message)
		} else {
			fmt.Fprintf(os.Stderr, "lustrec: %s\n", err)
		}
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: lustrec <command> [--json] [file]

Commands:
  check (c)      Type check an AST, printing diagnostics and type hints.
  propagate (p)  Run constant propagation and #[test] verdicts.
  run (r)        Step a node over a stream of inputs.
  version        Print the CLI version.

With no file argument, input is read from stdin.`)
}

// readInput splits --json out of args and opens the remaining positional
// file argument, falling back to stdin.
func readInput(args []string) (io.Reader, bool, error) {
	jsonOut := false
	var rest []string
	for _, a := range args {
		if a == "--json" {
			jsonOut = true
			continue
		}
		rest = append(rest, a)
	}
	if len(rest) > 0 {
		f, err := os.Open(rest[0])
		if err != nil {
			return nil, false, pkgerrors.Wrap(err, "opening input file")
		}
		return f, jsonOut, nil
	}
	return os.Stdin, jsonOut, nil
}

func runCheck(args []string) error {
	in, asJSON, err := readInput(args)
	if err != nil {
		return err
	}
	a, err := astjson.Decode(in)
	if err != nil {
		return err
	}
	runID := uuid.New()
	result := check.Check(a)
	if asJSON {
		return printJSON(runID, result.Diagnostics, result.Hints)
	}
	printText(runID, result.Diagnostics, result.Hints)
	return nil
}

func runPropagate(args []string) error {
	in, asJSON, err := readInput(args)
	if err != nil {
		return err
	}
	a, err := astjson.Decode(in)
	if err != nil {
		return err
	}
	runID := uuid.New()
	checked := check.Check(a)
	propagated := constprop.Propagate(a)
	if asJSON {
		return printJSON(runID, checked.Diagnostics, propagated.Hints)
	}
	printText(runID, checked.Diagnostics, propagated.Hints)
	return nil
}

func runRun(args []string) error {
	in, _, err := readInput(args)
	if err != nil {
		return err
	}
	raw, err := io.ReadAll(in)
	if err != nil {
		return err
	}
	var file struct {
		Ast   json.RawMessage   `json:"ast"`
		Node  string            `json:"node"`
		Steps [][]astjson.Value `json:"steps"`
	}
	if err := json.Unmarshal(raw, &file); err != nil {
		return pkgerrors.Wrap(err, "decoding run file")
	}

	a, err := astjson.Decode(bytes.NewReader(file.Ast))
	if err != nil {
		return err
	}

	checked := check.Check(a)
	for _, d := range checked.Diagnostics {
		fmt.Fprintf(os.Stderr, "%s: %s\n", d.Severity, d.Message)
	}
	if len(checked.Diagnostics) > 0 {
		return fmt.Errorf("aborting run: %d diagnostic(s)", len(checked.Diagnostics))
	}

	compiler := compile.New(a)
	node, err := compiler.Compile(file.Node)
	if err != nil {
		return err
	}
	order := schedule.Order(node)
	schedule.Reset(node)

	start := time.Now()
	for i, wireInputs := range file.Steps {
		stepInputs := make([]values.Value, len(wireInputs))
		for j, v := range wireInputs {
			dv, err := astjson.DecodeValue(v)
			if err != nil {
				return err
			}
			stepInputs[j] = dv
		}

		if err := step.Step(node, order, stepInputs); err != nil {
			return err
		}
		fmt.Printf("instant %d:", i)
		for _, outIdx := range node.OutputIdx {
			fmt.Printf(" %s", node.Values[outIdx].String())
		}
		fmt.Println()
	}
	elapsed := time.Since(start)
	fmt.Printf("stepped %s instants in %s\n", humanize.Comma(int64(len(file.Steps))), elapsed)
	return nil
}

func printJSON(runID uuid.UUID, diags []diag.Diagnostic, hints []diag.Hint) error {
	out := struct {
		RunID       string            `json:"run_id"`
		Diagnostics []diag.Diagnostic `json:"diagnostics"`
		Hints       []diag.Hint       `json:"hints"`
	}{RunID: runID.String(), Diagnostics: diags, Hints: hints}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printText(runID uuid.UUID, diags []diag.Diagnostic, hints []diag.Hint) {
	fmt.Printf("run %s\n", runID)
	for _, d := range diags {
		fmt.Printf("  %s: %s\n", d.Severity, d.Message)
	}
	for _, h := range hints {
		fmt.Printf("  hint @ %d:%d %s\n", h.Position.Line, h.Position.Column, h.Label)
	}
}
