// Command workflow runs a workflow file (.dot or .hcl) once against the
// bundled code review tools and prints the run result as JSON.
//
//	workflow -file review.hcl -state iteration=0,strict=true -set code="def f(a, b): pass"
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/awmpietro/workflow-graph-engine/internal/config"
	"github.com/awmpietro/workflow-graph-engine/internal/tools"
	"github.com/awmpietro/workflow-graph-engine/internal/tools/codereview"
	"github.com/awmpietro/workflow-graph-engine/internal/workflow"
	"github.com/awmpietro/workflow-graph-engine/internal/workflow/hcldef"
)

type assignments workflow.State

func (a assignments) String() string { return fmt.Sprint(map[string]any(a)) }

func (a assignments) Set(raw string) error {
	key, val, err := workflow.ParseAssignment(raw)
	if err != nil {
		return err
	}
	a[key] = val
	return nil
}

func main() {
	file := flag.String("file", "", "workflow file (.dot or .hcl)")
	codeFile := flag.String("code", "", "read the \"code\" state key from this file")
	maxIterations := flag.Int("max-iterations", 0, "iteration ceiling (default from WORKFLOW_MAX_ITERATIONS)")
	inline := flag.String("state", "", "initial state as a comma separated key=value list")
	set := assignments{}
	flag.Var(set, "set", "initial state key=value (repeatable)")
	flag.Parse()

	cfg := config.Load()
	logger := cfg.NewLogger(os.Stderr)

	if *file == "" {
		fmt.Fprintln(os.Stderr, "-file is required")
		os.Exit(2)
	}

	g, state, err := load(*file)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	extra, err := workflow.ParseAssignments(*inline)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	for k, v := range extra {
		state[k] = v
	}
	for k, v := range set {
		state[k] = v
	}
	if *codeFile != "" {
		src, err := os.ReadFile(*codeFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		state["code"] = string(src)
	}

	reg := tools.NewRegistry()
	if err := codereview.Register(reg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ceiling := cfg.MaxIterations
	if *maxIterations > 0 {
		ceiling = *maxIterations
	}
	engine := workflow.NewEngine(reg, workflow.NewExprEvaluator(),
		workflow.WithMaxIterations(ceiling),
		workflow.WithLogger(logger),
	)

	res, runErr := engine.Run(g, state)
	if res != nil {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(res)
	}
	if runErr != nil {
		fmt.Fprintln(os.Stderr, runErr)
		os.Exit(1)
	}
}

func load(path string) (*workflow.GraphDefinition, workflow.State, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hcl":
		wf, err := hcldef.LoadFile(path)
		if err != nil {
			return nil, nil, err
		}
		return wf.Graph, wf.InitialState, nil
	case ".dot", ".gv":
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, err
		}
		g, err := workflow.NewCompiler().Compile(string(src))
		if err != nil {
			return nil, nil, err
		}
		return g, workflow.State{}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported workflow file %q (want .dot or .hcl)", path)
	}
}
