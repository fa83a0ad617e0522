package main

import (
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/awmpietro/workflow-graph-engine/internal/app"
	"github.com/awmpietro/workflow-graph-engine/internal/config"
	"github.com/awmpietro/workflow-graph-engine/internal/tools"
	"github.com/awmpietro/workflow-graph-engine/internal/tools/codereview"
	lambdatransport "github.com/awmpietro/workflow-graph-engine/internal/transport/lambdatransport"
	"github.com/awmpietro/workflow-graph-engine/internal/workflow"
	"github.com/awmpietro/workflow-graph-engine/internal/workflow/cache"
	"github.com/awmpietro/workflow-graph-engine/internal/workflow/store"
)

func main() {
	cfg := config.Load()
	logger := cfg.NewLogger(os.Stderr)

	reg := tools.NewRegistry()
	if err := codereview.Register(reg); err != nil {
		logger.Error("register tools", "error", err)
		os.Exit(1)
	}

	observer := workflow.NewAsyncNodeObserver(workflow.NewNodeLogObserver(logger), cfg.ObsBuffer)
	engine := workflow.NewEngine(
		reg,
		workflow.NewExprEvaluator(),
		workflow.WithNodeObserver(observer),
		workflow.WithMaxIterations(cfg.MaxIterations),
		workflow.WithLogger(logger),
	)

	svc := app.NewService(
		workflow.NewCompiler(),
		engine,
		cache.NewInMemory(cfg.DOTCacheMaxItems),
		store.NewGraphs(),
		store.NewRuns(),
		reg,
	)
	h := lambdatransport.NewHandler(svc, logger)

	// lambda.Start never returns; flush pending node records when the
	// runtime sends SIGTERM.
	lambda.StartWithOptions(h.Handle, lambda.WithEnableSIGTERM(observer.Close))
}
