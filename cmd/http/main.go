package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/awmpietro/workflow-graph-engine/internal/app"
	"github.com/awmpietro/workflow-graph-engine/internal/config"
	"github.com/awmpietro/workflow-graph-engine/internal/tools"
	"github.com/awmpietro/workflow-graph-engine/internal/tools/codereview"
	httptransport "github.com/awmpietro/workflow-graph-engine/internal/transport/httptransport"
	"github.com/awmpietro/workflow-graph-engine/internal/workflow"
	"github.com/awmpietro/workflow-graph-engine/internal/workflow/cache"
	"github.com/awmpietro/workflow-graph-engine/internal/workflow/store"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	logger := cfg.NewLogger(os.Stderr)

	reg := tools.NewRegistry()
	if err := codereview.Register(reg); err != nil {
		logger.Error("register tools", "error", err)
		return err
	}

	stats := workflow.NewToolStatsObserver()
	observer := workflow.NewAsyncNodeObserver(
		workflow.Observers{workflow.NewNodeLogObserver(logger), stats},
		cfg.ObsBuffer,
	)
	defer func() {
		observer.Close()
		for _, st := range stats.Snapshot() {
			logger.Info("tool stats",
				"tool", st.Tool,
				"calls", st.Calls,
				"failures", st.Failures,
				"mean_ms", float64(st.Mean().Microseconds())/1000.0,
				"max_ms", float64(st.Max.Microseconds())/1000.0,
			)
		}
		if n := observer.Dropped(); n > 0 {
			logger.Warn("node observations dropped", "count", n)
		}
	}()

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
	h := httptransport.NewHandler(svc, logger)
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: h.Routes()}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.HTTPAddr, "tools", reg.Names())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		logger.Error("server stopped", "error", err)
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
		return err
	}
	return nil
}
