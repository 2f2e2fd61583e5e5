// Package bootstrap wires the platform and domain layers into a running
// service: configuration, logging, observability, the duplicate index, the
// analysis engine and the HTTP transport, with graceful shutdown.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"golang.org/x/sync/errgroup"

	"civic-eye-server-go/internal/domain/duplicate"
	domainengine "civic-eye-server-go/internal/domain/engine"
	"civic-eye-server-go/internal/domain/eventbus"
	"civic-eye-server-go/internal/domain/forensics"
	domainimage "civic-eye-server-go/internal/domain/image"
	"civic-eye-server-go/internal/domain/trust"
	platformconfig "civic-eye-server-go/internal/platform/config"
	platformerrors "civic-eye-server-go/internal/platform/errors"
	platformlogging "civic-eye-server-go/internal/platform/logging"
	platformobservability "civic-eye-server-go/internal/platform/observability"
	httptransport "civic-eye-server-go/internal/transport/http"
	httpanalyze "civic-eye-server-go/internal/transport/http/analyze"
	httphealth "civic-eye-server-go/internal/transport/http/health"
)

type stepFn func(context.Context, *appState) error

type initStep struct {
	ID        string
	Title     string
	DependsOn []string
	Kind      platformerrors.Kind
	Execute   stepFn
}

type appState struct {
	config                *platformconfig.Config
	configPath            string
	logger                *platformlogging.Logger
	observabilityShutdown platformobservability.ShutdownFunc
	checker               duplicate.Checker
	engine                *domainengine.Engine
}

// Options tunes how Run assembles the service.
type Options struct {
	ConfigPath string
}

// Run starts the whole service lifecycle: init-step execution, HTTP serving
// and graceful shutdown on SIGINT/SIGTERM.
func Run(ctx context.Context, opts Options) error {
	state := &appState{configPath: opts.ConfigPath}

	if err := executeInitSteps(ctx, InitGraph(), state); err != nil {
		return err
	}

	config := state.config
	logger := state.logger
	if config == nil || logger == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"bootstrap state validation",
			"config/logger not initialised",
		)
	}
	if state.engine == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"bootstrap state validation",
			"engine not initialised",
		)
	}

	logBootstrapGraph(InitGraph(), logger)

	if shutdown := state.observabilityShutdown; shutdown != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				logger.WarnTag("BOOT", "observability did not shut down cleanly: %v", err)
			}
		}()
	}

	defer func() {
		if state.checker != nil {
			if err := state.checker.Close(context.Background()); err != nil {
				logger.WarnTag("DUP", "duplicate index did not close cleanly: %v", err)
			}
		}
	}()

	rootCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	signalCtx, stop := signal.NotifyContext(rootCtx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(rootCtx)

	if _, err := startHTTPServer(state, group, groupCtx); err != nil {
		cancel()
		return err
	}

	if err := waitForShutdown(signalCtx, cancel, logger, group); err != nil {
		return err
	}

	logger.InfoTag("BOOT", "service stopped")
	logger.Close()
	return nil
}

func logBootstrapGraph(steps []initStep, logger *platformlogging.Logger) {
	if logger == nil {
		return
	}
	logger.InfoTag("BOOT", "initialisation order")
	for _, step := range steps {
		logger.InfoTag("BOOT", "  %s", step.Title)
	}
}

func executeInitSteps(ctx context.Context, steps []initStep, state *appState) error {
	if state == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"execute init steps",
			"nil bootstrap state",
		)
	}

	completed := make(map[string]struct{}, len(steps))
	for _, step := range steps {
		for _, dep := range step.DependsOn {
			if _, ok := completed[dep]; !ok {
				return platformerrors.New(
					platformerrors.KindBootstrap,
					step.ID,
					fmt.Sprintf("dependency %s not satisfied", dep),
				)
			}
		}
		if step.Execute == nil {
			return platformerrors.New(
				platformerrors.KindBootstrap,
				step.ID,
				"missing execute function",
			)
		}
		if err := step.Execute(ctx, state); err != nil {
			var typed *platformerrors.Error
			if errors.As(err, &typed) {
				return err
			}

			kind := step.Kind
			if kind == "" {
				kind = platformerrors.KindBootstrap
			}
			return platformerrors.Wrap(kind, step.ID, "bootstrap step failed", err)
		}
		completed[step.ID] = struct{}{}
	}
	return nil
}

// InitGraph declares the ordered initialisation steps and their dependencies.
func InitGraph() []initStep {
	return []initStep{
		{
			ID:      "config:load",
			Title:   "Load configuration",
			Kind:    platformerrors.KindConfig,
			Execute: loadConfigStep,
		},
		{
			ID:        "logging:init-provider",
			Title:     "Initialise logging provider",
			DependsOn: []string{"config:load"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   initLoggingStep,
		},
		{
			ID:        "observability:setup-hooks",
			Title:     "Setup observability hooks",
			DependsOn: []string{"logging:init-provider"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   setupObservabilityStep,
		},
		{
			ID:        "duplicate:init-index",
			Title:     "Initialise duplicate-sighting index",
			DependsOn: []string{"logging:init-provider"},
			Kind:      platformerrors.KindStorage,
			Execute:   initDuplicateStep,
		},
		{
			ID:        "engine:init",
			Title:     "Initialise analysis engine",
			DependsOn: []string{"logging:init-provider", "duplicate:init-index"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   initEngineStep,
		},
		{
			ID:        "events:subscribe",
			Title:     "Subscribe analysis event handlers",
			DependsOn: []string{"logging:init-provider"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   subscribeEventsStep,
		},
	}
}

func loadConfigStep(_ context.Context, state *appState) error {
	result, err := platformconfig.NewLoader().WithPath(state.configPath).Load()
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindConfig, "config:load", "failed to load configuration", err)
	}
	state.config = result.Config
	state.configPath = result.Path
	return nil
}

func initLoggingStep(_ context.Context, state *appState) error {
	if state == nil || state.config == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"logging:init-provider",
			"config not loaded",
		)
	}

	logger, err := platformlogging.New(platformlogging.Config{
		Level:    state.config.Log.Level,
		Dir:      state.config.Log.Dir,
		Filename: state.config.Log.File,
	})
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindBootstrap, "logging:init-provider", "failed to initialize logging provider", err)
	}

	state.logger = logger
	platformlogging.DefaultLogger = logger

	logger.InfoTag("BOOT", "logging ready [%s] %s", state.config.Log.Level, state.configPath)
	return nil
}

func setupObservabilityStep(ctx context.Context, state *appState) error {
	if state == nil || state.logger == nil || state.config == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"observability:setup-hooks",
			"config/logger not initialised",
		)
	}

	cfg := platformobservability.Config{
		Enabled: strings.EqualFold(state.config.Log.Level, "debug"),
	}

	shutdown, err := platformobservability.Setup(ctx, cfg, state.logger.Slog())
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindBootstrap, "observability:setup-hooks", "failed to setup observability hooks", err)
	}
	state.observabilityShutdown = shutdown
	return nil
}

func initDuplicateStep(_ context.Context, state *appState) error {
	if state == nil || state.config == nil || state.logger == nil {
		return platformerrors.New(
			platformerrors.KindStorage,
			"duplicate:init-index",
			"missing config/logger",
		)
	}

	dupCfg := state.config.Duplicate
	checkerCfg := duplicate.Config{
		Driver: strings.ToLower(strings.TrimSpace(dupCfg.Driver)),
		TTL:    dupCfg.TTL,
	}
	if checkerCfg.Driver == "redis" {
		checkerCfg.Redis = &duplicate.RedisConfig{
			Addr:     dupCfg.Redis.Addr,
			Username: dupCfg.Redis.Username,
			Password: dupCfg.Redis.Password,
			DB:       dupCfg.Redis.DB,
			Prefix:   dupCfg.Redis.Prefix,
		}
	}

	checker, err := duplicate.New(checkerCfg)
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindStorage, "duplicate:init-index", "failed to create duplicate index", err)
	}
	state.checker = checker

	driver := checkerCfg.Driver
	if driver == "" {
		driver = "noop"
	}
	state.logger.InfoTag("DUP", "duplicate index ready (%s)", driver)
	return nil
}

func initEngineStep(_ context.Context, state *appState) error {
	if state == nil || state.config == nil || state.logger == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"engine:init",
			"missing config/logger",
		)
	}

	state.engine = domainengine.New(
		domainimage.NewDecoder(state.config.Engine, state.logger),
		forensics.All(forensics.DefaultConfig()),
		trust.NewAggregator(trust.DefaultAggregatorConfig()),
		trust.NewClassifier(trust.DefaultClassifierConfig()),
		state.checker,
		state.logger,
	)

	state.logger.InfoTag("ENGINE", "analysis engine ready")
	return nil
}

func subscribeEventsStep(_ context.Context, state *appState) error {
	if state == nil || state.logger == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"events:subscribe",
			"logger not initialised",
		)
	}

	logger := state.logger
	err := eventbus.SubscribeAsync(eventbus.TopicReportAnalyzed, func(event eventbus.ReportAnalyzed) {
		payload, err := sonic.MarshalString(event)
		if err != nil {
			logger.WarnTag("EVENTS", "failed to serialize analysis event: %v", err)
			return
		}
		logger.InfoTag("EVENTS", "report analyzed: %s", payload)
	})
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindBootstrap, "events:subscribe", "failed to subscribe analysis events", err)
	}
	return nil
}

func startHTTPServer(state *appState, g *errgroup.Group, groupCtx context.Context) (*http.Server, error) {
	config := state.config
	logger := state.logger

	httpRouter, err := httptransport.Build(httptransport.Options{
		Config:     config,
		Logger:     logger,
		StaticRoot: config.Web.StaticDir,
	})
	if err != nil {
		return nil, err
	}

	analyzeService, err := httpanalyze.NewService(config, logger, state.engine)
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindTransport, "analyze:new-service", "failed to create analyze service", err)
	}
	if err := analyzeService.Register(groupCtx, httpRouter.API); err != nil {
		return nil, err
	}

	healthService := httphealth.NewService(logger)
	if err := healthService.Register(groupCtx, httpRouter.Engine); err != nil {
		return nil, err
	}

	httpServer := &http.Server{
		Addr:    config.Server.IP + ":" + strconv.Itoa(config.Server.Port),
		Handler: httpRouter.Engine,
	}

	g.Go(func() error {
		logger.InfoTag("HTTP", "server listening on http://localhost:%d", config.Server.Port)
		logger.InfoTag("HTTP", "analyze endpoint: http://localhost:%d/api/analyze", config.Server.Port)

		go func() {
			<-groupCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.ErrorTag("HTTP", "server shutdown failed: %v", err)
			} else {
				logger.InfoTag("HTTP", "server shut down gracefully")
			}
		}()

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorTag("HTTP", "server failed: %v", err)
			return err
		}
		return nil
	})

	return httpServer, nil
}

func waitForShutdown(
	ctx context.Context,
	cancel context.CancelFunc,
	logger *platformlogging.Logger,
	g *errgroup.Group,
) error {
	<-ctx.Done()
	logger.InfoTag("BOOT", "received shutdown signal, cleaning up")

	cancel()

	done := make(chan error, 1)
	go func() {
		done <- g.Wait()
	}()

	select {
	case err := <-done:
		if err != nil {
			logger.ErrorTag("BOOT", "error during shutdown: %v", err)
			return err
		}
		logger.InfoTag("BOOT", "all services stopped")
	case <-time.After(15 * time.Second):
		logger.ErrorTag("BOOT", "shutdown timed out, forcing exit")
		return errors.New("shutdown timed out")
	}
	return nil
}
