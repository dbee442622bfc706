package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/multierr"

	"ircstat/internal/controllers"
	"ircstat/internal/identity"
	"ircstat/internal/parser"
	"ircstat/internal/plugins"
	"ircstat/internal/providers"
	"ircstat/internal/services"
	"ircstat/internal/statistic"
	"ircstat/internal/statistic/interfaces"
	"ircstat/internal/structures"
)

var errNoInputs = errors.New("no input paths given")

type App struct {
	conf     *structures.Config
	flags    *structures.CliFlags
	logger   providers.Logger
	metrics  providers.MetricsProviderInterface
	resolver identity.ResolverInterface
	parser   parser.EventParserInterface
	registry plugins.RegistryInterface
	service  services.AggregationServiceInterface
	files    statistic.FileManagerInterface
	cache    providers.CacheProviderInterface

	scheduler        interfaces.SchedulerInterface
	healthController *controllers.HealthController
	router           providers.RouterProviderInterface

	WebServer *http.Server
}

// RunSummary is what a batch run reports back to the command line.
type RunSummary struct {
	Diagnostics   parser.DiagnosticsSummary
	Conversations int
	Events        int
	Plugins       []string
	Failed        int
	Files         []string
}

func NewApp(
	conf *structures.Config,
	flags *structures.CliFlags,
	logger providers.Logger,
	metrics providers.MetricsProviderInterface,
	resolver identity.ResolverInterface,
	eventParser parser.EventParserInterface,
	registry plugins.RegistryInterface,
	service services.AggregationServiceInterface,
	files statistic.FileManagerInterface,
	cache providers.CacheProviderInterface,
	scheduler interfaces.SchedulerInterface,
	healthController *controllers.HealthController,
	router providers.RouterProviderInterface,
) *App {
	return &App{
		conf:             conf,
		flags:            flags,
		logger:           logger,
		metrics:          metrics,
		resolver:         resolver,
		parser:           eventParser,
		registry:         registry,
		service:          service,
		files:            files,
		cache:            cache,
		scheduler:        scheduler,
		healthController: healthController,
		router:           router,
	}
}

// build parses the inputs and aggregates them with every loaded plugin. It
// fails only when nothing usable came out of it.
func (a *App) build(ctx context.Context) (*RunSummary, []*services.Report, error) {
	if len(a.flags.Inputs) == 0 {
		return nil, nil, errNoInputs
	}

	a.logger.Infof(providers.TypeApp, "Starting %s on %d input paths", a.conf.AppName, len(a.flags.Inputs))

	conversations, err := a.parser.Discover(ctx, a.flags.Inputs)
	if err != nil {
		return nil, nil, err
	}

	loaded := a.registry.Load(plugins.Deps{Resolver: a.resolver, Logger: a.logger}, a.conf.Plugins.Blacklist)
	reports, aggErr := a.service.Run(ctx, loaded, conversations)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, nil, ctxErr
	}

	summary := &RunSummary{
		Diagnostics:   a.parser.Diagnostics(),
		Conversations: conversations.Len(),
		Events:        conversations.EventCount(),
		Failed:        len(multierr.Errors(aggErr)),
	}
	for _, r := range reports {
		summary.Plugins = append(summary.Plugins, r.Plugin)
	}

	if len(loaded) > 0 && len(reports) == 0 {
		return summary, nil, fmt.Errorf("every plugin failed: %w", aggErr)
	}
	return summary, reports, nil
}

// Run is the batch mode: parse, aggregate, write one report file per plugin.
func (a *App) Run(ctx context.Context) (*RunSummary, error) {
	summary, reports, err := a.build(ctx)
	if err != nil {
		return summary, err
	}

	summary.Files, err = a.files.SaveReports(a.conf.Output.Dir, reports)
	if err != nil {
		return summary, fmt.Errorf("export: %w", err)
	}

	if a.conf.Metrics.Textfile != "" {
		if err := a.metrics.WriteTextfile(a.conf.Metrics.Textfile); err != nil {
			a.logger.Errorf(providers.TypeApp, "Metrics textfile error: %s", err)
		}
	}

	d := summary.Diagnostics
	a.logger.Infof(providers.TypeApp, "Done: %d conversations, %d events, %d reports (%d plugins failed); lines matched=%d unmatched=%d ignored=%d invalid=%d",
		summary.Conversations, summary.Events, len(summary.Files), summary.Failed,
		d.LinesMatched, d.LinesUnmatched, d.LinesIgnored, d.LinesInvalid)
	return summary, nil
}

// Handler assembles the API routes behind the metrics middleware plus the
// infrastructure endpoints.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", a.healthController.Health)
	if a.conf.Metrics.Enabled {
		mux.Handle("/metrics", a.metrics.Handler())
	}
	mux.Handle("/", providers.MetricsMiddleware(a.metrics, a.router.Paths(), a.router.Handler()))
	return mux
}

// Serve builds the reports, or loads them from a previous run, and serves
// them until ctx is cancelled. Reports built from logs are rebuilt on the
// refresh interval.
func (a *App) Serve(ctx context.Context) error {
	fromLogs := a.flags.FromDir == ""
	if !fromLogs {
		reports, err := a.files.LoadReports(a.flags.FromDir)
		if err != nil {
			return fmt.Errorf("load reports: %w", err)
		}
		a.service.PutReports(reports)
	} else {
		if _, _, err := a.build(ctx); err != nil {
			return err
		}
		a.scheduler.Init(ctx, a.rebuild)
	}

	a.WebServer = &http.Server{
		Addr:         a.conf.WebServer.Host + ":" + strconv.Itoa(a.conf.WebServer.Port),
		Handler:      a.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		a.logger.Infof(providers.TypeApp, "Listening HTTP clients on %s:%d", a.conf.WebServer.Host, a.conf.WebServer.Port)
		if err := a.WebServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Infof(providers.TypeApp, "Shutdown signal received")
	case err := <-serverErr:
		a.scheduler.Stop()
		return fmt.Errorf("server error: %w", err)
	}

	a.scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.WebServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if fromLogs && a.conf.Refresh.Persist {
		if err := a.scheduler.Persist(); err != nil {
			return err
		}
	}
	a.logger.Infof(providers.TypeApp, "gracefully stopped")
	return nil
}

// rebuild replaces the served reports with a fresh build. Cached bodies of
// the previous generation are dropped with it; memoized nicks stay.
func (a *App) rebuild(ctx context.Context) error {
	if _, _, err := a.build(ctx); err != nil {
		return err
	}
	n := a.cache.Evict(controllers.CachePrefix)
	a.logger.Debugf(providers.TypeApp, "Evicted %d cached responses", n)
	return nil
}

func (a *App) Close() {
	a.files.Close()
	a.logger.Close()
}
