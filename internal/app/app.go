// Package app assembles the drafting service from configuration. Both
// binaries build their process through it.
package app

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	ai "github.com/spetersoncode/maildraft"
	"github.com/spetersoncode/maildraft/api"
	"github.com/spetersoncode/maildraft/client"
	"github.com/spetersoncode/maildraft/internal/config"
	"github.com/spetersoncode/maildraft/internal/kafka"
	"github.com/spetersoncode/maildraft/internal/retry"
	"github.com/spetersoncode/maildraft/metrics"
	"github.com/spetersoncode/maildraft/store"
	"github.com/spetersoncode/maildraft/workflow"
)

// App holds the assembled components of one process.
type App struct {
	Config       *config.Config
	Logger       *slog.Logger
	Client       *client.Client
	Orchestrator *workflow.Orchestrator
	Router       *workflow.Router
	Service      *api.Service
	History      workflow.HistoryStore
	Profiles     *store.ProfileCache
	Usage        *metrics.Accumulator
	Registry     *prometheus.Registry

	closers []func()
	done    chan struct{}
}

// Build wires every component described by cfg. Close releases what Build
// opened.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{
		Config: cfg,
		Logger: logger,
		done:   make(chan struct{}),
	}
	a.closers = append(a.closers, func() { close(a.done) })

	a.Registry = prometheus.NewRegistry()
	a.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	prom := metrics.NewPrometheus(a.Registry)

	pricing := pricingFor(cfg.Cost)
	usageOpts := []metrics.Option{metrics.WithObserver(prom)}
	if pricing != nil {
		usageOpts = append(usageOpts, metrics.WithPricing(pricing))
	}
	a.Usage = metrics.New(usageOpts...)

	a.Client = newClient(cfg, logger, a.drainClientEvents())

	var profiles store.ProfileReadWriter
	if cfg.Store.DatabaseURL != "" {
		pg, err := store.OpenPostgres(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, pg.Close)
		if err := pg.Migrate(ctx); err != nil {
			a.Close()
			return nil, err
		}
		a.History = pg
		profiles = pg
		logger.Info("using postgres store")
	} else {
		a.History = store.NewMemoryHistory(cfg.Store.HistoryRetention)
		profiles = store.NewMemoryProfiles()
		logger.Info("using in-memory store")
	}
	a.Profiles = store.NewProfileCache(profiles, cfg.Store.ProfileCacheTTL, cfg.Store.ProfileCacheSize)

	order := cfg.Pipeline.Stages
	if len(order) == 0 {
		order = workflow.DefaultStageOrder
	}
	stages, err := workflow.StagesByName(order, cfg.Pipeline.RefineMinRatio)
	if err != nil {
		a.Close()
		return nil, err
	}

	opts := []workflow.Option{
		workflow.WithStages(stages...),
		workflow.WithHistory(a.History),
		workflow.WithProfiles(a.Profiles),
		workflow.WithObserver(prom),
		workflow.WithUsage(a.Usage),
		workflow.WithLogger(logger),
		workflow.WithHistoryLimit(cfg.Pipeline.HistoryLimit),
		workflow.WithRunTimeout(cfg.Pipeline.RunTimeout),
		workflow.WithPersistTimeout(cfg.Pipeline.PersistTimeout),
	}
	if pricing != nil {
		opts = append(opts, workflow.WithPricing(pricing))
	}
	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.RunsTopic, logger)
		a.closers = append(a.closers, func() {
			if err := producer.Close(); err != nil {
				logger.Warn("failed to close kafka producer", "error", err)
			}
		})
		opts = append(opts, workflow.WithPublisher(producer))
		logger.Info("publishing run records", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.RunsTopic)
	}

	a.Orchestrator = workflow.New(a.Client, opts...)
	a.Router = workflow.NewRouter(a.Orchestrator,
		workflow.WithThreshold(cfg.Pipeline.DiffThreshold),
		workflow.WithLearning(cfg.Pipeline.LearnFromEdits),
	)
	a.Service = api.NewService(a.Orchestrator, a.Router)

	logger.Info("pipeline ready",
		"provider", a.Client.Provider(),
		"model", a.Client.Model(),
		"stages", order,
		"diff_threshold", a.Router.Threshold(),
	)
	return a, nil
}

// Handler returns the HTTP API of the app.
func (a *App) Handler(version string) http.Handler {
	return api.NewServer(a.Service,
		api.WithHistory(a.History),
		api.WithProfiles(a.Profiles),
		api.WithUsage(a.Usage),
		api.WithMetricsHandler(promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{})),
		api.WithLogger(a.Logger),
		api.WithVersion(version),
	).Handler()
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func newClient(cfg *config.Config, logger *slog.Logger, events chan<- client.Event) *client.Client {
	provider, _ := ai.ParseProvider(cfg.LLM.Provider)
	retryCfg := cfg.RetryPolicy()

	cc := client.Config{
		Provider: provider,
		Model:    cfg.LLM.Model,
		APIKeys: client.APIKeys{
			Anthropic: cfg.LLM.AnthropicKey,
			OpenAI:    cfg.LLM.OpenAIKey,
			Google:    cfg.LLM.GoogleKey,
		},
		Retry:           &retryCfg,
		CallTimeout:     cfg.LLM.CallTimeout,
		Temperature:     cfg.LLM.Temperature,
		MaxOutputTokens: cfg.LLM.MaxOutputTokens,
		Events:          events,
		Logger:          logger,
	}
	if cfg.LLM.GoogleKey == "" && cfg.LLM.VertexProject != "" {
		cc.Vertex = &client.Vertex{Project: cfg.LLM.VertexProject, Location: cfg.LLM.VertexLocation}
	}
	return client.New(cc)
}

// drainClientEvents logs retries and failed calls until the app closes.
func (a *App) drainClientEvents() chan<- client.Event {
	ch := make(chan client.Event, 64)
	go func() {
		for {
			select {
			case <-a.done:
				return
			case ev := <-ch:
				a.logClientEvent(ev)
			}
		}
	}()
	return ch
}

func (a *App) logClientEvent(ev client.Event) {
	switch {
	case ev.Type == client.EventRetry && ev.RetryEvent != nil && ev.RetryEvent.Type == retry.EventRetrying:
		a.Logger.Warn("retrying model call", "call", ev)
	case ev.Type == client.EventRequestError:
		a.Logger.Warn("model call failed", "call", ev)
	}
}

// pricingFor returns nil when cost estimation is disabled.
func pricingFor(c config.CostConfig) metrics.PriceFunc {
	if !c.Enabled {
		return nil
	}
	if c.InputPerMillion != nil && c.OutputPerMillion != nil {
		return metrics.FixedPricing(*c.InputPerMillion, *c.OutputPerMillion)
	}
	return metrics.CatalogPricing()
}
