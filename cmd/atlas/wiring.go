package main

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"costwise-hq/atlas/pkg/accounts"
	"costwise-hq/atlas/pkg/aggregate"
	"costwise-hq/atlas/pkg/budget"
	"costwise-hq/atlas/pkg/budget/storage"
	"costwise-hq/atlas/pkg/collectors"
	"costwise-hq/atlas/pkg/collectors/aws"
	"costwise-hq/atlas/pkg/collectors/azure"
	"costwise-hq/atlas/pkg/collectors/gcp"
	"costwise-hq/atlas/pkg/collectors/ncp"
	"costwise-hq/atlas/pkg/config"
	"costwise-hq/atlas/pkg/costs"
	"costwise-hq/atlas/pkg/currency"
	"costwise-hq/atlas/pkg/freetier"
	"costwise-hq/atlas/pkg/orchestrator"
	"costwise-hq/atlas/pkg/telemetry/logging"
	"costwise-hq/atlas/pkg/telemetry/metrics"
)

// app bundles the wired engine components shared by the run, costs,
// and check-alerts commands.
type app struct {
	cfg       *config.Config
	converter *currency.Converter
	registry  *collectors.Registry
	store     budget.Store
	budgets   *budget.Manager
	orch      *orchestrator.Orchestrator
	metrics   *metrics.Collector
}

// close releases the app's resources, currently just the settings
// store.
func (a *app) close() {
	if a.store != nil {
		_ = a.store.Close()
	}
}

// buildApp wires the full engine from configuration: currency
// converter, provider collectors, account directory, aggregation
// engine, free-tier tracker, budget store and manager, and the
// orchestrator on top. withMetrics controls whether a Prometheus
// registry is created; the one-shot commands skip it.
func buildApp(cfg *config.Config, withMetrics bool) (*app, error) {
	converter, err := buildConverter(cfg)
	if err != nil {
		return nil, err
	}

	registry, err := buildRegistry(cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(cfg)
	if err != nil {
		return nil, err
	}

	budgets := budget.NewManager(store, logging.Component("budget"))

	var collector *metrics.Collector
	if withMetrics && cfg.Telemetry.Metrics.IsEnabled() {
		collector = metrics.NewCollector(&cfg.Telemetry.Metrics, prometheus.NewRegistry())
	}

	orch, err := orchestrator.New(orchestrator.Config{
		Registry:        registry,
		Directory:       accounts.NewStaticDirectory(cfg.AccountRefs()),
		Engine:          aggregate.NewEngine(converter),
		Tracker:         freetier.NewTracker(buildBaselines(cfg)),
		Budgets:         budgets,
		Converter:       converter,
		Metrics:         collector,
		Logger:          logging.Component("orchestrator"),
		DisplayCurrency: cfg.Currency.Display,
		Options: orchestrator.Options{
			MaxConcurrentFetches: cfg.Orchestrator.MaxConcurrentFetches,
			FetchTimeout:         cfg.Orchestrator.FetchTimeout,
			RequestTimeout:       cfg.Orchestrator.RequestTimeout,
		},
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &app{
		cfg:       cfg,
		converter: converter,
		registry:  registry,
		store:     store,
		budgets:   budgets,
		orch:      orch,
		metrics:   collector,
	}, nil
}

func buildConverter(cfg *config.Config) (*currency.Converter, error) {
	rates := currency.DefaultRates()
	if cfg.Currency.RatesFile != "" {
		loaded, err := currency.LoadRatesFile(cfg.Currency.RatesFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load exchange rates: %w", err)
		}
		rates = loaded
	}

	converter := currency.NewConverter(rates)
	if !converter.Supported(cfg.Currency.Display) {
		return nil, fmt.Errorf("display currency %q has no exchange rate", cfg.Currency.Display)
	}
	return converter, nil
}

// buildRegistry creates one collector per configured provider. A
// provider without an endpoint is skipped with a warning so a partially
// configured deployment still serves the providers it has.
func buildRegistry(cfg *config.Config) (*collectors.Registry, error) {
	registry := collectors.NewRegistry()

	for _, provider := range costs.Providers {
		cc, ok := cfg.Collectors[string(provider)]
		if !ok || !cc.IsEnabled() {
			continue
		}
		if cc.Endpoint == "" {
			slog.Warn("collector has no endpoint configured, skipping",
				"provider", provider,
			)
			continue
		}

		clientConfig := collectors.ClientConfig{
			BaseURL:         cc.Endpoint,
			CredentialsFile: cc.CredentialsFile,
			Timeout:         cc.Timeout,
		}

		switch provider {
		case costs.ProviderAWS:
			client, err := aws.NewClient(clientConfig)
			if err != nil {
				return nil, err
			}
			registry.Register(aws.NewCollector(client))
		case costs.ProviderAzure:
			client, err := azure.NewClient(clientConfig)
			if err != nil {
				return nil, err
			}
			registry.Register(azure.NewCollector(client))
		case costs.ProviderGCP:
			client, err := gcp.NewClient(clientConfig)
			if err != nil {
				return nil, err
			}
			registry.Register(gcp.NewCollector(client))
		case costs.ProviderNCP:
			client, err := ncp.NewClient(clientConfig)
			if err != nil {
				return nil, err
			}
			registry.Register(ncp.NewCollector(client))
		}
	}

	return registry, nil
}

func buildStore(cfg *config.Config) (budget.Store, error) {
	switch cfg.Budget.Backend {
	case "sqlite":
		store, err := storage.NewSQLiteStore(cfg.Budget.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open budget store: %w", err)
		}
		return store, nil
	case "memory":
		return storage.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported budget backend: %s", cfg.Budget.Backend)
	}
}

func buildBaselines(cfg *config.Config) freetier.Baselines {
	baselines := freetier.DefaultBaselines()
	if cfg.FreeTier.AzureMonthlyHours > 0 {
		baselines.AzureMonthlyHours = cfg.FreeTier.AzureMonthlyHours
	}
	if cfg.FreeTier.GCPCreditAmount > 0 {
		baselines.GCPCreditAmount = cfg.FreeTier.GCPCreditAmount
	}
	if cfg.FreeTier.GCPCreditCurrency != "" {
		baselines.GCPCreditCurrency = cfg.FreeTier.GCPCreditCurrency
	}
	return baselines
}
