package cmd

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vitaliisemenov/netgate/internal/api"
	"github.com/vitaliisemenov/netgate/internal/cache"
	"github.com/vitaliisemenov/netgate/internal/config"
	"github.com/vitaliisemenov/netgate/internal/core/domain"
	"github.com/vitaliisemenov/netgate/internal/core/resilience"
	"github.com/vitaliisemenov/netgate/internal/inventory"
	"github.com/vitaliisemenov/netgate/internal/orders"
	"github.com/vitaliisemenov/netgate/internal/resilientclient"
	"github.com/vitaliisemenov/netgate/internal/tenant"
	"github.com/vitaliisemenov/netgate/internal/workflow"
	"github.com/vitaliisemenov/netgate/pkg/logger"
	"github.com/vitaliisemenov/netgate/pkg/metrics"
)

// build wires every collaborator in dependency order: logger, transport,
// breaker, retry policy, degradation cache, metrics, resilient client,
// tenant mapper, tenant access, fresh cache, order processor registry,
// workflow store, order service and HTTP handlers. The router is built
// from the handlers by runServe.
func build(cfg *config.Config) (*slog.Logger, *api.Handlers, error) {
	log := logger.New(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		Filename:   cfg.Log.Filename,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	})

	var transport *inventory.Client
	if cfg.Inventory.Token != "" {
		var err error
		transport, err = inventory.New(cfg.Inventory.URL, cfg.Inventory.Token, cfg.Inventory.Timeout)
		if err != nil {
			return nil, nil, err
		}
	} else {
		log.Warn("INVENTORY_TOKEN unset: upstream integration disabled, health/metrics still serve")
	}

	breaker := resilience.NewCircuitBreaker(resilience.BreakerConfig{
		FailureThreshold: cfg.Breaker.FailureThreshold,
		SuccessThreshold: cfg.Breaker.SuccessThreshold,
		Cooldown:         cfg.Breaker.Cooldown,
	})

	retryPolicy := resilience.RetryPolicy{
		MaxAttempts:  cfg.Retry.MaxAttempts,
		InitialDelay: cfg.Retry.InitialDelay,
		MaxDelay:     cfg.Retry.MaxDelay,
		Multiplier:   cfg.Retry.Multiplier,
		Jitter:       cfg.Retry.Jitter,
		Logger:       log,
	}

	degradation := cache.NewDegradation(cache.DegradationConfig{TTL: cfg.Degradation.TTL})

	promReg := prometheus.NewRegistry()
	metricsReg := metrics.NewRegistry(promReg)

	breaker.OnStateChange(func(_, to resilience.State) {
		metricsReg.SetBreakerState("inventory", int(to))
	})

	resilientClient := resilientclient.New(transport, breaker, retryPolicy, degradation, metricsReg, log)

	mapper := tenant.NewMapper()
	for appTenant, inventoryTenant := range cfg.Tenants {
		mapper.Register(appTenant, inventoryTenant)
	}
	if len(cfg.Tenants) == 0 {
		log.Warn("no entries under config tenants: every app-tenant request will be rejected as unauthorized")
	}

	access := tenant.NewAccess(resilientClient, mapper)

	cacheName := cfg.Fresh.Backend
	freshCfg := cache.FreshConfig{
		DefaultTTL:     cfg.Fresh.DefaultTTL,
		MaxSize:        cfg.Fresh.MaxSize,
		Strategy:       cache.InvalidationStrategy(cfg.Fresh.Strategy),
		MetricsEnabled: cfg.Fresh.MetricsEnabled,
		OnEvent: func(e cache.CacheEvent) {
			switch e {
			case cache.EventHit:
				metricsReg.RecordCacheHit(cacheName)
			case cache.EventMiss:
				metricsReg.RecordCacheMiss(cacheName)
			case cache.EventPut:
				metricsReg.RecordCachePut(cacheName)
			case cache.EventEvict:
				metricsReg.RecordCacheEvict(cacheName)
			case cache.EventInvalidate:
				metricsReg.RecordCacheInvalidation(cacheName)
			}
		},
	}
	switch cfg.Fresh.Backend {
	case "redis":
		redisFresh, err := cache.NewRedisFresh(cache.RedisConfig{
			Addr:     cfg.Fresh.RedisAddr,
			Password: cfg.Fresh.RedisPassword,
			DB:       cfg.Fresh.RedisDB,
		}, freshCfg, log)
		if err != nil {
			return nil, nil, err
		}
		access = access.WithRedisCache(redisFresh)
	default:
		access = access.WithMemoryCache(cache.NewFresh(freshCfg))
	}

	registry := orders.NewRegistry("site")
	registry.Register(orders.NewSiteProcessor(domain.NewEnricher()))

	workflows := workflow.NewManager()
	orderSvc := orders.NewService(registry, workflows, mapper, access, nil)

	handlers := api.NewHandlers(resilientClient, orderSvc, access, workflows, metricsReg)

	return log, handlers, nil
}
