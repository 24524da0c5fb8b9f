package cmd

import (
	"fmt"
	"strings"

	"github.com/go-logr/logr"

	"github.com/Rorical/RoriAtlas/internal/config"
	"github.com/Rorical/RoriAtlas/internal/core"
	"github.com/Rorical/RoriAtlas/internal/eventbus"
	"github.com/Rorical/RoriAtlas/internal/schema"
	"github.com/Rorical/RoriAtlas/internal/tools"
)

// loadProfile loads the config and applies --profile
func loadProfile() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if profileFlag != "" {
		if err := cfg.UseProfile(profileFlag); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// newEventBus makes the bus the terminal view reads. Dropped events are
// logged rather than failing the run.
func newEventBus(logger logr.Logger) *eventbus.EventBus {
	bus := eventbus.NewEventBus(64)
	bus.SetErrorCallback(func(err eventbus.EventBusError) {
		logger.V(1).Info("run event dropped", "operation", err.Operation, "error", err.Err.Error())
	})
	return bus
}

// buildLoop wires the model, the search tool and the validator from cfg.
// Credentials are handed to constructors here and nowhere else.
func buildLoop(cfg *config.Config, logger logr.Logger, bus *eventbus.EventBus, maxToolCalls int) (*core.Loop, error) {
	if missing := cfg.Missing(); len(missing) > 0 {
		return nil, fmt.Errorf("profile '%s' is not configured: missing %s (run: roriatlas profile edit %s)",
			cfg.ActiveProfile, strings.Join(missing, ", "), cfg.ActiveProfile)
	}

	search := tools.NewTavily(tools.TavilyOptions{
		APIKey:     cfg.GetSearchAPIKey(),
		Depth:      cfg.GetSearchDepth(),
		MaxResults: cfg.GetSearchMaxResults(),
		Logger:     logger.WithName("tavily"),
	})

	registry := tools.NewRegistry()
	registry.Register(tools.NewSearchTool(search))

	invoker, err := core.NewOpenAIInvoker(
		core.NewOpenAIClient(cfg.GetAPIKey(), cfg.GetBaseURL()),
		registry,
		core.InvokerOptions{
			Model:            cfg.GetModel(),
			StructuredOutput: cfg.StructuredOutput(),
			Logger:           logger.WithName("model"),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize model: %w", err)
	}

	if maxToolCalls <= 0 {
		maxToolCalls = cfg.GetMaxToolCalls()
	}

	return core.NewLoop(invoker, registry, schema.NewValidator(), core.Options{
		MaxToolCalls: maxToolCalls,
		Logger:       logger.WithName("loop"),
		Bus:          bus,
	}), nil
}
