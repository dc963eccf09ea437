package cmd

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/vacancy-bot/internal/headhunter"
	"github.com/spigell/vacancy-bot/internal/logger"
	"github.com/spigell/vacancy-bot/internal/search"
	"github.com/spigell/vacancy-bot/internal/secrets"
	"github.com/spigell/vacancy-bot/internal/sources"
	"github.com/spigell/vacancy-bot/internal/sources/getmatch"
	"github.com/spigell/vacancy-bot/internal/sources/habr"
	"github.com/spigell/vacancy-bot/internal/sources/linkedin"
	"github.com/spigell/vacancy-bot/internal/store"
)

// components are shared by every command that works with filters.
type components struct {
	store  *store.Store
	search *search.Service
}

func (c *components) Close() error {
	return c.store.Close()
}

func buildComponents(ctx context.Context, log *zap.Logger, config *Config) (*components, error) {
	backend, err := store.OpenBackend(ctx, log, config.Store)
	if err != nil {
		return nil, fmt.Errorf("opening filter store: %w", err)
	}
	st := store.New(ctx, log, backend)

	clients, err := buildClients(log, config)
	if err != nil {
		st.Close()
		return nil, err
	}

	pacing, err := parseDuration(config.Search.Pacing, sources.DefaultPacing)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("search.pacing: %w", err)
	}

	aggregator := sources.NewAggregator(log, clients, pacing, config.Search.DaysBack)
	log.Info("sources enabled", zap.Any("sources", aggregator.Sources()))

	return &components{
		store:  st,
		search: search.New(log, st, aggregator, config.Search.MaxResults),
	}, nil
}

func buildClients(log *zap.Logger, config *Config) ([]sources.Client, error) {
	timeout, err := parseDuration(config.Search.Timeout, sources.DefaultTimeout)
	if err != nil {
		return nil, fmt.Errorf("search.timeout: %w", err)
	}
	userAgent := config.Search.UserAgent

	var clients []sources.Client
	cfg := config.Sources

	if hh := cfg.HH; hh == nil || !hh.Disabled {
		var url string
		var maxPages int
		if hh != nil {
			url, maxPages = hh.URL, hh.MaxPages
		}
		requester := sources.NewRequester(logger.WithSource(log, "hh"), userAgent, "", timeout)
		clients = append(clients, headhunter.New(logger.WithSource(log, "hh"), requester, url, maxPages))
	}

	if c := cfg.Habr; c == nil || !c.Disabled {
		sc := orEmpty(c)
		token, err := secrets.LoadOptional(secrets.Source{
			Name:  "habr token",
			Value: sc.Token,
			File:  sc.TokenFile,
		})
		if err != nil {
			return nil, err
		}
		requester := sources.NewRequester(logger.WithSource(log, "habr"), userAgent, token, timeout)
		clients = append(clients, habr.New(logger.WithSource(log, "habr"), requester, sc.URL))
	}

	if c := cfg.GetMatch; c == nil || !c.Disabled {
		sc := orEmpty(c)
		requester := sources.NewRequester(logger.WithSource(log, "getmatch"), userAgent, "", timeout)
		clients = append(clients, getmatch.New(logger.WithSource(log, "getmatch"), requester, sc.URL))
	}

	if c := cfg.LinkedIn; c != nil && !c.Disabled && c.URL != "" {
		token, err := secrets.LoadOptional(secrets.Source{
			Name:  "linkedin token",
			Value: c.Token,
			File:  c.TokenFile,
		})
		if err != nil {
			return nil, err
		}
		requester := sources.NewRequester(logger.WithSource(log, "linkedin"), userAgent, token, timeout)
		client, err := linkedin.New(logger.WithSource(log, "linkedin"), requester, c.URL)
		if err != nil {
			return nil, err
		}
		clients = append(clients, client)
	} else {
		log.Info("linkedin source disabled", zap.String("hint", "set sources.linkedin.url"))
	}

	if len(clients) == 0 {
		return nil, fmt.Errorf("all sources are disabled")
	}

	return clients, nil
}

func orEmpty(c *SourceConfig) SourceConfig {
	if c == nil {
		return SourceConfig{}
	}
	return *c
}

func parseDuration(s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	return time.ParseDuration(s)
}
