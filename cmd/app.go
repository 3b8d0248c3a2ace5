package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/matheuskafuri/techradar/internal/ai"
	"github.com/matheuskafuri/techradar/internal/config"
	"github.com/matheuskafuri/techradar/internal/feed"
	"github.com/matheuskafuri/techradar/internal/logging"
	"github.com/matheuskafuri/techradar/internal/source"
	"github.com/matheuskafuri/techradar/internal/store"
	"github.com/matheuskafuri/techradar/internal/topic"
	"github.com/matheuskafuri/techradar/internal/tui"
	"github.com/matheuskafuri/techradar/internal/update"
	"github.com/matheuskafuri/techradar/internal/validate"
)

const queryLimit = tui.QueryLimit

var errEmptyQuery = errors.New("query cannot be empty")

// services is everything a command needs to talk to the model.
type services struct {
	cfg       *config.Config
	log       *zap.Logger
	source    *source.Source
	validator *validate.Validator
}

func setup(ctx context.Context) (*services, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	level := cfg.Log.Level
	if flagLogLevel != "" {
		level = flagLogLevel
	}
	log, err := logging.New(level, cfg.LogPath())
	if err != nil {
		return nil, err
	}

	if !cfg.AIEnabled() {
		return nil, fmt.Errorf("no API key: set ai.api_key in %s or export TECHRADAR_API_KEY", config.DefaultConfigPath())
	}
	provider, err := ai.New(ctx, cfg.AI, cfg.AIKey())
	if err != nil {
		return nil, fmt.Errorf("creating AI provider: %w", err)
	}

	grounding := feed.NewGrounding(nil, cfg.EnabledSources(), cfg.GetMaxHeadlines(), log)
	src := source.New(provider,
		source.WithBatchSize(cfg.BatchSize()),
		source.WithStreaming(cfg.StreamingEnabled()),
		source.WithHeadlines(grounding.Headlines),
		source.WithLogger(log),
	)

	log.Info("techradar starting",
		zap.String("version", version),
		zap.String("provider", provider.Name()),
		zap.Strings("grounding", cfg.SourceNames()),
	)
	return &services{
		cfg:       cfg,
		log:       log,
		source:    src,
		validator: validate.New(provider, log),
	}, nil
}

func (s *services) newStore(tab topic.Key) *store.Store {
	return store.New(s.source, s.validator,
		store.WithPageSize(s.cfg.PageSize()),
		store.WithLogger(s.log),
		store.WithTab(tab),
	)
}

func (s *services) close() {
	_ = s.log.Sync()
}

// resolveTab picks the launch tab: the flag wins over the config.
func resolveTab(flag, configured string) (topic.Key, error) {
	name := flag
	if name == "" {
		name = configured
	}
	if name == "" {
		return topic.All()[0], nil
	}
	return topic.Parse(name)
}

type appOpts struct {
	browse bool
	query  string
}

func runApp(ctx context.Context, opts appOpts) error {
	// Check for updates while the rest starts up
	updates := make(chan *update.Result, 1)
	go func() { updates <- update.Check(ctx, version) }()

	svc, err := setup(ctx)
	if err != nil {
		return err
	}
	defer svc.close()

	tab, err := resolveTab(flagTab, svc.cfg.DefaultTab)
	if err != nil {
		return err
	}
	if opts.query != "" {
		tab = topic.Custom
	}

	ctx, cancel := context.WithCancel(ctx)
	st := svc.newStore(tab)
	defer func() {
		// Abandon whatever is still loading before returning
		cancel()
		st.Wait()
	}()

	runOpts := tui.RunOpts{
		Store:      st,
		BrowseMode: opts.browse,
		Query:      opts.query,
	}
	select {
	case res := <-updates:
		if res != nil {
			runOpts.UpdateVersion = res.LatestVersion
			runOpts.UpdateURL = res.URL
		}
	case <-time.After(time.Second):
	}

	return tui.Run(ctx, runOpts)
}
