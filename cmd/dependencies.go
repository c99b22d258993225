package cmd

import (
	"context"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"golang-stock-analysis/config"
	"golang-stock-analysis/pkg/cache"
	"golang-stock-analysis/pkg/httpclient"
	"golang-stock-analysis/pkg/logger"
)

type AppDependency struct {
	cfg       *config.Config
	log       *logger.Logger
	validator *goValidator.Validate
	echo      *echo.Echo
	cache     cache.Cache
	fetcher   httpclient.HTTPClient
}

func NewAppDependency(ctx context.Context) (*AppDependency, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		return nil, err
	}

	return &AppDependency{
		cfg:       cfg,
		log:       log,
		validator: goValidator.New(),
		echo:      echo.New(),
		cache:     cache.NewCache(cfg.Cache.DefaultExpiration, cfg.Cache.CleanupInterval),
		fetcher:   httpclient.New(cfg.Fetcher.TimeoutDuration, cfg.Fetcher.UserAgent),
	}, nil
}

func (d *AppDependency) Close() error {
	d.log.Info("Closing app dependency")
	// Sync can fail on stdout sinks, that is not a shutdown error.
	_ = d.log.Sync()
	return nil
}
