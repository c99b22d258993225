package service

import (
	"golang-stock-analysis/config"
	"golang-stock-analysis/pkg/cache"
	"golang-stock-analysis/pkg/logger"
)

type Service struct {
	AnalysisService AnalysisService
}

func NewService(
	cfg *config.Config,
	log *logger.Logger,
	inmemoryCache cache.Cache,
) *Service {
	return &Service{
		AnalysisService: NewAnalysisService(cfg, log, inmemoryCache),
	}
}
