package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"golang-stock-analysis/config"
	"golang-stock-analysis/internal/analyzer"
	"golang-stock-analysis/internal/dto"
	"golang-stock-analysis/internal/report"
	"golang-stock-analysis/pkg/cache"
	"golang-stock-analysis/pkg/logger"
	"golang-stock-analysis/pkg/utils"
)

// AnalysisService runs the indicator engine for the API and CLI callers.
type AnalysisService interface {
	Analyze(ctx context.Context, req dto.AnalyzeRequest) (*dto.AggregateResult, error)
	AnalyzeBatch(ctx context.Context, req dto.BatchAnalyzeRequest) ([]*dto.AggregateResult, error)
	RenderReport(ctx context.Context, req dto.AnalyzeRequest) (string, error)
}

type analysisService struct {
	cfg        *config.Config
	log        *logger.Logger
	cache      cache.Cache
	aggregator *analyzer.Aggregator
}

func NewAnalysisService(
	cfg *config.Config,
	log *logger.Logger,
	inmemoryCache cache.Cache,
) AnalysisService {
	aggCfg := analyzer.DefaultConfig()
	aggCfg.Fundamentals.AllowSynthetic = cfg.Analysis.AllowSyntheticData
	aggCfg.Risk.AllowSynthetic = cfg.Analysis.AllowSyntheticData
	if cfg.Analysis.RandomSeed != 0 {
		aggCfg.Risk.RandomSeed = cfg.Analysis.RandomSeed
	}
	return &analysisService{
		cfg:        cfg,
		log:        log,
		cache:      inmemoryCache,
		aggregator: analyzer.NewAggregator(aggCfg, log),
	}
}

// Analyze runs the full aggregation for one request. Identical requests
// inside the cache window are served from memory.
func (s *analysisService) Analyze(ctx context.Context, req dto.AnalyzeRequest) (*dto.AggregateResult, error) {
	if strings.TrimSpace(req.Ticker) == "" {
		return nil, fmt.Errorf("ticker is required")
	}

	key := analysisCacheKey(req)
	if cached, found := cache.GetTyped[*dto.AggregateResult](s.cache, key); found {
		s.log.DebugContext(ctx, "analysis served from cache",
			logger.StringField("ticker", req.Ticker))
		return cached, nil
	}

	if s.cfg.Analysis.TimeoutDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Analysis.TimeoutDuration)
		defer cancel()
	}

	result := s.aggregator.ComprehensiveAnalysis(ctx, analyzer.Input{
		Ticker:           req.Ticker,
		CompanyName:      req.CompanyName,
		PriceText:        req.PriceData,
		FundamentalsText: req.FundamentalsData,
		NewsText:         req.NewsData,
		MarketText:       req.MarketData,
	})
	s.cache.Set(key, result, s.cfg.Cache.DefaultExpiration)

	s.log.InfoContext(ctx, "analysis completed",
		logger.StringField("ticker", req.Ticker),
		logger.StringField("rating", result.InvestmentRecommendation.Rating),
		logger.Float64Field("overall_score", result.ComprehensiveSummary.OverallScore))
	return result, nil
}

// AnalyzeBatch fans the requests out across a bounded worker group and
// returns the results in request order.
func (s *analysisService) AnalyzeBatch(ctx context.Context, req dto.BatchAnalyzeRequest) ([]*dto.AggregateResult, error) {
	results := make([]*dto.AggregateResult, len(req.Requests))

	group, groupCtx := errgroup.WithContext(ctx)
	if s.cfg.Analysis.MaxConcurrency > 0 {
		group.SetLimit(s.cfg.Analysis.MaxConcurrency)
	}

	s.log.DebugContext(ctx, "start batch analysis",
		logger.IntField("total_requests", len(req.Requests)))

	for i, r := range req.Requests {
		if !utils.ShouldContinue(groupCtx, s.log) {
			break
		}
		group.Go(func() error {
			res, err := s.Analyze(groupCtx, r)
			if err != nil {
				s.log.WarnContext(groupCtx, "batch item failed",
					logger.StringField("ticker", r.Ticker), logger.ErrorField(err))
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// RenderReport runs the analysis and renders the aggregate Markdown
// document.
func (s *analysisService) RenderReport(ctx context.Context, req dto.AnalyzeRequest) (string, error) {
	result, err := s.Analyze(ctx, req)
	if err != nil {
		return "", err
	}
	return report.FormatComprehensiveReport(result), nil
}

// analysisCacheKey folds the whole request into the key so same-ticker
// requests with different payloads never collide.
func analysisCacheKey(req dto.AnalyzeRequest) string {
	parts := []string{
		req.Ticker,
		req.CompanyName,
		req.PriceData,
		req.FundamentalsData,
		req.NewsData,
		req.MarketData,
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return "analysis:" + hex.EncodeToString(sum[:])
}
