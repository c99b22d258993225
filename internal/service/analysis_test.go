package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-stock-analysis/config"
	"golang-stock-analysis/internal/dto"
	"golang-stock-analysis/pkg/cache"
	"golang-stock-analysis/pkg/logger"
)

func newTestAnalysisService() AnalysisService {
	cfg := &config.Config{
		Cache: config.Cache{
			DefaultExpiration: time.Minute,
			CleanupInterval:   time.Minute,
		},
		Analysis: config.Analysis{
			MaxConcurrency: 2,
			RandomSeed:     42,
		},
	}
	return NewAnalysisService(cfg, logger.NewNop(), cache.NewCache(time.Minute, time.Minute))
}

func servicePriceText(n int) string {
	var b strings.Builder
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		c := 10 + 0.1*float64(i)
		b.WriteString(fmt.Sprintf("%s %.2f %.2f %.2f %.2f %.0f\n",
			day.AddDate(0, 0, i).Format("2006-01-02"), c-0.1, c, c+0.2, c-0.3, 1_000_000.0))
	}
	return b.String()
}

func TestAnalyzeRunsFullAggregation(t *testing.T) {
	svc := newTestAnalysisService()

	res, err := svc.Analyze(context.Background(), dto.AnalyzeRequest{
		Ticker:      "600519",
		CompanyName: "贵州茅台",
		PriceData:   servicePriceText(60),
	})
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, "600519", res.Ticker)
	assert.Equal(t, "贵州茅台", res.CompanyName)
	require.NotNil(t, res.TechnicalAnalysis)
	assert.Empty(t, res.TechnicalAnalysis.Error)
	require.NotNil(t, res.RiskAnalysis)
	assert.Empty(t, res.RiskAnalysis.Error)
	require.NotNil(t, res.InvestmentRecommendation)
	assert.NotEmpty(t, res.InvestmentRecommendation.Rating)
}

func TestAnalyzeServesRepeatsFromCache(t *testing.T) {
	svc := newTestAnalysisService()
	req := dto.AnalyzeRequest{Ticker: "600519", CompanyName: "贵州茅台"}

	first, err := svc.Analyze(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.Analyze(context.Background(), req)
	require.NoError(t, err)
	assert.Same(t, first, second)

	// A different payload for the same ticker is a different analysis.
	other := req
	other.PriceData = servicePriceText(60)
	third, err := svc.Analyze(context.Background(), other)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
}

func TestAnalyzeRequiresTicker(t *testing.T) {
	svc := newTestAnalysisService()

	_, err := svc.Analyze(context.Background(), dto.AnalyzeRequest{Ticker: "  "})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ticker is required")
}

func TestAnalyzeBatchKeepsRequestOrder(t *testing.T) {
	svc := newTestAnalysisService()

	results, err := svc.AnalyzeBatch(context.Background(), dto.BatchAnalyzeRequest{
		Requests: []dto.AnalyzeRequest{
			{Ticker: "600519"},
			{Ticker: "000001"},
			{Ticker: "300750"},
		},
	})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "600519", results[0].Ticker)
	assert.Equal(t, "000001", results[1].Ticker)
	assert.Equal(t, "300750", results[2].Ticker)
}

func TestAnalyzeBatchFailsOnBlankTicker(t *testing.T) {
	svc := newTestAnalysisService()

	_, err := svc.AnalyzeBatch(context.Background(), dto.BatchAnalyzeRequest{
		Requests: []dto.AnalyzeRequest{
			{Ticker: "600519"},
			{Ticker: " "},
		},
	})
	require.Error(t, err)
}

func TestRenderReport(t *testing.T) {
	svc := newTestAnalysisService()

	md, err := svc.RenderReport(context.Background(), dto.AnalyzeRequest{
		Ticker:      "600519",
		CompanyName: "贵州茅台",
		PriceData:   servicePriceText(60),
	})
	require.NoError(t, err)
	assert.Contains(t, md, "# 600519（贵州茅台）增强分析综合报告")
	assert.Contains(t, md, "# 600519（贵州茅台）增强技术分析报告")
	assert.Contains(t, md, "## 🎯 综合评估与投资建议")
}
