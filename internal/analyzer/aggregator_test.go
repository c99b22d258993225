package analyzer

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-stock-analysis/internal/dto"
	"golang-stock-analysis/pkg/logger"
)

func TestAggregatorRatingLadder(t *testing.T) {
	tests := []struct {
		name     string
		score    float64
		rating   string
		position string
	}{
		{name: "strong buy at 80", score: 80, rating: dto.RatingStrongBuy, position: dto.PositionHeavy},
		{name: "buy just below 80", score: 79.99, rating: dto.RatingBuy, position: dto.PositionStandard},
		{name: "buy at 65", score: 65, rating: dto.RatingBuy, position: dto.PositionStandard},
		{name: "hold at 50", score: 50, rating: dto.RatingHold, position: dto.PositionLight},
		{name: "reduce just below 50", score: 49.99, rating: dto.RatingReduce, position: dto.PositionReduce},
		{name: "reduce at 35", score: 35, rating: dto.RatingReduce, position: dto.PositionReduce},
		{name: "sell below 35", score: 34.99, rating: dto.RatingSell, position: dto.PositionExit},
	}
	g := NewAggregator(DefaultConfig(), logger.NewNop())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := g.recommend(&dto.AggregateResult{}, &dto.ComprehensiveSummary{OverallScore: tt.score})
			assert.Equal(t, tt.rating, rec.Rating)
			assert.Equal(t, tt.position, rec.PositionSize)
			assert.Equal(t, dto.RiskLevelMedium, rec.RiskLevel)
			assert.Equal(t, "中期（3-6个月）", rec.TimeHorizon)
			assert.Nil(t, rec.TargetPrice)
			assert.Len(t, rec.ActionItems, 3)
		})
	}
}

func TestAggregatorHighRiskDowngradesBuy(t *testing.T) {
	g := NewAggregator(DefaultConfig(), logger.NewNop())
	result := &dto.AggregateResult{
		RiskAnalysis: &dto.RiskResult{
			ComprehensiveRisk: &dto.ComprehensiveRisk{OverallRiskScore: 75, RiskLevel: dto.LevelHigh},
			RiskAlerts: []dto.RiskAlert{
				{Description: "波动过大"},
				{Description: "流动性不足"},
				{Description: "第三条不应出现"},
			},
		},
	}

	rec := g.recommend(result, &dto.ComprehensiveSummary{OverallScore: 85})

	assert.Equal(t, dto.RatingStrongBuy, rec.Rating)
	assert.Equal(t, dto.PositionLight, rec.PositionSize)
	assert.Equal(t, dto.LevelHigh, rec.RiskLevel)
	require.Len(t, rec.RiskWarnings, 3)
	assert.Equal(t, "投资风险较高，建议谨慎操作", rec.RiskWarnings[0])
	assert.Equal(t, "波动过大", rec.RiskWarnings[1])
	assert.Equal(t, "流动性不足", rec.RiskWarnings[2])
}

func TestAggregatorTimeHorizonFollowsTrend(t *testing.T) {
	tests := []struct {
		trend string
		want  string
	}{
		{trend: "短期上涨趋势", want: "短期（1-3个月）"},
		{trend: "长期下跌趋势", want: "长期（6-12个月）"},
		{trend: "中期震荡整理", want: "中期（3-6个月）"},
	}
	g := NewAggregator(DefaultConfig(), logger.NewNop())

	for _, tt := range tests {
		t.Run(tt.trend, func(t *testing.T) {
			result := &dto.AggregateResult{
				TechnicalAnalysis: &dto.TechnicalResult{
					TrendAnalysis: &dto.TrendAnalysis{OverallTrend: tt.trend},
				},
			}
			rec := g.recommend(result, &dto.ComprehensiveSummary{OverallScore: 55})
			assert.Equal(t, tt.want, rec.TimeHorizon)
		})
	}
}

func TestAggregatorSummaryScores(t *testing.T) {
	g := NewAggregator(DefaultConfig(), logger.NewNop())
	result := &dto.AggregateResult{
		TechnicalAnalysis: &dto.TechnicalResult{
			Signals: map[string]string{
				"ma":        dto.SignalBullish,
				"rsi":       dto.SignalSell,
				"macd":      dto.SignalBullish,
				"bollinger": dto.SignalNeutral,
			},
			TrendAnalysis: &dto.TrendAnalysis{OverallTrend: "短期上涨趋势"},
		},
		FundamentalsAnalysis: &dto.FundamentalsResult{
			FinancialHealth:  &dto.FinancialHealth{HealthScore: 80},
			ValuationMetrics: &dto.ValuationMetrics{ValuationLevel: dto.ValuationUndervalued},
		},
		SentimentAnalysis: &dto.SentimentResult{
			ComprehensiveSentiment: &dto.ComprehensiveSentiment{
				WeightedSentiment: 0.5,
				ConfidenceScore:   0.8,
				OverallSentiment:  dto.SentimentPositive,
			},
		},
		RiskAnalysis: &dto.RiskResult{
			ComprehensiveRisk: &dto.ComprehensiveRisk{OverallRiskScore: 40, RiskLevel: dto.LevelMedium},
		},
	}

	s := g.summarize(result)

	assert.Equal(t, 50.0, s.TechnicalScore)
	assert.Equal(t, 100.0, s.FundamentalsScore)
	assert.InDelta(t, 60.0, s.SentimentScore, 1e-9)
	assert.Equal(t, 60.0, s.RiskScore)
	assert.InDelta(t, 67.5, s.OverallScore, 1e-9)

	assert.Contains(t, s.KeyPoints, "技术面趋势: 短期上涨趋势")
	assert.Contains(t, s.KeyPoints, "估值水平: 低估")
	assert.Contains(t, s.KeyPoints, "市场情绪: 积极")
	assert.Contains(t, s.KeyPoints, "风险水平: 中")
	assert.Equal(t, []string{"基本面健康"}, s.Strengths)
	assert.Empty(t, s.Weaknesses)
}

func TestAggregatorSummaryEmptySignalsDefaultTo50(t *testing.T) {
	g := NewAggregator(DefaultConfig(), logger.NewNop())
	result := &dto.AggregateResult{
		TechnicalAnalysis: &dto.TechnicalResult{Signals: map[string]string{}},
	}

	s := g.summarize(result)

	assert.Equal(t, 50.0, s.TechnicalScore)
	assert.Equal(t, 50.0, s.OverallScore)
}

func TestAggregatorErroredDomainsAreNotScored(t *testing.T) {
	g := NewAggregator(DefaultConfig(), logger.NewNop())
	result := &dto.AggregateResult{
		FundamentalsAnalysis: &dto.FundamentalsResult{Error: "无法解析股票价格数据"},
		RiskAnalysis:         &dto.RiskResult{Error: "股票价格数据不足"},
	}

	s := g.summarize(result)

	assert.Equal(t, 0.0, s.OverallScore)
	assert.Empty(t, s.Strengths)
	assert.Empty(t, s.Weaknesses)
	assert.Empty(t, s.KeyPoints)
}

func TestAggregatorComprehensiveAnalysisAllInputsMissing(t *testing.T) {
	g := NewAggregator(DefaultConfig(), logger.NewNop())

	res := g.ComprehensiveAnalysis(context.Background(), Input{Ticker: "600000"})
	require.NotNil(t, res)

	assert.Equal(t, "600000", res.Ticker)
	assert.Equal(t, "未知公司", res.CompanyName)
	assert.Nil(t, res.TechnicalAnalysis)
	assert.Nil(t, res.SentimentAnalysis)
	require.NotNil(t, res.FundamentalsAnalysis)
	assert.NotEmpty(t, res.FundamentalsAnalysis.Error)
	require.NotNil(t, res.RiskAnalysis)
	assert.NotEmpty(t, res.RiskAnalysis.Error)

	assert.Equal(t, 0.0, res.ComprehensiveSummary.OverallScore)
	assert.Equal(t, dto.RatingSell, res.InvestmentRecommendation.Rating)
	assert.Equal(t, dto.PositionExit, res.InvestmentRecommendation.PositionSize)

	q := res.AnalysisQuality
	assert.Equal(t, 0.0, q.DataCompleteness)
	assert.Equal(t, 0.0, q.AnalysisCoverage)
	assert.Equal(t, dto.GradeAverage, q.OverallQuality)
	assert.Len(t, q.Limitations, 4)
}

func TestAggregatorQualityGradeFollowsCoverage(t *testing.T) {
	tests := []struct {
		name     string
		bars     int
		coverage float64
		grade    string
	}{
		// Price-only requests keep completeness at 25, the grade must
		// still follow how many domains produced a result.
		{name: "three domains covered", bars: 60, coverage: 75, grade: dto.GradeExcellent},
		{name: "two domains covered", bars: 7, coverage: 50, grade: dto.GradeGood},
	}
	g := NewAggregator(DefaultConfig(), logger.NewNop())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			priceText := "当前价格: 112.5\n市盈率: 12\n\n" +
				buildPriceText(zigzagCloses(tt.bars), nil)

			res := g.ComprehensiveAnalysis(context.Background(), Input{
				Ticker:    "600000",
				PriceText: priceText,
			})

			q := res.AnalysisQuality
			assert.Equal(t, 25.0, q.DataCompleteness)
			assert.Equal(t, tt.coverage, q.AnalysisCoverage)
			assert.Equal(t, tt.grade, q.OverallQuality)
		})
	}
}

func TestAggregatorComprehensiveAnalysisFullInputs(t *testing.T) {
	closes := zigzagCloses(60)
	volumes := make([]float64, 60)
	for i := range volumes {
		volumes[i] = 2_000_000
	}
	priceText := "股票代码: 600000\n当前价格: 129.5\n市盈率: 12\n市净率: 1.5\n成交量: 2000000\n\n" +
		buildPriceText(closes, volumes)
	fundamentalsText := "负债权益比: 0.3\n流动比率: 2.0\n速动比率: 1.5\n净资产收益率: 16"
	newsText := strings.Join([]string{
		newsRecord("股价上涨创新高", "公司获得利好消息，业绩超预期", "3小时前", "新华社"),
		newsRecord("重大合同中标公告", "公司成功中标重大项目，合作前景乐观", "5小时前", "证券时报"),
		newsRecord("利好不断股价涨停", "强劲增长推动股价突破前高", "3小时前", "新浪财经"),
	}, "\n\n")
	g := NewAggregator(DefaultConfig(), logger.NewNop())

	res := g.ComprehensiveAnalysis(context.Background(), Input{
		Ticker:           "600000",
		CompanyName:      "测试公司",
		PriceText:        priceText,
		FundamentalsText: fundamentalsText,
		NewsText:         newsText,
		MarketText:       buildPriceText(closes, volumes),
	})

	require.NotNil(t, res.TechnicalAnalysis)
	assert.Empty(t, res.TechnicalAnalysis.Error)
	require.NotNil(t, res.FundamentalsAnalysis)
	assert.Empty(t, res.FundamentalsAnalysis.Error)
	require.NotNil(t, res.SentimentAnalysis)
	assert.Empty(t, res.SentimentAnalysis.Error)
	require.NotNil(t, res.RiskAnalysis)
	assert.Empty(t, res.RiskAnalysis.Error)

	assert.Equal(t, "测试公司", res.CompanyName)
	assert.Greater(t, res.ComprehensiveSummary.OverallScore, 0.0)
	assert.Contains(t, res.ComprehensiveSummary.KeyPoints, "估值水平: 低估")
	assert.NotEmpty(t, res.InvestmentRecommendation.Rating)

	q := res.AnalysisQuality
	assert.Equal(t, 100.0, q.DataCompleteness)
	assert.Equal(t, 100.0, q.AnalysisCoverage)
	assert.Equal(t, dto.GradeExcellent, q.OverallQuality)
	assert.Empty(t, q.Limitations)
}
