package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-stock-analysis/internal/dto"
	"golang-stock-analysis/pkg/utils"
)

func fullTechnicalResult() *dto.TechnicalResult {
	return &dto.TechnicalResult{
		PriceInfo: &dto.TechnicalPriceInfo{
			CurrentPrice: 12.9,
			PrevClose:    12.8,
			Change:       0.1,
			ChangePct:    0.78,
			High52W:      13.1,
			Low52W:       10.1,
			From52WHigh:  -1.53,
			From52WLow:   27.72,
		},
		MovingAverages: map[string]dto.MovingAverage{
			"MA20": {Value: 11.95, Distance: 7.95, Trend: dto.TrendUp},
			"MA5":  {Value: 12.7, Distance: 1.57, Trend: dto.TrendUp},
		},
		EMA: map[string]dto.ExponentialMA{
			"EMA12": {Value: 12.5, Distance: 3.2},
			"EMA26": {Value: 12.1, Distance: 6.61},
		},
		RSI: &dto.RSIInfo{Value: 100, Signal: dto.RSIOverbought, Trend: "强势"},
		MACD: &dto.MACDInfo{
			Line:      0.35,
			Signal:    0.3,
			Histogram: 0.05,
			Cross:     dto.MACDBullish,
			Momentum:  dto.MomentumIncreasing,
		},
		BollingerBands: &dto.BollingerInfo{
			Upper:    13.2,
			Middle:   12.0,
			Lower:    10.8,
			Width:    20,
			Position: 87.5,
			Squeeze:  dto.SqueezeNo,
		},
		Volume: &dto.VolumeInfo{
			Current: 1290000,
			Avg20D:  1150000,
			Ratio:   1.12,
			Trend:   dto.VolumeTrendIncreasing,
		},
		ATR: &dto.ATRInfo{Value: 0.5, Percentage: 3.88},
		SupportResistance: &dto.SupportResistance{
			Resistance:           13.1,
			Support:              10.7,
			DistanceToResistance: 1.55,
			DistanceToSupport:    17.05,
		},
		Signals: map[string]string{
			"ma":     dto.SignalBullish,
			"rsi":    dto.SignalSell,
			"macd":   dto.SignalBullish,
			"volume": dto.SignalBullish,
		},
		TrendAnalysis: &dto.TrendAnalysis{OverallTrend: "短期上涨趋势", MAAlignment: "多头排列"},
	}
}

func TestFormatTechnicalReportSections(t *testing.T) {
	md := FormatTechnicalReport("600519", "贵州茅台", fullTechnicalResult())

	assert.Contains(t, md, "# 600519（贵州茅台）增强技术分析报告")
	assert.Contains(t, md, "## 📈 精确计算的技术指标")
	assert.Contains(t, md, "- 当前价格: 12.9")
	assert.Contains(t, md, "- 涨跌幅: 0.78%")
	assert.Contains(t, md, "- 距52周高点: -1.53%")
	assert.Contains(t, md, "- MA5: 12.7 (距离: 1.57%, 趋势: up)")
	assert.Contains(t, md, "- EMA12: 12.5 (距离: 3.2%)")
	assert.Contains(t, md, "- RSI值: 100")
	assert.Contains(t, md, "- MACD线: 0.35")
	assert.Contains(t, md, "- 价格位置: 87.5%")
	assert.Contains(t, md, "- 当前成交量: 1,290,000")
	assert.Contains(t, md, "- 20日平均: 1,150,000")
	assert.Contains(t, md, "- ATR值: 0.5")
	assert.Contains(t, md, "- 阻力位: 13.1")
	assert.Contains(t, md, "- 整体趋势: 短期上涨趋势")
	assert.Contains(t, md, "- 均线形态: 多头排列")
	assert.Contains(t, md, "- MA信号: 看涨")
	assert.Contains(t, md, "- RSI信号: 卖出")

	// No bollinger entry in the signals map, the label must not appear.
	assert.NotContains(t, md, "布林带信号")

	// Sections and map entries keep their fixed order.
	assert.Less(t, strings.Index(md, "### 价格信息"), strings.Index(md, "### 移动平均线分析"))
	assert.Less(t, strings.Index(md, "- MA5:"), strings.Index(md, "- MA20:"))
	assert.Less(t, strings.Index(md, "### 布林带"), strings.Index(md, "### 成交量分析"))
	assert.Less(t, strings.Index(md, "### 支撑阻力位"), strings.Index(md, "### 信号与趋势"))
}

func TestFormatTechnicalReportOmitsMissingSections(t *testing.T) {
	r := &dto.TechnicalResult{
		PriceInfo: &dto.TechnicalPriceInfo{CurrentPrice: 10.7, PrevClose: 10.6},
	}
	md := FormatTechnicalReport("000001", "平安银行", r)

	assert.Contains(t, md, "### 价格信息")
	assert.NotContains(t, md, "### MACD指标")
	assert.NotContains(t, md, "### 布林带")
	assert.NotContains(t, md, "### 信号与趋势")
}

func TestFormatTechnicalReportError(t *testing.T) {
	md := FormatTechnicalReport("600519", "贵州茅台", &dto.TechnicalResult{Error: "数据不足，无法计算技术指标"})
	assert.Equal(t, "# 技术分析报告 - 600519\n\n❌ 分析失败: 数据不足，无法计算技术指标", md)

	md = FormatTechnicalReport("600519", "贵州茅台", nil)
	assert.Contains(t, md, "❌ 分析失败: 无分析结果")
}

func TestFormatFundamentalsReport(t *testing.T) {
	r := &dto.FundamentalsResult{
		ValuationMetrics: &dto.ValuationMetrics{
			PERatio:        utils.ToPointer(10.0),
			PBRatio:        utils.ToPointer(1.0),
			DividendYield:  utils.ToPointer(3.5),
			ValuationLevel: dto.ValuationUndervalued,
		},
		FinancialHealth: &dto.FinancialHealth{
			DebtToEquity: utils.ToPointer(0.4),
			CurrentRatio: utils.ToPointer(2.0),
			HealthScore:  80,
			HealthLevel:  dto.GradeExcellent,
		},
		SafetyMetrics: &dto.SafetyMetrics{
			AltmanZScore:   utils.ToPointer(3.2),
			PiotroskiScore: utils.ToPointer(7),
			BankruptcyRisk: "低",
			SafetyLevel:    "安全",
		},
		IndustryComparison: &dto.IndustryComparison{
			IndustryAvgPE:     25,
			IndustryAvgPB:     2.5,
			RelativeValuation: "相对低估",
		},
		DataQuality: &dto.FundamentalsDataQuality{
			Completeness: 100,
			Freshness:    100,
			QualityLevel: dto.GradeExcellent,
		},
		AnalysisDate: "2026-01-02 10:00:00",
	}
	md := FormatFundamentalsReport("600519", "贵州茅台", r)

	assert.Contains(t, md, "# 600519（贵州茅台）增强基本面分析报告")
	assert.Contains(t, md, "## 📊 精确计算的财务指标")
	assert.Contains(t, md, "- **PE比率**: 10")
	assert.Contains(t, md, "- **PEG比率**: N/A")
	assert.Contains(t, md, "- **股息收益率**: 3.5%")
	assert.Contains(t, md, "- **估值水平**: 低估")
	assert.Contains(t, md, "- **负债权益比**: 0.4")
	assert.Contains(t, md, "- **速动比率**: N/A")
	assert.Contains(t, md, "- **健康评分**: 80/100")
	assert.Contains(t, md, "- **Piotroski F-Score**: 7/9")
	assert.Contains(t, md, "- **行业平均PE**: 25")
	assert.Contains(t, md, "- **数据完整性**: 100/100")
	assert.Contains(t, md, "*报告生成时间: 2026-01-02 10:00:00*")
	assert.Contains(t, md, "*数据来源: 增强基本面分析器*")

	// Sections never computed stay out of the report.
	assert.NotContains(t, md, "### 成长性分析")
	assert.NotContains(t, md, "### 盈利能力")
}

func TestFormatFundamentalsReportError(t *testing.T) {
	md := FormatFundamentalsReport("600519", "贵州茅台", &dto.FundamentalsResult{Error: "无法解析股票价格数据"})
	assert.Equal(t, "# 基本面分析报告 - 600519\n\n❌ 分析失败: 无法解析股票价格数据", md)
}

func TestFormatSentimentReport(t *testing.T) {
	r := &dto.SentimentResult{
		NewsCount: 3,
		ComprehensiveSentiment: &dto.ComprehensiveSentiment{
			WeightedSentiment: 1,
			ConfidenceScore:   0.85,
			SentimentStrength: dto.StrengthStrong,
			MarketImpactLevel: dto.LevelHigh,
			OverallSentiment:  dto.SentimentPositive,
		},
		SentimentTrend: &dto.SentimentTrend{
			TrendDirection: dto.TrendStable,
			TrendStrength:  0.12,
			Volatility:     0.3,
			RecentChange:   -0.05,
		},
		MarketAttention: &dto.MarketAttention{
			NewsVolume:           3,
			AttentionLevel:       "中",
			MediaCoverageBreadth: 2,
		},
		HotTopics: &dto.HotTopics{
			KeywordFrequency: map[string]int{"芯片": 4, "政策": 2},
			HotKeywords:      []string{"芯片", "政策"},
		},
		DataQuality: &dto.NewsDataQuality{
			Completeness:      100,
			Timeliness:        50,
			SourceReliability: 80,
			QualityLevel:      dto.GradeGood,
		},
		AnalysisDate: "2026-01-02 10:00:00",
	}
	md := FormatSentimentReport("600519", "贵州茅台", r)

	assert.Contains(t, md, "# 600519（贵州茅台）增强新闻情绪分析报告")
	assert.Contains(t, md, "## 📰 量化情绪指标")
	assert.Contains(t, md, "- **加权情绪分数**: 1.000")
	assert.Contains(t, md, "- **置信度**: 0.850")
	assert.Contains(t, md, "- **近期变化**: -0.050")
	assert.Contains(t, md, "- **趋势描述**: 无")
	assert.Contains(t, md, "- **新闻数量**: 3条")
	assert.Contains(t, md, "- **媒体覆盖广度**: 2家媒体")
	assert.Contains(t, md, "- **热门关键词**: 芯片, 政策")
	assert.Contains(t, md, "- **关键词频次**: 芯片(4), 政策(2)")
	assert.Contains(t, md, "- 暂无风险预警")
	assert.Contains(t, md, "- **数据时效性**: 50.0%")
	assert.Contains(t, md, "*数据来源: 增强新闻情绪分析器*")
}

func TestFormatSentimentReportAlertsAndEmptyTopics(t *testing.T) {
	r := &dto.SentimentResult{
		HotTopics: &dto.HotTopics{},
		RiskAlerts: []dto.SentimentRiskAlert{
			{Type: "极端负面情绪", Level: "高", Description: "加权情绪分数极低"},
		},
	}
	md := FormatSentimentReport("600519", "贵州茅台", r)

	assert.Contains(t, md, "- **热门关键词**: 无")
	assert.Contains(t, md, "- **极端负面情绪** (高风险): 加权情绪分数极低")
	assert.NotContains(t, md, "暂无风险预警")
}

func TestFormatRiskReport(t *testing.T) {
	r := &dto.RiskResult{
		PriceDataPoints: 60,
		AnalysisPeriod:  "59个交易日",
		MarketRisk: &dto.MarketRisk{
			Beta:                  utils.ToPointer(1.2),
			CorrelationWithMarket: utils.ToPointer(0.65),
		},
		VolatilityMetrics: &dto.VolatilityMetrics{
			DailyVolatility:      0.02,
			AnnualizedVolatility: 0.3175,
			VolatilityTrend:      dto.TrendStable,
		},
		DownsideRisk: &dto.DownsideRisk{
			MaximumDrawdown: -0.244,
			PainIndex:       0.151,
			UlcerIndex:      0.1812,
		},
		VarMetrics: &dto.VarMetrics{
			Var95:         -0.0321,
			Var99:         -0.0453,
			CVar95:        -0.0399,
			CVar99:        -0.0453,
			VarParametric: -0.0302,
			VarMonteCarlo: -0.0318,
		},
		LiquidityRisk: &dto.LiquidityRisk{
			LiquidityScore:   50,
			LiquidityLevel:   dto.LevelHigh,
			VolumeVolatility: utils.ToPointer(0.1),
		},
		FundamentalRisk: &dto.FundamentalRisk{
			FundamentalRiskScore: 0,
			FundamentalRiskLevel: dto.GradeUnknown,
		},
		ComprehensiveRisk: &dto.ComprehensiveRisk{
			OverallRiskScore: 55.5,
			RiskLevel:        dto.LevelMedium,
			SharpeRatio:      utils.ToPointer(0.42),
		},
		RiskRecommendations: []string{"r1", "r2", "r3", "r4", "r5", "r6"},
		DataQuality: &dto.RiskDataQuality{
			PriceDataQuality:       80,
			MarketDataQuality:      30,
			FundamentalDataQuality: 25,
			OverallQuality:         54.5,
			QualityLevel:           dto.GradeAverage,
		},
		AnalysisDate: "2026-01-02 10:00:00",
	}
	md := FormatRiskReport("600519", "贵州茅台", r)

	assert.Contains(t, md, "# 600519（贵州茅台）增强风险评估报告")
	assert.Contains(t, md, "## ⚠️ 精确计算的风险指标")
	assert.Contains(t, md, "- **Beta系数**: 1.2000")
	assert.Contains(t, md, "- **Alpha**: N/A")
	assert.Contains(t, md, "- **与市场相关性**: 0.6500")
	assert.Contains(t, md, "- **日波动率**: 0.0200")
	assert.Contains(t, md, "- **GARCH波动率**: N/A")
	assert.Contains(t, md, "- **最大回撤**: -0.2440")
	assert.Contains(t, md, "- **Sortino比率**: N/A")
	assert.Contains(t, md, "- **95% VaR**: -0.0321")
	assert.Contains(t, md, "- **蒙特卡洛VaR**: -0.0318")
	assert.Contains(t, md, "- **流动性评分**: 50/100")
	assert.Contains(t, md, "- **买卖价差**: N/A")
	assert.Contains(t, md, "- **基本面风险水平**: 未知")
	assert.Contains(t, md, "- **总体风险评分**: 55.5/100")
	assert.Contains(t, md, "- **夏普比率**: 0.4200")
	assert.Contains(t, md, "- **主要风险因素**: 无")
	assert.Contains(t, md, "- 暂无风险预警")
	assert.Contains(t, md, "- 价格数据质量: 80/100")
	assert.Contains(t, md, "- 分析期间: 59个交易日")
	assert.Contains(t, md, "*数据来源: 增强风险评估分析器*")

	// Recommendations cap at five entries.
	assert.Contains(t, md, "5. r5")
	assert.NotContains(t, md, "6. r6")
}

func TestFormatRiskReportError(t *testing.T) {
	md := FormatRiskReport("600519", "贵州茅台", &dto.RiskResult{Error: "股票价格数据不足，无法进行风险分析"})
	assert.Equal(t, "# 风险评估报告 - 600519\n\n❌ 分析失败: 股票价格数据不足，无法进行风险分析", md)
}

func TestFormatComprehensiveReport(t *testing.T) {
	result := &dto.AggregateResult{
		Ticker:       "600519",
		CompanyName:  "贵州茅台",
		AnalysisDate: "2026-01-02 10:00:00",
		FundamentalsAnalysis: &dto.FundamentalsResult{
			Error: "无法解析股票价格数据",
		},
		SentimentAnalysis: &dto.SentimentResult{
			NewsCount: 3,
			ComprehensiveSentiment: &dto.ComprehensiveSentiment{
				WeightedSentiment: 0.5,
				ConfidenceScore:   0.8,
				OverallSentiment:  dto.SentimentPositive,
			},
		},
		RiskAnalysis: &dto.RiskResult{
			PriceDataPoints: 60,
			ComprehensiveRisk: &dto.ComprehensiveRisk{
				OverallRiskScore: 40,
				RiskLevel:        dto.LevelMedium,
			},
		},
		ComprehensiveSummary: &dto.ComprehensiveSummary{
			TechnicalScore:    50,
			FundamentalsScore: 0,
			SentimentScore:    60,
			RiskScore:         60,
			OverallScore:      56.7,
			KeyPoints:         []string{"k1", "k2", "k3", "k4", "k5", "k6"},
		},
		InvestmentRecommendation: &dto.InvestmentRecommendation{
			Rating:       dto.RatingHold,
			TimeHorizon:  "中期（3-6个月）",
			RiskLevel:    dto.RiskLevelMedium,
			PositionSize: dto.PositionLight,
			RiskWarnings: []string{"w1", "w2", "w3", "w4"},
		},
		AnalysisQuality: &dto.AnalysisQuality{
			DataCompleteness:   75,
			AnalysisCoverage:   75,
			OverallQuality:     dto.GradeExcellent,
			QualityDescription: "数据完整，分析全面，结果可信度高",
		},
	}
	md := FormatComprehensiveReport(result)

	assert.Contains(t, md, "# 600519（贵州茅台）增强分析综合报告")
	assert.Contains(t, md, "## 📋 分析概览")
	assert.Contains(t, md, "- **分析质量**: 优秀")

	// Missing and failed domains never reach the body.
	assert.NotContains(t, md, "增强技术分析报告")
	assert.NotContains(t, md, "增强基本面分析报告")
	assert.Contains(t, md, "# 600519（贵州茅台）增强新闻情绪分析报告")
	assert.Contains(t, md, "# 600519（贵州茅台）增强风险评估报告")

	assert.Contains(t, md, "## 🎯 综合评估与投资建议")
	assert.Contains(t, md, "- **技术面评分**: 50.0/100")
	assert.Contains(t, md, "- **综合评分**: 56.7/100")
	assert.Contains(t, md, "- **投资评级**: 持有")
	assert.Contains(t, md, "- **目标价位**: N/A")

	// Key points cap at five, warnings at three.
	assert.Contains(t, md, "5. k5")
	assert.NotContains(t, md, "6. k6")
	assert.Contains(t, md, "⚠️ w3")
	assert.NotContains(t, md, "w4")

	assert.Contains(t, md, "## 📊 数据质量说明")
	assert.Contains(t, md, "数据完整，分析全面，结果可信度高")
	assert.Contains(t, md, "*本报告由增强分析工具包生成，采用\"先精确计算，再AI分析\"的方法*")
	assert.Contains(t, md, "*报告生成时间: ")

	// Overview leads, embedded reports follow, the merged verdict closes.
	idxOverview := strings.Index(md, "## 📋 分析概览")
	idxSentiment := strings.Index(md, "增强新闻情绪分析报告")
	idxRisk := strings.Index(md, "增强风险评估报告")
	idxVerdict := strings.Index(md, "## 🎯 综合评估与投资建议")
	require.True(t, idxOverview >= 0 && idxSentiment >= 0 && idxRisk >= 0 && idxVerdict >= 0)
	assert.Less(t, idxOverview, idxSentiment)
	assert.Less(t, idxSentiment, idxRisk)
	assert.Less(t, idxRisk, idxVerdict)
}

func TestFormatComprehensiveReportDefaults(t *testing.T) {
	md := FormatComprehensiveReport(&dto.AggregateResult{Ticker: "000001", CompanyName: "未知公司"})

	assert.Contains(t, md, "- **分析质量**: 未知")
	assert.Contains(t, md, "数据质量信息不可用")
	assert.NotContains(t, md, "### 综合评分")
	assert.NotContains(t, md, "### 投资建议")
}

func TestGroupInt(t *testing.T) {
	tests := []struct {
		name string
		in   int64
		want string
	}{
		{name: "zero", in: 0, want: "0"},
		{name: "three digits", in: 999, want: "999"},
		{name: "four digits", in: 1000, want: "1,000"},
		{name: "seven digits", in: 1234567, want: "1,234,567"},
		{name: "eight digits", in: 12345678, want: "12,345,678"},
		{name: "negative", in: -1234567, want: "-1,234,567"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, groupInt(tt.in))
		})
	}
}

func TestNumberHelpers(t *testing.T) {
	assert.Equal(t, "80", num(80))
	assert.Equal(t, "12.9", num(12.9))
	assert.Equal(t, "-1.53", num(-1.53))
	assert.Equal(t, "N/A", numPtr(nil))
	assert.Equal(t, "3.5", numPtr(utils.ToPointer(3.5)))
	assert.Equal(t, "N/A", precPtr(nil, 4))
	assert.Equal(t, "1.0000", precPtr(utils.ToPointer(1.0), 4))
	assert.Equal(t, "N/A", intPtr(nil))
	assert.Equal(t, "7", intPtr(utils.ToPointer(7)))
}
