package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang-stock-analysis/internal/dto"
)

var (
	maOrder  = []string{"MA5", "MA10", "MA20", "MA50", "MA200"}
	emaOrder = []string{"EMA12", "EMA26"}

	signalOrder = []struct {
		key   string
		label string
	}{
		{"ma", "MA信号"},
		{"rsi", "RSI信号"},
		{"macd", "MACD信号"},
		{"bollinger", "布林带信号"},
		{"volume", "成交量信号"},
	}
)

// FormatTechnicalReport renders a technical analysis result into a Markdown
// string. Indicator sections whose data was not computed are omitted.
func FormatTechnicalReport(ticker, company string, r *dto.TechnicalResult) string {
	if r == nil {
		return fmt.Sprintf("# 技术分析报告 - %s\n\n❌ 分析失败: 无分析结果", ticker)
	}
	if r.Error != "" {
		return fmt.Sprintf("# 技术分析报告 - %s\n\n❌ 分析失败: %s", ticker, r.Error)
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("# %s（%s）增强技术分析报告\n\n", ticker, company))
	builder.WriteString("## 📈 精确计算的技术指标\n")

	if p := r.PriceInfo; p != nil {
		builder.WriteString("\n### 价格信息\n")
		builder.WriteString(fmt.Sprintf("- 当前价格: %s\n", num(p.CurrentPrice)))
		builder.WriteString(fmt.Sprintf("- 昨日收盘: %s\n", num(p.PrevClose)))
		builder.WriteString(fmt.Sprintf("- 涨跌额: %s\n", num(p.Change)))
		builder.WriteString(fmt.Sprintf("- 涨跌幅: %s%%\n", num(p.ChangePct)))
		builder.WriteString(fmt.Sprintf("- 52周最高: %s\n", num(p.High52W)))
		builder.WriteString(fmt.Sprintf("- 52周最低: %s\n", num(p.Low52W)))
		builder.WriteString(fmt.Sprintf("- 距52周高点: %s%%\n", num(p.From52WHigh)))
		builder.WriteString(fmt.Sprintf("- 距52周低点: %s%%\n", num(p.From52WLow)))
	}

	if len(r.MovingAverages) > 0 {
		builder.WriteString("\n### 移动平均线分析\n")
		for _, name := range maOrder {
			ma, ok := r.MovingAverages[name]
			if !ok {
				continue
			}
			builder.WriteString(fmt.Sprintf("- %s: %s (距离: %s%%, 趋势: %s)\n", name, num(ma.Value), num(ma.Distance), ma.Trend))
		}
	}

	if len(r.EMA) > 0 {
		builder.WriteString("\n### 指数移动平均线\n")
		for _, name := range emaOrder {
			ema, ok := r.EMA[name]
			if !ok {
				continue
			}
			builder.WriteString(fmt.Sprintf("- %s: %s (距离: %s%%)\n", name, num(ema.Value), num(ema.Distance)))
		}
	}

	if r.RSI != nil {
		builder.WriteString("\n### RSI相对强弱指标\n")
		builder.WriteString(fmt.Sprintf("- RSI值: %s\n", num(r.RSI.Value)))
		builder.WriteString(fmt.Sprintf("- 信号: %s\n", r.RSI.Signal))
		builder.WriteString(fmt.Sprintf("- 趋势: %s\n", r.RSI.Trend))
	}

	if m := r.MACD; m != nil {
		builder.WriteString("\n### MACD指标\n")
		builder.WriteString(fmt.Sprintf("- MACD线: %s\n", num(m.Line)))
		builder.WriteString(fmt.Sprintf("- 信号线: %s\n", num(m.Signal)))
		builder.WriteString(fmt.Sprintf("- 柱状图: %s\n", num(m.Histogram)))
		builder.WriteString(fmt.Sprintf("- 信号: %s\n", m.Cross))
		builder.WriteString(fmt.Sprintf("- 动量: %s\n", m.Momentum))
	}

	if b := r.BollingerBands; b != nil {
		builder.WriteString("\n### 布林带\n")
		builder.WriteString(fmt.Sprintf("- 上轨: %s\n", num(b.Upper)))
		builder.WriteString(fmt.Sprintf("- 中轨: %s\n", num(b.Middle)))
		builder.WriteString(fmt.Sprintf("- 下轨: %s\n", num(b.Lower)))
		builder.WriteString(fmt.Sprintf("- 带宽: %s%%\n", num(b.Width)))
		builder.WriteString(fmt.Sprintf("- 价格位置: %s%%\n", num(b.Position)))
		builder.WriteString(fmt.Sprintf("- 收缩状态: %s\n", b.Squeeze))
	}

	if v := r.Volume; v != nil {
		builder.WriteString("\n### 成交量分析\n")
		builder.WriteString(fmt.Sprintf("- 当前成交量: %s\n", groupInt(v.Current)))
		builder.WriteString(fmt.Sprintf("- 20日平均: %s\n", groupInt(v.Avg20D)))
		builder.WriteString(fmt.Sprintf("- 量比: %s\n", num(v.Ratio)))
		builder.WriteString(fmt.Sprintf("- 趋势: %s\n", v.Trend))
	}

	if r.ATR != nil {
		builder.WriteString("\n### 波动率(ATR)\n")
		builder.WriteString(fmt.Sprintf("- ATR值: %s\n", num(r.ATR.Value)))
		builder.WriteString(fmt.Sprintf("- 占价格比例: %s%%\n", num(r.ATR.Percentage)))
	}

	if sr := r.SupportResistance; sr != nil {
		builder.WriteString("\n### 支撑阻力位\n")
		builder.WriteString(fmt.Sprintf("- 阻力位: %s\n", num(sr.Resistance)))
		builder.WriteString(fmt.Sprintf("- 支撑位: %s\n", num(sr.Support)))
		builder.WriteString(fmt.Sprintf("- 距阻力位: %s%%\n", num(sr.DistanceToResistance)))
		builder.WriteString(fmt.Sprintf("- 距支撑位: %s%%\n", num(sr.DistanceToSupport)))
	}

	if r.TrendAnalysis != nil || len(r.Signals) > 0 {
		builder.WriteString("\n### 信号与趋势\n")
		if t := r.TrendAnalysis; t != nil {
			builder.WriteString(fmt.Sprintf("- 整体趋势: %s\n", t.OverallTrend))
			builder.WriteString(fmt.Sprintf("- 均线形态: %s\n", t.MAAlignment))
		}
		for _, s := range signalOrder {
			v, ok := r.Signals[s.key]
			if !ok {
				continue
			}
			builder.WriteString(fmt.Sprintf("- %s: %s\n", s.label, v))
		}
	}

	return builder.String()
}

// FormatFundamentalsReport renders a fundamentals result into a Markdown
// string. Metrics that could not be parsed render as N/A.
func FormatFundamentalsReport(ticker, company string, r *dto.FundamentalsResult) string {
	if r == nil {
		return fmt.Sprintf("# 基本面分析报告 - %s\n\n❌ 分析失败: 无分析结果", ticker)
	}
	if r.Error != "" {
		return fmt.Sprintf("# 基本面分析报告 - %s\n\n❌ 分析失败: %s", ticker, r.Error)
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("# %s（%s）增强基本面分析报告\n\n", ticker, company))
	builder.WriteString("## 📊 精确计算的财务指标\n")

	if v := r.ValuationMetrics; v != nil {
		builder.WriteString("\n### 估值指标\n")
		builder.WriteString(fmt.Sprintf("- **PE比率**: %s\n", numPtr(v.PERatio)))
		builder.WriteString(fmt.Sprintf("- **PB比率**: %s\n", numPtr(v.PBRatio)))
		builder.WriteString(fmt.Sprintf("- **PEG比率**: %s\n", numPtr(v.PEGRatio)))
		builder.WriteString(fmt.Sprintf("- **股息收益率**: %s%%\n", numPtr(v.DividendYield)))
		builder.WriteString(fmt.Sprintf("- **估值水平**: %s\n", v.ValuationLevel))
	}

	if h := r.FinancialHealth; h != nil {
		builder.WriteString("\n### 财务健康度\n")
		builder.WriteString(fmt.Sprintf("- **负债权益比**: %s\n", numPtr(h.DebtToEquity)))
		builder.WriteString(fmt.Sprintf("- **流动比率**: %s\n", numPtr(h.CurrentRatio)))
		builder.WriteString(fmt.Sprintf("- **速动比率**: %s\n", numPtr(h.QuickRatio)))
		builder.WriteString(fmt.Sprintf("- **利息保障倍数**: %s\n", numPtr(h.InterestCoverage)))
		builder.WriteString(fmt.Sprintf("- **健康评分**: %s/100\n", num(h.HealthScore)))
		builder.WriteString(fmt.Sprintf("- **健康水平**: %s\n", h.HealthLevel))
	}

	if g := r.GrowthMetrics; g != nil {
		builder.WriteString("\n### 成长性分析\n")
		builder.WriteString(fmt.Sprintf("- **营收增长率(1年)**: %s%%\n", numPtr(g.RevenueGrowth1Y)))
		builder.WriteString(fmt.Sprintf("- **利润增长率(1年)**: %s%%\n", numPtr(g.ProfitGrowth1Y)))
		builder.WriteString(fmt.Sprintf("- **EPS增长率(1年)**: %s%%\n", numPtr(g.EPSGrowth1Y)))
		builder.WriteString(fmt.Sprintf("- **成长质量**: %s\n", g.GrowthQuality))
	}

	if p := r.ProfitabilityMetrics; p != nil {
		builder.WriteString("\n### 盈利能力\n")
		builder.WriteString(fmt.Sprintf("- **净资产收益率(ROE)**: %s%%\n", numPtr(p.ROE)))
		builder.WriteString(fmt.Sprintf("- **总资产收益率(ROA)**: %s%%\n", numPtr(p.ROA)))
		builder.WriteString(fmt.Sprintf("- **毛利率**: %s%%\n", numPtr(p.GrossMargin)))
		builder.WriteString(fmt.Sprintf("- **净利率**: %s%%\n", numPtr(p.NetMargin)))
		builder.WriteString(fmt.Sprintf("- **盈利水平**: %s\n", p.ProfitabilityLevel))
	}

	if s := r.SafetyMetrics; s != nil {
		builder.WriteString("\n### 安全性评估\n")
		builder.WriteString(fmt.Sprintf("- **Altman Z-Score**: %s\n", numPtr(s.AltmanZScore)))
		builder.WriteString(fmt.Sprintf("- **Piotroski F-Score**: %s/9\n", intPtr(s.PiotroskiScore)))
		builder.WriteString(fmt.Sprintf("- **破产风险**: %s\n", s.BankruptcyRisk))
		builder.WriteString(fmt.Sprintf("- **安全水平**: %s\n", s.SafetyLevel))
	}

	if ic := r.IndustryComparison; ic != nil {
		builder.WriteString("\n### 行业比较\n")
		builder.WriteString(fmt.Sprintf("- **行业平均PE**: %s\n", num(ic.IndustryAvgPE)))
		builder.WriteString(fmt.Sprintf("- **行业平均PB**: %s\n", num(ic.IndustryAvgPB)))
		builder.WriteString(fmt.Sprintf("- **相对估值**: %s\n", ic.RelativeValuation))
	}

	if q := r.DataQuality; q != nil {
		builder.WriteString("\n### 数据质量评估\n")
		builder.WriteString(fmt.Sprintf("- **数据完整性**: %s/100\n", num(q.Completeness)))
		builder.WriteString(fmt.Sprintf("- **数据新鲜度**: %s/100\n", num(q.Freshness)))
		builder.WriteString(fmt.Sprintf("- **总体质量**: %s\n", q.QualityLevel))
	}

	builder.WriteString("\n---\n")
	builder.WriteString(fmt.Sprintf("*报告生成时间: %s*\n", r.AnalysisDate))
	builder.WriteString("*数据来源: 增强基本面分析器*\n")
	return builder.String()
}

// FormatSentimentReport renders a news sentiment result into a Markdown string.
func FormatSentimentReport(ticker, company string, r *dto.SentimentResult) string {
	if r == nil {
		return fmt.Sprintf("# 新闻情绪分析报告 - %s\n\n❌ 分析失败: 无分析结果", ticker)
	}
	if r.Error != "" {
		return fmt.Sprintf("# 新闻情绪分析报告 - %s\n\n❌ 分析失败: %s", ticker, r.Error)
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("# %s（%s）增强新闻情绪分析报告\n\n", ticker, company))
	builder.WriteString("## 📰 量化情绪指标\n")

	if c := r.ComprehensiveSentiment; c != nil {
		builder.WriteString("\n### 综合情绪评估\n")
		builder.WriteString(fmt.Sprintf("- **加权情绪分数**: %.3f\n", c.WeightedSentiment))
		builder.WriteString(fmt.Sprintf("- **置信度**: %.3f\n", c.ConfidenceScore))
		builder.WriteString(fmt.Sprintf("- **情绪强度**: %s\n", c.SentimentStrength))
		builder.WriteString(fmt.Sprintf("- **市场影响水平**: %s\n", c.MarketImpactLevel))
		builder.WriteString(fmt.Sprintf("- **总体情绪**: %s\n", c.OverallSentiment))
	}

	if t := r.SentimentTrend; t != nil {
		builder.WriteString("\n### 情绪趋势分析\n")
		builder.WriteString(fmt.Sprintf("- **趋势方向**: %s\n", t.TrendDirection))
		builder.WriteString(fmt.Sprintf("- **趋势强度**: %.3f\n", t.TrendStrength))
		builder.WriteString(fmt.Sprintf("- **情绪波动性**: %.3f\n", t.Volatility))
		builder.WriteString(fmt.Sprintf("- **近期变化**: %.3f\n", t.RecentChange))
		desc := t.TrendDescription
		if desc == "" {
			desc = "无"
		}
		builder.WriteString(fmt.Sprintf("- **趋势描述**: %s\n", desc))
	}

	if m := r.MarketAttention; m != nil {
		builder.WriteString("\n### 市场关注度\n")
		builder.WriteString(fmt.Sprintf("- **新闻数量**: %d条\n", m.NewsVolume))
		builder.WriteString(fmt.Sprintf("- **关注度水平**: %s\n", m.AttentionLevel))
		builder.WriteString(fmt.Sprintf("- **媒体覆盖广度**: %d家媒体\n", m.MediaCoverageBreadth))
	}

	if h := r.HotTopics; h != nil {
		builder.WriteString("\n### 热点话题\n")
		builder.WriteString(fmt.Sprintf("- **热门关键词**: %s\n", joinOr(topKeywords(h, 5), "无")))
		builder.WriteString(fmt.Sprintf("- **关键词频次**: %s\n", joinOr(keywordCounts(h, 5), "无")))
	}

	builder.WriteString("\n### 风险预警\n")
	if len(r.RiskAlerts) == 0 {
		builder.WriteString("- 暂无风险预警\n")
	}
	for _, alert := range r.RiskAlerts {
		builder.WriteString(fmt.Sprintf("- **%s** (%s风险): %s\n", alert.Type, alert.Level, alert.Description))
	}

	if q := r.DataQuality; q != nil {
		builder.WriteString("\n### 数据质量评估\n")
		builder.WriteString(fmt.Sprintf("- **数据完整性**: %.1f%%\n", q.Completeness))
		builder.WriteString(fmt.Sprintf("- **数据时效性**: %.1f%%\n", q.Timeliness))
		builder.WriteString(fmt.Sprintf("- **来源可靠性**: %.1f%%\n", q.SourceReliability))
		builder.WriteString(fmt.Sprintf("- **总体质量**: %s\n", q.QualityLevel))
	}

	builder.WriteString("\n---\n")
	builder.WriteString(fmt.Sprintf("*报告生成时间: %s*\n", r.AnalysisDate))
	builder.WriteString("*数据来源: 增强新闻情绪分析器*\n")
	return builder.String()
}

// FormatRiskReport renders a risk assessment result into a Markdown string.
func FormatRiskReport(ticker, company string, r *dto.RiskResult) string {
	if r == nil {
		return fmt.Sprintf("# 风险评估报告 - %s\n\n❌ 分析失败: 无分析结果", ticker)
	}
	if r.Error != "" {
		return fmt.Sprintf("# 风险评估报告 - %s\n\n❌ 分析失败: %s", ticker, r.Error)
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("# %s（%s）增强风险评估报告\n\n", ticker, company))
	builder.WriteString("## ⚠️ 精确计算的风险指标\n")

	if m := r.MarketRisk; m != nil {
		builder.WriteString("\n### 市场风险指标\n")
		builder.WriteString(fmt.Sprintf("- **Beta系数**: %s\n", precPtr(m.Beta, 4)))
		builder.WriteString(fmt.Sprintf("- **Alpha**: %s\n", precPtr(m.Alpha, 4)))
		builder.WriteString(fmt.Sprintf("- **与市场相关性**: %s\n", precPtr(m.CorrelationWithMarket, 4)))
		builder.WriteString(fmt.Sprintf("- **系统性风险**: %s\n", precPtr(m.SystematicRisk, 4)))
		builder.WriteString(fmt.Sprintf("- **特异性风险**: %s\n", precPtr(m.IdiosyncraticRisk, 4)))
		builder.WriteString(fmt.Sprintf("- **跟踪误差**: %s\n", precPtr(m.TrackingError, 4)))
	}

	if v := r.VolatilityMetrics; v != nil {
		builder.WriteString("\n### 波动性风险\n")
		builder.WriteString(fmt.Sprintf("- **日波动率**: %.4f\n", v.DailyVolatility))
		builder.WriteString(fmt.Sprintf("- **年化波动率**: %.4f\n", v.AnnualizedVolatility))
		builder.WriteString(fmt.Sprintf("- **GARCH波动率**: %s\n", precPtr(v.GarchVolatility, 4)))
		builder.WriteString(fmt.Sprintf("- **波动率趋势**: %s\n", v.VolatilityTrend))
		builder.WriteString(fmt.Sprintf("- **波动率聚集性**: %.4f\n", v.VolatilityClustering))
	}

	if d := r.DownsideRisk; d != nil {
		builder.WriteString("\n### 下行风险指标\n")
		builder.WriteString(fmt.Sprintf("- **最大回撤**: %.4f\n", d.MaximumDrawdown))
		builder.WriteString(fmt.Sprintf("- **下行标准差**: %s\n", precPtr(d.DownsideDeviation, 4)))
		builder.WriteString(fmt.Sprintf("- **Sortino比率**: %s\n", precPtr(d.SortinoRatio, 4)))
		builder.WriteString(fmt.Sprintf("- **Calmar比率**: %s\n", precPtr(d.CalmarRatio, 4)))
		builder.WriteString(fmt.Sprintf("- **Ulcer指数**: %.4f\n", d.UlcerIndex))
	}

	if v := r.VarMetrics; v != nil {
		builder.WriteString("\n### VaR风险度量\n")
		builder.WriteString(fmt.Sprintf("- **95%% VaR**: %.4f\n", v.Var95))
		builder.WriteString(fmt.Sprintf("- **99%% VaR**: %.4f\n", v.Var99))
		builder.WriteString(fmt.Sprintf("- **95%% CVaR**: %.4f\n", v.CVar95))
		builder.WriteString(fmt.Sprintf("- **99%% CVaR**: %.4f\n", v.CVar99))
		builder.WriteString(fmt.Sprintf("- **参数法VaR**: %.4f\n", v.VarParametric))
		builder.WriteString(fmt.Sprintf("- **蒙特卡洛VaR**: %.4f\n", v.VarMonteCarlo))
	}

	if l := r.LiquidityRisk; l != nil {
		builder.WriteString("\n### 流动性风险\n")
		builder.WriteString(fmt.Sprintf("- **流动性评分**: %s/100\n", num(l.LiquidityScore)))
		builder.WriteString(fmt.Sprintf("- **流动性水平**: %s\n", l.LiquidityLevel))
		builder.WriteString(fmt.Sprintf("- **成交量波动性**: %s\n", precPtr(l.VolumeVolatility, 4)))
		builder.WriteString(fmt.Sprintf("- **买卖价差**: %s\n", precPtr(l.BidAskSpread, 4)))
	}

	if f := r.FundamentalRisk; f != nil {
		builder.WriteString("\n### 基本面风险\n")
		builder.WriteString(fmt.Sprintf("- **负债权益比**: %s\n", numPtr(f.DebtToEquity)))
		builder.WriteString(fmt.Sprintf("- **流动比率**: %s\n", numPtr(f.CurrentRatio)))
		builder.WriteString(fmt.Sprintf("- **Altman Z-Score**: %s\n", numPtr(f.AltmanZScore)))
		builder.WriteString(fmt.Sprintf("- **基本面风险水平**: %s\n", f.FundamentalRiskLevel))
	}

	if c := r.ComprehensiveRisk; c != nil {
		builder.WriteString("\n### 综合风险评估\n")
		builder.WriteString(fmt.Sprintf("- **总体风险评分**: %.1f/100\n", c.OverallRiskScore))
		builder.WriteString(fmt.Sprintf("- **风险水平**: %s\n", c.RiskLevel))
		builder.WriteString(fmt.Sprintf("- **夏普比率**: %s\n", precPtr(c.SharpeRatio, 4)))
		builder.WriteString(fmt.Sprintf("- **信息比率**: %s\n", precPtr(c.InformationRatio, 4)))
		builder.WriteString(fmt.Sprintf("- **主要风险因素**: %s\n", joinOr(c.RiskFactors, "无")))
	}

	builder.WriteString("\n### 风险预警\n")
	if len(r.RiskAlerts) == 0 {
		builder.WriteString("- 暂无风险预警\n")
	}
	for _, alert := range r.RiskAlerts {
		builder.WriteString(fmt.Sprintf("- **%s** (%s): %s\n", alert.Type, alert.Level, alert.Description))
	}

	if len(r.RiskRecommendations) > 0 {
		builder.WriteString("\n### 风险管理建议\n")
		for i, rec := range r.RiskRecommendations {
			if i >= 5 {
				break
			}
			builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, rec))
		}
	}

	if q := r.DataQuality; q != nil {
		builder.WriteString("\n### 数据质量评估\n")
		builder.WriteString(fmt.Sprintf("- 价格数据质量: %s/100\n", num(q.PriceDataQuality)))
		builder.WriteString(fmt.Sprintf("- 市场数据质量: %s/100\n", num(q.MarketDataQuality)))
		builder.WriteString(fmt.Sprintf("- 基本面数据质量: %s/100\n", num(q.FundamentalDataQuality)))
		builder.WriteString(fmt.Sprintf("- 总体数据质量: %s/100\n", num(q.OverallQuality)))
		builder.WriteString(fmt.Sprintf("- 分析期间: %s\n", r.AnalysisPeriod))
	}

	builder.WriteString("\n---\n")
	builder.WriteString(fmt.Sprintf("*报告生成时间: %s*\n", r.AnalysisDate))
	builder.WriteString("*数据来源: 增强风险评估分析器*\n")
	return builder.String()
}

// FormatComprehensiveReport assembles the per-domain reports plus the merged
// scores, recommendation and quality notes into one Markdown document. Domains
// that failed or never ran are left out of the body; their absence is already
// reflected in the quality section.
func FormatComprehensiveReport(result *dto.AggregateResult) string {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("# %s（%s）增强分析综合报告\n\n", result.Ticker, result.CompanyName))
	builder.WriteString("## 📋 分析概览\n\n")
	builder.WriteString(fmt.Sprintf("- **分析日期**: %s\n", result.AnalysisDate))
	builder.WriteString(fmt.Sprintf("- **股票代码**: %s\n", result.Ticker))
	builder.WriteString(fmt.Sprintf("- **公司名称**: %s\n", result.CompanyName))
	quality := "未知"
	if result.AnalysisQuality != nil && result.AnalysisQuality.OverallQuality != "" {
		quality = result.AnalysisQuality.OverallQuality
	}
	builder.WriteString(fmt.Sprintf("- **分析质量**: %s\n", quality))
	builder.WriteString("\n---\n\n")

	if t := result.TechnicalAnalysis; t != nil && t.Error == "" {
		builder.WriteString(FormatTechnicalReport(result.Ticker, result.CompanyName, t))
		builder.WriteString("\n\n---\n\n")
	}
	if f := result.FundamentalsAnalysis; f != nil && f.Error == "" {
		builder.WriteString(FormatFundamentalsReport(result.Ticker, result.CompanyName, f))
		builder.WriteString("\n\n---\n\n")
	}
	if s := result.SentimentAnalysis; s != nil && s.Error == "" {
		builder.WriteString(FormatSentimentReport(result.Ticker, result.CompanyName, s))
		builder.WriteString("\n\n---\n\n")
	}
	if k := result.RiskAnalysis; k != nil && k.Error == "" {
		builder.WriteString(FormatRiskReport(result.Ticker, result.CompanyName, k))
		builder.WriteString("\n\n---\n\n")
	}

	builder.WriteString("## 🎯 综合评估与投资建议\n\n")

	if s := result.ComprehensiveSummary; s != nil {
		builder.WriteString("### 综合评分\n")
		builder.WriteString(fmt.Sprintf("- **技术面评分**: %.1f/100\n", s.TechnicalScore))
		builder.WriteString(fmt.Sprintf("- **基本面评分**: %.1f/100\n", s.FundamentalsScore))
		builder.WriteString(fmt.Sprintf("- **情绪面评分**: %.1f/100\n", s.SentimentScore))
		builder.WriteString(fmt.Sprintf("- **风险控制评分**: %.1f/100\n", s.RiskScore))
		builder.WriteString(fmt.Sprintf("- **综合评分**: %.1f/100\n", s.OverallScore))
	}

	if rec := result.InvestmentRecommendation; rec != nil {
		builder.WriteString("\n### 投资建议\n")
		builder.WriteString(fmt.Sprintf("- **投资评级**: %s\n", rec.Rating))
		builder.WriteString(fmt.Sprintf("- **目标价位**: %s\n", numPtr(rec.TargetPrice)))
		builder.WriteString(fmt.Sprintf("- **投资期限**: %s\n", rec.TimeHorizon))
		builder.WriteString(fmt.Sprintf("- **风险等级**: %s\n", rec.RiskLevel))
	}

	if s := result.ComprehensiveSummary; s != nil && len(s.KeyPoints) > 0 {
		builder.WriteString("\n### 关键要点\n")
		for i, kp := range s.KeyPoints {
			if i >= 5 {
				break
			}
			builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, kp))
		}
	}

	if rec := result.InvestmentRecommendation; rec != nil && len(rec.RiskWarnings) > 0 {
		builder.WriteString("\n### 风险提示\n")
		for i, w := range rec.RiskWarnings {
			if i >= 3 {
				break
			}
			builder.WriteString(fmt.Sprintf("⚠️ %s\n", w))
		}
	}

	builder.WriteString("\n---\n\n")
	builder.WriteString("## 📊 数据质量说明\n\n")
	desc := "数据质量信息不可用"
	if result.AnalysisQuality != nil && result.AnalysisQuality.QualityDescription != "" {
		desc = result.AnalysisQuality.QualityDescription
	}
	builder.WriteString(fmt.Sprintf("%s\n", desc))
	builder.WriteString("\n---\n\n")
	builder.WriteString("*本报告由增强分析工具包生成，采用\"先精确计算，再AI分析\"的方法*\n")
	builder.WriteString(fmt.Sprintf("*报告生成时间: %s*\n", time.Now().Format("2006-01-02 15:04:05")))

	return builder.String()
}

// num renders a pre-rounded float without trailing zeros.
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func numPtr(p *float64) string {
	if p == nil {
		return "N/A"
	}
	return num(*p)
}

func precPtr(p *float64, digits int) string {
	if p == nil {
		return "N/A"
	}
	return strconv.FormatFloat(*p, 'f', digits, 64)
}

func intPtr(p *int) string {
	if p == nil {
		return "N/A"
	}
	return strconv.Itoa(*p)
}

func joinOr(items []string, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	return strings.Join(items, ", ")
}

func topKeywords(h *dto.HotTopics, n int) []string {
	if len(h.HotKeywords) < n {
		n = len(h.HotKeywords)
	}
	return h.HotKeywords[:n]
}

func keywordCounts(h *dto.HotTopics, n int) []string {
	words := topKeywords(h, n)
	out := make([]string, 0, len(words))
	for _, w := range words {
		out = append(out, fmt.Sprintf("%s(%d)", w, h.KeywordFrequency[w]))
	}
	return out
}

// groupInt renders an integer with thousands separators.
func groupInt(n int64) string {
	s := strconv.FormatInt(n, 10)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	if len(s) <= 3 {
		return sign + s
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	return sign + strings.Join(parts, ",")
}
