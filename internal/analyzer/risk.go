package analyzer

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"
	"unicode/utf8"

	"golang-stock-analysis/internal/dto"
	"golang-stock-analysis/internal/textparse"
	"golang-stock-analysis/pkg/logger"
	"golang-stock-analysis/pkg/utils"
)

// riskFactorOrder fixes the factor names used in concentration maps,
// alerts and recommendations.
var riskFactorOrder = []string{
	"market_risk", "volatility_risk", "downside_risk", "liquidity_risk", "fundamental_risk",
}

// RiskAnalyzer derives volatility, drawdown, VaR and composite risk
// scores from a close price series. All randomness (Monte Carlo, the
// synthetic market benchmark and gated fallback series) flows from one
// seeded generator per call, so identical inputs produce identical
// output.
type RiskAnalyzer struct {
	cfg    RiskConfig
	log    *logger.Logger
	parser *textparse.Parser
}

func NewRiskAnalyzer(cfg RiskConfig, log *logger.Logger) *RiskAnalyzer {
	return &RiskAnalyzer{
		cfg:    cfg,
		log:    log,
		parser: textparse.New(),
	}
}

func (a *RiskAnalyzer) Analyze(ctx context.Context, stockText, marketText, fundamentalsText string) (*dto.RiskResult, error) {
	rng := rand.New(rand.NewSource(a.cfg.RandomSeed))
	provenance := dto.ProvenanceReal

	prices := a.parser.ParseClosePrices(stockText)
	if len(prices) < a.cfg.MinPricePoints {
		if !a.cfg.AllowSynthetic {
			return nil, fmt.Errorf("股票价格数据不足，无法进行风险分析: %w", ErrInsufficientData)
		}
		prices = syntheticPrices(rng)
		provenance = dto.ProvenanceSynthetic
	}
	returns := toReturns(prices)
	a.log.DebugContext(ctx, "computing risk metrics",
		logger.IntField("price_points", len(prices)))

	market, benchmark := a.marketReturns(marketText, len(returns), rng)
	marketRisk := a.marketRisk(returns, market)
	marketRisk.BenchmarkProvenance = benchmark
	volatility := a.volatilityMetrics(returns)
	downside := a.downsideRisk(returns)
	varMetrics := a.varMetrics(returns, rng)

	liquidity, liqSynthetic := a.liquidityRisk(stockText, rng)
	fundamental, fundSynthetic := a.fundamentalRisk(fundamentalsText)
	if liqSynthetic || fundSynthetic {
		provenance = dto.ProvenanceSynthetic
	}

	comprehensive := a.comprehensiveRisk(marketRisk, volatility, downside, liquidity, fundamental)

	return &dto.RiskResult{
		PriceDataPoints:     len(prices),
		AnalysisPeriod:      fmt.Sprintf("%d个交易日", len(returns)),
		MarketRisk:          marketRisk,
		VolatilityMetrics:   volatility,
		DownsideRisk:        downside,
		VarMetrics:          varMetrics,
		LiquidityRisk:       liquidity,
		FundamentalRisk:     fundamental,
		ComprehensiveRisk:   comprehensive,
		RiskAlerts:          a.riskAlerts(comprehensive),
		RiskRecommendations: a.recommendations(comprehensive),
		AnalysisDate:        time.Now().Format("2006-01-02 15:04:05"),
		DataQuality:         a.dataQuality(stockText, marketText, fundamentalsText),
		DataProvenance:      provenance,
	}, nil
}

// marketReturns parses the benchmark series when one is supplied and
// synthesizes one otherwise. A synthetic benchmark only taints the
// market risk block, not the result as a whole.
func (a *RiskAnalyzer) marketReturns(marketText string, n int, rng *rand.Rand) ([]float64, dto.Provenance) {
	if strings.TrimSpace(marketText) != "" {
		closes := a.parser.ParseClosePrices(marketText)
		if len(closes) >= 3 {
			mr := toReturns(closes)
			if len(mr) >= n {
				return mr[len(mr)-n:], dto.ProvenanceReal
			}
			return mr, dto.ProvenanceReal
		}
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = 0.0008 + 0.015*rng.NormFloat64()
	}
	return out, dto.ProvenanceSynthetic
}

func (a *RiskAnalyzer) marketRisk(returns, market []float64) *dto.MarketRisk {
	out := &dto.MarketRisk{}

	// Align on the overlapping tail when the benchmark is shorter.
	k := len(returns)
	if len(market) < k {
		k = len(market)
	}
	if k < 2 {
		return out
	}
	r := returns[len(returns)-k:]
	m := market[len(market)-k:]

	marketVar := variance(m)
	if marketVar <= 0 {
		return out
	}
	dailyRf := a.cfg.RiskFreeRate / float64(a.cfg.TradingDays)

	beta := covariance(r, m) / marketVar
	alpha := (utils.Mean(r) - (dailyRf + beta*(utils.Mean(m)-dailyRf))) * float64(a.cfg.TradingDays)
	out.Beta = &beta
	out.Alpha = &alpha

	if corr, ok := correlation(r, m); ok {
		r2 := corr * corr
		out.CorrelationWithMarket = &corr
		out.RSquared = &r2
	}

	systematic := beta * beta * marketVar
	idiosyncratic := variance(r) - systematic
	out.SystematicRisk = &systematic
	out.IdiosyncraticRisk = &idiosyncratic

	diff := make([]float64, k)
	for i := range diff {
		diff[i] = r[i] - m[i]
	}
	tracking := utils.StdDev(diff) * math.Sqrt(float64(a.cfg.TradingDays))
	out.TrackingError = &tracking
	return out
}

func (a *RiskAnalyzer) volatilityMetrics(returns []float64) *dto.VolatilityMetrics {
	n := len(returns)
	annFactor := math.Sqrt(float64(a.cfg.TradingDays))
	daily := utils.StdDev(returns)

	out := &dto.VolatilityMetrics{
		DailyVolatility:      daily,
		AnnualizedVolatility: daily * annFactor,
	}

	if n >= 20 {
		vols := make([]float64, 0, n-19)
		for end := 19; end < n; end++ {
			vols = append(vols, utils.StdDev(returns[end-19:end+1]))
		}
		current := vols[len(vols)-1]
		below := 0
		for _, v := range vols {
			if v <= current {
				below++
			}
		}
		pct := float64(below) / float64(len(vols)) * 100
		out.VolatilityPercentile = &pct
	}

	// EWMA variance with the newest return weighted heaviest.
	lambda := a.cfg.EWMALambda
	var weightSum, ewmaVar float64
	for i := 0; i < n; i++ {
		w := (1 - lambda) * math.Pow(lambda, float64(n-1-i))
		weightSum += w
		ewmaVar += w * returns[i] * returns[i]
	}
	if weightSum > 0 {
		garch := math.Sqrt(ewmaVar / weightSum * float64(a.cfg.TradingDays))
		out.GarchVolatility = &garch
	}

	var squaredSum float64
	for _, r := range returns {
		squaredSum += r * r
	}
	out.RealizedVolatility = math.Sqrt(squaredSum) * annFactor

	if n >= 2 {
		abs := make([]float64, n)
		for i, r := range returns {
			abs[i] = math.Abs(r)
		}
		if corr, ok := correlation(abs[:n-1], abs[1:]); ok {
			out.VolatilityClustering = corr
		}
	}

	recent := daily
	if n >= 20 {
		recent = utils.StdDev(returns[n-20:])
	}
	earlier := daily
	if n >= 40 {
		earlier = utils.StdDev(returns[n-40 : n-20])
	}
	out.VolatilityTrend = dto.TrendStable
	switch {
	case recent > earlier*1.2:
		out.VolatilityTrend = dto.TrendRising
	case recent < earlier*0.8:
		out.VolatilityTrend = dto.TrendFalling
	}
	return out
}

func (a *RiskAnalyzer) downsideRisk(returns []float64) *dto.DownsideRisk {
	out := &dto.DownsideRisk{}
	annFactor := math.Sqrt(float64(a.cfg.TradingDays))
	annDays := float64(a.cfg.TradingDays)

	var negSquaredSum float64
	negCount := 0
	for _, r := range returns {
		if r < 0 {
			negSquaredSum += r * r
			negCount++
		}
	}
	if negCount > 0 {
		dd := math.Sqrt(negSquaredSum/float64(negCount)) * annFactor
		out.DownsideDeviation = &dd
		if dd > 0 {
			sortino := (utils.Mean(returns)*annDays - a.cfg.RiskFreeRate) / dd
			out.SortinoRatio = &sortino
		}
	}

	// Drawdown path off the cumulative return curve.
	cum := 1.0
	peak := 1.0
	maxDD := 0.0
	var absSum, sqSum float64
	for _, r := range returns {
		cum *= 1 + r
		if cum > peak {
			peak = cum
		}
		dd := utils.SafeDiv(cum-peak, peak, 0)
		if dd < maxDD {
			maxDD = dd
		}
		absSum += math.Abs(dd)
		sqSum += dd * dd
	}
	n := float64(len(returns))
	out.MaximumDrawdown = maxDD
	out.PainIndex = absSum / n
	out.UlcerIndex = math.Sqrt(sqSum / n)

	if maxDD < 0 {
		calmar := utils.Mean(returns) * annDays / math.Abs(maxDD)
		out.CalmarRatio = &calmar
	}
	return out
}

func (a *RiskAnalyzer) varMetrics(returns []float64, rng *rand.Rand) *dto.VarMetrics {
	out := &dto.VarMetrics{
		Var95: utils.Percentile(returns, 5),
		Var99: utils.Percentile(returns, 1),
	}
	out.CVar95 = tailMean(returns, out.Var95)
	out.CVar99 = tailMean(returns, out.Var99)
	out.VarHistorical = out.Var95

	mean := utils.Mean(returns)
	sd := utils.StdDev(returns)
	out.VarParametric = mean - 1.645*sd

	samples := make([]float64, a.cfg.MonteCarloSamples)
	for i := range samples {
		samples[i] = mean + sd*rng.NormFloat64()
	}
	out.VarMonteCarlo = utils.Percentile(samples, 5)

	if out.Var99 != 0 {
		ratio := out.Var95 / out.Var99
		out.VarRatio = &ratio
	}
	return out
}

// tailMean averages the returns at or below the cutoff.
func tailMean(returns []float64, cutoff float64) float64 {
	var sum float64
	count := 0
	for _, r := range returns {
		if r <= cutoff {
			sum += r
			count++
		}
	}
	if count == 0 {
		return cutoff
	}
	return sum / float64(count)
}

func (a *RiskAnalyzer) liquidityRisk(stockText string, rng *rand.Rand) (*dto.LiquidityRisk, bool) {
	vols := a.parser.ParseVolumes(stockText)
	synthetic := false
	if len(vols) < a.cfg.MinVolumePoints {
		if !a.cfg.AllowSynthetic {
			if len(vols) < 2 {
				return &dto.LiquidityRisk{LiquidityLevel: dto.GradeUnknown}, false
			}
		} else {
			vols = make([]float64, 30)
			for i := range vols {
				vols[i] = math.Exp(13 + 0.5*rng.NormFloat64())
			}
			synthetic = true
		}
	}

	avg := utils.Mean(vols)
	if avg <= 0 {
		return &dto.LiquidityRisk{LiquidityLevel: dto.GradeUnknown}, synthetic
	}
	cv := utils.StdDevP(vols) / avg

	score := 10.0
	switch {
	case avg > 1_000_000:
		score = 30
	case avg > 500_000:
		score = 20
	}
	switch {
	case cv < 0.5:
		score += 20
	case cv < 1.0:
		score += 10
	}

	level := dto.LevelLow
	switch {
	case score >= 40:
		level = dto.LevelHigh
	case score >= 25:
		level = dto.LevelMedium
	}

	out := &dto.LiquidityRisk{
		VolumeVolatility: &cv,
		LiquidityScore:   score,
		LiquidityLevel:   level,
	}
	if synthetic {
		spread, amihud, turnover := 0.001, 0.0001, 0.05
		out.BidAskSpread = &spread
		out.AmihudIlliquidity = &amihud
		out.TurnoverRate = &turnover
	}
	return out, synthetic
}

func (a *RiskAnalyzer) fundamentalRisk(fundamentalsText string) (*dto.FundamentalRisk, bool) {
	out := &dto.FundamentalRisk{FundamentalRiskLevel: dto.GradeUnknown}
	if strings.TrimSpace(fundamentalsText) == "" {
		return out, false
	}

	out.DebtToEquity = numPtr(a.parser.LabeledValue(fundamentalsText, "负债权益比", "产权比率"))
	out.CurrentRatio = numPtr(a.parser.LabeledValue(fundamentalsText, "流动比率"))
	out.InterestCoverage = numPtr(a.parser.LabeledValue(fundamentalsText, "利息保障倍数"))
	out.AltmanZScore = numPtr(a.parser.LabeledValue(fundamentalsText, "Altman", "Z值", "Z-Score"))
	if v, ok := a.parser.LabeledValue(fundamentalsText, "Piotroski", "F-Score"); ok {
		n := int(math.Round(v))
		out.PiotroskiScore = &n
	}

	synthetic := false
	if a.cfg.AllowSynthetic {
		synthetic = fillMissing(&out.DebtToEquity, syntheticFundamentals.debtToEquity) || synthetic
		synthetic = fillMissing(&out.CurrentRatio, syntheticFundamentals.currentRatio) || synthetic
		synthetic = fillMissing(&out.InterestCoverage, syntheticFundamentals.interestCoverage) || synthetic
		synthetic = fillMissing(&out.AltmanZScore, syntheticFundamentals.altmanZ) || synthetic
		if out.PiotroskiScore == nil {
			n := syntheticFundamentals.piotroski
			out.PiotroskiScore = &n
			synthetic = true
		}
	}

	present := false
	score := 0.0
	if v := out.DebtToEquity; v != nil {
		present = true
		switch {
		case *v < 0.3:
			score += 25
		case *v < 0.6:
			score += 15
		default:
			score += 5
		}
	}
	if v := out.CurrentRatio; v != nil {
		present = true
		switch {
		case *v > 2.0:
			score += 25
		case *v > 1.5:
			score += 15
		default:
			score += 5
		}
	}
	if v := out.AltmanZScore; v != nil {
		present = true
		switch {
		case *v > 2.99:
			score += 25
		case *v > 1.81:
			score += 15
		default:
			score += 5
		}
	}
	if v := out.PiotroskiScore; v != nil {
		present = true
		switch {
		case *v >= 7:
			score += 25
		case *v >= 5:
			score += 15
		default:
			score += 5
		}
	}
	if !present {
		return out, synthetic
	}

	out.FundamentalRiskScore = score
	switch {
	case score >= 80:
		out.FundamentalRiskLevel = dto.LevelLow
	case score >= 60:
		out.FundamentalRiskLevel = dto.LevelMedium
	default:
		out.FundamentalRiskLevel = dto.LevelHigh
	}
	return out, synthetic
}

func (a *RiskAnalyzer) comprehensiveRisk(market *dto.MarketRisk, vol *dto.VolatilityMetrics,
	downside *dto.DownsideRisk, liquidity *dto.LiquidityRisk, fundamental *dto.FundamentalRisk) *dto.ComprehensiveRisk {

	scores := make(map[string]float64, len(riskFactorOrder))

	marketScore := 50.0
	if market.Beta != nil {
		switch beta := *market.Beta; {
		case beta > 1.5:
			marketScore += 30
		case beta > 1.2:
			marketScore += 20
		case beta < 0.8:
			marketScore -= 10
		}
	}
	if market.CorrelationWithMarket != nil && math.Abs(*market.CorrelationWithMarket) > 0.8 {
		marketScore += 15
	}
	scores["market_risk"] = utils.Clamp(marketScore, 0, 100)

	volScore := 50.0
	switch ann := vol.AnnualizedVolatility; {
	case ann > 0.4:
		volScore += 40
	case ann > 0.3:
		volScore += 25
	case ann > 0.2:
		volScore += 10
	default:
		volScore -= 10
	}
	scores["volatility_risk"] = utils.Clamp(volScore, 0, 100)

	downScore := 50.0
	switch mdd := downside.MaximumDrawdown; {
	case mdd < -0.3:
		downScore += 30
	case mdd < -0.2:
		downScore += 20
	case mdd < -0.1:
		downScore += 10
	}
	if downside.SortinoRatio != nil && *downside.SortinoRatio < 0.5 {
		downScore += 15
	}
	scores["downside_risk"] = utils.Clamp(downScore, 0, 100)

	// Missing sub-analyses read as neutral rather than maximal risk.
	scores["liquidity_risk"] = 50
	if liquidity.LiquidityLevel != dto.GradeUnknown {
		scores["liquidity_risk"] = 100 - liquidity.LiquidityScore
	}
	scores["fundamental_risk"] = 50
	if fundamental.FundamentalRiskLevel != dto.GradeUnknown {
		scores["fundamental_risk"] = 100 - fundamental.FundamentalRiskScore
	}

	w := a.cfg.Weights
	overall := scores["market_risk"]*w.Market +
		scores["volatility_risk"]*w.Volatility +
		scores["downside_risk"]*w.Downside +
		scores["liquidity_risk"]*w.Liquidity +
		scores["fundamental_risk"]*w.Fundamental

	level := dto.LevelHigh
	switch {
	case overall < 30:
		level = dto.LevelLow
	case overall < 60:
		level = dto.LevelMedium
	}

	factors := []string{}
	budget := make(map[string]string, len(riskFactorOrder))
	for _, name := range riskFactorOrder {
		if scores[name] > 60 {
			factors = append(factors, name)
		}
		switch {
		case scores[name] > 70:
			budget[name] = "需要重点关注和控制"
		case scores[name] > 50:
			budget[name] = "适度关注"
		default:
			budget[name] = "风险可控"
		}
	}

	out := &dto.ComprehensiveRisk{
		OverallRiskScore:     overall,
		RiskLevel:            level,
		RiskFactors:          factors,
		RiskConcentration:    scores,
		RiskBudgetAllocation: budget,
	}
	if vol.AnnualizedVolatility > 0 {
		sharpe := (a.cfg.MarketReturn - a.cfg.RiskFreeRate) / vol.AnnualizedVolatility
		out.SharpeRatio = &sharpe
	}
	if market.Alpha != nil && market.TrackingError != nil && *market.TrackingError > 0 {
		info := *market.Alpha / *market.TrackingError
		out.InformationRatio = &info
	}
	return out
}

func (a *RiskAnalyzer) riskAlerts(comp *dto.ComprehensiveRisk) []dto.RiskAlert {
	alerts := []dto.RiskAlert{}
	if comp.OverallRiskScore > 80 {
		alerts = append(alerts, dto.RiskAlert{
			Type:           "高风险警告",
			Level:          dto.LevelHigh,
			Description:    "综合风险评分过高，投资风险显著",
			Recommendation: "建议降低仓位或采取对冲措施",
		})
	}
	if comp.SharpeRatio != nil && *comp.SharpeRatio < 0.5 {
		alerts = append(alerts, dto.RiskAlert{
			Type:           "风险调整收益不佳",
			Level:          dto.LevelMedium,
			Description:    fmt.Sprintf("夏普比率为%.3f，风险调整后收益较低", *comp.SharpeRatio),
			Recommendation: "考虑寻找更好的风险收益比投资机会",
		})
	}
	for _, factor := range comp.RiskFactors {
		alerts = append(alerts, dto.RiskAlert{
			Type:           factor + "风险",
			Level:          dto.LevelMedium,
			Description:    factor + "评分较高，需要关注",
			Recommendation: "建议针对" + factor + "制定相应的风险管理策略",
		})
	}
	return alerts
}

func (a *RiskAnalyzer) recommendations(comp *dto.ComprehensiveRisk) []string {
	var recs []string
	switch comp.RiskLevel {
	case dto.LevelHigh:
		recs = []string{
			"建议降低投资仓位至总资产的10-20%",
			"考虑使用期权等衍生品进行对冲",
			"设置严格的止损点（建议5-8%）",
			"增加投资组合的分散化程度",
		}
	case dto.LevelMedium:
		recs = []string{
			"建议控制投资仓位在总资产的20-40%",
			"设置合理的止损点（建议8-12%）",
			"定期监控风险指标变化",
			"考虑配置部分低风险资产",
		}
	default:
		recs = []string{
			"当前风险水平可接受",
			"可适当增加投资仓位",
			"继续监控市场变化",
			"保持当前风险管理策略",
		}
	}
	for _, factor := range comp.RiskFactors {
		switch factor {
		case "liquidity_risk":
			recs = append(recs, "注意流动性风险，避免在市场波动时被迫卖出")
		case "volatility_risk":
			recs = append(recs, "考虑使用波动率策略或分批建仓")
		case "market_risk":
			recs = append(recs, "关注市场整体走势，考虑市场中性策略")
		}
	}
	return recs
}

func (a *RiskAnalyzer) dataQuality(stockText, marketText, fundamentalsText string) *dto.RiskDataQuality {
	limitations := []string{}

	priceQuality := 40.0
	if utf8.RuneCountInString(stockText) > 100 {
		priceQuality = 80
	} else {
		limitations = append(limitations, "价格数据不足")
	}
	marketQuality := 30.0
	if strings.TrimSpace(marketText) != "" {
		marketQuality = 70
	} else {
		limitations = append(limitations, "缺少市场基准数据")
	}
	fundamentalQuality := 25.0
	if strings.TrimSpace(fundamentalsText) != "" {
		fundamentalQuality = 75
	} else {
		limitations = append(limitations, "缺少基本面数据")
	}

	q := &dto.RiskDataQuality{
		PriceDataQuality:       priceQuality,
		MarketDataQuality:      marketQuality,
		FundamentalDataQuality: fundamentalQuality,
		OverallQuality:         priceQuality*0.5 + marketQuality*0.3 + fundamentalQuality*0.2,
		DataLimitations:        limitations,
	}
	switch {
	case q.OverallQuality >= 70:
		q.QualityLevel = dto.GradeGood
	case q.OverallQuality >= 50:
		q.QualityLevel = dto.GradeAverage
	default:
		q.QualityLevel = dto.GradePoor
	}
	return q
}

func syntheticPrices(rng *rand.Rand) []float64 {
	prices := make([]float64, 60)
	price := 100.0
	prices[0] = price
	for i := 1; i < len(prices); i++ {
		price *= 1 + 0.02*rng.NormFloat64()
		prices[i] = price
	}
	return prices
}

func toReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	out := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		out[i-1] = utils.SafeDiv(prices[i]-prices[i-1], prices[i-1], 0)
	}
	return out
}

func variance(values []float64) float64 {
	sd := utils.StdDev(values)
	return sd * sd
}

func covariance(a, b []float64) float64 {
	n := len(a)
	if n < 2 {
		return 0
	}
	ma := utils.Mean(a)
	mb := utils.Mean(b)
	var sum float64
	for i := range a {
		sum += (a[i] - ma) * (b[i] - mb)
	}
	return sum / float64(n-1)
}

func correlation(a, b []float64) (float64, bool) {
	sa := utils.StdDev(a)
	sb := utils.StdDev(b)
	if sa == 0 || sb == 0 {
		return 0, false
	}
	return covariance(a, b) / (sa * sb), true
}
