package dto

import "time"

// Provenance marks whether a result block was computed from parsed input
// or backfilled with synthetic fallback values.
type Provenance string

const (
	ProvenanceReal      Provenance = "real"
	ProvenanceSynthetic Provenance = "synthetic_fallback"
)

// Bar is a single row of an OHLCV price table.
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
	Amount float64   `json:"amount"`
}

// NewsItem is one parsed news record.
type NewsItem struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Time    string `json:"time"`
	Source  string `json:"source"`
	URL     string `json:"url"`
}

type TechnicalPriceInfo struct {
	CurrentPrice float64 `json:"current_price"`
	PrevClose    float64 `json:"prev_close"`
	Change       float64 `json:"change"`
	ChangePct    float64 `json:"change_pct"`
	High52W      float64 `json:"high_52w"`
	Low52W       float64 `json:"low_52w"`
	From52WHigh  float64 `json:"from_52w_high"`
	From52WLow   float64 `json:"from_52w_low"`
}

type MovingAverage struct {
	Value    float64 `json:"value"`
	Distance float64 `json:"distance"`
	Trend    string  `json:"trend"`
}

type ExponentialMA struct {
	Value    float64 `json:"value"`
	Distance float64 `json:"distance"`
}

type RSIInfo struct {
	Value  float64 `json:"value"`
	Signal string  `json:"signal"`
	Trend  string  `json:"trend"`
}

type MACDInfo struct {
	Line      float64 `json:"macd_line"`
	Signal    float64 `json:"signal_line"`
	Histogram float64 `json:"histogram"`
	Cross     string  `json:"signal"`
	Momentum  string  `json:"momentum"`
}

type BollingerInfo struct {
	Upper    float64 `json:"upper"`
	Middle   float64 `json:"middle"`
	Lower    float64 `json:"lower"`
	Width    float64 `json:"width"`
	Position float64 `json:"position"`
	Squeeze  string  `json:"squeeze"`
}

type VolumeInfo struct {
	Current int64   `json:"current"`
	Avg20D  int64   `json:"avg_20d"`
	Ratio   float64 `json:"ratio"`
	Trend   string  `json:"trend"`
}

type ATRInfo struct {
	Value      float64 `json:"value"`
	Percentage float64 `json:"percentage"`
}

type SupportResistance struct {
	Resistance           float64 `json:"resistance"`
	Support              float64 `json:"support"`
	DistanceToResistance float64 `json:"distance_to_resistance"`
	DistanceToSupport    float64 `json:"distance_to_support"`
}

type TrendAnalysis struct {
	OverallTrend string `json:"overall_trend"`
	MAAlignment  string `json:"ma_alignment"`
}

// TechnicalResult holds every indicator category the technical analyzer
// could compute for the given series. Categories whose minimum window is
// not met are left nil and the report renders whatever is present.
type TechnicalResult struct {
	PriceInfo         *TechnicalPriceInfo      `json:"price_info,omitempty"`
	MovingAverages    map[string]MovingAverage `json:"moving_averages,omitempty"`
	EMA               map[string]ExponentialMA `json:"ema,omitempty"`
	RSI               *RSIInfo                 `json:"rsi,omitempty"`
	MACD              *MACDInfo                `json:"macd,omitempty"`
	BollingerBands    *BollingerInfo           `json:"bollinger_bands,omitempty"`
	Volume            *VolumeInfo              `json:"volume,omitempty"`
	ATR               *ATRInfo                 `json:"atr,omitempty"`
	SupportResistance *SupportResistance       `json:"support_resistance,omitempty"`
	Signals           map[string]string        `json:"signals,omitempty"`
	TrendAnalysis     *TrendAnalysis           `json:"trend_analysis,omitempty"`
	DataProvenance    Provenance               `json:"data_provenance,omitempty"`
	Error             string                   `json:"error,omitempty"`
}

// FundamentalsPriceInfo keeps every field nullable, a label that never
// appears in the input stays null in the output.
type FundamentalsPriceInfo struct {
	CurrentPrice  *float64 `json:"current_price"`
	MarketCap     *float64 `json:"market_cap"`
	PERatio       *float64 `json:"pe_ratio"`
	PBRatio       *float64 `json:"pb_ratio"`
	DividendYield *float64 `json:"dividend_yield"`
	Volume        *float64 `json:"volume"`
	AvgVolume     *float64 `json:"avg_volume"`
}

type ValuationMetrics struct {
	PERatio        *float64 `json:"pe_ratio"`
	PBRatio        *float64 `json:"pb_ratio"`
	PSRatio        *float64 `json:"ps_ratio"`
	PEGRatio       *float64 `json:"peg_ratio"`
	EVEBITDA       *float64 `json:"ev_ebitda"`
	DividendYield  *float64 `json:"dividend_yield"`
	ValuationLevel string   `json:"valuation_level"`
}

type FinancialHealth struct {
	DebtToEquity     *float64 `json:"debt_to_equity"`
	CurrentRatio     *float64 `json:"current_ratio"`
	QuickRatio       *float64 `json:"quick_ratio"`
	InterestCoverage *float64 `json:"interest_coverage"`
	CashRatio        *float64 `json:"cash_ratio"`
	WorkingCapital   *float64 `json:"working_capital"`
	HealthScore      float64  `json:"health_score"`
	HealthLevel      string   `json:"health_level"`
}

type GrowthMetrics struct {
	RevenueGrowth1Y      *float64 `json:"revenue_growth_1y"`
	RevenueGrowth3Y      *float64 `json:"revenue_growth_3y"`
	ProfitGrowth1Y       *float64 `json:"profit_growth_1y"`
	ProfitGrowth3Y       *float64 `json:"profit_growth_3y"`
	EPSGrowth1Y          *float64 `json:"eps_growth_1y"`
	ROETrend             string   `json:"roe_trend"`
	GrowthQuality        string   `json:"growth_quality"`
	GrowthSustainability string   `json:"growth_sustainability"`
}

type ProfitabilityMetrics struct {
	ROE                *float64 `json:"roe"`
	ROA                *float64 `json:"roa"`
	GrossMargin        *float64 `json:"gross_margin"`
	NetMargin          *float64 `json:"net_margin"`
	OperatingMargin    *float64 `json:"operating_margin"`
	ROIC               *float64 `json:"roic"`
	ProfitabilityTrend string   `json:"profitability_trend"`
	ProfitabilityLevel string   `json:"profitability_level"`
}

type SafetyMetrics struct {
	AltmanZScore      *float64 `json:"altman_z_score"`
	PiotroskiScore    *int     `json:"piotroski_score"`
	DebtServiceRatio  *float64 `json:"debt_service_ratio"`
	CashCoverage      *float64 `json:"cash_coverage"`
	BankruptcyRisk    string   `json:"bankruptcy_risk"`
	FinancialDistress string   `json:"financial_distress"`
	SafetyLevel       string   `json:"safety_level"`
}

type IndustryComparison struct {
	IndustryAvgPE      float64  `json:"industry_avg_pe"`
	IndustryAvgPB      float64  `json:"industry_avg_pb"`
	IndustryAvgROE     float64  `json:"industry_avg_roe"`
	PEPercentile       *float64 `json:"pe_percentile"`
	PBPercentile       *float64 `json:"pb_percentile"`
	RelativeValuation  string   `json:"relative_valuation"`
	IndustryPosition   string   `json:"industry_position"`
}

type FundamentalsDataQuality struct {
	Completeness float64 `json:"completeness"`
	Freshness    float64 `json:"freshness"`
	Reliability  float64 `json:"reliability"`
	OverallScore float64 `json:"overall_score"`
	QualityLevel string  `json:"quality_level"`
}

type FundamentalsResult struct {
	PriceInfo            *FundamentalsPriceInfo   `json:"price_info,omitempty"`
	ValuationMetrics     *ValuationMetrics        `json:"valuation_metrics,omitempty"`
	FinancialHealth      *FinancialHealth         `json:"financial_health,omitempty"`
	GrowthMetrics        *GrowthMetrics           `json:"growth_metrics,omitempty"`
	ProfitabilityMetrics *ProfitabilityMetrics    `json:"profitability_metrics,omitempty"`
	SafetyMetrics        *SafetyMetrics           `json:"safety_metrics,omitempty"`
	IndustryComparison   *IndustryComparison      `json:"industry_comparison,omitempty"`
	AnalysisDate         string                   `json:"analysis_date,omitempty"`
	DataQuality          *FundamentalsDataQuality `json:"data_quality,omitempty"`
	DataProvenance       Provenance               `json:"data_provenance,omitempty"`
	Error                string                   `json:"error,omitempty"`
}

type ArticleScore struct {
	Title     string  `json:"title"`
	Score     float64 `json:"score"`
	Sentiment string  `json:"sentiment"`
}

type SentimentDistribution struct {
	PositiveRatio float64 `json:"positive_ratio"`
	NegativeRatio float64 `json:"negative_ratio"`
	NeutralRatio  float64 `json:"neutral_ratio"`
}

type SentimentScores struct {
	IndividualScores      []ArticleScore        `json:"individual_scores"`
	PositiveCount         int                   `json:"positive_count"`
	NegativeCount         int                   `json:"negative_count"`
	NeutralCount          int                   `json:"neutral_count"`
	AverageScore          float64               `json:"average_score"`
	SentimentDistribution SentimentDistribution `json:"sentiment_distribution"`
	ExtremeSentimentRatio float64               `json:"extreme_sentiment_ratio"`
}

type ArticleWeight struct {
	Title         string  `json:"title"`
	Source        string  `json:"source"`
	BaseWeight    float64 `json:"base_weight"`
	ContentWeight float64 `json:"content_weight"`
	FinalWeight   float64 `json:"final_weight"`
}

type SourceWeightStat struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

type ImpactWeights struct {
	IndividualWeights []ArticleWeight             `json:"individual_weights"`
	SourceWeights     map[string]SourceWeightStat `json:"source_weights"`
	AverageWeight     float64                     `json:"average_weight"`
	HighImpactRatio   float64                     `json:"high_impact_ratio"`
}

type ArticleDecay struct {
	Title       string  `json:"title"`
	Time        string  `json:"time"`
	DecayFactor float64 `json:"decay_factor"`
}

type TimeDecayFactors struct {
	IndividualFactors []ArticleDecay `json:"individual_factors"`
	AverageDecay      float64        `json:"average_decay"`
	FreshNewsRatio    float64        `json:"fresh_news_ratio"`
}

type ComprehensiveSentiment struct {
	WeightedSentiment float64 `json:"weighted_sentiment"`
	ConfidenceScore   float64 `json:"confidence_score"`
	SentimentStrength string  `json:"sentiment_strength"`
	MarketImpactLevel string  `json:"market_impact_level"`
	OverallSentiment  string  `json:"overall_sentiment"`
}

type SentimentTrend struct {
	TrendDirection   string  `json:"trend_direction"`
	TrendStrength    float64 `json:"trend_strength"`
	Volatility       float64 `json:"volatility"`
	RecentChange     float64 `json:"recent_change"`
	TrendDescription string  `json:"trend_description"`
}

type HotTopics struct {
	KeywordFrequency map[string]int `json:"keyword_frequency"`
	HotKeywords      []string       `json:"hot_keywords"`
	TopicClusters    []string       `json:"topic_clusters"`
	EmergingTopics   []string       `json:"emerging_topics"`
}

type MarketAttention struct {
	NewsVolume            int            `json:"news_volume"`
	AttentionLevel        string         `json:"attention_level"`
	PeakAttentionTime     *string        `json:"peak_attention_time"`
	AttentionDistribution map[string]int `json:"attention_distribution"`
	MediaCoverageBreadth  int            `json:"media_coverage_breadth"`
}

type SentimentRiskAlert struct {
	Type           string `json:"type"`
	Level          string `json:"level"`
	Description    string `json:"description"`
	Recommendation string `json:"recommendation"`
}

type NewsDataQuality struct {
	Completeness      float64 `json:"completeness"`
	Timeliness        float64 `json:"timeliness"`
	SourceReliability float64 `json:"source_reliability"`
	OverallScore      float64 `json:"overall_score"`
	QualityLevel      string  `json:"quality_level"`
}

type SentimentResult struct {
	NewsCount              int                     `json:"news_count"`
	SentimentScores        *SentimentScores        `json:"sentiment_scores,omitempty"`
	ImpactWeights          *ImpactWeights          `json:"impact_weights,omitempty"`
	TimeDecayFactors       *TimeDecayFactors       `json:"time_decay_factors,omitempty"`
	ComprehensiveSentiment *ComprehensiveSentiment `json:"comprehensive_sentiment,omitempty"`
	SentimentTrend         *SentimentTrend         `json:"sentiment_trend,omitempty"`
	HotTopics              *HotTopics              `json:"hot_topics,omitempty"`
	MarketAttention        *MarketAttention        `json:"market_attention,omitempty"`
	RiskAlerts             []SentimentRiskAlert    `json:"risk_alerts"`
	AnalysisDate           string                  `json:"analysis_date,omitempty"`
	DataQuality            *NewsDataQuality        `json:"data_quality,omitempty"`
	DataProvenance         Provenance              `json:"data_provenance,omitempty"`
	Error                  string                  `json:"error,omitempty"`
}

type MarketRisk struct {
	Beta                  *float64 `json:"beta"`
	Alpha                 *float64 `json:"alpha"`
	CorrelationWithMarket *float64 `json:"correlation_with_market"`
	SystematicRisk        *float64 `json:"systematic_risk"`
	IdiosyncraticRisk     *float64 `json:"idiosyncratic_risk"`
	RSquared              *float64 `json:"r_squared"`
	TrackingError         *float64 `json:"tracking_error"`
	// BenchmarkProvenance records whether the market series the betas are
	// computed against was parsed or synthesized.
	BenchmarkProvenance Provenance `json:"benchmark_provenance,omitempty"`
}

type VolatilityMetrics struct {
	DailyVolatility      float64  `json:"daily_volatility"`
	AnnualizedVolatility float64  `json:"annualized_volatility"`
	VolatilityPercentile *float64 `json:"volatility_percentile"`
	GarchVolatility      *float64 `json:"garch_volatility"`
	RealizedVolatility   float64  `json:"realized_volatility"`
	VolatilityClustering float64  `json:"volatility_clustering"`
	VolatilityTrend      string   `json:"volatility_trend"`
}

type DownsideRisk struct {
	DownsideDeviation    *float64 `json:"downside_deviation"`
	SortinoRatio         *float64 `json:"sortino_ratio"`
	MaximumDrawdown      float64  `json:"maximum_drawdown"`
	CalmarRatio          *float64 `json:"calmar_ratio"`
	PainIndex            float64  `json:"pain_index"`
	UlcerIndex           float64  `json:"ulcer_index"`
	DownsideCaptureRatio *float64 `json:"downside_capture_ratio"`
}

type VarMetrics struct {
	Var95         float64  `json:"var_95"`
	Var99         float64  `json:"var_99"`
	CVar95        float64  `json:"cvar_95"`
	CVar99        float64  `json:"cvar_99"`
	VarParametric float64  `json:"var_parametric"`
	VarHistorical float64  `json:"var_historical"`
	VarMonteCarlo float64  `json:"var_monte_carlo"`
	VarRatio      *float64 `json:"var_ratio"`
}

type LiquidityRisk struct {
	BidAskSpread      *float64 `json:"bid_ask_spread"`
	VolumeVolatility  *float64 `json:"volume_volatility"`
	AmihudIlliquidity *float64 `json:"amihud_illiquidity"`
	TurnoverRate      *float64 `json:"turnover_rate"`
	LiquidityScore    float64  `json:"liquidity_score"`
	LiquidityLevel    string   `json:"liquidity_level"`
}

type FundamentalRisk struct {
	FinancialLeverage    *float64 `json:"financial_leverage"`
	DebtToEquity         *float64 `json:"debt_to_equity"`
	InterestCoverage     *float64 `json:"interest_coverage"`
	CurrentRatio         *float64 `json:"current_ratio"`
	AltmanZScore         *float64 `json:"altman_z_score"`
	PiotroskiScore       *int     `json:"piotroski_score"`
	FundamentalRiskScore float64  `json:"fundamental_risk_score"`
	FundamentalRiskLevel string   `json:"fundamental_risk_level"`
}

type ComprehensiveRisk struct {
	OverallRiskScore     float64            `json:"overall_risk_score"`
	RiskLevel            string             `json:"risk_level"`
	RiskFactors          []string           `json:"risk_factors"`
	RiskConcentration    map[string]float64 `json:"risk_concentration"`
	RiskAdjustedReturn   *float64           `json:"risk_adjusted_return"`
	SharpeRatio          *float64           `json:"sharpe_ratio"`
	InformationRatio     *float64           `json:"information_ratio"`
	RiskBudgetAllocation map[string]string  `json:"risk_budget_allocation"`
}

type RiskAlert struct {
	Type           string `json:"type"`
	Level          string `json:"level"`
	Description    string `json:"description"`
	Recommendation string `json:"recommendation"`
}

type RiskDataQuality struct {
	PriceDataQuality       float64  `json:"price_data_quality"`
	MarketDataQuality      float64  `json:"market_data_quality"`
	FundamentalDataQuality float64  `json:"fundamental_data_quality"`
	OverallQuality         float64  `json:"overall_quality"`
	QualityLevel           string   `json:"quality_level"`
	DataLimitations        []string `json:"data_limitations"`
}

type RiskResult struct {
	PriceDataPoints     int                `json:"price_data_points"`
	AnalysisPeriod      string             `json:"analysis_period,omitempty"`
	MarketRisk          *MarketRisk        `json:"market_risk,omitempty"`
	VolatilityMetrics   *VolatilityMetrics `json:"volatility_metrics,omitempty"`
	DownsideRisk        *DownsideRisk      `json:"downside_risk,omitempty"`
	VarMetrics          *VarMetrics        `json:"var_metrics,omitempty"`
	LiquidityRisk       *LiquidityRisk     `json:"liquidity_risk,omitempty"`
	FundamentalRisk     *FundamentalRisk   `json:"fundamental_risk,omitempty"`
	ComprehensiveRisk   *ComprehensiveRisk `json:"comprehensive_risk,omitempty"`
	RiskAlerts          []RiskAlert        `json:"risk_alerts"`
	RiskRecommendations []string           `json:"risk_recommendations"`
	AnalysisDate        string             `json:"analysis_date,omitempty"`
	DataQuality         *RiskDataQuality   `json:"data_quality,omitempty"`
	DataProvenance      Provenance         `json:"data_provenance,omitempty"`
	Error               string             `json:"error,omitempty"`
}

type ComprehensiveSummary struct {
	TechnicalScore    float64  `json:"technical_score"`
	FundamentalsScore float64  `json:"fundamentals_score"`
	SentimentScore    float64  `json:"sentiment_score"`
	RiskScore         float64  `json:"risk_score"`
	OverallScore      float64  `json:"overall_score"`
	KeyPoints         []string `json:"key_points"`
	Strengths         []string `json:"strengths"`
	Weaknesses        []string `json:"weaknesses"`
}

type InvestmentRecommendation struct {
	Rating       string   `json:"rating"`
	TargetPrice  *float64 `json:"target_price"`
	TimeHorizon  string   `json:"time_horizon"`
	RiskLevel    string   `json:"risk_level"`
	PositionSize string   `json:"position_size"`
	RiskWarnings []string `json:"risk_warnings"`
	ActionItems  []string `json:"action_items"`
}

type AnalysisQuality struct {
	DataCompleteness   float64  `json:"data_completeness"`
	AnalysisCoverage   float64  `json:"analysis_coverage"`
	OverallQuality     string   `json:"overall_quality"`
	QualityDescription string   `json:"quality_description"`
	Limitations        []string `json:"limitations"`
}

// AggregateResult is the merged output of all four analyzers. Domain
// fields stay addressable even when empty so downstream consumers can
// distinguish "not run" (nil) from "ran and failed" (Error set).
type AggregateResult struct {
	Ticker                   string                    `json:"ticker"`
	CompanyName              string                    `json:"company_name"`
	AnalysisDate             string                    `json:"analysis_date"`
	TechnicalAnalysis        *TechnicalResult          `json:"technical_analysis"`
	FundamentalsAnalysis     *FundamentalsResult       `json:"fundamentals_analysis"`
	SentimentAnalysis        *SentimentResult          `json:"sentiment_analysis"`
	RiskAnalysis             *RiskResult               `json:"risk_analysis"`
	ComprehensiveSummary     *ComprehensiveSummary     `json:"comprehensive_summary"`
	InvestmentRecommendation *InvestmentRecommendation `json:"investment_recommendation"`
	AnalysisQuality          *AnalysisQuality          `json:"analysis_quality"`
}
