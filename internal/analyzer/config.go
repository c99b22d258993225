package analyzer

// TechnicalConfig carries the indicator windows and thresholds of the
// technical analyzer.
type TechnicalConfig struct {
	MinBars         int
	MAPeriods       []int
	EMASpans        []int
	RSIPeriod       int
	RSIOverbought   float64
	RSIOversold     float64
	MACDFast        int
	MACDSlow        int
	MACDSignalSpan  int
	BollingerPeriod int
	BollingerWidth  float64
	VolumeAvgPeriod int
	ATRPeriod       int
	SupportWindow   int
	YearWindow      int
}

func DefaultTechnicalConfig() TechnicalConfig {
	return TechnicalConfig{
		MinBars:         5,
		MAPeriods:       []int{5, 10, 20, 50, 200},
		EMASpans:        []int{12, 26},
		RSIPeriod:       14,
		RSIOverbought:   70,
		RSIOversold:     30,
		MACDFast:        12,
		MACDSlow:        26,
		MACDSignalSpan:  9,
		BollingerPeriod: 20,
		BollingerWidth:  2,
		VolumeAvgPeriod: 20,
		ATRPeriod:       14,
		SupportWindow:   20,
		YearWindow:      252,
	}
}

// FundamentalsConfig carries the valuation bands, health thresholds and
// industry baselines of the fundamentals analyzer.
type FundamentalsConfig struct {
	UndervaluedMaxPE    float64
	UndervaluedMaxPB    float64
	OvervaluedMinPE     float64
	OvervaluedMinPB     float64
	MaxDebtToEquity     float64
	MinCurrentRatio     float64
	MinQuickRatio       float64
	MinInterestCoverage float64
	MinCashRatio        float64
	IndustryAvgPE       float64
	IndustryAvgPB       float64
	IndustryAvgROE      float64
	RelativeLowRatio    float64
	RelativeHighRatio   float64
	AllowSynthetic      bool
}

func DefaultFundamentalsConfig() FundamentalsConfig {
	return FundamentalsConfig{
		UndervaluedMaxPE:    15,
		UndervaluedMaxPB:    2,
		OvervaluedMinPE:     30,
		OvervaluedMinPB:     5,
		MaxDebtToEquity:     0.5,
		MinCurrentRatio:     1.5,
		MinQuickRatio:       1.0,
		MinInterestCoverage: 5,
		MinCashRatio:        0.2,
		IndustryAvgPE:       18.5,
		IndustryAvgPB:       2.3,
		IndustryAvgROE:      12.8,
		RelativeLowRatio:    0.8,
		RelativeHighRatio:   1.2,
	}
}

// SourceWeight pairs a media source marker with its credibility weight.
// Matching walks the list in order, the first marker contained in the
// source name wins.
type SourceWeight struct {
	Name   string
	Weight float64
}

// SentimentConfig carries the keyword lexicons, source weights and
// classification thresholds of the sentiment analyzer.
type SentimentConfig struct {
	PositiveKeywords     map[string]float64
	NegativeKeywords     map[string]float64
	SourceWeights        []SourceWeight
	DefaultSourceWeight  float64
	HighImpactKeywords   []string
	HighImpactMultiplier float64
	NumberMultiplier     float64
	MaxContentWeight     float64
	ClassifyThreshold    float64
	ReliableSources      []string
}

func DefaultSentimentConfig() SentimentConfig {
	return SentimentConfig{
		PositiveKeywords: map[string]float64{
			"上涨": 0.8, "涨停": 1.0, "突破": 0.7, "创新高": 0.9, "利好": 0.8,
			"盈利": 0.6, "增长": 0.7, "扩张": 0.6, "合作": 0.5, "签约": 0.6,
			"中标": 0.7, "获得": 0.5, "成功": 0.6, "优秀": 0.5, "强劲": 0.7,
			"超预期": 0.8, "买入": 0.6, "推荐": 0.5, "看好": 0.6, "乐观": 0.6,
		},
		NegativeKeywords: map[string]float64{
			"下跌": -0.8, "跌停": -1.0, "暴跌": -0.9, "破位": -0.7, "利空": -0.8,
			"亏损": -0.7, "下滑": -0.6, "萎缩": -0.6, "风险": -0.6, "警告": -0.7,
			"调查": -0.5, "处罚": -0.8, "失败": -0.6, "困难": -0.5, "疲软": -0.6,
			"低于预期": -0.7, "卖出": -0.6, "减持": -0.5, "看空": -0.6, "悲观": -0.6,
		},
		// More specific markers go first, the bare 财经 tier last, so
		// 新浪财经 resolves to its own weight and not the generic one.
		SourceWeights: []SourceWeight{
			{"央视新闻", 1.0}, {"新华社", 1.0}, {"人民日报", 1.0},
			{"证券时报", 0.9}, {"上海证券报", 0.9}, {"中国证券报", 0.9},
			{"第一财经", 0.8}, {"21世纪经济报道", 0.8},
			{"新浪财经", 0.7}, {"腾讯财经", 0.7}, {"网易财经", 0.7},
			{"财经", 0.8},
		},
		DefaultSourceWeight:  0.5,
		HighImpactKeywords:   []string{"政策", "监管", "业绩", "重组", "并购", "IPO", "退市"},
		HighImpactMultiplier: 1.2,
		NumberMultiplier:     1.1,
		MaxContentWeight:     2.0,
		ClassifyThreshold:    0.3,
		ReliableSources: []string{
			"央视", "新华社", "人民日报", "证券时报", "上海证券报", "中国证券报",
		},
	}
}

// RiskWeights splits the composite risk score across the five factors.
type RiskWeights struct {
	Market      float64
	Volatility  float64
	Downside    float64
	Liquidity   float64
	Fundamental float64
}

// RiskConfig carries the market assumptions and windows of the risk
// analyzer. RandomSeed fixes the Monte Carlo and synthetic series so a
// given input always produces the same numbers.
type RiskConfig struct {
	RiskFreeRate      float64
	MarketReturn      float64
	TradingDays       int
	MinPricePoints    int
	MinVolumePoints   int
	EWMALambda        float64
	MonteCarloSamples int
	Weights           RiskWeights
	AllowSynthetic    bool
	RandomSeed        int64
}

func DefaultRiskConfig() RiskConfig {
	return RiskConfig{
		RiskFreeRate:      0.025,
		MarketReturn:      0.08,
		TradingDays:       252,
		MinPricePoints:    30,
		MinVolumePoints:   10,
		EWMALambda:        0.94,
		MonteCarloSamples: 10000,
		Weights: RiskWeights{
			Market:      0.25,
			Volatility:  0.25,
			Downside:    0.20,
			Liquidity:   0.15,
			Fundamental: 0.15,
		},
		RandomSeed: 42,
	}
}
