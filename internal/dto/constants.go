package dto

// Indicator state labels.
const (
	TrendUp   = "up"
	TrendDown = "down"

	RSIOverbought = "overbought"
	RSIOversold   = "oversold"
	RSINeutral    = "neutral"

	MACDBullish = "bullish"
	MACDBearish = "bearish"

	MomentumIncreasing = "increasing"
	MomentumDecreasing = "decreasing"

	VolumeTrendIncreasing = "increasing"
	VolumeTrendDecreasing = "decreasing"
	VolumeTrendUnknown    = "unknown"

	SqueezeYes = "yes"
	SqueezeNo  = "no"
)

// Trade signal vocabulary.
const (
	SignalBullish = "看涨"
	SignalBearish = "看跌"
	SignalBuy     = "买入"
	SignalSell    = "卖出"
	SignalNeutral = "中性"
)

// Investment ratings and the matching position sizes.
const (
	RatingStrongBuy = "强烈买入"
	RatingBuy       = "买入"
	RatingHold      = "持有"
	RatingReduce    = "减持"
	RatingSell      = "卖出"

	PositionHeavy    = "重仓"
	PositionStandard = "标准仓位"
	PositionLight    = "轻仓"
	PositionReduce   = "减仓"
	PositionExit     = "清仓"
)

// Valuation labels.
const (
	ValuationUndervalued = "低估"
	ValuationFair        = "合理"
	ValuationOvervalued  = "高估"
	ValuationUnknown     = "未知"
)

// Generic grade labels shared by health, quality and profitability scores.
const (
	GradeExcellent = "优秀"
	GradeGood      = "良好"
	GradeAverage   = "一般"
	GradePoor      = "较差"
	GradeUnknown   = "未知"
)

// Risk and impact level labels.
const (
	LevelLow    = "低"
	LevelMedium = "中"
	LevelHigh   = "高"

	RiskLevelMedium = "中等"
)

// Sentiment labels.
const (
	SentimentPositive = "积极"
	SentimentNegative = "消极"
	SentimentNeutral  = "中性"

	StrengthStrong = "强"
	StrengthMedium = "中"
	StrengthWeak   = "弱"

	TrendRising  = "上升"
	TrendFalling = "下降"
	TrendStable  = "稳定"
)
