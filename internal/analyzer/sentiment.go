package analyzer

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"golang-stock-analysis/internal/dto"
	"golang-stock-analysis/internal/textparse"
	"golang-stock-analysis/pkg/logger"
	"golang-stock-analysis/pkg/utils"
)

var (
	hanWordRe    = regexp.MustCompile(`[\x{4e00}-\x{9fa5}]{2,4}`)
	numberHintRe = regexp.MustCompile(`\d+%|\d+亿|\d+万`)
)

// SentimentAnalyzer scores news records with a keyword lexicon and
// aggregates them into weighted sentiment, trend and attention metrics.
type SentimentAnalyzer struct {
	cfg    SentimentConfig
	log    *logger.Logger
	parser *textparse.Parser
}

func NewSentimentAnalyzer(cfg SentimentConfig, log *logger.Logger) *SentimentAnalyzer {
	return &SentimentAnalyzer{
		cfg:    cfg,
		log:    log,
		parser: textparse.New(),
	}
}

func (a *SentimentAnalyzer) Analyze(ctx context.Context, newsText string) (*dto.SentimentResult, error) {
	items := a.parser.ParseNewsRecords(newsText)
	if len(items) == 0 {
		return nil, fmt.Errorf("无法解析新闻数据: %w", textparse.ErrNoData)
	}
	a.log.DebugContext(ctx, "scoring news sentiment", logger.IntField("articles", len(items)))

	scores := a.scoreArticles(items)
	weights := a.impactWeights(items)
	decay := a.timeDecay(items)

	scoreVals := make([]float64, len(items))
	for i, s := range scores.IndividualScores {
		scoreVals[i] = s.Score
	}
	weightVals := make([]float64, len(items))
	for i, w := range weights.IndividualWeights {
		weightVals[i] = w.FinalWeight
	}
	decayVals := make([]float64, len(items))
	for i, d := range decay.IndividualFactors {
		decayVals[i] = d.DecayFactor
	}

	comprehensive := a.comprehensive(scoreVals, weightVals, decayVals)
	trend := a.trend(scoreVals)

	return &dto.SentimentResult{
		NewsCount:              len(items),
		SentimentScores:        scores,
		ImpactWeights:          weights,
		TimeDecayFactors:       decay,
		ComprehensiveSentiment: comprehensive,
		SentimentTrend:         trend,
		HotTopics:              a.hotTopics(items),
		MarketAttention:        a.marketAttention(items),
		RiskAlerts:             a.riskAlerts(comprehensive, trend),
		AnalysisDate:           time.Now().Format("2006-01-02 15:04:05"),
		DataQuality:            a.dataQuality(items),
		DataProvenance:         dto.ProvenanceReal,
	}, nil
}

// scoreText sums keyword hits weighted by polarity and normalizes by the
// square root of the hit count, clamped to [-1, 1].
func (a *SentimentAnalyzer) scoreText(text string) float64 {
	var total float64
	var hits int
	for kw, w := range a.cfg.PositiveKeywords {
		c := strings.Count(text, kw)
		total += float64(c) * w
		hits += c
	}
	for kw, w := range a.cfg.NegativeKeywords {
		c := strings.Count(text, kw)
		total += float64(c) * w
		hits += c
	}
	if hits > 0 {
		total /= math.Sqrt(float64(hits))
	}
	return utils.Clamp(total, -1, 1)
}

func (a *SentimentAnalyzer) scoreArticles(items []dto.NewsItem) *dto.SentimentScores {
	n := len(items)
	out := &dto.SentimentScores{IndividualScores: make([]dto.ArticleScore, 0, n)}

	var sum float64
	var extreme int
	for _, it := range items {
		score := a.scoreText(it.Title + " " + it.Content)
		label := dto.SentimentNeutral
		switch {
		case score > a.cfg.ClassifyThreshold:
			label = dto.SentimentPositive
		case score < -a.cfg.ClassifyThreshold:
			label = dto.SentimentNegative
		}
		out.IndividualScores = append(out.IndividualScores, dto.ArticleScore{
			Title:     it.Title,
			Score:     score,
			Sentiment: label,
		})

		switch {
		case score > 0.1:
			out.PositiveCount++
		case score < -0.1:
			out.NegativeCount++
		default:
			out.NeutralCount++
		}
		if math.Abs(score) > 0.7 {
			extreme++
		}
		sum += score
	}

	out.AverageScore = sum / float64(n)
	out.SentimentDistribution = dto.SentimentDistribution{
		PositiveRatio: float64(out.PositiveCount) / float64(n),
		NegativeRatio: float64(out.NegativeCount) / float64(n),
		NeutralRatio:  float64(out.NeutralCount) / float64(n),
	}
	out.ExtremeSentimentRatio = float64(extreme) / float64(n)
	return out
}

// sourceWeight walks the ordered weight table, first marker contained in
// the source name wins.
func (a *SentimentAnalyzer) sourceWeight(source string) float64 {
	for _, sw := range a.cfg.SourceWeights {
		if strings.Contains(source, sw.Name) {
			return sw.Weight
		}
	}
	return a.cfg.DefaultSourceWeight
}

func (a *SentimentAnalyzer) contentWeight(text string) float64 {
	weight := 1.0
	for _, kw := range a.cfg.HighImpactKeywords {
		if strings.Contains(text, kw) {
			weight *= a.cfg.HighImpactMultiplier
		}
	}
	if numberHintRe.MatchString(text) {
		weight *= a.cfg.NumberMultiplier
	}
	return math.Min(weight, a.cfg.MaxContentWeight)
}

func (a *SentimentAnalyzer) impactWeights(items []dto.NewsItem) *dto.ImpactWeights {
	n := len(items)
	out := &dto.ImpactWeights{
		IndividualWeights: make([]dto.ArticleWeight, 0, n),
		SourceWeights:     make(map[string]dto.SourceWeightStat),
	}

	perSource := make(map[string][]float64)
	var sum float64
	var highImpact int
	for _, it := range items {
		base := a.sourceWeight(it.Source)
		content := a.contentWeight(it.Title + " " + it.Content)
		final := base * content
		out.IndividualWeights = append(out.IndividualWeights, dto.ArticleWeight{
			Title:         it.Title,
			Source:        it.Source,
			BaseWeight:    base,
			ContentWeight: content,
			FinalWeight:   final,
		})
		perSource[it.Source] = append(perSource[it.Source], final)
		sum += final
		if final > 0.7 {
			highImpact++
		}
	}

	for source, weights := range perSource {
		out.SourceWeights[source] = dto.SourceWeightStat{
			Average: utils.Mean(weights),
			Count:   len(weights),
		}
	}
	out.AverageWeight = sum / float64(n)
	out.HighImpactRatio = float64(highImpact) / float64(n)
	return out
}

// decayFactor maps a relative timestamp to a freshness multiplier.
func (a *SentimentAnalyzer) decayFactor(timeStr string) float64 {
	r := a.parser.ParseTimeRecency(timeStr)
	switch r.Unit {
	case textparse.RecencyHours:
		if r.Count < 24 {
			return 1.0
		}
		return 0.9
	case textparse.RecencyDays:
		return dayDecay(r.Count)
	case textparse.RecencyWeeks:
		return dayDecay(r.Count * 7)
	case textparse.RecencyMonths:
		return dayDecay(r.Count * 30)
	case textparse.RecencyUnknown:
		return 0.5
	default:
		return 1.0
	}
}

func dayDecay(days int) float64 {
	switch {
	case days == 1:
		return 0.9
	case days == 2:
		return 0.8
	case days == 3:
		return 0.7
	case days <= 7:
		return 0.6
	case days <= 14:
		return 0.4
	case days <= 30:
		return 0.2
	default:
		return 0.1
	}
}

func (a *SentimentAnalyzer) timeDecay(items []dto.NewsItem) *dto.TimeDecayFactors {
	n := len(items)
	out := &dto.TimeDecayFactors{IndividualFactors: make([]dto.ArticleDecay, 0, n)}

	var sum float64
	var fresh int
	for _, it := range items {
		d := a.decayFactor(it.Time)
		out.IndividualFactors = append(out.IndividualFactors, dto.ArticleDecay{
			Title:       it.Title,
			Time:        it.Time,
			DecayFactor: d,
		})
		sum += d
		if d > 0.8 {
			fresh++
		}
	}
	out.AverageDecay = sum / float64(n)
	out.FreshNewsRatio = float64(fresh) / float64(n)
	return out
}

func (a *SentimentAnalyzer) comprehensive(scores, weights, decays []float64) *dto.ComprehensiveSentiment {
	out := &dto.ComprehensiveSentiment{
		SentimentStrength: dto.StrengthWeak,
		MarketImpactLevel: dto.LevelLow,
		OverallSentiment:  dto.SentimentNeutral,
	}

	var num, den float64
	for i := range scores {
		num += scores[i] * weights[i] * decays[i]
		den += weights[i] * decays[i]
	}
	if den > 0 {
		out.WeightedSentiment = num / den
	}
	out.ConfidenceScore = math.Min(1, float64(len(scores))/10*utils.Mean(weights)*utils.Mean(decays))

	abs := math.Abs(out.WeightedSentiment)
	switch {
	case abs > 0.6:
		out.SentimentStrength = dto.StrengthStrong
	case abs > 0.3:
		out.SentimentStrength = dto.StrengthMedium
	}
	switch impact := abs * out.ConfidenceScore; {
	case impact > 0.7:
		out.MarketImpactLevel = dto.LevelHigh
	case impact > 0.4:
		out.MarketImpactLevel = dto.LevelMedium
	}
	switch {
	case out.WeightedSentiment > 0.2:
		out.OverallSentiment = dto.SentimentPositive
	case out.WeightedSentiment < -0.2:
		out.OverallSentiment = dto.SentimentNegative
	}
	return out
}

func (a *SentimentAnalyzer) trend(scores []float64) *dto.SentimentTrend {
	out := &dto.SentimentTrend{TrendDirection: dto.TrendStable}
	if len(scores) < 3 {
		return out
	}

	recent := scores[len(scores)-3:]
	earlier := scores[:3]
	if len(scores) > 3 {
		earlier = scores[:len(scores)-3]
	}
	change := utils.Mean(recent) - utils.Mean(earlier)

	switch {
	case change > 0.1:
		out.TrendDirection = dto.TrendRising
	case change < -0.1:
		out.TrendDirection = dto.TrendFalling
	}
	out.TrendStrength = math.Abs(change)
	out.RecentChange = change
	if len(scores) > 1 {
		out.Volatility = utils.StdDevP(scores)
	}

	word := "轻微"
	switch {
	case math.Abs(change) > 0.3:
		word = "强烈"
	case math.Abs(change) > 0.1:
		word = "明显"
	}
	out.TrendDescription = fmt.Sprintf("情绪呈%s%s趋势", word, out.TrendDirection)
	return out
}

func (a *SentimentAnalyzer) hotTopics(items []dto.NewsItem) *dto.HotTopics {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	for _, it := range items {
		for _, w := range hanWordRe.FindAllString(it.Title+" "+it.Content+" ", -1) {
			if _, ok := counts[w]; !ok {
				firstSeen[w] = len(firstSeen)
			}
			counts[w]++
		}
	}

	words := make([]string, 0, len(counts))
	for w := range counts {
		words = append(words, w)
	}
	// Highest count first, ties keep first appearance order.
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return firstSeen[words[i]] < firstSeen[words[j]]
	})

	out := &dto.HotTopics{
		KeywordFrequency: make(map[string]int),
		HotKeywords:      []string{},
		TopicClusters:    []string{},
		EmergingTopics:   []string{},
	}
	for i, w := range words {
		if i >= 20 {
			break
		}
		out.KeywordFrequency[w] = counts[w]
		if i < 10 && counts[w] >= 2 {
			out.HotKeywords = append(out.HotKeywords, w)
		}
	}
	return out
}

func (a *SentimentAnalyzer) marketAttention(items []dto.NewsItem) *dto.MarketAttention {
	n := len(items)
	level := dto.LevelLow
	switch {
	case n > 20:
		level = dto.LevelHigh
	case n > 10:
		level = dto.LevelMedium
	}

	sources := make(map[string]struct{})
	for _, it := range items {
		sources[it.Source] = struct{}{}
	}
	return &dto.MarketAttention{
		NewsVolume:            n,
		AttentionLevel:        level,
		AttentionDistribution: map[string]int{},
		MediaCoverageBreadth:  len(sources),
	}
}

func (a *SentimentAnalyzer) riskAlerts(comp *dto.ComprehensiveSentiment, trend *dto.SentimentTrend) []dto.SentimentRiskAlert {
	alerts := []dto.SentimentRiskAlert{}
	if comp.WeightedSentiment < -0.6 {
		alerts = append(alerts, dto.SentimentRiskAlert{
			Type:           "极端负面情绪",
			Level:          dto.LevelHigh,
			Description:    "检测到极端负面情绪，可能对股价产生重大负面影响",
			Recommendation: "建议密切关注市场反应，考虑风险控制措施",
		})
	}
	if trend.TrendDirection == dto.TrendFalling && trend.TrendStrength > 0.4 {
		alerts = append(alerts, dto.SentimentRiskAlert{
			Type:           "情绪急剧恶化",
			Level:          dto.LevelMedium,
			Description:    "情绪呈现急剧下降趋势，市场信心可能受到冲击",
			Recommendation: "建议关注后续新闻动态，评估影响持续性",
		})
	}
	if trend.Volatility > 0.5 {
		alerts = append(alerts, dto.SentimentRiskAlert{
			Type:           "情绪高波动",
			Level:          dto.LevelMedium,
			Description:    "情绪波动性较高，市场可能面临不确定性",
			Recommendation: "建议谨慎操作，注意风险管理",
		})
	}
	return alerts
}

func (a *SentimentAnalyzer) dataQuality(items []dto.NewsItem) *dto.NewsDataQuality {
	n := len(items)
	var complete, timely, reliable int
	for _, it := range items {
		if it.Title != "" && it.Content != "" && it.Source != "" {
			complete++
		}
		if strings.Contains(it.Time, "小时前") || strings.Contains(it.Time, "今天") {
			timely++
		}
		if utils.ContainsAnySubstring(it.Source, a.cfg.ReliableSources) {
			reliable++
		}
	}

	q := &dto.NewsDataQuality{
		Completeness:      float64(complete) / float64(n) * 100,
		Timeliness:        float64(timely) / float64(n) * 100,
		SourceReliability: float64(reliable) / float64(n) * 100,
	}
	q.OverallScore = q.Completeness*0.4 + q.Timeliness*0.3 + q.SourceReliability*0.3
	switch {
	case q.OverallScore >= 80:
		q.QualityLevel = dto.GradeExcellent
	case q.OverallScore >= 60:
		q.QualityLevel = dto.GradeGood
	default:
		q.QualityLevel = dto.GradeAverage
	}
	return q
}
