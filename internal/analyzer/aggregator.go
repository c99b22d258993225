package analyzer

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"golang-stock-analysis/internal/dto"
	"golang-stock-analysis/pkg/logger"
)

// Config bundles the per-domain analyzer settings.
type Config struct {
	Technical    TechnicalConfig
	Fundamentals FundamentalsConfig
	Sentiment    SentimentConfig
	Risk         RiskConfig
}

func DefaultConfig() Config {
	return Config{
		Technical:    DefaultTechnicalConfig(),
		Fundamentals: DefaultFundamentalsConfig(),
		Sentiment:    DefaultSentimentConfig(),
		Risk:         DefaultRiskConfig(),
	}
}

// Input carries the raw text blocks for one ticker. Empty fields skip
// the analyses that depend on them.
type Input struct {
	Ticker           string
	CompanyName      string
	PriceText        string
	FundamentalsText string
	NewsText         string
	MarketText       string
}

// Aggregator runs the four analyzers and merges their output into a
// scored recommendation. A failed analyzer never fails the whole run,
// its error lands in the domain result instead.
type Aggregator struct {
	log          *logger.Logger
	technical    *TechnicalAnalyzer
	fundamentals *FundamentalsAnalyzer
	sentiment    *SentimentAnalyzer
	risk         *RiskAnalyzer
}

func NewAggregator(cfg Config, log *logger.Logger) *Aggregator {
	return &Aggregator{
		log:          log,
		technical:    NewTechnicalAnalyzer(cfg.Technical, log),
		fundamentals: NewFundamentalsAnalyzer(cfg.Fundamentals, log),
		sentiment:    NewSentimentAnalyzer(cfg.Sentiment, log),
		risk:         NewRiskAnalyzer(cfg.Risk, log),
	}
}

// ComprehensiveAnalysis produces the full merged result. Technical and
// sentiment analysis only run when their input text is present,
// fundamentals and risk always run and degrade through their own data
// quality scoring.
func (g *Aggregator) ComprehensiveAnalysis(ctx context.Context, in Input) *dto.AggregateResult {
	company := in.CompanyName
	if company == "" {
		company = "未知公司"
	}
	result := &dto.AggregateResult{
		Ticker:       in.Ticker,
		CompanyName:  company,
		AnalysisDate: time.Now().Format("2006-01-02 15:04:05"),
	}

	group, groupCtx := errgroup.WithContext(ctx)
	if strings.TrimSpace(in.PriceText) != "" {
		group.Go(func() error {
			tech, err := g.technical.Analyze(groupCtx, in.PriceText)
			if err != nil {
				g.log.WarnContext(groupCtx, "technical analysis failed",
					logger.StringField("ticker", in.Ticker), logger.ErrorField(err))
				tech = &dto.TechnicalResult{Error: err.Error()}
			}
			result.TechnicalAnalysis = tech
			return nil
		})
	}
	group.Go(func() error {
		fund, err := g.fundamentals.Analyze(groupCtx, in.PriceText, in.FundamentalsText)
		if err != nil {
			g.log.WarnContext(groupCtx, "fundamentals analysis failed",
				logger.StringField("ticker", in.Ticker), logger.ErrorField(err))
			fund = &dto.FundamentalsResult{Error: err.Error()}
		}
		result.FundamentalsAnalysis = fund
		return nil
	})
	if strings.TrimSpace(in.NewsText) != "" {
		group.Go(func() error {
			sent, err := g.sentiment.Analyze(groupCtx, in.NewsText)
			if err != nil {
				g.log.WarnContext(groupCtx, "sentiment analysis failed",
					logger.StringField("ticker", in.Ticker), logger.ErrorField(err))
				sent = &dto.SentimentResult{Error: err.Error()}
			}
			result.SentimentAnalysis = sent
			return nil
		})
	}
	group.Go(func() error {
		risk, err := g.risk.Analyze(groupCtx, in.PriceText, in.MarketText, in.FundamentalsText)
		if err != nil {
			g.log.WarnContext(groupCtx, "risk analysis failed",
				logger.StringField("ticker", in.Ticker), logger.ErrorField(err))
			risk = &dto.RiskResult{Error: err.Error()}
		}
		result.RiskAnalysis = risk
		return nil
	})
	_ = group.Wait()

	result.ComprehensiveSummary = g.summarize(result)
	result.InvestmentRecommendation = g.recommend(result, result.ComprehensiveSummary)
	result.AnalysisQuality = g.assessQuality(in, result)
	return result
}

func (g *Aggregator) summarize(r *dto.AggregateResult) *dto.ComprehensiveSummary {
	s := &dto.ComprehensiveSummary{
		KeyPoints:  []string{},
		Strengths:  []string{},
		Weaknesses: []string{},
	}

	if t := r.TechnicalAnalysis; t != nil && t.Error == "" {
		s.TechnicalScore = 50
		if len(t.Signals) > 0 {
			positive := 0
			for _, sig := range t.Signals {
				if sig == dto.SignalBuy || sig == dto.SignalBullish {
					positive++
				}
			}
			s.TechnicalScore = float64(positive) / float64(len(t.Signals)) * 100
		}
		if t.TrendAnalysis != nil && t.TrendAnalysis.OverallTrend != "" {
			s.KeyPoints = append(s.KeyPoints, "技术面趋势: "+t.TrendAnalysis.OverallTrend)
		}
		appendJudgement(s, s.TechnicalScore, "技术面表现强劲", "技术面偏弱")
	}
	if f := r.FundamentalsAnalysis; f != nil && f.Error == "" {
		score := 50.0
		if f.FinancialHealth != nil {
			score = f.FinancialHealth.HealthScore
		}
		if f.ValuationMetrics != nil {
			switch f.ValuationMetrics.ValuationLevel {
			case dto.ValuationUndervalued:
				score = min(100, score+20)
			case dto.ValuationOvervalued:
				score = max(0, score-20)
			}
			if f.ValuationMetrics.ValuationLevel != dto.ValuationUnknown {
				s.KeyPoints = append(s.KeyPoints, "估值水平: "+f.ValuationMetrics.ValuationLevel)
			}
		}
		s.FundamentalsScore = score
		appendJudgement(s, score, "基本面健康", "基本面存在问题")
	}
	if sn := r.SentimentAnalysis; sn != nil && sn.Error == "" {
		if c := sn.ComprehensiveSentiment; c != nil {
			s.SentimentScore = (c.WeightedSentiment + 1) * 50 * c.ConfidenceScore
			if c.OverallSentiment != "" {
				s.KeyPoints = append(s.KeyPoints, "市场情绪: "+c.OverallSentiment)
			}
		}
		appendJudgement(s, s.SentimentScore, "市场情绪积极", "市场情绪消极")
	}
	if rk := r.RiskAnalysis; rk != nil && rk.Error == "" {
		if c := rk.ComprehensiveRisk; c != nil {
			s.RiskScore = 100 - c.OverallRiskScore
			s.KeyPoints = append(s.KeyPoints, "风险水平: "+c.RiskLevel)
		}
		appendJudgement(s, s.RiskScore, "风险控制良好", "风险水平较高")
	}

	counted := 0
	sum := 0.0
	for _, v := range []float64{s.TechnicalScore, s.FundamentalsScore, s.SentimentScore, s.RiskScore} {
		if v > 0 {
			counted++
			sum += v
		}
	}
	if counted > 0 {
		s.OverallScore = sum / float64(counted)
	}
	return s
}

func appendJudgement(s *dto.ComprehensiveSummary, score float64, strong, weak string) {
	switch {
	case score > 70:
		s.Strengths = append(s.Strengths, strong)
	case score < 30:
		s.Weaknesses = append(s.Weaknesses, weak)
	}
}

func (g *Aggregator) recommend(r *dto.AggregateResult, s *dto.ComprehensiveSummary) *dto.InvestmentRecommendation {
	rec := &dto.InvestmentRecommendation{
		Rating:       dto.RatingHold,
		TimeHorizon:  "中期（3-6个月）",
		RiskLevel:    dto.RiskLevelMedium,
		PositionSize: dto.PositionStandard,
		RiskWarnings: []string{},
		ActionItems:  []string{},
	}
	switch score := s.OverallScore; {
	case score >= 80:
		rec.Rating = dto.RatingStrongBuy
		rec.PositionSize = dto.PositionHeavy
	case score >= 65:
		rec.Rating = dto.RatingBuy
		rec.PositionSize = dto.PositionStandard
	case score >= 50:
		rec.Rating = dto.RatingHold
		rec.PositionSize = dto.PositionLight
	case score >= 35:
		rec.Rating = dto.RatingReduce
		rec.PositionSize = dto.PositionReduce
	default:
		rec.Rating = dto.RatingSell
		rec.PositionSize = dto.PositionExit
	}

	if rk := r.RiskAnalysis; rk != nil && rk.Error == "" {
		if c := rk.ComprehensiveRisk; c != nil {
			rec.RiskLevel = c.RiskLevel
			if c.RiskLevel == dto.LevelHigh {
				rec.RiskWarnings = append(rec.RiskWarnings, "投资风险较高，建议谨慎操作")
				if rec.Rating == dto.RatingStrongBuy || rec.Rating == dto.RatingBuy {
					rec.PositionSize = dto.PositionLight
				}
			}
		}
		for i, alert := range rk.RiskAlerts {
			if i >= 2 {
				break
			}
			rec.RiskWarnings = append(rec.RiskWarnings, alert.Description)
		}
	}

	if t := r.TechnicalAnalysis; t != nil && t.Error == "" && t.TrendAnalysis != nil {
		trend := t.TrendAnalysis.OverallTrend
		switch {
		case strings.Contains(trend, "短期"):
			rec.TimeHorizon = "短期（1-3个月）"
		case strings.Contains(trend, "长期"):
			rec.TimeHorizon = "长期（6-12个月）"
		}
	}

	switch rec.Rating {
	case dto.RatingStrongBuy, dto.RatingBuy:
		rec.ActionItems = []string{"可考虑分批建仓", "设置合理的止损点", "关注市场整体走势"}
	case dto.RatingHold:
		rec.ActionItems = []string{"继续观察基本面变化", "关注技术面突破信号", "保持现有仓位"}
	default:
		rec.ActionItems = []string{"考虑逐步减仓", "寻找更好的投资机会", "加强风险控制"}
	}
	return rec
}

func (g *Aggregator) assessQuality(in Input, r *dto.AggregateResult) *dto.AnalysisQuality {
	provided := 0
	for _, text := range []string{in.PriceText, in.FundamentalsText, in.NewsText, in.MarketText} {
		if strings.TrimSpace(text) != "" {
			provided++
		}
	}
	completeness := float64(provided) / 4 * 100

	covered := 0
	limitations := []string{}
	if r.TechnicalAnalysis != nil && r.TechnicalAnalysis.Error == "" {
		covered++
	} else {
		limitations = append(limitations, "技术分析数据不足")
	}
	if r.FundamentalsAnalysis != nil && r.FundamentalsAnalysis.Error == "" {
		covered++
	} else {
		limitations = append(limitations, "基本面数据不足")
	}
	if r.SentimentAnalysis != nil && r.SentimentAnalysis.Error == "" {
		covered++
	} else {
		limitations = append(limitations, "新闻情绪数据不足")
	}
	if r.RiskAnalysis != nil && r.RiskAnalysis.Error == "" {
		covered++
	} else {
		limitations = append(limitations, "风险评估数据不足")
	}
	coverage := float64(covered) / 4 * 100

	q := &dto.AnalysisQuality{
		DataCompleteness: completeness,
		AnalysisCoverage: coverage,
		Limitations:      limitations,
	}
	// Completeness is informational only, the grade tracks how many
	// domains actually produced a result.
	switch {
	case coverage >= 75:
		q.OverallQuality = dto.GradeExcellent
		q.QualityDescription = "数据完整，分析全面，结果可信度高"
	case coverage >= 50:
		q.OverallQuality = dto.GradeGood
		q.QualityDescription = "数据基本完整，分析较为全面，结果具有参考价值"
	default:
		q.OverallQuality = dto.GradeAverage
		q.QualityDescription = "数据不够完整，分析覆盖面有限，建议补充更多数据"
	}
	return q
}
