package analyzer

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"golang-stock-analysis/internal/dto"
	"golang-stock-analysis/internal/textparse"
	"golang-stock-analysis/pkg/logger"
)

// syntheticFundamentals are the fallback ratios used when synthetic data
// is enabled and the input text does not carry a figure.
var syntheticFundamentals = struct {
	debtToEquity, currentRatio, quickRatio, interestCoverage, cashRatio float64
	revenue1Y, revenue3Y, profit1Y, profit3Y, eps1Y                     float64
	roe, roa, grossMargin, netMargin, operatingMargin, roic             float64
	altmanZ, debtService, cashCoverage                                  float64
	piotroski                                                           int
}{
	debtToEquity: 0.4, currentRatio: 1.8, quickRatio: 1.2, interestCoverage: 8.5, cashRatio: 0.3,
	revenue1Y: 12.5, revenue3Y: 8.3, profit1Y: 15.2, profit3Y: 10.1, eps1Y: 14.8,
	roe: 15.2, roa: 8.5, grossMargin: 35.8, netMargin: 12.3, operatingMargin: 18.7, roic: 13.9,
	altmanZ: 3.2, debtService: 0.25, cashCoverage: 2.1,
	piotroski: 7,
}

// FundamentalsAnalyzer reads valuation and financial ratios out of
// labeled text and grades them against fixed thresholds.
type FundamentalsAnalyzer struct {
	cfg    FundamentalsConfig
	log    *logger.Logger
	parser *textparse.Parser
}

func NewFundamentalsAnalyzer(cfg FundamentalsConfig, log *logger.Logger) *FundamentalsAnalyzer {
	return &FundamentalsAnalyzer{
		cfg:    cfg,
		log:    log,
		parser: textparse.New(),
	}
}

func (a *FundamentalsAnalyzer) Analyze(ctx context.Context, stockText, fundamentalsText string) (*dto.FundamentalsResult, error) {
	price := a.parsePriceInfo(stockText)
	if price == nil {
		return nil, fmt.Errorf("无法解析股票价格数据: %w", textparse.ErrNoData)
	}
	a.log.DebugContext(ctx, "computing fundamentals metrics")

	// Synthetic backfill only applies when there is fundamentals text to
	// anchor it, an absent document stays absent.
	fill := a.cfg.AllowSynthetic && strings.TrimSpace(fundamentalsText) != ""

	health, healthSynthetic := a.financialHealth(fundamentalsText, fill)
	growth, growthSynthetic := a.growthMetrics(fundamentalsText, fill)
	profitability, profitSynthetic := a.profitabilityMetrics(fundamentalsText, fill)
	safety, safetySynthetic := a.safetyMetrics(fundamentalsText, fill)

	provenance := dto.ProvenanceReal
	if healthSynthetic || growthSynthetic || profitSynthetic || safetySynthetic {
		provenance = dto.ProvenanceSynthetic
	}

	return &dto.FundamentalsResult{
		PriceInfo:            price,
		ValuationMetrics:     a.valuationMetrics(price, growth),
		FinancialHealth:      health,
		GrowthMetrics:        growth,
		ProfitabilityMetrics: profitability,
		SafetyMetrics:        safety,
		IndustryComparison:   a.industryComparison(price.PERatio),
		AnalysisDate:         time.Now().Format("2006-01-02 15:04:05"),
		DataQuality:          a.dataQuality(stockText, fundamentalsText),
		DataProvenance:       provenance,
	}, nil
}

// parsePriceInfo returns nil when not a single price field is readable.
func (a *FundamentalsAnalyzer) parsePriceInfo(stockText string) *dto.FundamentalsPriceInfo {
	info := &dto.FundamentalsPriceInfo{
		CurrentPrice:  numPtr(a.parser.LabeledValue(stockText, "当前价格", "最新价")),
		MarketCap:     numPtr(a.parser.LabeledScaledValue(stockText, "市值")),
		PERatio:       numPtr(a.parser.LabeledValue(stockText, "市盈率", "PE")),
		PBRatio:       numPtr(a.parser.LabeledValue(stockText, "市净率", "PB")),
		DividendYield: numPtr(a.parser.LabeledPercent(stockText, "股息", "分红")),
		Volume:        numPtr(a.parser.LabeledValue(stockText, "成交量")),
	}
	if info.CurrentPrice == nil && info.MarketCap == nil && info.PERatio == nil &&
		info.PBRatio == nil && info.DividendYield == nil && info.Volume == nil {
		return nil
	}
	return info
}

func (a *FundamentalsAnalyzer) valuationMetrics(price *dto.FundamentalsPriceInfo, growth *dto.GrowthMetrics) *dto.ValuationMetrics {
	m := &dto.ValuationMetrics{
		PERatio:        price.PERatio,
		PBRatio:        price.PBRatio,
		DividendYield:  price.DividendYield,
		ValuationLevel: dto.ValuationUnknown,
	}
	// Undervalued needs both ratios to agree, overvalued fires on either
	// one alone.
	if pe, pb := price.PERatio, price.PBRatio; pe != nil || pb != nil {
		switch {
		case pe != nil && *pe < a.cfg.UndervaluedMaxPE && pb != nil && *pb < a.cfg.UndervaluedMaxPB:
			m.ValuationLevel = dto.ValuationUndervalued
		case (pe != nil && *pe > a.cfg.OvervaluedMinPE) || (pb != nil && *pb > a.cfg.OvervaluedMinPB):
			m.ValuationLevel = dto.ValuationOvervalued
		default:
			m.ValuationLevel = dto.ValuationFair
		}
	}
	if g := firstValue(growth.EPSGrowth1Y, growth.ProfitGrowth1Y, growth.RevenueGrowth1Y); g != nil && *g > 0 && price.PERatio != nil {
		peg := *price.PERatio / *g
		m.PEGRatio = &peg
	}
	return m
}

func (a *FundamentalsAnalyzer) financialHealth(text string, fill bool) (*dto.FinancialHealth, bool) {
	h := &dto.FinancialHealth{
		DebtToEquity:     numPtr(a.parser.LabeledValue(text, "负债权益比", "产权比率")),
		CurrentRatio:     numPtr(a.parser.LabeledValue(text, "流动比率")),
		QuickRatio:       numPtr(a.parser.LabeledValue(text, "速动比率")),
		InterestCoverage: numPtr(a.parser.LabeledValue(text, "利息保障倍数")),
		CashRatio:        numPtr(a.parser.LabeledValue(text, "现金比率")),
		HealthLevel:      dto.GradeUnknown,
	}
	synthetic := false
	if fill {
		synthetic = fillMissing(&h.DebtToEquity, syntheticFundamentals.debtToEquity) || synthetic
		synthetic = fillMissing(&h.CurrentRatio, syntheticFundamentals.currentRatio) || synthetic
		synthetic = fillMissing(&h.QuickRatio, syntheticFundamentals.quickRatio) || synthetic
		synthetic = fillMissing(&h.InterestCoverage, syntheticFundamentals.interestCoverage) || synthetic
		synthetic = fillMissing(&h.CashRatio, syntheticFundamentals.cashRatio) || synthetic
	}

	present := 0
	score := 0.0
	grade := func(v *float64, good bool) {
		if v == nil {
			return
		}
		present++
		if good {
			score += 20
		}
	}
	grade(h.DebtToEquity, h.DebtToEquity != nil && *h.DebtToEquity < a.cfg.MaxDebtToEquity)
	grade(h.CurrentRatio, h.CurrentRatio != nil && *h.CurrentRatio > a.cfg.MinCurrentRatio)
	grade(h.QuickRatio, h.QuickRatio != nil && *h.QuickRatio > a.cfg.MinQuickRatio)
	grade(h.InterestCoverage, h.InterestCoverage != nil && *h.InterestCoverage > a.cfg.MinInterestCoverage)
	grade(h.CashRatio, h.CashRatio != nil && *h.CashRatio > a.cfg.MinCashRatio)

	h.HealthScore = score
	if present > 0 {
		switch {
		case score >= 80:
			h.HealthLevel = dto.GradeExcellent
		case score >= 60:
			h.HealthLevel = dto.GradeGood
		case score >= 40:
			h.HealthLevel = dto.GradeAverage
		default:
			h.HealthLevel = dto.GradePoor
		}
	}
	return h, synthetic
}

func (a *FundamentalsAnalyzer) growthMetrics(text string, fill bool) (*dto.GrowthMetrics, bool) {
	g := &dto.GrowthMetrics{
		RevenueGrowth1Y:      numPtr(a.parser.LabeledValue(text, "营收增长", "营业收入增长")),
		ProfitGrowth1Y:       numPtr(a.parser.LabeledValue(text, "利润增长")),
		EPSGrowth1Y:          numPtr(a.parser.LabeledValue(text, "EPS增长", "每股收益增长")),
		ROETrend:             dto.TrendStable,
		GrowthQuality:        dto.GradeAverage,
		GrowthSustainability: dto.GradeUnknown,
	}
	synthetic := false
	if fill {
		synthetic = fillMissing(&g.RevenueGrowth1Y, syntheticFundamentals.revenue1Y) || synthetic
		synthetic = fillMissing(&g.RevenueGrowth3Y, syntheticFundamentals.revenue3Y) || synthetic
		synthetic = fillMissing(&g.ProfitGrowth1Y, syntheticFundamentals.profit1Y) || synthetic
		synthetic = fillMissing(&g.ProfitGrowth3Y, syntheticFundamentals.profit3Y) || synthetic
		synthetic = fillMissing(&g.EPSGrowth1Y, syntheticFundamentals.eps1Y) || synthetic
	}

	switch {
	case g.RevenueGrowth1Y != nil && *g.RevenueGrowth1Y > 10 &&
		g.ProfitGrowth1Y != nil && *g.ProfitGrowth1Y > *g.RevenueGrowth1Y:
		g.GrowthQuality = dto.GradeExcellent
	case g.RevenueGrowth1Y != nil && *g.RevenueGrowth1Y > 5:
		g.GrowthQuality = dto.GradeGood
	}
	return g, synthetic
}

func (a *FundamentalsAnalyzer) profitabilityMetrics(text string, fill bool) (*dto.ProfitabilityMetrics, bool) {
	p := &dto.ProfitabilityMetrics{
		ROE:                numPtr(a.parser.LabeledValue(text, "净资产收益率", "ROE")),
		ROA:                numPtr(a.parser.LabeledValue(text, "总资产收益率", "ROA")),
		GrossMargin:        numPtr(a.parser.LabeledValue(text, "毛利率")),
		NetMargin:          numPtr(a.parser.LabeledValue(text, "净利率")),
		OperatingMargin:    numPtr(a.parser.LabeledValue(text, "营业利润率", "经营利润率")),
		ROIC:               numPtr(a.parser.LabeledValue(text, "ROIC", "投入资本回报率")),
		ProfitabilityTrend: dto.TrendStable,
		ProfitabilityLevel: dto.GradeUnknown,
	}
	synthetic := false
	if fill {
		synthetic = fillMissing(&p.ROE, syntheticFundamentals.roe) || synthetic
		synthetic = fillMissing(&p.ROA, syntheticFundamentals.roa) || synthetic
		synthetic = fillMissing(&p.GrossMargin, syntheticFundamentals.grossMargin) || synthetic
		synthetic = fillMissing(&p.NetMargin, syntheticFundamentals.netMargin) || synthetic
		synthetic = fillMissing(&p.OperatingMargin, syntheticFundamentals.operatingMargin) || synthetic
		synthetic = fillMissing(&p.ROIC, syntheticFundamentals.roic) || synthetic
	}

	if p.ROE != nil {
		switch {
		case *p.ROE > 15:
			p.ProfitabilityLevel = dto.GradeExcellent
		case *p.ROE > 10:
			p.ProfitabilityLevel = dto.GradeGood
		case *p.ROE > 5:
			p.ProfitabilityLevel = dto.GradeAverage
		default:
			p.ProfitabilityLevel = dto.GradePoor
		}
	}
	return p, synthetic
}

func (a *FundamentalsAnalyzer) safetyMetrics(text string, fill bool) (*dto.SafetyMetrics, bool) {
	s := &dto.SafetyMetrics{
		AltmanZScore:      numPtr(a.parser.LabeledValue(text, "Altman", "Z值", "Z-Score")),
		DebtServiceRatio:  numPtr(a.parser.LabeledValue(text, "偿债比率", "偿债能力")),
		CashCoverage:      numPtr(a.parser.LabeledValue(text, "现金覆盖")),
		BankruptcyRisk:    dto.GradeUnknown,
		FinancialDistress: dto.GradeUnknown,
		SafetyLevel:       dto.GradeUnknown,
	}
	if v, ok := a.parser.LabeledValue(text, "Piotroski", "F-Score"); ok {
		n := int(math.Round(v))
		s.PiotroskiScore = &n
	}

	synthetic := false
	if fill {
		synthetic = fillMissing(&s.AltmanZScore, syntheticFundamentals.altmanZ) || synthetic
		synthetic = fillMissing(&s.DebtServiceRatio, syntheticFundamentals.debtService) || synthetic
		synthetic = fillMissing(&s.CashCoverage, syntheticFundamentals.cashCoverage) || synthetic
		if s.PiotroskiScore == nil {
			n := syntheticFundamentals.piotroski
			s.PiotroskiScore = &n
			synthetic = true
		}
	}

	if s.AltmanZScore != nil {
		switch {
		case *s.AltmanZScore > 2.99:
			s.SafetyLevel, s.BankruptcyRisk, s.FinancialDistress = "安全", dto.LevelLow, "否"
		case *s.AltmanZScore > 1.81:
			s.SafetyLevel, s.BankruptcyRisk, s.FinancialDistress = dto.GradeAverage, dto.RiskLevelMedium, "否"
		default:
			s.SafetyLevel, s.BankruptcyRisk, s.FinancialDistress = "风险", dto.LevelHigh, "是"
		}
	}
	return s, synthetic
}

func (a *FundamentalsAnalyzer) industryComparison(pe *float64) *dto.IndustryComparison {
	c := &dto.IndustryComparison{
		IndustryAvgPE:     a.cfg.IndustryAvgPE,
		IndustryAvgPB:     a.cfg.IndustryAvgPB,
		IndustryAvgROE:    a.cfg.IndustryAvgROE,
		RelativeValuation: dto.ValuationUnknown,
		IndustryPosition:  dto.GradeUnknown,
	}
	if pe != nil {
		switch ratio := *pe / a.cfg.IndustryAvgPE; {
		case ratio < a.cfg.RelativeLowRatio:
			c.RelativeValuation = "相对低估"
		case ratio > a.cfg.RelativeHighRatio:
			c.RelativeValuation = "相对高估"
		default:
			c.RelativeValuation = "相对合理"
		}
	}
	return c
}

func (a *FundamentalsAnalyzer) dataQuality(stockText, fundamentalsText string) *dto.FundamentalsDataQuality {
	completeness := 0.0
	if utf8.RuneCountInString(stockText) > 100 {
		completeness += 50
	}
	if utf8.RuneCountInString(fundamentalsText) > 100 {
		completeness += 50
	}
	q := &dto.FundamentalsDataQuality{
		Completeness: completeness,
		Freshness:    80,
		Reliability:  85,
	}
	q.OverallScore = q.Completeness*0.4 + q.Freshness*0.3 + q.Reliability*0.3
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

func numPtr(v float64, ok bool) *float64 {
	if !ok {
		return nil
	}
	return &v
}

// fillMissing backfills a nil metric and reports whether it did.
func fillMissing(dst **float64, v float64) bool {
	if *dst != nil {
		return false
	}
	*dst = &v
	return true
}

func firstValue(ptrs ...*float64) *float64 {
	for _, p := range ptrs {
		if p != nil {
			return p
		}
	}
	return nil
}
