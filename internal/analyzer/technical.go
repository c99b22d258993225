package analyzer

import (
	"context"
	"fmt"
	"math"

	"golang-stock-analysis/internal/dto"
	"golang-stock-analysis/internal/textparse"
	"golang-stock-analysis/pkg/logger"
	"golang-stock-analysis/pkg/utils"
)

// TechnicalAnalyzer computes price based indicators from an OHLCV table
// embedded in free text. Every category gates on its own minimum window,
// a short series yields a partial result rather than an error.
type TechnicalAnalyzer struct {
	cfg    TechnicalConfig
	log    *logger.Logger
	parser *textparse.Parser
}

func NewTechnicalAnalyzer(cfg TechnicalConfig, log *logger.Logger) *TechnicalAnalyzer {
	return &TechnicalAnalyzer{
		cfg:    cfg,
		log:    log,
		parser: textparse.New(),
	}
}

func (a *TechnicalAnalyzer) Analyze(ctx context.Context, priceText string) (*dto.TechnicalResult, error) {
	series, err := a.parser.ParseSeries(priceText)
	if err != nil {
		return nil, fmt.Errorf("无法解析股票数据: %w", err)
	}
	if len(series.Bars) < a.cfg.MinBars {
		return nil, fmt.Errorf("数据不足，无法计算技术指标: %w", ErrInsufficientData)
	}
	a.log.DebugContext(ctx, "computing technical indicators",
		logger.IntField("bars", len(series.Bars)))

	return a.Calculate(series), nil
}

// Calculate runs every indicator over an already parsed series.
func (a *TechnicalAnalyzer) Calculate(series *textparse.ParsedSeries) *dto.TechnicalResult {
	n := len(series.Bars)
	closes := series.Closes()
	highs := make([]float64, n)
	lows := make([]float64, n)
	for i, b := range series.Bars {
		highs[i] = b.High
		lows[i] = b.Low
	}

	res := &dto.TechnicalResult{DataProvenance: dto.ProvenanceReal}
	cp := closes[n-1]

	res.PriceInfo = a.priceInfo(closes, highs, lows)
	res.MovingAverages = a.movingAverages(closes)
	res.EMA = a.exponentialMAs(closes)
	res.RSI = a.rsi(closes)
	res.MACD = a.macd(closes)
	res.BollingerBands = a.bollinger(closes)
	if series.HasVolume {
		res.Volume = a.volume(series.Volumes())
	}
	res.ATR = a.atr(closes, highs, lows)
	res.SupportResistance = a.supportResistance(cp, highs, lows)
	res.Signals = a.signals(res)
	res.TrendAnalysis = a.trendAnalysis(cp, closes, res.MovingAverages)
	return res
}

func (a *TechnicalAnalyzer) priceInfo(closes, highs, lows []float64) *dto.TechnicalPriceInfo {
	n := len(closes)
	cp := closes[n-1]
	prev := cp
	if n > 1 {
		prev = closes[n-2]
	}
	w := a.cfg.YearWindow
	if n < w {
		w = n
	}
	_, high52 := utils.MinMax(highs[n-w:])
	low52, _ := utils.MinMax(lows[n-w:])

	return &dto.TechnicalPriceInfo{
		CurrentPrice: utils.Round2(cp),
		PrevClose:    utils.Round2(prev),
		Change:       utils.Round2(cp - prev),
		ChangePct:    utils.Round2(utils.SafeDiv(cp-prev, prev, 0) * 100),
		High52W:      utils.Round2(high52),
		Low52W:       utils.Round2(low52),
		From52WHigh:  utils.Round2(utils.SafeDiv(cp-high52, high52, 0) * 100),
		From52WLow:   utils.Round2(utils.SafeDiv(cp-low52, low52, 0) * 100),
	}
}

func (a *TechnicalAnalyzer) movingAverages(closes []float64) map[string]dto.MovingAverage {
	n := len(closes)
	cp := closes[n-1]
	out := make(map[string]dto.MovingAverage)
	for _, period := range a.cfg.MAPeriods {
		if n < period {
			continue
		}
		val := utils.Mean(closes[n-period:])
		trend := dto.TrendDown
		if n > period && val > utils.Mean(closes[n-period-1:n-1]) {
			trend = dto.TrendUp
		}
		out[fmt.Sprintf("MA%d", period)] = dto.MovingAverage{
			Value:    utils.Round2(val),
			Distance: utils.Round2(utils.SafeDiv(cp-val, val, 0) * 100),
			Trend:    trend,
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func (a *TechnicalAnalyzer) exponentialMAs(closes []float64) map[string]dto.ExponentialMA {
	n := len(closes)
	cp := closes[n-1]
	out := make(map[string]dto.ExponentialMA)
	for _, span := range a.cfg.EMASpans {
		if n < span {
			continue
		}
		val := emaSeries(closes, span)[n-1]
		out[fmt.Sprintf("EMA%d", span)] = dto.ExponentialMA{
			Value:    utils.Round2(val),
			Distance: utils.Round2(utils.SafeDiv(cp-val, val, 0) * 100),
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func (a *TechnicalAnalyzer) rsi(closes []float64) *dto.RSIInfo {
	n := len(closes)
	period := a.cfg.RSIPeriod
	if n < period+1 {
		return nil
	}
	value := rsiAt(closes, period, 0)

	signal := dto.RSINeutral
	switch {
	case value > a.cfg.RSIOverbought:
		signal = dto.RSIOverbought
	case value < a.cfg.RSIOversold:
		signal = dto.RSIOversold
	}
	trend := dto.TrendDown
	if n >= period+2 && value > rsiAt(closes, period, 1) {
		trend = dto.TrendUp
	}
	return &dto.RSIInfo{
		Value:  utils.Round2(value),
		Signal: signal,
		Trend:  trend,
	}
}

// rsiAt computes a simple rolling RSI over the window ending offset bars
// before the last one. A flat window reads as neutral 50.
func rsiAt(closes []float64, period, offset int) float64 {
	end := len(closes) - offset
	var gain, loss float64
	for i := end - period; i < end; i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	avgGain := gain / float64(period)
	avgLoss := loss / float64(period)
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

func (a *TechnicalAnalyzer) macd(closes []float64) *dto.MACDInfo {
	n := len(closes)
	if n < a.cfg.MACDSlow {
		return nil
	}
	fast := emaSeries(closes, a.cfg.MACDFast)
	slow := emaSeries(closes, a.cfg.MACDSlow)
	line := make([]float64, n)
	for i := range line {
		line[i] = fast[i] - slow[i]
	}
	signal := emaSeries(line, a.cfg.MACDSignalSpan)
	hist := make([]float64, n)
	for i := range hist {
		hist[i] = line[i] - signal[i]
	}

	cross := dto.MACDBearish
	if line[n-1] > signal[n-1] {
		cross = dto.MACDBullish
	}
	momentum := dto.MomentumDecreasing
	if n >= 2 && hist[n-1] > hist[n-2] {
		momentum = dto.MomentumIncreasing
	}
	return &dto.MACDInfo{
		Line:      utils.Round4(line[n-1]),
		Signal:    utils.Round4(signal[n-1]),
		Histogram: utils.Round4(hist[n-1]),
		Cross:     cross,
		Momentum:  momentum,
	}
}

func (a *TechnicalAnalyzer) bollinger(closes []float64) *dto.BollingerInfo {
	n := len(closes)
	period := a.cfg.BollingerPeriod
	if n < period {
		return nil
	}
	cp := closes[n-1]
	upper, middle, lower := bollingerBands(closes[n-period:], a.cfg.BollingerWidth)
	width := utils.SafeDiv(upper-lower, middle, 0) * 100

	position := 50.0
	if upper != lower {
		position = (cp - lower) / (upper - lower) * 100
	}

	// The squeeze flag needs a history of band widths to compare against.
	squeeze := dto.SqueezeNo
	if n >= 2*period-1 {
		widths := make([]float64, 0, period)
		for end := n - period; end < n; end++ {
			u, m, l := bollingerBands(closes[end-period+1:end+1], a.cfg.BollingerWidth)
			widths = append(widths, utils.SafeDiv(u-l, m, 0)*100)
		}
		if width < utils.Mean(widths) {
			squeeze = dto.SqueezeYes
		}
	}
	return &dto.BollingerInfo{
		Upper:    utils.Round2(upper),
		Middle:   utils.Round2(middle),
		Lower:    utils.Round2(lower),
		Width:    utils.Round2(width),
		Position: utils.Round2(position),
		Squeeze:  squeeze,
	}
}

func bollingerBands(window []float64, widthFactor float64) (upper, middle, lower float64) {
	middle = utils.Mean(window)
	sd := utils.StdDev(window)
	return middle + widthFactor*sd, middle, middle - widthFactor*sd
}

func (a *TechnicalAnalyzer) volume(vols []float64) *dto.VolumeInfo {
	n := len(vols)
	period := a.cfg.VolumeAvgPeriod
	if n < period {
		return &dto.VolumeInfo{Trend: dto.VolumeTrendUnknown}
	}
	avg := utils.Mean(vols[n-period:])
	if avg <= 0 {
		return &dto.VolumeInfo{Trend: dto.VolumeTrendUnknown}
	}
	current := vols[n-1]

	trend := dto.VolumeTrendDecreasing
	if n >= 10 && utils.Mean(vols[n-5:]) > utils.Mean(vols[n-10:n-5]) {
		trend = dto.VolumeTrendIncreasing
	}
	return &dto.VolumeInfo{
		Current: int64(current),
		Avg20D:  int64(avg),
		Ratio:   utils.Round2(current / avg),
		Trend:   trend,
	}
}

func (a *TechnicalAnalyzer) atr(closes, highs, lows []float64) *dto.ATRInfo {
	n := len(closes)
	period := a.cfg.ATRPeriod
	if n < period {
		return nil
	}
	tr := make([]float64, n)
	tr[0] = highs[0] - lows[0]
	for i := 1; i < n; i++ {
		pc := closes[i-1]
		tr[i] = math.Max(highs[i]-lows[i], math.Max(math.Abs(highs[i]-pc), math.Abs(lows[i]-pc)))
	}
	atr := utils.Mean(tr[n-period:])
	return &dto.ATRInfo{
		Value:      utils.Round2(atr),
		Percentage: utils.Round2(utils.SafeDiv(atr, closes[n-1], 0) * 100),
	}
}

func (a *TechnicalAnalyzer) supportResistance(cp float64, highs, lows []float64) *dto.SupportResistance {
	n := len(highs)
	w := a.cfg.SupportWindow
	if n < w {
		w = n
	}
	_, resistance := utils.MinMax(highs[n-w:])
	support, _ := utils.MinMax(lows[n-w:])
	return &dto.SupportResistance{
		Resistance:           utils.Round2(resistance),
		Support:              utils.Round2(support),
		DistanceToResistance: utils.Round2(utils.SafeDiv(resistance-cp, cp, 0) * 100),
		DistanceToSupport:    utils.Round2(utils.SafeDiv(cp-support, cp, 0) * 100),
	}
}

// signals condenses each indicator category into a single trade signal.
func (a *TechnicalAnalyzer) signals(res *dto.TechnicalResult) map[string]string {
	signals := make(map[string]string)
	if ma, ok := res.MovingAverages["MA5"]; ok {
		signals["ma"] = dto.SignalBearish
		if ma.Trend == dto.TrendUp {
			signals["ma"] = dto.SignalBullish
		}
	}
	if res.RSI != nil {
		switch res.RSI.Signal {
		case dto.RSIOverbought:
			signals["rsi"] = dto.SignalSell
		case dto.RSIOversold:
			signals["rsi"] = dto.SignalBuy
		default:
			signals["rsi"] = dto.SignalNeutral
		}
	}
	if res.MACD != nil {
		signals["macd"] = dto.SignalBearish
		if res.MACD.Cross == dto.MACDBullish {
			signals["macd"] = dto.SignalBullish
		}
	}
	if res.BollingerBands != nil {
		switch {
		case res.BollingerBands.Position < 20:
			signals["bollinger"] = dto.SignalBuy
		case res.BollingerBands.Position > 80:
			signals["bollinger"] = dto.SignalSell
		default:
			signals["bollinger"] = dto.SignalNeutral
		}
	}
	if res.Volume != nil && res.Volume.Trend != dto.VolumeTrendUnknown {
		signals["volume"] = dto.SignalNeutral
		if res.Volume.Trend == dto.VolumeTrendIncreasing {
			signals["volume"] = dto.SignalBullish
		}
	}
	return signals
}

func (a *TechnicalAnalyzer) trendAnalysis(cp float64, closes []float64, mas map[string]dto.MovingAverage) *dto.TrendAnalysis {
	n := len(closes)

	// The reference line is the longest of MA20, MA10, MA5 available.
	var ref dto.MovingAverage
	for _, name := range []string{"MA20", "MA10", "MA5"} {
		if ma, ok := mas[name]; ok {
			ref = ma
			break
		}
	}
	ma5 := mas["MA5"]

	direction := "震荡整理"
	switch {
	case cp > ref.Value && ma5.Trend == dto.TrendUp:
		direction = "上涨趋势"
	case cp < ref.Value && ma5.Trend == dto.TrendDown:
		direction = "下跌趋势"
	}

	horizon := "中期"
	switch {
	case n < 50:
		horizon = "短期"
	case n >= 200:
		horizon = "长期"
	}

	alignment := dto.GradeUnknown
	m5, ok5 := mas["MA5"]
	m10, ok10 := mas["MA10"]
	m20, ok20 := mas["MA20"]
	if ok5 && ok10 && ok20 {
		switch {
		case m5.Value > m10.Value && m10.Value > m20.Value:
			alignment = "多头排列"
		case m5.Value < m10.Value && m10.Value < m20.Value:
			alignment = "空头排列"
		default:
			alignment = "均线交织"
		}
	}
	return &dto.TrendAnalysis{
		OverallTrend: horizon + direction,
		MAAlignment:  alignment,
	}
}

// emaSeries is a recursive exponential moving average seeded with the
// first value, alpha = 2/(span+1).
func emaSeries(values []float64, span int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	alpha := 2.0 / (float64(span) + 1)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}
