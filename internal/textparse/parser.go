package textparse

import (
	"errors"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang-stock-analysis/internal/dto"
	"golang-stock-analysis/pkg/utils"
)

// ErrNoData reports input text with no recognizable structure.
var ErrNoData = errors.New("no parsable data")

var (
	dateRe   = regexp.MustCompile(`^\d{4}[-/]\d{1,2}[-/]\d{1,2}$`)
	clockRe  = regexp.MustCompile(`^\d{1,2}:\d{2}(:\d{2})?$`)
	numberRe = regexp.MustCompile(`-?[\d.]+`)
	digitRe  = regexp.MustCompile(`\d+`)
	capRe    = regexp.MustCompile(`(-?[\d.]+)(万亿|亿|万)?`)
	pctRe    = regexp.MustCompile(`(-?[\d.]+)%`)
)

// headerColumns maps table header tokens to canonical column names.
var headerColumns = map[string]string{
	"日期": "datetime", "时间": "datetime", "日期时间": "datetime",
	"datetime": "datetime", "date": "datetime", "time": "datetime",
	"开盘": "open", "开盘价": "open", "open": "open",
	"收盘": "close", "收盘价": "close", "close": "close",
	"最高": "high", "最高价": "high", "high": "high",
	"最低": "low", "最低价": "low", "low": "low",
	"成交量": "volume", "volume": "volume", "vol": "volume",
	"成交额": "amount", "成交金额": "amount", "amount": "amount", "turnover": "amount",
}

// stopMarkers end table collection, anything after them is footer text.
var stopMarkers = []string{"数据来源", "生成时间"}

// dateLayouts accepted for table row timestamps.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006/01/02",
}

// ParsedSeries is the outcome of scanning free text for an OHLCV table.
type ParsedSeries struct {
	Bars      []dto.Bar
	HasVolume bool
	HasAmount bool
}

// Closes returns the close column in row order.
func (s *ParsedSeries) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// Volumes returns the volume column in row order.
func (s *ParsedSeries) Volumes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Volume
	}
	return out
}

// Parser extracts tabular, labeled and news shaped data from raw text
// blobs. All analyzers share this one implementation so the same input
// parses the same way everywhere.
type Parser struct{}

func New() *Parser {
	return &Parser{}
}

// ParseSeries scans text for an OHLCV table. It accepts pipe, comma and
// whitespace separated rows, Chinese or English headers, and headerless
// dumps in the datetime-open-close-high-low-volume-amount layout.
func (p *Parser) ParseSeries(text string) (*ParsedSeries, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrNoData
	}

	var (
		colIdx    map[string]int
		hasHeader bool
		series    = &ParsedSeries{}
	)

	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if utils.ContainsAnySubstring(line, stopMarkers) {
			break
		}

		tokens := tokenize(line)
		if len(tokens) == 0 {
			continue
		}

		if !hasHeader {
			if idx, ok := matchHeader(tokens); ok {
				colIdx = idx
				hasHeader = true
				continue
			}
		}

		if bar, ok := parseRow(tokens, colIdx); ok {
			series.Bars = append(series.Bars, bar)
		}
	}

	if len(series.Bars) == 0 {
		return nil, ErrNoData
	}
	if hasHeader {
		_, series.HasVolume = colIdx["volume"]
		_, series.HasAmount = colIdx["amount"]
	} else {
		series.HasVolume = true
		series.HasAmount = true
	}

	sort.SliceStable(series.Bars, func(i, j int) bool {
		return series.Bars[i].Date.Before(series.Bars[j].Date)
	})
	return series, nil
}

// tokenize splits a table line into fields, stripping any pipe framing.
// Comma separated lines are split on commas, everything else on spaces.
func tokenize(line string) []string {
	line = strings.Trim(line, "|")
	line = strings.ReplaceAll(line, "|", " ")
	if strings.Count(line, ",") >= 3 {
		parts := strings.Split(line, ",")
		out := make([]string, 0, len(parts))
		for _, part := range parts {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
		return out
	}
	return strings.Fields(line)
}

// matchHeader resolves a token list into a column index map. Only a
// header carrying the full OHLC set counts, partial headers fall through
// to the default column layout.
func matchHeader(tokens []string) (map[string]int, bool) {
	idx := make(map[string]int)
	for i, tok := range tokens {
		canon, ok := headerColumns[strings.ToLower(tok)]
		if !ok {
			continue
		}
		if _, seen := idx[canon]; !seen {
			idx[canon] = i
		}
	}
	for _, col := range []string{"open", "high", "low", "close"} {
		if _, ok := idx[col]; !ok {
			return nil, false
		}
	}
	return idx, true
}

// parseRow turns one tokenized line into a bar. Rows that do not start
// with a date, or whose price fields do not parse, are skipped.
func parseRow(tokens []string, colIdx map[string]int) (dto.Bar, bool) {
	if !dateRe.MatchString(firstDateToken(tokens[0])) {
		return dto.Bar{}, false
	}

	if colIdx != nil {
		return parseIndexedRow(tokens, colIdx)
	}
	return parseDefaultRow(tokens)
}

// firstDateToken trims a trailing clock time glued onto a CSV field.
func firstDateToken(tok string) string {
	if i := strings.IndexByte(tok, ' '); i > 0 {
		return tok[:i]
	}
	return tok
}

func parseIndexedRow(tokens []string, colIdx map[string]int) (dto.Bar, bool) {
	at := func(col string) (string, bool) {
		i, ok := colIdx[col]
		if !ok || i >= len(tokens) {
			return "", false
		}
		return tokens[i], true
	}

	dateTok, _ := at("datetime")
	if dateTok == "" {
		dateTok = tokens[0]
	}
	date, ok := parseDate(dateTok)
	if !ok {
		return dto.Bar{}, false
	}

	bar := dto.Bar{Date: date}
	for col, dst := range map[string]*float64{
		"open": &bar.Open, "high": &bar.High, "low": &bar.Low, "close": &bar.Close,
	} {
		tok, ok := at(col)
		if !ok {
			return dto.Bar{}, false
		}
		v, err := parseNumber(tok)
		if err != nil {
			return dto.Bar{}, false
		}
		*dst = v
	}
	if tok, ok := at("volume"); ok {
		bar.Volume, _ = parseNumber(tok)
	}
	if tok, ok := at("amount"); ok {
		bar.Amount, _ = parseNumber(tok)
	}
	return bar, true
}

func parseDefaultRow(tokens []string) (dto.Bar, bool) {
	dateTok := tokens[0]
	values := tokens[1:]
	if len(values) > 0 && clockRe.MatchString(values[0]) {
		dateTok = dateTok + " " + values[0]
		values = values[1:]
	}
	if len(values) < 5 {
		return dto.Bar{}, false
	}
	date, ok := parseDate(dateTok)
	if !ok {
		return dto.Bar{}, false
	}

	parsed := make([]float64, 5)
	for i := 0; i < 5; i++ {
		v, err := parseNumber(values[i])
		if err != nil {
			return dto.Bar{}, false
		}
		parsed[i] = v
	}
	bar := dto.Bar{
		Date:   date,
		Open:   parsed[0],
		Close:  parsed[1],
		High:   parsed[2],
		Low:    parsed[3],
		Volume: parsed[4],
	}
	if len(values) > 5 {
		bar.Amount, _ = parseNumber(values[5])
	}
	return bar, true
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseNumber(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	return strconv.ParseFloat(s, 64)
}

// LabeledValue returns the first number found after the colon of the
// first line containing any of the labels. Label matching is case
// insensitive and tolerates full width colons.
func (p *Parser) LabeledValue(text string, labels ...string) (float64, bool) {
	for _, line := range splitLines(text) {
		rest, ok := afterLabel(line, labels)
		if !ok {
			continue
		}
		if v, ok := firstNumber(rest); ok {
			return v, true
		}
	}
	return 0, false
}

// LabeledScaledValue is LabeledValue with Chinese magnitude suffixes
// applied, so "1.2万亿" scales to 1.2e12.
func (p *Parser) LabeledScaledValue(text string, labels ...string) (float64, bool) {
	for _, line := range splitLines(text) {
		rest, ok := afterLabel(line, labels)
		if !ok {
			continue
		}
		m := capRe.FindStringSubmatch(strings.ReplaceAll(rest, ",", ""))
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		switch m[2] {
		case "万亿":
			v *= 1e12
		case "亿":
			v *= 1e8
		case "万":
			v *= 1e4
		}
		return v, true
	}
	return 0, false
}

// LabeledPercent returns the first percent figure on a line containing
// any of the labels. The number must carry a % sign.
func (p *Parser) LabeledPercent(text string, labels ...string) (float64, bool) {
	for _, line := range splitLines(text) {
		if !containsAnyLabel(line, labels) {
			continue
		}
		m := pctRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		return v, true
	}
	return 0, false
}

// CollectLabeledValues gathers one number from every line containing any
// of the labels, preserving line order.
func (p *Parser) CollectLabeledValues(text string, labels ...string) []float64 {
	var out []float64
	for _, line := range splitLines(text) {
		rest, ok := afterLabel(line, labels)
		if !ok {
			continue
		}
		if v, ok := firstNumber(rest); ok {
			out = append(out, v)
		}
	}
	return out
}

// ParseClosePrices extracts a close price series, preferring a full
// OHLCV table and falling back to labeled price lines.
func (p *Parser) ParseClosePrices(text string) []float64 {
	if series, err := p.ParseSeries(text); err == nil {
		return series.Closes()
	}
	return p.CollectLabeledValues(text, "收盘价", "价格", "Close")
}

// ParseVolumes extracts a volume series the same way.
func (p *Parser) ParseVolumes(text string) []float64 {
	if series, err := p.ParseSeries(text); err == nil && series.HasVolume {
		return series.Volumes()
	}
	return p.CollectLabeledValues(text, "成交量", "Volume")
}

// newsFieldLabels maps record labels to news item fields.
var newsFieldLabels = []struct {
	labels []string
	assign func(*dto.NewsItem, string)
}{
	{[]string{"标题", "title"}, func(n *dto.NewsItem, v string) { n.Title = v }},
	{[]string{"内容", "content"}, func(n *dto.NewsItem, v string) { n.Content = v }},
	{[]string{"时间", "time"}, func(n *dto.NewsItem, v string) { n.Time = v }},
	{[]string{"来源", "source"}, func(n *dto.NewsItem, v string) { n.Source = v }},
	{[]string{"链接", "url", "link"}, func(n *dto.NewsItem, v string) { n.URL = v }},
}

// ParseNewsRecords splits text into blank line delimited records and
// reads the labeled fields of each. Unlabeled lines become the title or
// the content depending on what is still missing.
func (p *Parser) ParseNewsRecords(text string) []dto.NewsItem {
	text = utils.SafeText(strings.ReplaceAll(text, "\r\n", "\n"))
	blocks := regexp.MustCompile(`\n\s*\n`).Split(text, -1)

	var items []dto.NewsItem
	for _, block := range blocks {
		item := dto.NewsItem{}
		for _, raw := range strings.Split(block, "\n") {
			line := strings.TrimSpace(raw)
			if line == "" {
				continue
			}
			norm := normalizeColons(line)
			if assignNewsField(&item, norm) {
				continue
			}
			switch {
			case item.Title == "":
				item.Title = line
			case utf8.RuneCountInString(line) > 20 && item.Content == "":
				item.Content = line
			}
		}
		if item.Title == "" && item.Content == "" {
			continue
		}
		if item.Title == "" {
			item.Title = "未知标题"
		}
		if item.Source == "" {
			item.Source = "未知来源"
		}
		if item.Time == "" {
			item.Time = time.Now().Format("2006-01-02")
		}
		items = append(items, item)
	}
	return items
}

func assignNewsField(item *dto.NewsItem, line string) bool {
	lower := strings.ToLower(line)
	for _, field := range newsFieldLabels {
		for _, label := range field.labels {
			if strings.HasPrefix(lower, label+":") {
				field.assign(item, strings.TrimSpace(line[len(label)+1:]))
				return true
			}
		}
	}
	return false
}

// RecencyUnit classifies the "how long ago" marker of a news timestamp.
type RecencyUnit int

const (
	RecencyNone RecencyUnit = iota
	RecencyHours
	RecencyDays
	RecencyWeeks
	RecencyMonths
	RecencyUnknown
)

// Recency is a parsed relative timestamp such as "3天前".
type Recency struct {
	Count int
	Unit  RecencyUnit
}

var recencyMarkers = []struct {
	marker string
	unit   RecencyUnit
}{
	{"小时前", RecencyHours},
	{"天前", RecencyDays},
	{"周前", RecencyWeeks},
	{"月前", RecencyMonths},
}

// ParseTimeRecency reads a relative time marker out of a timestamp
// string. A string with no marker counts as same day, a marker without
// a readable count comes back as RecencyUnknown.
func (p *Parser) ParseTimeRecency(s string) Recency {
	for _, m := range recencyMarkers {
		if !strings.Contains(s, m.marker) {
			continue
		}
		digits := digitRe.FindString(s)
		if digits == "" {
			return Recency{Unit: RecencyUnknown}
		}
		n, err := strconv.Atoi(digits)
		if err != nil {
			return Recency{Unit: RecencyUnknown}
		}
		return Recency{Count: n, Unit: m.unit}
	}
	return Recency{Unit: RecencyNone}
}

func splitLines(text string) []string {
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}

func normalizeColons(s string) string {
	return strings.ReplaceAll(s, "：", ":")
}

func containsAnyLabel(line string, labels []string) bool {
	upper := strings.ToUpper(line)
	for _, label := range labels {
		if strings.Contains(upper, strings.ToUpper(label)) {
			return true
		}
	}
	return false
}

// afterLabel returns what follows the first colon of a line containing
// any of the labels.
func afterLabel(line string, labels []string) (string, bool) {
	if !containsAnyLabel(line, labels) {
		return "", false
	}
	norm := normalizeColons(line)
	i := strings.IndexByte(norm, ':')
	if i < 0 {
		return "", false
	}
	return norm[i+1:], true
}

func firstNumber(s string) (float64, bool) {
	m := numberRe.FindString(strings.ReplaceAll(s, ",", ""))
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
