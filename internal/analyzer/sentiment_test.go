package analyzer

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-stock-analysis/internal/dto"
	"golang-stock-analysis/internal/textparse"
	"golang-stock-analysis/pkg/logger"
)

func newsRecord(title, content, timeStr, source string) string {
	return fmt.Sprintf("标题: %s\n内容: %s\n时间: %s\n来源: %s", title, content, timeStr, source)
}

func TestSentimentAnalyzePositiveNews(t *testing.T) {
	newsText := strings.Join([]string{
		newsRecord("股价上涨创新高", "公司获得利好消息，业绩超预期", "3小时前", "新华社"),
		newsRecord("重大合同中标公告", "公司成功中标重大项目，合作前景乐观", "5小时前", "证券时报"),
		newsRecord("利好不断股价涨停", "强劲增长推动股价突破前高", "3小时前", "新浪财经"),
	}, "\n\n")
	a := NewSentimentAnalyzer(DefaultSentimentConfig(), logger.NewNop())

	res, err := a.Analyze(context.Background(), newsText)
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, 3, res.NewsCount)
	// Every article saturates the keyword score at the positive clamp.
	assert.Equal(t, 1.0, res.SentimentScores.AverageScore)
	assert.Equal(t, 3, res.SentimentScores.PositiveCount)
	assert.Equal(t, 0, res.SentimentScores.NegativeCount)
	assert.Equal(t, 1.0, res.SentimentScores.SentimentDistribution.PositiveRatio)
	assert.Equal(t, 1.0, res.SentimentScores.ExtremeSentimentRatio)

	assert.Equal(t, 1.0, res.ComprehensiveSentiment.WeightedSentiment)
	assert.Equal(t, dto.SentimentPositive, res.ComprehensiveSentiment.OverallSentiment)
	assert.Equal(t, dto.StrengthStrong, res.ComprehensiveSentiment.SentimentStrength)
	assert.Greater(t, res.ComprehensiveSentiment.ConfidenceScore, 0.0)

	// 业绩 bumps the first article over the high impact cutoff, the bare
	// 新浪财经 article stays under it.
	assert.InDelta(t, 2.0/3.0, res.ImpactWeights.HighImpactRatio, 1e-9)
	assert.Len(t, res.ImpactWeights.SourceWeights, 3)

	assert.Empty(t, res.RiskAlerts)
	assert.Equal(t, 3, res.MarketAttention.MediaCoverageBreadth)
	assert.Equal(t, dto.LevelLow, res.MarketAttention.AttentionLevel)

	assert.Equal(t, 100.0, res.DataQuality.Completeness)
	assert.Equal(t, 100.0, res.DataQuality.Timeliness)
	assert.Equal(t, dto.GradeExcellent, res.DataQuality.QualityLevel)
	assert.Equal(t, dto.ProvenanceReal, res.DataProvenance)
}

func TestSentimentAnalyzeNeutralNews(t *testing.T) {
	newsText := strings.Join([]string{
		newsRecord("公司召开年度股东大会", "会议审议了董事会工作报告", "3小时前", "新浪财经"),
		newsRecord("公司发布会议纪要", "纪要内容与此前公告一致", "5小时前", "新浪财经"),
		newsRecord("高管出席行业论坛", "论坛讨论了行业发展方向", "8小时前", "新浪财经"),
	}, "\n\n")
	a := NewSentimentAnalyzer(DefaultSentimentConfig(), logger.NewNop())

	res, err := a.Analyze(context.Background(), newsText)
	require.NoError(t, err)

	assert.Equal(t, 0.0, res.ComprehensiveSentiment.WeightedSentiment)
	assert.Equal(t, dto.SentimentNeutral, res.ComprehensiveSentiment.OverallSentiment)
	assert.Equal(t, dto.StrengthWeak, res.ComprehensiveSentiment.SentimentStrength)
	assert.Greater(t, res.ComprehensiveSentiment.ConfidenceScore, 0.0)
	assert.Equal(t, 3, res.SentimentScores.NeutralCount)
}

func TestSentimentAnalyzeNegativeNews(t *testing.T) {
	newsText := strings.Join([]string{
		newsRecord("股价暴跌跌停", "公司亏损严重面临处罚", "3小时前", "新浪财经"),
		newsRecord("业绩大幅下滑", "公司利空缠身，股价破位下跌", "5小时前", "新浪财经"),
	}, "\n\n")
	a := NewSentimentAnalyzer(DefaultSentimentConfig(), logger.NewNop())

	res, err := a.Analyze(context.Background(), newsText)
	require.NoError(t, err)

	assert.Equal(t, dto.SentimentNegative, res.ComprehensiveSentiment.OverallSentiment)
	assert.Less(t, res.ComprehensiveSentiment.WeightedSentiment, -0.6)

	require.NotEmpty(t, res.RiskAlerts)
	assert.Equal(t, "极端负面情绪", res.RiskAlerts[0].Type)
	assert.Equal(t, dto.LevelHigh, res.RiskAlerts[0].Level)
}

func TestSentimentAnalyzeNoRecords(t *testing.T) {
	a := NewSentimentAnalyzer(DefaultSentimentConfig(), logger.NewNop())

	res, err := a.Analyze(context.Background(), "")
	assert.Nil(t, res)
	assert.ErrorIs(t, err, textparse.ErrNoData)
}

func TestSentimentSourceWeight(t *testing.T) {
	tests := []struct {
		source string
		want   float64
	}{
		{source: "新华社", want: 1.0},
		{source: "证券时报", want: 0.9},
		{source: "第一财经", want: 0.8},
		{source: "新浪财经", want: 0.7},
		{source: "某财经网站", want: 0.8},
		{source: "不知名博客", want: 0.5},
	}
	a := NewSentimentAnalyzer(DefaultSentimentConfig(), logger.NewNop())

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			assert.Equal(t, tt.want, a.sourceWeight(tt.source))
		})
	}
}

func TestSentimentContentWeight(t *testing.T) {
	a := NewSentimentAnalyzer(DefaultSentimentConfig(), logger.NewNop())

	assert.Equal(t, 1.0, a.contentWeight("普通新闻内容"))
	assert.InDelta(t, 1.2, a.contentWeight("政策调整公布"), 1e-9)
	assert.InDelta(t, 1.2*1.1, a.contentWeight("业绩增长30%"), 1e-9)
	// Stacked multipliers cap at the configured ceiling.
	assert.Equal(t, 2.0, a.contentWeight("政策 监管 业绩 重组 并购消息，金额达50亿"))
}

func TestSentimentDecayFactor(t *testing.T) {
	tests := []struct {
		timeStr string
		want    float64
	}{
		{timeStr: "3小时前", want: 1.0},
		{timeStr: "30小时前", want: 0.9},
		{timeStr: "1天前", want: 0.9},
		{timeStr: "2天前", want: 0.8},
		{timeStr: "3天前", want: 0.7},
		{timeStr: "5天前", want: 0.6},
		{timeStr: "10天前", want: 0.4},
		{timeStr: "20天前", want: 0.2},
		{timeStr: "1周前", want: 0.6},
		{timeStr: "2个月前", want: 0.1},
		{timeStr: "几天前", want: 0.5},
		{timeStr: "2024-01-15", want: 1.0},
	}
	a := NewSentimentAnalyzer(DefaultSentimentConfig(), logger.NewNop())

	for _, tt := range tests {
		t.Run(tt.timeStr, func(t *testing.T) {
			assert.Equal(t, tt.want, a.decayFactor(tt.timeStr))
		})
	}
}

func TestSentimentTrend(t *testing.T) {
	a := NewSentimentAnalyzer(DefaultSentimentConfig(), logger.NewNop())

	t.Run("sharp deterioration", func(t *testing.T) {
		trend := a.trend([]float64{0.8, 0.7, 0.8, -0.5, -0.6, -0.7})
		assert.Equal(t, dto.TrendFalling, trend.TrendDirection)
		assert.Greater(t, trend.TrendStrength, 0.4)
		assert.Equal(t, "情绪呈强烈下降趋势", trend.TrendDescription)
	})

	t.Run("flat scores stay stable", func(t *testing.T) {
		trend := a.trend([]float64{0.1, 0.1, 0.1})
		assert.Equal(t, dto.TrendStable, trend.TrendDirection)
		assert.Equal(t, 0.0, trend.RecentChange)
	})

	t.Run("too few articles", func(t *testing.T) {
		trend := a.trend([]float64{0.5, -0.5})
		assert.Equal(t, dto.TrendStable, trend.TrendDirection)
		assert.Empty(t, trend.TrendDescription)
	})
}

func TestSentimentHotTopics(t *testing.T) {
	items := []dto.NewsItem{
		{Title: "芯片 利好", Content: "芯片 产业"},
		{Title: "芯片 大涨", Content: "芯片 市场"},
	}
	a := NewSentimentAnalyzer(DefaultSentimentConfig(), logger.NewNop())

	topics := a.hotTopics(items)

	assert.Equal(t, 4, topics.KeywordFrequency["芯片"])
	assert.Equal(t, []string{"芯片"}, topics.HotKeywords)
	assert.Empty(t, topics.TopicClusters)
}

func TestSentimentDataQualityMix(t *testing.T) {
	items := []dto.NewsItem{
		{Title: "标题一", Content: "内容一", Time: "3小时前", Source: "新华社"},
		{Title: "标题二", Content: "内容二", Time: "2天前", Source: "新浪财经"},
	}
	a := NewSentimentAnalyzer(DefaultSentimentConfig(), logger.NewNop())

	q := a.dataQuality(items)

	assert.Equal(t, 100.0, q.Completeness)
	assert.Equal(t, 50.0, q.Timeliness)
	assert.Equal(t, 50.0, q.SourceReliability)
	assert.Equal(t, 70.0, q.OverallScore)
	assert.Equal(t, dto.GradeGood, q.QualityLevel)
}
