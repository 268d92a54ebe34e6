package conversation

import (
	"sort"
	"time"

	"github.com/johnquangdev/call-assistant/internal/domain/entities"
	"github.com/johnquangdev/call-assistant/internal/usecase/analytics"
)

// topicConsistency histograms topics over processed transcriptions
func topicConsistency(conversations []entities.Transcription) entities.TopicConsistency {
	counts := make(map[string]int)
	for _, t := range conversations {
		if !t.Processed {
			continue
		}
		for _, topic := range t.Topics() {
			counts[topic]++
		}
	}

	frequencies := make([]entities.TopicCount, 0, len(counts))
	for topic, n := range counts {
		frequencies = append(frequencies, entities.TopicCount{Topic: topic, Count: n})
	}
	sort.Slice(frequencies, func(i, j int) bool {
		if frequencies[i].Count != frequencies[j].Count {
			return frequencies[i].Count > frequencies[j].Count
		}
		return frequencies[i].Topic < frequencies[j].Topic
	})

	recurring := make([]entities.TopicCount, 0)
	for _, tc := range frequencies {
		if tc.Count > 1 {
			recurring = append(recurring, tc)
		}
	}

	result := entities.TopicConsistency{
		Frequencies: frequencies,
		Recurring:   recurring,
	}
	if len(frequencies) > 0 {
		result.ConsistencyScore = float64(len(recurring)) / float64(len(frequencies))
	}
	return result
}

// sentimentTrend reports sentiment shares and whether the recent tone moved
func sentimentTrend(conversations []entities.Transcription) entities.SentimentTrend {
	processed := make([]entities.Sentiment, 0, len(conversations))
	for _, t := range conversations {
		if t.Processed {
			processed = append(processed, t.Sentiment())
		}
	}

	trend := entities.SentimentTrend{Trend: entities.TrendInsufficient}
	if len(processed) == 0 {
		return trend
	}

	var counts entities.SentimentCounts
	for _, s := range processed {
		counts.Add(s)
	}
	total := float64(len(processed))
	trend.Positive = float64(counts.Positive) / total
	trend.Negative = float64(counts.Negative) / total
	trend.Neutral = float64(counts.Neutral) / total
	trend.Latest = processed[len(processed)-1]

	if len(processed) < 2 {
		return trend
	}

	start := len(processed) - trendWindow
	if start < 0 {
		start = 0
	}
	if processed[start] == processed[len(processed)-1] {
		trend.Trend = entities.TrendStable
	} else {
		trend.Trend = entities.TrendChanging
	}
	return trend
}

func buildPatterns(conversations []entities.Transcription, loc *time.Location) entities.CommunicationPatterns {
	timeOfDay := map[string]int{
		entities.TimeMorning:   0,
		entities.TimeAfternoon: 0,
		entities.TimeEvening:   0,
		entities.TimeNight:     0,
	}
	for _, t := range conversations {
		timeOfDay[timeBucket(t.CreatedAt.In(loc).Hour())]++
	}

	followUps := followUpAnalysis(conversations)

	return entities.CommunicationPatterns{
		TimeOfDay:     timeOfDay,
		PreferredTime: preferredTime(timeOfDay),
		FollowUps:     followUps,
		Style:         communicationStyle(conversations, followUps),
	}
}

func timeBucket(hour int) string {
	switch {
	case hour >= 5 && hour < 12:
		return entities.TimeMorning
	case hour >= 12 && hour < 17:
		return entities.TimeAfternoon
	case hour >= 17 && hour < 21:
		return entities.TimeEvening
	default:
		return entities.TimeNight
	}
}

// preferredTime picks the busiest bucket; ties go to the earlier bucket in the day
func preferredTime(timeOfDay map[string]int) string {
	best, bestCount := entities.TimeUnknown, 0
	for _, bucket := range []string{entities.TimeMorning, entities.TimeAfternoon, entities.TimeEvening, entities.TimeNight} {
		if n := timeOfDay[bucket]; n > bestCount {
			best, bestCount = bucket, n
		}
	}
	return best
}

func followUpAnalysis(conversations []entities.Transcription) entities.FollowUpAnalysis {
	var analysis entities.FollowUpAnalysis
	if len(conversations) < 2 {
		return analysis
	}

	var totalDays float64
	for i := 1; i < len(conversations); i++ {
		gap := conversations[i].CreatedAt.Sub(conversations[i-1].CreatedAt)
		if gap <= quickFollowUpWindow {
			analysis.QuickFollowUps++
		}
		totalDays += gap.Hours() / 24
		analysis.Gaps++
	}
	analysis.AverageGapDays = totalDays / float64(analysis.Gaps)
	return analysis
}

func communicationStyle(conversations []entities.Transcription, followUps entities.FollowUpAnalysis) entities.CommunicationStyle {
	var formal, informal, words int
	for _, t := range conversations {
		f, i := analytics.FormalityCounts(t.Text)
		formal += f
		informal += i
		words += analytics.WordCount(t.Text)
	}

	style := entities.CommunicationStyle{
		Formality:      entities.FormalityBalanced,
		Engagement:     entities.LevelLow,
		Responsiveness: entities.LevelLow,
	}

	switch {
	case formal > informal:
		style.Formality = entities.FormalityFormal
	case informal > formal:
		style.Formality = entities.FormalityCasual
	}

	if len(conversations) > 0 {
		style.AverageWordsPerCall = float64(words) / float64(len(conversations))
	}
	switch {
	case style.AverageWordsPerCall > 200:
		style.Engagement = entities.LevelHigh
	case style.AverageWordsPerCall > 100:
		style.Engagement = entities.LevelMedium
	}

	switch {
	case followUps.QuickFollowUps >= 3:
		style.Responsiveness = entities.LevelHigh
	case followUps.QuickFollowUps >= 1:
		style.Responsiveness = entities.LevelMedium
	}
	return style
}
