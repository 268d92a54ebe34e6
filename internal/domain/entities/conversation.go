package entities

import "time"

// MaxConversationEntries caps the rolling history kept per contact
const MaxConversationEntries = 50

// EntryKind identifies the event a conversation entry came from
type EntryKind string

const (
	EntryKindRecording     EntryKind = "recording"
	EntryKindTranscription EntryKind = "transcription"
)

// ConversationEntry is one recording or transcription event in a contact's history.
// It snapshots what is needed for briefings so history outlives raw-data retention.
type ConversationEntry struct {
	Kind            EntryKind `json:"type"`
	Sid             string    `json:"sid"`
	CallSid         string    `json:"call_sid"`
	CreatedAt       time.Time `json:"timestamp"`
	DurationSeconds int       `json:"duration,omitempty"`
	Summary         string    `json:"summary,omitempty"`
	Topics          []string  `json:"topics,omitempty"`
	ActionItems     []string  `json:"action_items,omitempty"`
	Sentiment       Sentiment `json:"sentiment,omitempty"`
	WordCount       int       `json:"word_count,omitempty"`
}

// Clone returns a deep copy of the entry
func (e ConversationEntry) Clone() ConversationEntry {
	e.Topics = cloneStrings(e.Topics)
	e.ActionItems = cloneStrings(e.ActionItems)
	return e
}

// Sentiment trend labels
const (
	TrendStable       = "stable"
	TrendChanging     = "changing"
	TrendInsufficient = "insufficient"
)

// Time-of-day buckets
const (
	TimeMorning   = "morning"
	TimeAfternoon = "afternoon"
	TimeEvening   = "evening"
	TimeNight     = "night"
	TimeUnknown   = "unknown"
)

// Level is a coarse low/medium/high rating
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// Formality labels
const (
	FormalityFormal   = "formal"
	FormalityCasual   = "casual"
	FormalityBalanced = "balanced"
)

// TopicCount is one bucket of a topic frequency histogram
type TopicCount struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

// TopicConsistency describes how often topics recur across conversations
type TopicConsistency struct {
	Frequencies      []TopicCount `json:"frequencies"`
	Recurring        []TopicCount `json:"recurring_topics"`
	ConsistencyScore float64      `json:"consistency_score"`
}

// SentimentTrend summarizes sentiment over the full history
type SentimentTrend struct {
	Trend    string    `json:"trend"`
	Positive float64   `json:"positive"`
	Negative float64   `json:"negative"`
	Neutral  float64   `json:"neutral"`
	Latest   Sentiment `json:"latest,omitempty"`
}

// RelationshipInsights is derived from a contact and its conversations
type RelationshipInsights struct {
	Relationship          Relationship     `json:"relationship"`
	CallsPerMonth         float64          `json:"calls_per_month"`
	DaysSinceFirstContact int              `json:"days_since_first_contact"`
	DaysSinceLastContact  int              `json:"days_since_last_contact"`
	TopicConsistency      TopicConsistency `json:"topic_consistency"`
	SentimentTrend        SentimentTrend   `json:"sentiment_trend"`
}

// FollowUpAnalysis describes gaps between consecutive conversations
type FollowUpAnalysis struct {
	QuickFollowUps int     `json:"quick_follow_ups"`
	Gaps           int     `json:"gaps"`
	AverageGapDays float64 `json:"average_gap_days"`
}

// CommunicationStyle describes how the contact tends to talk
type CommunicationStyle struct {
	Formality           string  `json:"formality"`
	Engagement          Level   `json:"engagement"`
	AverageWordsPerCall float64 `json:"average_words_per_call"`
	Responsiveness      Level   `json:"responsiveness"`
}

// CommunicationPatterns is derived from conversation timing and text
type CommunicationPatterns struct {
	TimeOfDay     map[string]int     `json:"time_of_day"`
	PreferredTime string             `json:"preferred_time"`
	FollowUps     FollowUpAnalysis   `json:"follow_ups"`
	Style         CommunicationStyle `json:"communication_style"`
}

// ContextSummary is a rollup over the whole context
type ContextSummary struct {
	TotalConversations   int        `json:"total_conversations"`
	TotalCalls           int        `json:"total_calls"`
	TotalDurationSeconds int        `json:"total_duration"`
	TopTopics            []string   `json:"top_topics"`
	PendingActionItems   int        `json:"pending_action_items"`
	OverallSentiment     Sentiment  `json:"overall_sentiment"`
	LastInteraction      *time.Time `json:"last_interaction,omitempty"`
}

// ConversationContext is computed on every read and never stored
type ConversationContext struct {
	Contact       Contact               `json:"contact"`
	History       []ConversationEntry   `json:"history"`
	Conversations []Transcription       `json:"conversations"`
	Insights      RelationshipInsights  `json:"insights"`
	Patterns      CommunicationPatterns `json:"patterns"`
	Summary       ContextSummary        `json:"summary"`
	GeneratedAt   time.Time             `json:"generated_at"`
}
