package entities

import (
	"time"

	"github.com/johnquangdev/call-assistant/pkg/phone"
)

// Suggestion types
const (
	SuggestionFollowUp   = "follow_up"
	SuggestionReconnect  = "reconnect"
	SuggestionSentiment  = "improve_sentiment"
	SuggestionEngagement = "engagement"
	SuggestionTopicFocus = "topic_focus"
)

// Priority of a suggestion
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank orders priorities, high first
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	default:
		return 2
	}
}

// RelationshipStatus is the header block of a briefing
type RelationshipStatus struct {
	Relationship         Relationship `json:"relationship"`
	TotalCalls           int          `json:"total_calls"`
	TotalDurationSeconds int          `json:"total_duration"`
	FirstContact         time.Time    `json:"first_contact"`
	LastContact          time.Time    `json:"last_contact"`
	DaysSinceLastContact int          `json:"days_since_last_contact"`
	OverallSentiment     Sentiment    `json:"overall_sentiment"`
}

// LastInteraction snapshots the most recent history entry
type LastInteraction struct {
	Kind      EntryKind `json:"type"`
	Sid       string    `json:"sid"`
	At        time.Time `json:"timestamp"`
	DaysAgo   int       `json:"days_ago"`
	Summary   string    `json:"summary,omitempty"`
	Topics    []string  `json:"topics,omitempty"`
	Sentiment Sentiment `json:"sentiment,omitempty"`
}

// PendingActionItem is an open action item with its age
type PendingActionItem struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	AgeDays   int       `json:"age_days"`
}

// Suggestion is one prioritized recommendation for the operator
type Suggestion struct {
	Type     string   `json:"type"`
	Priority Priority `json:"priority"`
	Message  string   `json:"message"`
}

// Briefing is the pre-call summary for an operator
type Briefing struct {
	PhoneKey              phone.Key           `json:"phone_number"`
	GeneratedAt           time.Time           `json:"generated_at"`
	RelationshipStatus    RelationshipStatus  `json:"relationship_status"`
	LastInteraction       *LastInteraction    `json:"last_interaction,omitempty"`
	PendingActionItems    []PendingActionItem `json:"pending_action_items"`
	PreferredTopics       []string            `json:"preferred_topics"`
	CommunicationGuidance []string            `json:"communication_guidance"`
	Suggestions           []Suggestion        `json:"suggestions"`
}
