package contact

import (
	"time"

	"github.com/johnquangdev/call-assistant/internal/domain/entities"
)

// ContactSummaryResponse is the lightweight rollup shown in contact lists
type ContactSummaryResponse struct {
	PhoneNumber          string                   `json:"phone_number"`
	Relationship         entities.Relationship    `json:"relationship"`
	TotalCalls           int                      `json:"total_calls"`
	TotalDurationSeconds int                      `json:"total_duration"`
	FirstContact         time.Time                `json:"first_contact"`
	LastContact          time.Time                `json:"last_contact"`
	TopicCount           int                      `json:"topic_count"`
	RecentTopics         []string                 `json:"recent_topics"`
	PendingActionItems   int                      `json:"pending_action_items"`
	Sentiment            entities.Sentiment       `json:"dominant_sentiment"`
	SentimentCounts      entities.SentimentCounts `json:"sentiment_history"`
}

// ListContactsResponse wraps the contact rollups
type ListContactsResponse struct {
	Contacts []ContactSummaryResponse `json:"contacts"`
	Total    int                      `json:"total"`
}
