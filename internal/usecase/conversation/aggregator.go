// Package conversation folds a contact's calls into a relationship context
// and turns that context into a pre-call briefing.
package conversation

import (
	"sort"
	"time"

	"github.com/johnquangdev/call-assistant/internal/domain/entities"
	"github.com/johnquangdev/call-assistant/internal/domain/repositories"
	"github.com/johnquangdev/call-assistant/pkg/phone"
)

const (
	quickFollowUpWindow = 7 * 24 * time.Hour
	trendWindow         = 3
	topTopicsLimit      = 5
)

// Aggregator assembles a ConversationContext from the current store state.
// Nothing it computes is cached or written back.
type Aggregator struct {
	store repositories.EventStore
	loc   *time.Location
	now   func() time.Time
}

// NewAggregator creates an aggregator; loc buckets calls into time of day
func NewAggregator(store repositories.EventStore, loc *time.Location) *Aggregator {
	if loc == nil {
		loc = time.Local
	}
	return &Aggregator{
		store: store,
		loc:   loc,
		now:   time.Now,
	}
}

// BuildContext returns the context for key, or false when no contact exists
func (a *Aggregator) BuildContext(key phone.Key) (*entities.ConversationContext, bool) {
	contact, ok := a.store.GetContact(key)
	if !ok {
		return nil, false
	}

	now := a.now()
	contact.Reclassify(now)
	conversations := a.gather(key)
	history := a.store.ConversationHistory(key)

	insights := buildInsights(contact, conversations, now)
	patterns := buildPatterns(conversations, a.loc)

	return &entities.ConversationContext{
		Contact:       contact,
		History:       history,
		Conversations: conversations,
		Insights:      insights,
		Patterns:      patterns,
		Summary:       buildSummary(contact, history, conversations, insights),
		GeneratedAt:   now,
	}, true
}

// gather returns the transcriptions attributed to key at ingest, oldest first
func (a *Aggregator) gather(key phone.Key) []entities.Transcription {
	matched := make([]entities.Transcription, 0)
	for _, t := range a.store.ListTranscriptions() {
		if t.PhoneKey != key {
			continue
		}
		matched = append(matched, t)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})
	return matched
}

func buildInsights(contact entities.Contact, conversations []entities.Transcription, now time.Time) entities.RelationshipInsights {
	insights := entities.RelationshipInsights{
		Relationship:     entities.ClassifyRelationship(contact.TotalCalls, contact.FirstContact, now),
		CallsPerMonth:    entities.CallsPerMonth(contact.TotalCalls, contact.FirstContact, now),
		TopicConsistency: topicConsistency(conversations),
		SentimentTrend:   sentimentTrend(conversations),
	}
	if !contact.FirstContact.IsZero() {
		insights.DaysSinceFirstContact = daysBetween(contact.FirstContact, now)
	}
	if !contact.LastContact.IsZero() {
		insights.DaysSinceLastContact = daysBetween(contact.LastContact, now)
	}
	return insights
}

func buildSummary(contact entities.Contact, history []entities.ConversationEntry, conversations []entities.Transcription, insights entities.RelationshipInsights) entities.ContextSummary {
	summary := entities.ContextSummary{
		TotalConversations:   len(conversations),
		TotalCalls:           contact.TotalCalls,
		TotalDurationSeconds: contact.TotalDurationSeconds,
		TopTopics:            topTopics(insights.TopicConsistency, contact.Topics, topTopicsLimit),
		PendingActionItems:   len(contact.PendingActionItems()),
		OverallSentiment:     contact.SentimentCounts.Dominant(),
	}

	switch {
	case len(history) > 0:
		last := history[len(history)-1].CreatedAt
		summary.LastInteraction = &last
	case !contact.LastContact.IsZero():
		last := contact.LastContact
		summary.LastInteraction = &last
	}
	return summary
}

// topTopics prefers topics ranked by recurrence and falls back to the
// contact's accumulated topics once raw transcriptions have been swept.
func topTopics(consistency entities.TopicConsistency, fallback []string, limit int) []string {
	topics := make([]string, 0, limit)
	for _, tc := range consistency.Frequencies {
		if len(topics) == limit {
			return topics
		}
		topics = append(topics, tc.Topic)
	}
	if len(topics) > 0 {
		return topics
	}
	for _, t := range fallback {
		if len(topics) == limit {
			break
		}
		topics = append(topics, t)
	}
	return topics
}

func daysBetween(from, to time.Time) int {
	if to.Before(from) {
		return 0
	}
	return int(to.Sub(from).Hours() / 24)
}
