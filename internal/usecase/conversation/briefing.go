package conversation

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/johnquangdev/call-assistant/internal/domain/entities"
)

const (
	briefingActionItems = 5
	briefingTopics      = 3
	reconnectAfterDays  = 30
)

// BriefingGenerator turns a context into an operator briefing
type BriefingGenerator struct {
	now func() time.Time
}

// NewBriefingGenerator creates a generator using the wall clock
func NewBriefingGenerator() *BriefingGenerator {
	return &BriefingGenerator{now: time.Now}
}

// Brief composes the briefing. Every suggestion rule is evaluated; the
// result is ordered by priority, keeping rule order within a priority.
func (g *BriefingGenerator) Brief(ctx *entities.ConversationContext) entities.Briefing {
	now := g.now()
	insights := ctx.Insights

	briefing := entities.Briefing{
		PhoneKey:    ctx.Contact.PhoneKey,
		GeneratedAt: now,
		RelationshipStatus: entities.RelationshipStatus{
			Relationship:         insights.Relationship,
			TotalCalls:           ctx.Contact.TotalCalls,
			TotalDurationSeconds: ctx.Contact.TotalDurationSeconds,
			FirstContact:         ctx.Contact.FirstContact,
			LastContact:          ctx.Contact.LastContact,
			DaysSinceLastContact: insights.DaysSinceLastContact,
			OverallSentiment:     ctx.Summary.OverallSentiment,
		},
		LastInteraction:       lastInteraction(ctx.History, now),
		PendingActionItems:    pendingActionItems(ctx.Contact, now),
		PreferredTopics:       firstN(ctx.Summary.TopTopics, briefingTopics),
		CommunicationGuidance: guidance(ctx.Patterns),
	}
	briefing.Suggestions = suggestions(ctx, briefing)
	return briefing
}

func lastInteraction(history []entities.ConversationEntry, now time.Time) *entities.LastInteraction {
	if len(history) == 0 {
		return nil
	}
	last := history[len(history)-1]
	return &entities.LastInteraction{
		Kind:      last.Kind,
		Sid:       last.Sid,
		At:        last.CreatedAt,
		DaysAgo:   daysBetween(last.CreatedAt, now),
		Summary:   last.Summary,
		Topics:    last.Topics,
		Sentiment: last.Sentiment,
	}
}

// pendingActionItems returns the most recent open items, newest first
func pendingActionItems(contact entities.Contact, now time.Time) []entities.PendingActionItem {
	pending := contact.PendingActionItems()
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].CreatedAt.After(pending[j].CreatedAt)
	})
	if len(pending) > briefingActionItems {
		pending = pending[:briefingActionItems]
	}

	items := make([]entities.PendingActionItem, 0, len(pending))
	for _, item := range pending {
		items = append(items, entities.PendingActionItem{
			ID:        item.ID,
			Text:      item.Text,
			CreatedAt: item.CreatedAt,
			AgeDays:   item.AgeDays(now),
		})
	}
	return items
}

func guidance(patterns entities.CommunicationPatterns) []string {
	lines := make([]string, 0, 3)

	switch patterns.Style.Formality {
	case entities.FormalityFormal:
		lines = append(lines, "Keep the tone professional and courteous")
	case entities.FormalityCasual:
		lines = append(lines, "A relaxed, conversational tone works well")
	default:
		lines = append(lines, "Mirror their tone; they are neither especially formal nor casual")
	}

	switch patterns.Style.Engagement {
	case entities.LevelHigh:
		lines = append(lines, "They talk at length; leave room for discussion")
	case entities.LevelMedium:
		lines = append(lines, "Calls usually run at a moderate length")
	default:
		lines = append(lines, "Keep it brief and focused")
	}

	if patterns.PreferredTime != entities.TimeUnknown && patterns.PreferredTime != "" {
		lines = append(lines, fmt.Sprintf("They are most often reached in the %s", patterns.PreferredTime))
	}
	return lines
}

func suggestions(ctx *entities.ConversationContext, b entities.Briefing) []entities.Suggestion {
	out := make([]entities.Suggestion, 0, 5)

	if n := len(ctx.Contact.PendingActionItems()); n > 0 {
		out = append(out, entities.Suggestion{
			Type:     entities.SuggestionFollowUp,
			Priority: entities.PriorityHigh,
			Message:  fmt.Sprintf("Follow up on %d pending action item%s", n, plural(n)),
		})
	}

	if ctx.Insights.Relationship == entities.RelationshipFrequent && ctx.Insights.DaysSinceLastContact > reconnectAfterDays {
		out = append(out, entities.Suggestion{
			Type:     entities.SuggestionReconnect,
			Priority: entities.PriorityMedium,
			Message:  fmt.Sprintf("No contact for %d days with a frequent contact; time to reconnect", ctx.Insights.DaysSinceLastContact),
		})
	}

	trend := ctx.Insights.SentimentTrend
	if trend.Trend == entities.TrendChanging && trend.Latest == entities.SentimentNegative {
		out = append(out, entities.Suggestion{
			Type:     entities.SuggestionSentiment,
			Priority: entities.PriorityHigh,
			Message:  "Recent conversations turned negative; acknowledge concerns early",
		})
	}

	if ctx.Summary.TotalConversations > 0 && ctx.Patterns.Style.Engagement == entities.LevelLow {
		out = append(out, entities.Suggestion{
			Type:     entities.SuggestionEngagement,
			Priority: entities.PriorityMedium,
			Message:  "Engagement has been low; open with a question about their priorities",
		})
	}

	if len(b.PreferredTopics) > 0 {
		out = append(out, entities.Suggestion{
			Type:     entities.SuggestionTopicFocus,
			Priority: entities.PriorityMedium,
			Message:  "Consider discussing: " + strings.Join(b.PreferredTopics, ", "),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority.Rank() < out[j].Priority.Rank()
	})
	return out
}

func firstN(items []string, n int) []string {
	if len(items) > n {
		items = items[:n]
	}
	return append([]string{}, items...)
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
