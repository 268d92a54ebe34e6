package presenter

import (
	contactDTO "github.com/johnquangdev/call-assistant/internal/adapter/dto/contact"
	"github.com/johnquangdev/call-assistant/internal/domain/entities"
)

// recentTopicLimit caps the topics shown per contact in list views
const recentTopicLimit = 5

// ToContactSummary converts a Contact into its list rollup
func ToContactSummary(c entities.Contact) contactDTO.ContactSummaryResponse {
	recent := c.Topics
	if len(recent) > recentTopicLimit {
		recent = recent[len(recent)-recentTopicLimit:]
	}

	return contactDTO.ContactSummaryResponse{
		PhoneNumber:          c.PhoneKey.String(),
		Relationship:         c.Relationship,
		TotalCalls:           c.TotalCalls,
		TotalDurationSeconds: c.TotalDurationSeconds,
		FirstContact:         c.FirstContact,
		LastContact:          c.LastContact,
		TopicCount:           len(c.Topics),
		RecentTopics:         append([]string{}, recent...),
		PendingActionItems:   len(c.PendingActionItems()),
		Sentiment:            c.SentimentCounts.Dominant(),
		SentimentCounts:      c.SentimentCounts,
	}
}

// ToListContactsResponse converts contacts into the list response
func ToListContactsResponse(contacts []entities.Contact) *contactDTO.ListContactsResponse {
	items := make([]contactDTO.ContactSummaryResponse, 0, len(contacts))
	for _, c := range contacts {
		items = append(items, ToContactSummary(c))
	}
	return &contactDTO.ListContactsResponse{
		Contacts: items,
		Total:    len(items),
	}
}
