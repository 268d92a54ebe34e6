package entities

import (
	"time"

	"github.com/johnquangdev/call-assistant/pkg/phone"
)

// Relationship classifies how often a contact is called
type Relationship string

const (
	RelationshipNew        Relationship = "new"
	RelationshipOccasional Relationship = "occasional"
	RelationshipRegular    Relationship = "regular"
	RelationshipFrequent   Relationship = "frequent"
)

const daysPerMonth = 30.0

// SentimentCounts tallies processed transcriptions by sentiment
type SentimentCounts struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
}

// Add increments the counter for s
func (c *SentimentCounts) Add(s Sentiment) {
	switch s {
	case SentimentPositive:
		c.Positive++
	case SentimentNegative:
		c.Negative++
	default:
		c.Neutral++
	}
}

// Total returns the number of counted transcriptions
func (c SentimentCounts) Total() int {
	return c.Positive + c.Negative + c.Neutral
}

// Dominant returns the sentiment with the highest count; ties resolve to neutral
func (c SentimentCounts) Dominant() Sentiment {
	switch {
	case c.Positive > c.Negative && c.Positive > c.Neutral:
		return SentimentPositive
	case c.Negative > c.Positive && c.Negative > c.Neutral:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// Contact is the rolling relationship profile for one phone number
type Contact struct {
	PhoneKey             phone.Key       `json:"phone_number"`
	FirstContact         time.Time       `json:"first_contact"`
	LastContact          time.Time       `json:"last_contact"`
	TotalCalls           int             `json:"total_calls"`
	TotalDurationSeconds int             `json:"total_duration"`
	Topics               []string        `json:"topics"`
	ActionItems          []ActionItem    `json:"action_items"`
	SentimentCounts      SentimentCounts `json:"sentiment_history"`
	Relationship         Relationship    `json:"relationship"`
}

// NewContact creates an empty profile for key
func NewContact(key phone.Key) Contact {
	return Contact{
		PhoneKey:     key,
		Topics:       []string{},
		ActionItems:  []ActionItem{},
		Relationship: RelationshipNew,
	}
}

// Touch records activity at t
func (c *Contact) Touch(t time.Time) {
	if c.FirstContact.IsZero() || t.Before(c.FirstContact) {
		c.FirstContact = t
	}
	if t.After(c.LastContact) {
		c.LastContact = t
	}
}

// AddTopics merges topics into the contact's topic set, preserving first-seen order
func (c *Contact) AddTopics(topics []string) {
	seen := make(map[string]struct{}, len(c.Topics))
	for _, t := range c.Topics {
		seen[t] = struct{}{}
	}
	for _, t := range topics {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		c.Topics = append(c.Topics, t)
	}
}

// PendingActionItems returns action items not yet completed
func (c *Contact) PendingActionItems() []ActionItem {
	pending := make([]ActionItem, 0, len(c.ActionItems))
	for _, item := range c.ActionItems {
		if !item.Completed {
			pending = append(pending, item)
		}
	}
	return pending
}

// Reclassify refreshes the cached relationship as of now
func (c *Contact) Reclassify(now time.Time) {
	c.Relationship = ClassifyRelationship(c.TotalCalls, c.FirstContact, now)
}

// Clone returns a deep copy of the contact
func (c Contact) Clone() Contact {
	c.Topics = append([]string{}, c.Topics...)
	items := make([]ActionItem, len(c.ActionItems))
	for i, item := range c.ActionItems {
		items[i] = item.Clone()
	}
	c.ActionItems = items
	return c
}

// CallsPerMonth returns totalCalls over the months since first contact.
// Spans shorter than one month count as one month.
func CallsPerMonth(totalCalls int, firstContact, now time.Time) float64 {
	months := 1.0
	if !firstContact.IsZero() {
		days := now.Sub(firstContact).Hours() / 24
		if m := days / daysPerMonth; m > months {
			months = m
		}
	}
	return float64(totalCalls) / months
}

// ClassifyRelationship derives the relationship class from call frequency
func ClassifyRelationship(totalCalls int, firstContact, now time.Time) Relationship {
	perMonth := CallsPerMonth(totalCalls, firstContact, now)
	switch {
	case perMonth >= 4:
		return RelationshipFrequent
	case perMonth >= 2:
		return RelationshipRegular
	case totalCalls >= 3:
		return RelationshipOccasional
	default:
		return RelationshipNew
	}
}
