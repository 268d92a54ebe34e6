package entities

import (
	"time"

	"github.com/google/uuid"
)

// ActionItemSource constants
const (
	ActionItemSourceTranscription = "transcription"
)

// ActionItem is a follow-up extracted from a call and tracked on the contact
type ActionItem struct {
	ID               string     `json:"id"`
	Text             string     `json:"text"`
	CreatedAt        time.Time  `json:"created_at"`
	Completed        bool       `json:"completed"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	Source           string     `json:"source"`
	TranscriptionSid string     `json:"transcription_sid"`
}

// NewActionItem creates a pending action item extracted from a transcription
func NewActionItem(text, transcriptionSid string, createdAt time.Time) ActionItem {
	return ActionItem{
		ID:               uuid.NewString(),
		Text:             text,
		CreatedAt:        createdAt,
		Source:           ActionItemSourceTranscription,
		TranscriptionSid: transcriptionSid,
	}
}

// SetCompleted marks the item completed or pending
func (a *ActionItem) SetCompleted(completed bool, at time.Time) {
	a.Completed = completed
	if completed {
		a.CompletedAt = &at
		return
	}
	a.CompletedAt = nil
}

// AgeDays returns whole days since the item was created
func (a *ActionItem) AgeDays(now time.Time) int {
	if now.Before(a.CreatedAt) {
		return 0
	}
	return int(now.Sub(a.CreatedAt).Hours() / 24)
}

// Clone returns a deep copy of the action item
func (a ActionItem) Clone() ActionItem {
	if a.CompletedAt != nil {
		t := *a.CompletedAt
		a.CompletedAt = &t
	}
	return a
}
