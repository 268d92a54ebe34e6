package entities

import (
	"time"

	"github.com/johnquangdev/call-assistant/pkg/phone"
)

// RecordingStatus represents the provider-reported status of a recording
type RecordingStatus string

const (
	RecordingStatusInProgress RecordingStatus = "in-progress"
	RecordingStatusCompleted  RecordingStatus = "completed"
	RecordingStatusAbsent     RecordingStatus = "absent"
	RecordingStatusFailed     RecordingStatus = "failed"
)

// Recording represents a completed call recording reported by the provider
type Recording struct {
	Sid             string          `json:"sid"`
	URL             string          `json:"url"`
	DurationSeconds int             `json:"duration"`
	ChannelCount    int             `json:"channels"`
	CallSid         string          `json:"call_sid"`
	PhoneKey        phone.Key       `json:"phone_number,omitempty"`
	Status          RecordingStatus `json:"status"`
	StartTime       *time.Time      `json:"start_time,omitempty"`
	EndTime         *time.Time      `json:"end_time,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// MediaURL returns the downloadable media location for the recording
func (r *Recording) MediaURL() string {
	if r.URL == "" {
		return ""
	}
	return r.URL + ".mp3"
}

// Clone returns a deep copy of the recording
func (r Recording) Clone() Recording {
	if r.StartTime != nil {
		t := *r.StartTime
		r.StartTime = &t
	}
	if r.EndTime != nil {
		t := *r.EndTime
		r.EndTime = &t
	}
	return r
}
