package voice

import (
	"strings"
	"time"

	"github.com/johnquangdev/call-assistant/internal/usecase/callback"
)

// StatusCallbackRequest is the form body of a call status callback
type StatusCallbackRequest struct {
	CallSid    string `form:"CallSid" validate:"required"`
	CallStatus string `form:"CallStatus"`
	From       string `form:"From"`
	To         string `form:"To"`
	Direction  string `form:"Direction"`
	Timestamp  string `form:"Timestamp"`
}

// ToEvent converts the form into a status event
func (r StatusCallbackRequest) ToEvent() callback.StatusEvent {
	return callback.StatusEvent{
		CallSid:    r.CallSid,
		CallStatus: r.CallStatus,
		From:       r.From,
		To:         r.To,
		Direction:  r.Direction,
		Timestamp:  r.Timestamp,
	}
}

// RecordingCallbackRequest is the form body of a recording-complete callback
type RecordingCallbackRequest struct {
	RecordingSid       string `form:"RecordingSid" validate:"required"`
	RecordingURL       string `form:"RecordingUrl" validate:"omitempty,url"`
	RecordingDuration  int    `form:"RecordingDuration" validate:"min=0"`
	RecordingChannels  int    `form:"RecordingChannels" validate:"min=0"`
	CallSid            string `form:"CallSid"`
	RecordingStatus    string `form:"RecordingStatus"`
	RecordingStartTime string `form:"RecordingStartTime"`
	RecordingEndTime   string `form:"RecordingEndTime"`
}

// ToEvent converts the form into a recording event.
// Unparseable timestamps are dropped.
func (r RecordingCallbackRequest) ToEvent() callback.RecordingEvent {
	return callback.RecordingEvent{
		RecordingSid:    r.RecordingSid,
		RecordingURL:    r.RecordingURL,
		DurationSeconds: r.RecordingDuration,
		Channels:        r.RecordingChannels,
		CallSid:         r.CallSid,
		Status:          r.RecordingStatus,
		StartTime:       parseProviderTime(r.RecordingStartTime),
		EndTime:         parseProviderTime(r.RecordingEndTime),
	}
}

// TranscriptionCallbackRequest is the form body of a transcription-complete callback
type TranscriptionCallbackRequest struct {
	TranscriptionSid    string  `form:"TranscriptionSid" validate:"required"`
	TranscriptionText   string  `form:"TranscriptionText"`
	TranscriptionStatus string  `form:"TranscriptionStatus"`
	TranscriptionURL    string  `form:"TranscriptionUrl"`
	RecordingSid        string  `form:"RecordingSid"`
	CallSid             string  `form:"CallSid"`
	Confidence          float64 `form:"Confidence" validate:"omitempty,min=0,max=1"`
	AudioURL            string  `form:"AudioUrl"`
}

// ToEvent converts the form into a transcription event
func (r TranscriptionCallbackRequest) ToEvent() callback.TranscriptionEvent {
	return callback.TranscriptionEvent{
		TranscriptionSid: r.TranscriptionSid,
		Text:             r.TranscriptionText,
		Status:           r.TranscriptionStatus,
		URL:              r.TranscriptionURL,
		RecordingSid:     r.RecordingSid,
		CallSid:          r.CallSid,
		Confidence:       r.Confidence,
		AudioURL:         r.AudioURL,
	}
}

var providerTimeLayouts = []string{time.RFC1123Z, time.RFC1123, time.RFC3339}

func parseProviderTime(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range providerTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}
