package callback

import (
	"strings"
	"time"
)

// StatusEvent is a call progress notification
type StatusEvent struct {
	CallSid    string
	CallStatus string
	From       string
	To         string
	Direction  string
	Timestamp  string
}

// RecordingEvent reports a finished recording
type RecordingEvent struct {
	RecordingSid    string
	RecordingURL    string
	DurationSeconds int
	Channels        int
	CallSid         string
	Status          string
	StartTime       *time.Time
	EndTime         *time.Time
}

// TranscriptionEvent reports a finished transcription
type TranscriptionEvent struct {
	TranscriptionSid string
	Text             string
	Status           string
	URL              string
	RecordingSid     string
	CallSid          string
	Confidence       float64
	AudioURL         string
}

// Actionable reports whether the event carries usable transcript text
func (e TranscriptionEvent) Actionable() bool {
	return e.Status == "completed" && strings.TrimSpace(e.Text) != ""
}

// Counterparty picks the remote party of a call from a status callback.
// Outbound calls are keyed by To, inbound by From; browser client identities
// (client:<name>) are never phone numbers and are skipped.
func Counterparty(from, to, direction string) string {
	primary, secondary := from, to
	if strings.HasPrefix(strings.ToLower(direction), "outbound") {
		primary, secondary = to, from
	}
	for _, candidate := range []string{primary, secondary} {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" || strings.HasPrefix(candidate, "client:") {
			continue
		}
		return candidate
	}
	return ""
}
