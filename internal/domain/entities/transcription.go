package entities

import (
	"time"

	"github.com/johnquangdev/call-assistant/pkg/phone"
)

// Sentiment is the coarse polarity derived from a transcript
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// TranscriptionStatusCompleted is the only provider status that carries usable text
const TranscriptionStatusCompleted = "completed"

// Metadata is derived from transcript text by the analytics engine
type Metadata struct {
	WordCount   int       `json:"word_count"`
	Speakers    []string  `json:"speakers"`
	Topics      []string  `json:"topics"`
	ActionItems []string  `json:"action_items"`
	Sentiment   Sentiment `json:"sentiment"`
}

// VectorChunk is a fixed-size window of transcript words ready for embedding
type VectorChunk struct {
	ID        string `json:"id"`
	Index     int    `json:"index"`
	Text      string `json:"text"`
	StartWord int    `json:"start_word"`
	WordCount int    `json:"word_count"`
}

// Exports holds the derived artifacts used by export renderers
type Exports struct {
	Summary      string        `json:"summary"`
	KeyInsights  []string      `json:"key_insights"`
	VectorChunks []VectorChunk `json:"vector_chunks"`
}

// Transcription is the stored transcript of a recording.
// PhoneKey is the contact it was attributed to when it arrived.
type Transcription struct {
	Sid              string    `json:"sid"`
	Text             string    `json:"text"`
	Status           string    `json:"status"`
	RecordingSid     string    `json:"recording_sid"`
	CallSid          string    `json:"call_sid"`
	PhoneKey         phone.Key `json:"phone_number,omitempty"`
	URL              string    `json:"url,omitempty"`
	AudioURL         string    `json:"audio_url,omitempty"`
	Confidence       float64   `json:"confidence"`
	CreatedAt        time.Time `json:"created_at"`
	Processed        bool      `json:"processed"`
	Metadata         *Metadata `json:"metadata,omitempty"`
	Exports          *Exports  `json:"exports,omitempty"`
	ProcessingError  string    `json:"processing_error,omitempty"`
	ProcessingErrors int       `json:"processing_errors,omitempty"`
}

// Sentiment returns the derived sentiment, neutral when unprocessed
func (t *Transcription) Sentiment() Sentiment {
	if t.Metadata == nil || t.Metadata.Sentiment == "" {
		return SentimentNeutral
	}
	return t.Metadata.Sentiment
}

// Topics returns derived topics, empty when unprocessed
func (t *Transcription) Topics() []string {
	if t.Metadata == nil {
		return nil
	}
	return t.Metadata.Topics
}

// WordCount returns the derived word count, zero when unprocessed
func (t *Transcription) WordCount() int {
	if t.Metadata == nil {
		return 0
	}
	return t.Metadata.WordCount
}

// Summary returns the derived summary, empty when unprocessed
func (t *Transcription) Summary() string {
	if t.Exports == nil {
		return ""
	}
	return t.Exports.Summary
}

// Clone returns a deep copy of the transcription
func (t Transcription) Clone() Transcription {
	if t.Metadata != nil {
		m := *t.Metadata
		m.Speakers = cloneStrings(m.Speakers)
		m.Topics = cloneStrings(m.Topics)
		m.ActionItems = cloneStrings(m.ActionItems)
		t.Metadata = &m
	}
	if t.Exports != nil {
		e := *t.Exports
		e.KeyInsights = cloneStrings(e.KeyInsights)
		if e.VectorChunks != nil {
			e.VectorChunks = append([]VectorChunk(nil), e.VectorChunks...)
		}
		t.Exports = &e
	}
	return t
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}
