// Package export renders transcriptions for download, chat replay and embedding.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/johnquangdev/call-assistant/internal/domain/entities"
	"github.com/johnquangdev/call-assistant/internal/usecase/analytics"
	usecaseErrors "github.com/johnquangdev/call-assistant/internal/usecase/errors"
)

// Format is an export representation
type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatMessages Format = "messages"
	FormatVector   Format = "vector"
)

// Formats lists every supported format
var Formats = []Format{FormatJSON, FormatMarkdown, FormatMessages, FormatVector}

// ParseFormat validates a format name; an empty name means json
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatMarkdown, FormatMessages, FormatVector:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", usecaseErrors.ErrUnsupportedFormat, name)
	}
}

// Document is a rendered export
type Document struct {
	Format      Format
	ContentType string
	Extension   string
	Body        []byte
}

// Filename returns a download name for the document
func (d Document) Filename(sid string) string {
	return fmt.Sprintf("%s-%s.%s", sid, d.Format, d.Extension)
}

// Render produces t in format f
func Render(t entities.Transcription, f Format) (*Document, error) {
	switch f {
	case FormatJSON:
		body, err := json.MarshalIndent(t, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode transcription: %w", err)
		}
		return &Document{Format: f, ContentType: "application/json", Extension: "json", Body: body}, nil
	case FormatMarkdown:
		return &Document{Format: f, ContentType: "text/markdown; charset=utf-8", Extension: "md", Body: []byte(markdown(t))}, nil
	case FormatMessages:
		body, err := messages(t)
		if err != nil {
			return nil, err
		}
		return &Document{Format: f, ContentType: "application/x-ndjson", Extension: "jsonl", Body: body}, nil
	case FormatVector:
		body, err := json.MarshalIndent(vectorRecords(t), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode vector records: %w", err)
		}
		return &Document{Format: f, ContentType: "application/json", Extension: "vector.json", Body: body}, nil
	default:
		return nil, fmt.Errorf("%w: %q", usecaseErrors.ErrUnsupportedFormat, f)
	}
}

func markdown(t entities.Transcription) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Transcription %s\n\n", t.Sid)
	fmt.Fprintf(&b, "- **Call:** %s\n", t.CallSid)
	fmt.Fprintf(&b, "- **Recording:** %s\n", t.RecordingSid)
	fmt.Fprintf(&b, "- **Created:** %s\n", t.CreatedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "- **Confidence:** %.2f\n", t.Confidence)
	fmt.Fprintf(&b, "- **Sentiment:** %s\n", t.Sentiment())
	if words := t.WordCount(); words > 0 {
		fmt.Fprintf(&b, "- **Words:** %d\n", words)
	}

	if summary := t.Summary(); summary != "" {
		fmt.Fprintf(&b, "\n## Summary\n\n%s\n", summary)
	}
	if topics := t.Topics(); len(topics) > 0 {
		b.WriteString("\n## Topics\n\n")
		for _, topic := range topics {
			fmt.Fprintf(&b, "- %s\n", topic)
		}
	}
	if t.Metadata != nil && len(t.Metadata.ActionItems) > 0 {
		b.WriteString("\n## Action Items\n\n")
		for _, item := range t.Metadata.ActionItems {
			fmt.Fprintf(&b, "- [ ] %s\n", item)
		}
	}
	if t.Exports != nil && len(t.Exports.KeyInsights) > 0 {
		b.WriteString("\n## Key Insights\n\n")
		for _, insight := range t.Exports.KeyInsights {
			fmt.Fprintf(&b, "- %s\n", insight)
		}
	}

	fmt.Fprintf(&b, "\n## Transcript\n\n%s\n", strings.TrimSpace(t.Text))
	return b.String()
}

// Message is one utterance in the line-delimited export
type Message struct {
	ID               string    `json:"id"`
	TranscriptionSid string    `json:"transcription_sid"`
	CallSid          string    `json:"call_sid"`
	Index            int       `json:"index"`
	Speaker          string    `json:"speaker,omitempty"`
	Text             string    `json:"text"`
	Timestamp        time.Time `json:"timestamp"`
}

var (
	sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]*`)
	speakerPrefix   = regexp.MustCompile(`(?i)^(speaker|participant|caller)\s*(\d+)\s*:\s*`)
)

// messages writes one JSON message per sentence; a speaker label carries
// forward until the next label.
func messages(t entities.Transcription) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)

	speaker := ""
	index := 0
	for _, sentence := range sentencePattern.FindAllString(t.Text, -1) {
		sentence = strings.TrimSpace(sentence)
		if m := speakerPrefix.FindStringSubmatch(sentence); m != nil {
			role := strings.ToLower(m[1])
			speaker = strings.ToUpper(role[:1]) + role[1:] + " " + m[2]
			sentence = strings.TrimSpace(sentence[len(m[0]):])
		}
		if sentence == "" {
			continue
		}
		msg := Message{
			ID:               fmt.Sprintf("%s_msg_%d", t.Sid, index),
			TranscriptionSid: t.Sid,
			CallSid:          t.CallSid,
			Index:            index,
			Speaker:          speaker,
			Text:             sentence,
			Timestamp:        t.CreatedAt,
		}
		if err := enc.Encode(msg); err != nil {
			return nil, fmt.Errorf("failed to encode message: %w", err)
		}
		index++
	}
	return buf.Bytes(), nil
}

// VectorRecord is an embedding-ready chunk with its filter metadata
type VectorRecord struct {
	ID       string         `json:"id"`
	Text     string         `json:"text"`
	Metadata VectorMetadata `json:"metadata"`
}

// VectorMetadata travels with each chunk into the vector index
type VectorMetadata struct {
	TranscriptionSid string             `json:"transcription_sid"`
	RecordingSid     string             `json:"recording_sid,omitempty"`
	CallSid          string             `json:"call_sid"`
	ChunkIndex       int                `json:"chunk_index"`
	StartWord        int                `json:"start_word"`
	WordCount        int                `json:"word_count"`
	Topics           []string           `json:"topics"`
	Sentiment        entities.Sentiment `json:"sentiment"`
	CreatedAt        time.Time          `json:"created_at"`
}

// vectorRecords uses stored chunks, chunking on the fly for unprocessed transcriptions
func vectorRecords(t entities.Transcription) []VectorRecord {
	var chunks []entities.VectorChunk
	if t.Exports != nil && t.Exports.VectorChunks != nil {
		chunks = t.Exports.VectorChunks
	} else {
		chunks = analytics.ChunkWords(t.Sid, t.Text, analytics.DefaultChunkWords)
	}

	topics := t.Topics()
	if topics == nil {
		topics = []string{}
	}

	records := make([]VectorRecord, 0, len(chunks))
	for _, c := range chunks {
		records = append(records, VectorRecord{
			ID:   c.ID,
			Text: c.Text,
			Metadata: VectorMetadata{
				TranscriptionSid: t.Sid,
				RecordingSid:     t.RecordingSid,
				CallSid:          t.CallSid,
				ChunkIndex:       c.Index,
				StartWord:        c.StartWord,
				WordCount:        c.WordCount,
				Topics:           topics,
				Sentiment:        t.Sentiment(),
				CreatedAt:        t.CreatedAt,
			},
		})
	}
	return records
}
