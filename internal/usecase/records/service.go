// Package records is the read surface over stored recordings and transcriptions.
package records

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/johnquangdev/call-assistant/internal/domain/entities"
	"github.com/johnquangdev/call-assistant/internal/domain/repositories"
	usecaseErrors "github.com/johnquangdev/call-assistant/internal/usecase/errors"
	"github.com/johnquangdev/call-assistant/internal/usecase/export"
)

// DefaultSearchLimit applies when a search does not set a limit
const DefaultSearchLimit = 20

// Archive stores rendered exports and hands out download links
type Archive interface {
	Put(ctx context.Context, exp entities.ArchivedExport, body []byte) error
	Link(ctx context.Context, key string, expiry time.Duration) (string, error)
	List(ctx context.Context, prefix string) ([]entities.ArchivedExport, error)
}

// SearchQuery filters transcriptions; empty fields match everything
type SearchQuery struct {
	Text      string
	Topic     string
	Sentiment entities.Sentiment
	Limit     int
}

// ArchiveLink points at an uploaded export
type ArchiveLink struct {
	entities.ArchivedExport
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Service reads recordings and transcriptions and renders exports
type Service struct {
	store   repositories.EventStore
	archive Archive
	expiry  time.Duration
	now     func() time.Time
}

// NewService creates the service; archive may be nil when archiving is disabled
func NewService(store repositories.EventStore, archive Archive, expiry time.Duration) *Service {
	return &Service{
		store:   store,
		archive: archive,
		expiry:  expiry,
		now:     time.Now,
	}
}

// ListRecordings returns all recordings, newest first
func (s *Service) ListRecordings() []entities.Recording {
	return s.store.ListRecordings()
}

// GetRecording finds a recording by sid
func (s *Service) GetRecording(sid string) (*entities.Recording, error) {
	rec, ok := s.store.GetRecording(sid)
	if !ok {
		return nil, usecaseErrors.ErrRecordingNotFound
	}
	return &rec, nil
}

// RecordingMediaURL returns the provider download location for a recording
func (s *Service) RecordingMediaURL(sid string) (string, error) {
	rec, err := s.GetRecording(sid)
	if err != nil {
		return "", err
	}
	url := rec.MediaURL()
	if url == "" {
		return "", usecaseErrors.ErrMediaUnavailable
	}
	return url, nil
}

// ListTranscriptions returns all transcriptions, newest first
func (s *Service) ListTranscriptions() []entities.Transcription {
	return s.store.ListTranscriptions()
}

// GetTranscription finds a transcription by sid
func (s *Service) GetTranscription(sid string) (*entities.Transcription, error) {
	t, ok := s.store.GetTranscription(sid)
	if !ok {
		return nil, usecaseErrors.ErrTranscriptionNotFound
	}
	return &t, nil
}

// Search scans transcriptions newest first and stops at the limit
func (s *Service) Search(q SearchQuery) []entities.Transcription {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	text := strings.ToLower(strings.TrimSpace(q.Text))
	topic := strings.ToLower(strings.TrimSpace(q.Topic))

	results := make([]entities.Transcription, 0)
	for _, t := range s.store.ListTranscriptions() {
		if len(results) == limit {
			break
		}
		if text != "" && !strings.Contains(strings.ToLower(t.Text), text) {
			continue
		}
		if topic != "" && !hasTopic(t, topic) {
			continue
		}
		if q.Sentiment != "" && (!t.Processed || t.Sentiment() != q.Sentiment) {
			continue
		}
		results = append(results, t)
	}
	return results
}

func hasTopic(t entities.Transcription, topic string) bool {
	for _, candidate := range t.Topics() {
		if strings.ToLower(candidate) == topic {
			return true
		}
	}
	return false
}

// Export renders a transcription in the named format
func (s *Service) Export(sid, format string) (*export.Document, error) {
	f, err := export.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	t, err := s.GetTranscription(sid)
	if err != nil {
		return nil, err
	}
	return export.Render(*t, f)
}

// Archive uploads a rendered export and returns a presigned link to it
func (s *Service) Archive(ctx context.Context, sid, format string) (*ArchiveLink, error) {
	if s.archive == nil {
		return nil, usecaseErrors.ErrArchiveDisabled
	}
	doc, err := s.Export(sid, format)
	if err != nil {
		return nil, err
	}

	now := s.now()
	exp := entities.ArchivedExport{
		Key:              archivePrefix(sid) + doc.Filename(fmt.Sprintf("%s-%d", sid, now.Unix())),
		TranscriptionSid: sid,
		Format:           string(doc.Format),
		ContentType:      doc.ContentType,
		Size:             int64(len(doc.Body)),
		ArchivedAt:       now,
	}
	if err := s.archive.Put(ctx, exp, doc.Body); err != nil {
		return nil, err
	}
	url, err := s.archive.Link(ctx, exp.Key, s.expiry)
	if err != nil {
		return nil, err
	}

	return &ArchiveLink{
		ArchivedExport: exp,
		URL:            url,
		ExpiresAt:      now.Add(s.expiry),
	}, nil
}

// ListArchives lists previously archived exports of a transcription
func (s *Service) ListArchives(ctx context.Context, sid string) ([]entities.ArchivedExport, error) {
	if s.archive == nil {
		return nil, usecaseErrors.ErrArchiveDisabled
	}
	return s.archive.List(ctx, archivePrefix(sid))
}

func archivePrefix(sid string) string {
	return "transcriptions/" + sid + "/"
}
