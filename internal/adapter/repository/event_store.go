package repository

import (
	"sort"
	"time"

	"github.com/johnquangdev/call-assistant/internal/domain/entities"
	"github.com/johnquangdev/call-assistant/internal/domain/repositories"
	"github.com/johnquangdev/call-assistant/internal/infrastructure/cache"
	"github.com/johnquangdev/call-assistant/pkg/phone"
)

// EventStore keeps recordings, transcriptions, contacts and conversation
// histories in independent keyed maps. Values are cloned on the way in and
// out so callers never share memory with the store.
type EventStore struct {
	recordings     *cache.Map[string, entities.Recording]
	transcriptions *cache.Map[string, entities.Transcription]
	contacts       *cache.Map[phone.Key, entities.Contact]
	conversations  *cache.Map[phone.Key, []entities.ConversationEntry]
	maxEntries     int
}

var _ repositories.EventStore = (*EventStore)(nil)

// NewEventStore creates an empty event store
func NewEventStore() *EventStore {
	return &EventStore{
		recordings:     cache.NewMap[string, entities.Recording](),
		transcriptions: cache.NewMap[string, entities.Transcription](),
		contacts:       cache.NewMap[phone.Key, entities.Contact](),
		conversations:  cache.NewMap[phone.Key, []entities.ConversationEntry](),
		maxEntries:     entities.MaxConversationEntries,
	}
}

// PutRecording inserts or replaces a recording
func (s *EventStore) PutRecording(rec entities.Recording) bool {
	rec = rec.Clone()
	created := false
	s.recordings.Update(rec.Sid, func(_ entities.Recording, exists bool) (entities.Recording, bool) {
		created = !exists
		return rec, true
	})
	return created
}

// GetRecording finds a recording by sid
func (s *EventStore) GetRecording(sid string) (entities.Recording, bool) {
	rec, ok := s.recordings.Get(sid)
	if !ok {
		return entities.Recording{}, false
	}
	return rec.Clone(), true
}

// ListRecordings returns all recordings, newest first
func (s *EventStore) ListRecordings() []entities.Recording {
	values := s.recordings.Values()
	for i := range values {
		values[i] = values[i].Clone()
	}
	sort.Slice(values, func(i, j int) bool {
		if values[i].CreatedAt.Equal(values[j].CreatedAt) {
			return values[i].Sid < values[j].Sid
		}
		return values[i].CreatedAt.After(values[j].CreatedAt)
	})
	return values
}

// PutTranscription inserts a transcription unless its sid already exists
func (s *EventStore) PutTranscription(t entities.Transcription) bool {
	return s.transcriptions.SetIfAbsent(t.Sid, t.Clone())
}

// GetTranscription finds a transcription by sid
func (s *EventStore) GetTranscription(sid string) (entities.Transcription, bool) {
	t, ok := s.transcriptions.Get(sid)
	if !ok {
		return entities.Transcription{}, false
	}
	return t.Clone(), true
}

// ListTranscriptions returns all transcriptions, newest first
func (s *EventStore) ListTranscriptions() []entities.Transcription {
	values := s.transcriptions.Values()
	for i := range values {
		values[i] = values[i].Clone()
	}
	sort.Slice(values, func(i, j int) bool {
		if values[i].CreatedAt.Equal(values[j].CreatedAt) {
			return values[i].Sid < values[j].Sid
		}
		return values[i].CreatedAt.After(values[j].CreatedAt)
	})
	return values
}

// MarkTranscriptionProcessed attaches derived data and flips processed once
func (s *EventStore) MarkTranscriptionProcessed(sid string, meta entities.Metadata, exports entities.Exports) (entities.Transcription, bool) {
	updated, ok := s.transcriptions.Update(sid, func(cur entities.Transcription, exists bool) (entities.Transcription, bool) {
		if !exists || cur.Processed {
			return cur, false
		}
		cur.Processed = true
		cur.Metadata = &meta
		cur.Exports = &exports
		cur.ProcessingError = ""
		return cur.Clone(), true
	})
	if !ok {
		return entities.Transcription{}, false
	}
	return updated.Clone(), true
}

// RecordTranscriptionFailure notes a failed analytics attempt
func (s *EventStore) RecordTranscriptionFailure(sid string, reason string) {
	s.transcriptions.Update(sid, func(cur entities.Transcription, exists bool) (entities.Transcription, bool) {
		if !exists || cur.Processed {
			return cur, false
		}
		cur.ProcessingError = reason
		cur.ProcessingErrors++
		return cur, true
	})
}

// UpsertContact applies mutate to the contact for key, creating it if needed
func (s *EventStore) UpsertContact(key phone.Key, mutate func(c *entities.Contact)) entities.Contact {
	updated, _ := s.contacts.Update(key, func(cur entities.Contact, exists bool) (entities.Contact, bool) {
		next := entities.NewContact(key)
		if exists {
			next = cur.Clone()
		}
		mutate(&next)
		return next, true
	})
	return updated.Clone()
}

// UpdateContact applies mutate to an existing contact; a mutate error discards the change
func (s *EventStore) UpdateContact(key phone.Key, mutate func(c *entities.Contact) error) (entities.Contact, error) {
	var err error
	updated, ok := s.contacts.Update(key, func(cur entities.Contact, exists bool) (entities.Contact, bool) {
		if !exists {
			err = repositories.ErrContactNotFound
			return cur, false
		}
		next := cur.Clone()
		if err = mutate(&next); err != nil {
			return cur, false
		}
		return next, true
	})
	if !ok {
		return entities.Contact{}, err
	}
	return updated.Clone(), nil
}

// GetContact finds a contact by key
func (s *EventStore) GetContact(key phone.Key) (entities.Contact, bool) {
	c, ok := s.contacts.Get(key)
	if !ok {
		return entities.Contact{}, false
	}
	return c.Clone(), true
}

// ListContacts returns all contacts, most recently contacted first
func (s *EventStore) ListContacts() []entities.Contact {
	values := s.contacts.Values()
	for i := range values {
		values[i] = values[i].Clone()
	}
	sort.Slice(values, func(i, j int) bool {
		if values[i].LastContact.Equal(values[j].LastContact) {
			return values[i].PhoneKey < values[j].PhoneKey
		}
		return values[i].LastContact.After(values[j].LastContact)
	})
	return values
}

// AppendConversationEntry inserts entry in creation order and evicts the oldest beyond the cap
func (s *EventStore) AppendConversationEntry(key phone.Key, entry entities.ConversationEntry) {
	entry = entry.Clone()
	s.conversations.Update(key, func(cur []entities.ConversationEntry, _ bool) ([]entities.ConversationEntry, bool) {
		// first index strictly after entry keeps equal timestamps in arrival order
		pos := sort.Search(len(cur), func(i int) bool {
			return cur[i].CreatedAt.After(entry.CreatedAt)
		})

		next := make([]entities.ConversationEntry, 0, len(cur)+1)
		next = append(next, cur[:pos]...)
		next = append(next, entry)
		next = append(next, cur[pos:]...)

		if over := len(next) - s.maxEntries; over > 0 {
			next = next[over:]
		}
		return next, true
	})
}

// ConversationHistory returns the contact's entries, oldest first
func (s *EventStore) ConversationHistory(key phone.Key) []entities.ConversationEntry {
	entries, _ := s.conversations.Get(key)
	out := make([]entities.ConversationEntry, len(entries))
	for i, e := range entries {
		out[i] = e.Clone()
	}
	return out
}

// Sweep deletes recordings and transcriptions created before cutoff.
// Candidates are collected under a read lock and deleted one by one.
func (s *EventStore) Sweep(cutoff time.Time) repositories.SweepResult {
	var result repositories.SweepResult

	expiredRecording := func(r entities.Recording) bool { return r.CreatedAt.Before(cutoff) }
	for _, sid := range s.recordings.CollectKeys(expiredRecording) {
		if s.recordings.DeleteIf(sid, expiredRecording) {
			result.Recordings++
		}
	}

	expiredTranscription := func(t entities.Transcription) bool { return t.CreatedAt.Before(cutoff) }
	for _, sid := range s.transcriptions.CollectKeys(expiredTranscription) {
		if s.transcriptions.DeleteIf(sid, expiredTranscription) {
			result.Transcriptions++
		}
	}

	return result
}

// Stats returns collection sizes
func (s *EventStore) Stats() repositories.StoreStats {
	return repositories.StoreStats{
		Recordings:     s.recordings.Len(),
		Transcriptions: s.transcriptions.Len(),
		Contacts:       s.contacts.Len(),
		Conversations:  s.conversations.Len(),
	}
}
