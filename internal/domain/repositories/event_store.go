package repositories

import (
	"errors"
	"time"

	"github.com/johnquangdev/call-assistant/internal/domain/entities"
	"github.com/johnquangdev/call-assistant/pkg/phone"
)

// ErrContactNotFound is returned when a contact update targets an unknown key
var ErrContactNotFound = errors.New("contact not found")

// StoreStats reports the size of each collection
type StoreStats struct {
	Recordings     int
	Transcriptions int
	Contacts       int
	Conversations  int
}

// SweepResult reports what a retention sweep removed
type SweepResult struct {
	Recordings     int
	Transcriptions int
}

// EventStore defines the in-memory collections for call events and contact state.
// Every write is a single atomic operation per key.
type EventStore interface {
	// PutRecording inserts or replaces a recording; created is false when the sid already existed
	PutRecording(rec entities.Recording) (created bool)

	// GetRecording finds a recording by sid
	GetRecording(sid string) (entities.Recording, bool)

	// ListRecordings returns all recordings, newest first
	ListRecordings() []entities.Recording

	// PutTranscription inserts a transcription; created is false when the sid already existed,
	// in which case the stored value is left untouched
	PutTranscription(t entities.Transcription) (created bool)

	// GetTranscription finds a transcription by sid
	GetTranscription(sid string) (entities.Transcription, bool)

	// ListTranscriptions returns all transcriptions, newest first
	ListTranscriptions() []entities.Transcription

	// MarkTranscriptionProcessed attaches metadata and exports and flips processed to true.
	// It returns false if the transcription is missing or already processed.
	MarkTranscriptionProcessed(sid string, meta entities.Metadata, exports entities.Exports) (entities.Transcription, bool)

	// RecordTranscriptionFailure notes a failed analytics attempt, leaving the transcription unprocessed
	RecordTranscriptionFailure(sid string, reason string)

	// UpsertContact applies mutate to the contact for key, creating it first if needed
	UpsertContact(key phone.Key, mutate func(c *entities.Contact)) entities.Contact

	// UpdateContact applies mutate to an existing contact only
	UpdateContact(key phone.Key, mutate func(c *entities.Contact) error) (entities.Contact, error)

	// GetContact finds a contact by key
	GetContact(key phone.Key) (entities.Contact, bool)

	// ListContacts returns all contacts, most recently contacted first
	ListContacts() []entities.Contact

	// AppendConversationEntry adds an entry to the contact's history, evicting the oldest beyond the cap
	AppendConversationEntry(key phone.Key, entry entities.ConversationEntry)

	// ConversationHistory returns the contact's entries, oldest first
	ConversationHistory(key phone.Key) []entities.ConversationEntry

	// Sweep deletes recordings and transcriptions created before cutoff.
	// Contacts and conversation histories are never swept.
	Sweep(cutoff time.Time) SweepResult

	// Stats returns collection sizes
	Stats() StoreStats
}

// CallResolver maps a provider call identifier to the phone key of the party on the call
type CallResolver interface {
	// Resolve returns the phone key for callSid
	Resolve(callSid string) phone.Key

	// Observe records the counterparty of a call when the provider reports it
	Observe(callSid, counterparty string)
}
