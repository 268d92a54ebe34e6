package repository

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/call-assistant/internal/domain/entities"
	"github.com/johnquangdev/call-assistant/internal/domain/repositories"
	"github.com/johnquangdev/call-assistant/pkg/phone"
)

var baseTime = time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

func TestAppendConversationEntryKeepsMostRecentFifty(t *testing.T) {
	store := NewEventStore()
	key := phone.Key("+14155550100")

	for i := 0; i < entities.MaxConversationEntries+1; i++ {
		store.AppendConversationEntry(key, entities.ConversationEntry{
			Kind:      entities.EntryKindRecording,
			Sid:       fmt.Sprintf("RE%02d", i),
			CreatedAt: baseTime.Add(time.Duration(i) * time.Minute),
		})
	}

	history := store.ConversationHistory(key)
	require.Len(t, history, entities.MaxConversationEntries)
	assert.Equal(t, "RE01", history[0].Sid)
	assert.Equal(t, "RE50", history[len(history)-1].Sid)
}

func TestAppendConversationEntryOrdersByCreation(t *testing.T) {
	store := NewEventStore()
	key := phone.Key("+14155550100")

	store.AppendConversationEntry(key, entities.ConversationEntry{Sid: "late", CreatedAt: baseTime.Add(2 * time.Hour)})
	store.AppendConversationEntry(key, entities.ConversationEntry{Sid: "early", CreatedAt: baseTime})
	store.AppendConversationEntry(key, entities.ConversationEntry{Sid: "middle", CreatedAt: baseTime.Add(time.Hour)})
	store.AppendConversationEntry(key, entities.ConversationEntry{Sid: "middle-2", CreatedAt: baseTime.Add(time.Hour)})

	var sids []string
	for _, e := range store.ConversationHistory(key) {
		sids = append(sids, e.Sid)
	}
	assert.Equal(t, []string{"early", "middle", "middle-2", "late"}, sids)
}

func TestAppendConversationEntryEvictsOldestWhenLateArrivalIsOlder(t *testing.T) {
	store := NewEventStore()
	key := phone.Key("+14155550100")

	for i := 1; i <= entities.MaxConversationEntries; i++ {
		store.AppendConversationEntry(key, entities.ConversationEntry{
			Sid:       fmt.Sprintf("E%02d", i),
			CreatedAt: baseTime.Add(time.Duration(i) * time.Minute),
		})
	}
	store.AppendConversationEntry(key, entities.ConversationEntry{Sid: "ancient", CreatedAt: baseTime})

	history := store.ConversationHistory(key)
	require.Len(t, history, entities.MaxConversationEntries)
	assert.Equal(t, "E01", history[0].Sid)
}

func TestSweepRemovesRawDataButKeepsContacts(t *testing.T) {
	store := NewEventStore()
	now := baseTime.Add(30 * 24 * time.Hour)
	cutoff := now.Add(-7 * 24 * time.Hour)
	key := phone.Key("+14155550100")

	store.PutRecording(entities.Recording{Sid: "REold", CreatedAt: now.Add(-8 * 24 * time.Hour)})
	store.PutRecording(entities.Recording{Sid: "REnew", CreatedAt: now.Add(-time.Hour)})
	store.PutTranscription(entities.Transcription{Sid: "TRold", CreatedAt: now.Add(-10 * 24 * time.Hour)})
	store.PutTranscription(entities.Transcription{Sid: "TRnew", CreatedAt: now})
	store.UpsertContact(key, func(c *entities.Contact) {
		c.Touch(baseTime.AddDate(-1, 0, 0))
		c.TotalCalls = 1
	})
	store.AppendConversationEntry(key, entities.ConversationEntry{Sid: "REold", CreatedAt: baseTime.AddDate(-1, 0, 0)})

	result := store.Sweep(cutoff)

	assert.Equal(t, repositories.SweepResult{Recordings: 1, Transcriptions: 1}, result)
	_, ok := store.GetRecording("REold")
	assert.False(t, ok)
	_, ok = store.GetRecording("REnew")
	assert.True(t, ok)
	_, ok = store.GetTranscription("TRold")
	assert.False(t, ok)

	_, ok = store.GetContact(key)
	assert.True(t, ok)
	assert.Len(t, store.ConversationHistory(key), 1)
}

func TestPutRecordingReportsCreation(t *testing.T) {
	store := NewEventStore()
	assert.True(t, store.PutRecording(entities.Recording{Sid: "RE1", DurationSeconds: 10}))
	assert.False(t, store.PutRecording(entities.Recording{Sid: "RE1", DurationSeconds: 12}))

	rec, ok := store.GetRecording("RE1")
	require.True(t, ok)
	assert.Equal(t, 12, rec.DurationSeconds)
}

func TestPutTranscriptionKeepsExisting(t *testing.T) {
	store := NewEventStore()
	assert.True(t, store.PutTranscription(entities.Transcription{Sid: "TR1", Text: "first"}))
	assert.False(t, store.PutTranscription(entities.Transcription{Sid: "TR1", Text: "second"}))

	tr, _ := store.GetTranscription("TR1")
	assert.Equal(t, "first", tr.Text)
}

func TestMarkTranscriptionProcessedFlipsOnce(t *testing.T) {
	store := NewEventStore()
	store.PutTranscription(entities.Transcription{Sid: "TR1", Text: "hello"})
	store.RecordTranscriptionFailure("TR1", "boom")

	meta := entities.Metadata{WordCount: 1, Sentiment: entities.SentimentNeutral}
	tr, ok := store.MarkTranscriptionProcessed("TR1", meta, entities.Exports{Summary: "hello."})
	require.True(t, ok)
	assert.True(t, tr.Processed)
	assert.Empty(t, tr.ProcessingError)
	assert.Equal(t, 1, tr.ProcessingErrors)

	_, ok = store.MarkTranscriptionProcessed("TR1", entities.Metadata{WordCount: 99}, entities.Exports{})
	assert.False(t, ok)

	stored, _ := store.GetTranscription("TR1")
	assert.Equal(t, 1, stored.Metadata.WordCount)

	_, ok = store.MarkTranscriptionProcessed("missing", meta, entities.Exports{})
	assert.False(t, ok)
}

func TestUpdateContactMissingAndRollback(t *testing.T) {
	store := NewEventStore()
	key := phone.Key("+14155550100")

	_, err := store.UpdateContact(key, func(c *entities.Contact) error { return nil })
	assert.ErrorIs(t, err, repositories.ErrContactNotFound)

	store.UpsertContact(key, func(c *entities.Contact) { c.TotalCalls = 1 })
	boom := fmt.Errorf("boom")
	_, err = store.UpdateContact(key, func(c *entities.Contact) error {
		c.TotalCalls = 100
		return boom
	})
	assert.ErrorIs(t, err, boom)

	c, _ := store.GetContact(key)
	assert.Equal(t, 1, c.TotalCalls)
}

func TestReturnedValuesAreCopies(t *testing.T) {
	store := NewEventStore()
	key := phone.Key("+14155550100")
	store.UpsertContact(key, func(c *entities.Contact) { c.AddTopics([]string{"pricing"}) })

	c, _ := store.GetContact(key)
	c.Topics[0] = "mutated"

	again, _ := store.GetContact(key)
	assert.Equal(t, []string{"pricing"}, again.Topics)
}

func TestConcurrentUpsertsDoNotLoseUpdates(t *testing.T) {
	store := NewEventStore()
	keys := []phone.Key{"+14155550100", "+14155550101"}

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := keys[i%len(keys)]
			store.UpsertContact(key, func(c *entities.Contact) {
				c.TotalCalls++
				c.TotalDurationSeconds += 10
			})
			store.AppendConversationEntry(key, entities.ConversationEntry{
				Sid:       fmt.Sprintf("RE%d", i),
				CreatedAt: baseTime.Add(time.Duration(i) * time.Second),
			})
			store.PutRecording(entities.Recording{Sid: fmt.Sprintf("RE%d", i), CreatedAt: baseTime})
		}(i)
	}
	wg.Wait()

	for _, key := range keys {
		c, ok := store.GetContact(key)
		require.True(t, ok)
		assert.Equal(t, 50, c.TotalCalls)
		assert.Equal(t, 500, c.TotalDurationSeconds)
		assert.Len(t, store.ConversationHistory(key), 50)
	}
	assert.Equal(t, 100, store.Stats().Recordings)
	assert.Equal(t, 2, store.Stats().Contacts)
}

func TestListContactsMostRecentFirst(t *testing.T) {
	store := NewEventStore()
	store.UpsertContact("+1", func(c *entities.Contact) { c.Touch(baseTime) })
	store.UpsertContact("+2", func(c *entities.Contact) { c.Touch(baseTime.Add(time.Hour)) })

	list := store.ListContacts()
	require.Len(t, list, 2)
	assert.Equal(t, phone.Key("+2"), list[0].PhoneKey)
}
