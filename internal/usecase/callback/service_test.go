package callback

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/johnquangdev/call-assistant/internal/adapter/repository"
	"github.com/johnquangdev/call-assistant/internal/domain/entities"
	"github.com/johnquangdev/call-assistant/internal/domain/repositories"
	"github.com/johnquangdev/call-assistant/internal/infrastructure/metrics"
	"github.com/johnquangdev/call-assistant/internal/usecase/analytics"
	"github.com/johnquangdev/call-assistant/internal/usecase/conversation"
	"github.com/johnquangdev/call-assistant/pkg/phone"
)

var now = time.Date(2026, 10, 15, 15, 0, 0, 0, time.UTC)

// flakyEngine panics while failures remain, then defers to the real analyzer
type flakyEngine struct {
	failures atomic.Int32
	calls    atomic.Int32
	real     *analytics.Analyzer
}

func (e *flakyEngine) Analyze(sid, text string) analytics.Result {
	e.calls.Add(1)
	if e.failures.Add(-1) >= 0 {
		panic("analyzer blew up")
	}
	return e.real.Analyze(sid, text)
}

type fixture struct {
	svc     *callbackService
	store   *repository.EventStore
	metrics *metrics.Metrics
}

func newFixture(t *testing.T, engine analytics.Engine, resolver repositories.CallResolver) fixture {
	t.Helper()

	store := repository.NewEventStore()
	if resolver == nil {
		resolver = repository.IdentityResolver{}
	}
	if engine == nil {
		engine = analytics.NewAnalyzer()
	}
	m := metrics.New(prometheus.NewRegistry())

	svc := NewService(store, resolver, engine, m, zap.NewNop(), Options{
		RetentionWindow:   7 * 24 * time.Hour,
		SweepInterval:     time.Hour,
		ReprocessInterval: time.Hour,
		MaxRetries:        3,
	}).(*callbackService)
	svc.now = func() time.Time { return now }
	svc.backoff = func() backoff.BackOff {
		return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 5)
	}

	return fixture{svc: svc, store: store, metrics: m}
}

func TestHandleRecordingCreatesContact(t *testing.T) {
	f := newFixture(t, nil, nil)

	rec := f.svc.HandleRecording(context.Background(), RecordingEvent{
		RecordingSid:    "RE1",
		RecordingURL:    "https://api.example.com/RE1",
		DurationSeconds: 42,
		CallSid:         "CA123",
		Status:          "completed",
	})
	assert.Equal(t, now, rec.CreatedAt)

	contact, ok := f.store.GetContact(phone.Key("+123"))
	require.True(t, ok)
	assert.Equal(t, 1, contact.TotalCalls)
	assert.Equal(t, 42, contact.TotalDurationSeconds)
	assert.Equal(t, entities.RelationshipNew, contact.Relationship)
	assert.Equal(t, now, contact.FirstContact)

	history := f.store.ConversationHistory("+123")
	require.Len(t, history, 1)
	assert.Equal(t, entities.EntryKindRecording, history[0].Kind)
	assert.Equal(t, 42, history[0].DurationSeconds)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CallbacksTotal.WithLabelValues(CallbackRecording, metrics.OutcomeAccepted)))
}

func TestHandleRecordingDuplicateDoesNotDoubleCount(t *testing.T) {
	f := newFixture(t, nil, nil)
	event := RecordingEvent{RecordingSid: "RE1", DurationSeconds: 42, CallSid: "CA123", Status: "completed"}

	f.svc.HandleRecording(context.Background(), event)

	later := now.Add(time.Hour)
	f.svc.now = func() time.Time { return later }
	event.DurationSeconds = 50
	rec := f.svc.HandleRecording(context.Background(), event)
	assert.Equal(t, now, rec.CreatedAt)

	stored, ok := f.store.GetRecording("RE1")
	require.True(t, ok)
	assert.Equal(t, 50, stored.DurationSeconds)
	assert.Equal(t, now, stored.CreatedAt)

	contact, _ := f.store.GetContact("+123")
	assert.Equal(t, 1, contact.TotalCalls)
	assert.Equal(t, 42, contact.TotalDurationSeconds)
	assert.Len(t, f.store.ConversationHistory("+123"), 1)
}

func TestHandleTranscriptionIgnoresIncomplete(t *testing.T) {
	f := newFixture(t, nil, nil)

	for _, event := range []TranscriptionEvent{
		{TranscriptionSid: "TR1", Status: "failed", Text: "hello there", CallSid: "CA1"},
		{TranscriptionSid: "TR2", Status: "completed", Text: "", CallSid: "CA1"},
	} {
		got := f.svc.HandleTranscription(context.Background(), event)
		assert.Nil(t, got)
	}

	assert.Empty(t, f.store.ListTranscriptions())
	assert.Empty(t, f.store.ListContacts())
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.CallbacksTotal.WithLabelValues(CallbackTranscription, metrics.OutcomeIgnored)))
}

func TestHandleTranscriptionProcessesAndUpdatesContact(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.svc.HandleRecording(context.Background(), RecordingEvent{RecordingSid: "RE1", DurationSeconds: 30, CallSid: "CA555"})

	got := f.svc.HandleTranscription(context.Background(), TranscriptionEvent{
		TranscriptionSid: "TR1",
		Text:             "Thanks for the great meeting about the project budget. We need to send the proposal by Friday.",
		Status:           "completed",
		RecordingSid:     "RE1",
		CallSid:          "CA-ignored",
	})
	require.NotNil(t, got)
	assert.True(t, got.Processed)
	require.NotNil(t, got.Metadata)
	assert.Equal(t, entities.SentimentPositive, got.Metadata.Sentiment)

	contact, ok := f.store.GetContact("+555")
	require.True(t, ok)
	assert.Equal(t, 1, contact.TotalCalls)
	assert.Contains(t, contact.Topics, "meeting")
	assert.Contains(t, contact.Topics, "budget")
	require.Len(t, contact.ActionItems, 1)
	assert.Equal(t, "send the proposal by Friday", contact.ActionItems[0].Text)
	assert.Equal(t, "TR1", contact.ActionItems[0].TranscriptionSid)
	assert.Equal(t, 1, contact.SentimentCounts.Positive)

	history := f.store.ConversationHistory("+555")
	require.Len(t, history, 2)
	assert.Equal(t, entities.EntryKindTranscription, history[1].Kind)
	assert.NotEmpty(t, history[1].Summary)

	_, ok = f.store.GetContact(phone.Normalize("CA-ignored"))
	assert.False(t, ok)
}

func TestHandleTranscriptionFallsBackToOwnCallSid(t *testing.T) {
	f := newFixture(t, nil, nil)

	f.svc.HandleTranscription(context.Background(), TranscriptionEvent{
		TranscriptionSid: "TR1",
		Text:             "quick hello",
		Status:           "completed",
		RecordingSid:     "RE-missing",
		CallSid:          "CA777",
	})

	contact, ok := f.store.GetContact("+777")
	require.True(t, ok)
	assert.Equal(t, 0, contact.TotalCalls)
	assert.Equal(t, 1, contact.SentimentCounts.Neutral)
}

func TestHandleTranscriptionDuplicateProcessedOnce(t *testing.T) {
	f := newFixture(t, nil, nil)
	event := TranscriptionEvent{TranscriptionSid: "TR1", Text: "we should review the contract", Status: "completed", CallSid: "CA1"}

	f.svc.HandleTranscription(context.Background(), event)
	f.svc.HandleTranscription(context.Background(), event)

	contact, _ := f.store.GetContact("+1")
	assert.Len(t, contact.ActionItems, 1)
	assert.Equal(t, 1, contact.SentimentCounts.Total())
	assert.Len(t, f.store.ConversationHistory("+1"), 1)
}

func TestAnalyticsPanicLeavesTranscriptionUnprocessed(t *testing.T) {
	engine := &flakyEngine{real: analytics.NewAnalyzer()}
	engine.failures.Store(1)
	f := newFixture(t, engine, nil)

	got := f.svc.HandleTranscription(context.Background(), TranscriptionEvent{
		TranscriptionSid: "TR1",
		Text:             "we must fix the invoice",
		Status:           "completed",
		CallSid:          "CA9",
	})
	require.NotNil(t, got)
	assert.False(t, got.Processed)
	assert.Equal(t, 1, got.ProcessingErrors)
	assert.Contains(t, got.ProcessingError, "analyzer blew up")

	_, ok := f.store.GetContact("+9")
	assert.False(t, ok)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.AnalyticsTotal.WithLabelValues(analyticsFailed)))

	assert.Equal(t, 1, f.svc.ReprocessPending(context.Background()))

	stored, _ := f.store.GetTranscription("TR1")
	assert.True(t, stored.Processed)
	assert.Empty(t, stored.ProcessingError)

	contact, ok := f.store.GetContact("+9")
	require.True(t, ok)
	assert.Len(t, contact.ActionItems, 1)
}

func TestReprocessStopsAfterMaxRetries(t *testing.T) {
	engine := &flakyEngine{real: analytics.NewAnalyzer()}
	engine.failures.Store(100)
	f := newFixture(t, engine, nil)

	f.svc.HandleTranscription(context.Background(), TranscriptionEvent{
		TranscriptionSid: "TR1",
		Text:             "hello",
		Status:           "completed",
		CallSid:          "CA9",
	})

	assert.Equal(t, 0, f.svc.ReprocessPending(context.Background()))
	stored, _ := f.store.GetTranscription("TR1")
	assert.False(t, stored.Processed)
	assert.Equal(t, 3, stored.ProcessingErrors)
	assert.Equal(t, int32(3), engine.calls.Load())

	assert.Equal(t, 0, f.svc.ReprocessPending(context.Background()))
	assert.Equal(t, int32(3), engine.calls.Load())
}

func TestSweepKeepsContactsAndHistory(t *testing.T) {
	f := newFixture(t, nil, nil)

	old := now.Add(-8 * 24 * time.Hour)
	f.svc.now = func() time.Time { return old }
	f.svc.HandleRecording(context.Background(), RecordingEvent{RecordingSid: "RE-old", DurationSeconds: 10, CallSid: "CA1"})
	f.svc.HandleTranscription(context.Background(), TranscriptionEvent{TranscriptionSid: "TR-old", Text: "hello", Status: "completed", RecordingSid: "RE-old"})

	f.svc.now = func() time.Time { return now }
	f.svc.HandleRecording(context.Background(), RecordingEvent{RecordingSid: "RE-new", DurationSeconds: 10, CallSid: "CA1"})

	result := f.svc.Sweep(context.Background())
	assert.Equal(t, repositories.SweepResult{Recordings: 1, Transcriptions: 1}, result)

	_, ok := f.store.GetRecording("RE-old")
	assert.False(t, ok)
	_, ok = f.store.GetRecording("RE-new")
	assert.True(t, ok)

	contact, ok := f.store.GetContact("+1")
	require.True(t, ok)
	assert.Equal(t, 2, contact.TotalCalls)
	assert.Len(t, f.store.ConversationHistory("+1"), 3)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.RetentionDeletedTotal.WithLabelValues("recordings")))
}

func TestStatusTeachesDirectoryResolver(t *testing.T) {
	resolver := repository.NewDirectoryResolver(time.Hour)
	defer resolver.Close()
	f := newFixture(t, nil, resolver)

	f.svc.HandleStatus(context.Background(), StatusEvent{
		CallSid:    "CA42",
		CallStatus: "completed",
		From:       "client:operator",
		To:         "+1 (555) 010-9999",
		Direction:  "outbound-dial",
	})
	f.svc.HandleRecording(context.Background(), RecordingEvent{RecordingSid: "RE1", DurationSeconds: 5, CallSid: "CA42"})

	contact, ok := f.store.GetContact(phone.Normalize("+15550109999"))
	require.True(t, ok)
	assert.Equal(t, 1, contact.TotalCalls)
}

func TestRecordingBeforeStatusKeepsCallOnOneContact(t *testing.T) {
	resolver := repository.NewDirectoryResolver(time.Hour)
	defer resolver.Close()
	f := newFixture(t, nil, resolver)

	f.svc.HandleRecording(context.Background(), RecordingEvent{RecordingSid: "RE1", DurationSeconds: 5, CallSid: "CA42"})
	f.svc.HandleStatus(context.Background(), StatusEvent{CallSid: "CA42", CallStatus: "completed", From: "+15550109999", Direction: "inbound"})
	got := f.svc.HandleTranscription(context.Background(), TranscriptionEvent{
		TranscriptionSid: "TR1",
		Text:             "Let us go over the project budget.",
		Status:           "completed",
		RecordingSid:     "RE1",
		CallSid:          "CA42",
	})
	require.NotNil(t, got)
	assert.Equal(t, phone.Key("+42"), got.PhoneKey)

	contacts := f.store.ListContacts()
	require.Len(t, contacts, 1)
	assert.Equal(t, phone.Key("+42"), contacts[0].PhoneKey)
	assert.Equal(t, 1, contacts[0].TotalCalls)
	assert.Contains(t, contacts[0].Topics, "budget")
}

func TestTranscriptionBeforeRecordingKeepsCallOnOneContact(t *testing.T) {
	resolver := repository.NewDirectoryResolver(time.Hour)
	defer resolver.Close()
	f := newFixture(t, nil, resolver)

	f.svc.HandleTranscription(context.Background(), TranscriptionEvent{
		TranscriptionSid: "TR1",
		Text:             "Quick call about pricing.",
		Status:           "completed",
		RecordingSid:     "RE1",
		CallSid:          "CA42",
	})
	f.svc.HandleStatus(context.Background(), StatusEvent{CallSid: "CA42", CallStatus: "completed", From: "+15550109999", Direction: "inbound"})
	rec := f.svc.HandleRecording(context.Background(), RecordingEvent{RecordingSid: "RE1", DurationSeconds: 5, CallSid: "CA42"})

	assert.Equal(t, phone.Key("+42"), rec.PhoneKey)
	contacts := f.store.ListContacts()
	require.Len(t, contacts, 1)
	assert.Equal(t, 1, contacts[0].TotalCalls)
	assert.Contains(t, contacts[0].Topics, "pricing")
}

func TestContextSurvivesDirectoryExpiry(t *testing.T) {
	resolver := repository.NewDirectoryResolver(50 * time.Millisecond)
	defer resolver.Close()
	f := newFixture(t, nil, resolver)
	key := phone.Key("+15550109999")

	f.svc.HandleStatus(context.Background(), StatusEvent{CallSid: "CA42", CallStatus: "completed", From: "+1 555 010 9999", Direction: "inbound"})
	f.svc.HandleRecording(context.Background(), RecordingEvent{RecordingSid: "RE1", DurationSeconds: 60, CallSid: "CA42"})
	f.svc.HandleTranscription(context.Background(), TranscriptionEvent{
		TranscriptionSid: "TR1",
		Text:             "Let us go over the project budget.",
		Status:           "completed",
		RecordingSid:     "RE1",
		CallSid:          "CA42",
	})

	time.Sleep(120 * time.Millisecond)
	require.Equal(t, phone.Key("+42"), resolver.Resolve("CA42"))

	// A late transcription of the same recording still follows the recording.
	late := f.svc.HandleTranscription(context.Background(), TranscriptionEvent{
		TranscriptionSid: "TR2",
		Text:             "Following up on the budget.",
		Status:           "completed",
		RecordingSid:     "RE1",
		CallSid:          "CA42",
	})
	require.NotNil(t, late)
	assert.Equal(t, key, late.PhoneKey)

	ctx, ok := conversation.NewAggregator(f.store, time.UTC).BuildContext(key)
	require.True(t, ok)
	assert.Len(t, ctx.Conversations, 2)
	assert.NotEmpty(t, ctx.Insights.TopicConsistency.Frequencies)
	_, ok = f.store.GetContact("+42")
	assert.False(t, ok)
}

func TestWorkersLifecycle(t *testing.T) {
	f := newFixture(t, nil, nil)

	require.Error(t, f.svc.StopWorkers())
	require.NoError(t, f.svc.StartWorkers(context.Background()))
	require.Error(t, f.svc.StartWorkers(context.Background()))
	require.NoError(t, f.svc.StopWorkers())
	require.NoError(t, f.svc.StartWorkers(context.Background()))
	require.NoError(t, f.svc.StopWorkers())
}
