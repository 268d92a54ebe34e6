// Package callback ingests provider callbacks into the event store and runs
// the background retention and reprocessing workers.
package callback

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/call-assistant/internal/domain/entities"
	"github.com/johnquangdev/call-assistant/internal/domain/repositories"
	"github.com/johnquangdev/call-assistant/internal/infrastructure/metrics"
	"github.com/johnquangdev/call-assistant/internal/usecase/analytics"
	usecaseErrors "github.com/johnquangdev/call-assistant/internal/usecase/errors"
	"github.com/johnquangdev/call-assistant/pkg/jobcontext"
	"github.com/johnquangdev/call-assistant/pkg/phone"
)

// Callback names used in logs and metrics
const (
	CallbackStatus        = "status"
	CallbackRecording     = "recording"
	CallbackTranscription = "transcription"
)

// Analytics statuses
const (
	analyticsProcessed = "processed"
	analyticsFailed    = "failed"
)

const analyticsTimeout = 30 * time.Second

var errRetriesExhausted = errors.New("processing retries exhausted")

// Options configures retention and reprocessing
type Options struct {
	RetentionWindow   time.Duration
	SweepInterval     time.Duration
	ReprocessInterval time.Duration
	MaxRetries        int
	// Now overrides the clock used to stamp stored events
	Now func() time.Time
}

// Service handles provider callbacks
type Service interface {
	HandleStatus(ctx context.Context, event StatusEvent)
	HandleRecording(ctx context.Context, event RecordingEvent) entities.Recording
	HandleTranscription(ctx context.Context, event TranscriptionEvent) *entities.Transcription
	ReprocessPending(ctx context.Context) int
	Sweep(ctx context.Context) repositories.SweepResult
	StartWorkers(ctx context.Context) error
	StopWorkers() error
}

type callbackService struct {
	store    repositories.EventStore
	resolver repositories.CallResolver
	engine   analytics.Engine
	metrics  *metrics.Metrics
	logger   *zap.Logger
	opts     Options
	now      func() time.Time
	backoff  func() backoff.BackOff

	workerStopChan      chan struct{}
	workerWg            sync.WaitGroup
	isWorkerPoolRunning bool
	workerMutex         sync.Mutex
}

// NewService constructs the callback service
func NewService(
	store repositories.EventStore,
	resolver repositories.CallResolver,
	engine analytics.Engine,
	m *metrics.Metrics,
	logger *zap.Logger,
	opts Options,
) Service {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &callbackService{
		store:    store,
		resolver: resolver,
		engine:   engine,
		metrics:  m,
		logger:   logger,
		opts:     opts,
		now:      now,
		backoff: func() backoff.BackOff {
			bo := backoff.NewExponentialBackOff()
			bo.InitialInterval = 500 * time.Millisecond
			bo.MaxInterval = 5 * time.Second
			bo.MaxElapsedTime = 30 * time.Second
			return bo
		},
		workerStopChan: make(chan struct{}),
	}
}

// HandleStatus logs call progress and teaches the resolver who is on the call
func (s *callbackService) HandleStatus(_ context.Context, event StatusEvent) {
	counterparty := Counterparty(event.From, event.To, event.Direction)
	s.resolver.Observe(event.CallSid, counterparty)

	s.logger.Info("call status",
		zap.String("call_sid", event.CallSid),
		zap.String("call_status", event.CallStatus),
		zap.String("from", event.From),
		zap.String("to", event.To),
		zap.String("direction", event.Direction),
		zap.String("timestamp", event.Timestamp),
	)
	s.metrics.RecordCallback(CallbackStatus, metrics.OutcomeAccepted)
}

// HandleRecording stores the recording and, the first time a sid is seen,
// counts the call against the owning contact. The contact is fixed here and
// kept on the recording for every later event of the call.
func (s *callbackService) HandleRecording(_ context.Context, event RecordingEvent) entities.Recording {
	now := s.now()

	rec := entities.Recording{
		Sid:             event.RecordingSid,
		URL:             event.RecordingURL,
		DurationSeconds: event.DurationSeconds,
		ChannelCount:    event.Channels,
		CallSid:         event.CallSid,
		Status:          entities.RecordingStatus(event.Status),
		StartTime:       event.StartTime,
		EndTime:         event.EndTime,
		CreatedAt:       now,
	}
	if existing, ok := s.store.GetRecording(rec.Sid); ok {
		rec.CreatedAt = existing.CreatedAt
		rec.PhoneKey = existing.PhoneKey
	}
	if rec.PhoneKey == "" {
		rec.PhoneKey = s.recordingKey(rec)
	}

	created := s.store.PutRecording(rec)
	if created {
		key := rec.PhoneKey
		s.store.UpsertContact(key, func(c *entities.Contact) {
			c.Touch(rec.CreatedAt)
			c.TotalCalls++
			c.TotalDurationSeconds += rec.DurationSeconds
			c.Reclassify(now)
		})
		s.store.AppendConversationEntry(key, entities.ConversationEntry{
			Kind:            entities.EntryKindRecording,
			Sid:             rec.Sid,
			CallSid:         rec.CallSid,
			CreatedAt:       rec.CreatedAt,
			DurationSeconds: rec.DurationSeconds,
		})
	}

	s.logger.Info("recording stored",
		zap.String("recording_sid", rec.Sid),
		zap.String("call_sid", rec.CallSid),
		zap.String("phone_number", rec.PhoneKey.String()),
		zap.Int("duration", rec.DurationSeconds),
		zap.Bool("created", created),
	)
	s.metrics.RecordCallback(CallbackRecording, metrics.OutcomeAccepted)
	s.metrics.SetStoreStats(s.store.Stats())

	return rec
}

// HandleTranscription stores completed transcriptions and runs analytics.
// Analytics failures leave the transcription unprocessed and are not surfaced.
// It returns nil for events that are not actionable.
func (s *callbackService) HandleTranscription(ctx context.Context, event TranscriptionEvent) *entities.Transcription {
	if !event.Actionable() {
		s.logger.Info("transcription ignored",
			zap.String("transcription_sid", event.TranscriptionSid),
			zap.String("status", event.Status),
		)
		s.metrics.RecordCallback(CallbackTranscription, metrics.OutcomeIgnored)
		return nil
	}

	t := entities.Transcription{
		Sid:          event.TranscriptionSid,
		Text:         event.Text,
		Status:       event.Status,
		RecordingSid: event.RecordingSid,
		CallSid:      event.CallSid,
		URL:          event.URL,
		AudioURL:     event.AudioURL,
		Confidence:   event.Confidence,
		CreatedAt:    s.now(),
	}
	t.PhoneKey = s.contactKey(t)
	created := s.store.PutTranscription(t)

	s.logger.Info("transcription stored",
		zap.String("transcription_sid", t.Sid),
		zap.String("recording_sid", t.RecordingSid),
		zap.String("call_sid", t.CallSid),
		zap.Bool("created", created),
	)
	s.metrics.RecordCallback(CallbackTranscription, metrics.OutcomeAccepted)

	if err := s.process(ctx, t.Sid); err != nil && !errors.Is(err, usecaseErrors.ErrAnalyticsPanicked) {
		s.logger.Warn("transcription left unprocessed",
			zap.String("transcription_sid", t.Sid),
			zap.Error(err),
		)
	}
	s.metrics.SetStoreStats(s.store.Stats())

	stored, ok := s.store.GetTranscription(t.Sid)
	if !ok {
		return &t
	}
	return &stored
}

// process derives metadata for an unprocessed transcription and folds it into
// the owning contact. A processed transcription is never processed again.
func (s *callbackService) process(parentCtx context.Context, sid string) error {
	t, ok := s.store.GetTranscription(sid)
	if !ok {
		return usecaseErrors.ErrTranscriptionNotFound
	}
	if t.Processed {
		return nil
	}

	ctx, cancel := jobcontext.Begin(parentCtx, jobcontext.KindAnalytics, sid, t.ProcessingErrors+1, analyticsTimeout)
	defer cancel()
	job, _ := jobcontext.FromContext(ctx)

	var result analytics.Result
	err := jobcontext.Run(ctx, func(context.Context) error {
		result = s.engine.Analyze(t.Sid, t.Text)
		return nil
	})
	elapsed := job.Elapsed().Seconds()

	if err != nil {
		s.store.RecordTranscriptionFailure(sid, err.Error())
		s.metrics.RecordAnalytics(analyticsFailed, elapsed)
		s.logger.Error("transcription analytics failed",
			zap.String("transcription_sid", sid),
			zap.String("job_id", job.ID.String()),
			zap.Int("attempt", job.Attempt),
			zap.Error(err),
		)
		if errors.Is(err, jobcontext.ErrPanic) {
			return fmt.Errorf("%w: %v", usecaseErrors.ErrAnalyticsPanicked, err)
		}
		return err
	}

	processed, flipped := s.store.MarkTranscriptionProcessed(sid, result.Metadata, result.Exports)
	if !flipped {
		return nil
	}
	s.metrics.RecordAnalytics(analyticsProcessed, elapsed)
	s.applyToContact(processed)
	return nil
}

// applyToContact folds one processed transcription into its contact and history
func (s *callbackService) applyToContact(t entities.Transcription) {
	now := s.now()
	key := s.contactKey(t)
	var meta entities.Metadata
	if t.Metadata != nil {
		meta = *t.Metadata
	}

	s.store.UpsertContact(key, func(c *entities.Contact) {
		c.Touch(t.CreatedAt)
		c.AddTopics(meta.Topics)
		for _, text := range meta.ActionItems {
			c.ActionItems = append(c.ActionItems, entities.NewActionItem(text, t.Sid, t.CreatedAt))
		}
		c.SentimentCounts.Add(meta.Sentiment)
		c.Reclassify(now)
	})
	s.store.AppendConversationEntry(key, entities.ConversationEntry{
		Kind:        entities.EntryKindTranscription,
		Sid:         t.Sid,
		CallSid:     t.CallSid,
		CreatedAt:   t.CreatedAt,
		Summary:     t.Summary(),
		Topics:      meta.Topics,
		ActionItems: meta.ActionItems,
		Sentiment:   meta.Sentiment,
		WordCount:   meta.WordCount,
	})

	s.logger.Info("transcription processed",
		zap.String("transcription_sid", t.Sid),
		zap.String("phone_number", key.String()),
		zap.Int("word_count", meta.WordCount),
		zap.Strings("topics", meta.Topics),
		zap.Int("action_items", len(meta.ActionItems)),
		zap.String("sentiment", string(meta.Sentiment)),
	)
}

// contactKey attributes a transcription to a contact. A key fixed earlier wins
// over resolving again, so one call never splits across contacts.
func (s *callbackService) contactKey(t entities.Transcription) phone.Key {
	if t.PhoneKey != "" {
		return t.PhoneKey
	}
	if rec, ok := s.store.GetRecording(t.RecordingSid); ok {
		if rec.PhoneKey != "" {
			return rec.PhoneKey
		}
		if rec.CallSid != "" {
			return s.resolver.Resolve(rec.CallSid)
		}
	}
	return s.resolver.Resolve(t.CallSid)
}

// recordingKey attributes a new recording, reusing the key of a transcription
// that arrived before it
func (s *callbackService) recordingKey(rec entities.Recording) phone.Key {
	for _, t := range s.store.ListTranscriptions() {
		if t.RecordingSid == rec.Sid && t.PhoneKey != "" {
			return t.PhoneKey
		}
	}
	return s.resolver.Resolve(rec.CallSid)
}

// ReprocessPending retries analytics for unprocessed transcriptions and
// returns how many were processed. Each transcription gets at most
// MaxRetries failed attempts over its lifetime.
func (s *callbackService) ReprocessPending(ctx context.Context) int {
	recovered := 0
	for _, t := range s.store.ListTranscriptions() {
		if t.Processed {
			continue
		}
		if t.ProcessingErrors >= s.opts.MaxRetries {
			s.logger.Warn("transcription exceeded processing retries",
				zap.String("transcription_sid", t.Sid),
				zap.Int("attempts", t.ProcessingErrors),
				zap.String("last_error", t.ProcessingError),
			)
			continue
		}

		sid := t.Sid
		op := func() error {
			cur, ok := s.store.GetTranscription(sid)
			if !ok || cur.Processed {
				return nil
			}
			if cur.ProcessingErrors >= s.opts.MaxRetries {
				return backoff.Permanent(errRetriesExhausted)
			}
			return s.process(ctx, sid)
		}
		if err := backoff.Retry(op, backoff.WithContext(s.backoff(), ctx)); err != nil {
			continue
		}
		if cur, ok := s.store.GetTranscription(sid); ok && cur.Processed {
			recovered++
		}
	}
	return recovered
}

// Sweep removes raw recordings and transcriptions older than the retention window
func (s *callbackService) Sweep(_ context.Context) repositories.SweepResult {
	cutoff := s.now().Add(-s.opts.RetentionWindow)
	result := s.store.Sweep(cutoff)

	s.metrics.RecordSweep(result)
	s.metrics.SetStoreStats(s.store.Stats())
	s.logger.Info("retention sweep finished",
		zap.Time("cutoff", cutoff),
		zap.Int("recordings_deleted", result.Recordings),
		zap.Int("transcriptions_deleted", result.Transcriptions),
	)
	return result
}

// StartWorkers starts the retention sweeper and the reprocessing worker
func (s *callbackService) StartWorkers(ctx context.Context) error {
	s.workerMutex.Lock()
	defer s.workerMutex.Unlock()

	if s.isWorkerPoolRunning {
		return fmt.Errorf("worker pool already running")
	}

	s.isWorkerPoolRunning = true
	s.workerStopChan = make(chan struct{})

	s.logger.Info("starting callback workers",
		zap.Duration("sweep_interval", s.opts.SweepInterval),
		zap.Duration("reprocess_interval", s.opts.ReprocessInterval),
	)

	s.workerWg.Add(2)
	go s.runEvery(ctx, jobcontext.KindSweep, s.opts.SweepInterval, func(ctx context.Context) { s.Sweep(ctx) })
	go s.runEvery(ctx, jobcontext.KindReprocess, s.opts.ReprocessInterval, func(ctx context.Context) {
		if n := s.ReprocessPending(ctx); n > 0 {
			s.logger.Info("reprocessed transcriptions", zap.Int("count", n))
		}
	})

	return nil
}

// StopWorkers gracefully stops the workers
func (s *callbackService) StopWorkers() error {
	s.workerMutex.Lock()
	defer s.workerMutex.Unlock()

	if !s.isWorkerPoolRunning {
		return fmt.Errorf("worker pool not running")
	}

	close(s.workerStopChan)
	s.workerWg.Wait()
	s.isWorkerPoolRunning = false

	s.logger.Info("callback workers stopped")
	return nil
}

func (s *callbackService) runEvery(ctx context.Context, kind jobcontext.Kind, interval time.Duration, fn func(context.Context)) {
	defer s.workerWg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.workerStopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			jobCtx, cancel := jobcontext.Begin(ctx, kind, "", 1, interval)
			err := jobcontext.Run(jobCtx, func(ctx context.Context) error {
				fn(ctx)
				return nil
			})
			cancel()
			if err != nil {
				s.logger.Error("worker run failed",
					zap.String("worker", string(kind)),
					zap.String("job_id", jobcontext.ID(jobCtx)),
					zap.Error(err),
				)
			}
		}
	}
}
