package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/johnquangdev/call-assistant/internal/adapter/repository"
	"github.com/johnquangdev/call-assistant/internal/domain/entities"
	httpmw "github.com/johnquangdev/call-assistant/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/call-assistant/internal/infrastructure/metrics"
	"github.com/johnquangdev/call-assistant/internal/usecase/analytics"
	"github.com/johnquangdev/call-assistant/internal/usecase/callback"
	"github.com/johnquangdev/call-assistant/internal/usecase/conversation"
	"github.com/johnquangdev/call-assistant/internal/usecase/records"
	"github.com/johnquangdev/call-assistant/pkg/config"
	"github.com/johnquangdev/call-assistant/pkg/signature"
	pkgvalidator "github.com/johnquangdev/call-assistant/pkg/validator"
)

const (
	testToken   = "secret-token"
	testBaseURL = "https://calls.example.com"
)

type testApp struct {
	e     *echo.Echo
	store *repository.EventStore
	clock time.Time
	token string
}

func newTestApp(t *testing.T, authToken string) *testApp {
	t.Helper()

	app := &testApp{
		store: repository.NewEventStore(),
		clock: time.Date(2026, 10, 1, 15, 0, 0, 0, time.UTC),
		token: authToken,
	}
	now := func() time.Time { return app.clock }

	cfg := &config.Config{}
	cfg.Server.Environment = "test"
	cfg.Twilio.AuthToken = authToken
	cfg.Twilio.PublicBaseURL = testBaseURL

	logger := zap.NewNop()
	m := metrics.New(prometheus.NewRegistry())
	resolver := repository.IdentityResolver{}

	callbacks := callback.NewService(app.store, resolver, analytics.NewAnalyzer(), m, logger, callback.Options{
		RetentionWindow:   7 * 24 * time.Hour,
		SweepInterval:     time.Hour,
		ReprocessInterval: time.Hour,
		MaxRetries:        3,
		Now:               now,
	})
	conversations := conversation.NewService(app.store, time.UTC).WithClock(now)
	recordsSvc := records.NewService(app.store, nil, time.Hour)
	auth := httpmw.NewWebhookAuthenticator(authToken, testBaseURL, m, logger)

	e := echo.New()
	e.Validator = pkgvalidator.New()
	e.HTTPErrorHandler = NewHTTPErrorHandler(logger)

	router := NewRouter(cfg,
		NewVoiceHandler(callbacks, m, logger),
		NewRecordsHandler(recordsSvc, logger),
		NewContactHandler(conversations, logger),
		auth.Middleware(),
		nil,
		nil,
	)
	router.Setup(e)
	app.e = e
	return app
}

func (a *testApp) postForm(t *testing.T, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	if a.token != "" {
		req.Header.Set(signature.HeaderName, signature.Compute(a.token, testBaseURL+path, form))
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) do(t *testing.T, method, path string, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	var envelope struct {
		Code int             `json:"code"`
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, v))
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) int {
	t.Helper()

	var body struct {
		Code int `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Code
}

func TestRecordingCallbackCreatesContact(t *testing.T) {
	app := newTestApp(t, testToken)

	rec := app.postForm(t, "/api/voice/recording", url.Values{
		"RecordingSid":      {"RE1"},
		"RecordingUrl":      {"https://api.example.com/Recordings/RE1"},
		"RecordingDuration": {"42"},
		"CallSid":           {"CA123"},
		"RecordingStatus":   {"completed"},
	})
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = app.do(t, http.MethodGet, "/api/contacts", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var list struct {
		Contacts []struct {
			PhoneNumber   string `json:"phone_number"`
			TotalCalls    int    `json:"total_calls"`
			TotalDuration int    `json:"total_duration"`
			Relationship  string `json:"relationship"`
		} `json:"contacts"`
	}
	decodeData(t, rec, &list)
	require.Len(t, list.Contacts, 1)
	assert.Equal(t, "+123", list.Contacts[0].PhoneNumber)
	assert.Equal(t, 1, list.Contacts[0].TotalCalls)
	assert.Equal(t, 42, list.Contacts[0].TotalDuration)
	assert.Equal(t, "new", list.Contacts[0].Relationship)
}

func TestCallbackWithBadSignatureIsRejected(t *testing.T) {
	app := newTestApp(t, testToken)

	form := url.Values{"RecordingSid": {"RE1"}, "RecordingDuration": {"42"}, "CallSid": {"CA123"}}
	req := httptest.NewRequest(http.MethodPost, "/api/voice/recording", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	req.Header.Set(signature.HeaderName, "bm90IGEgc2lnbmF0dXJl")
	rec := httptest.NewRecorder()
	app.e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, app.store.ListRecordings())
	assert.Empty(t, app.store.ListContacts())
}

func TestCallbackWithoutTokenBypassesSignature(t *testing.T) {
	app := newTestApp(t, "")

	rec := app.postForm(t, "/api/voice/status", url.Values{
		"CallSid":    {"CA1"},
		"CallStatus": {"ringing"},
	})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, app.store.ListContacts())
}

func TestCallbackValidationFailure(t *testing.T) {
	app := newTestApp(t, testToken)

	rec := app.postForm(t, "/api/voice/recording", url.Values{"CallSid": {"CA1"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValidateEndpoint(t *testing.T) {
	app := newTestApp(t, testToken)

	rec := app.postForm(t, "/api/voice/validate", url.Values{})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func TestTranscriptionsThreeDaysApartAreQuickFollowUp(t *testing.T) {
	app := newTestApp(t, testToken)

	send := func(sid, text string) {
		rec := app.postForm(t, "/api/voice/transcription", url.Values{
			"TranscriptionSid":    {sid},
			"TranscriptionText":   {text},
			"TranscriptionStatus": {"completed"},
			"CallSid":             {"CA555"},
			"Confidence":          {"0.91"},
		})
		require.Equal(t, http.StatusNoContent, rec.Code)
	}

	send("TR1", "Thanks for the meeting. We need to review the budget.")
	app.clock = app.clock.Add(3 * 24 * time.Hour)
	send("TR2", "Following up on the budget discussion from earlier this week.")

	rec := app.do(t, http.MethodGet, "/api/contacts/+555/insights", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var insights struct {
		Patterns struct {
			FollowUps struct {
				QuickFollowUps int `json:"quick_follow_ups"`
			} `json:"follow_ups"`
		} `json:"patterns"`
	}
	decodeData(t, rec, &insights)
	assert.Equal(t, 1, insights.Patterns.FollowUps.QuickFollowUps)
}

func TestExportJSONRoundTrip(t *testing.T) {
	app := newTestApp(t, testToken)

	rec := app.postForm(t, "/api/voice/transcription", url.Values{
		"TranscriptionSid":    {"TR1"},
		"TranscriptionText":   {"We should send the contract today."},
		"TranscriptionStatus": {"completed"},
		"CallSid":             {"CA9"},
		"Confidence":          {"0.87"},
	})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = app.do(t, http.MethodGet, "/api/transcriptions/TR1/export?format=json", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "TR1")

	var exported entities.Transcription
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &exported))
	stored, ok := app.store.GetTranscription("TR1")
	require.True(t, ok)
	assert.Equal(t, stored.Sid, exported.Sid)
	assert.Equal(t, stored.Text, exported.Text)
	assert.Equal(t, stored.Confidence, exported.Confidence)
	assert.Equal(t, stored.CallSid, exported.CallSid)
}

func TestExportUnknownFormatIsClientError(t *testing.T) {
	app := newTestApp(t, testToken)
	app.store.PutTranscription(entities.Transcription{Sid: "TR1", Text: "hello", CreatedAt: app.clock})

	rec := app.do(t, http.MethodGet, "/api/transcriptions/TR1/export?format=pdf", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 4001, errorCode(t, rec))
}

func TestArchiveDisabled(t *testing.T) {
	app := newTestApp(t, testToken)
	app.store.PutTranscription(entities.Transcription{Sid: "TR1", Text: "hello", CreatedAt: app.clock})

	rec := app.do(t, http.MethodPost, "/api/transcriptions/TR1/export/archive?format=json", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestNotFoundResponses(t *testing.T) {
	app := newTestApp(t, testToken)

	tests := []struct {
		path string
		code int
	}{
		{path: "/api/recordings/RE404", code: 3001},
		{path: "/api/recordings/RE404/download", code: 3001},
		{path: "/api/transcriptions/TR404", code: 3002},
		{path: "/api/contacts/+15550000000/context", code: 3003},
		{path: "/api/contacts/+15550000000/briefing", code: 3003},
		{path: "/api/contacts/+15550000000/history", code: 3003},
		{path: "/api/nothing-here", code: 1002},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := app.do(t, http.MethodGet, tt.path, "")
			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.Equal(t, tt.code, errorCode(t, rec))
		})
	}
}

func TestSearchRejectsBadSentiment(t *testing.T) {
	app := newTestApp(t, testToken)

	rec := app.do(t, http.MethodGet, "/api/transcriptions/search?sentiment=angry", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchByTopic(t *testing.T) {
	app := newTestApp(t, testToken)

	for sid, text := range map[string]string{
		"TR1": "Let us talk about the invoice.",
		"TR2": "The demo went well.",
	} {
		rec := app.postForm(t, "/api/voice/transcription", url.Values{
			"TranscriptionSid":    {sid},
			"TranscriptionText":   {text},
			"TranscriptionStatus": {"completed"},
			"CallSid":             {"CA1"},
		})
		require.Equal(t, http.StatusNoContent, rec.Code)
	}

	rec := app.do(t, http.MethodGet, "/api/transcriptions/search?topic=demo&limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		Transcriptions []entities.Transcription `json:"transcriptions"`
	}
	decodeData(t, rec, &result)
	require.Len(t, result.Transcriptions, 1)
	assert.Equal(t, "TR2", result.Transcriptions[0].Sid)
}

func TestBriefingAndActionItemUpdate(t *testing.T) {
	app := newTestApp(t, testToken)

	rec := app.postForm(t, "/api/voice/transcription", url.Values{
		"TranscriptionSid":    {"TR1"},
		"TranscriptionText":   {"We need to send the proposal by Friday."},
		"TranscriptionStatus": {"completed"},
		"CallSid":             {"CA77"},
	})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = app.do(t, http.MethodPost, "/api/contacts/+77/prepare", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var briefing entities.Briefing
	decodeData(t, rec, &briefing)
	require.Len(t, briefing.PendingActionItems, 1)
	require.NotEmpty(t, briefing.Suggestions)
	assert.Equal(t, entities.SuggestionFollowUp, briefing.Suggestions[0].Type)
	assert.Equal(t, entities.PriorityHigh, briefing.Suggestions[0].Priority)

	itemID := briefing.PendingActionItems[0].ID
	rec = app.do(t, http.MethodPatch, "/api/contacts/+77/action-items/"+itemID, `{"completed":true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var item entities.ActionItem
	decodeData(t, rec, &item)
	assert.True(t, item.Completed)
	assert.NotNil(t, item.CompletedAt)

	rec = app.do(t, http.MethodPatch, "/api/contacts/+77/action-items/missing", `{"completed":true}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 3004, errorCode(t, rec))

	rec = app.do(t, http.MethodPatch, "/api/contacts/+77/action-items/"+itemID, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	app := newTestApp(t, testToken)

	for _, path := range []string{"/health", "/healthz"} {
		rec := app.do(t, http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "ok", body["status"])
		assert.Equal(t, true, body["signature_enforced"])
	}
}

func TestContactPathWithoutDigitsIsRejected(t *testing.T) {
	app := newTestApp(t, testToken)

	rec := app.do(t, http.MethodGet, "/api/contacts/unknown/history", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Details map[string]string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "phone", body.Details["phone"])
}
