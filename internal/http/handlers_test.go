package http

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travis-scholtens/sladdle/internal/channel"
	"github.com/travis-scholtens/sladdle/internal/config"
	"github.com/travis-scholtens/sladdle/internal/database"
	"github.com/travis-scholtens/sladdle/internal/dateparse"
	"github.com/travis-scholtens/sladdle/internal/docstore"
	"github.com/travis-scholtens/sladdle/internal/lineup"
	"github.com/travis-scholtens/sladdle/internal/metrics"
	"github.com/travis-scholtens/sladdle/internal/names"
	"github.com/travis-scholtens/sladdle/internal/notifier"
	"github.com/travis-scholtens/sladdle/internal/pubsub"
	"github.com/travis-scholtens/sladdle/internal/rankings"
	"github.com/vmihailenco/msgpack/v5"
)

const testSlackSigningSecret = "test-signing-secret"

var testNow = time.Date(2024, 4, 20, 12, 0, 0, 0, time.UTC)

type testServer struct {
	*Server
	docs     docstore.Store
	notifier *notifier.Mock
	metrics  *metrics.Mock
}

// setupTestServer initializes a new server with a test database and mock clients.
func setupTestServer(t *testing.T, slackSigningSecret string) (*testServer, func()) {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)

	docs := docstore.New(db)
	channels := channel.New(docs)
	rankingsStore := rankings.New(docs)
	rankingsStore.Now = func() time.Time { return testNow }
	engine := lineup.New(docs, channels, rankingsStore)
	engine.Now = func() time.Time { return testNow }
	dates := dateparse.New()
	dates.Now = func() time.Time { return testNow }

	notifierMock := notifier.NewMock()
	metricsMock := metrics.NewMock()
	cfg := config.Config{Slack: config.SlackConfig{SigningSecret: slackSigningSecret}}

	server := NewServer(channels, engine, rankingsStore, names.New(docs), dates,
		notifierMock, metricsMock, metrics.NewMetricsHandler(prometheus.NewRegistry()), cfg, pubsub.NewMock())

	teardown := func() {
		if dbTeardown != nil {
			dbTeardown()
		}
	}
	return &testServer{Server: server, docs: docs, notifier: notifierMock, metrics: metricsMock}, teardown
}

// postCommand sends an unsigned slash command form. The test servers are
// built without a signing secret unless a test opts in.
func postCommand(t *testing.T, server *testServer, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

func commandForm(channelID, userID, text string) url.Values {
	return url.Values{
		"channel_id": {channelID},
		"user_id":    {userID},
		"text":       {text},
	}
}

// signedCommandRequest builds a slash command request carrying a valid
// Slack signature for the secret.
func signedCommandRequest(t *testing.T, path string, form url.Values, signingSecret string) *http.Request {
	t.Helper()

	body := form.Encode()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	timestamp := time.Now().Unix()
	req.Header.Set("X-Slack-Request-Timestamp", strconv.FormatInt(timestamp, 10))

	baseString := fmt.Sprintf("v0:%d:%s", timestamp, body)
	mac := hmac.New(sha256.New, []byte(signingSecret))
	mac.Write([]byte(baseString))
	req.Header.Set("X-Slack-Signature", "v0="+hex.EncodeToString(mac.Sum(nil)))

	req.Body = io.NopCloser(bytes.NewBufferString(body))
	return req
}

func TestHealthCheck(t *testing.T) {
	server, teardown := setupTestServer(t, "")
	defer teardown()

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK!", rec.Body.String())
}

func TestSlackSignatureVerification(t *testing.T) {
	server, teardown := setupTestServer(t, testSlackSigningSecret)
	defer teardown()

	form := commandForm("C1", "U1", "")

	t.Run("missing signature is rejected", func(t *testing.T) {
		rec := postCommand(t, server, "/lineup", form)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("bad signature is rejected", func(t *testing.T) {
		req := signedCommandRequest(t, "/lineup", form, "wrong-secret")
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid signature is accepted", func(t *testing.T) {
		req := signedCommandRequest(t, "/lineup", form, testSlackSigningSecret)
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestEventChallenge(t *testing.T) {
	server, teardown := setupTestServer(t, "")
	defer teardown()

	payload, err := json.Marshal(map[string]any{
		"type":      "url_verification",
		"challenge": "challenge-token",
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest("POST", "/event", bytes.NewReader(payload)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "challenge-token", rec.Body.String())

	t.Run("other callbacks are acked", func(t *testing.T) {
		payload, err := json.Marshal(map[string]any{"type": "event_callback"})
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, httptest.NewRequest("POST", "/event", bytes.NewReader(payload)))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Body.String())
	})
}

func TestRatingRefresh(t *testing.T) {
	server, teardown := setupTestServer(t, "")
	defer teardown()

	rating := 41.5
	refresh := pubsub.RatingSnapshotRefresh{
		League:       "cpta",
		Division:     "d5",
		Team:         "glen-ellyn-1",
		Flavor:       "pti",
		Ratings:      map[string]*float64{"Alice": &rating, "Bob": nil},
		CapturedAtMs: testNow.Add(-time.Hour).UnixMilli(),
	}
	packed, err := msgpack.Marshal(refresh)
	require.NoError(t, err)

	envelope, err := json.Marshal(map[string]any{
		"subscription": "projects/test/subscriptions/ratings",
		"message":      map[string]any{"data": base64.StdEncoding.EncodeToString(packed)},
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest("POST", "/pubsub/ratings", bytes.NewReader(envelope)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, server.metrics.SnapshotRefreshes())

	defn := channel.TeamDefinition{League: "cpta", Division: "d5", Team: "glen-ellyn-1"}
	current, previous, err := server.Rankings.Snapshot(defn, rankings.FlavorPTI)
	require.NoError(t, err)
	assert.Len(t, current, 2)
	assert.Empty(t, previous)

	t.Run("second refresh rotates previous", func(t *testing.T) {
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, httptest.NewRequest("POST", "/pubsub/ratings", bytes.NewReader(envelope)))
		require.Equal(t, http.StatusOK, rec.Code)

		_, previous, err := server.Rankings.Snapshot(defn, rankings.FlavorPTI)
		require.NoError(t, err)
		assert.Len(t, previous, 2)
	})

	t.Run("unknown flavor is rejected", func(t *testing.T) {
		refresh.Flavor = "elo"
		packed, err := msgpack.Marshal(refresh)
		require.NoError(t, err)
		envelope, err := json.Marshal(map[string]any{
			"message": map[string]any{"data": base64.StdEncoding.EncodeToString(packed)},
		})
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, httptest.NewRequest("POST", "/pubsub/ratings", bytes.NewReader(envelope)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("bad base64 is rejected", func(t *testing.T) {
		envelope, err := json.Marshal(map[string]any{
			"message": map[string]any{"data": "not base64!"},
		})
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, httptest.NewRequest("POST", "/pubsub/ratings", bytes.NewReader(envelope)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
