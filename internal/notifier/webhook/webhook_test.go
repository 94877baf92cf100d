package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Krause140/eudr-monitor-24-7/internal/monitor"
)

func sampleChanges() []monitor.Change {
	detected := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	return []monitor.Change{
		{
			SourceID:    "https://example.com/regulation",
			DisplayName: "EUDR Regulation",
			Category:    monitor.CategoryRegulation,
			Priority:    monitor.PriorityCritical,
			DetectedAt:  detected,
		},
		{
			SourceID:    "https://example.com/faq",
			DisplayName: "EUDR FAQ",
			Category:    monitor.CategoryGuidance,
			DetectedAt:  detected,
		},
	}
}

func TestNew_RequiresEndpoint(t *testing.T) {
	t.Parallel()

	_, err := New(Config{}, zap.NewNop())
	require.Error(t, err)
}

func TestNotify_SendsOneRequestPerBatch(t *testing.T) {
	t.Parallel()

	var (
		requests int
		gotBody  map[string]string
		gotType  string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		gotType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n, err := New(Config{Endpoint: srv.URL}, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, n.Notify(context.Background(), sampleChanges()))
	require.Equal(t, 1, requests)
	require.Equal(t, "application/json", gotType)
	require.Contains(t, gotBody["text"], "2 monitored page(s) changed")
}

func TestNotify_EmptyBatchIsNoOp(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("no request expected for an empty batch")
	}))
	defer srv.Close()

	n, err := New(Config{Endpoint: srv.URL}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, n.Notify(context.Background(), nil))
}

func TestNotify_NonSuccessStatusIsAnError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "try later", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	n, err := New(Config{Endpoint: srv.URL}, zap.NewNop())
	require.NoError(t, err)

	err = n.Notify(context.Background(), sampleChanges())
	var ne *monitor.NotificationError
	require.True(t, errors.As(err, &ne))
	require.Equal(t, monitor.NotifyStatus, ne.Kind)
	require.Equal(t, http.StatusServiceUnavailable, ne.StatusCode)
}

func TestNotify_TransportFailure(t *testing.T) {
	t.Parallel()

	n, err := New(Config{Endpoint: "http://127.0.0.1:1/hook", Timeout: time.Second}, zap.NewNop())
	require.NoError(t, err)

	err = n.Notify(context.Background(), sampleChanges())
	var ne *monitor.NotificationError
	require.True(t, errors.As(err, &ne))
	require.Equal(t, monitor.NotifyTransport, ne.Kind)
}

func TestComposeMessage(t *testing.T) {
	t.Parallel()

	msg := ComposeMessage(sampleChanges())
	require.Contains(t, msg, "[URGENT] 2 monitored page(s) changed, detected 2026-03-14 09:30 UTC")
	require.Contains(t, msg, "- [regulation] EUDR Regulation (critical): https://example.com/regulation")
	require.Contains(t, msg, "- [guidance] EUDR FAQ: https://example.com/faq")
}

func TestComposeMessage_NoCriticalBanner(t *testing.T) {
	t.Parallel()

	changes := sampleChanges()[1:]
	msg := ComposeMessage(changes)
	require.NotContains(t, msg, "[URGENT]")
	require.Contains(t, msg, "1 monitored page(s) changed")
}
