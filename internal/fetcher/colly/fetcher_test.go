package collyfetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Krause140/eudr-monitor-24-7/internal/monitor"
)

func TestFetchReturnsRawBody(t *testing.T) {
	t.Parallel()

	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte("<html>regulation text</html>")) //nolint:errcheck
	}))
	defer srv.Close()

	f := New(Config{UserAgent: "test-agent", Timeout: 2 * time.Second})
	body, err := f.Fetch(context.Background(), monitor.Source{ID: srv.URL})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(body) != "<html>regulation text</html>" {
		t.Fatalf("unexpected body: %q", body)
	}
	if gotUA != "test-agent" {
		t.Fatalf("expected user agent override, got %q", gotUA)
	}
}

func TestFetchRepeatedVisitsSucceed(t *testing.T) {
	t.Parallel()

	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		w.Write([]byte("stable")) //nolint:errcheck
	}))
	defer srv.Close()

	f := New(Config{Timeout: 2 * time.Second})
	for i := 0; i < 3; i++ {
		if _, err := f.Fetch(context.Background(), monitor.Source{ID: srv.URL}); err != nil {
			t.Fatalf("Fetch() #%d error = %v", i, err)
		}
	}
	if hits != 3 {
		t.Fatalf("expected 3 server hits, got %d", hits)
	}
}

func TestFetchClassifiesStatusErrors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	f := New(Config{Timeout: 2 * time.Second})
	_, err := f.Fetch(context.Background(), monitor.Source{ID: srv.URL})
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
	var fe *monitor.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *monitor.FetchError, got %T", err)
	}
	if fe.Kind != monitor.FetchStatus || fe.StatusCode != http.StatusNotFound {
		t.Fatalf("unexpected classification: %+v", fe)
	}
}

func TestFetchClassifiesTimeouts(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.Write([]byte("late")) //nolint:errcheck
	}))
	defer srv.Close()

	f := New(Config{Timeout: 50 * time.Millisecond})
	_, err := f.Fetch(context.Background(), monitor.Source{ID: srv.URL})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	var fe *monitor.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *monitor.FetchError, got %T", err)
	}
	if fe.Kind != monitor.FetchTimeout {
		t.Fatalf("expected timeout classification, got %q", fe.Kind)
	}
}

func TestFetchHonorsContextCancellation(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
		w.Write([]byte("late")) //nolint:errcheck
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	f := New(Config{Timeout: 5 * time.Second})
	_, err := f.Fetch(ctx, monitor.Source{ID: srv.URL})
	if err == nil {
		t.Fatal("expected error after cancellation")
	}
	var fe *monitor.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *monitor.FetchError, got %T", err)
	}
}

func TestFetchUnreachableHost(t *testing.T) {
	t.Parallel()

	f := New(Config{Timeout: time.Second})
	_, err := f.Fetch(context.Background(), monitor.Source{ID: "http://127.0.0.1:1"})
	if err == nil {
		t.Fatal("expected connection error")
	}
	var fe *monitor.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *monitor.FetchError, got %T", err)
	}
	if fe.Kind != monitor.FetchNetwork {
		t.Fatalf("expected network classification, got %q", fe.Kind)
	}
}
