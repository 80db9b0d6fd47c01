package jobs

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"atelier-app/internal/editor"
)

func TestDeliversJobToEndpoint(t *testing.T) {
	var mu sync.Mutex
	var received []job

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var j job
		if err := json.Unmarshal(body, &j); err != nil {
			t.Errorf("bad payload: %v", err)
		}
		mu.Lock()
		received = append(received, j)
		mu.Unlock()
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	tr := NewTrigger(srv.URL)
	if err := tr.RequestImageMetadataRegeneration("rec-1", editor.RegenerationOptions{ForceWatermark: true}); err != nil {
		t.Fatal(err)
	}
	tr.Close()

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 1 {
		t.Fatalf("received %d requests, want 1", len(received))
	}
	got := received[0]
	if got.RecordID != "rec-1" || !got.ForceWatermark || got.ForceVisualization {
		t.Fatalf("payload = %+v", got)
	}
	if got.JobID == "" {
		t.Fatal("job id missing, receiver cannot deduplicate")
	}
}

func TestRetriesUntilEndpointAccepts(t *testing.T) {
	var mu sync.Mutex
	attempts := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		attempts++
		n := attempts
		mu.Unlock()
		if n < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tr := NewTrigger(srv.URL)
	tr.backoff = time.Millisecond
	if err := tr.RequestImageMetadataRegeneration("rec-2", editor.RegenerationOptions{}); err != nil {
		t.Fatal(err)
	}
	tr.Close()

	mu.Lock()
	defer mu.Unlock()
	if attempts != 3 {
		t.Fatalf("attempts = %d, want 3", attempts)
	}
}

func TestGivesUpAfterMaxAttempts(t *testing.T) {
	var mu sync.Mutex
	attempts := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		attempts++
		mu.Unlock()
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	tr := NewTrigger(srv.URL)
	tr.backoff = time.Millisecond
	if err := tr.RequestImageMetadataRegeneration("rec-3", editor.RegenerationOptions{}); err != nil {
		t.Fatal(err)
	}
	tr.Close()

	mu.Lock()
	defer mu.Unlock()
	if attempts != maxAttempts {
		t.Fatalf("attempts = %d, want %d", attempts, maxAttempts)
	}
}

func TestFullQueueRejectsInsteadOfBlocking(t *testing.T) {
	// no worker draining this queue, so the second enqueue must fail fast
	tr := &Trigger{queue: make(chan job, 1)}

	if err := tr.RequestImageMetadataRegeneration("rec-4", editor.RegenerationOptions{}); err != nil {
		t.Fatalf("first enqueue failed: %v", err)
	}
	if err := tr.RequestImageMetadataRegeneration("rec-5", editor.RegenerationOptions{}); err == nil {
		t.Fatal("second enqueue should be rejected while the queue is full")
	}
}

func TestLogOnlyModeWithoutEndpoint(t *testing.T) {
	tr := NewTrigger("")
	if err := tr.RequestImageMetadataRegeneration("rec-6", editor.RegenerationOptions{}); err != nil {
		t.Fatal(err)
	}
	// Close drains the queue; no HTTP call is attempted without an endpoint
	tr.Close()
}
