package jobs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"atelier-app/internal/editor"

	"github.com/google/uuid"
)

/*
	Outbound job trigger
	--------------------
	- The engine fires derived-image-metadata regeneration requests here and
	  never waits for a response.
	- Delivery is at-least-once: a bounded retry loop per job, job ids so
	  the receiving side can deduplicate. Exhausted jobs are logged and
	  dropped; they never affect a committed save.
*/

const (
	queueSize   = 64
	maxAttempts = 3
)

type job struct {
	JobID              string `json:"job_id"`
	RecordID           string `json:"record_id"`
	ForceWatermark     bool   `json:"force_watermark"`
	ForceVisualization bool   `json:"force_visualization"`
}

// Trigger implements editor.JobTrigger over a webhook endpoint with an
// in-process queue and a single worker goroutine.
type Trigger struct {
	endpoint string
	client   *http.Client
	backoff  time.Duration

	queue chan job
	wg    sync.WaitGroup

	closeOnce sync.Once
}

// NewTrigger starts the worker. An empty endpoint keeps the queue in
// log-only mode, which is enough for local development.
func NewTrigger(endpoint string) *Trigger {
	t := &Trigger{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
		backoff:  2 * time.Second,
		queue:    make(chan job, queueSize),
	}
	t.wg.Add(1)
	go t.worker()
	return t
}

func (t *Trigger) RequestImageMetadataRegeneration(recordID string, opts editor.RegenerationOptions) error {
	j := job{
		JobID:              uuid.NewString(),
		RecordID:           recordID,
		ForceWatermark:     opts.ForceWatermark,
		ForceVisualization: opts.ForceVisualization,
	}
	select {
	case t.queue <- j:
		return nil
	default:
		return fmt.Errorf("job queue full, dropping regeneration request for record %s", recordID)
	}
}

// Close stops accepting jobs and waits for the worker to drain the queue.
func (t *Trigger) Close() {
	t.closeOnce.Do(func() {
		close(t.queue)
	})
	t.wg.Wait()
}

func (t *Trigger) worker() {
	defer t.wg.Done()
	for j := range t.queue {
		t.deliver(j)
	}
}

func (t *Trigger) deliver(j job) {
	if t.endpoint == "" {
		log.Printf("jobs: no endpoint configured, skipping regeneration job %s (record %s)", j.JobID, j.RecordID)
		return
	}

	body, err := json.Marshal(j)
	if err != nil {
		log.Printf("jobs: marshal job %s: %v", j.JobID, err)
		return
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		resp, err := t.client.Post(t.endpoint, "application/json", bytes.NewReader(body))
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode < 300 {
				return
			}
			err = fmt.Errorf("endpoint returned %s", resp.Status)
		}
		log.Printf("jobs: deliver job %s attempt %d/%d: %v", j.JobID, attempt, maxAttempts, err)
		if attempt < maxAttempts {
			time.Sleep(t.backoff * time.Duration(attempt))
		}
	}
	log.Printf("jobs: giving up on regeneration job %s (record %s)", j.JobID, j.RecordID)
}
