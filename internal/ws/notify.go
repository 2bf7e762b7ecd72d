package ws

import (
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

type ImportProgressEvent struct {
	Type        string    `json:"type"`
	JobID       uuid.UUID `json:"job_id"`
	Status      string    `json:"status"`
	Processed   int       `json:"processed"`
	TotalTokens int       `json:"total_tokens"`
	Timestamp   string    `json:"timestamp"`
}

var defaultHub atomic.Pointer[Hub]

func SetDefaultHub(h *Hub) {
	defaultHub.Store(h)
}

func NotifyImportProgress(jobID uuid.UUID, status string, processed, totalTokens int) {
	h := defaultHub.Load()
	if h == nil {
		return
	}

	evt := ImportProgressEvent{
		Type:        "import_progress",
		JobID:       jobID,
		Status:      status,
		Processed:   processed,
		TotalTokens: totalTokens,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
	b, err := json.Marshal(evt)
	if err != nil {
		return
	}

	h.Broadcast(jobID, b)
}
