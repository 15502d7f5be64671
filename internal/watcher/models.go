package watcher

import (
	"time"

	"github.com/raysh454/repview/internal/store"
)

type Status string

const (
	StatusRunning   Status = "running"
	StatusChanged   Status = "changed"
	StatusUnchanged Status = "unchanged"
	StatusFailed    Status = "failed"
)

// Result describes one check run.
type Result struct {
	ID        string    `json:"id"`
	Trigger   string    `json:"trigger"` // "start", "schedule" or "manual"
	Status    Status    `json:"status"`
	Reason    string    `json:"reason,omitempty"`
	Error     string    `json:"error,omitempty"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at,omitempty"`

	Snapshot *store.Snapshot `json:"snapshot,omitempty"`
	Chunks   []store.Chunk   `json:"chunks,omitempty"`
}
