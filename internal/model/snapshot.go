package model

import "time"

const (
	SnapshotOK          = "ok"
	SnapshotUnavailable = "unavailable"
	SnapshotFailed      = "failed"
)

// Snapshot is the output of one polling cycle for one link
type Snapshot struct {
	ID         string          `json:"id"`
	Link       string          `json:"link"`
	Interface  string          `json:"interface"`
	CapturedAt time.Time       `json:"captured_at"`
	Status     string          `json:"status"`
	Error      string          `json:"error,omitempty"`
	Data       []DeviceDetail  `json:"data"`
	Failures   []DetailFailure `json:"failures,omitempty"`
}
