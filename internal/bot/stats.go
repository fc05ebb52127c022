package bot

import "sync/atomic"

// Stats holds process-lifetime counters maintained by the router and
// exposed through the status API. All methods are safe for concurrent use.
type Stats struct {
	transcriptionsCompleted atomic.Int64
	transcriptionsFailed    atomic.Int64
	deniedEvents            atomic.Int64
	bytesDelivered          atomic.Int64
}

// NewStats creates a zeroed counter set
func NewStats() *Stats {
	return &Stats{}
}

func (s *Stats) recordCompleted(deliveredBytes int) {
	s.transcriptionsCompleted.Add(1)
	s.bytesDelivered.Add(int64(deliveredBytes))
}

func (s *Stats) recordFailed() {
	s.transcriptionsFailed.Add(1)
}

func (s *Stats) recordDenied() {
	s.deniedEvents.Add(1)
}

// Snapshot is a point-in-time copy of the counters
type Snapshot struct {
	TranscriptionsCompleted int64 `json:"transcriptions_completed"`
	TranscriptionsFailed    int64 `json:"transcriptions_failed"`
	DeniedEvents            int64 `json:"denied_events"`
	BytesDelivered          int64 `json:"bytes_delivered"`
}

// Snapshot returns a point-in-time copy of the counters
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		TranscriptionsCompleted: s.transcriptionsCompleted.Load(),
		TranscriptionsFailed:    s.transcriptionsFailed.Load(),
		DeniedEvents:            s.deniedEvents.Load(),
		BytesDelivered:          s.bytesDelivered.Load(),
	}
}
