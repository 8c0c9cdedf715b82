package entity

import (
	"encoding/json"
	"time"
)

// Snapshot is the append-only audit record of one fetch attempt.
// Exactly one snapshot is written per collection run, whether the fetch
// succeeded or failed; failed fetches store status 0 (network error) or the
// upstream status, an empty payload and the error message.
type Snapshot struct {
	ID               int64
	SiteID           int64
	BatchID          string
	Endpoint         string
	ResponseStatus   int
	ResponseTimeMs   int64
	RawData          json.RawMessage
	ArticlesFound    int
	ArticlesValid    int
	DataQualityScore float64
	ErrorMessage     string
	CreatedAt        time.Time
}

// IsSuccessful reports whether the snapshot captured a 2xx response.
func (s *Snapshot) IsSuccessful() bool {
	return s.ResponseStatus >= 200 && s.ResponseStatus < 300
}
