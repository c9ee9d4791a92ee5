package model

import "time"

// SymptomHistoryEntry is one stored symptom check: what the user typed and
// the advice (or error text) that came back.
//
// Entries are values. Once created they are never edited; the history log
// only grows at the head or gets cleared as a whole.
//
// Timestamp is milliseconds since the Unix epoch. Two entries created in the
// same millisecond share a timestamp, so ordering ties fall back to the
// position in the log.
type SymptomHistoryEntry struct {
	ID         string `json:"id"`
	Symptoms   string `json:"symptoms"`
	AIResponse string `json:"aiResponse"`
	Timestamp  int64  `json:"timestamp"`
}

// Time converts the millisecond timestamp back into a time.Time.
func (e SymptomHistoryEntry) Time() time.Time {
	return time.UnixMilli(e.Timestamp)
}
