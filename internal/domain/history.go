package domain

import "time"

// PatchRecord is one patch run as kept by the caller-side history store.
type PatchRecord struct {
	RunID     string       `json:"run_id"`
	Timestamp time.Time    `json:"timestamp"`
	Root      string       `json:"root"`
	Target    string       `json:"target"`
	DryRun    bool         `json:"dry_run"`
	Status    PatchStatus  `json:"status"`
	Steps     []StepResult `json:"steps"`
}

// CacheEntry is one persisted fact. It is stale when more than TTLSeconds
// have passed since ComputedAt.
type CacheEntry struct {
	Key        string    `json:"-"`
	Value      string    `json:"value"`
	ComputedAt time.Time `json:"computed_at"`
	TTLSeconds int       `json:"ttl_seconds"`
}

// FreshFor reports whether the entry may be served without recomputation
// under the given TTL. A non-positive TTL is never fresh.
func (e CacheEntry) FreshFor(now time.Time, ttlSeconds int) bool {
	if ttlSeconds <= 0 {
		return false
	}
	return now.Sub(e.ComputedAt) <= time.Duration(ttlSeconds)*time.Second
}
