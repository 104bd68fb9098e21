package lead

import (
	"sync"
	"time"
)

// submissionLimiter is a process-local sliding-window counter keyed by
// client IP. It only protects the public lead form; it is deliberately not
// shared across instances, so limits are per process.
type submissionLimiter struct {
	mu          sync.Mutex
	submissions map[string][]time.Time
	limit       int
	window      time.Duration
}

func newSubmissionLimiter(limit int, window time.Duration) *submissionLimiter {
	return &submissionLimiter{
		submissions: make(map[string][]time.Time),
		limit:       limit,
		window:      window,
	}
}

// allow records the attempt and reports whether it is within the window
// limit. Expired entries are pruned on every call, so the map stays bounded
// by active clients.
func (l *submissionLimiter) allow(key string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	pruned := l.pruneLocked(key, now)
	if len(pruned) >= l.limit {
		return false
	}

	l.submissions[key] = append(pruned, now)
	return true
}

func (l *submissionLimiter) pruneLocked(key string, now time.Time) []time.Time {
	values := l.submissions[key]
	if len(values) == 0 {
		return []time.Time{}
	}

	threshold := now.Add(-l.window)
	pruned := make([]time.Time, 0, len(values))
	for _, value := range values {
		if value.After(threshold) {
			pruned = append(pruned, value)
		}
	}

	if len(pruned) == 0 {
		delete(l.submissions, key)
		return []time.Time{}
	}

	l.submissions[key] = pruned
	return pruned
}
