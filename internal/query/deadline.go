package query

import (
	"time"

	"github.com/david/sochx/internal/models"
)

// DefaultUrgentWindow is how far ahead a deadline counts as urgent.
const DefaultUrgentWindow = 15 * 24 * time.Hour

// EffectiveDeadline returns the first deadline entry, in list order, that
// carries a parsed date. ok is false when no entry does; such records have no
// deadline.
func EffectiveDeadline(opp *models.Opportunity) (time.Time, bool) {
	for _, entry := range opp.Deadline {
		if entry.At != nil {
			return *entry.At, true
		}
	}
	return time.Time{}, false
}

// IsUrgent reports whether at lies within [now, now+window].
func IsUrgent(at time.Time, now time.Time, window time.Duration) bool {
	if at.Before(now) {
		return false
	}
	return !at.After(now.Add(window))
}
