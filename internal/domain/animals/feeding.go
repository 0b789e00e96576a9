package animals

import "time"

// FeedingInterval: pasado este tiempo desde la última comida, el animal necesita comer.
const FeedingInterval = 24 * time.Hour

// NeedsFeeding es pura: sin comida registrada, o más de 24h exactas desde la última.
func NeedsFeeding(lastFedAt *time.Time, now time.Time) bool {
	if lastFedAt == nil {
		return true
	}
	return now.Sub(*lastFedAt) > FeedingInterval
}
