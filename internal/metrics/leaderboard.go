package metrics

import (
	"sort"

	"centerview/internal/record"
)

// LeaderboardEntry is one ranked subject or category. ID is empty for
// category rows. SuccessRate uses the completed-only denominator.
type LeaderboardEntry struct {
	ID            string  `json:"id,omitempty"`
	Name          string  `json:"name"`
	TotalCheckins int     `json:"total_checkins"`
	Successful    int     `json:"successful"`
	SuccessRate   float64 `json:"success_rate"`
}

// LeaderboardResponse holds the two independent rankings.
type LeaderboardResponse struct {
	Limit         int                `json:"limit"`
	TopSubjects   []LeaderboardEntry `json:"top_subjects"`
	TopCategories []LeaderboardEntry `json:"top_categories"`
}

// tally accumulates counts for one leaderboard key.
type tally struct {
	total      int
	successful int
	failed     int
}

// BuildLeaderboard ranks subjects and primary categories by
// successful-heal count over the full check-in history. Leaderboards
// are all-time by design and ignore the trend window. Check-ins whose
// subject row is missing cannot be attributed and are skipped.
func BuildLeaderboard(
	checkins []record.Checkin,
	subjects []record.Subject,
	limit int,
) (LeaderboardResponse, error) {
	if limit < 1 {
		return LeaderboardResponse{}, invalidf(
			"invalid limit %d: must be >= 1", limit,
		)
	}

	subjectsByID := make(map[string]record.Subject, len(subjects))
	for _, s := range subjects {
		subjectsByID[s.ID] = s
	}

	bySubject := make(map[string]*tally)
	byCategory := make(map[string]*tally)

	for _, c := range checkins {
		s, ok := subjectsByID[c.SubjectID]
		if !ok {
			continue
		}
		addTally(bySubject, s.ID, c)
		addTally(byCategory, s.TypePrimary, c)
	}

	top := func(
		tallies map[string]*tally,
		less func(a, b string) bool,
		entry func(key string, t *tally) LeaderboardEntry,
	) []LeaderboardEntry {
		keys := make([]string, 0, len(tallies))
		for k := range tallies {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			a, b := tallies[keys[i]], tallies[keys[j]]
			if a.successful != b.successful {
				return a.successful > b.successful
			}
			return less(keys[i], keys[j])
		})
		if len(keys) > limit {
			keys = keys[:limit]
		}
		entries := make([]LeaderboardEntry, 0, len(keys))
		for _, k := range keys {
			entries = append(entries, entry(k, tallies[k]))
		}
		return entries
	}

	resp := LeaderboardResponse{Limit: limit}
	resp.TopSubjects = top(bySubject,
		func(a, b string) bool { return a < b },
		func(key string, t *tally) LeaderboardEntry {
			return LeaderboardEntry{
				ID:            key,
				Name:          subjectsByID[key].Name,
				TotalCheckins: t.total,
				Successful:    t.successful,
				SuccessRate:   successRate(t.successful, t.successful+t.failed),
			}
		})
	resp.TopCategories = top(byCategory,
		func(a, b string) bool { return a < b },
		func(key string, t *tally) LeaderboardEntry {
			return LeaderboardEntry{
				Name:          key,
				TotalCheckins: t.total,
				Successful:    t.successful,
				SuccessRate:   successRate(t.successful, t.successful+t.failed),
			}
		})
	return resp, nil
}

func addTally(m map[string]*tally, key string, c record.Checkin) {
	t := m[key]
	if t == nil {
		t = &tally{}
		m[key] = t
	}
	t.total++
	switch {
	case c.Completed(record.OutcomeSuccessful):
		t.successful++
	case c.Completed(record.OutcomeFailed):
		t.failed++
	}
}
