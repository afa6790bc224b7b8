package metrics

import "fmt"

// ComparisonEntry is a machine summary plus its deltas against the
// chosen baseline. The baseline's own entry carries zero deltas and
// IsBaseline set.
type ComparisonEntry struct {
	MachineSummary
	IsBaseline       bool    `json:"is_baseline"`
	SuccessRateDelta float64 `json:"success_rate_delta"`
	CheckinsDelta    int     `json:"checkins_delta"`
	HealingTimeDelta float64 `json:"healing_time_delta"`
}

// ComparisonResponse is the comparison table: baseline entry first,
// remaining machines in summary order.
type ComparisonResponse struct {
	BaselineID string            `json:"baseline_id"`
	Machines   []ComparisonEntry `json:"machines"`
}

// Compare computes baseline-relative deltas for every machine
// summary. An unknown baseline id is an ErrBaselineNotFound, never a
// silent fallback. A healing-time delta involving a side with no
// completed check-ins (nil average) is 0.
func Compare(
	summaries []MachineSummary, baselineID string,
) (ComparisonResponse, error) {
	var baseline *MachineSummary
	for i := range summaries {
		if summaries[i].ID == baselineID {
			baseline = &summaries[i]
			break
		}
	}
	if baseline == nil {
		return ComparisonResponse{}, fmt.Errorf(
			"baseline %q: %w", baselineID, ErrBaselineNotFound,
		)
	}

	entries := make([]ComparisonEntry, 0, len(summaries))
	entries = append(entries, ComparisonEntry{
		MachineSummary: *baseline,
		IsBaseline:     true,
	})
	for _, s := range summaries {
		if s.ID == baselineID {
			continue
		}
		e := ComparisonEntry{
			MachineSummary:   s,
			SuccessRateDelta: round1(s.SuccessRate - baseline.SuccessRate),
			CheckinsDelta:    s.TotalCheckins - baseline.TotalCheckins,
		}
		if s.AvgHealMinutes != nil && baseline.AvgHealMinutes != nil {
			e.HealingTimeDelta = round1(
				*s.AvgHealMinutes - *baseline.AvgHealMinutes,
			)
		}
		entries = append(entries, e)
	}

	return ComparisonResponse{
		BaselineID: baselineID,
		Machines:   entries,
	}, nil
}
