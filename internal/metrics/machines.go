package metrics

import (
	"sort"
	"time"

	"centerview/internal/record"
)

// ActiveCheckin is a currently in-progress check-in on a machine.
type ActiveCheckin struct {
	ID        string    `json:"id"`
	SubjectID string    `json:"subject_id"`
	ArrivedAt time.Time `json:"arrived_at"`
}

// MachineSummary is the per-machine aggregate. AvgHealMinutes is nil
// when the machine has no completed check-ins: the average is
// undefined there, and a nil sentinel keeps NaN out of the output.
type MachineSummary struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Model          string          `json:"model"`
	Location       string          `json:"location"`
	TotalCheckins  int             `json:"total_checkins"`
	Successful     int             `json:"successful"`
	Failed         int             `json:"failed"`
	SuccessRate    float64         `json:"success_rate"`
	AvgHealMinutes *float64        `json:"avg_heal_minutes"`
	Active         []ActiveCheckin `json:"active_checkins"`
}

// SummarizeMachines computes one summary per known machine, ordered
// by name (id as tie-break). Machines with no check-ins still get a
// zero-valued row. Check-ins referencing an unknown machine are
// skipped.
func SummarizeMachines(
	checkins []record.Checkin,
	machines []record.Machine,
) []MachineSummary {
	type acc struct {
		summary   MachineSummary
		healTotal time.Duration
		completed int
	}

	accs := make(map[string]*acc, len(machines))
	for _, m := range machines {
		accs[m.ID] = &acc{summary: MachineSummary{
			ID:       m.ID,
			Name:     m.Name,
			Model:    m.Model,
			Location: m.Location,
			Active:   []ActiveCheckin{},
		}}
	}

	for _, c := range checkins {
		a, ok := accs[c.MachineID]
		if !ok {
			continue
		}
		a.summary.TotalCheckins++
		if c.Active() {
			a.summary.Active = append(a.summary.Active, ActiveCheckin{
				ID:        c.ID,
				SubjectID: c.SubjectID,
				ArrivedAt: c.ArrivedAt,
			})
			continue
		}
		switch {
		case c.Completed(record.OutcomeSuccessful):
			a.summary.Successful++
		case c.Completed(record.OutcomeFailed):
			a.summary.Failed++
		}
		if d, ok := c.HealDuration(); ok {
			a.healTotal += d
			a.completed++
		}
	}

	summaries := make([]MachineSummary, 0, len(accs))
	for _, a := range accs {
		s := a.summary
		s.SuccessRate = successRate(s.Successful, s.Successful+s.Failed)
		if a.completed > 0 {
			avg := round1(a.healTotal.Minutes() / float64(a.completed))
			s.AvgHealMinutes = &avg
		}
		sort.Slice(s.Active, func(i, j int) bool {
			if !s.Active[i].ArrivedAt.Equal(s.Active[j].ArrivedAt) {
				return s.Active[i].ArrivedAt.Before(s.Active[j].ArrivedAt)
			}
			return s.Active[i].ID < s.Active[j].ID
		})
		summaries = append(summaries, s)
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Name != summaries[j].Name {
			return summaries[i].Name < summaries[j].Name
		}
		return summaries[i].ID < summaries[j].ID
	})
	return summaries
}
