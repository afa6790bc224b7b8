package fixture

import (
	"math/rand"
	"time"

	"centerview/internal/db"
	"centerview/internal/record"
)

// SeedHistory generates random check-in history for the roster over
// the last days days, ending at now. Roughly 1 to 4 check-ins land
// on each day; most complete, a few stay active on the final day.
// It returns the number of check-ins inserted.
func SeedHistory(
	d *db.DB, r Roster, days int, now time.Time, rng *rand.Rand,
) (int, error) {
	inserted := 0
	start := now.AddDate(0, 0, -(days - 1))

	for day := 0; day < days; day++ {
		date := start.AddDate(0, 0, day)
		n := 1 + rng.Intn(4)
		for i := 0; i < n; i++ {
			subject := r.Subjects[rng.Intn(len(r.Subjects))]
			machine := r.Machines[rng.Intn(len(r.Machines))]

			arrived := time.Date(
				date.Year(), date.Month(), date.Day(),
				8+rng.Intn(10), rng.Intn(60), 0, 0, time.UTC,
			)
			maxHP := 50 + rng.Intn(151)
			c := record.Checkin{
				SubjectID: subject.ID,
				MachineID: machine.ID,
				ArrivedAt: arrived,
				InitialHP: rng.Intn(maxHP / 2),
				MaxHP:     maxHP,
			}

			// Leave some of the final day's arrivals in progress.
			lastDay := day == days-1
			if !lastDay || rng.Intn(3) > 0 {
				healed := arrived.Add(
					time.Duration(5+rng.Intn(40)) * time.Minute,
				)
				outcome := record.OutcomeSuccessful
				if rng.Intn(10) == 0 {
					outcome = record.OutcomeFailed
				}
				c.HealedAt = &healed
				c.Outcome = &outcome
			}

			if _, err := d.InsertCheckin(c); err != nil {
				return inserted, err
			}
			inserted++
		}
	}
	return inserted, nil
}
