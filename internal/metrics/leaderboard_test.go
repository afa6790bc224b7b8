package metrics

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"centerview/internal/record"
)

// healSeq builds n completed-successful check-ins for a subject.
func healSeq(subject string, n int) []record.Checkin {
	out := make([]record.Checkin, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, doneCheckin(
			subject+"-heal", subject, "m-01",
			"2025-06-01T09:00:00", "2025-06-01T09:10:00",
			record.OutcomeSuccessful,
		))
	}
	return out
}

func TestBuildLeaderboard_RankingAndRates(t *testing.T) {
	var checkins []record.Checkin
	checkins = append(checkins, healSeq("s-001", 3)...) // Pikachu, Electric
	checkins = append(checkins, healSeq("s-003", 2)...) // Charmander, Fire
	// Bulbasaur: 1 success, 1 failure, 1 active → rate 50.0
	checkins = append(checkins, healSeq("s-002", 1)...)
	checkins = append(checkins,
		doneCheckin("c-f", "s-002", "m-01",
			"2025-06-02T09:00:00", "2025-06-02T09:10:00",
			record.OutcomeFailed),
		activeCheckin("c-a", "s-002", "m-01", "2025-06-03T09:00:00"),
	)

	resp, err := BuildLeaderboard(checkins, testSubjects, 2)
	require.NoError(t, err)

	want := []LeaderboardEntry{
		{ID: "s-001", Name: "Pikachu", TotalCheckins: 3, Successful: 3, SuccessRate: 100.0},
		{ID: "s-003", Name: "Charmander", TotalCheckins: 2, Successful: 2, SuccessRate: 100.0},
	}
	if diff := cmp.Diff(want, resp.TopSubjects); diff != "" {
		t.Errorf("top subjects mismatch (-want +got):\n%s", diff)
	}

	require.Len(t, resp.TopCategories, 2)
	assert.Equal(t, "Electric", resp.TopCategories[0].Name)
	assert.Equal(t, "Fire", resp.TopCategories[1].Name)
}

func TestBuildLeaderboard_CompletedOnlyDenominator(t *testing.T) {
	checkins := []record.Checkin{
		doneCheckin("c1", "s-002", "m-01",
			"2025-06-01T09:00:00", "2025-06-01T09:10:00",
			record.OutcomeSuccessful),
		doneCheckin("c2", "s-002", "m-01",
			"2025-06-02T09:00:00", "2025-06-02T09:10:00",
			record.OutcomeFailed),
		activeCheckin("c3", "s-002", "m-01", "2025-06-03T09:00:00"),
	}

	resp, err := BuildLeaderboard(checkins, testSubjects, 5)
	require.NoError(t, err)
	require.Len(t, resp.TopSubjects, 1)

	e := resp.TopSubjects[0]
	assert.Equal(t, 3, e.TotalCheckins)
	assert.Equal(t, 1, e.Successful)
	// Active check-in stays out of the denominator: 1/2, not 1/3.
	assert.Equal(t, 50.0, e.SuccessRate)
}

func TestBuildLeaderboard_TieBreaks(t *testing.T) {
	var checkins []record.Checkin
	checkins = append(checkins, healSeq("s-004", 1)...) // Squirtle, Water
	checkins = append(checkins, healSeq("s-001", 1)...) // Pikachu, Electric

	resp, err := BuildLeaderboard(checkins, testSubjects, 5)
	require.NoError(t, err)

	// Equal successful counts: lower subject id first.
	require.Len(t, resp.TopSubjects, 2)
	assert.Equal(t, "s-001", resp.TopSubjects[0].ID)
	assert.Equal(t, "s-004", resp.TopSubjects[1].ID)

	// Categories tie-break lexicographically.
	require.Len(t, resp.TopCategories, 2)
	assert.Equal(t, "Electric", resp.TopCategories[0].Name)
	assert.Equal(t, "Water", resp.TopCategories[1].Name)
}

func TestBuildLeaderboard_Idempotent(t *testing.T) {
	var checkins []record.Checkin
	checkins = append(checkins, healSeq("s-001", 2)...)
	checkins = append(checkins, healSeq("s-002", 2)...)
	checkins = append(checkins, healSeq("s-003", 1)...)

	first, err := BuildLeaderboard(checkins, testSubjects, 5)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := BuildLeaderboard(checkins, testSubjects, 5)
		require.NoError(t, err)
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("run %d differs (-first +again):\n%s", i, diff)
		}
	}
}

func TestBuildLeaderboard_InvalidLimit(t *testing.T) {
	for _, limit := range []int{0, -1, -5} {
		_, err := BuildLeaderboard(nil, testSubjects, limit)
		require.Error(t, err, "limit %d", limit)
		assert.True(t, IsValidation(err))
	}
}

func TestBuildLeaderboard_OrphanSubjectsSkipped(t *testing.T) {
	checkins := append(healSeq("s-001", 1),
		doneCheckin("c-x", "ghost", "m-01",
			"2025-06-01T09:00:00", "2025-06-01T09:10:00",
			record.OutcomeSuccessful),
	)

	resp, err := BuildLeaderboard(checkins, testSubjects, 5)
	require.NoError(t, err)
	require.Len(t, resp.TopSubjects, 1)
	assert.Equal(t, "s-001", resp.TopSubjects[0].ID)
}
