package metrics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func avg(v float64) *float64 { return &v }

func summaryFixture() []MachineSummary {
	return []MachineSummary{
		{
			ID: "m-01", Name: "Alpha",
			TotalCheckins: 20, Successful: 18, Failed: 2,
			SuccessRate: 90.0, AvgHealMinutes: avg(12.0),
		},
		{
			ID: "m-02", Name: "Bravo",
			TotalCheckins: 15, Successful: 12, Failed: 3,
			SuccessRate: 80.0, AvgHealMinutes: avg(15.5),
		},
		{
			ID: "m-03", Name: "Charlie",
			TotalCheckins: 2, SuccessRate: 0,
		},
	}
}

func TestCompare_BaselineEntry(t *testing.T) {
	resp, err := Compare(summaryFixture(), "m-01")
	require.NoError(t, err)
	require.NotEmpty(t, resp.Machines)

	b := resp.Machines[0]
	assert.True(t, b.IsBaseline)
	assert.Equal(t, "m-01", b.ID)
	assert.Equal(t, 0.0, b.SuccessRateDelta)
	assert.Equal(t, 0, b.CheckinsDelta)
	assert.Equal(t, 0.0, b.HealingTimeDelta)
}

func TestCompare_Deltas(t *testing.T) {
	resp, err := Compare(summaryFixture(), "m-01")
	require.NoError(t, err)
	require.Len(t, resp.Machines, 3)

	bravo := resp.Machines[1]
	assert.Equal(t, "m-02", bravo.ID)
	assert.False(t, bravo.IsBaseline)
	assert.Equal(t, -10.0, bravo.SuccessRateDelta)
	assert.Equal(t, -5, bravo.CheckinsDelta)
	assert.Equal(t, 3.5, bravo.HealingTimeDelta)
}

func TestCompare_NilAverageYieldsZeroDelta(t *testing.T) {
	resp, err := Compare(summaryFixture(), "m-01")
	require.NoError(t, err)

	charlie := resp.Machines[2]
	require.Equal(t, "m-03", charlie.ID)
	assert.Nil(t, charlie.AvgHealMinutes)
	assert.Equal(t, 0.0, charlie.HealingTimeDelta)

	// Same when the baseline itself has no completed check-ins.
	resp, err = Compare(summaryFixture(), "m-03")
	require.NoError(t, err)
	for _, e := range resp.Machines {
		assert.Equal(t, 0.0, e.HealingTimeDelta, e.ID)
	}
}

func TestCompare_UnknownBaseline(t *testing.T) {
	_, err := Compare(summaryFixture(), "m-99")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBaselineNotFound))
	assert.False(t, IsValidation(err))
}

func TestCompare_BaselineFirstThenSummaryOrder(t *testing.T) {
	resp, err := Compare(summaryFixture(), "m-02")
	require.NoError(t, err)
	require.Len(t, resp.Machines, 3)
	assert.Equal(t, "m-02", resp.Machines[0].ID)
	assert.Equal(t, "m-01", resp.Machines[1].ID)
	assert.Equal(t, "m-03", resp.Machines[2].ID)
}

func TestCompare_DeltaIdentity(t *testing.T) {
	// m.delta == m.value - baseline.value for every machine.
	summaries := summaryFixture()
	resp, err := Compare(summaries, "m-01")
	require.NoError(t, err)

	baseline := summaries[0]
	for _, e := range resp.Machines[1:] {
		assert.InDelta(t,
			e.SuccessRate-baseline.SuccessRate,
			e.SuccessRateDelta, 0.05, e.ID)
		assert.Equal(t,
			e.TotalCheckins-baseline.TotalCheckins,
			e.CheckinsDelta, e.ID)
	}
}
