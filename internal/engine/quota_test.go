package engine

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestComputeQuota tests every formula against hand-computed values.
func TestComputeQuota(t *testing.T) {
	tests := []struct {
		name      string
		formula   QuotaFormula
		total     int64
		seats     int
		expected  string
		exclusive bool
	}{
		{"droop two seats", QuotaDroop, 100, 2, "34", false},
		{"droop one seat", QuotaDroop, 10, 1, "6", false},
		{"droop floors before adding one", QuotaDroop, 7, 2, "3", false},
		{"droop four seats", QuotaDroop, 1000, 4, "201", false},
		{"hare", QuotaHare, 100, 4, "25", false},
		{"hare fractional", QuotaHare, 10, 3, "10/3", false},
		{"hagenbach-bischoff", QuotaHagenbachBischoff, 100, 3, "25", true},
		{"hagenbach-bischoff fractional", QuotaHagenbachBischoff, 10, 2, "10/3", true},
		{"imperiali", QuotaImperiali, 100, 3, "20", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := ComputeQuota(tt.formula, big.NewRat(tt.total, 1), tt.seats)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, q.String())
			assert.Equal(t, tt.exclusive, q.Exclusive)
			assert.Equal(t, tt.formula, q.Formula)
		})
	}
}

// TestComputeQuota_InvalidInput tests the rejected inputs.
func TestComputeQuota_InvalidInput(t *testing.T) {
	_, err := ComputeQuota(QuotaDroop, big.NewRat(10, 1), 0)
	require.Error(t, err)
	assert.True(t, IsInvalidInput(err))
	assert.Contains(t, err.Error(), "seats must be at least 1")

	_, err = ComputeQuota(QuotaDroop, new(big.Rat), 1)
	require.Error(t, err)
	assert.True(t, IsInvalidInput(err))

	_, err = ComputeQuota(QuotaDroop, big.NewRat(-3, 1), 1)
	require.Error(t, err)
	assert.True(t, IsInvalidInput(err))

	_, err = ComputeQuota("sainte-lague", big.NewRat(10, 1), 1)
	require.Error(t, err)
	assert.True(t, IsInvalidInput(err))
}

// TestQuota_Reached tests inclusive and exclusive thresholds.
func TestQuota_Reached(t *testing.T) {
	droop, err := ComputeQuota(QuotaDroop, big.NewRat(100, 1), 2)
	require.NoError(t, err)
	assert.True(t, droop.Reached(big.NewRat(34, 1)))
	assert.False(t, droop.Reached(big.NewRat(67, 2)))

	hb, err := ComputeQuota(QuotaHagenbachBischoff, big.NewRat(100, 1), 3)
	require.NoError(t, err)
	assert.False(t, hb.Reached(big.NewRat(25, 1)))
	assert.True(t, hb.Reached(big.NewRat(2501, 100)))
}

// TestParseQuotaFormula tests name resolution.
func TestParseQuotaFormula(t *testing.T) {
	f, err := ParseQuotaFormula("")
	require.NoError(t, err)
	assert.Equal(t, QuotaDroop, f)

	f, err = ParseQuotaFormula(" Hagenbach-Bischoff ")
	require.NoError(t, err)
	assert.Equal(t, QuotaHagenbachBischoff, f)

	_, err = ParseQuotaFormula("dhondt")
	require.Error(t, err)
	assert.True(t, IsInvalidInput(err))
}

// TestRoundGuard_WithinLimit tests normal operation within the limit.
func TestRoundGuard_WithinLimit(t *testing.T) {
	g := NewRoundGuard(3)

	for i := 0; i < 3; i++ {
		assert.NoError(t, g.Check(), "round %d should be allowed", i+1)
	}

	assert.Equal(t, 3, g.Current())
	assert.Equal(t, 3, g.MaxRounds())
}

// TestRoundGuard_ExceedsLimit tests the stalled error.
func TestRoundGuard_ExceedsLimit(t *testing.T) {
	g := NewRoundGuard(2)
	require.NoError(t, g.Check())
	require.NoError(t, g.Check())

	err := g.Check()
	require.Error(t, err)

	var re *RoundsExceededError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, 3, re.Rounds)
	assert.Equal(t, 2, re.Limit)
	assert.True(t, IsRoundsExceededError(err))
	assert.True(t, IsStalled(err))
	assert.Contains(t, err.Error(), "3 rounds > 2 candidates")
}
