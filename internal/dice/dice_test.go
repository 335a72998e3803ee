package dice

import (
	"testing"

	"github.com/KirkDiggler/dicetray/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRollStaysInRange(t *testing.T) {
	roller := New(&Config{Seed: 42})

	for _, sides := range models.StandardDice {
		for i := 0; i < 500; i++ {
			value := roller.Roll(sides)
			require.GreaterOrEqual(t, value, 1)
			require.LessOrEqual(t, value, sides)
		}
	}
}

func TestRollManyResultsAndTotal(t *testing.T) {
	roller := New(&Config{Seed: 7})

	for _, sides := range models.StandardDice {
		for count := 1; count <= models.MaxDiceCount; count++ {
			result := roller.RollMany(sides, count)
			require.Len(t, result.Results, count)

			sum := 0
			for _, value := range result.Results {
				require.GreaterOrEqual(t, value, 1)
				require.LessOrEqual(t, value, sides)
				sum += value
			}
			assert.Equal(t, sum, result.Total)
		}
	}
}

func TestSingleDiePathsAgree(t *testing.T) {
	single := New(&Config{Seed: 99})
	multi := New(&Config{Seed: 99})

	for i := 0; i < 100; i++ {
		value := single.Roll(20)
		result := multi.RollMany(20, 1)
		require.Equal(t, []int{value}, result.Results)
		require.Equal(t, value, result.Total)
	}
}

func TestSeedIsDeterministic(t *testing.T) {
	a := New(&Config{Seed: 1234})
	b := New(&Config{Seed: 1234})

	assert.Equal(t, a.RollMany(6, 10), b.RollMany(6, 10))
}

func TestInvalidInputsFallBack(t *testing.T) {
	roller := New(nil)

	value := roller.Roll(0)
	assert.GreaterOrEqual(t, value, 1)
	assert.LessOrEqual(t, value, 6)

	result := roller.RollMany(8, 0)
	assert.Len(t, result.Results, 1)
}
