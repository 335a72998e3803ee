package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampDiceCount(t *testing.T) {
	assert.Equal(t, 1, ClampDiceCount(-5))
	assert.Equal(t, 20, ClampDiceCount(37))
	assert.Equal(t, 5, ClampDiceCount(5))
	assert.Equal(t, 1, ClampDiceCount(0))
}

func TestIsStandardDie(t *testing.T) {
	for _, sides := range StandardDice {
		assert.True(t, IsStandardDie(sides))
	}
	assert.False(t, IsStandardDie(7))
	assert.False(t, IsStandardDie(0))
}

func TestParseDiceCount(t *testing.T) {
	assert.Equal(t, 1, ParseDiceCount("-5"))
	assert.Equal(t, 20, ParseDiceCount("37"))
	assert.Equal(t, 5, ParseDiceCount(" 5 "))
	assert.Equal(t, 1, ParseDiceCount("lots"))
	assert.Equal(t, 1, ParseDiceCount(""))
	assert.Equal(t, 5, ParseDiceCount("5abc"))
	assert.Equal(t, 3, ParseDiceCount("3.7"))
	assert.Equal(t, 12, ParseDiceCount("+12"))
	assert.Equal(t, 1, ParseDiceCount("-"))
	assert.Equal(t, 20, ParseDiceCount("99999999999999999999999"))
}

func TestDiceLabel(t *testing.T) {
	assert.Equal(t, "D20", DiceLabel(20, 1))
	assert.Equal(t, "3D6", DiceLabel(6, 3))
	assert.Equal(t, "20D100", DiceLabel(100, 20))
}

func TestParseDiceLabel(t *testing.T) {
	count, sides, err := ParseDiceLabel("D20")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, 20, sides)

	count, sides, err = ParseDiceLabel("3d6")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Equal(t, 6, sides)

	for _, bad := range []string{"", "20", "xD6", "D", "0D6", "D0"} {
		_, _, err := ParseDiceLabel(bad)
		assert.Error(t, err, bad)
	}
}

func TestRollValidate(t *testing.T) {
	roll := NewRoll("user-1", 6, []int{1, 6, 3})
	require.NoError(t, roll.Validate())
	assert.Equal(t, "3D6", roll.DiceType)
	assert.Equal(t, 3, roll.DiceCount)
	assert.Equal(t, 10, roll.Total)
	assert.True(t, roll.IsMultiDie())

	single := NewRoll("user-1", 20, []int{17})
	require.NoError(t, single.Validate())
	assert.Equal(t, "D20", single.DiceType)
	assert.Equal(t, 17, single.Total)
	assert.False(t, single.IsMultiDie())

	outOfRange := NewRoll("user-1", 6, []int{7})
	assert.ErrorIs(t, outOfRange.Validate(), ErrInvalidRoll)

	badTotal := NewRoll("user-1", 6, []int{2, 2})
	badTotal.Total = 5
	assert.ErrorIs(t, badTotal.Validate(), ErrInvalidRoll)

	mismatched := NewRoll("user-1", 6, []int{2, 2})
	mismatched.DiceCount = 3
	assert.ErrorIs(t, mismatched.Validate(), ErrInvalidRoll)

	noUser := NewRoll("", 6, []int{2})
	assert.ErrorIs(t, noUser.Validate(), ErrInvalidRoll)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Anonymous", DisplayName(""))
	assert.Equal(t, "Gandalf", DisplayName("Gandalf"))
}
