package models

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// MinDiceCount is the fewest dice a single roll can use
	MinDiceCount = 1

	// MaxDiceCount is the most dice a single roll can use
	MaxDiceCount = 20

	// HistoryLimit is the size of the history window for every store
	HistoryLimit = 50

	// DefaultUserName is used when a roller has not set a display name
	DefaultUserName = "Anonymous"
)

// StandardDice are the face counts offered by the interface
var StandardDice = []int{4, 6, 8, 10, 12, 20, 100}

// IsStandardDie reports whether sides is one of StandardDice
func IsStandardDie(sides int) bool {
	for _, standard := range StandardDice {
		if standard == sides {
			return true
		}
	}
	return false
}

// ClampDiceCount forces count into [MinDiceCount, MaxDiceCount]
func ClampDiceCount(count int) int {
	if count < MinDiceCount {
		return MinDiceCount
	}
	if count > MaxDiceCount {
		return MaxDiceCount
	}
	return count
}

// ParseDiceCount reads a user-entered count from its leading integer, so
// "5abc" and "3.7" read as 5 and 3. Input without one becomes 1, and the
// result is always clamped.
func ParseDiceCount(input string) int {
	input = strings.TrimSpace(input)

	end := 0
	if end < len(input) && (input[end] == '-' || input[end] == '+') {
		end++
	}
	digits := end
	for end < len(input) && input[end] >= '0' && input[end] <= '9' {
		end++
	}
	if end == digits {
		return MinDiceCount
	}

	count, err := strconv.Atoi(input[:end])
	if err != nil {
		// Only overflow gets here
		if input[0] == '-' {
			return MinDiceCount
		}
		return MaxDiceCount
	}
	if count == 0 {
		return MinDiceCount
	}
	return ClampDiceCount(count)
}

// DiceLabel formats a die type as "D20" for one die or "3D6" for several
func DiceLabel(sides, count int) string {
	if count <= 1 {
		return fmt.Sprintf("D%d", sides)
	}
	return fmt.Sprintf("%dD%d", count, sides)
}

// ParseDiceLabel splits a label such as "D20" or "3d6" into count and sides
func ParseDiceLabel(label string) (count int, sides int, err error) {
	upper := strings.ToUpper(strings.TrimSpace(label))
	idx := strings.Index(upper, "D")
	if idx < 0 {
		return 0, 0, fmt.Errorf("dice type %q has no D separator", label)
	}

	count = 1
	if idx > 0 {
		count, err = strconv.Atoi(upper[:idx])
		if err != nil || count < 1 {
			return 0, 0, fmt.Errorf("dice type %q has an invalid count", label)
		}
	}

	sides, err = strconv.Atoi(upper[idx+1:])
	if err != nil || sides < 1 {
		return 0, 0, fmt.Errorf("dice type %q has invalid sides", label)
	}

	return count, sides, nil
}
