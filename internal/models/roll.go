package models

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidRoll is returned when a roll record breaks one of its invariants
var ErrInvalidRoll = errors.New("invalid roll")

// Roll represents one completed dice roll
type Roll struct {
	// ID is the unique identifier for the roll, assigned by the store
	ID string `json:"id"`

	// UserID is the ID of the user who made the roll
	UserID string `json:"user_id"`

	// UserName is the display name of the roller, joined from the user at read time
	UserName string `json:"user_name,omitempty"`

	// DiceType is the label combining count and sides, e.g. "D20" or "3D6"
	DiceType string `json:"dice_type"`

	// DiceCount is the number of dice rolled
	DiceCount int `json:"dice_count"`

	// Results holds one value per die, in roll order
	Results []int `json:"results"`

	// Total is the sum of Results
	Total int `json:"total"`

	// CreatedAt is when the roll was made
	CreatedAt time.Time `json:"created_at"`
}

// NewRoll builds a roll record for sides and results. The total is always
// derived from results so single and multi die rolls share one shape.
func NewRoll(userID string, sides int, results []int) *Roll {
	normalized := make([]int, len(results))
	copy(normalized, results)

	return &Roll{
		UserID:    userID,
		DiceType:  DiceLabel(sides, len(normalized)),
		DiceCount: len(normalized),
		Results:   normalized,
		Total:     Sum(normalized),
	}
}

// Sides returns the face count parsed from DiceType
func (r *Roll) Sides() (int, error) {
	_, sides, err := ParseDiceLabel(r.DiceType)
	return sides, err
}

// IsMultiDie reports whether the roll used more than one die
func (r *Roll) IsMultiDie() bool {
	return len(r.Results) > 1
}

// Validate checks the record invariants
func (r *Roll) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: roll cannot be nil", ErrInvalidRoll)
	}

	if r.UserID == "" {
		return fmt.Errorf("%w: user ID cannot be empty", ErrInvalidRoll)
	}

	if r.DiceCount < MinDiceCount || r.DiceCount > MaxDiceCount {
		return fmt.Errorf("%w: dice count %d out of range", ErrInvalidRoll, r.DiceCount)
	}

	if len(r.Results) != r.DiceCount {
		return fmt.Errorf("%w: expected %d results, got %d", ErrInvalidRoll, r.DiceCount, len(r.Results))
	}

	count, sides, err := ParseDiceLabel(r.DiceType)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRoll, err)
	}
	if count != r.DiceCount {
		return fmt.Errorf("%w: dice type %q does not match count %d", ErrInvalidRoll, r.DiceType, r.DiceCount)
	}

	for _, result := range r.Results {
		if result < 1 || result > sides {
			return fmt.Errorf("%w: result %d outside [1, %d]", ErrInvalidRoll, result, sides)
		}
	}

	if r.Total != Sum(r.Results) {
		return fmt.Errorf("%w: total %d does not match results", ErrInvalidRoll, r.Total)
	}

	return nil
}

// Sum adds up a slice of die results
func Sum(results []int) int {
	total := 0
	for _, result := range results {
		total += result
	}
	return total
}

// Clone returns a deep copy of the roll
func (r *Roll) Clone() *Roll {
	if r == nil {
		return nil
	}
	clone := *r
	clone.Results = make([]int, len(r.Results))
	copy(clone.Results, r.Results)
	return &clone
}
