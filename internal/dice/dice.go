package dice

//go:generate mockgen -package=mocks -destination=mocks/mock_roller.go github.com/KirkDiggler/dicetray/internal/dice Roller

import (
	"math/rand"
	"sync"
	"time"
)

// Roller provides dice rolling functionality
type Roller interface {
	// Roll returns a single uniform draw in [1, sides]
	Roll(sides int) int

	// RollMany returns count independent draws in [1, sides] and their sum
	RollMany(sides, count int) *Result
}

// Result holds the values of a multi die roll
type Result struct {
	// Results contains one value per die, in roll order
	Results []int

	// Total is the sum of Results
	Total int
}

// Config for dice roller
type Config struct {
	// Optional seed for testing
	Seed int64
}

// randomRoller implements Roller on top of math/rand
type randomRoller struct {
	mu     sync.Mutex
	random *rand.Rand
}

// New creates a new dice roller
func New(cfg *Config) *randomRoller {
	var seed int64
	if cfg != nil && cfg.Seed != 0 {
		seed = cfg.Seed
	} else {
		seed = time.Now().UnixNano()
	}

	source := rand.NewSource(seed)
	random := rand.New(source)

	return &randomRoller{
		random: random,
	}
}

// Roll generates a random dice roll with the specified number of sides
func (r *randomRoller) Roll(sides int) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.roll(sides)
}

// RollMany rolls count dice with the specified number of sides
func (r *randomRoller) RollMany(sides, count int) *Result {
	if count < 1 {
		count = 1
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	results := make([]int, count)
	total := 0
	for i := range results {
		results[i] = r.roll(sides)
		total += results[i]
	}

	return &Result{
		Results: results,
		Total:   total,
	}
}

// roll draws one value; callers hold mu
func (r *randomRoller) roll(sides int) int {
	if sides < 1 {
		sides = 6 // Default to 6-sided die
	}
	return r.random.Intn(sides) + 1
}
