package numberspace

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/rafflehq/raffle-backend/internal/models"
)

// Allocator generates unused ticket numbers by uniform rejection sampling
// over the remaining free values of a raffle's number space.
type Allocator struct {
	rng *rand.Rand
}

// NewAllocator creates an Allocator seeded from the current time.
func NewAllocator() *Allocator {
	return &Allocator{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewSeededAllocator creates an Allocator with a fixed seed, for
// deterministic selection in tests.
func NewSeededAllocator(seed int64) *Allocator {
	return &Allocator{rng: rand.New(rand.NewSource(seed))}
}

// Allocate produces count distinct ticket numbers of exactly digitWidth
// digits, none of which appear in issued. Selection is uniformly random
// over the free values: draw a uniform integer in [0, MaxValue], format,
// retry on collision with issued or the in-progress batch.
//
// It fails with ErrSpaceExhausted when count plus the issued set would
// overrun the number space. Callers that regenerate a candidate batch must
// pass the superset of all already-reserved numbers for the raffle;
// uncommitted candidates are not binding until the state machine persists
// them.
func (a *Allocator) Allocate(count, digitWidth int, issued map[string]bool) ([]string, error) {
	if count < 1 {
		return nil, fmt.Errorf("allocation count must be at least 1, got %d", count)
	}
	max := MaxValue(digitWidth)
	if max < 0 {
		return nil, fmt.Errorf("digit width %d: %w", digitWidth, models.ErrOutOfRange)
	}
	capacity := max + 1
	if int64(count)+int64(len(issued)) > capacity {
		return nil, fmt.Errorf("requested %d with %d already issued of %d: %w",
			count, len(issued), capacity, models.ErrSpaceExhausted)
	}

	result := make([]string, 0, count)
	taken := make(map[string]bool, count)
	for len(result) < count {
		candidate, err := Format(a.rng.Int63n(capacity), digitWidth)
		if err != nil {
			return nil, err
		}
		if issued[candidate] || taken[candidate] {
			continue
		}
		taken[candidate] = true
		result = append(result, candidate)
	}
	return result, nil
}
