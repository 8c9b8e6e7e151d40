// Package draw computes Secret Santa assignments.
package draw

import (
	"errors"
	"fmt"
)

// DefaultMaxAttempts bounds the rejection loop in Derange.
const DefaultMaxAttempts = 100

// MinParticipants is the smallest group that can be drawn.
const MinParticipants = 3

var ErrTooFewParticipants = errors.New("too few participants")

// ExhaustedError is returned when no derangement was accepted within the attempt cap.
type ExhaustedError struct {
	Attempts int
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("no derangement found after %d attempts", e.Attempts)
}

// Shuffler is satisfied by *math/rand/v2.Rand.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// Derange maps every id in ids to a different id in ids, forming a bijection with
// no fixed point. Each attempt shuffles a copy of ids and accepts it only if no
// position kept its original id.
func Derange(ids []string, rng Shuffler, maxAttempts int) (map[string]string, error) {
	if len(ids) < MinParticipants {
		return nil, ErrTooFewParticipants
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	perm := make([]string, len(ids))
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		copy(perm, ids)
		rng.Shuffle(len(perm), func(i, j int) {
			perm[i], perm[j] = perm[j], perm[i]
		})

		if hasFixedPoint(ids, perm) {
			continue
		}

		assignments := make(map[string]string, len(ids))
		for i, giver := range ids {
			assignments[giver] = perm[i]
		}
		return assignments, nil
	}

	return nil, &ExhaustedError{Attempts: maxAttempts}
}

func hasFixedPoint(ids, perm []string) bool {
	for i := range ids {
		if ids[i] == perm[i] {
			return true
		}
	}
	return false
}

// Validate reports whether assignments is a derangement over ids.
func Validate(ids []string, assignments map[string]string) error {
	if len(assignments) != len(ids) {
		return fmt.Errorf("assignment covers %d of %d participants", len(assignments), len(ids))
	}

	members := make(map[string]bool, len(ids))
	for _, id := range ids {
		members[id] = true
	}

	received := make(map[string]bool, len(ids))
	for _, giver := range ids {
		receiver, ok := assignments[giver]
		if !ok {
			return fmt.Errorf("participant %s has no receiver", giver)
		}
		if receiver == giver {
			return fmt.Errorf("participant %s assigned to themselves", giver)
		}
		if !members[receiver] {
			return fmt.Errorf("receiver %s is not a participant", receiver)
		}
		if received[receiver] {
			return fmt.Errorf("receiver %s assigned twice", receiver)
		}
		received[receiver] = true
	}
	return nil
}
