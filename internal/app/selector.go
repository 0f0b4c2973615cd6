package app

import (
	"fmt"
	"sort"

	"question_rotation_service/internal/domain/question"
)

// ErrNoEligibleQuestion indicates a region has an empty candidate pool.
// The rotation aborts as a whole rather than committing a partial cycle.
var ErrNoEligibleQuestion = fmt.Errorf("region has no eligible questions")

// SelectNextQuestion picks the next question for a region given its
// eligible pool and the chronological history of questions previously
// assigned to it. Deterministic round-robin over the pool ordered by
// question id ascending: advance one past the most recently assigned
// question, wrapping at the end of the ordering. A pool of one always
// repeats. If the most recent question is no longer in the pool (its
// eligibility was revoked), or there is no history, selection restarts
// from the head of the ordering. Pure function of its arguments, so any
// past selection is reproducible from persisted history alone.
func SelectNextQuestion(eligible []*question.Question, history []int64) (*question.Question, error) {
	if len(eligible) == 0 {
		return nil, ErrNoEligibleQuestion
	}

	pool := make([]*question.Question, len(eligible))
	copy(pool, eligible)
	sort.Slice(pool, func(i, j int) bool { return pool[i].ID < pool[j].ID })

	if len(pool) == 1 {
		return pool[0], nil
	}
	if len(history) == 0 {
		return pool[0], nil
	}

	lastAssigned := history[len(history)-1]
	for i, q := range pool {
		if q.ID == lastAssigned {
			return pool[(i+1)%len(pool)], nil
		}
	}
	// Last assigned question has left the pool; restart the ordering.
	return pool[0], nil
}
