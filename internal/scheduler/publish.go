package scheduler

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

const (
	// searchWindowDays bounds the forward search for a free publish date.
	searchWindowDays = 365

	earliestHour = 9
	latestHour   = 18
)

// PostCounter reports how many published or scheduled posts already sit on a
// calendar day.
type PostCounter interface {
	CountPostsOnDate(day time.Time) (int64, error)
}

// PublishScheduler allocates publish slots: the earliest day with no
// published or scheduled post, at a random time within business hours.
//
// The find-then-create sequence has no transactional guarantee, so two
// concurrent imports can pick the same day. Serialized mode runs
// ScheduleWith under an internal lock for callers that need strict
// non-collision within one process.
type PublishScheduler struct {
	repo       PostCounter
	serialized bool

	mu  sync.Mutex
	now func() time.Time
}

func NewPublishScheduler(repo PostCounter, serialized bool) *PublishScheduler {
	return &PublishScheduler{
		repo:       repo,
		serialized: serialized,
		now:        time.Now,
	}
}

// NextSlot returns the next free publish slot. When every day in the search
// window is taken it falls back to tomorrow, accepting a possible collision
// rather than failing the import.
func (s *PublishScheduler) NextSlot() (time.Time, error) {
	day := startOfDay(s.now())
	for i := 0; i < searchWindowDays; i++ {
		count, err := s.repo.CountPostsOnDate(day)
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to check schedule for %s: %w", day.Format("2006-01-02"), err)
		}
		if count == 0 {
			return randomTimeOn(day), nil
		}
		day = day.AddDate(0, 0, 1)
	}

	return randomTimeOn(startOfDay(s.now()).AddDate(0, 0, 1)), nil
}

// ScheduleWith picks a slot and hands it to fn. In serialized mode the whole
// pick-then-act sequence runs under the scheduler's lock so concurrent
// imports cannot double-book a date.
func (s *PublishScheduler) ScheduleWith(fn func(slot time.Time) error) error {
	if s.serialized {
		s.mu.Lock()
		defer s.mu.Unlock()
	}

	slot, err := s.NextSlot()
	if err != nil {
		return err
	}
	return fn(slot)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// randomTimeOn spreads posts over business hours instead of clustering them
// at midnight.
func randomTimeOn(day time.Time) time.Time {
	hour := earliestHour + rand.Intn(latestHour-earliestHour+1)
	minute := rand.Intn(60)
	second := rand.Intn(60)
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, second, 0, day.Location())
}
