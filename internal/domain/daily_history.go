package domain

import (
	"fmt"
	"math"
	"time"
)

// DailyHistoryItem aggregates one UTC day of study. Word counts and averages
// are overwritten by each completed lesson; lesson count and study duration
// accumulate.
type DailyHistoryItem struct {
	timestamp           time.Time
	avgStability        *float64
	avgDifficulty       *float64
	totalWords          int
	newWords            int
	knownWords          int
	inProgressWords     int
	highDifficultyWords int
	lessonsCompleted    int
	totalDuration       time.Duration
}

// NewDailyHistoryItem starts an empty item for the day containing now.
func NewDailyHistoryItem(now time.Time) DailyHistoryItem {
	return DailyHistoryItem{timestamp: now.UTC()}
}

// Update records the latest knowledge-set rollup and counts one more completed lesson.
func (d *DailyHistoryItem) Update(r Rollup) {
	d.avgStability = cloneFloat(r.AvgStability)
	d.avgDifficulty = cloneFloat(r.AvgDifficulty)
	d.totalWords = r.TotalWords
	d.newWords = r.NewWords
	d.knownWords = r.KnownWords
	d.inProgressWords = r.InProgressWords
	d.highDifficultyWords = r.HighDifficultyWords
	d.lessonsCompleted++
}

// AddLessonDuration adds study time. Negative durations and totals that
// would overflow are rejected.
func (d *DailyHistoryItem) AddLessonDuration(duration time.Duration) error {
	if err := checkDurationSum(d.totalDuration, duration); err != nil {
		return err
	}
	d.totalDuration += duration
	return nil
}

func checkDurationSum(total, d time.Duration) error {
	if d < 0 {
		return fmt.Errorf("%w: negative lesson duration %s", ErrInvalidValues, d)
	}
	if d > time.Duration(math.MaxInt64)-total {
		return fmt.Errorf("%w: lesson duration %s overflows total %s", ErrInvalidValues, d, total)
	}
	return nil
}

// SameDay reports whether now falls on the item's UTC calendar day.
func (d DailyHistoryItem) SameDay(now time.Time) bool {
	y1, m1, d1 := d.timestamp.Date()
	y2, m2, d2 := now.UTC().Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func (d DailyHistoryItem) Timestamp() time.Time           { return d.timestamp }
func (d DailyHistoryItem) AvgStability() (float64, bool)  { return derefFloat(d.avgStability) }
func (d DailyHistoryItem) AvgDifficulty() (float64, bool) { return derefFloat(d.avgDifficulty) }
func (d DailyHistoryItem) TotalWords() int                { return d.totalWords }
func (d DailyHistoryItem) NewWords() int                  { return d.newWords }
func (d DailyHistoryItem) KnownWords() int                { return d.knownWords }
func (d DailyHistoryItem) InProgressWords() int           { return d.inProgressWords }
func (d DailyHistoryItem) HighDifficultyWords() int       { return d.highDifficultyWords }
func (d DailyHistoryItem) LessonsCompleted() int          { return d.lessonsCompleted }
func (d DailyHistoryItem) TotalDuration() time.Duration   { return d.totalDuration }

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

func derefFloat(f *float64) (float64, bool) {
	if f == nil {
		return 0, false
	}
	return *f, true
}
