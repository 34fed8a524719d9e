package progress

import (
	"math"
	"sort"
	"time"

	"github.com/ecoready/backend/internal/models"
)

// CalculateStats reduces the full quiz history to summary statistics. It is
// pure: now only anchors "today" for the current streak.
func CalculateStats(history []models.QuizResult, now time.Time) models.Stats {
	if len(history) == 0 {
		return models.Stats{QuizHistory: []models.QuizResult{}}
	}

	totalScore := 0
	bestScore := history[0].Score
	for _, q := range history {
		totalScore += q.Score
		if q.Score > bestScore {
			bestScore = q.Score
		}
	}

	currentStreak, longestStreak := calculateStreaks(history, now)

	return models.Stats{
		TotalQuizzes:  len(history),
		AverageScore:  roundToTenth(float64(totalScore) / float64(len(history))),
		BestScore:     bestScore,
		CurrentStreak: currentStreak,
		LongestStreak: longestStreak,
		QuizHistory:   history,
	}
}

// calculateStreaks counts runs of consecutive calendar days. Several quizzes
// on one day count once; a gap resets the run but not the longest streak.
// The run only counts as current if the last quiz was today or yesterday.
// Records with unparseable dates are left out of the walk.
func calculateStreaks(history []models.QuizResult, now time.Time) (current, longest int) {
	days := make([]time.Time, 0, len(history))
	for _, q := range history {
		if d, ok := ParseQuizDate(q.Date, now); ok {
			days = append(days, d)
		}
	}
	if len(days) == 0 {
		return 0, 0
	}

	sort.SliceStable(days, func(i, j int) bool { return days[i].Before(days[j]) })

	longest = 1
	run := 1
	for i := 1; i < len(days); i++ {
		switch diff := daysBetween(days[i-1], days[i]); {
		case diff == 1:
			run++
			if run > longest {
				longest = run
			}
		case diff == 0:
			// same day
		default:
			run = 1
		}
	}

	if daysBetween(days[len(days)-1], now) <= 1 {
		current = run
	}
	return current, longest
}

func roundToTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
