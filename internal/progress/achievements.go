package progress

import (
	"fmt"

	"github.com/ecoready/backend/internal/models"
)

// AchievementDef defines a single achievement. Requirement decides the unlock;
// Progress reports how far a locked achievement is, for display only.
type AchievementDef struct {
	ID          string
	Name        string
	Description string
	Icon        string
	Requirement func(models.Stats) bool
	Progress    func(models.Stats) (value, target float64, text string)
}

// Achievements is the catalog in evaluation order. Simultaneous unlocks are
// reported in this order.
var Achievements = []AchievementDef{
	{
		ID:          "first_quiz",
		Name:        "First Steps",
		Description: "Complete your first quiz",
		Icon:        "eco",
		Requirement: func(s models.Stats) bool { return s.TotalQuizzes >= 1 },
		Progress: func(s models.Stats) (float64, float64, string) {
			return float64(s.TotalQuizzes), 1, fmt.Sprintf("%d/1 quiz", s.TotalQuizzes)
		},
	},
	{
		ID:          "perfect_score",
		Name:        "Perfect Score",
		Description: "Score 10/10 on a quiz",
		Icon:        "emoji-events",
		Requirement: func(s models.Stats) bool { return s.BestScore == 10 },
		Progress: func(s models.Stats) (float64, float64, string) {
			return float64(s.BestScore), 10, fmt.Sprintf("Best: %d/10", s.BestScore)
		},
	},
	{
		ID:          "consistent_learner",
		Name:        "Consistent Learner",
		Description: "Complete 5 quizzes",
		Icon:        "school",
		Requirement: func(s models.Stats) bool { return s.TotalQuizzes >= 5 },
		Progress: func(s models.Stats) (float64, float64, string) {
			return float64(s.TotalQuizzes), 5, fmt.Sprintf("%d/5 quizzes", s.TotalQuizzes)
		},
	},
	{
		ID:          "dedicated_student",
		Name:        "Dedicated Student",
		Description: "Complete 10 quizzes",
		Icon:        "menu-book",
		Requirement: func(s models.Stats) bool { return s.TotalQuizzes >= 10 },
		Progress: func(s models.Stats) (float64, float64, string) {
			return float64(s.TotalQuizzes), 10, fmt.Sprintf("%d/10 quizzes", s.TotalQuizzes)
		},
	},
	{
		ID:          "eco_expert",
		Name:        "Eco Expert",
		Description: "Maintain an average score above 80%",
		Icon:        "star",
		Requirement: func(s models.Stats) bool { return s.AverageScore >= 8 },
		Progress: func(s models.Stats) (float64, float64, string) {
			return s.AverageScore, 8, fmt.Sprintf("Avg: %.1f/8.0", s.AverageScore)
		},
	},
	{
		ID:          "streak_3",
		Name:        "3-Day Streak",
		Description: "Take quizzes on 3 consecutive days",
		Icon:        "local-fire-department",
		Requirement: func(s models.Stats) bool { return s.CurrentStreak >= 3 },
		Progress: func(s models.Stats) (float64, float64, string) {
			return float64(s.CurrentStreak), 3, fmt.Sprintf("%d/3 days", s.CurrentStreak)
		},
	},
	{
		ID:          "streak_7",
		Name:        "7-Day Streak",
		Description: "Take quizzes on 7 consecutive days",
		Icon:        "whatshot",
		Requirement: func(s models.Stats) bool { return s.CurrentStreak >= 7 },
		Progress: func(s models.Stats) (float64, float64, string) {
			return float64(s.CurrentStreak), 7, fmt.Sprintf("%d/7 days", s.CurrentStreak)
		},
	},
	{
		ID:          "high_achiever",
		Name:        "High Achiever",
		Description: "Score 9 or 10 on five different quizzes",
		Icon:        "workspace-premium",
		Requirement: func(s models.Stats) bool { return countHighScores(s.QuizHistory) >= 5 },
		Progress: func(s models.Stats) (float64, float64, string) {
			n := countHighScores(s.QuizHistory)
			return float64(n), 5, fmt.Sprintf("%d/5 high scores", n)
		},
	},
}

// LookupAchievement returns the catalog entry for id.
func LookupAchievement(id string) (AchievementDef, bool) {
	for _, def := range Achievements {
		if def.ID == id {
			return def, true
		}
	}
	return AchievementDef{}, false
}

// countHighScores walks the whole history on every call.
func countHighScores(history []models.QuizResult) int {
	n := 0
	for _, q := range history {
		if q.Score >= 9 {
			n++
		}
	}
	return n
}
