package models

// ── Persisted Types ──────────────────────────────────────
//
// These are stored verbatim as JSON arrays in the key-value store, so the
// json tags must match what the app already writes.

type QuizResult struct {
	Score          int          `json:"score"`
	TotalQuestions int          `json:"totalQuestions"`
	Percentage     int          `json:"percentage"`
	Answers        []QuizAnswer `json:"answers"`
	Date           string       `json:"date"`
	Timestamp      int64        `json:"timestamp"`
}

type QuizAnswer struct {
	Question       string `json:"question"`
	SelectedAnswer string `json:"selectedAnswer"`
	CorrectAnswer  string `json:"correctAnswer"`
	IsCorrect      bool   `json:"isCorrect"`
	Explanation    string `json:"explanation,omitempty"`
}

// EarnedAchievement is a snapshot taken at unlock time. Name, description and
// icon are copied so later catalog edits do not rewrite history.
type EarnedAchievement struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Date        string `json:"date"`
}

// ── Derived Types ────────────────────────────────────────

type Stats struct {
	TotalQuizzes  int          `json:"totalQuizzes"`
	AverageScore  float64      `json:"averageScore"`
	BestScore     int          `json:"bestScore"`
	CurrentStreak int          `json:"currentStreak"`
	LongestStreak int          `json:"longestStreak"`
	QuizHistory   []QuizResult `json:"quizHistory"`
}

type AchievementStatus struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Icon         string  `json:"icon"`
	Unlocked     bool    `json:"unlocked"`
	UnlockedDate *string `json:"unlockedDate"`
}

type AchievementProgress struct {
	AchievementStatus
	ProgressValue      float64 `json:"progressValue"`
	ProgressMax        float64 `json:"progressMax"`
	ProgressText       string  `json:"progressText"`
	ProgressPercentage float64 `json:"progressPercentage"`
}

// ── Request Types ────────────────────────────────────────

type QuizSubmission struct {
	Score          int          `json:"score" validate:"gte=0,ltefield=TotalQuestions"`
	TotalQuestions int          `json:"totalQuestions" validate:"gt=0"`
	Answers        []QuizAnswer `json:"answers"`
	Date           string       `json:"date,omitempty"`
}

// ── Response Types ───────────────────────────────────────

type QuizCompletion struct {
	Saved    bool                `json:"saved"`
	Result   QuizResult          `json:"result"`
	Unlocked []EarnedAchievement `json:"unlocked"`
}
