package models

type NotificationSettings struct {
	Enabled       bool   `json:"enabled"`
	DailyTips     bool   `json:"dailyTips"`
	QuizReminders bool   `json:"quizReminders"`
	Achievements  bool   `json:"achievements"`
	PreferredTime string `json:"preferredTime" validate:"datetime=15:04"`
}

type NotificationEntry struct {
	Type      string `json:"type"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Timestamp string `json:"timestamp"`
}

const NotificationAchievement = "achievement"
