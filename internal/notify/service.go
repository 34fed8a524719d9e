// Package notify is the achievement notification collaborator. It honours the
// user's notification settings, hands messages to a Sender and keeps a short
// history of what was sent.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ecoready/backend/internal/kvstore"
	"github.com/ecoready/backend/internal/models"
	"github.com/ecoready/backend/internal/progress"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const (
	SettingsKey = "user_notification_settings"
	HistoryKey  = "notification_history"

	// MaxHistory is how many entries the history keeps, newest first.
	MaxHistory = 50

	achievementTitle = "🏆 Achievement Unlocked!"
)

var ErrInvalidPreferredTime = errors.New("preferredTime must be HH:MM")

// DefaultSettings applies when nothing usable is stored.
func DefaultSettings() models.NotificationSettings {
	return models.NotificationSettings{
		Enabled:       true,
		DailyTips:     true,
		QuizReminders: true,
		Achievements:  true,
		PreferredTime: "09:00",
	}
}

// Message is what a Sender delivers.
type Message struct {
	Type  string
	Title string
	Body  string
}

// Sender delivers a message to the device. Delivery itself lives outside
// this service.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

var _ progress.Notifier = (*Service)(nil)

type Service struct {
	kv       kvstore.Store
	sender   Sender
	validate *validator.Validate
	log      *zap.Logger
	now      func() time.Time
}

func NewService(kv kvstore.Store, sender Sender, log *zap.Logger) *Service {
	return &Service{
		kv:       kv,
		sender:   sender,
		validate: validator.New(),
		log:      log.Named("notify"),
		now:      time.Now,
	}
}

// ── Settings ────────────────────────────────────────────

func (s *Service) GetSettings(ctx context.Context) models.NotificationSettings {
	raw, found, err := s.kv.Get(ctx, SettingsKey)
	if err != nil {
		s.log.Error("Error getting notification settings", zap.Error(err))
		return DefaultSettings()
	}
	if !found {
		return DefaultSettings()
	}

	var settings models.NotificationSettings
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		s.log.Warn("Discarding malformed notification settings", zap.Error(err))
		return DefaultSettings()
	}
	return settings
}

func (s *Service) SaveSettings(ctx context.Context, settings models.NotificationSettings) error {
	if err := s.validate.Struct(settings); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return ErrInvalidPreferredTime
		}
		return fmt.Errorf("validate settings: %w", err)
	}
	b, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := s.kv.Set(ctx, SettingsKey, string(b)); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// ── Achievement Notifications ───────────────────────────

// SendAchievementNotification announces an unlock unless the user turned
// achievement alerts off.
func (s *Service) SendAchievementNotification(ctx context.Context, name, description string) error {
	settings := s.GetSettings(ctx)
	if !settings.Enabled || !settings.Achievements {
		return nil
	}

	msg := Message{
		Type:  models.NotificationAchievement,
		Title: achievementTitle,
		Body:  fmt.Sprintf("%s: %s", name, description),
	}

	if err := s.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("send achievement notification: %w", err)
	}

	if err := s.logNotification(ctx, msg); err != nil {
		s.log.Warn("Error logging notification", zap.Error(err))
	}
	return nil
}

// ── History ─────────────────────────────────────────────

func (s *Service) History(ctx context.Context) []models.NotificationEntry {
	raw, found, err := s.kv.Get(ctx, HistoryKey)
	if err != nil {
		s.log.Error("Error getting notification history", zap.Error(err))
		return []models.NotificationEntry{}
	}
	if !found {
		return []models.NotificationEntry{}
	}

	var history []models.NotificationEntry
	if err := json.Unmarshal([]byte(raw), &history); err != nil {
		s.log.Warn("Discarding malformed notification history", zap.Error(err))
		return []models.NotificationEntry{}
	}
	if history == nil {
		return []models.NotificationEntry{}
	}
	return history
}

func (s *Service) ClearHistory(ctx context.Context) error {
	if err := s.kv.Set(ctx, HistoryKey, "[]"); err != nil {
		return fmt.Errorf("clear notification history: %w", err)
	}
	return nil
}

func (s *Service) logNotification(ctx context.Context, msg Message) error {
	entry := models.NotificationEntry{
		Type:      msg.Type,
		Title:     msg.Title,
		Body:      msg.Body,
		Timestamp: progress.FormatDateTimeDM(s.now()),
	}

	history := append([]models.NotificationEntry{entry}, s.History(ctx)...)
	if len(history) > MaxHistory {
		history = history[:MaxHistory]
	}

	b, err := json.Marshal(history)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, HistoryKey, string(b))
}
