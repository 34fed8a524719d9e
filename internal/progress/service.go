package progress

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/ecoready/backend/internal/models"
	"go.uber.org/zap"
)

// isoMillis matches the unlock timestamps the app already stores.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// Notifier announces an unlocked achievement. Delivery is best effort.
type Notifier interface {
	SendAchievementNotification(ctx context.Context, name, description string) error
}

type Service struct {
	store    *Store
	notifier Notifier
	log      *zap.Logger
	now      func() time.Time

	// mu serializes read-modify-write cycles on the record store.
	mu sync.Mutex
}

type Option func(*Service)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store *Store, notifier Notifier, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		store:    store,
		notifier: notifier,
		log:      log.Named("progress"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ── Quiz Completion ─────────────────────────────────────

// CompleteQuiz records a finished quiz and, if it was saved, unlocks any
// achievements it earned.
func (s *Service) CompleteQuiz(ctx context.Context, sub models.QuizSubmission) models.QuizCompletion {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	result := models.QuizResult{
		Score:          sub.Score,
		TotalQuestions: sub.TotalQuestions,
		Percentage:     scorePercentage(sub.Score, sub.TotalQuestions),
		Answers:        sub.Answers,
		Date:           sub.Date,
		Timestamp:      now.UnixMilli(),
	}
	if result.Answers == nil {
		result.Answers = []models.QuizAnswer{}
	}
	if result.Date == "" {
		result.Date = FormatDateDMY(now)
	}

	if !s.store.AppendQuizResult(ctx, result) {
		return models.QuizCompletion{Saved: false, Result: result, Unlocked: []models.EarnedAchievement{}}
	}

	s.log.Debug("Quiz result saved",
		zap.Int("score", result.Score),
		zap.Int("total_questions", result.TotalQuestions),
		zap.String("date", result.Date),
	)

	return models.QuizCompletion{
		Saved:    true,
		Result:   result,
		Unlocked: s.checkAndUnlock(ctx),
	}
}

func scorePercentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(total) * 100))
}

// ── Stats ───────────────────────────────────────────────

// CalculateStats recomputes statistics from the stored history.
func (s *Service) CalculateStats(ctx context.Context) models.Stats {
	return CalculateStats(s.store.QuizHistory(ctx), s.now())
}

func (s *Service) QuizHistory(ctx context.Context) []models.QuizResult {
	return s.store.QuizHistory(ctx)
}

// ── Achievements ────────────────────────────────────────

// CheckAndUnlock evaluates every achievement not yet earned and persists the
// new ones. Calling it again without new results returns nothing.
func (s *Service) CheckAndUnlock(ctx context.Context) []models.EarnedAchievement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkAndUnlock(ctx)
}

func (s *Service) checkAndUnlock(ctx context.Context) []models.EarnedAchievement {
	now := s.now()
	stats := CalculateStats(s.store.QuizHistory(ctx), now)

	earned, status := s.store.LoadEarnedAchievements(ctx)
	if status == LoadUnavailable {
		// Writing now could drop unlocks we failed to read.
		return []models.EarnedAchievement{}
	}

	earnedIDs := make(map[string]bool, len(earned))
	for _, a := range earned {
		earnedIDs[a.ID] = true
	}

	newlyUnlocked := []models.EarnedAchievement{}
	for _, def := range Achievements {
		if earnedIDs[def.ID] || !def.Requirement(stats) {
			continue
		}
		a := models.EarnedAchievement{
			ID:          def.ID,
			Name:        def.Name,
			Description: def.Description,
			Icon:        def.Icon,
			Date:        now.UTC().Format(isoMillis),
		}
		earned = append(earned, a)
		newlyUnlocked = append(newlyUnlocked, a)
	}

	if len(newlyUnlocked) == 0 {
		return newlyUnlocked
	}

	if !s.store.SaveEarnedAchievements(ctx, earned) {
		return []models.EarnedAchievement{}
	}

	for _, a := range newlyUnlocked {
		s.log.Info("Achievement unlocked", zap.String("id", a.ID))
		s.notify(ctx, a)
	}

	return newlyUnlocked
}

// notify runs after the unlock is committed; its failure only gets logged.
func (s *Service) notify(ctx context.Context, a models.EarnedAchievement) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.SendAchievementNotification(ctx, a.Name, a.Description); err != nil {
		s.log.Warn("Achievement notification failed", zap.String("id", a.ID), zap.Error(err))
	}
}

func (s *Service) EarnedAchievements(ctx context.Context) []models.EarnedAchievement {
	return s.store.EarnedAchievements(ctx)
}

// GetAllAchievements returns the catalog with unlock status and date.
func (s *Service) GetAllAchievements(ctx context.Context) []models.AchievementStatus {
	unlockedAt := make(map[string]string)
	for _, a := range s.store.EarnedAchievements(ctx) {
		if _, seen := unlockedAt[a.ID]; !seen {
			unlockedAt[a.ID] = a.Date
		}
	}

	statuses := make([]models.AchievementStatus, 0, len(Achievements))
	for _, def := range Achievements {
		st := models.AchievementStatus{
			ID:          def.ID,
			Name:        def.Name,
			Description: def.Description,
			Icon:        def.Icon,
		}
		if date, ok := unlockedAt[def.ID]; ok {
			st.Unlocked = true
			st.UnlockedDate = &date
		}
		statuses = append(statuses, st)
	}
	return statuses
}

// GetAchievementProgress returns progress toward each locked achievement.
func (s *Service) GetAchievementProgress(ctx context.Context) []models.AchievementProgress {
	stats := s.CalculateStats(ctx)
	return ProjectProgress(stats, s.GetAllAchievements(ctx))
}

// ── Reset ───────────────────────────────────────────────

func (s *Service) ClearAll(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.ClearAll(ctx)
}
