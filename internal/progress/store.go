package progress

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ecoready/backend/internal/kvstore"
	"github.com/ecoready/backend/internal/models"
	"go.uber.org/zap"
)

const (
	QuizHistoryKey  = "quiz_history"
	AchievementsKey = "achievements"
)

// LoadStatus explains why a read came back empty. Anything other than LoadOK
// still yields a usable empty collection.
type LoadStatus string

const (
	LoadOK          LoadStatus = "ok"
	LoadMissing     LoadStatus = "missing"
	LoadCorrupt     LoadStatus = "corrupt"
	LoadUnavailable LoadStatus = "unavailable"
)

// Store persists quiz history and earned achievements as whole JSON arrays.
// Failures are logged and degrade to empty reads or false writes.
type Store struct {
	kv  kvstore.Store
	log *zap.Logger
}

func NewStore(kv kvstore.Store, log *zap.Logger) *Store {
	return &Store{kv: kv, log: log.Named("record_store")}
}

// ── Quiz History ────────────────────────────────────────

func (s *Store) LoadQuizHistory(ctx context.Context) ([]models.QuizResult, LoadStatus) {
	return loadList[models.QuizResult](ctx, s, QuizHistoryKey)
}

func (s *Store) QuizHistory(ctx context.Context) []models.QuizResult {
	history, _ := s.LoadQuizHistory(ctx)
	return history
}

// AppendQuizResult reads the whole history, appends r and writes it back.
// A corrupt history is replaced; an unreachable store is left alone.
func (s *Store) AppendQuizResult(ctx context.Context, r models.QuizResult) bool {
	history, status := s.LoadQuizHistory(ctx)
	if status == LoadUnavailable {
		return false
	}

	history = append(history, r)
	if err := s.saveList(ctx, QuizHistoryKey, history); err != nil {
		s.log.Error("Error saving quiz result", zap.Error(err))
		return false
	}
	return true
}

// ── Achievements ────────────────────────────────────────

func (s *Store) LoadEarnedAchievements(ctx context.Context) ([]models.EarnedAchievement, LoadStatus) {
	return loadList[models.EarnedAchievement](ctx, s, AchievementsKey)
}

func (s *Store) EarnedAchievements(ctx context.Context) []models.EarnedAchievement {
	earned, _ := s.LoadEarnedAchievements(ctx)
	return earned
}

// SaveEarnedAchievements replaces the stored list in a single write.
func (s *Store) SaveEarnedAchievements(ctx context.Context, earned []models.EarnedAchievement) bool {
	if err := s.saveList(ctx, AchievementsKey, earned); err != nil {
		s.log.Error("Error saving achievements", zap.Error(err))
		return false
	}
	return true
}

// ClearAll empties both collections.
func (s *Store) ClearAll(ctx context.Context) bool {
	if err := s.kv.Remove(ctx, QuizHistoryKey, AchievementsKey); err != nil {
		s.log.Error("Error clearing progress", zap.Error(err))
		return false
	}
	return true
}

// ── Helpers ─────────────────────────────────────────────

func loadList[T any](ctx context.Context, s *Store, key string) ([]T, LoadStatus) {
	raw, found, err := s.kv.Get(ctx, key)
	if err != nil {
		s.log.Error("Storage read failed", zap.String("key", key), zap.Error(err))
		return []T{}, LoadUnavailable
	}
	if !found || raw == "" {
		return []T{}, LoadMissing
	}

	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		s.log.Warn("Discarding malformed stored list", zap.String("key", key), zap.Error(err))
		return []T{}, LoadCorrupt
	}
	if items == nil {
		items = []T{}
	}
	return items, LoadOK
}

func (s *Store) saveList(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.kv.Set(ctx, key, string(b))
}
