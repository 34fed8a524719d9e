package progress

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ecoready/backend/internal/kvstore"
	"github.com/ecoready/backend/internal/models"
	"go.uber.org/zap"
)

// ── Test Doubles ────────────────────────────────────────

type recordingNotifier struct {
	mu    sync.Mutex
	names []string
	err   error
}

func (n *recordingNotifier) SendAchievementNotification(_ context.Context, name, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.names = append(n.names, name)
	return n.err
}

func (n *recordingNotifier) sent() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.names...)
}

// keyFailStore fails reads or writes of a single key.
type keyFailStore struct {
	*kvstore.MemoryStore
	key     string
	failGet bool
	failSet bool
}

func (s *keyFailStore) Get(ctx context.Context, key string) (string, bool, error) {
	if s.failGet && key == s.key {
		return "", false, errStorageDown
	}
	return s.MemoryStore.Get(ctx, key)
}

func (s *keyFailStore) Set(ctx context.Context, key, value string) error {
	if s.failSet && key == s.key {
		return errStorageDown
	}
	return s.MemoryStore.Set(ctx, key, value)
}

func newTestService(kv kvstore.Store, notifier Notifier) *Service {
	return NewService(NewStore(kv, zap.NewNop()), notifier, zap.NewNop(),
		WithClock(func() time.Time { return testNow }))
}

func ids(list []models.EarnedAchievement) []string {
	out := make([]string, len(list))
	for i, a := range list {
		out[i] = a.ID
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ── CompleteQuiz ────────────────────────────────────────

func TestCompleteQuiz_FirstPerfectQuiz(t *testing.T) {
	ctx := context.Background()
	notifier := &recordingNotifier{}
	svc := newTestService(kvstore.NewMemoryStore(), notifier)

	got := svc.CompleteQuiz(ctx, models.QuizSubmission{Score: 10, TotalQuestions: 10})

	if !got.Saved {
		t.Fatal("Saved = false, want true")
	}
	if got.Result.Percentage != 100 {
		t.Errorf("Percentage = %d, want 100", got.Result.Percentage)
	}
	if got.Result.Date != "19-10-2026" {
		t.Errorf("Date = %q, want 19-10-2026", got.Result.Date)
	}
	if got.Result.Timestamp != testNow.UnixMilli() {
		t.Errorf("Timestamp = %d, want %d", got.Result.Timestamp, testNow.UnixMilli())
	}
	if got.Result.Answers == nil {
		t.Error("Answers is nil, want empty slice")
	}

	want := []string{"first_quiz", "perfect_score", "eco_expert"}
	if !equalStrings(ids(got.Unlocked), want) {
		t.Errorf("unlocked = %v, want %v", ids(got.Unlocked), want)
	}
	for _, a := range got.Unlocked {
		if a.Date != "2026-10-19T15:30:00.000Z" {
			t.Errorf("%s unlock date = %q, want 2026-10-19T15:30:00.000Z", a.ID, a.Date)
		}
	}

	wantSent := []string{"First Steps", "Perfect Score", "Eco Expert"}
	if !equalStrings(notifier.sent(), wantSent) {
		t.Errorf("notifications = %v, want %v", notifier.sent(), wantSent)
	}
}

func TestCompleteQuiz_PercentageRounding(t *testing.T) {
	tests := []struct {
		score, total, want int
	}{
		{2, 3, 67},
		{1, 3, 33},
		{1, 8, 13},
		{0, 5, 0},
		{7, 7, 100},
	}

	for _, tt := range tests {
		svc := newTestService(kvstore.NewMemoryStore(), nil)
		got := svc.CompleteQuiz(context.Background(), models.QuizSubmission{Score: tt.score, TotalQuestions: tt.total})
		if got.Result.Percentage != tt.want {
			t.Errorf("%d/%d percentage = %d, want %d", tt.score, tt.total, got.Result.Percentage, tt.want)
		}
	}
}

func TestCompleteQuiz_KeepsAnswersAndDate(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(kvstore.NewMemoryStore(), nil)

	answers := []models.QuizAnswer{
		{Question: "Which bin takes glass?", SelectedAnswer: "Green", CorrectAnswer: "Green", IsCorrect: true},
	}
	svc.CompleteQuiz(ctx, models.QuizSubmission{Score: 1, TotalQuestions: 1, Answers: answers, Date: "01-10-2026"})

	history := svc.QuizHistory(ctx)
	if len(history) != 1 {
		t.Fatalf("history has %d records, want 1", len(history))
	}
	if history[0].Date != "01-10-2026" {
		t.Errorf("Date = %q, want 01-10-2026", history[0].Date)
	}
	if len(history[0].Answers) != 1 || !history[0].Answers[0].IsCorrect {
		t.Errorf("Answers = %+v, want the submitted answer", history[0].Answers)
	}
}

func TestCompleteQuiz_StorageUnavailable(t *testing.T) {
	kv := kvstore.NewMemoryStore()
	kv.FailWith(errStorageDown)
	notifier := &recordingNotifier{}
	svc := newTestService(kv, notifier)

	got := svc.CompleteQuiz(context.Background(), models.QuizSubmission{Score: 10, TotalQuestions: 10})

	if got.Saved {
		t.Error("Saved = true while storage is down")
	}
	if got.Unlocked == nil || len(got.Unlocked) != 0 {
		t.Errorf("Unlocked = %v, want empty slice", got.Unlocked)
	}
	if len(notifier.sent()) != 0 {
		t.Errorf("notifications sent for an unsaved quiz: %v", notifier.sent())
	}
}

// ── CheckAndUnlock ──────────────────────────────────────

func TestCheckAndUnlock_Idempotent(t *testing.T) {
	ctx := context.Background()
	notifier := &recordingNotifier{}
	svc := newTestService(kvstore.NewMemoryStore(), notifier)
	svc.CompleteQuiz(ctx, models.QuizSubmission{Score: 10, TotalQuestions: 10})

	if again := svc.CheckAndUnlock(ctx); len(again) != 0 {
		t.Errorf("second check unlocked %v, want nothing", ids(again))
	}
	if earned := svc.EarnedAchievements(ctx); len(earned) != 3 {
		t.Errorf("earned %d achievements, want 3", len(earned))
	}
	if n := len(notifier.sent()); n != 3 {
		t.Errorf("sent %d notifications, want 3", n)
	}
}

func TestCheckAndUnlock_SimultaneousUnlocksInCatalogOrder(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(kvstore.NewMemoryStore(), nil)

	for i := 0; i < 9; i++ {
		svc.CompleteQuiz(ctx, models.QuizSubmission{Score: 5, TotalQuestions: 10})
	}
	got := svc.CompleteQuiz(ctx, models.QuizSubmission{Score: 10, TotalQuestions: 10})

	want := []string{"perfect_score", "dedicated_student"}
	if !equalStrings(ids(got.Unlocked), want) {
		t.Errorf("unlocked = %v, want %v", ids(got.Unlocked), want)
	}

	wantEarned := []string{"first_quiz", "consistent_learner", "perfect_score", "dedicated_student"}
	if earned := ids(svc.EarnedAchievements(ctx)); !equalStrings(earned, wantEarned) {
		t.Errorf("earned = %v, want %v", earned, wantEarned)
	}
}

func TestCheckAndUnlock_Streak(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(kvstore.NewMemoryStore(), nil)

	svc.CompleteQuiz(ctx, models.QuizSubmission{Score: 5, TotalQuestions: 10, Date: "17-10-2026"})
	second := svc.CompleteQuiz(ctx, models.QuizSubmission{Score: 5, TotalQuestions: 10, Date: "18-10-2026"})
	third := svc.CompleteQuiz(ctx, models.QuizSubmission{Score: 5, TotalQuestions: 10, Date: "19-10-2026"})

	if len(second.Unlocked) != 0 {
		t.Errorf("second quiz unlocked %v, want nothing", ids(second.Unlocked))
	}
	if !equalStrings(ids(third.Unlocked), []string{"streak_3"}) {
		t.Errorf("third quiz unlocked %v, want [streak_3]", ids(third.Unlocked))
	}

	stats := svc.CalculateStats(ctx)
	if stats.CurrentStreak != 3 || stats.LongestStreak != 3 {
		t.Errorf("streaks = %d/%d, want 3/3", stats.CurrentStreak, stats.LongestStreak)
	}
}

func TestCheckAndUnlock_NeverRevokes(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(kvstore.NewMemoryStore(), nil)

	svc.CompleteQuiz(ctx, models.QuizSubmission{Score: 10, TotalQuestions: 10})
	svc.CompleteQuiz(ctx, models.QuizSubmission{Score: 2, TotalQuestions: 10})
	svc.CompleteQuiz(ctx, models.QuizSubmission{Score: 2, TotalQuestions: 10})

	if avg := svc.CalculateStats(ctx).AverageScore; avg != 4.7 {
		t.Fatalf("AverageScore = %v, want 4.7", avg)
	}

	for _, st := range svc.GetAllAchievements(ctx) {
		if st.ID == "eco_expert" && !st.Unlocked {
			t.Error("eco_expert was revoked after the average dropped")
		}
	}
	for _, p := range svc.GetAchievementProgress(ctx) {
		if p.ID == "eco_expert" {
			t.Error("eco_expert should not appear in progress once unlocked")
		}
	}
}

func TestCheckAndUnlock_NotificationFailureKeepsUnlock(t *testing.T) {
	ctx := context.Background()
	notifier := &recordingNotifier{err: errors.New("push service down")}
	svc := newTestService(kvstore.NewMemoryStore(), notifier)

	got := svc.CompleteQuiz(ctx, models.QuizSubmission{Score: 3, TotalQuestions: 10})

	if !equalStrings(ids(got.Unlocked), []string{"first_quiz"}) {
		t.Errorf("unlocked = %v, want [first_quiz]", ids(got.Unlocked))
	}
	if earned := ids(svc.EarnedAchievements(ctx)); !equalStrings(earned, []string{"first_quiz"}) {
		t.Errorf("earned = %v, want [first_quiz]", earned)
	}
}

func TestCheckAndUnlock_SaveFailureReportsNothing(t *testing.T) {
	ctx := context.Background()
	kv := &keyFailStore{MemoryStore: kvstore.NewMemoryStore(), key: AchievementsKey, failSet: true}
	notifier := &recordingNotifier{}
	svc := newTestService(kv, notifier)

	got := svc.CompleteQuiz(ctx, models.QuizSubmission{Score: 10, TotalQuestions: 10})

	if !got.Saved {
		t.Fatal("quiz result should still be saved")
	}
	if len(got.Unlocked) != 0 {
		t.Errorf("unlocked = %v, want nothing when the save fails", ids(got.Unlocked))
	}
	if len(notifier.sent()) != 0 {
		t.Errorf("notifications sent for unsaved unlocks: %v", notifier.sent())
	}

	kv.failSet = false
	if retry := svc.CheckAndUnlock(ctx); len(retry) != 3 {
		t.Errorf("retry unlocked %v, want 3 achievements", ids(retry))
	}
}

func TestCheckAndUnlock_SkipsWhenEarnedListUnreadable(t *testing.T) {
	ctx := context.Background()
	kv := &keyFailStore{MemoryStore: kvstore.NewMemoryStore(), key: AchievementsKey}
	svc := newTestService(kv, nil)
	svc.CompleteQuiz(ctx, models.QuizSubmission{Score: 4, TotalQuestions: 10})
	svc.CompleteQuiz(ctx, models.QuizSubmission{Score: 4, TotalQuestions: 10})

	kv.failGet = true
	for i := 0; i < 3; i++ {
		svc.CompleteQuiz(ctx, models.QuizSubmission{Score: 4, TotalQuestions: 10})
	}
	kv.failGet = false

	if earned := ids(svc.EarnedAchievements(ctx)); !equalStrings(earned, []string{"first_quiz"}) {
		t.Errorf("earned = %v, want [first_quiz] untouched", earned)
	}
	if got := svc.CheckAndUnlock(ctx); !equalStrings(ids(got), []string{"consistent_learner"}) {
		t.Errorf("unlocked = %v, want [consistent_learner]", ids(got))
	}
}

func TestCompleteQuiz_Concurrent(t *testing.T) {
	ctx := context.Background()
	notifier := &recordingNotifier{}
	svc := newTestService(kvstore.NewMemoryStore(), notifier)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.CompleteQuiz(ctx, models.QuizSubmission{Score: 5, TotalQuestions: 10})
		}()
	}
	wg.Wait()

	if n := len(svc.QuizHistory(ctx)); n != 20 {
		t.Errorf("history has %d records, want 20", n)
	}
	wantEarned := []string{"first_quiz", "consistent_learner", "dedicated_student"}
	if earned := ids(svc.EarnedAchievements(ctx)); !equalStrings(earned, wantEarned) {
		t.Errorf("earned = %v, want %v", earned, wantEarned)
	}
	if n := len(notifier.sent()); n != 3 {
		t.Errorf("sent %d notifications, want 3", n)
	}
}

// ── Queries ─────────────────────────────────────────────

func TestGetAllAchievements(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(kvstore.NewMemoryStore(), nil)
	svc.CompleteQuiz(ctx, models.QuizSubmission{Score: 6, TotalQuestions: 10})

	statuses := svc.GetAllAchievements(ctx)
	if len(statuses) != len(Achievements) {
		t.Fatalf("got %d statuses, want %d", len(statuses), len(Achievements))
	}
	for i, st := range statuses {
		if st.ID != Achievements[i].ID {
			t.Errorf("status %d = %s, want %s", i, st.ID, Achievements[i].ID)
		}
		switch st.ID {
		case "first_quiz":
			if !st.Unlocked || st.UnlockedDate == nil || *st.UnlockedDate != "2026-10-19T15:30:00.000Z" {
				t.Errorf("first_quiz = %+v, want unlocked with date", st)
			}
		default:
			if st.Unlocked || st.UnlockedDate != nil {
				t.Errorf("%s should be locked", st.ID)
			}
		}
	}
}

func TestGetAchievementProgress(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(kvstore.NewMemoryStore(), nil)
	svc.CompleteQuiz(ctx, models.QuizSubmission{Score: 6, TotalQuestions: 10})

	got := svc.GetAchievementProgress(ctx)

	wantOrder := []string{
		"eco_expert", "perfect_score", "streak_3", "consistent_learner",
		"streak_7", "dedicated_student", "high_achiever",
	}
	if len(got) != len(wantOrder) {
		t.Fatalf("got %d entries, want %d", len(got), len(wantOrder))
	}
	for i, id := range wantOrder {
		if got[i].ID != id {
			t.Errorf("entry %d = %s, want %s", i, got[i].ID, id)
		}
	}
	if got[0].ProgressPercentage != 75 || got[0].ProgressText != "Avg: 6.0/8.0" {
		t.Errorf("eco_expert = %v%% %q, want 75%% %q", got[0].ProgressPercentage, got[0].ProgressText, "Avg: 6.0/8.0")
	}
}

func TestClearAll(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(kvstore.NewMemoryStore(), nil)
	svc.CompleteQuiz(ctx, models.QuizSubmission{Score: 10, TotalQuestions: 10})

	if !svc.ClearAll(ctx) {
		t.Fatal("ClearAll returned false")
	}

	if stats := svc.CalculateStats(ctx); stats.TotalQuizzes != 0 {
		t.Errorf("TotalQuizzes = %d after clear, want 0", stats.TotalQuizzes)
	}
	for _, st := range svc.GetAllAchievements(ctx) {
		if st.Unlocked {
			t.Errorf("%s still unlocked after clear", st.ID)
		}
	}

	got := svc.CompleteQuiz(ctx, models.QuizSubmission{Score: 10, TotalQuestions: 10})
	if len(got.Unlocked) != 3 {
		t.Errorf("unlocked %v after clear, want the first-quiz set again", ids(got.Unlocked))
	}
}
