package progress_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/vimgym/internal/content"
	"github.com/zjrosen/vimgym/internal/progress"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Load(ctx context.Context, userID string) (*progress.Progress, error) {
	args := m.Called(ctx, userID)
	p, _ := args.Get(0).(*progress.Progress)
	return p, args.Error(1)
}

func (m *mockRepo) Save(ctx context.Context, p *progress.Progress) error {
	return m.Called(ctx, p).Error(0)
}

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

func newTracker(t *testing.T) (*progress.Tracker, *mockRepo, *content.Registry) {
	t.Helper()
	reg, err := content.NewRegistry()
	require.NoError(t, err)
	repo := new(mockRepo)
	repo.On("Load", mock.Anything, "u1").Return(nil, &progress.NotFoundError{UserID: "u1"})
	repo.On("Save", mock.Anything, mock.Anything).Return(nil)
	tr, err := progress.Load(context.Background(), repo, reg, "u1", clock)
	require.NoError(t, err)
	return tr, repo, reg
}

func TestLoadStartsEmptyRecord(t *testing.T) {
	tr, _, _ := newTracker(t)
	p := tr.Progress()
	require.Equal(t, "u1", p.UserID)
	require.Empty(t, p.Modules)
}

func TestLoadPropagatesErrors(t *testing.T) {
	repo := new(mockRepo)
	boom := errors.New("locked")
	repo.On("Load", mock.Anything, "u1").Return(nil, boom)
	_, err := progress.Load(context.Background(), repo, nil, "u1", clock)
	require.ErrorIs(t, err, boom)
}

func TestRecordLessonCompletesModule(t *testing.T) {
	tr, repo, reg := newTracker(t)
	ctx := context.Background()
	basics, err := reg.Module("basics")
	require.NoError(t, err)

	require.Equal(t, progress.StatusAvailable, tr.Status("basics"))
	require.Equal(t, progress.StatusLocked, tr.Status("movement"))

	achs, err := tr.RecordLesson(ctx, progress.Attempt{
		ModuleID: "basics", LessonID: basics.Lessons[0].ID,
		Score: 100, Duration: time.Minute, Commands: []string{"i", "<Esc>", "i"},
	})
	require.NoError(t, err)
	ids := achievementIDs(achs)
	require.ElementsMatch(t, []string{progress.AchievementFirstLesson, progress.AchievementPerfectScore, progress.AchievementNoHints}, ids)

	mp := tr.Progress().Modules["basics"]
	require.Equal(t, progress.StatusInProgress, mp.Status)
	require.InDelta(t, 100.0/float64(len(basics.Lessons)), mp.Completion, 1e-9)
	require.Equal(t, []string{"<Esc>", "i"}, mp.Lessons[basics.Lessons[0].ID].CommandsPracticed)

	for _, l := range basics.Lessons[1:] {
		achs, err = tr.RecordLesson(ctx, progress.Attempt{ModuleID: "basics", LessonID: l.ID, Score: 85, HintsUsed: 1})
		require.NoError(t, err)
	}
	require.Equal(t, []string{progress.ModuleAchievement("basics")}, achievementIDs(achs))
	require.True(t, tr.ModuleCompleted("basics"))
	require.Equal(t, progress.StatusCompleted, tr.Status("basics"))
	require.Equal(t, progress.StatusAvailable, tr.Status("movement"))

	repo.AssertNumberOfCalls(t, "Save", len(basics.Lessons))
}

func TestFailingAttemptKeepsBestScore(t *testing.T) {
	tr, _, _ := newTracker(t)
	ctx := context.Background()

	_, err := tr.RecordLesson(ctx, progress.Attempt{ModuleID: "basics", LessonID: "basics-modes", Score: 60, Mistakes: 3})
	require.NoError(t, err)
	require.False(t, tr.LessonCompleted("basics", "basics-modes"))

	achs, err := tr.RecordLesson(ctx, progress.Attempt{ModuleID: "basics", LessonID: "basics-modes", Score: 40})
	require.NoError(t, err)
	require.Empty(t, achs)

	lp := tr.Progress().Modules["basics"].Lessons["basics-modes"]
	require.Equal(t, 2, lp.Attempts)
	require.Equal(t, 60, lp.BestScore)
	require.Equal(t, now, lp.FirstAttempted)
}

func TestAchievementsAreAwardedOnce(t *testing.T) {
	tr, _, _ := newTracker(t)
	ctx := context.Background()
	a := progress.Attempt{ModuleID: "basics", LessonID: "basics-modes", Score: 90}
	first, err := tr.RecordLesson(ctx, a)
	require.NoError(t, err)
	require.NotEmpty(t, first)
	again, err := tr.RecordLesson(ctx, a)
	require.NoError(t, err)
	require.Empty(t, again)
}

func TestSaveFailureIsReturned(t *testing.T) {
	reg, err := content.NewRegistry()
	require.NoError(t, err)
	repo := new(mockRepo)
	repo.On("Load", mock.Anything, "u1").Return(progress.New("u1"), nil)
	repo.On("Save", mock.Anything, mock.Anything).Return(errors.New("read-only"))
	tr, err := progress.Load(context.Background(), repo, reg, "u1", clock)
	require.NoError(t, err)

	require.Error(t, tr.StartModule(context.Background(), "basics"))
}

func TestSummary(t *testing.T) {
	tr, _, reg := newTracker(t)
	ctx := context.Background()
	require.NoError(t, tr.StartModule(ctx, "basics"))
	_, err := tr.RecordLesson(ctx, progress.Attempt{ModuleID: "basics", LessonID: "basics-modes", Score: 80, Duration: 2 * time.Minute})
	require.NoError(t, err)

	s := tr.Summary()
	total := 0
	for _, m := range reg.Modules() {
		total += len(m.Lessons)
	}
	require.Equal(t, 4, s.TotalModules)
	require.Equal(t, total, s.TotalLessons)
	require.Equal(t, 1, s.CompletedLessons)
	require.Equal(t, 2*time.Minute, s.TotalTime)
	require.InDelta(t, 100/float64(total), s.OverallCompletion, 1e-9)
	require.Equal(t, progress.StatusInProgress, s.Modules[0].Status)
	require.Equal(t, progress.StatusLocked, s.Modules[1].Status)
}

func TestAchievementTitle(t *testing.T) {
	require.Equal(t, "First Steps", progress.AchievementTitle(progress.AchievementFirstLesson))
	require.Equal(t, "Completed basics", progress.AchievementTitle(progress.ModuleAchievement("basics")))
	require.Equal(t, "mystery", progress.AchievementTitle("mystery"))
}

func TestCloneIsDeep(t *testing.T) {
	p := progress.New("u")
	p.Modules["m"] = &progress.ModuleProgress{ModuleID: "m", Lessons: map[string]*progress.LessonProgress{
		"l": {LessonID: "l", CommandsPracticed: []string{"x"}},
	}}
	c := p.Clone()
	c.Modules["m"].Lessons["l"].CommandsPracticed[0] = "y"
	c.Modules["m"].Status = progress.StatusCompleted
	require.Equal(t, "x", p.Modules["m"].Lessons["l"].CommandsPracticed[0])
	require.Empty(t, p.Modules["m"].Status)
}

func achievementIDs(as []progress.Achievement) []string {
	out := make([]string, len(as))
	for i, a := range as {
		out[i] = a.ID
	}
	return out
}
