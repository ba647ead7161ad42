package progress

import (
	"context"
	"errors"
	"testing"

	"coursetrack/backend/catalog"
	"coursetrack/backend/identity"
	"coursetrack/backend/models"
	"coursetrack/backend/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fixture struct {
	mem      *storage.Memory
	ids      *identity.Store
	progress *Store
	cat      *catalog.Catalog
}

func setup(t *testing.T) fixture {
	t.Helper()
	mem := storage.NewMemory()
	ids := identity.NewStore(mem)
	cat := catalog.Default()
	return fixture{mem: mem, ids: ids, progress: NewStore(mem, ids, cat), cat: cat}
}

func TestPercent(t *testing.T) {
	tests := []struct{ done, total, want int }{
		{0, 0, 0},
		{0, 4, 0},
		{1, 4, 25},
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13},
		{4, 4, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Percent(tt.done, tt.total), "%d/%d", tt.done, tt.total)
	}
}

func TestComputeProgressEmptyState(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	for _, course := range f.cat.Courses() {
		got, err := f.progress.ComputeProgress(ctx, course.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ProgressSummary{Done: 0, Total: len(course.Lessons), Pct: 0, Completed: false}, got)
	}

	_, err := f.progress.ComputeProgress(ctx, "does-not-exist")
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestComputeProgressPassesCompletedThrough(t *testing.T) {
	course := models.Course{ID: "c", Lessons: []models.Lesson{{ID: "a"}, {ID: "b"}}}
	state := models.CourseState{CompletedLessons: map[string]bool{"a": true, "b": false}, Completed: true}

	got := ComputeProgress(course, state)
	assert.Equal(t, models.ProgressSummary{Done: 1, Total: 2, Pct: 50, Completed: true}, got)

	empty := ComputeProgress(models.Course{ID: "none"}, models.DefaultCourseState())
	assert.Equal(t, 0, empty.Pct)
}

func TestToggleLessonScenario(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.progress.ToggleLesson(ctx, "html-basics", "h1", true)
	require.NoError(t, err)

	got, err := f.progress.ComputeProgress(ctx, "html-basics")
	require.NoError(t, err)
	assert.Equal(t, models.ProgressSummary{Done: 1, Total: 4, Pct: 25, Completed: false}, got)

	for _, id := range []string{"h2", "h3", "h4"} {
		_, err := f.progress.ToggleLesson(ctx, "html-basics", id, true)
		require.NoError(t, err)
	}

	got, err = f.progress.ComputeProgress(ctx, "html-basics")
	require.NoError(t, err)
	assert.Equal(t, models.ProgressSummary{Done: 4, Total: 4, Pct: 100, Completed: true}, got)

	state, err := f.progress.ToggleLesson(ctx, "html-basics", "h2", false)
	require.NoError(t, err)
	assert.False(t, state.Completed)
	assert.False(t, state.CompletedLessons["h2"])

	got, _ = f.progress.ComputeProgress(ctx, "html-basics")
	assert.Equal(t, models.ProgressSummary{Done: 3, Total: 4, Pct: 75, Completed: false}, got)
}

func TestToggleLessonComparesAgainstCatalog(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	// Four recorded entries that are all true, but one is not a catalog lesson.
	require.NoError(t, f.progress.SetCourseState(ctx, "html-basics", models.CourseState{
		CompletedLessons: map[string]bool{"h1": true, "h2": true, "stale": true},
	}))

	state, err := f.progress.ToggleLesson(ctx, "html-basics", "h3", true)
	require.NoError(t, err)
	assert.Len(t, state.CompletedLessons, 4)
	assert.False(t, state.Completed, "h4 is still open")
}

func TestToggleLessonUnknownIDs(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.progress.ToggleLesson(ctx, "nope", "h1", true)
	assert.ErrorIs(t, err, ErrCourseNotFound)

	_, err = f.progress.ToggleLesson(ctx, "html-basics", "c1", true)
	assert.ErrorIs(t, err, ErrLessonNotFound)

	state, _ := f.progress.LoadProgress(ctx)
	assert.Empty(t, state)
}

func TestMarkAllLessons(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	state, err := f.progress.MarkAllLessons(ctx, "css-fundamentals")
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"c1": true, "c2": true, "c3": true, "c4": true}, state.CompletedLessons)
	assert.True(t, state.Completed)

	got, _ := f.progress.ComputeProgress(ctx, "css-fundamentals")
	assert.Equal(t, 100, got.Pct)

	once, _ := f.progress.LoadProgress(ctx)
	_, err = f.progress.MarkAllLessons(ctx, "css-fundamentals")
	require.NoError(t, err)
	twice, _ := f.progress.LoadProgress(ctx)
	assert.Equal(t, once, twice)
}

func TestMarkAllYieldsFullPercentForEveryCourse(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	for _, course := range f.cat.Courses() {
		_, err := f.progress.MarkAllLessons(ctx, course.ID)
		require.NoError(t, err)
		got, _ := f.progress.ComputeProgress(ctx, course.ID)
		assert.Equal(t, 100, got.Pct, course.ID)
	}
}

func TestToggleCourseOnThenOff(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	on, err := f.progress.ToggleCourse(ctx, "js-essentials")
	require.NoError(t, err)
	assert.True(t, on.Completed)
	assert.Equal(t, map[string]bool{"j1": true, "j2": true, "j3": true, "j4": true}, on.CompletedLessons)

	off, err := f.progress.ToggleCourse(ctx, "js-essentials")
	require.NoError(t, err)
	assert.False(t, off.Completed)
	assert.Equal(t, on.CompletedLessons, off.CompletedLessons)

	got, _ := f.progress.ComputeProgress(ctx, "js-essentials")
	assert.Equal(t, models.ProgressSummary{Done: 4, Total: 4, Pct: 100, Completed: false}, got)
}

func TestToggleCourseOffKeepsPartialLessons(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	require.NoError(t, f.progress.SetCourseState(ctx, "js-essentials", models.CourseState{
		CompletedLessons: map[string]bool{"j1": true},
		Completed:        true,
	}))

	off, err := f.progress.ToggleCourse(ctx, "js-essentials")
	require.NoError(t, err)
	assert.False(t, off.Completed)
	assert.Equal(t, map[string]bool{"j1": true}, off.CompletedLessons)
}

func TestResetProgress(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.progress.MarkAllLessons(ctx, "html-basics")
	require.NoError(t, err)
	_, err = f.progress.MarkAllLessons(ctx, "css-fundamentals")
	require.NoError(t, err)

	state, err := f.progress.ResetProgress(ctx, "html-basics")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultCourseState(), state)

	html, _ := f.progress.GetCourseState(ctx, "html-basics")
	assert.Equal(t, models.DefaultCourseState(), html)
	css, _ := f.progress.GetCourseState(ctx, "css-fundamentals")
	assert.True(t, css.Completed, "other courses are untouched")

	_, err = f.progress.ResetProgress(ctx, "nope")
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.progress.ToggleLesson(ctx, "html-basics", "h2", true)
	require.NoError(t, err)
	_, err = f.progress.ToggleLesson(ctx, "html-basics", "h3", false)
	require.NoError(t, err)

	key, err := f.progress.StorageKey(ctx)
	require.NoError(t, err)
	before, _, _ := f.mem.Get(ctx, key)

	state, err := f.progress.LoadProgress(ctx)
	require.NoError(t, err)
	require.NoError(t, f.progress.SaveProgress(ctx, state))

	after, _, _ := f.mem.Get(ctx, key)
	assert.JSONEq(t, before, after)

	reloaded, _ := f.progress.LoadProgress(ctx)
	assert.Equal(t, state, reloaded)
}

func TestStoredFormat(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.progress.ToggleLesson(ctx, "html-basics", "h1", true)
	require.NoError(t, err)

	raw, ok, _ := f.mem.Get(ctx, "elearn_progress_v1:guest")
	require.True(t, ok)
	assert.JSONEq(t, `{"html-basics":{"completedLessons":{"h1":true},"completed":false}}`, raw)
}

func TestIdentitySwitchesProgress(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.progress.ToggleLesson(ctx, "html-basics", "h1", true)
	require.NoError(t, err)
	guest, _ := f.progress.LoadProgress(ctx)

	ada, err := identity.NewUser("Ada Lovelace", "")
	require.NoError(t, err)
	require.NoError(t, f.ids.SetUser(ctx, ada))
	assert.Equal(t, "ada-lovelace", f.ids.CurrentUserID(ctx))
	key, err := f.progress.StorageKey(ctx)
	require.NoError(t, err)
	assert.Equal(t, "elearn_progress_v1:ada-lovelace", key)

	adaState, err := f.progress.LoadProgress(ctx)
	require.NoError(t, err)
	assert.Empty(t, adaState, "guest progress is not visible")

	_, err = f.progress.MarkAllLessons(ctx, "css-fundamentals")
	require.NoError(t, err)
	adaState, _ = f.progress.LoadProgress(ctx)

	require.NoError(t, f.ids.LogoutUser(ctx))
	back, _ := f.progress.LoadProgress(ctx)
	assert.Equal(t, guest, back)

	require.NoError(t, f.ids.SetUser(ctx, ada))
	again, _ := f.progress.LoadProgress(ctx)
	assert.Equal(t, adaState, again)
}

func TestCorruptBlob(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	require.NoError(t, f.mem.Set(ctx, "elearn_progress_v1:guest", "{broken"))

	state, err := f.progress.LoadProgress(ctx)
	assert.ErrorIs(t, err, models.ErrCorruptState)
	assert.Empty(t, state)

	cs, err := f.progress.GetCourseState(ctx, "html-basics")
	assert.ErrorIs(t, err, models.ErrCorruptState)
	assert.Equal(t, models.DefaultCourseState(), cs)

	// The next mutation replaces the corrupt blob.
	_, err = f.progress.ToggleLesson(ctx, "html-basics", "h1", true)
	require.NoError(t, err)
	state, err = f.progress.LoadProgress(ctx)
	require.NoError(t, err)
	assert.True(t, state["html-basics"].CompletedLessons["h1"])
}

func TestNullBlobAndMissingLessons(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	require.NoError(t, f.mem.Set(ctx, "elearn_progress_v1:guest", "null"))
	state, err := f.progress.LoadProgress(ctx)
	require.NoError(t, err)
	assert.NotNil(t, state)

	require.NoError(t, f.mem.Set(ctx, "elearn_progress_v1:guest", `{"html-basics":{"completed":true}}`))
	cs, err := f.progress.GetCourseState(ctx, "html-basics")
	require.NoError(t, err)
	assert.NotNil(t, cs.CompletedLessons)
	assert.True(t, cs.Completed)
}

func TestDispatch(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	state, err := f.progress.Dispatch(ctx, Command{Type: CmdToggleLesson, CourseID: "html-basics", LessonID: "h1", Checked: true})
	require.NoError(t, err)
	assert.True(t, state.CompletedLessons["h1"])

	state, err = f.progress.Dispatch(ctx, Command{Type: CmdMarkAll, CourseID: "html-basics"})
	require.NoError(t, err)
	assert.True(t, state.Completed)

	state, err = f.progress.Dispatch(ctx, Command{Type: CmdToggleCourse, CourseID: "html-basics"})
	require.NoError(t, err)
	assert.False(t, state.Completed)

	state, err = f.progress.Dispatch(ctx, Command{Type: CmdReset, CourseID: "html-basics"})
	require.NoError(t, err)
	assert.Empty(t, state.CompletedLessons)

	_, err = f.progress.Dispatch(ctx, Command{Type: "explode", CourseID: "html-basics"})
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func TestWriteFailureSurfaces(t *testing.T) {
	mem := storage.NewMemory()
	limited := storage.WithQuota(mem, 10)
	ids := identity.NewStore(limited)
	store := NewStore(limited, ids, catalog.Default())
	ctx := context.Background()

	_, err := store.MarkAllLessons(ctx, "html-basics")
	assert.ErrorIs(t, err, storage.ErrWriteFailed)

	state, err := store.LoadProgress(ctx)
	require.NoError(t, err)
	assert.Empty(t, state, "failed mutation did not persist")
}

// failingUserReads fails every read of the user record, like a backend that drops
// one request.
type failingUserReads struct {
	storage.Storage
}

func (f failingUserReads) Get(ctx context.Context, key string) (string, bool, error) {
	if key == identity.UserKey {
		return "", false, errors.New("connection reset by peer")
	}
	return f.Storage.Get(ctx, key)
}

func TestUserReadFailureDoesNotFallBackToGuest(t *testing.T) {
	mem := storage.NewMemory()
	ctx := context.Background()
	ada, err := identity.NewUser("Ada Lovelace", "")
	require.NoError(t, err)
	require.NoError(t, identity.NewStore(mem).SetUser(ctx, ada))

	flaky := failingUserReads{Storage: mem}
	store := NewStore(flaky, identity.NewStore(flaky), catalog.Default())

	_, err = store.StorageKey(ctx)
	assert.ErrorIs(t, err, storage.ErrUnavailable)

	_, err = store.MarkAllLessons(ctx, "html-basics")
	assert.ErrorIs(t, err, storage.ErrUnavailable)
	_, err = store.LoadProgress(ctx)
	assert.ErrorIs(t, err, storage.ErrUnavailable)
	assert.ErrorIs(t, store.SaveProgress(ctx, models.ProgressState{}), storage.ErrUnavailable)

	_, guestWritten, _ := mem.Get(ctx, "elearn_progress_v1:guest")
	_, adaWritten, _ := mem.Get(ctx, "elearn_progress_v1:ada-lovelace")
	assert.False(t, guestWritten)
	assert.False(t, adaWritten)
}

func TestCorruptUserRecordUsesGuestBlob(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	require.NoError(t, f.mem.Set(ctx, identity.UserKey, "{oops"))

	key, err := f.progress.StorageKey(ctx)
	require.NoError(t, err)
	assert.Equal(t, "elearn_progress_v1:guest", key)

	_, err = f.progress.MarkAllLessons(ctx, "html-basics")
	require.NoError(t, err)
	_, ok, _ := f.mem.Get(ctx, "elearn_progress_v1:guest")
	assert.True(t, ok)
}
