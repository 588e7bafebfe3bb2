package memorystorage

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/voicetodo/internal/models"
	"github.com/patric-chuzhbe/voicetodo/internal/user"
)

func newTestStorage(t *testing.T) (*MemoryStorage, clockwork.FakeClock) {
	t.Helper()

	clock := clockwork.NewFakeClock()
	theStorage, err := New(WithClock(clock))
	require.NoError(t, err, "The memorystorage.New() should not return error")

	return theStorage, clock
}

func createTestUser(t *testing.T, theStorage *MemoryStorage, username string) string {
	t.Helper()

	userID, err := theStorage.CreateUser(
		context.Background(),
		&user.User{Username: username, Password: "secret"},
	)
	require.NoError(t, err)
	require.NotEmpty(t, userID)

	return userID
}

func TestUsers(t *testing.T) {
	theStorage, _ := newTestStorage(t)

	userID := createTestUser(t, theStorage, "admin")

	t.Run("get_by_id", func(t *testing.T) {
		usr, found, err := theStorage.GetUser(context.Background(), userID)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "admin", usr.Username)
	})

	t.Run("get_by_username_linear_scan", func(t *testing.T) {
		usr, found, err := theStorage.GetUserByUsername(context.Background(), "admin")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, userID, usr.ID)
	})

	t.Run("unknown_user_is_not_found", func(t *testing.T) {
		_, found, err := theStorage.GetUser(context.Background(), "nonexistent")
		require.NoError(t, err)
		assert.False(t, found)

		_, found, err = theStorage.GetUserByUsername(context.Background(), "nobody")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("duplicate_username_is_rejected", func(t *testing.T) {
		_, err := theStorage.CreateUser(
			context.Background(),
			&user.User{Username: "admin", Password: "other"},
		)
		assert.Error(t, err)
	})
}

func TestCreateTaskDefaults(t *testing.T) {
	theStorage, _ := newTestStorage(t)
	userID := createTestUser(t, theStorage, "admin")

	task, err := theStorage.CreateTask(context.Background(), models.NewTask{
		Title:  "Buy milk",
		UserID: userID,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, task.ID)
	assert.Equal(t, "Buy milk", task.Title)
	assert.False(t, task.Completed)
	assert.Equal(t, models.PriorityNormal, task.Priority)
	assert.Nil(t, task.ReminderDate)
	assert.Nil(t, task.VoiceNoteData)
	assert.Nil(t, task.VoiceNoteDuration)
	assert.Equal(t, userID, task.UserID)
	assert.True(t, task.CreatedAt.Equal(task.UpdatedAt), "CreatedAt should equal UpdatedAt right after creation")
}

func TestCreateTaskWithOptionalFields(t *testing.T) {
	theStorage, clock := newTestStorage(t)
	userID := createTestUser(t, theStorage, "admin")

	reminder := clock.Now().Add(time.Hour)
	voiceData := "data:audio/webm;base64,GkXfo59ChoEBQveBAULygQRC"
	voiceDuration := "0:15"

	task, err := theStorage.CreateTask(context.Background(), models.NewTask{
		Title:             "Call the dentist",
		Priority:          models.PriorityHigh,
		ReminderDate:      &reminder,
		VoiceNoteData:     &voiceData,
		VoiceNoteDuration: &voiceDuration,
		UserID:            userID,
	})
	require.NoError(t, err)

	assert.Equal(t, models.PriorityHigh, task.Priority)
	require.NotNil(t, task.ReminderDate)
	assert.True(t, reminder.Equal(*task.ReminderDate))
	require.NotNil(t, task.VoiceNoteData)
	assert.Equal(t, voiceData, *task.VoiceNoteData)
	require.NotNil(t, task.VoiceNoteDuration)
	assert.Equal(t, voiceDuration, *task.VoiceNoteDuration)
}

func TestGetTasksOrderedByRecency(t *testing.T) {
	theStorage, clock := newTestStorage(t)
	userID := createTestUser(t, theStorage, "admin")
	strangerID := createTestUser(t, theStorage, "stranger")

	titles := []string{"first", "second", "third"}
	for _, title := range titles {
		_, err := theStorage.CreateTask(context.Background(), models.NewTask{
			Title:  title,
			UserID: userID,
		})
		require.NoError(t, err)
		clock.Advance(time.Second)
	}

	_, err := theStorage.CreateTask(context.Background(), models.NewTask{
		Title:  "not yours",
		UserID: strangerID,
	})
	require.NoError(t, err)

	tasks, err := theStorage.GetTasks(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, "third", tasks[0].Title)
	assert.Equal(t, "second", tasks[1].Title)
	assert.Equal(t, "first", tasks[2].Title)
}

func TestUpdateTask(t *testing.T) {
	theStorage, clock := newTestStorage(t)
	userID := createTestUser(t, theStorage, "admin")

	task, err := theStorage.CreateTask(context.Background(), models.NewTask{
		Title:  "Buy milk",
		UserID: userID,
	})
	require.NoError(t, err)

	clock.Advance(time.Minute)

	completed := true
	updated, found, err := theStorage.UpdateTask(
		context.Background(),
		task.ID,
		models.TaskUpdate{Completed: &completed},
	)
	require.NoError(t, err)
	require.True(t, found)

	assert.True(t, updated.Completed)
	assert.Equal(t, "Buy milk", updated.Title, "unset fields should stay unchanged")
	assert.Equal(t, models.PriorityNormal, updated.Priority)
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt), "UpdatedAt should move forward on update")

	t.Run("missing_task", func(t *testing.T) {
		_, found, err := theStorage.UpdateTask(
			context.Background(),
			"nonexistent",
			models.TaskUpdate{Completed: &completed},
		)
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestDeleteTaskIsIdempotentlyNotFound(t *testing.T) {
	theStorage, _ := newTestStorage(t)
	userID := createTestUser(t, theStorage, "admin")

	task, err := theStorage.CreateTask(context.Background(), models.NewTask{
		Title:  "Buy milk",
		UserID: userID,
	})
	require.NoError(t, err)

	deleted, err := theStorage.DeleteTask(context.Background(), task.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = theStorage.DeleteTask(context.Background(), task.ID)
	require.NoError(t, err)
	assert.False(t, deleted, "the second delete should report not found, not an error")
}

func TestSessions(t *testing.T) {
	theStorage, clock := newTestStorage(t)
	userID := createTestUser(t, theStorage, "admin")

	t.Run("create_and_get", func(t *testing.T) {
		session, err := theStorage.CreateSession(context.Background(), userID)
		require.NoError(t, err)
		assert.Equal(t, userID, session.UserID)
		assert.True(t, session.ExpiresAt.Equal(session.CreatedAt.Add(DefaultSessionTTL)))

		fetched, found, err := theStorage.GetSession(context.Background(), session.ID)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, session.ID, fetched.ID)
	})

	t.Run("expired_session_behaves_like_missing", func(t *testing.T) {
		session, err := theStorage.CreateSession(context.Background(), userID)
		require.NoError(t, err)

		clock.Advance(DefaultSessionTTL + time.Minute)

		_, found, err := theStorage.GetSession(context.Background(), session.ID)
		require.NoError(t, err)
		assert.False(t, found)

		_, neverCreatedFound, err := theStorage.GetSession(context.Background(), "never-created")
		require.NoError(t, err)
		assert.Equal(t, neverCreatedFound, found, "expired and never-created lookups should be indistinguishable")
	})

	t.Run("delete", func(t *testing.T) {
		session, err := theStorage.CreateSession(context.Background(), userID)
		require.NoError(t, err)

		deleted, err := theStorage.DeleteSession(context.Background(), session.ID)
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = theStorage.DeleteSession(context.Background(), session.ID)
		require.NoError(t, err)
		assert.False(t, deleted)
	})
}

func TestPruneExpiredSessions(t *testing.T) {
	theStorage, clock := newTestStorage(t)
	userID := createTestUser(t, theStorage, "admin")

	stale, err := theStorage.CreateSession(context.Background(), userID)
	require.NoError(t, err)

	clock.Advance(DefaultSessionTTL + time.Minute)

	fresh, err := theStorage.CreateSession(context.Background(), userID)
	require.NoError(t, err)

	pruned, err := theStorage.PruneExpiredSessions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, pruned)

	_, found, err := theStorage.GetSession(context.Background(), stale.ID)
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = theStorage.GetSession(context.Background(), fresh.ID)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestCounters(t *testing.T) {
	theStorage, _ := newTestStorage(t)
	userID := createTestUser(t, theStorage, "admin")

	for i := 0; i < 3; i++ {
		_, err := theStorage.CreateTask(context.Background(), models.NewTask{
			Title:  "task",
			UserID: userID,
		})
		require.NoError(t, err)
	}

	tasks, err := theStorage.GetNumberOfTasks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), tasks)

	users, err := theStorage.GetNumberOfUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), users)

	assert.NoError(t, theStorage.Ping(context.Background()))
	assert.NoError(t, theStorage.Close())
}
