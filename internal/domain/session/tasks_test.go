package session_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xbooster/backend/internal/domain/session"
	"github.com/xbooster/backend/internal/entity"
	"github.com/xbooster/backend/internal/repository"
	"github.com/xbooster/backend/pkg/testutil"
)

func TestDeriveFilters(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	deriver := session.NewTaskDeriver(repository.NewUserRepository())
	sess := &session.Session{
		User:             testutil.User1,
		FollowingIDs:     []string{"user2"},
		CompletedTaskIDs: []string{"user3"},
	}

	batch := []entity.User{testutil.User1, testutil.User2, testutil.User3}
	tasks := deriver.Derive(ctx, sess, batch)

	// Self, followed and completed candidates are all filtered out, and
	// the empty result falls through to nothing because the batch was
	// not empty.
	require.Empty(t, tasks)
}

func TestDeriveFollowBackFlag(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	deriver := session.NewTaskDeriver(repository.NewUserRepository())
	sess := &session.Session{
		User:        testutil.User1,
		FollowerIDs: []string{"user2"},
	}

	tasks := deriver.Derive(ctx, sess, []entity.User{testutil.User2, testutil.User3})
	require.Len(t, tasks, 2)
	require.Equal(t, "user2", tasks[0].ID)
	require.True(t, tasks[0].IsFollowBack)
	require.Equal(t, "user3", tasks[1].ID)
	require.False(t, tasks[1].IsFollowBack)
	require.Equal(t, int64(10), tasks[0].Price)
}

func TestDeriveBackfillsMissingFollowers(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	deriver := session.NewTaskDeriver(repository.NewUserRepository())
	sess := &session.Session{
		User:        testutil.User1,
		FollowerIDs: []string{"user2"},
	}

	// user2 follows user1 but is absent from the batch.
	tasks := deriver.Derive(ctx, sess, []entity.User{testutil.User3})
	require.Len(t, tasks, 2)
	require.Equal(t, "user3", tasks[0].ID)
	require.Equal(t, "user2", tasks[1].ID)
	require.True(t, tasks[1].IsFollowBack)
}

func TestDeriveBackfillExactlyOnce(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	deriver := session.NewTaskDeriver(repository.NewUserRepository())
	sess := &session.Session{
		User:        testutil.User1,
		FollowerIDs: []string{"user2", "user2"},
	}

	tasks := deriver.Derive(ctx, sess, []entity.User{testutil.User3})
	ids := map[string]int{}
	for _, task := range tasks {
		ids[task.ID]++
	}
	require.Equal(t, 1, ids["user2"])
}

func TestDeriveBackfillSkipsCompleted(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	deriver := session.NewTaskDeriver(repository.NewUserRepository())
	sess := &session.Session{
		User:             testutil.User1,
		FollowerIDs:      []string{"user2"},
		CompletedTaskIDs: []string{"user2"},
	}

	tasks := deriver.Derive(ctx, sess, []entity.User{testutil.User3})
	require.Len(t, tasks, 1)
	require.Equal(t, "user3", tasks[0].ID)
}

func TestDeriveEmptyBatchFallsBackToSamples(t *testing.T) {
	ctx := testutil.MockContext()

	deriver := session.NewTaskDeriver(repository.NewUserRepository())
	sess := &session.Session{
		User:             testutil.User1,
		FollowingIDs:     []string{"real1"},
		CompletedTaskIDs: []string{"real2"},
	}

	tasks := deriver.Derive(ctx, sess, nil)
	require.Len(t, tasks, len(session.SampleTasks)-2)
	for _, task := range tasks {
		require.NotEqual(t, "real1", task.ID)
		require.NotEqual(t, "real2", task.ID)
	}
}

func TestDeriveDegradedFallsBackToSamples(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	deriver := session.NewTaskDeriver(repository.NewUserRepository())
	sess := &session.Session{User: testutil.User1, Degraded: true}

	tasks := deriver.Derive(ctx, sess, []entity.User{testutil.User2})
	require.Len(t, tasks, len(session.SampleTasks))
	require.Equal(t, "real1", tasks[0].ID)
}
