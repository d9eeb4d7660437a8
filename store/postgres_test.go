package store

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	ai "github.com/spetersoncode/maildraft"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestPostgres(t *testing.T) *Postgres {
	t.Helper()
	url := os.Getenv("MAILDRAFT_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("MAILDRAFT_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pg, err := OpenPostgres(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pg.Close)
	require.NoError(t, pg.Migrate(ctx))
	return pg
}

func TestPostgres_History(t *testing.T) {
	pg := openTestPostgres(t)
	ctx := context.Background()
	user := "test-" + uuid.NewString()
	base := time.Now().UTC().Truncate(time.Millisecond)

	for i := range 4 {
		r := result(uuid.NewString(), base.Add(time.Duration(i)*time.Second))
		r.Draft = fmt.Sprintf("draft %d", i)
		require.NoError(t, pg.Append(ctx, user, r))
		require.NoError(t, pg.Append(ctx, user, r))
	}

	got, err := pg.List(ctx, user, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "draft 3", got[0].Draft)
	assert.Equal(t, "formal", got[0].Metadata["tone"])

	all, err := pg.List(ctx, user, 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestPostgres_Profiles(t *testing.T) {
	pg := openTestPostgres(t)
	ctx := context.Background()
	user := "test-" + uuid.NewString()

	empty, err := pg.Get(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, user, empty.UserID)
	assert.Empty(t, empty.Name)

	name := "Jane"
	_, err = pg.Update(ctx, user, ai.ProfileUpdate{Name: &name, Preferences: map[string]string{"a": "1"}})
	require.NoError(t, err)
	_, err = pg.Update(ctx, user, ai.ProfileUpdate{Preferences: map[string]string{"b": "2"}})
	require.NoError(t, err)

	got, err := pg.Get(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, "Jane", got.Name)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, got.Preferences)
}
