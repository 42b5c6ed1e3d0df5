package inmem

import (
	"context"
	"testing"

	"github.com/dekarrin/sheetlex/internal/lex"
	"github.com/dekarrin/sheetlex/server/dao"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Sessions(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng := lex.New(nil)

	store := NewDatastore()
	defer store.Close()
	repo := store.Sessions()

	created, err := repo.Create(ctx, dao.Session{Doc: eng.NewDocument("[ {\nc\n}\n]"), Grammar: "2"})
	require.NoError(t, err)
	assert.NotEqual(uuid.Nil, created.ID)
	assert.False(created.Created.IsZero())
	assert.Equal("2", created.Grammar)

	// a caller editing its copy must not change what is stored
	_, _, err = created.Doc.Edit(1, 2, []string{"d"})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal("[ {\nc\n}\n]", got.Doc.Text())
	assert.Equal("voice", got.Doc.EndState(1))

	updated, err := repo.Update(ctx, created.ID, dao.Session{Doc: created.Doc, Grammar: "2"})
	require.NoError(t, err)
	assert.Equal("[ {\nd\n}\n]", updated.Doc.Text())
	assert.Equal(created.Created, updated.Created)

	_, err = repo.Create(ctx, dao.Session{Doc: eng.NewDocument("")})
	require.NoError(t, err)

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(all, 2)

	deleted, err := repo.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(created.ID, deleted.ID)

	_, err = repo.GetByID(ctx, created.ID)
	assert.ErrorIs(err, dao.ErrNotFound)
	_, err = repo.Delete(ctx, created.ID)
	assert.ErrorIs(err, dao.ErrNotFound)
	_, err = repo.Update(ctx, created.ID, dao.Session{Doc: created.Doc})
	assert.ErrorIs(err, dao.ErrNotFound)
}

func Test_Sessions_noDocument(t *testing.T) {
	repo := NewSessionsRepository()
	_, err := repo.Create(context.Background(), dao.Session{})
	assert.Error(t, err)
}
