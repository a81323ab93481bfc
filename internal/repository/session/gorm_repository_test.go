package session

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/iyunix/go-gemchat/internal/domain"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}

func newRepo(t *testing.T) SessionRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	repo, err := NewGormSessionRepository(db, nopLogger{})
	require.NoError(t, err)
	return repo
}

func TestSessionRepository_CreateAndAppend(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, "conv-1", domain.Message{Role: domain.RoleSystem, Content: "be nice"})
	require.NoError(t, err)

	require.NoError(t, repo.Append(ctx, "conv-1",
		domain.Message{Role: domain.RoleUser, Content: "hi"},
		domain.Message{Role: domain.RoleAssistant, Content: "hello"},
	))

	msgs, err := repo.Messages(ctx, "conv-1")
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	require.Equal(t, []string{domain.RoleSystem, domain.RoleUser, domain.RoleAssistant},
		[]string{msgs[0].Role, msgs[1].Role, msgs[2].Role})
	require.Equal(t, "conv-1", msgs[2].SessionID)
}

func TestSessionRepository_FindMissing(t *testing.T) {
	repo := newRepo(t)
	_, err := repo.FindByID(context.Background(), "nope")
	require.ErrorIs(t, err, ErrSessionNotFound)

	err = repo.Append(context.Background(), "nope", domain.Message{Role: domain.RoleUser, Content: "x"})
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionRepository_SessionsAreIsolated(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b"} {
		_, err := repo.Create(ctx, id)
		require.NoError(t, err)
		require.NoError(t, repo.Append(ctx, id, domain.Message{Role: domain.RoleUser, Content: "from " + id}))
	}

	msgs, err := repo.Messages(ctx, "b")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Equal(t, "from b", msgs[0].Content)
}

func TestSessionRepository_Delete(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, "gone", domain.Message{Role: domain.RoleUser, Content: "x"})
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, "gone"))

	_, err = repo.FindByID(ctx, "gone")
	require.ErrorIs(t, err, ErrSessionNotFound)
	msgs, err := repo.Messages(ctx, "gone")
	require.NoError(t, err)
	require.Empty(t, msgs)
	require.ErrorIs(t, repo.Delete(ctx, "gone"), ErrSessionNotFound)
}

func TestSessionRepository_RejectsBadIDs(t *testing.T) {
	repo := newRepo(t)
	_, err := repo.Create(context.Background(), "  ")
	require.Error(t, err)
	_, err = repo.Create(context.Background(), strings.Repeat("x", 65))
	require.Error(t, err)
}
