package chat

import (
	"context"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/iyunix/go-gemchat/internal/domain"
)

func newGormRepo(t *testing.T) ChatRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	repo, err := NewGormChatRepository(db, nopLogger{})
	require.NoError(t, err)
	return repo
}

func TestGormRepository_EmptyIsNotFound(t *testing.T) {
	repo := newGormRepo(t)
	records, found, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.False(t, found)
	require.Empty(t, records)
}

func TestGormRepository_UpdateAppendsInOrder(t *testing.T) {
	repo := newGormRepo(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		err := repo.Update(ctx, func(records []domain.ChatRecord, found bool) ([]domain.ChatRecord, error) {
			require.Equal(t, i > 1, found)
			return append(records, domain.ChatRecord{Title: fmt.Sprintf("Chat #%d", len(records)+1), Date: "2024-06-10T10:00:00.000000"}), nil
		})
		require.NoError(t, err)
	}

	records, found, err := repo.Load(ctx)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []string{"Chat #1", "Chat #2", "Chat #3"}, titles(records))
}

func TestGormRepository_SaveReplaces(t *testing.T) {
	repo := newGormRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, []domain.ChatRecord{{Title: "a", Date: "2024-06-10"}, {Title: "b", Date: "2024-06-09"}}))
	require.NoError(t, repo.Save(ctx, []domain.ChatRecord{{Title: "c", Date: "2024-06-08"}}))

	records, _, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"c"}, titles(records))
}

func TestIsAppendOf(t *testing.T) {
	a := domain.ChatRecord{Title: "a"}
	b := domain.ChatRecord{Title: "b"}
	require.True(t, isAppendOf(nil, []domain.ChatRecord{a}))
	require.True(t, isAppendOf([]domain.ChatRecord{a}, []domain.ChatRecord{a, b}))
	require.False(t, isAppendOf([]domain.ChatRecord{a}, []domain.ChatRecord{b, a}))
	require.False(t, isAppendOf([]domain.ChatRecord{a, b}, []domain.ChatRecord{a}))
}

func titles(records []domain.ChatRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Title
	}
	return out
}
