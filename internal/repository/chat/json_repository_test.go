package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-gemchat/internal/domain"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}

func newJSONRepo(t *testing.T) *JSONChatRepository {
	t.Helper()
	return NewJSONChatRepository(filepath.Join(t.TempDir(), "chats.json"), nopLogger{})
}

func TestJSONRepository_MissingFile(t *testing.T) {
	repo := newJSONRepo(t)

	records, found, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.False(t, found)
	require.Empty(t, records)
}

func TestJSONRepository_SaveAndLoad(t *testing.T) {
	repo := newJSONRepo(t)
	want := []domain.ChatRecord{
		{Title: "Чат сегодня", Date: "2024-06-10T10:00:00.000000"},
		{Title: "<b>second</b>", Date: "2024-06-09T10:00:00.000000"},
	}
	require.NoError(t, repo.Save(context.Background(), want))

	raw, err := os.ReadFile(repo.Path())
	require.NoError(t, err)
	require.Contains(t, string(raw), "Чат сегодня")
	require.Contains(t, string(raw), "<b>second</b>")
	require.Contains(t, string(raw), "\n  {")

	fresh := NewJSONChatRepository(repo.Path(), nopLogger{})
	got, found, err := fresh.Load(context.Background())
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, want, got)
}

func TestJSONRepository_SaveEmptyWritesArray(t *testing.T) {
	repo := newJSONRepo(t)
	require.NoError(t, repo.Save(context.Background(), nil))

	raw, err := os.ReadFile(repo.Path())
	require.NoError(t, err)
	var decoded []domain.ChatRecord
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.NotNil(t, decoded)
	require.Empty(t, decoded)

	_, found, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.True(t, found)
}

func TestJSONRepository_CorruptFile(t *testing.T) {
	repo := newJSONRepo(t)
	require.NoError(t, os.WriteFile(repo.Path(), []byte("{not json"), 0o644))

	_, _, err := repo.Load(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "decode chat file")
}

func TestJSONRepository_LoadReturnsCopy(t *testing.T) {
	repo := newJSONRepo(t)
	require.NoError(t, repo.Save(context.Background(), []domain.ChatRecord{{Title: "a", Date: "2024-06-10"}}))

	got, _, err := repo.Load(context.Background())
	require.NoError(t, err)
	got[0].Title = "mutated"

	again, _, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, "a", again[0].Title)
}

func TestJSONRepository_UpdateErrorLeavesFileUntouched(t *testing.T) {
	repo := newJSONRepo(t)
	boom := errors.New("boom")

	err := repo.Update(context.Background(), func(records []domain.ChatRecord, found bool) ([]domain.ChatRecord, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)
	_, statErr := os.Stat(repo.Path())
	require.True(t, os.IsNotExist(statErr))
}

func TestJSONRepository_ConcurrentUpdatesDoNotLoseWrites(t *testing.T) {
	repo := newJSONRepo(t)
	const writers = 25

	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- repo.Update(context.Background(), func(records []domain.ChatRecord, _ bool) ([]domain.ChatRecord, error) {
				return append(records, domain.ChatRecord{Title: fmt.Sprintf("chat-%d", i), Date: "2024-06-10"}), nil
			})
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	repo.Invalidate()
	records, found, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, records, writers)
}

func TestJSONRepository_CanceledContext(t *testing.T) {
	repo := newJSONRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := repo.Load(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, repo.Save(ctx, nil), context.Canceled)
}

func TestJSONRepository_WatchPicksUpExternalEdits(t *testing.T) {
	repo := newJSONRepo(t)
	require.NoError(t, repo.Save(context.Background(), []domain.ChatRecord{{Title: "before", Date: "2024-06-10"}}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- repo.Watch(ctx) }()

	// give the watcher time to register before editing the file
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(repo.Path(), []byte(`[{"title":"after","date":"2024-06-10"}]`), 0o644))

	require.Eventually(t, func() bool {
		records, _, err := repo.Load(context.Background())
		return err == nil && len(records) == 1 && records[0].Title == "after"
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
