package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/penwyp/go-dose-monitor/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "intakes.jsonl")

	s, err := NewFileStore(path, testOptions()...)
	require.NoError(t, err)
	assert.Equal(t, path, s.Path())

	e := newEvent(model.SubjectB, 1.5, fixedNow)
	e.DosageUnit = model.UnitVolume
	e.Subtype = model.SubtypeIV
	id, err := s.Insert(ctx, e)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"subjectId":"EI"`)
	assert.Contains(t, string(data), `"dosageUnit":"volume"`)
	assert.Equal(t, 1, strings.Count(string(data), "\n"))

	reopened, err := NewFileStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.SubjectB, got.Subject)
	assert.Equal(t, model.SubtypeIV, got.Subtype)
	assert.True(t, fixedNow.Equal(got.Timestamp))
}

func TestFileStoreDetectsExternalEdits(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "intakes.jsonl")

	s, err := NewFileStore(path, testOptions()...)
	require.NoError(t, err)
	defer s.Close()

	record := `{"id":"external","subjectId":"AH","dosageAmount":30,"dosageUnit":"mass","subtype":null,"timestamp":"2024-06-01T07:00:00Z","createdAt":"2024-06-01T07:00:00Z","updatedAt":null}` + "\n"
	require.NoError(t, os.WriteFile(path, []byte(record), 0644))

	require.Eventually(t, func() bool {
		events, err := s.List(ctx)
		return err == nil && len(events) == 1 && events[0].ID == "external"
	}, 3*time.Second, 20*time.Millisecond)
}

func TestFileStoreIgnoresOwnWrites(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "intakes.jsonl")

	s, err := NewFileStore(path, testOptions()...)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Insert(ctx, newEvent(model.SubjectA, 10, fixedNow))
	require.NoError(t, err)

	changed, err := s.reload()
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestFileStoreWriteFailure(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "vanishing")
	path := filepath.Join(dir, "intakes.jsonl")

	s, err := NewFileStore(path, testOptions()...)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, os.RemoveAll(dir))

	_, err = s.Insert(ctx, newEvent(model.SubjectA, 10, fixedNow))
	require.Error(t, err)
	assert.True(t, model.IsStoreUnavailable(err))

	events, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, events, "failed write leaves state untouched")
}

func TestFileStoreSkipsBadLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "intakes.jsonl")
	content := "not json\n" +
		`{"id":"ok","subjectId":"NO","dosageAmount":0,"dosageUnit":"mass","subtype":"LOST","timestamp":"2024-06-01T07:00:00Z","createdAt":"2024-06-01T07:00:00Z","updatedAt":null}` + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	s, err := NewFileStore(path)
	require.NoError(t, err)
	defer s.Close()

	events, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, model.SubjectRejected, events[0].Subject)
}

func TestFileStoreRetriesFailedReload(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "intakes.jsonl")

	s, err := NewFileStore(path, testOptions()...)
	require.NoError(t, err)
	defer s.Close()

	// a single line above the parser's line limit fails the whole read
	oversized := strings.Repeat("x", 2*1024*1024) + "\n"
	require.NoError(t, os.WriteFile(path, []byte(oversized), 0644))

	for i := 0; i < 2; i++ {
		changed, err := s.reload()
		assert.False(t, changed)
		assert.True(t, model.IsStoreUnavailable(err), "attempt %d: %v", i+1, err)
	}

	events, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, events, "state kept from before the failed read")
}
