package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/penwyp/go-dose-monitor/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func testOptions() []Option {
	return []Option{
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(sequentialIDs()),
	}
}

func newEvent(subject model.Subject, amount float64, ts time.Time) model.IntakeEvent {
	return model.IntakeEvent{
		Subject:      subject,
		DosageAmount: amount,
		DosageUnit:   model.UnitMass,
		Timestamp:    ts,
	}
}

type storeFactory struct {
	name string
	open func(t *testing.T) Store
}

func factories() []storeFactory {
	return []storeFactory{
		{
			name: "memory",
			open: func(t *testing.T) Store {
				return NewMemoryStore(testOptions()...)
			},
		},
		{
			name: "file",
			open: func(t *testing.T) Store {
				s, err := NewFileStore(t.TempDir()+"/intakes.jsonl", testOptions()...)
				require.NoError(t, err)
				return s
			},
		},
	}
}

func drain(ch <-chan struct{}) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}

func TestStoreContract(t *testing.T) {
	for _, f := range factories() {
		t.Run(f.name, func(t *testing.T) {
			ctx := context.Background()
			s := f.open(t)
			defer s.Close()
			drain(s.Changes())

			first, err := s.Insert(ctx, newEvent(model.SubjectA, 10, fixedNow.Add(-2*time.Hour)))
			require.NoError(t, err)
			assert.Equal(t, "id-1", first)

			select {
			case <-s.Changes():
			case <-time.After(time.Second):
				t.Fatal("insert did not signal a change")
			}

			second, err := s.Insert(ctx, newEvent(model.SubjectB, 20, fixedNow.Add(-time.Hour)))
			require.NoError(t, err)

			events, err := s.List(ctx)
			require.NoError(t, err)
			require.Len(t, events, 2)
			assert.Equal(t, second, events[0].ID, "most recent first")
			assert.Equal(t, fixedNow, events[1].CreatedAt)

			amount := 12.5
			require.NoError(t, s.Update(ctx, first, model.IntakePatch{DosageAmount: &amount}))
			got, err := s.Get(ctx, first)
			require.NoError(t, err)
			assert.Equal(t, 12.5, got.DosageAmount)
			require.NotNil(t, got.UpdatedAt)
			assert.Equal(t, fixedNow, *got.UpdatedAt)

			bySubject, err := ListBySubject(ctx, s, model.SubjectB)
			require.NoError(t, err)
			require.Len(t, bySubject, 1)
			assert.Equal(t, second, bySubject[0].ID)

			require.NoError(t, s.Delete(ctx, second))
			events, err = s.List(ctx)
			require.NoError(t, err)
			assert.Len(t, events, 1)
		})
	}
}

func TestStoreErrors(t *testing.T) {
	for _, f := range factories() {
		t.Run(f.name, func(t *testing.T) {
			ctx := context.Background()
			s := f.open(t)

			_, err := s.Insert(ctx, newEvent(model.SubjectUnknown, 10, fixedNow))
			assert.True(t, model.IsValidationError(err))

			id, err := s.Insert(ctx, newEvent(model.SubjectA, 10, fixedNow))
			require.NoError(t, err)

			dup := newEvent(model.SubjectA, 10, fixedNow)
			dup.ID = id
			_, err = s.Insert(ctx, dup)
			assert.True(t, model.IsValidationError(err))

			assert.ErrorIs(t, s.Delete(ctx, "missing"), model.ErrNotFound)
			amount := 1.0
			assert.ErrorIs(t, s.Update(ctx, "missing", model.IntakePatch{DosageAmount: &amount}), model.ErrNotFound)
			_, err = s.Get(ctx, "missing")
			assert.ErrorIs(t, err, model.ErrNotFound)

			assert.True(t, model.IsValidationError(s.Update(ctx, id, model.IntakePatch{})))
			negative := -5.0
			assert.True(t, model.IsValidationError(s.Update(ctx, id, model.IntakePatch{DosageAmount: &negative})))

			cancelled, cancel := context.WithCancel(ctx)
			cancel()
			_, err = s.List(cancelled)
			assert.ErrorIs(t, err, context.Canceled)

			require.NoError(t, s.Close())
			require.NoError(t, s.Close())

			_, err = s.List(ctx)
			assert.True(t, model.IsStoreUnavailable(err))
			assert.ErrorIs(t, err, ErrClosed)

			// pending signals drain, then the channel reports closed
			drained := 0
			for range s.Changes() {
				drained++
			}
			assert.LessOrEqual(t, drained, 1)
		})
	}
}

func TestMemoryStoreSignalsCoalesce(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(testOptions()...)
	defer s.Close()

	for i := 0; i < 5; i++ {
		_, err := s.Insert(ctx, newEvent(model.SubjectA, float64(i), fixedNow))
		require.NoError(t, err)
	}

	<-s.Changes()
	select {
	case <-s.Changes():
		t.Fatal("signals should coalesce while unread")
	default:
	}
}
