//go:build unit
// +build unit

package crypto

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuture(t *testing.T) {
	t.Run("AwaitBuffer", func(t *testing.T) {
		f := NewFuture()
		go f.CompleteWithBuffer([]byte("digest"))

		r, err := f.Await(context.Background())
		require.NoError(t, err)
		assert.Equal(t, ResultBuffer, r.Kind())
		assert.Equal(t, []byte("digest"), r.Buffer())
		assert.NoError(t, r.Err())
	})

	t.Run("AwaitError", func(t *testing.T) {
		f := NewFuture()
		f.CompleteWithError(ErrOperationFailed)

		r, err := f.Await(context.Background())
		require.NoError(t, err)
		assert.Equal(t, ResultError, r.Kind())
		assert.ErrorIs(t, r.Err(), ErrOperationFailed)
	})

	t.Run("SecondAwaitIsConsumed", func(t *testing.T) {
		f := NewFuture()
		f.CompleteWithBoolean(true)

		_, err := f.Await(context.Background())
		require.NoError(t, err)

		_, err = f.Await(context.Background())
		assert.ErrorIs(t, err, ErrResultConsumed)
	})

	t.Run("SecondCompletionPanics", func(t *testing.T) {
		f := NewFuture()
		f.CompleteWithBoolean(false)

		assert.Panics(t, func() {
			f.CompleteWithBuffer(nil)
		})
	})

	t.Run("AwaitHonoursContext", func(t *testing.T) {
		f := NewFuture()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		_, err := f.Await(ctx)
		assert.True(t, errors.Is(err, context.DeadlineExceeded))

		// the result is still delivered later
		f.CompleteWithKey(nil)
		r, err := f.Await(context.Background())
		require.NoError(t, err)
		assert.Equal(t, ResultKey, r.Kind())
	})
}

type recordingSink struct {
	calls []string
}

func (s *recordingSink) CompleteWithError(error)     { s.calls = append(s.calls, "error") }
func (s *recordingSink) CompleteWithBuffer([]byte)   { s.calls = append(s.calls, "buffer") }
func (s *recordingSink) CompleteWithKey(*Key)        { s.calls = append(s.calls, "key") }
func (s *recordingSink) CompleteWithBoolean(bool)    { s.calls = append(s.calls, "boolean") }

func TestDeliver(t *testing.T) {
	tests := []struct {
		name   string
		result Result
		want   string
	}{
		{"error", ErrorResult(errors.New("boom")), "error"},
		{"buffer", BufferResult([]byte{1}), "buffer"},
		{"key", KeyResult(nil), "key"},
		{"boolean", BooleanResult(false), "boolean"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &recordingSink{}
			Deliver(sink, tt.result)
			assert.Equal(t, []string{tt.want}, sink.calls)
			assert.Equal(t, tt.want, tt.result.Kind().String())
		})
	}
}
