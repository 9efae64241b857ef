package simulate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestTask_DeliversResult(t *testing.T) {
	out := Task(context.Background(), time.Millisecond, func() (int, error) {
		return 42, nil
	})

	result := <-out
	require.NoError(t, result.Err)
	assert.Equal(t, 42, result.Value)

	// Channel closes after the single delivery
	_, open := <-out
	assert.False(t, open)
}

func TestTask_PropagatesError(t *testing.T) {
	wantErr := errors.New("declined")

	out := Task(context.Background(), time.Millisecond, func() (string, error) {
		return "", wantErr
	})

	result := <-out
	assert.ErrorIs(t, result.Err, wantErr)
}

func TestTask_CancelledBeforeDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	ran := false
	out := Task(ctx, time.Hour, func() (int, error) {
		ran = true
		return 0, nil
	})

	cancel()
	result := <-out
	assert.ErrorIs(t, result.Err, context.Canceled)
	assert.False(t, ran, "fn must never run once the task is abandoned")
}
