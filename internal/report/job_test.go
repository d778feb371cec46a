package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sellerops/wbsync/internal/config"
)

func testRunner(maxPolls int) *Runner {
	return NewRunner(config.ReportConfig{PollInterval: time.Millisecond, MaxPolls: maxPolls}, zap.NewNop())
}

func TestRunnerDeliversArtifact(t *testing.T) {
	job := NewJob("storage")
	polls := 0

	artifact, err := testRunner(4).Run(context.Background(), job, Phases{
		Submit: func(context.Context) (string, error) { return "task-1", nil },
		Fetch: func(_ context.Context, remoteID string) (PollOutcome, error) {
			polls++
			if polls < 3 {
				return PollOutcome{}, nil
			}
			return PollOutcome{Ready: true, Artifact: []byte("payload")}, nil
		},
	})

	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), artifact)
	assert.Equal(t, StateDownloading, job.State)
	assert.Equal(t, "task-1", job.RemoteID)
	assert.Equal(t, 3, job.Polls)
}

func TestRunnerExpiresAfterMaxPolls(t *testing.T) {
	job := NewJob("card-stats")
	polls := 0

	_, err := testRunner(4).Run(context.Background(), job, Phases{
		Submit: func(context.Context) (string, error) { return "task-2", nil },
		Fetch: func(context.Context, string) (PollOutcome, error) {
			polls++
			return PollOutcome{}, nil
		},
	})

	require.ErrorIs(t, err, ErrExpired)
	assert.Equal(t, StateExpired, job.State)
	assert.Equal(t, 4, polls, "exactly max_polls fetches, then give up")
}

func TestRunnerKeepsPollingOnInvalidID(t *testing.T) {
	job := NewJob("stock-age-7d")
	polls := 0

	artifact, err := testRunner(4).Run(context.Background(), job, Phases{
		Submit: func(context.Context) (string, error) { return job.ID, nil },
		Fetch: func(context.Context, string) (PollOutcome, error) {
			polls++
			if polls == 1 {
				return PollOutcome{InvalidID: true}, nil
			}
			return PollOutcome{Ready: true, Artifact: []byte("zip")}, nil
		},
	})

	require.NoError(t, err, "an unrecognized id is a warning, not a failure")
	assert.Equal(t, []byte("zip"), artifact)
	assert.Equal(t, 2, polls)
}

func TestRunnerSubmitFailure(t *testing.T) {
	job := NewJob("storage")
	boom := errors.New("denied")

	_, err := testRunner(4).Run(context.Background(), job, Phases{
		Submit: func(context.Context) (string, error) { return "", boom },
		Fetch: func(context.Context, string) (PollOutcome, error) {
			t.Fatal("fetch must not run when submit fails")
			return PollOutcome{}, nil
		},
	})

	require.ErrorIs(t, err, boom)
	assert.Equal(t, StateFailed, job.State)
}

func TestRunnerFetchFailureIsTerminal(t *testing.T) {
	job := NewJob("storage")
	boom := errors.New("gone")

	_, err := testRunner(4).Run(context.Background(), job, Phases{
		Submit: func(context.Context) (string, error) { return "task-3", nil },
		Fetch: func(context.Context, string) (PollOutcome, error) {
			return PollOutcome{}, boom
		},
	})

	require.ErrorIs(t, err, boom)
	assert.Equal(t, StateFailed, job.State)
	assert.Equal(t, 1, job.Polls)
}

func TestRunnerHonorsContext(t *testing.T) {
	job := NewJob("storage")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := NewRunner(config.ReportConfig{PollInterval: time.Minute, MaxPolls: 4}, zap.NewNop())
	_, err := runner.Run(ctx, job, Phases{
		Submit: func(context.Context) (string, error) { return "task-4", nil },
		Fetch: func(context.Context, string) (PollOutcome, error) {
			t.Fatal("fetch must not run after cancellation")
			return PollOutcome{}, nil
		},
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateFailed, job.State)
}
