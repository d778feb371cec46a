package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sellerops/wbsync/internal/config"
	"github.com/sellerops/wbsync/internal/metrics"
	"github.com/sellerops/wbsync/internal/util"
)

// State of an asynchronous report job. Transitions move strictly forward:
// created -> submitted -> polling -> downloading -> decoded, with failed and
// expired as terminal branches.
type State string

const (
	StateCreated     State = "created"
	StateSubmitted   State = "submitted"
	StatePolling     State = "polling"
	StateDownloading State = "downloading"
	StateDecoded     State = "decoded"
	StateFailed      State = "failed"
	StateExpired     State = "expired"
)

// ErrExpired is returned when a report never became ready within the
// configured number of polls.
var ErrExpired = errors.New("report expired")

// Job tracks one asynchronous report through its lifetime.
type Job struct {
	ID       string
	Kind     string
	RemoteID string
	State    State
	Polls    int
	Err      error
}

// NewJob returns a Job in the created state with a fresh local id. The local
// id doubles as the remote download id for report kinds where the caller
// chooses the id.
func NewJob(kind string) *Job {
	return &Job{ID: util.NewID(), Kind: kind, State: StateCreated}
}

// PollOutcome is the result of one fetch attempt against a pending report.
type PollOutcome struct {
	// Ready means Artifact holds the complete report payload.
	Ready    bool
	Artifact []byte
	// InvalidID means the provider does not recognize the download id yet.
	// The runner logs a warning and keeps polling.
	InvalidID bool
}

// Phases are the remote calls that drive a job. Submit asks the provider to
// start building the report and returns the remote id to poll with. Fetch
// checks on it once.
type Phases struct {
	Submit func(ctx context.Context) (string, error)
	Fetch  func(ctx context.Context, remoteID string) (PollOutcome, error)
}

// Runner drives report jobs through their state machine.
type Runner struct {
	interval time.Duration
	maxPolls int
	log      *zap.Logger
}

func NewRunner(cfg config.ReportConfig, log *zap.Logger) *Runner {
	return &Runner{
		interval: cfg.PollInterval,
		maxPolls: cfg.MaxPolls,
		log:      log.Named("report"),
	}
}

// Run submits the job and polls until the artifact is ready, the poll budget
// runs out, or a phase fails. It returns the raw artifact bytes; decoding is
// the caller's business. The job records its terminal state either way.
func (r *Runner) Run(ctx context.Context, job *Job, ph Phases) ([]byte, error) {
	remoteID, err := ph.Submit(ctx)
	if err != nil {
		job.State = StateFailed
		job.Err = err
		return nil, fmt.Errorf("submit %s report: %w", job.Kind, err)
	}
	job.RemoteID = remoteID
	job.State = StateSubmitted
	r.log.Info("report submitted",
		zap.String("kind", job.Kind),
		zap.String("job_id", job.ID),
		zap.String("remote_id", remoteID))

	job.State = StatePolling
	for job.Polls < r.maxPolls {
		if err := r.sleep(ctx); err != nil {
			job.State = StateFailed
			job.Err = err
			return nil, err
		}
		job.Polls++

		out, err := ph.Fetch(ctx, remoteID)
		if err != nil {
			job.State = StateFailed
			job.Err = err
			metrics.ReportPollsTotal.WithLabelValues(job.Kind, "error").Inc()
			return nil, fmt.Errorf("fetch %s report: %w", job.Kind, err)
		}
		switch {
		case out.Ready:
			job.State = StateDownloading
			metrics.ReportPollsTotal.WithLabelValues(job.Kind, "ready").Inc()
			r.log.Info("report ready",
				zap.String("kind", job.Kind),
				zap.String("job_id", job.ID),
				zap.Int("polls", job.Polls),
				zap.Int("bytes", len(out.Artifact)))
			return out.Artifact, nil
		case out.InvalidID:
			metrics.ReportPollsTotal.WithLabelValues(job.Kind, "invalid_id").Inc()
			r.log.Warn("report id not recognized yet, retrying",
				zap.String("kind", job.Kind),
				zap.String("remote_id", remoteID),
				zap.Int("poll", job.Polls))
		default:
			metrics.ReportPollsTotal.WithLabelValues(job.Kind, "pending").Inc()
			r.log.Debug("report not ready",
				zap.String("kind", job.Kind),
				zap.String("remote_id", remoteID),
				zap.Int("poll", job.Polls))
		}
	}

	job.State = StateExpired
	job.Err = ErrExpired
	metrics.ReportPollsTotal.WithLabelValues(job.Kind, "expired").Inc()
	return nil, fmt.Errorf("%s report %s: %w after %d polls", job.Kind, remoteID, ErrExpired, job.Polls)
}

func (r *Runner) sleep(ctx context.Context) error {
	t := time.NewTimer(r.interval)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
