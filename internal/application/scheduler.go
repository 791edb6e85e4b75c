package application

import (
	"context"
	"errors"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/conantteo/gitlab-pipeline-app/internal/domain"
	"github.com/conantteo/gitlab-pipeline-app/internal/observability"
	"go.uber.org/zap"
)

// Scheduler drives periodic re-aggregation in watch mode. It owns the
// current snapshot: each refresh produces a wholly new one and installs it
// last-writer-wins — a refresh that was superseded by a newer one discards
// its result instead of merging.
type Scheduler struct {
	log     *zap.Logger
	use     *AggregateUseCase
	note    domain.Notifier
	cache   domain.SnapshotCache
	metrics *observability.Metrics

	every     time.Duration
	pauseFile string

	mu       sync.RWMutex
	groupID  int64
	projects []domain.Project
	gen      uint64
	latest   domain.Snapshot
	haveSnap bool

	lastStatus map[int64]projectState
}

type projectState struct {
	pipelineID int64
	status     domain.PipelineStatus
}

func NewScheduler(l *zap.Logger, u *AggregateUseCase, note domain.Notifier, cache domain.SnapshotCache, m *observability.Metrics, groupID int64, projects []domain.Project, every time.Duration, pauseFile string) *Scheduler {
	return &Scheduler{
		log: l, use: u, note: note, cache: cache, metrics: m,
		groupID: groupID, projects: projects,
		every: every, pauseFile: pauseFile,
		lastStatus: make(map[int64]projectState),
	}
}

// UpdateTargets swaps the monitored group/projects, typically on a config
// reload.
func (s *Scheduler) UpdateTargets(groupID int64, projects []domain.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groupID = groupID
	s.projects = projects
	s.log.Info("config reloaded",
		zap.Int64("group", groupID),
		zap.Int("explicit_projects", len(projects)),
	)
}

// Latest returns the most recently installed snapshot, if any.
func (s *Scheduler) Latest() (domain.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.haveSnap
}

func (s *Scheduler) Run(ctx context.Context) {
	t := time.NewTicker(s.every)
	defer t.Stop()

	s.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if s.isPaused() {
		s.log.Debug("paused: skipping refresh")
		return
	}
	s.Refresh(ctx)
}

func (s *Scheduler) isPaused() bool {
	if s.pauseFile == "" {
		return false
	}
	_, err := os.Stat(s.pauseFile)
	return err == nil
}

// Refresh runs one aggregation cycle and installs the result unless a
// newer cycle started in the meantime.
func (s *Scheduler) Refresh(ctx context.Context) {
	gen := s.beginGen()
	started := time.Now()

	snap, err := s.aggregate(ctx)
	if err != nil {
		s.metrics.IncRefreshFailure()
		s.log.Warn("refresh failed", zap.Error(err))
		return
	}

	if !s.install(gen, snap) {
		s.log.Debug("refresh superseded, discarding snapshot")
		return
	}

	s.metrics.ObserveSnapshot(snap, time.Since(started))

	if s.cache != nil {
		if err := s.cache.Write(ctx, snap); err != nil {
			s.log.Warn("cache write failed", zap.Error(err))
		}
	}

	s.notifyTransitions(ctx, snap)

	s.log.Info("refresh complete",
		zap.Int("pipelines", len(snap.Pipelines)),
		zap.Int("failed_projects", len(snap.FailedProjects)),
		zap.Duration("took", time.Since(started)),
	)
}

func (s *Scheduler) beginGen() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	return s.gen
}

func (s *Scheduler) install(gen uint64, snap domain.Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return false
	}
	s.latest = snap
	s.haveSnap = true
	return true
}

// aggregate resolves the target set and runs the fan-out. The group
// listing is the only fatal path, so it alone gets a short retry; auth and
// not-found are permanent.
func (s *Scheduler) aggregate(ctx context.Context) (domain.Snapshot, error) {
	s.mu.RLock()
	groupID := s.groupID
	projects := make([]domain.Project, len(s.projects))
	copy(projects, s.projects)
	s.mu.RUnlock()

	if len(projects) > 0 {
		return s.use.Aggregate(ctx, projects), nil
	}

	var snap domain.Snapshot
	op := func() error {
		sp, err := s.use.AggregateGroup(ctx, groupID)
		if err != nil {
			if errors.Is(err, domain.ErrAuth) || errors.Is(err, domain.ErrNotFound) {
				return backoff.Permanent(err)
			}
			return err
		}
		snap = sp
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 300 * time.Millisecond
	bo.MaxInterval = 2 * time.Second
	bo.MaxElapsedTime = 5 * time.Second

	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return domain.Snapshot{}, err
	}
	return snap, nil
}

// notifyTransitions sends one desktop notification per project whose
// latest pipeline changed id or status since the previous snapshot.
func (s *Scheduler) notifyTransitions(ctx context.Context, snap domain.Snapshot) {
	if s.note == nil {
		return
	}

	seen := make(map[int64]bool)
	for _, p := range snap.Pipelines {
		if seen[p.ProjectID] {
			continue
		}
		seen[p.ProjectID] = true

		prev, ok := s.lastStatus[p.ProjectID]
		changed := !ok || prev.pipelineID != p.ID || prev.status != p.Status
		if !changed {
			continue
		}
		s.lastStatus[p.ProjectID] = projectState{pipelineID: p.ID, status: p.Status}
		if !ok {
			continue
		}

		title := titleFor(p.Status)
		body := p.ProjectName + ": pipeline #" + strconv.FormatInt(p.ID, 10) + " (" + p.Ref + ")"
		if err := s.note.Notify(ctx, title, body, p.WebURL); err != nil {
			s.log.Warn("notify failed", zap.Error(err))
		}
	}
}

func titleFor(s domain.PipelineStatus) string {
	switch s {
	case domain.StatusSuccess:
		return "✅ CI: success"
	case domain.StatusFailed:
		return "❌ CI: failed"
	case domain.StatusRunning:
		return "▶️ CI: running"
	case domain.StatusCanceled:
		return "⛔ CI: canceled"
	default:
		return "ℹ️ CI: " + string(s)
	}
}
