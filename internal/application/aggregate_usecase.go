package application

import (
	"context"
	"fmt"
	"time"

	"github.com/conantteo/gitlab-pipeline-app/internal/domain"
	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 8

// AggregateUseCase fans out one pipeline fetch per project and merges the
// results into a single immutable snapshot. One project's failure degrades
// that project into Snapshot.FailedProjects; it never aborts the batch.
type AggregateUseCase struct {
	gl          domain.GitlabClient
	perProject  int
	concurrency int

	// OnProjectDone, when set, is invoked once per project as its fetch
	// completes, in completion order. Progress reporting only; the snapshot
	// itself is assembled in input-project order.
	OnProjectDone func(p domain.Project, err error)
}

func NewAggregateUseCase(gl domain.GitlabClient, perProject, concurrency int) *AggregateUseCase {
	if perProject <= 0 {
		perProject = 5
	}
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &AggregateUseCase{gl: gl, perProject: perProject, concurrency: concurrency}
}

// AggregateGroup lists the group's projects and aggregates them. A failure
// of the group listing itself is fatal: there is nothing to fan out over.
func (uc *AggregateUseCase) AggregateGroup(ctx context.Context, groupID int64) (domain.Snapshot, error) {
	projects, err := uc.gl.ListGroupProjects(ctx, groupID)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("list group %d projects: %w", groupID, err)
	}
	return uc.Aggregate(ctx, projects), nil
}

// Aggregate fetches recent pipelines for every project concurrently,
// bounded by the configured limit. Duplicate project ids are collapsed
// before fan-out. Merge order is input-project order regardless of which
// fetch finishes first, so output is deterministic given deterministic
// responses.
func (uc *AggregateUseCase) Aggregate(ctx context.Context, projects []domain.Project) domain.Snapshot {
	projects = dedupe(projects)

	results := make([][]domain.Pipeline, len(projects))
	failures := make([]error, len(projects))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.concurrency)

	for i, p := range projects {
		i, p := i, p
		g.Go(func() error {
			pipelines, err := uc.gl.ListProjectPipelines(gctx, p.ID, uc.perProject)
			if err != nil {
				failures[i] = err
			} else {
				results[i] = pipelines
			}
			if uc.OnProjectDone != nil {
				uc.OnProjectDone(p, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	snap := domain.Snapshot{FetchedAt: time.Now()}
	for i, p := range projects {
		if failures[i] != nil {
			snap.FailedProjects = append(snap.FailedProjects, p.ID)
			continue
		}
		for _, pl := range results[i] {
			pl.ProjectID = p.ID
			pl.ProjectName = p.Name
			snap.Pipelines = append(snap.Pipelines, pl)
		}
	}
	return snap
}

// JobsFor fetches a pipeline's jobs on demand. Jobs are optional
// enrichment: any failure yields an empty list rather than an error.
func (uc *AggregateUseCase) JobsFor(ctx context.Context, projectID, pipelineID int64) []domain.Job {
	jobs, err := uc.gl.ListPipelineJobs(ctx, projectID, pipelineID)
	if err != nil {
		return nil
	}
	return jobs
}

func dedupe(projects []domain.Project) []domain.Project {
	seen := make(map[int64]struct{}, len(projects))
	out := projects[:0:0]
	for _, p := range projects {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out
}
