package application

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/conantteo/gitlab-pipeline-app/internal/domain"
)

func TestAggregate_PartialFailureToleratesOneBadProject(t *testing.T) {
	gl := &domain.MockGitLab{
		Pipelines: map[int64][]domain.Pipeline{
			1: {{ID: 10, Status: domain.StatusSuccess, Ref: "main"}},
			3: {{ID: 30, Status: domain.StatusFailed, Ref: "dev"}},
		},
		PipelineErr: map[int64]error{2: domain.ErrNetwork},
	}
	uc := NewAggregateUseCase(gl, 5, 2)

	snap := uc.Aggregate(context.Background(), []domain.Project{
		{ID: 1, Name: "A"}, {ID: 2, Name: "B"}, {ID: 3, Name: "C"},
	})

	if len(snap.Pipelines) != 2 {
		t.Fatalf("pipelines = %d, want 2", len(snap.Pipelines))
	}
	if len(snap.FailedProjects) != 1 || snap.FailedProjects[0] != 2 {
		t.Errorf("failed projects = %v, want [2]", snap.FailedProjects)
	}
	if snap.Pipelines[0].ProjectName != "A" || snap.Pipelines[1].ProjectName != "C" {
		t.Errorf("merge must follow input-project order: %+v", snap.Pipelines)
	}
}

func TestAggregate_DeduplicatesInput(t *testing.T) {
	gl := &domain.MockGitLab{
		Pipelines: map[int64][]domain.Pipeline{
			1: {{ID: 10, Status: domain.StatusSuccess}},
			2: {{ID: 20, Status: domain.StatusRunning}},
		},
	}
	uc := NewAggregateUseCase(gl, 5, 4)

	snap := uc.Aggregate(context.Background(), []domain.Project{
		{ID: 1, Name: "A"}, {ID: 1, Name: "A"}, {ID: 2, Name: "B"},
	})

	if gl.FetchCalled != 2 {
		t.Errorf("fetches = %d, want 2 (deduplicated)", gl.FetchCalled)
	}
	if len(snap.Pipelines) != 2 {
		t.Errorf("pipelines = %d, want 2", len(snap.Pipelines))
	}
}

func TestAggregate_EmptyInput(t *testing.T) {
	uc := NewAggregateUseCase(&domain.MockGitLab{}, 5, 4)

	snap := uc.Aggregate(context.Background(), nil)

	if len(snap.Pipelines) != 0 || len(snap.FailedProjects) != 0 {
		t.Errorf("empty input must yield empty snapshot: %+v", snap)
	}
	if snap.FetchedAt.IsZero() {
		t.Error("fetched_at must still be stamped")
	}
}

func TestAggregate_ZeroPipelinesIsNotAFailure(t *testing.T) {
	gl := &domain.MockGitLab{Pipelines: map[int64][]domain.Pipeline{}}
	uc := NewAggregateUseCase(gl, 5, 4)

	snap := uc.Aggregate(context.Background(), []domain.Project{{ID: 1, Name: "A"}})

	if len(snap.FailedProjects) != 0 {
		t.Errorf("zero pipelines must not count as failure: %v", snap.FailedProjects)
	}
}

func TestAggregate_ProjectFieldsAttached(t *testing.T) {
	gl := &domain.MockGitLab{
		Pipelines: map[int64][]domain.Pipeline{
			1: {{ID: 10, Status: domain.StatusSuccess}, {ID: 9, Status: domain.StatusFailed}},
		},
	}
	uc := NewAggregateUseCase(gl, 5, 1)

	snap := uc.Aggregate(context.Background(), []domain.Project{{ID: 1, Name: "A"}})

	for _, p := range snap.Pipelines {
		if p.ProjectID != 1 || p.ProjectName != "A" {
			t.Errorf("project fields not attached: %+v", p)
		}
	}
	if snap.Pipelines[0].ID != 10 || snap.Pipelines[1].ID != 9 {
		t.Errorf("per-project recency order must be preserved: %+v", snap.Pipelines)
	}
}

func TestAggregate_ObserverSeesEveryProject(t *testing.T) {
	gl := &domain.MockGitLab{
		Pipelines:   map[int64][]domain.Pipeline{1: nil, 3: nil},
		PipelineErr: map[int64]error{2: domain.ErrAuth},
	}
	uc := NewAggregateUseCase(gl, 5, 2)

	var mu sync.Mutex
	done := map[int64]error{}
	uc.OnProjectDone = func(p domain.Project, err error) {
		mu.Lock()
		done[p.ID] = err
		mu.Unlock()
	}

	uc.Aggregate(context.Background(), []domain.Project{{ID: 1}, {ID: 2}, {ID: 3}})

	if len(done) != 3 {
		t.Fatalf("observer saw %d projects, want 3", len(done))
	}
	if !errors.Is(done[2], domain.ErrAuth) {
		t.Errorf("observer must see the per-project error, got %v", done[2])
	}
	if done[1] != nil || done[3] != nil {
		t.Errorf("unexpected errors: %v", done)
	}
}

func TestAggregateGroup_ListFailureIsFatal(t *testing.T) {
	gl := &domain.MockGitLab{ProjectsErr: domain.ErrAuth}
	uc := NewAggregateUseCase(gl, 5, 4)

	_, err := uc.AggregateGroup(context.Background(), 7)
	if !errors.Is(err, domain.ErrAuth) {
		t.Errorf("group listing failure must surface, got %v", err)
	}
	if gl.FetchCalled != 0 {
		t.Errorf("no fan-out after fatal listing failure, fetches = %d", gl.FetchCalled)
	}
}

func TestJobsFor_SwallowsErrors(t *testing.T) {
	gl := &domain.MockGitLab{JobsErr: domain.ErrNotFound}
	uc := NewAggregateUseCase(gl, 5, 4)

	if jobs := uc.JobsFor(context.Background(), 1, 10); len(jobs) != 0 {
		t.Errorf("job failure must yield empty list, got %v", jobs)
	}

	gl = &domain.MockGitLab{Jobs: map[int64][]domain.Job{10: {{ID: 100, Name: "build", Status: domain.StatusRunning}}}}
	uc = NewAggregateUseCase(gl, 5, 4)

	jobs := uc.JobsFor(context.Background(), 1, 10)
	if len(jobs) != 1 || jobs[0].Name != "build" {
		t.Errorf("unexpected jobs: %+v", jobs)
	}
}

func TestAggregate_EndToEndScenario(t *testing.T) {
	gl := &domain.MockGitLab{
		Projects: []domain.Project{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}},
		Pipelines: map[int64][]domain.Pipeline{
			1: {{ID: 10, Status: domain.StatusSuccess, Ref: "main", UpdatedAt: "2024-01-01T10:00:00Z"}},
		},
		PipelineErr: map[int64]error{2: domain.ErrNetwork},
	}
	uc := NewAggregateUseCase(gl, 5, 4)

	snap, err := uc.AggregateGroup(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(snap.Pipelines) != 1 {
		t.Fatalf("pipelines = %d, want 1", len(snap.Pipelines))
	}
	p := snap.Pipelines[0]
	if p.ProjectName != "A" || p.Status != domain.StatusSuccess || p.Ref != "main" {
		t.Errorf("unexpected pipeline: %+v", p)
	}
	if len(snap.FailedProjects) != 1 || snap.FailedProjects[0] != 2 {
		t.Errorf("failed projects = %v, want [2]", snap.FailedProjects)
	}

	if succ := snap.Successes(10); len(succ) != 1 {
		t.Errorf("success view = %d, want 1", len(succ))
	}
	if pending := snap.Pending(); len(pending) != 0 {
		t.Errorf("pending view = %v, want empty", pending)
	}
}
