package domain

import (
	"context"
	"sync"
)

type MockGitLab struct {
	Projects    []Project
	ProjectsErr error
	Pipelines   map[int64][]Pipeline
	PipelineErr map[int64]error
	Jobs        map[int64][]Job
	JobsErr     error

	mu          sync.Mutex
	ListCalled  int
	FetchCalled int
}

func (m *MockGitLab) ListGroupProjects(ctx context.Context, groupID int64) ([]Project, error) {
	m.mu.Lock()
	m.ListCalled++
	m.mu.Unlock()
	if m.ProjectsErr != nil {
		return nil, m.ProjectsErr
	}
	return m.Projects, nil
}

func (m *MockGitLab) ListProjectPipelines(ctx context.Context, projectID int64, limit int) ([]Pipeline, error) {
	m.mu.Lock()
	m.FetchCalled++
	m.mu.Unlock()
	if err := m.PipelineErr[projectID]; err != nil {
		return nil, err
	}
	return m.Pipelines[projectID], nil
}

func (m *MockGitLab) ListPipelineJobs(ctx context.Context, projectID, pipelineID int64) ([]Job, error) {
	if m.JobsErr != nil {
		return nil, m.JobsErr
	}
	return m.Jobs[pipelineID], nil
}

type MockNotifier struct {
	Messages []string
	Err      error
}

func (n *MockNotifier) Notify(ctx context.Context, title, body, url string) error {
	n.Messages = append(n.Messages, title+"|"+body+"|"+url)
	return n.Err
}

type MockCache struct {
	Snapshots []Snapshot
	Err       error
}

func (c *MockCache) Write(ctx context.Context, s Snapshot) error {
	if c.Err != nil {
		return c.Err
	}
	c.Snapshots = append(c.Snapshots, s)
	return nil
}
