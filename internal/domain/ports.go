package domain

import "context"

type GitlabClient interface {
	ListGroupProjects(ctx context.Context, groupID int64) ([]Project, error)
	ListProjectPipelines(ctx context.Context, projectID int64, limit int) ([]Pipeline, error)
	ListPipelineJobs(ctx context.Context, projectID, pipelineID int64) ([]Job, error)
}

type Notifier interface {
	Notify(ctx context.Context, title, body, url string) error
}

type SnapshotCache interface {
	Write(ctx context.Context, s Snapshot) error
}
