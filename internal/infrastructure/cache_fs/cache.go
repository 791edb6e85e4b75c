package cache_fs

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/conantteo/gitlab-pipeline-app/internal/domain"
)

// FSCache persists the current snapshot as JSON for external consumers
// (status bars, other tooling). Only the latest snapshot is kept; each
// write replaces the file.
type FSCache struct {
	path string
}

func New(path string) *FSCache { return &FSCache{path: path} }

func (c *FSCache) Write(_ context.Context, s domain.Snapshot) error {
	if c.path == "" {
		return errors.New("cache path is empty")
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(c.path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	type pipelineOut struct {
		ID          int64  `json:"id"`
		ProjectID   int64  `json:"project_id"`
		Project     string `json:"project"`
		Status      string `json:"status"`
		Glyph       string `json:"glyph"`
		Ref         string `json:"ref"`
		CreatedAt   string `json:"created_at,omitempty"`
		UpdatedAt   string `json:"updated_at,omitempty"`
		URL         string `json:"url,omitempty"`
		TriggeredBy string `json:"triggered_by,omitempty"`
	}

	type out struct {
		FetchedAt      int64         `json:"fetched_at"`
		Pipelines      []pipelineOut `json:"pipelines"`
		FailedProjects []int64       `json:"failed_projects,omitempty"`
	}

	o := out{
		FetchedAt:      s.FetchedAt.Unix(),
		Pipelines:      make([]pipelineOut, 0, len(s.Pipelines)),
		FailedProjects: s.FailedProjects,
	}
	for _, p := range s.Pipelines {
		o.Pipelines = append(o.Pipelines, pipelineOut{
			ID:          p.ID,
			ProjectID:   p.ProjectID,
			Project:     p.ProjectName,
			Status:      string(p.Status),
			Glyph:       p.Status.Glyph(),
			Ref:         p.Ref,
			CreatedAt:   p.CreatedAt,
			UpdatedAt:   p.UpdatedAt,
			URL:         p.WebURL,
			TriggeredBy: p.TriggeredBy,
		})
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")

	return enc.Encode(o)
}
