package cache_fs

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/conantteo/gitlab-pipeline-app/internal/domain"
)

func TestCache_WriteCreatesFile(t *testing.T) {
	tmp := t.TempDir()
	path := tmp + "/snap.json"

	c := New(path)
	s := domain.Snapshot{
		FetchedAt: time.Unix(123, 0),
		Pipelines: []domain.Pipeline{
			{ID: 10, ProjectID: 1, ProjectName: "A", Status: domain.StatusSuccess, Ref: "main"},
		},
		FailedProjects: []int64{2},
	}
	if err := c.Write(context.Background(), s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("file not created: %v", err)
	}

	var got struct {
		FetchedAt      int64   `json:"fetched_at"`
		FailedProjects []int64 `json:"failed_projects"`
		Pipelines      []struct {
			Project string `json:"project"`
			Status  string `json:"status"`
		} `json:"pipelines"`
	}
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if got.FetchedAt != 123 || len(got.Pipelines) != 1 || got.Pipelines[0].Status != "success" {
		t.Errorf("unexpected payload: %+v", got)
	}
	if len(got.FailedProjects) != 1 || got.FailedProjects[0] != 2 {
		t.Errorf("failed projects lost: %+v", got.FailedProjects)
	}
}

func TestCache_EmptyPathFails(t *testing.T) {
	if err := New("").Write(context.Background(), domain.Snapshot{}); err == nil {
		t.Error("expected error for empty path")
	}
}
