package cli

import (
	"context"

	"github.com/conantteo/gitlab-pipeline-app/internal/application"
	"github.com/conantteo/gitlab-pipeline-app/internal/domain"
	"github.com/conantteo/gitlab-pipeline-app/internal/infrastructure/config"
	"github.com/conantteo/gitlab-pipeline-app/internal/infrastructure/gitlab_http"
)

func newUseCase(cfg config.Config) *application.AggregateUseCase {
	gl := gitlab_http.New(cfg.GitLab.BaseURL, cfg.GitLab.Token, cfg.GitLab.Timeout)
	return application.NewAggregateUseCase(gl, cfg.Fetch.PerProject, cfg.Fetch.Concurrency)
}

func targetProjects(cfg config.Config) []domain.Project {
	var out []domain.Project
	for _, p := range cfg.EnabledProjects() {
		out = append(out, domain.Project{ID: p.ID, Name: p.Name})
	}
	return out
}

// fetchSnapshot runs one aggregation: over the explicit project list when
// configured, otherwise over the group's projects.
func fetchSnapshot(ctx context.Context, cfg config.Config, uc *application.AggregateUseCase) (domain.Snapshot, error) {
	if projects := targetProjects(cfg); len(projects) > 0 {
		return uc.Aggregate(ctx, projects), nil
	}
	return uc.AggregateGroup(ctx, cfg.Group.ID)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
