package gitlab_http

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/conantteo/gitlab-pipeline-app/internal/domain"
)

type Client struct {
	baseUrl string
	token   string
	hc      *http.Client
}

func New(baseUrl string, token string, timeout time.Duration) *Client {
	tr := &http.Transport{
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
		TLSHandshakeTimeout: 5 * time.Second,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
	}

	return &Client{
		baseUrl: trimSlash(baseUrl),
		token:   token,
		hc:      &http.Client{Transport: tr, Timeout: timeout},
	}
}

type projectDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type pipelineDTO struct {
	ID        int64  `json:"id"`
	Status    string `json:"status"`
	Ref       string `json:"ref"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
	WebURL    string `json:"web_url"`
	User      *struct {
		Name string `json:"name"`
	} `json:"user"`
}

type jobDTO struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// ListGroupProjects fetches the first page of a group's projects in simple
// mode. Pagination past page one is a documented limitation.
func (c *Client) ListGroupProjects(ctx context.Context, groupID int64) ([]domain.Project, error) {
	url := fmt.Sprintf("%s/api/v4/groups/%d/projects?per_page=100&simple=true", c.baseUrl, groupID)

	var list []projectDTO
	if err := c.getJSON(ctx, url, &list); err != nil {
		return nil, err
	}

	out := make([]domain.Project, 0, len(list))
	for _, p := range list {
		out = append(out, domain.Project{ID: p.ID, Name: p.Name})
	}
	return out, nil
}

// ListProjectPipelines fetches a project's most recent pipelines, newest
// first, bounded by limit. First page only.
func (c *Client) ListProjectPipelines(ctx context.Context, projectID int64, limit int) ([]domain.Pipeline, error) {
	url := fmt.Sprintf("%s/api/v4/projects/%d/pipelines?per_page=%d&sort=desc", c.baseUrl, projectID, limit)

	var list []pipelineDTO
	if err := c.getJSON(ctx, url, &list); err != nil {
		return nil, err
	}

	out := make([]domain.Pipeline, 0, len(list))
	for _, p := range list {
		pl := domain.Pipeline{
			ID:        p.ID,
			ProjectID: projectID,
			Status:    domain.ParseStatus(p.Status),
			Ref:       p.Ref,
			CreatedAt: p.CreatedAt,
			UpdatedAt: p.UpdatedAt,
			WebURL:    p.WebURL,
		}
		if p.User != nil {
			pl.TriggeredBy = p.User.Name
		}
		out = append(out, pl)
	}
	return out, nil
}

func (c *Client) ListPipelineJobs(ctx context.Context, projectID, pipelineID int64) ([]domain.Job, error) {
	url := fmt.Sprintf("%s/api/v4/projects/%d/pipelines/%d/jobs", c.baseUrl, projectID, pipelineID)

	var list []jobDTO
	if err := c.getJSON(ctx, url, &list); err != nil {
		return nil, err
	}

	out := make([]domain.Job, 0, len(list))
	for _, j := range list {
		out = append(out, domain.Job{ID: j.ID, Name: j.Name, Status: domain.ParseStatus(j.Status)})
	}
	return out, nil
}

// getJSON performs one authenticated GET and decodes the body. No retries:
// retry policy, if any, belongs to the caller.
func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	req.Header.Set("PRIVATE-TOKEN", c.token)

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: gitlab %s", domain.ErrAuth, resp.Status)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: gitlab %s", domain.ErrNotFound, resp.Status)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("%w: gitlab %s", domain.ErrNetwork, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrDecode, err)
	}
	return nil
}

func trimSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}
