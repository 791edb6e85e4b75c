package domain

import (
	"sort"
	"time"
)

type PipelineStatus string

const (
	StatusSuccess  PipelineStatus = "success"
	StatusFailed   PipelineStatus = "failed"
	StatusRunning  PipelineStatus = "running"
	StatusPending  PipelineStatus = "pending"
	StatusCreated  PipelineStatus = "created"
	StatusCanceled PipelineStatus = "canceled"
	StatusSkipped  PipelineStatus = "skipped"
	StatusManual   PipelineStatus = "manual"
	StatusUnknown  PipelineStatus = "unknown"
)

// ParseStatus maps a raw GitLab status string onto the known set.
// Unrecognized values become StatusUnknown, never an error.
func ParseStatus(s string) PipelineStatus {
	switch PipelineStatus(s) {
	case StatusSuccess, StatusFailed, StatusRunning, StatusPending,
		StatusCreated, StatusCanceled, StatusSkipped, StatusManual:
		return PipelineStatus(s)
	default:
		return StatusUnknown
	}
}

// Glyph returns the display marker for a status. Total over every value,
// including ones that never went through ParseStatus.
func (s PipelineStatus) Glyph() string {
	switch s {
	case StatusSuccess:
		return "🟢"
	case StatusFailed:
		return "🔴"
	case StatusRunning:
		return "🔵"
	case StatusPending, StatusCreated:
		return "🟡"
	case StatusSkipped:
		return "⚫"
	case StatusManual:
		return "🟠"
	default:
		return "⚪"
	}
}

// IsPendingLike reports whether the status belongs in the pending view.
func (s PipelineStatus) IsPendingLike() bool {
	return s == StatusPending || s == StatusCreated || s == StatusRunning
}

type Project struct {
	ID   int64
	Name string
}

// Pipeline is one CI run attached to its owning project. Timestamps keep
// the raw strings the API returned; parsing is deferred to the formatting
// helpers so an unparseable value still displays.
type Pipeline struct {
	ID          int64
	ProjectID   int64
	ProjectName string
	Status      PipelineStatus
	Ref         string
	CreatedAt   string
	UpdatedAt   string
	WebURL      string
	TriggeredBy string
}

type Job struct {
	ID     int64
	Name   string
	Status PipelineStatus
}

// Snapshot is the result of one aggregation cycle. It is never mutated
// after construction; a refresh produces a wholly new Snapshot.
type Snapshot struct {
	Pipelines      []Pipeline
	FetchedAt      time.Time
	FailedProjects []int64
}

// Pending returns pipelines in pending, created or running state,
// preserving snapshot order.
func (s Snapshot) Pending() []Pipeline {
	var out []Pipeline
	for _, p := range s.Pipelines {
		if p.Status.IsPendingLike() {
			out = append(out, p)
		}
	}
	return out
}

// Successes returns up to n successful pipelines, most recently updated
// first. Pipelines with an unparseable updated_at sort last.
func (s Snapshot) Successes(n int) []Pipeline {
	var out []Pipeline
	for _, p := range s.Pipelines {
		if p.Status == StatusSuccess {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ti, iok := ParseTimestamp(out[i].UpdatedAt)
		tj, jok := ParseTimestamp(out[j].UpdatedAt)
		if iok != jok {
			return iok
		}
		return ti.After(tj)
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Counts are the overview metric buckets. Pending counts pending+created,
// running is its own bucket.
type Counts struct {
	Succeeded int
	Failed    int
	Running   int
	Pending   int
}

func (s Snapshot) Counts() Counts {
	var c Counts
	for _, p := range s.Pipelines {
		switch p.Status {
		case StatusSuccess:
			c.Succeeded++
		case StatusFailed:
			c.Failed++
		case StatusRunning:
			c.Running++
		case StatusPending, StatusCreated:
			c.Pending++
		}
	}
	return c
}
